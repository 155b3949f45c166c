package core

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNewIDUniqueness tests that NewID generates unique identifiers
func TestNewIDUniqueness(t *testing.T) {
	const numIDs = 10000

	ids := make(map[ID]bool, numIDs)
	for i := 0; i < numIDs; i++ {
		id := NewID()
		if id.IsEmpty() {
			t.Errorf("Generated empty ID at iteration %d", i)
		}
		if ids[id] {
			t.Errorf("Generated duplicate ID: %s", id)
		}
		ids[id] = true
	}

	if len(ids) != numIDs {
		t.Errorf("Expected %d unique IDs, got %d", numIDs, len(ids))
	}
}

func TestParseID(t *testing.T) {
	id := NewID()
	parsed, err := ParseID("  " + id.String() + " ")
	require.NoError(t, err)
	assert.Equal(t, id, parsed)

	_, err = ParseID("")
	assert.Error(t, err)
	_, err = ParseID("not-a-uuid")
	assert.Error(t, err)
}

func TestHashShort(t *testing.T) {
	h := NewHash([]byte("a,b\n1,2"))
	assert.Len(t, h.String(), 64)
	assert.Equal(t, h.String()[:12], h.Short())
	assert.Equal(t, h, NewHash([]byte("a,b\n1,2")))
}

func TestErrorClassification(t *testing.T) {
	err := NewInsufficientDataError("variance", 2, 1)
	assert.True(t, errors.Is(err, ErrInsufficientData))
	assert.True(t, IsNotComputable(err))
	assert.False(t, IsInputError(err))

	err = NewUnknownColumnError("height")
	assert.True(t, IsInputError(err))
	assert.Contains(t, err.Error(), `"height"`)
}
