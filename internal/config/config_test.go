package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"statgrid/internal/errors"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"PORT", "MAX_UPLOAD_MB", "NUMERIC_THRESHOLD", "KDE_POINTS", "MU0", "ANALYSIS_WORKERS", "SHEET_NAME", "LOG_LEVEL", "LENIENT_NUMBERS", "SHUTDOWN_TIMEOUT"} {
		t.Setenv(k, "")
	}
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 10, cfg.Server.MaxUploadMB)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, 0.5, cfg.Analysis.NumericThreshold)
	assert.Equal(t, 100, cfg.Analysis.KDEPoints)
	assert.Equal(t, 0, cfg.Analysis.Workers)
	assert.Equal(t, "Sheet1", cfg.Input.SheetName)
	assert.Equal(t, "INFO", cfg.LogLevel)
	assert.False(t, cfg.Analysis.Policy().Lenient)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("NUMERIC_THRESHOLD", "0.8")
	t.Setenv("MU0", "2.5")
	t.Setenv("ANALYSIS_WORKERS", "4")
	t.Setenv("LENIENT_NUMBERS", "true")
	t.Setenv("SHEET_NAME", "Data")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, 2.5, cfg.Analysis.Mu0)
	assert.Equal(t, 4, cfg.Analysis.Workers)
	assert.Equal(t, "Data", cfg.Input.SheetName)

	p := cfg.Analysis.Policy()
	assert.Equal(t, 0.8, p.Threshold)
	assert.True(t, p.Lenient)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"PORT", "http"},
		{"MAX_UPLOAD_MB", "-1"},
		{"NUMERIC_THRESHOLD", "1"},
		{"KDE_POINTS", "1"},
		{"ANALYSIS_WORKERS", "-2"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			require.Error(t, err)
			assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
		})
	}
}

func TestLoad_UnparseableFallsBack(t *testing.T) {
	t.Setenv("KDE_POINTS", "many")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 100, cfg.Analysis.KDEPoints)
}
