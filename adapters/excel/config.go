package excel

import (
	"statgrid/internal"
)

// ReaderConfig holds configuration for file and pasted-text sources
type ReaderConfig struct {
	// SheetName is the worksheet read from .xlsx workbooks.
	SheetName string `json:"sheet_name"`
	Logger    *internal.Logger
}

// DefaultReaderConfig reads Sheet1 and logs through the default logger
func DefaultReaderConfig() ReaderConfig {
	return ReaderConfig{
		SheetName: "Sheet1",
		Logger:    internal.DefaultLogger,
	}
}

func (c ReaderConfig) logger() *internal.Logger {
	if c.Logger == nil {
		return internal.DefaultLogger
	}
	return c.Logger
}

func (c ReaderConfig) sheet() string {
	if c.SheetName == "" {
		return "Sheet1"
	}
	return c.SheetName
}
