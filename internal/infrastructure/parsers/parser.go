// Package parsers provides parsers for importing tree events from various
// formats.
package parsers

import (
	"io"
	"path/filepath"
	"strings"

	"github.com/ersonp/yichus-core/internal/domain/entities"
)

// Parser defines the interface for parsing tree events from various formats.
// Parsers check shape only; event semantics are validated when the events
// are appended to a tree.
type Parser interface {
	Parse(r io.Reader) ([]entities.RawEvent, error)
}

// ForFormat returns the appropriate parser for the given format.
// Supported formats: "json", "csv".
func ForFormat(format string) Parser {
	switch strings.ToLower(format) {
	case "json":
		return &JSONParser{}
	case "csv":
		return &CSVParser{}
	default:
		return nil
	}
}

// ForFile returns the appropriate parser based on file extension.
func ForFile(filename string) Parser {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".json":
		return &JSONParser{}
	case ".csv":
		return &CSVParser{}
	default:
		return nil
	}
}
