package parsers

import (
	"fmt"
	"strings"
)

// RosterEntry is one player row of an imported roster file. Rating is raw;
// callers normalize it for the whole roster at once.
type RosterEntry struct {
	PlayerID    string
	DisplayName string
	Rating      *float64
	ArriveAt    string
	LeaveAt     string
}

// Parser reads a roster file.
type Parser interface {
	Parse(data []byte) ([]RosterEntry, error)
}

// ParserFactory picks a parser for a file.
type ParserFactory interface {
	GetParser(filename string) (Parser, error)
}

// Factory creates the appropriate parser based on file extension.
type Factory struct{}

// NewFactory creates a new parser factory.
func NewFactory() *Factory {
	return &Factory{}
}

// GetParser returns the parser for the file's extension.
func (f *Factory) GetParser(filename string) (Parser, error) {
	ext := strings.ToLower(getFileExtension(filename))

	switch ext {
	case ".csv":
		return NewCSVParser(), nil
	case ".xlsx":
		return NewXLSXParser(), nil
	default:
		return nil, fmt.Errorf("unsupported file type: %q", ext)
	}
}

func getFileExtension(filename string) string {
	idx := strings.LastIndex(filename, ".")
	if idx == -1 {
		return ""
	}
	return filename[idx:]
}
