package extractor

import (
	"errors"
	"fmt"

	"github.com/BerylCAtieno/document-chat/internal/models"
)

var (
	// ErrUnsupportedFormat is returned when neither the extension nor the MIME type maps to a format.
	ErrUnsupportedFormat = errors.New("unsupported format. Use PDF, Word, or Text")

	// ErrEmptyContent is returned when less than MinContentLength characters were extracted.
	ErrEmptyContent = errors.New("no text found")

	// ErrDependencyUnavailable is returned when the engine for a format is not loaded.
	ErrDependencyUnavailable = errors.New("parsing engine not available")
)

// ParseError wraps a failure reported by a format's parsing library.
type ParseError struct {
	Format models.DocumentType
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s read error: %v", e.Format, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

func parseError(format models.DocumentType, err error) error {
	return &ParseError{Format: format, Err: err}
}
