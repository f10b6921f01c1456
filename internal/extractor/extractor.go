// Package extractor converts uploaded PDF, Word and plain-text files into
// normalized text. Each format has its own Extractor; the Registry picks one
// from the file name and declared MIME type.
package extractor

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/BerylCAtieno/document-chat/internal/models"
)

// MinContentLength is the number of characters below which an extraction is
// treated as empty.
const MinContentLength = 10

// Extractor converts the raw bytes of one document format into text.
type Extractor interface {
	Extract(ctx context.Context, data []byte) (string, error)
}

// ExtractorFunc adapts a plain function to the Extractor interface.
type ExtractorFunc func(ctx context.Context, data []byte) (string, error)

func (f ExtractorFunc) Extract(ctx context.Context, data []byte) (string, error) {
	return f(ctx, data)
}

// Registry maps detected document types to extractors.
type Registry struct {
	extractors map[models.DocumentType]Extractor
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{extractors: make(map[models.DocumentType]Extractor)}
}

// Default returns a registry with the PDF, Word and plain-text extractors.
func Default() *Registry {
	r := NewRegistry()
	r.Register(models.DocumentTypePDF, NewPDFExtractor())
	r.Register(models.DocumentTypeWord, NewDOCXExtractor())
	r.Register(models.DocumentTypeText, NewTXTExtractor())
	return r
}

// Register installs (or replaces) the extractor for a document type.
func (r *Registry) Register(docType models.DocumentType, e Extractor) {
	r.extractors[docType] = e
}

// Extract detects the file's type and runs the matching extractor.
func (r *Registry) Extract(ctx context.Context, file models.FileHandle) (models.DocumentType, string, error) {
	docType, err := Detect(file.Name, file.MIMEType)
	if err != nil {
		return "", "", err
	}

	e, ok := r.extractors[docType]
	if !ok || e == nil {
		return docType, "", fmt.Errorf("%s: %w", docType, ErrDependencyUnavailable)
	}

	text, err := e.Extract(ctx, file.Data)
	if err != nil {
		return docType, "", err
	}

	return docType, text, nil
}

// wordContentTypes are the MIME types browsers and clients send for Word files
// that do not contain "word".
var wordContentTypes = map[string]bool{
	"application/docx":   true,
	"application/x-docx": true,
}

// Detect determines the document type from the file extension, falling back
// to the declared MIME type.
func Detect(filename, mimeType string) (models.DocumentType, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return models.DocumentTypePDF, nil
	case ".docx", ".doc":
		return models.DocumentTypeWord, nil
	case ".txt":
		return models.DocumentTypeText, nil
	}

	mimeType = strings.ToLower(strings.TrimSpace(mimeType))
	if i := strings.IndexByte(mimeType, ';'); i >= 0 {
		mimeType = strings.TrimSpace(mimeType[:i])
	}

	switch {
	case mimeType == "application/pdf":
		return models.DocumentTypePDF, nil
	case strings.Contains(mimeType, "word"), wordContentTypes[mimeType]:
		return models.DocumentTypeWord, nil
	case strings.HasPrefix(mimeType, "text/"):
		return models.DocumentTypeText, nil
	}

	return "", ErrUnsupportedFormat
}

// tooShort reports whether text has fewer than MinContentLength characters
// once surrounding whitespace is removed.
func tooShort(text string) bool {
	return utf8.RuneCountInString(strings.TrimSpace(text)) < MinContentLength
}
