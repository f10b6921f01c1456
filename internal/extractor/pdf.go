package extractor

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/BerylCAtieno/document-chat/internal/models"
)

type PDFExtractor struct{}

func NewPDFExtractor() *PDFExtractor {
	return &PDFExtractor{}
}

// Extract joins the text of every page. Whitespace inside a page collapses
// to single spaces and pages are separated by newlines.
func (e *PDFExtractor) Extract(ctx context.Context, data []byte) (text string, err error) {
	// The pdf package panics on some malformed inputs.
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = parseError(models.DocumentTypePDF, fmt.Errorf("%v", r))
		}
	}()

	pdfReader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", parseError(models.DocumentTypePDF, err)
	}

	var textBuilder strings.Builder
	numPages := pdfReader.NumPage()

	for i := 1; i <= numPages; i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		page := pdfReader.Page(i)
		if page.V.IsNull() {
			continue
		}

		raw, err := page.GetPlainText(nil)
		if err != nil {
			return "", parseError(models.DocumentTypePDF, fmt.Errorf("page %d: %w", i, err))
		}

		pageText := strings.Join(strings.Fields(raw), " ")
		if pageText == "" {
			continue
		}

		textBuilder.WriteString(pageText)
		textBuilder.WriteString("\n")
	}

	extractedText := strings.TrimSpace(textBuilder.String())

	if tooShort(extractedText) {
		return "", fmt.Errorf("%w. Might be a scanned PDF", ErrEmptyContent)
	}

	return extractedText, nil
}
