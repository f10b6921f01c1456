package extractor

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/BerylCAtieno/document-chat/internal/models"
)

const documentPart = "word/document.xml"

type DOCXExtractor struct{}

func NewDOCXExtractor() *DOCXExtractor {
	return &DOCXExtractor{}
}

// Extract returns the raw text of the main document part. Paragraphs are
// separated by a blank line, tabs and breaks are kept.
func (e *DOCXExtractor) Extract(_ context.Context, data []byte) (string, error) {
	zipReader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", parseError(models.DocumentTypeWord, fmt.Errorf("read as ZIP: %w", err))
	}

	var documentFile *zip.File
	for _, file := range zipReader.File {
		if file.Name == documentPart {
			documentFile = file
			break
		}
	}

	if documentFile == nil {
		return "", parseError(models.DocumentTypeWord, errors.New("document.xml not found"))
	}

	xmlFile, err := documentFile.Open()
	if err != nil {
		return "", parseError(models.DocumentTypeWord, fmt.Errorf("open document.xml: %w", err))
	}
	defer xmlFile.Close()

	text, err := rawText(xmlFile)
	if err != nil {
		return "", parseError(models.DocumentTypeWord, fmt.Errorf("parse document.xml: %w", err))
	}

	text = strings.TrimSpace(text)

	if tooShort(text) {
		return "", fmt.Errorf("%w in Word file", ErrEmptyContent)
	}

	return text, nil
}

// rawText walks the WordprocessingML token stream in document order.
func rawText(r io.Reader) (string, error) {
	decoder := xml.NewDecoder(r)

	var textBuilder strings.Builder
	inText := false

	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}

		switch t := token.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				textBuilder.WriteString("\t")
			case "br", "cr":
				textBuilder.WriteString("\n")
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				textBuilder.WriteString("\n\n")
			}
		case xml.CharData:
			if inText {
				textBuilder.Write(t)
			}
		}
	}

	return textBuilder.String(), nil
}
