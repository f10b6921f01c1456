package extractor

import (
	"context"
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/BerylCAtieno/document-chat/internal/models"
)

type TXTExtractor struct{}

func NewTXTExtractor() *TXTExtractor {
	return &TXTExtractor{}
}

// Extract decodes the file and returns its text unchanged.
func (e *TXTExtractor) Extract(_ context.Context, data []byte) (string, error) {
	text, err := decodeText(data)
	if err != nil {
		return "", parseError(models.DocumentTypeText, fmt.Errorf("decode: %w", err))
	}

	if tooShort(text) {
		return "", fmt.Errorf("%w in text file", ErrEmptyContent)
	}

	return text, nil
}

func decodeText(data []byte) (string, error) {
	if len(data) >= 3 && data[0] == 0xEF && data[1] == 0xBB && data[2] == 0xBF {
		return string(data[3:]), nil
	}

	if len(data) >= 2 && data[0] == 0xFF && data[1] == 0xFE {
		decoder := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder()
		decoded, _, err := transform.Bytes(decoder, data)
		if err != nil {
			return "", err
		}
		return string(decoded), nil
	}

	if len(data) >= 2 && data[0] == 0xFE && data[1] == 0xFF {
		decoder := unicode.UTF16(unicode.BigEndian, unicode.UseBOM).NewDecoder()
		decoded, _, err := transform.Bytes(decoder, data)
		if err != nil {
			return "", err
		}
		return string(decoded), nil
	}

	if utf8.Valid(data) {
		return string(data), nil
	}

	decoded, _, err := transform.Bytes(charmap.Windows1252.NewDecoder(), data)
	if err != nil {
		return "", err
	}
	return string(decoded), nil
}
