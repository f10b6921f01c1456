package extractor

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jung-kurt/gofpdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BerylCAtieno/document-chat/internal/models"
)

func buildPDF(t *testing.T, pages ...string) []byte {
	t.Helper()

	doc := gofpdf.New("P", "mm", "A4", "")
	doc.SetCompression(false)
	doc.SetFont("Arial", "", 12)
	for _, text := range pages {
		doc.AddPage()
		if text != "" {
			doc.Cell(40, 10, text)
		}
	}

	var buf bytes.Buffer
	require.NoError(t, doc.Output(&buf))
	return buf.Bytes()
}

func buildDOCX(t *testing.T, documentXML string) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("[Content_Types].xml")
	require.NoError(t, err)
	_, err = w.Write([]byte(`<?xml version="1.0"?><Types/>`))
	require.NoError(t, err)

	if documentXML != "" {
		w, err = zw.Create(documentPart)
		require.NoError(t, err)
		_, err = w.Write([]byte(documentXML))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func wordBody(paragraphs ...string) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
	b.WriteString(`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`)
	for _, p := range paragraphs {
		b.WriteString(`<w:p><w:r><w:t>` + p + `</w:t></w:r></w:p>`)
	}
	b.WriteString(`</w:body></w:document>`)
	return b.String()
}

func TestPDFExtractor(t *testing.T) {
	data := buildPDF(t, "Refunds are accepted within thirty days", "Shipping takes five business days")

	text, err := NewPDFExtractor().Extract(context.Background(), data)
	require.NoError(t, err)

	lines := strings.Split(text, "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "Refunds are accepted within thirty days")
	assert.Contains(t, lines[1], "Shipping takes five business days")
}

func TestPDFExtractor_NoText(t *testing.T) {
	data := buildPDF(t, "")

	_, err := NewPDFExtractor().Extract(context.Background(), data)
	assert.ErrorIs(t, err, ErrEmptyContent)
	assert.Contains(t, err.Error(), "scanned PDF")
}

func TestPDFExtractor_Corrupt(t *testing.T) {
	_, err := NewPDFExtractor().Extract(context.Background(), []byte("this is not a pdf at all"))
	require.Error(t, err)

	var parseErr *ParseError
	require.True(t, errors.As(err, &parseErr))
	assert.Equal(t, models.DocumentTypePDF, parseErr.Format)
}

func TestDOCXExtractor(t *testing.T) {
	data := buildDOCX(t, wordBody("Quarterly report", "Revenue grew by ten percent"))

	text, err := NewDOCXExtractor().Extract(context.Background(), data)
	require.NoError(t, err)
	assert.Equal(t, "Quarterly report\n\nRevenue grew by ten percent", text)
}

func TestDOCXExtractor_TabsAndBreaks(t *testing.T) {
	body := `<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` +
		`<w:p><w:r><w:t>Name</w:t><w:tab/><w:t>Value</w:t><w:br/><w:t>Second line here</w:t></w:r></w:p>` +
		`</w:body></w:document>`

	text, err := NewDOCXExtractor().Extract(context.Background(), buildDOCX(t, body))
	require.NoError(t, err)
	assert.Equal(t, "Name\tValue\nSecond line here", text)
}

func TestDOCXExtractor_Errors(t *testing.T) {
	tests := []struct {
		name      string
		data      []byte
		wantParse bool
		wantEmpty bool
	}{
		{name: "not a zip", data: []byte("legacy binary .doc content"), wantParse: true},
		{name: "missing document part", data: buildDOCX(t, ""), wantParse: true},
		{name: "malformed xml", data: buildDOCX(t, "<w:document><w:body>"), wantParse: true},
		{name: "too short", data: buildDOCX(t, wordBody("Hi")), wantEmpty: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewDOCXExtractor().Extract(context.Background(), tt.data)
			require.Error(t, err)

			var parseErr *ParseError
			assert.Equal(t, tt.wantParse, errors.As(err, &parseErr))
			assert.Equal(t, tt.wantEmpty, errors.Is(err, ErrEmptyContent))
		})
	}
}

func TestTXTExtractor(t *testing.T) {
	content := "  Meeting notes:\r\n\r\nship v2 on Friday\n"

	text, err := NewTXTExtractor().Extract(context.Background(), []byte(content))
	require.NoError(t, err)
	assert.Equal(t, content, text)
}

func TestTXTExtractor_Encodings(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want string
	}{
		{
			name: "utf8 bom",
			data: append([]byte{0xEF, 0xBB, 0xBF}, []byte("hello there, world")...),
			want: "hello there, world",
		},
		{
			name: "utf16 little endian",
			data: []byte{0xFF, 0xFE, 'h', 0, 'e', 0, 'l', 0, 'l', 0, 'o', 0, ' ', 0, 't', 0, 'h', 0, 'e', 0, 'r', 0, 'e', 0},
			want: "hello there",
		},
		{
			name: "windows 1252",
			data: []byte("caf\xe9 au lait, s'il vous pla\xeet"),
			want: "café au lait, s'il vous plaît",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, err := NewTXTExtractor().Extract(context.Background(), tt.data)
			require.NoError(t, err)
			assert.Equal(t, tt.want, text)
		})
	}
}

func TestTXTExtractor_TooShort(t *testing.T) {
	for _, content := range []string{"", "short", "   nine c  ", "ααααααααα"} {
		_, err := NewTXTExtractor().Extract(context.Background(), []byte(content))
		assert.ErrorIs(t, err, ErrEmptyContent, "content %q", content)
	}

	text, err := NewTXTExtractor().Extract(context.Background(), []byte("αααααααααα"))
	require.NoError(t, err)
	assert.Equal(t, "αααααααααα", text)
}

func TestDetect(t *testing.T) {
	tests := []struct {
		filename string
		mimeType string
		want     models.DocumentType
		wantErr  error
	}{
		{filename: "report.pdf", want: models.DocumentTypePDF},
		{filename: "REPORT.PDF", mimeType: "text/plain", want: models.DocumentTypePDF},
		{filename: "letter.docx", want: models.DocumentTypeWord},
		{filename: "letter.doc", want: models.DocumentTypeWord},
		{filename: "notes.txt", mimeType: "application/pdf", want: models.DocumentTypeText},
		{filename: "scan", mimeType: "application/pdf", want: models.DocumentTypePDF},
		{filename: "upload", mimeType: "application/msword", want: models.DocumentTypeWord},
		{filename: "upload", mimeType: "application/vnd.openxmlformats-officedocument.wordprocessingml.document", want: models.DocumentTypeWord},
		{filename: "upload", mimeType: "application/x-docx", want: models.DocumentTypeWord},
		{filename: "README.md", mimeType: "text/markdown; charset=utf-8", want: models.DocumentTypeText},
		{filename: "photo.png", mimeType: "image/png", wantErr: ErrUnsupportedFormat},
		{filename: "archive.zip", wantErr: ErrUnsupportedFormat},
	}

	for _, tt := range tests {
		t.Run(tt.filename+"|"+tt.mimeType, func(t *testing.T) {
			got, err := Detect(tt.filename, tt.mimeType)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRegistry_Extract(t *testing.T) {
	r := Default()

	docType, text, err := r.Extract(context.Background(), models.FileHandle{
		Name: "notes.txt",
		Data: []byte("twenty characters!!!"),
	})
	require.NoError(t, err)
	assert.Equal(t, models.DocumentTypeText, docType)
	assert.Equal(t, "twenty characters!!!", text)
}

func TestRegistry_Unsupported(t *testing.T) {
	_, _, err := Default().Extract(context.Background(), models.FileHandle{Name: "image.png", MIMEType: "image/png"})
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestRegistry_DependencyUnavailable(t *testing.T) {
	r := NewRegistry()
	r.Register(models.DocumentTypeText, NewTXTExtractor())

	docType, _, err := r.Extract(context.Background(), models.FileHandle{Name: "scan.pdf", Data: []byte("%PDF-1.4")})
	assert.Equal(t, models.DocumentTypePDF, docType)
	assert.ErrorIs(t, err, ErrDependencyUnavailable)
}

func TestRegistry_CustomExtractor(t *testing.T) {
	r := NewRegistry()
	r.Register(models.DocumentTypeWord, ExtractorFunc(func(_ context.Context, data []byte) (string, error) {
		return strings.ToUpper(string(data)), nil
	}))

	_, text, err := r.Extract(context.Background(), models.FileHandle{Name: "a.doc", Data: []byte("legacy word text")})
	require.NoError(t, err)
	assert.Equal(t, "LEGACY WORD TEXT", text)
}
