package models

import (
	"fmt"
	"time"
)

// DocumentType is the detected format tag of an uploaded document.
type DocumentType string

const (
	DocumentTypePDF  DocumentType = "PDF"
	DocumentTypeWord DocumentType = "Word"
	DocumentTypeText DocumentType = "Text"
)

type Document struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	Content   string       `json:"content,omitempty"`
	Size      int64        `json:"size"`
	CharCount int          `json:"char_count"`
	Type      DocumentType `json:"type"`
	MIMEType  string       `json:"mime_type,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
}

// SizeLabel renders the byte size the way document cards show it.
func (d Document) SizeLabel() string {
	return fmt.Sprintf("%.2f KB", float64(d.Size)/1024)
}

// FileHandle is a single file handed over by a shell for extraction.
type FileHandle struct {
	Name     string
	Data     []byte
	MIMEType string
}

type DocumentSummary struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	Type      DocumentType `json:"type"`
	Size      string       `json:"size"`
	CharCount int          `json:"char_count"`
}

func (d Document) Summary() DocumentSummary {
	return DocumentSummary{
		ID:        d.ID,
		Name:      d.Name,
		Type:      d.Type,
		Size:      d.SizeLabel(),
		CharCount: d.CharCount,
	}
}

type UploadResponse struct {
	Documents     []DocumentSummary `json:"documents"`
	Notifications []Notification    `json:"notifications"`
}
