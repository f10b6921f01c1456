// Package prompt builds the bounded message list sent to the completion API.
package prompt

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/BerylCAtieno/document-chat/internal/models"
)

const (
	DefaultDocumentCharLimit = 12000
	DefaultDocumentHistory   = 4
	DefaultChatHistory       = 6

	TruncationMarker = "\n[content truncated]"
)

// Mode records whether a request is grounded in documents.
type Mode string

const (
	ModeChat     Mode = "chat"
	ModeDocument Mode = "document"
)

// Limits bounds what the assembler copies into a request.
type Limits struct {
	// DocumentCharLimit caps the characters taken from each document.
	DocumentCharLimit int
	// DocumentHistory is the history window in document mode.
	DocumentHistory int
	// ChatHistory is the history window in chat mode.
	ChatHistory int
}

func DefaultLimits() Limits {
	return Limits{
		DocumentCharLimit: DefaultDocumentCharLimit,
		DocumentHistory:   DefaultDocumentHistory,
		ChatHistory:       DefaultChatHistory,
	}
}

// Request is an assembled message list ready for dispatch.
type Request struct {
	Messages []models.Message
	Mode     Mode
}

type Assembler struct {
	limits Limits
}

// NewAssembler creates an assembler. Non-positive limits fall back to the defaults.
func NewAssembler(limits Limits) *Assembler {
	defaults := DefaultLimits()
	if limits.DocumentCharLimit <= 0 {
		limits.DocumentCharLimit = defaults.DocumentCharLimit
	}
	if limits.DocumentHistory <= 0 {
		limits.DocumentHistory = defaults.DocumentHistory
	}
	if limits.ChatHistory <= 0 {
		limits.ChatHistory = defaults.ChatHistory
	}
	return &Assembler{limits: limits}
}

func (a *Assembler) Limits() Limits {
	return a.limits
}

// Assemble builds the request for newMessage. history must not already
// contain newMessage. It performs no I/O.
func (a *Assembler) Assemble(documents []models.Document, relevant bool, history []models.Message, newMessage models.Message) Request {
	if len(documents) == 0 || !relevant {
		window := tail(history, a.limits.ChatHistory)
		messages := make([]models.Message, 0, len(window)+1)
		messages = append(messages, window...)
		messages = append(messages, newMessage)
		return Request{Messages: messages, Mode: ModeChat}
	}

	window := tail(history, a.limits.DocumentHistory)
	messages := make([]models.Message, 0, len(window)+2)
	messages = append(messages, models.Message{
		Role:    models.RoleSystem,
		Content: a.systemPrompt(documents, newMessage.Content),
	})
	for _, m := range window {
		if m.Role == models.RoleSystem {
			continue
		}
		messages = append(messages, m)
	}
	messages = append(messages, newMessage)

	return Request{Messages: messages, Mode: ModeDocument}
}

func (a *Assembler) systemPrompt(documents []models.Document, question string) string {
	var b strings.Builder

	b.WriteString("You are an AI assistant with access to documents. Answer based on these documents.\n\n")
	fmt.Fprintf(&b, "AVAILABLE DOCUMENTS (%d):\n\n", len(documents))

	for i, doc := range documents {
		fmt.Fprintf(&b, "\n=== DOCUMENT %d: %s ===\n%s\n\n", i+1, doc.Name, Truncate(doc.Content, a.limits.DocumentCharLimit))
	}

	fmt.Fprintf(&b, "\nQUESTION: %s\n\n", question)
	b.WriteString("Provide detailed answers based on documents. If not found, say so clearly.")

	return b.String()
}

// Truncate returns content cut to limit characters with TruncationMarker
// appended, or content itself when it fits.
func Truncate(content string, limit int) string {
	if utf8.RuneCountInString(content) <= limit {
		return content
	}
	return string([]rune(content)[:limit]) + TruncationMarker
}

func tail(messages []models.Message, n int) []models.Message {
	if len(messages) <= n {
		return messages
	}
	return messages[len(messages)-n:]
}
