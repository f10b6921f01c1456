package repository

import (
	"sync"

	"github.com/BerylCAtieno/document-chat/internal/models"
)

// Greeting opens every new conversation.
const Greeting = "Where should we begin! ✨"

// ConversationLog is an append-only, session-scoped message log.
type ConversationLog struct {
	mu       sync.RWMutex
	messages []models.Message
}

// NewConversationLog returns a log seeded with the given messages.
func NewConversationLog(seed ...models.Message) *ConversationLog {
	l := &ConversationLog{}
	l.messages = append(l.messages, seed...)
	return l
}

// NewSessionLog returns a log that starts with the assistant greeting.
func NewSessionLog() *ConversationLog {
	return NewConversationLog(models.Message{Role: models.RoleAssistant, Content: Greeting})
}

func (l *ConversationLog) Append(msg models.Message) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = append(l.messages, msg)
}

// Messages returns a snapshot of the whole log.
func (l *ConversationLog) Messages() []models.Message {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]models.Message, len(l.messages))
	copy(out, l.messages)
	return out
}

// Last returns a copy of at most n trailing messages.
func (l *ConversationLog) Last(n int) []models.Message {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if n <= 0 {
		return []models.Message{}
	}
	start := len(l.messages) - n
	if start < 0 {
		start = 0
	}
	out := make([]models.Message, len(l.messages)-start)
	copy(out, l.messages[start:])
	return out
}
