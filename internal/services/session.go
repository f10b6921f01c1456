package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/BerylCAtieno/document-chat/internal/classifier"
	"github.com/BerylCAtieno/document-chat/internal/completion"
	"github.com/BerylCAtieno/document-chat/internal/config"
	"github.com/BerylCAtieno/document-chat/internal/extractor"
	"github.com/BerylCAtieno/document-chat/internal/models"
	"github.com/BerylCAtieno/document-chat/internal/prompt"
	"github.com/BerylCAtieno/document-chat/internal/repository"
	"github.com/BerylCAtieno/document-chat/internal/utils"
)

var (
	// ErrBusy is returned when an upload batch or a send is already running.
	ErrBusy = errors.New("another request is in progress")

	// ErrEmptyMessage is returned for blank chat input.
	ErrEmptyMessage = errors.New("message is empty")

	// ErrFileTooLarge is returned for files above the configured size limit.
	ErrFileTooLarge = errors.New("file size exceeds limit")
)

const notificationBuffer = 64

// ChatSession is the single logical thread of control behind a shell: it
// owns the document store and the conversation log.
type ChatSession interface {
	Upload(ctx context.Context, files []models.FileHandle) ([]models.Notification, error)
	RemoveDocument(id string) models.Notification
	ClearDocuments() models.Notification
	Documents() []models.Document
	Send(ctx context.Context, text string) (*models.SendResponse, error)
	Conversation() []models.Message
	Notifications() <-chan models.Notification
	DocumentsChanged() <-chan struct{}
}

type chatSession struct {
	store      repository.DocumentStore
	log        *repository.ConversationLog
	extractors *extractor.Registry
	classifier *classifier.Classifier
	assembler  *prompt.Assembler
	client     completion.Client
	logger     *utils.Logger

	maxFileSize int64

	uploadMu sync.Mutex
	sendMu   sync.Mutex

	notifications chan models.Notification
}

// Deps lets callers replace collaborators; nil fields get defaults.
type Deps struct {
	Store      repository.DocumentStore
	Log        *repository.ConversationLog
	Extractors *extractor.Registry
	Classifier *classifier.Classifier
	Assembler  *prompt.Assembler
	Client     completion.Client
}

// NewSession wires a session from cfg. It fails when the completion client
// cannot be built, e.g. without an API key.
func NewSession(cfg *config.Config, logger *utils.Logger) (ChatSession, error) {
	client, err := completion.NewClient(cfg, logger)
	if err != nil {
		return nil, err
	}
	return NewSessionWithDeps(cfg, logger, Deps{Client: client}), nil
}

func NewSessionWithDeps(cfg *config.Config, logger *utils.Logger, deps Deps) ChatSession {
	if deps.Store == nil {
		deps.Store = repository.NewDocumentStore()
	}
	if deps.Log == nil {
		deps.Log = repository.NewSessionLog()
	}
	if deps.Extractors == nil {
		deps.Extractors = extractor.Default()
	}
	if deps.Classifier == nil {
		deps.Classifier = classifier.New(cfg.Keywords...)
	}
	if deps.Assembler == nil {
		deps.Assembler = prompt.NewAssembler(prompt.Limits{
			DocumentCharLimit: cfg.DocumentCharLimit,
			DocumentHistory:   cfg.DocumentHistory,
			ChatHistory:       cfg.ChatHistory,
		})
	}

	return &chatSession{
		store:         deps.Store,
		log:           deps.Log,
		extractors:    deps.Extractors,
		classifier:    deps.Classifier,
		assembler:     deps.Assembler,
		client:        deps.Client,
		logger:        logger,
		maxFileSize:   cfg.MaxFileSize,
		notifications: make(chan models.Notification, notificationBuffer),
	}
}

// Upload extracts files one at a time in the given order. A failing file
// yields an error notification and never stops the batch.
func (s *chatSession) Upload(ctx context.Context, files []models.FileHandle) ([]models.Notification, error) {
	if !s.uploadMu.TryLock() {
		return nil, ErrBusy
	}
	defer s.uploadMu.Unlock()

	notes := make([]models.Notification, 0, len(files))
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return notes, err
		}

		doc, err := s.ingest(ctx, file)
		if err != nil {
			s.logger.Warn("Failed to add document", "filename", file.Name, "error", err)
			notes = append(notes, s.publish(models.Notification{
				Severity: models.SeverityError,
				Message:  fmt.Sprintf("%s: %v", file.Name, err),
				FileName: file.Name,
			}))
			continue
		}

		s.logger.Info("Document added",
			"doc_id", doc.ID,
			"filename", doc.Name,
			"type", string(doc.Type),
			"char_count", doc.CharCount)

		notes = append(notes, s.publish(models.Notification{
			Severity: models.SeveritySuccess,
			Message:  fmt.Sprintf("%s uploaded successfully!", file.Name),
			FileName: file.Name,
		}))
	}

	return notes, nil
}

func (s *chatSession) ingest(ctx context.Context, file models.FileHandle) (models.Document, error) {
	if s.maxFileSize > 0 && int64(len(file.Data)) > s.maxFileSize {
		return models.Document{}, fmt.Errorf("%w of %d bytes", ErrFileTooLarge, s.maxFileSize)
	}

	docType, text, err := s.extractors.Extract(ctx, file)
	if err != nil {
		return models.Document{}, err
	}

	doc := models.Document{
		ID:        utils.GenerateID(),
		Name:      file.Name,
		Content:   text,
		Size:      int64(len(file.Data)),
		CharCount: utf8.RuneCountInString(text),
		Type:      docType,
		MIMEType:  file.MIMEType,
		CreatedAt: time.Now(),
	}

	if err := s.store.Add(doc); err != nil {
		return models.Document{}, err
	}
	return doc, nil
}

func (s *chatSession) RemoveDocument(id string) models.Notification {
	if doc, ok := s.store.Get(id); ok && s.store.Remove(id) {
		s.logger.Info("Document removed", "doc_id", id, "filename", doc.Name)
	}
	return s.publish(models.Notification{Severity: models.SeverityInfo, Message: "Document removed"})
}

func (s *chatSession) ClearDocuments() models.Notification {
	s.store.Clear()
	s.logger.Info("All documents cleared")
	return s.publish(models.Notification{Severity: models.SeverityInfo, Message: "All documents cleared"})
}

func (s *chatSession) Documents() []models.Document {
	return s.store.List()
}

// Send appends text to the conversation and asks the completion API for a
// reply. Completion failures are appended as an assistant message and are
// not returned as errors.
func (s *chatSession) Send(ctx context.Context, text string) (*models.SendResponse, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyMessage
	}
	if !s.sendMu.TryLock() {
		return nil, ErrBusy
	}
	defer s.sendMu.Unlock()

	history := s.log.Last(s.historyWindow())
	userMessage := models.Message{Role: models.RoleUser, Content: text}
	s.log.Append(userMessage)

	documents := s.store.List()
	relevant := s.classifier.Classify(text, len(documents))
	req := s.assembler.Assemble(documents, relevant, history, userMessage)

	s.logger.Info("Sending message",
		"mode", string(req.Mode),
		"documents", len(documents),
		"messages", len(req.Messages))

	reply, err := s.client.Complete(ctx, req.Messages, req.Mode)
	if err != nil {
		reply = fmt.Sprintf("Error: %v", err)
	}

	assistant := models.Message{Role: models.RoleAssistant, Content: reply}
	s.log.Append(assistant)

	return &models.SendResponse{Reply: assistant, Mode: string(req.Mode)}, nil
}

// historyWindow is the most prior messages either mode can use.
func (s *chatSession) historyWindow() int {
	limits := s.assembler.Limits()
	return max(limits.DocumentHistory, limits.ChatHistory)
}

func (s *chatSession) Conversation() []models.Message {
	return s.log.Messages()
}

// Notifications streams every notification the session emits. Events are
// dropped when nobody drains the channel.
func (s *chatSession) Notifications() <-chan models.Notification {
	return s.notifications
}

// DocumentsChanged signals after the document set changes. Signals coalesce.
func (s *chatSession) DocumentsChanged() <-chan struct{} {
	return s.store.Changed()
}

func (s *chatSession) publish(n models.Notification) models.Notification {
	select {
	case s.notifications <- n:
	default:
	}
	return n
}
