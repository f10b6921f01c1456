package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/BerylCAtieno/document-chat/internal/models"
	"github.com/BerylCAtieno/document-chat/internal/services"
	"github.com/BerylCAtieno/document-chat/internal/utils"
)

const maxMessageBytes = 64 << 10

type ChatHandler struct {
	session services.ChatSession
	logger  *utils.Logger
}

func NewChatHandler(session services.ChatSession, logger *utils.Logger) *ChatHandler {
	return &ChatHandler{
		session: session,
		logger:  logger,
	}
}

// SendMessage appends the user's message and returns the assistant reply.
// Completion failures come back as a normal reply containing the error text.
func (h *ChatHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxMessageBytes)

	var req models.SendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, h.logger, utils.NewBadRequestError("Invalid JSON body"))
		return
	}

	resp, err := h.session.Send(r.Context(), req.Content)
	if err != nil {
		respondError(w, h.logger, mapSessionError(err))
		return
	}

	respondJSON(w, h.logger, http.StatusOK, resp)
}

func (h *ChatHandler) ListMessages(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, h.logger, http.StatusOK, h.session.Conversation())
}
