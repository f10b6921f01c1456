package router

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/BerylCAtieno/document-chat/internal/config"
	"github.com/BerylCAtieno/document-chat/internal/handlers"
	"github.com/BerylCAtieno/document-chat/internal/middleware"
	"github.com/BerylCAtieno/document-chat/internal/services"
	"github.com/BerylCAtieno/document-chat/internal/utils"
)

func NewRouter(session services.ChatSession, cfg *config.Config, logger *utils.Logger) http.Handler {
	r := mux.NewRouter()

	// Middlewares
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recovery(logger))
	r.NotFoundHandler = handlers.NotFound(logger)

	docHandler := handlers.NewDocumentHandler(session, cfg.MaxFileSize, logger)
	chatHandler := handlers.NewChatHandler(session, logger)

	api := r.PathPrefix("/api/v1").Subrouter()

	// Health check
	api.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	}).Methods(http.MethodGet)

	// Document endpoints
	api.HandleFunc("/documents", docHandler.ListDocuments).Methods(http.MethodGet)
	api.HandleFunc("/documents", docHandler.UploadDocuments).Methods(http.MethodPost)
	api.HandleFunc("/documents", docHandler.ClearDocuments).Methods(http.MethodDelete)
	api.HandleFunc("/documents/{id}", docHandler.RemoveDocument).Methods(http.MethodDelete)

	// Conversation endpoints
	api.HandleFunc("/messages", chatHandler.ListMessages).Methods(http.MethodGet)
	api.Handle("/messages", middleware.RateLimit(cfg.RateLimitPerMinute)(http.HandlerFunc(chatHandler.SendMessage))).
		Methods(http.MethodPost)

	// CORS sits outside the router so preflight requests skip method matching.
	return middleware.CORS()(r)
}
