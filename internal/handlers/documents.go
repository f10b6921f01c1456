package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/BerylCAtieno/document-chat/internal/models"
	"github.com/BerylCAtieno/document-chat/internal/services"
	"github.com/BerylCAtieno/document-chat/internal/utils"
)

// MaxFilesPerUpload bounds one multipart upload batch.
const MaxFilesPerUpload = 10

type DocumentHandler struct {
	session     services.ChatSession
	logger      *utils.Logger
	maxFileSize int64
}

func NewDocumentHandler(session services.ChatSession, maxFileSize int64, logger *utils.Logger) *DocumentHandler {
	return &DocumentHandler{
		session:     session,
		logger:      logger,
		maxFileSize: maxFileSize,
	}
}

// UploadDocuments accepts one or more files in the multipart field "files"
// (or "file") and processes them in the order they were sent.
func (h *DocumentHandler) UploadDocuments(w http.ResponseWriter, r *http.Request) {
	limit := h.maxFileSize*MaxFilesPerUpload + 1<<20
	r.Body = http.MaxBytesReader(w, r.Body, limit)

	if err := r.ParseMultipartForm(h.maxFileSize); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			respondError(w, h.logger, utils.NewBadRequestError("Upload exceeds size limit"))
			return
		}
		respondError(w, h.logger, utils.NewBadRequestError("Invalid form data"))
		return
	}

	headers := append(r.MultipartForm.File["files"], r.MultipartForm.File["file"]...)
	if len(headers) == 0 {
		respondError(w, h.logger, utils.NewBadRequestError("No file provided"))
		return
	}
	if len(headers) > MaxFilesPerUpload {
		respondError(w, h.logger, utils.NewBadRequestError("Too many files in one upload"))
		return
	}

	files := make([]models.FileHandle, 0, len(headers))
	for _, header := range headers {
		file, err := readPart(header, h.maxFileSize)
		if err != nil {
			h.logger.Error("Failed to read uploaded file", "filename", header.Filename, "error", err)
			respondError(w, h.logger, utils.NewInternalError("Failed to read file"))
			return
		}
		files = append(files, file)
	}

	notes, err := h.session.Upload(r.Context(), files)
	if err != nil {
		respondError(w, h.logger, mapSessionError(err))
		return
	}

	respondJSON(w, h.logger, http.StatusOK, models.UploadResponse{
		Documents:     summaries(h.session.Documents()),
		Notifications: notes,
	})
}

func (h *DocumentHandler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, h.logger, http.StatusOK, summaries(h.session.Documents()))
}

func (h *DocumentHandler) RemoveDocument(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if id == "" {
		respondError(w, h.logger, utils.NewBadRequestError("Document ID is required"))
		return
	}

	respondJSON(w, h.logger, http.StatusOK, h.session.RemoveDocument(id))
}

func (h *DocumentHandler) ClearDocuments(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, h.logger, http.StatusOK, h.session.ClearDocuments())
}

// readPart reads at most limit+1 bytes so the session can reject oversized files.
func readPart(header *multipart.FileHeader, limit int64) (models.FileHandle, error) {
	f, err := header.Open()
	if err != nil {
		return models.FileHandle{}, err
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, limit+1))
	if err != nil {
		return models.FileHandle{}, err
	}

	return models.FileHandle{
		Name:     header.Filename,
		Data:     data,
		MIMEType: header.Header.Get("Content-Type"),
	}, nil
}

func summaries(docs []models.Document) []models.DocumentSummary {
	out := make([]models.DocumentSummary, len(docs))
	for i, d := range docs {
		out[i] = d.Summary()
	}
	return out
}

func mapSessionError(err error) error {
	switch {
	case errors.Is(err, services.ErrBusy):
		return utils.NewConflictError("Another request is still being processed")
	case errors.Is(err, services.ErrEmptyMessage):
		return utils.NewBadRequestError("Message content is required")
	default:
		return err
	}
}

// NotFound renders unknown routes as a JSON error.
func NotFound(logger *utils.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondError(w, logger, utils.NewNotFoundError("Route not found"))
	}
}

func respondJSON(w http.ResponseWriter, logger *utils.Logger, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("Failed to encode JSON response", "error", err)
	}
}

func respondError(w http.ResponseWriter, logger *utils.Logger, err error) {
	var status int
	var message string

	var appErr *utils.AppError
	if errors.As(err, &appErr) {
		status = appErr.StatusCode
		message = appErr.Message
	} else {
		status = http.StatusInternalServerError
		message = "Internal server error"
	}

	logger.Error("Request error", "status", status, "error", message)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
