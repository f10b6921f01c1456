package router

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BerylCAtieno/document-chat/internal/config"
	"github.com/BerylCAtieno/document-chat/internal/models"
	"github.com/BerylCAtieno/document-chat/internal/prompt"
	"github.com/BerylCAtieno/document-chat/internal/services"
	"github.com/BerylCAtieno/document-chat/internal/utils"
)

type stubClient struct {
	mode prompt.Mode
}

func (c *stubClient) Complete(_ context.Context, messages []models.Message, mode prompt.Mode) (string, error) {
	c.mode = mode
	return "reply to: " + messages[len(messages)-1].Content, nil
}

type uploadFile struct {
	name        string
	contentType string
	content     string
}

func setup(t *testing.T, mutate func(*config.Config)) (http.Handler, *stubClient) {
	t.Helper()

	cfg := config.Default()
	cfg.APIKey = "test-key"
	if mutate != nil {
		mutate(cfg)
	}

	client := &stubClient{}
	session := services.NewSessionWithDeps(cfg, utils.NopLogger(), services.Deps{Client: client})
	return NewRouter(session, cfg, utils.NopLogger()), client
}

func multipartBody(t *testing.T, field string, files ...uploadFile) (*bytes.Buffer, string) {
	t.Helper()

	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	for _, f := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="`+field+`"; filename="`+f.name+`"`)
		h.Set("Content-Type", f.contentType)
		part, err := mw.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write([]byte(f.content))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return body, mw.FormDataContentType()
}

func do(h http.Handler, method, path string, body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
	if body == nil {
		body = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func upload(t *testing.T, h http.Handler, files ...uploadFile) models.UploadResponse {
	t.Helper()

	body, ct := multipartBody(t, "files", files...)
	rec := do(h, http.MethodPost, "/api/v1/documents", body, ct)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp models.UploadResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestHealth(t *testing.T) {
	h, _ := setup(t, nil)

	rec := do(h, http.MethodGet, "/api/v1/health", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"healthy"}`, rec.Body.String())
}

func TestUploadListRemoveClear(t *testing.T) {
	h, _ := setup(t, nil)

	resp := upload(t, h,
		uploadFile{name: "notes.txt", contentType: "text/plain", content: "twenty characters!!!"},
		uploadFile{name: "photo.png", contentType: "image/png", content: "binary"},
		uploadFile{name: "more.txt", contentType: "text/plain", content: "another useful text file"},
	)

	require.Len(t, resp.Notifications, 3)
	assert.Equal(t, models.SeveritySuccess, resp.Notifications[0].Severity)
	assert.Equal(t, models.SeverityError, resp.Notifications[1].Severity)
	assert.Equal(t, models.SeveritySuccess, resp.Notifications[2].Severity)

	require.Len(t, resp.Documents, 2)
	assert.Equal(t, "notes.txt", resp.Documents[0].Name)
	assert.Equal(t, models.DocumentTypeText, resp.Documents[0].Type)
	assert.Equal(t, 20, resp.Documents[0].CharCount)
	assert.Equal(t, "0.02 KB", resp.Documents[0].Size)

	rec := do(h, http.MethodDelete, "/api/v1/documents/"+resp.Documents[0].ID, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(h, http.MethodDelete, "/api/v1/documents/unknown-id", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var list []models.DocumentSummary
	rec = do(h, http.MethodGet, "/api/v1/documents", nil, "")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, "more.txt", list[0].Name)

	rec = do(h, http.MethodDelete, "/api/v1/documents", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "All documents cleared")

	rec = do(h, http.MethodGet, "/api/v1/documents", nil, "")
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestUpload_SingleFileField(t *testing.T) {
	h, _ := setup(t, nil)

	body, ct := multipartBody(t, "file", uploadFile{name: "a.txt", contentType: "text/plain", content: "single file field"})
	rec := do(h, http.MethodPost, "/api/v1/documents", body, ct)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "a.txt uploaded successfully!")
}

func TestUpload_NoFiles(t *testing.T) {
	h, _ := setup(t, nil)

	body, ct := multipartBody(t, "files")
	rec := do(h, http.MethodPost, "/api/v1/documents", body, ct)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"No file provided"}`, rec.Body.String())
}

func TestUpload_InvalidForm(t *testing.T) {
	h, _ := setup(t, nil)

	rec := do(h, http.MethodPost, "/api/v1/documents", bytes.NewBufferString("plain body"), "text/plain")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSendMessage_DocumentMode(t *testing.T) {
	h, client := setup(t, nil)
	upload(t, h, uploadFile{name: "policy.txt", contentType: "text/plain", content: "Refunds within 30 days."})

	rec := do(h, http.MethodPost, "/api/v1/messages",
		bytes.NewBufferString(`{"content":"What does the document say about refunds?"}`), "application/json")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.SendResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "document", resp.Mode)
	assert.Equal(t, models.RoleAssistant, resp.Reply.Role)
	assert.Equal(t, "reply to: What does the document say about refunds?", resp.Reply.Content)
	assert.Equal(t, prompt.ModeDocument, client.mode)

	var conv []models.Message
	rec = do(h, http.MethodGet, "/api/v1/messages", nil, "")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &conv))
	assert.Len(t, conv, 3)
}

func TestSendMessage_BadRequests(t *testing.T) {
	h, _ := setup(t, nil)

	rec := do(h, http.MethodPost, "/api/v1/messages", bytes.NewBufferString(`{`), "application/json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(h, http.MethodPost, "/api/v1/messages", bytes.NewBufferString(`{"content":"   "}`), "application/json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"Message content is required"}`, rec.Body.String())
}

func TestSendMessage_RateLimited(t *testing.T) {
	h, _ := setup(t, func(cfg *config.Config) { cfg.RateLimitPerMinute = 1 })

	first := do(h, http.MethodPost, "/api/v1/messages", bytes.NewBufferString(`{"content":"hello"}`), "application/json")
	second := do(h, http.MethodPost, "/api/v1/messages", bytes.NewBufferString(`{"content":"hello"}`), "application/json")

	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
}

func TestUnknownRoute(t *testing.T) {
	h, _ := setup(t, nil)

	rec := do(h, http.MethodGet, "/api/v1/nothing-here", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"Route not found"}`, rec.Body.String())
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestPreflight(t *testing.T) {
	h, _ := setup(t, nil)

	rec := do(h, http.MethodOptions, "/api/v1/documents", nil, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.True(t, strings.Contains(rec.Header().Get("Access-Control-Allow-Methods"), "DELETE"))
}
