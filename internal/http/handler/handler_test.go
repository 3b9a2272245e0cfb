package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"pdfdrop/internal/model"
	"pdfdrop/internal/service"
	serviceMocks "pdfdrop/internal/service/mocks"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// buildUpload constructs a multipart body with a single file part.
func buildUpload(t *testing.T, field, filename, contentType string, content []byte) (*bytes.Buffer, string) {
	t.Helper()

	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, field, filename))
	h.Set("Content-Type", contentType)

	part, err := w.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	return body, w.FormDataContentType()
}

func TestHealth(t *testing.T) {
	app := fiber.New()
	app.Get("/api/health", Health())

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	resp, _ := app.Test(req)

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]bool
	json.NewDecoder(resp.Body).Decode(&body)
	assert.True(t, body["ok"])
}

func TestUploadDocument(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockDocumentService)
		app := fiber.New()
		app.Post("/api/upload", UploadDocument(mockSvc, nil))

		content := bytes.Repeat([]byte("x"), 10240)
		doc := &model.Document{
			ID:           "abc123",
			OriginalName: "report.pdf",
			Size:         10240,
			UploadedAt:   time.Now().UTC(),
		}
		mockSvc.On("Ingest", mock.Anything, mock.Anything, "report.pdf", "application/pdf", int64(10240)).
			Return(doc, nil).Once()

		body, ct := buildUpload(t, "file", "report.pdf", "application/pdf", content)
		req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
		req.Header.Set("Content-Type", ct)

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var res struct {
			OK   bool           `json:"ok"`
			File model.Document `json:"file"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&res))
		assert.True(t, res.OK)
		assert.Equal(t, "abc123", res.File.ID)
		assert.Equal(t, "report.pdf", res.File.OriginalName)
		assert.Equal(t, int64(10240), res.File.Size)
		mockSvc.AssertExpectations(t)
	})

	t.Run("missing file field", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockDocumentService)
		app := fiber.New()
		app.Post("/api/upload", UploadDocument(mockSvc, nil))

		req := httptest.NewRequest(http.MethodPost, "/api/upload", strings.NewReader(""))
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

		var body map[string]string
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "No file uploaded", body["error"])
		mockSvc.AssertNotCalled(t, "Ingest", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("service rejections map to wire errors", func(t *testing.T) {
		tests := []struct {
			name        string
			svcErr      error
			wantStatus  int
			wantMessage string
		}{
			{"unsupported type", service.ErrUnsupportedType, http.StatusBadRequest, "Only PDF files are allowed"},
			{"too large", service.ErrTooLarge, http.StatusBadRequest, "File too large"},
			{"no file", service.ErrNoFile, http.StatusBadRequest, "No file uploaded"},
			{"unexpected failure", errors.New("disk on fire"), http.StatusInternalServerError, "Upload failed"},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				mockSvc := new(serviceMocks.MockDocumentService)
				app := fiber.New()
				app.Post("/api/upload", UploadDocument(mockSvc, nil))

				mockSvc.On("Ingest", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
					Return(nil, tt.svcErr).Once()

				body, ct := buildUpload(t, "file", "notes.txt", "text/plain", []byte("hi"))
				req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
				req.Header.Set("Content-Type", ct)

				resp, _ := app.Test(req)
				assert.Equal(t, tt.wantStatus, resp.StatusCode)

				var res map[string]string
				json.NewDecoder(resp.Body).Decode(&res)
				assert.Equal(t, tt.wantMessage, res["error"])
			})
		}
	})
}

func TestUploadRequiresAdmin(t *testing.T) {
	const secret = "admin-secret"

	mockSvc := new(serviceMocks.MockDocumentService)
	app := fiber.New()
	RegisterRoutes(app, secret, mockSvc, nil)

	t.Run("invalid credential rejected before ingestion", func(t *testing.T) {
		body, ct := buildUpload(t, "file", "report.pdf", "application/pdf", []byte("pdf"))
		req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
		req.Header.Set("Content-Type", ct)
		req.Header.Set(fiber.HeaderAuthorization, "Bearer wrong")

		resp, _ := app.Test(req)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

		var res map[string]string
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "Unauthorized", res["error"])
		mockSvc.AssertNotCalled(t, "Ingest", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("valid credential passes the gate", func(t *testing.T) {
		doc := &model.Document{ID: "abc", OriginalName: "report.pdf", Size: 3}
		mockSvc.On("Ingest", mock.Anything, mock.Anything, "report.pdf", "application/pdf", int64(3)).
			Return(doc, nil).Once()

		body, ct := buildUpload(t, "file", "report.pdf", "application/pdf", []byte("pdf"))
		req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
		req.Header.Set("Content-Type", ct)
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+secret)

		resp, _ := app.Test(req)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})
}

func TestListFiles(t *testing.T) {
	t.Run("newest first", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockDocumentService)
		app := fiber.New()
		app.Get("/api/files", ListFiles(mockSvc))

		docs := []model.Document{
			{ID: "newer", OriginalName: "b.pdf", Size: 2},
			{ID: "older", OriginalName: "a.pdf", Size: 1},
		}
		mockSvc.On("List", mock.Anything).Return(docs, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/api/files", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var got []model.Document
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
		require.Len(t, got, 2)
		assert.Equal(t, "newer", got[0].ID)
		assert.Equal(t, "older", got[1].ID)
	})

	t.Run("empty list is an empty array", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockDocumentService)
		app := fiber.New()
		app.Get("/api/files", ListFiles(mockSvc))

		mockSvc.On("List", mock.Anything).Return([]model.Document{}, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/api/files", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		raw, _ := io.ReadAll(resp.Body)
		assert.Equal(t, "[]", strings.TrimSpace(string(raw)))
	})
}

func TestDownloadFile(t *testing.T) {
	t.Run("success streams attachment", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockDocumentService)
		app := fiber.New()
		app.Get("/api/files/:id", DownloadFile(mockSvc))

		content := "raw pdf bytes"
		doc := &model.Document{
			ID:           "abc123",
			OriginalName: `my "quoted" report.pdf`,
			Size:         int64(len(content)),
		}
		mockSvc.On("Fetch", mock.Anything, "abc123").
			Return(doc, io.NopCloser(strings.NewReader(content)), nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/api/files/abc123", nil)
		resp, err := app.Test(req)
		require.NoError(t, err)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "application/pdf", resp.Header.Get(fiber.HeaderContentType))
		// Double quotes in the display name are stripped from the header.
		assert.Equal(t, `attachment; filename="my quoted report.pdf"`, resp.Header.Get(fiber.HeaderContentDisposition))

		got, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.Equal(t, content, string(got))
	})

	t.Run("unknown id", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockDocumentService)
		app := fiber.New()
		app.Get("/api/files/:id", DownloadFile(mockSvc))

		mockSvc.On("Fetch", mock.Anything, "doesnotexist").
			Return(nil, nil, service.ErrNotFound).Once()

		req := httptest.NewRequest(http.MethodGet, "/api/files/doesnotexist", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		raw, _ := io.ReadAll(resp.Body)
		assert.Equal(t, "Not found", string(raw))
	})
}
