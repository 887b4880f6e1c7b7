package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"folio/internal/domain"
	models "folio/internal/domain/models/docgen"
	docgenSvc "folio/internal/domain/services/docgen"
	"folio/internal/httputil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testUserID = "11111111-1111-1111-1111-111111111111"
	testDocID  = "33333333-3333-3333-3333-333333333333"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newRequest builds an authenticated request with optional path values
func newRequest(method, target string, body io.Reader, pathValues map[string]string) *http.Request {
	r := httptest.NewRequest(method, target, body)
	for k, v := range pathValues {
		r.SetPathValue(k, v)
	}
	return httputil.WithIdentity(r, httputil.Identity{UserID: testUserID, Email: "jane@example.com"})
}

func decodeProblem(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
	var problem map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	return problem
}

type stubTemplates struct {
	docgenSvc.TemplateService
	lastUpdate *docgenSvc.UpdateTemplateRequest
	lastImport *docgenSvc.ImportTemplateRequest
	err        error
}

func (s *stubTemplates) UpdateTemplate(_ context.Context, _, id string, req *docgenSvc.UpdateTemplateRequest) (*models.Template, error) {
	s.lastUpdate = req
	if s.err != nil {
		return nil, s.err
	}
	return &models.Template{ID: id}, nil
}

func (s *stubTemplates) ImportTemplate(_ context.Context, req *docgenSvc.ImportTemplateRequest) (*models.Template, error) {
	s.lastImport = req
	if s.err != nil {
		return nil, s.err
	}
	return &models.Template{ID: "new", Name: req.Name}, nil
}

type stubGenerator struct {
	lastGenerate *docgenSvc.GenerateRequest
	lastGallery  *docgenSvc.GenerateFromTemplateRequest
	err          error
}

func (s *stubGenerator) Generate(_ context.Context, req *docgenSvc.GenerateRequest) (*models.Document, error) {
	s.lastGenerate = req
	if s.err != nil {
		return nil, s.err
	}
	return &models.Document{ID: testDocID, Content: "generated"}, nil
}

func (s *stubGenerator) GenerateFromTemplate(_ context.Context, req *docgenSvc.GenerateFromTemplateRequest) (*models.Document, error) {
	s.lastGallery = req
	if s.err != nil {
		return nil, s.err
	}
	return &models.Document{ID: testDocID}, nil
}

type stubDocuments struct {
	docgenSvc.DocumentService
	lastFormat docgenSvc.ExportFormat
	err        error
}

func (s *stubDocuments) ExportDocument(_ context.Context, _, _ string, format docgenSvc.ExportFormat) (*docgenSvc.ExportResult, error) {
	s.lastFormat = format
	if s.err != nil {
		return nil, s.err
	}
	return &docgenSvc.ExportResult{Filename: "Proposal-2024.txt", ContentType: "text/plain; charset=utf-8", Body: []byte("hello")}, nil
}

type stubVersions struct {
	docgenSvc.VersionService
	lastNotes *string
	snapshots int
}

func (s *stubVersions) Snapshot(_ context.Context, _, documentID string, notes *string) (*models.DocumentVersion, error) {
	s.snapshots++
	s.lastNotes = notes
	return &models.DocumentVersion{DocumentID: documentID, VersionNumber: s.snapshots}, nil
}

func TestHandleError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		extra  string
	}{
		{"field validation", &domain.ValidationError{Field: "name", Message: "required"}, http.StatusBadRequest, "field"},
		{"wrapped validation", fmt.Errorf("%w: name: cannot be blank", domain.ErrValidation), http.StatusBadRequest, ""},
		{"not found", fmt.Errorf("document x: %w", domain.ErrNotFound), http.StatusNotFound, ""},
		{"unauthorized", domain.ErrUnauthorized, http.StatusUnauthorized, ""},
		{"forbidden", domain.ErrForbidden, http.StatusForbidden, ""},
		{"conflict", &domain.ConflictError{Message: "exists", ResourceType: "template", ResourceID: "t1"}, http.StatusConflict, "resource_id"},
		{"unexpected", errors.New("pq: connection reset"), http.StatusInternalServerError, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			handleError(rec, tt.err)

			assert.Equal(t, tt.status, rec.Code)
			problem := decodeProblem(t, rec)
			if tt.extra != "" {
				assert.Contains(t, problem, tt.extra)
			}
			if tt.status == http.StatusInternalServerError {
				assert.Equal(t, "internal server error", problem["detail"], "internal details are not leaked")
			}
		})
	}
}

func TestUpdateTemplate_DescriptionTriState(t *testing.T) {
	tests := []struct {
		body    string
		present bool
		isNil   bool
	}{
		{`{"name":"x"}`, false, true},
		{`{"description":null}`, true, true},
		{`{"description":"new"}`, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.body, func(t *testing.T) {
			svc := &stubTemplates{}
			h := NewTemplateHandler(svc, &stubGenerator{}, testLogger())

			rec := httptest.NewRecorder()
			h.UpdateTemplate(rec, newRequest(http.MethodPatch, "/api/templates/x", bytes.NewBufferString(tt.body),
				map[string]string{"id": testDocID}))

			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tt.present, svc.lastUpdate.Description.Present)
			assert.Equal(t, tt.isNil, svc.lastUpdate.Description.Value == nil)
		})
	}
}

func TestTemplateHandler_RejectsMalformedID(t *testing.T) {
	svc := &stubTemplates{}
	h := NewTemplateHandler(svc, &stubGenerator{}, testLogger())

	rec := httptest.NewRecorder()
	h.UpdateTemplate(rec, newRequest(http.MethodPatch, "/api/templates/abc", bytes.NewBufferString(`{}`),
		map[string]string{"id": "abc"}))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Nil(t, svc.lastUpdate)
}

func TestImportTemplate(t *testing.T) {
	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	part, err := form.CreateFormFile("file", "retainer.md")
	require.NoError(t, err)
	_, err = part.Write([]byte("Dear {{client_name}}"))
	require.NoError(t, err)
	require.NoError(t, form.WriteField("type", "CONTRACT"))
	require.NoError(t, form.Close())

	svc := &stubTemplates{}
	h := NewTemplateHandler(svc, &stubGenerator{}, testLogger())

	r := newRequest(http.MethodPost, "/api/templates/import", &body, nil)
	r.Header.Set("Content-Type", form.FormDataContentType())
	rec := httptest.NewRecorder()
	h.ImportTemplate(rec, r)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "retainer.md", svc.lastImport.Filename)
	assert.Equal(t, "Dear {{client_name}}", string(svc.lastImport.Data))
	assert.Equal(t, models.TemplateTypeContract, svc.lastImport.Type)
	assert.Equal(t, testUserID, svc.lastImport.UserID)

	t.Run("missing file", func(t *testing.T) {
		var empty bytes.Buffer
		form := multipart.NewWriter(&empty)
		require.NoError(t, form.WriteField("name", "x"))
		require.NoError(t, form.Close())

		r := newRequest(http.MethodPost, "/api/templates/import", &empty, nil)
		r.Header.Set("Content-Type", form.FormDataContentType())
		rec := httptest.NewRecorder()
		h.ImportTemplate(rec, r)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestGenerateFromTemplate_UsesPathID(t *testing.T) {
	gen := &stubGenerator{}
	h := NewTemplateHandler(&stubTemplates{}, gen, testLogger())

	rec := httptest.NewRecorder()
	h.GenerateFromTemplate(rec, newRequest(http.MethodPost, "/api/templates/x/documents",
		bytes.NewBufferString(`{"templateId":"ignored","variableValues":{"total":500}}`),
		map[string]string{"id": testDocID}))

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, testDocID, gen.lastGallery.TemplateID)
	assert.Equal(t, testUserID, gen.lastGallery.UserID)
	assert.Equal(t, models.Number(500), gen.lastGallery.VariableValues["total"])
}

func TestGenerateDocument(t *testing.T) {
	gen := &stubGenerator{}
	h := NewDocumentHandler(&stubDocuments{}, gen, testLogger())

	rec := httptest.NewRecorder()
	h.GenerateDocument(rec, newRequest(http.MethodPost, "/api/documents/generate",
		bytes.NewBufferString(`{"templateId":"t1","name":"Invoice","createVersion":true}`), nil))

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.True(t, gen.lastGenerate.CreateVersion)
	assert.Equal(t, testUserID, gen.lastGenerate.UserID)

	gen.err = &domain.ValidationError{Field: "variableValues.total", Message: "total must be an amount"}
	rec = httptest.NewRecorder()
	h.GenerateDocument(rec, newRequest(http.MethodPost, "/api/documents/generate",
		bytes.NewBufferString(`{"templateId":"t1","name":"Invoice"}`), nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "variableValues.total", decodeProblem(t, rec)["field"])

	rec = httptest.NewRecorder()
	h.GenerateDocument(rec, newRequest(http.MethodPost, "/api/documents/generate", bytes.NewBufferString(`{`), nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestExportDocument(t *testing.T) {
	docs := &stubDocuments{}
	h := NewDocumentHandler(docs, &stubGenerator{}, testLogger())

	rec := httptest.NewRecorder()
	h.ExportDocument(rec, newRequest(http.MethodGet, "/api/documents/x/export?format=text", nil,
		map[string]string{"id": testDocID}))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, docgenSvc.ExportFormatText, docs.lastFormat)
	assert.Equal(t, `attachment; filename="Proposal-2024.txt"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "5", rec.Header().Get("Content-Length"))
	assert.Equal(t, "hello", rec.Body.String())

	rec = httptest.NewRecorder()
	h.ExportDocument(rec, newRequest(http.MethodGet, "/api/documents/x/export", nil, map[string]string{"id": testDocID}))
	assert.Equal(t, docgenSvc.ExportFormatHTML, docs.lastFormat, "html is the default format")
}

func TestCreateVersion_OptionalBody(t *testing.T) {
	versions := &stubVersions{}
	h := NewVersionHandler(versions, testLogger())

	rec := httptest.NewRecorder()
	h.CreateVersion(rec, newRequest(http.MethodPost, "/api/documents/x/versions", nil, map[string]string{"id": testDocID}))
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Nil(t, versions.lastNotes)

	rec = httptest.NewRecorder()
	h.CreateVersion(rec, newRequest(http.MethodPost, "/api/documents/x/versions",
		bytes.NewBufferString(`{"changeNotes":"sent to client"}`), map[string]string{"id": testDocID}))
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "sent to client", *versions.lastNotes)
}

type fakePinger struct{ err error }

func (p fakePinger) Ping(context.Context) error { return p.err }

func TestHealth(t *testing.T) {
	rec := httptest.NewRecorder()
	Health(fakePinger{})(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","database":"ok"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	Health(fakePinger{err: errors.New("down")})(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
