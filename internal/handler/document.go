package handler

import (
	"log/slog"
	"net/http"

	models "folio/internal/domain/models/docgen"
	docgenSvc "folio/internal/domain/services/docgen"
	"folio/internal/httputil"
)

// DocumentHandler handles document HTTP requests
type DocumentHandler struct {
	docService docgenSvc.DocumentService
	generator  docgenSvc.DocumentGenerator
	logger     *slog.Logger
}

// NewDocumentHandler creates a new document handler
func NewDocumentHandler(docService docgenSvc.DocumentService, generator docgenSvc.DocumentGenerator, logger *slog.Logger) *DocumentHandler {
	return &DocumentHandler{
		docService: docService,
		generator:  generator,
		logger:     logger,
	}
}

// ListDocuments lists the caller's documents
// GET /api/documents?status=DRAFT&client_id=...&project_id=...
func (h *DocumentHandler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)

	var filter models.DocumentFilter
	if s := r.URL.Query().Get("status"); s != "" {
		status := models.DocumentStatus(s)
		filter.Status = &status
	}

	var err error
	if filter.ClientID, err = httputil.QueryID(r, "client_id"); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if filter.ProjectID, err = httputil.QueryID(r, "project_id"); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	docs, err := h.docService.ListDocuments(r.Context(), userID, filter)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, docs)
}

// GetDocument retrieves a document
// GET /api/documents/{id}
func (h *DocumentHandler) GetDocument(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	doc, err := h.docService.GetDocument(r.Context(), userID, id)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, doc)
}

// CreateDocument creates a freestanding document
// POST /api/documents
func (h *DocumentHandler) CreateDocument(w http.ResponseWriter, r *http.Request) {
	var req docgenSvc.CreateDocumentRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.UserID = httputil.GetUserID(r)

	doc, err := h.docService.CreateDocument(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, doc)
}

// GenerateDocument generates a document from a template
// POST /api/documents/generate
func (h *DocumentHandler) GenerateDocument(w http.ResponseWriter, r *http.Request) {
	var req docgenSvc.GenerateRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.UserID = httputil.GetUserID(r)

	doc, err := h.generator.Generate(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, doc)
}

// UpdateDocument edits a document
// PATCH /api/documents/{id}
func (h *DocumentHandler) UpdateDocument(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req docgenSvc.UpdateDocumentRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	doc, err := h.docService.UpdateDocument(r.Context(), userID, id, &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, doc)
}

// ChangeStatus moves a document to a new status
// PATCH /api/documents/{id}/status
func (h *DocumentHandler) ChangeStatus(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req docgenSvc.ChangeStatusRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	doc, err := h.docService.ChangeStatus(r.Context(), userID, id, &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, doc)
}

// DeleteDocument deletes a document and its versions
// DELETE /api/documents/{id}
func (h *DocumentHandler) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.docService.DeleteDocument(r.Context(), userID, id); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ExportDocument downloads the document as html, text or printable pdf-ready html
// GET /api/documents/{id}/export?format=html
func (h *DocumentHandler) ExportDocument(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	format := docgenSvc.ExportFormat(r.URL.Query().Get("format"))
	if format == "" {
		format = docgenSvc.ExportFormatHTML
	}

	result, err := h.docService.ExportDocument(r.Context(), userID, id, format)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondDownload(w, result.Filename, result.ContentType, result.Body)
}
