package handler

import (
	"io"
	"log/slog"
	"net/http"

	models "folio/internal/domain/models/docgen"
	docgenSvc "folio/internal/domain/services/docgen"
	"folio/internal/httputil"
)

// TemplateHandler handles template HTTP requests
type TemplateHandler struct {
	templateService docgenSvc.TemplateService
	generator       docgenSvc.DocumentGenerator
	logger          *slog.Logger
}

// NewTemplateHandler creates a new template handler
func NewTemplateHandler(templateService docgenSvc.TemplateService, generator docgenSvc.DocumentGenerator, logger *slog.Logger) *TemplateHandler {
	return &TemplateHandler{
		templateService: templateService,
		generator:       generator,
		logger:          logger,
	}
}

// updateTemplateBody is the PATCH payload; description uses tri-state semantics
type updateTemplateBody struct {
	Name        *string                      `json:"name"`
	Description httputil.OptionalString      `json:"description"`
	Type        *models.TemplateType         `json:"type"`
	Content     *string                      `json:"content"`
	Variables   *[]models.VariableDefinition `json:"variables"`
	IsDefault   *bool                        `json:"isDefault"`
}

// ListTemplates returns the caller's templates plus global ones
// GET /api/templates?type=PROPOSAL
func (h *TemplateHandler) ListTemplates(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)

	var filter models.TemplateFilter
	if t := r.URL.Query().Get("type"); t != "" {
		tt := models.TemplateType(t)
		filter.Type = &tt
	}

	templates, err := h.templateService.ListTemplates(r.Context(), userID, filter)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, templates)
}

// GetTemplate retrieves a template
// GET /api/templates/{id}
func (h *TemplateHandler) GetTemplate(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	tpl, err := h.templateService.GetTemplate(r.Context(), userID, id)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, tpl)
}

// CreateTemplate creates a user-owned template
// POST /api/templates
func (h *TemplateHandler) CreateTemplate(w http.ResponseWriter, r *http.Request) {
	var req docgenSvc.CreateTemplateRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.UserID = httputil.GetUserID(r)

	tpl, err := h.templateService.CreateTemplate(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, tpl)
}

// UpdateTemplate partially updates a template
// PATCH /api/templates/{id}
func (h *TemplateHandler) UpdateTemplate(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var body updateTemplateBody
	if err := httputil.ParseJSON(w, r, &body); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req := docgenSvc.UpdateTemplateRequest{
		Name: body.Name,
		Description: docgenSvc.OptionalDescription{
			Present: body.Description.Present,
			Value:   body.Description.Value,
		},
		Type:      body.Type,
		Content:   body.Content,
		Variables: body.Variables,
		IsDefault: body.IsDefault,
	}

	tpl, err := h.templateService.UpdateTemplate(r.Context(), userID, id, &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, tpl)
}

// DeleteTemplate deletes a template
// DELETE /api/templates/{id}
func (h *TemplateHandler) DeleteTemplate(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.templateService.DeleteTemplate(r.Context(), userID, id); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ImportTemplate converts an uploaded file into a template
// POST /api/templates/import (multipart: file, name, type)
func (h *TemplateHandler) ImportTemplate(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)

	// The service enforces the real size limit; this only bounds memory
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Failed to parse multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "No file provided")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		h.logger.Error("failed to read uploaded file", "filename", header.Filename, "error", err)
		httputil.RespondError(w, http.StatusBadRequest, "Failed to read uploaded file")
		return
	}

	req := docgenSvc.ImportTemplateRequest{
		UserID:   userID,
		Filename: header.Filename,
		Data:     data,
		Name:     r.FormValue("name"),
		Type:     models.TemplateType(r.FormValue("type")),
	}

	tpl, err := h.templateService.ImportTemplate(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	h.logger.Info("template imported",
		"template_id", tpl.ID,
		"filename", header.Filename,
		"variables", len(tpl.Variables),
	)

	httputil.RespondJSON(w, http.StatusCreated, tpl)
}

// GenerateFromTemplate generates a document from the template gallery
// POST /api/templates/{id}/documents
func (h *TemplateHandler) GenerateFromTemplate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req docgenSvc.GenerateFromTemplateRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.UserID = httputil.GetUserID(r)
	req.TemplateID = id

	doc, err := h.generator.GenerateFromTemplate(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, doc)
}
