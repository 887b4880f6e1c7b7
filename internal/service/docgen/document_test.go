package docgen

import (
	"context"
	"testing"
	"time"

	"folio/internal/domain"
	crmModels "folio/internal/domain/models/crm"
	models "folio/internal/domain/models/docgen"
	docgenSvc "folio/internal/domain/services/docgen"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type documentFixture struct {
	docs        *fakeDocuments
	activity    *recordingActivity
	revalidator *recordingRevalidator
	service     *documentService
}

var documentClock = time.Date(2024, 3, 5, 14, 7, 9, 123_000_000, time.UTC)

func newDocumentFixture(docs ...*models.Document) *documentFixture {
	f := &documentFixture{
		docs:        newFakeDocuments(docs...),
		activity:    &recordingActivity{},
		revalidator: &recordingRevalidator{},
	}
	f.service = NewDocumentService(
		f.docs,
		newFakeClients(&crmModels.Client{ID: "c1", OwnerID: ownerID, Name: "Acme"}),
		newFakeProjects(),
		&fakeTx{},
		f.activity,
		f.revalidator,
		testLogger(),
	).(*documentService)
	f.service.now = fixedClock(documentClock)
	return f
}

func TestCreateDocument(t *testing.T) {
	f := newDocumentFixture()

	doc, err := f.service.CreateDocument(context.Background(), &docgenSvc.CreateDocumentRequest{
		UserID:   ownerID,
		Name:     " Notes ",
		Type:     models.TemplateTypeOther,
		Content:  "one two three",
		ClientID: strPtr("c1"),
	})
	require.NoError(t, err)

	assert.Equal(t, "Notes", doc.Name)
	assert.Equal(t, models.DocumentStatusDraft, doc.Status)
	assert.Nil(t, doc.TemplateID)
	assert.Equal(t, 13, doc.Size)
	require.NotNil(t, doc.VariableValues.Metrics)
	assert.Equal(t, 3, doc.VariableValues.Metrics.WordCount)
	assert.Contains(t, f.docs.docs, doc.ID)

	_, err = f.service.CreateDocument(context.Background(), &docgenSvc.CreateDocumentRequest{
		UserID: ownerID, Name: "x", Type: models.TemplateTypeOther, ClientID: strPtr("someone-elses"),
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.service.CreateDocument(context.Background(), &docgenSvc.CreateDocumentRequest{UserID: ownerID, Name: "x"})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestUpdateDocument_RecomputesDerivedFields(t *testing.T) {
	f := newDocumentFixture(testDocument("d1", "short"))

	doc, err := f.service.UpdateDocument(context.Background(), ownerID, "d1", &docgenSvc.UpdateDocumentRequest{
		Content: strPtr("a much longer body"),
	})
	require.NoError(t, err)

	assert.Equal(t, 18, doc.Size)
	assert.Equal(t, 4, doc.VariableValues.Metrics.WordCount)
	assert.Equal(t, "Acme", doc.VariableValues.Values["client_name"].String(), "values survive content edits")
	assert.Equal(t, documentClock, f.docs.docs["d1"].UpdatedAt)

	_, err = f.service.UpdateDocument(context.Background(), otherID, "d1", &docgenSvc.UpdateDocumentRequest{Name: strPtr("mine")})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestChangeStatus(t *testing.T) {
	f := newDocumentFixture(testDocument("d1", "body"))
	ctx := context.Background()

	_, err := f.service.ChangeStatus(ctx, ownerID, "d1", &docgenSvc.ChangeStatusRequest{Status: models.DocumentStatusSent})
	require.NoError(t, err)
	doc, err := f.service.ChangeStatus(ctx, ownerID, "d1", &docgenSvc.ChangeStatusRequest{
		Status: models.DocumentStatusDraft,
		Notes:  strPtr("client asked for changes"),
	})
	require.NoError(t, err)

	assert.Equal(t, models.DocumentStatusDraft, doc.Status, "any transition is allowed")
	history := f.docs.docs["d1"].VariableValues.StatusHistory
	require.Len(t, history, 2)
	assert.Equal(t, models.DocumentStatusDraft, history[0].From)
	assert.Equal(t, models.DocumentStatusSent, history[0].To)
	assert.Equal(t, models.DocumentStatusSent, history[1].From)
	assert.Equal(t, "client asked for changes", *history[1].Notes)
	assert.Equal(t, ownerID, history[1].ChangedBy)

	require.Len(t, f.activity.entries, 2)
	assert.Equal(t, crmModels.ActivityDocumentStatusChanged, f.activity.entries[1].Kind)
	assert.Equal(t, "d1", *f.activity.entries[1].DocumentID)

	_, err = f.service.ChangeStatus(ctx, ownerID, "d1", &docgenSvc.ChangeStatusRequest{Status: "LOST"})
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Len(t, f.docs.docs["d1"].VariableValues.StatusHistory, 2)
}

func TestDeleteDocument(t *testing.T) {
	f := newDocumentFixture(testDocument("d1", "body"))

	assert.ErrorIs(t, f.service.DeleteDocument(context.Background(), otherID, "d1"), domain.ErrNotFound)
	require.NoError(t, f.service.DeleteDocument(context.Background(), ownerID, "d1"))
	assert.Empty(t, f.docs.docs)
	assert.Equal(t, []string{"/documents"}, f.revalidator.paths)
}

func TestListDocuments_RejectsUnknownStatus(t *testing.T) {
	f := newDocumentFixture()
	lost := models.DocumentStatus("LOST")

	_, err := f.service.ListDocuments(context.Background(), ownerID, models.DocumentFilter{Status: &lost})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestExportDocument(t *testing.T) {
	doc := testDocument("d1", "# Scope\n\nBuild the <b>thing</b>")
	doc.Name = "Project Proposal"
	f := newDocumentFixture(doc)
	ctx := context.Background()

	tests := []struct {
		format      docgenSvc.ExportFormat
		filename    string
		contentType string
		contains    string
	}{
		{docgenSvc.ExportFormatHTML, "Project-Proposal-2024-03-05T14-07-09-123Z.html", "text/html; charset=utf-8", "<h1>Scope</h1>"},
		{docgenSvc.ExportFormatText, "Project-Proposal-2024-03-05T14-07-09-123Z.txt", "text/plain; charset=utf-8", "# Scope Build the thing"},
		{docgenSvc.ExportFormatPDF, "Project-Proposal-2024-03-05T14-07-09-123Z.html", "text/html; charset=utf-8", "window.print()"},
	}

	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			result, err := f.service.ExportDocument(ctx, ownerID, "d1", tt.format)
			require.NoError(t, err)
			assert.Equal(t, tt.filename, result.Filename)
			assert.Equal(t, tt.contentType, result.ContentType)
			assert.Contains(t, string(result.Body), tt.contains)
		})
	}

	_, err := f.service.ExportDocument(ctx, ownerID, "d1", "docx")
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = f.service.ExportDocument(ctx, otherID, "d1", docgenSvc.ExportFormatHTML)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
