package docgen

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"folio/internal/config"
	"folio/internal/domain"
	models "folio/internal/domain/models/docgen"
	docgenSvc "folio/internal/domain/services/docgen"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTemplateFixture(templates ...*models.Template) (*fakeTemplates, *recordingRevalidator, docgenSvc.TemplateService) {
	repo := newFakeTemplates(templates...)
	revalidator := &recordingRevalidator{}
	return repo, revalidator, NewTemplateService(repo, fakeConverter{}, revalidator, testLogger())
}

func TestCreateTemplate(t *testing.T) {
	repo, revalidator, svc := newTemplateFixture()

	tpl, err := svc.CreateTemplate(context.Background(), &docgenSvc.CreateTemplateRequest{
		UserID:  ownerID,
		Name:    "  Retainer  ",
		Type:    models.TemplateTypeContract,
		Content: "Dear {{client_name}}",
		Variables: []models.VariableDefinition{
			{Key: "client_name"},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "Retainer", tpl.Name)
	assert.Equal(t, ownerID, *tpl.OwnerID)
	assert.False(t, tpl.IsGlobal)
	require.Len(t, tpl.Variables, 1)
	assert.Equal(t, "Client Name", tpl.Variables[0].Label)
	assert.Equal(t, models.VariableTypeText, tpl.Variables[0].Type)
	assert.Equal(t, models.VariableSourceManual, tpl.Variables[0].Source)

	assert.Contains(t, repo.templates, tpl.ID)
	assert.Equal(t, []string{"/templates"}, revalidator.paths)
}

func TestValidateTemplate(t *testing.T) {
	base := func() *models.Template {
		return &models.Template{
			Name:    "Proposal",
			Type:    models.TemplateTypeProposal,
			Content: "{{a}}",
			Variables: []models.VariableDefinition{
				{Key: "project_name", Label: "Project", Type: models.VariableTypeText, Source: models.VariableSourceProject},
			},
		}
	}

	tests := []struct {
		name   string
		mutate func(*models.Template)
		field  string
	}{
		{"missing name", func(tpl *models.Template) { tpl.Name = "" }, ""},
		{"unknown type", func(tpl *models.Template) { tpl.Type = "MEMO" }, ""},
		{"empty content", func(tpl *models.Template) { tpl.Content = "" }, ""},
		{"camel case key", func(tpl *models.Template) { tpl.Variables[0].Key = "projectName" }, ""},
		{"reserved key", func(tpl *models.Template) { tpl.Variables[0].Key = "metrics" }, "variables[0].key"},
		{"duplicate key", func(tpl *models.Template) {
			tpl.Variables = append(tpl.Variables, tpl.Variables[0])
		}, "variables[1].key"},
		{"select without options", func(tpl *models.Template) {
			tpl.Variables[0].Type = models.VariableTypeSelect
		}, ""},
		{"default of wrong type", func(tpl *models.Template) {
			tpl.Variables[0].Type = models.VariableTypeNumber
			tpl.Variables[0].DefaultValue = strPtr("ten")
		}, "variables[0].defaultValue"},
		{"unknown source", func(tpl *models.Template) { tpl.Variables[0].Source = "crm" }, ""},
	}

	require.NoError(t, ValidateTemplate(base()))

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tpl := base()
			tt.mutate(tpl)

			err := ValidateTemplate(tpl)
			require.ErrorIs(t, err, domain.ErrValidation)
			if tt.field != "" {
				var verr *domain.ValidationError
				require.ErrorAs(t, err, &verr)
				assert.Equal(t, tt.field, verr.Field)
			}
		})
	}
}

func TestUpdateTemplate(t *testing.T) {
	owned := &models.Template{
		ID: "t1", Name: "Mine", Type: models.TemplateTypeReport, Content: "x",
		Description: strPtr("old"), OwnerID: strPtr(ownerID),
	}
	global := &models.Template{ID: "g1", Name: "Shared", Type: models.TemplateTypeReport, Content: "x", IsGlobal: true}
	repo, _, svc := newTemplateFixture(owned, global)
	ctx := context.Background()

	t.Run("absent description is kept", func(t *testing.T) {
		tpl, err := svc.UpdateTemplate(ctx, ownerID, "t1", &docgenSvc.UpdateTemplateRequest{Name: strPtr("Renamed")})
		require.NoError(t, err)
		assert.Equal(t, "Renamed", tpl.Name)
		assert.Equal(t, "old", *tpl.Description)
	})

	t.Run("null description clears", func(t *testing.T) {
		tpl, err := svc.UpdateTemplate(ctx, ownerID, "t1", &docgenSvc.UpdateTemplateRequest{
			Description: docgenSvc.OptionalDescription{Present: true},
		})
		require.NoError(t, err)
		assert.Nil(t, tpl.Description)
		assert.Nil(t, repo.templates["t1"].Description)
	})

	t.Run("global templates are read-only", func(t *testing.T) {
		_, err := svc.UpdateTemplate(ctx, ownerID, "g1", &docgenSvc.UpdateTemplateRequest{Name: strPtr("Mine now")})
		assert.ErrorIs(t, err, domain.ErrForbidden)
		assert.Equal(t, "Shared", repo.templates["g1"].Name)
	})

	t.Run("other users' templates are invisible", func(t *testing.T) {
		_, err := svc.UpdateTemplate(ctx, otherID, "t1", &docgenSvc.UpdateTemplateRequest{Name: strPtr("Stolen")})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("invalid update is rejected", func(t *testing.T) {
		_, err := svc.UpdateTemplate(ctx, ownerID, "t1", &docgenSvc.UpdateTemplateRequest{Content: strPtr("")})
		assert.ErrorIs(t, err, domain.ErrValidation)
	})
}

func TestDeleteTemplate(t *testing.T) {
	global := &models.Template{ID: "g1", Name: "Shared", IsGlobal: true}
	owned := &models.Template{ID: "t1", Name: "Mine", OwnerID: strPtr(ownerID)}
	repo, _, svc := newTemplateFixture(global, owned)

	assert.ErrorIs(t, svc.DeleteTemplate(context.Background(), ownerID, "g1"), domain.ErrForbidden)
	require.NoError(t, svc.DeleteTemplate(context.Background(), ownerID, "t1"))
	assert.NotContains(t, repo.templates, "t1")
}

func TestListTemplates_RejectsUnknownType(t *testing.T) {
	_, _, svc := newTemplateFixture()
	memo := models.TemplateType("MEMO")

	_, err := svc.ListTemplates(context.Background(), ownerID, models.TemplateFilter{Type: &memo})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestImportTemplate(t *testing.T) {
	_, _, svc := newTemplateFixture()
	ctx := context.Background()

	tpl, err := svc.ImportTemplate(ctx, &docgenSvc.ImportTemplateRequest{
		UserID:   ownerID,
		Filename: "uploads/Statement of Work.md",
		Data:     []byte("Client: {{client_name}}\nDue {{due_date}} {{client_name}} {{Bad Key}} {{metrics}}"),
	})
	require.NoError(t, err)

	assert.Equal(t, "Statement of Work", tpl.Name)
	assert.Equal(t, models.TemplateTypeOther, tpl.Type)
	require.Len(t, tpl.Variables, 2)
	assert.Equal(t, "client_name", tpl.Variables[0].Key)
	assert.Equal(t, "Due Date", tpl.Variables[1].Label)

	t.Run("explicit name and type", func(t *testing.T) {
		tpl, err := svc.ImportTemplate(ctx, &docgenSvc.ImportTemplateRequest{
			UserID: ownerID, Filename: "a.txt", Data: []byte("hello"), Name: "Greeting", Type: models.TemplateTypeReport,
		})
		require.NoError(t, err)
		assert.Equal(t, "Greeting", tpl.Name)
		assert.Equal(t, models.TemplateTypeReport, tpl.Type)
	})

	t.Run("empty file", func(t *testing.T) {
		_, err := svc.ImportTemplate(ctx, &docgenSvc.ImportTemplateRequest{UserID: ownerID, Filename: "a.md"})
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("oversized file", func(t *testing.T) {
		_, err := svc.ImportTemplate(ctx, &docgenSvc.ImportTemplateRequest{
			UserID: ownerID, Filename: "a.md", Data: bytes.Repeat([]byte("a"), config.MaxImportFileSize+1),
		})
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("converter failure", func(t *testing.T) {
		failing := NewTemplateService(newFakeTemplates(), fakeConverter{err: errors.New("unsupported file type .pdf")},
			&recordingRevalidator{}, testLogger())
		_, err := failing.ImportTemplate(ctx, &docgenSvc.ImportTemplateRequest{UserID: ownerID, Filename: "a.pdf", Data: []byte("%PDF")})

		var verr *domain.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "file", verr.Field)
	})
}

func TestLabelFromKey(t *testing.T) {
	assert.Equal(t, "Client First Name", labelFromKey("client_first_name"))
	assert.Equal(t, "Total", labelFromKey("total"))
	assert.Equal(t, "", labelFromKey(""))
}
