package docgen

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"folio/internal/domain"
	crmModels "folio/internal/domain/models/crm"
	models "folio/internal/domain/models/docgen"
	"folio/internal/domain/repositories"

	"github.com/google/uuid"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func strPtr(s string) *string { return &s }

// fakeTx runs fn directly; tests don't need isolation
type fakeTx struct{ calls int }

var _ repositories.TransactionManager = (*fakeTx)(nil)

func (f *fakeTx) ExecTx(ctx context.Context, fn repositories.TxFn) error {
	f.calls++
	return fn(ctx)
}

type fakeUsers struct {
	users map[string]*crmModels.User
	err   error
}

func newFakeUsers(users ...*crmModels.User) *fakeUsers {
	f := &fakeUsers{users: make(map[string]*crmModels.User)}
	for _, u := range users {
		f.users[u.ID] = u
	}
	return f
}

func (f *fakeUsers) GetByID(_ context.Context, id string) (*crmModels.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.users[id]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", id, domain.ErrNotFound)
	}
	copied := *u
	return &copied, nil
}

func (f *fakeUsers) Upsert(_ context.Context, user *crmModels.User) error {
	copied := *user
	f.users[user.ID] = &copied
	return nil
}

type fakeClients struct {
	clients map[string]*crmModels.Client
}

func newFakeClients(clients ...*crmModels.Client) *fakeClients {
	f := &fakeClients{clients: make(map[string]*crmModels.Client)}
	for _, c := range clients {
		f.clients[c.ID] = c
	}
	return f
}

func (f *fakeClients) Create(_ context.Context, client *crmModels.Client) error {
	client.ID = uuid.NewString()
	f.clients[client.ID] = client
	return nil
}

func (f *fakeClients) GetByID(_ context.Context, id, ownerID string) (*crmModels.Client, error) {
	c, ok := f.clients[id]
	if !ok || c.OwnerID != ownerID {
		return nil, fmt.Errorf("client %s: %w", id, domain.ErrNotFound)
	}
	copied := *c
	return &copied, nil
}

func (f *fakeClients) List(_ context.Context, ownerID string) ([]crmModels.Client, error) {
	var out []crmModels.Client
	for _, c := range f.clients {
		if c.OwnerID == ownerID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (f *fakeClients) Update(_ context.Context, client *crmModels.Client) error {
	f.clients[client.ID] = client
	return nil
}

func (f *fakeClients) Delete(_ context.Context, id, ownerID string) error {
	delete(f.clients, id)
	return nil
}

type fakeProjects struct {
	projects map[string]*crmModels.Project
}

func newFakeProjects(projects ...*crmModels.Project) *fakeProjects {
	f := &fakeProjects{projects: make(map[string]*crmModels.Project)}
	for _, p := range projects {
		f.projects[p.ID] = p
	}
	return f
}

func (f *fakeProjects) Create(_ context.Context, project *crmModels.Project) error {
	project.ID = uuid.NewString()
	f.projects[project.ID] = project
	return nil
}

func (f *fakeProjects) GetByID(_ context.Context, id, ownerID string) (*crmModels.Project, error) {
	p, ok := f.projects[id]
	if !ok || p.OwnerID != ownerID {
		return nil, fmt.Errorf("project %s: %w", id, domain.ErrNotFound)
	}
	copied := *p
	return &copied, nil
}

func (f *fakeProjects) List(_ context.Context, ownerID string, clientID *string) ([]crmModels.Project, error) {
	var out []crmModels.Project
	for _, p := range f.projects {
		if p.OwnerID == ownerID && (clientID == nil || (p.ClientID != nil && *p.ClientID == *clientID)) {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakeProjects) Update(_ context.Context, project *crmModels.Project) error {
	f.projects[project.ID] = project
	return nil
}

func (f *fakeProjects) Delete(_ context.Context, id, ownerID string) error {
	delete(f.projects, id)
	return nil
}

type fakeTemplates struct {
	templates map[string]*models.Template
}

func newFakeTemplates(templates ...*models.Template) *fakeTemplates {
	f := &fakeTemplates{templates: make(map[string]*models.Template)}
	for _, t := range templates {
		f.templates[t.ID] = t
	}
	return f
}

func (f *fakeTemplates) Create(_ context.Context, tpl *models.Template) error {
	tpl.ID = uuid.NewString()
	copied := *tpl
	f.templates[tpl.ID] = &copied
	return nil
}

func (f *fakeTemplates) GetVisible(_ context.Context, id, userID string) (*models.Template, error) {
	t, ok := f.templates[id]
	if !ok || !t.VisibleTo(userID) {
		return nil, fmt.Errorf("template %s: %w", id, domain.ErrNotFound)
	}
	copied := *t
	return &copied, nil
}

func (f *fakeTemplates) List(_ context.Context, userID string, filter models.TemplateFilter) ([]models.Template, error) {
	var out []models.Template
	for _, t := range f.templates {
		if t.VisibleTo(userID) && (filter.Type == nil || t.Type == *filter.Type) {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (f *fakeTemplates) Update(_ context.Context, tpl *models.Template) error {
	copied := *tpl
	f.templates[tpl.ID] = &copied
	return nil
}

func (f *fakeTemplates) Delete(_ context.Context, id, userID string) error {
	delete(f.templates, id)
	return nil
}

func (f *fakeTemplates) UpsertGlobal(_ context.Context, tpl *models.Template) error {
	for id, existing := range f.templates {
		if existing.IsGlobal && existing.Name == tpl.Name {
			tpl.ID = id
			copied := *tpl
			f.templates[id] = &copied
			return nil
		}
	}
	tpl.ID = uuid.NewString()
	copied := *tpl
	f.templates[tpl.ID] = &copied
	return nil
}

type fakeDocuments struct {
	docs map[string]*models.Document
}

func newFakeDocuments(docs ...*models.Document) *fakeDocuments {
	f := &fakeDocuments{docs: make(map[string]*models.Document)}
	for _, d := range docs {
		f.docs[d.ID] = d
	}
	return f
}

func (f *fakeDocuments) Create(_ context.Context, doc *models.Document) error {
	doc.ID = uuid.NewString()
	copied := *doc
	copied.VariableValues = doc.VariableValues.Clone()
	f.docs[doc.ID] = &copied
	return nil
}

func (f *fakeDocuments) GetByID(_ context.Context, id, userID string) (*models.Document, error) {
	d, ok := f.docs[id]
	if !ok || d.OwnerID != userID {
		return nil, fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
	}
	copied := *d
	copied.VariableValues = d.VariableValues.Clone()
	return &copied, nil
}

func (f *fakeDocuments) GetForUpdate(ctx context.Context, id, userID string) (*models.Document, error) {
	return f.GetByID(ctx, id, userID)
}

func (f *fakeDocuments) List(_ context.Context, userID string, filter models.DocumentFilter) ([]models.Document, error) {
	var out []models.Document
	for _, d := range f.docs {
		if d.OwnerID == userID && (filter.Status == nil || d.Status == *filter.Status) {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (f *fakeDocuments) Update(_ context.Context, doc *models.Document) error {
	if _, ok := f.docs[doc.ID]; !ok {
		return fmt.Errorf("document %s: %w", doc.ID, domain.ErrNotFound)
	}
	copied := *doc
	copied.VariableValues = doc.VariableValues.Clone()
	f.docs[doc.ID] = &copied
	return nil
}

func (f *fakeDocuments) Delete(_ context.Context, id, userID string) error {
	d, ok := f.docs[id]
	if !ok || d.OwnerID != userID {
		return fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
	}
	delete(f.docs, id)
	return nil
}

// fakeVersions numbers versions per document the way the SQL repository does
type fakeVersions struct {
	mu       sync.Mutex
	versions map[string][]models.DocumentVersion
}

func newFakeVersions() *fakeVersions {
	return &fakeVersions{versions: make(map[string][]models.DocumentVersion)}
}

func (f *fakeVersions) Create(_ context.Context, version *models.DocumentVersion) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	highest := 0
	for _, v := range f.versions[version.DocumentID] {
		if v.VersionNumber > highest {
			highest = v.VersionNumber
		}
	}
	version.ID = uuid.NewString()
	version.VersionNumber = highest + 1
	if version.CreatedAt.IsZero() {
		version.CreatedAt = time.Now()
	}
	f.versions[version.DocumentID] = append(f.versions[version.DocumentID], *version)
	return nil
}

func (f *fakeVersions) GetByID(_ context.Context, documentID, versionID string) (*models.DocumentVersion, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, v := range f.versions[documentID] {
		if v.ID == versionID {
			copied := v
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("version %s: %w", versionID, domain.ErrNotFound)
}

func (f *fakeVersions) ListByDocument(_ context.Context, documentID string) ([]models.DocumentVersion, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := append([]models.DocumentVersion{}, f.versions[documentID]...)
	sort.Slice(out, func(i, j int) bool { return out[i].VersionNumber > out[j].VersionNumber })
	return out, nil
}

type recordingActivity struct {
	entries []crmModels.Activity
}

func (r *recordingActivity) Record(_ context.Context, activity *crmModels.Activity) {
	r.entries = append(r.entries, *activity)
}

type recordingRevalidator struct {
	paths []string
}

func (r *recordingRevalidator) Revalidate(_ context.Context, path string) {
	r.paths = append(r.paths, path)
}

// fakeConverter returns the input unchanged or a fixed error
type fakeConverter struct {
	err error
}

func (f fakeConverter) Convert(_ context.Context, _ string, content []byte) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return string(content), nil
}
