package docgen

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"folio/internal/domain"
	models "folio/internal/domain/models/docgen"
	docgenRepo "folio/internal/domain/repositories/docgen"
	"folio/internal/repository/postgres"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const documentColumns = `id, name, type, status, COALESCE(content, ''), size, client_id, project_id, template_id, variable_values, is_template, owner_id, created_at, updated_at`

// PostgresDocumentRepository implements the DocumentRepository interface
type PostgresDocumentRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
	logger *slog.Logger
}

// NewDocumentRepository creates a new document repository
func NewDocumentRepository(config *postgres.RepositoryConfig) docgenRepo.DocumentRepository {
	return &PostgresDocumentRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// Create inserts a document
func (r *PostgresDocumentRepository) Create(ctx context.Context, doc *models.Document) error {
	values, err := json.Marshal(doc.VariableValues)
	if err != nil {
		return fmt.Errorf("encode variable values: %w", err)
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (name, type, status, content, size, client_id, project_id, template_id, variable_values, is_template, owner_id, created_at, updated_at)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id, created_at, updated_at
	`, r.tables.Documents)

	executor := postgres.GetExecutor(ctx, r.pool)
	err = executor.QueryRow(ctx, query,
		doc.Name,
		doc.Type,
		doc.Status,
		doc.Content,
		doc.Size,
		doc.ClientID,
		doc.ProjectID,
		doc.TemplateID,
		values,
		doc.IsTemplate,
		doc.OwnerID,
		doc.CreatedAt,
		doc.UpdatedAt,
	).Scan(&doc.ID, &doc.CreatedAt, &doc.UpdatedAt)

	if err != nil {
		if postgres.IsPgForeignKeyError(err) {
			return fmt.Errorf("%w: referenced client or project does not exist", domain.ErrNotFound)
		}
		return fmt.Errorf("create document: %w", err)
	}

	return nil
}

// GetByID retrieves a document owned by userID
func (r *PostgresDocumentRepository) GetByID(ctx context.Context, id, userID string) (*models.Document, error) {
	return r.get(ctx, id, userID, "")
}

// GetForUpdate retrieves a document and locks its row for the rest of the transaction
func (r *PostgresDocumentRepository) GetForUpdate(ctx context.Context, id, userID string) (*models.Document, error) {
	return r.get(ctx, id, userID, "FOR UPDATE")
}

func (r *PostgresDocumentRepository) get(ctx context.Context, id, userID, lockClause string) (*models.Document, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE id = $1 AND owner_id = $2
		%s
	`, documentColumns, r.tables.Documents, lockClause)

	executor := postgres.GetExecutor(ctx, r.pool)
	doc, err := scanDocument(executor.QueryRow(ctx, query, id, userID))
	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get document: %w", err)
	}

	return doc, nil
}

// List returns the owner's documents, most recently updated first
func (r *PostgresDocumentRepository) List(ctx context.Context, userID string, filter models.DocumentFilter) ([]models.Document, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE owner_id = $1
	`, documentColumns, r.tables.Documents)
	args := []interface{}{userID}

	if filter.Status != nil {
		args = append(args, *filter.Status)
		query += fmt.Sprintf(` AND status = $%d`, len(args))
	}
	if filter.ClientID != nil {
		args = append(args, *filter.ClientID)
		query += fmt.Sprintf(` AND client_id = $%d`, len(args))
	}
	if filter.ProjectID != nil {
		args = append(args, *filter.ProjectID)
		query += fmt.Sprintf(` AND project_id = $%d`, len(args))
	}
	query += ` ORDER BY updated_at DESC`

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	documents := []models.Document{}
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		documents = append(documents, *doc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}

	return documents, nil
}

// Update overwrites the mutable fields of a document
func (r *PostgresDocumentRepository) Update(ctx context.Context, doc *models.Document) error {
	values, err := json.Marshal(doc.VariableValues)
	if err != nil {
		return fmt.Errorf("encode variable values: %w", err)
	}

	query := fmt.Sprintf(`
		UPDATE %s
		SET name = $1, type = $2, status = $3, content = NULLIF($4, ''), size = $5, variable_values = $6, updated_at = $7
		WHERE id = $8 AND owner_id = $9
	`, r.tables.Documents)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query,
		doc.Name,
		doc.Type,
		doc.Status,
		doc.Content,
		doc.Size,
		values,
		doc.UpdatedAt,
		doc.ID,
		doc.OwnerID,
	)
	if err != nil {
		return fmt.Errorf("update document: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("document %s: %w", doc.ID, domain.ErrNotFound)
	}

	return nil
}

// Delete removes a document; its versions go with it (ON DELETE CASCADE)
func (r *PostgresDocumentRepository) Delete(ctx context.Context, id, userID string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1 AND owner_id = $2`, r.tables.Documents)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

func scanDocument(row pgx.Row) (*models.Document, error) {
	var doc models.Document
	var values []byte
	err := row.Scan(
		&doc.ID,
		&doc.Name,
		&doc.Type,
		&doc.Status,
		&doc.Content,
		&doc.Size,
		&doc.ClientID,
		&doc.ProjectID,
		&doc.TemplateID,
		&values,
		&doc.IsTemplate,
		&doc.OwnerID,
		&doc.CreatedAt,
		&doc.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	doc.VariableValues = models.NewVariableBag(nil)
	if len(values) > 0 {
		if err := json.Unmarshal(values, &doc.VariableValues); err != nil {
			return nil, fmt.Errorf("decode variable values: %w", err)
		}
	}
	return &doc, nil
}
