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

const templateColumns = `id, name, description, type, content, variables, is_default, is_global, owner_id, created_at, updated_at`

// PostgresTemplateRepository implements the TemplateRepository interface
type PostgresTemplateRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
	logger *slog.Logger
}

// NewTemplateRepository creates a new template repository
func NewTemplateRepository(config *postgres.RepositoryConfig) docgenRepo.TemplateRepository {
	return &PostgresTemplateRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// Create inserts a user-owned template
func (r *PostgresTemplateRepository) Create(ctx context.Context, tpl *models.Template) error {
	variables, err := marshalVariables(tpl.Variables)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (name, description, type, content, variables, is_default, is_global, owner_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at
	`, r.tables.Templates)

	executor := postgres.GetExecutor(ctx, r.pool)
	err = executor.QueryRow(ctx, query,
		tpl.Name,
		tpl.Description,
		tpl.Type,
		tpl.Content,
		variables,
		tpl.IsDefault,
		tpl.IsGlobal,
		tpl.OwnerID,
		tpl.CreatedAt,
		tpl.UpdatedAt,
	).Scan(&tpl.ID, &tpl.CreatedAt, &tpl.UpdatedAt)

	if err != nil {
		if postgres.IsPgCheckError(err) {
			return fmt.Errorf("%w: template must be either global or owned", domain.ErrValidation)
		}
		return fmt.Errorf("create template: %w", err)
	}

	return nil
}

// GetVisible retrieves a template owned by userID or global
func (r *PostgresTemplateRepository) GetVisible(ctx context.Context, id, userID string) (*models.Template, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE id = $1 AND (is_global OR owner_id = $2)
	`, templateColumns, r.tables.Templates)

	executor := postgres.GetExecutor(ctx, r.pool)
	tpl, err := scanTemplate(executor.QueryRow(ctx, query, id, userID))
	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, fmt.Errorf("template %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get template: %w", err)
	}

	return tpl, nil
}

// List returns own and global templates, global first, then by name
func (r *PostgresTemplateRepository) List(ctx context.Context, userID string, filter models.TemplateFilter) ([]models.Template, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE (is_global OR owner_id = $1)
	`, templateColumns, r.tables.Templates)
	args := []interface{}{userID}

	if filter.Type != nil {
		query += ` AND type = $2`
		args = append(args, *filter.Type)
	}
	query += ` ORDER BY is_global DESC, name ASC`

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	defer rows.Close()

	templates := []models.Template{}
	for rows.Next() {
		tpl, err := scanTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("scan template: %w", err)
		}
		templates = append(templates, *tpl)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate templates: %w", err)
	}

	return templates, nil
}

// Update overwrites a user-owned template. Global templates never match.
func (r *PostgresTemplateRepository) Update(ctx context.Context, tpl *models.Template) error {
	variables, err := marshalVariables(tpl.Variables)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`
		UPDATE %s
		SET name = $1, description = $2, type = $3, content = $4, variables = $5, is_default = $6, updated_at = $7
		WHERE id = $8 AND owner_id = $9 AND NOT is_global
	`, r.tables.Templates)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query,
		tpl.Name,
		tpl.Description,
		tpl.Type,
		tpl.Content,
		variables,
		tpl.IsDefault,
		tpl.UpdatedAt,
		tpl.ID,
		tpl.OwnerID,
	)
	if err != nil {
		return fmt.Errorf("update template: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("template %s: %w", tpl.ID, domain.ErrNotFound)
	}

	return nil
}

// Delete removes a template owned by userID
func (r *PostgresTemplateRepository) Delete(ctx context.Context, id, userID string) error {
	query := fmt.Sprintf(`
		DELETE FROM %s
		WHERE id = $1 AND owner_id = $2 AND NOT is_global
	`, r.tables.Templates)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("delete template: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("template %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

// UpsertGlobal inserts a global template or refreshes the one with the same name.
// Relies on the partial unique index on (name) WHERE is_global. An unchanged
// template keeps its updated_at, so documents generated from it do not look stale.
func (r *PostgresTemplateRepository) UpsertGlobal(ctx context.Context, tpl *models.Template) error {
	variables, err := marshalVariables(tpl.Variables)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`
		INSERT INTO %s AS t (name, description, type, content, variables, is_default, is_global, owner_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, TRUE, NULL, $7, $7)
		ON CONFLICT (name) WHERE is_global DO UPDATE SET
			description = EXCLUDED.description,
			type = EXCLUDED.type,
			content = EXCLUDED.content,
			variables = EXCLUDED.variables,
			is_default = EXCLUDED.is_default,
			updated_at = EXCLUDED.updated_at
		WHERE (t.description, t.type, t.content, t.variables, t.is_default)
			IS DISTINCT FROM (EXCLUDED.description, EXCLUDED.type, EXCLUDED.content, EXCLUDED.variables, EXCLUDED.is_default)
		RETURNING id, created_at, updated_at
	`, r.tables.Templates)

	executor := postgres.GetExecutor(ctx, r.pool)
	err = executor.QueryRow(ctx, query,
		tpl.Name,
		tpl.Description,
		tpl.Type,
		tpl.Content,
		variables,
		tpl.IsDefault,
		tpl.UpdatedAt,
	).Scan(&tpl.ID, &tpl.CreatedAt, &tpl.UpdatedAt)

	// Skipped update: nothing is returned, read back the stored row
	if postgres.IsPgNoRowsError(err) {
		existing := fmt.Sprintf(`
			SELECT id, created_at, updated_at FROM %s
			WHERE name = $1 AND is_global
		`, r.tables.Templates)
		err = executor.QueryRow(ctx, existing, tpl.Name).Scan(&tpl.ID, &tpl.CreatedAt, &tpl.UpdatedAt)
	}
	if err != nil {
		return fmt.Errorf("upsert global template %q: %w", tpl.Name, err)
	}

	tpl.IsGlobal = true
	tpl.OwnerID = nil
	return nil
}

func scanTemplate(row pgx.Row) (*models.Template, error) {
	var tpl models.Template
	var variables []byte
	err := row.Scan(
		&tpl.ID,
		&tpl.Name,
		&tpl.Description,
		&tpl.Type,
		&tpl.Content,
		&variables,
		&tpl.IsDefault,
		&tpl.IsGlobal,
		&tpl.OwnerID,
		&tpl.CreatedAt,
		&tpl.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	tpl.Variables = []models.VariableDefinition{}
	if len(variables) > 0 {
		if err := json.Unmarshal(variables, &tpl.Variables); err != nil {
			return nil, fmt.Errorf("decode template variables: %w", err)
		}
	}
	return &tpl, nil
}

func marshalVariables(defs []models.VariableDefinition) ([]byte, error) {
	if defs == nil {
		defs = []models.VariableDefinition{}
	}
	data, err := json.Marshal(defs)
	if err != nil {
		return nil, fmt.Errorf("encode template variables: %w", err)
	}
	return data, nil
}
