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

const versionColumns = `id, document_id, version_number, content, variable_values, content_hash, change_notes, metrics, created_by, created_at`

// PostgresVersionRepository implements the VersionRepository interface
type PostgresVersionRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
	logger *slog.Logger
}

// NewVersionRepository creates a new version repository
func NewVersionRepository(config *postgres.RepositoryConfig) docgenRepo.VersionRepository {
	return &PostgresVersionRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// Create appends a version. The number is computed in the same statement;
// callers serialize per document by locking the document row first, and the
// unique index on (document_id, version_number) rejects anything that slips through.
func (r *PostgresVersionRepository) Create(ctx context.Context, version *models.DocumentVersion) error {
	values, err := json.Marshal(version.VariableValues)
	if err != nil {
		return fmt.Errorf("encode variable values: %w", err)
	}
	metrics, err := json.Marshal(version.Metrics)
	if err != nil {
		return fmt.Errorf("encode metrics: %w", err)
	}

	query := fmt.Sprintf(`
		INSERT INTO %[1]s (document_id, version_number, content, variable_values, content_hash, change_notes, metrics, created_by, created_at)
		SELECT $1, COALESCE(MAX(version_number), 0) + 1, $2, $3, $4, $5, $6, $7, $8
		FROM %[1]s
		WHERE document_id = $1
		RETURNING id, version_number, created_at
	`, r.tables.DocumentVersions)

	executor := postgres.GetExecutor(ctx, r.pool)
	err = executor.QueryRow(ctx, query,
		version.DocumentID,
		version.Content,
		values,
		version.ContentHash,
		version.ChangeNotes,
		metrics,
		version.CreatedBy,
		version.CreatedAt,
	).Scan(&version.ID, &version.VersionNumber, &version.CreatedAt)

	if err != nil {
		if postgres.IsPgDuplicateError(err) {
			return &domain.ConflictError{
				Message:      "a concurrent snapshot claimed this version number",
				ResourceType: "document_version",
				ResourceID:   version.DocumentID,
			}
		}
		if postgres.IsPgForeignKeyError(err) {
			return fmt.Errorf("document %s: %w", version.DocumentID, domain.ErrNotFound)
		}
		return fmt.Errorf("create document version: %w", err)
	}

	return nil
}

// GetByID retrieves a version belonging to documentID
func (r *PostgresVersionRepository) GetByID(ctx context.Context, documentID, versionID string) (*models.DocumentVersion, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE id = $1 AND document_id = $2
	`, versionColumns, r.tables.DocumentVersions)

	executor := postgres.GetExecutor(ctx, r.pool)
	version, err := scanVersion(executor.QueryRow(ctx, query, versionID, documentID))
	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, fmt.Errorf("version %s: %w", versionID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get document version: %w", err)
	}

	return version, nil
}

// ListByDocument returns versions newest first
func (r *PostgresVersionRepository) ListByDocument(ctx context.Context, documentID string) ([]models.DocumentVersion, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE document_id = $1
		ORDER BY version_number DESC
	`, versionColumns, r.tables.DocumentVersions)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, documentID)
	if err != nil {
		return nil, fmt.Errorf("list document versions: %w", err)
	}
	defer rows.Close()

	versions := []models.DocumentVersion{}
	for rows.Next() {
		version, err := scanVersion(rows)
		if err != nil {
			return nil, fmt.Errorf("scan document version: %w", err)
		}
		versions = append(versions, *version)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate document versions: %w", err)
	}

	return versions, nil
}

func scanVersion(row pgx.Row) (*models.DocumentVersion, error) {
	var version models.DocumentVersion
	var values, metrics []byte
	err := row.Scan(
		&version.ID,
		&version.DocumentID,
		&version.VersionNumber,
		&version.Content,
		&values,
		&version.ContentHash,
		&version.ChangeNotes,
		&metrics,
		&version.CreatedBy,
		&version.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	version.VariableValues = models.NewVariableBag(nil)
	if len(values) > 0 {
		if err := json.Unmarshal(values, &version.VariableValues); err != nil {
			return nil, fmt.Errorf("decode variable values: %w", err)
		}
	}
	if len(metrics) > 0 {
		if err := json.Unmarshal(metrics, &version.Metrics); err != nil {
			return nil, fmt.Errorf("decode metrics: %w", err)
		}
	}
	return &version, nil
}
