package crm

import (
	"context"
	"fmt"
	"log/slog"

	models "folio/internal/domain/models/crm"
	crmRepo "folio/internal/domain/repositories/crm"
	"folio/internal/repository/postgres"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresActivityRepository implements the ActivityRepository interface
type PostgresActivityRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
	logger *slog.Logger
}

// NewActivityRepository creates a new activity repository
func NewActivityRepository(config *postgres.RepositoryConfig) crmRepo.ActivityRepository {
	return &PostgresActivityRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// Create inserts a timeline entry
func (r *PostgresActivityRepository) Create(ctx context.Context, activity *models.Activity) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (owner_id, kind, description, client_id, project_id, document_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`, r.tables.Activities)

	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		activity.OwnerID,
		activity.Kind,
		activity.Description,
		activity.ClientID,
		activity.ProjectID,
		activity.DocumentID,
		activity.CreatedAt,
	).Scan(&activity.ID, &activity.CreatedAt)
	if err != nil {
		return fmt.Errorf("create activity: %w", err)
	}

	return nil
}

// List returns the newest entries first
func (r *PostgresActivityRepository) List(ctx context.Context, ownerID string, clientID *string, limit int) ([]models.Activity, error) {
	query := fmt.Sprintf(`
		SELECT id, owner_id, kind, description, client_id, project_id, document_id, created_at
		FROM %s
		WHERE owner_id = $1
	`, r.tables.Activities)
	args := []interface{}{ownerID}

	if clientID != nil {
		args = append(args, *clientID)
		query += fmt.Sprintf(` AND client_id = $%d`, len(args))
	}
	args = append(args, limit)
	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d`, len(args))

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}
	defer rows.Close()

	activities := []models.Activity{}
	for rows.Next() {
		var a models.Activity
		if err := rows.Scan(
			&a.ID,
			&a.OwnerID,
			&a.Kind,
			&a.Description,
			&a.ClientID,
			&a.ProjectID,
			&a.DocumentID,
			&a.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan activity: %w", err)
		}
		activities = append(activities, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate activities: %w", err)
	}

	return activities, nil
}
