package crm

import (
	"context"
	"fmt"
	"log/slog"

	"folio/internal/domain"
	models "folio/internal/domain/models/crm"
	crmRepo "folio/internal/domain/repositories/crm"
	"folio/internal/repository/postgres"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const clientColumns = `id, owner_id, name, email, phone, company, notes, created_at, updated_at`

// PostgresClientRepository implements the ClientRepository interface
type PostgresClientRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
	logger *slog.Logger
}

// NewClientRepository creates a new client repository
func NewClientRepository(config *postgres.RepositoryConfig) crmRepo.ClientRepository {
	return &PostgresClientRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// Create creates a new client
func (r *PostgresClientRepository) Create(ctx context.Context, client *models.Client) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (owner_id, name, email, phone, company, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`, r.tables.Clients)

	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		client.OwnerID,
		client.Name,
		client.Email,
		client.Phone,
		client.Company,
		client.Notes,
		client.CreatedAt,
		client.UpdatedAt,
	).Scan(&client.ID, &client.CreatedAt, &client.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create client: %w", err)
	}

	return nil
}

// GetByID retrieves a client owned by ownerID
func (r *PostgresClientRepository) GetByID(ctx context.Context, id, ownerID string) (*models.Client, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE id = $1 AND owner_id = $2
	`, clientColumns, r.tables.Clients)

	executor := postgres.GetExecutor(ctx, r.pool)
	client, err := scanClient(executor.QueryRow(ctx, query, id, ownerID))
	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, fmt.Errorf("client %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get client: %w", err)
	}

	return client, nil
}

// List retrieves the owner's clients ordered by name
func (r *PostgresClientRepository) List(ctx context.Context, ownerID string) ([]models.Client, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE owner_id = $1
		ORDER BY name ASC
	`, clientColumns, r.tables.Clients)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	defer rows.Close()

	clients := []models.Client{}
	for rows.Next() {
		client, err := scanClient(rows)
		if err != nil {
			return nil, fmt.Errorf("scan client: %w", err)
		}
		clients = append(clients, *client)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate clients: %w", err)
	}

	return clients, nil
}

// Update updates a client
func (r *PostgresClientRepository) Update(ctx context.Context, client *models.Client) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET name = $1, email = $2, phone = $3, company = $4, notes = $5, updated_at = $6
		WHERE id = $7 AND owner_id = $8
	`, r.tables.Clients)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query,
		client.Name,
		client.Email,
		client.Phone,
		client.Company,
		client.Notes,
		client.UpdatedAt,
		client.ID,
		client.OwnerID,
	)
	if err != nil {
		return fmt.Errorf("update client: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("client %s: %w", client.ID, domain.ErrNotFound)
	}

	return nil
}

// Delete removes a client; projects and documents keep a NULL reference
func (r *PostgresClientRepository) Delete(ctx context.Context, id, ownerID string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1 AND owner_id = $2`, r.tables.Clients)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete client: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("client %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

func scanClient(row pgx.Row) (*models.Client, error) {
	var client models.Client
	err := row.Scan(
		&client.ID,
		&client.OwnerID,
		&client.Name,
		&client.Email,
		&client.Phone,
		&client.Company,
		&client.Notes,
		&client.CreatedAt,
		&client.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &client, nil
}
