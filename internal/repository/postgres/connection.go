package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"folio/internal/domain/repositories"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RepositoryConfig holds configuration for repository implementations
type RepositoryConfig struct {
	Pool   *pgxpool.Pool
	Tables *TableNames
	Logger *slog.Logger
}

// TableNames holds environment-prefixed table names (dev_, test_, prod_)
type TableNames struct {
	Users            string
	Clients          string
	Projects         string
	Templates        string
	Documents        string
	DocumentVersions string
	Activities       string
}

// NewTableNames creates table names with the given prefix
func NewTableNames(prefix string) *TableNames {
	return &TableNames{
		Users:            fmt.Sprintf("%susers", prefix),
		Clients:          fmt.Sprintf("%sclients", prefix),
		Projects:         fmt.Sprintf("%sprojects", prefix),
		Templates:        fmt.Sprintf("%stemplates", prefix),
		Documents:        fmt.Sprintf("%sdocuments", prefix),
		DocumentVersions: fmt.Sprintf("%sdocument_versions", prefix),
		Activities:       fmt.Sprintf("%sactivities", prefix),
	}
}

// CreateConnectionPool creates a pgx connection pool.
//
// Port 6543 is the Supabase transaction pooler (PgBouncer), which does not
// support prepared statements. For it we switch to QueryExecModeCacheDescribe:
// extended protocol (needed to encode JSONB variable blobs) without
// server-side prepared statements. An explicit default_query_exec_mode in the
// connection string takes precedence.
func CreateConnectionPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse connection string: %w", err)
	}

	config.MaxConns = 25
	config.MinConns = 5

	if config.ConnConfig.Port == 6543 && config.ConnConfig.DefaultQueryExecMode == pgx.QueryExecModeCacheStatement {
		config.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeCacheDescribe
		slog.Debug("auto-configured cache_describe mode for PgBouncer compatibility", "port", 6543)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}

// GetExecutor returns the context's transaction if there is one, otherwise the pool.
// Repositories use it so they participate in transactions transparently.
func GetExecutor(ctx context.Context, pool *pgxpool.Pool) repositories.DBTX {
	if tx := repositories.GetTx(ctx); tx != nil {
		return tx
	}
	return pool
}
