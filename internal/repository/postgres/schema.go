package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// EnsureSchema creates tables and indexes if they don't exist
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool, tables *TableNames, tablePrefix string) error {
	if _, err := pool.Exec(ctx, `CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`); err != nil {
		return fmt.Errorf("enable uuid-ossp: %w", err)
	}

	statements := []string{
		// Users mirror the identity provider's subject ids
		`CREATE TABLE IF NOT EXISTS ` + tables.Users + ` (
			id UUID PRIMARY KEY,
			email TEXT NOT NULL,
			name TEXT,
			business_name TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS ` + tables.Clients + ` (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			owner_id UUID NOT NULL,
			name TEXT NOT NULL,
			email TEXT,
			phone TEXT,
			company TEXT,
			notes TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS ` + tables.Projects + ` (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			owner_id UUID NOT NULL,
			client_id UUID REFERENCES ` + tables.Clients + `(id) ON DELETE SET NULL,
			name TEXT NOT NULL,
			description TEXT,
			status TEXT NOT NULL DEFAULT 'PLANNING',
			start_date TIMESTAMPTZ,
			end_date TIMESTAMPTZ,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS ` + tables.Templates + ` (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			name TEXT NOT NULL,
			description TEXT,
			type TEXT NOT NULL,
			content TEXT NOT NULL,
			variables JSONB NOT NULL DEFAULT '[]'::jsonb,
			is_default BOOLEAN NOT NULL DEFAULT FALSE,
			is_global BOOLEAN NOT NULL DEFAULT FALSE,
			owner_id UUID,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			CONSTRAINT ` + tablePrefix + `templates_owner_check CHECK (
				(is_global AND owner_id IS NULL) OR (NOT is_global AND owner_id IS NOT NULL)
			)
		)`,

		// template_id is deliberately not a foreign key: deleting a template
		// leaves generated documents untouched
		`CREATE TABLE IF NOT EXISTS ` + tables.Documents + ` (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			name TEXT NOT NULL,
			type TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'DRAFT',
			content TEXT,
			size INTEGER NOT NULL DEFAULT 0,
			client_id UUID REFERENCES ` + tables.Clients + `(id) ON DELETE SET NULL,
			project_id UUID REFERENCES ` + tables.Projects + `(id) ON DELETE SET NULL,
			template_id UUID,
			variable_values JSONB NOT NULL DEFAULT '{}'::jsonb,
			is_template BOOLEAN NOT NULL DEFAULT FALSE,
			owner_id UUID NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS ` + tables.DocumentVersions + ` (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			document_id UUID NOT NULL REFERENCES ` + tables.Documents + `(id) ON DELETE CASCADE,
			version_number INTEGER NOT NULL,
			content TEXT NOT NULL,
			variable_values JSONB NOT NULL DEFAULT '{}'::jsonb,
			content_hash TEXT NOT NULL,
			change_notes TEXT,
			metrics JSONB NOT NULL DEFAULT '{}'::jsonb,
			created_by TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS ` + tables.Activities + ` (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			owner_id UUID NOT NULL,
			kind TEXT NOT NULL,
			description TEXT NOT NULL,
			client_id UUID REFERENCES ` + tables.Clients + `(id) ON DELETE SET NULL,
			project_id UUID REFERENCES ` + tables.Projects + `(id) ON DELETE SET NULL,
			document_id UUID REFERENCES ` + tables.Documents + `(id) ON DELETE SET NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
	}

	for _, stmt := range statements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}

	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_` + tablePrefix + `clients_owner ON ` + tables.Clients + `(owner_id)`,
		`CREATE INDEX IF NOT EXISTS idx_` + tablePrefix + `projects_owner ON ` + tables.Projects + `(owner_id, client_id)`,
		`CREATE INDEX IF NOT EXISTS idx_` + tablePrefix + `templates_owner ON ` + tables.Templates + `(owner_id)`,
		// Natural key for seeding global templates
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_` + tablePrefix + `templates_global_name ON ` + tables.Templates + `(name) WHERE is_global`,
		`CREATE INDEX IF NOT EXISTS idx_` + tablePrefix + `documents_owner ON ` + tables.Documents + `(owner_id, updated_at DESC)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_` + tablePrefix + `document_versions_number ON ` + tables.DocumentVersions + `(document_id, version_number)`,
		`CREATE INDEX IF NOT EXISTS idx_` + tablePrefix + `activities_owner ON ` + tables.Activities + `(owner_id, created_at DESC)`,
	}

	for _, indexSQL := range indexes {
		if _, err := pool.Exec(ctx, indexSQL); err != nil {
			return fmt.Errorf("create index: %w", err)
		}
	}

	return nil
}

// DropAllTables drops all tables in reverse dependency order
func DropAllTables(ctx context.Context, pool *pgxpool.Pool, tables *TableNames) ([]string, error) {
	ordered := []string{
		tables.Activities,
		tables.DocumentVersions,
		tables.Documents,
		tables.Templates,
		tables.Projects,
		tables.Clients,
		tables.Users,
	}

	for _, table := range ordered {
		if _, err := pool.Exec(ctx, "DROP TABLE IF EXISTS "+table+" CASCADE"); err != nil {
			return nil, fmt.Errorf("drop %s: %w", table, err)
		}
	}

	return ordered, nil
}
