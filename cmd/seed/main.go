package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"folio/internal/config"
	"folio/internal/repository/postgres"
	postgresDocgen "folio/internal/repository/postgres/docgen"
	serviceDocgen "folio/internal/service/docgen"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var errDestructiveInProd = errors.New("BLOCKED: cannot drop tables in production environment")

// seedEnv is shared by all subcommands, populated in PersistentPreRunE
type seedEnv struct {
	cfg     *config.Config
	logger  *slog.Logger
	logFile io.Closer
}

var (
	env        seedEnv
	dropTables bool
)

var rootCmd = &cobra.Command{
	Use:   "folio-seed",
	Short: "Database setup for folio",
	Long: `Creates the folio schema and upserts the built-in global templates.
Tables are prefixed per environment (dev_, test_, prod_) unless TABLE_PREFIX is set.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		_ = godotenv.Load()
		env.cfg = config.Load()

		var err error
		env.logger, env.logFile, err = config.NewLogger(env.cfg, "seed", cmd.ErrOrStderr())
		return err
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return env.logFile.Close()
	},
}

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Create tables and indexes",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withPool(cmd, func(ctx context.Context, pool *pgxpool.Pool, tables *postgres.TableNames) error {
			return runSchema(ctx, cmd, pool, tables)
		})
	},
}

var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "Upsert the built-in global templates",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withPool(cmd, func(ctx context.Context, pool *pgxpool.Pool, tables *postgres.TableNames) error {
			return runTemplates(ctx, cmd, pool, tables)
		})
	},
}

var allCmd = &cobra.Command{
	Use:   "all",
	Short: "Create the schema, then seed templates",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withPool(cmd, func(ctx context.Context, pool *pgxpool.Pool, tables *postgres.TableNames) error {
			if err := runSchema(ctx, cmd, pool, tables); err != nil {
				return err
			}
			return runTemplates(ctx, cmd, pool, tables)
		})
	},
}

func init() {
	for _, cmd := range []*cobra.Command{schemaCmd, allCmd} {
		cmd.Flags().BoolVar(&dropTables, "drop-tables", false, "Drop all tables before creating the schema (fresh start)")
	}
	rootCmd.AddCommand(schemaCmd, templatesCmd, allCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// withPool refuses destructive runs in production, then connects and runs fn
func withPool(cmd *cobra.Command, fn func(ctx context.Context, pool *pgxpool.Pool, tables *postgres.TableNames) error) error {
	if dropTables && env.cfg.IsProduction() {
		return errDestructiveInProd
	}
	if env.cfg.DatabaseURL == "" {
		return errors.New("DATABASE_URL is not set")
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	pool, err := postgres.CreateConnectionPool(ctx, env.cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()

	cmd.Printf("Environment: %s, table prefix: %s\n", env.cfg.Environment, env.cfg.TablePrefix)
	return fn(ctx, pool, postgres.NewTableNames(env.cfg.TablePrefix))
}

func runSchema(ctx context.Context, cmd *cobra.Command, pool *pgxpool.Pool, tables *postgres.TableNames) error {
	if dropTables {
		cmd.Println("Dropping all tables...")
		dropped, err := postgres.DropAllTables(ctx, pool, tables)
		if err != nil {
			return fmt.Errorf("drop tables: %w", err)
		}
		cmd.Printf("Dropped %d tables\n", len(dropped))
	}

	cmd.Println("Ensuring database schema is up to date...")
	if err := postgres.EnsureSchema(ctx, pool, tables, env.cfg.TablePrefix); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	cmd.Println("Schema ready")
	return nil
}

func runTemplates(ctx context.Context, cmd *cobra.Command, pool *pgxpool.Pool, tables *postgres.TableNames) error {
	templateRepo := postgresDocgen.NewTemplateRepository(&postgres.RepositoryConfig{
		Pool:   pool,
		Tables: tables,
		Logger: env.logger,
	})

	n, err := serviceDocgen.NewTemplateSeeder(templateRepo, env.logger).Seed(ctx)
	if err != nil {
		return fmt.Errorf("seed templates: %w", err)
	}
	cmd.Printf("Seeded %d global templates\n", n)
	return nil
}
