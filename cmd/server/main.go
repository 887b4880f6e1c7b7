package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"folio/internal/auth"
	"folio/internal/config"
	crmSvc "folio/internal/domain/services/crm"
	"folio/internal/handler"
	"folio/internal/middleware"
	"folio/internal/notify"
	"folio/internal/repository/postgres"
	postgresCRM "folio/internal/repository/postgres/crm"
	postgresDocgen "folio/internal/repository/postgres/docgen"
	serviceCRM "folio/internal/service/crm"
	serviceDocgen "folio/internal/service/docgen"
	"folio/internal/service/docgen/converter"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	cfg := config.Load()

	logger, logFile, err := config.NewLogger(cfg, "server", os.Stdout)
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	defer logFile.Close()
	slog.SetDefault(logger)

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"table_prefix", cfg.TablePrefix,
	)

	jwtVerifier, err := auth.NewJWTVerifier(cfg.JWKSURL, logger)
	if err != nil {
		log.Fatalf("Failed to create JWT verifier: %v", err)
	}
	defer jwtVerifier.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to create connection pool: %v", err)
	}
	defer pool.Close()

	logger.Info("database connected",
		"max_conns", 25,
		"min_conns", 5,
	)

	revalidator, closeRevalidator := setupRevalidator(ctx, cfg, logger)
	defer closeRevalidator()

	// Repositories
	tables := postgres.NewTableNames(cfg.TablePrefix)
	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: tables,
		Logger: logger,
	}
	userRepo := postgresCRM.NewUserRepository(repoConfig)
	clientRepo := postgresCRM.NewClientRepository(repoConfig)
	projectRepo := postgresCRM.NewProjectRepository(repoConfig)
	activityRepo := postgresCRM.NewActivityRepository(repoConfig)
	templateRepo := postgresDocgen.NewTemplateRepository(repoConfig)
	docRepo := postgresDocgen.NewDocumentRepository(repoConfig)
	versionRepo := postgresDocgen.NewVersionRepository(repoConfig)
	txManager := postgres.NewTransactionManager(pool, logger)

	// Services
	activityService := serviceCRM.NewActivityService(activityRepo, logger)
	userService := serviceCRM.NewUserService(userRepo, logger)
	clientService := serviceCRM.NewClientService(clientRepo, revalidator, logger)
	projectService := serviceCRM.NewProjectService(projectRepo, clientRepo, revalidator, logger)

	resolver := serviceDocgen.NewVariableResolver(userRepo, clientRepo, projectRepo, logger)
	templateService := serviceDocgen.NewTemplateService(templateRepo, converter.NewConverterRegistry(), revalidator, logger)
	docService := serviceDocgen.NewDocumentService(docRepo, clientRepo, projectRepo, txManager, activityService, revalidator, logger)
	versionService := serviceDocgen.NewVersionService(docRepo, versionRepo, userRepo, txManager, activityService, logger)
	generator := serviceDocgen.NewDocumentGenerator(serviceDocgen.GeneratorDeps{
		Templates:   templateRepo,
		Documents:   docRepo,
		Versions:    versionRepo,
		Users:       userRepo,
		Clients:     clientRepo,
		Projects:    projectRepo,
		TxManager:   txManager,
		Activity:    activityService,
		Revalidator: revalidator,
		Logger:      logger,
	})

	// Handlers
	userHandler := handler.NewUserHandler(userService, logger)
	clientHandler := handler.NewClientHandler(clientService, logger)
	projectHandler := handler.NewProjectHandler(projectService, logger)
	activityHandler := handler.NewActivityHandler(activityService, logger)
	variableHandler := handler.NewVariableHandler(resolver, logger)
	templateHandler := handler.NewTemplateHandler(templateService, generator, logger)
	docHandler := handler.NewDocumentHandler(docService, generator, logger)
	versionHandler := handler.NewVersionHandler(versionService, logger)

	logger.Info("services initialized")

	// Create HTTP router (Go 1.22+ enhanced patterns)
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", handler.Health(pool))

	// User routes
	mux.HandleFunc("GET /api/users/me", userHandler.GetProfile)
	mux.HandleFunc("PATCH /api/users/me", userHandler.UpdateProfile)

	// Client routes
	mux.HandleFunc("GET /api/clients", clientHandler.ListClients)
	mux.HandleFunc("POST /api/clients", clientHandler.CreateClient)
	mux.HandleFunc("GET /api/clients/{id}", clientHandler.GetClient)
	mux.HandleFunc("PATCH /api/clients/{id}", clientHandler.UpdateClient)
	mux.HandleFunc("DELETE /api/clients/{id}", clientHandler.DeleteClient)

	// Project routes
	mux.HandleFunc("GET /api/projects", projectHandler.ListProjects)
	mux.HandleFunc("POST /api/projects", projectHandler.CreateProject)
	mux.HandleFunc("GET /api/projects/{id}", projectHandler.GetProject)
	mux.HandleFunc("PATCH /api/projects/{id}", projectHandler.UpdateProject)
	mux.HandleFunc("DELETE /api/projects/{id}", projectHandler.DeleteProject)

	// Variable preview
	mux.HandleFunc("GET /api/variables", variableHandler.ResolveVariables)

	// Template routes
	mux.HandleFunc("GET /api/templates", templateHandler.ListTemplates)
	mux.HandleFunc("POST /api/templates", templateHandler.CreateTemplate)
	mux.HandleFunc("POST /api/templates/import", templateHandler.ImportTemplate)
	mux.HandleFunc("GET /api/templates/{id}", templateHandler.GetTemplate)
	mux.HandleFunc("PATCH /api/templates/{id}", templateHandler.UpdateTemplate)
	mux.HandleFunc("DELETE /api/templates/{id}", templateHandler.DeleteTemplate)
	mux.HandleFunc("POST /api/templates/{id}/documents", templateHandler.GenerateFromTemplate)

	// Document routes
	mux.HandleFunc("POST /api/documents/generate", docHandler.GenerateDocument) // Must come before {id} routes
	mux.HandleFunc("GET /api/documents", docHandler.ListDocuments)
	mux.HandleFunc("POST /api/documents", docHandler.CreateDocument)
	mux.HandleFunc("GET /api/documents/{id}", docHandler.GetDocument)
	mux.HandleFunc("PATCH /api/documents/{id}", docHandler.UpdateDocument)
	mux.HandleFunc("DELETE /api/documents/{id}", docHandler.DeleteDocument)
	mux.HandleFunc("PATCH /api/documents/{id}/status", docHandler.ChangeStatus)
	mux.HandleFunc("GET /api/documents/{id}/export", docHandler.ExportDocument)

	// Version routes
	mux.HandleFunc("GET /api/documents/{id}/versions", versionHandler.ListVersions)
	mux.HandleFunc("POST /api/documents/{id}/versions", versionHandler.CreateVersion)
	mux.HandleFunc("POST /api/documents/{id}/versions/{versionId}/restore", versionHandler.RestoreVersion)

	// Activity timeline
	mux.HandleFunc("GET /api/activity", activityHandler.ListActivity)

	// Build middleware chain
	var handler http.Handler = mux

	// Apply middleware in reverse order (they wrap each other)
	// Order: CORS → Recovery → Auth → EnsureProfile → Routes
	handler = middleware.EnsureProfile(userService, logger)(handler)
	handler = middleware.AuthMiddleware(jwtVerifier, logger)(handler)
	handler = middleware.Recovery(logger)(handler)

	// CORS - Must be before auth to handle OPTIONS pre-flight requests
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
	})
	handler = corsHandler.Handler(handler)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown failed", "error", err)
		}
	}()

	logger.Info("server listening", "port", cfg.Port)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// setupRevalidator connects to Redis when REDIS_URL is set, otherwise stale
// paths are only logged. The returned func drains pending publishes.
func setupRevalidator(ctx context.Context, cfg *config.Config, logger *slog.Logger) (crmSvc.Revalidator, func()) {
	if cfg.RedisURL == "" {
		logger.Info("REDIS_URL not set, revalidation events will be logged only")
		return notify.NewLogRevalidator(logger), func() {}
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Fatalf("Failed to parse REDIS_URL: %v", err)
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		// Revalidation is best-effort; keep serving without it
		logger.Warn("redis unreachable, revalidation events may be dropped", "error", err)
	} else {
		logger.Info("redis connected", "channel", notify.RevalidateChannel)
	}

	revalidator := notify.NewRedisRevalidator(client, logger)
	return revalidator, func() {
		revalidator.Wait()
		_ = client.Close()
	}
}
