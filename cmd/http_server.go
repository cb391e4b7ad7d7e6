package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/AtirathTechnologies/warehouse-hub/internal"
	"github.com/AtirathTechnologies/warehouse-hub/internal/access"
	"github.com/AtirathTechnologies/warehouse-hub/internal/auditlog"
	auditlogPostgres "github.com/AtirathTechnologies/warehouse-hub/internal/auditlog/postgres"
	"github.com/AtirathTechnologies/warehouse-hub/internal/auth"
	authPostgres "github.com/AtirathTechnologies/warehouse-hub/internal/auth/postgres"
	"github.com/AtirathTechnologies/warehouse-hub/internal/catalog"
	catalogPostgres "github.com/AtirathTechnologies/warehouse-hub/internal/catalog/postgres"
	"github.com/AtirathTechnologies/warehouse-hub/internal/report"
	reportPostgres "github.com/AtirathTechnologies/warehouse-hub/internal/report/postgres"
	"github.com/AtirathTechnologies/warehouse-hub/internal/settings"
	"github.com/AtirathTechnologies/warehouse-hub/internal/stock"
	stockPostgres "github.com/AtirathTechnologies/warehouse-hub/internal/stock/postgres"
	"github.com/AtirathTechnologies/warehouse-hub/internal/store"
	storePostgres "github.com/AtirathTechnologies/warehouse-hub/internal/store/postgres"
	"github.com/AtirathTechnologies/warehouse-hub/internal/transport"
	"github.com/AtirathTechnologies/warehouse-hub/internal/transport/rest"
	"github.com/AtirathTechnologies/warehouse-hub/internal/transport/swagger"
	"github.com/AtirathTechnologies/warehouse-hub/internal/user"
	userPostgres "github.com/AtirathTechnologies/warehouse-hub/internal/user/postgres"
	"github.com/AtirathTechnologies/warehouse-hub/pkg/logger"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

var specPath string

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

func init() {
	httpServerCmd.Flags().StringVar(&specPath, "spec", swagger.DefaultSpecPath, "path of the OpenAPI document served at /openapi.yml")
}

type Dependencies struct {
	Config   *internal.Config
	DB       *sqlx.DB
	GormDB   *gorm.DB
	Docs     *documentStore
	Router   *chi.Mux
	Logger   *slog.Logger
	Settings *settings.Service
	Access   *access.Service
	Audit    *auditlog.Writer
}

func startHTTPServer() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	deps, err := initializeDependencies(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	setupRoutes(deps)

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("Starting HTTP server", "address", addr, "store_driver", deps.Config.Store.Driver)

	server := &http.Server{
		Addr:              addr,
		Handler:           deps.Router,
		ReadHeaderTimeout: deps.Config.Server.ReadHeaderTimeout,
		ReadTimeout:       deps.Config.Server.ReadTimeout,
		WriteTimeout:      deps.Config.Server.WriteTimeout,
		IdleTimeout:       deps.Config.Server.IdleTimeout,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("Received signal, shutting down...", "signal", sig)
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			deps.Logger.Error("Server shutdown error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			deps.Logger.Error("Server failed to start", "error", err)
			deps.close()
			os.Exit(1)
		}
	}

	cancel()
	deps.close()
	deps.Logger.Info("Server stopped")
}

// close stops subscribers first so nothing appends to the audit writer after it drains.
func (d *Dependencies) close() {
	d.Access.Stop()
	d.Settings.Stop()
	d.Audit.Shutdown()
	if err := d.DB.Close(); err != nil {
		d.Logger.Error("Database close error", "error", err)
	}
}

func setupRoutes(deps *Dependencies) {
	lg := deps.Logger
	base := transport.NewBaseHandler(lg)
	cfg := deps.Config

	tokens := auth.NewJWTTokenGenerator(
		cfg.Security.AccessTokenSecret,
		cfg.Security.RefreshTokenSecret,
		cfg.Security.AccessTokenDuration,
		cfg.Security.RefreshTokenDuration,
	)
	authService := auth.NewService(authPostgres.NewRepository(deps.GormDB), tokens, lg)
	userService := user.NewService(userPostgres.NewRepository(deps.DB), deps.Audit, lg, cfg.Security.BCryptCost)
	auditService := auditlog.NewService(auditlogPostgres.NewAuditLogRepository(deps.GormDB), lg)
	reportService := report.NewService(reportPostgres.NewReportRepository(deps.GormDB), deps.Access, deps.Audit, lg)
	stockService := stock.NewService(stockPostgres.NewStockRepository(deps.GormDB), deps.Audit, lg)
	catalogService := catalog.NewService(catalogPostgres.NewCatalogRepository(deps.GormDB), deps.Audit, lg)

	handlers := rest.Handlers{
		Auth:     auth.NewHandler(base, authService),
		User:     user.NewHandler(base, userService),
		Access:   access.NewHandler(base, deps.Access),
		Guard:    access.NewGuard(deps.Access, lg),
		Settings: settings.NewHandler(base, deps.Settings),
		AuditLog: auditlog.NewHandler(base, auditService),
		Report:   report.NewHandler(base, reportService),
		Stock:    stock.NewHandler(base, stockService),
		Catalog:  catalog.NewHandler(base, catalogService),
	}

	rest.RegisterAllRoutes(deps.Router, deps.DB.DB, handlers, rest.Options{
		AllowedOrigins: cfg.Server.Origins(),
		SpecPath:       specPath,
		HealthChecks:   deps.Docs.healthChecks(),
	}, lg)
}

func initializeDependencies(ctx context.Context) (*Dependencies, error) {
	config, err := loadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	lg := logger.LoggerWrapper()

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	gormDB, err := initGorm(db)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize gorm: %w", err)
	}

	docs := openDocumentStore(ctx, config, gormDB, lg)

	writer := auditlog.NewWriter(auditlogPostgres.NewAuditLogRepository(gormDB), auditlog.WriterConfig{
		MaxWorkers:   config.Audit.MaxWorkers,
		QueueSize:    config.Audit.QueueSize,
		WriteTimeout: config.Audit.WriteTimeout,
	}, lg)

	settingsService := settings.NewService(docs.DocumentStore, writer, lg)
	if err := settingsService.Start(ctx); err != nil {
		writer.Shutdown()
		_ = db.Close()
		return nil, fmt.Errorf("failed to start settings service: %w", err)
	}

	accessService := access.NewService(docs.DocumentStore, lg)
	if err := accessService.Start(ctx); err != nil {
		settingsService.Stop()
		writer.Shutdown()
		_ = db.Close()
		return nil, fmt.Errorf("failed to start access service: %w", err)
	}

	return &Dependencies{
		Config:   config,
		DB:       db,
		GormDB:   gormDB,
		Docs:     docs,
		Router:   chi.NewRouter(),
		Logger:   lg,
		Settings: settingsService,
		Access:   accessService,
		Audit:    writer,
	}, nil
}

// initDB initializes the database connection
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	dbConn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}

// initGorm shares the sqlx pool with gorm so both see the same connections.
func initGorm(db *sqlx.DB) (*gorm.DB, error) {
	return gorm.Open(postgres.New(postgres.Config{Conn: db.DB}), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Warn),
	})
}

// documentStore is the settings store selected by store.driver.
type documentStore struct {
	store.DocumentStore
	repo store.Repository
}

// openDocumentStore builds the configured store. With the postgres driver a
// listener goroutine keeps this process in sync with the others until ctx ends.
func openDocumentStore(ctx context.Context, cfg *internal.Config, gormDB *gorm.DB, lg *slog.Logger) *documentStore {
	if cfg.Store.Driver == "memory" {
		lg.Warn("settings store is in memory, changes are not shared between processes")
		return &documentStore{DocumentStore: store.NewHub(lg)}
	}

	repo := storePostgres.NewDocumentRepository(gormDB, cfg.Store.NotifyChannel)
	persistent := store.NewPersistent(repo, lg)

	listener := storePostgres.NewListener(cfg.Database.GetDSN(), cfg.Store.NotifyChannel, persistent, lg)
	go func() {
		if err := listener.Run(ctx); err != nil {
			lg.Error("settings listener stopped", "error", err)
		}
	}()

	return &documentStore{DocumentStore: persistent, repo: repo}
}

func (d *documentStore) healthChecks() map[string]rest.Check {
	if d.repo == nil {
		return nil
	}
	return map[string]rest.Check{
		"settings_store": func(ctx context.Context) error {
			_, err := d.repo.Get(ctx, store.KeyUserRules)
			return err
		},
	}
}
