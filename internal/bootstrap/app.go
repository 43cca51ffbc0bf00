package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/locvowork/asset_management/internal/config"
	"github.com/locvowork/asset_management/internal/database"
	"github.com/locvowork/asset_management/internal/domain"
	"github.com/locvowork/asset_management/internal/handler"
	"github.com/locvowork/asset_management/internal/logger"
	"github.com/locvowork/asset_management/internal/repository"
	"github.com/locvowork/asset_management/internal/service"
)

type App struct {
	Echo *echo.Echo

	// Backend handles; only the one selected by STORE_BACKEND is set.
	DB              *sql.DB
	DataStoreClient *database.DatastoreClient
	MongoClient     *database.MongoClient
	SearchClient    *database.ElasticSearchClient

	Assets    domain.AssetRepository
	Employees domain.EmployeeRepository
	Indexer   domain.AssetIndexer

	Assignments *service.AssignmentService
	Sweep       *service.ReconcileService
	Guard       *service.DeletionGuard
	HR          *service.EmployeeService

	// Audit is nil unless the ownership index is configured.
	Audit *service.IndexAudit
}

func NewApp() *App {
	return &App{
		Echo: echo.New(),
	}
}

// Initialize wires the full API process: config, logging, stores, services
// and HTTP routes.
func (a *App) Initialize(ctx context.Context) error {
	if err := a.InitCore(ctx); err != nil {
		return err
	}

	assignHandler := handler.NewAssignmentHandler(a.Assignments, a.Sweep, a.Guard)
	empHandler := handler.NewEmployeeHandler(a.HR)

	a.RegisterMiddlewares()
	a.RegisterRoutes(assignHandler, empHandler)
	return nil
}

// InitCore loads configuration, opens the selected store and builds the
// services. The CLIs use it without the HTTP layer.
func (a *App) InitCore(ctx context.Context) error {
	if err := config.LoadEnvConfig(); err != nil {
		return fmt.Errorf("failed to load env config: %w", err)
	}
	cfg := config.DefaultEnvConfig

	logger.InitLogging(cfg.LOG_FILE_PATH, cfg.LOG_LEVEL)
	logger.InfoLog(ctx, "Environment variables loaded successfully")

	if err := a.InitStores(ctx); err != nil {
		return err
	}
	if err := a.InitIndexer(ctx); err != nil {
		return err
	}
	a.InitServices()
	return nil
}

// InitStores opens the backend named by STORE_BACKEND.
func (a *App) InitStores(ctx context.Context) error {
	cfg := config.DefaultEnvConfig

	switch cfg.STORE_BACKEND {
	case config.BackendMemory:
		a.Assets = database.NewMemoryAssetStore()
		a.Employees = database.NewMemoryEmployeeStore()

	case config.BackendDatastore:
		client, err := database.NewDatastoreClient(ctx, cfg.DATASTORE_PROJECT_ID)
		if err != nil {
			return fmt.Errorf("failed to initialize datastore: %w", err)
		}
		a.DataStoreClient = client
		a.Assets = client.Assets()
		a.Employees = client.Employees()

	case config.BackendMongo:
		client, err := database.NewMongoClient(ctx, cfg.MONGO_URI, cfg.MONGO_DATABASE)
		if err != nil {
			return fmt.Errorf("failed to initialize mongo: %w", err)
		}
		a.MongoClient = client
		a.Assets = client.Assets()
		a.Employees = client.Employees()

	case config.BackendPostgres:
		dbConfig := database.Config{
			Host:            cfg.DB_HOST,
			Port:            cfg.DB_PORT,
			User:            cfg.DB_USER,
			Password:        cfg.DB_PASSWORD,
			DBName:          cfg.DB_NAME,
			SSLMode:         cfg.DB_SSL_MODE,
			MaxOpenConns:    cfg.DB_MAX_OPEN_CONNS,
			MaxIdleConns:    cfg.DB_MAX_IDLE_CONNS,
			ConnMaxLifetime: cfg.DB_CONN_MAX_LIFETIME,
		}
		db, err := database.NewPostgresDB(ctx, dbConfig)
		if err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		if err := repository.EnsureSchema(ctx, db); err != nil {
			db.Close()
			return err
		}
		a.DB = db
		a.Assets = repository.NewAssetRepository(db)
		a.Employees = repository.NewEmployeeRepository(db)

	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", cfg.STORE_BACKEND)
	}

	logger.InfoLog(ctx, "Using %s store backend", cfg.STORE_BACKEND)
	return nil
}

// InitIndexer connects the ownership index when ES_URL is set.
func (a *App) InitIndexer(ctx context.Context) error {
	cfg := config.DefaultEnvConfig
	if cfg.ES_URL == "" {
		a.Indexer = domain.NopIndexer{}
		return nil
	}

	es, err := database.NewElasticSearchClient(cfg.ES_URL, cfg.ES_INDEX)
	if err != nil {
		return fmt.Errorf("failed to initialize elasticsearch: %w", err)
	}
	a.SearchClient = es
	a.Indexer = es
	logger.InfoLog(ctx, "Ownership index enabled at %s/%s", cfg.ES_URL, cfg.ES_INDEX)
	return nil
}

func (a *App) InitServices() {
	cfg := config.DefaultEnvConfig
	reads := service.ReadRetry{
		MaxRetries:      cfg.READ_RETRY_MAX,
		InitialInterval: cfg.READ_RETRY_INITIAL_INTERVAL,
	}

	a.Guard = service.NewDeletionGuard(a.Assets, a.Employees, reads)
	a.Assignments = service.NewAssignmentService(a.Assets, a.Employees, a.Indexer, reads)
	a.Sweep = service.NewReconcileService(a.Assets, reads, cfg.SWEEP_WORKERS)
	a.HR = service.NewEmployeeService(a.Employees, a.Guard, reads)
	if a.SearchClient != nil {
		a.Audit = service.NewIndexAudit(a.Assets, a.SearchClient, reads)
	}
}

func (a *App) RegisterMiddlewares() {
	a.Echo.Use(middleware.Logger())
	a.Echo.Use(middleware.Recover())
	a.Echo.Use(middleware.CORS())
}

func (a *App) RegisterRoutes(assignHandler *handler.AssignmentHandler, empHandler *handler.EmployeeHandler) {
	assignHandler.RegisterRoutes(a.Echo)
	empHandler.RegisterRoutes(a.Echo)

	a.Echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	a.Echo.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"backend": config.DefaultEnvConfig.STORE_BACKEND,
		})
	})
}

// Close releases whichever backend handles were opened.
func (a *App) Close(ctx context.Context) {
	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			logger.WarnLog(ctx, "failed to close postgres", err)
		}
	}
	if a.DataStoreClient != nil {
		if err := a.DataStoreClient.Close(); err != nil {
			logger.WarnLog(ctx, "failed to close datastore", err)
		}
	}
	if a.MongoClient != nil {
		a.MongoClient.Disconnect(ctx)
	}
}

func (a *App) Run() error {
	defer a.Close(context.Background())
	return a.Echo.Start(":" + config.DefaultEnvConfig.APP_PORT)
}
