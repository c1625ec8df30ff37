package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	appControllers "github.com/derick/campusqr/internal/app/controllers"
	appMigrations "github.com/derick/campusqr/internal/app/migrations"
	appRepos "github.com/derick/campusqr/internal/app/repositories"
	appRoutes "github.com/derick/campusqr/internal/app/routes"
	appServices "github.com/derick/campusqr/internal/app/services"
	"github.com/derick/campusqr/internal/config"
	"github.com/derick/campusqr/internal/db"
	"github.com/derick/campusqr/internal/metrics"
	appMiddleware "github.com/derick/campusqr/internal/middleware"
	pkgAuth "github.com/derick/campusqr/internal/pkg/auth"
	"github.com/derick/campusqr/internal/pkg/filestorage"
	"github.com/derick/campusqr/internal/pkg/helpers"
	"github.com/derick/campusqr/internal/pkg/logger"
	"github.com/derick/campusqr/internal/pkg/qrtoken"
	"github.com/derick/campusqr/internal/seed"
)

// Dependencies holds all the application dependencies
type Dependencies struct {
	AuthService         *appServices.AuthService
	StudentService      *appServices.StudentService
	ScanService         *appServices.ScanService
	UserService         *appServices.UserService
	DashboardService    *appServices.DashboardService
	AuthController      *appControllers.AuthController
	StudentController   *appControllers.StudentController
	ScanController      *appControllers.ScanController
	UserController      *appControllers.UserController
	DashboardController *appControllers.DashboardController
	AuthMiddleware      *appMiddleware.AuthMiddleware
	ScanRateLimiter     *appMiddleware.RateLimiter
	Repos               *appRepos.Repositories
	JWTService          *pkgAuth.JWTService
	TokenCodec          *qrtoken.Codec
	FileStorage         *filestorage.LocalStorage
	MetricsRegistry     *prometheus.Registry
	Metrics             *metrics.Collector
	Logger              zerolog.Logger
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, error) {
	configPath := filepath.Join("configs", "config.yaml")
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logLevel := logger.LogLevel(strings.ToLower(cfg.Logging.Level))
	prettyLog := strings.ToLower(cfg.Logging.Format) == "text"

	logger.Configure(logger.Config{
		Level:  logLevel,
		Pretty: prettyLog,
	})

	lgr := log.Logger
	lgr.Info().Str("logLevel", string(logLevel)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupDatabase establishes the database connection and runs migrations.
func SetupDatabase(cfg *config.Config, lgr zerolog.Logger) (*pgxpool.Pool, error) {
	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}
	dbPool := database.Pool

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := dbPool.Ping(ctx); err != nil {
		lgr.Error().Err(err).Msg("Failed to ping database")
		dbPool.Close()
		return nil, err
	}
	lgr.Info().Msg("Database connection successfully established.")

	lgr.Info().Msg("Running database migrations...")
	migrator := appMigrations.NewMigrator(dbPool)

	migrationsDir := "migrations"
	if _, err := os.Stat(migrationsDir); os.IsNotExist(err) {
		lgr.Error().Str("path", migrationsDir).Msg("Migrations directory not found")
		return nil, fmt.Errorf("migrations directory not found at %s: %w", migrationsDir, err)
	}

	if err := migrator.MigrateFromDirectory(migrationsDir); err != nil {
		lgr.Error().Err(err).Msg("Database migration error")
		return nil, fmt.Errorf("database migrations failed: %w", err)
	}

	lgr.Info().Msg("Database migrations successfully applied.")

	// Create default data (after migrations)
	if err := seed.CreateDefaultData(context.Background(), dbPool, lgr); err != nil {
		// Log the error but don't fail the startup
		lgr.Error().Err(err).Msg("Failed to create default data, proceeding anyway...")
	}

	return dbPool, nil
}

// BuildDependencies initializes application repositories, services, and controllers.
func BuildDependencies(cfg *config.Config, dbPool *pgxpool.Pool, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Logger: lgr}

	deps.Repos = appRepos.NewRepositories(dbPool)

	// Initialize file storage; baseURL must match the static file serving path
	baseURL := "http://localhost:" + cfg.Server.Port + "/uploads"
	var err error
	deps.FileStorage, err = filestorage.NewLocalStorage(cfg.Server.StoragePath, baseURL)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to initialize file storage")
		return nil, fmt.Errorf("failed to initialize file storage: %w", err)
	}

	deps.TokenCodec, err = qrtoken.NewCodec(cfg.Security.QRSecret)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to initialize QR token codec")
		return nil, fmt.Errorf("failed to initialize QR token codec: %w", err)
	}

	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:   cfg.JWT.Secret,
		TokenExp:    helpers.ParseDuration(cfg.JWT.TokenExpiration, 24*time.Hour),
		TokenIssuer: cfg.JWT.Issuer,
	})

	deps.MetricsRegistry = prometheus.NewRegistry()
	deps.Metrics = metrics.NewCollector(deps.MetricsRegistry)

	// Initialize services
	deps.AuthService = appServices.NewAuthService(deps.Repos.UserRepository, deps.JWTService, lgr)
	deps.StudentService = appServices.NewStudentService(deps.Repos.StudentRepository, deps.TokenCodec, deps.FileStorage, lgr)
	deps.ScanService = appServices.NewScanService(deps.Repos.StudentRepository, deps.Repos.AccessLogRepository, deps.TokenCodec, lgr)
	deps.UserService = appServices.NewUserService(deps.Repos.UserRepository, lgr)
	deps.DashboardService = appServices.NewDashboardService(deps.Repos.StudentRepository, deps.Repos.AccessLogRepository, lgr)

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService)
	deps.ScanRateLimiter = appMiddleware.NewRateLimiter(appMiddleware.RateLimiterConfig{
		RatePerMin: cfg.Security.ScanRatePerMin,
		Burst:      cfg.Security.ScanRateBurst,
	})

	deps.AuthController = appControllers.NewAuthController(deps.AuthService)
	deps.StudentController = appControllers.NewStudentController(deps.StudentService)
	deps.ScanController = appControllers.NewScanController(deps.ScanService, deps.Metrics)
	deps.UserController = appControllers.NewUserController(deps.UserService)
	deps.DashboardController = appControllers.NewDashboardController(deps.DashboardService)

	return deps, nil
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) *gin.Engine {
	if strings.ToLower(cfg.Server.Mode) == "production" {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	router := gin.Default()

	router.Use(appMiddleware.CORS(cfg.Security.AllowedOrigins))

	appRoutes.SetupSwagger(router)

	appRoutes.SetupRouter(router,
		deps.AuthController,
		deps.StudentController,
		deps.ScanController,
		deps.UserController,
		deps.DashboardController,
		deps.AuthMiddleware,
		deps.ScanRateLimiter,
	)

	// Prometheus metrics endpoint
	router.GET("/metrics", gin.WrapH(metrics.Handler(deps.MetricsRegistry)))

	// Test endpoint
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong", "status": "success"})
	})

	return router
}
