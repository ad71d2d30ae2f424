package bootstrap

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	appControllers "github.com/yigit/studentregistry/internal/app/controllers"
	appRepos "github.com/yigit/studentregistry/internal/app/repositories"
	appRoutes "github.com/yigit/studentregistry/internal/app/routes"
	appServices "github.com/yigit/studentregistry/internal/app/services"
	"github.com/yigit/studentregistry/internal/app/views"
	"github.com/yigit/studentregistry/internal/config"
	"github.com/yigit/studentregistry/internal/db"
	appMiddleware "github.com/yigit/studentregistry/internal/middleware"
	"github.com/yigit/studentregistry/internal/pkg/filestorage"
	"github.com/yigit/studentregistry/internal/pkg/flash"
	"github.com/yigit/studentregistry/internal/pkg/logger"
	"github.com/yigit/studentregistry/internal/pkg/websocket"
	"github.com/yigit/studentregistry/internal/seed"
)

// Dependencies holds all the application dependencies
type Dependencies struct {
	Repos             *appRepos.Repositories
	PhotoStore        filestorage.PhotoStore
	Flash             *flash.Store
	StudentService    appServices.StudentService
	StudentController *appControllers.StudentController
	Events            *websocket.Hub
	Logger            zerolog.Logger

	stopEvents context.CancelFunc
}

// Close stops background workers started by BuildDependencies
func (d *Dependencies) Close() {
	if d.stopEvents != nil {
		d.stopEvents()
		d.stopEvents = nil
	}
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, error) {
	configPath := filepath.Join("configs", "config.yaml")
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logLevel := logger.ParseLevel(cfg.Logging.Level)
	prettyLog := strings.ToLower(cfg.Logging.Format) == "text"

	lgr := logger.Configure(logger.Config{
		Level:  logLevel,
		Pretty: prettyLog,
	})
	lgr.Info().Str("logLevel", string(logLevel)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupDatabase opens the configured record store and creates the students table.
// Failures never stop startup: an unreachable database yields a repository that reports
// itself unavailable, and a failed table creation is only logged.
func SetupDatabase(cfg *config.Config, lgr zerolog.Logger) *appRepos.Repositories {
	repos, err := openRepositories(cfg, lgr)
	if err != nil {
		lgr.Error().Err(err).Str("driver", cfg.Database.Driver).Msg("Database unavailable, serving in degraded mode")
		return &appRepos.Repositories{StudentRepository: appRepos.NewUnavailableStudentRepository(err)}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := repos.StudentRepository.Initialize(ctx); err != nil {
		lgr.Error().Err(err).Msg("Database initialization skipped")
		return repos
	}
	lgr.Info().Msg("Students table ready.")

	if cfg.Database.SeedDemo {
		if _, err := seed.CreateDemoStudents(ctx, repos.StudentRepository, cfg.Storage.Placeholder); err != nil {
			lgr.Error().Err(err).Msg("Failed to create demo students, proceeding anyway...")
		}
	}
	return repos
}

func openRepositories(cfg *config.Config, lgr zerolog.Logger) (*appRepos.Repositories, error) {
	switch cfg.Database.Driver {
	case config.DriverPostgres:
		lgr.Info().Msg("Establishing PostgreSQL connection...")
		database, err := db.NewPostgresDB(cfg)
		if err != nil {
			return nil, err
		}
		lgr.Info().Msg("PostgreSQL connection successfully established.")
		return appRepos.NewPostgresRepositories(database.Pool), nil
	default:
		lgr.Info().Str("path", cfg.Database.Path).Msg("Opening SQLite database...")
		sqlDB, err := db.OpenSQLite(cfg.Database.Path)
		if err != nil {
			return nil, err
		}
		return appRepos.NewSQLiteRepositories(sqlDB), nil
	}
}

// NewPhotoStore builds the photo store selected by storage.driver
func NewPhotoStore(cfg *config.Config) (filestorage.PhotoStore, error) {
	opts := filestorage.Options{
		AllowedExtensions: cfg.Storage.AllowedExtensions,
		MaxUploadSize:     cfg.Storage.MaxUploadSize,
		MaxDimension:      cfg.Storage.MaxDimension,
		MaxPixels:         cfg.Storage.MaxPixels,
	}

	switch cfg.Storage.Driver {
	case config.StorageCloudinary:
		return filestorage.NewCloudinaryStorage(
			cfg.Cloudinary.CloudName,
			cfg.Cloudinary.APIKey,
			cfg.Cloudinary.APISecret,
			cfg.Cloudinary.Folder,
			opts,
		)
	default:
		return filestorage.NewLocalStorage(cfg.Storage.UploadDir, uploadRefPrefix(cfg), opts)
	}
}

// uploadRefPrefix is the upload directory relative to the static root, so references
// resolve under /static.
func uploadRefPrefix(cfg *config.Config) string {
	rel, err := filepath.Rel(cfg.Server.StaticDir, cfg.Storage.UploadDir)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return "uploads"
	}
	return filepath.ToSlash(rel)
}

// BuildDependencies initializes application services and controllers.
func BuildDependencies(cfg *config.Config, repos *appRepos.Repositories, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Repos: repos, Logger: lgr}

	var err error
	deps.PhotoStore, err = NewPhotoStore(cfg)
	if err != nil {
		lgr.Error().Err(err).Str("driver", cfg.Storage.Driver).Msg("Failed to initialize photo storage")
		return nil, fmt.Errorf("failed to initialize photo storage: %w", err)
	}

	secret := cfg.Server.SessionSecret
	if secret == "" {
		secret, err = flash.RandomSecret()
		if err != nil {
			return nil, err
		}
		lgr.Warn().Msg("SESSION_SECRET not set, using a random key; flash messages will not survive a restart")
	}
	deps.Flash = flash.NewStore(flash.Config{
		SecretKey: secret,
		Secure:    strings.ToLower(cfg.Server.Mode) == "production",
	})

	deps.StudentService = appServices.NewStudentService(repos.StudentRepository, deps.PhotoStore, cfg.Storage.Placeholder)
	if cfg.Server.LiveUpdates {
		var ctx context.Context
		ctx, deps.stopEvents = context.WithCancel(context.Background())
		deps.Events = websocket.NewHub(lgr)
		go deps.Events.Run(ctx)
		lgr.Info().Msg("Live update hub started")
	}
	deps.StudentController = appControllers.NewStudentController(deps.StudentService, deps.Flash, deps.Events)

	return deps, nil
}

// SetupRouter configures the Gin engine with middleware, templates and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) (*gin.Engine, error) {
	if strings.ToLower(cfg.Server.Mode) == "production" {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	router := gin.New()
	router.Use(gin.Recovery(), appMiddleware.RequestLogger())
	router.MaxMultipartMemory = cfg.Storage.MaxUploadSize

	tmpl, err := views.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	router.SetHTMLTemplate(tmpl)

	appRoutes.SetupRouter(router, deps.StudentController, deps.Events, cfg.Server.StaticDir)
	lgr.Info().Str("path", cfg.Server.StaticDir).Msg("Static file serving configured")

	return router, nil
}
