package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"

	"github.com/gin-gonic/gin"

	"clinic-backend/internal/documents"
	"clinic-backend/internal/ocr"
	"clinic-backend/internal/shared/config"
	"clinic-backend/internal/shared/server"
	"clinic-backend/internal/shared/storage/db"
)

// App holds shared dependencies.
type App struct {
	Config           config.Config
	Router           *gin.Engine
	DB               *sql.DB
	DocumentsRepo    documents.Repo
	DocumentsService *documents.Service
	DocumentsHandler *documents.Handler
}

// Build prepares the application with the default OCR engine.
func Build(cfg config.Config) (*App, error) {
	return BuildWithEngine(cfg, ocr.New())
}

// BuildWithEngine prepares the application with a caller-supplied OCR engine.
// Tests use it to swap in stub engines.
func BuildWithEngine(cfg config.Config, engine ocr.Engine) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	ctx := context.Background()

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	var repo documents.Repo
	if sqlDB != nil {
		repo = &documents.PGRepo{DB: sqlDB}
	} else {
		repo = documents.NewMemoryRepo()
	}

	svc := &documents.Service{
		Repo:      repo,
		Engine:    engine,
		Gate:      documents.NewUploadGate(cfg.UploadRateMax, cfg.UploadRateWindow, nil),
		Languages: cfg.OCRLanguages,
		MaxBytes:  cfg.MaxUploadBytes,
	}

	app := &App{
		Config:           cfg,
		DB:               sqlDB,
		DocumentsRepo:    repo,
		DocumentsService: svc,
		DocumentsHandler: documents.NewHandler(svc),
	}

	app.Router = server.NewRouter(server.RouterDeps{
		Config:          cfg,
		DocumentHandler: app.DocumentsHandler,
	})

	return app, nil
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: DATABASE_URL empty; using in-memory repository")
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	opts := db.OptionsFromEnv(db.DefaultServerOptions())
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: database connect failed; using in-memory repository: %v", err)
			return nil, nil
		}
		return nil, err
	}

	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return sqlDB, nil
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}
