package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/paisalens/paisalens/internal/domain/advisor"
	"github.com/paisalens/paisalens/internal/domain/analysis"
	"github.com/paisalens/paisalens/internal/domain/report"
	"github.com/paisalens/paisalens/internal/server"
	"github.com/paisalens/paisalens/pkg/config"
	"github.com/paisalens/paisalens/pkg/cron"
	"github.com/paisalens/paisalens/pkg/db"
	"github.com/paisalens/paisalens/pkg/metrics"
	"github.com/paisalens/paisalens/pkg/storage"
)

// Dependencies holds all application dependencies
type Dependencies struct {
	Config  *config.Config
	DB      *db.DB
	Logger  *slog.Logger
	Metrics *metrics.Metrics

	// Storage
	AnalysisRepo analysis.Repository
	FileStorage  storage.Storage
	SearchIndex  *analysis.Search

	// Services
	LLMClient       advisor.Client
	AdvisorService  *advisor.Service
	Mailer          *analysis.Mailer
	AnalysisService *analysis.Service
	TokenIssuer     *report.TokenIssuer

	// Surfaces
	Server    *server.Server
	Scheduler *cron.Scheduler
}

// InitDependencies initializes all application dependencies
func InitDependencies(cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config:  cfg,
		Logger:  logger,
		Metrics: metrics.New(),
	}

	if err := deps.initDatabase(); err != nil {
		return nil, fmt.Errorf("failed to init database: %w", err)
	}

	if err := deps.initStorage(); err != nil {
		return nil, fmt.Errorf("failed to init storage: %w", err)
	}

	if err := deps.initServices(); err != nil {
		return nil, fmt.Errorf("failed to init services: %w", err)
	}

	if err := deps.initServer(); err != nil {
		return nil, fmt.Errorf("failed to init server: %w", err)
	}

	logger.Info("all dependencies initialized successfully")

	return deps, nil
}

// initDatabase initializes the database connection and runs migrations
func (d *Dependencies) initDatabase() error {
	database, err := db.New(db.Config{
		DSN:             d.Config.Database.DSN(),
		MaxConns:        25,
		MinConns:        5,
		MaxConnLifetime: 5 * time.Minute,
		MaxConnIdleTime: 10 * time.Minute,
	}, d.Logger)
	if err != nil {
		return err
	}

	d.DB = database

	if err := d.DB.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	d.Logger.Info("database connected and migrations completed successfully")
	return nil
}

// initStorage initializes the repository, file storage and search index
func (d *Dependencies) initStorage() error {
	d.AnalysisRepo = analysis.NewPostgresRepository(d.DB.Pool)

	fileStorage, err := storage.NewLocalStorage(d.Config.Storage.LocalPath)
	if err != nil {
		return fmt.Errorf("failed to init file storage: %w", err)
	}
	d.FileStorage = fileStorage

	search, err := analysis.NewSearch(d.Config.Storage.IndexPath)
	if err != nil {
		return fmt.Errorf("failed to init search index: %w", err)
	}
	d.SearchIndex = search

	d.Logger.Info("storage initialized",
		slog.String("files", d.Config.Storage.LocalPath),
		slog.String("index", d.Config.Storage.IndexPath),
	)
	return nil
}

// initServices initializes the LLM client and the analysis pipeline
func (d *Dependencies) initServices() error {
	client, err := advisor.NewOpenRouterClient(d.Config.LLM.BaseURL, d.Config.LLM.APIKey, d.Config.LLM.Model)
	if err != nil {
		return fmt.Errorf("failed to init LLM client: %w", err)
	}
	d.LLMClient = client

	d.AdvisorService = advisor.NewService(
		d.LLMClient,
		d.Logger,
		d.Config.LLM.RequestTimeout,
		d.Config.LLM.RatePerSecond,
		d.Config.LLM.RateBurst,
	).WithMetrics(d.Metrics)

	d.Mailer = analysis.NewMailer(d.Config.Mail.ResendAPIKey, d.Config.Mail.FromEmail, d.Logger)
	d.TokenIssuer = report.NewTokenIssuer(d.Config.Report.TokenSecret, d.Config.Report.TokenTTL)

	d.AnalysisService = analysis.NewService(
		d.AnalysisRepo,
		d.AdvisorService,
		d.FileStorage,
		d.SearchIndex,
		d.Config.LLM.Model,
		d.Logger,
	).WithMailer(d.Mailer).WithMetrics(d.Metrics)

	d.Scheduler = cron.NewScheduler(d.AnalysisService, d.Config.Report.RetainFor, d.Logger)

	d.Logger.Info("services initialized",
		slog.String("model", d.Config.LLM.Model),
		slog.Bool("mail_enabled", d.Mailer.Enabled()),
	)
	return nil
}

// initServer initializes the HTTP surface
func (d *Dependencies) initServer() error {
	srv, err := server.New(
		d.AnalysisService,
		d.TokenIssuer,
		d.FileStorage,
		d.Config.Server.SessionSecret,
		d.Config.Server.MaxUploadMB,
		d.Logger,
	)
	if err != nil {
		return err
	}
	d.Server = srv

	d.Logger.Info("server initialized")
	return nil
}

// Cleanup closes all resources
func (d *Dependencies) Cleanup() {
	if d.SearchIndex != nil {
		if err := d.SearchIndex.Close(); err != nil {
			d.Logger.Warn("failed to close search index", slog.Any("error", err))
		}
	}
	if d.DB != nil {
		d.DB.Close()
	}
	d.Logger.Info("cleanup completed")
}
