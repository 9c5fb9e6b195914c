package app

import (
	"fmt"
	"net/http"

	"github.com/thinh1311ss/IE105/internal/config"
	"github.com/thinh1311ss/IE105/internal/logger"
	"github.com/thinh1311ss/IE105/internal/routes"
	"github.com/thinh1311ss/IE105/internal/services"
	"github.com/thinh1311ss/IE105/internal/services/ai"
	"github.com/thinh1311ss/IE105/internal/services/ingest"
	"github.com/thinh1311ss/IE105/internal/services/mail"
	"github.com/thinh1311ss/IE105/internal/services/storage"
)

type App struct {
	config   *config.Config
	logger   *logger.Logger
	scorer   *ai.Scorer
	store    *storage.UploadStore
	pipeline *services.Pipeline
}

// NewApp loads configuration and wires every service. Missing required config
// or an unloadable model fails construction so the server never starts in a
// broken state.
func NewApp() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	log := logger.NewLogger(cfg)

	scorer, err := ai.NewScorer(cfg, log)
	if err != nil {
		return nil, err
	}

	store, err := storage.NewUploadStore(cfg, log)
	if err != nil {
		scorer.Close()
		return nil, err
	}

	decoder := ingest.NewService(log)
	notifier := mail.NewSender(cfg, log)
	pipeline := services.NewPipeline(decoder, store, scorer, notifier, log)

	return &App{
		config:   cfg,
		logger:   log,
		scorer:   scorer,
		store:    store,
		pipeline: pipeline,
	}, nil
}

func (a *App) Run() error {
	go a.store.Run(a.config.SweepInterval)

	router := routes.SetupRoutes(a.pipeline, a.store, a.config, a.logger)

	height, width := a.scorer.InputSize()
	a.logger.Info("Fire detection server listening on port %d", a.config.Port)
	a.logger.Info("Alerts sent from: %s", a.config.EmailAddress)
	a.logger.Info("Model input size: %dx%d", height, width)
	a.logger.Info("Uploads: %s", a.config.UploadFolder)

	return http.ListenAndServe(fmt.Sprintf(":%d", a.config.Port), router)
}

func (a *App) Close() {
	a.scorer.Close()
}
