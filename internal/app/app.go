package app

import (
	"fmt"
	"net/http"

	"homewatch/internal/config"
	"homewatch/internal/logger"
	"homewatch/internal/metrics"
	"homewatch/internal/repository/sqlite"
	"homewatch/internal/routes"
	"homewatch/internal/services"
	"homewatch/internal/services/ai"
	"homewatch/internal/services/assistant"
	"homewatch/internal/services/ollama"
	"homewatch/internal/services/storage"
	ws "homewatch/internal/services/websocket"
	"homewatch/internal/zones"
)

type App struct {
	config     *config.Config
	logger     *logger.Logger
	db         *sqlite.DB
	store      *zones.Store
	pipeline   *services.Pipeline
	source     *services.ChannelSource
	hub        *ws.HubService
	buffer     *storage.BufferService
	bufferStop chan struct{}
	router     http.Handler
}

func NewApp() (*App, error) {
	cfg := config.Load()
	log := logger.NewLogger(cfg.LogDirectory)

	db, err := sqlite.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open detection database: %w", err)
	}

	detectionLog := sqlite.NewDetectionRepository(db)
	store := zones.NewStore(cfg.ZonesFile, log)
	m := metrics.New()
	hub := ws.NewHubService(log)
	buffer := storage.NewBufferService(cfg.SnapshotDirectory, cfg.SnapshotBufferLimit, log)
	detector := ai.NewDetectorService(cfg.ModelPath, cfg.ModelConfigPath, cfg.ConfidenceThreshold, log)
	generator := ollama.NewClient(cfg.OllamaURL, cfg.OllamaModel)

	pipeline := services.NewPipeline(store, detectionLog, cfg.ZoneOnly, m, hub, buffer, detector, log)
	asst := assistant.New(detectionLog, store, generator, cfg.ZoneOnly, log)
	source := services.NewChannelSource(100)

	router := routes.SetupRoutes(routes.Deps{
		Config:    cfg,
		Logger:    log,
		Log:       detectionLog,
		Store:     store,
		Pipeline:  pipeline,
		Assistant: asst,
		Detector:  detector,
		Source:    source,
		Hub:       hub,
		Metrics:   m,
	})

	return &App{
		config:     cfg,
		logger:     log,
		db:         db,
		store:      store,
		pipeline:   pipeline,
		source:     source,
		hub:        hub,
		buffer:     buffer,
		bufferStop: make(chan struct{}),
		router:     router,
	}, nil
}

// Run starts the background services and serves HTTP until the process
// is stopped.
func (a *App) Run() error {
	go a.hub.Run()
	go a.buffer.Run(a.config.SnapshotFlushInterval, a.bufferStop)

	if err := a.pipeline.Start(a.source); err != nil {
		return err
	}

	a.logger.Info("🤖 Homewatch server listening on http://localhost:%d", a.config.Port)
	a.logger.Info("📍 Zones file: %s", a.store.Path())
	a.logger.Info("🗄  Detection log: %s", a.config.DBPath)

	return http.ListenAndServe(fmt.Sprintf(":%d", a.config.Port), a.router)
}

// Stop shuts ingestion down in order: no new frames, finish the
// in-flight frame, flush snapshots, close the database.
func (a *App) Stop() {
	a.source.Close()
	a.pipeline.Stop()
	close(a.bufferStop)
	a.buffer.Flush()

	if err := a.db.Close(); err != nil {
		a.logger.Error("Error closing database: %v", err)
	}
}
