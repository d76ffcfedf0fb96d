package routes

import (
	"net/http"

	"homewatch/internal/config"
	"homewatch/internal/handlers"
	"homewatch/internal/logger"
	"homewatch/internal/metrics"
	"homewatch/internal/middleware"
	"homewatch/internal/repository"
	"homewatch/internal/services"
	"homewatch/internal/services/ai"
	"homewatch/internal/services/assistant"
	ws "homewatch/internal/services/websocket"
	"homewatch/internal/zones"
)

// Deps bundles everything the HTTP surface needs.
type Deps struct {
	Config    *config.Config
	Logger    *logger.Logger
	Log       repository.DetectionLog
	Store     *zones.Store
	Pipeline  *services.Pipeline
	Assistant *assistant.Assistant
	Detector  *ai.DetectorService
	Source    *services.ChannelSource
	Hub       *ws.HubService
	Metrics   *metrics.Metrics
}

// SetupRoutes registers API endpoints and wraps the mux with the
// authentication middleware.
func SetupRoutes(d Deps) http.Handler {
	mux := http.NewServeMux()

	// Detection memory queries
	mux.HandleFunc("/api/detections/recent", handlers.RecentDetectionsHandler(d.Log, d.Logger))
	mux.HandleFunc("/api/detections/history", handlers.HistoryHandler(d.Log, d.Logger))
	mux.HandleFunc("/api/detections/search", handlers.SearchByLocationHandler(d.Log, d.Logger))
	mux.HandleFunc("/api/objects", handlers.ObjectNamesHandler(d.Log, d.Logger))

	// Zone definitions
	mux.HandleFunc("/api/zones", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			handlers.GetZonesHandler(d.Store)(w, r)
			return
		}
		handlers.ReplaceZonesHandler(d.Store, d.Logger)(w, r)
	})
	mux.HandleFunc("/api/zones/reload", handlers.ReloadZonesHandler(d.Pipeline))

	// Assistant
	mux.HandleFunc("/api/ask", handlers.AskHandler(d.Assistant))
	mux.HandleFunc("/api/status", handlers.StatusHandler(d.Assistant, d.Pipeline))

	// Ingest and live events
	mux.HandleFunc("/api/camera/upload", handlers.CameraUploadHandler(d.Detector, d.Source, d.Logger))
	mux.HandleFunc("/api/events", handlers.EventsHandler(d.Hub, d.Logger))

	// Log endpoints
	mux.HandleFunc("/logs/info", handlers.ShowInfoLogsHandler(d.Config))
	mux.HandleFunc("/logs/warning", handlers.ShowWarningLogsHandler(d.Config))
	mux.HandleFunc("/logs/error", handlers.ShowErrorLogsHandler(d.Config))

	mux.HandleFunc("/logs/info/clear", handlers.ClearInfoLogsHandler(d.Logger))
	mux.HandleFunc("/logs/warning/clear", handlers.ClearWarningLogsHandler(d.Logger))
	mux.HandleFunc("/logs/error/clear", handlers.ClearErrorLogsHandler(d.Logger))

	// Auth endpoints
	mux.HandleFunc("/auth/login", handlers.LoginHandler(d.Config, d.Logger))
	mux.HandleFunc("/auth/logout", handlers.LogoutHandler)

	// Prometheus scrape endpoint
	mux.Handle("/metrics", d.Metrics.Handler())

	return middleware.AuthMiddleware(mux)
}
