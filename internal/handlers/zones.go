package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"homewatch/internal/logger"
	"homewatch/internal/models"
	"homewatch/internal/services"
	"homewatch/internal/zones"
)

// zonePayload is the wire shape of one zone in the HTTP API, matching
// the on-disk zones file.
type zonePayload struct {
	Name      string    `json:"name"`
	Bbox      []float64 `json:"bbox"`
	CreatedAt int64     `json:"created_at,omitempty"`
}

// GetZonesHandler serves the current zone set in definition order.
func GetZonesHandler(store *zones.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		zoneSet := store.Load()

		payload := make([]zonePayload, 0, len(zoneSet))
		for _, zone := range zoneSet {
			entry := zonePayload{
				Name: zone.Name,
				Bbox: []float64{zone.X, zone.Y, zone.W, zone.H},
			}
			if !zone.CreatedAt.IsZero() {
				entry.CreatedAt = zone.CreatedAt.Unix()
			}
			payload = append(payload, entry)
		}

		writeJSON(w, http.StatusOK, payload)
	}
}

// ReplaceZonesHandler atomically replaces the whole zone set with the
// posted list. Partial updates do not exist; the body is the new set.
func ReplaceZonesHandler(store *zones.Store, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut && r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var payload []zonePayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			http.Error(w, "Invalid zone list: "+err.Error(), http.StatusBadRequest)
			return
		}

		zoneSet := make([]models.Zone, 0, len(payload))
		for _, entry := range payload {
			if len(entry.Bbox) != 4 {
				http.Error(w, "Zone '"+entry.Name+"' needs a 4-element bbox", http.StatusBadRequest)
				return
			}
			zone := models.Zone{
				Name: entry.Name,
				X:    entry.Bbox[0],
				Y:    entry.Bbox[1],
				W:    entry.Bbox[2],
				H:    entry.Bbox[3],
			}
			if entry.CreatedAt != 0 {
				zone.CreatedAt = time.Unix(entry.CreatedAt, 0)
			}
			zoneSet = append(zoneSet, zone)
		}

		if err := store.Replace(zoneSet); err != nil {
			logger.Error("Zone replace failed: %v", err)
			http.Error(w, "Failed to replace zones: "+err.Error(), http.StatusBadRequest)
			return
		}

		writeJSON(w, http.StatusOK, map[string]interface{}{
			"status": "ok",
			"zones":  len(zoneSet),
		})
	}
}

// ReloadZonesHandler is the operator's "zones changed" signal: it makes
// the pipeline re-read the zone store without a restart, for when the
// zones file was edited out of band.
func ReloadZonesHandler(pipeline *services.Pipeline) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		pipeline.ReloadZones()

		writeJSON(w, http.StatusOK, map[string]interface{}{
			"status": "ok",
			"zones":  len(pipeline.Zones()),
		})
	}
}
