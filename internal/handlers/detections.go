package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"homewatch/internal/logger"
	"homewatch/internal/models"
	"homewatch/internal/repository"
)

// writeJSON writes v as a JSON response.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// queryInt reads an integer query parameter with a default.
func queryInt(r *http.Request, key string, defaultValue int) int {
	if value := r.URL.Query().Get(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// queryFloat reads a float query parameter with a default.
func queryFloat(r *http.Request, key string, defaultValue float64) float64 {
	if value := r.URL.Query().Get(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

// RecentDetectionsHandler serves facts from the last N hours
// (?hours=24&limit=50), most recent first.
func RecentDetectionsHandler(log repository.DetectionLog, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		hours := queryFloat(r, "hours", 24)
		limit := queryInt(r, "limit", 50)

		window := time.Duration(hours * float64(time.Hour))
		facts, err := log.Recent(window, limit)
		if err != nil {
			logger.Error("Recent query failed: %v", err)
			http.Error(w, "Failed to query detections", http.StatusInternalServerError)
			return
		}

		if facts == nil {
			facts = []models.DetectionFact{}
		}
		writeJSON(w, http.StatusOK, facts)
	}
}

// HistoryHandler serves the detection history of one object
// (?object=cup&limit=10), most recent first.
func HistoryHandler(log repository.DetectionLog, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		object := r.URL.Query().Get("object")
		if object == "" {
			http.Error(w, "Missing 'object' parameter", http.StatusBadRequest)
			return
		}
		limit := queryInt(r, "limit", 10)

		facts, err := log.History(object, limit)
		if err != nil {
			logger.Error("History query failed for %s: %v", object, err)
			http.Error(w, "Failed to query history", http.StatusInternalServerError)
			return
		}

		if facts == nil {
			facts = []models.DetectionFact{}
		}
		writeJSON(w, http.StatusOK, facts)
	}
}

// SearchByLocationHandler serves facts whose location contains the
// keyword (?location=desk) as a case-sensitive substring.
func SearchByLocationHandler(log repository.DetectionLog, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		keyword := r.URL.Query().Get("location")
		if keyword == "" {
			http.Error(w, "Missing 'location' parameter", http.StatusBadRequest)
			return
		}

		facts, err := log.SearchByLocation(keyword)
		if err != nil {
			logger.Error("Location search failed for %q: %v", keyword, err)
			http.Error(w, "Failed to search detections", http.StatusInternalServerError)
			return
		}

		if facts == nil {
			facts = []models.DetectionFact{}
		}
		writeJSON(w, http.StatusOK, facts)
	}
}

// ObjectNamesHandler serves every object name ever detected, sorted.
func ObjectNamesHandler(log repository.DetectionLog, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		names, err := log.DistinctObjectNames()
		if err != nil {
			logger.Error("Object names query failed: %v", err)
			http.Error(w, "Failed to query object names", http.StatusInternalServerError)
			return
		}

		if names == nil {
			names = []string{}
		}
		writeJSON(w, http.StatusOK, names)
	}
}
