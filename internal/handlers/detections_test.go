package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"homewatch/internal/logger"
	"homewatch/internal/models"
	"homewatch/internal/repository/sqlite"
)

func newTestLog(t *testing.T) (*sqlite.DetectionRepository, *logger.Logger) {
	t.Helper()

	tempDir := t.TempDir()
	log := logger.NewLogger(filepath.Join(tempDir, "logs"))

	db, err := sqlite.New(filepath.Join(tempDir, "test.db"))
	if err != nil {
		t.Fatalf("Failed to create database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return sqlite.NewDetectionRepository(db), log
}

func seedFact(t *testing.T, repo *sqlite.DetectionRepository, object, location string) {
	t.Helper()

	fact := models.DetectionFact{
		ObjectName:          object,
		Confidence:          0.9,
		BboxX:               10,
		BboxY:               10,
		BboxWidth:           5,
		BboxHeight:          5,
		FrameWidth:          100,
		FrameHeight:         100,
		LocationDescription: location,
	}
	if _, err := repo.Insert(&fact); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
}

func decodeFacts(t *testing.T, rec *httptest.ResponseRecorder) []models.DetectionFact {
	t.Helper()

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Expected JSON content type, got %q", ct)
	}

	var facts []models.DetectionFact
	if err := json.Unmarshal(rec.Body.Bytes(), &facts); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	return facts
}

func TestRecentDetectionsHandler(t *testing.T) {
	repo, log := newTestLog(t)
	seedFact(t, repo, "phone", "desk")
	seedFact(t, repo, "cup", "desk")

	handler := RecentDetectionsHandler(repo, log)

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest("GET", "/api/detections/recent", nil))

	facts := decodeFacts(t, rec)
	if len(facts) != 2 {
		t.Errorf("Expected 2 facts, got %d", len(facts))
	}

	// Limit applies.
	rec = httptest.NewRecorder()
	handler(rec, httptest.NewRequest("GET", "/api/detections/recent?limit=1", nil))
	if facts := decodeFacts(t, rec); len(facts) != 1 {
		t.Errorf("Expected limit of 1 to apply, got %d facts", len(facts))
	}
}

func TestRecentDetectionsHandler_EmptyLogReturnsEmptyArray(t *testing.T) {
	repo, log := newTestLog(t)

	rec := httptest.NewRecorder()
	RecentDetectionsHandler(repo, log)(rec, httptest.NewRequest("GET", "/api/detections/recent", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}
	if body := rec.Body.String(); body != "[]\n" {
		t.Errorf("Expected empty JSON array, got %q", body)
	}
}

func TestHistoryHandler(t *testing.T) {
	repo, log := newTestLog(t)
	seedFact(t, repo, "phone", "desk")
	seedFact(t, repo, "cup", "desk")

	handler := HistoryHandler(repo, log)

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest("GET", "/api/detections/history?object=phone", nil))

	facts := decodeFacts(t, rec)
	if len(facts) != 1 || facts[0].ObjectName != "phone" {
		t.Errorf("Expected just the phone, got %v", facts)
	}

	// Missing parameter is a client error.
	rec = httptest.NewRecorder()
	handler(rec, httptest.NewRequest("GET", "/api/detections/history", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 without object parameter, got %d", rec.Code)
	}
}

func TestSearchByLocationHandler(t *testing.T) {
	repo, log := newTestLog(t)
	seedFact(t, repo, "phone", "desk")
	seedFact(t, repo, "book", "bottom-left area")

	handler := SearchByLocationHandler(repo, log)

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest("GET", "/api/detections/search?location=desk", nil))

	facts := decodeFacts(t, rec)
	if len(facts) != 1 || facts[0].ObjectName != "phone" {
		t.Errorf("Expected just the desk match, got %v", facts)
	}

	rec = httptest.NewRecorder()
	handler(rec, httptest.NewRequest("GET", "/api/detections/search", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 without location parameter, got %d", rec.Code)
	}
}

func TestObjectNamesHandler(t *testing.T) {
	repo, log := newTestLog(t)
	seedFact(t, repo, "phone", "desk")
	seedFact(t, repo, "cup", "desk")
	seedFact(t, repo, "cup", "shelf")

	rec := httptest.NewRecorder()
	ObjectNamesHandler(repo, log)(rec, httptest.NewRequest("GET", "/api/detections/objects", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}

	var names []string
	if err := json.Unmarshal(rec.Body.Bytes(), &names); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(names) != 2 || names[0] != "cup" || names[1] != "phone" {
		t.Errorf("Expected sorted distinct names [cup phone], got %v", names)
	}
}

func TestQueryHelpers(t *testing.T) {
	r := httptest.NewRequest("GET", "/?limit=7&hours=1.5&bad=x", nil)

	if got := queryInt(r, "limit", 50); got != 7 {
		t.Errorf("queryInt(limit) = %d, expected 7", got)
	}
	if got := queryInt(r, "missing", 50); got != 50 {
		t.Errorf("queryInt(missing) = %d, expected default 50", got)
	}
	if got := queryInt(r, "bad", 50); got != 50 {
		t.Errorf("queryInt(bad) = %d, expected default 50", got)
	}
	if got := queryFloat(r, "hours", 24); got != 1.5 {
		t.Errorf("queryFloat(hours) = %g, expected 1.5", got)
	}

	window := time.Duration(1.5 * float64(time.Hour))
	if window != 90*time.Minute {
		t.Errorf("Fractional hours should convert exactly, got %v", window)
	}
}
