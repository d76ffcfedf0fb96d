package assistant

import (
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"homewatch/internal/logger"
	"homewatch/internal/models"
	"homewatch/internal/repository/sqlite"
	"homewatch/internal/zones"
)

// stubGenerator lets tests steer the answer path.
type stubGenerator struct {
	available bool
	answer    string
	err       error
}

func (s *stubGenerator) Available() bool { return s.available }

func (s *stubGenerator) AnswerObjectQuestion(question string, facts []models.DetectionFact) (string, error) {
	return s.answer, s.err
}

func newTestAssistant(t *testing.T, generator AnswerGenerator, zoneOnly bool) (*Assistant, *sqlite.DetectionRepository, *zones.Store) {
	t.Helper()

	tempDir := t.TempDir()
	log := logger.NewLogger(filepath.Join(tempDir, "logs"))

	db, err := sqlite.New(filepath.Join(tempDir, "test.db"))
	if err != nil {
		t.Fatalf("Failed to create database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	repo := sqlite.NewDetectionRepository(db)
	store := zones.NewStore(filepath.Join(tempDir, "zones.json"), log)

	return New(repo, store, generator, zoneOnly, log), repo, store
}

func insertFact(t *testing.T, repo *sqlite.DetectionRepository, object, location string, confidence float64) {
	t.Helper()
	insertFactAt(t, repo, object, location, confidence, time.Now())
}

func insertFactAt(t *testing.T, repo *sqlite.DetectionRepository, object, location string, confidence float64, at time.Time) {
	t.Helper()

	fact := models.DetectionFact{
		Timestamp:           at.Format("2006-01-02T15:04:05.000000-07:00"),
		ObjectName:          object,
		Confidence:          confidence,
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

func TestAsk_NoRecentDetections(t *testing.T) {
	assistant, _, _ := newTestAssistant(t, &stubGenerator{available: true, answer: "unused"}, false)

	answer := assistant.Ask("where is my phone?")
	if !strings.Contains(answer, "haven't detected any objects") {
		t.Errorf("Expected the empty-memory reply, got %q", answer)
	}
}

func TestAsk_DelegatesToGenerator(t *testing.T) {
	generator := &stubGenerator{available: true, answer: "Your phone is on the desk."}
	assistant, repo, _ := newTestAssistant(t, generator, false)
	insertFact(t, repo, "phone", "desk", 0.9)

	answer := assistant.Ask("where is my phone?")
	if answer != generator.answer {
		t.Errorf("Expected the generated answer, got %q", answer)
	}
}

func TestAsk_FallbackReportsLatestSighting(t *testing.T) {
	assistant, repo, _ := newTestAssistant(t, &stubGenerator{available: false}, false)
	insertFactAt(t, repo, "phone", "kitchen counter", 0.8, time.Now().Add(-time.Minute))
	insertFactAt(t, repo, "phone", "desk", 0.9, time.Now())

	answer := assistant.Ask("have you seen my phone?")
	if !strings.Contains(answer, "I last saw phone in the desk") {
		t.Errorf("Expected latest sighting, got %q", answer)
	}
	if !strings.Contains(answer, "90% confidence") {
		t.Errorf("Expected confidence percentage, got %q", answer)
	}
}

func TestAsk_FallbackOnGeneratorError(t *testing.T) {
	generator := &stubGenerator{available: true, err: fmt.Errorf("model timed out")}
	assistant, repo, _ := newTestAssistant(t, generator, false)
	insertFact(t, repo, "cup", "desk", 0.7)

	answer := assistant.Ask("where is the cup?")
	if !strings.Contains(answer, "I last saw cup in the desk") {
		t.Errorf("Expected local fallback after generator error, got %q", answer)
	}
}

func TestAsk_FallbackListsRecentObjects(t *testing.T) {
	assistant, repo, _ := newTestAssistant(t, nil, false)
	insertFact(t, repo, "cup", "desk", 0.7)
	insertFact(t, repo, "book", "shelf", 0.8)

	answer := assistant.Ask("what have you been seeing?")
	if !strings.Contains(answer, "recently detected these objects") {
		t.Errorf("Expected the recent-objects listing, got %q", answer)
	}
	if !strings.Contains(answer, "cup") || !strings.Contains(answer, "book") {
		t.Errorf("Expected both objects listed, got %q", answer)
	}
}

func TestStatus(t *testing.T) {
	assistant, repo, store := newTestAssistant(t, &stubGenerator{available: false}, true)
	insertFact(t, repo, "phone", "desk", 0.9)
	insertFact(t, repo, "cup", "desk", 0.7)

	if err := store.Replace([]models.Zone{{Name: "desk", X: 0, Y: 0, W: 50, H: 50}}); err != nil {
		t.Fatalf("Replace failed: %v", err)
	}

	status := assistant.Status()

	if status.OllamaAvailable {
		t.Error("Expected ollama to be reported unavailable")
	}
	if status.TotalObjects != 2 {
		t.Errorf("Expected 2 distinct objects, got %d", status.TotalObjects)
	}
	if status.RecentDetections != 2 {
		t.Errorf("Expected 2 recent detections, got %d", status.RecentDetections)
	}
	if status.CustomZones != 1 || len(status.ZoneNames) != 1 || status.ZoneNames[0] != "desk" {
		t.Errorf("Expected one desk zone, got %d zones %v", status.CustomZones, status.ZoneNames)
	}
	if status.DetectionMode != "zone_focused" {
		t.Errorf("Expected zone_focused mode, got %q", status.DetectionMode)
	}
}
