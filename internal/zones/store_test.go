package zones

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"homewatch/internal/logger"
	"homewatch/internal/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	tempDir := t.TempDir()
	log := logger.NewLogger(filepath.Join(tempDir, "logs"))
	return NewStore(filepath.Join(tempDir, "zones.json"), log)
}

func sampleZones() []models.Zone {
	return []models.Zone{
		{Name: "desk", X: 0, Y: 0, W: 50, H: 50},
		{Name: "bed", X: 100, Y: 100, W: 80, H: 60},
	}
}

func TestStore_LoadMissingFile(t *testing.T) {
	store := newTestStore(t)

	if zoneSet := store.Load(); len(zoneSet) != 0 {
		t.Errorf("Expected empty zone set for missing file, got %d zones", len(zoneSet))
	}
}

func TestStore_LoadCorruptFile(t *testing.T) {
	store := newTestStore(t)

	if err := os.WriteFile(store.Path(), []byte("{not valid json"), 0644); err != nil {
		t.Fatalf("Failed to write corrupt file: %v", err)
	}

	if zoneSet := store.Load(); len(zoneSet) != 0 {
		t.Errorf("Expected empty zone set for corrupt file, got %d zones", len(zoneSet))
	}
}

func TestStore_ReplaceLoadRoundTrip(t *testing.T) {
	store := newTestStore(t)
	original := sampleZones()

	if err := store.Replace(original); err != nil {
		t.Fatalf("Replace failed: %v", err)
	}

	loaded := store.Load()
	if len(loaded) != len(original) {
		t.Fatalf("Expected %d zones, got %d", len(original), len(loaded))
	}

	for i, zone := range loaded {
		want := original[i]
		if zone.Name != want.Name || zone.X != want.X || zone.Y != want.Y ||
			zone.W != want.W || zone.H != want.H {
			t.Errorf("Zone %d mismatch: got %+v, want %+v", i, zone, want)
		}
		if zone.CreatedAt.IsZero() {
			t.Errorf("Zone %d should have a creation timestamp after Replace", i)
		}
	}
}

func TestStore_LoadIdempotent(t *testing.T) {
	store := newTestStore(t)
	if err := store.Replace(sampleZones()); err != nil {
		t.Fatalf("Replace failed: %v", err)
	}

	first := store.Load()
	second := store.Load()

	if len(first) != len(second) {
		t.Fatalf("Repeated loads returned different sizes: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("Zone %d differs between loads: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestStore_ReplacePreservesOrder(t *testing.T) {
	store := newTestStore(t)

	ordered := []models.Zone{
		{Name: "c", X: 0, Y: 0, W: 10, H: 10},
		{Name: "a", X: 20, Y: 0, W: 10, H: 10},
		{Name: "b", X: 40, Y: 0, W: 10, H: 10},
	}
	if err := store.Replace(ordered); err != nil {
		t.Fatalf("Replace failed: %v", err)
	}

	loaded := store.Load()
	for i, zone := range loaded {
		if zone.Name != ordered[i].Name {
			t.Errorf("Position %d: expected %s, got %s (definition order must survive persistence)",
				i, ordered[i].Name, zone.Name)
		}
	}
}

func TestStore_ReplaceValidation(t *testing.T) {
	store := newTestStore(t)

	cases := []struct {
		name    string
		zoneSet []models.Zone
	}{
		{"empty name", []models.Zone{{Name: "", X: 0, Y: 0, W: 10, H: 10}}},
		{"duplicate names", []models.Zone{
			{Name: "desk", X: 0, Y: 0, W: 10, H: 10},
			{Name: "desk", X: 20, Y: 0, W: 10, H: 10},
		}},
		{"zero width", []models.Zone{{Name: "desk", X: 0, Y: 0, W: 0, H: 10}}},
		{"negative height", []models.Zone{{Name: "desk", X: 0, Y: 0, W: 10, H: -5}}},
	}

	for _, tc := range cases {
		if err := store.Replace(tc.zoneSet); err == nil {
			t.Errorf("%s: expected validation error, got nil", tc.name)
		}
	}
}

func TestStore_InterruptedReplaceKeepsPriorSet(t *testing.T) {
	store := newTestStore(t)
	original := sampleZones()
	if err := store.Replace(original); err != nil {
		t.Fatalf("Replace failed: %v", err)
	}

	// Simulate a crash after staging but before the rename: a stale
	// temp file next to the real one must not affect readers.
	tmpPath := store.Path() + ".tmp"
	if err := os.WriteFile(tmpPath, []byte(`[{"name":"half-written"`), 0644); err != nil {
		t.Fatalf("Failed to write temp file: %v", err)
	}

	loaded := store.Load()
	if len(loaded) != len(original) {
		t.Fatalf("Expected prior set (%d zones) to survive, got %d", len(original), len(loaded))
	}
	for i, zone := range loaded {
		if zone.Name != original[i].Name {
			t.Errorf("Zone %d: expected %s, got %s", i, original[i].Name, zone.Name)
		}
	}
}

func TestStore_UpdateMarkerWritten(t *testing.T) {
	store := newTestStore(t)

	if err := store.Replace(sampleZones()); err != nil {
		t.Fatalf("Replace failed: %v", err)
	}

	marker := store.Path() + ".updated"
	data, err := os.ReadFile(marker)
	if err != nil {
		t.Fatalf("Expected update marker at %s: %v", marker, err)
	}

	if _, err := time.Parse(time.RFC3339, string(data)); err != nil {
		t.Errorf("Marker should hold an RFC 3339 timestamp, got %q: %v", string(data), err)
	}
}

func TestStore_VersionAndSubscribe(t *testing.T) {
	store := newTestStore(t)
	changes := store.Subscribe()

	before := store.Version()
	if err := store.Replace(sampleZones()); err != nil {
		t.Fatalf("Replace failed: %v", err)
	}

	if store.Version() != before+1 {
		t.Errorf("Expected version %d after replace, got %d", before+1, store.Version())
	}

	select {
	case <-changes:
	case <-time.After(time.Second):
		t.Error("Expected change notification after Replace")
	}

	// Multiple replaces before the subscriber drains coalesce into one
	// pending signal; the channel never blocks the writer.
	if err := store.Replace(sampleZones()); err != nil {
		t.Fatalf("Replace failed: %v", err)
	}
	if err := store.Replace(sampleZones()); err != nil {
		t.Fatalf("Replace failed: %v", err)
	}

	select {
	case <-changes:
	case <-time.After(time.Second):
		t.Error("Expected coalesced change notification")
	}
}

func TestStore_LoadLegacyFileWithoutCreatedAt(t *testing.T) {
	store := newTestStore(t)

	// Files written by the original definition tool carry only name
	// and bbox.
	legacy := `[{"name": "desk", "bbox": [0, 0, 50, 50]}, {"name": "bed", "bbox": [100, 100, 80, 60]}]`
	if err := os.WriteFile(store.Path(), []byte(legacy), 0644); err != nil {
		t.Fatalf("Failed to write legacy file: %v", err)
	}

	loaded := store.Load()
	if len(loaded) != 2 {
		t.Fatalf("Expected 2 zones from legacy file, got %d", len(loaded))
	}
	if loaded[0].Name != "desk" || loaded[0].W != 50 {
		t.Errorf("Unexpected first zone: %+v", loaded[0])
	}
}
