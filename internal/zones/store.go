package zones

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"homewatch/internal/logger"
	"homewatch/internal/models"
)

// zoneRecord is the on-disk shape of one zone: a name, a [x,y,w,h]
// bbox array and an optional creation timestamp (unix seconds, or a
// RFC 3339 string in files written by older tools).
type zoneRecord struct {
	Name      string          `json:"name"`
	Bbox      []float64       `json:"bbox"`
	CreatedAt json.RawMessage `json:"created_at,omitempty"`
}

// Store owns the persisted zone set: a single JSON file holding the
// full ordered list of zones. Replace swaps the whole file atomically;
// readers either see the prior set or the new one, never a partial
// write. A sibling <file>.updated marker carries the last-write time
// for external watchers, and in-process readers can subscribe to a
// change channel instead of polling.
type Store struct {
	path    string
	logger  *logger.Logger
	mu      sync.Mutex
	version atomic.Uint64

	subMu       sync.Mutex
	subscribers []chan struct{}
}

// NewStore creates a zone store backed by the given file path.
func NewStore(path string, logger *logger.Logger) *Store {
	return &Store{
		path:   path,
		logger: logger,
	}
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// Load reads the current zone set in file order. A missing, corrupt or
// malformed file is not an error: it means "no zones defined" and
// yields an empty set after logging a diagnostic.
func (s *Store) Load() []models.Zone {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			s.logger.Info("No zones file at %s, using empty zone set", s.path)
		} else {
			s.logger.Warning("Could not read zones file %s: %v", s.path, err)
		}
		return nil
	}

	var records []zoneRecord
	if err := json.Unmarshal(data, &records); err != nil {
		s.logger.Warning("Malformed zones file %s, treating as empty: %v", s.path, err)
		return nil
	}

	zoneSet := make([]models.Zone, 0, len(records))
	for _, rec := range records {
		if rec.Name == "" || len(rec.Bbox) != 4 {
			s.logger.Warning("Skipping malformed zone entry %q in %s", rec.Name, s.path)
			continue
		}
		zoneSet = append(zoneSet, models.Zone{
			Name:      rec.Name,
			X:         rec.Bbox[0],
			Y:         rec.Bbox[1],
			W:         rec.Bbox[2],
			H:         rec.Bbox[3],
			CreatedAt: parseCreatedAt(rec.CreatedAt),
		})
	}

	return zoneSet
}

// Replace atomically swaps the persisted zone set for the given one.
// The new set is written to <file>.tmp, synced, then renamed over the
// old file; on any failure the temp file is removed and the prior set
// stays in place. On success the .updated marker is refreshed and
// subscribers are notified.
func (s *Store) Replace(zoneSet []models.Zone) error {
	if err := validateZones(zoneSet); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	records := make([]zoneRecord, 0, len(zoneSet))
	for _, zone := range zoneSet {
		createdAt := zone.CreatedAt
		if createdAt.IsZero() {
			createdAt = time.Now()
		}
		records = append(records, zoneRecord{
			Name:      zone.Name,
			Bbox:      []float64{zone.X, zone.Y, zone.W, zone.H},
			CreatedAt: json.RawMessage(strconv.FormatInt(createdAt.Unix(), 10)),
		})
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode zones: %w", err)
	}

	tmpPath := s.path + ".tmp"
	if err := writeAndSync(tmpPath, data); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to stage zones file: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to replace zones file: %w", err)
	}

	// The marker is advisory; a failed write must not undo the replace.
	marker := s.path + ".updated"
	if err := os.WriteFile(marker, []byte(time.Now().Format(time.RFC3339)), 0644); err != nil {
		s.logger.Warning("Could not write zones update marker %s: %v", marker, err)
	}

	s.version.Add(1)
	s.notifySubscribers()

	s.logger.Info("Replaced zone set: %d zones persisted to %s", len(zoneSet), s.path)
	return nil
}

// Version returns a counter that increments on every successful
// Replace. Readers compare versions to detect a stale snapshot.
func (s *Store) Version() uint64 {
	return s.version.Load()
}

// Subscribe returns a channel that receives a signal after each
// successful Replace. The channel has a one-slot buffer and sends
// never block; a slow subscriber coalesces bursts into one signal.
func (s *Store) Subscribe() <-chan struct{} {
	ch := make(chan struct{}, 1)

	s.subMu.Lock()
	s.subscribers = append(s.subscribers, ch)
	s.subMu.Unlock()

	return ch
}

// NotifyChanged raises the change signal without rewriting the file.
// Used when an external tool edited the zones file directly.
func (s *Store) NotifyChanged() {
	s.version.Add(1)
	s.notifySubscribers()
}

func (s *Store) notifySubscribers() {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	for _, ch := range s.subscribers {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// validateZones enforces the zone set invariants: non-empty unique
// names and positive extents.
func validateZones(zoneSet []models.Zone) error {
	seen := make(map[string]bool, len(zoneSet))
	for _, zone := range zoneSet {
		if zone.Name == "" {
			return fmt.Errorf("zone name cannot be empty")
		}
		if seen[zone.Name] {
			return fmt.Errorf("duplicate zone name: %s", zone.Name)
		}
		seen[zone.Name] = true

		if zone.W <= 0 || zone.H <= 0 {
			return fmt.Errorf("zone %s has non-positive size %gx%g", zone.Name, zone.W, zone.H)
		}
	}
	return nil
}

// writeAndSync writes data to path and flushes it to stable storage.
func writeAndSync(path string, data []byte) error {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}

	if _, err := file.Write(data); err != nil {
		file.Close()
		return err
	}
	if err := file.Sync(); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// parseCreatedAt accepts the creation timestamp as unix seconds or as
// a string in RFC 3339 form, tolerating files from older tools.
func parseCreatedAt(raw json.RawMessage) time.Time {
	if len(raw) == 0 {
		return time.Time{}
	}

	var unix int64
	if err := json.Unmarshal(raw, &unix); err == nil {
		return time.Unix(unix, 0)
	}

	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		if ts, err := time.Parse(time.RFC3339, text); err == nil {
			return ts
		}
	}

	return time.Time{}
}
