package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"homewatch/internal/logger"
)

// Snapshot is one annotated frame waiting to be flushed to disk.
type Snapshot struct {
	Timestamp string
	Object    string
	Location  string
	Data      []byte
}

// BufferService batches annotated detection snapshots in memory and
// flushes them to the snapshot directory on an interval, so the ingest
// worker never blocks on image I/O.
type BufferService struct {
	snapshotDir string
	snapshots   []Snapshot
	bufferLimit int
	logger      *logger.Logger
	mu          sync.Mutex
}

// NewBufferService creates a snapshot buffer writing to snapshotDir.
func NewBufferService(snapshotDir string, bufferLimit int, logger *logger.Logger) *BufferService {
	return &BufferService{
		snapshotDir: snapshotDir,
		bufferLimit: bufferLimit,
		snapshots:   make([]Snapshot, 0),
		logger:      logger,
	}
}

// Run flushes the buffer every flushInterval seconds until stop closes.
func (s *BufferService) Run(flushInterval int, stop <-chan struct{}) {
	ticker := time.NewTicker(time.Duration(flushInterval) * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.Flush()
		case <-stop:
			s.Flush()
			return
		}
	}
}

// Add buffers a snapshot and returns the path it will be written to,
// so the detection fact can reference it. Returns empty when the
// buffer is full and the snapshot is dropped.
func (s *BufferService) Add(imageData []byte, object, location string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.snapshots) >= s.bufferLimit {
		s.logger.Warning("Snapshot buffer full (%d), dropping snapshot for %s", s.bufferLimit, object)
		return ""
	}

	snapshot := Snapshot{
		Timestamp: time.Now().Format("2006-01-02_15-04-05"),
		Object:    object,
		Location:  location,
		Data:      imageData,
	}
	s.snapshots = append(s.snapshots, snapshot)

	return filepath.Join(s.snapshotDir, snapshotFilename(snapshot))
}

// Flush writes all buffered snapshots to disk and clears the buffer.
func (s *BufferService) Flush() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.snapshots) == 0 {
		return
	}

	if err := os.MkdirAll(s.snapshotDir, 0755); err != nil {
		s.logger.Error("Error creating snapshot directory: %v", err)
		return
	}

	for _, snapshot := range s.snapshots {
		fullpath := filepath.Join(s.snapshotDir, snapshotFilename(snapshot))

		if err := os.WriteFile(fullpath, snapshot.Data, 0644); err != nil {
			s.logger.Error("Error saving snapshot %s: %v", fullpath, err)
			continue
		}
	}

	s.logger.Info("Flushed %d snapshots to disk", len(s.snapshots))
	s.snapshots = s.snapshots[:0]
}

// snapshotFilename builds a filesystem-safe name from the snapshot fields.
func snapshotFilename(snapshot Snapshot) string {
	object := strings.ReplaceAll(snapshot.Object, " ", "_")
	location := strings.ReplaceAll(snapshot.Location, " ", "_")
	return fmt.Sprintf("%s_%s_%s.jpg", snapshot.Timestamp, object, location)
}
