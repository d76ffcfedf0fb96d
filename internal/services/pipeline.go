package services

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"homewatch/internal/logger"
	"homewatch/internal/metrics"
	"homewatch/internal/models"
	"homewatch/internal/repository"
	"homewatch/internal/services/storage"
	"homewatch/internal/services/websocket"
	"homewatch/internal/zones"
)

// Frame carries one frame's worth of detector output through the
// pipeline. Image optionally holds the encoded frame for snapshots.
type Frame struct {
	Detections []models.RawDetection
	Size       models.FrameSize
	Image      []byte
}

// FrameSource yields detector output one frame at a time. Returning
// io.EOF ends the ingest loop; any other error skips that frame.
type FrameSource interface {
	NextFrame() (Frame, error)
}

// Annotator renders detections and zones onto an encoded frame for
// snapshot storage. Implemented by the gocv detector service.
type Annotator interface {
	DrawDetections(imageBytes []byte, detections []models.RawDetection, zoneSet []models.Zone) ([]byte, error)
}

// Pipeline attributes each raw detection to a zone (or generic area)
// and appends the result to the detection log. One background worker
// processes frames strictly in order; queries run concurrently against
// the log's own transactional guarantees.
//
// In zone-only mode detections whose center falls outside every zone
// are discarded instead of being labeled generically - unless no zones
// are defined at all, in which case the pipeline degrades to full-frame
// attribution rather than dropping everything.
type Pipeline struct {
	store    *zones.Store
	log      repository.DetectionLog
	logger   *logger.Logger
	metrics  *metrics.Metrics
	hub      *websocket.HubService
	buffer   *storage.BufferService
	annotate Annotator
	zoneOnly bool

	snapMu       sync.RWMutex
	zoneSnapshot []models.Zone

	changes <-chan struct{}

	mu      sync.Mutex
	running bool
	stop    chan struct{}
	wg      sync.WaitGroup
}

// NewPipeline wires the ingest pipeline. hub, buffer and annotate may
// be nil; zone attribution and persistence work without them.
func NewPipeline(store *zones.Store, log repository.DetectionLog, zoneOnly bool,
	m *metrics.Metrics, hub *websocket.HubService, buffer *storage.BufferService,
	annotate Annotator, logger *logger.Logger) *Pipeline {

	p := &Pipeline{
		store:    store,
		log:      log,
		logger:   logger,
		metrics:  m,
		hub:      hub,
		buffer:   buffer,
		annotate: annotate,
		zoneOnly: zoneOnly,
		changes:  store.Subscribe(),
	}

	p.ReloadZones()
	return p
}

// ReloadZones refreshes the pipeline's zone snapshot from the store.
// The snapshot is taken here and on change signals, never per frame.
func (p *Pipeline) ReloadZones() {
	zoneSet := p.store.Load()

	p.snapMu.Lock()
	p.zoneSnapshot = zoneSet
	p.snapMu.Unlock()

	p.metrics.ZoneReloads.Inc()
	p.metrics.ZonesDefined.Set(float64(len(zoneSet)))
	p.logger.Info("Zone snapshot refreshed: %d zones", len(zoneSet))
}

// Zones returns the pipeline's current zone snapshot.
func (p *Pipeline) Zones() []models.Zone {
	p.snapMu.RLock()
	defer p.snapMu.RUnlock()
	return p.zoneSnapshot
}

// ZoneOnly reports the configured ingest mode.
func (p *Pipeline) ZoneOnly() bool {
	return p.zoneOnly
}

// Running reports whether the ingest worker is active.
func (p *Pipeline) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

// Start launches the ingest worker over the given frame source.
func (p *Pipeline) Start(source FrameSource) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.running {
		return fmt.Errorf("pipeline already running")
	}

	p.running = true
	p.stop = make(chan struct{})
	p.wg.Add(1)
	go p.worker(source)

	p.logger.Info("🎬 Ingest pipeline started (zone-only=%v)", p.zoneOnly)
	return nil
}

// Stop signals the worker and blocks until the in-flight frame has
// been fully processed. Safe to call when not running.
func (p *Pipeline) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	close(p.stop)
	p.mu.Unlock()

	p.wg.Wait()

	p.mu.Lock()
	p.running = false
	p.mu.Unlock()

	p.logger.Info("🛑 Ingest pipeline stopped")
}

// worker pulls frames sequentially; one frame is fully ingested before
// the next begins. The stop signal is checked between frames, so an
// in-flight frame always completes.
func (p *Pipeline) worker(source FrameSource) {
	defer p.wg.Done()

	for {
		select {
		case <-p.stop:
			return
		case <-p.changes:
			p.ReloadZones()
		default:
		}

		frame, err := source.NextFrame()
		if err != nil {
			if errors.Is(err, io.EOF) {
				p.logger.Info("Frame source exhausted, ingest worker exiting")
				return
			}
			if errors.Is(err, ErrNoFrame) {
				continue
			}
			p.logger.Error("Could not read frame: %v", err)
			time.Sleep(100 * time.Millisecond)
			continue
		}

		if err := p.ProcessFrame(frame); err != nil {
			p.logger.Error("Frame ingest failed: %v", err)
		}
	}
}

// ProcessFrame attributes and persists one frame's detections. A
// malformed detection is skipped with a diagnostic; a storage failure
// aborts the frame and is returned to the caller.
func (p *Pipeline) ProcessFrame(frame Frame) error {
	p.metrics.FramesProcessed.Inc()

	zoneSet := p.Zones()

	var retained []models.RawDetection
	var locations []string

	for _, det := range frame.Detections {
		if err := validateDetection(det); err != nil {
			p.metrics.DetectionsInvalid.Inc()
			p.logger.Warning("Skipping malformed detection %q: %v", det.ClassName, err)
			continue
		}

		var location string
		if p.zoneOnly && len(zoneSet) > 0 {
			location = zones.ResolveBBoxStrict(det, zoneSet)
			if location == zones.OutsideZones {
				p.metrics.DetectionsOutside.Inc()
				continue
			}
		} else {
			location = zones.ResolveBBox(det, frame.Size, zoneSet)
		}

		retained = append(retained, det)
		locations = append(locations, location)
	}

	if len(retained) == 0 {
		return nil
	}

	imagePath := p.saveSnapshot(frame, retained, locations, zoneSet)

	for i, det := range retained {
		fact := models.DetectionFact{
			ObjectName:          det.ClassName,
			Confidence:          det.Confidence,
			BboxX:               det.X,
			BboxY:               det.Y,
			BboxWidth:           det.W,
			BboxHeight:          det.H,
			FrameWidth:          frame.Size.Width,
			FrameHeight:         frame.Size.Height,
			LocationDescription: locations[i],
			ImagePath:           imagePath,
		}

		if _, err := p.log.Insert(&fact); err != nil {
			p.metrics.InsertErrors.Inc()
			return fmt.Errorf("failed to store detection fact: %w", err)
		}

		p.metrics.FactsIngested.Inc()
		if p.hub != nil {
			p.hub.BroadcastFact(fact)
		}
	}

	return nil
}

// saveSnapshot buffers one annotated snapshot per frame with retained
// detections and returns the path it will land at, or empty.
func (p *Pipeline) saveSnapshot(frame Frame, retained []models.RawDetection, locations []string, zoneSet []models.Zone) string {
	if p.buffer == nil || len(frame.Image) == 0 {
		return ""
	}

	imageData := frame.Image
	if p.annotate != nil {
		annotated, err := p.annotate.DrawDetections(frame.Image, retained, zoneSet)
		if err != nil {
			p.logger.Error("Failed to annotate snapshot: %v", err)
		} else {
			imageData = annotated
		}
	}

	return p.buffer.Add(imageData, retained[0].ClassName, locations[0])
}

// validateDetection rejects raw detections the detector should never
// emit but occasionally does.
func validateDetection(det models.RawDetection) error {
	if det.ClassName == "" {
		return fmt.Errorf("empty class name")
	}
	if det.Confidence < 0 || det.Confidence > 1 {
		return fmt.Errorf("confidence %g out of range", det.Confidence)
	}
	if det.W <= 0 || det.H <= 0 {
		return fmt.Errorf("degenerate bbox %gx%g", det.W, det.H)
	}
	return nil
}
