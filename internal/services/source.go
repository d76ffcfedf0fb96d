package services

import (
	"errors"
	"io"
	"time"
)

// ErrNoFrame is returned by a frame source when no frame arrived
// within its polling window. The worker just tries again; it is not a
// failure.
var ErrNoFrame = errors.New("no frame available")

// ChannelSource is a FrameSource fed by whoever receives frames -
// typically the camera upload handler after running the detector.
type ChannelSource struct {
	frames chan Frame
	closed chan struct{}
}

// NewChannelSource creates a source buffering up to size frames.
func NewChannelSource(size int) *ChannelSource {
	return &ChannelSource{
		frames: make(chan Frame, size),
		closed: make(chan struct{}),
	}
}

// Push queues a frame for ingestion. Returns false when the queue is
// full or the source is closed; the frame is dropped, not blocked on.
func (s *ChannelSource) Push(frame Frame) bool {
	select {
	case <-s.closed:
		return false
	default:
	}

	select {
	case s.frames <- frame:
		return true
	default:
		return false
	}
}

// NextFrame returns the next queued frame. It waits briefly so the
// ingest worker stays responsive to its stop signal, returning
// ErrNoFrame when the window elapses and io.EOF once the source is
// closed and drained.
func (s *ChannelSource) NextFrame() (Frame, error) {
	select {
	case frame := <-s.frames:
		return frame, nil
	case <-time.After(250 * time.Millisecond):
	}

	// Prefer queued frames over EOF so a closed source still drains.
	select {
	case frame := <-s.frames:
		return frame, nil
	case <-s.closed:
		return Frame{}, io.EOF
	default:
	}

	return Frame{}, ErrNoFrame
}

// Close stops accepting frames; queued frames are still delivered.
func (s *ChannelSource) Close() {
	select {
	case <-s.closed:
	default:
		close(s.closed)
	}
}
