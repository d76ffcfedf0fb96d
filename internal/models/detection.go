package models

// FrameSize holds the pixel dimensions of a captured camera frame.
type FrameSize struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// RawDetection is one observation coming out of the object detector:
// a class label with a confidence and a bounding box in pixel units of
// the source frame. Raw detections are never persisted directly.
type RawDetection struct {
	ClassName  string  `json:"class_name"`
	Confidence float64 `json:"confidence"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	W          float64 `json:"w"`
	H          float64 `json:"h"`
}

// Center returns the midpoint of the bounding box, the point used for
// zone attribution.
func (d RawDetection) Center() (float64, float64) {
	return d.X + d.W/2, d.Y + d.H/2
}

// DetectionFact is the persisted unit of detection memory: one
// immutable record of an object observed at a point in time with a
// resolved location label. Facts are append-only; they are never
// updated or deleted.
type DetectionFact struct {
	ID                  int64   `json:"id"`
	Timestamp           string  `json:"timestamp"`
	ObjectName          string  `json:"object_name"`
	Confidence          float64 `json:"confidence"`
	BboxX               float64 `json:"bbox_x"`
	BboxY               float64 `json:"bbox_y"`
	BboxWidth           float64 `json:"bbox_width"`
	BboxHeight          float64 `json:"bbox_height"`
	FrameWidth          int     `json:"frame_width"`
	FrameHeight         int     `json:"frame_height"`
	LocationDescription string  `json:"location_description"`
	ImagePath           string  `json:"image_path,omitempty"`
}
