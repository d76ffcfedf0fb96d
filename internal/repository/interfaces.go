package repository

import (
	"time"

	"homewatch/internal/models"
)

// DetectionLog defines the query surface of the append-only detection
// fact store. Facts are inserted once and never updated or deleted;
// history is trimmed at query time by window and limit, not by the
// store.
type DetectionLog interface {
	// Create operations
	Insert(fact *models.DetectionFact) (int64, error)
	InsertBatch(facts []models.DetectionFact) error

	// Read operations
	Recent(window time.Duration, limit int) ([]models.DetectionFact, error)
	History(objectName string, limit int) ([]models.DetectionFact, error)
	SearchByLocation(keyword string) ([]models.DetectionFact, error)
	DistinctObjectNames() ([]string, error)
}

// LocationRepository covers the legacy named-rectangle table kept for
// read compatibility with older databases. New zone definitions are
// written to the zones file, not here.
type LocationRepository interface {
	GetAll() ([]models.Location, error)
	Upsert(loc *models.Location) error
}
