package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	"homewatch/internal/models"
)

// timestampLayout is the ISO-8601 form facts are stored with. The
// fixed-width fields keep lexicographic string comparison equal to
// chronological order, which the window queries rely on.
const timestampLayout = "2006-01-02T15:04:05.000000-07:00"

// DetectionRepository implements repository.DetectionLog for SQLite.
type DetectionRepository struct {
	db *DB
}

// NewDetectionRepository creates a new SQLite detection repository.
func NewDetectionRepository(db *DB) *DetectionRepository {
	return &DetectionRepository{db: db}
}

// Insert appends a new detection fact. The timestamp is assigned here
// (local timezone, ISO-8601) unless the caller already set one. The
// row is durably written before Insert returns; storage failures are
// surfaced, never swallowed.
func (r *DetectionRepository) Insert(fact *models.DetectionFact) (int64, error) {
	r.db.Lock()
	defer r.db.Unlock()

	if fact.Timestamp == "" {
		fact.Timestamp = time.Now().Format(timestampLayout)
	}

	result, err := r.db.Conn().Exec(`
		INSERT INTO object_detections
		(timestamp, object_name, confidence, bbox_x, bbox_y, bbox_width, bbox_height,
		 frame_width, frame_height, location_description, image_path)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, fact.Timestamp, fact.ObjectName, fact.Confidence,
		fact.BboxX, fact.BboxY, fact.BboxWidth, fact.BboxHeight,
		fact.FrameWidth, fact.FrameHeight, fact.LocationDescription, fact.ImagePath)
	if err != nil {
		return 0, fmt.Errorf("failed to insert detection: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read detection id: %w", err)
	}
	fact.ID = id

	return id, nil
}

// InsertBatch appends multiple facts in a single transaction.
func (r *DetectionRepository) InsertBatch(facts []models.DetectionFact) error {
	r.db.Lock()
	defer r.db.Unlock()

	tx, err := r.db.Conn().Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO object_detections
		(timestamp, object_name, confidence, bbox_x, bbox_y, bbox_width, bbox_height,
		 frame_width, frame_height, location_description, image_path)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for i := range facts {
		fact := &facts[i]
		if fact.Timestamp == "" {
			fact.Timestamp = time.Now().Format(timestampLayout)
		}
		if _, err := stmt.Exec(fact.Timestamp, fact.ObjectName, fact.Confidence,
			fact.BboxX, fact.BboxY, fact.BboxWidth, fact.BboxHeight,
			fact.FrameWidth, fact.FrameHeight, fact.LocationDescription, fact.ImagePath); err != nil {
			return fmt.Errorf("failed to insert detection: %w", err)
		}
	}

	return tx.Commit()
}

// Recent returns facts newer than now minus the window, most recent
// first, truncated to limit.
func (r *DetectionRepository) Recent(window time.Duration, limit int) ([]models.DetectionFact, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	cutoff := time.Now().Add(-window).Format(timestampLayout)

	rows, err := r.db.Conn().Query(`
		SELECT id, timestamp, object_name, confidence, bbox_x, bbox_y, bbox_width, bbox_height,
		       frame_width, frame_height, COALESCE(location_description, ''), COALESCE(image_path, '')
		FROM object_detections
		WHERE timestamp > ?
		ORDER BY timestamp DESC
		LIMIT ?
	`, cutoff, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent detections: %w", err)
	}
	defer rows.Close()

	return scanFacts(rows)
}

// History returns facts for one object (exact, case-sensitive name
// match), most recent first, truncated to limit.
func (r *DetectionRepository) History(objectName string, limit int) ([]models.DetectionFact, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	rows, err := r.db.Conn().Query(`
		SELECT id, timestamp, object_name, confidence, bbox_x, bbox_y, bbox_width, bbox_height,
		       frame_width, frame_height, COALESCE(location_description, ''), COALESCE(image_path, '')
		FROM object_detections
		WHERE object_name = ?
		ORDER BY timestamp DESC
		LIMIT ?
	`, objectName, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query object history: %w", err)
	}
	defer rows.Close()

	return scanFacts(rows)
}

// SearchByLocation returns every fact whose location description
// contains the keyword as a case-sensitive substring, most recent
// first. instr() keeps the match case-sensitive where LIKE would not.
func (r *DetectionRepository) SearchByLocation(keyword string) ([]models.DetectionFact, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	rows, err := r.db.Conn().Query(`
		SELECT id, timestamp, object_name, confidence, bbox_x, bbox_y, bbox_width, bbox_height,
		       frame_width, frame_height, COALESCE(location_description, ''), COALESCE(image_path, '')
		FROM object_detections
		WHERE instr(location_description, ?) > 0
		ORDER BY timestamp DESC
	`, keyword)
	if err != nil {
		return nil, fmt.Errorf("failed to search detections by location: %w", err)
	}
	defer rows.Close()

	return scanFacts(rows)
}

// DistinctObjectNames returns every object name ever inserted, sorted
// lexicographically.
func (r *DetectionRepository) DistinctObjectNames() ([]string, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	rows, err := r.db.Conn().Query(`SELECT DISTINCT object_name FROM object_detections ORDER BY object_name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query object names: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan object name: %w", err)
		}
		names = append(names, name)
	}

	return names, rows.Err()
}

// scanFacts drains a fact result set in select-column order.
func scanFacts(rows *sql.Rows) ([]models.DetectionFact, error) {
	var facts []models.DetectionFact
	for rows.Next() {
		var fact models.DetectionFact
		if err := rows.Scan(&fact.ID, &fact.Timestamp, &fact.ObjectName, &fact.Confidence,
			&fact.BboxX, &fact.BboxY, &fact.BboxWidth, &fact.BboxHeight,
			&fact.FrameWidth, &fact.FrameHeight, &fact.LocationDescription, &fact.ImagePath); err != nil {
			return nil, fmt.Errorf("failed to scan detection: %w", err)
		}
		facts = append(facts, fact)
	}

	return facts, rows.Err()
}
