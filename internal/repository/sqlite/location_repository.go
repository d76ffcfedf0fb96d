package sqlite

import (
	"fmt"

	"homewatch/internal/models"
)

// LocationRepository implements repository.LocationRepository for
// SQLite. It serves the legacy locations table; new zone definitions
// live in the zones file instead.
type LocationRepository struct {
	db *DB
}

// NewLocationRepository creates a new SQLite location repository.
func NewLocationRepository(db *DB) *LocationRepository {
	return &LocationRepository{db: db}
}

// GetAll returns every stored location in insertion order.
func (r *LocationRepository) GetAll() ([]models.Location, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	rows, err := r.db.Conn().Query(`
		SELECT id, name, COALESCE(description, ''),
		       COALESCE(x_min, 0), COALESCE(y_min, 0), COALESCE(x_max, 0), COALESCE(y_max, 0)
		FROM locations
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query locations: %w", err)
	}
	defer rows.Close()

	var locations []models.Location
	for rows.Next() {
		var loc models.Location
		if err := rows.Scan(&loc.ID, &loc.Name, &loc.Description,
			&loc.XMin, &loc.YMin, &loc.XMax, &loc.YMax); err != nil {
			return nil, fmt.Errorf("failed to scan location: %w", err)
		}
		locations = append(locations, loc)
	}

	return locations, rows.Err()
}

// Upsert inserts or replaces a location by name.
func (r *LocationRepository) Upsert(loc *models.Location) error {
	r.db.Lock()
	defer r.db.Unlock()

	if _, err := r.db.Conn().Exec(`
		INSERT OR REPLACE INTO locations (name, description, x_min, y_min, x_max, y_max)
		VALUES (?, ?, ?, ?, ?, ?)
	`, loc.Name, loc.Description, loc.XMin, loc.YMin, loc.XMax, loc.YMax); err != nil {
		return fmt.Errorf("failed to upsert location: %w", err)
	}
	return nil
}
