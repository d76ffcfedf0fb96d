package models

// Location is a legacy named rectangle stored in the database rather
// than in the zones file. Older deployments defined areas this way;
// the rows are still readable and convertible into zones, but new
// definitions go to the zones file.
type Location struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	XMin        float64 `json:"x_min"`
	YMin        float64 `json:"y_min"`
	XMax        float64 `json:"x_max"`
	YMax        float64 `json:"y_max"`
}

// Zone converts the legacy min/max rectangle into a zone record.
func (l Location) Zone() Zone {
	return Zone{
		Name: l.Name,
		X:    l.XMin,
		Y:    l.YMin,
		W:    l.XMax - l.XMin,
		H:    l.YMax - l.YMin,
	}
}
