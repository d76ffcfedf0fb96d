package models

import "time"

// Zone is a named, axis-aligned rectangle in frame-pixel coordinates,
// drawn by the user to mark a meaningful area ("desk", "bed", ...).
type Zone struct {
	Name      string    `json:"name"`
	X         float64   `json:"x"`
	Y         float64   `json:"y"`
	W         float64   `json:"w"`
	H         float64   `json:"h"`
	CreatedAt time.Time `json:"created_at"`
}

// Contains reports whether the point lies inside the zone. Both edges
// are inclusive, matching how zones behave along frame borders.
func (z Zone) Contains(px, py float64) bool {
	return z.X <= px && px <= z.X+z.W &&
		z.Y <= py && py <= z.Y+z.H
}
