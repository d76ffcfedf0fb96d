package zones

import (
	"fmt"

	"homewatch/internal/models"
)

// OutsideZones is the sentinel location returned by the strict resolver
// when a point falls outside every defined zone.
const OutsideZones = "outside_zones"

// ResolvePoint returns the name of the first zone containing the point.
// Zones are checked in their stored order, so when zones overlap the one
// defined first wins. Returns false when no zone contains the point.
func ResolvePoint(px, py float64, zoneSet []models.Zone) (string, bool) {
	for _, zone := range zoneSet {
		if zone.Contains(px, py) {
			return zone.Name, true
		}
	}
	return "", false
}

// ResolveBBox maps a detection's bounding box to a location label using
// the box center. If the center lies in a zone the zone name is
// returned; otherwise the label degrades to one of nine generic areas
// ("top-left area", "middle-center area", ...).
func ResolveBBox(det models.RawDetection, frame models.FrameSize, zoneSet []models.Zone) string {
	cx, cy := det.Center()

	if name, ok := ResolvePoint(cx, cy, zoneSet); ok {
		return name
	}

	return quadrantLabel(cx, cy, frame)
}

// ResolveBBoxStrict maps a detection to a zone name only. Detections
// whose center falls outside every zone get the OutsideZones sentinel
// instead of a generic area, so callers can discard them.
func ResolveBBoxStrict(det models.RawDetection, zoneSet []models.Zone) string {
	cx, cy := det.Center()

	if name, ok := ResolvePoint(cx, cy, zoneSet); ok {
		return name
	}
	return OutsideZones
}

// quadrantLabel buckets a point into a 3x3 grid over the frame, with
// thresholds at one and two thirds of each axis.
func quadrantLabel(cx, cy float64, frame models.FrameSize) string {
	relX := cx / float64(frame.Width)
	relY := cy / float64(frame.Height)

	var xRegion string
	switch {
	case relX < 1.0/3.0:
		xRegion = "left"
	case relX < 2.0/3.0:
		xRegion = "center"
	default:
		xRegion = "right"
	}

	var yRegion string
	switch {
	case relY < 1.0/3.0:
		yRegion = "top"
	case relY < 2.0/3.0:
		yRegion = "middle"
	default:
		yRegion = "bottom"
	}

	return fmt.Sprintf("%s-%s area", yRegion, xRegion)
}
