package hub

import (
	"strings"

	"github.com/pkg/errors"
)

// CornerPoint converts a corner name (NE, NW, SE, SW and their TR/TL/BR/BL aliases) into the
// canvas point inset from that corner.
func CornerPoint(corner string, width, height, inset float64) (Point, error) {
	switch strings.ToUpper(strings.TrimSpace(corner)) {
	case "NE", "EN", "TR":
		return Point{X: width - inset, Y: inset}, nil
	case "NW", "WN", "TL":
		return Point{X: inset, Y: inset}, nil
	case "SE", "ES", "BR":
		return Point{X: width - inset, Y: height - inset}, nil
	case "SW", "WS", "BL":
		return Point{X: inset, Y: height - inset}, nil
	default:
		return Point{}, errors.Errorf("unknown corner %q", corner)
	}
}
