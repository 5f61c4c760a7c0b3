package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/pkg/errors"

	"robot-navigator/internal/hub"
)

// defaultFeatureSize is used for point features without a "size" property.
const defaultFeatureSize = 25

// LoadObstacles reads an obstacle list. Files ending in .geojson hold a FeatureCollection in
// canvas pixels: points become obstacles of their "size" property, other geometries become the
// square obstacle covering their bounds. Anything else is a JSON array of {x, y, size}, or an
// object with an "obstacles" array as GET /obstacles returns.
func LoadObstacles(path string) ([]hub.ObstacleSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading obstacles %s", path)
	}
	if strings.EqualFold(filepath.Ext(path), ".geojson") {
		return parseFeatureCollection(path, data)
	}

	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "[") {
		var list []hub.ObstacleSpec
		if err := json.Unmarshal(data, &list); err != nil {
			return nil, errors.Wrapf(err, "parsing obstacles %s", path)
		}
		return list, nil
	}
	var wrapped hub.ObstaclesResponse
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return nil, errors.Wrapf(err, "parsing obstacles %s", path)
	}
	return wrapped.Obstacles, nil
}

func parseFeatureCollection(path string, data []byte) ([]hub.ObstacleSpec, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing geojson %s", path)
	}

	var obstacles []hub.ObstacleSpec
	for i, f := range fc.Features {
		if f.Geometry == nil {
			return nil, errors.Errorf("%s: feature %d has no geometry", path, i)
		}
		switch g := f.Geometry.(type) {
		case orb.Point:
			obstacles = append(obstacles, hub.ObstacleSpec{
				X:    g.X(),
				Y:    g.Y(),
				Size: f.Properties.MustFloat64("size", defaultFeatureSize),
			})
		case orb.MultiPoint:
			size := f.Properties.MustFloat64("size", defaultFeatureSize)
			for _, p := range g {
				obstacles = append(obstacles, hub.ObstacleSpec{X: p.X(), Y: p.Y(), Size: size})
			}
		default:
			b := g.Bound()
			center := b.Center()
			obstacles = append(obstacles, hub.ObstacleSpec{
				X:    center.X(),
				Y:    center.Y(),
				Size: max(b.Max.X()-b.Min.X(), b.Max.Y()-b.Min.Y()),
			})
		}
	}
	return obstacles, nil
}
