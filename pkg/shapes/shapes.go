// Package shapes loads extra geographic shapes (survey points, bike racks,
// traffic counts...) to draw on top of the map.
//
// A source is named by a single string:
//
//	city.geojson, city.json        GeoJSON FeatureCollection
//	city.db, city.sqlite           SQLite cache written by WriteCache
//	postgres://user@host/db?table=extra_shapes
//	s3://bucket/key.geojson        either of the file formats, fetched from S3
package shapes

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"strings"

	"github.com/golangdaddy/citymap/pkg/config"
	"github.com/paulmach/orb"
)

// ErrUnsupportedSource is returned for sources Load cannot recognise.
var ErrUnsupportedSource = errors.New("unsupported extra shape source")

// ExtraShape is one feature in lon/lat.
type ExtraShape struct {
	Points     []orb.Point
	Attributes map[string]string
}

// ExtraShapes is everything read from one source.
type ExtraShapes struct {
	Shapes []ExtraShape
}

// Load reads extra shapes from source. S3 settings come from the environment.
func Load(ctx context.Context, source string) (*ExtraShapes, error) {
	return LoadWith(ctx, source, config.S3FromEnv())
}

// LoadWith reads extra shapes from source using explicit S3 settings.
func LoadWith(ctx context.Context, source string, s3cfg config.S3) (*ExtraShapes, error) {
	var (
		shapes *ExtraShapes
		err    error
	)
	switch {
	case strings.HasPrefix(source, "postgres://"), strings.HasPrefix(source, "postgresql://"):
		shapes, err = loadPostgres(ctx, source)
	case strings.HasPrefix(source, "s3://"):
		shapes, err = loadS3(ctx, source, s3cfg)
	default:
		switch kindOf(source) {
		case kindGeoJSON:
			shapes, err = loadGeoJSONFile(source)
		case kindCache:
			shapes, err = loadCache(ctx, source)
		default:
			return nil, fmt.Errorf("%s: %w", source, ErrUnsupportedSource)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("load extra shapes from %s: %w", source, err)
	}
	log.Printf("Loaded %d extra shapes from %s", len(shapes.Shapes), source)
	return shapes, nil
}

type sourceKind int

const (
	kindUnknown sourceKind = iota
	kindGeoJSON
	kindCache
)

func kindOf(name string) sourceKind {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".geojson", ".json":
		return kindGeoJSON
	case ".db", ".sqlite", ".sqlite3", ".bin":
		return kindCache
	}
	return kindUnknown
}

// parts splits a geometry into point lists, one per drawable part.
func parts(g orb.Geometry) [][]orb.Point {
	switch g := g.(type) {
	case orb.Point:
		return [][]orb.Point{{g}}
	case orb.MultiPoint:
		out := make([][]orb.Point, 0, len(g))
		for _, pt := range g {
			out = append(out, []orb.Point{pt})
		}
		return out
	case orb.LineString:
		return [][]orb.Point{[]orb.Point(g)}
	case orb.Ring:
		return [][]orb.Point{[]orb.Point(g)}
	case orb.MultiLineString:
		out := make([][]orb.Point, 0, len(g))
		for _, ls := range g {
			out = append(out, []orb.Point(ls))
		}
		return out
	case orb.Polygon:
		if len(g) == 0 {
			return nil
		}
		return [][]orb.Point{[]orb.Point(g[0])}
	case orb.MultiPolygon:
		out := make([][]orb.Point, 0, len(g))
		for _, p := range g {
			if len(p) > 0 {
				out = append(out, []orb.Point(p[0]))
			}
		}
		return out
	case orb.Collection:
		var out [][]orb.Point
		for _, child := range g {
			out = append(out, parts(child)...)
		}
		return out
	}
	return nil
}

// geometry is the inverse of parts for a single part.
func geometry(pts []orb.Point) orb.Geometry {
	if len(pts) == 1 {
		return pts[0]
	}
	return orb.LineString(pts)
}
