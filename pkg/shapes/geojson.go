package shapes

import (
	"fmt"
	"os"

	"github.com/paulmach/orb/geojson"
)

func loadGeoJSONFile(path string) (*ExtraShapes, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read geojson: %w", err)
	}
	return decodeGeoJSON(data)
}

func decodeGeoJSON(data []byte) (*ExtraShapes, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("decode geojson: %w", err)
	}
	out := &ExtraShapes{}
	for _, f := range fc.Features {
		if f.Geometry == nil {
			continue
		}
		attrs := make(map[string]string, len(f.Properties))
		for k, v := range f.Properties {
			if v == nil {
				continue
			}
			attrs[k] = fmt.Sprint(v)
		}
		for _, pts := range parts(f.Geometry) {
			if len(pts) == 0 {
				continue
			}
			out.Shapes = append(out.Shapes, ExtraShape{Points: pts, Attributes: attrs})
		}
	}
	return out, nil
}
