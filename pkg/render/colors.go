package render

import (
	"encoding/json"
	"fmt"
	"image/color"
	"os"
	"sort"
	"strconv"
	"strings"
)

// Color names understood by ColorScheme.
const (
	ColorDrivingLane       = "driving lane"
	ColorParkingLane       = "parking lane"
	ColorSidewalk          = "sidewalk"
	ColorBikeLane          = "bike lane"
	ColorBusLane           = "bus lane"
	ColorLaneMarking       = "lane marking"
	ColorIntersection      = "intersection"
	ColorBorder            = "intersection border"
	ColorBuilding          = "building"
	ColorBuildingPath      = "building path"
	ColorParcel            = "parcel"
	ColorPark              = "park"
	ColorWater             = "water"
	ColorSwamp             = "swamp"
	ColorExtraShape        = "extra shape"
	ColorBusStop           = "bus stop marking"
	ColorBusStopLabel      = "bus stop label"
	ColorTurnIcon          = "turn icon"
	ColorCar               = "car"
	ColorCarWaiting        = "queued car"
	ColorCarOutline        = "car outline"
	ColorWindshield        = "windshield"
	ColorBike              = "bike"
	ColorPedestrian        = "pedestrian"
	ColorPedestrianWaiting = "queued pedestrian"
	ColorSelected          = "selected"
	ColorMapBackground     = "map background"
)

func defaultColors() map[string]color.RGBA {
	return map[string]color.RGBA{
		ColorDrivingLane:       {40, 40, 46, 255},
		ColorParkingLane:       {70, 70, 76, 255},
		ColorSidewalk:          {160, 160, 160, 255},
		ColorBikeLane:          {15, 125, 75, 255},
		ColorBusLane:           {190, 74, 76, 255},
		ColorLaneMarking:       {240, 240, 240, 255},
		ColorIntersection:      {52, 52, 58, 255},
		ColorBorder:            {20, 20, 20, 255},
		ColorBuilding:          {196, 193, 188, 255},
		ColorBuildingPath:      {150, 150, 150, 255},
		ColorParcel:            {230, 226, 210, 255},
		ColorPark:              {160, 200, 120, 255},
		ColorWater:             {120, 170, 220, 255},
		ColorSwamp:             {100, 140, 110, 255},
		ColorExtraShape:        {255, 0, 255, 255},
		ColorBusStop:           {200, 40, 40, 255},
		ColorBusStopLabel:      {255, 255, 255, 255},
		ColorTurnIcon:          {255, 200, 50, 255},
		ColorCar:               {60, 100, 200, 255},
		ColorCarWaiting:        {200, 60, 60, 255},
		ColorCarOutline:        {20, 20, 20, 255},
		ColorWindshield:        {118, 157, 200, 200},
		ColorBike:              {40, 160, 80, 255},
		ColorPedestrian:        {255, 180, 60, 255},
		ColorPedestrianWaiting: {255, 90, 60, 255},
		ColorSelected:          {180, 180, 0, 180},
		ColorMapBackground:     {228, 226, 220, 255},
	}
}

// ColorScheme maps color names to colors.
type ColorScheme struct {
	colors map[string]color.RGBA
}

// DefaultColorScheme creates the built-in scheme.
func DefaultColorScheme() *ColorScheme {
	return &ColorScheme{colors: defaultColors()}
}

// LoadColorScheme reads a JSON object of name to "#rrggbb" or "#rrggbbaa"
// and applies it over the defaults. Unknown names are an error.
func LoadColorScheme(filename string) (*ColorScheme, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read color scheme: %w", err)
	}
	var raw map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse color scheme: %w", err)
	}
	cs := DefaultColorScheme()
	names := make([]string, 0, len(raw))
	for name := range raw {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if _, ok := cs.colors[name]; !ok {
			return nil, fmt.Errorf("unknown color %q", name)
		}
		c, err := parseHex(raw[name])
		if err != nil {
			return nil, fmt.Errorf("color %q: %w", name, err)
		}
		cs.colors[name] = c
	}
	return cs, nil
}

// Get returns a named color. Names are the Color constants; anything else panics.
func (cs *ColorScheme) Get(name string) color.RGBA {
	c, ok := cs.colors[name]
	if !ok {
		panic(fmt.Sprintf("no color named %q", name))
	}
	return c
}

// Set overrides one color.
func (cs *ColorScheme) Set(name string, c color.RGBA) {
	cs.colors[name] = c
}

func parseHex(s string) (color.RGBA, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) != 6 && len(s) != 8 {
		return color.RGBA{}, fmt.Errorf("%q is not #rrggbb or #rrggbbaa", s)
	}
	if len(s) == 6 {
		s += "ff"
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid hex color: %w", err)
	}
	return color.RGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}
