// Package consoles describes the mixing desks a plot can be patched for.
package consoles

import "sort"

// Color is a scribble-strip color offered by a console
type Color struct {
	ID        string `json:"id"`
	Label     string `json:"label"`
	SceneCode string `json:"scn_code"`
	Hex       string `json:"hex"`
	Inverted  bool   `json:"inverted"`
}

// Console is a mixing desk definition
type Console struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	InputChannels  int     `json:"input_channels"`
	OutputBuses    int     `json:"output_buses"`
	ScribbleLength int     `json:"scribble_length"`
	Colors         []Color `json:"colors"`
	ChannelOptions []int   `json:"channel_options"`
	OutputOptions  []int   `json:"output_options"`
}

// ChannelModes are the valid patch list sizes
var ChannelModes = []int{8, 16, 24, 32, 48}

// DefaultShortNameLength bounds short names when no console is selected
const DefaultShortNameLength = 12

// Color categories used for automatic channel coloring
const (
	CategoryVocals     = "vocals"
	CategoryDrums      = "drums"
	CategoryGuitars    = "guitars"
	CategoryBass       = "bass"
	CategoryKeys       = "keys"
	CategoryStrings    = "strings"
	CategoryWinds      = "winds"
	CategoryPercussion = "percussion"
	CategoryMonitors   = "monitors"
)

// CatalogColorCategory maps catalog categories to color categories
var CatalogColorCategory = map[string]string{
	"Microphones":             CategoryVocals,
	"Microphones - Boom":      CategoryVocals,
	"Microphones - Hand Held": CategoryVocals,
	"Microphones - Headset":   CategoryVocals,
	"Microphones - Straight":  CategoryVocals,
	"Drums":                   CategoryDrums,
	"Drums - Hardware":        CategoryDrums,
	"Drums - Individual":      CategoryDrums,
	"Drum Kits":               CategoryDrums,
	"Guitars":                 CategoryGuitars,
	"Bass Amplifiers":         CategoryBass,
	"Amplifiers":              CategoryGuitars,
	"Keyboards & Piano":       CategoryKeys,
	"String Instruments":      CategoryStrings,
	"Wind Instruments":        CategoryWinds,
	"Percussion":              CategoryPercussion,
	"Outputs":                 CategoryMonitors,
}

var x32Colors = []Color{
	{ID: "off", Label: "Off", SceneCode: "OFF", Hex: "#1a1a1a"},
	{ID: "red", Label: "Red", SceneCode: "RD", Hex: "#ff0000"},
	{ID: "green", Label: "Green", SceneCode: "GN", Hex: "#00c800"},
	{ID: "yellow", Label: "Yellow", SceneCode: "YE", Hex: "#e8e800"},
	{ID: "blue", Label: "Blue", SceneCode: "BL", Hex: "#0064ff"},
	{ID: "magenta", Label: "Magenta", SceneCode: "MG", Hex: "#d000d0"},
	{ID: "cyan", Label: "Cyan", SceneCode: "CY", Hex: "#00c8c8"},
	{ID: "white", Label: "White", SceneCode: "WH", Hex: "#e0e0e0"},
	{ID: "off_inv", Label: "Off Inv", SceneCode: "OFFi", Hex: "#1a1a1a", Inverted: true},
	{ID: "red_inv", Label: "Red Inv", SceneCode: "RDi", Hex: "#ff4444", Inverted: true},
	{ID: "green_inv", Label: "Green Inv", SceneCode: "GNi", Hex: "#44dd44", Inverted: true},
	{ID: "yellow_inv", Label: "Yellow Inv", SceneCode: "YEi", Hex: "#eeee44", Inverted: true},
	{ID: "blue_inv", Label: "Blue Inv", SceneCode: "BLi", Hex: "#4488ff", Inverted: true},
	{ID: "magenta_inv", Label: "Magenta Inv", SceneCode: "MGi", Hex: "#dd44dd", Inverted: true},
	{ID: "cyan_inv", Label: "Cyan Inv", SceneCode: "CYi", Hex: "#44dddd", Inverted: true},
	{ID: "white_inv", Label: "White Inv", SceneCode: "WHi", Hex: "#f0f0f0", Inverted: true},
}

var sqColors = []Color{
	{ID: "off", Label: "Off", SceneCode: "OFF", Hex: "#1a1a1a"},
	{ID: "red", Label: "Red", SceneCode: "RED", Hex: "#e53935"},
	{ID: "green", Label: "Green", SceneCode: "GRN", Hex: "#43a047"},
	{ID: "yellow", Label: "Yellow", SceneCode: "YLW", Hex: "#fdd835"},
	{ID: "blue", Label: "Blue", SceneCode: "BLU", Hex: "#1e88e5"},
	{ID: "magenta", Label: "Magenta", SceneCode: "MAG", Hex: "#d81b60"},
	{ID: "cyan", Label: "Cyan", SceneCode: "CYN", Hex: "#00acc1"},
	{ID: "white", Label: "White", SceneCode: "WHT", Hex: "#f5f5f5"},
	{ID: "orange", Label: "Orange", SceneCode: "ORG", Hex: "#fb8c00"},
}

var wingColors = []Color{
	{ID: "off", Label: "Off", SceneCode: "OFF", Hex: "#1a1a1a"},
	{ID: "red", Label: "Red", SceneCode: "RD", Hex: "#ff0000"},
	{ID: "green", Label: "Green", SceneCode: "GN", Hex: "#00c800"},
	{ID: "yellow", Label: "Yellow", SceneCode: "YE", Hex: "#e8e800"},
	{ID: "blue", Label: "Blue", SceneCode: "BL", Hex: "#0064ff"},
	{ID: "magenta", Label: "Magenta", SceneCode: "MG", Hex: "#d000d0"},
	{ID: "cyan", Label: "Cyan", SceneCode: "CY", Hex: "#00c8c8"},
	{ID: "white", Label: "White", SceneCode: "WH", Hex: "#e0e0e0"},
}

var registry = map[string]Console{
	"x32": {
		ID:             "x32",
		Name:           "Behringer X32 / Midas M32",
		InputChannels:  32,
		OutputBuses:    16,
		ScribbleLength: 12,
		Colors:         x32Colors,
		ChannelOptions: []int{8, 16, 24, 32},
		OutputOptions:  []int{8, 16},
	},
	"sq": {
		ID:             "sq",
		Name:           "Allen & Heath SQ",
		InputChannels:  48,
		OutputBuses:    16,
		ScribbleLength: 8,
		Colors:         sqColors,
		ChannelOptions: []int{8, 16, 24, 32, 48},
		OutputOptions:  []int{8, 12, 16},
	},
	"wing": {
		ID:             "wing",
		Name:           "Behringer WING",
		InputChannels:  48,
		OutputBuses:    48,
		ScribbleLength: 16,
		Colors:         wingColors,
		ChannelOptions: []int{8, 16, 24, 32, 48},
		OutputOptions:  []int{8, 16, 24, 32, 48},
	},
}

var defaultCategoryColors = map[string]map[string]string{
	"x32": {
		CategoryVocals:     "red",
		CategoryDrums:      "blue",
		CategoryGuitars:    "green",
		CategoryBass:       "yellow",
		CategoryKeys:       "cyan",
		CategoryStrings:    "magenta",
		CategoryWinds:      "white",
		CategoryPercussion: "blue_inv",
		CategoryMonitors:   "green_inv",
	},
	"sq": {
		CategoryVocals:     "red",
		CategoryDrums:      "blue",
		CategoryGuitars:    "green",
		CategoryBass:       "yellow",
		CategoryKeys:       "cyan",
		CategoryStrings:    "magenta",
		CategoryWinds:      "white",
		CategoryPercussion: "orange",
		CategoryMonitors:   "green",
	},
	"wing": {
		CategoryVocals:     "red",
		CategoryDrums:      "blue",
		CategoryGuitars:    "green",
		CategoryBass:       "yellow",
		CategoryKeys:       "cyan",
		CategoryStrings:    "magenta",
		CategoryWinds:      "white",
		CategoryPercussion: "blue",
		CategoryMonitors:   "green",
	},
}

// Get returns the console with the given id
func Get(id string) (Console, bool) {
	c, ok := registry[id]
	return c, ok
}

// IDs returns all console ids, sorted
func IDs() []string {
	ids := make([]string, 0, len(registry))
	for id := range registry {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// ColorByID finds a color within a console's palette
func (c Console) ColorByID(id string) (Color, bool) {
	for _, col := range c.Colors {
		if col.ID == id {
			return col, true
		}
	}
	return Color{}, false
}

// DefaultCategoryColors returns a fresh copy of a console's category
// color defaults. Unknown consoles get the X32 defaults.
func DefaultCategoryColors(id string) map[string]string {
	src, ok := defaultCategoryColors[id]
	if !ok {
		src = defaultCategoryColors["x32"]
	}
	out := make(map[string]string, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}

// ShortNameLength is the scribble strip length for a console id, falling
// back to DefaultShortNameLength.
func ShortNameLength(id string) int {
	if c, ok := registry[id]; ok && c.ScribbleLength > 0 {
		return c.ScribbleLength
	}
	return DefaultShortNameLength
}

// IsChannelMode reports whether n is a valid patch list size
func IsChannelMode(n int) bool {
	for _, m := range ChannelModes {
		if m == n {
			return true
		}
	}
	return false
}
