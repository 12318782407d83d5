package timeline

import (
	"errors"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// IntervalMinutes is the scheduling granularity.
	IntervalMinutes = 15
	// MinutesPerDay bounds every placement on a day.
	MinutesPerDay = 24 * 60
	// MinDurationMinutes is the shortest timed (non-milestone) event.
	MinDurationMinutes = IntervalMinutes
)

// Grid holds the pixel and viewport constants of the timeline editor.
type Grid struct {
	RowHeight      float64       `yaml:"rowHeight" json:"rowHeight"`             // px per interval row
	WindowHours    int           `yaml:"windowHours" json:"windowHours"`         // hours visible at once
	DefaultHour    int           `yaml:"defaultHour" json:"defaultHour"`         // view start on an empty day
	Gutter         float64       `yaml:"gutter" json:"gutter"`                   // time label column width
	ColumnGap      float64       `yaml:"columnGap" json:"columnGap"`             // gap between overlap columns
	EdgeBand       float64       `yaml:"edgeBand" json:"edgeBand"`               // resize handle height
	PreviewFrac    float64       `yaml:"previewFraction" json:"previewFraction"` // share of grid width shown by preview panes
	ScrollInterval time.Duration `yaml:"scrollInterval" json:"scrollInterval"`   // press-and-hold tick
}

// DefaultGrid returns the stock editor dimensions.
func DefaultGrid() Grid {
	return Grid{
		RowHeight:      20,
		WindowHours:    5,
		DefaultHour:    8,
		Gutter:         56,
		ColumnGap:      4,
		EdgeBand:       6,
		PreviewFrac:    0.35,
		ScrollInterval: 150 * time.Millisecond,
	}
}

// Normalize fills zero or out-of-range values with defaults.
func (g *Grid) Normalize() {
	def := DefaultGrid()
	if g.RowHeight <= 0 {
		g.RowHeight = def.RowHeight
	}
	if g.WindowHours <= 0 || g.WindowHours > 24 {
		g.WindowHours = def.WindowHours
	}
	if g.DefaultHour < 0 || g.DefaultHour > 24-g.WindowHours {
		g.DefaultHour = clampInt(def.DefaultHour, 0, 24-g.WindowHours)
	}
	if g.Gutter < 0 {
		g.Gutter = def.Gutter
	}
	if g.ColumnGap < 0 {
		g.ColumnGap = def.ColumnGap
	}
	if g.EdgeBand <= 0 {
		g.EdgeBand = def.EdgeBand
	}
	if g.PreviewFrac <= 0 || g.PreviewFrac > 1 {
		g.PreviewFrac = def.PreviewFrac
	}
	if g.ScrollInterval <= 0 {
		g.ScrollInterval = def.ScrollInterval
	}
}

// MaxStartHour is the largest view start hour that still shows a full window.
func (g Grid) MaxStartHour() int {
	return 24 - g.WindowHours
}

// LoadGrid reads grid overrides from a YAML file. A missing file yields the
// defaults.
func LoadGrid(path string) (Grid, error) {
	g := DefaultGrid()
	if path == "" {
		return g, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return g, nil
		}
		return g, err
	}
	if err := yaml.Unmarshal(data, &g); err != nil {
		return DefaultGrid(), err
	}
	g.Normalize()
	return g, nil
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
