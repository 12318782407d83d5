package timeline

import (
	"fmt"
	"math"
)

// Rect is a card rectangle in grid pixels, relative to the top-left of the
// visible window.
type Rect struct {
	Top    float64 `json:"top"`
	Left   float64 `json:"left"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// ClampMinute limits a minute-of-day value to [0, 1439].
func ClampMinute(minutes int) int {
	return clampInt(minutes, 0, MinutesPerDay-1)
}

// MinutesToLabel renders minutes since midnight as a 12-hour clock label,
// e.g. 0 -> "12:00 AM", 570 -> "9:30 AM", 780 -> "1:00 PM".
func MinutesToLabel(minutes int) string {
	minutes = ClampMinute(minutes)
	h, m := minutes/60, minutes%60
	suffix := "AM"
	if h >= 12 {
		suffix = "PM"
	}
	h12 := h % 12
	if h12 == 0 {
		h12 = 12
	}
	return fmt.Sprintf("%d:%02d %s", h12, m, suffix)
}

// Snap rounds minutes to the nearest multiple of IntervalMinutes. Halves
// round away from zero, so 7 -> 0, 8 -> 15, -8 -> -15.
func Snap(minutes int) int {
	return int(math.Round(float64(minutes)/IntervalMinutes)) * IntervalMinutes
}

// PixelsToMinutes converts a vertical pixel delta into a whole number of
// interval rows, expressed in minutes.
func (g Grid) PixelsToMinutes(deltaPx float64) int {
	return int(math.Round(deltaPx/g.RowHeight)) * IntervalMinutes
}

// Top returns the vertical offset of an event starting at startMinutes in a
// window that begins at viewStartMinutes.
func (g Grid) Top(startMinutes, viewStartMinutes int) float64 {
	return float64(startMinutes-viewStartMinutes) / IntervalMinutes * g.RowHeight
}

// Height returns the card height for a duration. Milestones always take one
// row.
func (g Grid) Height(durationMinutes int) float64 {
	if durationMinutes <= 0 {
		return g.RowHeight
	}
	return float64(durationMinutes) / IntervalMinutes * g.RowHeight
}

// WindowHeight is the pixel height of the visible window.
func (g Grid) WindowHeight() float64 {
	return float64(g.WindowHours*60) / IntervalMinutes * g.RowHeight
}

// Column returns the horizontal extent of column col out of numCols for a
// grid totalWidth pixels wide.
func (g Grid) Column(col, numCols int, totalWidth float64) (left, width float64) {
	if numCols < 1 {
		numCols = 1
	}
	col = clampInt(col, 0, numCols-1)
	usable := totalWidth - g.Gutter
	if usable < 0 {
		usable = 0
	}
	width = (usable - g.ColumnGap*float64(numCols-1)) / float64(numCols)
	if width < 0 {
		width = 0
	}
	left = g.Gutter + float64(col)*(width+g.ColumnGap)
	return left, width
}

// CardRect combines vertical geometry and an overlap column into a card
// rectangle.
func (g Grid) CardRect(startMinutes, durationMinutes, viewStartMinutes int, c Column, totalWidth float64) Rect {
	left, width := g.Column(c.Col, c.NumCols, totalWidth)
	return Rect{
		Top:    g.Top(ClampMinute(startMinutes), viewStartMinutes),
		Left:   left,
		Width:  width,
		Height: g.Height(durationMinutes),
	}
}

// SlotLabels lists the label of every row in a window starting at startHour.
func (g Grid) SlotLabels(startHour int) []string {
	rows := g.WindowHours * 60 / IntervalMinutes
	labels := make([]string, 0, rows)
	for i := 0; i < rows; i++ {
		labels = append(labels, MinutesToLabel(startHour*60+i*IntervalMinutes))
	}
	return labels
}

// clampStart keeps a snapped start inside the day: timed events must end by
// midnight, milestones must start before it.
func clampStart(start, duration int) int {
	if duration <= 0 {
		return clampInt(start, 0, MinutesPerDay-IntervalMinutes)
	}
	return clampInt(start, 0, MinutesPerDay-duration)
}
