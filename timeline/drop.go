package timeline

import "math"

// DropPayload is what an external drag source (the unplaced list or another
// day's grid) carries onto a day grid. A nil Duration means the source did
// not say; 0 is a milestone.
type DropPayload struct {
	Key      string `json:"key" validate:"required"`
	Title    string `json:"title"`
	Duration *int   `json:"durationMinutes" validate:"omitempty,min=0"`
}

func (p DropPayload) duration() int {
	if p.Duration == nil {
		return 0
	}
	return NormalizeDuration(*p.Duration)
}

// Placeholder is the candidate slot highlighted while dragging over a grid.
type Placeholder struct {
	Key      string  `json:"key"`
	Start    int     `json:"startTimeMinutes"`
	Duration int     `json:"durationMinutes"`
	Label    string  `json:"label"`
	Top      float64 `json:"top"`
	Height   float64 `json:"height"`
}

// DropSlot maps a pointer position (pixels from the top of the visible
// window) to a start minute. Milestones land at the start of the hovered
// cell; timed events at the following cell boundary.
func (g Grid) DropSlot(y float64, viewStartHour, duration int) int {
	rows := y / g.RowHeight
	var cell float64
	if duration <= 0 {
		cell = math.Floor(rows)
	} else {
		cell = math.Ceil(rows)
	}
	start := viewStartHour*60 + int(cell)*IntervalMinutes
	return clampStart(Snap(start), duration)
}

// DragOver computes the placeholder shown for payload at y.
func (g Grid) DragOver(payload DropPayload, y float64, viewStartHour int) Placeholder {
	duration := payload.duration()
	start := g.DropSlot(y, viewStartHour, duration)
	return Placeholder{
		Key:      payload.Key,
		Start:    start,
		Duration: duration,
		Label:    MinutesToLabel(start),
		Top:      g.Top(start, viewStartHour*60),
		Height:   g.Height(duration),
	}
}

// Drop turns a drop at y on day into a placement. A drop always produces a
// placement, even when it lands where the event already was.
func (g Grid) Drop(payload DropPayload, day int, y float64, viewStartHour int) Placement {
	duration := payload.duration()
	p := Placement{
		Key:       payload.Key,
		DayOffset: day,
		Start:     g.DropSlot(y, viewStartHour, duration),
		Duration:  duration,
	}
	if payload.Title != "" {
		title := payload.Title
		p.Title = &title
	}
	return p
}

// NormalizeDuration keeps 0 (milestone) and snaps anything else to a
// positive multiple of the interval no longer than a day.
func NormalizeDuration(d int) int {
	if d <= 0 {
		return 0
	}
	return clampInt(Snap(d), MinDurationMinutes, MinutesPerDay)
}
