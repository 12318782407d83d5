package timeline

import "sync"

// ViewState remembers the first visible hour of each day's window. A day is
// initialized on its first visit and keeps its position afterwards.
type ViewState struct {
	mu     sync.Mutex
	grid   Grid
	starts map[int]int
}

func NewViewState(grid Grid) *ViewState {
	return &ViewState{grid: grid, starts: map[int]int{}}
}

// Visit returns the view start hour of a day, initializing it on first visit
// from the earliest placed start among placedStarts, or the default hour
// when the day is empty.
func (v *ViewState) Visit(day int, placedStarts []int) int {
	v.mu.Lock()
	defer v.mu.Unlock()
	if h, ok := v.starts[day]; ok {
		return h
	}
	h := v.initialHour(placedStarts)
	v.starts[day] = h
	return h
}

// Peek returns the start hour Visit would return without recording a visit.
func (v *ViewState) Peek(day int, placedStarts []int) int {
	v.mu.Lock()
	defer v.mu.Unlock()
	if h, ok := v.starts[day]; ok {
		return h
	}
	return v.initialHour(placedStarts)
}

// StartHour returns the current start hour of a day without initializing it
// from events.
func (v *ViewState) StartHour(day int) int {
	v.mu.Lock()
	defer v.mu.Unlock()
	if h, ok := v.starts[day]; ok {
		return h
	}
	return v.grid.DefaultHour
}

// Scroll moves a day's window by deltaHours, clamped to the day. It reports
// the new start hour and whether it moved.
func (v *ViewState) Scroll(day, deltaHours int) (int, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	cur, ok := v.starts[day]
	if !ok {
		cur = v.grid.DefaultHour
	}
	next := clampInt(cur+deltaHours, 0, v.grid.MaxStartHour())
	v.starts[day] = next
	return next, next != cur
}

// Forget drops the remembered position of a deleted day.
func (v *ViewState) Forget(day int) {
	v.mu.Lock()
	delete(v.starts, day)
	v.mu.Unlock()
}

func (v *ViewState) initialHour(placedStarts []int) int {
	if len(placedStarts) == 0 {
		return v.grid.DefaultHour
	}
	earliest := placedStarts[0]
	for _, s := range placedStarts[1:] {
		if s < earliest {
			earliest = s
		}
	}
	return clampInt(earliest/60, 0, v.grid.MaxStartHour())
}
