package timeline

import (
	"context"
	"convention-scheduler-server/models"
	"fmt"

	"golang.org/x/exp/slices"
)

// Position says on which side of the existing range a day is added.
type Position string

const (
	Before Position = "before"
	After  Position = "after"
)

// PaneKind is what sits beside the interactive day grid.
type PaneKind string

const (
	PaneEmpty   PaneKind = "empty"
	PanePreview PaneKind = "preview"
	PaneAddDay  PaneKind = "add-day"
)

// Pane describes a preview pane next to the current day.
type Pane struct {
	Kind      PaneKind `json:"kind"`
	DayOffset *int     `json:"dayOffset,omitempty"`
	Position  Position `json:"position"`
	// Fraction of the full grid width the pane shows; the pane fades toward
	// its outer edge.
	ClipFraction float64 `json:"clipFraction"`
}

// Registry is the ordered set of schedule days of one convention and the
// day currently shown in the editor.
type Registry struct {
	store        Store
	conventionID uint

	days    []models.ScheduleDay // sorted by DayOffset
	current int
	hasView bool
}

func NewRegistry(store Store, conventionID uint) *Registry {
	return &Registry{store: store, conventionID: conventionID}
}

// Refresh refetches the days. The current view is kept when its day still
// exists and falls back to the first day otherwise.
func (r *Registry) Refresh(ctx context.Context) error {
	days, err := r.store.ListScheduleDays(ctx, r.conventionID)
	if err != nil {
		return fmt.Errorf("fetch schedule days: %w", err)
	}
	slices.SortFunc(days, func(a, b models.ScheduleDay) int { return a.DayOffset - b.DayOffset })
	r.days = days

	if len(days) == 0 {
		r.hasView = false
		r.current = 0
		return nil
	}
	if !r.hasView || !r.Has(r.current) {
		r.current = days[0].DayOffset
		r.hasView = true
	}
	return nil
}

// Initialize creates the official days 0..spanDays-1. It refuses when days
// already exist.
func (r *Registry) Initialize(ctx context.Context, spanDays int) error {
	if len(r.days) > 0 {
		return ErrNotEmpty
	}
	if spanDays < 1 {
		spanDays = 1
	}
	offsets := make([]int, spanDays)
	for i := range offsets {
		offsets[i] = i
	}
	if _, err := r.store.CreateScheduleDays(ctx, r.conventionID, offsets, true); err != nil {
		return fmt.Errorf("initialize schedule days: %w", err)
	}
	return r.Refresh(ctx)
}

// Days returns a copy of the registry, sorted by offset.
func (r *Registry) Days() []models.ScheduleDay {
	return slices.Clone(r.days)
}

// Offsets returns the existing day offsets in order.
func (r *Registry) Offsets() []int {
	out := make([]int, 0, len(r.days))
	for _, d := range r.days {
		out = append(out, d.DayOffset)
	}
	return out
}

// Has reports whether a day exists at offset.
func (r *Registry) Has(offset int) bool {
	_, ok := r.byOffset(offset)
	return ok
}

// Day returns the day at offset.
func (r *Registry) Day(offset int) (models.ScheduleDay, bool) {
	return r.byOffset(offset)
}

// Current returns the offset shown in the editor; ok is false when there
// are no days.
func (r *Registry) Current() (int, bool) {
	return r.current, r.hasView
}

// NextOffset computes the offset a new day would get.
func (r *Registry) NextOffset(pos Position) (int, error) {
	if len(r.days) == 0 {
		return 0, ErrNoDays
	}
	if pos == Before {
		return r.days[0].DayOffset - 1, nil
	}
	return r.days[len(r.days)-1].DayOffset + 1, nil
}

// AddDay creates a non-official day just before or after the existing
// range, refetches and moves the view to it.
func (r *Registry) AddDay(ctx context.Context, pos Position) (int, error) {
	offset, err := r.NextOffset(pos)
	if err != nil {
		return 0, err
	}
	if _, err := r.store.CreateScheduleDay(ctx, r.conventionID, offset, false); err != nil {
		return 0, fmt.Errorf("create schedule day %d: %w", offset, err)
	}
	if err := r.Refresh(ctx); err != nil {
		return 0, err
	}
	if r.Has(offset) {
		r.current = offset
		r.hasView = true
	}
	return offset, nil
}

// DeleteDay removes a non-official day and refetches. It returns the offset
// of the deleted day so callers can unschedule its events. When the delete
// succeeds but the refetch fails, the day is dropped locally and the error
// wraps ErrStaleDays.
func (r *Registry) DeleteDay(ctx context.Context, dayID uint) (int, error) {
	idx := slices.IndexFunc(r.days, func(d models.ScheduleDay) bool { return d.ID == dayID })
	if idx < 0 {
		return 0, ErrDayNotFound
	}
	day := r.days[idx]
	if day.IsOfficial {
		return 0, ErrOfficialDay
	}
	if err := r.store.DeleteScheduleDay(ctx, r.conventionID, dayID); err != nil {
		return 0, fmt.Errorf("delete schedule day %d: %w", day.DayOffset, err)
	}
	if err := r.Refresh(ctx); err != nil {
		r.days = slices.Delete(slices.Clone(r.days), idx, idx+1)
		if r.current == day.DayOffset {
			r.hasView = len(r.days) > 0
			r.current = 0
			if r.hasView {
				r.current = r.days[0].DayOffset
			}
		}
		return day.DayOffset, fmt.Errorf("%w: %v", ErrStaleDays, err)
	}
	return day.DayOffset, nil
}

// Navigate moves the view to the adjacent day if it exists. It reports
// whether the view moved.
func (r *Registry) Navigate(dir Direction) bool {
	if !r.hasView {
		return false
	}
	target := r.current + int(dir)
	if !r.Has(target) {
		return false
	}
	r.current = target
	return true
}

// GoTo moves the view to an existing offset.
func (r *Registry) GoTo(offset int) bool {
	if !r.Has(offset) {
		return false
	}
	r.current = offset
	r.hasView = true
	return true
}

// Panes describes what is shown beside the current day. When the adjacent
// day is missing and the convention spans several days, a pane at the edge
// of the existing range offers to add a day instead.
func (r *Registry) Panes(multiDay bool, clip float64) (prev, next Pane) {
	prev = Pane{Kind: PaneEmpty, Position: Before, ClipFraction: clip}
	next = Pane{Kind: PaneEmpty, Position: After, ClipFraction: clip}
	if !r.hasView {
		return prev, next
	}
	first, last := r.days[0].DayOffset, r.days[len(r.days)-1].DayOffset

	if o := r.current - 1; r.Has(o) {
		prev.Kind, prev.DayOffset = PanePreview, &o
	} else if multiDay && r.current == first {
		prev.Kind = PaneAddDay
	}
	if o := r.current + 1; r.Has(o) {
		next.Kind, next.DayOffset = PanePreview, &o
	} else if multiDay && r.current == last {
		next.Kind = PaneAddDay
	}
	return prev, next
}

func (r *Registry) byOffset(offset int) (models.ScheduleDay, bool) {
	i, ok := slices.BinarySearchFunc(r.days, offset, func(d models.ScheduleDay, o int) int { return d.DayOffset - o })
	if !ok {
		return models.ScheduleDay{}, false
	}
	return r.days[i], true
}
