package timeline

import (
	"context"
	"convention-scheduler-server/models"
	"errors"
	"fmt"
)

// DefaultDropMinutes is the duration given to an event dropped on the grid
// when it has none.
const DefaultDropMinutes = 60

// Editor wires the day registry, the event orchestrator, the view state and
// the gesture controller into the schedule editor of one convention.
// Day registry -> per-day events -> overlap layout -> pixel geometry ->
// gestures -> placements back into the orchestrator.
//
// An Editor is not safe for concurrent use, apart from the press-and-hold
// scroll timer which only touches the view state.
type Editor struct {
	ConventionID uint
	Grid         Grid

	Registry *Registry
	Events   *Orchestrator
	View     *ViewState
	Scroll   *Scroller
	Pointer  *PointerBus
	Gestures *Controller

	store      Store
	convention models.Convention
	multiDay   bool
}

func NewEditor(store Store, conventionID uint, grid Grid) *Editor {
	grid.Normalize()
	e := &Editor{
		store:        store,
		ConventionID: conventionID,
		Grid:         grid,
		Registry:     NewRegistry(store, conventionID),
		Events:       NewOrchestrator(store, conventionID),
		View:         NewViewState(grid),
		Pointer:      NewPointerBus(),
	}
	e.Scroll = NewScroller(e.View, grid.ScrollInterval)
	e.Gestures = NewController(grid, e.Pointer, e.Events.ApplyPlacement)
	e.Events.DayID = e.dayID
	return e
}

// Open loads the convention, its days and its events.
func (e *Editor) Open(ctx context.Context) error {
	conv, err := e.store.GetConvention(ctx, e.ConventionID)
	if err != nil {
		return fmt.Errorf("fetch convention %d: %w", e.ConventionID, err)
	}
	e.convention = *conv
	e.multiDay = conv.SpanDays() > 1

	if err := e.Registry.Refresh(ctx); err != nil {
		return err
	}
	if err := e.Events.Load(ctx); err != nil {
		return err
	}
	e.visitCurrent()
	return nil
}

// Convention returns the convention being edited.
func (e *Editor) Convention() models.Convention {
	return e.convention
}

// InitializeDays generates the official days from the convention span.
func (e *Editor) InitializeDays(ctx context.Context) error {
	if err := e.Registry.Initialize(ctx, e.convention.SpanDays()); err != nil {
		return err
	}
	e.visitCurrent()
	return nil
}

// CurrentDay returns the day shown in the editor.
func (e *Editor) CurrentDay() (int, bool) {
	return e.Registry.Current()
}

// Navigate pages to the adjacent day if it exists.
func (e *Editor) Navigate(dir Direction) bool {
	if !e.Registry.Navigate(dir) {
		return false
	}
	e.visitCurrent()
	return true
}

// GoTo jumps to an existing day.
func (e *Editor) GoTo(offset int) bool {
	if !e.Registry.GoTo(offset) {
		return false
	}
	e.visitCurrent()
	return true
}

// AddDay appends a day before or after the range and shows it.
func (e *Editor) AddDay(ctx context.Context, pos Position) (int, error) {
	offset, err := e.Registry.AddDay(ctx, pos)
	if err != nil {
		return 0, err
	}
	e.visitCurrent()
	return offset, nil
}

// DeleteDay deletes a non-official day and unschedules the events that were
// placed on it. The view falls back to the first day when the deleted day
// was being shown.
func (e *Editor) DeleteDay(ctx context.Context, dayID uint) ([]string, error) {
	offset, err := e.Registry.DeleteDay(ctx, dayID)
	if err != nil && !errors.Is(err, ErrStaleDays) {
		return nil, err
	}
	keys := e.Events.UnscheduleDay(offset)
	e.View.Forget(offset)
	e.visitCurrent()
	return keys, err
}

// ViewStartHour returns the first visible hour of the current day.
func (e *Editor) ViewStartHour() int {
	day, ok := e.CurrentDay()
	if !ok {
		return e.Grid.DefaultHour
	}
	return e.View.StartHour(day)
}

// ScrollStep moves the current window by one hour.
func (e *Editor) ScrollStep(dir Direction) int {
	day, _ := e.CurrentDay()
	return e.Scroll.Step(day, dir)
}

// ScrollHold starts continuous scrolling of the current window.
func (e *Editor) ScrollHold(dir Direction) int {
	day, _ := e.CurrentDay()
	return e.Scroll.Hold(day, dir)
}

// ScrollRelease stops continuous scrolling.
func (e *Editor) ScrollRelease() int {
	e.Scroll.Release()
	return e.ViewStartHour()
}

// CardFor builds the on-grid card of a placed event of the current day.
func (e *Editor) CardFor(key string) (Card, error) {
	ev, ok := e.Events.Event(key)
	if !ok {
		return Card{}, ErrEventNotFound
	}
	day, hasDay := e.CurrentDay()
	if !hasDay || !ev.IsPlaced() || ev.Day() != day {
		return Card{}, fmt.Errorf("event %s is not placed on day %d: %w", key, day, ErrEventNotFound)
	}
	viewStart := e.ViewStartHour() * 60
	return Card{
		Key:      key,
		Day:      day,
		Start:    ev.Start(),
		Duration: ev.Duration(),
		Top:      e.Grid.Top(ev.Start(), viewStart),
		Height:   e.Grid.Height(ev.Duration()),
	}, nil
}

// PointerDown starts a drag or resize on a card of the current day.
func (e *Editor) PointerDown(key string, offsetY, y float64) (GestureKind, Edge, error) {
	card, err := e.CardFor(key)
	if err != nil {
		return GestureNone, EdgeNone, err
	}
	return e.Gestures.PointerDown(card, offsetY, y)
}

// PointerMove feeds a window-level pointer move.
func (e *Editor) PointerMove(y float64) (Preview, bool) {
	e.Pointer.Move(y)
	return e.Gestures.Preview()
}

// PointerUp feeds a window-level pointer up and returns the gesture result.
func (e *Editor) PointerUp(y float64) (Commit, error) {
	e.Pointer.Up(y)
	c, ok := e.Gestures.LastCommit()
	if !ok {
		return Commit{}, ErrNoGesture
	}
	return c, c.Err
}

// Click reports whether a click on a card opens its editor.
func (e *Editor) Click() bool {
	return e.Gestures.ConsumeClick()
}

// dropPayload completes a payload from the event it carries.
func (e *Editor) dropPayload(p DropPayload) (DropPayload, error) {
	ev, ok := e.Events.Event(p.Key)
	if !ok {
		return p, ErrEventNotFound
	}
	if p.Duration != nil {
		return p, nil
	}
	d := DefaultDropMinutes
	if ev.DurationMinutes != nil {
		d = *ev.DurationMinutes
	}
	p.Duration = &d
	return p, nil
}

// DragOver returns the placeholder for an external drag over the current
// day at y.
func (e *Editor) DragOver(p DropPayload, y float64) (Placeholder, error) {
	p, err := e.dropPayload(p)
	if err != nil {
		return Placeholder{}, err
	}
	return e.Grid.DragOver(p, y, e.ViewStartHour()), nil
}

// Drop places an event dropped from outside the grid onto the current day.
func (e *Editor) Drop(p DropPayload, y float64) (Placement, error) {
	day, ok := e.CurrentDay()
	if !ok {
		return Placement{}, ErrNoDays
	}
	p, err := e.dropPayload(p)
	if err != nil {
		return Placement{}, err
	}
	placement := e.Grid.Drop(p, day, y, e.ViewStartHour())
	if err := e.Events.ApplyPlacement(placement); err != nil {
		return Placement{}, err
	}
	return placement, nil
}

// Unschedule removes an event from the timeline.
func (e *Editor) Unschedule(key string) error {
	return e.Events.UnscheduleEvent(key)
}

// Save persists all consistent placements.
func (e *Editor) Save(ctx context.Context) (SaveReport, error) {
	return e.Events.SavePlacedEvents(ctx)
}

// Close releases pointer subscriptions and the scroll timer.
func (e *Editor) Close() {
	e.Gestures.Close()
	e.Scroll.Close()
}

// DayView is one rendered day.
type DayView struct {
	DayOffset     int          `json:"dayOffset"`
	ViewStartHour int          `json:"viewStartHour"`
	Cards         []PlacedCard `json:"cards"`
}

// State is a render snapshot of the editor.
type State struct {
	ConventionID uint                 `json:"conventionID"`
	Days         []models.ScheduleDay `json:"days"`
	HasDays      bool                 `json:"hasDays"`
	Current      *DayView             `json:"current,omitempty"`
	Labels       []string             `json:"labels"`
	Prev         Pane                 `json:"prev"`
	Next         Pane                 `json:"next"`
	PrevDay      *DayView             `json:"prevDay,omitempty"`
	NextDay      *DayView             `json:"nextDay,omitempty"`
	Events       EventList            `json:"events"`
	Unsaved      bool                 `json:"unsaved"`
	Gesture      *Preview             `json:"gesture,omitempty"`
	Scrolling    bool                 `json:"scrolling"`
}

// State renders the editor for a grid totalWidth pixels wide. Preview panes
// are laid out at their clipped width.
func (e *Editor) State(totalWidth float64) State {
	st := State{
		ConventionID: e.ConventionID,
		Days:         e.Registry.Days(),
		Events:       e.Events.ListView(),
		Unsaved:      e.Events.HasUnsavedChanges(),
		Scrolling:    e.Scroll.Holding(),
	}
	st.Prev, st.Next = e.Registry.Panes(e.multiDay, e.Grid.PreviewFrac)

	day, ok := e.CurrentDay()
	if !ok {
		st.Labels = e.Grid.SlotLabels(e.Grid.DefaultHour)
		return st
	}
	st.HasDays = true
	st.Current = e.dayView(day, totalWidth, true)
	st.Labels = e.Grid.SlotLabels(st.Current.ViewStartHour)
	if st.Prev.Kind == PanePreview {
		st.PrevDay = e.dayView(*st.Prev.DayOffset, totalWidth*e.Grid.PreviewFrac, false)
	}
	if st.Next.Kind == PanePreview {
		st.NextDay = e.dayView(*st.Next.DayOffset, totalWidth*e.Grid.PreviewFrac, false)
	}
	if p, ok := e.Gestures.Preview(); ok {
		st.Gesture = &p
	}
	return st
}

// dayView lays out a day. Only the interactive day counts as a visit;
// previews peek at the position the day would open at.
func (e *Editor) dayView(day int, width float64, visit bool) *DayView {
	var hour int
	if visit {
		hour = e.View.Visit(day, e.Events.PlacedStarts(day))
	} else {
		hour = e.View.Peek(day, e.Events.PlacedStarts(day))
	}
	return &DayView{
		DayOffset:     day,
		ViewStartHour: hour,
		Cards:         e.Grid.LayoutDay(e.Events.DayEvents(day), hour, width),
	}
}

func (e *Editor) visitCurrent() {
	if day, ok := e.CurrentDay(); ok {
		e.View.Visit(day, e.Events.PlacedStarts(day))
	}
}

func (e *Editor) dayID(offset int) *uint {
	d, ok := e.Registry.Day(offset)
	if !ok || d.ID == 0 {
		return nil
	}
	id := d.ID
	return &id
}
