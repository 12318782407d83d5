package timeline

import (
	"context"
	"convention-scheduler-server/models"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/exp/slices"
)

// Orchestrator owns the authoritative event list of one convention during
// an editing session. Grids and gestures report intended changes here; only
// its methods mutate the list.
type Orchestrator struct {
	store        Store
	conventionID uint

	// DayID resolves a day offset to its persisted day id for placement
	// saves. Optional.
	DayID func(dayOffset int) *uint

	mu     sync.Mutex
	events []models.ScheduleEvent
	dirty  map[string]bool
}

func NewOrchestrator(store Store, conventionID uint) *Orchestrator {
	return &Orchestrator{store: store, conventionID: conventionID, dirty: map[string]bool{}}
}

// Load replaces the local list with the stored events and forgets unsaved
// changes.
func (o *Orchestrator) Load(ctx context.Context) error {
	events, err := o.store.ListScheduleEvents(ctx, o.conventionID)
	if err != nil {
		return fmt.Errorf("fetch schedule events: %w", err)
	}
	o.mu.Lock()
	o.events = events
	o.dirty = map[string]bool{}
	o.mu.Unlock()
	return nil
}

// Restore installs a previously snapshotted list together with the keys
// that were unsaved at the time.
func (o *Orchestrator) Restore(events []models.ScheduleEvent, dirtyKeys []string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events = slices.Clone(events)
	o.dirty = make(map[string]bool, len(dirtyKeys))
	for _, k := range dirtyKeys {
		o.dirty[k] = true
	}
}

// Events returns a copy of every event, placed or not.
func (o *Orchestrator) Events() []models.ScheduleEvent {
	o.mu.Lock()
	defer o.mu.Unlock()
	return slices.Clone(o.events)
}

// Event looks an event up by id or temp id.
func (o *Orchestrator) Event(key string) (models.ScheduleEvent, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	i := o.indexOf(key)
	if i < 0 {
		return models.ScheduleEvent{}, false
	}
	return o.events[i], true
}

// DayEvents returns the events placed on day.
func (o *Orchestrator) DayEvents(day int) []models.ScheduleEvent {
	o.mu.Lock()
	defer o.mu.Unlock()
	var out []models.ScheduleEvent
	for _, ev := range o.events {
		if ev.IsPlaced() && *ev.DayOffset == day {
			out = append(out, ev)
		}
	}
	return out
}

// PlacedStarts returns the start minutes of the events placed on day.
func (o *Orchestrator) PlacedStarts(day int) []int {
	var out []int
	for _, ev := range o.DayEvents(day) {
		out = append(out, *ev.StartTimeMinutes)
	}
	return out
}

// Unplaced returns the events that are not on the timeline.
func (o *Orchestrator) Unplaced() []models.ScheduleEvent {
	o.mu.Lock()
	defer o.mu.Unlock()
	var out []models.ScheduleEvent
	for _, ev := range o.events {
		if !ev.IsPlaced() {
			out = append(out, ev)
		}
	}
	return out
}

// EventList is the "all events" view: unplaced events, then placed ones,
// each group sorted by title. Divider is the index of the first placed
// event.
type EventList struct {
	Items   []models.ScheduleEvent `json:"items"`
	Divider int                    `json:"divider"`
}

// ListView builds the "all events" list.
func (o *Orchestrator) ListView() EventList {
	items := o.Events()
	slices.SortStableFunc(items, func(a, b models.ScheduleEvent) int {
		if a.IsPlaced() != b.IsPlaced() {
			if a.IsPlaced() {
				return 1
			}
			return -1
		}
		if c := strings.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title)); c != 0 {
			return c
		}
		return strings.Compare(a.Key(), b.Key())
	})
	divider := slices.IndexFunc(items, func(ev models.ScheduleEvent) bool { return ev.IsPlaced() })
	if divider < 0 {
		divider = len(items)
	}
	return EventList{Items: items, Divider: divider}
}

// AddDraft adds a not-yet-persisted event with a temp id. It is created in
// the store by the next SavePlacedEvents.
func (o *Orchestrator) AddDraft(in EventInput) (models.ScheduleEvent, error) {
	if err := in.Validate(); err != nil {
		return models.ScheduleEvent{}, err
	}
	ev := in.ToModel(models.ScheduleEvent{ConventionID: o.conventionID, TempID: "tmp-" + uuid.NewString()})
	o.mu.Lock()
	o.events = append(o.events, ev)
	o.dirty[ev.Key()] = true
	o.mu.Unlock()
	return ev, nil
}

// CreateEvent persists a new event and adds it to the list once the store
// has confirmed it.
func (o *Orchestrator) CreateEvent(ctx context.Context, in EventInput) (models.ScheduleEvent, error) {
	if err := in.Validate(); err != nil {
		return models.ScheduleEvent{}, err
	}
	ev := in.ToModel(models.ScheduleEvent{ConventionID: o.conventionID})
	var dayID *uint
	if ev.DayOffset != nil && o.DayID != nil {
		dayID = o.DayID(*ev.DayOffset)
	}
	created, err := o.store.CreateScheduleEvent(ctx, o.conventionID, dayID, ev)
	if err != nil {
		return models.ScheduleEvent{}, fmt.Errorf("create schedule event: %w", err)
	}
	o.mu.Lock()
	o.events = append(o.events, *created)
	o.mu.Unlock()
	return *created, nil
}

// UpdateEvent applies a full edit. Persisted events are written through and
// replaced with the stored copy; drafts change locally.
func (o *Orchestrator) UpdateEvent(ctx context.Context, key string, in EventInput) (models.ScheduleEvent, error) {
	if err := in.Validate(); err != nil {
		return models.ScheduleEvent{}, err
	}
	cur, ok := o.Event(key)
	if !ok {
		return models.ScheduleEvent{}, ErrEventNotFound
	}
	next := in.ToModel(cur)

	if cur.ID != 0 {
		if next.DayOffset != nil && o.DayID != nil {
			next.ScheduleDayID = o.DayID(*next.DayOffset)
		} else if next.DayOffset == nil {
			next.ScheduleDayID = nil
		}
		saved, err := o.store.UpdateScheduleEvent(ctx, next)
		if err != nil {
			return models.ScheduleEvent{}, fmt.Errorf("update schedule event %s: %w", key, err)
		}
		next = *saved
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	i := o.indexOf(key)
	if i < 0 {
		return models.ScheduleEvent{}, ErrEventNotFound
	}
	o.events[i] = next
	if cur.ID != 0 {
		delete(o.dirty, key)
	} else {
		o.dirty[key] = true
	}
	return next, nil
}

// DeleteEvent removes an event, placed or not.
func (o *Orchestrator) DeleteEvent(ctx context.Context, key string) error {
	cur, ok := o.Event(key)
	if !ok {
		return ErrEventNotFound
	}
	if cur.ID != 0 {
		if err := o.store.DeleteScheduleEvent(ctx, cur.ID); err != nil {
			return fmt.Errorf("delete schedule event %s: %w", key, err)
		}
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	if i := o.indexOf(key); i >= 0 {
		o.events = slices.Delete(o.events, i, i+1)
	}
	delete(o.dirty, key)
	return nil
}

// AssignExistingEventToSlot overwrites the placement of an event, and its
// title when one is given. Local only; persisted by SavePlacedEvents.
func (o *Orchestrator) AssignExistingEventToSlot(key string, dayOffset, startMinutes, durationMinutes int, title *string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	i := o.indexOf(key)
	if i < 0 {
		return ErrEventNotFound
	}
	ev := &o.events[i]
	ev.DayOffset = models.IntPtr(dayOffset)
	ev.StartTimeMinutes = models.IntPtr(startMinutes)
	ev.DurationMinutes = models.IntPtr(durationMinutes)
	if title != nil {
		ev.Title = *title
	}
	o.dirty[key] = true
	return nil
}

// ApplyPlacement assigns a committed gesture or drop.
func (o *Orchestrator) ApplyPlacement(p Placement) error {
	return o.AssignExistingEventToSlot(p.Key, p.DayOffset, p.Start, p.Duration, p.Title)
}

// UnscheduleEvent clears day, start and duration of an event. Local only.
func (o *Orchestrator) UnscheduleEvent(key string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	i := o.indexOf(key)
	if i < 0 {
		return ErrEventNotFound
	}
	o.unschedule(i)
	return nil
}

// UnscheduleDay clears the placement of every event on day and returns
// their keys.
func (o *Orchestrator) UnscheduleDay(day int) []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	var keys []string
	for i, ev := range o.events {
		if ev.IsPlaced() && *ev.DayOffset == day {
			o.unschedule(i)
			keys = append(keys, ev.Key())
		}
	}
	return keys
}

// HasUnsavedChanges reports whether any local change awaits a save.
func (o *Orchestrator) HasUnsavedChanges() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.dirty) > 0
}

// DirtyKeys lists the events with unsaved changes.
func (o *Orchestrator) DirtyKeys() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	keys := make([]string, 0, len(o.dirty))
	for k := range o.dirty {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// SaveReport summarizes a batched save.
type SaveReport struct {
	Saved   int               `json:"saved"`
	Created map[string]string `json:"created,omitempty"` // temp id -> new id
	Failed  []string          `json:"failed,omitempty"`
}

type saveResult struct {
	key     string
	title   string
	created *models.ScheduleEvent
	err     error
}

// SavePlacedEvents creates every unsaved draft and updates every stored
// event in a consistent placement state: fully placed, or with day, start
// and duration all cleared. A placed event
// without a title blocks the whole save before any store call. Updates run
// concurrently; failures are collected into a *SaveError and successes are
// kept.
func (o *Orchestrator) SavePlacedEvents(ctx context.Context) (SaveReport, error) {
	o.mu.Lock()
	var invalid []FieldError
	var batch []models.ScheduleEvent
	for _, ev := range o.events {
		if ev.IsPlaced() && strings.TrimSpace(ev.Title) == "" {
			invalid = append(invalid, FieldError{
				EventKey: ev.Key(),
				Field:    "title",
				Message:  "every scheduled event needs a title",
			})
			continue
		}
		if ev.ID == 0 || ev.IsPlaced() || ev.IsCleared() {
			batch = append(batch, ev)
		}
	}
	o.mu.Unlock()

	if len(invalid) > 0 {
		return SaveReport{}, &ValidationError{Fields: invalid}
	}

	results := make([]saveResult, len(batch))
	var wg sync.WaitGroup
	for i, ev := range batch {
		wg.Add(1)
		go func(i int, ev models.ScheduleEvent) {
			defer wg.Done()
			results[i] = o.saveOne(ctx, ev)
		}(i, ev)
	}
	wg.Wait()

	report := SaveReport{Created: map[string]string{}}
	var failed []FailedSave

	o.mu.Lock()
	for _, r := range results {
		if r.err != nil {
			failed = append(failed, FailedSave{EventKey: r.key, Title: r.title, Err: r.err})
			report.Failed = append(report.Failed, r.title)
			continue
		}
		report.Saved++
		delete(o.dirty, r.key)
		if r.created != nil {
			if i := o.indexOf(r.key); i >= 0 {
				created := *r.created
				created.DayOffset = o.events[i].DayOffset
				created.StartTimeMinutes = o.events[i].StartTimeMinutes
				created.DurationMinutes = o.events[i].DurationMinutes
				o.events[i] = created
			}
			report.Created[r.key] = r.created.Key()
		}
	}
	o.mu.Unlock()

	if len(failed) > 0 {
		return report, &SaveError{Failed: failed}
	}
	return report, nil
}

func (o *Orchestrator) saveOne(ctx context.Context, ev models.ScheduleEvent) saveResult {
	res := saveResult{key: ev.Key(), title: ev.Title}
	if err := ctx.Err(); err != nil {
		res.err = err
		return res
	}
	var dayID *uint
	if ev.DayOffset != nil && o.DayID != nil {
		dayID = o.DayID(*ev.DayOffset)
	}

	if ev.ID == 0 {
		ev.ScheduleDayID = dayID
		created, err := o.store.CreateScheduleEvent(ctx, o.conventionID, dayID, ev)
		if err != nil {
			res.err = err
			return res
		}
		res.created = created
		return res
	}

	res.err = o.store.UpdatePlacement(ctx, ev.ID, PlacementUpdate{
		Title:            ev.Title,
		DayOffset:        ev.DayOffset,
		StartTimeMinutes: ev.StartTimeMinutes,
		DurationMinutes:  ev.DurationMinutes,
		ScheduleDayID:    dayID,
	})
	return res
}

func (o *Orchestrator) unschedule(i int) {
	ev := &o.events[i]
	ev.DayOffset = nil
	ev.StartTimeMinutes = nil
	ev.DurationMinutes = nil
	ev.ScheduleDayID = nil
	o.dirty[ev.Key()] = true
}

func (o *Orchestrator) indexOf(key string) int {
	return slices.IndexFunc(o.events, func(ev models.ScheduleEvent) bool {
		return ev.Key() == key || (ev.TempID != "" && ev.TempID == key)
	})
}

// IsValidation reports whether err is a local validation failure.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
