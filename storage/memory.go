package storage

import (
	"context"
	"convention-scheduler-server/models"
	"convention-scheduler-server/timeline"
	"sync"
	"time"

	"golang.org/x/exp/slices"
)

// MemoryStore keeps conventions, days and events in process memory. It is
// used for local demos (SCHEDULE_STORE=memory) and tests.
type MemoryStore struct {
	mu          sync.Mutex
	nextID      uint
	conventions map[uint]models.Convention
	days        map[uint]models.ScheduleDay
	events      map[uint]models.ScheduleEvent

	// FailUpdates makes UpdatePlacement fail for the listed event ids.
	FailUpdates map[uint]error
	// Calls counts every mutating call, by method name.
	Calls map[string]int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		nextID:      1,
		conventions: map[uint]models.Convention{},
		days:        map[uint]models.ScheduleDay{},
		events:      map[uint]models.ScheduleEvent{},
		FailUpdates: map[uint]error{},
		Calls:       map[string]int{},
	}
}

var _ timeline.Store = (*MemoryStore)(nil)

func (m *MemoryStore) id() uint {
	id := m.nextID
	m.nextID++
	return id
}

// AddConvention seeds a convention and returns it with its id.
func (m *MemoryStore) AddConvention(c models.Convention) models.Convention {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c.ID == 0 {
		c.ID = m.id()
	}
	m.conventions[c.ID] = c
	return c
}

// AddDay seeds a schedule day.
func (m *MemoryStore) AddDay(d models.ScheduleDay) models.ScheduleDay {
	m.mu.Lock()
	defer m.mu.Unlock()
	if d.ID == 0 {
		d.ID = m.id()
	}
	m.days[d.ID] = d
	return d
}

// AddEvent seeds a schedule event.
func (m *MemoryStore) AddEvent(e models.ScheduleEvent) models.ScheduleEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e.ID == 0 {
		e.ID = m.id()
	}
	m.events[e.ID] = e
	return e
}

// StoredEvent returns the persisted copy of an event.
func (m *MemoryStore) StoredEvent(id uint) (models.ScheduleEvent, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.events[id]
	return e, ok
}

// CallCount returns how many times a mutating method was called.
func (m *MemoryStore) CallCount(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Calls[method]
}

func (m *MemoryStore) GetConvention(ctx context.Context, conventionID uint) (*models.Convention, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.conventions[conventionID]
	if !ok {
		return nil, timeline.ErrConventionNotFound
	}
	return &c, nil
}

func (m *MemoryStore) ListScheduleDays(ctx context.Context, conventionID uint) ([]models.ScheduleDay, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.ScheduleDay
	for _, d := range m.days {
		if d.ConventionID == conventionID {
			out = append(out, d)
		}
	}
	slices.SortFunc(out, func(a, b models.ScheduleDay) int { return a.DayOffset - b.DayOffset })
	return out, nil
}

func (m *MemoryStore) createDay(conventionID uint, offset int, official bool) (models.ScheduleDay, error) {
	for _, d := range m.days {
		if d.ConventionID == conventionID && d.DayOffset == offset {
			return models.ScheduleDay{}, timeline.ErrDayExists
		}
	}
	now := time.Now()
	d := models.ScheduleDay{ID: m.id(), ConventionID: conventionID, DayOffset: offset, IsOfficial: official, CreatedAt: now, UpdatedAt: now}
	m.days[d.ID] = d
	return d, nil
}

func (m *MemoryStore) CreateScheduleDay(ctx context.Context, conventionID uint, dayOffset int, official bool) (*models.ScheduleDay, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls["CreateScheduleDay"]++
	d, err := m.createDay(conventionID, dayOffset, official)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (m *MemoryStore) CreateScheduleDays(ctx context.Context, conventionID uint, offsets []int, official bool) ([]models.ScheduleDay, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls["CreateScheduleDays"]++
	out := make([]models.ScheduleDay, 0, len(offsets))
	for _, o := range offsets {
		d, err := m.createDay(conventionID, o, official)
		if err != nil {
			continue
		}
		out = append(out, d)
	}
	return out, nil
}

func (m *MemoryStore) DeleteScheduleDay(ctx context.Context, conventionID, dayID uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls["DeleteScheduleDay"]++
	d, ok := m.days[dayID]
	if !ok || d.ConventionID != conventionID {
		return timeline.ErrDayNotFound
	}
	if d.IsOfficial {
		return timeline.ErrOfficialDay
	}
	for id, e := range m.events {
		if e.ConventionID != conventionID {
			continue
		}
		onDay := (e.ScheduleDayID != nil && *e.ScheduleDayID == d.ID) ||
			(e.DayOffset != nil && *e.DayOffset == d.DayOffset)
		if onDay {
			e.ScheduleDayID = nil
			e.DayOffset = nil
			e.StartTimeMinutes = nil
			e.DurationMinutes = nil
			m.events[id] = e
		}
	}
	delete(m.days, dayID)
	return nil
}

func (m *MemoryStore) ListScheduleEvents(ctx context.Context, conventionID uint) ([]models.ScheduleEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.ScheduleEvent
	for _, e := range m.events {
		if e.ConventionID == conventionID {
			out = append(out, e)
		}
	}
	slices.SortFunc(out, func(a, b models.ScheduleEvent) int { return int(a.ID) - int(b.ID) })
	return out, nil
}

func (m *MemoryStore) GetScheduleEvent(ctx context.Context, eventID uint) (*models.ScheduleEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.events[eventID]
	if !ok {
		return nil, timeline.ErrEventNotFound
	}
	return &e, nil
}

func (m *MemoryStore) CreateScheduleEvent(ctx context.Context, conventionID uint, scheduleDayID *uint, ev models.ScheduleEvent) (*models.ScheduleEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls["CreateScheduleEvent"]++
	if scheduleDayID != nil {
		d, ok := m.days[*scheduleDayID]
		if !ok {
			return nil, timeline.ErrDayNotFound
		}
		if ev.DayOffset == nil {
			ev.DayOffset = models.IntPtr(d.DayOffset)
		}
	}
	now := time.Now()
	ev.ID = m.id()
	ev.TempID = ""
	ev.ConventionID = conventionID
	ev.ScheduleDayID = scheduleDayID
	ev.CreatedAt, ev.UpdatedAt = now, now
	m.events[ev.ID] = ev
	return &ev, nil
}

func (m *MemoryStore) UpdateScheduleEvent(ctx context.Context, ev models.ScheduleEvent) (*models.ScheduleEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls["UpdateScheduleEvent"]++
	existing, ok := m.events[ev.ID]
	if !ok {
		return nil, timeline.ErrEventNotFound
	}
	ev.ConventionID = existing.ConventionID
	ev.CreatedAt = existing.CreatedAt
	ev.UpdatedAt = time.Now()
	m.events[ev.ID] = ev
	return &ev, nil
}

func (m *MemoryStore) UpdatePlacement(ctx context.Context, eventID uint, p timeline.PlacementUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls["UpdatePlacement"]++
	if err, ok := m.FailUpdates[eventID]; ok {
		return err
	}
	e, ok := m.events[eventID]
	if !ok {
		return timeline.ErrEventNotFound
	}
	e.Title = p.Title
	e.DayOffset = p.DayOffset
	e.StartTimeMinutes = p.StartTimeMinutes
	e.DurationMinutes = p.DurationMinutes
	e.ScheduleDayID = p.ScheduleDayID
	e.UpdatedAt = time.Now()
	m.events[eventID] = e
	return nil
}

func (m *MemoryStore) DeleteScheduleEvent(ctx context.Context, eventID uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls["DeleteScheduleEvent"]++
	if _, ok := m.events[eventID]; !ok {
		return timeline.ErrEventNotFound
	}
	delete(m.events, eventID)
	return nil
}

func (m *MemoryStore) BulkCreateScheduleEvents(ctx context.Context, conventionID uint, items []models.ScheduleEvent) (int, []timeline.ItemError, error) {
	valid, itemErrs := timeline.ValidateBulk(items)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls["BulkCreateScheduleEvents"]++
	for _, ev := range valid {
		ev.ID = m.id()
		ev.ConventionID = conventionID
		m.events[ev.ID] = ev
	}
	return len(valid), itemErrs, nil
}
