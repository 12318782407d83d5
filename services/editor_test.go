package services

import (
	"context"
	"convention-scheduler-server/models"
	"convention-scheduler-server/storage"
	"convention-scheduler-server/timeline"
	"errors"
	"sync"
	"testing"
	"time"
)

type memoryDrafts struct {
	mu     sync.Mutex
	drafts map[string]storage.Draft
}

func newMemoryDrafts() *memoryDrafts {
	return &memoryDrafts{drafts: map[string]storage.Draft{}}
}

func (m *memoryDrafts) SaveDraft(ctx context.Context, sessionID string, draft storage.Draft) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.drafts[sessionID] = draft
	return nil
}

func (m *memoryDrafts) LoadDraft(ctx context.Context, conventionID uint, sessionID string) (*storage.Draft, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.drafts[sessionID]
	if !ok || d.ConventionID != conventionID {
		return nil, storage.ErrNoDraft
	}
	return &d, nil
}

func (m *memoryDrafts) ClearDraft(ctx context.Context, conventionID uint, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.drafts, sessionID)
	return nil
}

func (m *memoryDrafts) has(sessionID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.drafts[sessionID]
	return ok
}

func seedStore() (*storage.MemoryStore, models.Convention, models.ScheduleEvent) {
	store := storage.NewMemoryStore()
	start := time.Date(2026, 7, 3, 0, 0, 0, 0, time.UTC)
	conv := store.AddConvention(models.Convention{OrganizerID: 1, Name: "Harbor Con", StartDate: start, EndDate: start.AddDate(0, 0, 1)})
	store.AddDay(models.ScheduleDay{ConventionID: conv.ID, DayOffset: 0, IsOfficial: true})
	store.AddDay(models.ScheduleDay{ConventionID: conv.ID, DayOffset: 1, IsOfficial: true})
	ev := store.AddEvent(models.ScheduleEvent{
		ConventionID:     conv.ID,
		Title:            "Opening",
		DayOffset:        models.IntPtr(0),
		StartTimeMinutes: models.IntPtr(540),
		DurationMinutes:  models.IntPtr(30),
	})
	return store, conv, ev
}

func TestDoSnapshotsUnsavedChanges(t *testing.T) {
	ctx := context.Background()
	store, conv, ev := seedStore()
	drafts := newMemoryDrafts()
	svc := NewEditorService(store, drafts, timeline.DefaultGrid())
	defer svc.CloseAll()

	sess, err := svc.Open(ctx, conv.ID, "")
	if err != nil {
		t.Fatal(err)
	}
	err = svc.Do(ctx, sess.ID, func(ed *timeline.Editor) error {
		return ed.Unschedule(ev.Key())
	})
	if err != nil {
		t.Fatal(err)
	}
	if !drafts.has(sess.ID) {
		t.Fatal("unsaved change was not snapshotted")
	}

	err = svc.Do(ctx, sess.ID, func(ed *timeline.Editor) error {
		_, err := ed.Save(ctx)
		return err
	})
	if err != nil {
		t.Fatal(err)
	}
	if drafts.has(sess.ID) {
		t.Fatal("draft kept after a clean save")
	}
}

func TestOpenResumesADraft(t *testing.T) {
	ctx := context.Background()
	store, conv, ev := seedStore()
	drafts := newMemoryDrafts()
	svc := NewEditorService(store, drafts, timeline.DefaultGrid())
	defer svc.CloseAll()

	first, _ := svc.Open(ctx, conv.ID, "")
	svc.Do(ctx, first.ID, func(ed *timeline.Editor) error {
		return ed.Events.AssignExistingEventToSlot(ev.Key(), 1, 600, 45, nil)
	})
	if err := svc.Close(first.ID); err != nil {
		t.Fatal(err)
	}

	resumed, err := svc.Open(ctx, conv.ID, first.ID)
	if err != nil {
		t.Fatal(err)
	}
	if resumed.ID != first.ID {
		t.Fatalf("resumed id = %s, want %s", resumed.ID, first.ID)
	}
	err = svc.View(resumed.ID, func(ed *timeline.Editor) error {
		got, _ := ed.Events.Event(ev.Key())
		if got.Day() != 1 || got.Start() != 600 || !ed.Events.HasUnsavedChanges() {
			t.Fatalf("restored event = %+v", got)
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}

	fresh, _ := svc.Open(ctx, conv.ID, "no-such-session")
	if fresh.ID == "no-such-session" {
		t.Fatal("unknown resume id was reused")
	}
}

func TestUnknownSession(t *testing.T) {
	svc := NewEditorService(storage.NewMemoryStore(), nil, timeline.DefaultGrid())
	if _, err := svc.Get("missing"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("Get err = %v", err)
	}
	if err := svc.Do(context.Background(), "missing", func(*timeline.Editor) error { return nil }); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("Do err = %v", err)
	}
	if err := svc.Close("missing"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("Close err = %v", err)
	}
	if _, err := svc.Open(context.Background(), 42, ""); !errors.Is(err, timeline.ErrConventionNotFound) {
		t.Fatalf("Open err = %v, want ErrConventionNotFound", err)
	}
}

func TestPanicsBecomeErrors(t *testing.T) {
	ctx := context.Background()
	store, conv, _ := seedStore()
	svc := NewEditorService(store, nil, timeline.DefaultGrid())
	defer svc.CloseAll()
	sess, _ := svc.Open(ctx, conv.ID, "")

	err := svc.Do(ctx, sess.ID, func(*timeline.Editor) error { panic("boom") })
	if err == nil {
		t.Fatal("panic was not reported")
	}
	if _, err := svc.Get(sess.ID); err != nil {
		t.Fatal("session dropped after a recovered panic")
	}
}

func TestIdleSessionsAreSwept(t *testing.T) {
	ctx := context.Background()
	store, conv, _ := seedStore()
	svc := NewEditorService(store, nil, timeline.DefaultGrid())
	defer svc.CloseAll()

	now := time.Date(2026, 7, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }
	stale, _ := svc.Open(ctx, conv.ID, "")
	now = now.Add(20 * time.Minute)
	active, _ := svc.Open(ctx, conv.ID, "")
	now = now.Add(15 * time.Minute)

	sweeper := &IdleSweeper{editors: svc, maxIdle: 30 * time.Minute}
	sweeper.Sweep()

	if _, err := svc.Get(stale.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Fatal("stale session survived the sweep")
	}
	if _, err := svc.Get(active.ID); err != nil {
		t.Fatal("active session was swept")
	}
	if svc.Count() != 1 {
		t.Fatalf("count = %d, want 1", svc.Count())
	}
}

func TestStartIdleSweeperRejectsBadSchedule(t *testing.T) {
	svc := NewEditorService(storage.NewMemoryStore(), nil, timeline.DefaultGrid())
	if _, err := StartIdleSweeper(svc, "every now and then", time.Minute); err == nil {
		t.Fatal("bad cron schedule accepted")
	}
	s, err := StartIdleSweeper(svc, "@every 1h", 0)
	if err != nil {
		t.Fatal(err)
	}
	if s.maxIdle != DefaultIdleTimeout {
		t.Fatalf("maxIdle = %s, want default", s.maxIdle)
	}
	s.Stop()
}

func TestLiveSessionCannotBeResumed(t *testing.T) {
	ctx := context.Background()
	store, conv, ev := seedStore()
	drafts := newMemoryDrafts()
	svc := NewEditorService(store, drafts, timeline.DefaultGrid())
	defer svc.CloseAll()

	sess, _ := svc.Open(ctx, conv.ID, "")
	svc.Do(ctx, sess.ID, func(ed *timeline.Editor) error {
		return ed.Unschedule(ev.Key())
	})

	if _, err := svc.Open(ctx, conv.ID, sess.ID); !errors.Is(err, ErrSessionLive) {
		t.Fatalf("Open err = %v, want ErrSessionLive", err)
	}
	if svc.Count() != 1 {
		t.Fatalf("count = %d, want 1", svc.Count())
	}
	err := svc.View(sess.ID, func(ed *timeline.Editor) error {
		if !ed.Events.HasUnsavedChanges() {
			t.Fatal("live session lost its changes")
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
}
