package timeline_test

import (
	"context"
	"convention-scheduler-server/models"
	"convention-scheduler-server/storage"
	"convention-scheduler-server/timeline"
	"errors"
	"testing"
	"time"
)

// seedConvention stores a convention spanning spanDays days with official
// days at offsets 0..official-1.
func seedConvention(store *storage.MemoryStore, spanDays, official int) (models.Convention, []models.ScheduleDay) {
	start := time.Date(2026, 7, 3, 0, 0, 0, 0, time.UTC)
	conv := store.AddConvention(models.Convention{
		OrganizerID: 7,
		Name:        "Harbor Con",
		StartDate:   start,
		EndDate:     start.AddDate(0, 0, spanDays-1),
	})
	var days []models.ScheduleDay
	for i := 0; i < official; i++ {
		days = append(days, store.AddDay(models.ScheduleDay{ConventionID: conv.ID, DayOffset: i, IsOfficial: true}))
	}
	return conv, days
}

func placed(convID uint, title string, day, start, duration int) models.ScheduleEvent {
	return models.ScheduleEvent{
		ConventionID:     convID,
		Title:            title,
		DayOffset:        models.IntPtr(day),
		StartTimeMinutes: models.IntPtr(start),
		DurationMinutes:  models.IntPtr(duration),
	}
}

func TestAddDayExtendsTheRange(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	conv, _ := seedConvention(store, 3, 3)
	reg := timeline.NewRegistry(store, conv.ID)
	if err := reg.Refresh(ctx); err != nil {
		t.Fatal(err)
	}

	if o, err := reg.NextOffset(timeline.Before); err != nil || o != -1 {
		t.Fatalf("NextOffset(before) = %d %v, want -1", o, err)
	}
	offset, err := reg.AddDay(ctx, timeline.After)
	if err != nil || offset != 3 {
		t.Fatalf("AddDay(after) = %d %v, want 3", offset, err)
	}
	if cur, _ := reg.Current(); cur != 3 {
		t.Fatalf("current = %d, want the new day", cur)
	}
	day, ok := reg.Day(3)
	if !ok || day.IsOfficial {
		t.Fatalf("day 3 = %+v %v, want a non-official day", day, ok)
	}

	if offset, _ := reg.AddDay(ctx, timeline.Before); offset != -1 {
		t.Fatalf("AddDay(before) = %d, want -1", offset)
	}
	want := []int{-1, 0, 1, 2, 3}
	got := reg.Offsets()
	if len(got) != len(want) {
		t.Fatalf("offsets = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("offsets = %v, want %v", got, want)
		}
	}
}

func TestAddDayWithoutDays(t *testing.T) {
	store := storage.NewMemoryStore()
	conv, _ := seedConvention(store, 2, 0)
	reg := timeline.NewRegistry(store, conv.ID)
	reg.Refresh(context.Background())

	if _, err := reg.AddDay(context.Background(), timeline.After); !errors.Is(err, timeline.ErrNoDays) {
		t.Fatalf("AddDay err = %v, want ErrNoDays", err)
	}
	if store.CallCount("CreateScheduleDay") != 0 {
		t.Fatal("store called without an anchor day")
	}
	if _, ok := reg.Current(); ok {
		t.Fatal("empty registry has a current day")
	}
}

func TestOfficialDaysCannotBeDeleted(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	conv, days := seedConvention(store, 2, 2)
	reg := timeline.NewRegistry(store, conv.ID)
	reg.Refresh(ctx)

	if _, err := reg.DeleteDay(ctx, days[1].ID); !errors.Is(err, timeline.ErrOfficialDay) {
		t.Fatalf("DeleteDay err = %v, want ErrOfficialDay", err)
	}
	if store.CallCount("DeleteScheduleDay") != 0 {
		t.Fatal("official day delete reached the store")
	}
	if _, err := reg.DeleteDay(ctx, 9999); !errors.Is(err, timeline.ErrDayNotFound) {
		t.Fatalf("DeleteDay(unknown) err = %v, want ErrDayNotFound", err)
	}
}

func TestInitializeOnlyOnce(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	conv, _ := seedConvention(store, 3, 0)
	reg := timeline.NewRegistry(store, conv.ID)
	reg.Refresh(ctx)

	if err := reg.Initialize(ctx, conv.SpanDays()); err != nil {
		t.Fatal(err)
	}
	days := reg.Days()
	if len(days) != 3 {
		t.Fatalf("got %d days, want 3", len(days))
	}
	for i, d := range days {
		if d.DayOffset != i || !d.IsOfficial {
			t.Fatalf("day %d = %+v", i, d)
		}
	}
	if cur, ok := reg.Current(); !ok || cur != 0 {
		t.Fatalf("current = %d %v, want 0", cur, ok)
	}
	if err := reg.Initialize(ctx, 3); !errors.Is(err, timeline.ErrNotEmpty) {
		t.Fatalf("second Initialize err = %v, want ErrNotEmpty", err)
	}
}

func TestNavigateStopsAtTheEnds(t *testing.T) {
	store := storage.NewMemoryStore()
	conv, _ := seedConvention(store, 2, 2)
	reg := timeline.NewRegistry(store, conv.ID)
	reg.Refresh(context.Background())

	if reg.Navigate(timeline.Backward) {
		t.Fatal("navigated before the first day")
	}
	if !reg.Navigate(timeline.Forward) {
		t.Fatal("could not navigate to day 1")
	}
	if reg.Navigate(timeline.Forward) {
		t.Fatal("navigation wrapped around")
	}
	if cur, _ := reg.Current(); cur != 1 {
		t.Fatalf("current = %d, want 1", cur)
	}
	if reg.GoTo(5) {
		t.Fatal("GoTo accepted a missing day")
	}
}

func TestPanesOfferNewDaysAtTheEdges(t *testing.T) {
	store := storage.NewMemoryStore()
	conv, _ := seedConvention(store, 3, 3)
	reg := timeline.NewRegistry(store, conv.ID)
	reg.Refresh(context.Background())

	prev, next := reg.Panes(true, 0.35)
	if prev.Kind != timeline.PaneAddDay || prev.Position != timeline.Before {
		t.Fatalf("prev pane = %+v, want add-day", prev)
	}
	if next.Kind != timeline.PanePreview || *next.DayOffset != 1 || next.ClipFraction != 0.35 {
		t.Fatalf("next pane = %+v, want preview of day 1", next)
	}

	reg.GoTo(1)
	prev, next = reg.Panes(true, 0.35)
	if prev.Kind != timeline.PanePreview || next.Kind != timeline.PanePreview {
		t.Fatalf("middle day panes = %s/%s, want previews", prev.Kind, next.Kind)
	}

	reg.GoTo(2)
	if _, next = reg.Panes(true, 0.35); next.Kind != timeline.PaneAddDay {
		t.Fatalf("next pane on last day = %s, want add-day", next.Kind)
	}
	if _, next = reg.Panes(false, 0.35); next.Kind != timeline.PaneEmpty {
		t.Fatalf("single-day convention pane = %s, want empty", next.Kind)
	}
}
