package timeline_test

import (
	"context"
	"convention-scheduler-server/models"
	"convention-scheduler-server/storage"
	"convention-scheduler-server/timeline"
	"errors"
	"testing"
)

func loadedOrchestrator(t *testing.T, store *storage.MemoryStore, convID uint) *timeline.Orchestrator {
	t.Helper()
	o := timeline.NewOrchestrator(store, convID)
	if err := o.Load(context.Background()); err != nil {
		t.Fatal(err)
	}
	return o
}

func TestSaveBlockedByUntitledPlacedEvent(t *testing.T) {
	store := storage.NewMemoryStore()
	conv, _ := seedConvention(store, 1, 1)
	good := store.AddEvent(placed(conv.ID, "Opening", 0, 540, 30))
	store.AddEvent(placed(conv.ID, "  ", 0, 600, 30))
	o := loadedOrchestrator(t, store, conv.ID)

	o.AssignExistingEventToSlot(good.Key(), 0, 570, 30, nil)
	_, err := o.SavePlacedEvents(context.Background())
	if !timeline.IsValidation(err) {
		t.Fatalf("err = %v, want a validation error", err)
	}
	var verr *timeline.ValidationError
	errors.As(err, &verr)
	if len(verr.Fields) != 1 || verr.Fields[0].Field != "title" {
		t.Fatalf("fields = %+v", verr.Fields)
	}
	if n := store.CallCount("UpdatePlacement"); n != 0 {
		t.Fatalf("UpdatePlacement called %d times, want 0", n)
	}
	if !o.HasUnsavedChanges() {
		t.Fatal("blocked save dropped the unsaved change")
	}
}

func TestPartialSaveReportsFailures(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	conv, _ := seedConvention(store, 1, 1)
	a := store.AddEvent(placed(conv.ID, "Artist alley", 0, 540, 60))
	b := store.AddEvent(placed(conv.ID, "Masquerade", 0, 600, 60))
	boom := errors.New("connection reset")
	store.FailUpdates[b.ID] = boom
	o := loadedOrchestrator(t, store, conv.ID)

	o.AssignExistingEventToSlot(a.Key(), 0, 660, 60, nil)
	o.AssignExistingEventToSlot(b.Key(), 0, 720, 60, nil)
	report, err := o.SavePlacedEvents(ctx)

	var serr *timeline.SaveError
	if !errors.As(err, &serr) {
		t.Fatalf("err = %v, want *SaveError", err)
	}
	if len(serr.Failed) != 1 || serr.Failed[0].Title != "Masquerade" {
		t.Fatalf("failed = %+v", serr.Failed)
	}
	if !errors.Is(err, boom) {
		t.Fatal("SaveError does not wrap the store error")
	}
	if report.Saved != 1 {
		t.Fatalf("saved = %d, want 1", report.Saved)
	}
	stored, _ := store.StoredEvent(a.ID)
	if *stored.StartTimeMinutes != 660 {
		t.Fatalf("stored start = %d, want 660", *stored.StartTimeMinutes)
	}
	if keys := o.DirtyKeys(); len(keys) != 1 || keys[0] != b.Key() {
		t.Fatalf("dirty keys = %v, want only the failed event", keys)
	}
}

func TestDraftsAreCreatedOnSave(t *testing.T) {
	store := storage.NewMemoryStore()
	conv, days := seedConvention(store, 1, 1)
	o := loadedOrchestrator(t, store, conv.ID)
	o.DayID = func(offset int) *uint {
		if offset == 0 {
			return &days[0].ID
		}
		return nil
	}

	draft, err := o.AddDraft(timeline.EventInput{
		Title:            "Charity raffle",
		DayOffset:        models.IntPtr(0),
		StartTimeMinutes: models.IntPtr(600),
		DurationMinutes:  models.IntPtr(30),
	})
	if err != nil {
		t.Fatal(err)
	}
	if draft.ID != 0 || draft.Key() == "" {
		t.Fatalf("draft = %+v, want a temp key", draft)
	}
	if store.CallCount("CreateScheduleEvent") != 0 {
		t.Fatal("draft persisted before save")
	}

	report, err := o.SavePlacedEvents(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	newKey, ok := report.Created[draft.Key()]
	if !ok {
		t.Fatalf("created = %v, want an entry for %s", report.Created, draft.Key())
	}
	ev, ok := o.Event(newKey)
	if !ok || ev.ID == 0 || ev.Start() != 600 {
		t.Fatalf("saved draft = %+v %v", ev, ok)
	}
	stored, _ := store.StoredEvent(ev.ID)
	if stored.ScheduleDayID == nil || *stored.ScheduleDayID != days[0].ID {
		t.Fatalf("stored day id = %v, want %d", stored.ScheduleDayID, days[0].ID)
	}
	if o.HasUnsavedChanges() {
		t.Fatal("unsaved changes after a clean save")
	}
}

func TestAddDraftValidates(t *testing.T) {
	store := storage.NewMemoryStore()
	conv, _ := seedConvention(store, 1, 1)
	o := loadedOrchestrator(t, store, conv.ID)
	_, err := o.AddDraft(timeline.EventInput{
		Title:           "Half placed",
		DayOffset:       models.IntPtr(0),
		DurationMinutes: models.IntPtr(20),
	})
	var verr *timeline.ValidationError
	if !errors.As(err, &verr) || len(verr.Fields) != 2 {
		t.Fatalf("err = %v, want placement and interval errors", err)
	}
	if len(o.Events()) != 0 {
		t.Fatal("invalid draft was added")
	}
}

func TestUnscheduleClearsEveryPlacementField(t *testing.T) {
	store := storage.NewMemoryStore()
	conv, days := seedConvention(store, 1, 1)
	ev := placed(conv.ID, "Karaoke", 0, 1200, 90)
	ev.ScheduleDayID = &days[0].ID
	ev = store.AddEvent(ev)
	o := loadedOrchestrator(t, store, conv.ID)

	if err := o.UnscheduleEvent(ev.Key()); err != nil {
		t.Fatal(err)
	}
	local, _ := o.Event(ev.Key())
	if !local.IsCleared() || local.ScheduleDayID != nil {
		t.Fatalf("local event = %+v, want cleared", local)
	}
	if _, err := o.SavePlacedEvents(context.Background()); err != nil {
		t.Fatal(err)
	}
	stored, _ := store.StoredEvent(ev.ID)
	if !stored.IsCleared() || stored.ScheduleDayID != nil {
		t.Fatalf("stored event = %+v, want cleared", stored)
	}
	if err := o.UnscheduleEvent("missing"); !errors.Is(err, timeline.ErrEventNotFound) {
		t.Fatalf("err = %v, want ErrEventNotFound", err)
	}
}

func TestSaveSkipsPartialPlacements(t *testing.T) {
	store := storage.NewMemoryStore()
	conv, _ := seedConvention(store, 1, 1)
	store.AddEvent(placed(conv.ID, "Panel", 0, 540, 60))
	store.AddEvent(models.ScheduleEvent{ConventionID: conv.ID, Title: "Unplaced workshop", DurationMinutes: models.IntPtr(45)})
	o := loadedOrchestrator(t, store, conv.ID)

	report, err := o.SavePlacedEvents(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if report.Saved != 1 || store.CallCount("UpdatePlacement") != 1 {
		t.Fatalf("saved %d, update calls %d; want 1 and 1", report.Saved, store.CallCount("UpdatePlacement"))
	}
}

func TestListViewPutsUnplacedFirst(t *testing.T) {
	store := storage.NewMemoryStore()
	conv, _ := seedConvention(store, 1, 1)
	store.AddEvent(placed(conv.ID, "Zine swap", 0, 540, 60))
	store.AddEvent(models.ScheduleEvent{ConventionID: conv.ID, Title: "beta test"})
	store.AddEvent(models.ScheduleEvent{ConventionID: conv.ID, Title: "Alpha meetup"})
	store.AddEvent(placed(conv.ID, "game night", 0, 1200, 120))
	o := loadedOrchestrator(t, store, conv.ID)

	list := o.ListView()
	want := []string{"Alpha meetup", "beta test", "game night", "Zine swap"}
	for i, title := range want {
		if list.Items[i].Title != title {
			t.Fatalf("item %d = %q, want %q", i, list.Items[i].Title, title)
		}
	}
	if list.Divider != 2 {
		t.Fatalf("divider = %d, want 2", list.Divider)
	}
}

func TestUpdateEventWritesThrough(t *testing.T) {
	store := storage.NewMemoryStore()
	conv, _ := seedConvention(store, 1, 1)
	ev := store.AddEvent(placed(conv.ID, "Panel", 0, 540, 60))
	o := loadedOrchestrator(t, store, conv.ID)

	in := timeline.InputFromModel(ev)
	in.Title = "Voice actor panel"
	in.LocationName = "Hall B"
	updated, err := o.UpdateEvent(context.Background(), ev.Key(), in)
	if err != nil {
		t.Fatal(err)
	}
	if updated.Title != "Voice actor panel" {
		t.Fatalf("title = %q", updated.Title)
	}
	stored, _ := store.StoredEvent(ev.ID)
	if stored.LocationName != "Hall B" {
		t.Fatalf("stored location = %q", stored.LocationName)
	}
	if o.HasUnsavedChanges() {
		t.Fatal("a written-through edit left the event dirty")
	}

	if err := o.DeleteEvent(context.Background(), ev.Key()); err != nil {
		t.Fatal(err)
	}
	if _, ok := store.StoredEvent(ev.ID); ok {
		t.Fatal("event still stored after delete")
	}
}

func TestUnplacedDraftsAreCreatedOnSave(t *testing.T) {
	store := storage.NewMemoryStore()
	conv, _ := seedConvention(store, 1, 1)
	o := loadedOrchestrator(t, store, conv.ID)

	draft, err := o.AddDraft(timeline.EventInput{
		Title:           "Raffle",
		DurationMinutes: models.IntPtr(60),
	})
	if err != nil {
		t.Fatal(err)
	}
	report, err := o.SavePlacedEvents(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if report.Saved != 1 || store.CallCount("CreateScheduleEvent") != 1 {
		t.Fatalf("saved %d, create calls %d; want 1 and 1", report.Saved, store.CallCount("CreateScheduleEvent"))
	}
	newKey, ok := report.Created[draft.Key()]
	if !ok {
		t.Fatalf("created = %v, want an entry for %s", report.Created, draft.Key())
	}
	ev, _ := o.Event(newKey)
	if ev.ID == 0 || ev.IsPlaced() || ev.Duration() != 60 {
		t.Fatalf("saved draft = %+v", ev)
	}
	if o.HasUnsavedChanges() {
		t.Fatalf("dirty keys = %v after a clean save", o.DirtyKeys())
	}
}
