package timeline

import (
	"testing"
	"time"
)

func TestFirstVisitOpensAtEarliestEvent(t *testing.T) {
	v := NewViewState(DefaultGrid())
	if h := v.Visit(0, []int{600, 545, 900}); h != 9 {
		t.Fatalf("Visit = %d, want 9", h)
	}
	// Later visits keep the remembered position.
	if h := v.Visit(0, []int{60}); h != 9 {
		t.Fatalf("second Visit = %d, want 9", h)
	}
	if h := v.Visit(1, nil); h != 8 {
		t.Fatalf("empty day = %d, want 8", h)
	}
	if h := v.Visit(2, []int{1400}); h != 19 {
		t.Fatalf("late event = %d, want clamped to 19", h)
	}
}

func TestPeekDoesNotRecordAVisit(t *testing.T) {
	v := NewViewState(DefaultGrid())
	if h := v.Peek(3, []int{720}); h != 12 {
		t.Fatalf("Peek = %d, want 12", h)
	}
	if h := v.StartHour(3); h != 8 {
		t.Fatalf("StartHour after Peek = %d, want default 8", h)
	}
}

func TestScrollStaysWithinTheDay(t *testing.T) {
	v := NewViewState(DefaultGrid())
	v.Visit(0, []int{60})
	if h, moved := v.Scroll(0, -1); h != 0 || !moved {
		t.Fatalf("Scroll up = %d %v, want 0 true", h, moved)
	}
	if h, moved := v.Scroll(0, -1); h != 0 || moved {
		t.Fatalf("Scroll past top = %d %v, want 0 false", h, moved)
	}
	if h, _ := v.Scroll(0, 40); h != 19 {
		t.Fatalf("Scroll past bottom = %d, want 19", h)
	}
	v.Forget(0)
	if h := v.StartHour(0); h != 8 {
		t.Fatalf("StartHour after Forget = %d, want 8", h)
	}
}

func TestHoldScrollsUntilTheEdge(t *testing.T) {
	v := NewViewState(DefaultGrid())
	v.Visit(0, []int{16 * 60})
	s := NewScroller(v, time.Millisecond)
	defer s.Close()

	if h := s.Hold(0, Forward); h != 17 {
		t.Fatalf("Hold = %d, want 17 immediately", h)
	}
	deadline := time.Now().Add(2 * time.Second)
	for s.Holding() && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if s.Holding() {
		t.Fatal("hold did not stop at the edge of the day")
	}
	if h := v.StartHour(0); h != 19 {
		t.Fatalf("StartHour = %d, want 19", h)
	}
}

func TestReleaseStopsTheTimer(t *testing.T) {
	v := NewViewState(DefaultGrid())
	s := NewScroller(v, time.Hour)
	s.Hold(0, Backward)
	if !s.Holding() {
		t.Fatal("expected a running hold")
	}
	s.Release()
	if s.Holding() {
		t.Fatal("hold still running after Release")
	}
	if h := v.StartHour(0); h != 7 {
		t.Fatalf("StartHour = %d, want 7", h)
	}
	// Release without a hold is a no-op.
	s.Release()
}

func TestHoldAtEdgeDoesNotStartATimer(t *testing.T) {
	v := NewViewState(DefaultGrid())
	v.Scroll(0, -24)
	s := NewScroller(v, time.Millisecond)
	if h := s.Hold(0, Backward); h != 0 {
		t.Fatalf("Hold = %d, want 0", h)
	}
	if s.Holding() {
		t.Fatal("hold started at the edge")
	}
}

func TestPointerBusUnsubscribeIsIdempotent(t *testing.T) {
	bus := NewPointerBus()
	var moves int
	unsub := bus.Subscribe(func(float64) { moves++ }, nil)
	bus.Move(1)
	unsub()
	unsub()
	bus.Move(2)
	bus.Up(2)
	if moves != 1 || bus.Listeners() != 0 {
		t.Fatalf("moves = %d listeners = %d", moves, bus.Listeners())
	}
}
