package timeline

import (
	"convention-scheduler-server/models"
	"testing"
)

func TestDropSlotSnapsPerKind(t *testing.T) {
	g := DefaultGrid()
	cases := []struct {
		name     string
		y        float64
		duration int
		want     int
	}{
		{"milestone floors to hovered cell", 50, 0, 480 + 2*15},
		{"timed event goes to next boundary", 50, 30, 480 + 3*15},
		{"exact boundary stays", 40, 30, 480 + 2*15},
		{"top of window", 0, 60, 480},
		{"timed event clamped to end by midnight", 10000, 120, 1320},
		{"milestone clamped before midnight", 10000, 0, 1425},
	}
	for _, c := range cases {
		if got := g.DropSlot(c.y, 8, c.duration); got != c.want {
			t.Errorf("%s: DropSlot = %d, want %d", c.name, got, c.want)
		}
	}
}

func TestDropAlwaysPlaces(t *testing.T) {
	g := DefaultGrid()
	p := g.Drop(DropPayload{Key: "tmp-1", Title: "Cosplay contest", Duration: models.IntPtr(50)}, 2, 0, 10)
	if p.Key != "tmp-1" || p.DayOffset != 2 || p.Start != 600 || p.Duration != 45 {
		t.Fatalf("placement = %+v", p)
	}
	if p.Title == nil || *p.Title != "Cosplay contest" {
		t.Fatalf("title = %v", p.Title)
	}
	if p := g.Drop(DropPayload{Key: "7"}, 0, 0, 10); p.Title != nil || p.Duration != 0 {
		t.Fatalf("untitled milestone drop = %+v", p)
	}
}

func TestDragOverPlaceholder(t *testing.T) {
	g := DefaultGrid()
	ph := g.DragOver(DropPayload{Key: "3", Duration: models.IntPtr(60)}, 25, 9)
	if ph.Start != 570 || ph.Label != "9:30 AM" || ph.Top != 40 || ph.Height != 80 {
		t.Fatalf("placeholder = %+v", ph)
	}
}

func TestNormalizeDuration(t *testing.T) {
	cases := map[int]int{-5: 0, 0: 0, 1: 15, 7: 15, 50: 45, 3000: 1440}
	for in, want := range cases {
		if got := NormalizeDuration(in); got != want {
			t.Errorf("NormalizeDuration(%d) = %d, want %d", in, got, want)
		}
	}
}

func TestExplicitZeroDurationDropsAMilestone(t *testing.T) {
	g := DefaultGrid()
	p := g.Drop(DropPayload{Key: "9", Duration: models.IntPtr(0)}, 0, 50, 8)
	if p.Duration != 0 || p.Start != 510 {
		t.Fatalf("placement = %+v, want a milestone at 510", p)
	}
}
