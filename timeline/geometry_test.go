package timeline

import "testing"

func TestSnapIsIdempotent(t *testing.T) {
	for m := -3000; m <= 3000; m++ {
		once := Snap(m)
		if twice := Snap(once); twice != once {
			t.Fatalf("Snap(Snap(%d)) = %d, want %d", m, twice, once)
		}
		if once%IntervalMinutes != 0 {
			t.Fatalf("Snap(%d) = %d is not on the grid", m, once)
		}
	}
}

func TestSnapRoundsHalvesAwayFromZero(t *testing.T) {
	cases := map[int]int{0: 0, 7: 0, 8: 15, 22: 15, 23: 30, -7: 0, -8: -15, 545: 540, 553: 555}
	for in, want := range cases {
		if got := Snap(in); got != want {
			t.Errorf("Snap(%d) = %d, want %d", in, got, want)
		}
	}
}

func TestMinutesToLabel(t *testing.T) {
	cases := []struct {
		minutes int
		want    string
	}{
		{0, "12:00 AM"},
		{5, "12:05 AM"},
		{570, "9:30 AM"},
		{720, "12:00 PM"},
		{780, "1:00 PM"},
		{1439, "11:59 PM"},
		{-20, "12:00 AM"},
		{5000, "11:59 PM"},
	}
	for _, c := range cases {
		if got := MinutesToLabel(c.minutes); got != c.want {
			t.Errorf("MinutesToLabel(%d) = %q, want %q", c.minutes, got, c.want)
		}
	}
}

func TestVerticalGeometry(t *testing.T) {
	g := DefaultGrid()
	if got := g.Top(570, 540); got != 40 {
		t.Fatalf("Top = %v, want 40", got)
	}
	if got := g.Top(480, 540); got != -80 {
		t.Fatalf("Top above window = %v, want -80", got)
	}
	if got := g.Height(45); got != 60 {
		t.Fatalf("Height(45) = %v, want 60", got)
	}
	if got := g.Height(0); got != g.RowHeight {
		t.Fatalf("milestone height = %v, want one row", got)
	}
	if got := g.WindowHeight(); got != 400 {
		t.Fatalf("WindowHeight = %v, want 400", got)
	}
	if got := g.PixelsToMinutes(29); got != 15 {
		t.Fatalf("PixelsToMinutes(29) = %d, want 15", got)
	}
	if got := g.PixelsToMinutes(-40); got != -30 {
		t.Fatalf("PixelsToMinutes(-40) = %d, want -30", got)
	}
}

func TestColumnsSplitWidthAfterGutter(t *testing.T) {
	g := DefaultGrid()
	left, width := g.Column(0, 1, 456)
	if left != g.Gutter || width != 400 {
		t.Fatalf("single column = (%v, %v), want (%v, 400)", left, width, g.Gutter)
	}
	l0, w0 := g.Column(0, 2, 456)
	l1, w1 := g.Column(1, 2, 456)
	if w0 != 198 || w1 != 198 {
		t.Fatalf("column widths = %v, %v, want 198", w0, w1)
	}
	if l1-(l0+w0) != g.ColumnGap {
		t.Fatalf("gap between columns = %v, want %v", l1-(l0+w0), g.ColumnGap)
	}
	if _, w := g.Column(0, 3, 10); w != 0 {
		t.Fatalf("narrow grid width = %v, want 0", w)
	}
}

func TestClampStartKeepsEventsInsideTheDay(t *testing.T) {
	cases := []struct{ start, duration, want int }{
		{-30, 60, 0},
		{1425, 60, 1380},
		{1440, 0, 1425},
		{600, 30, 600},
	}
	for _, c := range cases {
		if got := clampStart(c.start, c.duration); got != c.want {
			t.Errorf("clampStart(%d, %d) = %d, want %d", c.start, c.duration, got, c.want)
		}
	}
}

func TestSlotLabelsCoverTheWindow(t *testing.T) {
	g := DefaultGrid()
	labels := g.SlotLabels(8)
	if len(labels) != 20 {
		t.Fatalf("got %d labels, want 20", len(labels))
	}
	if labels[0] != "8:00 AM" || labels[19] != "12:45 PM" {
		t.Fatalf("labels run %q..%q", labels[0], labels[19])
	}
}

func TestNormalizeFillsDefaults(t *testing.T) {
	g := Grid{WindowHours: 30, DefaultHour: 22}
	g.Normalize()
	def := DefaultGrid()
	if g.RowHeight != def.RowHeight || g.WindowHours != def.WindowHours || g.EdgeBand != def.EdgeBand {
		t.Fatalf("normalized grid = %+v", g)
	}
	if g.DefaultHour != def.DefaultHour {
		t.Fatalf("DefaultHour = %d, want %d", g.DefaultHour, def.DefaultHour)
	}
	if g.MaxStartHour() != 19 {
		t.Fatalf("MaxStartHour = %d, want 19", g.MaxStartHour())
	}
}
