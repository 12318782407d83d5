package timeline

import (
	"convention-scheduler-server/models"
	"strings"

	"golang.org/x/exp/slices"
)

// Slot is the part of an event the layout engine looks at.
type Slot struct {
	Key      string
	Start    int
	Duration int
}

// Column is the horizontal position of an event among the events it
// conflicts with.
type Column struct {
	Col     int `json:"col"`
	NumCols int `json:"numCols"`
}

// SlotOf extracts the layout input of a placed event.
func SlotOf(ev models.ScheduleEvent) Slot {
	return Slot{Key: ev.Key(), Start: ev.Start(), Duration: ev.Duration()}
}

// Overlaps reports whether two slots run concurrently. Timed intervals are
// half-open, so back-to-back events do not overlap. A milestone overlaps a
// timed event whose interval contains its instant, and another milestone at
// the same minute.
func Overlaps(a, b Slot) bool {
	switch {
	case a.Duration <= 0 && b.Duration <= 0:
		return a.Start == b.Start
	case a.Duration <= 0:
		return b.Start <= a.Start && a.Start < b.Start+b.Duration
	case b.Duration <= 0:
		return a.Start <= b.Start && b.Start < a.Start+a.Duration
	}
	return max(a.Start, b.Start) < min(a.Start+a.Duration, b.Start+b.Duration)
}

// Layout assigns every slot a column. Each event's group is the event itself
// plus every event it overlaps directly; the column count is the size of that
// group and the column is the event's position in the group sorted by key.
// Groups are not merged transitively, so events chained A-B-C may see
// different column counts.
func Layout(slots []Slot) map[string]Column {
	out := make(map[string]Column, len(slots))
	for i, anchor := range slots {
		group := []string{anchor.Key}
		for j, other := range slots {
			if i != j && Overlaps(anchor, other) {
				group = append(group, other.Key)
			}
		}
		slices.SortFunc(group, strings.Compare)
		out[anchor.Key] = Column{
			Col:     slices.Index(group, anchor.Key),
			NumCols: len(group),
		}
	}
	return out
}

// PlacedCard is a placed event with its computed rectangle.
type PlacedCard struct {
	Key         string `json:"key"`
	Title       string `json:"title"`
	EventType   string `json:"eventType"`
	Start       int    `json:"startTimeMinutes"`
	Duration    int    `json:"durationMinutes"`
	Label       string `json:"label"`
	IsMilestone bool   `json:"isMilestone"`
	Column      Column `json:"column"`
	Rect        Rect   `json:"rect"`
	Visible     bool   `json:"visible"`
}

// LayoutDay lays out the placed events of one day in a window starting at
// viewStartHour and totalWidth pixels wide. Cards are ordered by start time
// then key.
func (g Grid) LayoutDay(events []models.ScheduleEvent, viewStartHour int, totalWidth float64) []PlacedCard {
	slots := make([]Slot, 0, len(events))
	byKey := make(map[string]models.ScheduleEvent, len(events))
	for _, ev := range events {
		if !ev.IsPlaced() {
			continue
		}
		s := SlotOf(ev)
		slots = append(slots, s)
		byKey[s.Key] = ev
	}
	slices.SortFunc(slots, func(a, b Slot) int {
		if a.Start != b.Start {
			return a.Start - b.Start
		}
		return strings.Compare(a.Key, b.Key)
	})

	cols := Layout(slots)
	viewStart := viewStartHour * 60
	viewEnd := viewStart + g.WindowHours*60

	cards := make([]PlacedCard, 0, len(slots))
	for _, s := range slots {
		ev := byKey[s.Key]
		end := s.Start + s.Duration
		if s.Duration <= 0 {
			end = s.Start + IntervalMinutes
		}
		cards = append(cards, PlacedCard{
			Key:         s.Key,
			Title:       ev.Title,
			EventType:   ev.EventType,
			Start:       s.Start,
			Duration:    s.Duration,
			Label:       MinutesToLabel(s.Start),
			IsMilestone: s.Duration <= 0,
			Column:      cols[s.Key],
			Rect:        g.CardRect(s.Start, s.Duration, viewStart, cols[s.Key], totalWidth),
			Visible:     s.Start < viewEnd && end > viewStart,
		})
	}
	return cards
}
