package services

import (
	"convention-scheduler-server/models"
	"fmt"
	"time"

	ical "github.com/arran4/golang-ical"
)

// ScheduleCalendar renders the placed events of a convention as an
// iCalendar feed. Days are anchored on the convention start date in loc.
// Milestones become zero-length events.
func ScheduleCalendar(conv models.Convention, events []models.ScheduleEvent, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId("-//convention-scheduler-server//schedule//EN")
	cal.SetXWRCalName(conv.Name)

	start := time.Date(conv.StartDate.Year(), conv.StartDate.Month(), conv.StartDate.Day(), 0, 0, 0, 0, loc)
	stamp := time.Now().UTC()

	for _, ev := range events {
		if !ev.IsPlaced() {
			continue
		}
		begin := start.AddDate(0, 0, ev.Day()).Add(time.Duration(ev.Start()) * time.Minute)
		end := begin.Add(time.Duration(ev.Duration()) * time.Minute)

		vev := cal.AddEvent(fmt.Sprintf("schedule-event-%d@convention-%d", ev.ID, conv.ID))
		vev.SetDtStampTime(stamp)
		vev.SetStartAt(begin)
		vev.SetEndAt(end)
		vev.SetSummary(ev.Title)
		if ev.Description != "" {
			vev.SetDescription(ev.Description)
		}
		if loc := eventLocation(ev); loc != "" {
			vev.SetLocation(loc)
		}
	}
	return cal.Serialize()
}

func eventLocation(ev models.ScheduleEvent) string {
	if ev.IsOffsite && ev.Venue != nil {
		if ev.Venue.Address != "" {
			return ev.Venue.Name + ", " + ev.Venue.Address
		}
		return ev.Venue.Name
	}
	return ev.LocationName
}
