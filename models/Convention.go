package models

import "time"

// Convention is the event being organized. Its date span decides how many
// official schedule days are generated when timelines are initialized.
type Convention struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	OrganizerID uint      `json:"organizerID" gorm:"not null;index"`
	Name        string    `json:"name" gorm:"not null"`
	StartDate   time.Time `json:"startDate" gorm:"type:date"`
	EndDate     time.Time `json:"endDate" gorm:"type:date"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// SpanDays returns the number of calendar days covered by the convention,
// at least 1.
func (c Convention) SpanDays() int {
	start := time.Date(c.StartDate.Year(), c.StartDate.Month(), c.StartDate.Day(), 0, 0, 0, 0, time.UTC)
	end := time.Date(c.EndDate.Year(), c.EndDate.Month(), c.EndDate.Day(), 0, 0, 0, 0, time.UTC)
	days := int(end.Sub(start).Hours()/24) + 1
	if days < 1 {
		return 1
	}
	return days
}

// DayDate returns the calendar date for a schedule day offset.
func (c Convention) DayDate(dayOffset int) time.Time {
	return c.StartDate.AddDate(0, 0, dayOffset)
}
