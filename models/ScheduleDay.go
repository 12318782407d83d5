package models

import "time"

// ScheduleDay is one calendar day of a convention's timeline, identified by
// its offset from the convention start date. Official days come from the
// initial generation and cannot be deleted.
type ScheduleDay struct {
	ID           uint `json:"id" gorm:"primaryKey"`
	ConventionID uint `json:"conventionID" gorm:"not null;uniqueIndex:idx_conv_day_offset"`
	DayOffset    int  `json:"dayOffset" gorm:"not null;uniqueIndex:idx_conv_day_offset"`
	IsOfficial   bool `json:"isOfficial" gorm:"not null;default:false"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
