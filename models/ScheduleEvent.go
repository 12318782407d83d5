package models

import (
	"strconv"
	"time"

	"gorm.io/datatypes"
)

// ScheduleEvent is a programme item of a convention. It is placed on the
// timeline when both DayOffset and StartTimeMinutes are set; a
// DurationMinutes of 0 marks a milestone rather than a timed block.
type ScheduleEvent struct {
	ID            uint   `json:"id,omitempty" gorm:"primaryKey"`
	TempID        string `json:"tempId,omitempty" gorm:"-"`
	ConventionID  uint   `json:"conventionID" gorm:"not null;index"`
	ScheduleDayID *uint  `json:"scheduleDayId" gorm:"index"`

	Title       string `json:"title" gorm:"not null"`
	EventType   string `json:"eventType" gorm:"size:32"` // panel | workshop | social | dealer | milestone ...
	Description string `json:"description" gorm:"type:text"`

	// Placement
	DurationMinutes  *int `json:"durationMinutes"`
	DayOffset        *int `json:"dayOffset" gorm:"index"`
	StartTimeMinutes *int `json:"startTimeMinutes"`

	// Location
	LocationName string `json:"locationName"`
	IsOffsite    bool   `json:"isOffsite"`
	VenueID      *uint  `json:"venueId"`
	Venue        *Venue `json:"venue,omitempty" gorm:"foreignKey:VenueID"`

	FeeTiers datatypes.JSON `json:"feeTiers" gorm:"type:jsonb"` // []FeeTier

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// FeeTier is one price option attached to an event.
type FeeTier struct {
	Name       string `json:"name" validate:"required,max=100"`
	PriceCents int64  `json:"priceCents" validate:"min=0"`
}

// Key identifies the event inside an editing session: the persistent id
// when there is one, the client temp id otherwise.
func (e ScheduleEvent) Key() string {
	if e.ID != 0 {
		return strconv.FormatUint(uint64(e.ID), 10)
	}
	return e.TempID
}

// IsPlaced reports whether the event sits on the timeline.
func (e ScheduleEvent) IsPlaced() bool {
	return e.DayOffset != nil && e.StartTimeMinutes != nil
}

// IsCleared reports whether every placement field is empty.
func (e ScheduleEvent) IsCleared() bool {
	return e.DayOffset == nil && e.StartTimeMinutes == nil && e.DurationMinutes == nil
}

// IsMilestone reports whether the event is a zero-duration marker.
func (e ScheduleEvent) IsMilestone() bool {
	return e.DurationMinutes != nil && *e.DurationMinutes == 0
}

// Duration returns the duration in minutes, 0 when unset.
func (e ScheduleEvent) Duration() int {
	if e.DurationMinutes == nil {
		return 0
	}
	return *e.DurationMinutes
}

// Start returns the start minute, 0 when unset.
func (e ScheduleEvent) Start() int {
	if e.StartTimeMinutes == nil {
		return 0
	}
	return *e.StartTimeMinutes
}

// Day returns the day offset, 0 when unset.
func (e ScheduleEvent) Day() int {
	if e.DayOffset == nil {
		return 0
	}
	return *e.DayOffset
}

// IntPtr is a small helper for the nullable placement columns.
func IntPtr(v int) *int {
	return &v
}
