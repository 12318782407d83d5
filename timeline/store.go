package timeline

import (
	"context"
	"convention-scheduler-server/models"
)

// PlacementUpdate is the placement-only patch sent by the batched save.
// Nil fields are written as NULL.
type PlacementUpdate struct {
	Title            string `json:"title"`
	DayOffset        *int   `json:"dayOffset"`
	StartTimeMinutes *int   `json:"startTimeMinutes"`
	DurationMinutes  *int   `json:"durationMinutes"`
	ScheduleDayID    *uint  `json:"scheduleDayId,omitempty"`
}

// ItemError reports one rejected element of a bulk create.
type ItemError struct {
	ItemIndex int    `json:"itemIndex"`
	Message   string `json:"message"`
}

// Store is the persistence boundary of the schedule editor.
type Store interface {
	GetConvention(ctx context.Context, conventionID uint) (*models.Convention, error)

	ListScheduleDays(ctx context.Context, conventionID uint) ([]models.ScheduleDay, error)
	CreateScheduleDay(ctx context.Context, conventionID uint, dayOffset int, official bool) (*models.ScheduleDay, error)
	CreateScheduleDays(ctx context.Context, conventionID uint, offsets []int, official bool) ([]models.ScheduleDay, error)
	// DeleteScheduleDay unschedules every event placed on the day, then
	// removes the day. Official days are rejected with ErrOfficialDay.
	DeleteScheduleDay(ctx context.Context, conventionID, dayID uint) error

	ListScheduleEvents(ctx context.Context, conventionID uint) ([]models.ScheduleEvent, error)
	GetScheduleEvent(ctx context.Context, eventID uint) (*models.ScheduleEvent, error)
	CreateScheduleEvent(ctx context.Context, conventionID uint, scheduleDayID *uint, ev models.ScheduleEvent) (*models.ScheduleEvent, error)
	UpdateScheduleEvent(ctx context.Context, ev models.ScheduleEvent) (*models.ScheduleEvent, error)
	UpdatePlacement(ctx context.Context, eventID uint, p PlacementUpdate) error
	DeleteScheduleEvent(ctx context.Context, eventID uint) error
	BulkCreateScheduleEvents(ctx context.Context, conventionID uint, items []models.ScheduleEvent) (int, []ItemError, error)
}
