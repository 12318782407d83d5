package storage

import (
	"context"
	"convention-scheduler-server/models"
	"convention-scheduler-server/timeline"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ScheduleRepository is the Postgres-backed schedule store.
type ScheduleRepository struct {
	db *gorm.DB
}

func NewScheduleRepository(db *gorm.DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

var _ timeline.Store = (*ScheduleRepository)(nil)

func notFound(err error, sentinel error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sentinel
	}
	return err
}

func (r *ScheduleRepository) GetConvention(ctx context.Context, conventionID uint) (*models.Convention, error) {
	var conv models.Convention
	if err := r.db.WithContext(ctx).First(&conv, conventionID).Error; err != nil {
		return nil, notFound(err, timeline.ErrConventionNotFound)
	}
	return &conv, nil
}

func (r *ScheduleRepository) ListScheduleDays(ctx context.Context, conventionID uint) ([]models.ScheduleDay, error) {
	var days []models.ScheduleDay
	err := r.db.WithContext(ctx).
		Where("convention_id = ?", conventionID).
		Order("day_offset ASC").
		Find(&days).Error
	return days, err
}

func (r *ScheduleRepository) CreateScheduleDay(ctx context.Context, conventionID uint, dayOffset int, official bool) (*models.ScheduleDay, error) {
	day := models.ScheduleDay{ConventionID: conventionID, DayOffset: dayOffset, IsOfficial: official}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.ScheduleDay{}).
			Where("convention_id = ? AND day_offset = ?", conventionID, dayOffset).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return timeline.ErrDayExists
		}
		return tx.Create(&day).Error
	})
	if err != nil {
		return nil, err
	}
	return &day, nil
}

func (r *ScheduleRepository) CreateScheduleDays(ctx context.Context, conventionID uint, offsets []int, official bool) ([]models.ScheduleDay, error) {
	days := make([]models.ScheduleDay, 0, len(offsets))
	for _, o := range offsets {
		days = append(days, models.ScheduleDay{ConventionID: conventionID, DayOffset: o, IsOfficial: official})
	}
	if len(days) == 0 {
		return days, nil
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&days).Error
	return days, err
}

// DeleteScheduleDay unschedules the day's events and deletes the day in one
// transaction, holding a row lock on the day.
func (r *ScheduleRepository) DeleteScheduleDay(ctx context.Context, conventionID, dayID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var day models.ScheduleDay
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ? AND convention_id = ?", dayID, conventionID).
			First(&day).Error; err != nil {
			return notFound(err, timeline.ErrDayNotFound)
		}
		if day.IsOfficial {
			return timeline.ErrOfficialDay
		}
		if err := tx.Model(&models.ScheduleEvent{}).
			Where("convention_id = ? AND (schedule_day_id = ? OR day_offset = ?)", conventionID, day.ID, day.DayOffset).
			Updates(map[string]interface{}{
				"schedule_day_id":    nil,
				"day_offset":         nil,
				"start_time_minutes": nil,
				"duration_minutes":   nil,
			}).Error; err != nil {
			return fmt.Errorf("unschedule events of day %d: %w", day.DayOffset, err)
		}
		return tx.Delete(&day).Error
	})
}

func (r *ScheduleRepository) ListScheduleEvents(ctx context.Context, conventionID uint) ([]models.ScheduleEvent, error) {
	var events []models.ScheduleEvent
	err := r.db.WithContext(ctx).
		Preload("Venue").
		Where("convention_id = ?", conventionID).
		Order("id ASC").
		Find(&events).Error
	return events, err
}

func (r *ScheduleRepository) GetScheduleEvent(ctx context.Context, eventID uint) (*models.ScheduleEvent, error) {
	var ev models.ScheduleEvent
	if err := r.db.WithContext(ctx).Preload("Venue").First(&ev, eventID).Error; err != nil {
		return nil, notFound(err, timeline.ErrEventNotFound)
	}
	return &ev, nil
}

func (r *ScheduleRepository) CreateScheduleEvent(ctx context.Context, conventionID uint, scheduleDayID *uint, ev models.ScheduleEvent) (*models.ScheduleEvent, error) {
	ev.ID = 0
	ev.TempID = ""
	ev.Venue = nil
	ev.ConventionID = conventionID
	ev.ScheduleDayID = scheduleDayID
	if scheduleDayID != nil && ev.DayOffset == nil {
		var day models.ScheduleDay
		if err := r.db.WithContext(ctx).First(&day, *scheduleDayID).Error; err != nil {
			return nil, notFound(err, timeline.ErrDayNotFound)
		}
		ev.DayOffset = models.IntPtr(day.DayOffset)
	}
	if err := r.db.WithContext(ctx).Create(&ev).Error; err != nil {
		return nil, err
	}
	return &ev, nil
}

func (r *ScheduleRepository) UpdateScheduleEvent(ctx context.Context, ev models.ScheduleEvent) (*models.ScheduleEvent, error) {
	var existing models.ScheduleEvent
	if err := r.db.WithContext(ctx).First(&existing, ev.ID).Error; err != nil {
		return nil, notFound(err, timeline.ErrEventNotFound)
	}
	ev.ConventionID = existing.ConventionID
	ev.CreatedAt = existing.CreatedAt
	if err := r.db.WithContext(ctx).Select("*").Omit("created_at", clause.Associations).Save(&ev).Error; err != nil {
		return nil, err
	}
	return &ev, nil
}

func (r *ScheduleRepository) UpdatePlacement(ctx context.Context, eventID uint, p timeline.PlacementUpdate) error {
	res := r.db.WithContext(ctx).Model(&models.ScheduleEvent{}).
		Where("id = ?", eventID).
		Updates(map[string]interface{}{
			"title":              p.Title,
			"day_offset":         p.DayOffset,
			"start_time_minutes": p.StartTimeMinutes,
			"duration_minutes":   p.DurationMinutes,
			"schedule_day_id":    p.ScheduleDayID,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return timeline.ErrEventNotFound
	}
	return nil
}

func (r *ScheduleRepository) DeleteScheduleEvent(ctx context.Context, eventID uint) error {
	res := r.db.WithContext(ctx).Delete(&models.ScheduleEvent{}, eventID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return timeline.ErrEventNotFound
	}
	return nil
}

// BulkCreateScheduleEvents validates every item and creates the valid ones
// in a single transaction.
func (r *ScheduleRepository) BulkCreateScheduleEvents(ctx context.Context, conventionID uint, items []models.ScheduleEvent) (int, []timeline.ItemError, error) {
	valid, itemErrs := timeline.ValidateBulk(items)
	if len(valid) == 0 {
		return 0, itemErrs, nil
	}
	for i := range valid {
		valid[i].ID = 0
		valid[i].ConventionID = conventionID
	}
	if err := r.db.WithContext(ctx).CreateInBatches(&valid, 100).Error; err != nil {
		return 0, itemErrs, err
	}
	return len(valid), itemErrs, nil
}
