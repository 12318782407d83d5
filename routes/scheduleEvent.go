package routes

import (
	"convention-scheduler-server/models"
	"convention-scheduler-server/timeline"
	"convention-scheduler-server/utils"
	"fmt"
	"log"

	"github.com/kataras/iris/v12"
)

type createScheduleEventInput struct {
	ScheduleDayID *uint               `json:"scheduleDayId"`
	Data          timeline.EventInput `json:"data" validate:"-"` // checked once the day is resolved
}

type bulkScheduleEventsInput struct {
	Items []timeline.EventInput `json:"items" validate:"required,min=1,max=500"`
}

type placementInput struct {
	Title            *string `json:"title" validate:"omitempty,max=200"`
	DayOffset        *int    `json:"dayOffset"`
	StartTimeMinutes *int    `json:"startTimeMinutes" validate:"omitempty,interval,max=1425"`
	DurationMinutes  *int    `json:"durationMinutes" validate:"omitempty,interval,max=1440"`
}

func ListScheduleEvents(ctx iris.Context) {
	conv, ok := conventionFromParams(ctx)
	if !ok {
		return
	}
	events, err := Schedule.ListScheduleEvents(ctx.Request().Context(), conv.ID)
	if err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	if events == nil {
		events = []models.ScheduleEvent{}
	}
	utils.JSONList(ctx, "items", events, len(events))
}

// CreateScheduleEvent creates an event, placing it directly on a day slot
// when scheduleDayId and a start time are given.
func CreateScheduleEvent(ctx iris.Context) {
	conv, ok := conventionFromParams(ctx)
	if !ok {
		return
	}
	var input createScheduleEventInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	reqCtx := ctx.Request().Context()
	if input.ScheduleDayID != nil {
		days, err := Schedule.ListScheduleDays(reqCtx, conv.ID)
		if err != nil {
			utils.CreateInternalServerError(ctx)
			return
		}
		found := false
		for _, d := range days {
			if d.ID == *input.ScheduleDayID {
				input.Data.DayOffset = models.IntPtr(d.DayOffset)
				found = true
				break
			}
		}
		if !found {
			utils.HandleScheduleError(timeline.ErrDayNotFound, ctx)
			return
		}
	}
	if err := input.Data.Validate(); err != nil {
		utils.HandleScheduleError(err, ctx)
		return
	}

	ev := input.Data.ToModel(models.ScheduleEvent{ConventionID: conv.ID})
	created, err := Schedule.CreateScheduleEvent(reqCtx, conv.ID, input.ScheduleDayID, ev)
	if err != nil {
		utils.HandleScheduleError(err, ctx)
		return
	}
	utils.Audit(ctx, conv.ID, "create", "schedule_event", created.ID, nil, created)

	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(iris.Map{"success": true, "item": created})
}

// BulkCreateScheduleEvents creates every valid item and reports the others
// by index.
func BulkCreateScheduleEvents(ctx iris.Context) {
	conv, ok := conventionFromParams(ctx)
	if !ok {
		return
	}
	var input bulkScheduleEventsInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	items := make([]models.ScheduleEvent, 0, len(input.Items))
	for _, in := range input.Items {
		items = append(items, in.ToModel(models.ScheduleEvent{ConventionID: conv.ID}))
	}
	created, itemErrs, err := Schedule.BulkCreateScheduleEvents(ctx.Request().Context(), conv.ID, items)
	if err != nil {
		log.Printf("❌ Bulk create failed for convention %d: %v", conv.ID, err)
		utils.CreateInternalServerError(ctx)
		return
	}
	if itemErrs == nil {
		itemErrs = []timeline.ItemError{}
	}
	log.Printf("✅ Bulk created %d/%d events for convention %d", created, len(items), conv.ID)

	ctx.JSON(iris.Map{
		"success": len(itemErrs) == 0,
		"message": fmt.Sprintf("Created %d of %d events", created, len(items)),
		"created": created,
		"errors":  itemErrs,
	})
}

func UpdateScheduleEvent(ctx iris.Context) {
	existing, ok := eventFromParams(ctx)
	if !ok {
		return
	}
	var input timeline.EventInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	reqCtx := ctx.Request().Context()
	next := input.ToModel(*existing)
	next.Venue = nil
	if next.DayOffset != nil {
		days, err := Schedule.ListScheduleDays(reqCtx, existing.ConventionID)
		if err != nil {
			utils.CreateInternalServerError(ctx)
			return
		}
		next.ScheduleDayID = dayIDFor(days, next.DayOffset)
	} else {
		next.ScheduleDayID = nil
	}

	saved, err := Schedule.UpdateScheduleEvent(reqCtx, next)
	if err != nil {
		utils.HandleScheduleError(err, ctx)
		return
	}
	utils.Audit(ctx, existing.ConventionID, "update", "schedule_event", existing.ID, existing, saved)

	ctx.JSON(iris.Map{"success": true, "item": saved})
}

// PatchScheduleEventPlacement writes the placement fields only. Omitted
// fields are cleared, so an empty body unschedules the event.
func PatchScheduleEventPlacement(ctx iris.Context) {
	existing, ok := eventFromParams(ctx)
	if !ok {
		return
	}
	var input placementInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	check := timeline.InputFromModel(*existing)
	if input.Title != nil {
		check.Title = *input.Title
	}
	check.DayOffset = input.DayOffset
	check.StartTimeMinutes = input.StartTimeMinutes
	check.DurationMinutes = input.DurationMinutes
	if err := check.Validate(); err != nil {
		utils.HandleScheduleError(err, ctx)
		return
	}

	reqCtx := ctx.Request().Context()
	days, err := Schedule.ListScheduleDays(reqCtx, existing.ConventionID)
	if err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	update := timeline.PlacementUpdate{
		Title:            check.Title,
		DayOffset:        input.DayOffset,
		StartTimeMinutes: input.StartTimeMinutes,
		DurationMinutes:  input.DurationMinutes,
		ScheduleDayID:    dayIDFor(days, input.DayOffset),
	}
	if err := Schedule.UpdatePlacement(reqCtx, existing.ID, update); err != nil {
		utils.HandleScheduleError(err, ctx)
		return
	}
	utils.Audit(ctx, existing.ConventionID, "place", "schedule_event", existing.ID, existing, update)

	ctx.JSON(iris.Map{"success": true})
}

func DeleteScheduleEvent(ctx iris.Context) {
	existing, ok := eventFromParams(ctx)
	if !ok {
		return
	}
	if err := Schedule.DeleteScheduleEvent(ctx.Request().Context(), existing.ID); err != nil {
		utils.HandleScheduleError(err, ctx)
		return
	}
	utils.Audit(ctx, existing.ConventionID, "delete", "schedule_event", existing.ID, existing, nil)

	ctx.JSON(iris.Map{"success": true})
}
