package routes

import (
	"convention-scheduler-server/models"
	"convention-scheduler-server/timeline"
	"convention-scheduler-server/utils"
	"fmt"
	"log"

	"github.com/kataras/iris/v12"
)

type createScheduleDayInput struct {
	DayOffset *int `json:"dayOffset" validate:"required,min=-365,max=365"`
}

func ListScheduleDays(ctx iris.Context) {
	conv, ok := conventionFromParams(ctx)
	if !ok {
		return
	}
	days, err := Schedule.ListScheduleDays(ctx.Request().Context(), conv.ID)
	if err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	if days == nil {
		days = []models.ScheduleDay{}
	}
	utils.JSONList(ctx, "days", days, len(days))
}

func CreateScheduleDay(ctx iris.Context) {
	conv, ok := conventionFromParams(ctx)
	if !ok {
		return
	}
	var input createScheduleDayInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	day, err := Schedule.CreateScheduleDay(ctx.Request().Context(), conv.ID, *input.DayOffset, false)
	if err != nil {
		utils.HandleScheduleError(err, ctx)
		return
	}
	utils.Audit(ctx, conv.ID, "create", "schedule_day", day.ID, nil, day)
	log.Printf("📅 Added day %d to convention %d", day.DayOffset, conv.ID)

	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(iris.Map{"success": true, "day": day})
}

// InitializeScheduleDays creates the official days from the convention's
// date span. It refuses when the convention already has days.
func InitializeScheduleDays(ctx iris.Context) {
	conv, ok := conventionFromParams(ctx)
	if !ok {
		return
	}
	reg := timeline.NewRegistry(Schedule, conv.ID)
	if err := reg.Refresh(ctx.Request().Context()); err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	if err := reg.Initialize(ctx.Request().Context(), conv.SpanDays()); err != nil {
		utils.HandleScheduleError(err, ctx)
		return
	}
	log.Printf("📅 Initialized %d official days for convention %d", conv.SpanDays(), conv.ID)

	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(iris.Map{"success": true, "days": reg.Days()})
}

func DeleteScheduleDay(ctx iris.Context) {
	conv, ok := conventionFromParams(ctx)
	if !ok {
		return
	}
	dayID, err := ctx.Params().GetUint("dayID")
	if err != nil {
		utils.CreateBadRequest("invalid day id", ctx)
		return
	}

	if err := Schedule.DeleteScheduleDay(ctx.Request().Context(), conv.ID, dayID); err != nil {
		utils.HandleScheduleError(err, ctx)
		return
	}
	utils.Audit(ctx, conv.ID, "delete", "schedule_day", dayID, nil, nil)

	ctx.JSON(iris.Map{
		"success": true,
		"message": fmt.Sprintf("Schedule day %d deleted; its events were unscheduled", dayID),
	})
}
