package routes

import (
	"convention-scheduler-server/services"
	"convention-scheduler-server/utils"
	"fmt"
	"time"

	"github.com/kataras/iris/v12"
)

// ExportScheduleICS serves the placed schedule as an .ics file. The tz
// query parameter names the convention's time zone (default UTC).
func ExportScheduleICS(ctx iris.Context) {
	conv, ok := conventionFromParams(ctx)
	if !ok {
		return
	}
	loc := time.UTC
	if tz := ctx.URLParam("tz"); tz != "" {
		l, err := time.LoadLocation(tz)
		if err != nil {
			utils.CreateBadRequest("unknown time zone "+tz, ctx)
			return
		}
		loc = l
	}

	events, err := Schedule.ListScheduleEvents(ctx.Request().Context(), conv.ID)
	if err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.ContentType("text/calendar; charset=utf-8")
	ctx.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="convention-%d-schedule.ics"`, conv.ID))
	ctx.WriteString(services.ScheduleCalendar(*conv, events, loc))
}
