package routes

import (
	"convention-scheduler-server/timeline"
	"convention-scheduler-server/utils"

	"github.com/kataras/iris/v12"
)

const defaultLayoutWidth = 600

// GetDayLayout returns the card rectangles of one day as the editor grid
// would draw them. Without viewStartHour the window opens where a first
// visit would.
func GetDayLayout(ctx iris.Context) {
	conv, ok := conventionFromParams(ctx)
	if !ok {
		return
	}
	offset, err := ctx.Params().GetInt("offset")
	if err != nil {
		utils.CreateBadRequest("invalid day offset", ctx)
		return
	}
	width := ctx.URLParamFloat64Default("width", defaultLayoutWidth)
	if width <= 0 {
		utils.CreateBadRequest("width must be positive", ctx)
		return
	}

	events, err := Schedule.ListScheduleEvents(ctx.Request().Context(), conv.ID)
	if err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	orch := timeline.NewOrchestrator(Schedule, conv.ID)
	orch.Restore(events, nil)

	hour := timeline.NewViewState(Grid).Peek(offset, orch.PlacedStarts(offset))
	if ctx.URLParamExists("viewStartHour") {
		h, err := ctx.URLParamInt("viewStartHour")
		if err != nil || h < 0 || h > Grid.MaxStartHour() {
			utils.CreateBadRequest("viewStartHour out of range", ctx)
			return
		}
		hour = h
	}

	cards := Grid.LayoutDay(orch.DayEvents(offset), hour, width)
	if cards == nil {
		cards = []timeline.PlacedCard{}
	}
	ctx.JSON(iris.Map{
		"success":       true,
		"dayOffset":     offset,
		"viewStartHour": hour,
		"windowHeight":  Grid.WindowHeight(),
		"labels":        Grid.SlotLabels(hour),
		"cards":         cards,
	})
}
