package routes

import (
	"convention-scheduler-server/models"
	"convention-scheduler-server/services"
	"convention-scheduler-server/timeline"
	"convention-scheduler-server/utils"

	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"
)

// Set by main before the routes are served.
var (
	Schedule timeline.Store
	Editors  *services.EditorService
	Grid     = timeline.DefaultGrid()
)

func canEdit(ctx iris.Context, conv *models.Convention) bool {
	claims, ok := jwt.Get(ctx).(*utils.AccessToken)
	if !ok {
		return false
	}
	return claims.Role == "admin" || conv.OrganizerID == claims.ID
}

// conventionFromParams loads the {id} convention and checks the requester
// organizes it. It writes the error response itself.
func conventionFromParams(ctx iris.Context) (*models.Convention, bool) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.CreateBadRequest("invalid convention id", ctx)
		return nil, false
	}
	return ownedConvention(ctx, id)
}

func ownedConvention(ctx iris.Context, conventionID uint) (*models.Convention, bool) {
	conv, err := Schedule.GetConvention(ctx.Request().Context(), conventionID)
	if err != nil {
		utils.HandleScheduleError(err, ctx)
		return nil, false
	}
	if !canEdit(ctx, conv) {
		ctx.StatusCode(iris.StatusForbidden)
		ctx.JSON(iris.Map{"success": false, "error": "forbidden", "message": "not an organizer of this convention"})
		return nil, false
	}
	return conv, true
}

// eventFromParams loads the {id} event and checks the requester organizes
// its convention.
func eventFromParams(ctx iris.Context) (*models.ScheduleEvent, bool) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.CreateBadRequest("invalid event id", ctx)
		return nil, false
	}
	ev, err := Schedule.GetScheduleEvent(ctx.Request().Context(), id)
	if err != nil {
		utils.HandleScheduleError(err, ctx)
		return nil, false
	}
	if _, ok := ownedConvention(ctx, ev.ConventionID); !ok {
		return nil, false
	}
	return ev, true
}

// dayIDFor resolves the persisted day of an offset, nil when the convention
// has no day there.
func dayIDFor(days []models.ScheduleDay, offset *int) *uint {
	if offset == nil {
		return nil
	}
	for _, d := range days {
		if d.DayOffset == *offset {
			id := d.ID
			return &id
		}
	}
	return nil
}

// Mount registers the schedule and editor routes on an /api party whose
// handlers already verify the access token.
func Mount(api iris.Party) {
	conventions := api.Party("/convention/{id:uint}", utils.OrganizerOnlyMiddleware)
	{
		conventions.Get("/schedule/days", ListScheduleDays)
		conventions.Post("/schedule/days", CreateScheduleDay)
		conventions.Post("/schedule/days/initialize", InitializeScheduleDays)
		conventions.Delete("/schedule/days/{dayID:uint}", DeleteScheduleDay)
		conventions.Get("/schedule/days/{offset:int}/layout", GetDayLayout)
		conventions.Get("/schedule/events", ListScheduleEvents)
		conventions.Post("/schedule/events", CreateScheduleEvent)
		conventions.Post("/schedule/events/bulk", BulkCreateScheduleEvents)
		conventions.Get("/schedule.ics", ExportScheduleICS)
	}

	events := api.Party("/schedule/events/{id:uint}", utils.OrganizerOnlyMiddleware)
	{
		events.Put("/", UpdateScheduleEvent)
		events.Patch("/placement", PatchScheduleEventPlacement)
		events.Delete("/", DeleteScheduleEvent)
	}

	editor := api.Party("/editor/sessions", utils.OrganizerOnlyMiddleware)
	{
		editor.Post("/", CreateEditorSession)
		editor.Get("/{sid:uuid}", GetEditorState)
		editor.Delete("/{sid:uuid}", CloseEditorSession)
		editor.Post("/{sid:uuid}/pointer/down", EditorPointerDown)
		editor.Post("/{sid:uuid}/pointer/move", EditorPointerMove)
		editor.Post("/{sid:uuid}/pointer/up", EditorPointerUp)
		editor.Post("/{sid:uuid}/click", EditorClick)
		editor.Post("/{sid:uuid}/dragover", EditorDragOver)
		editor.Post("/{sid:uuid}/drop", EditorDrop)
		editor.Post("/{sid:uuid}/events", EditorAddEvent)
		editor.Put("/{sid:uuid}/events/{key}", EditorUpdateEvent)
		editor.Delete("/{sid:uuid}/events/{key}", EditorDeleteEvent)
		editor.Post("/{sid:uuid}/events/{key}/unschedule", EditorUnscheduleEvent)
		editor.Post("/{sid:uuid}/navigate", EditorNavigate)
		editor.Post("/{sid:uuid}/days", EditorAddDay)
		editor.Post("/{sid:uuid}/days/initialize", EditorInitializeDays)
		editor.Delete("/{sid:uuid}/days/{dayID:uint}", EditorDeleteDay)
		editor.Post("/{sid:uuid}/scroll", EditorScroll)
		editor.Post("/{sid:uuid}/scroll/release", EditorScrollRelease)
		editor.Post("/{sid:uuid}/save", EditorSave)
	}
}
