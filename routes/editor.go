package routes

import (
	"convention-scheduler-server/services"
	"convention-scheduler-server/timeline"
	"convention-scheduler-server/utils"
	"errors"
	"net/http"

	"github.com/kataras/iris/v12"
)

type createSessionInput struct {
	ConventionID uint   `json:"conventionId" validate:"required"`
	ResumeID     string `json:"resumeSessionId" validate:"omitempty,uuid"`
}

type pointerDownInput struct {
	EventKey string  `json:"eventKey" validate:"required"`
	OffsetY  float64 `json:"offsetY"`
	Y        float64 `json:"y"`
}

type pointerInput struct {
	Y float64 `json:"y"`
}

type dropInput struct {
	timeline.DropPayload
	Y float64 `json:"y"`
}

type navigateInput struct {
	Direction string `json:"direction" validate:"omitempty,oneof=prev next"`
	DayOffset *int   `json:"dayOffset"`
}

type addDayInput struct {
	Position timeline.Position `json:"position" validate:"required,oneof=before after"`
}

type scrollInput struct {
	Direction string `json:"direction" validate:"required,oneof=up down"`
	Hold      bool   `json:"hold"`
}

func stateWidth(ctx iris.Context) float64 {
	w := ctx.URLParamFloat64Default("width", defaultLayoutWidth)
	if w <= 0 {
		return defaultLayoutWidth
	}
	return w
}

func editorError(ctx iris.Context, err error) {
	if errors.Is(err, services.ErrSessionNotFound) {
		utils.CreateError(iris.StatusNotFound, "Not Found", err.Error(), ctx)
		return
	}
	if errors.Is(err, services.ErrSessionLive) {
		utils.CreateError(iris.StatusConflict, "Conflict", err.Error(), ctx)
		return
	}
	utils.HandleScheduleError(err, ctx)
}

// sessionFromParams loads the {sid} session and checks the requester still
// organizes its convention.
func sessionFromParams(ctx iris.Context) (*services.Session, bool) {
	sess, err := Editors.Get(ctx.Params().Get("sid"))
	if err != nil {
		editorError(ctx, err)
		return nil, false
	}
	if _, ok := ownedConvention(ctx, sess.ConventionID); !ok {
		return nil, false
	}
	return sess, true
}

// respondState answers with the editor state after an operation.
func respondState(ctx iris.Context, sess *services.Session, fields iris.Map) {
	var st timeline.State
	err := Editors.View(sess.ID, func(ed *timeline.Editor) error {
		st = ed.State(stateWidth(ctx))
		return nil
	})
	if err != nil {
		editorError(ctx, err)
		return
	}
	out := iris.Map{"success": true, "sessionId": sess.ID, "state": st}
	for k, v := range fields {
		out[k] = v
	}
	ctx.JSON(out)
}

func CreateEditorSession(ctx iris.Context) {
	var input createSessionInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}
	if _, ok := ownedConvention(ctx, input.ConventionID); !ok {
		return
	}
	sess, err := Editors.Open(ctx.Request().Context(), input.ConventionID, input.ResumeID)
	if err != nil {
		editorError(ctx, err)
		return
	}
	ctx.StatusCode(iris.StatusCreated)
	respondState(ctx, sess, nil)
}

func GetEditorState(ctx iris.Context) {
	sess, ok := sessionFromParams(ctx)
	if !ok {
		return
	}
	respondState(ctx, sess, nil)
}

func CloseEditorSession(ctx iris.Context) {
	sess, ok := sessionFromParams(ctx)
	if !ok {
		return
	}
	if err := Editors.Close(sess.ID); err != nil {
		editorError(ctx, err)
		return
	}
	ctx.JSON(iris.Map{"success": true})
}

func EditorPointerDown(ctx iris.Context) {
	sess, ok := sessionFromParams(ctx)
	if !ok {
		return
	}
	var input pointerDownInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}
	var kind timeline.GestureKind
	var edge timeline.Edge
	err := Editors.View(sess.ID, func(ed *timeline.Editor) error {
		var err error
		kind, edge, err = ed.PointerDown(input.EventKey, input.OffsetY, input.Y)
		return err
	})
	if err != nil {
		editorError(ctx, err)
		return
	}
	ctx.JSON(iris.Map{"success": true, "gesture": kind.String(), "edge": edge.String()})
}

func EditorPointerMove(ctx iris.Context) {
	sess, ok := sessionFromParams(ctx)
	if !ok {
		return
	}
	var input pointerInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}
	var preview timeline.Preview
	var active bool
	err := Editors.View(sess.ID, func(ed *timeline.Editor) error {
		preview, active = ed.PointerMove(input.Y)
		return nil
	})
	if err != nil {
		editorError(ctx, err)
		return
	}
	if !active {
		ctx.JSON(iris.Map{"success": true, "active": false})
		return
	}
	ctx.JSON(iris.Map{"success": true, "active": true, "preview": preview})
}

// EditorPointerUp ends the gesture. Only a gesture that changed its event
// commits a placement.
func EditorPointerUp(ctx iris.Context) {
	sess, ok := sessionFromParams(ctx)
	if !ok {
		return
	}
	var input pointerInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}
	var commit timeline.Commit
	err := Editors.Do(ctx.Request().Context(), sess.ID, func(ed *timeline.Editor) error {
		var err error
		commit, err = ed.PointerUp(input.Y)
		return err
	})
	if err != nil {
		editorError(ctx, err)
		return
	}
	respondState(ctx, sess, iris.Map{"changed": commit.Changed, "placement": commit.Placement})
}

func EditorClick(ctx iris.Context) {
	sess, ok := sessionFromParams(ctx)
	if !ok {
		return
	}
	var open bool
	err := Editors.View(sess.ID, func(ed *timeline.Editor) error {
		open = ed.Click()
		return nil
	})
	if err != nil {
		editorError(ctx, err)
		return
	}
	ctx.JSON(iris.Map{"success": true, "openEditor": open})
}

func EditorDragOver(ctx iris.Context) {
	sess, ok := sessionFromParams(ctx)
	if !ok {
		return
	}
	var input dropInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}
	var ph timeline.Placeholder
	err := Editors.View(sess.ID, func(ed *timeline.Editor) error {
		var err error
		ph, err = ed.DragOver(input.DropPayload, input.Y)
		return err
	})
	if err != nil {
		editorError(ctx, err)
		return
	}
	ctx.JSON(iris.Map{"success": true, "placeholder": ph})
}

func EditorDrop(ctx iris.Context) {
	sess, ok := sessionFromParams(ctx)
	if !ok {
		return
	}
	var input dropInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}
	var placement timeline.Placement
	err := Editors.Do(ctx.Request().Context(), sess.ID, func(ed *timeline.Editor) error {
		var err error
		placement, err = ed.Drop(input.DropPayload, input.Y)
		return err
	})
	if err != nil {
		editorError(ctx, err)
		return
	}
	respondState(ctx, sess, iris.Map{"placement": placement})
}

func EditorAddEvent(ctx iris.Context) {
	sess, ok := sessionFromParams(ctx)
	if !ok {
		return
	}
	var input timeline.EventInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}
	var key string
	err := Editors.Do(ctx.Request().Context(), sess.ID, func(ed *timeline.Editor) error {
		ev, err := ed.Events.AddDraft(input)
		key = ev.Key()
		return err
	})
	if err != nil {
		editorError(ctx, err)
		return
	}
	ctx.StatusCode(iris.StatusCreated)
	respondState(ctx, sess, iris.Map{"eventKey": key})
}

func EditorUpdateEvent(ctx iris.Context) {
	sess, ok := sessionFromParams(ctx)
	if !ok {
		return
	}
	var input timeline.EventInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}
	key := ctx.Params().Get("key")
	err := Editors.Do(ctx.Request().Context(), sess.ID, func(ed *timeline.Editor) error {
		_, err := ed.Events.UpdateEvent(ctx.Request().Context(), key, input)
		return err
	})
	if err != nil {
		editorError(ctx, err)
		return
	}
	respondState(ctx, sess, nil)
}

func EditorDeleteEvent(ctx iris.Context) {
	sess, ok := sessionFromParams(ctx)
	if !ok {
		return
	}
	key := ctx.Params().Get("key")
	err := Editors.Do(ctx.Request().Context(), sess.ID, func(ed *timeline.Editor) error {
		return ed.Events.DeleteEvent(ctx.Request().Context(), key)
	})
	if err != nil {
		editorError(ctx, err)
		return
	}
	respondState(ctx, sess, nil)
}

func EditorUnscheduleEvent(ctx iris.Context) {
	sess, ok := sessionFromParams(ctx)
	if !ok {
		return
	}
	key := ctx.Params().Get("key")
	err := Editors.Do(ctx.Request().Context(), sess.ID, func(ed *timeline.Editor) error {
		return ed.Unschedule(key)
	})
	if err != nil {
		editorError(ctx, err)
		return
	}
	respondState(ctx, sess, nil)
}

func EditorNavigate(ctx iris.Context) {
	sess, ok := sessionFromParams(ctx)
	if !ok {
		return
	}
	var input navigateInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}
	var moved bool
	err := Editors.View(sess.ID, func(ed *timeline.Editor) error {
		switch {
		case input.DayOffset != nil:
			moved = ed.GoTo(*input.DayOffset)
		case input.Direction == "prev":
			moved = ed.Navigate(timeline.Backward)
		default:
			moved = ed.Navigate(timeline.Forward)
		}
		return nil
	})
	if err != nil {
		editorError(ctx, err)
		return
	}
	respondState(ctx, sess, iris.Map{"moved": moved})
}

func EditorInitializeDays(ctx iris.Context) {
	sess, ok := sessionFromParams(ctx)
	if !ok {
		return
	}
	err := Editors.View(sess.ID, func(ed *timeline.Editor) error {
		return ed.InitializeDays(ctx.Request().Context())
	})
	if err != nil {
		editorError(ctx, err)
		return
	}
	respondState(ctx, sess, nil)
}

func EditorAddDay(ctx iris.Context) {
	sess, ok := sessionFromParams(ctx)
	if !ok {
		return
	}
	var input addDayInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}
	var offset int
	err := Editors.View(sess.ID, func(ed *timeline.Editor) error {
		var err error
		offset, err = ed.AddDay(ctx.Request().Context(), input.Position)
		return err
	})
	if err != nil {
		editorError(ctx, err)
		return
	}
	respondState(ctx, sess, iris.Map{"dayOffset": offset})
}

func EditorDeleteDay(ctx iris.Context) {
	sess, ok := sessionFromParams(ctx)
	if !ok {
		return
	}
	dayID, err := ctx.Params().GetUint("dayID")
	if err != nil {
		utils.CreateBadRequest("invalid day id", ctx)
		return
	}
	var unscheduled []string
	err = Editors.Do(ctx.Request().Context(), sess.ID, func(ed *timeline.Editor) error {
		var err error
		unscheduled, err = ed.DeleteDay(ctx.Request().Context(), dayID)
		return err
	})
	if err != nil {
		editorError(ctx, err)
		return
	}
	utils.Audit(ctx, sess.ConventionID, "delete", "schedule_day", dayID, nil, iris.Map{"unscheduled": unscheduled})
	if unscheduled == nil {
		unscheduled = []string{}
	}
	respondState(ctx, sess, iris.Map{"unscheduled": unscheduled})
}

// EditorScroll moves the current day's window one hour, or keeps moving it
// every tick when hold is set until EditorScrollRelease.
func EditorScroll(ctx iris.Context) {
	sess, ok := sessionFromParams(ctx)
	if !ok {
		return
	}
	var input scrollInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}
	dir := timeline.Forward
	if input.Direction == "up" {
		dir = timeline.Backward
	}
	var hour int
	err := Editors.View(sess.ID, func(ed *timeline.Editor) error {
		if input.Hold {
			hour = ed.ScrollHold(dir)
		} else {
			hour = ed.ScrollStep(dir)
		}
		return nil
	})
	if err != nil {
		editorError(ctx, err)
		return
	}
	ctx.JSON(iris.Map{"success": true, "viewStartHour": hour, "holding": input.Hold})
}

func EditorScrollRelease(ctx iris.Context) {
	sess, ok := sessionFromParams(ctx)
	if !ok {
		return
	}
	var hour int
	err := Editors.View(sess.ID, func(ed *timeline.Editor) error {
		hour = ed.ScrollRelease()
		return nil
	})
	if err != nil {
		editorError(ctx, err)
		return
	}
	ctx.JSON(iris.Map{"success": true, "viewStartHour": hour})
}

// EditorSave persists every consistent placement of the session. Events
// that saved stay saved when others fail; the failed titles are listed.
func EditorSave(ctx iris.Context) {
	sess, ok := sessionFromParams(ctx)
	if !ok {
		return
	}
	var report timeline.SaveReport
	err := Editors.Do(ctx.Request().Context(), sess.ID, func(ed *timeline.Editor) error {
		var err error
		report, err = ed.Save(ctx.Request().Context())
		return err
	})

	if report.Saved > 0 {
		utils.Audit(ctx, sess.ConventionID, "save", "schedule", sess.ConventionID, nil, report)
	}

	var saveErr *timeline.SaveError
	if errors.As(err, &saveErr) {
		ctx.StatusCode(http.StatusMultiStatus)
		ctx.JSON(iris.Map{
			"success": false,
			"error":   "Save failed",
			"message": saveErr.Error(),
			"saved":   report.Saved,
			"failed":  report.Failed,
		})
		return
	}
	if err != nil {
		editorError(ctx, err)
		return
	}
	respondState(ctx, sess, iris.Map{"report": report})
}
