package utils

import (
	"convention-scheduler-server/timeline"
	"errors"
	"log"

	"github.com/go-playground/validator/v10"
	"github.com/kataras/iris/v12"
)

func CreateError(statusCode int, title, detail string, ctx iris.Context) {
	ctx.StatusCode(statusCode)
	ctx.JSON(iris.Map{
		"success": false,
		"error":   title,
		"message": detail,
	})
	ctx.StopExecution()
}

func CreateBadRequest(detail string, ctx iris.Context) {
	CreateError(iris.StatusBadRequest, "Bad Request", detail, ctx)
}

func CreateNotFound(ctx iris.Context) {
	CreateError(iris.StatusNotFound, "Not Found", "Not Found", ctx)
}

func CreateInternalServerError(ctx iris.Context) {
	CreateError(iris.StatusInternalServerError, "Internal Server Error", "Internal Server Error", ctx)
}

type validationError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Value   string `json:"value,omitempty"`
	Message string `json:"message"`
}

// HandleValidationErrors answers 400 with one entry per failed field when err
// comes from the validator, and a plain bad request otherwise (malformed
// JSON).
func HandleValidationErrors(err error, ctx iris.Context) {
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		CreateBadRequest(err.Error(), ctx)
		return
	}

	out := make([]validationError, 0, len(errs))
	for _, fe := range errs {
		out = append(out, validationError{
			Field:   fe.Field(),
			Tag:     fe.Tag(),
			Value:   fe.Param(),
			Message: fe.Error(),
		})
	}
	ctx.StatusCode(iris.StatusBadRequest)
	ctx.JSON(iris.Map{
		"success": false,
		"error":   "Validation error",
		"message": "One or more fields failed to be validated",
		"errors":  out,
	})
	ctx.StopExecution()
}

// HandleScheduleError maps errors of the schedule editor to responses.
func HandleScheduleError(err error, ctx iris.Context) {
	var verr *timeline.ValidationError
	var serr *timeline.SaveError

	switch {
	case errors.As(err, &verr):
		ctx.StatusCode(iris.StatusUnprocessableEntity)
		ctx.JSON(iris.Map{
			"success": false,
			"error":   "Validation error",
			"message": verr.Error(),
			"errors":  verr.Fields,
		})
		ctx.StopExecution()
	case errors.As(err, &serr):
		names := make([]string, 0, len(serr.Failed))
		for _, f := range serr.Failed {
			names = append(names, f.Title)
		}
		ctx.StatusCode(iris.StatusBadGateway)
		ctx.JSON(iris.Map{
			"success": false,
			"error":   "Save failed",
			"message": serr.Error(),
			"failed":  names,
		})
		ctx.StopExecution()
	case errors.Is(err, timeline.ErrConventionNotFound),
		errors.Is(err, timeline.ErrDayNotFound),
		errors.Is(err, timeline.ErrEventNotFound):
		CreateError(iris.StatusNotFound, "Not Found", err.Error(), ctx)
	case errors.Is(err, timeline.ErrDayExists),
		errors.Is(err, timeline.ErrNotEmpty),
		errors.Is(err, timeline.ErrGestureActive):
		CreateError(iris.StatusConflict, "Conflict", err.Error(), ctx)
	case errors.Is(err, timeline.ErrOfficialDay),
		errors.Is(err, timeline.ErrNoDays),
		errors.Is(err, timeline.ErrNoGesture):
		CreateBadRequest(err.Error(), ctx)
	default:
		log.Printf("❌ Schedule error: %v", err)
		CreateInternalServerError(ctx)
	}
}
