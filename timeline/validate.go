package timeline

import (
	"convention-scheduler-server/models"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"gorm.io/datatypes"
)

// EventInput is the editable field set of a schedule event, as submitted by
// the edit form, create calls and bulk authoring.
type EventInput struct {
	Title            string           `json:"title" validate:"required,max=200"`
	EventType        string           `json:"eventType" validate:"max=32"`
	Description      string           `json:"description"`
	DurationMinutes  *int             `json:"durationMinutes" validate:"omitempty,interval,max=1440"`
	DayOffset        *int             `json:"dayOffset"`
	StartTimeMinutes *int             `json:"startTimeMinutes" validate:"omitempty,interval,max=1425"`
	LocationName     string           `json:"locationName" validate:"max=200"`
	IsOffsite        bool             `json:"isOffsite"`
	VenueID          *uint            `json:"venueId" validate:"required_if=IsOffsite true"`
	FeeTiers         []models.FeeTier `json:"feeTiers" validate:"dive"`
}

var validate = NewValidator()

// NewValidator returns a validator with the schedule rules registered: the
// "interval" tag (0 or a positive multiple of the interval) and the
// placement consistency rules of EventInput.
func NewValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("interval", func(fl validator.FieldLevel) bool {
		n := fl.Field().Int()
		return n >= 0 && n%IntervalMinutes == 0
	})
	v.RegisterStructValidation(eventInputRules, EventInput{})
	return v
}

func eventInputRules(sl validator.StructLevel) {
	in := sl.Current().Interface().(EventInput)
	if (in.DayOffset == nil) != (in.StartTimeMinutes == nil) {
		sl.ReportError(in.StartTimeMinutes, "startTimeMinutes", "StartTimeMinutes", "placement", "")
	}
	if in.StartTimeMinutes != nil && in.DurationMinutes != nil &&
		*in.StartTimeMinutes+*in.DurationMinutes > MinutesPerDay {
		sl.ReportError(in.DurationMinutes, "durationMinutes", "DurationMinutes", "withinday", "")
	}
}

// Validate checks an event input, returning a *ValidationError.
func (in EventInput) Validate() error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	return ValidationFromValidator(verrs, "")
}

// ValidationFromValidator converts validator errors to a ValidationError.
func ValidationFromValidator(verrs validator.ValidationErrors, eventKey string) *ValidationError {
	out := &ValidationError{}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, FieldError{
			EventKey: eventKey,
			Field:    fe.Field(),
			Message:  fieldMessage(fe),
		})
	}
	return out
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "required_if":
		return fmt.Sprintf("%s is required for off-site events", fe.Field())
	case "interval":
		return fmt.Sprintf("%s must be a multiple of %d minutes", fe.Field(), IntervalMinutes)
	case "placement":
		return "dayOffset and startTimeMinutes must be set together"
	case "withinday":
		return "event must end by midnight"
	case "max":
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	}
	return fmt.Sprintf("%s is invalid", fe.Field())
}

// ToModel copies the input onto ev, keeping ev's identity and convention.
func (in EventInput) ToModel(ev models.ScheduleEvent) models.ScheduleEvent {
	ev.Title = strings.TrimSpace(in.Title)
	ev.EventType = in.EventType
	ev.Description = in.Description
	ev.DurationMinutes = in.DurationMinutes
	ev.DayOffset = in.DayOffset
	ev.StartTimeMinutes = in.StartTimeMinutes
	ev.LocationName = in.LocationName
	ev.IsOffsite = in.IsOffsite
	ev.VenueID = in.VenueID
	if !in.IsOffsite {
		ev.VenueID = nil
	}
	if in.FeeTiers != nil {
		if raw, err := json.Marshal(in.FeeTiers); err == nil {
			ev.FeeTiers = datatypes.JSON(raw)
		}
	}
	return ev
}

// InputFromModel extracts the editable fields of ev.
func InputFromModel(ev models.ScheduleEvent) EventInput {
	in := EventInput{
		Title:            ev.Title,
		EventType:        ev.EventType,
		Description:      ev.Description,
		DurationMinutes:  ev.DurationMinutes,
		DayOffset:        ev.DayOffset,
		StartTimeMinutes: ev.StartTimeMinutes,
		LocationName:     ev.LocationName,
		IsOffsite:        ev.IsOffsite,
		VenueID:          ev.VenueID,
	}
	if len(ev.FeeTiers) > 0 {
		_ = json.Unmarshal(ev.FeeTiers, &in.FeeTiers)
	}
	return in
}

// ValidateBulk checks bulk-authored events one by one. Valid items are
// returned normalized; invalid ones are reported by index.
func ValidateBulk(items []models.ScheduleEvent) ([]models.ScheduleEvent, []ItemError) {
	var valid []models.ScheduleEvent
	var errs []ItemError
	for i, item := range items {
		in := InputFromModel(item)
		if err := in.Validate(); err != nil {
			errs = append(errs, ItemError{ItemIndex: i, Message: err.Error()})
			continue
		}
		valid = append(valid, in.ToModel(models.ScheduleEvent{ConventionID: item.ConventionID}))
	}
	return valid, errs
}
