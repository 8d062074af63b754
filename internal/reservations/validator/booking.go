package validator

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"voyara/pkg/logger"
	"voyara/pkg/model"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	var messages []string
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

type BookingValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewBookingValidator(log *logger.Logger) *BookingValidator {
	return &BookingValidator{
		validate: validator.New(),
		logger:   log,
	}
}

// ValidateRequest checks a booking request against the resource kind it
// targets. Struct tags cover shape; the window rules depend on the kind,
// so they are checked here. The clock is a parameter to keep validation
// reproducible.
func (v *BookingValidator) ValidateRequest(req *model.BookingRequest, kind model.ResourceKind, now time.Time) error {
	if err := v.validate.Struct(req); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}

	if req.Start.Before(now) {
		return ValidationErrors{
			ValidationError{
				Field:   "Start",
				Message: "start cannot be in the past",
			},
		}
	}

	profile := kind.Profile()
	if profile.SeatBased {
		// Flights book a departure instant; a differing End is a malformed
		// request rather than something to silently discard.
		if !req.End.IsZero() && !req.End.Equal(req.Start) {
			return ValidationErrors{
				ValidationError{
					Field:   "End",
					Message: "end must be omitted or equal to start for seat-based resources",
				},
			}
		}
	} else {
		if req.End.IsZero() || !req.End.After(req.Start) {
			return ValidationErrors{
				ValidationError{
					Field:   "End",
					Message: "end must be after start",
				},
			}
		}
	}

	for i, p := range req.Passengers {
		if strings.TrimSpace(p.Name) == "" {
			return ValidationErrors{
				ValidationError{
					Field:   fmt.Sprintf("Passengers[%d].Name", i),
					Message: "passenger name cannot be blank",
				},
			}
		}
	}

	return nil
}

// ValidateOutcome checks a payment outcome before it is recorded.
func (v *BookingValidator) ValidateOutcome(outcome *model.PaymentOutcome) error {
	if err := v.validate.Struct(outcome); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}
	if _, err := outcome.Decimal(); err != nil {
		return ValidationErrors{
			ValidationError{
				Field:   "Amount",
				Message: "amount must be a decimal string",
			},
		}
	}
	return nil
}

// ValidateResource checks an admin catalogue submission. Seat-based
// kinds need an explicit capacity; date-range kinds are exclusive per
// unit so any submitted capacity is rejected.
func (v *BookingValidator) ValidateResource(req *model.ResourceRequest) error {
	if err := v.validate.Struct(req); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}

	var errs ValidationErrors

	if !req.Kind.Valid() {
		errs = append(errs, ValidationError{
			Field:   "Kind",
			Message: "kind must be one of flight, yacht, car, hotel_room",
		})
		return errs
	}

	if price, err := decimal.NewFromString(req.UnitPrice); err != nil || !price.IsPositive() {
		errs = append(errs, ValidationError{
			Field:   "UnitPrice",
			Message: "unit price must be a positive decimal string",
		})
	}

	if req.Kind.Profile().SeatBased {
		if req.Capacity < 1 {
			errs = append(errs, ValidationError{
				Field:   "Capacity",
				Message: "capacity is required for seat-based resources",
			})
		}
	} else if req.Capacity > 1 {
		errs = append(errs, ValidationError{
			Field:   "Capacity",
			Message: "date-range resources are exclusive and cannot carry a capacity",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (v *BookingValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "min":
			message = fmt.Sprintf("%s must be at least %s", err.Field(), err.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s", err.Field(), err.Param())
		case "len":
			message = fmt.Sprintf("%s must be exactly %s characters", err.Field(), err.Param())
		case "e164":
			message = fmt.Sprintf("%s must be in E.164 format (e.g., +14155550123)", err.Field())
		case "oneof":
			message = fmt.Sprintf("%s must be one of: %s", err.Field(), err.Param())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}
