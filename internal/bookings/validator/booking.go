package validator

import (
	"barberbook/pkg/logger"
	"barberbook/pkg/model"
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

const (
	dateLayout = "2006-01-02"

	maxPriceScale = 2
)

var maxPrice = decimal.NewFromInt(1_000_000_000)

var (
	clockRegex = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)
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

// Details renders the errors as a field to message map for error responses.
func (v ValidationErrors) Details() map[string]any {
	details := make(map[string]any, len(v))
	for _, err := range v {
		details[err.Field] = err.Message
	}
	return details
}

type BookingValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewBookingValidator(log *logger.Logger) *BookingValidator {
	v := validator.New()
	v.RegisterTagNameFunc(jsonFieldName)

	if err := v.RegisterValidation("isodate", validateISODate); err != nil {
		log.Fatal("Failed to register 'isodate' validator",
			"error", err,
		)
	}
	if err := v.RegisterValidation("clock", validateClock); err != nil {
		log.Fatal("Failed to register 'clock' validator",
			"error", err,
		)
	}

	log.Info("Booking validator initialized successfully")

	return &BookingValidator{
		validate: v,
		logger:   log,
	}
}

func jsonFieldName(field reflect.StructField) string {
	name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
	if name == "-" || name == "" {
		return field.Name
	}
	return name
}

func validateISODate(fl validator.FieldLevel) bool {
	_, err := time.Parse(dateLayout, fl.Field().String())
	return err == nil
}

func validateClock(fl validator.FieldLevel) bool {
	return clockRegex.MatchString(fl.Field().String())
}

func (v *BookingValidator) Validate(booking *model.Booking) error {
	var validationErrors ValidationErrors

	if err := v.validate.Struct(booking); err != nil {
		var validationErrs validator.ValidationErrors
		if !errors.As(err, &validationErrs) {
			return err
		}
		validationErrors = v.translateValidationErrors(validationErrs)
	}

	if msg := checkPrice(booking.Price); msg != "" {
		validationErrors = append(validationErrors, ValidationError{
			Field:   "price",
			Message: msg,
		})
	}

	if len(validationErrors) > 0 {
		return validationErrors
	}
	return nil
}

// checkPrice returns a message when the price is unusable. Storable is
// checked first: comparing or rounding an unbounded exponent expands it.
func checkPrice(p model.Price) string {
	if p.Malformed() || p.Amount().IsNegative() {
		return "price must be a non-negative number"
	}
	if !p.Valid {
		return ""
	}
	if !p.Storable() || p.Amount().GreaterThan(maxPrice) {
		return fmt.Sprintf("price must be at most %s", maxPrice)
	}
	if -p.Amount().Exponent() > maxPriceScale && !p.Amount().Equal(p.Amount().Truncate(maxPriceScale)) {
		return fmt.Sprintf("price must have at most %d decimal places", maxPriceScale)
	}
	return ""
}

// ValidateStatus accepts the statuses a booking may be moved to.
func (v *BookingValidator) ValidateStatus(update *model.StatusUpdate) error {
	if err := v.validate.Struct(update); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
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
		case "max":
			message = fmt.Sprintf("%s must be at most %s characters", err.Field(), err.Param())
		case "oneof":
			message = fmt.Sprintf("%s must be one of: %s", err.Field(), err.Param())
		case "isodate":
			message = fmt.Sprintf("%s must be a calendar date in YYYY-MM-DD format", err.Field())
		case "clock":
			message = fmt.Sprintf("%s must be a 24-hour time in HH:MM format", err.Field())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}
