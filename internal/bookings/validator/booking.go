package validator

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"fitbook/pkg/logger"
	"fitbook/pkg/model"

	"github.com/go-playground/validator/v10"
)

var namePattern = regexp.MustCompile(`^[a-zA-Z\s\-'.]+$`)

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
	v := validator.New()

	if err := v.RegisterValidation("person_name", validatePersonName); err != nil {
		log.Fatal("Failed to register 'person_name' validator", "error", err)
	}

	return &BookingValidator{
		validate: v,
		logger:   log,
	}
}

func validatePersonName(fl validator.FieldLevel) bool {
	name := fl.Field().String()
	if !namePattern.MatchString(name) {
		return false
	}
	// Consecutive separators are always a typo.
	if strings.Contains(name, "  ") || strings.Contains(name, "--") || strings.Contains(name, "''") {
		return false
	}
	return true
}

func (v *BookingValidator) Validate(booking *model.Booking) error {
	if err := v.validate.Struct(booking); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return translate(validationErrs)
		}
		return err
	}

	if err := v.validate.Var(booking.ClientName, "person_name"); err != nil {
		return ValidationErrors{
			ValidationError{
				Field:   "ClientName",
				Message: "name contains invalid characters; only letters, spaces, hyphens, apostrophes and dots are allowed",
			},
		}
	}

	return nil
}

func translate(errs validator.ValidationErrors) ValidationErrors {
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
		case "mongodb":
			message = fmt.Sprintf("%s must be a valid MongoDB ObjectID", err.Field())
		case "email":
			message = fmt.Sprintf("%s must be a valid email address", err.Field())
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
