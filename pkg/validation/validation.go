// Package validation holds the go-playground validator setup shared by the
// reservation, asset and driver validators.
package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	apperrors "sarpras/pkg/errors"
	"sarpras/pkg/logger"
	"sarpras/pkg/model"

	"github.com/go-playground/validator/v10"
)

const (
	TagAssetCode       = "asset_code"
	TagAssetKind       = "asset_kind"
	TagReservationKind = "reservation_kind"
)

var assetCodeRegex = regexp.MustCompile(`^[A-Z0-9][A-Z0-9_-]{0,63}$`)

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

// Fields maps each failing field to its message, for AppError details.
func (v ValidationErrors) Fields() map[string]any {
	fields := make(map[string]any, len(v))
	for _, err := range v {
		fields[err.Field] = err.Message
	}
	return fields
}

// ToAppError turns a validation failure into a 422 carrying per-field details.
func ToAppError(message string, err error) *apperrors.AppError {
	var verrs ValidationErrors
	if errors.As(err, &verrs) {
		return apperrors.Validation(message, verrs.Fields())
	}
	return apperrors.Validation(message, map[string]any{"error": err.Error()})
}

func Single(field, message string) ValidationErrors {
	return ValidationErrors{{Field: field, Message: message}}
}

// New returns a validator with the domain tags registered. Registration only
// fails on programmer error, so it is fatal.
func New(log *logger.Logger) *validator.Validate {
	v := validator.New()

	custom := map[string]validator.Func{
		TagAssetCode:       validateAssetCode,
		TagAssetKind:       validateAssetKind,
		TagReservationKind: validateReservationKind,
	}
	for tag, fn := range custom {
		if err := v.RegisterValidation(tag, fn); err != nil {
			log.Fatal("Failed to register validator", "tag", tag, "error", err)
		}
	}

	return v
}

func IsAssetCode(code string) bool {
	return assetCodeRegex.MatchString(code)
}

func validateAssetCode(fl validator.FieldLevel) bool {
	return IsAssetCode(fl.Field().String())
}

func validateAssetKind(fl validator.FieldLevel) bool {
	return model.AssetKind(fl.Field().String()).Valid()
}

func validateReservationKind(fl validator.FieldLevel) bool {
	return model.ReservationKind(fl.Field().String()).Valid()
}

// Struct runs v against s and translates field failures into ValidationErrors.
func Struct(v *validator.Validate, s any) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		return Translate(validationErrs)
	}
	return err
}

func Translate(errs validator.ValidationErrors) ValidationErrors {
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
		case "e164":
			message = fmt.Sprintf("%s must be in E.164 format (e.g., +628123456789)", err.Field())
		case "oneof":
			message = fmt.Sprintf("%s must be one of: %s", err.Field(), err.Param())
		case "gtfield":
			message = fmt.Sprintf("%s must be after %s", err.Field(), err.Param())
		case TagAssetCode:
			message = fmt.Sprintf("%s must contain only A-Z, 0-9, '-' or '_' (max 64)", err.Field())
		case TagAssetKind:
			message = fmt.Sprintf("%s must be one of: room, vehicle, item, other", err.Field())
		case TagReservationKind:
			message = fmt.Sprintf("%s must be one of: room, vehicle", err.Field())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Namespace(),
			Message: message,
		})
	}

	return validationErrors
}
