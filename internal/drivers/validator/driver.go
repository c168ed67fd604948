package validator

import (
	"sarpras/pkg/logger"
	"sarpras/pkg/model"
	"sarpras/pkg/validation"

	"github.com/go-playground/validator/v10"
)

type DriverValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewDriverValidator(log *logger.Logger) *DriverValidator {
	v := validation.New(log)
	log.Info("Driver validator initialized successfully")

	return &DriverValidator{
		validate: v,
		logger:   log,
	}
}

func (v *DriverValidator) Validate(driver *model.Driver) error {
	return validation.Struct(v.validate, driver)
}

func (v *DriverValidator) ValidateUpdate(update *model.DriverUpdate) error {
	return validation.Struct(v.validate, update)
}
