package validator

import (
	"sarpras/pkg/logger"
	"sarpras/pkg/model"
	"sarpras/pkg/validation"

	"github.com/go-playground/validator/v10"
)

type ReservationValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewReservationValidator(log *logger.Logger) *ReservationValidator {
	v := validation.New(log)
	log.Info("Reservation validator initialized successfully")

	return &ReservationValidator{
		validate: v,
		logger:   log,
	}
}

// Validate checks field rules and that only the variant matching Kind is set.
func (v *ReservationValidator) Validate(reservation *model.Reservation) error {
	if err := validation.Struct(v.validate, reservation); err != nil {
		return err
	}

	switch reservation.Kind {
	case model.ReservationKindVehicle:
		if reservation.Room != nil {
			return validation.Single("Room", "vehicle reservations cannot borrow items")
		}
	case model.ReservationKindRoom:
		if reservation.Vehicle != nil {
			return validation.Single("Vehicle", "room reservations cannot assign a driver")
		}
	}

	return nil
}

// ValidateUpdate checks a patch against the kind of the reservation it applies to.
func (v *ReservationValidator) ValidateUpdate(update *model.ReservationUpdate, kind model.ReservationKind) error {
	if err := validation.Struct(v.validate, update); err != nil {
		return err
	}

	if update.StartTime != nil && update.EndTime != nil && !update.EndTime.After(*update.StartTime) {
		return validation.Single("EndTime", "end_time must be after start_time")
	}

	if update.DriverRef != nil {
		if kind != model.ReservationKindVehicle {
			return validation.Single("DriverRef", "only vehicle reservations have a driver")
		}
		if *update.DriverRef != "" && !validation.IsAssetCode(*update.DriverRef) {
			return validation.Single("DriverRef", "DriverRef must contain only A-Z, 0-9, '-' or '_' (max 64)")
		}
	}

	if update.Items != nil && kind != model.ReservationKindRoom {
		return validation.Single("Items", "only room reservations can borrow items")
	}

	return nil
}
