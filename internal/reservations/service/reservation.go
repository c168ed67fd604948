package service

import (
	"context"
	"errors"
	"sync"

	assetserrors "sarpras/internal/assets/errors"
	driverserrors "sarpras/internal/drivers/errors"
	"sarpras/internal/reservations/availability"
	reservationserrors "sarpras/internal/reservations/errors"
	"sarpras/internal/reservations/events"
	"sarpras/internal/reservations/lock"
	"sarpras/internal/reservations/repository"
	"sarpras/internal/reservations/validator"
	"sarpras/pkg/config"
	apperrors "sarpras/pkg/errors"
	"sarpras/pkg/model"
	"sarpras/pkg/sanitizer"
	"sarpras/pkg/validation"
)

const resourceBusyMessage = "resource is currently being booked by another request"

type ReservationService interface {
	Create(ctx context.Context, reservation *model.Reservation) error
	GetByID(ctx context.Context, id string) (*model.Reservation, error)
	GetAll(ctx context.Context, limit int, offset int64) ([]*model.Reservation, int64, error)
	Update(ctx context.Context, id string, updates *model.ReservationUpdate) (*model.Reservation, error)
	Delete(ctx context.Context, id string) error
	Search(ctx context.Context, filter model.ReservationFilter, limit int, offset int64) ([]*model.Reservation, int64, error)
	CheckAvailability(ctx context.Context, candidate *model.Reservation, excludeID string) (*availability.Conflict, error)
}

type DriverLookup interface {
	FindByCode(ctx context.Context, code string) (*model.Driver, error)
}

type reservationService struct {
	repo      repository.ReservationRepository
	assets    availability.AssetRegistry
	drivers   DriverLookup
	checker   *availability.Checker
	locks     *lock.Manager
	events    events.Publisher
	validator *validator.ReservationValidator
	cfg       *config.Config
}

func NewReservationService(
	repo repository.ReservationRepository,
	assets availability.AssetRegistry,
	drivers DriverLookup,
	locks *lock.Manager,
	publisher events.Publisher,
	validator *validator.ReservationValidator,
	cfg *config.Config,
) ReservationService {
	return &reservationService{
		repo:      repo,
		assets:    assets,
		drivers:   drivers,
		checker:   availability.NewChecker(repo, assets),
		locks:     locks,
		events:    publisher,
		validator: validator,
		cfg:       cfg,
	}
}

func (s *reservationService) Create(ctx context.Context, reservation *model.Reservation) error {
	reservation.ID = ""
	if err := s.prepare(ctx, reservation); err != nil {
		return err
	}

	held, err := s.acquire(ctx, reservation)
	if err != nil {
		return err
	}
	defer held.Release()

	err = s.repo.ExecuteTransaction(ctx, func(txCtx context.Context) error {
		if err := s.ensureAvailable(txCtx, reservation, ""); err != nil {
			return err
		}
		if err := s.repo.Create(txCtx, reservation); err != nil {
			return apperrors.Internal("Failed to create reservation", err)
		}
		return nil
	})
	if err != nil {
		s.logFailure("Failed to create reservation", err, "asset_code", reservation.AssetCode)
		return err
	}

	s.cfg.Log.Info("Reservation created successfully",
		"id", reservation.ID,
		"kind", reservation.Kind,
		"asset_code", reservation.AssetCode,
		"start_time", reservation.StartTime,
		"end_time", reservation.EndTime,
	)
	s.publish(ctx, model.EventReservationCreated, reservation)
	return nil
}

func (s *reservationService) GetByID(ctx context.Context, id string) (*model.Reservation, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Reservation ID cannot be empty")
	}

	reservation, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.translateLookupError(err, id, "Failed to retrieve reservation")
	}

	return reservation, nil
}

func (s *reservationService) GetAll(ctx context.Context, limit int, offset int64) ([]*model.Reservation, int64, error) {
	var count int64
	var reservations []*model.Reservation
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count reservations", "error", errCount)
			errCount = apperrors.Internal("Failed to count reservations", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		reservations, errFind = s.repo.FindAll(ctx, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list reservations", "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve reservations", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return reservations, count, nil
}

func (s *reservationService) Update(ctx context.Context, id string, updates *model.ReservationUpdate) (*model.Reservation, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Reservation ID cannot be empty")
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.translateLookupError(err, id, "Failed to check reservation existence")
	}

	sanitizer.SanitizeReservationUpdate(updates)
	if err := s.validator.ValidateUpdate(updates, existing.Kind); err != nil {
		s.cfg.Log.Warn("Reservation update validation failed", "id", id, "error", err)
		return nil, validation.ToAppError("Invalid update input", err)
	}

	merged := mergeReservationUpdates(existing, updates)
	if err := s.prepare(ctx, merged); err != nil {
		return nil, err
	}

	held, err := s.acquire(ctx, merged)
	if err != nil {
		return nil, err
	}
	defer held.Release()

	err = s.repo.ExecuteTransaction(ctx, func(txCtx context.Context) error {
		if err := s.ensureAvailable(txCtx, merged, id); err != nil {
			return err
		}
		if err := s.repo.Update(txCtx, id, merged); err != nil {
			return s.translateLookupError(err, id, "Failed to update reservation")
		}
		return nil
	})
	if err != nil {
		s.logFailure("Failed to update reservation", err, "id", id)
		return nil, err
	}

	s.cfg.Log.Info("Reservation updated successfully", "id", id)
	s.publish(ctx, model.EventReservationUpdated, merged)
	return merged, nil
}

func (s *reservationService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("Reservation ID cannot be empty")
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return s.translateLookupError(err, id, "Failed to check reservation existence")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return s.translateLookupError(err, id, "Failed to delete reservation")
	}

	s.cfg.Log.Info("Reservation deleted successfully", "id", id)
	s.publish(ctx, model.EventReservationDeleted, existing)
	return nil
}

func (s *reservationService) Search(ctx context.Context, filter model.ReservationFilter, limit int, offset int64) ([]*model.Reservation, int64, error) {
	if filter.Kind != "" && !filter.Kind.Valid() {
		return nil, 0, apperrors.InvalidInput("kind must be one of: room, vehicle")
	}
	if filter.StartTime != nil && filter.EndTime != nil && !filter.StartTime.Before(*filter.EndTime) {
		return nil, 0, apperrors.InvalidInput("start_time must be before end_time")
	}
	filter.AssetCode = sanitizer.SanitizeCode(filter.AssetCode)
	filter.DriverRef = sanitizer.SanitizeCode(filter.DriverRef)

	var count int64
	var reservations []*model.Reservation
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		var err error
		count, err = s.repo.CountSearch(ctx, filter)
		if err != nil {
			s.cfg.Log.Error("Failed to count reservations by search", "filter", filter, "error", err)
			errCount = apperrors.Internal("Failed to count reservations", err)
		}
	}()

	go func() {
		defer wg.Done()
		var err error
		reservations, err = s.repo.Search(ctx, filter, limit, offset)
		if err != nil {
			s.cfg.Log.Error("Failed to search reservations",
				"filter", filter,
				"limit", limit,
				"offset", offset,
				"error", err,
			)
			errFind = apperrors.Internal("Failed to search reservations", err)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	s.cfg.Log.Debug("Reservation search completed",
		"count", len(reservations),
		"total_count", count,
	)
	return reservations, count, nil
}

// CheckAvailability runs the full create-time checks without locking or writing.
func (s *reservationService) CheckAvailability(ctx context.Context, candidate *model.Reservation, excludeID string) (*availability.Conflict, error) {
	if err := s.prepare(ctx, candidate); err != nil {
		return nil, err
	}

	conflict, err := s.checker.Check(ctx, candidate, excludeID)
	if err != nil {
		s.cfg.Log.Error("Failed to check availability", "asset_code", candidate.AssetCode, "error", err)
		return nil, apperrors.Internal("Failed to check availability", err)
	}
	return conflict, nil
}

// --- Helpers ---

// prepare sanitizes and validates r, then resolves its asset and driver.
func (s *reservationService) prepare(ctx context.Context, r *model.Reservation) error {
	sanitizer.SanitizeReservation(r)
	if err := s.validator.Validate(r); err != nil {
		s.cfg.Log.Warn("Reservation validation failed", "error", err)
		return validation.ToAppError("Reservation validation failed", err)
	}
	if err := s.resolveAsset(ctx, r); err != nil {
		return err
	}
	return s.resolveDriver(ctx, r)
}

func (s *reservationService) resolveAsset(ctx context.Context, r *model.Reservation) error {
	asset, err := s.assets.FindByCode(ctx, r.AssetCode)
	if err != nil {
		if errors.Is(err, assetserrors.ErrNotFound) {
			return apperrors.Validation("Unknown asset", map[string]any{"asset_code": r.AssetCode})
		}
		return apperrors.Internal("Failed to resolve asset", err)
	}

	if want := r.Kind.AssetKind(); asset.Kind != want {
		return apperrors.Validation("Asset kind does not match reservation kind", map[string]any{
			"asset_code": r.AssetCode,
			"asset_kind": asset.Kind,
			"expected":   want,
		})
	}

	r.AssetName = asset.Name
	return nil
}

func (s *reservationService) resolveDriver(ctx context.Context, r *model.Reservation) error {
	ref := r.DriverRef()
	if ref == "" {
		return nil
	}

	driver, err := s.drivers.FindByCode(ctx, ref)
	if err != nil {
		if errors.Is(err, driverserrors.ErrNotFound) {
			return apperrors.Validation("Unknown driver", map[string]any{"driver_ref": ref})
		}
		return apperrors.Internal("Failed to resolve driver", err)
	}
	if !driver.IsActive() {
		return apperrors.Validation("Driver is not active", map[string]any{"driver_ref": ref})
	}
	return nil
}

func (s *reservationService) acquire(ctx context.Context, r *model.Reservation) (*lock.Held, error) {
	held, err := s.locks.Acquire(ctx, lock.Keys(r))
	if err != nil {
		if errors.Is(err, reservationserrors.ErrLockTimeout) {
			return nil, apperrors.ResourceBusy(resourceBusyMessage)
		}
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return nil, apperrors.Timeout("Timed out waiting for reservation lock")
		}
		s.cfg.Log.Error("Failed to acquire reservation locks", "asset_code", r.AssetCode, "error", err)
		return nil, apperrors.Internal("Failed to acquire reservation lock", err)
	}
	return held, nil
}

func (s *reservationService) ensureAvailable(ctx context.Context, r *model.Reservation, excludeID string) error {
	conflict, err := s.checker.Check(ctx, r, excludeID)
	if err != nil {
		return apperrors.Internal("Failed to check availability", err)
	}
	if conflict != nil {
		return conflictError(conflict)
	}
	return nil
}

func conflictError(c *availability.Conflict) *apperrors.AppError {
	details := map[string]any{
		"reason":   c.Type,
		"resource": c.Resource,
	}
	if c.ConflictingID != "" {
		details["conflicting_id"] = c.ConflictingID
	}
	if c.Remaining != nil {
		details["remaining"] = *c.Remaining
	}
	return apperrors.Conflict(c.Reason).WithDetails(details)
}

func (s *reservationService) translateLookupError(err error, id, message string) error {
	if errors.Is(err, reservationserrors.ErrNotFound) {
		return apperrors.NotFoundWithID("Reservation", id)
	}
	if errors.Is(err, reservationserrors.ErrInvalidID) {
		return apperrors.InvalidInput("Invalid reservation ID format")
	}
	if apperrors.IsAppError(err) {
		return err
	}
	return apperrors.Internal(message, err)
}

func (s *reservationService) publish(ctx context.Context, eventType string, r *model.Reservation) {
	if err := s.events.Publish(ctx, eventType, r); err != nil {
		s.cfg.Log.Warn("Failed to publish reservation event",
			"event_type", eventType,
			"id", r.ID,
			"error", err,
		)
	}
}

// logFailure keeps expected outcomes such as conflicts out of the error log.
func (s *reservationService) logFailure(msg string, err error, args ...any) {
	args = append(args, "error", err)
	if appErr := apperrors.AsAppError(err); appErr != nil && appErr.StatusCode() < 500 {
		s.cfg.Log.Info(msg, args...)
		return
	}
	s.cfg.Log.Error(msg, args...)
}

func mergeReservationUpdates(existing *model.Reservation, updates *model.ReservationUpdate) *model.Reservation {
	merged := *existing

	if updates.AssetCode != "" {
		merged.AssetCode = updates.AssetCode
	}
	if updates.StartTime != nil {
		merged.StartTime = *updates.StartTime
	}
	if updates.EndTime != nil {
		merged.EndTime = *updates.EndTime
	}
	if updates.Purpose != nil {
		merged.Purpose = *updates.Purpose
	}

	if existing.Vehicle != nil {
		v := *existing.Vehicle
		merged.Vehicle = &v
	}
	if updates.DriverRef != nil {
		if *updates.DriverRef == "" {
			merged.Vehicle = nil
		} else {
			merged.Vehicle = &model.VehicleAssignment{DriverRef: *updates.DriverRef}
		}
	}

	if existing.Room != nil {
		merged.Room = &model.RoomAssignment{Items: append([]model.BorrowedItem(nil), existing.Room.Items...)}
	}
	if updates.Items != nil {
		if len(*updates.Items) == 0 {
			merged.Room = nil
		} else {
			merged.Room = &model.RoomAssignment{Items: *updates.Items}
		}
	}

	return &merged
}
