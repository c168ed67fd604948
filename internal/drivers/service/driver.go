package service

import (
	"context"
	"errors"
	"sync"

	driverserrors "sarpras/internal/drivers/errors"
	"sarpras/internal/drivers/repository"
	"sarpras/internal/drivers/validator"
	"sarpras/pkg/config"
	apperrors "sarpras/pkg/errors"
	"sarpras/pkg/model"
	"sarpras/pkg/sanitizer"
	"sarpras/pkg/validation"
)

type DriverService interface {
	Create(ctx context.Context, driver *model.Driver) error
	GetByID(ctx context.Context, id string) (*model.Driver, error)
	GetByCode(ctx context.Context, code string) (*model.Driver, error)
	GetAll(ctx context.Context, limit int, offset int64) ([]*model.Driver, int64, error)
	Update(ctx context.Context, id string, updates *model.DriverUpdate) (*model.Driver, error)
	Delete(ctx context.Context, id string) error
}

type driverService struct {
	repo      repository.DriverRepository
	validator *validator.DriverValidator
	cfg       *config.Config
}

func NewDriverService(repo repository.DriverRepository, validator *validator.DriverValidator, cfg *config.Config) DriverService {
	return &driverService{
		repo:      repo,
		validator: validator,
		cfg:       cfg,
	}
}

func (s *driverService) Create(ctx context.Context, driver *model.Driver) error {
	driver.ID = ""
	sanitizer.SanitizeDriver(driver, s.cfg.DefaultPhoneRegion)
	if driver.Active == nil {
		active := true
		driver.Active = &active
	}
	if err := s.validator.Validate(driver); err != nil {
		s.cfg.Log.Warn("Driver validation failed", "error", err)
		return validation.ToAppError("Driver validation failed", err)
	}

	if _, err := s.repo.FindByCode(ctx, driver.Code); err == nil {
		return duplicateCode(driver.Code)
	} else if !errors.Is(err, driverserrors.ErrNotFound) {
		return apperrors.Internal("Failed to check driver code", err)
	}

	if err := s.repo.Create(ctx, driver); err != nil {
		if errors.Is(err, driverserrors.ErrDuplicateCode) {
			return duplicateCode(driver.Code)
		}
		s.cfg.Log.Error("Failed to create driver", "code", driver.Code, "error", err)
		return apperrors.Internal("Failed to create driver", err)
	}

	s.cfg.Log.Info("Driver created successfully", "id", driver.ID, "code", driver.Code)
	return nil
}

func (s *driverService) GetByID(ctx context.Context, id string) (*model.Driver, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Driver ID cannot be empty")
	}

	driver, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, translateError(err, id, "Failed to retrieve driver")
	}
	return driver, nil
}

func (s *driverService) GetByCode(ctx context.Context, code string) (*model.Driver, error) {
	code = sanitizer.SanitizeCode(code)
	if code == "" {
		return nil, apperrors.InvalidInput("Driver code cannot be empty")
	}

	driver, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		return nil, translateError(err, code, "Failed to retrieve driver")
	}
	return driver, nil
}

func (s *driverService) GetAll(ctx context.Context, limit int, offset int64) ([]*model.Driver, int64, error) {
	var count int64
	var drivers []*model.Driver
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count drivers", "error", errCount)
			errCount = apperrors.Internal("Failed to count drivers", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		drivers, errFind = s.repo.FindAll(ctx, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list drivers", "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve drivers", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}
	return drivers, count, nil
}

func (s *driverService) Update(ctx context.Context, id string, updates *model.DriverUpdate) (*model.Driver, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Driver ID cannot be empty")
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, translateError(err, id, "Failed to check driver existence")
	}

	sanitizer.SanitizeDriverUpdate(updates, s.cfg.DefaultPhoneRegion)
	if err := s.validator.ValidateUpdate(updates); err != nil {
		s.cfg.Log.Warn("Driver update validation failed", "id", id, "error", err)
		return nil, validation.ToAppError("Invalid update input", err)
	}

	merged := *existing
	if updates.Name != "" {
		merged.Name = updates.Name
	}
	if updates.Phone != "" {
		merged.Phone = updates.Phone
	}
	if updates.Active != nil {
		active := *updates.Active
		merged.Active = &active
	}

	if err := s.repo.Update(ctx, id, &merged); err != nil {
		s.cfg.Log.Error("Failed to update driver", "id", id, "error", err)
		return nil, translateError(err, id, "Failed to update driver")
	}

	s.cfg.Log.Info("Driver updated successfully", "id", id, "active", merged.IsActive())
	return &merged, nil
}

func (s *driverService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("Driver ID cannot be empty")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return translateError(err, id, "Failed to delete driver")
	}

	s.cfg.Log.Info("Driver deleted successfully", "id", id)
	return nil
}

func duplicateCode(code string) error {
	return apperrors.Conflict("Driver code already exists").WithDetails(map[string]any{"code": code})
}

func translateError(err error, id, message string) error {
	switch {
	case errors.Is(err, driverserrors.ErrNotFound):
		return apperrors.NotFoundWithID("Driver", id)
	case errors.Is(err, driverserrors.ErrInvalidID):
		return apperrors.InvalidInput("Invalid driver ID format")
	}
	return apperrors.Internal(message, err)
}
