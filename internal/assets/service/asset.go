package service

import (
	"context"
	"errors"
	"sync"
	"time"

	assetserrors "sarpras/internal/assets/errors"
	"sarpras/internal/assets/repository"
	"sarpras/internal/assets/validator"
	"sarpras/internal/reservations/availability"
	"sarpras/pkg/config"
	apperrors "sarpras/pkg/errors"
	"sarpras/pkg/model"
	"sarpras/pkg/sanitizer"
	"sarpras/pkg/validation"
)

type AssetService interface {
	Create(ctx context.Context, asset *model.Asset) error
	GetByID(ctx context.Context, id string) (*model.Asset, error)
	GetByCode(ctx context.Context, code string) (*model.Asset, error)
	GetAll(ctx context.Context, kind model.AssetKind, limit int, offset int64) ([]*model.Asset, int64, error)
	Update(ctx context.Context, id string, updates *model.AssetUpdate) (*model.Asset, error)
	Delete(ctx context.Context, id string) error
	StockLevel(ctx context.Context, code string, start, end time.Time) (availability.StockLevel, error)
}

// StockReader reports item usage over a window.
type StockReader interface {
	RemainingStock(ctx context.Context, itemCode string, start, end time.Time, excludeID string) (availability.StockLevel, error)
}

type assetService struct {
	repo      repository.AssetRepository
	stock     StockReader
	validator *validator.AssetValidator
	cfg       *config.Config
}

func NewAssetService(
	repo repository.AssetRepository,
	stock StockReader,
	validator *validator.AssetValidator,
	cfg *config.Config,
) AssetService {
	return &assetService{
		repo:      repo,
		stock:     stock,
		validator: validator,
		cfg:       cfg,
	}
}

func (s *assetService) Create(ctx context.Context, asset *model.Asset) error {
	asset.ID = ""
	sanitizer.SanitizeAsset(asset)
	if err := s.validator.Validate(asset); err != nil {
		s.cfg.Log.Warn("Asset validation failed", "error", err)
		return validation.ToAppError("Asset validation failed", err)
	}

	if _, err := s.repo.FindByCode(ctx, asset.Code); err == nil {
		return duplicateCode(asset.Code)
	} else if !errors.Is(err, assetserrors.ErrNotFound) {
		return apperrors.Internal("Failed to check asset code", err)
	}

	if err := s.repo.Create(ctx, asset); err != nil {
		if errors.Is(err, assetserrors.ErrDuplicateCode) {
			return duplicateCode(asset.Code)
		}
		s.cfg.Log.Error("Failed to create asset", "code", asset.Code, "error", err)
		return apperrors.Internal("Failed to create asset", err)
	}

	s.cfg.Log.Info("Asset created successfully",
		"id", asset.ID,
		"code", asset.Code,
		"kind", asset.Kind,
	)
	return nil
}

func (s *assetService) GetByID(ctx context.Context, id string) (*model.Asset, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Asset ID cannot be empty")
	}

	asset, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, translateError(err, "Asset", id, "Failed to retrieve asset")
	}
	return asset, nil
}

func (s *assetService) GetByCode(ctx context.Context, code string) (*model.Asset, error) {
	code = sanitizer.SanitizeCode(code)
	if code == "" {
		return nil, apperrors.InvalidInput("Asset code cannot be empty")
	}

	asset, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		return nil, translateError(err, "Asset", code, "Failed to retrieve asset")
	}
	return asset, nil
}

func (s *assetService) GetAll(ctx context.Context, kind model.AssetKind, limit int, offset int64) ([]*model.Asset, int64, error) {
	if kind != "" && !kind.Valid() {
		return nil, 0, apperrors.InvalidInput("kind must be one of: room, vehicle, item, other")
	}

	var count int64
	var assets []*model.Asset
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx, kind)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count assets", "error", errCount)
			errCount = apperrors.Internal("Failed to count assets", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		assets, errFind = s.repo.FindAll(ctx, kind, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list assets", "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve assets", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return assets, count, nil
}

func (s *assetService) Update(ctx context.Context, id string, updates *model.AssetUpdate) (*model.Asset, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Asset ID cannot be empty")
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, translateError(err, "Asset", id, "Failed to check asset existence")
	}

	sanitizer.SanitizeAssetUpdate(updates)
	if err := s.validator.ValidateUpdate(updates, existing.Kind); err != nil {
		s.cfg.Log.Warn("Asset update validation failed", "id", id, "error", err)
		return nil, validation.ToAppError("Invalid update input", err)
	}

	merged := mergeAssetUpdates(existing, updates)
	if err := s.validator.Validate(merged); err != nil {
		return nil, validation.ToAppError("Asset validation failed", err)
	}

	if err := s.repo.Update(ctx, id, merged); err != nil {
		s.cfg.Log.Error("Failed to update asset", "id", id, "error", err)
		return nil, translateError(err, "Asset", id, "Failed to update asset")
	}

	s.cfg.Log.Info("Asset updated successfully", "id", id)
	return merged, nil
}

func (s *assetService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("Asset ID cannot be empty")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return translateError(err, "Asset", id, "Failed to delete asset")
	}

	s.cfg.Log.Info("Asset deleted successfully", "id", id)
	return nil
}

// StockLevel reports an item's free quantity in [start, end).
func (s *assetService) StockLevel(ctx context.Context, code string, start, end time.Time) (availability.StockLevel, error) {
	asset, err := s.GetByCode(ctx, code)
	if err != nil {
		return availability.StockLevel{}, err
	}
	if asset.Kind != model.AssetKindItem {
		return availability.StockLevel{}, apperrors.InvalidInput("stock levels are only tracked for item assets")
	}

	level, err := s.stock.RemainingStock(ctx, asset.Code, start.UTC(), end.UTC(), "")
	if err != nil {
		if errors.Is(err, availability.ErrInvalidWindow) {
			return availability.StockLevel{}, apperrors.InvalidInput("start_time must be before end_time")
		}
		s.cfg.Log.Error("Failed to compute stock level", "code", asset.Code, "error", err)
		return availability.StockLevel{}, translateError(err, "Asset", asset.Code, "Failed to compute stock level")
	}
	return level, nil
}

func mergeAssetUpdates(existing *model.Asset, updates *model.AssetUpdate) *model.Asset {
	merged := *existing

	if updates.Name != "" {
		merged.Name = updates.Name
	}
	if updates.StockCount != nil {
		stock := *updates.StockCount
		merged.StockCount = &stock
	}
	if updates.Location != nil {
		merged.Location = *updates.Location
	}
	if updates.Description != nil {
		merged.Description = *updates.Description
	}

	return &merged
}

func duplicateCode(code string) error {
	return apperrors.Conflict("Asset code already exists").WithDetails(map[string]any{"code": code})
}

func translateError(err error, resource, id, message string) error {
	switch {
	case errors.Is(err, assetserrors.ErrNotFound):
		return apperrors.NotFoundWithID(resource, id)
	case errors.Is(err, assetserrors.ErrInvalidID):
		return apperrors.InvalidInput("Invalid asset ID format")
	}
	return apperrors.Internal(message, err)
}
