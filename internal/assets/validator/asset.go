package validator

import (
	"sarpras/pkg/logger"
	"sarpras/pkg/model"
	"sarpras/pkg/validation"

	"github.com/go-playground/validator/v10"
)

type AssetValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewAssetValidator(log *logger.Logger) *AssetValidator {
	v := validation.New(log)
	log.Info("Asset validator initialized successfully")

	return &AssetValidator{
		validate: v,
		logger:   log,
	}
}

// Validate also enforces that stock_count is present exactly for items.
func (v *AssetValidator) Validate(asset *model.Asset) error {
	if err := validation.Struct(v.validate, asset); err != nil {
		return err
	}
	return validateStock(asset.Kind, asset.StockCount)
}

func (v *AssetValidator) ValidateUpdate(update *model.AssetUpdate, kind model.AssetKind) error {
	if err := validation.Struct(v.validate, update); err != nil {
		return err
	}
	if update.StockCount != nil && kind != model.AssetKindItem {
		return validation.Single("StockCount", "stock_count is only allowed for item assets")
	}
	return nil
}

func validateStock(kind model.AssetKind, stock *int) error {
	if kind == model.AssetKindItem && stock == nil {
		return validation.Single("StockCount", "stock_count is required for item assets")
	}
	if kind != model.AssetKindItem && stock != nil {
		return validation.Single("StockCount", "stock_count is only allowed for item assets")
	}
	return nil
}
