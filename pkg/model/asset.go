package model

import "time"

type AssetKind string

const (
	AssetKindRoom    AssetKind = "room"
	AssetKindVehicle AssetKind = "vehicle"
	AssetKindItem    AssetKind = "item"
	AssetKindOther   AssetKind = "other"
)

func (k AssetKind) Valid() bool {
	switch k {
	case AssetKindRoom, AssetKindVehicle, AssetKindItem, AssetKindOther:
		return true
	}
	return false
}

type Asset struct {
	ID          string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Code        string    `json:"code" bson:"code" validate:"required,asset_code"`
	Kind        AssetKind `json:"kind" bson:"kind" validate:"required,asset_kind"`
	Name        string    `json:"name" bson:"name" validate:"required,min=2,max=200"`
	StockCount  *int      `json:"stock_count,omitempty" bson:"stock_count,omitempty" validate:"omitempty,min=0,max=1000000"`
	Location    string    `json:"location,omitempty" bson:"location,omitempty" validate:"omitempty,max=200"`
	Description string    `json:"description,omitempty" bson:"description,omitempty" validate:"omitempty,max=1000"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
	UpdatedAt   time.Time `json:"updated_at,omitempty" bson:"updated_at,omitempty" validate:"omitempty"`
}

// Stock returns the item's stock count, or 0 when none is recorded.
func (a *Asset) Stock() int {
	if a == nil || a.StockCount == nil {
		return 0
	}
	return *a.StockCount
}

type AssetUpdate struct {
	Name        string  `json:"name,omitempty" validate:"omitempty,min=2,max=200"`
	StockCount  *int    `json:"stock_count,omitempty" validate:"omitempty,min=0,max=1000000"`
	Location    *string `json:"location,omitempty" validate:"omitempty,max=200"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=1000"`
}
