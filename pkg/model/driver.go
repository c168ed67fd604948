package model

import "time"

type Driver struct {
	ID        string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Code      string    `json:"code" bson:"code" validate:"required,asset_code"`
	Name      string    `json:"name" bson:"name" validate:"required,min=2,max=100"`
	Phone     string    `json:"phone" bson:"phone" validate:"required,e164"`
	Active    *bool     `json:"active,omitempty" bson:"active" validate:"omitempty"`
	CreatedAt time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty" bson:"updated_at,omitempty" validate:"omitempty"`
}

// IsActive treats a driver without an explicit flag as active.
func (d *Driver) IsActive() bool {
	return d.Active == nil || *d.Active
}

type DriverUpdate struct {
	Name   string `json:"name,omitempty" validate:"omitempty,min=2,max=100"`
	Phone  string `json:"phone,omitempty" validate:"omitempty,e164"`
	Active *bool  `json:"active,omitempty" validate:"omitempty"`
}
