package model

import (
	"time"
)

type ReservationKind string

const (
	ReservationKindRoom    ReservationKind = "room"
	ReservationKindVehicle ReservationKind = "vehicle"
)

func (k ReservationKind) Valid() bool {
	return k == ReservationKindRoom || k == ReservationKindVehicle
}

// AssetKind returns the asset kind a reservation of this kind must reference.
func (k ReservationKind) AssetKind() AssetKind {
	if k == ReservationKindVehicle {
		return AssetKindVehicle
	}
	return AssetKindRoom
}

type BorrowedItem struct {
	ItemCode string `json:"item_code" bson:"item_code" validate:"required,asset_code"`
	Quantity int    `json:"quantity" bson:"quantity" validate:"required,min=1,max=100000"`
}

type VehicleAssignment struct {
	DriverRef string `json:"driver_ref,omitempty" bson:"driver_ref,omitempty" validate:"omitempty,asset_code"`
}

type RoomAssignment struct {
	Items []BorrowedItem `json:"items,omitempty" bson:"items,omitempty" validate:"omitempty,max=50,dive"`
}

// Reservation is a time-bounded claim on an asset. Kind decides which of
// Vehicle or Room may be set; the other must stay nil.
type Reservation struct {
	ID        string             `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Kind      ReservationKind    `json:"kind" bson:"kind" validate:"required,reservation_kind"`
	AssetCode string             `json:"asset_code" bson:"asset_code" validate:"required,asset_code"`
	AssetName string             `json:"asset_name,omitempty" bson:"asset_name,omitempty" validate:"omitempty,max=200"`
	StartTime time.Time          `json:"start_time" bson:"start_time" validate:"required"`
	EndTime   time.Time          `json:"end_time" bson:"end_time" validate:"required,gtfield=StartTime"`
	Purpose   string             `json:"purpose,omitempty" bson:"purpose,omitempty" validate:"omitempty,max=500"`
	Vehicle   *VehicleAssignment `json:"vehicle,omitempty" bson:"vehicle,omitempty" validate:"omitempty"`
	Room      *RoomAssignment    `json:"room,omitempty" bson:"room,omitempty" validate:"omitempty"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at" validate:"omitempty"`
	UpdatedAt time.Time          `json:"updated_at,omitempty" bson:"updated_at,omitempty" validate:"omitempty"`
}

// DriverRef is only meaningful for vehicle reservations.
func (r *Reservation) DriverRef() string {
	if r.Kind != ReservationKindVehicle || r.Vehicle == nil {
		return ""
	}
	return r.Vehicle.DriverRef
}

// BorrowedItems is only meaningful for room reservations.
func (r *Reservation) BorrowedItems() []BorrowedItem {
	if r.Kind != ReservationKindRoom || r.Room == nil {
		return nil
	}
	return r.Room.Items
}

// Overlaps applies the half-open test: touching boundaries do not overlap.
func (r *Reservation) Overlaps(start, end time.Time) bool {
	return r.StartTime.Before(end) && r.EndTime.After(start)
}

type ReservationUpdate struct {
	AssetCode string          `json:"asset_code,omitempty" validate:"omitempty,asset_code"`
	StartTime *time.Time      `json:"start_time,omitempty" validate:"omitempty"`
	EndTime   *time.Time      `json:"end_time,omitempty" validate:"omitempty"`
	Purpose   *string         `json:"purpose,omitempty" validate:"omitempty,max=500"`
	DriverRef *string         `json:"driver_ref,omitempty" validate:"omitempty"`
	Items     *[]BorrowedItem `json:"items,omitempty" validate:"omitempty,max=50,dive"`
}

// ReservationFilter narrows reservation searches. Zero values are ignored.
type ReservationFilter struct {
	Kind      ReservationKind
	AssetCode string
	DriverRef string
	StartTime *time.Time
	EndTime   *time.Time
}
