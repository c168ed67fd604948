package model

import "time"

const (
	EventReservationCreated = "reservation.created"
	EventReservationUpdated = "reservation.updated"
	EventReservationDeleted = "reservation.deleted"
)

type ReservationEvent struct {
	Type          string          `json:"type"`
	ReservationID string          `json:"reservation_id"`
	Kind          ReservationKind `json:"kind"`
	AssetCode     string          `json:"asset_code"`
	AssetName     string          `json:"asset_name,omitempty"`
	DriverRef     string          `json:"driver_ref,omitempty"`
	Items         []BorrowedItem  `json:"items,omitempty"`
	StartTime     time.Time       `json:"start_time"`
	EndTime       time.Time       `json:"end_time"`
	OccurredAt    time.Time       `json:"occurred_at"`
}

func NewReservationEvent(eventType string, r *Reservation, at time.Time) ReservationEvent {
	return ReservationEvent{
		Type:          eventType,
		ReservationID: r.ID,
		Kind:          r.Kind,
		AssetCode:     r.AssetCode,
		AssetName:     r.AssetName,
		DriverRef:     r.DriverRef(),
		Items:         r.BorrowedItems(),
		StartTime:     r.StartTime,
		EndTime:       r.EndTime,
		OccurredAt:    at,
	}
}
