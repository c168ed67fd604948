package model

import "time"

// ReservationLock is an advisory lock on one contended resource key
// (asset:<code>, driver:<ref> or item:<code>).
type ReservationLock struct {
	ID        string    `bson:"_id" json:"id"`
	Owner     string    `bson:"owner" json:"owner"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
