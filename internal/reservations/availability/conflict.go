package availability

import "fmt"

type ConflictType string

const (
	ConflictAsset           ConflictType = "asset_booked"
	ConflictDriver          ConflictType = "driver_assigned"
	ConflictItemUnavailable ConflictType = "item_unavailable"
	ConflictStockExceeded   ConflictType = "stock_exceeded"
)

// Conflict explains why a candidate reservation cannot be committed.
// Reason is safe to show to end users.
type Conflict struct {
	Type          ConflictType `json:"type"`
	Resource      string       `json:"resource"`
	Reason        string       `json:"reason"`
	ConflictingID string       `json:"conflicting_id,omitempty"`
	Remaining     *int         `json:"remaining,omitempty"`
}

func (c *Conflict) String() string {
	return c.Reason
}

func assetConflict(assetCode, reservationID string) *Conflict {
	return &Conflict{
		Type:          ConflictAsset,
		Resource:      assetCode,
		Reason:        fmt.Sprintf("asset %s is already booked in that window", assetCode),
		ConflictingID: reservationID,
	}
}

func driverConflict(driverRef, reservationID string) *Conflict {
	return &Conflict{
		Type:          ConflictDriver,
		Resource:      driverRef,
		Reason:        fmt.Sprintf("driver %s is already assigned in that window", driverRef),
		ConflictingID: reservationID,
	}
}

func itemUnavailable(itemCode string) *Conflict {
	return &Conflict{
		Type:     ConflictItemUnavailable,
		Resource: itemCode,
		Reason:   fmt.Sprintf("item %s is not available", itemCode),
	}
}

func stockExceeded(itemCode string, remaining int) *Conflict {
	return &Conflict{
		Type:      ConflictStockExceeded,
		Resource:  itemCode,
		Reason:    fmt.Sprintf("requested quantity of %s exceeds remaining stock of %d", itemCode, remaining),
		Remaining: &remaining,
	}
}
