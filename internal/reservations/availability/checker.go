// Package availability decides whether a reservation can be committed
// without double-booking an asset or driver or over-allocating shared items.
//
// The checker is read-only. It never writes and takes no locks; callers that
// need the verdict to hold until their write must serialize on the contended
// resources themselves.
package availability

import (
	"context"
	"errors"
	"time"

	assetserrors "sarpras/internal/assets/errors"
	"sarpras/pkg/model"
)

var ErrInvalidWindow = errors.New("availability: start time must be before end time")

// OverlapQuery selects reservations whose [StartTime, EndTime) intersects
// [Start, End). AssetCode and DriverRef are OR-ed together; ItemCodes matches
// reservations borrowing any of the codes. With no narrowing fields set every
// overlapping reservation is returned.
type OverlapQuery struct {
	Start     time.Time
	End       time.Time
	ExcludeID string
	AssetCode string
	DriverRef string
	ItemCodes []string
}

type ReservationStore interface {
	FindOverlapping(ctx context.Context, q OverlapQuery) ([]*model.Reservation, error)
}

// AssetRegistry reports a missing asset as assetserrors.ErrNotFound.
type AssetRegistry interface {
	FindByCode(ctx context.Context, code string) (*model.Asset, error)
}

type StockLevel struct {
	ItemCode  string `json:"item_code"`
	Stock     int    `json:"stock"`
	Used      int    `json:"used"`
	Remaining int    `json:"remaining"`
}

type Checker struct {
	store  ReservationStore
	assets AssetRegistry
}

func NewChecker(store ReservationStore, assets AssetRegistry) *Checker {
	return &Checker{
		store:  store,
		assets: assets,
	}
}

// Check runs the exclusivity check and then the stock check, returning the
// first conflict found or nil when the candidate is committable.
func (c *Checker) Check(ctx context.Context, candidate *model.Reservation, excludeID string) (*Conflict, error) {
	conflict, err := c.CheckExclusivity(ctx, candidate, excludeID)
	if err != nil || conflict != nil {
		return conflict, err
	}
	return c.CheckStock(ctx, candidate, excludeID)
}

// CheckExclusivity reports the first overlapping reservation, other than
// excludeID, that shares the candidate's asset or, for vehicles, its driver.
func (c *Checker) CheckExclusivity(ctx context.Context, candidate *model.Reservation, excludeID string) (*Conflict, error) {
	if !candidate.StartTime.Before(candidate.EndTime) {
		return nil, ErrInvalidWindow
	}

	driverRef := candidate.DriverRef()

	overlapping, err := c.store.FindOverlapping(ctx, OverlapQuery{
		Start:     candidate.StartTime,
		End:       candidate.EndTime,
		ExcludeID: excludeID,
		AssetCode: candidate.AssetCode,
		DriverRef: driverRef,
	})
	if err != nil {
		return nil, err
	}

	for _, existing := range overlapping {
		if !counts(existing, candidate.StartTime, candidate.EndTime, excludeID) {
			continue
		}
		if existing.AssetCode == candidate.AssetCode {
			return assetConflict(candidate.AssetCode, existing.ID), nil
		}
		if driverRef != "" && existing.DriverRef() == driverRef {
			return driverConflict(driverRef, existing.ID), nil
		}
	}

	return nil, nil
}

// CheckStock verifies that every item a room reservation borrows still has
// enough stock once usage by all overlapping reservations, in any room, is
// taken into account.
func (c *Checker) CheckStock(ctx context.Context, candidate *model.Reservation, excludeID string) (*Conflict, error) {
	if candidate.Kind != model.ReservationKindRoom {
		return nil, nil
	}

	requested := aggregate(candidate.BorrowedItems())
	if len(requested) == 0 {
		return nil, nil
	}
	if !candidate.StartTime.Before(candidate.EndTime) {
		return nil, ErrInvalidWindow
	}

	codes := make([]string, len(requested))
	for i, line := range requested {
		codes[i] = line.ItemCode
	}

	used, err := c.usage(ctx, candidate.StartTime, candidate.EndTime, excludeID, codes)
	if err != nil {
		return nil, err
	}

	for _, line := range requested {
		asset, err := c.lookupItem(ctx, line.ItemCode)
		if err != nil {
			return nil, err
		}

		stock := asset.Stock()
		if asset == nil || asset.Kind != model.AssetKindItem || stock <= 0 {
			return itemUnavailable(line.ItemCode), nil
		}

		if used[line.ItemCode]+line.Quantity > stock {
			return stockExceeded(line.ItemCode, max(0, stock-used[line.ItemCode])), nil
		}
	}

	return nil, nil
}

// RemainingStock reports how much of an item is free in [start, end).
func (c *Checker) RemainingStock(ctx context.Context, itemCode string, start, end time.Time, excludeID string) (StockLevel, error) {
	if !start.Before(end) {
		return StockLevel{}, ErrInvalidWindow
	}

	asset, err := c.assets.FindByCode(ctx, itemCode)
	if err != nil {
		return StockLevel{}, err
	}

	used, err := c.usage(ctx, start, end, excludeID, []string{itemCode})
	if err != nil {
		return StockLevel{}, err
	}

	level := StockLevel{
		ItemCode: itemCode,
		Stock:    asset.Stock(),
		Used:     used[itemCode],
	}
	level.Remaining = max(0, level.Stock-level.Used)
	return level, nil
}

func (c *Checker) usage(ctx context.Context, start, end time.Time, excludeID string, codes []string) (map[string]int, error) {
	overlapping, err := c.store.FindOverlapping(ctx, OverlapQuery{
		Start:     start,
		End:       end,
		ExcludeID: excludeID,
		ItemCodes: codes,
	})
	if err != nil {
		return nil, err
	}

	used := make(map[string]int, len(codes))
	for _, existing := range overlapping {
		if !counts(existing, start, end, excludeID) {
			continue
		}
		for _, item := range existing.BorrowedItems() {
			if item.Quantity > 0 {
				used[item.ItemCode] += item.Quantity
			}
		}
	}
	return used, nil
}

// lookupItem maps a missing asset to (nil, nil) so the caller reports the
// item as unavailable. Other registry errors are returned unchanged.
func (c *Checker) lookupItem(ctx context.Context, code string) (*model.Asset, error) {
	asset, err := c.assets.FindByCode(ctx, code)
	if errors.Is(err, assetserrors.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return asset, nil
}

// counts re-applies the store predicates so a loose store cannot produce
// false conflicts.
func counts(existing *model.Reservation, start, end time.Time, excludeID string) bool {
	if existing == nil {
		return false
	}
	if excludeID != "" && existing.ID == excludeID {
		return false
	}
	return existing.Overlaps(start, end)
}

// aggregate sums quantities per item code, keeping first-seen order and
// ignoring non-positive quantities.
func aggregate(items []model.BorrowedItem) []model.BorrowedItem {
	index := make(map[string]int, len(items))
	out := make([]model.BorrowedItem, 0, len(items))

	for _, item := range items {
		if item.Quantity <= 0 {
			continue
		}
		if i, ok := index[item.ItemCode]; ok {
			out[i].Quantity += item.Quantity
			continue
		}
		index[item.ItemCode] = len(out)
		out = append(out, item)
	}
	return out
}
