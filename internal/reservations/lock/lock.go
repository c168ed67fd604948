// Package lock serializes writers that contend for the same asset, driver or
// item. A reservation write holds every key it touches across check and insert.
package lock

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	reservationserrors "sarpras/internal/reservations/errors"
	"sarpras/pkg/logger"
	"sarpras/pkg/model"

	"github.com/google/uuid"
)

const (
	assetPrefix  = "asset:"
	driverPrefix = "driver:"
	itemPrefix   = "item:"
)

// Backend stores advisory locks. Acquire reports false without error when the
// key is held by another live owner. Release must only remove a key still
// owned by owner.
type Backend interface {
	Acquire(ctx context.Context, key, owner string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key, owner string) error
}

type Options struct {
	TTL           time.Duration
	WaitTimeout   time.Duration
	RetryInterval time.Duration
}

type Manager struct {
	backend Backend
	opts    Options
	log     *logger.Logger
}

func NewManager(backend Backend, opts Options, log *logger.Logger) *Manager {
	return &Manager{
		backend: backend,
		opts:    opts,
		log:     log,
	}
}

// Keys lists the lock keys a reservation contends on, sorted and de-duplicated.
func Keys(reservations ...*model.Reservation) []string {
	var keys []string
	for _, r := range reservations {
		if r == nil {
			continue
		}
		if r.AssetCode != "" {
			keys = append(keys, assetPrefix+r.AssetCode)
		}
		if ref := r.DriverRef(); ref != "" {
			keys = append(keys, driverPrefix+ref)
		}
		for _, item := range r.BorrowedItems() {
			if item.ItemCode != "" && item.Quantity > 0 {
				keys = append(keys, itemPrefix+item.ItemCode)
			}
		}
	}
	slices.Sort(keys)
	return slices.Compact(keys)
}

// Held is a set of acquired keys sharing one owner token.
type Held struct {
	manager *Manager
	owner   string
	keys    []string
}

func (h *Held) Keys() []string {
	return h.keys
}

// Release frees every held key. It uses a fresh context so locks are still
// released when the request context has already been cancelled.
func (h *Held) Release() {
	if h == nil || len(h.keys) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), h.manager.opts.WaitTimeout+time.Second)
	defer cancel()
	h.manager.release(ctx, h.owner, h.keys)
	h.keys = nil
}

// Acquire takes every key in sorted order. A key held by someone else is
// retried every RetryInterval until WaitTimeout elapses, after which all
// keys taken so far are released and ErrLockTimeout is returned.
func (m *Manager) Acquire(ctx context.Context, keys []string) (*Held, error) {
	keys = slices.Clone(keys)
	slices.Sort(keys)
	keys = slices.Compact(keys)

	owner := uuid.NewString()
	held := &Held{manager: m, owner: owner}
	deadline := time.Now().Add(m.opts.WaitTimeout)

	for _, key := range keys {
		if err := m.acquireOne(ctx, key, owner, deadline); err != nil {
			held.Release()
			return nil, err
		}
		held.keys = append(held.keys, key)
	}

	m.log.Debug("Reservation locks acquired", "owner", owner, "keys", keys)
	return held, nil
}

func (m *Manager) acquireOne(ctx context.Context, key, owner string, deadline time.Time) error {
	for {
		ok, err := m.backend.Acquire(ctx, key, owner, m.opts.TTL)
		if err != nil {
			return fmt.Errorf("failed to acquire lock %s: %w", key, err)
		}
		if ok {
			return nil
		}

		if !time.Now().Add(m.opts.RetryInterval).Before(deadline) {
			m.log.Warn("Timed out waiting for reservation lock", "key", key)
			return fmt.Errorf("%w: %s", reservationserrors.ErrLockTimeout, key)
		}

		timer := time.NewTimer(m.opts.RetryInterval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

func (m *Manager) release(ctx context.Context, owner string, keys []string) {
	var errs []error
	for _, key := range keys {
		if err := m.backend.Release(ctx, key, owner); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", key, err))
		}
	}
	if err := errors.Join(errs...); err != nil {
		m.log.Warn("Failed to release reservation locks", "owner", owner, "error", err)
	}
}
