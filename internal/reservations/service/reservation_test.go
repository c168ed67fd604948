package service

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	assetserrors "sarpras/internal/assets/errors"
	driverserrors "sarpras/internal/drivers/errors"
	"sarpras/internal/reservations/availability"
	reservationserrors "sarpras/internal/reservations/errors"
	"sarpras/internal/reservations/lock"
	"sarpras/internal/reservations/validator"
	"sarpras/pkg/config"
	mongotx "sarpras/pkg/db/mongo"
	apperrors "sarpras/pkg/errors"
	"sarpras/pkg/logger"
	"sarpras/pkg/model"
)

type mockReservationRepository struct {
	createFunc            func(ctx context.Context, reservation *model.Reservation) error
	findByIDFunc          func(ctx context.Context, id string) (*model.Reservation, error)
	findAllFunc           func(ctx context.Context, limit int, offset int64) ([]*model.Reservation, error)
	updateFunc            func(ctx context.Context, id string, reservation *model.Reservation) error
	deleteFunc            func(ctx context.Context, id string) error
	searchFunc            func(ctx context.Context, filter model.ReservationFilter, limit int, offset int64) ([]*model.Reservation, error)
	countSearchFunc       func(ctx context.Context, filter model.ReservationFilter) (int64, error)
	countFunc             func(ctx context.Context) (int64, error)
	findOverlappingFunc   func(ctx context.Context, q availability.OverlapQuery) ([]*model.Reservation, error)
	executeTransactionErr error
}

func (m *mockReservationRepository) Create(ctx context.Context, reservation *model.Reservation) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, reservation)
	}
	return nil
}

func (m *mockReservationRepository) FindByID(ctx context.Context, id string) (*model.Reservation, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, reservationserrors.ErrNotFound
}

func (m *mockReservationRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Reservation, error) {
	if m.findAllFunc != nil {
		return m.findAllFunc(ctx, limit, offset)
	}
	return nil, nil
}

func (m *mockReservationRepository) Update(ctx context.Context, id string, reservation *model.Reservation) error {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, id, reservation)
	}
	return nil
}

func (m *mockReservationRepository) Delete(ctx context.Context, id string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil
}

func (m *mockReservationRepository) Search(ctx context.Context, filter model.ReservationFilter, limit int, offset int64) ([]*model.Reservation, error) {
	if m.searchFunc != nil {
		return m.searchFunc(ctx, filter, limit, offset)
	}
	return nil, nil
}

func (m *mockReservationRepository) CountSearch(ctx context.Context, filter model.ReservationFilter) (int64, error) {
	if m.countSearchFunc != nil {
		return m.countSearchFunc(ctx, filter)
	}
	return 0, nil
}

func (m *mockReservationRepository) Count(ctx context.Context) (int64, error) {
	if m.countFunc != nil {
		return m.countFunc(ctx)
	}
	return 0, nil
}

func (m *mockReservationRepository) FindOverlapping(ctx context.Context, q availability.OverlapQuery) ([]*model.Reservation, error) {
	if m.findOverlappingFunc != nil {
		return m.findOverlappingFunc(ctx, q)
	}
	return nil, nil
}

func (m *mockReservationRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	if m.executeTransactionErr != nil {
		return m.executeTransactionErr
	}
	return fn(ctx)
}

type mockAssetRegistry struct {
	findByCodeFunc func(ctx context.Context, code string) (*model.Asset, error)
}

func (m *mockAssetRegistry) FindByCode(ctx context.Context, code string) (*model.Asset, error) {
	return m.findByCodeFunc(ctx, code)
}

type mockDriverLookup struct {
	findByCodeFunc func(ctx context.Context, code string) (*model.Driver, error)
}

func (m *mockDriverLookup) FindByCode(ctx context.Context, code string) (*model.Driver, error) {
	return m.findByCodeFunc(ctx, code)
}

type publishedEvent struct {
	eventType string
	id        string
}

type mockPublisher struct {
	mu        sync.Mutex
	published []publishedEvent
	err       error
}

func (m *mockPublisher) Publish(ctx context.Context, eventType string, r *model.Reservation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.published = append(m.published, publishedEvent{eventType: eventType, id: r.ID})
	return m.err
}

func (m *mockPublisher) Close() error { return nil }

type mapBackend struct {
	mu    sync.Mutex
	locks map[string]string
}

func newMapBackend() *mapBackend {
	return &mapBackend{locks: make(map[string]string)}
}

func (b *mapBackend) Acquire(ctx context.Context, key, owner string, ttl time.Duration) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, held := b.locks[key]; held {
		return false, nil
	}
	b.locks[key] = owner
	return true, nil
}

func (b *mapBackend) Release(ctx context.Context, key, owner string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.locks[key] == owner {
		delete(b.locks, key)
	}
	return nil
}

func (b *mapBackend) size() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.locks)
}

var (
	testStart = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	testEnd   = testStart.Add(2 * time.Hour)
)

func stock(n int) *int { return &n }

func defaultAssets() *mockAssetRegistry {
	catalog := map[string]*model.Asset{
		"HALL-1": {Code: "HALL-1", Kind: model.AssetKindRoom, Name: "Main Hall"},
		"HALL-2": {Code: "HALL-2", Kind: model.AssetKindRoom, Name: "Small Hall"},
		"VAN-2":  {Code: "VAN-2", Kind: model.AssetKindVehicle, Name: "Van 2"},
		"VAN-5":  {Code: "VAN-5", Kind: model.AssetKindVehicle, Name: "Van 5"},
		"CHAIRS": {Code: "CHAIRS", Kind: model.AssetKindItem, Name: "Chairs", StockCount: stock(40)},
	}
	return &mockAssetRegistry{findByCodeFunc: func(ctx context.Context, code string) (*model.Asset, error) {
		if a, ok := catalog[code]; ok {
			return a, nil
		}
		return nil, assetserrors.ErrNotFound
	}}
}

func defaultDrivers() *mockDriverLookup {
	inactive := false
	return &mockDriverLookup{findByCodeFunc: func(ctx context.Context, code string) (*model.Driver, error) {
		switch code {
		case "D1", "D2":
			return &model.Driver{Code: code, Name: "Driver " + code}, nil
		case "D9":
			return &model.Driver{Code: code, Name: "Retired", Active: &inactive}, nil
		}
		return nil, driverserrors.ErrNotFound
	}}
}

type fixture struct {
	repo      *mockReservationRepository
	assets    *mockAssetRegistry
	drivers   *mockDriverLookup
	backend   *mapBackend
	publisher *mockPublisher
	service   ReservationService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	log := logger.Discard()
	f := &fixture{
		repo:      &mockReservationRepository{},
		assets:    defaultAssets(),
		drivers:   defaultDrivers(),
		backend:   newMapBackend(),
		publisher: &mockPublisher{},
	}
	locks := lock.NewManager(f.backend, lock.Options{
		TTL:           time.Second,
		WaitTimeout:   30 * time.Millisecond,
		RetryInterval: 5 * time.Millisecond,
	}, log)
	f.service = NewReservationService(
		f.repo,
		f.assets,
		f.drivers,
		locks,
		f.publisher,
		validator.NewReservationValidator(log),
		&config.Config{Log: log},
	)
	return f
}

func roomReservation(asset string, items ...model.BorrowedItem) *model.Reservation {
	r := &model.Reservation{
		Kind:      model.ReservationKindRoom,
		AssetCode: asset,
		StartTime: testStart,
		EndTime:   testEnd,
	}
	if len(items) > 0 {
		r.Room = &model.RoomAssignment{Items: items}
	}
	return r
}

func vehicleReservation(asset, driver string) *model.Reservation {
	return &model.Reservation{
		Kind:      model.ReservationKindVehicle,
		AssetCode: asset,
		StartTime: testStart,
		EndTime:   testEnd,
		Vehicle:   &model.VehicleAssignment{DriverRef: driver},
	}
}

func assertAppError(t *testing.T, err error, wantCode string, wantStatus int) *apperrors.AppError {
	t.Helper()
	appErr := apperrors.AsAppError(err)
	if appErr == nil {
		t.Fatalf("expected AppError %s, got %v", wantCode, err)
	}
	if appErr.Code != wantCode || appErr.StatusCode() != wantStatus {
		t.Fatalf("got %s/%d, want %s/%d (%v)", appErr.Code, appErr.StatusCode(), wantCode, wantStatus, err)
	}
	return appErr
}

func TestCreate_Success(t *testing.T) {
	f := newFixture(t)

	var queries []availability.OverlapQuery
	f.repo.findOverlappingFunc = func(ctx context.Context, q availability.OverlapQuery) ([]*model.Reservation, error) {
		queries = append(queries, q)
		return nil, nil
	}
	var created *model.Reservation
	f.repo.createFunc = func(ctx context.Context, r *model.Reservation) error {
		if f.backend.size() == 0 {
			t.Error("write must happen while locks are held")
		}
		r.ID = "65e1a0000000000000000001"
		created = r
		return nil
	}

	r := roomReservation(" hall-1 ", model.BorrowedItem{ItemCode: "chairs", Quantity: 10}, model.BorrowedItem{ItemCode: "chairs", Quantity: -2})
	r.AssetName = "client supplied"

	if err := f.service.Create(context.Background(), r); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if created == nil {
		t.Fatal("expected reservation to be stored")
	}
	if created.AssetCode != "HALL-1" || created.AssetName != "Main Hall" {
		t.Errorf("asset not resolved: %s / %s", created.AssetCode, created.AssetName)
	}
	if items := created.BorrowedItems(); len(items) != 1 || items[0].ItemCode != "CHAIRS" {
		t.Errorf("items not sanitized: %+v", items)
	}
	if len(queries) != 2 {
		t.Errorf("expected exclusivity and stock queries, got %d", len(queries))
	}
	if f.backend.size() != 0 {
		t.Errorf("locks must be released, %d still held", f.backend.size())
	}
	if len(f.publisher.published) != 1 || f.publisher.published[0].eventType != model.EventReservationCreated {
		t.Errorf("expected created event, got %+v", f.publisher.published)
	}
}

func TestCreate_Conflicts(t *testing.T) {
	existingRoom := roomReservation("HALL-1", model.BorrowedItem{ItemCode: "CHAIRS", Quantity: 30})
	existingRoom.ID = "65e1a00000000000000000aa"
	existingVan := vehicleReservation("VAN-2", "D1")
	existingVan.ID = "65e1a00000000000000000bb"

	tests := []struct {
		name       string
		existing   *model.Reservation
		candidate  *model.Reservation
		wantReason availability.ConflictType
		wantInMsg  string
	}{
		{
			name:       "room double booking",
			existing:   existingRoom,
			candidate:  roomReservation("HALL-1"),
			wantReason: availability.ConflictAsset,
			wantInMsg:  "HALL-1",
		},
		{
			name:       "driver double assignment",
			existing:   existingVan,
			candidate:  vehicleReservation("VAN-5", "D1"),
			wantReason: availability.ConflictDriver,
			wantInMsg:  "D1",
		},
		{
			name:       "chairs over stock",
			existing:   existingRoom,
			candidate:  roomReservation("HALL-2", model.BorrowedItem{ItemCode: "CHAIRS", Quantity: 15}),
			wantReason: availability.ConflictStockExceeded,
			wantInMsg:  "remaining stock of 10",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.repo.findOverlappingFunc = func(ctx context.Context, q availability.OverlapQuery) ([]*model.Reservation, error) {
				return []*model.Reservation{tt.existing}, nil
			}
			f.repo.createFunc = func(ctx context.Context, r *model.Reservation) error {
				t.Error("conflicting reservation must not be stored")
				return nil
			}

			err := f.service.Create(context.Background(), tt.candidate)
			appErr := assertAppError(t, err, apperrors.CodeConflict, http.StatusConflict)
			if !strings.Contains(appErr.Message, tt.wantInMsg) {
				t.Errorf("message %q should mention %q", appErr.Message, tt.wantInMsg)
			}
			if appErr.Details["reason"] != tt.wantReason {
				t.Errorf("details reason = %v, want %v", appErr.Details["reason"], tt.wantReason)
			}
			if f.backend.size() != 0 {
				t.Error("locks must be released after a conflict")
			}
			if len(f.publisher.published) != 0 {
				t.Error("no event should be published for a rejected reservation")
			}
		})
	}
}

func TestCreate_ResolutionFailures(t *testing.T) {
	tests := []struct {
		name      string
		candidate *model.Reservation
	}{
		{"unknown asset", roomReservation("HALL-404")},
		{"vehicle on a room asset", vehicleReservation("HALL-1", "D1")},
		{"room on a vehicle asset", roomReservation("VAN-2")},
		{"unknown driver", vehicleReservation("VAN-2", "D404")},
		{"inactive driver", vehicleReservation("VAN-2", "D9")},
		{"invalid window", func() *model.Reservation {
			r := roomReservation("HALL-1")
			r.EndTime = r.StartTime
			return r
		}()},
		{"room with driver", func() *model.Reservation {
			r := roomReservation("HALL-1")
			r.Vehicle = &model.VehicleAssignment{DriverRef: "D1"}
			return r
		}()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.repo.findOverlappingFunc = func(ctx context.Context, q availability.OverlapQuery) ([]*model.Reservation, error) {
				t.Error("checker must not run for invalid input")
				return nil, nil
			}

			err := f.service.Create(context.Background(), tt.candidate)
			assertAppError(t, err, apperrors.CodeValidation, http.StatusUnprocessableEntity)
		})
	}
}

func TestCreate_ResourceBusy(t *testing.T) {
	f := newFixture(t)
	f.backend.locks["asset:HALL-1"] = "another-request"

	err := f.service.Create(context.Background(), roomReservation("HALL-1"))
	appErr := assertAppError(t, err, apperrors.CodeResourceBusy, http.StatusConflict)
	if appErr.Message != resourceBusyMessage {
		t.Errorf("unexpected message %q", appErr.Message)
	}
	if f.backend.locks["asset:HALL-1"] != "another-request" {
		t.Error("foreign lock must be left alone")
	}
}

func TestCreate_StoreErrorIsInternal(t *testing.T) {
	f := newFixture(t)
	f.repo.findOverlappingFunc = func(ctx context.Context, q availability.OverlapQuery) ([]*model.Reservation, error) {
		return nil, errors.New("connection reset")
	}

	err := f.service.Create(context.Background(), roomReservation("HALL-1"))
	assertAppError(t, err, apperrors.CodeInternal, http.StatusInternalServerError)
	if f.backend.size() != 0 {
		t.Error("locks must be released after a failure")
	}
}

func TestCreate_PublishFailureDoesNotFail(t *testing.T) {
	f := newFixture(t)
	f.publisher.err = errors.New("broker unavailable")

	if err := f.service.Create(context.Background(), vehicleReservation("VAN-2", "D2")); err != nil {
		t.Errorf("publish failures must not fail the request: %v", err)
	}
}

func TestUpdate(t *testing.T) {
	const id = "65e1a0000000000000000001"
	existing := vehicleReservation("VAN-2", "D1")
	existing.ID = id
	existing.AssetName = "Van 2"

	t.Run("moves window and re-checks excluding itself", func(t *testing.T) {
		f := newFixture(t)
		f.repo.findByIDFunc = func(ctx context.Context, got string) (*model.Reservation, error) {
			stored := *existing
			return &stored, nil
		}
		f.repo.findOverlappingFunc = func(ctx context.Context, q availability.OverlapQuery) ([]*model.Reservation, error) {
			if q.ExcludeID != id {
				t.Errorf("exclude id = %q, want %q", q.ExcludeID, id)
			}
			return []*model.Reservation{existing}, nil
		}
		var stored *model.Reservation
		f.repo.updateFunc = func(ctx context.Context, got string, r *model.Reservation) error {
			stored = r
			return nil
		}

		newStart := testStart.Add(time.Hour)
		newEnd := testEnd.Add(time.Hour)
		driver := "d2"
		updated, err := f.service.Update(context.Background(), id, &model.ReservationUpdate{
			StartTime: &newStart,
			EndTime:   &newEnd,
			DriverRef: &driver,
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if stored == nil || !stored.StartTime.Equal(newStart) || stored.DriverRef() != "D2" {
			t.Errorf("unexpected stored reservation: %+v", stored)
		}
		if updated.Kind != model.ReservationKindVehicle {
			t.Error("kind must not change on update")
		}
		if existing.DriverRef() != "D1" {
			t.Error("existing reservation must not be mutated")
		}
		if len(f.publisher.published) != 1 || f.publisher.published[0].eventType != model.EventReservationUpdated {
			t.Errorf("expected updated event, got %+v", f.publisher.published)
		}
	})

	t.Run("conflicts with another reservation", func(t *testing.T) {
		f := newFixture(t)
		f.repo.findByIDFunc = func(ctx context.Context, got string) (*model.Reservation, error) {
			stored := *existing
			return &stored, nil
		}
		other := vehicleReservation("VAN-5", "D2")
		other.ID = "65e1a0000000000000000002"
		f.repo.findOverlappingFunc = func(ctx context.Context, q availability.OverlapQuery) ([]*model.Reservation, error) {
			return []*model.Reservation{other}, nil
		}

		driver := "D2"
		_, err := f.service.Update(context.Background(), id, &model.ReservationUpdate{DriverRef: &driver})
		assertAppError(t, err, apperrors.CodeConflict, http.StatusConflict)
	})

	t.Run("rejects items on a vehicle", func(t *testing.T) {
		f := newFixture(t)
		f.repo.findByIDFunc = func(ctx context.Context, got string) (*model.Reservation, error) {
			stored := *existing
			return &stored, nil
		}
		items := []model.BorrowedItem{{ItemCode: "CHAIRS", Quantity: 1}}
		_, err := f.service.Update(context.Background(), id, &model.ReservationUpdate{Items: &items})
		assertAppError(t, err, apperrors.CodeValidation, http.StatusUnprocessableEntity)
	})

	t.Run("not found", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.service.Update(context.Background(), id, &model.ReservationUpdate{})
		assertAppError(t, err, apperrors.CodeNotFound, http.StatusNotFound)
	})

	t.Run("invalid id", func(t *testing.T) {
		f := newFixture(t)
		f.repo.findByIDFunc = func(ctx context.Context, got string) (*model.Reservation, error) {
			return nil, reservationserrors.ErrInvalidID
		}
		_, err := f.service.Update(context.Background(), "nope", &model.ReservationUpdate{})
		assertAppError(t, err, apperrors.CodeInvalidInput, http.StatusBadRequest)
	})
}

func TestDelete(t *testing.T) {
	const id = "65e1a0000000000000000001"
	f := newFixture(t)
	f.repo.findByIDFunc = func(ctx context.Context, got string) (*model.Reservation, error) {
		r := roomReservation("HALL-1")
		r.ID = got
		return r, nil
	}
	deleted := ""
	f.repo.deleteFunc = func(ctx context.Context, got string) error {
		deleted = got
		return nil
	}

	if err := f.service.Delete(context.Background(), id); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if deleted != id {
		t.Errorf("deleted %q, want %q", deleted, id)
	}
	if len(f.publisher.published) != 1 || f.publisher.published[0] != (publishedEvent{model.EventReservationDeleted, id}) {
		t.Errorf("expected deleted event, got %+v", f.publisher.published)
	}

	if err := f.service.Delete(context.Background(), ""); err == nil {
		t.Error("expected error for empty id")
	}
}

func TestGetAll(t *testing.T) {
	t.Run("returns page and total", func(t *testing.T) {
		f := newFixture(t)
		f.repo.countFunc = func(ctx context.Context) (int64, error) { return 7, nil }
		f.repo.findAllFunc = func(ctx context.Context, limit int, offset int64) ([]*model.Reservation, error) {
			if limit != 2 || offset != 4 {
				t.Errorf("limit/offset = %d/%d", limit, offset)
			}
			return []*model.Reservation{roomReservation("HALL-1")}, nil
		}

		list, total, err := f.service.GetAll(context.Background(), 2, 4)
		if err != nil || total != 7 || len(list) != 1 {
			t.Errorf("got %d items, total %d, err %v", len(list), total, err)
		}
	})

	t.Run("count failure", func(t *testing.T) {
		f := newFixture(t)
		f.repo.countFunc = func(ctx context.Context) (int64, error) { return 0, errors.New("boom") }
		_, _, err := f.service.GetAll(context.Background(), 10, 0)
		assertAppError(t, err, apperrors.CodeInternal, http.StatusInternalServerError)
	})
}

func TestSearch(t *testing.T) {
	f := newFixture(t)
	var got model.ReservationFilter
	f.repo.searchFunc = func(ctx context.Context, filter model.ReservationFilter, limit int, offset int64) ([]*model.Reservation, error) {
		got = filter
		return nil, nil
	}

	if _, _, err := f.service.Search(context.Background(), model.ReservationFilter{AssetCode: "hall-1", DriverRef: " d1 "}, 10, 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.AssetCode != "HALL-1" || got.DriverRef != "D1" {
		t.Errorf("filter not sanitized: %+v", got)
	}

	_, _, err := f.service.Search(context.Background(), model.ReservationFilter{Kind: "boat"}, 10, 0)
	assertAppError(t, err, apperrors.CodeInvalidInput, http.StatusBadRequest)

	end := testStart
	_, _, err = f.service.Search(context.Background(), model.ReservationFilter{StartTime: &testEnd, EndTime: &end}, 10, 0)
	assertAppError(t, err, apperrors.CodeInvalidInput, http.StatusBadRequest)
}

func TestCheckAvailability(t *testing.T) {
	f := newFixture(t)
	existing := roomReservation("HALL-1")
	existing.ID = "65e1a0000000000000000001"
	f.repo.findOverlappingFunc = func(ctx context.Context, q availability.OverlapQuery) ([]*model.Reservation, error) {
		return []*model.Reservation{existing}, nil
	}
	f.repo.createFunc = func(ctx context.Context, r *model.Reservation) error {
		t.Error("availability check must not write")
		return nil
	}

	conflict, err := f.service.CheckAvailability(context.Background(), roomReservation("HALL-1"), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if conflict == nil || conflict.Type != availability.ConflictAsset {
		t.Errorf("expected asset conflict, got %+v", conflict)
	}

	conflict, err = f.service.CheckAvailability(context.Background(), roomReservation("HALL-1"), existing.ID)
	if err != nil || conflict != nil {
		t.Errorf("excluded reservation should be clear, got %+v / %v", conflict, err)
	}
}

func TestMergeReservationUpdates(t *testing.T) {
	room := roomReservation("HALL-1", model.BorrowedItem{ItemCode: "CHAIRS", Quantity: 5})
	empty := []model.BorrowedItem{}

	merged := mergeReservationUpdates(room, &model.ReservationUpdate{Items: &empty})
	if merged.Room != nil {
		t.Error("empty item list should clear the room assignment")
	}
	if room.Room == nil {
		t.Error("source reservation must not be mutated")
	}

	van := vehicleReservation("VAN-2", "D1")
	none := ""
	merged = mergeReservationUpdates(van, &model.ReservationUpdate{DriverRef: &none, AssetCode: "VAN-5"})
	if merged.Vehicle != nil || merged.AssetCode != "VAN-5" {
		t.Errorf("unexpected merge result: %+v", merged)
	}
}
