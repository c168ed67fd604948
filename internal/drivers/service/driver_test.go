package service

import (
	"context"
	"errors"
	"net/http"
	"testing"

	driverserrors "sarpras/internal/drivers/errors"
	"sarpras/internal/drivers/validator"
	"sarpras/pkg/config"
	apperrors "sarpras/pkg/errors"
	"sarpras/pkg/logger"
	"sarpras/pkg/model"
)

type mockDriverRepository struct {
	createFunc     func(ctx context.Context, driver *model.Driver) error
	findByIDFunc   func(ctx context.Context, id string) (*model.Driver, error)
	findByCodeFunc func(ctx context.Context, code string) (*model.Driver, error)
	findAllFunc    func(ctx context.Context, limit int, offset int64) ([]*model.Driver, error)
	countFunc      func(ctx context.Context) (int64, error)
	updateFunc     func(ctx context.Context, id string, driver *model.Driver) error
	deleteFunc     func(ctx context.Context, id string) error
}

func (m *mockDriverRepository) Create(ctx context.Context, driver *model.Driver) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, driver)
	}
	return nil
}

func (m *mockDriverRepository) FindByID(ctx context.Context, id string) (*model.Driver, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, driverserrors.ErrNotFound
}

func (m *mockDriverRepository) FindByCode(ctx context.Context, code string) (*model.Driver, error) {
	if m.findByCodeFunc != nil {
		return m.findByCodeFunc(ctx, code)
	}
	return nil, driverserrors.ErrNotFound
}

func (m *mockDriverRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Driver, error) {
	if m.findAllFunc != nil {
		return m.findAllFunc(ctx, limit, offset)
	}
	return nil, nil
}

func (m *mockDriverRepository) Count(ctx context.Context) (int64, error) {
	if m.countFunc != nil {
		return m.countFunc(ctx)
	}
	return 0, nil
}

func (m *mockDriverRepository) Update(ctx context.Context, id string, driver *model.Driver) error {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, id, driver)
	}
	return nil
}

func (m *mockDriverRepository) Delete(ctx context.Context, id string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil
}

func newTestService(repo *mockDriverRepository) DriverService {
	log := logger.Discard()
	return NewDriverService(repo, validator.NewDriverValidator(log), &config.Config{Log: log, DefaultPhoneRegion: "ID"})
}

func assertStatus(t *testing.T, err error, want int) {
	t.Helper()
	appErr := apperrors.AsAppError(err)
	if appErr == nil {
		t.Fatalf("expected AppError with status %d, got %v", want, err)
	}
	if appErr.StatusCode() != want {
		t.Errorf("status = %d, want %d (%v)", appErr.StatusCode(), want, err)
	}
}

func TestCreate(t *testing.T) {
	t.Run("normalizes phone and defaults active", func(t *testing.T) {
		var stored *model.Driver
		repo := &mockDriverRepository{createFunc: func(ctx context.Context, d *model.Driver) error {
			stored = d
			return nil
		}}
		svc := newTestService(repo)

		driver := &model.Driver{Code: " drv-01 ", Name: " Budi  Santoso ", Phone: "0812-3456-7890"}
		if err := svc.Create(context.Background(), driver); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if stored.Code != "DRV-01" {
			t.Errorf("Code = %q, want DRV-01", stored.Code)
		}
		if stored.Phone != "+6281234567890" {
			t.Errorf("Phone = %q, want +6281234567890", stored.Phone)
		}
		if !stored.IsActive() || stored.Active == nil {
			t.Error("driver should default to an explicit active flag")
		}
	})

	t.Run("duplicate code", func(t *testing.T) {
		repo := &mockDriverRepository{findByCodeFunc: func(ctx context.Context, code string) (*model.Driver, error) {
			return &model.Driver{Code: code}, nil
		}}
		err := newTestService(repo).Create(context.Background(), &model.Driver{Code: "D1", Name: "Budi", Phone: "+628123456789"})
		assertStatus(t, err, http.StatusConflict)
	})

	t.Run("duplicate on insert race", func(t *testing.T) {
		repo := &mockDriverRepository{createFunc: func(ctx context.Context, d *model.Driver) error {
			return driverserrors.ErrDuplicateCode
		}}
		err := newTestService(repo).Create(context.Background(), &model.Driver{Code: "D1", Name: "Budi", Phone: "+628123456789"})
		assertStatus(t, err, http.StatusConflict)
	})

	t.Run("invalid phone", func(t *testing.T) {
		err := newTestService(&mockDriverRepository{}).Create(context.Background(), &model.Driver{Code: "D1", Name: "Budi", Phone: "call me"})
		assertStatus(t, err, http.StatusUnprocessableEntity)
	})

	t.Run("lookup failure", func(t *testing.T) {
		repo := &mockDriverRepository{findByCodeFunc: func(ctx context.Context, code string) (*model.Driver, error) {
			return nil, errors.New("connection reset")
		}}
		err := newTestService(repo).Create(context.Background(), &model.Driver{Code: "D1", Name: "Budi", Phone: "+628123456789"})
		assertStatus(t, err, http.StatusInternalServerError)
	})
}

func TestGetByCode(t *testing.T) {
	repo := &mockDriverRepository{findByCodeFunc: func(ctx context.Context, code string) (*model.Driver, error) {
		if code == "D1" {
			return &model.Driver{Code: code}, nil
		}
		return nil, driverserrors.ErrNotFound
	}}
	svc := newTestService(repo)

	driver, err := svc.GetByCode(context.Background(), " d1 ")
	if err != nil || driver.Code != "D1" {
		t.Fatalf("GetByCode() = %v, %v", driver, err)
	}

	_, err = svc.GetByCode(context.Background(), "D2")
	assertStatus(t, err, http.StatusNotFound)

	_, err = svc.GetByCode(context.Background(), "  ")
	assertStatus(t, err, http.StatusBadRequest)
}

func TestGetByID_InvalidID(t *testing.T) {
	repo := &mockDriverRepository{findByIDFunc: func(ctx context.Context, id string) (*model.Driver, error) {
		return nil, driverserrors.ErrInvalidID
	}}
	_, err := newTestService(repo).GetByID(context.Background(), "nope")
	assertStatus(t, err, http.StatusBadRequest)
}

func TestGetAll(t *testing.T) {
	repo := &mockDriverRepository{
		findAllFunc: func(ctx context.Context, limit int, offset int64) ([]*model.Driver, error) {
			if limit != 5 || offset != 10 {
				t.Errorf("FindAll(%d, %d), want (5, 10)", limit, offset)
			}
			return []*model.Driver{{Code: "D1"}}, nil
		},
		countFunc: func(ctx context.Context) (int64, error) { return 11, nil },
	}
	drivers, total, err := newTestService(repo).GetAll(context.Background(), 5, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(drivers) != 1 || total != 11 {
		t.Errorf("GetAll() = %d drivers, total %d", len(drivers), total)
	}

	repo.countFunc = func(ctx context.Context) (int64, error) { return 0, errors.New("boom") }
	_, _, err = newTestService(repo).GetAll(context.Background(), 5, 10)
	assertStatus(t, err, http.StatusInternalServerError)
}

func TestUpdate(t *testing.T) {
	active := true
	existing := &model.Driver{ID: "65e1a0000000000000000001", Code: "D1", Name: "Budi", Phone: "+628123456789", Active: &active}

	t.Run("deactivates driver", func(t *testing.T) {
		var stored *model.Driver
		repo := &mockDriverRepository{
			findByIDFunc: func(ctx context.Context, id string) (*model.Driver, error) {
				d := *existing
				return &d, nil
			},
			updateFunc: func(ctx context.Context, id string, d *model.Driver) error {
				stored = d
				return nil
			},
		}
		inactive := false
		updated, err := newTestService(repo).Update(context.Background(), existing.ID, &model.DriverUpdate{Active: &inactive, Phone: "081298765432"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if updated.IsActive() || stored.IsActive() {
			t.Error("driver should be inactive after update")
		}
		if stored.Phone != "+6281298765432" {
			t.Errorf("Phone = %q", stored.Phone)
		}
		if stored.Name != "Budi" || stored.Code != "D1" {
			t.Errorf("untouched fields changed: %+v", stored)
		}
		if !*existing.Active {
			t.Error("existing driver was mutated")
		}
	})

	t.Run("not found", func(t *testing.T) {
		_, err := newTestService(&mockDriverRepository{}).Update(context.Background(), existing.ID, &model.DriverUpdate{Name: "Andi"})
		assertStatus(t, err, http.StatusNotFound)
	})

	t.Run("invalid update", func(t *testing.T) {
		repo := &mockDriverRepository{findByIDFunc: func(ctx context.Context, id string) (*model.Driver, error) {
			d := *existing
			return &d, nil
		}}
		_, err := newTestService(repo).Update(context.Background(), existing.ID, &model.DriverUpdate{Name: "A"})
		assertStatus(t, err, http.StatusUnprocessableEntity)
	})
}

func TestDelete(t *testing.T) {
	repo := &mockDriverRepository{deleteFunc: func(ctx context.Context, id string) error {
		return driverserrors.ErrNotFound
	}}
	err := newTestService(repo).Delete(context.Background(), "65e1a0000000000000000001")
	assertStatus(t, err, http.StatusNotFound)

	err = newTestService(&mockDriverRepository{}).Delete(context.Background(), "")
	assertStatus(t, err, http.StatusBadRequest)
}
