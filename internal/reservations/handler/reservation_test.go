package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"sarpras/internal/reservations/availability"
	apperrors "sarpras/pkg/errors"
	"sarpras/pkg/logger"
	"sarpras/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type mockReservationService struct {
	createFunc            func(ctx context.Context, r *model.Reservation) error
	getByIDFunc           func(ctx context.Context, id string) (*model.Reservation, error)
	getAllFunc            func(ctx context.Context, limit int, offset int64) ([]*model.Reservation, int64, error)
	updateFunc            func(ctx context.Context, id string, u *model.ReservationUpdate) (*model.Reservation, error)
	deleteFunc            func(ctx context.Context, id string) error
	searchFunc            func(ctx context.Context, f model.ReservationFilter, limit int, offset int64) ([]*model.Reservation, int64, error)
	checkAvailabilityFunc func(ctx context.Context, c *model.Reservation, excludeID string) (*availability.Conflict, error)
}

func (m *mockReservationService) Create(ctx context.Context, r *model.Reservation) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, r)
	}
	return nil
}

func (m *mockReservationService) GetByID(ctx context.Context, id string) (*model.Reservation, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockReservationService) GetAll(ctx context.Context, limit int, offset int64) ([]*model.Reservation, int64, error) {
	if m.getAllFunc != nil {
		return m.getAllFunc(ctx, limit, offset)
	}
	return []*model.Reservation{}, 0, nil
}

func (m *mockReservationService) Update(ctx context.Context, id string, u *model.ReservationUpdate) (*model.Reservation, error) {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, id, u)
	}
	return &model.Reservation{ID: id}, nil
}

func (m *mockReservationService) Delete(ctx context.Context, id string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil
}

func (m *mockReservationService) Search(ctx context.Context, f model.ReservationFilter, limit int, offset int64) ([]*model.Reservation, int64, error) {
	if m.searchFunc != nil {
		return m.searchFunc(ctx, f, limit, offset)
	}
	return []*model.Reservation{}, 0, nil
}

func (m *mockReservationService) CheckAvailability(ctx context.Context, c *model.Reservation, excludeID string) (*availability.Conflict, error) {
	if m.checkAvailabilityFunc != nil {
		return m.checkAvailabilityFunc(ctx, c, excludeID)
	}
	return nil, nil
}

func newRouter(svc *mockReservationService) *httprouter.Router {
	router := httprouter.New()
	NewReservationHandler(svc, logger.Discard()).RegisterRoutes(router)
	return router
}

func serve(router http.Handler, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

type errorBody struct {
	Error   string         `json:"error"`
	Code    string         `json:"code"`
	Details map[string]any `json:"details"`
}

func TestCreate(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		serviceErr error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "created",
			body:       `{"kind":"room","asset_code":"HALL-1","start_time":"2024-01-10T09:00:00Z","end_time":"2024-01-10T11:00:00Z"}`,
			wantStatus: http.StatusCreated,
		},
		{
			name:       "malformed body",
			body:       `{"kind":`,
			wantStatus: http.StatusBadRequest,
			wantCode:   apperrors.CodeBadRequest,
		},
		{
			name:       "conflict",
			body:       `{"kind":"room","asset_code":"HALL-1","start_time":"2024-01-10T10:00:00Z","end_time":"2024-01-10T12:00:00Z"}`,
			serviceErr: apperrors.Conflict("asset HALL-1 is already booked in that window").WithDetails(map[string]any{"reason": "asset_booked"}),
			wantStatus: http.StatusConflict,
			wantCode:   apperrors.CodeConflict,
		},
		{
			name:       "lock contention",
			body:       `{"kind":"room","asset_code":"HALL-1","start_time":"2024-01-10T10:00:00Z","end_time":"2024-01-10T12:00:00Z"}`,
			serviceErr: apperrors.ResourceBusy("resource is currently being booked by another request"),
			wantStatus: http.StatusConflict,
			wantCode:   apperrors.CodeResourceBusy,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got *model.Reservation
			router := newRouter(&mockReservationService{createFunc: func(ctx context.Context, r *model.Reservation) error {
				got = r
				if tt.serviceErr != nil {
					return tt.serviceErr
				}
				r.ID = "65e1a0000000000000000001"
				return nil
			}})

			rec := serve(router, http.MethodPost, "/api/v1/reservations", tt.body)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tt.wantStatus, rec.Body.String())
			}

			if tt.wantCode != "" {
				var body errorBody
				if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
					t.Fatalf("failed to decode error body: %v", err)
				}
				if body.Code != tt.wantCode {
					t.Errorf("code = %q, want %q", body.Code, tt.wantCode)
				}
				return
			}

			if got == nil || got.Kind != model.ReservationKindRoom || !got.StartTime.Equal(time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)) {
				t.Errorf("unexpected decoded reservation: %+v", got)
			}
		})
	}
}

func TestCreate_ConflictBodyCarriesReason(t *testing.T) {
	router := newRouter(&mockReservationService{createFunc: func(ctx context.Context, r *model.Reservation) error {
		return apperrors.Conflict("driver D1 is already assigned in that window").
			WithDetails(map[string]any{"reason": "driver_assigned", "resource": "D1"})
	}})

	rec := serve(router, http.MethodPost, "/api/v1/reservations", `{"kind":"vehicle"}`)

	var body errorBody
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode error body: %v", err)
	}
	if body.Error != "driver D1 is already assigned in that window" {
		t.Errorf("error = %q", body.Error)
	}
	if body.Details["resource"] != "D1" || body.Details["reason"] != "driver_assigned" {
		t.Errorf("details = %v", body.Details)
	}
}

func TestGetAll_QueryParameters(t *testing.T) {
	var gotLimit int
	var gotOffset int64
	router := newRouter(&mockReservationService{getAllFunc: func(ctx context.Context, limit int, offset int64) ([]*model.Reservation, int64, error) {
		gotLimit, gotOffset = limit, offset
		return []*model.Reservation{}, 0, nil
	}})

	tests := []struct {
		name       string
		query      string
		wantStatus int
		wantLimit  int
		wantOffset int64
	}{
		{"defaults", "", http.StatusOK, 10, 0},
		{"explicit", "?limit=5&offset=10", http.StatusOK, 5, 10},
		{"limit capped", "?limit=100000", http.StatusOK, 100, 0},
		{"negative offset", "?offset=-3", http.StatusOK, 10, 0},
		{"non-numeric limit", "?limit=abc", http.StatusBadRequest, 0, 0},
		{"non-numeric offset", "?offset=xyz", http.StatusBadRequest, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotLimit, gotOffset = 0, 0
			rec := serve(router, http.MethodGet, "/api/v1/reservations"+tt.query, "")
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantStatus == http.StatusOK && (gotLimit != tt.wantLimit || gotOffset != tt.wantOffset) {
				t.Errorf("limit/offset = %d/%d, want %d/%d", gotLimit, gotOffset, tt.wantLimit, tt.wantOffset)
			}
		})
	}
}

func TestGetByID_NotFound(t *testing.T) {
	router := newRouter(&mockReservationService{getByIDFunc: func(ctx context.Context, id string) (*model.Reservation, error) {
		return nil, apperrors.NotFoundWithID("Reservation", id)
	}})

	rec := serve(router, http.MethodGet, "/api/v1/reservations/id/65e1a0000000000000000001", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestUpdateAndDelete(t *testing.T) {
	var updatedID, deletedID string
	router := newRouter(&mockReservationService{
		updateFunc: func(ctx context.Context, id string, u *model.ReservationUpdate) (*model.Reservation, error) {
			updatedID = id
			if u.DriverRef == nil || *u.DriverRef != "D2" {
				t.Errorf("driver_ref not decoded: %+v", u)
			}
			return &model.Reservation{ID: id}, nil
		},
		deleteFunc: func(ctx context.Context, id string) error {
			deletedID = id
			return nil
		},
	})

	rec := serve(router, http.MethodPatch, "/api/v1/reservations/id/abc", `{"driver_ref":"D2"}`)
	if rec.Code != http.StatusOK || updatedID != "abc" {
		t.Errorf("update status = %d, id = %q", rec.Code, updatedID)
	}

	rec = serve(router, http.MethodDelete, "/api/v1/reservations/id/abc", "")
	if rec.Code != http.StatusNoContent || deletedID != "abc" {
		t.Errorf("delete status = %d, id = %q", rec.Code, deletedID)
	}
}

func TestSearch(t *testing.T) {
	var got model.ReservationFilter
	router := newRouter(&mockReservationService{searchFunc: func(ctx context.Context, f model.ReservationFilter, limit int, offset int64) ([]*model.Reservation, int64, error) {
		got = f
		return []*model.Reservation{}, 0, nil
	}})

	rec := serve(router, http.MethodGet, "/api/v1/reservations/search?kind=vehicle&driver_ref=D1&start_time=2024-02-01T08:00:00Z&end_time=2024-02-01T10:00:00Z", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	if got.Kind != model.ReservationKindVehicle || got.DriverRef != "D1" || got.StartTime == nil || got.EndTime == nil {
		t.Errorf("unexpected filter: %+v", got)
	}

	rec = serve(router, http.MethodGet, "/api/v1/reservations/search?start_time=yesterday", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 for malformed time", rec.Code)
	}
}

func TestCheckAvailability(t *testing.T) {
	remaining := 10
	router := newRouter(&mockReservationService{checkAvailabilityFunc: func(ctx context.Context, c *model.Reservation, excludeID string) (*availability.Conflict, error) {
		if excludeID != "65e1a0000000000000000001" {
			t.Errorf("exclude id = %q", excludeID)
		}
		if len(c.BorrowedItems()) != 1 {
			return nil, nil
		}
		return &availability.Conflict{
			Type:      availability.ConflictStockExceeded,
			Resource:  "CHAIRS",
			Reason:    "requested quantity of CHAIRS exceeds remaining stock of 10",
			Remaining: &remaining,
		}, nil
	}})

	body := `{"kind":"room","asset_code":"HALL-2","start_time":"2024-03-01T12:00:00Z","end_time":"2024-03-01T13:00:00Z","room":{"items":[{"item_code":"CHAIRS","quantity":15}]},"exclude_id":"65e1a0000000000000000001"}`
	rec := serve(router, http.MethodPost, "/api/v1/reservations/availability", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Data AvailabilityResponse `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Data.Available || resp.Data.Conflict == nil || *resp.Data.Conflict.Remaining != 10 {
		t.Errorf("unexpected response: %+v", resp.Data)
	}
}
