package client

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"sarpras/pkg/model"
)

func TestReservationClient_SearchQuery(t *testing.T) {
	var got url.Values
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[{"id":"r1","asset_code":"BUS-1"}],"total_count":3,"limit":1,"offset":2}`))
	}))
	defer server.Close()

	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	c := NewReservationClient(server.URL)
	resp, err := c.Search(model.ReservationFilter{AssetCode: "BUS-1", StartTime: &start}, 1, 2)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}

	if got.Get("asset_code") != "BUS-1" || got.Get("start_time") != "2026-03-02T09:00:00Z" {
		t.Errorf("unexpected query %v", got)
	}
	if got.Has("driver_ref") || got.Has("end_time") {
		t.Errorf("empty filter fields should be omitted: %v", got)
	}

	reservations, meta, err := c.DecodeReservations(resp)
	if err != nil {
		t.Fatalf("DecodeReservations() error = %v", err)
	}
	if len(reservations) != 1 || reservations[0].AssetCode != "BUS-1" {
		t.Errorf("reservations = %+v", reservations)
	}
	if meta.TotalCount != 3 || meta.Limit != 1 || meta.Offset != 2 {
		t.Errorf("meta = %+v", meta)
	}
}

func TestDecodeAvailability(t *testing.T) {
	resp := &Response{
		Response: &http.Response{StatusCode: http.StatusOK},
		Body:     []byte(`{"data":{"available":false,"conflict":{"type":"stock_exceeded","resource":"CHAIRS","reason":"not enough stock","remaining":1}}}`),
	}

	availability, err := NewReservationClient("").DecodeAvailability(resp)
	if err != nil {
		t.Fatalf("DecodeAvailability() error = %v", err)
	}
	if availability.Available || availability.Conflict == nil {
		t.Fatalf("availability = %+v", availability)
	}
	if *availability.Conflict.Remaining != 1 || availability.Conflict.Resource != "CHAIRS" {
		t.Errorf("conflict = %+v", availability.Conflict)
	}
}

func TestGetErrorMessage(t *testing.T) {
	resp := &Response{Body: []byte(`{"error":"Asset not found","code":"NOT_FOUND"}`)}
	if msg := GetErrorMessage(resp); msg != "Asset not found" {
		t.Errorf("GetErrorMessage() = %q", msg)
	}
}
