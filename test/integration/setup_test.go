//go:build integration

package integration

import (
	"net/http"
	"testing"

	"sarpras/pkg/client"
	"sarpras/pkg/model"
	"sarpras/test/integration/testutil"
)

type errorBody struct {
	Error   string         `json:"error"`
	Code    string         `json:"code"`
	Details map[string]any `json:"details"`
}

func decodeError(t *testing.T, resp *client.Response) errorBody {
	t.Helper()
	var body errorBody
	if err := resp.DecodeJSON(&body); err != nil {
		t.Fatalf("failed to decode error body: %v (%s)", err, resp.ToString())
	}
	return body
}

func mustCreateAsset(t *testing.T, c *testutil.Clients, asset model.Asset) *model.Asset {
	t.Helper()
	resp, err := c.Assets.Create(asset)
	if err != nil {
		t.Fatalf("create asset: %v", err)
	}
	testutil.AssertStatus(t, resp, http.StatusCreated)
	created, err := c.Assets.DecodeAsset(resp)
	if err != nil {
		t.Fatalf("decode asset: %v", err)
	}
	return created
}

func mustCreateDriver(t *testing.T, c *testutil.Clients, driver model.Driver) *model.Driver {
	t.Helper()
	resp, err := c.Drivers.Create(driver)
	if err != nil {
		t.Fatalf("create driver: %v", err)
	}
	testutil.AssertStatus(t, resp, http.StatusCreated)
	created, err := c.Drivers.DecodeDriver(resp)
	if err != nil {
		t.Fatalf("decode driver: %v", err)
	}
	return created
}

func mustCreateReservation(t *testing.T, c *testutil.Clients, r model.Reservation) *model.Reservation {
	t.Helper()
	resp, err := c.Reservations.Create(r)
	if err != nil {
		t.Fatalf("create reservation: %v", err)
	}
	testutil.AssertStatus(t, resp, http.StatusCreated)
	created, err := c.Reservations.DecodeReservation(resp)
	if err != nil {
		t.Fatalf("decode reservation: %v", err)
	}
	return created
}
