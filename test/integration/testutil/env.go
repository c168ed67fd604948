//go:build integration

package testutil

import (
	"fmt"
	"os"
	"testing"
	"time"

	"sarpras/pkg/client"
)

const DefaultHealthCheckTimeout = 30 * time.Second

type TestEnv struct {
	MongoURI     string
	DatabaseName string
	ServerURL    string
	ServerPort   string
}

func NewTestEnv() *TestEnv {
	serverPort := getEnv("TEST_SERVER_PORT", "8080")

	return &TestEnv{
		MongoURI:     getEnv("TEST_MONGO_URI", DefaultMongoURI),
		DatabaseName: getEnv("TEST_DB_NAME", DefaultDatabaseName),
		ServerURL:    getEnv("TEST_SERVER_URL", fmt.Sprintf("http://localhost:%s", serverPort)),
		ServerPort:   serverPort,
	}
}

// Clients bundles the typed API clients for one running service.
type Clients struct {
	Reservations *client.ReservationClient
	Assets       *client.AssetClient
	Drivers      *client.DriverClient
}

func (e *TestEnv) Setup(t *testing.T) (*MongoHelper, *Clients) {
	t.Helper()

	mongo := NewMongoHelper(t, e.MongoURI, e.DatabaseName)
	mongo.CleanDatabase(t)

	if err := client.NewHttpClient(e.ServerURL).WaitForHealthy(DefaultHealthCheckTimeout); err != nil {
		t.Fatalf("service not healthy: %v", err)
	}

	return mongo, &Clients{
		Reservations: client.NewReservationClient(e.ServerURL),
		Assets:       client.NewAssetClient(e.ServerURL),
		Drivers:      client.NewDriverClient(e.ServerURL),
	}
}

func (e *TestEnv) Cleanup(t *testing.T, mongo *MongoHelper) {
	t.Helper()

	if mongo != nil {
		mongo.CleanDatabase(t)
		mongo.Close(t)
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func AssertStatus(t *testing.T, resp *client.Response, want int) {
	t.Helper()
	if resp.StatusCode != want {
		t.Fatalf("status = %d, want %d: %s", resp.StatusCode, want, string(resp.Body))
	}
}
