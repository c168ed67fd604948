package health

import (
	"context"
	"net/http"
	"time"

	httputil "sarpras/pkg/http"
	"sarpras/pkg/logger"

	"github.com/julienschmidt/httprouter"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

const readyTimeout = 2 * time.Second

const (
	statusOK          = "ok"
	statusReady       = "ready"
	statusUnavailable = "unavailable"
	statusError       = "error"
)

type HealthResponse struct {
	Status       string            `json:"status"`
	Dependencies map[string]string `json:"dependencies,omitempty"`
}

// Check pings one backing dependency for the readiness probe.
type Check struct {
	Name string
	Ping func(ctx context.Context) error
}

func MongoCheck(client *mongo.Client) Check {
	return Check{
		Name: "mongo",
		Ping: func(ctx context.Context) error { return client.Ping(ctx, nil) },
	}
}

func RedisCheck(client *redis.Client) Check {
	return Check{
		Name: "redis",
		Ping: func(ctx context.Context) error { return client.Ping(ctx).Err() },
	}
}

type HealthHandler struct {
	checks []Check
	log    *logger.Logger
}

func NewHealthHandler(log *logger.Logger, checks ...Check) *HealthHandler {
	return &HealthHandler{
		checks: checks,
		log:    log,
	}
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if err := httputil.WriteJSON(w, http.StatusOK, HealthResponse{
		Status: statusOK,
	}); err != nil {
		h.log.Error("failed to write JSON response", "handler", "Health", "operation", "WriteJSON", "error", err)
	}
}

func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	status := http.StatusOK
	response := HealthResponse{
		Status:       statusReady,
		Dependencies: make(map[string]string, len(h.checks)),
	}

	for _, check := range h.checks {
		if err := check.Ping(ctx); err != nil {
			h.log.Error("Dependency health check failed",
				"dependency", check.Name,
				"error", err,
				"path", r.URL.Path,
			)
			response.Dependencies[check.Name] = statusError
			response.Status = statusUnavailable
			status = http.StatusServiceUnavailable
			continue
		}
		response.Dependencies[check.Name] = statusOK
	}

	if err := httputil.WriteJSON(w, status, response); err != nil {
		h.log.Error("failed to write JSON response", "handler", "Ready", "operation", "WriteJSON", "error", err)
	}
}

func (h *HealthHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/health", h.Health)
	router.GET("/ready", h.Ready)
}
