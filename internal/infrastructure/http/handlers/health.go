package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

const probeTimeout = 3 * time.Second

// Probes exposes the liveness and readiness endpoints. Liveness only proves
// the process is serving; readiness additionally pings the auction store and
// the detail cache, since the engine cannot settle anything without them.
type Probes struct {
	mongo *mongo.Database
	redis *redis.Client
}

func NewProbes(db *mongo.Database, rdb *redis.Client) *Probes {
	return &Probes{mongo: db, redis: rdb}
}

type dependencyStatus struct {
	Status  string `json:"status"`
	Latency string `json:"latency,omitempty"`
	Error   string `json:"error,omitempty"`
}

type readinessResponse struct {
	Status       string                      `json:"status"`
	Dependencies map[string]dependencyStatus `json:"dependencies"`
}

func (p *Probes) Liveness(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (p *Probes) Readiness(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), probeTimeout)
	defer cancel()

	deps := map[string]dependencyStatus{
		"mongodb": p.check(func() error { return p.mongo.Client().Ping(ctx, nil) }),
		"redis":   p.check(func() error { return p.redis.Ping(ctx).Err() }),
	}

	status, code := "ok", http.StatusOK
	for _, d := range deps {
		if d.Status != "ok" {
			status, code = "degraded", http.StatusServiceUnavailable
			break
		}
	}

	return c.JSON(code, readinessResponse{Status: status, Dependencies: deps})
}

func (p *Probes) check(ping func() error) dependencyStatus {
	start := time.Now()
	if err := ping(); err != nil {
		return dependencyStatus{Status: "unhealthy", Error: err.Error()}
	}
	return dependencyStatus{Status: "ok", Latency: time.Since(start).Round(time.Millisecond).String()}
}
