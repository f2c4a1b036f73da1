package db

import (
	"context"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"

	"github.com/panacea/panacea/pkg/envelope"
)

// PoolStats is the pool snapshot shown by the store health route.
type PoolStats struct {
	TotalConns    int32 `json:"totalConns"`
	IdleConns     int32 `json:"idleConns"`
	AcquiredConns int32 `json:"acquiredConns"`
	MaxConns      int32 `json:"maxConns"`
}

func statsOf(pool *pgxpool.Pool) PoolStats {
	s := pool.Stat()
	return PoolStats{
		TotalConns:    s.TotalConns(),
		IdleConns:     s.IdleConns(),
		AcquiredConns: s.AcquiredConns(),
		MaxConns:      s.MaxConns(),
	}
}

// HealthHandler pings Postgres with a five second budget and reports the
// round trip alongside pool usage.
func HealthHandler(pool *pgxpool.Pool) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
		defer cancel()

		start := time.Now()
		data := map[string]any{"driver": "postgres", "pool": statsOf(pool)}
		if err := pool.Ping(ctx); err != nil {
			return envelope.RespondMeta(c, http.StatusServiceUnavailable, "Store unavailable",
				data, map[string]any{"error": err.Error()})
		}
		data["latency"] = time.Since(start).String()
		return envelope.Respond(c, http.StatusOK, "Store operational", data)
	}
}
