package mongodb

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/panacea/panacea/pkg/envelope"
)

// HealthHandler reports whether the primary answers a ping within five seconds.
func HealthHandler(client *mongo.Client) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
		defer cancel()

		start := time.Now()
		if err := client.Ping(ctx, readpref.Primary()); err != nil {
			return envelope.RespondMeta(c, http.StatusServiceUnavailable, "Store unavailable",
				map[string]any{"driver": "mongo"}, map[string]any{"error": err.Error()})
		}
		return envelope.Respond(c, http.StatusOK, "Store operational", map[string]any{
			"driver":  "mongo",
			"latency": time.Since(start).String(),
		})
	}
}
