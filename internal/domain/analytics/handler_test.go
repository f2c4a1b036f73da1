package analytics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/panacea/panacea/internal/platform/apperr"
	"github.com/panacea/panacea/internal/platform/cache"
	"github.com/panacea/panacea/internal/platform/middleware"
)

func TestHandler_Stats(t *testing.T) {
	e := echo.New()
	e.HTTPErrorHandler = middleware.ErrorHandler(zerolog.Nop(), false)
	NewHandler(newService(&counts{patients: 1}, nil, 0)).RegisterRoutes(e.Group("/api"))

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/analytics/stats", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"trends":[40,30,45,60,55,65,1]`)
	assert.Contains(t, rec.Body.String(), `"occupancy":0`)
}

func TestInvalidateOnWrite(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	svc := newService(&counts{patients: 1}, cache.NewRedis(client, ""), time.Hour)

	e := echo.New()
	e.HTTPErrorHandler = middleware.ErrorHandler(zerolog.Nop(), false)
	g := e.Group("/api", InvalidateOnWrite(svc))
	NewHandler(svc).RegisterRoutes(g)
	g.POST("/patients", func(c echo.Context) error { return c.NoContent(http.StatusCreated) })
	g.PUT("/wards/:id/admit", func(echo.Context) error { return apperr.BadRequest("Bed is already taken") })

	tests := []struct {
		method, path string
		cleared      bool
	}{
		{http.MethodGet, "/api/analytics/stats", false},
		{http.MethodPut, "/api/wards/w1/admit", false},
		{http.MethodPost, "/api/patients", true},
	}
	for _, tc := range tests {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			require.NoError(t, mr.Set(StatsCacheKey, `{"patients":7}`))
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, httptest.NewRequest(tc.method, tc.path, nil))
			assert.Equal(t, !tc.cleared, mr.Exists(StatsCacheKey), "status %d", rec.Code)
		})
	}
}
