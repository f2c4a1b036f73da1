package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/panacea/panacea/internal/platform/apperr"
)

func run(mw echo.MiddlewareFunc, h echo.HandlerFunc, req *http.Request) (*httptest.ResponseRecorder, error) {
	e := echo.New()
	e.HTTPErrorHandler = ErrorHandler(zerolog.Nop(), false)
	rec := httptest.NewRecorder()
	return rec, mw(h)(e.NewContext(req, rec))
}

func TestRequestID(t *testing.T) {
	tests := []struct {
		name    string
		inbound string
		keep    bool
	}{
		{"generated when absent", "", false},
		{"inbound kept", "ward-7f3", true},
		{"oversized replaced", strings.Repeat("x", 500), false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/wards", nil)
			if tc.inbound != "" {
				req.Header.Set(RequestIDHeader, tc.inbound)
			}
			var seen string
			rec, err := run(RequestID(), func(c echo.Context) error {
				seen, _ = c.Get("request_id").(string)
				return c.NoContent(http.StatusNoContent)
			}, req)
			require.NoError(t, err)

			got := rec.Header().Get(RequestIDHeader)
			assert.Equal(t, seen, got)
			assert.NotEmpty(t, got)
			assert.LessOrEqual(t, len(got), 128)
			if tc.keep {
				assert.Equal(t, tc.inbound, got)
			} else {
				assert.NotEqual(t, tc.inbound, got)
			}
		})
	}
}

func TestLogger_Levels(t *testing.T) {
	tests := []struct {
		name    string
		handler echo.HandlerFunc
		status  int
		level   string
	}{
		{"ok", func(c echo.Context) error { return c.NoContent(http.StatusOK) }, 200, "info"},
		{"client error", func(echo.Context) error { return apperr.New(apperr.KindForbidden, "nope") }, 403, "warn"},
		{"server error", func(echo.Context) error { return apperr.New(apperr.KindInternal, "boom") }, 500, "error"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			req := httptest.NewRequest(http.MethodGet, "/api/patients", nil)
			rec, err := run(Logger(zerolog.New(&buf)), func(c echo.Context) error {
				c.Set("user_id", "u-1")
				return tc.handler(c)
			}, req)

			require.NoError(t, err, "errors are rendered inside the logger")
			assert.Equal(t, tc.status, rec.Code)
			line := buf.String()
			assert.Contains(t, line, `"level":"`+tc.level+`"`)
			assert.Contains(t, line, `"user_id":"u-1"`)
			assert.Contains(t, line, `"path":"/api/patients"`)
		})
	}
}

func TestRecovery_CatchesPanic(t *testing.T) {
	var buf bytes.Buffer
	req := httptest.NewRequest(http.MethodGet, "/api/wards", nil)
	_, err := run(Recovery(zerolog.New(&buf)), func(echo.Context) error {
		panic("bed index out of range")
	}, req)

	require.Error(t, err)
	assert.Equal(t, apperr.KindInternal, apperr.KindOf(err))
	assert.Contains(t, buf.String(), "bed index out of range")
	assert.Contains(t, buf.String(), "handler panicked")
}

func TestRecovery_PassesThrough(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec, err := run(Recovery(zerolog.Nop()), func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	}, req)

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
}
