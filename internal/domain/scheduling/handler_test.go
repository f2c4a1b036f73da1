package scheduling

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/panacea/panacea/internal/platform/auth"
	"github.com/panacea/panacea/internal/platform/middleware"
	"github.com/panacea/panacea/internal/platform/validate"
)

func newTestServer() (*echo.Echo, *Service) {
	svc, _ := newTestService()
	e := echo.New()
	e.Validator = validate.New()
	e.HTTPErrorHandler = middleware.ErrorHandler(zerolog.Nop(), false)
	g := e.Group("/api", func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.SetRequest(c.Request().WithContext(auth.WithPrincipal(c.Request().Context(), nurse)))
			return next(c)
		}
	})
	NewHandler(svc).RegisterRoutes(g)
	return e, svc
}

func send(e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestHandler_BookAndList(t *testing.T) {
	e, _ := newTestServer()

	rec := send(e, http.MethodPost, "/api/appointments", `{"patientId":"p1","doctorId":"d1","date":"2024-07-01T10:00","reason":"Fever"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	send(e, http.MethodPost, "/api/appointments", `{"patientId":"p2","doctorId":"d1","date":"2024-06-01","reason":"Cough"}`)

	rec = send(e, http.MethodGet, "/api/appointments?patientId=p1", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data []Appointment `json:"data"`
		Meta struct {
			Count int `json:"count"`
		} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 1, body.Meta.Count)
	require.Len(t, body.Data, 1)
	assert.Equal(t, "Fever", body.Data[0].Reason)
	assert.Equal(t, "Jane Doe", body.Data[0].Patient.Name)
	assert.Equal(t, "Dr. Grey", body.Data[0].Doctor.Name)
}

func TestHandler_Book_MissingFields(t *testing.T) {
	e, _ := newTestServer()
	rec := send(e, http.MethodPost, "/api/appointments", `{"patientId":"p1"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Please fill in all fields")
}

func TestHandler_Update(t *testing.T) {
	e, _ := newTestServer()
	rec := send(e, http.MethodPost, "/api/appointments", `{"patientId":"p1","doctorId":"d1","date":"2024-07-01","reason":"Fever"}`)
	var created struct {
		Data Appointment `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	rec = send(e, http.MethodPut, "/api/appointments/"+created.Data.ID, `{"status":"No-Show"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"No-Show"`)

	rec = send(e, http.MethodPut, "/api/appointments/missing", `{"status":"Cancelled"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Appointment not found")
}
