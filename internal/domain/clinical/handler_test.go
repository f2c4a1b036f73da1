package clinical

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

func newTestServer() (*echo.Echo, *completer) {
	svc, appts := newTestService()
	e := echo.New()
	e.Validator = validate.New()
	e.HTTPErrorHandler = middleware.ErrorHandler(zerolog.Nop(), false)
	g := e.Group("/api", func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.SetRequest(c.Request().WithContext(auth.WithPrincipal(c.Request().Context(), doctor)))
			return next(c)
		}
	})
	NewHandler(svc).RegisterRoutes(g)
	return e, appts
}

func send(e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

const validRecord = `{
	"patientId": "p1",
	"appointmentId": "a9",
	"vitals": {"temperature": 38.1, "pulse": 90, "weight": 70},
	"diagnosis": "Bronchitis",
	"treatment": "Antibiotics",
	"prescriptions": [{"medicine": "Amoxicillin", "dosage": "250mg", "frequency": "2x daily", "duration": "7 days"}]
}`

func TestHandler_CreateAndList(t *testing.T) {
	e, appts := newTestServer()

	rec := send(e, http.MethodPost, "/api/records", validRecord)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"bloodPressure":"N/A"`)
	assert.Equal(t, []string{"a9"}, appts.ids)

	rec = send(e, http.MethodGet, "/api/records/p1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Data []Record `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Data, 1)
	assert.Equal(t, "Bronchitis", body.Data[0].Diagnosis)
	assert.Equal(t, "grey@panacea.io", body.Data[0].Doctor.Email)

	rec = send(e, http.MethodGet, "/api/records/p2", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"data":[]`)
}

func TestHandler_Recent(t *testing.T) {
	e, _ := newTestServer()
	send(e, http.MethodPost, "/api/records", validRecord)

	rec := send(e, http.MethodGet, "/api/records/all", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Data []Record `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Data, 1)
	assert.Equal(t, "Jane Doe", body.Data[0].Patient.Name)
}

func TestHandler_Create_Validation(t *testing.T) {
	e, _ := newTestServer()

	rec := send(e, http.MethodPost, "/api/records", `{"patientId":"p1","vitals":{"pulse":80},"diagnosis":" ","prescriptions":[{"medicine":""}]}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Diagnosis is required")
	assert.Contains(t, body, "Treatment is required")
	assert.Contains(t, body, "Temperature is required")
	assert.Contains(t, body, "medicine is required")
	assert.NotContains(t, body, "Pulse is required")
}
