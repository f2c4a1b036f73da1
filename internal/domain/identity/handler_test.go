package identity

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

type envelopeBody struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Meta    struct {
		Errors []struct {
			Field   string `json:"field"`
			Message string `json:"message"`
		} `json:"errors"`
	} `json:"meta"`
}

func newTestServer(t *testing.T) (*echo.Echo, *Service) {
	t.Helper()
	svc, _ := newTestService()
	e := echo.New()
	e.Validator = validate.New()
	e.HTTPErrorHandler = middleware.ErrorHandler(zerolog.Nop(), false)
	tokens := auth.NewTokens(testSecret, 0)
	NewHandler(svc).RegisterRoutes(e.Group("/api"), auth.Authenticate(tokens, svc))
	return e, svc
}

func do(e *echo.Echo, method, path, body, token string) (*httptest.ResponseRecorder, envelopeBody) {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	var env envelopeBody
	json.Unmarshal(rec.Body.Bytes(), &env)
	return rec, env
}

func TestHandler_RegisterLoginMe(t *testing.T) {
	e, _ := newTestServer(t)

	rec, env := do(e, http.MethodPost, "/api/auth/register",
		`{"name":"  Cristina Yang ","email":"YANG@Seattle.org","password":"cardio1","role":"doctor"}`, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "Registration successful", env.Message)

	var res AuthResult
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.Equal(t, "Cristina Yang", res.User.Name)
	assert.Equal(t, "yang@seattle.org", res.User.Email)
	assert.NotContains(t, rec.Body.String(), "password")

	rec, env = do(e, http.MethodPost, "/api/auth/login", `{"email":"yang@seattle.org","password":"cardio1"}`, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Login successful", env.Message)
	require.NoError(t, json.Unmarshal(env.Data, &res))

	rec, env = do(e, http.MethodGet, "/api/auth/me", "", res.Token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "User profile fetched", env.Message)
	assert.NotContains(t, rec.Body.String(), "$2a$")
}

func TestHandler_Register_Validation(t *testing.T) {
	e, _ := newTestServer(t)

	rec, env := do(e, http.MethodPost, "/api/auth/register",
		`{"name":" A ","email":"not-an-email","password":"123","role":"pilot"}`, "")
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.False(t, env.Success)
	assert.Equal(t, "Validation Error", env.Message)

	got := map[string]string{}
	for _, fe := range env.Meta.Errors {
		got[fe.Field] = fe.Message
	}
	assert.Equal(t, "Name must be at least 2 characters", got["name"])
	assert.Equal(t, "Must be a valid email address", got["email"])
	assert.Equal(t, "Password must be at least 6 characters", got["password"])
	assert.Equal(t, "Invalid role provided", got["role"])
}

func TestHandler_Register_Duplicate(t *testing.T) {
	e, _ := newTestServer(t)
	body := `{"name":"Alex","email":"alex@example.com","password":"secret1"}`
	rec, _ := do(e, http.MethodPost, "/api/auth/register", body, "")
	require.Equal(t, http.StatusCreated, rec.Code)

	rec, env := do(e, http.MethodPost, "/api/auth/register", body, "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "User already exists", env.Message)
}

func TestHandler_Login_Failures(t *testing.T) {
	e, _ := newTestServer(t)
	do(e, http.MethodPost, "/api/auth/register", `{"name":"Alex","email":"alex@example.com","password":"secret1"}`, "")

	rec, env := do(e, http.MethodPost, "/api/auth/login", `{"email":"alex@example.com","password":"wrong!"}`, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid email or password", env.Message)

	rec, env = do(e, http.MethodPost, "/api/auth/login", `{"email":"nobody@example.com","password":"secret1"}`, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid email or password", env.Message)

	rec, env = do(e, http.MethodPost, "/api/auth/login", `{"email":"bad"}`, "")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.Len(t, env.Meta.Errors, 2)
}

func TestHandler_Me_RequiresToken(t *testing.T) {
	e, _ := newTestServer(t)

	rec, env := do(e, http.MethodGet, "/api/auth/me", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Not authorized, no token", env.Message)

	rec, env = do(e, http.MethodGet, "/api/auth/me", "", "garbage")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Not authorized, token failed", env.Message)
}
