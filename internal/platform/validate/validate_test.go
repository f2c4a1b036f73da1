package validate

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/panacea/panacea/internal/platform/apperr"
)

type signup struct {
	Name     string `json:"name" validate:"required,min=2"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"min=6"`
	Role     string `json:"role,omitempty" validate:"omitempty,oneof=patient doctor"`
}

func (signup) ValidationMessages() map[string]string {
	return map[string]string{"email.email": "Please include a valid email"}
}

type item struct {
	Medicine string `json:"medicine" validate:"notblank"`
}

type order struct {
	Items []item `json:"items" validate:"required,dive"`
}

func TestValidate_OK(t *testing.T) {
	v := New()
	assert.NoError(t, v.Validate(&signup{Name: "Ada", Email: "ada@example.com", Password: "secret1"}))
}

func TestValidate_FieldErrors(t *testing.T) {
	v := New()
	err := v.Validate(&signup{Name: "A", Email: "nope", Password: "123", Role: "pilot"})
	require.Error(t, err)

	ae, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.KindValidation, ae.Kind)

	byField := map[string]string{}
	for _, f := range ae.Fields {
		byField[f.Field] = f.Message
	}
	assert.Equal(t, "name must be at least 2 characters", byField["name"])
	assert.Equal(t, "Please include a valid email", byField["email"])
	assert.Equal(t, "password must be at least 6 characters", byField["password"])
	assert.Equal(t, "role must be one of: patient, doctor", byField["role"])
}

func TestValidate_Dive(t *testing.T) {
	v := New()
	err := v.Validate(&order{Items: []item{{Medicine: "  "}}})
	require.Error(t, err)

	ae, _ := apperr.As(err)
	require.Len(t, ae.Fields, 1)
	assert.Equal(t, "medicine", ae.Fields[0].Field)
}

type login struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (l *login) Normalize() { l.Email = strings.ToLower(strings.TrimSpace(l.Email)) }

func TestBind(t *testing.T) {
	e := echo.New()
	e.Validator = New()

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"  ADA@Example.com ","password":"x"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	c := e.NewContext(req, httptest.NewRecorder())

	var in login
	require.NoError(t, Bind(c, &in))
	assert.Equal(t, "ada@example.com", in.Email)

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	c = e.NewContext(req, httptest.NewRecorder())
	err := Bind(c, &in)
	assert.Equal(t, apperr.KindBadRequest, apperr.KindOf(err))

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"nope"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	c = e.NewContext(req, httptest.NewRecorder())
	err = Bind(c, &login{})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestEmail(t *testing.T) {
	assert.True(t, Email("ada@example.com"))
	assert.False(t, Email("ada@"))
	assert.False(t, Email(""))
}
