package identity

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/panacea/panacea/internal/platform/apperr"
	"github.com/panacea/panacea/internal/platform/auth"
)

const testSecret = "test-secret-that-is-long-enough-for-hs256"

func newTestService() (*Service, *MemoryRepo) {
	repo := NewMemoryRepo()
	return NewService(repo, auth.NewTokens(testSecret, time.Hour)), repo
}

func register(t *testing.T, svc *Service, name, email, role string) *AuthResult {
	t.Helper()
	res, err := svc.Register(context.Background(), RegisterRequest{Name: name, Email: email, Password: "secret123", Role: role})
	require.NoError(t, err)
	return res
}

func TestService_Register(t *testing.T) {
	svc, repo := newTestService()

	res := register(t, svc, "Meredith Grey", "grey@seattle.org", "doctor")
	assert.NotEmpty(t, res.Token)
	assert.Equal(t, auth.RoleDoctor, res.User.Role)
	assert.Equal(t, "grey@seattle.org", res.User.Email)

	stored, err := repo.GetByEmail(context.Background(), "grey@seattle.org")
	require.NoError(t, err)
	assert.NotEqual(t, "secret123", stored.PasswordHash)
	assert.True(t, auth.CheckPassword(stored.PasswordHash, "secret123"))

	claims, err := auth.NewTokens(testSecret, time.Hour).Verify(res.Token)
	require.NoError(t, err)
	assert.Equal(t, stored.ID, claims.Subject)
}

func TestService_Register_DefaultRole(t *testing.T) {
	svc, _ := newTestService()
	res := register(t, svc, "Pat", "pat@example.com", "")
	assert.Equal(t, auth.RolePatient, res.User.Role)
}

func TestService_Register_Duplicate(t *testing.T) {
	svc, _ := newTestService()
	register(t, svc, "Pat", "pat@example.com", "")

	_, err := svc.Register(context.Background(), RegisterRequest{Name: "Other", Email: "pat@example.com", Password: "secret123"})
	ae, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.KindConflict, ae.Kind)
	assert.Equal(t, "User already exists", ae.Message)
}

func TestService_Login(t *testing.T) {
	svc, _ := newTestService()
	register(t, svc, "Pat", "pat@example.com", "nurse")

	res, err := svc.Login(context.Background(), LoginRequest{Email: "pat@example.com", Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, auth.RoleNurse, res.User.Role)
}

func TestService_Login_SameErrorForBothFailures(t *testing.T) {
	svc, _ := newTestService()
	register(t, svc, "Pat", "pat@example.com", "")

	_, wrongPassword := svc.Login(context.Background(), LoginRequest{Email: "pat@example.com", Password: "nope-nope"})
	_, unknownEmail := svc.Login(context.Background(), LoginRequest{Email: "ghost@example.com", Password: "secret123"})

	require.Error(t, wrongPassword)
	require.Error(t, unknownEmail)
	assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(wrongPassword))
	assert.Equal(t, wrongPassword.Error(), unknownEmail.Error())
}

func TestService_ResolvePrincipal(t *testing.T) {
	svc, _ := newTestService()
	res := register(t, svc, "Admin", "admin@example.com", "admin")

	p, err := svc.ResolvePrincipal(context.Background(), res.User.ID)
	require.NoError(t, err)
	assert.Equal(t, auth.RoleAdmin, p.Role)
	assert.Equal(t, "Admin", p.Name)

	_, err = svc.ResolvePrincipal(context.Background(), "missing")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestService_SummariesAndCounts(t *testing.T) {
	svc, _ := newTestService()
	a := register(t, svc, "Dr A", "a@example.com", "doctor")
	b := register(t, svc, "Dr B", "b@example.com", "doctor")
	register(t, svc, "Nurse", "n@example.com", "nurse")

	got, err := svc.Summaries(context.Background(), []string{a.User.ID, b.User.ID, a.User.ID, "", "ghost"})
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Equal(t, "Dr B", got[b.User.ID].Name)

	n, err := svc.CountDoctors(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	ok, err := svc.Exists(context.Background(), a.User.ID, auth.RoleDoctor)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, _ = svc.Exists(context.Background(), a.User.ID, auth.RoleNurse)
	assert.False(t, ok)
	ok, _ = svc.Exists(context.Background(), "ghost")
	assert.False(t, ok)
}
