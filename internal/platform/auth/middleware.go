package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/panacea/panacea/internal/platform/apperr"
)

type contextKey string

const principalKey contextKey = "principal"

const (
	msgNoToken     = "Not authorized, no token"
	msgTokenFailed = "Not authorized, token failed"
)

// Principal is the authenticated caller attached to the request context.
type Principal struct {
	ID    string
	Name  string
	Email string
	Role  Role
}

// PrincipalResolver loads the user a verified token refers to. A user that
// no longer exists must be reported as apperr.ErrNotFound.
type PrincipalResolver interface {
	ResolvePrincipal(ctx context.Context, userID string) (Principal, error)
}

// Authenticate requires a valid bearer token that resolves to an existing
// user and stores the resulting Principal on the request context.
func Authenticate(tokens *Tokens, users PrincipalResolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, msgNoToken)
			}

			claims, err := tokens.Verify(strings.TrimSpace(parts[1]))
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, msgTokenFailed).SetInternal(err)
			}

			ctx := c.Request().Context()
			p, err := users.ResolvePrincipal(ctx, claims.Subject)
			if apperr.IsNotFound(err) {
				return echo.NewHTTPError(http.StatusUnauthorized, msgTokenFailed).SetInternal(err)
			}
			if err != nil {
				return err
			}

			c.Set("user_id", p.ID)
			c.SetRequest(c.Request().WithContext(WithPrincipal(ctx, p)))
			return next(c)
		}
	}
}

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey).(Principal)
	return p, ok
}

func UserIDFromContext(ctx context.Context) string {
	p, _ := PrincipalFromContext(ctx)
	return p.ID
}
