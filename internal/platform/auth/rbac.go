package auth

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/panacea/panacea/internal/platform/apperr"
)

// Role is the closed set of user roles.
type Role string

const (
	RolePatient      Role = "patient"
	RoleDoctor       Role = "doctor"
	RoleNurse        Role = "nurse"
	RoleAdmin        Role = "admin"
	RoleReceptionist Role = "receptionist"
)

// DefaultRole is assigned when registration omits a role.
const DefaultRole = RolePatient

// Roles lists every valid role in declaration order.
func Roles() []Role {
	return []Role{RolePatient, RoleDoctor, RoleNurse, RoleAdmin, RoleReceptionist}
}

func (r Role) Valid() bool {
	switch r {
	case RolePatient, RoleDoctor, RoleNurse, RoleAdmin, RoleReceptionist:
		return true
	}
	return false
}

func (r Role) String() string { return string(r) }

// ParseRole accepts a role name case-insensitively. Empty input yields
// DefaultRole.
func ParseRole(s string) (Role, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return DefaultRole, nil
	}
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

// Allows reports whether r is in the allow-list. There is no implicit
// superuser: admin must be listed to pass.
func Allows(r Role, allowed ...Role) bool {
	for _, a := range allowed {
		if r == a {
			return true
		}
	}
	return false
}

// RequireRole returns middleware that admits only principals whose role is
// in the allow-list. It must run after Authenticate.
func RequireRole(roles ...Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p, ok := PrincipalFromContext(c.Request().Context())
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, msgNoToken)
			}
			if !Allows(p.Role, roles...) {
				return apperr.Newf(apperr.KindForbidden,
					"User role %q is not authorized to access this route", string(p.Role))
			}
			return next(c)
		}
	}
}
