package identity

import (
	"context"

	"github.com/panacea/panacea/internal/platform/auth"
)

// Repository stores users. Implementations return apperr.ErrNotFound for a
// missing user and apperr.ErrDuplicate when the email is taken.
type Repository interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	FindByIDs(ctx context.Context, ids []string) ([]*User, error)
	CountByRole(ctx context.Context, role auth.Role) (int, error)
}
