package patient

import (
	"context"
	"time"

	"github.com/panacea/panacea/pkg/pagination"
)

// Repository stores patients. Every method except FindByIDs sees active
// (non-archived) patients only. Create and Update return apperr.ErrDuplicate
// when another active patient holds the phone number.
type Repository interface {
	Create(ctx context.Context, p *Patient) error
	GetActive(ctx context.Context, id string) (*Patient, error)
	ListActive(ctx context.Context, page pagination.Params) ([]*Patient, int, error)
	Update(ctx context.Context, p *Patient) error
	Archive(ctx context.Context, id string, at time.Time) (*Patient, error)
	CountActive(ctx context.Context) (int, error)

	// FindByIDs resolves references for display and includes archived rows.
	FindByIDs(ctx context.Context, ids []string) ([]*Patient, error)
}
