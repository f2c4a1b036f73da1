package scheduling

import (
	"context"
	"time"

	"github.com/panacea/panacea/pkg/pagination"
)

type Repository interface {
	Create(ctx context.Context, a *Appointment) error
	Get(ctx context.Context, id string) (*Appointment, error)
	// List orders by appointment date, earliest first.
	List(ctx context.Context, f Filter, page pagination.Params) ([]*Appointment, int, error)
	Update(ctx context.Context, a *Appointment) error
	SetStatus(ctx context.Context, id string, status Status, at time.Time) error
	CountByStatus(ctx context.Context, status Status) (int, error)
}
