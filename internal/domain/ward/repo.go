package ward

import (
	"context"
	"time"

	"github.com/panacea/panacea/internal/platform/apperr"
)

var (
	ErrWardNotFound = apperr.NotFound("Ward not found")
	ErrBedNotFound  = apperr.NotFound("Bed not found in this ward")
	ErrBedTaken     = apperr.BadRequest("Bed is already taken")
	ErrBedFree      = apperr.BadRequest("Bed is already free")
)

// Repository implementations apply Admit and Discharge as one atomic step:
// the bed flag and the ward counter never diverge, and occupied stays
// within [0, capacity].
type Repository interface {
	Count(ctx context.Context) (int, error)
	InsertMany(ctx context.Context, wards []*Ward) error
	// List orders wards by name.
	List(ctx context.Context) ([]*Ward, error)
	// Admit returns ErrWardNotFound, ErrBedNotFound or ErrBedTaken.
	Admit(ctx context.Context, wardID, bedID, patientID string, at time.Time) (*Ward, error)
	// Discharge returns the updated ward and the patient that held the bed,
	// or ErrWardNotFound, ErrBedNotFound or ErrBedFree.
	Discharge(ctx context.Context, wardID, bedID string, at time.Time) (*Ward, string, error)
	Totals(ctx context.Context) (Occupancy, error)
}
