package clinical

import (
	"context"

	"github.com/panacea/panacea/pkg/pagination"
)

type Repository interface {
	// Create returns apperr.ErrNotFound when a referenced row is missing.
	Create(ctx context.Context, r *Record) error
	// ListByPatient orders newest first.
	ListByPatient(ctx context.Context, patientID string, page pagination.Params) ([]*Record, int, error)
	Recent(ctx context.Context, limit int) ([]*Record, error)
}
