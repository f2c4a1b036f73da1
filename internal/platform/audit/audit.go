// Package audit records who did what. Writes happen off the request path:
// a failed or dropped entry is logged and never reaches the caller.
package audit

import (
	"context"
	"time"

	"github.com/panacea/panacea/pkg/pagination"
)

// Actions recorded by the API.
const (
	ActionPatientArchive   = "PATIENT_ARCHIVE"
	ActionPatientAdmission = "PATIENT_ADMISSION"
	ActionPatientDischarge = "PATIENT_DISCHARGE"
	ActionSystemInit       = "SYSTEM_INIT"
)

// Entry is an append-only audit record.
type Entry struct {
	ID         string    `json:"_id" bson:"_id"`
	UserID     string    `json:"user" bson:"userId"`
	UserName   string    `json:"userName,omitempty" bson:"userName"`
	Action     string    `json:"action" bson:"action"`
	Details    string    `json:"details" bson:"details"`
	ResourceID string    `json:"resourceId,omitempty" bson:"resourceId,omitempty"`
	IP         string    `json:"ip,omitempty" bson:"ip,omitempty"`
	CreatedAt  time.Time `json:"createdAt" bson:"createdAt"`
}

// Store persists entries. There is deliberately no update or delete.
type Store interface {
	Insert(ctx context.Context, e *Entry) error
	List(ctx context.Context, p pagination.Params) ([]*Entry, int, error)
}

// Recorder is what services depend on to emit entries.
type Recorder interface {
	Record(ctx context.Context, action, details, resourceID string)
}

type ipKey struct{}

// WithIP attaches the client address that Record copies onto entries.
func WithIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, ipKey{}, ip)
}

func ipFromContext(ctx context.Context) string {
	ip, _ := ctx.Value(ipKey{}).(string)
	return ip
}
