package scheduling

import (
	"strings"
	"time"

	"github.com/panacea/panacea/internal/domain/identity"
	"github.com/panacea/panacea/internal/domain/patient"
	"github.com/panacea/panacea/pkg/patch"
)

// Status transitions are unrestricted between any two values.
type Status string

const (
	StatusPending   Status = "Pending"
	StatusCompleted Status = "Completed"
	StatusCancelled Status = "Cancelled"
	StatusNoShow    Status = "No-Show"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusCompleted, StatusCancelled, StatusNoShow:
		return true
	}
	return false
}

type Appointment struct {
	ID          string            `json:"_id" bson:"_id"`
	PatientID   string            `json:"patientId" bson:"patientId"`
	DoctorID    string            `json:"doctorId" bson:"doctorId"`
	Date        time.Time         `json:"date" bson:"date"`
	Reason      string            `json:"reason" bson:"reason"`
	Status      Status            `json:"status" bson:"status"`
	Notes       string            `json:"notes,omitempty" bson:"notes,omitempty"`
	CreatedByID string            `json:"createdBy" bson:"createdBy"`
	Patient     *patient.Summary  `json:"patient,omitempty" bson:"-"`
	Doctor      *identity.Summary `json:"doctor,omitempty" bson:"-"`
	CreatedAt   time.Time         `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt" bson:"updatedAt"`
}

// Filter narrows List. Empty fields match everything.
type Filter struct {
	PatientID string
}

type BookRequest struct {
	PatientID string `json:"patientId"`
	DoctorID  string `json:"doctorId"`
	Date      string `json:"date"`
	Reason    string `json:"reason"`
	Notes     string `json:"notes,omitempty"`
}

func (r *BookRequest) Normalize() {
	r.PatientID = strings.TrimSpace(r.PatientID)
	r.DoctorID = strings.TrimSpace(r.DoctorID)
	r.Date = strings.TrimSpace(r.Date)
	r.Reason = strings.TrimSpace(r.Reason)
}

func (r *BookRequest) complete() bool {
	return r.PatientID != "" && r.DoctorID != "" && r.Date != "" && r.Reason != ""
}

// UpdateRequest replaces only the supplied fields.
type UpdateRequest struct {
	Status patch.Field[Status] `json:"status"`
	Date   patch.Field[string] `json:"date"`
	Reason patch.Field[string] `json:"reason"`
	Notes  patch.Field[string] `json:"notes"`
}

func (r *UpdateRequest) Normalize() {
	r.Date.Value = strings.TrimSpace(r.Date.Value)
	r.Reason.Value = strings.TrimSpace(r.Reason.Value)
}
