package clinical

import (
	"strings"
	"time"

	"github.com/panacea/panacea/internal/domain/identity"
	"github.com/panacea/panacea/internal/domain/patient"
)

const DefaultBloodPressure = "N/A"

type Vitals struct {
	BloodPressure string   `json:"bloodPressure" bson:"bloodPressure"`
	Temperature   *float64 `json:"temperature" bson:"temperature" validate:"required"`
	Pulse         *float64 `json:"pulse" bson:"pulse" validate:"required"`
	Weight        *float64 `json:"weight" bson:"weight" validate:"required"`
}

type Prescription struct {
	Medicine  string `json:"medicine" bson:"medicine" validate:"notblank"`
	Dosage    string `json:"dosage" bson:"dosage" validate:"notblank"`
	Frequency string `json:"frequency" bson:"frequency" validate:"notblank"`
	Duration  string `json:"duration" bson:"duration" validate:"notblank"`
}

// Record is immutable once written.
type Record struct {
	ID            string            `json:"_id" bson:"_id"`
	PatientID     string            `json:"patientId" bson:"patientId"`
	DoctorID      string            `json:"doctorId" bson:"doctorId"`
	AppointmentID string            `json:"appointmentId,omitempty" bson:"appointmentId,omitempty"`
	Vitals        Vitals            `json:"vitals" bson:"vitals"`
	Diagnosis     string            `json:"diagnosis" bson:"diagnosis"`
	Treatment     string            `json:"treatment" bson:"treatment"`
	Prescriptions []Prescription    `json:"prescriptions" bson:"prescriptions"`
	Notes         string            `json:"notes,omitempty" bson:"notes,omitempty"`
	Patient       *patient.Summary  `json:"patient,omitempty" bson:"-"`
	Doctor        *identity.Summary `json:"doctor,omitempty" bson:"-"`
	CreatedAt     time.Time         `json:"createdAt" bson:"createdAt"`
	UpdatedAt     time.Time         `json:"updatedAt" bson:"updatedAt"`
}

type CreateRequest struct {
	PatientID     string         `json:"patientId" validate:"notblank"`
	AppointmentID string         `json:"appointmentId,omitempty"`
	Vitals        Vitals         `json:"vitals"`
	Diagnosis     string         `json:"diagnosis" validate:"notblank"`
	Treatment     string         `json:"treatment" validate:"notblank"`
	Prescriptions []Prescription `json:"prescriptions" validate:"dive"`
	Notes         string         `json:"notes,omitempty"`
}

func (r *CreateRequest) Normalize() {
	r.PatientID = strings.TrimSpace(r.PatientID)
	r.AppointmentID = strings.TrimSpace(r.AppointmentID)
	r.Diagnosis = strings.TrimSpace(r.Diagnosis)
	r.Treatment = strings.TrimSpace(r.Treatment)
	if strings.TrimSpace(r.Vitals.BloodPressure) == "" {
		r.Vitals.BloodPressure = DefaultBloodPressure
	}
}

func (CreateRequest) ValidationMessages() map[string]string {
	return map[string]string{
		"patientId.notblank":   "Patient ID is required",
		"diagnosis.notblank":   "Diagnosis is required",
		"treatment.notblank":   "Treatment is required",
		"temperature.required": "Temperature is required",
		"pulse.required":       "Pulse is required",
		"weight.required":      "Weight is required",
	}
}
