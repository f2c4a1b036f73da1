package clinical

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/panacea/panacea/internal/domain/identity"
	"github.com/panacea/panacea/internal/domain/patient"
	"github.com/panacea/panacea/internal/platform/apperr"
	"github.com/panacea/panacea/internal/platform/auth"
	"github.com/panacea/panacea/pkg/pagination"
)

const RecentLimit = 20

type PatientDirectory interface {
	Exists(ctx context.Context, id string) (bool, error)
	Summaries(ctx context.Context, ids []string) (map[string]patient.Summary, error)
}

type UserDirectory interface {
	Summaries(ctx context.Context, ids []string) (map[string]identity.Summary, error)
}

// AppointmentCompleter closes the visit a record was written for.
type AppointmentCompleter interface {
	Complete(ctx context.Context, id string) error
}

type Service struct {
	repo         Repository
	patients     PatientDirectory
	users        UserDirectory
	appointments AppointmentCompleter
	logger       zerolog.Logger
	now          func() time.Time
}

func NewService(repo Repository, patients PatientDirectory, users UserDirectory, appointments AppointmentCompleter, logger zerolog.Logger) *Service {
	return &Service{
		repo:         repo,
		patients:     patients,
		users:        users,
		appointments: appointments,
		logger:       logger.With().Str("component", "clinical").Logger(),
		now:          time.Now,
	}
}

// Create stores a record authored by doctor. A linked appointment is then
// marked Completed; failing that only logs.
func (s *Service) Create(ctx context.Context, req CreateRequest, doctor auth.Principal) (*Record, error) {
	ok, err := s.patients.Exists(ctx, req.PatientID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.NotFound("Patient not found")
	}

	now := s.now().UTC()
	r := &Record{
		ID:            uuid.NewString(),
		PatientID:     req.PatientID,
		DoctorID:      doctor.ID,
		AppointmentID: req.AppointmentID,
		Vitals:        req.Vitals,
		Diagnosis:     req.Diagnosis,
		Treatment:     req.Treatment,
		Prescriptions: req.Prescriptions,
		Notes:         req.Notes,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if r.Prescriptions == nil {
		r.Prescriptions = []Prescription{}
	}
	if err := s.repo.Create(ctx, r); err != nil {
		return nil, errors.Wrap(err, "create medical record")
	}

	if r.AppointmentID != "" {
		if err := s.appointments.Complete(ctx, r.AppointmentID); err != nil {
			s.logger.Error().Err(err).
				Str("record_id", r.ID).
				Str("appointment_id", r.AppointmentID).
				Msg("failed to complete appointment for medical record")
		}
	}
	return r, nil
}

func (s *Service) ListByPatient(ctx context.Context, patientID string, page pagination.Params) ([]*Record, int, error) {
	recs, total, err := s.repo.ListByPatient(ctx, patientID, page)
	if err != nil {
		return nil, 0, errors.Wrap(err, "list medical records")
	}
	if err := s.resolveDoctors(ctx, recs, true); err != nil {
		return nil, 0, err
	}
	return recs, total, nil
}

// Recent returns the newest records across all patients.
func (s *Service) Recent(ctx context.Context) ([]*Record, error) {
	recs, err := s.repo.Recent(ctx, RecentLimit)
	if err != nil {
		return nil, errors.Wrap(err, "recent medical records")
	}
	if len(recs) == 0 {
		return recs, nil
	}

	ids := make([]string, 0, len(recs))
	for _, r := range recs {
		ids = append(ids, r.PatientID)
	}
	patients, err := s.patients.Summaries(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, r := range recs {
		if p, ok := patients[r.PatientID]; ok {
			r.Patient = &patient.Summary{ID: p.ID, Name: p.Name, Gender: p.Gender, DOB: p.DOB}
		}
	}
	if err := s.resolveDoctors(ctx, recs, false); err != nil {
		return nil, err
	}
	return recs, nil
}

func (s *Service) resolveDoctors(ctx context.Context, recs []*Record, withEmail bool) error {
	if len(recs) == 0 {
		return nil
	}
	ids := make([]string, 0, len(recs))
	for _, r := range recs {
		ids = append(ids, r.DoctorID)
	}
	doctors, err := s.users.Summaries(ctx, ids)
	if err != nil {
		return err
	}
	for _, r := range recs {
		d, ok := doctors[r.DoctorID]
		if !ok {
			continue
		}
		if !withEmail {
			d.Email = ""
		}
		r.Doctor = &d
	}
	return nil
}
