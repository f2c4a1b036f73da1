package scheduling

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/panacea/panacea/internal/domain/identity"
	"github.com/panacea/panacea/internal/domain/patient"
	"github.com/panacea/panacea/internal/platform/apperr"
	"github.com/panacea/panacea/internal/platform/auth"
	"github.com/panacea/panacea/pkg/dates"
	"github.com/panacea/panacea/pkg/pagination"
)

const (
	msgMissingFields = "Please fill in all fields"
	msgNotFound      = "Appointment not found"
	msgInvalidStatus = "Invalid appointment status"
	msgInvalidDate   = "Invalid appointment date"
)

type PatientDirectory interface {
	Exists(ctx context.Context, id string) (bool, error)
	Summaries(ctx context.Context, ids []string) (map[string]patient.Summary, error)
}

type UserDirectory interface {
	Exists(ctx context.Context, id string, roles ...auth.Role) (bool, error)
	Summaries(ctx context.Context, ids []string) (map[string]identity.Summary, error)
}

type Service struct {
	repo     Repository
	patients PatientDirectory
	users    UserDirectory
	now      func() time.Time
}

func NewService(repo Repository, patients PatientDirectory, users UserDirectory) *Service {
	return &Service{repo: repo, patients: patients, users: users, now: time.Now}
}

// Book creates a Pending appointment on behalf of creator.
func (s *Service) Book(ctx context.Context, req BookRequest, creator auth.Principal) (*Appointment, error) {
	if !req.complete() {
		return nil, apperr.BadRequest(msgMissingFields)
	}
	date, err := dates.Parse(req.Date)
	if err != nil {
		return nil, apperr.BadRequest(msgInvalidDate)
	}

	ok, err := s.patients.Exists(ctx, req.PatientID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.NotFound("Patient not found")
	}
	ok, err = s.users.Exists(ctx, req.DoctorID, auth.RoleDoctor)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.NotFound("Doctor not found")
	}

	now := s.now().UTC()
	a := &Appointment{
		ID:          uuid.NewString(),
		PatientID:   req.PatientID,
		DoctorID:    req.DoctorID,
		Date:        date,
		Reason:      req.Reason,
		Status:      StatusPending,
		Notes:       req.Notes,
		CreatedByID: creator.ID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, errors.Wrap(err, "create appointment")
	}
	return a, nil
}

// List returns appointments earliest first with patient and doctor resolved.
func (s *Service) List(ctx context.Context, f Filter, page pagination.Params) ([]*Appointment, int, error) {
	appts, total, err := s.repo.List(ctx, f, page)
	if err != nil {
		return nil, 0, errors.Wrap(err, "list appointments")
	}
	if err := s.resolve(ctx, appts); err != nil {
		return nil, 0, err
	}
	return appts, total, nil
}

func (s *Service) Update(ctx context.Context, id string, req UpdateRequest) (*Appointment, error) {
	if req.Status.Set && !req.Status.Value.Valid() {
		return nil, apperr.BadRequest(msgInvalidStatus)
	}
	if req.Reason.Set && req.Reason.Value == "" {
		return nil, apperr.BadRequest("Reason cannot be cleared")
	}
	var date time.Time
	if req.Date.Set {
		d, err := dates.Parse(req.Date.Value)
		if err != nil {
			return nil, apperr.BadRequest(msgInvalidDate)
		}
		date = d
	}

	a, err := s.repo.Get(ctx, id)
	if apperr.IsNotFound(err) {
		return nil, apperr.NotFound(msgNotFound)
	}
	if err != nil {
		return nil, errors.Wrap(err, "get appointment")
	}

	req.Status.Apply(&a.Status)
	req.Reason.Apply(&a.Reason)
	req.Notes.Apply(&a.Notes)
	if req.Date.Set {
		a.Date = date
	}
	a.UpdatedAt = s.now().UTC()

	if err := s.repo.Update(ctx, a); err != nil {
		if apperr.IsNotFound(err) {
			return nil, apperr.NotFound(msgNotFound)
		}
		return nil, errors.Wrap(err, "update appointment")
	}
	if err := s.resolve(ctx, []*Appointment{a}); err != nil {
		return nil, err
	}
	return a, nil
}

// Complete marks the appointment Completed.
func (s *Service) Complete(ctx context.Context, id string) error {
	err := s.repo.SetStatus(ctx, id, StatusCompleted, s.now().UTC())
	if apperr.IsNotFound(err) {
		return apperr.NotFound(msgNotFound)
	}
	return errors.Wrap(err, "complete appointment")
}

func (s *Service) CountPending(ctx context.Context) (int, error) {
	n, err := s.repo.CountByStatus(ctx, StatusPending)
	return n, errors.Wrap(err, "count pending appointments")
}

func (s *Service) resolve(ctx context.Context, appts []*Appointment) error {
	if len(appts) == 0 {
		return nil
	}
	patientIDs := make([]string, 0, len(appts))
	doctorIDs := make([]string, 0, len(appts))
	for _, a := range appts {
		patientIDs = append(patientIDs, a.PatientID)
		doctorIDs = append(doctorIDs, a.DoctorID)
	}
	patients, err := s.patients.Summaries(ctx, patientIDs)
	if err != nil {
		return err
	}
	doctors, err := s.users.Summaries(ctx, doctorIDs)
	if err != nil {
		return err
	}
	for _, a := range appts {
		if p, ok := patients[a.PatientID]; ok {
			a.Patient = &patient.Summary{ID: p.ID, Name: p.Name, Phone: p.Phone}
		}
		if d, ok := doctors[a.DoctorID]; ok {
			a.Doctor = &d
		}
	}
	return nil
}
