package ward

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/panacea/panacea/internal/domain/patient"
	"github.com/panacea/panacea/internal/platform/apperr"
	"github.com/panacea/panacea/internal/platform/audit"
)

const msgAlreadySeeded = "Wards already initialized"

type PatientDirectory interface {
	Exists(ctx context.Context, id string) (bool, error)
	Summaries(ctx context.Context, ids []string) (map[string]patient.Summary, error)
}

type Service struct {
	repo     Repository
	patients PatientDirectory
	audit    audit.Recorder
	now      func() time.Time
}

func NewService(repo Repository, patients PatientDirectory, recorder audit.Recorder) *Service {
	return &Service{repo: repo, patients: patients, audit: recorder, now: time.Now}
}

// Seed creates the default ward layout once.
func (s *Service) Seed(ctx context.Context) ([]*Ward, error) {
	n, err := s.repo.Count(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "count wards")
	}
	if n > 0 {
		return nil, apperr.BadRequest(msgAlreadySeeded)
	}

	wards := DefaultLayout(uuid.NewString, s.now().UTC())
	if err := s.repo.InsertMany(ctx, wards); err != nil {
		if apperr.IsDuplicate(err) {
			return nil, apperr.BadRequest(msgAlreadySeeded)
		}
		return nil, errors.Wrap(err, "insert wards")
	}
	s.audit.Record(ctx, audit.ActionSystemInit, "Initialized Hospital Ward Layout", "")
	return wards, nil
}

// List returns every ward with occupying patients resolved.
func (s *Service) List(ctx context.Context) ([]*Ward, error) {
	wards, err := s.repo.List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list wards")
	}
	if err := s.resolve(ctx, wards...); err != nil {
		return nil, err
	}
	return wards, nil
}

func (s *Service) Admit(ctx context.Context, wardID string, req AdmitRequest) (*Ward, error) {
	if req.PatientID == "" || req.BedID == "" {
		return nil, apperr.BadRequest("Patient ID and Bed ID are required")
	}
	ok, err := s.patients.Exists(ctx, req.PatientID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.NotFound("Patient not found")
	}

	w, err := s.repo.Admit(ctx, wardID, req.BedID, req.PatientID, s.now().UTC())
	if err != nil {
		return nil, s.translate(err, "admit patient")
	}
	b, _ := w.Bed(req.BedID)
	s.audit.Record(ctx, audit.ActionPatientAdmission,
		fmt.Sprintf("Admitted patient to %s - Bed %s", w.Name, b.Number), req.PatientID)

	if err := s.resolve(ctx, w); err != nil {
		return nil, err
	}
	return w, nil
}

func (s *Service) Discharge(ctx context.Context, wardID string, req DischargeRequest) (*Ward, error) {
	if req.BedID == "" {
		return nil, apperr.BadRequest("Bed ID is required")
	}

	w, patientID, err := s.repo.Discharge(ctx, wardID, req.BedID, s.now().UTC())
	if err != nil {
		return nil, s.translate(err, "discharge patient")
	}
	b, _ := w.Bed(req.BedID)
	s.audit.Record(ctx, audit.ActionPatientDischarge,
		fmt.Sprintf("Discharged patient from %s - Bed %s", w.Name, b.Number), patientID)

	if err := s.resolve(ctx, w); err != nil {
		return nil, err
	}
	return w, nil
}

// Totals feeds hospital-wide occupancy.
func (s *Service) Totals(ctx context.Context) (Occupancy, error) {
	o, err := s.repo.Totals(ctx)
	return o, errors.Wrap(err, "ward totals")
}

func (s *Service) translate(err error, op string) error {
	if _, ok := apperr.As(err); ok {
		return err
	}
	if apperr.IsNotFound(err) {
		return ErrWardNotFound
	}
	return errors.Wrap(err, op)
}

func (s *Service) resolve(ctx context.Context, wards ...*Ward) error {
	var ids []string
	for _, w := range wards {
		for _, b := range w.Beds {
			if b.Occupied && b.PatientID != "" {
				ids = append(ids, b.PatientID)
			}
		}
	}
	if len(ids) == 0 {
		return nil
	}
	found, err := s.patients.Summaries(ctx, ids)
	if err != nil {
		return err
	}
	for _, w := range wards {
		for i := range w.Beds {
			b := &w.Beds[i]
			if p, ok := found[b.PatientID]; ok && b.Occupied {
				b.Patient = &patient.Summary{ID: p.ID, Name: p.Name, Gender: p.Gender}
			}
		}
	}
	return nil
}
