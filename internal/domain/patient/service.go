package patient

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/panacea/panacea/internal/domain/identity"
	"github.com/panacea/panacea/internal/platform/apperr"
	"github.com/panacea/panacea/internal/platform/audit"
	"github.com/panacea/panacea/internal/platform/auth"
	"github.com/panacea/panacea/pkg/dates"
	"github.com/panacea/panacea/pkg/pagination"
)

const (
	msgNotFound   = "Patient not found"
	msgPhoneInUse = "Patient already registered with this phone number"
	msgInvalidDOB = "Date of birth must be a date"
)

// UserResolver resolves registrant references.
type UserResolver interface {
	Summaries(ctx context.Context, ids []string) (map[string]identity.Summary, error)
}

type Service struct {
	repo  Repository
	users UserResolver
	audit audit.Recorder
	now   func() time.Time
}

func NewService(repo Repository, users UserResolver, recorder audit.Recorder) *Service {
	return &Service{repo: repo, users: users, audit: recorder, now: time.Now}
}

func (s *Service) Create(ctx context.Context, req CreateRequest, registrar auth.Principal) (*Patient, error) {
	var dob *time.Time
	if req.DOB != "" {
		t, err := dates.Parse(req.DOB)
		if err != nil {
			return nil, apperr.BadRequest(msgInvalidDOB)
		}
		dob = &t
	}

	now := s.now().UTC()
	p := &Patient{
		ID:             uuid.NewString(),
		Name:           req.Name,
		Email:          req.Email,
		Phone:          req.Phone,
		DOB:            dob,
		Gender:         req.Gender,
		Address:        req.Address,
		MedicalHistory: nonNil(req.MedicalHistory),
		RegisteredByID: registrar.ID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		if apperr.IsDuplicate(err) {
			return nil, apperr.Conflict(msgPhoneInUse)
		}
		return nil, errors.Wrap(err, "create patient")
	}
	p.RegisteredBy = &identity.Summary{ID: registrar.ID, Name: registrar.Name, Email: registrar.Email}
	return p, nil
}

// List returns active patients newest first with registrant name and email.
func (s *Service) List(ctx context.Context, page pagination.Params) ([]*Patient, int, error) {
	patients, total, err := s.repo.ListActive(ctx, page)
	if err != nil {
		return nil, 0, errors.Wrap(err, "list patients")
	}
	if err := s.resolveRegistrants(ctx, patients, true); err != nil {
		return nil, 0, err
	}
	return patients, total, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Patient, error) {
	p, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.resolveRegistrants(ctx, []*Patient{p}, false); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) get(ctx context.Context, id string) (*Patient, error) {
	p, err := s.repo.GetActive(ctx, id)
	if apperr.IsNotFound(err) {
		return nil, apperr.NotFound(msgNotFound)
	}
	if err != nil {
		return nil, errors.Wrap(err, "get patient")
	}
	p.MedicalHistory = nonNil(p.MedicalHistory)
	return p, nil
}

// Update applies the supplied fields only.
func (s *Service) Update(ctx context.Context, id string, req UpdateRequest) (*Patient, error) {
	if err := req.Check(); err != nil {
		return nil, err
	}
	p, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}

	req.Name.Apply(&p.Name)
	req.Email.Apply(&p.Email)
	req.Phone.Apply(&p.Phone)
	req.Gender.Apply(&p.Gender)
	req.Address.Apply(&p.Address)
	p.MedicalHistory = nonNil(req.MedicalHistory.Or(p.MedicalHistory))
	if req.DOB.Set {
		p.DOB = nil
		if req.DOB.Value != "" {
			t, _ := dates.Parse(req.DOB.Value)
			p.DOB = &t
		}
	}
	p.UpdatedAt = s.now().UTC()

	if err := s.repo.Update(ctx, p); err != nil {
		switch {
		case apperr.IsDuplicate(err):
			return nil, apperr.Conflict(msgPhoneInUse)
		case apperr.IsNotFound(err):
			return nil, apperr.NotFound(msgNotFound)
		}
		return nil, errors.Wrap(err, "update patient")
	}
	if err := s.resolveRegistrants(ctx, []*Patient{p}, false); err != nil {
		return nil, err
	}
	return p, nil
}

// Archive soft-deletes the patient and records PATIENT_ARCHIVE.
func (s *Service) Archive(ctx context.Context, id string) error {
	p, err := s.repo.Archive(ctx, id, s.now().UTC())
	if apperr.IsNotFound(err) {
		return apperr.NotFound(msgNotFound)
	}
	if err != nil {
		return errors.Wrap(err, "archive patient")
	}
	s.audit.Record(ctx, audit.ActionPatientArchive, fmt.Sprintf("Archived patient record: %s", p.Name), p.ID)
	return nil
}

// Exists reports whether an active patient has id.
func (s *Service) Exists(ctx context.Context, id string) (bool, error) {
	_, err := s.repo.GetActive(ctx, id)
	if apperr.IsNotFound(err) {
		return false, nil
	}
	if err != nil {
		return false, errors.Wrap(err, "get patient")
	}
	return true, nil
}

func (s *Service) CountActive(ctx context.Context) (int, error) {
	n, err := s.repo.CountActive(ctx)
	return n, errors.Wrap(err, "count patients")
}

// Summaries resolves references for display, archived patients included.
func (s *Service) Summaries(ctx context.Context, ids []string) (map[string]Summary, error) {
	if len(ids) == 0 {
		return map[string]Summary{}, nil
	}
	patients, err := s.repo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, errors.Wrap(err, "resolve patients")
	}
	out := make(map[string]Summary, len(patients))
	for _, p := range patients {
		out[p.ID] = p.Summary()
	}
	return out, nil
}

func (s *Service) resolveRegistrants(ctx context.Context, patients []*Patient, withEmail bool) error {
	ids := make([]string, 0, len(patients))
	for _, p := range patients {
		p.MedicalHistory = nonNil(p.MedicalHistory)
		ids = append(ids, p.RegisteredByID)
	}
	users, err := s.users.Summaries(ctx, ids)
	if err != nil {
		return err
	}
	for _, p := range patients {
		u, ok := users[p.RegisteredByID]
		if !ok {
			continue
		}
		if !withEmail {
			u.Email = ""
		}
		p.RegisteredBy = &u
	}
	return nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
