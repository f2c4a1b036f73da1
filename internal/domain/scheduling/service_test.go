package scheduling

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/panacea/panacea/internal/domain/identity"
	"github.com/panacea/panacea/internal/domain/patient"
	"github.com/panacea/panacea/internal/platform/apperr"
	"github.com/panacea/panacea/internal/platform/auth"
	"github.com/panacea/panacea/pkg/pagination"
	"github.com/panacea/panacea/pkg/patch"
)

type stubPatients map[string]patient.Summary

func (s stubPatients) Exists(_ context.Context, id string) (bool, error) {
	_, ok := s[id]
	return ok, nil
}

func (s stubPatients) Summaries(_ context.Context, ids []string) (map[string]patient.Summary, error) {
	out := map[string]patient.Summary{}
	for _, id := range ids {
		if p, ok := s[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

type stubUser struct {
	identity.Summary
	role auth.Role
}

type stubUsers map[string]stubUser

func (s stubUsers) Exists(_ context.Context, id string, roles ...auth.Role) (bool, error) {
	u, ok := s[id]
	return ok && (len(roles) == 0 || auth.Allows(u.role, roles...)), nil
}

func (s stubUsers) Summaries(_ context.Context, ids []string) (map[string]identity.Summary, error) {
	out := map[string]identity.Summary{}
	for _, id := range ids {
		if u, ok := s[id]; ok {
			out[id] = u.Summary
		}
	}
	return out, nil
}

var (
	nurse    = auth.Principal{ID: "n1", Name: "Nurse Joy", Role: auth.RoleNurse}
	patients = stubPatients{
		"p1": {ID: "p1", Name: "Jane Doe", Phone: "555-0100", Gender: "Female"},
		"p2": {ID: "p2", Name: "John Roe", Phone: "555-0199", Gender: "Male"},
	}
	users = stubUsers{
		"d1": {Summary: identity.Summary{ID: "d1", Name: "Dr. Grey", Email: "grey@panacea.io"}, role: auth.RoleDoctor},
		"n1": {Summary: identity.Summary{ID: "n1", Name: "Nurse Joy"}, role: auth.RoleNurse},
	}
)

func newTestService() (*Service, *MemoryRepo) {
	repo := NewMemoryRepo()
	return NewService(repo, patients, users), repo
}

func book(t *testing.T, svc *Service, patientID, date string) *Appointment {
	t.Helper()
	a, err := svc.Book(context.Background(), BookRequest{PatientID: patientID, DoctorID: "d1", Date: date, Reason: "Checkup"}, nurse)
	require.NoError(t, err)
	return a
}

func TestService_Book(t *testing.T) {
	svc, _ := newTestService()
	a := book(t, svc, "p1", "2024-07-01T09:00:00Z")

	assert.Equal(t, StatusPending, a.Status)
	assert.Equal(t, "n1", a.CreatedByID)
	assert.Equal(t, time.Date(2024, 7, 1, 9, 0, 0, 0, time.UTC), a.Date)
}

func TestService_Book_MissingFields(t *testing.T) {
	svc, _ := newTestService()
	for _, req := range []BookRequest{
		{DoctorID: "d1", Date: "2024-07-01", Reason: "x"},
		{PatientID: "p1", Date: "2024-07-01", Reason: "x"},
		{PatientID: "p1", DoctorID: "d1", Reason: "x"},
		{PatientID: "p1", DoctorID: "d1", Date: "2024-07-01"},
	} {
		_, err := svc.Book(context.Background(), req, nurse)
		ae, ok := apperr.As(err)
		require.True(t, ok)
		assert.Equal(t, apperr.KindBadRequest, ae.Kind)
		assert.Equal(t, "Please fill in all fields", ae.Message)
	}
}

func TestService_Book_References(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Book(ctx, BookRequest{PatientID: "ghost", DoctorID: "d1", Date: "2024-07-01", Reason: "x"}, nurse)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	_, err = svc.Book(ctx, BookRequest{PatientID: "p1", DoctorID: "n1", Date: "2024-07-01", Reason: "x"}, nurse)
	ae, _ := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, "Doctor not found", ae.Message)

	_, err = svc.Book(ctx, BookRequest{PatientID: "p1", DoctorID: "d1", Date: "soon", Reason: "x"}, nurse)
	assert.Equal(t, apperr.KindBadRequest, apperr.KindOf(err))
}

func TestService_List_SortedAndFiltered(t *testing.T) {
	svc, _ := newTestService()
	book(t, svc, "p1", "2024-07-03")
	book(t, svc, "p2", "2024-07-01")
	book(t, svc, "p1", "2024-07-02")

	all, total, err := svc.List(context.Background(), Filter{}, pagination.Params{})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, all, 3)
	assert.Equal(t, 1, all[0].Date.Day())
	assert.Equal(t, 2, all[1].Date.Day())
	assert.Equal(t, 3, all[2].Date.Day())

	require.NotNil(t, all[0].Patient)
	assert.Equal(t, "John Roe", all[0].Patient.Name)
	assert.Equal(t, "555-0199", all[0].Patient.Phone)
	assert.Empty(t, all[0].Patient.Gender)
	require.NotNil(t, all[0].Doctor)
	assert.Equal(t, "grey@panacea.io", all[0].Doctor.Email)

	mine, total, err := svc.List(context.Background(), Filter{PatientID: "p1"}, pagination.Params{})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	for _, a := range mine {
		assert.Equal(t, "p1", a.PatientID)
	}
}

func TestService_Update(t *testing.T) {
	svc, _ := newTestService()
	a := book(t, svc, "p1", "2024-07-01")
	ctx := context.Background()

	got, err := svc.Update(ctx, a.ID, UpdateRequest{Status: patch.Of(StatusCompleted)})
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, got.Status)
	assert.Equal(t, "Checkup", got.Reason)

	// Any transition is allowed, including back to Pending.
	got, err = svc.Update(ctx, a.ID, UpdateRequest{Status: patch.Of(StatusPending), Date: patch.Of("2024-08-01"), Notes: patch.Of("")})
	require.NoError(t, err)
	assert.Equal(t, StatusPending, got.Status)
	assert.Equal(t, time.August, got.Date.Month())

	_, err = svc.Update(ctx, a.ID, UpdateRequest{Status: patch.Of(Status("Lost"))})
	assert.Equal(t, apperr.KindBadRequest, apperr.KindOf(err))

	_, err = svc.Update(ctx, a.ID, UpdateRequest{Reason: patch.Of("")})
	assert.Equal(t, apperr.KindBadRequest, apperr.KindOf(err))

	_, err = svc.Update(ctx, "ghost", UpdateRequest{Status: patch.Of(StatusCancelled)})
	ae, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, "Appointment not found", ae.Message)
}

func TestService_CompleteAndCount(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	a := book(t, svc, "p1", "2024-07-01")
	book(t, svc, "p2", "2024-07-02")

	n, err := svc.CountPending(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	require.NoError(t, svc.Complete(ctx, a.ID))
	n, _ = svc.CountPending(ctx)
	assert.Equal(t, 1, n)

	assert.True(t, apperr.IsNotFound(svc.Complete(ctx, "ghost")))
}
