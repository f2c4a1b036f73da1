package identity

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/panacea/panacea/internal/platform/apperr"
	"github.com/panacea/panacea/internal/platform/auth"
)

const msgInvalidCredentials = "Invalid email or password"

type Service struct {
	users  Repository
	tokens *auth.Tokens
	now    func() time.Time
}

func NewService(users Repository, tokens *auth.Tokens) *Service {
	return &Service{users: users, tokens: tokens, now: time.Now}
}

func (s *Service) Register(ctx context.Context, req RegisterRequest) (*AuthResult, error) {
	role, err := auth.ParseRole(req.Role)
	if err != nil {
		return nil, apperr.BadRequest("Invalid role provided")
	}

	if _, err := s.users.GetByEmail(ctx, req.Email); err == nil {
		return nil, apperr.Conflict("User already exists")
	} else if !apperr.IsNotFound(err) {
		return nil, errors.Wrap(err, "lookup user by email")
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	now := s.now().UTC()
	u := &User{
		ID:           uuid.NewString(),
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, u); err != nil {
		if apperr.IsDuplicate(err) {
			return nil, apperr.Conflict("User already exists")
		}
		return nil, errors.Wrap(err, "create user")
	}
	return s.issue(u)
}

// Login fails identically for an unknown email and a wrong password.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*AuthResult, error) {
	u, err := s.users.GetByEmail(ctx, req.Email)
	if apperr.IsNotFound(err) {
		auth.CheckPassword(decoyHash(), req.Password)
		return nil, apperr.Unauthorized(msgInvalidCredentials)
	}
	if err != nil {
		return nil, errors.Wrap(err, "lookup user by email")
	}
	if !auth.CheckPassword(u.PasswordHash, req.Password) {
		return nil, apperr.Unauthorized(msgInvalidCredentials)
	}
	return s.issue(u)
}

func (s *Service) issue(u *User) (*AuthResult, error) {
	token, exp, err := s.tokens.Issue(u.ID)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return &AuthResult{Token: token, ExpiresAt: exp, User: u.Profile()}, nil
}

func (s *Service) Get(ctx context.Context, id string) (*User, error) {
	u, err := s.users.GetByID(ctx, id)
	if apperr.IsNotFound(err) {
		return nil, apperr.NotFound("User not found")
	}
	if err != nil {
		return nil, errors.Wrap(err, "get user")
	}
	return u, nil
}

// ResolvePrincipal implements auth.PrincipalResolver. A missing user is
// reported as apperr.ErrNotFound so the gate answers 401.
func (s *Service) ResolvePrincipal(ctx context.Context, userID string) (auth.Principal, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if apperr.IsNotFound(err) {
			return auth.Principal{}, apperr.ErrNotFound
		}
		return auth.Principal{}, errors.Wrap(err, "resolve principal")
	}
	return u.Principal(), nil
}

// Summaries resolves user references for display. Unknown ids are absent
// from the result.
func (s *Service) Summaries(ctx context.Context, ids []string) (map[string]Summary, error) {
	users, err := s.users.FindByIDs(ctx, dedupe(ids))
	if err != nil {
		return nil, errors.Wrap(err, "resolve users")
	}
	out := make(map[string]Summary, len(users))
	for _, u := range users {
		out[u.ID] = u.Summary()
	}
	return out, nil
}

// Exists reports whether a user with id and one of roles exists. No roles
// means any role.
func (s *Service) Exists(ctx context.Context, id string, roles ...auth.Role) (bool, error) {
	u, err := s.users.GetByID(ctx, id)
	if apperr.IsNotFound(err) {
		return false, nil
	}
	if err != nil {
		return false, errors.Wrap(err, "get user")
	}
	return len(roles) == 0 || auth.Allows(u.Role, roles...), nil
}

func (s *Service) CountDoctors(ctx context.Context) (int, error) {
	n, err := s.users.CountByRole(ctx, auth.RoleDoctor)
	return n, errors.Wrap(err, "count doctors")
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

var (
	decoyOnce sync.Once
	decoy     string
)

// decoyHash gives unknown-email logins a bcrypt comparison of the same cost.
func decoyHash() string {
	decoyOnce.Do(func() {
		decoy, _ = auth.HashPassword(uuid.NewString())
	})
	return decoy
}
