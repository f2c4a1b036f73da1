package identity

import (
	"strings"
	"time"

	"github.com/panacea/panacea/internal/platform/auth"
)

// User is a staff or patient account. PasswordHash is never serialized.
type User struct {
	ID           string    `json:"_id" bson:"_id"`
	Name         string    `json:"name" bson:"name"`
	Email        string    `json:"email" bson:"email"`
	PasswordHash string    `json:"-" bson:"password"`
	Role         auth.Role `json:"role" bson:"role"`
	CreatedAt    time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt" bson:"updatedAt"`
}

// Summary is the projection embedded when another resource references a user.
type Summary struct {
	ID    string `json:"_id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

func (u *User) Summary() Summary {
	return Summary{ID: u.ID, Name: u.Name, Email: u.Email}
}

func (u *User) Principal() auth.Principal {
	return auth.Principal{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}

// Profile is the user shape returned alongside a token.
type Profile struct {
	ID    string    `json:"_id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
	Role  auth.Role `json:"role"`
}

func (u *User) Profile() Profile {
	return Profile{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}

type AuthResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      Profile   `json:"user"`
}

type RegisterRequest struct {
	Name     string `json:"name" validate:"required,min=2"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=72"`
	Role     string `json:"role,omitempty" validate:"omitempty,oneof=patient doctor nurse admin receptionist"`
}

func (r *RegisterRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = normalizeEmail(r.Email)
	r.Role = strings.TrimSpace(r.Role)
}

func (RegisterRequest) ValidationMessages() map[string]string {
	return map[string]string{
		"name.required":     "Name is required",
		"name.min":          "Name must be at least 2 characters",
		"email.required":    "Must be a valid email address",
		"email.email":       "Must be a valid email address",
		"password.required": "Password must be at least 6 characters",
		"password.min":      "Password must be at least 6 characters",
		"role.oneof":        "Invalid role provided",
	}
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (r *LoginRequest) Normalize() {
	r.Email = normalizeEmail(r.Email)
}

func (LoginRequest) ValidationMessages() map[string]string {
	return map[string]string{
		"email.required":    "Valid email required",
		"email.email":       "Valid email required",
		"password.required": "Password required",
	}
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
