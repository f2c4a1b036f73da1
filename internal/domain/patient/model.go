package patient

import (
	"strings"
	"time"

	"github.com/panacea/panacea/internal/domain/identity"
	"github.com/panacea/panacea/internal/platform/apperr"
	"github.com/panacea/panacea/internal/platform/validate"
	"github.com/panacea/panacea/pkg/dates"
	"github.com/panacea/panacea/pkg/patch"
)

var genders = []string{"Male", "Female", "Other"}

func validGender(g string) bool {
	for _, v := range genders {
		if v == g {
			return true
		}
	}
	return false
}

// Patient is a demographic record. Archived patients keep their row with
// Deleted set and are invisible to every active read.
type Patient struct {
	ID             string            `json:"_id" bson:"_id"`
	Name           string            `json:"name" bson:"name"`
	Email          string            `json:"email,omitempty" bson:"email,omitempty"`
	Phone          string            `json:"phone" bson:"phone"`
	DOB            *time.Time        `json:"dob,omitempty" bson:"dob,omitempty"`
	Gender         string            `json:"gender" bson:"gender"`
	Address        string            `json:"address,omitempty" bson:"address,omitempty"`
	MedicalHistory []string          `json:"medicalHistory" bson:"medicalHistory"`
	RegisteredByID string            `json:"-" bson:"registeredBy"`
	RegisteredBy   *identity.Summary `json:"registeredBy,omitempty" bson:"-"`
	Deleted        bool              `json:"-" bson:"deleted"`
	DeletedAt      *time.Time        `json:"-" bson:"deletedAt,omitempty"`
	CreatedAt      time.Time         `json:"createdAt" bson:"createdAt"`
	UpdatedAt      time.Time         `json:"updatedAt" bson:"updatedAt"`
}

// Summary is the projection embedded when another resource references a
// patient.
type Summary struct {
	ID     string     `json:"_id"`
	Name   string     `json:"name"`
	Phone  string     `json:"phone,omitempty"`
	Gender string     `json:"gender,omitempty"`
	DOB    *time.Time `json:"dob,omitempty"`
}

func (p *Patient) Summary() Summary {
	return Summary{ID: p.ID, Name: p.Name, Phone: p.Phone, Gender: p.Gender, DOB: p.DOB}
}

type CreateRequest struct {
	Name           string   `json:"name" validate:"notblank"`
	Email          string   `json:"email,omitempty" validate:"omitempty,email"`
	Phone          string   `json:"phone" validate:"notblank"`
	DOB            string   `json:"dob,omitempty"`
	Gender         string   `json:"gender" validate:"required,oneof=Male Female Other"`
	Address        string   `json:"address,omitempty"`
	MedicalHistory []string `json:"medicalHistory,omitempty"`
}

func (r *CreateRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.Phone = strings.TrimSpace(r.Phone)
}

func (CreateRequest) ValidationMessages() map[string]string {
	return map[string]string{
		"name.notblank":  "Patient name is required",
		"phone.notblank": "Phone number is required",
		"email.email":    "Please provide a valid email",
		"gender.oneof":   "Gender must be one of: Male, Female, Other",
	}
}

// UpdateRequest distinguishes an omitted key from an explicit empty value.
// Omitted fields keep their stored value; supplied ones replace it.
type UpdateRequest struct {
	Name           patch.Field[string]   `json:"name"`
	Email          patch.Field[string]   `json:"email"`
	Phone          patch.Field[string]   `json:"phone"`
	DOB            patch.Field[string]   `json:"dob"`
	Gender         patch.Field[string]   `json:"gender"`
	Address        patch.Field[string]   `json:"address"`
	MedicalHistory patch.Field[[]string] `json:"medicalHistory"`
}

func (r *UpdateRequest) Normalize() {
	r.Name.Value = strings.TrimSpace(r.Name.Value)
	r.Phone.Value = strings.TrimSpace(r.Phone.Value)
	r.Email.Value = strings.ToLower(strings.TrimSpace(r.Email.Value))
}

// Check rejects clearing a required field and malformed supplied values.
func (r *UpdateRequest) Check() error {
	var fields []apperr.FieldError
	add := func(field, msg string) {
		fields = append(fields, apperr.FieldError{Field: field, Message: msg})
	}
	if r.Name.Set && r.Name.Value == "" {
		add("name", "Patient name cannot be cleared")
	}
	if r.Phone.Set && r.Phone.Value == "" {
		add("phone", "Phone number cannot be cleared")
	}
	if r.Gender.Set && !validGender(r.Gender.Value) {
		add("gender", "Gender must be one of: Male, Female, Other")
	}
	if r.Email.Set && r.Email.Value != "" && !validate.Email(r.Email.Value) {
		add("email", "Please provide a valid email")
	}
	if r.DOB.Set && r.DOB.Value != "" {
		if _, err := dates.Parse(r.DOB.Value); err != nil {
			add("dob", "Date of birth must be a date")
		}
	}
	if len(fields) > 0 {
		return &apperr.Error{Kind: apperr.KindBadRequest, Message: "Invalid patient update", Fields: fields}
	}
	return nil
}
