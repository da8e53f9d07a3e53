// Package form validates application submissions and hands them to the store.
package form

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/jonathan/jobtrack/internal/types"
)

// Submission is the data captured by the add-application form.
type Submission struct {
	CompanyName   string        `json:"companyName" validate:"required"`
	JobTitle      string        `json:"jobTitle" validate:"required"`
	JobType       types.JobType `json:"jobType" validate:"required,jobtype"`
	Status        types.Status  `json:"status" validate:"required,appstatus"`
	Location      string        `json:"location" validate:"required"`
	AppliedDate   types.Date    `json:"appliedDate"`
	Notes         string        `json:"notes"`
	Salary        string        `json:"salary"`
	JobLink       string        `json:"jobLink" validate:"omitempty,url"`
	ContactPerson string        `json:"contactPerson"`
	ContactEmail  string        `json:"contactEmail" validate:"omitempty,email"`
}

// Normalize trims surrounding whitespace from every text field.
func (s Submission) Normalize() Submission {
	s.CompanyName = strings.TrimSpace(s.CompanyName)
	s.JobTitle = strings.TrimSpace(s.JobTitle)
	s.JobType = types.JobType(strings.TrimSpace(string(s.JobType)))
	s.Status = types.Status(strings.TrimSpace(string(s.Status)))
	s.Location = strings.TrimSpace(s.Location)
	s.Notes = strings.TrimSpace(s.Notes)
	s.Salary = strings.TrimSpace(s.Salary)
	s.JobLink = strings.TrimSpace(s.JobLink)
	s.ContactPerson = strings.TrimSpace(s.ContactPerson)
	s.ContactEmail = strings.TrimSpace(s.ContactEmail)
	return s
}

// Record converts the submission into an unsaved record.
func (s Submission) Record() types.ApplicationRecord {
	return types.ApplicationRecord{
		CompanyName:   s.CompanyName,
		JobTitle:      s.JobTitle,
		JobType:       s.JobType,
		Status:        s.Status,
		Location:      s.Location,
		AppliedDate:   s.AppliedDate,
		Notes:         s.Notes,
		Salary:        s.Salary,
		JobLink:       s.JobLink,
		ContactPerson: s.ContactPerson,
		ContactEmail:  s.ContactEmail,
	}
}

// ValidationError maps field names to user-facing messages.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s: %s", name, e.Fields[name]))
	}
	return "validation error: " + strings.Join(parts, "; ")
}

// messages keyed by "field.tag"; "field" alone is the fallback for a field.
var messages = map[string]string{
	"companyName.required": "Company name is required",
	"jobTitle.required":    "Job title is required",
	"jobType.required":     "Job type is required",
	"jobType.jobtype":      "Please select a valid job type",
	"status.required":      "Application status is required",
	"status.appstatus":     "Please select a valid application status",
	"location.required":    "Location is required",
	"appliedDate.required": "Applied date is required",
	"jobLink.url":          "Please enter a valid URL",
	"contactEmail.email":   "Please enter a valid email address",
	"email.required":       "Email address is required",
	"email.email":          "Please enter a valid email address",
	"password.required":    "Password is required",
	"password.min":         "Password must be at least 6 characters",
}

// Message returns the user-facing text for a failed rule on a field.
func Message(field, tag string) string {
	if msg, ok := messages[field+"."+tag]; ok {
		return msg
	}
	return fmt.Sprintf("%s is invalid (%s)", field, tag)
}

// Validator wraps a validator.Validate with the tracker's custom rules and
// JSON field naming.
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a Validator.
func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(jsonFieldName)
	// Registration only fails on an empty tag or nil func.
	_ = v.RegisterValidation("jobtype", func(fl validator.FieldLevel) bool {
		return slices.Contains(types.JobTypes, types.JobType(fl.Field().String()))
	})
	_ = v.RegisterValidation("appstatus", func(fl validator.FieldLevel) bool {
		return slices.Contains(types.Statuses, types.Status(fl.Field().String()))
	})
	return &Validator{validate: v}
}

// Struct validates any struct with validate tags and converts failures into
// a *ValidationError.
func (v *Validator) Struct(s any) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate: %w", err)
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		if _, seen := fields[fe.Field()]; seen {
			continue
		}
		fields[fe.Field()] = Message(fe.Field(), fe.Tag())
	}
	return &ValidationError{Fields: fields}
}

// Validate checks a normalized submission.
func (v *Validator) Validate(sub Submission) error {
	return v.Struct(sub)
}

// NormalizePatch trims surrounding whitespace from every text field the
// patch sets, as Normalize does for a submission. The input is not modified.
func NormalizePatch(p types.RecordPatch) types.RecordPatch {
	trim := func(v *string) *string {
		if v == nil {
			return nil
		}
		t := strings.TrimSpace(*v)
		return &t
	}
	p.CompanyName = trim(p.CompanyName)
	p.JobTitle = trim(p.JobTitle)
	p.Location = trim(p.Location)
	p.Notes = trim(p.Notes)
	p.Salary = trim(p.Salary)
	p.JobLink = trim(p.JobLink)
	p.ContactPerson = trim(p.ContactPerson)
	p.ContactEmail = trim(p.ContactEmail)
	if p.JobType != nil {
		jt := types.JobType(strings.TrimSpace(string(*p.JobType)))
		p.JobType = &jt
	}
	if p.Status != nil {
		st := types.Status(strings.TrimSpace(string(*p.Status)))
		p.Status = &st
	}
	return p
}

// ValidatePatch checks an edit: fields the form requires may not be blanked,
// and enum fields must hold a form value.
func (v *Validator) ValidatePatch(patch types.RecordPatch) error {
	fields := map[string]string{}
	requireText := func(name string, val *string) {
		if val != nil && strings.TrimSpace(*val) == "" {
			fields[name] = Message(name, "required")
		}
	}
	requireText("companyName", patch.CompanyName)
	requireText("jobTitle", patch.JobTitle)
	requireText("location", patch.Location)
	if patch.AppliedDate != nil && patch.AppliedDate.IsZero() {
		fields["appliedDate"] = Message("appliedDate", "required")
	}

	if patch.JobType != nil && !slices.Contains(types.JobTypes, *patch.JobType) {
		fields["jobType"] = Message("jobType", "jobtype")
	}
	if patch.Status != nil && !slices.Contains(types.Statuses, *patch.Status) {
		fields["status"] = Message("status", "appstatus")
	}
	if patch.ContactEmail != nil && *patch.ContactEmail != "" {
		if err := v.validate.Var(*patch.ContactEmail, "email"); err != nil {
			fields["contactEmail"] = Message("contactEmail", "email")
		}
	}
	if patch.JobLink != nil && *patch.JobLink != "" {
		if err := v.validate.Var(*patch.JobLink, "url"); err != nil {
			fields["jobLink"] = Message("jobLink", "url")
		}
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

func jsonFieldName(fld reflect.StructField) string {
	name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	if name == "" {
		return fld.Name
	}
	return name
}
