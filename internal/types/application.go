// Package types provides type definitions for structured data used throughout the job tracker.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// JobType is the employment arrangement of a tracked application.
type JobType string

// Job types accepted by the application form.
const (
	JobTypeFullTime   JobType = "Full-time"
	JobTypePartTime   JobType = "Part-time"
	JobTypeContract   JobType = "Contract"
	JobTypeInternship JobType = "Internship"
	JobTypeRemote     JobType = "Remote"
	JobTypeHybrid     JobType = "Hybrid"
)

// JobTypes lists every job type in display order.
var JobTypes = []JobType{
	JobTypeFullTime,
	JobTypePartTime,
	JobTypeContract,
	JobTypeInternship,
	JobTypeRemote,
	JobTypeHybrid,
}

// Status is the pipeline stage of a tracked application.
type Status string

// Statuses accepted by the application form.
const (
	StatusApplied             Status = "Applied"
	StatusInterviewScheduled  Status = "Interview Scheduled"
	StatusTechnicalAssessment Status = "Technical Assessment"
	StatusOfferReceived       Status = "Offer Received"
	StatusRejected            Status = "Rejected"
	StatusAccepted            Status = "Accepted"
	StatusWithdrawn           Status = "Withdrawn"
)

// StatusSelected is only found in seeded records and is what the dashboard
// counts as an offer. The form never produces it and the table has no filter
// option for it.
const StatusSelected Status = "Selected"

// Statuses lists every status the form accepts, in display order.
var Statuses = []Status{
	StatusApplied,
	StatusInterviewScheduled,
	StatusTechnicalAssessment,
	StatusOfferReceived,
	StatusRejected,
	StatusAccepted,
	StatusWithdrawn,
}

// FilterAll is the filter sentinel that matches every value.
const FilterAll = "All"

// DateLayout is the wire format of calendar dates.
const DateLayout = "2006-01-02"

// Date is a calendar date without time of day. The zero value means "not set".
type Date struct {
	time.Time
}

// NewDate returns the calendar date for the given year, month and day in UTC.
func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// Today returns the current local calendar date.
func Today() Date {
	now := time.Now()
	return NewDate(now.Year(), now.Month(), now.Day())
}

// ParseDate parses a YYYY-MM-DD string. An empty string yields the zero Date.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, nil
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q (expected %s): %w", s, DateLayout, err)
	}
	return Date{t}, nil
}

// String formats the date as YYYY-MM-DD, or "" when unset.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

// MarshalJSON implements json.Marshaler.
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON implements json.Unmarshaler. Accepts null, "" and YYYY-MM-DD.
func (d *Date) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*d = Date{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// ApplicationRecord is one tracked job application.
type ApplicationRecord struct {
	ID            int64   `json:"id"`
	CompanyName   string  `json:"companyName"`
	JobTitle      string  `json:"jobTitle"`
	JobType       JobType `json:"jobType"`
	Status        Status  `json:"status"`
	Location      string  `json:"location"`
	AppliedDate   Date    `json:"appliedDate"`
	Notes         string  `json:"notes"`
	Salary        string  `json:"salary"`
	JobLink       string  `json:"jobLink"`
	ContactPerson string  `json:"contactPerson"`
	ContactEmail  string  `json:"contactEmail"`
}

// RecordPatch is a partial update. Nil fields are left untouched.
type RecordPatch struct {
	CompanyName   *string  `json:"companyName,omitempty"`
	JobTitle      *string  `json:"jobTitle,omitempty"`
	JobType       *JobType `json:"jobType,omitempty"`
	Status        *Status  `json:"status,omitempty"`
	Location      *string  `json:"location,omitempty"`
	AppliedDate   *Date    `json:"appliedDate,omitempty"`
	Notes         *string  `json:"notes,omitempty"`
	Salary        *string  `json:"salary,omitempty"`
	JobLink       *string  `json:"jobLink,omitempty"`
	ContactPerson *string  `json:"contactPerson,omitempty"`
	ContactEmail  *string  `json:"contactEmail,omitempty"`
}

// Apply returns a copy of rec with every non-nil patch field merged in.
// The record ID is never changed.
func (p RecordPatch) Apply(rec ApplicationRecord) ApplicationRecord {
	if p.CompanyName != nil {
		rec.CompanyName = *p.CompanyName
	}
	if p.JobTitle != nil {
		rec.JobTitle = *p.JobTitle
	}
	if p.JobType != nil {
		rec.JobType = *p.JobType
	}
	if p.Status != nil {
		rec.Status = *p.Status
	}
	if p.Location != nil {
		rec.Location = *p.Location
	}
	if p.AppliedDate != nil {
		rec.AppliedDate = *p.AppliedDate
	}
	if p.Notes != nil {
		rec.Notes = *p.Notes
	}
	if p.Salary != nil {
		rec.Salary = *p.Salary
	}
	if p.JobLink != nil {
		rec.JobLink = *p.JobLink
	}
	if p.ContactPerson != nil {
		rec.ContactPerson = *p.ContactPerson
	}
	if p.ContactEmail != nil {
		rec.ContactEmail = *p.ContactEmail
	}
	return rec
}

// IsEmpty reports whether the patch changes nothing.
func (p RecordPatch) IsEmpty() bool {
	return p == RecordPatch{}
}
