package entities

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	apperrors "github.com/fonoclinic/backend/pkg/errors"
)

// SessionStatus represents the outcome of a clinical session
type SessionStatus string

const (
	SessionStatusCompleted SessionStatus = "completed"
	SessionStatusScheduled SessionStatus = "scheduled"
	SessionStatusNoShow    SessionStatus = "no_show"
	SessionStatusCancelled SessionStatus = "cancelled"
)

// sessionStatusAliases maps the labels used on the clinic's intake form.
var sessionStatusAliases = map[string]SessionStatus{
	"completed": SessionStatusCompleted,
	"realizado": SessionStatusCompleted,
	"scheduled": SessionStatusScheduled,
	"agendado":  SessionStatusScheduled,
	"no_show":   SessionStatusNoShow,
	"noshow":    SessionStatusNoShow,
	"falta":     SessionStatusNoShow,
	"cancelled": SessionStatusCancelled,
	"cancelado": SessionStatusCancelled,
}

// ParseSessionStatus resolves a status name or one of its intake-form labels
func ParseSessionStatus(value string) (SessionStatus, error) {
	status, ok := sessionStatusAliases[strings.ToLower(strings.TrimSpace(value))]
	if !ok {
		return "", apperrors.NewValidationError(fmt.Sprintf("unknown session status %q", value))
	}
	return status, nil
}

// IsValid reports whether s is one of the enumerated statuses
func (s SessionStatus) IsValid() bool {
	switch s {
	case SessionStatusCompleted, SessionStatusScheduled, SessionStatusNoShow, SessionStatusCancelled:
		return true
	}
	return false
}

// MaxSessionAmount is the exclusive upper bound for a session amount,
// matching the NUMERIC(12,2) column.
var MaxSessionAmount = decimal.New(1, 10)

// Session is a billable clinical encounter. After creation only the
// invoice flag changes, and only from false to true.
type Session struct {
	ID            int64           `json:"id" db:"id"`
	PatientID     int64           `json:"patient_id" db:"patient_id"`
	Date          time.Time       `json:"date" db:"date"`
	Status        SessionStatus   `json:"status" db:"status"`
	Amount        decimal.Decimal `json:"amount" db:"amount"`
	ClinicalNote  string          `json:"clinical_note,omitempty" db:"clinical_note"`
	InvoiceIssued bool            `json:"invoice_issued" db:"invoice_issued"`
	IssuedAt      *time.Time      `json:"issued_at,omitempty" db:"issued_at"`
}

// Validate truncates the date to a day and checks the fields. Patient
// existence is checked by the store.
func (s *Session) Validate() error {
	if s.PatientID <= 0 {
		return apperrors.NewValidationError("patient id is required")
	}
	if s.Date.IsZero() {
		return apperrors.NewValidationError("session date is required")
	}
	if !s.Status.IsValid() {
		return apperrors.NewValidationError(fmt.Sprintf("unknown session status %q", s.Status))
	}
	if s.Amount.IsNegative() {
		return apperrors.NewValidationError("session amount must not be negative")
	}
	if s.Amount.GreaterThanOrEqual(MaxSessionAmount) {
		return apperrors.NewValidationError(fmt.Sprintf("session amount must be below %s", MaxSessionAmount.StringFixed(2)))
	}
	if !s.Amount.Equal(s.Amount.Truncate(2)) {
		return apperrors.NewValidationError("session amount must have at most two decimal places")
	}
	s.Date = DateOnly(s.Date)
	return nil
}

// IsBillable reports whether the session counts toward billed revenue
func (s *Session) IsBillable() bool {
	return s.Status == SessionStatusCompleted
}

// IsPendingInvoice reports whether the session is billable and still
// lacks an issued invoice
func (s *Session) IsPendingInvoice() bool {
	return s.IsBillable() && !s.InvoiceIssued
}

// JoinedSession is a session read together with its patient's name
type JoinedSession struct {
	Session
	PatientName string `json:"patient_name" db:"patient_name"`
}
