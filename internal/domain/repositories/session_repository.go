package repositories

import (
	"context"

	"github.com/fonoclinic/backend/internal/domain/entities"
)

// SessionFilter narrows a joined session listing
type SessionFilter struct {
	PatientID *int64
}

// InvoiceTransition reports what SetInvoiceIssued did to a session
type InvoiceTransition struct {
	// Changed is true only when this call moved the flag from false to true
	Changed bool
	Status  entities.SessionStatus
}

// Issued reports whether the call issued a pending invoice
func (t InvoiceTransition) Issued() bool {
	return t.Changed && t.Status == entities.SessionStatusCompleted
}

// SessionRepository defines operations for session storage
type SessionRepository interface {
	// Create validates and persists the session, assigning its ID.
	// Fails with a referential error when the patient does not exist.
	Create(ctx context.Context, session *entities.Session) error

	// ListJoined returns sessions with their patient names, newest first
	// (date descending, then ID descending), read in one statement.
	ListJoined(ctx context.Context, filter SessionFilter) ([]*entities.JoinedSession, error)

	// SetInvoiceIssued marks the session's invoice as issued. Calling it
	// again for the same session is a no-op and reports Changed=false.
	SetInvoiceIssued(ctx context.Context, id int64) (InvoiceTransition, error)
}
