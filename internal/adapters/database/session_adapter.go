package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/rs/zerolog/log"

	"github.com/fonoclinic/backend/internal/domain/entities"
	"github.com/fonoclinic/backend/internal/domain/repositories"
	"github.com/fonoclinic/backend/internal/infrastructure/clients/sqldb"
	apperrors "github.com/fonoclinic/backend/pkg/errors"
)

// SessionAdapter implements SessionRepository
type SessionAdapter struct {
	client *sqldb.Client
	db     *goqu.Database
	now    func() time.Time
}

var _ repositories.SessionRepository = (*SessionAdapter)(nil)

// NewSessionAdapter creates a new session adapter
func NewSessionAdapter(client *sqldb.Client) *SessionAdapter {
	return &SessionAdapter{
		client: client,
		db:     goqu.New(client.Dialect(), client.DB()),
		now:    time.Now,
	}
}

// Create persists a session after checking, in the same transaction,
// that its patient exists
func (a *SessionAdapter) Create(ctx context.Context, session *entities.Session) (err error) {
	if session == nil {
		return apperrors.NewValidationError("session is required")
	}
	if err := session.Validate(); err != nil {
		return err
	}

	tx, err := a.client.BeginTx(ctx)
	if err != nil {
		return apperrors.NewStorageError("failed to begin transaction", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	exists, err := a.patientExists(ctx, tx, session.PatientID)
	if err != nil {
		return err
	}
	if !exists {
		return apperrors.NewReferentialError(fmt.Sprintf("patient %d does not exist", session.PatientID))
	}

	record := goqu.Record{
		"patient_id":     session.PatientID,
		"date":           formatDate(&session.Date),
		"status":         string(session.Status),
		"amount":         session.Amount.StringFixed(2),
		"clinical_note":  sql.NullString{String: session.ClinicalNote, Valid: session.ClinicalNote != ""},
		"invoice_issued": session.InvoiceIssued,
		"issued_at":      nil,
	}
	if session.InvoiceIssued {
		issuedAt := a.now().UTC()
		session.IssuedAt = &issuedAt
		record["issued_at"] = issuedAt.Format(time.RFC3339Nano)
	}

	id, err := insertReturningID(ctx, tx, a.client.Dialect(), a.db.Insert("sessions").Rows(record))
	if err != nil {
		if isForeignKeyViolation(err) {
			return apperrors.NewReferentialError(fmt.Sprintf("patient %d does not exist", session.PatientID))
		}
		return apperrors.NewStorageError("failed to create session", err)
	}

	if err = tx.Commit(); err != nil {
		return apperrors.NewStorageError("failed to commit session", err)
	}
	session.ID = id

	log.Debug().Int64("session_id", id).Int64("patient_id", session.PatientID).Msg("session created")
	return nil
}

func (a *SessionAdapter) patientExists(ctx context.Context, tx *sql.Tx, patientID int64) (bool, error) {
	query, args, err := a.db.From("patients").
		Select(goqu.L("1")).
		Where(goqu.Ex{"id": patientID}).
		ToSQL()
	if err != nil {
		return false, apperrors.NewStorageError("failed to build query", err)
	}

	var one int
	err = tx.QueryRowContext(ctx, query, args...).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, apperrors.NewStorageError("failed to look up patient", err)
	}
	return true, nil
}

// ListJoined returns sessions with their patient names, newest first
func (a *SessionAdapter) ListJoined(ctx context.Context, filter repositories.SessionFilter) ([]*entities.JoinedSession, error) {
	ds := a.db.From(goqu.T("sessions").As("s")).
		LeftJoin(goqu.T("patients").As("p"), goqu.On(goqu.Ex{"s.patient_id": goqu.I("p.id")})).
		Select(
			"s.id", "s.patient_id", "s.date", "s.status", "s.amount",
			"s.clinical_note", "s.invoice_issued", "s.issued_at",
			"p.id", "p.name",
		).
		Order(goqu.I("s.date").Desc(), goqu.I("s.id").Desc())

	if filter.PatientID != nil {
		ds = ds.Where(goqu.Ex{"s.patient_id": *filter.PatientID})
	}

	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, apperrors.NewStorageError("failed to build query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewStorageError("failed to list sessions", err)
	}
	defer rows.Close()

	sessions := make([]*entities.JoinedSession, 0)
	for rows.Next() {
		s, err := scanJoinedSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewStorageError("failed to iterate sessions", err)
	}

	return sessions, nil
}

func scanJoinedSession(rows *sql.Rows) (*entities.JoinedSession, error) {
	s := &entities.JoinedSession{}
	var (
		date         dateValue
		issuedAt     dateValue
		status       string
		clinicalNote sql.NullString
		patientRef   sql.NullInt64
		patientName  sql.NullString
	)

	err := rows.Scan(
		&s.ID,
		&s.PatientID,
		&date,
		&status,
		&s.Amount,
		&clinicalNote,
		&s.InvoiceIssued,
		&issuedAt,
		&patientRef,
		&patientName,
	)
	if err != nil {
		return nil, apperrors.NewStorageError("failed to scan session", err)
	}

	if !patientRef.Valid {
		return nil, apperrors.NewStorageError(
			"data integrity violation",
			fmt.Errorf("session %d references missing patient %d", s.ID, s.PatientID),
		)
	}

	s.Date = entities.DateOnly(date.Time)
	s.Status = entities.SessionStatus(status)
	s.Amount = s.Amount.Round(2)
	s.ClinicalNote = clinicalNote.String
	s.IssuedAt = issuedAt.timePtr()
	s.PatientName = patientName.String
	return s, nil
}

// SetInvoiceIssued flips the invoice flag to true. Only the first
// transition writes and stamps issued_at; later calls change nothing.
func (a *SessionAdapter) SetInvoiceIssued(ctx context.Context, id int64) (transition repositories.InvoiceTransition, err error) {
	tx, err := a.client.BeginTx(ctx)
	if err != nil {
		return transition, apperrors.NewStorageError("failed to begin transaction", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	query, args, err := a.db.From("sessions").
		Select("status", "invoice_issued").
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return transition, apperrors.NewStorageError("failed to build query", err)
	}

	var (
		status string
		issued bool
	)
	err = tx.QueryRowContext(ctx, query, args...).Scan(&status, &issued)
	if err == sql.ErrNoRows {
		return transition, apperrors.NewNotFoundError(fmt.Sprintf("session %d not found", id))
	}
	if err != nil {
		return transition, apperrors.NewStorageError("failed to look up session", err)
	}
	transition.Status = entities.SessionStatus(status)

	if !issued {
		query, args, err = a.db.Update("sessions").
			Set(goqu.Record{
				"invoice_issued": true,
				"issued_at":      a.now().UTC().Format(time.RFC3339Nano),
			}).
			Where(goqu.Ex{"id": id, "invoice_issued": false}).
			ToSQL()
		if err != nil {
			return transition, apperrors.NewStorageError("failed to build update query", err)
		}

		var result sql.Result
		if result, err = tx.ExecContext(ctx, query, args...); err != nil {
			return transition, apperrors.NewStorageError("failed to mark invoice as issued", err)
		}
		var rowsAffected int64
		if rowsAffected, err = result.RowsAffected(); err != nil {
			return transition, apperrors.NewStorageError("failed to get rows affected", err)
		}
		transition.Changed = rowsAffected > 0
	}

	if err = tx.Commit(); err != nil {
		return transition, apperrors.NewStorageError("failed to commit invoice flag", err)
	}

	log.Debug().Int64("session_id", id).Bool("changed", transition.Changed).Msg("invoice flag set")
	return transition, nil
}
