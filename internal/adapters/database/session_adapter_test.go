package database_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fonoclinic/backend/internal/adapters/database"
	"github.com/fonoclinic/backend/internal/domain/entities"
	"github.com/fonoclinic/backend/internal/domain/repositories"
	apperrors "github.com/fonoclinic/backend/pkg/errors"
)

func TestEnsureSchema_Idempotent(t *testing.T) {
	store := newTestStore(t)
	ana := store.createPatient(t, "Ana")

	require.NoError(t, database.EnsureSchema(context.Background(), store.client))

	patients, err := store.patients.List(context.Background())
	require.NoError(t, err)
	require.Len(t, patients, 1)
	assert.Equal(t, ana.ID, patients[0].ID)
}

func TestSessionAdapter_Create(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	ana := store.createPatient(t, "Ana")

	t.Run("persists and reads back", func(t *testing.T) {
		session := &entities.Session{
			PatientID:    ana.ID,
			Date:         time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC),
			Status:       entities.SessionStatusCompleted,
			Amount:       decimal.RequireFromString("150.00"),
			ClinicalNote: "Exercícios de articulação; boa evolução.",
		}
		require.NoError(t, store.sessions.Create(ctx, session))
		assert.Positive(t, session.ID)

		joined, err := store.sessions.ListJoined(ctx, repositories.SessionFilter{})
		require.NoError(t, err)
		require.Len(t, joined, 1)

		got := joined[0]
		assert.Equal(t, session.ID, got.ID)
		assert.Equal(t, "Ana", got.PatientName)
		assert.Equal(t, "2024-03-05", got.Date.Format(entities.DateLayout))
		assert.Equal(t, entities.SessionStatusCompleted, got.Status)
		assert.Equal(t, "150.00", got.Amount.StringFixed(2))
		assert.Equal(t, session.ClinicalNote, got.ClinicalNote)
		assert.False(t, got.InvoiceIssued)
		assert.Nil(t, got.IssuedAt)
	})

	t.Run("unknown patient is a referential error and persists nothing", func(t *testing.T) {
		before, err := store.sessions.ListJoined(ctx, repositories.SessionFilter{})
		require.NoError(t, err)

		session := &entities.Session{
			PatientID: ana.ID + 100,
			Date:      time.Date(2024, 3, 6, 0, 0, 0, 0, time.UTC),
			Status:    entities.SessionStatusCompleted,
			Amount:    decimal.RequireFromString("90.00"),
		}
		err = store.sessions.Create(ctx, session)
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeReferential), "got %v", err)
		assert.Zero(t, session.ID)

		after, err := store.sessions.ListJoined(ctx, repositories.SessionFilter{})
		require.NoError(t, err)
		assert.Len(t, after, len(before))
	})

	t.Run("negative amount is a validation error", func(t *testing.T) {
		session := &entities.Session{
			PatientID: ana.ID,
			Date:      time.Date(2024, 3, 6, 0, 0, 0, 0, time.UTC),
			Status:    entities.SessionStatusCompleted,
			Amount:    decimal.RequireFromString("-1"),
		}
		err := store.sessions.Create(ctx, session)
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
	})

	t.Run("unknown status is a validation error", func(t *testing.T) {
		session := &entities.Session{
			PatientID: ana.ID,
			Date:      time.Date(2024, 3, 6, 0, 0, 0, 0, time.UTC),
			Status:    "postponed",
			Amount:    decimal.RequireFromString("10"),
		}
		err := store.sessions.Create(ctx, session)
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
	})

	t.Run("created already invoiced", func(t *testing.T) {
		session := &entities.Session{
			PatientID:     ana.ID,
			Date:          time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
			Status:        entities.SessionStatusCompleted,
			Amount:        decimal.RequireFromString("120"),
			InvoiceIssued: true,
		}
		require.NoError(t, store.sessions.Create(ctx, session))

		joined, err := store.sessions.ListJoined(ctx, repositories.SessionFilter{})
		require.NoError(t, err)
		var found *entities.JoinedSession
		for _, s := range joined {
			if s.ID == session.ID {
				found = s
			}
		}
		require.NotNil(t, found)
		assert.True(t, found.InvoiceIssued)
		assert.NotNil(t, found.IssuedAt)
	})
}

func TestSessionAdapter_ListJoined_Order(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	ana := store.createPatient(t, "Ana")
	bruno := store.createPatient(t, "Bruno")

	older := store.createSession(t, ana.ID, "2024-03-01", entities.SessionStatusCompleted, "100")
	first := store.createSession(t, ana.ID, "2024-03-05", entities.SessionStatusCompleted, "100")
	second := store.createSession(t, bruno.ID, "2024-03-05", entities.SessionStatusCompleted, "100")
	newest := store.createSession(t, bruno.ID, "2024-04-02", entities.SessionStatusScheduled, "100")

	joined, err := store.sessions.ListJoined(ctx, repositories.SessionFilter{})
	require.NoError(t, err)

	var got []int64
	for _, s := range joined {
		got = append(got, s.ID)
	}
	assert.Equal(t, []int64{newest.ID, second.ID, first.ID, older.ID}, got)

	t.Run("filters by patient", func(t *testing.T) {
		onlyAna, err := store.sessions.ListJoined(ctx, repositories.SessionFilter{PatientID: &ana.ID})
		require.NoError(t, err)
		require.Len(t, onlyAna, 2)
		assert.Equal(t, first.ID, onlyAna[0].ID)
		assert.Equal(t, older.ID, onlyAna[1].ID)
	})
}

func TestSessionAdapter_SetInvoiceIssued(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	ana := store.createPatient(t, "Ana")
	session := store.createSession(t, ana.ID, "2024-03-05", entities.SessionStatusCompleted, "150")

	transition, err := store.sessions.SetInvoiceIssued(ctx, session.ID)
	require.NoError(t, err)
	assert.True(t, transition.Changed)
	assert.True(t, transition.Issued())

	joined, err := store.sessions.ListJoined(ctx, repositories.SessionFilter{})
	require.NoError(t, err)
	require.Len(t, joined, 1)
	assert.True(t, joined[0].InvoiceIssued)
	require.NotNil(t, joined[0].IssuedAt)
	firstIssuedAt := *joined[0].IssuedAt

	t.Run("second call is a no-op", func(t *testing.T) {
		again, err := store.sessions.SetInvoiceIssued(ctx, session.ID)
		require.NoError(t, err)
		assert.False(t, again.Changed)
		assert.False(t, again.Issued())

		after, err := store.sessions.ListJoined(ctx, repositories.SessionFilter{})
		require.NoError(t, err)
		assert.True(t, after[0].InvoiceIssued)
		require.NotNil(t, after[0].IssuedAt)
		assert.True(t, firstIssuedAt.Equal(*after[0].IssuedAt))
	})

	t.Run("cancelled session changes without issuing", func(t *testing.T) {
		cancelled := store.createSession(t, ana.ID, "2024-03-06", entities.SessionStatusCancelled, "80")

		transition, err := store.sessions.SetInvoiceIssued(ctx, cancelled.ID)
		require.NoError(t, err)
		assert.True(t, transition.Changed)
		assert.Equal(t, entities.SessionStatusCancelled, transition.Status)
		assert.False(t, transition.Issued())
	})

	t.Run("unknown session", func(t *testing.T) {
		_, err := store.sessions.SetInvoiceIssued(ctx, session.ID+42)
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNotFound))
	})
}

func TestSessionAdapter_ListJoined_OrphanIsIntegrityError(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.client.DB().ExecContext(ctx, "PRAGMA foreign_keys = OFF")
	require.NoError(t, err)
	_, err = store.client.DB().ExecContext(ctx,
		`INSERT INTO sessions (patient_id, date, status, amount, invoice_issued) VALUES (99, '2024-03-05', 'completed', '10.00', 0)`)
	require.NoError(t, err)

	_, err = store.sessions.ListJoined(ctx, repositories.SessionFilter{})
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeStorage))
}
