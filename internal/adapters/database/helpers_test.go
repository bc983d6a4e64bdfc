package database_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/fonoclinic/backend/internal/adapters/database"
	"github.com/fonoclinic/backend/internal/domain/entities"
	"github.com/fonoclinic/backend/internal/infrastructure/clients/sqldb"
)

type testStore struct {
	client   *sqldb.Client
	patients *database.PatientAdapter
	sessions *database.SessionAdapter
}

func newTestStore(t *testing.T) *testStore {
	t.Helper()
	ctx := context.Background()

	client, err := sqldb.NewSQLiteClient(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	require.NoError(t, database.EnsureSchema(ctx, client))

	return &testStore{
		client:   client,
		patients: database.NewPatientAdapter(client),
		sessions: database.NewSessionAdapter(client),
	}
}

func (s *testStore) createPatient(t *testing.T, name string) *entities.Patient {
	t.Helper()
	p := &entities.Patient{Name: name}
	require.NoError(t, s.patients.Create(context.Background(), p))
	return p
}

func (s *testStore) createSession(t *testing.T, patientID int64, date string, status entities.SessionStatus, amount string) *entities.Session {
	t.Helper()
	d, err := time.Parse(entities.DateLayout, date)
	require.NoError(t, err)
	session := &entities.Session{
		PatientID: patientID,
		Date:      d,
		Status:    status,
		Amount:    decimal.RequireFromString(amount),
	}
	require.NoError(t, s.sessions.Create(context.Background(), session))
	return session
}
