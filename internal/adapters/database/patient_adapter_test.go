package database_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fonoclinic/backend/internal/domain/entities"
	apperrors "github.com/fonoclinic/backend/pkg/errors"
)

func TestPatientAdapter_Create(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	t.Run("assigns increasing ids", func(t *testing.T) {
		birth := time.Date(2016, 2, 29, 0, 0, 0, 0, time.UTC)
		ana := &entities.Patient{Name: "Ana", BirthDate: &birth}
		bruno := &entities.Patient{Name: "Bruno"}

		require.NoError(t, store.patients.Create(ctx, ana))
		require.NoError(t, store.patients.Create(ctx, bruno))

		assert.Positive(t, ana.ID)
		assert.Greater(t, bruno.ID, ana.ID)
	})

	t.Run("rejects empty name", func(t *testing.T) {
		err := store.patients.Create(ctx, &entities.Patient{Name: "  "})
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
	})

	t.Run("escapes quotes in names", func(t *testing.T) {
		p := &entities.Patient{Name: "Joana D'Arc"}
		require.NoError(t, store.patients.Create(ctx, p))

		patients, err := store.patients.List(ctx)
		require.NoError(t, err)
		assert.Equal(t, "Joana D'Arc", patients[len(patients)-1].Name)
	})
}

func TestPatientAdapter_List(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	empty, err := store.patients.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, empty)

	birth := time.Date(2015, 6, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, store.patients.Create(ctx, &entities.Patient{Name: "Ana", BirthDate: &birth}))
	store.createPatient(t, "Bruno")

	patients, err := store.patients.List(ctx)
	require.NoError(t, err)
	require.Len(t, patients, 2)

	assert.Equal(t, "Ana", patients[0].Name)
	require.NotNil(t, patients[0].BirthDate)
	assert.True(t, birth.Equal(*patients[0].BirthDate))
	assert.Equal(t, "Bruno", patients[1].Name)
	assert.Nil(t, patients[1].BirthDate)
	assert.Less(t, patients[0].ID, patients[1].ID)
}
