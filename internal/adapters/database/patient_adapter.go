package database

import (
	"context"

	"github.com/doug-martin/goqu/v9"
	"github.com/rs/zerolog/log"

	"github.com/fonoclinic/backend/internal/domain/entities"
	"github.com/fonoclinic/backend/internal/domain/repositories"
	"github.com/fonoclinic/backend/internal/infrastructure/clients/sqldb"
	apperrors "github.com/fonoclinic/backend/pkg/errors"
)

// PatientAdapter implements PatientRepository
type PatientAdapter struct {
	client *sqldb.Client
	db     *goqu.Database
}

var _ repositories.PatientRepository = (*PatientAdapter)(nil)

// NewPatientAdapter creates a new patient adapter
func NewPatientAdapter(client *sqldb.Client) *PatientAdapter {
	return &PatientAdapter{
		client: client,
		db:     goqu.New(client.Dialect(), client.DB()),
	}
}

// Create persists a patient and assigns its ID
func (a *PatientAdapter) Create(ctx context.Context, patient *entities.Patient) error {
	if patient == nil {
		return apperrors.NewValidationError("patient is required")
	}
	if err := patient.Validate(); err != nil {
		return err
	}

	ds := a.db.Insert("patients").Rows(goqu.Record{
		"name":       patient.Name,
		"birth_date": formatDate(patient.BirthDate),
	})

	id, err := insertReturningID(ctx, a.client.DB(), a.client.Dialect(), ds)
	if err != nil {
		return apperrors.NewStorageError("failed to create patient", err)
	}
	patient.ID = id

	log.Debug().Int64("patient_id", id).Msg("patient created")
	return nil
}

// List returns all patients ordered by ID
func (a *PatientAdapter) List(ctx context.Context) ([]*entities.Patient, error) {
	query, args, err := a.db.From("patients").
		Select("id", "name", "birth_date").
		Order(goqu.I("id").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewStorageError("failed to build query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewStorageError("failed to list patients", err)
	}
	defer rows.Close()

	patients := make([]*entities.Patient, 0)
	for rows.Next() {
		p := &entities.Patient{}
		var birthDate dateValue
		if err := rows.Scan(&p.ID, &p.Name, &birthDate); err != nil {
			return nil, apperrors.NewStorageError("failed to scan patient", err)
		}
		p.BirthDate = birthDate.datePtr()
		patients = append(patients, p)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewStorageError("failed to iterate patients", err)
	}

	return patients, nil
}
