package repositories

import (
	"context"

	"github.com/fonoclinic/backend/internal/domain/entities"
)

// PatientRepository defines operations for patient storage
type PatientRepository interface {
	// Create validates and persists the patient, assigning its ID
	Create(ctx context.Context, patient *entities.Patient) error

	// List returns all patients ordered by ID ascending
	List(ctx context.Context) ([]*entities.Patient, error)
}
