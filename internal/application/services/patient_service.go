package services

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/fonoclinic/backend/internal/domain/entities"
	"github.com/fonoclinic/backend/internal/domain/repositories"
)

// PatientService handles patient registration and listing
type PatientService struct {
	repo repositories.PatientRepository
}

// NewPatientService creates a new patient service
func NewPatientService(repo repositories.PatientRepository) *PatientService {
	return &PatientService{repo: repo}
}

// Create registers a patient. The store validates the name.
func (s *PatientService) Create(ctx context.Context, patient *entities.Patient) error {
	if err := s.repo.Create(ctx, patient); err != nil {
		return err
	}
	log.Info().Int64("patient_id", patient.ID).Msg("patient registered")
	return nil
}

// List returns every patient ordered by ID
func (s *PatientService) List(ctx context.Context) ([]*entities.Patient, error) {
	return s.repo.List(ctx)
}
