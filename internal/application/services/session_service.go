package services

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/fonoclinic/backend/internal/domain/entities"
	"github.com/fonoclinic/backend/internal/domain/repositories"
)

// SessionService handles session recording and the joined listing
type SessionService struct {
	repo repositories.SessionRepository
}

// NewSessionService creates a new session service
func NewSessionService(repo repositories.SessionRepository) *SessionService {
	return &SessionService{repo: repo}
}

// Create records a session for an existing patient
func (s *SessionService) Create(ctx context.Context, session *entities.Session) error {
	if err := s.repo.Create(ctx, session); err != nil {
		return err
	}
	log.Info().
		Int64("session_id", session.ID).
		Int64("patient_id", session.PatientID).
		Str("status", string(session.Status)).
		Msg("session recorded")
	return nil
}

// List returns sessions joined with patient names, newest first.
// A nil patientID lists every patient.
func (s *SessionService) List(ctx context.Context, patientID *int64) ([]*entities.JoinedSession, error) {
	return s.repo.ListJoined(ctx, repositories.SessionFilter{PatientID: patientID})
}
