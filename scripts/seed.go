package main

import (
	"context"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/fonoclinic/backend/internal/adapters/database"
	"github.com/fonoclinic/backend/internal/application/services"
	"github.com/fonoclinic/backend/internal/domain/entities"
	"github.com/fonoclinic/backend/internal/infrastructure/clients/sqldb"
	"github.com/fonoclinic/backend/internal/infrastructure/observability"
	"github.com/fonoclinic/backend/pkg/config"
)

type seedSession struct {
	patient  int
	daysAgo  int
	status   entities.SessionStatus
	amount   string
	invoiced bool
	note     string
}

var seedPatients = []string{
	"Ana Beatriz Souza",
	"Bruno Carvalho",
	"Clara Mendes",
}

var seedSessions = []seedSession{
	{0, 21, entities.SessionStatusCompleted, "150.00", true, "avaliação inicial"},
	{0, 14, entities.SessionStatusCompleted, "150.00", false, "fonemas /r/ e /l/"},
	{0, 7, entities.SessionStatusNoShow, "150.00", false, ""},
	{1, 10, entities.SessionStatusCompleted, "120.00", false, "deglutição"},
	{1, 3, entities.SessionStatusCancelled, "120.00", false, ""},
	{2, 2, entities.SessionStatusCompleted, "180.50", false, "voz"},
	{2, -5, entities.SessionStatusScheduled, "180.50", false, ""},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	observability.InitLogger("fonoclinic-seed", cfg.App.Env)

	ctx := context.Background()

	dbClient, err := sqldb.NewClient(ctx, &cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to DB")
	}
	defer dbClient.Close()

	if err := database.EnsureSchema(ctx, dbClient); err != nil {
		log.Fatal().Err(err).Msg("failed to ensure schema")
	}

	if os.Getenv("RESET_DB") == "true" {
		log.Info().Msg("RESET_DB=true detected, clearing tables before seeding")
		for _, stmt := range []string{"DELETE FROM sessions", "DELETE FROM patients"} {
			if _, err := dbClient.DB().ExecContext(ctx, stmt); err != nil {
				log.Fatal().Err(err).Str("stmt", stmt).Msg("failed to reset table")
			}
		}
	}

	patientService := services.NewPatientService(database.NewPatientAdapter(dbClient))
	sessionService := services.NewSessionService(database.NewSessionAdapter(dbClient))

	ids := make([]int64, len(seedPatients))
	for i, name := range seedPatients {
		p := &entities.Patient{Name: name}
		if err := patientService.Create(ctx, p); err != nil {
			log.Fatal().Err(err).Str("name", name).Msg("failed to seed patient")
		}
		ids[i] = p.ID
	}

	today := entities.DateOnly(time.Now())
	for _, s := range seedSessions {
		session := &entities.Session{
			PatientID:     ids[s.patient],
			Date:          today.AddDate(0, 0, -s.daysAgo),
			Status:        s.status,
			Amount:        decimal.RequireFromString(s.amount),
			ClinicalNote:  s.note,
			InvoiceIssued: s.invoiced,
		}
		if err := sessionService.Create(ctx, session); err != nil {
			log.Fatal().Err(err).Msg("failed to seed session")
		}
	}

	log.Info().
		Int("patients", len(seedPatients)).
		Int("sessions", len(seedSessions)).
		Msg("seed complete")
}
