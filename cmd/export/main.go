// Command export writes the current pending-invoice report to disk.
package main

import (
	"context"
	"flag"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/fonoclinic/backend/internal/adapters/database"
	"github.com/fonoclinic/backend/internal/adapters/export"
	"github.com/fonoclinic/backend/internal/application/services"
	"github.com/fonoclinic/backend/internal/infrastructure/clients/sqldb"
	"github.com/fonoclinic/backend/internal/infrastructure/observability"
	"github.com/fonoclinic/backend/pkg/config"
	"github.com/fonoclinic/backend/pkg/secrets"
)

func main() {
	if _, err := secrets.ApplyVaultSecrets(context.Background(), secrets.LoadVaultConfigFromEnv()); err != nil {
		log.Warn().Err(err).Msg("failed to load Vault secrets")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	observability.InitLogger("fonoclinic-export", cfg.App.Env)

	outDir := flag.String("out", cfg.Export.OutputDir, "directory to write the report into")
	timeout := flag.Duration("timeout", time.Minute, "overall time limit")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	dbClient, err := sqldb.NewClient(ctx, &cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}
	defer dbClient.Close()

	if err := database.EnsureSchema(ctx, dbClient); err != nil {
		log.Fatal().Err(err).Msg("failed to ensure schema")
	}

	billing := services.NewBillingService(database.NewSessionAdapter(dbClient), export.NewXLSXExporter(), nil, nil)
	report, err := billing.ExportPending(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build pending report")
	}

	if err := os.MkdirAll(*outDir, 0o750); err != nil {
		log.Fatal().Err(err).Str("dir", *outDir).Msg("failed to create output directory")
	}
	path := filepath.Join(*outDir, report.FileName)
	if err := os.WriteFile(path, report.Data, 0o640); err != nil {
		log.Fatal().Err(err).Str("path", path).Msg("failed to write report")
	}

	log.Info().Str("path", path).Int("rows", report.Rows).Msg("pending report written")
}
