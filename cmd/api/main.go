package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/fonoclinic/backend/internal/adapters/database"
	"github.com/fonoclinic/backend/internal/adapters/events"
	"github.com/fonoclinic/backend/internal/adapters/export"
	"github.com/fonoclinic/backend/internal/api/handlers"
	"github.com/fonoclinic/backend/internal/api/routes"
	"github.com/fonoclinic/backend/internal/application/services"
	"github.com/fonoclinic/backend/internal/domain/providers"
	"github.com/fonoclinic/backend/internal/infrastructure/clients/redis"
	"github.com/fonoclinic/backend/internal/infrastructure/clients/sqldb"
	"github.com/fonoclinic/backend/internal/infrastructure/observability"
	"github.com/fonoclinic/backend/pkg/config"
	"github.com/fonoclinic/backend/pkg/secrets"
)

func main() {
	// Credentials from Vault land in the environment before config is read
	if result, err := secrets.ApplyVaultSecrets(context.Background(), secrets.LoadVaultConfigFromEnv()); err != nil {
		log.Warn().Err(err).Msg("failed to load Vault secrets")
	} else if len(result.Loaded) > 0 {
		log.Info().Strs("keys", result.Loaded).Msg("loaded credentials from Vault")
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	observability.InitLogger(cfg.OTEL.ServiceName, cfg.App.Env)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize OpenTelemetry if enabled
	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err := observability.Setup(ctx, cfg.OTEL.ServiceName, cfg.OTEL.ServiceVersion, cfg.OTEL.Endpoint)
		if err != nil {
			log.Warn().Err(err).Msg("failed to set up OpenTelemetry")
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(ctx); err != nil {
					log.Error().Err(err).Msg("error shutting down OpenTelemetry")
				}
			}()
			log.Info().Str("endpoint", cfg.OTEL.Endpoint).Msg("OpenTelemetry initialized")
		}
	}

	metrics, err := observability.InitMetrics()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize metrics")
	}

	// Open the record store and make sure its tables exist
	dbClient, err := sqldb.NewClient(ctx, &cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.Database.Driver).Msg("failed to open database")
	}
	defer dbClient.Close()

	if err := database.EnsureSchema(ctx, dbClient); err != nil {
		log.Fatal().Err(err).Msg("failed to ensure schema")
	}

	// Invoice events are optional; the API works without Redis
	var eventBus providers.EventBus
	var audit *services.InvoiceAuditService
	if cfg.Redis.Enabled {
		redisClient, err := redis.NewClient(ctx, &cfg.Redis)
		if err != nil {
			log.Warn().Err(err).Msg("Redis unavailable, invoice events disabled")
		} else {
			defer redisClient.Close()
			eventBus = events.NewRedisEventBus(redisClient)

			audit = services.NewInvoiceAuditService(eventBus)
			if err := audit.Start(); err != nil {
				log.Warn().Err(err).Msg("failed to start invoice audit")
				audit = nil
			}
		}
	}

	patientAdapter := database.NewPatientAdapter(dbClient)
	sessionAdapter := database.NewSessionAdapter(dbClient)

	patientService := services.NewPatientService(patientAdapter)
	sessionService := services.NewSessionService(sessionAdapter)
	billingService := services.NewBillingService(sessionAdapter, export.NewXLSXExporter(), eventBus, metrics)

	var streamHandler *handlers.InvoiceStreamHandler
	if eventBus != nil {
		streamHandler = handlers.NewInvoiceStreamHandler(eventBus)
	}

	router := routes.NewRouter(
		handlers.NewPatientHandler(patientService),
		handlers.NewSessionHandler(sessionService),
		handlers.NewBillingHandler(billingService),
		streamHandler,
		cfg.Server.AllowedOrigins,
		metrics,
	)

	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      router.SetupRoutes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0, // the invoice event stream is long-lived
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", serverAddr).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("server shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("error during server shutdown")
	}

	if audit != nil {
		audit.Stop()
	}
	if eventBus != nil {
		if err := eventBus.Close(); err != nil {
			log.Error().Err(err).Msg("error closing event bus")
		}
	}

	log.Info().Msg("server stopped")
}
