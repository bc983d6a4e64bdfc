package services

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"

	"github.com/fonoclinic/backend/internal/domain/entities"
	"github.com/fonoclinic/backend/internal/domain/providers"
	"github.com/fonoclinic/backend/internal/domain/reconciliation"
	"github.com/fonoclinic/backend/internal/domain/repositories"
	"github.com/fonoclinic/backend/internal/infrastructure/observability"
)

// Report is a rendered pending-invoice artifact
type Report struct {
	Data        []byte
	FileName    string
	ContentType string
	Rows        int
}

// BillingService runs reconciliation over fresh store reads, issues
// invoices and exports the pending list.
type BillingService struct {
	sessions repositories.SessionRepository
	exporter providers.ReportExporter
	eventBus providers.EventBus
	metrics  *observability.Metrics
}

// NewBillingService creates a new billing service. eventBus and metrics
// may be nil.
func NewBillingService(
	sessions repositories.SessionRepository,
	exporter providers.ReportExporter,
	eventBus providers.EventBus,
	metrics *observability.Metrics,
) *BillingService {
	return &BillingService{
		sessions: sessions,
		exporter: exporter,
		eventBus: eventBus,
		metrics:  metrics,
	}
}

// Review reads every session once and classifies that snapshot
func (s *BillingService) Review(ctx context.Context) (*reconciliation.Review, error) {
	ctx, span := observability.StartSpan(ctx, "billing.Review")
	defer span.End()

	sessions, err := s.sessions.ListJoined(ctx, repositories.SessionFilter{})
	if err != nil {
		observability.RecordError(span, err)
		return nil, err
	}

	review := reconciliation.Run(sessions)
	observability.SetSpanAttributes(span,
		attribute.Int("billing.sessions", len(sessions)),
		attribute.Int("billing.pending_count", review.Totals.PendingCount),
	)
	return &review, nil
}

// MarkIssued flags the session's invoice as issued. Marking an already
// issued session succeeds without changing it. Only a pending invoice
// that becomes issued is counted and published.
func (s *BillingService) MarkIssued(ctx context.Context, sessionID int64) error {
	ctx, span := observability.StartSpan(ctx, "billing.MarkIssued")
	defer span.End()
	observability.SetSpanAttributes(span, attribute.Int64("session.id", sessionID))

	transition, err := s.sessions.SetInvoiceIssued(ctx, sessionID)
	if err != nil {
		observability.RecordError(span, err)
		return err
	}
	observability.SetSpanAttributes(span, attribute.Bool("billing.changed", transition.Changed))

	if !transition.Issued() {
		log.Debug().
			Int64("session_id", sessionID).
			Bool("changed", transition.Changed).
			Str("status", string(transition.Status)).
			Msg("invoice flag set without issuing a pending invoice")
		return nil
	}

	observability.RecordInvoiceIssued(ctx, s.metrics)
	log.Info().Int64("session_id", sessionID).Msg("invoice marked as issued")

	if s.eventBus != nil {
		event := entities.NewInvoiceIssuedEvent(sessionID)
		if err := s.eventBus.Publish(ctx, providers.EventChannelInvoices, event); err != nil {
			log.Warn().Err(err).Int64("session_id", sessionID).Msg("failed to publish invoice event")
		}
	}
	return nil
}

// ExportPending renders the pending-invoice list in review order
func (s *BillingService) ExportPending(ctx context.Context) (*Report, error) {
	ctx, span := observability.StartSpan(ctx, "billing.ExportPending")
	defer span.End()

	review, err := s.Review(ctx)
	if err != nil {
		observability.RecordError(span, err)
		return nil, err
	}

	pending := review.PendingInvoice
	data, err := s.exporter.Export(pending)
	if err != nil {
		observability.RecordError(span, err)
		return nil, fmt.Errorf("failed to render pending report: %w", err)
	}

	format := strings.TrimPrefix(path.Ext(s.exporter.FileName()), ".")
	observability.RecordExport(ctx, s.metrics, format, len(pending))
	return &Report{
		Data:        data,
		FileName:    s.exporter.FileName(),
		ContentType: s.exporter.ContentType(),
		Rows:        len(pending),
	}, nil
}
