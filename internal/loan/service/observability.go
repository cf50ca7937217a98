package service

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"fides/internal/audit"
	"fides/internal/ledger"
	"fides/pkg/requestcontext"
)

// Audit and alert are fire-and-forget: failures are logged with context and
// never surface to the caller of a lifecycle operation.

func (s *Service) emitAudit(ctx context.Context, action audit.AuditEvent, app *ledger.LoanApplication, reasons []ledger.ReasonCode, detail string) {
	if s.audit == nil {
		return
	}
	event := audit.Event{
		Timestamp: requestcontext.Now(ctx),
		Action:    string(action),
		Actor:     requestcontext.Actor(ctx),
		RequestID: requestcontext.RequestID(ctx),
		Detail:    detail,
	}
	if app != nil {
		event.CustomerID = app.CustomerID.String()
		event.ApplicationID = app.ID.String()
		event.Amount = decimal.NewNullDecimal(app.Amount)
	}
	for _, r := range reasons {
		event.Reasons = append(event.Reasons, string(r))
	}
	if err := s.audit.Emit(ctx, event); err != nil {
		s.logger.ErrorContext(ctx, "failed to emit audit event",
			"error", err,
			"action", action,
			"application_id", event.ApplicationID,
		)
	}
}

func (s *Service) sendFraudAlert(ctx context.Context, app *ledger.LoanApplication) {
	if s.alerts == nil {
		return
	}
	message := fmt.Sprintf("fraud alert: loan application %s flagged for fraud", app.ID)
	if err := s.alerts.Notify(ctx, s.cfg.AlertRecipients, message); err != nil {
		s.logger.ErrorContext(ctx, "failed to send fraud alert",
			"error", err,
			"application_id", app.ID,
		)
		return
	}
	s.emitAudit(ctx, audit.EventFraudAlertSent, app, nil, "")
}

func (s *Service) incrementSubmission(outcome string) {
	if s.metrics != nil {
		s.metrics.IncrementSubmission(outcome)
	}
}

func (s *Service) incrementTransition(action, outcome string) {
	if s.metrics != nil {
		s.metrics.IncrementTransition(action, outcome)
	}
}
