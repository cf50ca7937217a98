package service

import (
	"context"
	"errors"
	"fmt"

	"fides/internal/audit"
	"fides/internal/fraud"
	"fides/internal/ledger"
	"fides/internal/sentinel"
	id "fides/pkg/domain"
	dErrors "fides/pkg/domain-errors"
	"fides/pkg/requestcontext"
)

// requirePending is the shared transition guard: every terminal status,
// FLAGGED included, refuses further transitions.
func requirePending(app *ledger.LoanApplication) error {
	if app.Status != ledger.StatusPending {
		return dErrors.New(dErrors.CodeInvalidState,
			fmt.Sprintf("application is %s, only PENDING applications can transition", app.Status))
	}
	return nil
}

// Approve moves a PENDING application to APPROVED. The high-risk predicate
// is re-checked standalone first: ledger state may have drifted since
// submission, and a high-risk profile blocks approval without mutating.
func (s *Service) Approve(ctx context.Context, appID id.ApplicationID) (*ledger.LoanApplication, error) {
	app, err := s.getApplication(ctx, appID)
	if err != nil {
		s.incrementTransition("approve", "error")
		return nil, err
	}
	if err := requirePending(app); err != nil {
		s.incrementTransition("approve", "invalid_state")
		return nil, err
	}

	owner, err := s.customers.Get(ctx, app.CustomerID)
	if err != nil {
		s.incrementTransition("approve", "error")
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load applicant")
	}
	if s.evaluator.HighRisk(app, owner) {
		s.incrementTransition("approve", "fraud_detected")
		detected := &fraud.DetectedError{
			ApplicationID: app.ID,
			Reasons:       []ledger.ReasonCode{ledger.ReasonHighRiskProfile},
		}
		return nil, dErrors.Wrap(detected, dErrors.CodeFraudDetected, detected.Error())
	}

	now := requestcontext.Now(ctx)
	updated, err := s.applications.Transition(ctx, appID, requirePending, func(a *ledger.LoanApplication) {
		a.Status = ledger.StatusApproved
		a.DateUpdated = now
	})
	if err != nil {
		return nil, s.mapTransitionError("approve", err)
	}

	s.incrementTransition("approve", "approved")
	s.logger.InfoContext(ctx, "loan application approved",
		"application_id", appID,
		"customer_id", updated.CustomerID,
	)
	s.emitAudit(ctx, audit.EventLoanApproved, updated, nil, "")

	return updated, nil
}

// Reject moves a PENDING application to REJECTED. No fraud check applies.
func (s *Service) Reject(ctx context.Context, appID id.ApplicationID) (*ledger.LoanApplication, error) {
	now := requestcontext.Now(ctx)
	updated, err := s.applications.Transition(ctx, appID, requirePending, func(a *ledger.LoanApplication) {
		a.Status = ledger.StatusRejected
		a.DateUpdated = now
	})
	if err != nil {
		return nil, s.mapTransitionError("reject", err)
	}

	s.incrementTransition("reject", "rejected")
	s.logger.InfoContext(ctx, "loan application rejected",
		"application_id", appID,
		"customer_id", updated.CustomerID,
	)
	s.emitAudit(ctx, audit.EventLoanRejected, updated, nil, "")

	return updated, nil
}

// Flag is the manual review path: a reviewer marks a PENDING application
// FLAGGED with one flag per entry, created in the same atomic unit as the
// status change.
func (s *Service) Flag(ctx context.Context, appID id.ApplicationID, entries []ledger.FlagEntry) (*ledger.LoanApplication, error) {
	if err := ledger.ValidateFlagEntries(entries); err != nil {
		s.incrementTransition("flag", "invalid_input")
		return nil, err
	}

	now := requestcontext.Now(ctx)
	updated, _, err := s.applications.TransitionFlagged(ctx, appID, requirePending, func(a *ledger.LoanApplication) {
		a.Status = ledger.StatusFlagged
		a.DateUpdated = now
	}, entries)
	if err != nil {
		return nil, s.mapTransitionError("flag", err)
	}

	reasons := make([]ledger.ReasonCode, len(entries))
	for i, e := range entries {
		reasons[i] = e.Reason
	}

	s.incrementTransition("flag", "flagged")
	s.logger.WarnContext(ctx, "loan application flagged by reviewer",
		"application_id", appID,
		"customer_id", updated.CustomerID,
		"reasons", reasons,
	)
	s.emitAudit(ctx, audit.EventLoanFlagged, updated, reasons, "manual review")
	s.sendFraudAlert(ctx, updated)

	return updated, nil
}

func (s *Service) getApplication(ctx context.Context, appID id.ApplicationID) (*ledger.LoanApplication, error) {
	app, err := s.applications.Get(ctx, appID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "application not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load application")
	}
	return app, nil
}

func (s *Service) mapTransitionError(action string, err error) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		s.incrementTransition(action, "not_found")
		return dErrors.New(dErrors.CodeNotFound, "application not found")
	case dErrors.HasCode(err, dErrors.CodeInvalidState):
		s.incrementTransition(action, "invalid_state")
		return err
	case dErrors.HasCode(err, dErrors.CodeValidation):
		s.incrementTransition(action, "invalid_input")
		return err
	default:
		s.incrementTransition(action, "error")
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to transition application")
	}
}
