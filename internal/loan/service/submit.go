package service

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"fides/internal/audit"
	"fides/internal/fraud"
	"fides/internal/ledger"
	"fides/internal/sentinel"
	id "fides/pkg/domain"
	dErrors "fides/pkg/domain-errors"
	"fides/pkg/requestcontext"
)

// Submit runs the full intake pipeline: eligibility gate, fraud evaluation,
// then persistence. A fraud verdict still persists the application as
// FLAGGED together with its flags; the submitter sees the failure while the
// record remains for review.
func (s *Service) Submit(ctx context.Context, customerID id.CustomerID, amount decimal.Decimal, purpose string) (*ledger.LoanApplication, error) {
	owner, err := s.customers.Get(ctx, customerID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			s.incrementSubmission("error")
			return nil, dErrors.New(dErrors.CodeNotFound, "customer not found")
		}
		s.incrementSubmission("error")
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load customer")
	}

	parsedPurpose, err := ledger.ParsePurpose(purpose)
	if err != nil {
		s.incrementSubmission("rejected_validation")
		return nil, err
	}
	if !amount.IsPositive() || amount.LessThan(s.cfg.MinAmount) {
		s.incrementSubmission("rejected_validation")
		return nil, dErrors.New(dErrors.CodeValidation,
			"amount must be at least "+s.cfg.MinAmount.String())
	}

	now := requestcontext.Now(ctx)

	// Eligibility gate. The cooldown count is an independent check from the
	// evaluator's trailing-24h rule: one recent application already blocks
	// submission here, well before the fraud threshold.
	if owner.FlaggedForFraud {
		s.incrementSubmission("rejected_eligibility")
		return nil, dErrors.New(dErrors.CodeEligibility, "customer is flagged for fraud")
	}
	recent, err := s.applications.CountSince(ctx, customerID, now.Add(-s.cfg.CooldownWindow))
	if err != nil {
		s.incrementSubmission("error")
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check cooldown window")
	}
	if recent > 0 {
		s.incrementSubmission("rejected_eligibility")
		return nil, dErrors.New(dErrors.CodeEligibility,
			"customer already applied within the cooldown window")
	}

	candidate := &ledger.LoanApplication{
		CustomerID:  customerID,
		Amount:      amount,
		Purpose:     parsedPurpose,
		Status:      ledger.StatusPending,
		DateApplied: now,
		DateUpdated: now,
	}

	verdict, err := s.evaluator.Evaluate(ctx, candidate, owner)
	if err != nil {
		s.incrementSubmission("error")
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "fraud evaluation failed")
	}

	if verdict.Fraudulent() {
		return nil, s.persistFlaggedSubmission(ctx, candidate, verdict)
	}

	if err := s.applications.Create(ctx, candidate); err != nil {
		s.incrementSubmission("error")
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to persist application")
	}

	s.incrementSubmission("pending")
	s.logger.InfoContext(ctx, "loan application submitted",
		"application_id", candidate.ID,
		"customer_id", customerID,
		"amount", amount,
		"purpose", parsedPurpose,
	)
	s.emitAudit(ctx, audit.EventLoanSubmitted, candidate, nil, "")

	return candidate, nil
}

// persistFlaggedSubmission stores the fraud-struck candidate as FLAGGED with
// one flag per reason, fires audit and alert, and builds the caller's error.
func (s *Service) persistFlaggedSubmission(ctx context.Context, candidate *ledger.LoanApplication, verdict fraud.Verdict) error {
	candidate.Status = ledger.StatusFlagged

	entries := make([]ledger.FlagEntry, len(verdict.Reasons))
	for i, reason := range verdict.Reasons {
		entries[i] = ledger.FlagEntry{Reason: reason}
	}

	if _, err := s.applications.CreateFlagged(ctx, candidate, entries); err != nil {
		s.incrementSubmission("error")
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to persist flagged application")
	}

	s.incrementSubmission("flagged")
	s.logger.WarnContext(ctx, "loan application flagged at submission",
		"application_id", candidate.ID,
		"customer_id", candidate.CustomerID,
		"reasons", verdict.Reasons,
	)
	s.emitAudit(ctx, audit.EventLoanFlagged, candidate, verdict.Reasons, "automated fraud screening")
	s.sendFraudAlert(ctx, candidate)

	detected := &fraud.DetectedError{
		ApplicationID: candidate.ID,
		Reasons:       verdict.Reasons,
	}
	return dErrors.Wrap(detected, dErrors.CodeFraudDetected, detected.Error())
}
