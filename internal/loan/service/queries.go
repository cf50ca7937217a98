package service

import (
	"context"
	"errors"

	"fides/internal/fraud"
	"fides/internal/ledger"
	"fides/internal/sentinel"
	id "fides/pkg/domain"
	dErrors "fides/pkg/domain-errors"
)

// Get returns one application. Ownership checks belong to transport.
func (s *Service) Get(ctx context.Context, appID id.ApplicationID) (*ledger.LoanApplication, error) {
	return s.getApplication(ctx, appID)
}

// List returns applications matching the filter, newest first.
func (s *Service) List(ctx context.Context, filter ledger.ApplicationFilter) ([]*ledger.LoanApplication, error) {
	apps, err := s.applications.List(ctx, filter)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list applications")
	}
	return apps, nil
}

// ListByCustomer returns the customer's applications, newest first.
func (s *Service) ListByCustomer(ctx context.Context, customerID id.CustomerID) ([]*ledger.LoanApplication, error) {
	apps, err := s.applications.ListByCustomer(ctx, customerID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list customer applications")
	}
	return apps, nil
}

// ListFlags returns the fraud flags recorded against one application.
func (s *Service) ListFlags(ctx context.Context, appID id.ApplicationID) ([]*ledger.FraudFlag, error) {
	if _, err := s.getApplication(ctx, appID); err != nil {
		return nil, err
	}
	flags, err := s.applications.ListFlags(ctx, appID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list fraud flags")
	}
	return flags, nil
}

// FlaggedApplications returns every FLAGGED application, newest first.
func (s *Service) FlaggedApplications(ctx context.Context) ([]*ledger.LoanApplication, error) {
	return s.List(ctx, ledger.ApplicationFilter{Status: ledger.StatusFlagged})
}

// RunFraudChecks re-runs the evaluator against a stored application without
// mutating it: the ad-hoc screening an administrator can request.
func (s *Service) RunFraudChecks(ctx context.Context, appID id.ApplicationID) (fraud.Verdict, error) {
	app, err := s.getApplication(ctx, appID)
	if err != nil {
		return fraud.Verdict{}, err
	}
	owner, err := s.customers.Get(ctx, app.CustomerID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return fraud.Verdict{}, dErrors.New(dErrors.CodeNotFound, "customer not found")
		}
		return fraud.Verdict{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load applicant")
	}

	verdict, err := s.evaluator.Evaluate(ctx, app, owner)
	if err != nil {
		return fraud.Verdict{}, dErrors.Wrap(err, dErrors.CodeInternal, "fraud evaluation failed")
	}
	return verdict, nil
}
