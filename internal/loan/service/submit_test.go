package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/mock/gomock"

	"fides/internal/audit"
	"fides/internal/fraud"
	"fides/internal/ledger"
	"fides/internal/sentinel"
	id "fides/pkg/domain"
	dErrors "fides/pkg/domain-errors"
	"fides/pkg/requestcontext"
)

func (s *ServiceSuite) TestSubmitCleanPersistsPending() {
	customer := s.newTestCustomer()
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	ctx := requestcontext.WithTime(context.Background(), now)

	s.mockCustomers.EXPECT().Get(gomock.Any(), customer.ID).Return(customer, nil)
	s.mockApps.EXPECT().CountSince(gomock.Any(), customer.ID, now.Add(-24*time.Hour)).Return(0, nil)
	s.mockEvaluator.EXPECT().Evaluate(gomock.Any(), gomock.Any(), customer).
		Return(fraud.Verdict{Outcome: fraud.OutcomeClean, EvaluatedAt: now}, nil)
	s.mockApps.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, app *ledger.LoanApplication) error {
			app.ID = id.NewApplicationID()
			return nil
		})
	s.mockAudit.EXPECT().Emit(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, event audit.Event) error {
			s.Equal(string(audit.EventLoanSubmitted), event.Action)
			s.Equal(customer.ID.String(), event.CustomerID)
			return nil
		})

	app, err := s.service.Submit(ctx, customer.ID, decimal.New(50_000, 0), "PERSONAL")
	s.Require().NoError(err)
	s.Equal(ledger.StatusPending, app.Status)
	s.Equal(ledger.PurposePersonal, app.Purpose)
	s.True(app.DateApplied.Equal(now))
	s.False(app.ID.IsNil())
}

func (s *ServiceSuite) TestSubmitCustomerNotFound() {
	customerID := id.NewCustomerID()
	s.mockCustomers.EXPECT().Get(gomock.Any(), customerID).
		Return(nil, fmt.Errorf("customer: %w", sentinel.ErrNotFound))

	_, err := s.service.Submit(context.Background(), customerID, decimal.New(50_000, 0), "PERSONAL")
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *ServiceSuite) TestSubmitUnknownPurposeRejected() {
	customer := s.newTestCustomer()
	s.mockCustomers.EXPECT().Get(gomock.Any(), customer.ID).Return(customer, nil)

	_, err := s.service.Submit(context.Background(), customer.ID, decimal.New(50_000, 0), "GAMBLING")
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
}

func (s *ServiceSuite) TestSubmitBelowMinimumAmountRejected() {
	customer := s.newTestCustomer()
	s.mockCustomers.EXPECT().Get(gomock.Any(), customer.ID).Return(customer, nil).Times(2)

	_, err := s.service.Submit(context.Background(), customer.ID, decimal.New(999, 0), "PERSONAL")
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))

	_, err = s.service.Submit(context.Background(), customer.ID, decimal.New(-500, 0), "PERSONAL")
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
}

func (s *ServiceSuite) TestSubmitFlaggedCustomerIneligible() {
	customer := s.newTestCustomer()
	customer.FlaggedForFraud = true
	s.mockCustomers.EXPECT().Get(gomock.Any(), customer.ID).Return(customer, nil)

	// Eligibility trumps everything: no evaluation, no persistence.
	_, err := s.service.Submit(context.Background(), customer.ID, decimal.New(50_000, 0), "PERSONAL")
	s.True(dErrors.HasCode(err, dErrors.CodeEligibility))
}

func (s *ServiceSuite) TestSubmitCooldownWindowIneligible() {
	customer := s.newTestCustomer()
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	ctx := requestcontext.WithTime(context.Background(), now)

	s.mockCustomers.EXPECT().Get(gomock.Any(), customer.ID).Return(customer, nil)
	s.mockApps.EXPECT().CountSince(gomock.Any(), customer.ID, now.Add(-24*time.Hour)).Return(1, nil)

	_, err := s.service.Submit(ctx, customer.ID, decimal.New(50_000, 0), "PERSONAL")
	s.True(dErrors.HasCode(err, dErrors.CodeEligibility))
}

func (s *ServiceSuite) TestSubmitFraudVerdictPersistsFlagged() {
	customer := s.newTestCustomer()
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	ctx := requestcontext.WithTime(context.Background(), now)
	reasons := []ledger.ReasonCode{
		ledger.ReasonAmountExceedsLimit,
		ledger.ReasonHighRiskProfile,
	}

	s.mockCustomers.EXPECT().Get(gomock.Any(), customer.ID).Return(customer, nil)
	s.mockApps.EXPECT().CountSince(gomock.Any(), customer.ID, gomock.Any()).Return(0, nil)
	s.mockEvaluator.EXPECT().Evaluate(gomock.Any(), gomock.Any(), customer).
		Return(fraud.Verdict{Outcome: fraud.OutcomeFraud, Reasons: reasons, EvaluatedAt: now}, nil)
	s.mockApps.EXPECT().CreateFlagged(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, app *ledger.LoanApplication, entries []ledger.FlagEntry) ([]*ledger.FraudFlag, error) {
			s.Equal(ledger.StatusFlagged, app.Status)
			s.Require().Len(entries, 2)
			s.Equal(ledger.ReasonAmountExceedsLimit, entries[0].Reason)
			s.Equal(ledger.ReasonHighRiskProfile, entries[1].Reason)
			app.ID = id.NewApplicationID()
			return []*ledger.FraudFlag{{}, {}}, nil
		})
	s.mockAudit.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(nil).Times(2) // loan_flagged + fraud_alert_sent
	s.mockAlerts.EXPECT().Notify(gomock.Any(), []string{"admin@fides.test"}, gomock.Any()).Return(nil)

	_, err := s.service.Submit(ctx, customer.ID, decimal.New(6_000_000, 0), "BUSINESS")
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeFraudDetected))

	var detected *fraud.DetectedError
	s.Require().True(errors.As(err, &detected))
	s.Equal(reasons, detected.Reasons)
	s.False(detected.ApplicationID.IsNil(), "flagged row must exist despite the error")
}

func (s *ServiceSuite) TestSubmitAlertFailureDoesNotFailSubmission() {
	customer := s.newTestCustomer()
	reasons := []ledger.ReasonCode{ledger.ReasonAmountExceedsLimit}

	s.mockCustomers.EXPECT().Get(gomock.Any(), customer.ID).Return(customer, nil)
	s.mockApps.EXPECT().CountSince(gomock.Any(), customer.ID, gomock.Any()).Return(0, nil)
	s.mockEvaluator.EXPECT().Evaluate(gomock.Any(), gomock.Any(), customer).
		Return(fraud.Verdict{Outcome: fraud.OutcomeFraud, Reasons: reasons}, nil)
	s.mockApps.EXPECT().CreateFlagged(gomock.Any(), gomock.Any(), gomock.Any()).
		Return([]*ledger.FraudFlag{{}}, nil)
	s.mockAudit.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(errors.New("sink down"))
	s.mockAlerts.EXPECT().Notify(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("broker down"))

	_, err := s.service.Submit(context.Background(), customer.ID, decimal.New(6_000_000, 0), "PERSONAL")
	s.True(dErrors.HasCode(err, dErrors.CodeFraudDetected),
		"audit/alert failures must not change the outcome")
}

func (s *ServiceSuite) TestSubmitEvaluatorErrorPropagates() {
	customer := s.newTestCustomer()

	s.mockCustomers.EXPECT().Get(gomock.Any(), customer.ID).Return(customer, nil)
	s.mockApps.EXPECT().CountSince(gomock.Any(), customer.ID, gomock.Any()).Return(0, nil)
	s.mockEvaluator.EXPECT().Evaluate(gomock.Any(), gomock.Any(), customer).
		Return(fraud.Verdict{}, errors.New("store timeout"))

	_, err := s.service.Submit(context.Background(), customer.ID, decimal.New(50_000, 0), "PERSONAL")
	s.True(dErrors.HasCode(err, dErrors.CodeInternal))
}
