package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/mock/gomock"

	"fides/internal/audit"
	"fides/internal/fraud"
	"fides/internal/ledger"
	"fides/internal/sentinel"
	id "fides/pkg/domain"
	dErrors "fides/pkg/domain-errors"
	"fides/pkg/requestcontext"
)

// expectTransition wires the Transition mock to behave like a real store:
// run validate against the current row, abort on error, else apply mutate.
func (s *ServiceSuite) expectTransition(app *ledger.LoanApplication) {
	s.mockApps.EXPECT().Transition(gomock.Any(), app.ID, gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, _ id.ApplicationID,
			validate func(*ledger.LoanApplication) error,
			mutate func(*ledger.LoanApplication)) (*ledger.LoanApplication, error) {
			if err := validate(app); err != nil {
				return nil, err
			}
			mutate(app)
			return app, nil
		})
}

func (s *ServiceSuite) TestApproveTransitionsPendingApplication() {
	customer := s.newTestCustomer()
	app := s.newTestApplication(customer.ID, ledger.StatusPending)
	now := time.Date(2025, 3, 2, 9, 0, 0, 0, time.UTC)
	ctx := requestcontext.WithTime(context.Background(), now)

	s.mockApps.EXPECT().Get(gomock.Any(), app.ID).Return(app, nil)
	s.mockCustomers.EXPECT().Get(gomock.Any(), customer.ID).Return(customer, nil)
	s.mockEvaluator.EXPECT().HighRisk(app, customer).Return(false)
	s.expectTransition(app)
	s.mockAudit.EXPECT().Emit(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, event audit.Event) error {
			s.Equal(string(audit.EventLoanApproved), event.Action)
			return nil
		})

	updated, err := s.service.Approve(ctx, app.ID)
	s.Require().NoError(err)
	s.Equal(ledger.StatusApproved, updated.Status)
	s.True(updated.DateUpdated.Equal(now))
}

func (s *ServiceSuite) TestApproveHighRiskBlockedWithoutMutation() {
	customer := s.newTestCustomer()
	customer.DateOfBirth = time.Date(2003, 1, 1, 0, 0, 0, 0, time.UTC)
	app := s.newTestApplication(customer.ID, ledger.StatusPending)

	s.mockApps.EXPECT().Get(gomock.Any(), app.ID).Return(app, nil)
	s.mockCustomers.EXPECT().Get(gomock.Any(), customer.ID).Return(customer, nil)
	s.mockEvaluator.EXPECT().HighRisk(app, customer).Return(true)
	// No Transition expectation: the gate must block before any mutation.

	_, err := s.service.Approve(context.Background(), app.ID)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeFraudDetected))

	var detected *fraud.DetectedError
	s.Require().True(errors.As(err, &detected))
	s.Equal([]ledger.ReasonCode{ledger.ReasonHighRiskProfile}, detected.Reasons)
}

func (s *ServiceSuite) TestApproveNonPendingInvalidState() {
	for _, status := range []ledger.Status{ledger.StatusApproved, ledger.StatusRejected, ledger.StatusFlagged} {
		s.Run(string(status), func() {
			app := s.newTestApplication(id.NewCustomerID(), status)
			s.mockApps.EXPECT().Get(gomock.Any(), app.ID).Return(app, nil)

			_, err := s.service.Approve(context.Background(), app.ID)
			s.True(dErrors.HasCode(err, dErrors.CodeInvalidState))
		})
	}
}

func (s *ServiceSuite) TestApproveNotFound() {
	appID := id.NewApplicationID()
	s.mockApps.EXPECT().Get(gomock.Any(), appID).
		Return(nil, fmt.Errorf("application: %w", sentinel.ErrNotFound))

	_, err := s.service.Approve(context.Background(), appID)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *ServiceSuite) TestRejectTransitionsPendingApplication() {
	app := s.newTestApplication(id.NewCustomerID(), ledger.StatusPending)

	s.expectTransition(app)
	s.mockAudit.EXPECT().Emit(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, event audit.Event) error {
			s.Equal(string(audit.EventLoanRejected), event.Action)
			return nil
		})

	updated, err := s.service.Reject(context.Background(), app.ID)
	s.Require().NoError(err)
	s.Equal(ledger.StatusRejected, updated.Status)
}

func (s *ServiceSuite) TestRejectFlaggedIsTerminal() {
	app := s.newTestApplication(id.NewCustomerID(), ledger.StatusFlagged)
	s.expectTransition(app)

	_, err := s.service.Reject(context.Background(), app.ID)
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidState))
	s.Equal(ledger.StatusFlagged, app.Status, "validate failure must not mutate")
}

func (s *ServiceSuite) TestRejectTwiceSecondCallInvalidState() {
	app := s.newTestApplication(id.NewCustomerID(), ledger.StatusPending)

	s.expectTransition(app)
	s.mockAudit.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(nil)

	updated, err := s.service.Reject(context.Background(), app.ID)
	s.Require().NoError(err)
	s.Require().Equal(ledger.StatusRejected, updated.Status)

	// a second reject fails validation and emits no audit event
	s.expectTransition(app)
	_, err = s.service.Reject(context.Background(), app.ID)
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidState))
	s.Equal(ledger.StatusRejected, app.Status)
}

func (s *ServiceSuite) TestRejectNotFound() {
	appID := id.NewApplicationID()
	s.mockApps.EXPECT().Transition(gomock.Any(), appID, gomock.Any(), gomock.Any()).
		Return(nil, fmt.Errorf("application: %w", sentinel.ErrNotFound))

	_, err := s.service.Reject(context.Background(), appID)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *ServiceSuite) TestFlagCreatesFlagsAtomically() {
	app := s.newTestApplication(id.NewCustomerID(), ledger.StatusPending)
	entries := []ledger.FlagEntry{
		{Reason: ledger.ReasonIncompleteKYC, Comments: "missing proof of income"},
		{Reason: ledger.ReasonUnusualTransaction},
	}

	s.mockApps.EXPECT().TransitionFlagged(gomock.Any(), app.ID, gomock.Any(), gomock.Any(), entries).DoAndReturn(
		func(_ context.Context, _ id.ApplicationID,
			validate func(*ledger.LoanApplication) error,
			mutate func(*ledger.LoanApplication),
			got []ledger.FlagEntry) (*ledger.LoanApplication, []*ledger.FraudFlag, error) {
			if err := validate(app); err != nil {
				return nil, nil, err
			}
			mutate(app)
			flags := make([]*ledger.FraudFlag, len(got))
			for i, e := range got {
				flags[i] = &ledger.FraudFlag{ApplicationID: app.ID, Reason: e.Reason, Comments: e.Comments}
			}
			return app, flags, nil
		})
	s.mockAudit.EXPECT().Emit(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, event audit.Event) error {
			s.Equal(string(audit.EventLoanFlagged), event.Action)
			s.Equal([]string{"INCOMPLETE_KYC", "UNUSUAL_TRANSACTION"}, event.Reasons)
			return nil
		})
	s.mockAudit.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(nil) // fraud_alert_sent
	s.mockAlerts.EXPECT().Notify(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

	updated, err := s.service.Flag(context.Background(), app.ID, entries)
	s.Require().NoError(err)
	s.Equal(ledger.StatusFlagged, updated.Status)
}

func (s *ServiceSuite) TestFlagEmptyEntriesRejected() {
	_, err := s.service.Flag(context.Background(), id.NewApplicationID(), nil)
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
}

func (s *ServiceSuite) TestFlagUnknownReasonRejected() {
	entries := []ledger.FlagEntry{{Reason: "TOTALLY_MADE_UP"}}
	_, err := s.service.Flag(context.Background(), id.NewApplicationID(), entries)
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
}
