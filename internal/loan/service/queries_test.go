package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/mock/gomock"

	"fides/internal/fraud"
	"fides/internal/ledger"
	"fides/internal/sentinel"
	id "fides/pkg/domain"
	dErrors "fides/pkg/domain-errors"
)

func (s *ServiceSuite) TestGetMapsNotFound() {
	appID := id.NewApplicationID()
	s.mockApps.EXPECT().Get(gomock.Any(), appID).
		Return(nil, fmt.Errorf("application: %w", sentinel.ErrNotFound))

	_, err := s.service.Get(context.Background(), appID)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *ServiceSuite) TestListPassesFilterThrough() {
	filter := ledger.ApplicationFilter{Status: ledger.StatusPending, CustomerEmail: "ana@example.com"}
	expected := []*ledger.LoanApplication{s.newTestApplication(id.NewCustomerID(), ledger.StatusPending)}
	s.mockApps.EXPECT().List(gomock.Any(), filter).Return(expected, nil)

	apps, err := s.service.List(context.Background(), filter)
	s.Require().NoError(err)
	s.Equal(expected, apps)
}

func (s *ServiceSuite) TestFlaggedApplicationsFiltersByStatus() {
	s.mockApps.EXPECT().List(gomock.Any(), ledger.ApplicationFilter{Status: ledger.StatusFlagged}).
		Return(nil, nil)

	_, err := s.service.FlaggedApplications(context.Background())
	s.NoError(err)
}

func (s *ServiceSuite) TestListFlagsRequiresExistingApplication() {
	appID := id.NewApplicationID()
	s.mockApps.EXPECT().Get(gomock.Any(), appID).
		Return(nil, fmt.Errorf("application: %w", sentinel.ErrNotFound))

	_, err := s.service.ListFlags(context.Background(), appID)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *ServiceSuite) TestListFlagsReturnsStoredFlags() {
	app := s.newTestApplication(id.NewCustomerID(), ledger.StatusFlagged)
	flags := []*ledger.FraudFlag{
		{ApplicationID: app.ID, Reason: ledger.ReasonAmountExceedsLimit},
	}
	s.mockApps.EXPECT().Get(gomock.Any(), app.ID).Return(app, nil)
	s.mockApps.EXPECT().ListFlags(gomock.Any(), app.ID).Return(flags, nil)

	got, err := s.service.ListFlags(context.Background(), app.ID)
	s.Require().NoError(err)
	s.Equal(flags, got)
}

func (s *ServiceSuite) TestRunFraudChecksDoesNotMutate() {
	customer := s.newTestCustomer()
	app := s.newTestApplication(customer.ID, ledger.StatusPending)
	verdict := fraud.Verdict{
		Outcome: fraud.OutcomeFraud,
		Reasons: []ledger.ReasonCode{ledger.ReasonSuspiciousEmailDomain},
	}

	s.mockApps.EXPECT().Get(gomock.Any(), app.ID).Return(app, nil)
	s.mockCustomers.EXPECT().Get(gomock.Any(), customer.ID).Return(customer, nil)
	s.mockEvaluator.EXPECT().Evaluate(gomock.Any(), app, customer).Return(verdict, nil)
	// No Transition or CreateFlagged expectations: read-only by contract.

	got, err := s.service.RunFraudChecks(context.Background(), app.ID)
	s.Require().NoError(err)
	s.Equal(verdict, got)
}

func (s *ServiceSuite) TestRunFraudChecksEvaluatorError() {
	customer := s.newTestCustomer()
	app := s.newTestApplication(customer.ID, ledger.StatusPending)

	s.mockApps.EXPECT().Get(gomock.Any(), app.ID).Return(app, nil)
	s.mockCustomers.EXPECT().Get(gomock.Any(), customer.ID).Return(customer, nil)
	s.mockEvaluator.EXPECT().Evaluate(gomock.Any(), app, customer).
		Return(fraud.Verdict{}, errors.New("signal timeout"))

	_, err := s.service.RunFraudChecks(context.Background(), app.ID)
	s.True(dErrors.HasCode(err, dErrors.CodeInternal))
}
