//go:build integration

package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"fides/internal/sentinel"
	id "fides/pkg/domain"
	dErrors "fides/pkg/domain-errors"
	"fides/pkg/requestcontext"
	"fides/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	pg        *containers.PostgresContainer
	customers *PostgresCustomerStore
	apps      *PostgresApplicationStore
	ctx       context.Context
	now       time.Time
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.pg = containers.GetManager().GetPostgres(s.T())
	s.customers = NewPostgresCustomerStore(s.pg.DB)
	s.apps = NewPostgresApplicationStore(s.pg.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	s.now = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	s.ctx = requestcontext.WithTime(context.Background(), s.now)
	s.Require().NoError(s.pg.TruncateModuleTables(context.Background()))
}

func (s *PostgresStoreSuite) newCustomer(email, phone string) *Customer {
	c := &Customer{
		FirstName:   "Ada",
		LastName:    "Lovelace",
		Email:       email,
		PhoneNumber: phone,
		DateOfBirth: time.Date(1990, 12, 10, 0, 0, 0, 0, time.UTC),
	}
	s.Require().NoError(s.customers.Create(s.ctx, c))
	return c
}

func (s *PostgresStoreSuite) newApplication(owner *Customer, applied time.Time) *LoanApplication {
	app := &LoanApplication{
		CustomerID:  owner.ID,
		Amount:      decimal.NewFromInt(25_000),
		Purpose:     PurposePersonal,
		Status:      StatusPending,
		DateApplied: applied,
	}
	s.Require().NoError(s.apps.Create(s.ctx, app))
	return app
}

func (s *PostgresStoreSuite) TestCustomerRoundTrip() {
	c := s.newCustomer("ada@example.com", "+44700900123")

	got, err := s.customers.Get(s.ctx, c.ID)
	s.Require().NoError(err)
	s.Equal("ada@example.com", got.Email)
	s.False(got.FlaggedForFraud)

	byEmail, err := s.customers.GetByEmail(s.ctx, "ADA@example.com")
	s.Require().NoError(err)
	s.Equal(c.ID, byEmail.ID)

	_, err = s.customers.Get(s.ctx, id.NewCustomerID())
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestCustomerDuplicateEmailMapped() {
	s.newCustomer("ada@example.com", "+44700900123")

	err := s.customers.Create(s.ctx, &Customer{
		FirstName:   "Other",
		LastName:    "Person",
		Email:       "Ada@Example.com",
		DateOfBirth: time.Date(1991, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	s.ErrorIs(err, sentinel.ErrDuplicate)
}

func (s *PostgresStoreSuite) TestCountByEmailDomain() {
	s.newCustomer("a@shared.test", "+1")
	s.newCustomer("b@shared.test", "+2")
	s.newCustomer("c@other.test", "+3")

	count, err := s.customers.CountByEmailDomain(s.ctx, "shared.test")
	s.Require().NoError(err)
	s.Equal(2, count)
}

func (s *PostgresStoreSuite) TestHasDuplicate() {
	owner := s.newCustomer("ada@example.com", "+44700900123")
	s.newCustomer("grace@navy.test", "+1555000111")

	s.Run("no overlap beyond first name", func() {
		match := DuplicateMatch{Email: "nobody@nowhere.test", PhoneNumber: "+0"}
		found, err := s.customers.HasDuplicate(s.ctx, match, owner.ID)
		s.Require().NoError(err)
		s.False(found)
	})

	s.Run("phone overlap fires", func() {
		match := DuplicateMatch{PhoneNumber: "+1555000111"}
		found, err := s.customers.HasDuplicate(s.ctx, match, owner.ID)
		s.Require().NoError(err)
		s.True(found)
	})

	s.Run("owner row is excluded", func() {
		match := DuplicateMatch{Email: "ada@example.com"}
		found, err := s.customers.HasDuplicate(s.ctx, match, owner.ID)
		s.Require().NoError(err)
		s.False(found)
	})
}

func (s *PostgresStoreSuite) TestMarkFlaggedForFraud() {
	c := s.newCustomer("ada@example.com", "+44700900123")

	s.Require().NoError(s.customers.MarkFlaggedForFraud(s.ctx, c.ID))

	got, err := s.customers.Get(s.ctx, c.ID)
	s.Require().NoError(err)
	s.True(got.FlaggedForFraud)

	flagged, err := s.customers.ListFlagged(s.ctx)
	s.Require().NoError(err)
	s.Len(flagged, 1)
}

func (s *PostgresStoreSuite) TestCountSince() {
	owner := s.newCustomer("ada@example.com", "+44700900123")
	s.newApplication(owner, s.now.Add(-25*time.Hour))
	s.newApplication(owner, s.now.Add(-time.Hour))

	count, err := s.apps.CountSince(s.ctx, owner.ID, s.now.Add(-24*time.Hour))
	s.Require().NoError(err)
	s.Equal(1, count)
}

func (s *PostgresStoreSuite) TestCreateFlaggedPersistsRowAndFlagsTogether() {
	owner := s.newCustomer("ada@example.com", "+44700900123")
	app := &LoanApplication{
		CustomerID: owner.ID,
		Amount:     decimal.RequireFromString("6000000.00"),
		Purpose:    PurposeBusiness,
		Status:     StatusFlagged,
	}

	flags, err := s.apps.CreateFlagged(s.ctx, app, []FlagEntry{
		{Reason: ReasonAmountExceedsLimit},
		{Reason: ReasonHighRiskProfile, Comments: "over ceiling"},
	})
	s.Require().NoError(err)
	s.Len(flags, 2)

	got, err := s.apps.Get(s.ctx, app.ID)
	s.Require().NoError(err)
	s.Equal(StatusFlagged, got.Status)
	s.True(got.Amount.Equal(decimal.RequireFromString("6000000.00")))

	stored, err := s.apps.ListFlags(s.ctx, app.ID)
	s.Require().NoError(err)
	s.Require().Len(stored, 2)
	s.Equal(ReasonAmountExceedsLimit, stored[0].Reason)
}

func (s *PostgresStoreSuite) TestTransitionLocksAndValidates() {
	owner := s.newCustomer("ada@example.com", "+44700900123")
	app := s.newApplication(owner, s.now)

	s.Run("validate failure leaves row untouched", func() {
		_, err := s.apps.Transition(s.ctx, app.ID,
			func(a *LoanApplication) error {
				return dErrors.New(dErrors.CodeInvalidState, "illegal transition")
			},
			func(a *LoanApplication) { a.Status = StatusApproved },
		)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidState))

		got, err := s.apps.Get(s.ctx, app.ID)
		s.Require().NoError(err)
		s.Equal(StatusPending, got.Status)
	})

	s.Run("successful transition persists", func() {
		updated, err := s.apps.Transition(s.ctx, app.ID,
			func(a *LoanApplication) error { return nil },
			func(a *LoanApplication) { a.Status = StatusApproved },
		)
		s.Require().NoError(err)
		s.Equal(StatusApproved, updated.Status)
	})

	s.Run("missing row maps to not found", func() {
		_, err := s.apps.Transition(s.ctx, id.NewApplicationID(),
			func(a *LoanApplication) error { return nil },
			func(a *LoanApplication) {},
		)
		s.ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *PostgresStoreSuite) TestTransitionFlagged() {
	owner := s.newCustomer("ada@example.com", "+44700900123")
	app := s.newApplication(owner, s.now)

	updated, flags, err := s.apps.TransitionFlagged(s.ctx, app.ID,
		func(a *LoanApplication) error { return nil },
		func(a *LoanApplication) { a.Status = StatusFlagged },
		[]FlagEntry{{Reason: ReasonSuspiciousActivity, Comments: "manual review"}},
	)
	s.Require().NoError(err)
	s.Equal(StatusFlagged, updated.Status)
	s.Require().Len(flags, 1)
	s.Equal(app.ID, flags[0].ApplicationID)
}

func (s *PostgresStoreSuite) TestListFilters() {
	ada := s.newCustomer("ada@example.com", "+1")
	grace := s.newCustomer("grace@navy.test", "+2")
	s.newApplication(ada, s.now.Add(-48*time.Hour))
	s.newApplication(ada, s.now.Add(-2*time.Hour))
	s.newApplication(grace, s.now.Add(-time.Hour))

	byEmail, err := s.apps.List(s.ctx, ApplicationFilter{CustomerEmail: "ada@example.com"})
	s.Require().NoError(err)
	s.Len(byEmail, 2)

	inWindow, err := s.apps.List(s.ctx, ApplicationFilter{
		AppliedAfter:  s.now.Add(-3 * time.Hour),
		AppliedBefore: s.now,
	})
	s.Require().NoError(err)
	s.Len(inWindow, 2)

	all, err := s.apps.List(s.ctx, ApplicationFilter{})
	s.Require().NoError(err)
	s.Len(all, 3)

	mine, err := s.apps.ListByCustomer(s.ctx, ada.ID)
	s.Require().NoError(err)
	s.Len(mine, 2)
}
