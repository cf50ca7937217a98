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
	"fides/pkg/testutil"
)

type MemoryStoreSuite struct {
	suite.Suite
	customers *MemoryCustomerStore
	apps      *MemoryApplicationStore
	ctx       context.Context
	now       time.Time
}

func TestMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(MemoryStoreSuite))
}

func (s *MemoryStoreSuite) SetupTest() {
	s.customers = NewMemoryCustomerStore()
	s.apps = NewMemoryApplicationStore(s.customers)
	s.now = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	s.ctx = requestcontext.WithTime(context.Background(), s.now)
}

func (s *MemoryStoreSuite) newCustomer(email string) *Customer {
	c := &Customer{
		FirstName:   "Ada",
		LastName:    "Lovelace",
		Email:       email,
		PhoneNumber: "+44700900123",
		DateOfBirth: time.Date(1990, 12, 10, 0, 0, 0, 0, time.UTC),
	}
	s.Require().NoError(s.customers.Create(s.ctx, c))
	return c
}

func (s *MemoryStoreSuite) newApplication(owner *Customer, applied time.Time) *LoanApplication {
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

func (s *MemoryStoreSuite) TestCreateCustomerAssignsIdentity() {
	c := s.newCustomer("ada@example.com")
	s.False(c.ID.IsNil())
	s.Equal(s.now, c.CreatedAt)

	got, err := s.customers.Get(s.ctx, c.ID)
	s.Require().NoError(err)
	s.Equal(c.Email, got.Email)

	// mutations on the returned copy do not leak into the store
	got.FirstName = "changed"
	again, err := s.customers.Get(s.ctx, c.ID)
	s.Require().NoError(err)
	s.Equal("Ada", again.FirstName)
}

func (s *MemoryStoreSuite) TestCreateCustomerRejectsDuplicateEmail() {
	s.newCustomer("ada@example.com")

	err := s.customers.Create(s.ctx, &Customer{Email: "ADA@example.com"})
	s.Require().Error(err)
	s.ErrorIs(err, sentinel.ErrDuplicate)
}

func (s *MemoryStoreSuite) TestGetByEmailNotFound() {
	_, err := s.customers.GetByEmail(s.ctx, "nobody@example.com")
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *MemoryStoreSuite) TestCountByEmailDomain() {
	s.newCustomer("a@shared.test")
	s.newCustomer("b@shared.test")
	s.newCustomer("c@other.test")

	count, err := s.customers.CountByEmailDomain(s.ctx, "shared.test")
	s.Require().NoError(err)
	s.Equal(2, count)
}

func (s *MemoryStoreSuite) TestHasDuplicateMatchesAnyField() {
	owner := s.newCustomer("ada@example.com")

	other := &Customer{
		FirstName:   "Grace",
		LastName:    "Hopper",
		Email:       "grace@navy.test",
		PhoneNumber: "+1555000111",
		DateOfBirth: time.Date(1906, 12, 9, 0, 0, 0, 0, time.UTC),
	}
	s.Require().NoError(s.customers.Create(s.ctx, other))

	s.Run("no overlap", func() {
		found, err := s.customers.HasDuplicate(s.ctx, MatchFor(owner), owner.ID)
		s.Require().NoError(err)
		s.False(found)
	})

	s.Run("phone overlap fires", func() {
		match := MatchFor(owner)
		match.PhoneNumber = other.PhoneNumber
		found, err := s.customers.HasDuplicate(s.ctx, match, owner.ID)
		s.Require().NoError(err)
		s.True(found)
	})

	s.Run("owner excluded from match", func() {
		found, err := s.customers.HasDuplicate(s.ctx, MatchFor(owner), owner.ID)
		s.Require().NoError(err)
		s.False(found)
	})

	s.Run("empty criteria fields never match", func() {
		found, err := s.customers.HasDuplicate(s.ctx, DuplicateMatch{}, owner.ID)
		s.Require().NoError(err)
		s.False(found)
	})
}

func (s *MemoryStoreSuite) TestMarkFlaggedForFraud() {
	c := s.newCustomer("ada@example.com")

	s.Require().NoError(s.customers.MarkFlaggedForFraud(s.ctx, c.ID))

	got, err := s.customers.Get(s.ctx, c.ID)
	s.Require().NoError(err)
	s.True(got.FlaggedForFraud)

	flagged, err := s.customers.ListFlagged(s.ctx)
	s.Require().NoError(err)
	s.Len(flagged, 1)

	s.ErrorIs(s.customers.MarkFlaggedForFraud(s.ctx, id.NewCustomerID()), sentinel.ErrNotFound)
}

func (s *MemoryStoreSuite) TestCountSinceUsesInclusiveBound() {
	owner := s.newCustomer("ada@example.com")
	s.newApplication(owner, s.now.Add(-25*time.Hour))
	s.newApplication(owner, s.now.Add(-24*time.Hour)) // exactly on the bound
	s.newApplication(owner, s.now.Add(-time.Hour))

	count, err := s.apps.CountSince(s.ctx, owner.ID, s.now.Add(-24*time.Hour))
	s.Require().NoError(err)
	s.Equal(2, count)
}

func (s *MemoryStoreSuite) TestCreateFlaggedIsAtomicUnit() {
	owner := s.newCustomer("ada@example.com")
	app := &LoanApplication{
		CustomerID: owner.ID,
		Amount:     decimal.NewFromInt(6_000_000),
		Purpose:    PurposeBusiness,
		Status:     StatusFlagged,
	}

	flags, err := s.apps.CreateFlagged(s.ctx, app, []FlagEntry{
		{Reason: ReasonAmountExceedsLimit},
		{Reason: ReasonHighRiskProfile, Comments: "over the high-risk ceiling"},
	})
	s.Require().NoError(err)
	s.Len(flags, 2)
	s.False(app.ID.IsNil())

	stored, err := s.apps.ListFlags(s.ctx, app.ID)
	s.Require().NoError(err)
	s.Require().Len(stored, 2)
	s.Equal(ReasonAmountExceedsLimit, stored[0].Reason)
	s.Equal(ReasonHighRiskProfile, stored[1].Reason)
	s.False(stored[0].Resolved)
}

func (s *MemoryStoreSuite) TestTransitionValidatesBeforeMutating() {
	owner := s.newCustomer("ada@example.com")
	app := s.newApplication(owner, s.now)

	_, err := s.apps.Transition(s.ctx, app.ID,
		func(a *LoanApplication) error {
			return dErrors.New(dErrors.CodeInvalidState, "nope")
		},
		func(a *LoanApplication) { a.Status = StatusApproved },
	)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidState))

	unchanged, err := s.apps.Get(s.ctx, app.ID)
	s.Require().NoError(err)
	s.Equal(StatusPending, unchanged.Status)
}

func (s *MemoryStoreSuite) TestTransitionAppliesMutation() {
	owner := s.newCustomer("ada@example.com")
	app := s.newApplication(owner, s.now.Add(-time.Hour))

	later := requestcontext.WithTime(s.ctx, s.now.Add(time.Hour))
	updated, err := s.apps.Transition(later, app.ID,
		func(a *LoanApplication) error { return nil },
		func(a *LoanApplication) { a.Status = StatusApproved },
	)
	s.Require().NoError(err)
	s.Equal(StatusApproved, updated.Status)
	s.Equal(s.now.Add(time.Hour), updated.DateUpdated)
	s.Equal(s.now.Add(-time.Hour), updated.DateApplied)
}

func (s *MemoryStoreSuite) TestTransitionFlaggedCreatesFlagsWithStatus() {
	owner := s.newCustomer("ada@example.com")
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

func (s *MemoryStoreSuite) TestListFilters() {
	ada := s.newCustomer("ada@example.com")
	grace := s.newCustomer("grace@navy.test")

	first := s.newApplication(ada, s.now.Add(-48*time.Hour))
	second := s.newApplication(ada, s.now.Add(-2*time.Hour))
	third := s.newApplication(grace, s.now.Add(-time.Hour))

	_, _, err := s.apps.TransitionFlagged(s.ctx, second.ID,
		func(a *LoanApplication) error { return nil },
		func(a *LoanApplication) { a.Status = StatusFlagged },
		[]FlagEntry{{Reason: ReasonSuspiciousActivity}},
	)
	s.Require().NoError(err)

	s.Run("by status", func() {
		got, err := s.apps.List(s.ctx, ApplicationFilter{Status: StatusFlagged})
		s.Require().NoError(err)
		s.Require().Len(got, 1)
		s.Equal(second.ID, got[0].ID)
	})

	s.Run("by customer email", func() {
		got, err := s.apps.List(s.ctx, ApplicationFilter{CustomerEmail: "ada@example.com"})
		s.Require().NoError(err)
		s.Len(got, 2)
	})

	s.Run("unknown email yields empty listing", func() {
		got, err := s.apps.List(s.ctx, ApplicationFilter{CustomerEmail: "nobody@example.com"})
		s.Require().NoError(err)
		s.Empty(got)
	})

	s.Run("by applied window", func() {
		got, err := s.apps.List(s.ctx, ApplicationFilter{
			AppliedAfter:  s.now.Add(-3 * time.Hour),
			AppliedBefore: s.now,
		})
		s.Require().NoError(err)
		s.Len(got, 2)
		// newest first
		s.Equal(third.ID, got[0].ID)
	})

	s.Run("no filter returns everything newest first", func() {
		got, err := s.apps.List(s.ctx, ApplicationFilter{})
		s.Require().NoError(err)
		s.Require().Len(got, 3)
		s.Equal(first.ID, got[2].ID)
	})

	s.Run("list by customer", func() {
		got, err := s.apps.ListByCustomer(s.ctx, ada.ID)
		s.Require().NoError(err)
		s.Len(got, 2)
	})
}

func (s *MemoryStoreSuite) TestConcurrentCreateSingleWinnerPerEmail() {
	res := testutil.RunConcurrent(16, func(idx int) error {
		return s.customers.Create(s.ctx, &Customer{
			FirstName:   "Ada",
			LastName:    "Lovelace",
			Email:       "ada@example.com",
			DateOfBirth: time.Date(1990, 12, 10, 0, 0, 0, 0, time.UTC),
		})
	})

	s.Equal(int32(1), res.Successes)
	s.Equal(int32(15), res.Duplicates)
	s.Equal(int32(16), res.Total())
}

func (s *MemoryStoreSuite) TestConcurrentTransitionSingleApproval() {
	owner := s.newCustomer("ada@example.com")
	app := s.newApplication(owner, s.now)

	successes, errs := testutil.RunConcurrentCollect(8, func(idx int) error {
		_, err := s.apps.Transition(s.ctx, app.ID,
			func(a *LoanApplication) error {
				if a.Status != StatusPending {
					return dErrors.New(dErrors.CodeInvalidState, "already decided")
				}
				return nil
			},
			func(a *LoanApplication) { a.Status = StatusApproved },
		)
		return err
	})

	s.Equal(int32(1), successes)
	s.Require().Len(errs, 7)
	for _, err := range errs {
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidState))
	}

	final, err := s.apps.Get(s.ctx, app.ID)
	s.Require().NoError(err)
	s.Equal(StatusApproved, final.Status)
}
