package service

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"fides/internal/audit"
	"fides/internal/ledger"
	id "fides/pkg/domain"
	dErrors "fides/pkg/domain-errors"
)

type CustomerServiceSuite struct {
	suite.Suite
	store   *ledger.MemoryCustomerStore
	sink    *audit.InMemoryStore
	service *Service
}

func (s *CustomerServiceSuite) SetupTest() {
	s.store = ledger.NewMemoryCustomerStore()
	s.sink = audit.NewInMemoryStore()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.service, _ = New(s.store,
		WithLogger(logger),
		WithAuditPublisher(audit.NewPublisher(s.sink)),
	)
}

func TestCustomerServiceSuite(t *testing.T) {
	suite.Run(t, new(CustomerServiceSuite))
}

func (s *CustomerServiceSuite) registerInput() RegisterInput {
	return RegisterInput{
		FirstName:   "Ana",
		LastName:    "Silva",
		Email:       "Ana@Example.com",
		PhoneNumber: "+351900000001",
		DateOfBirth: time.Date(1985, 6, 12, 0, 0, 0, 0, time.UTC),
		Password:    "correct horse battery staple",
	}
}

func (s *CustomerServiceSuite) TestRegisterHashesPasswordAndNormalizesEmail() {
	customer, err := s.service.Register(context.Background(), s.registerInput())
	s.Require().NoError(err)

	s.False(customer.ID.IsNil())
	s.Equal("ana@example.com", customer.Email)
	s.NotEmpty(customer.PasswordHash)
	s.NotContains(customer.PasswordHash, "correct horse")

	events, err := s.sink.ListByCustomer(context.Background(), customer.ID.String())
	s.Require().NoError(err)
	s.Require().Len(events, 1)
	s.Equal(string(audit.EventCustomerRegistered), events[0].Action)
}

func (s *CustomerServiceSuite) TestRegisterDuplicateEmailConflicts() {
	_, err := s.service.Register(context.Background(), s.registerInput())
	s.Require().NoError(err)

	_, err = s.service.Register(context.Background(), s.registerInput())
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))
}

func (s *CustomerServiceSuite) TestRegisterValidation() {
	input := s.registerInput()
	input.Email = "  "
	_, err := s.service.Register(context.Background(), input)
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))

	input = s.registerInput()
	input.Password = ""
	_, err = s.service.Register(context.Background(), input)
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))

	input = s.registerInput()
	input.DateOfBirth = time.Time{}
	_, err = s.service.Register(context.Background(), input)
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
}

func (s *CustomerServiceSuite) TestAuthenticateRoundTrip() {
	registered, err := s.service.Register(context.Background(), s.registerInput())
	s.Require().NoError(err)

	customer, err := s.service.Authenticate(context.Background(), "ana@example.com", "correct horse battery staple")
	s.Require().NoError(err)
	s.Equal(registered.ID, customer.ID)
}

func (s *CustomerServiceSuite) TestAuthenticateWrongPassword() {
	_, err := s.service.Register(context.Background(), s.registerInput())
	s.Require().NoError(err)

	_, err = s.service.Authenticate(context.Background(), "ana@example.com", "wrong")
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func (s *CustomerServiceSuite) TestAuthenticateUnknownEmailIndistinguishable() {
	_, err := s.service.Authenticate(context.Background(), "nobody@example.com", "whatever")
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	s.EqualError(err, "invalid credentials")
}

func (s *CustomerServiceSuite) TestGetNotFound() {
	_, err := s.service.Get(context.Background(), id.NewCustomerID())
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *CustomerServiceSuite) TestListFlagged() {
	customer, err := s.service.Register(context.Background(), s.registerInput())
	s.Require().NoError(err)
	s.Require().NoError(s.store.MarkFlaggedForFraud(context.Background(), customer.ID))

	flagged, err := s.service.ListFlagged(context.Background())
	s.Require().NoError(err)
	s.Require().Len(flagged, 1)
	s.Equal(customer.ID, flagged[0].ID)
	s.True(flagged[0].FlaggedForFraud)
}
