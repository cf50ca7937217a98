// Package service handles customer registration, authentication lookups, and
// the fraud-flagged listing used by administration.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"fides/internal/audit"
	"fides/internal/ledger"
	"fides/internal/sentinel"
	id "fides/pkg/domain"
	dErrors "fides/pkg/domain-errors"
	"fides/pkg/requestcontext"
	"fides/pkg/secrets"
)

type AuditPublisher interface {
	Emit(ctx context.Context, base audit.Event) error
}

type Service struct {
	customers ledger.CustomerStore
	logger    *slog.Logger
	audit     AuditPublisher
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.audit = publisher
	}
}

func New(customers ledger.CustomerStore, opts ...Option) (*Service, error) {
	if customers == nil {
		return nil, fmt.Errorf("customer service: customer store is required")
	}
	s := &Service{customers: customers}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s, nil
}

// RegisterInput carries the registration fields after transport validation.
type RegisterInput struct {
	FirstName   string
	LastName    string
	Email       string
	PhoneNumber string
	DateOfBirth time.Time
	Password    string
}

// Register creates a customer with a hashed password. Email collisions map
// to a conflict error.
func (s *Service) Register(ctx context.Context, input RegisterInput) (*ledger.Customer, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "email is required")
	}
	if input.DateOfBirth.IsZero() {
		return nil, dErrors.New(dErrors.CodeValidation, "date of birth is required")
	}
	hash, err := secrets.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	customer := &ledger.Customer{
		FirstName:    strings.TrimSpace(input.FirstName),
		LastName:     strings.TrimSpace(input.LastName),
		Email:        email,
		PhoneNumber:  strings.TrimSpace(input.PhoneNumber),
		DateOfBirth:  input.DateOfBirth,
		PasswordHash: hash,
	}
	if err := s.customers.Create(ctx, customer); err != nil {
		if errors.Is(err, sentinel.ErrDuplicate) {
			return nil, dErrors.New(dErrors.CodeConflict, "email already registered")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create customer")
	}

	s.logger.InfoContext(ctx, "customer registered",
		"customer_id", customer.ID,
		"request_id", requestcontext.RequestID(ctx),
	)
	s.emitRegistered(ctx, customer)

	return customer, nil
}

// Authenticate verifies credentials and returns the customer. Unknown email
// and wrong password are indistinguishable to the caller.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*ledger.Customer, error) {
	customer, err := s.customers.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid credentials")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load customer")
	}
	if err := secrets.Verify(password, customer.PasswordHash); err != nil {
		return nil, err
	}
	return customer, nil
}

// Get returns one customer.
func (s *Service) Get(ctx context.Context, customerID id.CustomerID) (*ledger.Customer, error) {
	customer, err := s.customers.Get(ctx, customerID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "customer not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load customer")
	}
	return customer, nil
}

// ListFlagged returns every customer marked for fraud.
func (s *Service) ListFlagged(ctx context.Context) ([]*ledger.Customer, error) {
	customers, err := s.customers.ListFlagged(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list flagged customers")
	}
	return customers, nil
}

func (s *Service) emitRegistered(ctx context.Context, customer *ledger.Customer) {
	if s.audit == nil {
		return
	}
	err := s.audit.Emit(ctx, audit.Event{
		Timestamp:  requestcontext.Now(ctx),
		Action:     string(audit.EventCustomerRegistered),
		CustomerID: customer.ID.String(),
		RequestID:  requestcontext.RequestID(ctx),
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to emit audit event",
			"error", err,
			"customer_id", customer.ID,
		)
	}
}
