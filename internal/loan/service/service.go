// Package service is the loan lifecycle manager: it owns the status state
// machine, the submission eligibility gate, and the fraud workflow around
// both. All state lives in the ledger stores; the service itself is
// stateless and safe for concurrent callers.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"fides/internal/alert"
	"fides/internal/audit"
	"fides/internal/fraud"
	"fides/internal/ledger"
	"fides/internal/loan/metrics"
)

// Evaluator is the slice of the fraud engine the lifecycle needs: the full
// rule run at submission and the standalone high-risk gate at approval.
type Evaluator interface {
	Evaluate(ctx context.Context, candidate *ledger.LoanApplication, owner *ledger.Customer) (fraud.Verdict, error)
	HighRisk(candidate *ledger.LoanApplication, owner *ledger.Customer) bool
}

type AuditPublisher interface {
	Emit(ctx context.Context, base audit.Event) error
}

// Config carries lifecycle tunables distinct from the fraud thresholds.
type Config struct {
	// MinAmount is the validation floor for submissions. Unlike the fraud
	// ceiling, below-minimum amounts are rejected outright.
	MinAmount decimal.Decimal

	// CooldownWindow is the eligibility gate: a customer with any
	// application inside the window may not submit another.
	CooldownWindow time.Duration

	// AlertRecipients receive fraud alerts for flagged applications.
	AlertRecipients []string
}

// DefaultConfig returns the production lifecycle settings.
func DefaultConfig() Config {
	return Config{
		MinAmount:      decimal.New(1000, 0),
		CooldownWindow: 24 * time.Hour,
	}
}

func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.MinAmount.IsZero() {
		c.MinAmount = def.MinAmount
	}
	if c.CooldownWindow <= 0 {
		c.CooldownWindow = def.CooldownWindow
	}
	return c
}

type Service struct {
	customers    ledger.CustomerStore
	applications ledger.ApplicationStore
	evaluator    Evaluator
	cfg          Config
	logger       *slog.Logger
	audit        AuditPublisher
	alerts       alert.Notifier
	metrics      *metrics.Metrics
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

func WithAlertNotifier(notifier alert.Notifier) Option {
	return func(s *Service) {
		s.alerts = notifier
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// New creates the lifecycle service with its required dependencies.
func New(customers ledger.CustomerStore, applications ledger.ApplicationStore, evaluator Evaluator, cfg Config, opts ...Option) (*Service, error) {
	if customers == nil {
		return nil, fmt.Errorf("loan service: customer store is required")
	}
	if applications == nil {
		return nil, fmt.Errorf("loan service: application store is required")
	}
	if evaluator == nil {
		return nil, fmt.Errorf("loan service: fraud evaluator is required")
	}

	s := &Service{
		customers:    customers,
		applications: applications,
		evaluator:    evaluator,
		cfg:          cfg.withDefaults(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s, nil
}
