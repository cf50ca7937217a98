// Package fraud is the rule engine behind loan fraud screening. It inspects a
// candidate application plus the owner's history and produces a verdict with
// ordered reasons. It reads the ledger but never writes; persistence of flags
// belongs to the loan lifecycle manager.
package fraud

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"fides/internal/fraud/metrics"
	"fides/internal/fraud/tracer"
	"fides/internal/ledger"
	id "fides/pkg/domain"
	"fides/pkg/requestcontext"
)

// dailyWindow is the trailing window of the too-many-applications rule and
// matches the submission cooldown the lifecycle manager enforces separately.
const dailyWindow = 24 * time.Hour

// ApplicationCounter is the narrow slice of the application store the
// evaluator reads.
type ApplicationCounter interface {
	CountSince(ctx context.Context, customerID id.CustomerID, since time.Time) (int, error)
}

// CustomerScanner is the narrow slice of the customer store the evaluator
// reads.
type CustomerScanner interface {
	CountByEmailDomain(ctx context.Context, domain string) (int, error)
	HasDuplicate(ctx context.Context, match ledger.DuplicateMatch, exclude id.CustomerID) (bool, error)
}

// Evaluator runs the fraud rule set. It is stateless and safe for concurrent
// callers; all state lives behind the store ports.
type Evaluator struct {
	applications ApplicationCounter
	customers    CustomerScanner
	cfg          Config
	logger       *slog.Logger
	metrics      *metrics.Metrics
	tracer       tracer.Tracer
}

// Option configures the Evaluator.
type Option func(*Evaluator)

// WithLogger sets the logger for the evaluator.
func WithLogger(l *slog.Logger) Option {
	return func(e *Evaluator) {
		e.logger = l
	}
}

// WithMetrics sets the metrics collector for the evaluator.
func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Evaluator) {
		e.metrics = m
	}
}

// WithTracer sets the tracer wrapping each evaluation in a span.
func WithTracer(t tracer.Tracer) Option {
	return func(e *Evaluator) {
		e.tracer = t
	}
}

// New creates a fraud evaluator with the required store ports.
func New(applications ApplicationCounter, customers CustomerScanner, cfg Config, opts ...Option) (*Evaluator, error) {
	if applications == nil {
		return nil, fmt.Errorf("fraud.New: application counter is required")
	}
	if customers == nil {
		return nil, fmt.Errorf("fraud.New: customer scanner is required")
	}

	e := &Evaluator{
		applications: applications,
		customers:    customers,
		cfg:          cfg.withDefaults(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	if e.tracer == nil {
		e.tracer = tracer.NewNoop()
	}
	return e, nil
}

// Config exposes the effective thresholds, defaults applied.
func (e *Evaluator) Config() Config {
	return e.cfg
}

// Evaluate runs every rule against the candidate and returns the verdict.
// Deterministic given ledger state: the evaluation timestamp is taken once
// via requestcontext.Now so tests can pin the clock, and reasons always come
// back in rule order.
func (e *Evaluator) Evaluate(ctx context.Context, candidate *ledger.LoanApplication, owner *ledger.Customer) (Verdict, error) {
	if candidate == nil || owner == nil {
		return Verdict{}, fmt.Errorf("fraud evaluate: candidate and owner are required")
	}

	evalTime := requestcontext.Now(ctx)
	start := time.Now()
	defer func() {
		if e.metrics != nil {
			e.metrics.ObserveEvaluationDuration(time.Since(start))
		}
	}()

	ctx, span := e.tracer.Start(ctx, "fraud.evaluate",
		tracer.String("customer_id", owner.ID.String()),
		tracer.String("purpose", string(candidate.Purpose)),
	)

	sig, err := e.gatherSignals(ctx, candidate, owner, evalTime)
	if err != nil {
		span.End(err)
		return Verdict{}, err
	}

	reasons := e.applyRules(candidate, owner, sig)

	verdict := Verdict{
		Outcome:     OutcomeClean,
		Reasons:     reasons,
		EvaluatedAt: evalTime,
	}
	if len(reasons) > 0 {
		verdict.Outcome = OutcomeFraud
	}

	if e.metrics != nil {
		e.metrics.IncrementVerdict(string(verdict.Outcome))
		for _, r := range reasons {
			e.metrics.IncrementRuleHit(string(r))
		}
	}

	span.SetAttributes(
		tracer.String("verdict", string(verdict.Outcome)),
		tracer.Int("reason_count", len(reasons)),
	)
	span.End(nil)

	if verdict.Fraudulent() {
		e.logger.InfoContext(ctx, "fraud rules fired",
			"customer_id", owner.ID,
			"reasons", reasonStrings(reasons),
			"request_id", requestcontext.RequestID(ctx),
		)
	}

	return verdict, nil
}

// gatherSignals runs the store-backed reads in parallel under a shared
// deadline. Each goroutine writes to its own field of the result, so there is
// nothing to synchronize beyond the errgroup wait.
func (e *Evaluator) gatherSignals(ctx context.Context, candidate *ledger.LoanApplication, owner *ledger.Customer, evalTime time.Time) (signals, error) {
	ctx, cancel := context.WithTimeout(ctx, e.cfg.SignalTimeout)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)
	var sig signals

	g.Go(func() error {
		start := time.Now()
		count, err := e.applications.CountSince(ctx, owner.ID, evalTime.Add(-dailyWindow))
		e.observeSignal("window_count", start)
		if err != nil {
			return fmt.Errorf("count applications in window: %w", err)
		}
		sig.windowCount = count
		return nil
	})

	g.Go(func() error {
		domain := owner.EmailDomain()
		if domain == "" {
			return nil
		}
		start := time.Now()
		count, err := e.customers.CountByEmailDomain(ctx, domain)
		e.observeSignal("domain_count", start)
		if err != nil {
			return fmt.Errorf("count customers by domain: %w", err)
		}
		sig.domainCount = count
		return nil
	})

	g.Go(func() error {
		start := time.Now()
		found, err := e.customers.HasDuplicate(ctx, ledger.MatchFor(owner), owner.ID)
		e.observeSignal("duplicate_scan", start)
		if err != nil {
			return fmt.Errorf("scan duplicate customers: %w", err)
		}
		sig.duplicate = found
		return nil
	})

	if err := g.Wait(); err != nil {
		return signals{}, err
	}
	return sig, nil
}

func (e *Evaluator) observeSignal(name string, start time.Time) {
	if e.metrics != nil {
		e.metrics.ObserveSignalDuration(name, time.Since(start))
	}
}

func reasonStrings(reasons []ledger.ReasonCode) []string {
	out := make([]string, len(reasons))
	for i, r := range reasons {
		out[i] = string(r)
	}
	return out
}
