package fraud

import (
	"time"

	"github.com/shopspring/decimal"
)

// Config carries the rule thresholds. All thresholds live here rather than in
// package state so tests can tighten or relax them per case.
type Config struct {
	// MaxDailyApplications is the largest number of applications, candidate
	// included, a customer may have in the trailing 24-hour window before
	// the too-many-applications rule fires.
	MaxDailyApplications int

	// SharedDomainLimit is the largest number of registered customers,
	// owner included, that may share an email domain before the
	// suspicious-domain rule fires.
	SharedDomainLimit int

	// MaxAmount is the fraud ceiling: amounts strictly above it fire the
	// amount-exceeds-limit rule.
	MaxAmount decimal.Decimal

	// HighRiskAmount and HighRiskBirthYear form the high-risk composite:
	// amount above HighRiskAmount requested by an owner born before
	// HighRiskBirthYear.
	HighRiskAmount    decimal.Decimal
	HighRiskBirthYear int

	// SignalTimeout bounds the parallel store reads of one evaluation.
	SignalTimeout time.Duration
}

// DefaultConfig returns the production thresholds.
func DefaultConfig() Config {
	return Config{
		MaxDailyApplications: 3,
		SharedDomainLimit:    10,
		MaxAmount:            decimal.New(5_000_000, 0),
		HighRiskAmount:       decimal.New(1_000_000, 0),
		HighRiskBirthYear:    2000,
		SignalTimeout:        5 * time.Second,
	}
}

// withDefaults fills zero-valued fields so a partially built Config cannot
// disable a rule by accident.
func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.MaxDailyApplications <= 0 {
		c.MaxDailyApplications = def.MaxDailyApplications
	}
	if c.SharedDomainLimit <= 0 {
		c.SharedDomainLimit = def.SharedDomainLimit
	}
	if c.MaxAmount.IsZero() {
		c.MaxAmount = def.MaxAmount
	}
	if c.HighRiskAmount.IsZero() {
		c.HighRiskAmount = def.HighRiskAmount
	}
	if c.HighRiskBirthYear <= 0 {
		c.HighRiskBirthYear = def.HighRiskBirthYear
	}
	if c.SignalTimeout <= 0 {
		c.SignalTimeout = def.SignalTimeout
	}
	return c
}
