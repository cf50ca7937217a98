// Package ledger holds the shared data model for loan applications and the
// contracts of the durable store behind them. Both the fraud evaluator and
// the loan lifecycle manager import this package and nothing of each other,
// so the domain types live here exactly once.
package ledger

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	id "fides/pkg/domain"
	dErrors "fides/pkg/domain-errors"
)

// Status enumerates the loan application state machine. PENDING is the sole
// initial state; the other three are terminal for this core (no un-flagging
// or re-opening operation exists).
type Status string

const (
	StatusPending  Status = "PENDING"
	StatusApproved Status = "APPROVED"
	StatusRejected Status = "REJECTED"
	StatusFlagged  Status = "FLAGGED"
)

// ParseStatus validates a status string at trust boundaries.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusPending, StatusApproved, StatusRejected, StatusFlagged:
		return Status(s), nil
	}
	return "", dErrors.New(dErrors.CodeValidation, "unknown status: "+s)
}

// IsTerminal reports whether no further transition is legal from s.
func (s Status) IsTerminal() bool {
	return s == StatusApproved || s == StatusRejected || s == StatusFlagged
}

// Purpose enumerates the declared use of a requested loan.
type Purpose string

const (
	PurposePersonal  Purpose = "PERSONAL"
	PurposeBusiness  Purpose = "BUSINESS"
	PurposeEducation Purpose = "EDUCATION"
	PurposeMedical   Purpose = "MEDICAL"
	PurposeOther     Purpose = "OTHER"
)

// ParsePurpose validates and parses a purpose string.
//
// Usage: call at trust boundaries for external input.
func ParsePurpose(s string) (Purpose, error) {
	switch Purpose(s) {
	case PurposePersonal, PurposeBusiness, PurposeEducation, PurposeMedical, PurposeOther:
		return Purpose(s), nil
	}
	return "", dErrors.New(dErrors.CodeValidation, "unknown loan purpose: "+s)
}

// ReasonCode enumerates fraud-flag categories. The first six are emitted by
// the evaluator's rules; the rest exist for manual review flags raised by
// administrators.
type ReasonCode string

const (
	ReasonTooManyApplications     ReasonCode = "TOO_MANY_APPLICATIONS"
	ReasonSuspiciousEmailDomain   ReasonCode = "SUSPICIOUS_EMAIL_DOMAIN"
	ReasonAmountExceedsLimit      ReasonCode = "AMOUNT_EXCEEDS_LIMIT"
	ReasonSuspiciousActivity      ReasonCode = "SUSPICIOUS_ACTIVITY"
	ReasonInconsistentInformation ReasonCode = "INCONSISTENT_INFORMATION"
	ReasonHighRiskProfile         ReasonCode = "HIGH_RISK_PROFILE"

	ReasonIncompleteKYC      ReasonCode = "INCOMPLETE_KYC"
	ReasonUnusualTransaction ReasonCode = "UNUSUAL_TRANSACTION"
	ReasonInactiveDebitCard  ReasonCode = "INACTIVE_DEBIT_CARD"
	ReasonDirectDebitFailure ReasonCode = "DIRECT_DEBIT_FAILURE"
	ReasonOther              ReasonCode = "OTHER"
)

var knownReasons = map[ReasonCode]struct{}{
	ReasonTooManyApplications:     {},
	ReasonSuspiciousEmailDomain:   {},
	ReasonAmountExceedsLimit:      {},
	ReasonSuspiciousActivity:      {},
	ReasonInconsistentInformation: {},
	ReasonHighRiskProfile:         {},
	ReasonIncompleteKYC:           {},
	ReasonUnusualTransaction:      {},
	ReasonInactiveDebitCard:       {},
	ReasonDirectDebitFailure:      {},
	ReasonOther:                   {},
}

// ParseReasonCode validates a reason string at trust boundaries.
func ParseReasonCode(s string) (ReasonCode, error) {
	if _, ok := knownReasons[ReasonCode(s)]; !ok {
		return "", dErrors.New(dErrors.CodeValidation, "unknown reason code: "+s)
	}
	return ReasonCode(s), nil
}

// Customer is a registered loan applicant. Created at registration; mutated
// only by fraud workflows or admin action; never deleted by this core.
type Customer struct {
	ID           id.CustomerID
	FirstName    string
	LastName     string
	Email        string
	PhoneNumber  string
	DateOfBirth  time.Time
	PasswordHash string

	// FlaggedForFraud permanently blocks new submissions until manually
	// cleared (no clearing operation exists in this core).
	FlaggedForFraud bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// EmailDomain returns the lower-cased domain part of the customer's email,
// or "" when the address has no @.
func (c *Customer) EmailDomain() string {
	at := strings.LastIndexByte(c.Email, '@')
	if at < 0 || at == len(c.Email)-1 {
		return ""
	}
	return strings.ToLower(c.Email[at+1:])
}

// BirthYear is used by the high-risk composite rule.
func (c *Customer) BirthYear() int {
	return c.DateOfBirth.Year()
}

// LoanApplication is a customer's request for a loan. The owner reference is
// immutable after creation; DateApplied is set once; DateUpdated moves on
// every status change.
type LoanApplication struct {
	ID          id.ApplicationID
	CustomerID  id.CustomerID
	Amount      decimal.Decimal
	Purpose     Purpose
	Status      Status
	DateApplied time.Time
	DateUpdated time.Time
}

// Persisted reports whether the application has been written to the store.
// The fraud evaluator's window count treats an unpersisted candidate as one
// application on top of the stored count.
func (a *LoanApplication) Persisted() bool {
	return !a.ID.IsNil()
}

// FraudFlag records one reason a loan application was flagged. Flags are
// created only as a side effect of a fraud determination and are never
// retracted, preserving the audit history even if review workflows evolve.
type FraudFlag struct {
	ID            id.FlagID
	ApplicationID id.ApplicationID
	Reason        ReasonCode
	Comments      string
	Resolved      bool
	CreatedAt     time.Time
}

// FlagEntry is the input variant for creating a fraud flag: a reason plus
// optional free-text comments.
type FlagEntry struct {
	Reason   ReasonCode
	Comments string
}

// ValidateFlagEntries rejects empty lists and unknown reasons. Order is
// preserved by the caller; this only checks content.
func ValidateFlagEntries(entries []FlagEntry) error {
	if len(entries) == 0 {
		return dErrors.New(dErrors.CodeValidation, "at least one flag must be provided")
	}
	for _, e := range entries {
		if _, err := ParseReasonCode(string(e.Reason)); err != nil {
			return err
		}
	}
	return nil
}
