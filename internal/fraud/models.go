package fraud

import (
	"fmt"
	"strings"
	"time"

	"fides/internal/ledger"
	id "fides/pkg/domain"
)

// Outcome enumerates the possible fraud verdicts.
type Outcome string

const (
	OutcomeClean Outcome = "CLEAN"
	OutcomeFraud Outcome = "FRAUD"
)

// Verdict is the structured result of one evaluation. Reasons preserve rule
// discovery order so output is deterministic for tests and audit logs.
type Verdict struct {
	Outcome     Outcome
	Reasons     []ledger.ReasonCode
	EvaluatedAt time.Time
}

// Fraudulent reports whether any rule fired.
func (v Verdict) Fraudulent() bool {
	return v.Outcome == OutcomeFraud
}

// DetectedError carries the ordered reason codes of a fraud verdict. Services
// wrap it with dErrors.CodeFraudDetected so transport can match either by
// code or by errors.As.
type DetectedError struct {
	ApplicationID id.ApplicationID
	Reasons       []ledger.ReasonCode
}

func (e *DetectedError) Error() string {
	codes := make([]string, len(e.Reasons))
	for i, r := range e.Reasons {
		codes[i] = string(r)
	}
	return fmt.Sprintf("fraud detected: %s", strings.Join(codes, ", "))
}

// signals holds the raw store-backed inputs gathered before rule evaluation.
// Each field is written by exactly one goroutine during the parallel fetch.
type signals struct {
	windowCount int
	domainCount int
	duplicate   bool
}
