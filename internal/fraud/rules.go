package fraud

import (
	"fides/internal/ledger"
)

// applyRules converts gathered signals into an ordered reason list. Rules are
// independent: every rule is checked and its reasons accumulate, no
// short-circuiting. The order here fixes the discovery order of the verdict.
func (e *Evaluator) applyRules(candidate *ledger.LoanApplication, owner *ledger.Customer, sig signals) []ledger.ReasonCode {
	var reasons []ledger.ReasonCode

	// Rule 1: too many applications in the trailing 24h window, candidate
	// included. An unpersisted candidate is one on top of the stored count.
	windowCount := sig.windowCount
	if !candidate.Persisted() {
		windowCount++
	}
	if windowCount > e.cfg.MaxDailyApplications {
		reasons = append(reasons, ledger.ReasonTooManyApplications)
	}

	// Rule 2: email domain shared by too many registered customers.
	if sig.domainCount > e.cfg.SharedDomainLimit {
		reasons = append(reasons, ledger.ReasonSuspiciousEmailDomain)
	}

	// Rule 3: amount above the fraud ceiling.
	if candidate.Amount.GreaterThan(e.cfg.MaxAmount) {
		reasons = append(reasons, ledger.ReasonAmountExceedsLimit)
	}

	// Rule 4: another customer matches the owner on any identity field.
	// One match deliberately appends two reason codes; downstream consumers
	// depend on seeing both.
	if sig.duplicate {
		reasons = append(reasons, ledger.ReasonSuspiciousActivity, ledger.ReasonInconsistentInformation)
	}

	// Rule 5: high-risk composite, shared with the approval gate.
	if e.HighRisk(candidate, owner) {
		reasons = append(reasons, ledger.ReasonHighRiskProfile)
	}

	return reasons
}

// HighRisk is the single high-risk predicate: amount above the high-risk
// ceiling requested by an owner born before the cutoff year. It is both an
// Evaluate signal and the standalone gate an administrator approval must
// pass; both call sites share this implementation so they cannot drift.
func (e *Evaluator) HighRisk(candidate *ledger.LoanApplication, owner *ledger.Customer) bool {
	return candidate.Amount.GreaterThan(e.cfg.HighRiskAmount) &&
		owner.BirthYear() < e.cfg.HighRiskBirthYear
}
