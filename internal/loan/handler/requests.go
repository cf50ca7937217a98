package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"fides/internal/ledger"
	dErrors "fides/pkg/domain-errors"
	"fides/pkg/validation"
)

// HTTP Request DTOs - contain JSON tags for API serialization.
// These are converted to domain inputs before processing.

type SubmitLoanRequest struct {
	Amount  decimal.Decimal `json:"amount"`
	Purpose string          `json:"purpose" validate:"required,notblank"`
}

func (r *SubmitLoanRequest) Normalize() {
	if r == nil {
		return
	}
	r.Purpose = strings.ToUpper(strings.TrimSpace(r.Purpose))
}

// Validate checks shape only. Amount bounds and purpose membership are
// domain rules enforced by the service.
func (r *SubmitLoanRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeValidation, "request is required")
	}
	if r.Amount.IsZero() {
		return dErrors.New(dErrors.CodeValidation, "amount is required")
	}
	return validation.Validate(r)
}

type FlagEntryRequest struct {
	Reason   string `json:"reason" validate:"required,notblank"`
	Comments string `json:"comments" validate:"omitempty,max=500"`
}

type FlagLoanRequest struct {
	Flags []FlagEntryRequest `json:"flags" validate:"required,min=1,dive"`
}

func (r *FlagLoanRequest) Normalize() {
	if r == nil {
		return
	}
	for i := range r.Flags {
		r.Flags[i].Reason = strings.ToUpper(strings.TrimSpace(r.Flags[i].Reason))
		r.Flags[i].Comments = strings.TrimSpace(r.Flags[i].Comments)
	}
}

func (r *FlagLoanRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeValidation, "request is required")
	}
	return validation.Validate(r)
}

// ToEntries converts the request flags preserving order. Reason membership is
// validated by the service through ledger.ValidateFlagEntries.
func (r *FlagLoanRequest) ToEntries() []ledger.FlagEntry {
	entries := make([]ledger.FlagEntry, 0, len(r.Flags))
	for _, f := range r.Flags {
		entries = append(entries, ledger.FlagEntry{
			Reason:   ledger.ReasonCode(f.Reason),
			Comments: f.Comments,
		})
	}
	return entries
}

// filterFromQuery maps the admin listing query parameters onto the store
// filter. Unknown statuses and malformed dates fail loudly instead of
// silently returning the unfiltered set.
func filterFromQuery(r *http.Request) (ledger.ApplicationFilter, error) {
	var filter ledger.ApplicationFilter
	q := r.URL.Query()

	if raw := strings.TrimSpace(q.Get("status")); raw != "" {
		status, err := ledger.ParseStatus(strings.ToUpper(raw))
		if err != nil {
			return ledger.ApplicationFilter{}, err
		}
		filter.Status = status
	}
	filter.CustomerEmail = strings.ToLower(strings.TrimSpace(q.Get("customer_email")))

	if raw := strings.TrimSpace(q.Get("applied_after")); raw != "" {
		t, err := parseQueryTime(raw)
		if err != nil {
			return ledger.ApplicationFilter{}, dErrors.New(dErrors.CodeValidation, "applied_after must be an RFC 3339 timestamp or 2006-01-02 date")
		}
		filter.AppliedAfter = t
	}
	if raw := strings.TrimSpace(q.Get("applied_before")); raw != "" {
		t, err := parseQueryTime(raw)
		if err != nil {
			return ledger.ApplicationFilter{}, dErrors.New(dErrors.CodeValidation, "applied_before must be an RFC 3339 timestamp or 2006-01-02 date")
		}
		filter.AppliedBefore = t
	}

	return filter, nil
}

func parseQueryTime(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", raw)
}
