package handler

import (
	"time"

	"fides/internal/fraud"
	"fides/internal/ledger"
	id "fides/pkg/domain"
)

// LoanResponse is the wire view of a loan application. Amounts serialize as
// decimal strings so clients never see float rounding.
type LoanResponse struct {
	ID          string `json:"id"`
	CustomerID  string `json:"customer_id"`
	Amount      string `json:"amount"`
	Purpose     string `json:"purpose"`
	Status      string `json:"status"`
	DateApplied string `json:"date_applied"`
	DateUpdated string `json:"date_updated"`
}

type LoanListResponse struct {
	Loans []LoanResponse `json:"loans"`
}

type FraudFlagResponse struct {
	ID        string `json:"id"`
	Reason    string `json:"reason"`
	Comments  string `json:"comments,omitempty"`
	Resolved  bool   `json:"resolved"`
	CreatedAt string `json:"created_at"`
}

type LoanDetailResponse struct {
	LoanResponse
	FraudFlags []FraudFlagResponse `json:"fraud_flags"`
}

type FraudCheckResponse struct {
	ApplicationID string   `json:"application_id"`
	Fraudulent    bool     `json:"fraudulent"`
	Reasons       []string `json:"reasons"`
	EvaluatedAt   string   `json:"evaluated_at"`
}

func toLoanResponse(app *ledger.LoanApplication) LoanResponse {
	return LoanResponse{
		ID:          app.ID.String(),
		CustomerID:  app.CustomerID.String(),
		Amount:      app.Amount.String(),
		Purpose:     string(app.Purpose),
		Status:      string(app.Status),
		DateApplied: app.DateApplied.UTC().Format(time.RFC3339),
		DateUpdated: app.DateUpdated.UTC().Format(time.RFC3339),
	}
}

func toLoanListResponse(apps []*ledger.LoanApplication) LoanListResponse {
	loans := make([]LoanResponse, 0, len(apps))
	for _, app := range apps {
		loans = append(loans, toLoanResponse(app))
	}
	return LoanListResponse{Loans: loans}
}

func toLoanDetailResponse(app *ledger.LoanApplication, flags []*ledger.FraudFlag) LoanDetailResponse {
	out := LoanDetailResponse{
		LoanResponse: toLoanResponse(app),
		FraudFlags:   make([]FraudFlagResponse, 0, len(flags)),
	}
	for _, f := range flags {
		out.FraudFlags = append(out.FraudFlags, FraudFlagResponse{
			ID:        f.ID.String(),
			Reason:    string(f.Reason),
			Comments:  f.Comments,
			Resolved:  f.Resolved,
			CreatedAt: f.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return out
}

func toFraudCheckResponse(appID id.ApplicationID, verdict fraud.Verdict) FraudCheckResponse {
	reasons := make([]string, 0, len(verdict.Reasons))
	for _, r := range verdict.Reasons {
		reasons = append(reasons, string(r))
	}
	return FraudCheckResponse{
		ApplicationID: appID.String(),
		Fraudulent:    verdict.Fraudulent(),
		Reasons:       reasons,
		EvaluatedAt:   verdict.EvaluatedAt.UTC().Format(time.RFC3339),
	}
}
