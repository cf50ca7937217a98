package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"fides/internal/fraud"
	"fides/internal/ledger"
	"fides/internal/platform/middleware"
	"fides/internal/transport/http/json"
	"fides/internal/transport/http/shared"
	id "fides/pkg/domain"
	dErrors "fides/pkg/domain-errors"
)

// Service defines the interface for loan application operations.
// Returns domain objects, not HTTP response DTOs.
type Service interface {
	Submit(ctx context.Context, customerID id.CustomerID, amount decimal.Decimal, purpose string) (*ledger.LoanApplication, error)
	Get(ctx context.Context, appID id.ApplicationID) (*ledger.LoanApplication, error)
	List(ctx context.Context, filter ledger.ApplicationFilter) ([]*ledger.LoanApplication, error)
	ListByCustomer(ctx context.Context, customerID id.CustomerID) ([]*ledger.LoanApplication, error)
	ListFlags(ctx context.Context, appID id.ApplicationID) ([]*ledger.FraudFlag, error)
	FlaggedApplications(ctx context.Context) ([]*ledger.LoanApplication, error)
	Approve(ctx context.Context, appID id.ApplicationID) (*ledger.LoanApplication, error)
	Reject(ctx context.Context, appID id.ApplicationID) (*ledger.LoanApplication, error)
	Flag(ctx context.Context, appID id.ApplicationID, entries []ledger.FlagEntry) (*ledger.LoanApplication, error)
	RunFraudChecks(ctx context.Context, appID id.ApplicationID) (fraud.Verdict, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterCustomer mounts the customer-facing loan routes. Callers only see
// their own applications; ownership is enforced against the token principal.
func (h *Handler) RegisterCustomer(r chi.Router) {
	r.Post("/loans", h.HandleSubmit)
	r.Get("/loans", h.HandleListOwn)
	r.Get("/loans/{id}", h.HandleGetOwn)
}

// RegisterAdmin mounts the admin review routes.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Get("/loans", h.HandleList)
	r.Get("/loans/flagged", h.HandleListFlagged)
	r.Get("/loans/{id}", h.HandleGet)
	r.Post("/loans/{id}/approve", h.HandleApprove)
	r.Post("/loans/{id}/reject", h.HandleReject)
	r.Post("/loans/{id}/flag", h.HandleFlag)
	r.Post("/loans/{id}/fraud-check", h.HandleFraudCheck)
}

// HandleSubmit creates a loan application for the authenticated customer.
func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	customerID, ok := h.principalCustomerID(w, ctx)
	if !ok {
		return
	}

	req, ok := shared.DecodeAndPrepare[SubmitLoanRequest](w, r, h.logger)
	if !ok {
		return
	}

	app, err := h.service.Submit(ctx, customerID, req.Amount, req.Purpose)
	if err != nil {
		h.logger.WarnContext(ctx, "submit loan failed", "error", err, "customer_id", customerID)
		shared.WriteError(w, err)
		return
	}

	json.WriteJSON(w, http.StatusCreated, toLoanResponse(app))
}

// HandleListOwn returns the authenticated customer's applications.
func (h *Handler) HandleListOwn(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	customerID, ok := h.principalCustomerID(w, ctx)
	if !ok {
		return
	}

	apps, err := h.service.ListByCustomer(ctx, customerID)
	if err != nil {
		h.logger.ErrorContext(ctx, "list own loans failed", "error", err, "customer_id", customerID)
		shared.WriteError(w, err)
		return
	}

	json.WriteJSON(w, http.StatusOK, toLoanListResponse(apps))
}

// HandleGetOwn returns one of the authenticated customer's applications.
// Applications owned by someone else read as not found rather than forbidden
// so the route does not leak which ids exist.
func (h *Handler) HandleGetOwn(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	customerID, ok := h.principalCustomerID(w, ctx)
	if !ok {
		return
	}

	appID, err := parseApplicationID(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	app, err := h.service.Get(ctx, appID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	if app.CustomerID != customerID {
		shared.WriteError(w, dErrors.New(dErrors.CodeNotFound, "loan application not found"))
		return
	}

	json.WriteJSON(w, http.StatusOK, toLoanResponse(app))
}

// HandleList returns all applications matching the admin listing filters.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	filter, err := filterFromQuery(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	apps, err := h.service.List(ctx, filter)
	if err != nil {
		h.logger.ErrorContext(ctx, "list loans failed", "error", err)
		shared.WriteError(w, err)
		return
	}

	json.WriteJSON(w, http.StatusOK, toLoanListResponse(apps))
}

// HandleListFlagged returns applications currently in FLAGGED state.
func (h *Handler) HandleListFlagged(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	apps, err := h.service.FlaggedApplications(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "list flagged loans failed", "error", err)
		shared.WriteError(w, err)
		return
	}

	json.WriteJSON(w, http.StatusOK, toLoanListResponse(apps))
}

// HandleGet returns one application with its fraud flags.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	appID, err := parseApplicationID(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	app, err := h.service.Get(ctx, appID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	flags, err := h.service.ListFlags(ctx, appID)
	if err != nil {
		h.logger.ErrorContext(ctx, "list fraud flags failed", "error", err, "application_id", appID)
		shared.WriteError(w, err)
		return
	}

	json.WriteJSON(w, http.StatusOK, toLoanDetailResponse(app, flags))
}

// HandleApprove approves a pending application.
func (h *Handler) HandleApprove(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "approve", h.service.Approve)
}

// HandleReject rejects a pending application.
func (h *Handler) HandleReject(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "reject", h.service.Reject)
}

// HandleFlag flags a pending application with one or more fraud reasons.
func (h *Handler) HandleFlag(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	appID, err := parseApplicationID(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	req, ok := shared.DecodeAndPrepare[FlagLoanRequest](w, r, h.logger)
	if !ok {
		return
	}

	app, err := h.service.Flag(ctx, appID, req.ToEntries())
	if err != nil {
		h.logger.WarnContext(ctx, "flag loan failed", "error", err, "application_id", appID)
		shared.WriteError(w, err)
		return
	}

	json.WriteJSON(w, http.StatusOK, toLoanResponse(app))
}

// HandleFraudCheck re-runs the fraud rules without mutating the application.
func (h *Handler) HandleFraudCheck(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	appID, err := parseApplicationID(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	verdict, err := h.service.RunFraudChecks(ctx, appID)
	if err != nil {
		h.logger.ErrorContext(ctx, "fraud check failed", "error", err, "application_id", appID)
		shared.WriteError(w, err)
		return
	}

	json.WriteJSON(w, http.StatusOK, toFraudCheckResponse(appID, verdict))
}

func (h *Handler) transition(w http.ResponseWriter, r *http.Request, action string,
	fn func(context.Context, id.ApplicationID) (*ledger.LoanApplication, error)) {
	ctx := r.Context()

	appID, err := parseApplicationID(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	app, err := fn(ctx, appID)
	if err != nil {
		h.logger.WarnContext(ctx, "loan transition failed", "action", action, "error", err, "application_id", appID)
		shared.WriteError(w, err)
		return
	}

	json.WriteJSON(w, http.StatusOK, toLoanResponse(app))
}

// principalCustomerID resolves the authenticated customer from the request
// context. Admin tokens carry no customer id and cannot use customer routes.
func (h *Handler) principalCustomerID(w http.ResponseWriter, ctx context.Context) (id.CustomerID, bool) {
	raw := middleware.GetCustomerID(ctx)
	customerID, err := id.ParseCustomerID(raw)
	if err != nil || customerID.IsNil() {
		shared.WriteError(w, dErrors.New(dErrors.CodeForbidden, "token carries no customer identity"))
		return id.CustomerID{}, false
	}
	return customerID, true
}

func parseApplicationID(r *http.Request) (id.ApplicationID, error) {
	appID, err := id.ParseApplicationID(chi.URLParam(r, "id"))
	if err != nil {
		return id.ApplicationID{}, dErrors.New(dErrors.CodeValidation, "invalid application id")
	}
	return appID, nil
}
