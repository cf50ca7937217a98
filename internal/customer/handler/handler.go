package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"fides/internal/customer/service"
	"fides/internal/ledger"
	"fides/internal/platform/metrics"
	"fides/internal/token"
	"fides/internal/transport/http/json"
	"fides/internal/transport/http/shared"
	id "fides/pkg/domain"
	dErrors "fides/pkg/domain-errors"
)

// Service defines the interface for customer operations.
// Returns domain objects, not HTTP response DTOs.
type Service interface {
	Register(ctx context.Context, input service.RegisterInput) (*ledger.Customer, error)
	Authenticate(ctx context.Context, email, password string) (*ledger.Customer, error)
	Get(ctx context.Context, customerID id.CustomerID) (*ledger.Customer, error)
	ListFlagged(ctx context.Context) ([]*ledger.Customer, error)
}

// TokenIssuer mints access tokens for authenticated principals.
type TokenIssuer interface {
	Generate(ctx context.Context, customerID id.CustomerID, email string, role string) (string, error)
}

type Handler struct {
	service Service
	tokens  TokenIssuer
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func New(service Service, tokens TokenIssuer, logger *slog.Logger, m *metrics.Metrics) *Handler {
	return &Handler{service: service, tokens: tokens, logger: logger, metrics: m}
}

// RegisterPublic mounts the unauthenticated customer routes.
func (h *Handler) RegisterPublic(r chi.Router) {
	r.Post("/customers", h.HandleRegister)
	r.Post("/auth/token", h.HandleToken)
}

// RegisterAdmin mounts the admin-only customer routes.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Get("/fraud/customers", h.HandleListFlagged)
}

// HandleRegister creates a customer account.
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req, ok := shared.DecodeAndPrepare[RegisterCustomerRequest](w, r, h.logger)
	if !ok {
		return
	}

	input, err := req.ToInput()
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	customer, err := h.service.Register(ctx, input)
	if err != nil {
		h.logger.ErrorContext(ctx, "register customer failed", "error", err)
		shared.WriteError(w, err)
		return
	}

	json.WriteJSON(w, http.StatusCreated, toCustomerResponse(customer))
}

// HandleToken authenticates a customer and returns a signed access token.
// Admin principals are provisioned outside this endpoint.
func (h *Handler) HandleToken(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if h.metrics != nil {
		h.metrics.IncrementTokenRequests()
	}

	req, ok := shared.DecodeAndPrepare[TokenRequest](w, r, h.logger)
	if !ok {
		return
	}

	customer, err := h.service.Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		if h.metrics != nil {
			h.metrics.IncrementAuthFailures()
		}
		h.logger.WarnContext(ctx, "authentication failed", "error", err)
		shared.WriteError(w, err)
		return
	}

	accessToken, err := h.tokens.Generate(ctx, customer.ID, customer.Email, token.RoleCustomer)
	if err != nil {
		h.logger.ErrorContext(ctx, "token generation failed", "error", err)
		shared.WriteError(w, dErrors.New(dErrors.CodeInternal, "could not issue token"))
		return
	}

	json.WriteJSON(w, http.StatusOK, TokenResponse{
		AccessToken: accessToken,
		TokenType:   "Bearer",
	})
}

// HandleListFlagged returns customers blocked by the fraud gate.
func (h *Handler) HandleListFlagged(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	customers, err := h.service.ListFlagged(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "list flagged customers failed", "error", err)
		shared.WriteError(w, err)
		return
	}

	responses := make([]CustomerResponse, 0, len(customers))
	for _, c := range customers {
		responses = append(responses, toCustomerResponse(c))
	}

	json.WriteJSON(w, http.StatusOK, CustomerListResponse{Customers: responses})
}
