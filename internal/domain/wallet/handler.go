package wallet

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fundflow/fundflow-api/internal/middleware"
	"github.com/fundflow/fundflow-api/internal/pkg/response"
	"github.com/fundflow/fundflow-api/internal/pkg/validator"
)

// Handler handles wallet HTTP requests
type Handler struct {
	svc *Service
}

// NewHandler creates wallet handler
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Deposit(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == uuid.Nil {
		response.Unauthorized(w, "unauthorized")
		return
	}

	var req DepositRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "invalid JSON body")
		return
	}
	if details := validator.Validate(&req); details != nil {
		response.ValidationError(w, details)
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		response.BadRequest(w, "invalid amount")
		return
	}

	txn, err := h.svc.Deposit(r.Context(), userID, amount, req.ExternalReference)
	if err != nil {
		h.writeError(w, err)
		return
	}
	response.Created(w, txn)
}

func (h *Handler) Contribute(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == uuid.Nil {
		response.Unauthorized(w, "unauthorized")
		return
	}

	var req ContributeRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "invalid JSON body")
		return
	}
	if details := validator.Validate(&req); details != nil {
		response.ValidationError(w, details)
		return
	}

	contribution, err := h.svc.ContributeToCampaign(r.Context(), userID, &req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	response.Created(w, contribution)
}

func (h *Handler) Withdraw(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == uuid.Nil {
		response.Unauthorized(w, "unauthorized")
		return
	}

	var req WithdrawRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "invalid JSON body")
		return
	}
	if details := validator.Validate(&req); details != nil {
		response.ValidationError(w, details)
		return
	}

	txn, err := h.svc.WithdrawToBank(r.Context(), userID, &req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	response.Created(w, txn)
}

func (h *Handler) Refund(w http.ResponseWriter, r *http.Request) {
	contributionID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "invalid contribution id")
		return
	}

	var req RefundRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "invalid JSON body")
		return
	}
	if details := validator.Validate(&req); details != nil {
		response.ValidationError(w, details)
		return
	}

	txn, err := h.svc.RefundContribution(r.Context(), contributionID, req.Reason)
	if err != nil {
		h.writeError(w, err)
		return
	}
	response.OK(w, txn)
}

func (h *Handler) Balance(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == uuid.Nil {
		response.Unauthorized(w, "unauthorized")
		return
	}

	balance, err := h.svc.GetBalance(r.Context(), userID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	response.OK(w, BalanceResponse{Balance: balance.StringFixed(2)})
}

func (h *Handler) Transactions(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == uuid.Nil {
		response.Unauthorized(w, "unauthorized")
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	transactions, err := h.svc.ListTransactions(r.Context(), userID, limit, offset)
	if err != nil {
		response.InternalError(w)
		return
	}
	response.OK(w, transactions)
}

func (h *Handler) Complete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "invalid transaction id")
		return
	}

	if err := h.svc.CompleteTransaction(r.Context(), id); err != nil {
		h.writeError(w, err)
		return
	}
	response.NoContent(w)
}

func (h *Handler) Fail(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "invalid transaction id")
		return
	}

	var req RefundRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "invalid JSON body")
		return
	}
	if details := validator.Validate(&req); details != nil {
		response.ValidationError(w, details)
		return
	}

	if err := h.svc.FailTransaction(r.Context(), id, req.Reason); err != nil {
		h.writeError(w, err)
		return
	}
	response.NoContent(w)
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidAmount):
		response.BadRequest(w, "amount must be a positive decimal")
	case errors.Is(err, ErrInsufficientFunds):
		response.Conflict(w, "insufficient wallet balance")
	case errors.Is(err, ErrAlreadyRefunded):
		response.Conflict(w, "contribution already refunded")
	case errors.Is(err, ErrDuplicateReference):
		response.Conflict(w, "external reference already used")
	case errors.Is(err, ErrNotPending):
		response.Conflict(w, "transaction is not pending")
	case errors.Is(err, ErrTransactionNotFound):
		response.NotFound(w, "transaction not found")
	case errors.Is(err, ErrContributionNotFound):
		response.NotFound(w, "contribution not found")
	case errors.Is(err, ErrUserNotFound):
		response.NotFound(w, "user not found")
	default:
		response.InternalError(w)
	}
}

// Routes returns wallet routes
func (h *Handler) Routes(authMiddleware, adminMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authMiddleware)

	r.Post("/deposit", h.Deposit)
	r.Post("/contribute", h.Contribute)
	r.Post("/withdraw", h.Withdraw)
	r.Get("/balance", h.Balance)
	r.Get("/transactions", h.Transactions)

	r.Group(func(r chi.Router) {
		r.Use(adminMiddleware)
		r.Post("/contributions/{id}/refund", h.Refund)
		r.Post("/transactions/{id}/complete", h.Complete)
		r.Post("/transactions/{id}/fail", h.Fail)
	})

	return r
}
