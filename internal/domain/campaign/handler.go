package campaign

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/fundflow/fundflow-api/internal/middleware"
	"github.com/fundflow/fundflow-api/internal/pkg/response"
	"github.com/fundflow/fundflow-api/internal/pkg/validator"
)

// Handler handles campaign HTTP requests
type Handler struct {
	svc *Service
}

// NewHandler creates campaign handler
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == uuid.Nil {
		response.Unauthorized(w, "unauthorized")
		return
	}

	var req CreateRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "invalid JSON body")
		return
	}
	if details := validator.Validate(&req); details != nil {
		response.ValidationError(w, details)
		return
	}

	c, err := h.svc.Create(r.Context(), userID, &req)
	if err != nil {
		response.InternalError(w)
		return
	}
	response.Created(w, c)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "invalid campaign id")
		return
	}

	var req UpdateRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "invalid JSON body")
		return
	}
	if details := validator.Validate(&req); details != nil {
		response.ValidationError(w, details)
		return
	}

	c, err := h.svc.Update(r.Context(), userID, id, &req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	response.OK(w, c)
}

func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, func(userID, id uuid.UUID) (*Campaign, error) {
		return h.svc.Submit(r.Context(), userID, id)
	})
}

func (h *Handler) Activate(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, func(userID, id uuid.UUID) (*Campaign, error) {
		return h.svc.Activate(r.Context(), userID, id)
	})
}

func (h *Handler) Approve(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, func(userID, id uuid.UUID) (*Campaign, error) {
		return h.svc.Approve(r.Context(), userID, id)
	})
}

func (h *Handler) Reject(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "invalid campaign id")
		return
	}

	var req RejectRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "invalid JSON body")
		return
	}
	if details := validator.Validate(&req); details != nil {
		response.ValidationError(w, details)
		return
	}

	c, err := h.svc.Reject(r.Context(), userID, id, req.Reason)
	if err != nil {
		h.writeError(w, err)
		return
	}
	response.OK(w, c)
}

func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "invalid campaign id")
		return
	}

	var req CancelRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "invalid JSON body")
		return
	}
	if details := validator.Validate(&req); details != nil {
		response.ValidationError(w, details)
		return
	}

	c, err := h.svc.Cancel(r.Context(), userID, id, req.Reason)
	if err != nil {
		h.writeError(w, err)
		return
	}
	response.OK(w, c)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "invalid campaign id")
		return
	}

	c, err := h.svc.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	response.OK(w, c)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := &ListFilter{
		Status:    Status(q.Get("status")),
		CreatorID: q.Get("creator_id"),
	}
	if limit, err := strconv.Atoi(q.Get("limit")); err == nil {
		filter.Limit = limit
	}
	if offset, err := strconv.Atoi(q.Get("offset")); err == nil {
		filter.Offset = offset
	}

	campaigns, err := h.svc.List(r.Context(), filter)
	if err != nil {
		response.InternalError(w)
		return
	}
	response.OK(w, campaigns)
}

func (h *Handler) transition(w http.ResponseWriter, r *http.Request, fn func(userID, id uuid.UUID) (*Campaign, error)) {
	userID := middleware.GetUserID(r.Context())
	if userID == uuid.Nil {
		response.Unauthorized(w, "unauthorized")
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "invalid campaign id")
		return
	}

	c, err := fn(userID, id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	response.OK(w, c)
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		response.NotFound(w, "campaign not found")
	case errors.Is(err, ErrNotOwner):
		response.Forbidden(w, "campaign belongs to another user")
	case errors.Is(err, ErrInvalidStatus):
		response.Conflict(w, "operation not allowed in current campaign status")
	case errors.Is(err, ErrNotApprovable):
		response.Conflict(w, "campaign cannot be approved; see latest compliance run")
	default:
		response.InternalError(w)
	}
}

// Routes returns campaign routes
func (h *Handler) Routes(authMiddleware, moderatorMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.List)
	r.Get("/{id}", h.Get)

	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)
		r.Post("/", h.Create)
		r.Patch("/{id}", h.Update)
		r.Post("/{id}/submit", h.Submit)
		r.Post("/{id}/activate", h.Activate)
		r.Post("/{id}/cancel", h.Cancel)

		r.Group(func(r chi.Router) {
			r.Use(moderatorMiddleware)
			r.Post("/{id}/approve", h.Approve)
			r.Post("/{id}/reject", h.Reject)
		})
	})

	return r
}
