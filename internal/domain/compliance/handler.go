package compliance

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/fundflow/fundflow-api/internal/middleware"
	"github.com/fundflow/fundflow-api/internal/pkg/response"
	"github.com/fundflow/fundflow-api/internal/pkg/validator"
)

// Handler handles compliance HTTP requests
type Handler struct {
	svc *Service
}

// NewHandler creates compliance handler
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RunChecks(w http.ResponseWriter, r *http.Request) {
	campaignID, err := uuid.Parse(chi.URLParam(r, "campaignID"))
	if err != nil {
		response.BadRequest(w, "invalid campaign id")
		return
	}

	runBy := middleware.GetUserID(r.Context())
	run, err := h.svc.RunChecks(r.Context(), campaignID, &runBy)
	if err != nil {
		h.writeError(w, err)
		return
	}
	response.Created(w, run)
}

func (h *Handler) LatestRun(w http.ResponseWriter, r *http.Request) {
	campaignID, err := uuid.Parse(chi.URLParam(r, "campaignID"))
	if err != nil {
		response.BadRequest(w, "invalid campaign id")
		return
	}

	run, err := h.svc.GetLatestRun(r.Context(), campaignID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	response.OK(w, run)
}

func (h *Handler) RunHistory(w http.ResponseWriter, r *http.Request) {
	campaignID, err := uuid.Parse(chi.URLParam(r, "campaignID"))
	if err != nil {
		response.BadRequest(w, "invalid campaign id")
		return
	}

	runs, err := h.svc.GetRunHistory(r.Context(), campaignID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	response.OK(w, runs)
}

func (h *Handler) ApprovalStatus(w http.ResponseWriter, r *http.Request) {
	campaignID, err := uuid.Parse(chi.URLParam(r, "campaignID"))
	if err != nil {
		response.BadRequest(w, "invalid campaign id")
		return
	}

	canApprove, reason, err := h.svc.CanCampaignBeApproved(r.Context(), campaignID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	response.OK(w, &ApprovalStatusResponse{
		CampaignID: campaignID.String(),
		CanApprove: canApprove,
		Reason:     reason,
	})
}

func (h *Handler) GetRun(w http.ResponseWriter, r *http.Request) {
	runID, err := uuid.Parse(chi.URLParam(r, "runID"))
	if err != nil {
		response.BadRequest(w, "invalid run id")
		return
	}

	run, err := h.svc.GetRun(r.Context(), runID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	response.OK(w, run)
}

func (h *Handler) Override(w http.ResponseWriter, r *http.Request) {
	runID, err := uuid.Parse(chi.URLParam(r, "runID"))
	if err != nil {
		response.BadRequest(w, "invalid run id")
		return
	}

	var req OverrideRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "invalid JSON body")
		return
	}
	if details := validator.Validate(&req); details != nil {
		response.ValidationError(w, details)
		return
	}

	adminID := middleware.GetUserID(r.Context())
	run, err := h.svc.OverrideBlockers(r.Context(), runID, req.Reason, adminID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	response.OK(w, run)
}

func (h *Handler) AddNote(w http.ResponseWriter, r *http.Request) {
	resultID, err := uuid.Parse(chi.URLParam(r, "resultID"))
	if err != nil {
		response.BadRequest(w, "invalid result id")
		return
	}

	var req NoteRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "invalid JSON body")
		return
	}
	if details := validator.Validate(&req); details != nil {
		response.ValidationError(w, details)
		return
	}

	moderatorID := middleware.GetUserID(r.Context())
	res, err := h.svc.AddModeratorNote(r.Context(), resultID, req.Note, moderatorID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	response.OK(w, res)
}

// ListRules returns the rule catalogue so moderators can see what each
// check enforces before reading a run.
func (h *Handler) ListRules(w http.ResponseWriter, _ *http.Request) {
	rules := RuleSet()
	infos := make([]*RuleInfo, 0, len(rules))
	for _, rule := range rules {
		infos = append(infos, &RuleInfo{
			ID:          rule.ID,
			Name:        rule.Name,
			Description: rule.Description,
			Category:    rule.Category,
			Severity:    rule.Severity,
		})
	}
	response.OK(w, infos)
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrCampaignNotFound),
		errors.Is(err, ErrRunNotFound),
		errors.Is(err, ErrResultNotFound),
		errors.Is(err, ErrNoRuns):
		response.NotFound(w, err.Error())
	case errors.Is(err, ErrInvalidCampaignState),
		errors.Is(err, ErrNothingToOverride):
		response.Conflict(w, err.Error())
	case errors.Is(err, ErrReasonTooShort):
		response.ErrorWithDetails(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "Validation failed",
			map[string]string{"reason": err.Error()})
	default:
		response.InternalError(w)
	}
}

// Routes mounts compliance endpoints. Everything here is staff-facing:
// moderators run checks and read results, admins override blockers.
func (h *Handler) Routes(authMiddleware, moderatorMiddleware, adminMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)
		r.Use(moderatorMiddleware)

		r.Get("/rules", h.ListRules)
		r.Post("/campaigns/{campaignID}/run", h.RunChecks)
		r.Get("/campaigns/{campaignID}/latest", h.LatestRun)
		r.Get("/campaigns/{campaignID}/history", h.RunHistory)
		r.Get("/campaigns/{campaignID}/approval", h.ApprovalStatus)
		r.Get("/runs/{runID}", h.GetRun)
		r.Post("/results/{resultID}/note", h.AddNote)

		r.Group(func(r chi.Router) {
			r.Use(adminMiddleware)
			r.Post("/runs/{runID}/override", h.Override)
		})
	})

	return r
}
