package campaign

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/fundflow/fundflow-api/internal/domain/audit"
)

// ApprovalGate reports whether a campaign may be approved based on its
// latest compliance run.
type ApprovalGate interface {
	CanCampaignBeApproved(ctx context.Context, campaignID uuid.UUID) (bool, string, error)
}

// Refunder refunds all outstanding contributions of a campaign.
type Refunder interface {
	RefundAllContributions(ctx context.Context, campaignID uuid.UUID, reason string) (int, error)
}

// Notifier delivers best-effort user notifications.
type Notifier interface {
	Success(ctx context.Context, userID uuid.UUID, title, message, actionURL string)
	Info(ctx context.Context, userID uuid.UUID, title, message, actionURL string)
	Error(ctx context.Context, userID uuid.UUID, title, message, actionURL string)
}

// AuditLogger records state-changing actions after they commit.
type AuditLogger interface {
	LogSuccess(ctx context.Context, action audit.Action, entityType string, entityID uuid.UUID, description string, opts audit.Options)
}

// Service handles campaign lifecycle
type Service struct {
	repo     Repository
	gate     ApprovalGate
	refunder Refunder
	notifier Notifier
	auditLog AuditLogger
}

// NewService creates campaign service
func NewService(repo Repository, gate ApprovalGate, refunder Refunder, notifier Notifier, auditLog AuditLogger) *Service {
	return &Service{
		repo:     repo,
		gate:     gate,
		refunder: refunder,
		notifier: notifier,
		auditLog: auditLog,
	}
}

// Create creates a draft campaign
func (s *Service) Create(ctx context.Context, creatorID uuid.UUID, req *CreateRequest) (*Campaign, error) {
	goal, err := decimal.NewFromString(req.Goal)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	c := &Campaign{
		ID:            uuid.New(),
		CreatorID:     creatorID,
		Name:          req.Name,
		Description:   req.Description,
		Category:      req.Category,
		Goal:          goal,
		Status:        StatusDraft,
		CurrentAmount: decimal.Zero,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if req.ImageData != "" {
		c.ImageData = sql.NullString{String: req.ImageData, Valid: true}
	}
	if req.EndDate != nil {
		c.EndDate = sql.NullTime{Time: *req.EndDate, Valid: true}
	}

	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}

	s.auditLog.LogSuccess(ctx, audit.ActionCampaignCreated, audit.EntityCampaign, c.ID,
		"campaign created as draft", audit.Options{ActorID: &creatorID, EntityOwnerID: &creatorID})
	return c, nil
}

// Update edits a draft campaign; only the owner may edit and only while in draft
func (s *Service) Update(ctx context.Context, userID, id uuid.UUID, req *UpdateRequest) (*Campaign, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.CreatorID != userID {
		return nil, ErrNotOwner
	}
	if c.Status != StatusDraft {
		return nil, ErrInvalidStatus
	}

	if req.Name != nil {
		c.Name = *req.Name
	}
	if req.Description != nil {
		c.Description = *req.Description
	}
	if req.Category != nil {
		c.Category = *req.Category
	}
	if req.Goal != nil {
		goal, err := decimal.NewFromString(*req.Goal)
		if err != nil {
			return nil, err
		}
		c.Goal = goal
	}
	if req.ImageData != nil {
		c.ImageData = sql.NullString{String: *req.ImageData, Valid: *req.ImageData != ""}
	}
	if req.EndDate != nil {
		c.EndDate = sql.NullTime{Time: *req.EndDate, Valid: true}
	}

	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Submit moves a draft campaign into moderation
func (s *Service) Submit(ctx context.Context, userID, id uuid.UUID) (*Campaign, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.CreatorID != userID {
		return nil, ErrNotOwner
	}
	if c.Status != StatusDraft {
		return nil, ErrInvalidStatus
	}

	if err := s.repo.UpdateStatus(ctx, id, StatusSubmitted); err != nil {
		return nil, err
	}
	c.Status = StatusSubmitted

	s.auditLog.LogSuccess(ctx, audit.ActionCampaignSubmitted, audit.EntityCampaign, id,
		"campaign submitted for review", audit.Options{ActorID: &userID, EntityOwnerID: &c.CreatorID})
	s.notifier.Info(ctx, c.CreatorID, "Campaign submitted",
		"Your campaign \""+c.Name+"\" is now awaiting review.", "/campaigns/"+id.String())
	return c, nil
}

// Approve approves a submitted campaign; gated by the latest compliance run
func (s *Service) Approve(ctx context.Context, moderatorID, id uuid.UUID) (*Campaign, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.Status != StatusSubmitted {
		return nil, ErrInvalidStatus
	}

	approvable, reason, err := s.gate.CanCampaignBeApproved(ctx, id)
	if err != nil {
		return nil, err
	}
	if !approvable {
		log.Warn().Str("campaign_id", id.String()).Str("reason", reason).Msg("approval blocked")
		return nil, ErrNotApprovable
	}

	if err := s.repo.UpdateStatus(ctx, id, StatusApproved); err != nil {
		return nil, err
	}
	c.Status = StatusApproved

	s.auditLog.LogSuccess(ctx, audit.ActionCampaignApproved, audit.EntityCampaign, id,
		"campaign approved: "+reason, audit.Options{ActorID: &moderatorID, EntityOwnerID: &c.CreatorID})
	s.notifier.Success(ctx, c.CreatorID, "Campaign approved",
		"Your campaign \""+c.Name+"\" has been approved.", "/campaigns/"+id.String())
	return c, nil
}

// Reject rejects a submitted campaign with a reason
func (s *Service) Reject(ctx context.Context, moderatorID, id uuid.UUID, reason string) (*Campaign, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.Status != StatusSubmitted {
		return nil, ErrInvalidStatus
	}

	if err := s.repo.UpdateStatus(ctx, id, StatusRejected); err != nil {
		return nil, err
	}
	c.Status = StatusRejected

	s.auditLog.LogSuccess(ctx, audit.ActionCampaignRejected, audit.EntityCampaign, id,
		"campaign rejected: "+reason, audit.Options{ActorID: &moderatorID, EntityOwnerID: &c.CreatorID})
	s.notifier.Error(ctx, c.CreatorID, "Campaign rejected",
		"Your campaign \""+c.Name+"\" was rejected: "+reason, "/campaigns/"+id.String())
	return c, nil
}

// Activate opens an approved campaign for contributions
func (s *Service) Activate(ctx context.Context, userID, id uuid.UUID) (*Campaign, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.CreatorID != userID {
		return nil, ErrNotOwner
	}
	if c.Status != StatusApproved {
		return nil, ErrInvalidStatus
	}

	if err := s.repo.UpdateStatus(ctx, id, StatusActive); err != nil {
		return nil, err
	}
	c.Status = StatusActive

	s.auditLog.LogSuccess(ctx, audit.ActionCampaignActivated, audit.EntityCampaign, id,
		"campaign activated", audit.Options{ActorID: &userID, EntityOwnerID: &c.CreatorID})
	return c, nil
}

// Cancel cancels an active or approved campaign and refunds all contributions.
// Refunds are best-effort: a failure mid-batch leaves earlier refunds in place.
func (s *Service) Cancel(ctx context.Context, userID, id uuid.UUID, reason string) (*Campaign, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.CreatorID != userID {
		return nil, ErrNotOwner
	}
	if c.Status != StatusActive && c.Status != StatusApproved {
		return nil, ErrInvalidStatus
	}

	if err := s.repo.UpdateStatus(ctx, id, StatusCancelled); err != nil {
		return nil, err
	}
	c.Status = StatusCancelled

	refunded, err := s.refunder.RefundAllContributions(ctx, id, reason)
	if err != nil {
		log.Error().Err(err).
			Str("campaign_id", id.String()).
			Int("refunded", refunded).
			Msg("refund batch stopped mid-way")
	}

	s.auditLog.LogSuccess(ctx, audit.ActionCampaignCancelled, audit.EntityCampaign, id,
		"campaign cancelled: "+reason, audit.Options{ActorID: &userID, EntityOwnerID: &c.CreatorID})
	return c, nil
}

// Get returns a campaign by id
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Campaign, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns campaigns matching the filter
func (s *Service) List(ctx context.Context, filter *ListFilter) ([]*Campaign, error) {
	return s.repo.List(ctx, filter)
}
