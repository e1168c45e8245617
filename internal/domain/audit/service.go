package audit

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Service appends audit trail entries. Writes happen after the primary
// mutation commits; a failed audit write is logged but never fails the caller.
type Service struct {
	repo Repository
}

// NewService creates audit service
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// LogSuccess records a completed state-changing action
func (s *Service) LogSuccess(ctx context.Context, action Action, entityType string, entityID uuid.UUID, description string, opts Options) {
	entry := &Log{
		ID:          uuid.New(),
		Action:      action,
		EntityType:  entityType,
		EntityID:    entityID,
		Description: description,
		CreatedAt:   time.Now(),
	}

	if opts.ActorID != nil {
		entry.ActorID = uuid.NullUUID{UUID: *opts.ActorID, Valid: true}
	}
	if opts.EntityOwnerID != nil {
		entry.EntityOwnerID = uuid.NullUUID{UUID: *opts.EntityOwnerID, Valid: true}
	}
	if opts.OldValues != nil {
		entry.OldValues, _ = json.Marshal(opts.OldValues)
	}
	if opts.NewValues != nil {
		entry.NewValues, _ = json.Marshal(opts.NewValues)
	}
	if len(opts.Metadata) > 0 {
		entry.Metadata, _ = json.Marshal(opts.Metadata)
	}

	if err := s.repo.Create(ctx, entry); err != nil {
		log.Error().Err(err).
			Str("action", string(action)).
			Str("entity_id", entityID.String()).
			Msg("failed to write audit log entry")
	}
}

// List returns audit entries matching the filter
func (s *Service) List(ctx context.Context, filter *ListFilter) ([]*Log, int, error) {
	return s.repo.List(ctx, filter)
}
