package audit

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Repository defines audit log data access. Entries are append-only;
// there is no update or delete path.
type Repository interface {
	Create(ctx context.Context, entry *Log) error
	List(ctx context.Context, filter *ListFilter) ([]*Log, int, error)
}

// ListFilter filters audit log listings
type ListFilter struct {
	Action     Action `json:"action,omitempty"`
	EntityType string `json:"entity_type,omitempty"`
	EntityID   string `json:"entity_id,omitempty"`
	Limit      int    `json:"limit,omitempty"`
	Offset     int    `json:"offset,omitempty"`
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates audit repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, entry *Log) error {
	query := `
		INSERT INTO audit_logs (id, action, entity_type, entity_id, description, actor_id, entity_owner_id, old_values, new_values, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := r.db.ExecContext(ctx, query,
		entry.ID,
		entry.Action,
		entry.EntityType,
		entry.EntityID,
		entry.Description,
		entry.ActorID,
		entry.EntityOwnerID,
		entry.OldValues,
		entry.NewValues,
		entry.Metadata,
		entry.CreatedAt,
	)
	return err
}

func (r *repository) List(ctx context.Context, filter *ListFilter) ([]*Log, int, error) {
	query := `SELECT * FROM audit_logs WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM audit_logs WHERE 1=1`
	args := []interface{}{}
	argn := 0

	addFilter := func(clause string, value interface{}) {
		argn++
		cond := fmt.Sprintf(" AND %s = $%d", clause, argn)
		query += cond
		countQuery += cond
		args = append(args, value)
	}

	if filter.Action != "" {
		addFilter("action", filter.Action)
	}
	if filter.EntityType != "" {
		addFilter("entity_type", filter.EntityType)
	}
	if filter.EntityID != "" {
		addFilter("entity_id", filter.EntityID)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, err
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT %d OFFSET %d", limit, filter.Offset)

	entries := []*Log{}
	if err := r.db.SelectContext(ctx, &entries, query, args...); err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}
