package campaign

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

// Repository defines campaign data access
type Repository interface {
	Create(ctx context.Context, c *Campaign) error
	GetByID(ctx context.Context, id uuid.UUID) (*Campaign, error)
	Update(ctx context.Context, c *Campaign) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error
	List(ctx context.Context, filter *ListFilter) ([]*Campaign, error)
	// AddContribution atomically bumps current_amount by the given amount.
	// Negative amounts reverse earlier contributions (refunds).
	AddContribution(ctx context.Context, id uuid.UUID, amount decimal.Decimal) error
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates campaign repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, c *Campaign) error {
	query := `
		INSERT INTO campaigns (id, creator_id, name, description, category, goal, image_data, end_date, status, current_amount, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := r.db.ExecContext(ctx, query,
		c.ID,
		c.CreatorID,
		c.Name,
		c.Description,
		c.Category,
		c.Goal,
		c.ImageData,
		c.EndDate,
		c.Status,
		c.CurrentAmount,
		c.CreatedAt,
		c.UpdatedAt,
	)
	return err
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Campaign, error) {
	var c Campaign
	err := r.db.GetContext(ctx, &c, `SELECT * FROM campaigns WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *repository) Update(ctx context.Context, c *Campaign) error {
	query := `
		UPDATE campaigns
		SET name = $1, description = $2, category = $3, goal = $4, image_data = $5, end_date = $6, updated_at = now()
		WHERE id = $7
	`
	result, err := r.db.ExecContext(ctx, query,
		c.Name,
		c.Description,
		c.Category,
		c.Goal,
		c.ImageData,
		c.EndDate,
		c.ID,
	)
	if err != nil {
		return err
	}
	affected, _ := result.RowsAffected()
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE campaigns SET status = $1, updated_at = now() WHERE id = $2`, status, id)
	if err != nil {
		return err
	}
	affected, _ := result.RowsAffected()
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) List(ctx context.Context, filter *ListFilter) ([]*Campaign, error) {
	query := `SELECT * FROM campaigns WHERE 1=1`
	args := []interface{}{}
	argn := 0

	if filter.Status != "" {
		argn++
		query += fmt.Sprintf(" AND status = $%d", argn)
		args = append(args, filter.Status)
	}
	if filter.CreatorID != "" {
		argn++
		query += fmt.Sprintf(" AND creator_id = $%d", argn)
		args = append(args, filter.CreatorID)
	}

	query += " ORDER BY created_at DESC"

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	argn++
	query += fmt.Sprintf(" LIMIT $%d", argn)
	args = append(args, limit)

	if filter.Offset > 0 {
		argn++
		query += fmt.Sprintf(" OFFSET $%d", argn)
		args = append(args, filter.Offset)
	}

	campaigns := []*Campaign{}
	err := r.db.SelectContext(ctx, &campaigns, query, args...)
	return campaigns, err
}

func (r *repository) AddContribution(ctx context.Context, id uuid.UUID, amount decimal.Decimal) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE campaigns SET current_amount = current_amount + $1, updated_at = now() WHERE id = $2`, amount, id)
	if err != nil {
		return err
	}
	affected, _ := result.RowsAffected()
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
