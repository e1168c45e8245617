package wallet

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

// Repository defines wallet ledger data access. Every money-moving method
// runs the ledger insert and the balance mutation inside a single database
// transaction so the ledger and the balance can never diverge, and debits
// are guarded by a conditional update so the balance can never go negative
// under concurrent requests.
type Repository interface {
	GetBalance(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error)
	// Credit inserts a completed credit transaction and increments the balance.
	Credit(ctx context.Context, txn *Transaction) error
	// Debit inserts txn and decrements the balance if it covers the amount;
	// contribution, when non-nil, is written in the same database transaction.
	Debit(ctx context.Context, txn *Transaction, contribution *Contribution) error
	// RefundContribution flips is_refunded once, inserts the refund
	// transaction and credits the contributor atomically.
	RefundContribution(ctx context.Context, contributionID uuid.UUID, refundTxn *Transaction) error

	GetTransaction(ctx context.Context, id uuid.UUID) (*Transaction, error)
	ListTransactionsByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Transaction, error)
	ListPendingWithdrawals(ctx context.Context, olderThan time.Time) ([]*Transaction, error)
	CompleteTransaction(ctx context.Context, id uuid.UUID) error
	// FailTransaction marks a pending transaction failed, replaces its
	// description and optionally reverses the earlier optimistic debit.
	FailTransaction(ctx context.Context, txn *Transaction, description string, recredit bool) error

	GetContribution(ctx context.Context, id uuid.UUID) (*Contribution, error)
	ListOutstandingByCampaign(ctx context.Context, campaignID uuid.UUID) ([]*Contribution, error)
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates wallet repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetBalance(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error) {
	var balance decimal.Decimal
	err := r.db.GetContext(ctx, &balance, `SELECT wallet_balance FROM users WHERE id = $1`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return decimal.Zero, ErrUserNotFound
	}
	return balance, err
}

func (r *repository) Credit(ctx context.Context, txn *Transaction) error {
	tx, err := r.beginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := insertTransaction(ctx, tx, txn); err != nil {
		return err
	}

	result, err := tx.ExecContext(ctx,
		`UPDATE users SET wallet_balance = wallet_balance + $1, updated_at = now() WHERE id = $2`,
		txn.Amount, txn.UserID)
	if err != nil {
		return err
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return ErrUserNotFound
	}

	return tx.Commit()
}

func (r *repository) Debit(ctx context.Context, txn *Transaction, contribution *Contribution) error {
	tx, err := r.beginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := insertTransaction(ctx, tx, txn); err != nil {
		return err
	}

	if contribution != nil {
		if err := insertContribution(ctx, tx, contribution); err != nil {
			return err
		}
	}

	// Check-and-decrement in one statement: inspecting the affected-row
	// count closes the read-then-write race between concurrent debits.
	result, err := tx.ExecContext(ctx, `
		UPDATE users
		SET wallet_balance = wallet_balance - $1, updated_at = now()
		WHERE id = $2 AND wallet_balance >= $1
	`, txn.Amount, txn.UserID)
	if err != nil {
		return err
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return ErrInsufficientFunds
	}

	return tx.Commit()
}

func (r *repository) RefundContribution(ctx context.Context, contributionID uuid.UUID, refundTxn *Transaction) error {
	tx, err := r.beginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`UPDATE campaign_contributions SET is_refunded = true WHERE id = $1 AND NOT is_refunded`,
		contributionID)
	if err != nil {
		return err
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return ErrAlreadyRefunded
	}

	if err := insertTransaction(ctx, tx, refundTxn); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE users SET wallet_balance = wallet_balance + $1, updated_at = now() WHERE id = $2`,
		refundTxn.Amount, refundTxn.UserID); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *repository) GetTransaction(ctx context.Context, id uuid.UUID) (*Transaction, error) {
	var txn Transaction
	err := r.db.GetContext(ctx, &txn, `SELECT * FROM wallet_transactions WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTransactionNotFound
		}
		return nil, err
	}
	return &txn, nil
}

func (r *repository) ListTransactionsByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Transaction, error) {
	query := `
		SELECT * FROM wallet_transactions
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	transactions := []*Transaction{}
	err := r.db.SelectContext(ctx, &transactions, query, userID, limit, offset)
	return transactions, err
}

func (r *repository) ListPendingWithdrawals(ctx context.Context, olderThan time.Time) ([]*Transaction, error) {
	query := `
		SELECT * FROM wallet_transactions
		WHERE type = $1 AND status = $2 AND created_at < $3
		ORDER BY created_at ASC
	`
	transactions := []*Transaction{}
	err := r.db.SelectContext(ctx, &transactions, query, TypeBankWithdrawal, StatusPending, olderThan)
	return transactions, err
}

func (r *repository) CompleteTransaction(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE wallet_transactions SET status = $1 WHERE id = $2 AND status = $3`,
		StatusCompleted, id, StatusPending)
	if err != nil {
		return err
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return ErrNotPending
	}
	return nil
}

func (r *repository) FailTransaction(ctx context.Context, txn *Transaction, description string, recredit bool) error {
	tx, err := r.beginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`UPDATE wallet_transactions SET status = $1, description = $2 WHERE id = $3 AND status = $4`,
		StatusFailed, description, txn.ID, StatusPending)
	if err != nil {
		return err
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return ErrNotPending
	}

	if recredit {
		if _, err := tx.ExecContext(ctx,
			`UPDATE users SET wallet_balance = wallet_balance + $1, updated_at = now() WHERE id = $2`,
			txn.Amount, txn.UserID); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *repository) GetContribution(ctx context.Context, id uuid.UUID) (*Contribution, error) {
	var c Contribution
	err := r.db.GetContext(ctx, &c, `SELECT * FROM campaign_contributions WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrContributionNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *repository) ListOutstandingByCampaign(ctx context.Context, campaignID uuid.UUID) ([]*Contribution, error) {
	query := `
		SELECT * FROM campaign_contributions
		WHERE campaign_id = $1 AND NOT is_refunded
		ORDER BY created_at ASC
	`
	contributions := []*Contribution{}
	err := r.db.SelectContext(ctx, &contributions, query, campaignID)
	return contributions, err
}

func (r *repository) beginTx(ctx context.Context) (*sqlx.Tx, error) {
	return r.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
}

func insertTransaction(ctx context.Context, tx *sqlx.Tx, txn *Transaction) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO wallet_transactions (id, user_id, type, amount, status, campaign_id, description, external_reference, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`,
		txn.ID,
		txn.UserID,
		txn.Type,
		txn.Amount,
		txn.Status,
		txn.CampaignID,
		txn.Description,
		txn.ExternalReference,
		txn.CreatedAt,
	)
	return err
}

func insertContribution(ctx context.Context, tx *sqlx.Tx, c *Contribution) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO campaign_contributions (id, campaign_id, contributor_id, amount, wallet_tx_id, message, is_refunded, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`,
		c.ID,
		c.CampaignID,
		c.ContributorID,
		c.Amount,
		c.WalletTxID,
		c.Message,
		c.IsRefunded,
		c.CreatedAt,
	)
	return err
}
