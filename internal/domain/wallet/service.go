package wallet

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/fundflow/fundflow-api/internal/domain/audit"
)

// CampaignLedger mirrors contributions onto the campaign's running total.
type CampaignLedger interface {
	AddContribution(ctx context.Context, campaignID uuid.UUID, amount decimal.Decimal) error
}

// Notifier delivers best-effort user notifications. Delivery failure must
// never surface as the failure of the wallet operation that triggered it.
type Notifier interface {
	Success(ctx context.Context, userID uuid.UUID, title, message, actionURL string)
	Info(ctx context.Context, userID uuid.UUID, title, message, actionURL string)
	Error(ctx context.Context, userID uuid.UUID, title, message, actionURL string)
}

// AuditLogger records state-changing actions after they commit.
type AuditLogger interface {
	LogSuccess(ctx context.Context, action audit.Action, entityType string, entityID uuid.UUID, description string, opts audit.Options)
}

// Service owns every money-moving operation and the invariant that a
// wallet balance equals the sum of its completed signed transactions.
type Service struct {
	repo      Repository
	campaigns CampaignLedger
	notifier  Notifier
	auditLog  AuditLogger
	redis     *redis.Client // optional; deposit idempotency keys
}

// NewService creates wallet service
func NewService(repo Repository, campaigns CampaignLedger, notifier Notifier, auditLog AuditLogger, redisClient *redis.Client) *Service {
	return &Service{
		repo:      repo,
		campaigns: campaigns,
		notifier:  notifier,
		auditLog:  auditLog,
		redis:     redisClient,
	}
}

// GetBalance returns the user's current wallet balance
func (s *Service) GetBalance(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error) {
	return s.repo.GetBalance(ctx, userID)
}

// ListTransactions returns the user's ledger history, newest first
func (s *Service) ListTransactions(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Transaction, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.repo.ListTransactionsByUser(ctx, userID, limit, offset)
}

// Deposit credits the wallet with a completed deposit transaction.
// When redis is configured and an external reference is supplied, the
// reference is claimed first so a retried payment webhook cannot credit twice.
func (s *Service) Deposit(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, externalRef string) (*Transaction, error) {
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	if err := s.claimReference(ctx, userID, externalRef); err != nil {
		return nil, err
	}

	txn := &Transaction{
		ID:        uuid.New(),
		UserID:    userID,
		Type:      TypeDeposit,
		Amount:    amount,
		Status:    StatusCompleted,
		CreatedAt: time.Now(),
	}
	if externalRef != "" {
		txn.ExternalReference = sql.NullString{String: externalRef, Valid: true}
	}

	if err := s.repo.Credit(ctx, txn); err != nil {
		return nil, err
	}

	s.auditLog.LogSuccess(ctx, audit.ActionWalletDeposit, audit.EntityTransaction, txn.ID,
		"deposit of "+amount.StringFixed(2), audit.Options{ActorID: &userID, EntityOwnerID: &userID})
	s.notifier.Success(ctx, userID, "Deposit received",
		"Your wallet was credited with $"+amount.StringFixed(2)+".", "/wallet")

	log.Info().Str("user_id", userID.String()).Str("amount", amount.String()).Msg("wallet deposit applied")
	return txn, nil
}

// ContributeToCampaign debits the wallet and records a linked contribution.
// The ledger row, the contribution row and the balance decrement commit
// atomically; the guard fails with ErrInsufficientFunds before any write lands.
func (s *Service) ContributeToCampaign(ctx context.Context, contributorID uuid.UUID, req *ContributeRequest) (*Contribution, error) {
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil || !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	campaignID, err := uuid.Parse(req.CampaignID)
	if err != nil {
		return nil, ErrInvalidAmount
	}

	now := time.Now()
	txn := &Transaction{
		ID:         uuid.New(),
		UserID:     contributorID,
		Type:       TypeCampaignContribution,
		Amount:     amount,
		Status:     StatusCompleted,
		CampaignID: uuid.NullUUID{UUID: campaignID, Valid: true},
		CreatedAt:  now,
	}
	contribution := &Contribution{
		ID:            uuid.New(),
		CampaignID:    campaignID,
		ContributorID: contributorID,
		Amount:        amount,
		WalletTxID:    txn.ID,
		IsRefunded:    false,
		CreatedAt:     now,
	}
	if req.Message != "" {
		contribution.Message = sql.NullString{String: req.Message, Valid: true}
	}

	if err := s.repo.Debit(ctx, txn, contribution); err != nil {
		return nil, err
	}

	if err := s.campaigns.AddContribution(ctx, campaignID, amount); err != nil {
		log.Error().Err(err).
			Str("campaign_id", campaignID.String()).
			Msg("failed to bump campaign running total")
	}

	s.auditLog.LogSuccess(ctx, audit.ActionWalletContribution, audit.EntityContribution, contribution.ID,
		"contribution of "+amount.StringFixed(2), audit.Options{
			ActorID:       &contributorID,
			EntityOwnerID: &contributorID,
			Metadata:      map[string]interface{}{"campaign_id": campaignID.String()},
		})
	s.notifier.Success(ctx, contributorID, "Contribution confirmed",
		"You contributed $"+amount.StringFixed(2)+" to a campaign. Thank you!",
		"/campaigns/"+campaignID.String())

	log.Info().
		Str("user_id", contributorID.String()).
		Str("campaign_id", campaignID.String()).
		Str("amount", amount.String()).
		Msg("campaign contribution applied")
	return contribution, nil
}

// WithdrawToBank earmarks funds with a pending bank withdrawal. The balance
// is debited immediately; the pending entry is settled or reversed later by
// CompleteTransaction / FailTransaction.
func (s *Service) WithdrawToBank(ctx context.Context, userID uuid.UUID, req *WithdrawRequest) (*Transaction, error) {
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil || !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	description := "Withdrawal to bank account " + maskAccount(req.BankAccount)
	if req.Description != "" {
		description += ": " + req.Description
	}

	txn := &Transaction{
		ID:          uuid.New(),
		UserID:      userID,
		Type:        TypeBankWithdrawal,
		Amount:      amount,
		Status:      StatusPending,
		Description: sql.NullString{String: description, Valid: true},
		CreatedAt:   time.Now(),
	}

	if err := s.repo.Debit(ctx, txn, nil); err != nil {
		return nil, err
	}

	s.auditLog.LogSuccess(ctx, audit.ActionWalletWithdrawal, audit.EntityTransaction, txn.ID,
		"bank withdrawal of "+amount.StringFixed(2)+" requested",
		audit.Options{ActorID: &userID, EntityOwnerID: &userID})
	s.notifier.Info(ctx, userID, "Withdrawal requested",
		"Your withdrawal of $"+amount.StringFixed(2)+" is being processed. This can take up to 3 business days.",
		"/wallet")

	log.Info().Str("user_id", userID.String()).Str("amount", amount.String()).Msg("bank withdrawal requested")
	return txn, nil
}

// RefundContribution reverses a single contribution. The is_refunded flag
// flips exactly once; a second call fails with ErrAlreadyRefunded and the
// balance is credited exactly once.
func (s *Service) RefundContribution(ctx context.Context, contributionID uuid.UUID, reason string) (*Transaction, error) {
	contribution, err := s.repo.GetContribution(ctx, contributionID)
	if err != nil {
		return nil, err
	}
	if contribution.IsRefunded {
		return nil, ErrAlreadyRefunded
	}

	refundTxn := &Transaction{
		ID:          uuid.New(),
		UserID:      contribution.ContributorID,
		Type:        TypeRefund,
		Amount:      contribution.Amount,
		Status:      StatusCompleted,
		CampaignID:  uuid.NullUUID{UUID: contribution.CampaignID, Valid: true},
		Description: sql.NullString{String: "Refund: " + reason, Valid: true},
		CreatedAt:   time.Now(),
	}

	if err := s.repo.RefundContribution(ctx, contributionID, refundTxn); err != nil {
		return nil, err
	}

	if err := s.campaigns.AddContribution(ctx, contribution.CampaignID, contribution.Amount.Neg()); err != nil {
		log.Error().Err(err).
			Str("campaign_id", contribution.CampaignID.String()).
			Msg("failed to reverse campaign running total")
	}

	s.auditLog.LogSuccess(ctx, audit.ActionWalletRefund, audit.EntityContribution, contributionID,
		"refund of "+contribution.Amount.StringFixed(2)+": "+reason,
		audit.Options{EntityOwnerID: &contribution.ContributorID})
	s.notifier.Success(ctx, contribution.ContributorID, "Contribution refunded",
		"Your contribution of $"+contribution.Amount.StringFixed(2)+" was refunded: "+reason,
		"/wallet")

	log.Info().
		Str("contribution_id", contributionID.String()).
		Str("amount", contribution.Amount.String()).
		Msg("contribution refunded")
	return refundTxn, nil
}

// RefundAllContributions refunds every outstanding contribution of a
// campaign sequentially. Each refund is individually atomic; an error
// mid-loop stops processing and returns how many refunds landed.
func (s *Service) RefundAllContributions(ctx context.Context, campaignID uuid.UUID, reason string) (int, error) {
	contributions, err := s.repo.ListOutstandingByCampaign(ctx, campaignID)
	if err != nil {
		return 0, err
	}

	refunded := 0
	for _, c := range contributions {
		if _, err := s.RefundContribution(ctx, c.ID, reason); err != nil {
			return refunded, fmt.Errorf("refund contribution %s: %w", c.ID, err)
		}
		refunded++
	}
	return refunded, nil
}

// CompleteTransaction settles a pending transaction
func (s *Service) CompleteTransaction(ctx context.Context, id uuid.UUID) error {
	txn, err := s.repo.GetTransaction(ctx, id)
	if err != nil {
		return err
	}
	if txn.Status != StatusPending {
		return ErrNotPending
	}

	if err := s.repo.CompleteTransaction(ctx, id); err != nil {
		return err
	}

	s.auditLog.LogSuccess(ctx, audit.ActionTransactionCompleted, audit.EntityTransaction, id,
		string(txn.Type)+" completed", audit.Options{EntityOwnerID: &txn.UserID})
	if txn.Type == TypeBankWithdrawal {
		s.notifier.Success(ctx, txn.UserID, "Withdrawal completed",
			"Your withdrawal of $"+txn.Amount.StringFixed(2)+" has been sent to your bank.", "/wallet")
	}
	return nil
}

// FailTransaction marks a pending transaction failed with a reason.
// Failing a pending bank withdrawal re-credits the earmarked funds
// before the status flips.
func (s *Service) FailTransaction(ctx context.Context, id uuid.UUID, reason string) error {
	txn, err := s.repo.GetTransaction(ctx, id)
	if err != nil {
		return err
	}
	if txn.Status != StatusPending {
		return ErrNotPending
	}

	description := reason
	if txn.Description.Valid && txn.Description.String != "" {
		description = txn.Description.String + " | failed: " + reason
	}

	recredit := txn.Type == TypeBankWithdrawal
	if err := s.repo.FailTransaction(ctx, txn, description, recredit); err != nil {
		return err
	}

	s.auditLog.LogSuccess(ctx, audit.ActionTransactionFailed, audit.EntityTransaction, id,
		string(txn.Type)+" failed: "+reason, audit.Options{EntityOwnerID: &txn.UserID})
	s.notifier.Error(ctx, txn.UserID, "Transaction failed",
		"Your "+string(txn.Type)+" of $"+txn.Amount.StringFixed(2)+" failed: "+reason, "/wallet")
	return nil
}

// ListPendingWithdrawals returns pending bank withdrawals older than the cutoff
func (s *Service) ListPendingWithdrawals(ctx context.Context, olderThan time.Time) ([]*Transaction, error) {
	return s.repo.ListPendingWithdrawals(ctx, olderThan)
}

// claimReference reserves a deposit's external reference so a retried
// webhook cannot credit the wallet twice. Without redis this is a no-op.
func (s *Service) claimReference(ctx context.Context, userID uuid.UUID, externalRef string) error {
	if s.redis == nil || externalRef == "" {
		return nil
	}

	key := "wallet:deposit:" + userID.String() + ":" + externalRef
	ok, err := s.redis.SetNX(ctx, key, 1, 24*time.Hour).Result()
	if err != nil {
		// Redis being down should not block deposits; the reference column
		// still carries the audit trail.
		log.Warn().Err(err).Msg("deposit idempotency check unavailable")
		return nil
	}
	if !ok {
		return ErrDuplicateReference
	}
	return nil
}

func maskAccount(account string) string {
	if len(account) <= 4 {
		return "****"
	}
	return "****" + account[len(account)-4:]
}
