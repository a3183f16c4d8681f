// Package repository is the durable-storage collaborator. The gateway
// depends only on the transaction existence-check and insert being
// atomic per unique key; the unique indexes on models.Transaction are
// the correctness boundary, not in-process locking.
package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"walletgw/models"
	"walletgw/wallet"
)

const tokenTTL = 30 * time.Minute

type Repository struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) GetPlayerByPlayID(ctx context.Context, playID string) (*models.Player, error) {
	var player models.Player
	err := r.db.WithContext(ctx).
		Where("play_id = ? AND is_active = true", playID).
		First(&player).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, wallet.E(wallet.KindPlayerNotFound, fmt.Sprintf("play id %q", playID))
		}
		return nil, err
	}
	return &player, nil
}

func (r *Repository) CreatePlayer(ctx context.Context, player *models.Player) error {
	if err := r.db.WithContext(ctx).Create(player).Error; err != nil {
		if isDuplicateKey(err) {
			return wallet.E(wallet.KindInvalidProviderRequest, fmt.Sprintf("player %q already registered", player.PlayID))
		}
		return err
	}
	return nil
}

func (r *Repository) GetTransactionByTxnID(ctx context.Context, txnID string) (*models.Transaction, error) {
	var txn models.Transaction
	err := r.db.WithContext(ctx).Where("txn_id = ?", txnID).First(&txn).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, wallet.E(wallet.KindTransactionNotFound, fmt.Sprintf("txn %q", txnID))
		}
		return nil, err
	}
	return &txn, nil
}

func (r *Repository) GetTransactionByExternalID(ctx context.Context, provider, operation, externalID string) (*models.Transaction, error) {
	var txn models.Transaction
	err := r.db.WithContext(ctx).
		Where("provider = ? AND operation = ? AND external_id = ?", provider, operation, externalID).
		First(&txn).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, wallet.E(wallet.KindTransactionNotFound,
				fmt.Sprintf("%s %s %q", provider, operation, externalID))
		}
		return nil, err
	}
	return &txn, nil
}

// CreateTransaction inserts a new transaction row. A unique-constraint
// violation is the duplicate-transaction condition, not an ordinary
// write failure: two concurrent requests with the same idempotency key
// race to this insert and exactly one wins.
func (r *Repository) CreateTransaction(ctx context.Context, txn *models.Transaction) error {
	if err := r.db.WithContext(ctx).Create(txn).Error; err != nil {
		if isDuplicateKey(err) {
			return wallet.E(wallet.KindTransactionAlreadyExists, fmt.Sprintf("txn %q", txn.TxnID))
		}
		return err
	}
	return nil
}

// DeleteTransaction removes a recorded transaction whose ledger write is
// known to have never happened. The delete is unscoped: a soft-deleted
// row would still occupy the unique index and block the provider's
// resend of the same idempotency key.
func (r *Repository) DeleteTransaction(ctx context.Context, txnID string) error {
	return r.db.WithContext(ctx).Unscoped().
		Where("txn_id = ?", txnID).
		Delete(&models.Transaction{}).Error
}

func (r *Repository) UpdateTransactionStatus(ctx context.Context, txnID, status string) error {
	return r.db.WithContext(ctx).
		Model(&models.Transaction{}).
		Where("txn_id = ?", txnID).
		Update("status", status).Error
}

func (r *Repository) ListPendingByProvider(ctx context.Context, provider string, limit int) ([]models.Transaction, error) {
	var txns []models.Transaction
	err := r.db.WithContext(ctx).
		Where("provider = ? AND status = ?", provider, models.StatusPending).
		Order("id").
		Limit(limit).
		Find(&txns).Error
	return txns, err
}

// CreateOrUpdateToken issues a fresh launch token for a player, replacing
// any previous one.
func (r *Repository) CreateOrUpdateToken(ctx context.Context, playID, provider string) (*models.Token, error) {
	token := models.Token{
		PlayID:    playID,
		Provider:  provider,
		ExpiresAt: time.Now().Add(tokenTTL),
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("play_id = ?", playID).Delete(&models.Token{}).Error; err != nil {
			return err
		}
		return tx.Create(&token).Error
	})
	if err != nil {
		return nil, err
	}
	return &token, nil
}

func (r *Repository) GetTokenBySID(ctx context.Context, sid string) (*models.Token, error) {
	var token models.Token
	err := r.db.WithContext(ctx).
		Where("sid = ? AND expires_at > ?", strings.ToLower(sid), time.Now()).
		First(&token).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, wallet.E(wallet.KindPlayerNotFound, "invalid or expired token")
		}
		return nil, err
	}
	return &token, nil
}

func (r *Repository) DeleteToken(ctx context.Context, sid string) error {
	return r.db.WithContext(ctx).
		Where("sid = ?", strings.ToLower(sid)).
		Delete(&models.Token{}).Error
}

func (r *Repository) DeleteExpiredTokens(ctx context.Context) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("expires_at <= ?", time.Now()).
		Delete(&models.Token{})
	return res.RowsAffected, res.Error
}

func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	// sqlite (tests) without error translation.
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
