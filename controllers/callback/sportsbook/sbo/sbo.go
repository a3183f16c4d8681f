// Package sbo handles the SBO sportsbook seamless-wallet callbacks:
// Deduct (wager), Settle (payout), Cancel, Rollback (resettle), Bonus
// and GetBalance. Every money-moving callback runs the same path:
// map to a canonical transaction, guard against replays, call the
// ledger, render the SBO wire shape.
package sbo

import (
	"context"

	"github.com/shopspring/decimal"

	"walletgw/credentials"
	"walletgw/guard"
	"walletgw/models"
	"walletgw/repository"
	"walletgw/wallet"
)

const Provider = "sbo"

var (
	errInvalidBody     = wallet.E(wallet.KindInvalidProviderRequest, "invalid request format")
	errMissingUsername = wallet.E(wallet.KindInvalidProviderRequest, "Username is required")
)

type Handler struct {
	Env    string
	Creds  *credentials.Resolver
	Repo   *repository.Repository
	Guard  *guard.Guard
	Wallet wallet.Wallet
}

func NewHandler(env string, creds *credentials.Resolver, repo *repository.Repository, g *guard.Guard, w wallet.Wallet) *Handler {
	return &Handler{Env: env, Creds: creds, Repo: repo, Guard: g, Wallet: w}
}

func (h *Handler) resolve(player *models.Player) (credentials.Credentials, error) {
	return h.Creds.Resolve(Provider, h.Env, player.Currency)
}

// finish records the transaction's outcome. A deterministic decline
// voids the row. A transport failure means the ledger was never
// reached, so the row is deleted and the idempotency key is free for
// the provider's resend. An ambiguous failure parks the row as unknown:
// the key stays taken, and the row is excluded from the settlement
// sweep until reconciled.
func (h *Handler) finish(ctx context.Context, txn *models.Transaction, status string, callErr error) {
	if callErr == nil {
		if status != "" && status != txn.Status {
			_ = h.Repo.UpdateTransactionStatus(ctx, txn.TxnID, status)
		}
		return
	}
	switch kind := wallet.KindOf(callErr); {
	case kind == wallet.KindTransportError:
		_ = h.Repo.DeleteTransaction(ctx, txn.TxnID)
	case kind.Deterministic():
		_ = h.Repo.UpdateTransactionStatus(ctx, txn.TxnID, models.StatusVoided)
	default:
		_ = h.Repo.UpdateTransactionStatus(ctx, txn.TxnID, models.StatusUnknown)
	}
}

// currentBalance is best-effort: duplicate responses echo the player's
// balance, in the provider's units, so the provider can reconcile
// without another round trip.
func (h *Handler) currentBalance(ctx context.Context, creds credentials.Credentials, playID string) decimal.Decimal {
	balance, err := h.Wallet.Balance(ctx, creds, playID)
	if err != nil {
		return decimal.Zero
	}
	return creds.FromLedger(balance)
}
