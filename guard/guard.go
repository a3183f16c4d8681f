// Package guard implements duplicate-transaction protection. Providers
// replay callbacks aggressively; the guard makes sure each idempotency
// key reaches the ledger at most once.
package guard

import (
	"context"

	"walletgw/models"
	"walletgw/repository"
	"walletgw/wallet"
)

type Guard struct {
	repo *repository.Repository
}

func New(repo *repository.Repository) *Guard {
	return &Guard{repo: repo}
}

// EnsureNotDuplicate fails fast when the transaction store already holds
// a row for this idempotency key. No ledger call may happen after this
// returns a duplicate error.
func (g *Guard) EnsureNotDuplicate(ctx context.Context, txn *models.Transaction) error {
	_, err := g.repo.GetTransactionByTxnID(ctx, txn.TxnID)
	if err == nil {
		return wallet.E(wallet.KindTransactionAlreadyExists, txn.TxnID)
	}
	if wallet.KindOf(err) == wallet.KindTransactionNotFound {
		return nil
	}
	return err
}

// Record inserts the transaction row immediately before the wallet call.
// A concurrent request that won the insert race surfaces here as the
// store's uniqueness violation, which is the same duplicate signal.
func (g *Guard) Record(ctx context.Context, txn *models.Transaction) error {
	return g.repo.CreateTransaction(ctx, txn)
}

// Check combines the lookup and the insert: callers get either a
// recorded transaction ready for the wallet call or a deterministic
// duplicate failure.
func (g *Guard) Check(ctx context.Context, txn *models.Transaction) error {
	if err := g.EnsureNotDuplicate(ctx, txn); err != nil {
		return err
	}
	return g.Record(ctx, txn)
}
