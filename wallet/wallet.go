// Package wallet talks to the central ledger service. The ledger is the
// balance system of record; everything here is a pure request, local
// state is never mutated on its behalf.
package wallet

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"walletgw/credentials"
)

// Report carries bet metadata attached to a ledger write for audit and
// reconciliation. It never influences the balance math.
type Report struct {
	Provider  string          `json:"provider,omitempty"`
	GameID    string          `json:"game_id,omitempty"`
	RoundID   string          `json:"round_id,omitempty"`
	BetAmount decimal.Decimal `json:"bet_amount,omitempty"`
	WinAmount decimal.Decimal `json:"win_amount,omitempty"`
	ValidBet  decimal.Decimal `json:"valid_bet,omitempty"`
	BetTime   time.Time       `json:"bet_time,omitempty"`
	Detail    map[string]any  `json:"detail,omitempty"`
}

// Wallet is the canonical operation set against the ledger. One method
// per money-moving intent, each a single RPC returning the new balance.
type Wallet interface {
	Balance(ctx context.Context, creds credentials.Credentials, playID string) (decimal.Decimal, error)

	Wager(ctx context.Context, creds credentials.Credentials, playID, currency, txnID string, amount decimal.Decimal, report *Report) (decimal.Decimal, error)

	Payout(ctx context.Context, creds credentials.Credentials, playID, currency, txnID string, amount decimal.Decimal, report *Report) (decimal.Decimal, error)

	WagerAndPayout(ctx context.Context, creds credentials.Credentials, playID, currency, wagerTxnID string, wagerAmount decimal.Decimal, payoutTxnID string, payoutAmount decimal.Decimal, report *Report) (decimal.Decimal, error)

	Cancel(ctx context.Context, creds credentials.Credentials, txnID string, amount decimal.Decimal, refTxnID string) (decimal.Decimal, error)

	Resettle(ctx context.Context, creds credentials.Credentials, playID, currency, txnID string, amount decimal.Decimal, betID, settledTxnID string, betTime time.Time) (decimal.Decimal, error)

	Bonus(ctx context.Context, creds credentials.Credentials, playID, currency, txnID string, amount decimal.Decimal, report *Report) (decimal.Decimal, error)

	TransferIn(ctx context.Context, creds credentials.Credentials, playID, currency, txnID string, amount decimal.Decimal, betTime time.Time) (decimal.Decimal, error)

	TransferOut(ctx context.Context, creds credentials.Credentials, playID, currency, txnID string, amount decimal.Decimal, betTime time.Time) (decimal.Decimal, error)
}
