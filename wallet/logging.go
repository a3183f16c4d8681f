package wallet

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"walletgw/credentials"
)

// LoggingWallet records every gateway call without altering its result
// or error semantics. Credential values are never logged, only the
// provider code they belong to.
type LoggingWallet struct {
	next Wallet
	log  *zap.Logger
}

func NewLoggingWallet(next Wallet, log *zap.Logger) *LoggingWallet {
	return &LoggingWallet{next: next, log: log}
}

func (w *LoggingWallet) observe(op, provider, playID, txnID string, amount decimal.Decimal, start time.Time, balance decimal.Decimal, err error) {
	fields := []zap.Field{
		zap.String("op", op),
		zap.String("provider", provider),
		zap.Duration("latency", time.Since(start)),
	}
	if playID != "" {
		fields = append(fields, zap.String("play_id", playID))
	}
	if txnID != "" {
		fields = append(fields, zap.String("txn_id", txnID))
	}
	if !amount.IsZero() {
		fields = append(fields, zap.String("amount", amount.String()))
	}
	if err != nil {
		fields = append(fields, zap.String("kind", KindOf(err).String()), zap.Error(err))
		w.log.Warn("wallet call failed", fields...)
		return
	}
	fields = append(fields, zap.String("balance", balance.String()))
	w.log.Info("wallet call", fields...)
}

func (w *LoggingWallet) Balance(ctx context.Context, creds credentials.Credentials, playID string) (decimal.Decimal, error) {
	start := time.Now()
	balance, err := w.next.Balance(ctx, creds, playID)
	w.observe("balance", creds.Provider, playID, "", decimal.Zero, start, balance, err)
	return balance, err
}

func (w *LoggingWallet) Wager(ctx context.Context, creds credentials.Credentials, playID, currency, txnID string, amount decimal.Decimal, report *Report) (decimal.Decimal, error) {
	start := time.Now()
	balance, err := w.next.Wager(ctx, creds, playID, currency, txnID, amount, report)
	w.observe("wager", creds.Provider, playID, txnID, amount, start, balance, err)
	return balance, err
}

func (w *LoggingWallet) Payout(ctx context.Context, creds credentials.Credentials, playID, currency, txnID string, amount decimal.Decimal, report *Report) (decimal.Decimal, error) {
	start := time.Now()
	balance, err := w.next.Payout(ctx, creds, playID, currency, txnID, amount, report)
	w.observe("payout", creds.Provider, playID, txnID, amount, start, balance, err)
	return balance, err
}

func (w *LoggingWallet) WagerAndPayout(ctx context.Context, creds credentials.Credentials, playID, currency, wagerTxnID string, wagerAmount decimal.Decimal, payoutTxnID string, payoutAmount decimal.Decimal, report *Report) (decimal.Decimal, error) {
	start := time.Now()
	balance, err := w.next.WagerAndPayout(ctx, creds, playID, currency, wagerTxnID, wagerAmount, payoutTxnID, payoutAmount, report)
	w.observe("wagerpayout", creds.Provider, playID, wagerTxnID, wagerAmount, start, balance, err)
	return balance, err
}

func (w *LoggingWallet) Cancel(ctx context.Context, creds credentials.Credentials, txnID string, amount decimal.Decimal, refTxnID string) (decimal.Decimal, error) {
	start := time.Now()
	balance, err := w.next.Cancel(ctx, creds, txnID, amount, refTxnID)
	w.observe("cancel", creds.Provider, "", txnID, amount, start, balance, err)
	return balance, err
}

func (w *LoggingWallet) Resettle(ctx context.Context, creds credentials.Credentials, playID, currency, txnID string, amount decimal.Decimal, betID, settledTxnID string, betTime time.Time) (decimal.Decimal, error) {
	start := time.Now()
	balance, err := w.next.Resettle(ctx, creds, playID, currency, txnID, amount, betID, settledTxnID, betTime)
	w.observe("resettle", creds.Provider, playID, txnID, amount, start, balance, err)
	return balance, err
}

func (w *LoggingWallet) Bonus(ctx context.Context, creds credentials.Credentials, playID, currency, txnID string, amount decimal.Decimal, report *Report) (decimal.Decimal, error) {
	start := time.Now()
	balance, err := w.next.Bonus(ctx, creds, playID, currency, txnID, amount, report)
	w.observe("bonus", creds.Provider, playID, txnID, amount, start, balance, err)
	return balance, err
}

func (w *LoggingWallet) TransferIn(ctx context.Context, creds credentials.Credentials, playID, currency, txnID string, amount decimal.Decimal, betTime time.Time) (decimal.Decimal, error) {
	start := time.Now()
	balance, err := w.next.TransferIn(ctx, creds, playID, currency, txnID, amount, betTime)
	w.observe("transferin", creds.Provider, playID, txnID, amount, start, balance, err)
	return balance, err
}

func (w *LoggingWallet) TransferOut(ctx context.Context, creds credentials.Credentials, playID, currency, txnID string, amount decimal.Decimal, betTime time.Time) (decimal.Decimal, error) {
	start := time.Now()
	balance, err := w.next.TransferOut(ctx, creds, playID, currency, txnID, amount, betTime)
	w.observe("transferout", creds.Provider, playID, txnID, amount, start, balance, err)
	return balance, err
}
