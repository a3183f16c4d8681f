package wallet

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"walletgw/credentials"
)

// stubWallet returns canned results so the decorator's pass-through
// behavior can be checked in isolation.
type stubWallet struct {
	balance decimal.Decimal
	err     error
	calls   int
}

func (s *stubWallet) result() (decimal.Decimal, error) {
	s.calls++
	return s.balance, s.err
}

func (s *stubWallet) Balance(context.Context, credentials.Credentials, string) (decimal.Decimal, error) {
	return s.result()
}

func (s *stubWallet) Wager(context.Context, credentials.Credentials, string, string, string, decimal.Decimal, *Report) (decimal.Decimal, error) {
	return s.result()
}

func (s *stubWallet) Payout(context.Context, credentials.Credentials, string, string, string, decimal.Decimal, *Report) (decimal.Decimal, error) {
	return s.result()
}

func (s *stubWallet) WagerAndPayout(context.Context, credentials.Credentials, string, string, string, decimal.Decimal, string, decimal.Decimal, *Report) (decimal.Decimal, error) {
	return s.result()
}

func (s *stubWallet) Cancel(context.Context, credentials.Credentials, string, decimal.Decimal, string) (decimal.Decimal, error) {
	return s.result()
}

func (s *stubWallet) Resettle(context.Context, credentials.Credentials, string, string, string, decimal.Decimal, string, string, time.Time) (decimal.Decimal, error) {
	return s.result()
}

func (s *stubWallet) Bonus(context.Context, credentials.Credentials, string, string, string, decimal.Decimal, *Report) (decimal.Decimal, error) {
	return s.result()
}

func (s *stubWallet) TransferIn(context.Context, credentials.Credentials, string, string, string, decimal.Decimal, time.Time) (decimal.Decimal, error) {
	return s.result()
}

func (s *stubWallet) TransferOut(context.Context, credentials.Credentials, string, string, string, decimal.Decimal, time.Time) (decimal.Decimal, error) {
	return s.result()
}

func TestLoggingWalletPassesResultsThrough(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	stub := &stubWallet{balance: decimal.RequireFromString("490.00")}
	lw := NewLoggingWallet(stub, zap.New(core))
	creds := credentials.Credentials{Provider: "sbo"}

	balance, err := lw.Wager(context.Background(), creds, "player-1", "USD",
		"wagerpayout-R123", decimal.RequireFromString("10.00"), nil)
	require.NoError(t, err)
	assert.Equal(t, "490.00", balance.StringFixed(2))
	assert.Equal(t, 1, stub.calls)

	entries := logs.FilterMessage("wallet call").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "wager", fields["op"])
	assert.Equal(t, "sbo", fields["provider"])
	assert.Equal(t, "wagerpayout-R123", fields["txn_id"])
	assert.Equal(t, "490", fields["balance"])
}

func TestLoggingWalletPassesErrorsThrough(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	stub := &stubWallet{err: E(KindInsufficientFunds, "Insufficient Funds")}
	lw := NewLoggingWallet(stub, zap.New(core))
	creds := credentials.Credentials{Provider: "sbo"}

	_, err := lw.Payout(context.Background(), creds, "player-1", "USD",
		"payout-R123", decimal.RequireFromString("5.00"), nil)
	assert.Equal(t, KindInsufficientFunds, KindOf(err))

	entries := logs.FilterMessage("wallet call failed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	assert.Equal(t, KindInsufficientFunds.String(), entries[0].ContextMap()["kind"])
}

func TestLoggingWalletNeverLogsSecrets(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	stub := &stubWallet{balance: decimal.NewFromInt(100)}
	lw := NewLoggingWallet(stub, zap.New(core))
	creds := credentials.Credentials{Provider: "gslot", AuthToken: "topsecret-token", Secret: "topsecret-hmac"}

	_, err := lw.Balance(context.Background(), creds, "player-1")
	require.NoError(t, err)

	for _, entry := range logs.All() {
		for _, field := range entry.Context {
			assert.NotContains(t, field.String, "topsecret")
		}
	}
}
