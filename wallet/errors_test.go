package wallet

import (
	"errors"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"walletgw/credentials"
)

func TestErrorsMatchByKind(t *testing.T) {
	err := fmt.Errorf("handler: %w", E(KindInsufficientFunds, "Insufficient Funds"))

	assert.True(t, errors.Is(err, E(KindInsufficientFunds, "")))
	assert.False(t, errors.Is(err, E(KindPlayerNotFound, "")))
	assert.Equal(t, KindInsufficientFunds, KindOf(err))
}

func TestOnlyTransportFailuresAreRetryable(t *testing.T) {
	for kind := KindUnknown; kind <= KindCredentialsNotConfigured; kind++ {
		assert.Equal(t, kind == KindTransportError, kind.Retryable(), kind.String())
	}
}

func TestDeterministicExcludesUncertainOutcomes(t *testing.T) {
	assert.False(t, KindTransportError.Deterministic())
	assert.False(t, KindAmbiguousResult.Deterministic())
	assert.False(t, KindUnknown.Deterministic())

	assert.True(t, KindInsufficientFunds.Deterministic())
	assert.True(t, KindTransactionAlreadyExists.Deterministic())
	assert.True(t, KindCredentialsNotConfigured.Deterministic())
}

func TestNormalize(t *testing.T) {
	typed := E(KindTransactionNotFound, "no such txn")
	assert.Same(t, typed, Normalize(fmt.Errorf("wrapped: %w", typed)))

	missing := fmt.Errorf("%w: provider %q in %s", credentials.ErrNotConfigured, "sbo", "staging")
	assert.Equal(t, KindCredentialsNotConfigured, Normalize(missing).Kind)

	assert.Equal(t, KindTransportError, Normalize(errors.New("connection reset")).Kind)
	assert.Nil(t, Normalize(nil))
}

func TestWithBalancePreservesLedgerSnapshot(t *testing.T) {
	err := E(KindInsufficientFunds, "Insufficient Funds").WithBalance(decimal.RequireFromString("5.00"))

	var we *Error
	require.ErrorAs(t, fmt.Errorf("deduct: %w", err), &we)
	assert.True(t, we.HasBalance)
	assert.Equal(t, "5.00", we.Balance.StringFixed(2))
}
