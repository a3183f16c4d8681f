package wallet

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"walletgw/credentials"
)

// Kind is the closed taxonomy of failures the gateway surfaces. Provider
// response formatters render kinds into their own wire shapes; nothing
// outside this package invents new kinds.
type Kind int

const (
	KindUnknown Kind = iota
	KindInvalidProviderRequest
	KindTransactionAlreadyExists
	KindTransactionNotFound
	KindPlayerNotFound
	KindInsufficientFunds
	KindTransactionAlreadySettled
	KindTransportError
	KindAmbiguousResult
	KindCredentialsNotConfigured
)

func (k Kind) String() string {
	switch k {
	case KindInvalidProviderRequest:
		return "invalid_provider_request"
	case KindTransactionAlreadyExists:
		return "transaction_already_exists"
	case KindTransactionNotFound:
		return "transaction_not_found"
	case KindPlayerNotFound:
		return "player_not_found"
	case KindInsufficientFunds:
		return "insufficient_funds"
	case KindTransactionAlreadySettled:
		return "transaction_already_settled"
	case KindTransportError:
		return "wallet_transport_error"
	case KindAmbiguousResult:
		return "ambiguous_wallet_result"
	case KindCredentialsNotConfigured:
		return "credentials_not_configured"
	}
	return "unknown"
}

// Retryable reports whether a failure of this kind may be retried without
// risking a double-applied write. Only transport failures before the
// ledger acknowledged receipt qualify.
func (k Kind) Retryable() bool {
	return k == KindTransportError
}

// Deterministic reports whether the ledger (or the core's own checks)
// conclusively decided the outcome. Deterministic failures leave no
// doubt about ledger state; transport and ambiguous failures do.
func (k Kind) Deterministic() bool {
	switch k {
	case KindTransportError, KindAmbiguousResult, KindUnknown:
		return false
	}
	return true
}

type Error struct {
	Kind       Kind
	Msg        string
	Balance    decimal.Decimal
	HasBalance bool
	cause      error
}

func (e *Error) Error() string {
	if e.Msg != "" {
		return fmt.Sprintf("wallet: %s: %s", e.Kind, e.Msg)
	}
	return fmt.Sprintf("wallet: %s", e.Kind)
}

func (e *Error) Unwrap() error { return e.cause }

// Is matches two wallet errors by kind, so callers can use
// errors.Is(err, wallet.E(wallet.KindInsufficientFunds, "")).
func (e *Error) Is(target error) bool {
	var we *Error
	if errors.As(target, &we) {
		return we.Kind == e.Kind
	}
	return false
}

func E(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

func Wrap(kind Kind, msg string, cause error) *Error {
	return &Error{Kind: kind, Msg: msg, cause: cause}
}

// WithBalance attaches the balance-at-failure reported by the ledger.
func (e *Error) WithBalance(b decimal.Decimal) *Error {
	e.Balance = b
	e.HasBalance = true
	return e
}

// KindOf extracts the canonical kind from any error. Errors that did not
// originate in this package report KindUnknown.
func KindOf(err error) Kind {
	var we *Error
	if errors.As(err, &we) {
		return we.Kind
	}
	return KindUnknown
}

// Normalize maps an arbitrary failure onto the canonical taxonomy. Typed
// wallet errors pass through untouched; anything else is treated as a
// transport-level failure so callers never see raw transport errors.
func Normalize(err error) *Error {
	if err == nil {
		return nil
	}
	var we *Error
	if errors.As(err, &we) {
		return we
	}
	if errors.Is(err, credentials.ErrNotConfigured) {
		return Wrap(KindCredentialsNotConfigured, err.Error(), err)
	}
	return Wrap(KindTransportError, err.Error(), err)
}
