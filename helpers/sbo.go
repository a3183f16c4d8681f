package helpers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"walletgw/credentials"
	"walletgw/wallet"
)

// SBO wire error codes. The provider distinguishes a duplicate (5003)
// from a pending/unknown outcome (6001): duplicates must never be
// retried by the provider, pending ones are safe to resend later.
const (
	sboOK             = 0
	sboPlayerNotFound = 1
	sboInvalidRequest = 3
	sboBadCompanyKey  = 4
	sboInsufficient   = 5
	sboTxnNotFound    = 6
	sboInternal       = 7
	sboAlreadySettled = 2002
	sboDuplicate      = 5003
	sboPendingOutcome = 6001
)

func SboSuccess(c *fiber.Ctx, accountName string, balance decimal.Decimal) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"ErrorCode":   sboOK,
		"AccountName": accountName,
		"Balance":     balance.InexactFloat64(),
	})
}

func SboBadKey(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"ErrorCode":    sboBadCompanyKey,
		"ErrorMessage": "CompanyKey Error",
		"Balance":      0,
	})
}

// SboError renders a canonical failure in SBO's wire shape. The balance
// is the balance-at-failure when the ledger reported one, converted into
// the provider's units, zero otherwise. Callers that fail before
// credential resolution pass the zero Credentials.
func SboError(c *fiber.Ctx, creds credentials.Credentials, err error) error {
	we := wallet.Normalize(err)

	code := sboInternal
	switch we.Kind {
	case wallet.KindPlayerNotFound:
		code = sboPlayerNotFound
	case wallet.KindInvalidProviderRequest:
		code = sboInvalidRequest
	case wallet.KindInsufficientFunds:
		code = sboInsufficient
	case wallet.KindTransactionNotFound:
		code = sboTxnNotFound
	case wallet.KindTransactionAlreadySettled:
		code = sboAlreadySettled
	case wallet.KindTransactionAlreadyExists:
		code = sboDuplicate
	case wallet.KindAmbiguousResult, wallet.KindTransportError:
		code = sboPendingOutcome
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"ErrorCode":    code,
		"ErrorMessage": we.Msg,
		"Balance":      creds.FromLedger(we.Balance).InexactFloat64(),
	})
}

// SboDuplicate renders the duplicate response with the player's current
// balance so the provider can reconcile without a second call.
func SboDuplicate(c *fiber.Ctx, accountName string, balance decimal.Decimal) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"ErrorCode":    sboDuplicate,
		"ErrorMessage": "Duplicate Transaction",
		"AccountName":  accountName,
		"Balance":      balance.InexactFloat64(),
	})
}
