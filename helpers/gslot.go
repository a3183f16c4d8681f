package helpers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"walletgw/credentials"
	"walletgw/wallet"
)

// Gslot responses are status/message pairs with the user balance echoed
// back on every reply, including failures. Balances render in the
// provider's units; callers convert success balances, GslotError
// converts the balance-at-failure itself.
func GslotSuccess(c *fiber.Ctx, balance decimal.Decimal) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status":       1,
		"user_balance": balance.InexactFloat64(),
	})
}

func GslotError(c *fiber.Ctx, creds credentials.Credentials, err error) error {
	we := wallet.Normalize(err)

	msg := "INTERNAL_ERROR"
	switch we.Kind {
	case wallet.KindPlayerNotFound:
		msg = "USER_NOT_FOUND"
	case wallet.KindInvalidProviderRequest:
		msg = "INVALID_REQUEST"
	case wallet.KindInsufficientFunds:
		msg = "INSUFFICIENT_USER_FUNDS"
	case wallet.KindTransactionAlreadyExists:
		msg = "DUPLICATE_TXN"
	case wallet.KindTransactionNotFound:
		msg = "TXN_NOT_FOUND"
	case wallet.KindTransactionAlreadySettled:
		msg = "TXN_ALREADY_SETTLED"
	case wallet.KindAmbiguousResult, wallet.KindTransportError:
		msg = "TRY_AGAIN_LATER"
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status":       0,
		"user_balance": creds.FromLedger(we.Balance).InexactFloat64(),
		"msg":          msg,
	})
}
