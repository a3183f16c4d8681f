package user

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"walletgw/helpers"
	"walletgw/mappers"
	"walletgw/models"
	"walletgw/wallet"
)

type transferRequest struct {
	PlayID    string  `json:"play_id"`
	Direction string  `json:"direction"`
	Amount    float64 `json:"amount"`
	RefID     string  `json:"ref_id"`
}

// Transfer moves agent funds into or out of a player's ledger balance.
// The caller may supply ref_id to make retries idempotent; without one
// every call is a new transfer.
func (h *Handler) Transfer(c *fiber.Ctx) error {
	var req transferRequest
	if err := c.BodyParser(&req); err != nil {
		return helpers.JSONError(c, "INVALID_JSON")
	}

	req.Direction = strings.ToLower(strings.TrimSpace(req.Direction))
	if req.PlayID == "" || req.Amount <= 0 || (req.Direction != "in" && req.Direction != "out") {
		return helpers.JSONError(c, "PLAY_ID_DIRECTION_AND_AMOUNT_REQUIRED")
	}
	if req.RefID == "" {
		req.RefID = uuid.New().String()
	}

	ctx := c.UserContext()
	player, err := h.Repo.GetPlayerByPlayID(ctx, req.PlayID)
	if err != nil {
		return helpers.JSONError(c, "PLAYER_NOT_FOUND")
	}

	creds, err := h.resolve(player)
	if err != nil {
		return helpers.JSONError(c, "PROVIDER_NOT_CONFIGURED")
	}

	mreq := mappers.Request{
		Provider:     player.Provider,
		PlayID:       player.PlayID,
		Username:     player.Username,
		WalletUserID: player.WalletUserID,
		Currency:     player.Currency,
		ExternalID:   req.RefID,
		Amount:       decimal.NewFromFloat(req.Amount).String(),
	}

	var txn *models.Transaction
	if req.Direction == "in" {
		txn, err = mappers.MapTransferIn(mreq)
	} else {
		txn, err = mappers.MapTransferOut(mreq)
	}
	if err != nil {
		return helpers.JSONError(c, "INVALID_TRANSFER")
	}

	if err := h.Guard.Check(ctx, txn); err != nil {
		if wallet.KindOf(err) == wallet.KindTransactionAlreadyExists {
			return helpers.JSONError(c, "DUPLICATE_TRANSFER")
		}
		return helpers.JSONError(c, "FAILED_TO_RECORD_TRANSFER")
	}

	amount := creds.ToLedger(decimal.NewFromFloat(req.Amount))
	var balance decimal.Decimal
	if req.Direction == "in" {
		balance, err = h.Wallet.TransferIn(ctx, creds, player.PlayID, player.Currency, txn.TxnID, amount, time.Now())
	} else {
		balance, err = h.Wallet.TransferOut(ctx, creds, player.PlayID, player.Currency, txn.TxnID, amount, time.Now())
	}
	if err != nil {
		switch kind := wallet.KindOf(err); {
		case kind == wallet.KindTransportError:
			// Never reached the ledger; free the ref_id for a retry.
			_ = h.Repo.DeleteTransaction(ctx, txn.TxnID)
		case kind.Deterministic():
			_ = h.Repo.UpdateTransactionStatus(ctx, txn.TxnID, models.StatusVoided)
		default:
			_ = h.Repo.UpdateTransactionStatus(ctx, txn.TxnID, models.StatusUnknown)
		}
		if wallet.KindOf(err) == wallet.KindInsufficientFunds {
			return helpers.JSONError(c, "INSUFFICIENT_FUNDS")
		}
		return helpers.JSONError(c, "WALLET_UNAVAILABLE")
	}
	_ = h.Repo.UpdateTransactionStatus(ctx, txn.TxnID, models.StatusSettled)

	return helpers.JSONSuccess(c, "TRANSFER_COMPLETED", fiber.Map{
		"play_id": player.PlayID,
		"ref_id":  req.RefID,
		"balance": creds.FromLedger(balance).InexactFloat64(),
	})
}
