package sbo

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"walletgw/credentials"
	"walletgw/helpers"
	"walletgw/mappers"
	"walletgw/models"
	"walletgw/wallet"
)

type rollbackRequest struct {
	CompanyKey    string  `json:"CompanyKey"`
	Username      string  `json:"Username"`
	TransferCode  string  `json:"TransferCode"`
	TransactionId string  `json:"TransactionId"`
	WinLoss       float64 `json:"WinLoss"`
}

// Rollback resettles a bet whose result changed after settlement. The
// original payout must exist and be settled; the resettlement is a new
// derived transaction under its own id, never an update in place.
func (h *Handler) Rollback(c *fiber.Ctx) error {
	var req rollbackRequest
	if err := c.BodyParser(&req); err != nil {
		return helpers.SboError(c, credentials.Credentials{}, errInvalidBody)
	}

	req.Username = strings.TrimSpace(req.Username)
	req.TransferCode = strings.TrimSpace(req.TransferCode)
	req.TransactionId = strings.TrimSpace(req.TransactionId)
	if req.Username == "" || req.TransferCode == "" || req.TransactionId == "" || req.WinLoss < 0 {
		return helpers.SboError(c, credentials.Credentials{}, wallet.E(wallet.KindInvalidProviderRequest,
			"Username, TransferCode, TransactionId, and WinLoss are required"))
	}

	ctx := c.UserContext()
	player, err := h.Repo.GetPlayerByPlayID(ctx, req.Username)
	if err != nil {
		return helpers.SboError(c, credentials.Credentials{}, err)
	}

	creds, err := h.resolve(player)
	if err != nil {
		return helpers.SboError(c, credentials.Credentials{}, err)
	}

	settled, err := h.Repo.GetTransactionByTxnID(ctx, mappers.TxnID(mappers.OpPayout, req.TransferCode))
	if err != nil {
		return helpers.SboError(c, creds, err)
	}
	if settled.Status != models.StatusSettled {
		return helpers.SboError(c, creds, wallet.E(wallet.KindTransactionNotFound,
			"no settled payout for "+req.TransferCode))
	}

	txn, err := mappers.MapResettle(mappers.Request{
		Provider:      Provider,
		PlayID:        player.PlayID,
		Username:      req.Username,
		WalletUserID:  player.WalletUserID,
		Currency:      player.Currency,
		GameID:        settled.GameID,
		ExternalID:    req.TransactionId,
		RefExternalID: req.TransferCode,
		WinAmount:     decimal.NewFromFloat(req.WinLoss).String(),
	})
	if err != nil {
		return helpers.SboError(c, creds, err)
	}

	if err := h.Guard.Check(ctx, txn); err != nil {
		if wallet.KindOf(err) == wallet.KindTransactionAlreadyExists {
			return helpers.SboDuplicate(c, req.Username, h.currentBalance(ctx, creds, player.PlayID))
		}
		return helpers.SboError(c, creds, err)
	}

	amount := creds.ToLedger(txn.WinAmount)
	balance, err := h.Wallet.Resettle(ctx, creds, player.PlayID, player.Currency, txn.TxnID, amount,
		req.TransferCode, settled.TxnID, settled.EventAt)
	h.finish(ctx, txn, models.StatusSettled, err)
	if err != nil {
		return helpers.SboError(c, creds, err)
	}

	return helpers.SboSuccess(c, req.Username, creds.FromLedger(balance))
}
