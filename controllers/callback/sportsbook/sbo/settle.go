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

type settleRequest struct {
	CompanyKey   string  `json:"CompanyKey"`
	Username     string  `json:"Username"`
	TransferCode string  `json:"TransferCode"`
	WinLoss      float64 `json:"WinLoss"`
	ResultTime   string  `json:"ResultTime"`
}

// Settle pays out a previously wagered bet. The payout gets its own
// idempotency namespace so a round can be wagered and settled under the
// same TransferCode without colliding.
func (h *Handler) Settle(c *fiber.Ctx) error {
	var req settleRequest
	if err := c.BodyParser(&req); err != nil {
		return helpers.SboError(c, credentials.Credentials{}, errInvalidBody)
	}

	req.Username = strings.TrimSpace(req.Username)
	req.TransferCode = strings.TrimSpace(req.TransferCode)
	if req.Username == "" || req.TransferCode == "" || req.WinLoss < 0 {
		return helpers.SboError(c, credentials.Credentials{}, wallet.E(wallet.KindInvalidProviderRequest,
			"Username, TransferCode, and WinLoss are required"))
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

	// The wager must exist before it can settle.
	wagered, err := h.Repo.GetTransactionByTxnID(ctx, mappers.TxnID(mappers.OpWagerPayout, req.TransferCode))
	if err != nil {
		return helpers.SboError(c, creds, err)
	}
	if wagered.Status == models.StatusSettled {
		return helpers.SboError(c, creds, wallet.E(wallet.KindTransactionAlreadySettled, req.TransferCode))
	}

	txn, err := mappers.MapPayout(mappers.Request{
		Provider:     Provider,
		PlayID:       player.PlayID,
		Username:     req.Username,
		WalletUserID: player.WalletUserID,
		Currency:     player.Currency,
		GameID:       wagered.GameID,
		ExternalID:   req.TransferCode,
		WinAmount:    decimal.NewFromFloat(req.WinLoss).String(),
		Timestamp:    req.ResultTime,
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
	balance, err := h.Wallet.Payout(ctx, creds, player.PlayID, player.Currency, txn.TxnID, amount, mappers.ReportOf(txn))
	h.finish(ctx, txn, models.StatusSettled, err)
	if err != nil {
		return helpers.SboError(c, creds, err)
	}

	_ = h.Repo.UpdateTransactionStatus(ctx, wagered.TxnID, models.StatusSettled)
	return helpers.SboSuccess(c, req.Username, creds.FromLedger(balance))
}
