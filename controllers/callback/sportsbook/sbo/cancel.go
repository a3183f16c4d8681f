package sbo

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"walletgw/credentials"
	"walletgw/helpers"
	"walletgw/mappers"
	"walletgw/models"
	"walletgw/wallet"
)

type cancelRequest struct {
	CompanyKey   string `json:"CompanyKey"`
	Username     string `json:"Username"`
	TransferCode string `json:"TransferCode"`
}

// Cancel voids a running wager and returns the staked amount. A bet
// that already settled cannot be cancelled; the provider must use
// Rollback instead. No ledger write happens for that case.
func (h *Handler) Cancel(c *fiber.Ctx) error {
	var req cancelRequest
	if err := c.BodyParser(&req); err != nil {
		return helpers.SboError(c, credentials.Credentials{}, errInvalidBody)
	}

	req.Username = strings.TrimSpace(req.Username)
	req.TransferCode = strings.TrimSpace(req.TransferCode)
	if req.Username == "" || req.TransferCode == "" {
		return helpers.SboError(c, credentials.Credentials{}, wallet.E(wallet.KindInvalidProviderRequest,
			"Username and TransferCode are required"))
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

	wagered, err := h.Repo.GetTransactionByTxnID(ctx, mappers.TxnID(mappers.OpWagerPayout, req.TransferCode))
	if err != nil {
		return helpers.SboError(c, creds, err)
	}
	if wagered.Status == models.StatusSettled {
		return helpers.SboError(c, creds, wallet.E(wallet.KindTransactionAlreadySettled, req.TransferCode))
	}
	if wagered.Status == models.StatusVoided {
		return helpers.SboDuplicate(c, req.Username, h.currentBalance(ctx, creds, player.PlayID))
	}

	txn, err := mappers.MapCancel(mappers.Request{
		Provider:      Provider,
		PlayID:        player.PlayID,
		Username:      req.Username,
		WalletUserID:  player.WalletUserID,
		Currency:      player.Currency,
		GameID:        wagered.GameID,
		ExternalID:    req.TransferCode,
		RefExternalID: req.TransferCode,
		Amount:        wagered.BetAmount.String(),
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

	amount := creds.ToLedger(txn.BetAmount)
	balance, err := h.Wallet.Cancel(ctx, creds, txn.TxnID, amount, wagered.TxnID)
	h.finish(ctx, txn, models.StatusSettled, err)
	if err != nil {
		return helpers.SboError(c, creds, err)
	}

	_ = h.Repo.UpdateTransactionStatus(ctx, wagered.TxnID, models.StatusVoided)
	return helpers.SboSuccess(c, req.Username, creds.FromLedger(balance))
}
