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

type bonusRequest struct {
	CompanyKey    string  `json:"CompanyKey"`
	Username      string  `json:"Username"`
	Amount        float64 `json:"Amount"`
	TransactionId string  `json:"TransactionId"`
	BonusTime     string  `json:"BonusTime"`
}

func (h *Handler) Bonus(c *fiber.Ctx) error {
	var req bonusRequest
	if err := c.BodyParser(&req); err != nil {
		return helpers.SboError(c, credentials.Credentials{}, errInvalidBody)
	}

	req.Username = strings.TrimSpace(req.Username)
	req.TransactionId = strings.TrimSpace(req.TransactionId)
	if req.Username == "" || req.TransactionId == "" || req.Amount <= 0 {
		return helpers.SboError(c, credentials.Credentials{}, wallet.E(wallet.KindInvalidProviderRequest,
			"Username, TransactionId, and Amount are required"))
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

	txn, err := mappers.MapBonus(mappers.Request{
		Provider:     Provider,
		PlayID:       player.PlayID,
		Username:     req.Username,
		WalletUserID: player.WalletUserID,
		Currency:     player.Currency,
		ExternalID:   req.TransactionId,
		Amount:       decimal.NewFromFloat(req.Amount).String(),
		Timestamp:    req.BonusTime,
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
	balance, err := h.Wallet.Bonus(ctx, creds, player.PlayID, player.Currency, txn.TxnID, amount, mappers.ReportOf(txn))
	h.finish(ctx, txn, models.StatusSettled, err)
	if err != nil {
		return helpers.SboError(c, creds, err)
	}

	return helpers.SboSuccess(c, req.Username, creds.FromLedger(balance))
}
