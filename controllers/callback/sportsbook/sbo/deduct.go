package sbo

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"walletgw/credentials"
	"walletgw/helpers"
	"walletgw/mappers"
	"walletgw/wallet"
)

type deductRequest struct {
	CompanyKey   string  `json:"CompanyKey"`
	Username     string  `json:"Username"`
	Amount       float64 `json:"Amount"`
	TransferCode string  `json:"TransferCode"`
	BetTime      string  `json:"BetTime"`
	GameId       int     `json:"GameId"`
	GameTypeName *string `json:"GameTypeName"`
}

// Deduct places the wager for a bet slip. TransferCode is unique per
// bet on the provider side and becomes the external id.
func (h *Handler) Deduct(c *fiber.Ctx) error {
	var req deductRequest
	if err := c.BodyParser(&req); err != nil {
		return helpers.SboError(c, credentials.Credentials{}, errInvalidBody)
	}

	req.Username = strings.TrimSpace(req.Username)
	req.TransferCode = strings.TrimSpace(req.TransferCode)
	if req.Username == "" || req.TransferCode == "" || req.Amount <= 0 {
		return helpers.SboError(c, credentials.Credentials{}, wallet.E(wallet.KindInvalidProviderRequest,
			"Username, TransferCode, and Amount are required"))
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

	txn, err := mappers.MapWager(mappers.Request{
		Provider:     Provider,
		PlayID:       player.PlayID,
		Username:     req.Username,
		WalletUserID: player.WalletUserID,
		Currency:     player.Currency,
		GameID:       gameID(req.GameId, req.GameTypeName),
		ExternalID:   req.TransferCode,
		BetAmount:    decimal.NewFromFloat(req.Amount).String(),
		Timestamp:    req.BetTime,
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
	balance, err := h.Wallet.Wager(ctx, creds, player.PlayID, player.Currency, txn.TxnID, amount, mappers.ReportOf(txn))
	h.finish(ctx, txn, txn.Status, err)
	if err != nil {
		return helpers.SboError(c, creds, err)
	}

	return helpers.SboSuccess(c, req.Username, creds.FromLedger(balance))
}

func gameID(id int, name *string) string {
	if name != nil && *name != "" {
		return *name
	}
	if id == 0 {
		return ""
	}
	return strconv.Itoa(id)
}
