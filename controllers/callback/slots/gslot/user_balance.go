package gslot

import (
	"github.com/gofiber/fiber/v2"

	"walletgw/credentials"
	"walletgw/helpers"
	"walletgw/wallet"
)

type userBalanceRequest struct {
	AgentCode   string `json:"agent_code"`
	AgentSecret string `json:"agent_secret"`
	UserCode    string `json:"user_code"`
}

func (h *Handler) CheckUserBalance(c *fiber.Ctx) error {
	var req userBalanceRequest
	if err := c.BodyParser(&req); err != nil {
		return helpers.GslotError(c, credentials.Credentials{}, wallet.E(wallet.KindInvalidProviderRequest, "invalid json"))
	}
	if req.UserCode == "" {
		return helpers.GslotError(c, credentials.Credentials{}, wallet.E(wallet.KindInvalidProviderRequest, "missing user_code"))
	}

	ctx := c.UserContext()
	player, err := h.Repo.GetPlayerByPlayID(ctx, req.UserCode)
	if err != nil {
		return helpers.GslotError(c, credentials.Credentials{}, err)
	}

	creds, err := h.resolve(player)
	if err != nil {
		return helpers.GslotError(c, credentials.Credentials{}, err)
	}

	balance, err := h.Wallet.Balance(ctx, creds, player.PlayID)
	if err != nil {
		return helpers.GslotError(c, creds, err)
	}

	return helpers.GslotSuccess(c, creds.FromLedger(balance))
}
