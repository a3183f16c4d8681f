package sbo

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"walletgw/credentials"
	"walletgw/helpers"
)

type balanceRequest struct {
	CompanyKey string `json:"CompanyKey"`
	Username   string `json:"Username"`
}

func (h *Handler) GetBalance(c *fiber.Ctx) error {
	var req balanceRequest
	if err := c.BodyParser(&req); err != nil {
		return helpers.SboError(c, credentials.Credentials{}, errInvalidBody)
	}

	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" {
		return helpers.SboError(c, credentials.Credentials{}, errMissingUsername)
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

	balance, err := h.Wallet.Balance(ctx, creds, player.PlayID)
	if err != nil {
		return helpers.SboError(c, creds, err)
	}

	return helpers.SboSuccess(c, req.Username, creds.FromLedger(balance))
}
