package user

import (
	"github.com/gofiber/fiber/v2"

	"walletgw/helpers"
)

type balanceRequest struct {
	PlayID string `json:"play_id"`
}

func (h *Handler) CheckBalance(c *fiber.Ctx) error {
	var req balanceRequest
	if err := c.BodyParser(&req); err != nil {
		return helpers.JSONError(c, "INVALID_JSON")
	}
	if req.PlayID == "" {
		return helpers.JSONError(c, "PLAY_ID_REQUIRED")
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

	balance, err := h.Wallet.Balance(ctx, creds, player.PlayID)
	if err != nil {
		return helpers.JSONError(c, "WALLET_UNAVAILABLE")
	}

	return helpers.JSONSuccess(c, "OK", fiber.Map{
		"play_id":  player.PlayID,
		"currency": player.Currency,
		"balance":  creds.FromLedger(balance).InexactFloat64(),
	})
}
