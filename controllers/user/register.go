package user

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"walletgw/helpers"
	"walletgw/models"
)

type registerRequest struct {
	PlayID       string `json:"play_id"`
	Username     string `json:"username"`
	WalletUserID string `json:"wallet_user_id"`
	Provider     string `json:"provider"`
	Currency     string `json:"currency"`
}

func (h *Handler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return helpers.JSONError(c, "INVALID_JSON")
	}

	req.PlayID = strings.TrimSpace(req.PlayID)
	req.Provider = strings.ToLower(strings.TrimSpace(req.Provider))
	if req.PlayID == "" || req.Provider == "" || req.Currency == "" {
		return helpers.JSONError(c, "PLAY_ID_PROVIDER_AND_CURRENCY_REQUIRED")
	}

	player := models.Player{
		PlayID:       req.PlayID,
		Username:     req.Username,
		WalletUserID: req.WalletUserID,
		Provider:     req.Provider,
		Currency:     strings.ToUpper(req.Currency),
		IsActive:     true,
	}
	if err := h.Repo.CreatePlayer(c.UserContext(), &player); err != nil {
		return helpers.JSONError(c, "FAILED_TO_REGISTER_PLAYER")
	}

	return helpers.JSONSuccess(c, "PLAYER_REGISTERED", fiber.Map{
		"play_id":  player.PlayID,
		"provider": player.Provider,
		"currency": player.Currency,
	})
}
