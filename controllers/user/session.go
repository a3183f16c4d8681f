package user

import (
	"github.com/gofiber/fiber/v2"

	"walletgw/helpers"
)

type sessionRequest struct {
	PlayID string `json:"play_id"`
}

// CreateSession issues a fresh game-launch token for a player. Any
// previous token for the same player stops working.
func (h *Handler) CreateSession(c *fiber.Ctx) error {
	var req sessionRequest
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

	token, err := h.Repo.CreateOrUpdateToken(ctx, player.PlayID, player.Provider)
	if err != nil {
		return helpers.JSONError(c, "FAILED_TO_CREATE_SESSION")
	}

	return helpers.JSONSuccess(c, "SESSION_CREATED", fiber.Map{
		"sid":        token.SID,
		"expires_at": token.ExpiresAt,
	})
}

func (h *Handler) DeleteSession(c *fiber.Ctx) error {
	sid := c.Params("sid")
	if sid == "" {
		return helpers.JSONError(c, "SID_REQUIRED")
	}
	if err := h.Repo.DeleteToken(c.UserContext(), sid); err != nil {
		return helpers.JSONError(c, "FAILED_TO_DELETE_SESSION")
	}
	return helpers.JSONSuccess(c, "SESSION_DELETED", nil)
}
