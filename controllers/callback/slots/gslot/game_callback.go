package gslot

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"walletgw/credentials"
	"walletgw/helpers"
	"walletgw/mappers"
	"walletgw/models"
	"walletgw/wallet"
)

type slotDetail struct {
	ProviderCode    string                `json:"provider_code"`
	GameCode        models.FlexibleString `json:"game_code"`
	RoundID         models.FlexibleString `json:"round_id"`
	IsRoundFinished bool                  `json:"is_round_finished"`

	Bet models.FlexibleString `json:"bet"`
	Win models.FlexibleString `json:"win"`

	TxnID   models.FlexibleString `json:"txn_id"`
	TxnType string                `json:"txn_type"`

	CreatedAtRaw string `json:"created_at"`
}

type slotCallback struct {
	AgentCode   string `json:"agent_code"`
	AgentSecret string `json:"agent_secret"`
	UserCode    string `json:"user_code"`
	GameType    string `json:"game_type"`

	Slot slotDetail `json:"slot"`
}

// ProcessSlotTransaction is the single money-moving callback. txn_type
// selects the canonical operation: debit wagers, credit pays out,
// debit_credit does both in one ledger write, rollback voids the round.
func (h *Handler) ProcessSlotTransaction(c *fiber.Ctx) error {
	var cb slotCallback
	if err := c.BodyParser(&cb); err != nil {
		return helpers.GslotError(c, credentials.Credentials{}, wallet.E(wallet.KindInvalidProviderRequest, "invalid json"))
	}
	if cb.UserCode == "" || cb.Slot.TxnID == "" {
		return helpers.GslotError(c, credentials.Credentials{}, wallet.E(wallet.KindInvalidProviderRequest, "missing user_code or txn_id"))
	}

	ctx := c.UserContext()
	player, err := h.Repo.GetPlayerByPlayID(ctx, cb.UserCode)
	if err != nil {
		return helpers.GslotError(c, credentials.Credentials{}, err)
	}

	creds, err := h.resolve(player)
	if err != nil {
		return helpers.GslotError(c, credentials.Credentials{}, err)
	}

	req := mappers.Request{
		Provider:     Provider,
		PlayID:       player.PlayID,
		Username:     cb.UserCode,
		WalletUserID: player.WalletUserID,
		Currency:     player.Currency,
		GameID:       cb.Slot.GameCode.String(),
		ExternalID:   cb.Slot.TxnID.String(),
		BetAmount:    cb.Slot.Bet.String(),
		WinAmount:    cb.Slot.Win.String(),
		Timestamp:    cb.Slot.CreatedAtRaw,
		Location:     providerZone,
	}

	switch cb.Slot.TxnType {
	case "debit":
		return h.debit(c, creds, player, req)
	case "credit":
		return h.credit(c, creds, player, req)
	case "debit_credit":
		return h.debitCredit(c, creds, player, req)
	case "rollback":
		return h.rollback(c, creds, player, req)
	}
	return helpers.GslotError(c, creds, wallet.E(wallet.KindInvalidProviderRequest, "invalid txn_type"))
}

func (h *Handler) debit(c *fiber.Ctx, creds credentials.Credentials, player *models.Player, req mappers.Request) error {
	ctx := c.UserContext()
	txn, err := mappers.MapWager(req)
	if err != nil {
		return helpers.GslotError(c, creds, err)
	}
	if err := h.Guard.Check(ctx, txn); err != nil {
		return h.duplicateOrError(c, creds, player, err)
	}

	balance, err := h.Wallet.Wager(ctx, creds, player.PlayID, player.Currency, txn.TxnID,
		creds.ToLedger(txn.BetAmount), mappers.ReportOf(txn))
	h.finish(ctx, txn, "", err)
	if err != nil {
		return helpers.GslotError(c, creds, err)
	}
	return helpers.GslotSuccess(c, creds.FromLedger(balance))
}

func (h *Handler) credit(c *fiber.Ctx, creds credentials.Credentials, player *models.Player, req mappers.Request) error {
	ctx := c.UserContext()
	txn, err := mappers.MapPayout(req)
	if err != nil {
		return helpers.GslotError(c, creds, err)
	}
	if err := h.Guard.Check(ctx, txn); err != nil {
		return h.duplicateOrError(c, creds, player, err)
	}

	balance, err := h.Wallet.Payout(ctx, creds, player.PlayID, player.Currency, txn.TxnID,
		creds.ToLedger(txn.WinAmount), mappers.ReportOf(txn))
	h.finish(ctx, txn, models.StatusSettled, err)
	if err != nil {
		return helpers.GslotError(c, creds, err)
	}

	// Settle the wager leg of the round if we hold one.
	_ = h.Repo.UpdateTransactionStatus(ctx, mappers.TxnID(mappers.OpWagerPayout, req.ExternalID), models.StatusSettled)
	return helpers.GslotSuccess(c, creds.FromLedger(balance))
}

func (h *Handler) debitCredit(c *fiber.Ctx, creds credentials.Credentials, player *models.Player, req mappers.Request) error {
	ctx := c.UserContext()
	txn, err := mappers.MapWagerAndPayout(req)
	if err != nil {
		return helpers.GslotError(c, creds, err)
	}
	if err := h.Guard.Check(ctx, txn); err != nil {
		return h.duplicateOrError(c, creds, player, err)
	}

	balance, err := h.Wallet.WagerAndPayout(ctx, creds, player.PlayID, player.Currency,
		txn.TxnID, creds.ToLedger(txn.BetAmount),
		mappers.PayoutLegID(req.ExternalID), creds.ToLedger(txn.WinAmount),
		mappers.ReportOf(txn))
	h.finish(ctx, txn, models.StatusSettled, err)
	if err != nil {
		return helpers.GslotError(c, creds, err)
	}
	return helpers.GslotSuccess(c, creds.FromLedger(balance))
}

func (h *Handler) rollback(c *fiber.Ctx, creds credentials.Credentials, player *models.Player, req mappers.Request) error {
	ctx := c.UserContext()

	wagered, err := h.Repo.GetTransactionByTxnID(ctx, mappers.TxnID(mappers.OpWagerPayout, req.ExternalID))
	if err != nil {
		return helpers.GslotError(c, creds, err)
	}
	if wagered.Status == models.StatusSettled {
		return helpers.GslotError(c, creds, wallet.E(wallet.KindTransactionAlreadySettled, req.ExternalID))
	}

	req.RefExternalID = req.ExternalID
	req.Amount = wagered.BetAmount.String()
	txn, err := mappers.MapCancel(req)
	if err != nil {
		return helpers.GslotError(c, creds, err)
	}
	if err := h.Guard.Check(ctx, txn); err != nil {
		return h.duplicateOrError(c, creds, player, err)
	}

	balance, err := h.Wallet.Cancel(ctx, creds, txn.TxnID, creds.ToLedger(txn.BetAmount), wagered.TxnID)
	h.finish(ctx, txn, models.StatusSettled, err)
	if err != nil {
		return helpers.GslotError(c, creds, err)
	}

	_ = h.Repo.UpdateTransactionStatus(ctx, wagered.TxnID, models.StatusVoided)
	return helpers.GslotSuccess(c, creds.FromLedger(balance))
}

// duplicateOrError answers a replayed callback with the current balance,
// matching how the aggregator expects idempotent acknowledgement.
func (h *Handler) duplicateOrError(c *fiber.Ctx, creds credentials.Credentials, player *models.Player, err error) error {
	if wallet.KindOf(err) != wallet.KindTransactionAlreadyExists {
		return helpers.GslotError(c, creds, err)
	}
	balance, berr := h.Wallet.Balance(c.UserContext(), creds, player.PlayID)
	if berr != nil {
		return helpers.GslotError(c, creds, err)
	}
	return helpers.GslotSuccess(c, creds.FromLedger(balance))
}

// finish records the outcome of the ledger write. A dial failure means
// the write never reached the ledger, so the row is removed and the
// txn_id freed for the aggregator's resend. An uncertain outcome parks
// the row out of the pending set until it can be reconciled.
func (h *Handler) finish(ctx context.Context, txn *models.Transaction, status string, callErr error) {
	if callErr == nil {
		if status != "" && status != txn.Status {
			_ = h.Repo.UpdateTransactionStatus(ctx, txn.TxnID, status)
		}
		return
	}
	switch kind := wallet.KindOf(callErr); {
	case kind == wallet.KindTransportError:
		_ = h.Repo.DeleteTransaction(ctx, txn.TxnID)
	case kind.Deterministic():
		_ = h.Repo.UpdateTransactionStatus(ctx, txn.TxnID, models.StatusVoided)
	default:
		_ = h.Repo.UpdateTransactionStatus(ctx, txn.TxnID, models.StatusUnknown)
	}
}
