// Package user exposes the operator-facing API: player registration,
// balance lookup, launch-token issuing and agent transfers.
package user

import (
	"walletgw/credentials"
	"walletgw/guard"
	"walletgw/models"
	"walletgw/repository"
	"walletgw/wallet"
)

type Handler struct {
	Env    string
	Creds  *credentials.Resolver
	Repo   *repository.Repository
	Guard  *guard.Guard
	Wallet wallet.Wallet
}

func NewHandler(env string, creds *credentials.Resolver, repo *repository.Repository, g *guard.Guard, w wallet.Wallet) *Handler {
	return &Handler{Env: env, Creds: creds, Repo: repo, Guard: g, Wallet: w}
}

func (h *Handler) resolve(player *models.Player) (credentials.Credentials, error) {
	return h.Creds.Resolve(player.Provider, h.Env, player.Currency)
}
