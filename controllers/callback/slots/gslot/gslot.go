// Package gslot handles the gslot aggregator's slot callbacks. The
// aggregator reports a whole round in one callback: debit, credit, or
// the combined debit_credit that wagers and pays out in a single call.
package gslot

import (
	"time"

	"walletgw/credentials"
	"walletgw/guard"
	"walletgw/models"
	"walletgw/repository"
	"walletgw/wallet"
)

const Provider = "gslot"

// The aggregator reports round timestamps in GMT+8.
var providerZone = time.FixedZone("GMT+8", 8*60*60)

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
	return h.Creds.Resolve(Provider, h.Env, player.Currency)
}
