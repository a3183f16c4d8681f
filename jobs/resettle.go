// Package jobs runs the background settlement sweep: wagers the
// provider settled out-of-band get paid out through the same
// mapper/guard/gateway path the callbacks use, and expired launch
// tokens are purged.
package jobs

import (
	"context"
	"time"

	"go.uber.org/zap"

	"walletgw/credentials"
	"walletgw/guard"
	"walletgw/mappers"
	"walletgw/models"
	"walletgw/repository"
	"walletgw/services"
	"walletgw/wallet"

	"github.com/shopspring/decimal"
)

const sweepBatchSize = 200

type Scheduler struct {
	Env       string
	Providers []string
	Interval  time.Duration

	Creds  *credentials.Resolver
	Repo   *repository.Repository
	Guard  *guard.Guard
	Wallet wallet.Wallet
	Log    *zap.Logger
}

func (s *Scheduler) Start(ctx context.Context) {
	ticker := time.NewTicker(s.Interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.runOnce(ctx)
			}
		}
	}()
}

func (s *Scheduler) runOnce(ctx context.Context) {
	if purged, err := s.Repo.DeleteExpiredTokens(ctx); err != nil {
		s.Log.Warn("token purge failed", zap.Error(err))
	} else if purged > 0 {
		s.Log.Info("purged expired tokens", zap.Int64("count", purged))
	}

	for _, provider := range s.Providers {
		if err := s.sweepProvider(ctx, provider); err != nil {
			s.Log.Warn("settlement sweep failed",
				zap.String("provider", provider), zap.Error(err))
		}
	}
}

func (s *Scheduler) sweepProvider(ctx context.Context, provider string) error {
	creds, err := s.Creds.Resolve(provider, s.Env, "")
	if err != nil {
		return err
	}
	if creds.APIURL == "" {
		return nil
	}

	pending, err := s.Repo.ListPendingByProvider(ctx, provider, sweepBatchSize)
	if err != nil {
		return err
	}
	if len(pending) == 0 {
		return nil
	}

	end := time.Now()
	bets, err := services.FetchSettledBets(ctx, creds, end.Add(-24*time.Hour), end)
	if err != nil {
		return err
	}

	byRef := make(map[string]services.SettledBet, len(bets))
	for _, bet := range bets {
		byRef[bet.RefNo] = bet
	}

	for _, txn := range pending {
		if txn.Operation != mappers.OpWagerPayout {
			continue
		}
		bet, ok := byRef[txn.ExternalID]
		if !ok || bet.Status != "settled" {
			continue
		}
		s.settle(ctx, creds, txn, bet)
	}
	return nil
}

func (s *Scheduler) settle(ctx context.Context, creds credentials.Credentials, wagered models.Transaction, bet services.SettledBet) {
	payout, err := mappers.MapPayout(mappers.Request{
		Provider:     wagered.Provider,
		PlayID:       wagered.PlayID,
		Username:     wagered.Username,
		WalletUserID: wagered.WalletUserID,
		Currency:     wagered.Currency,
		GameID:       wagered.GameID,
		ExternalID:   wagered.ExternalID,
		WinAmount:    decimal.NewFromFloat(bet.WinLoss).String(),
		Timestamp:    bet.SettleTime,
	})
	if err != nil {
		s.Log.Warn("sweep payout mapping failed",
			zap.String("txn_id", wagered.TxnID), zap.Error(err))
		return
	}

	if err := s.Guard.Check(ctx, payout); err != nil {
		// Already settled through the callback path in the meantime.
		if wallet.KindOf(err) == wallet.KindTransactionAlreadyExists {
			_ = s.Repo.UpdateTransactionStatus(ctx, wagered.TxnID, models.StatusSettled)
			return
		}
		s.Log.Warn("sweep guard failed", zap.String("txn_id", payout.TxnID), zap.Error(err))
		return
	}

	amount := creds.ToLedger(payout.WinAmount)
	_, err = s.Wallet.Payout(ctx, creds, payout.PlayID, payout.Currency, payout.TxnID, amount, mappers.ReportOf(payout))
	if err != nil {
		switch kind := wallet.KindOf(err); {
		case kind == wallet.KindTransportError:
			// Never reached the ledger; the next sweep retries it.
			_ = s.Repo.DeleteTransaction(ctx, payout.TxnID)
		case kind.Deterministic():
			_ = s.Repo.UpdateTransactionStatus(ctx, payout.TxnID, models.StatusVoided)
		default:
			_ = s.Repo.UpdateTransactionStatus(ctx, payout.TxnID, models.StatusUnknown)
		}
		s.Log.Warn("sweep payout failed", zap.String("txn_id", payout.TxnID), zap.Error(err))
		return
	}

	_ = s.Repo.UpdateTransactionStatus(ctx, payout.TxnID, models.StatusSettled)
	_ = s.Repo.UpdateTransactionStatus(ctx, wagered.TxnID, models.StatusSettled)
	s.Log.Info("swept settlement",
		zap.String("provider", wagered.Provider),
		zap.String("txn_id", payout.TxnID),
		zap.String("amount", amount.String()))
}
