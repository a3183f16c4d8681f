package mappers

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"walletgw/models"
	"walletgw/wallet"
)

func wagerRequest() Request {
	return Request{
		Provider:   "sbo",
		PlayID:     "player-1",
		Username:   "player-1",
		Currency:   "USD",
		GameID:     "soccer",
		ExternalID: "R123",
		BetAmount:  "10.00",
		Timestamp:  "2024-05-01 12:00:00",
	}
}

func TestMapWagerDerivesDeterministicTxnID(t *testing.T) {
	first, err := MapWager(wagerRequest())
	require.NoError(t, err)
	second, err := MapWager(wagerRequest())
	require.NoError(t, err)

	assert.Equal(t, "wagerpayout-R123", first.TxnID)
	assert.Equal(t, first.TxnID, second.TxnID)
	assert.Equal(t, first.EventAt, second.EventAt)
}

func TestMapWagerPopulatesCanonicalFields(t *testing.T) {
	txn, err := MapWager(wagerRequest())
	require.NoError(t, err)

	assert.Equal(t, "sbo", txn.Provider)
	assert.Equal(t, OpWagerPayout, txn.Operation)
	assert.Equal(t, "R123", txn.ExternalID)
	assert.Equal(t, models.StatusPending, txn.Status)
	assert.True(t, txn.BetAmount.Equal(decimal.RequireFromString("10.00")))
	assert.True(t, txn.ValidBet.Equal(txn.BetAmount))
	assert.True(t, txn.WinAmount.IsZero())
}

func TestMapWagerAndPayoutBetWinloseInvariant(t *testing.T) {
	req := wagerRequest()
	req.WinAmount = "3.50"
	txn, err := MapWagerAndPayout(req)
	require.NoError(t, err)

	want := txn.WinAmount.Sub(txn.BetAmount)
	assert.True(t, txn.BetWinlose.Equal(want), "betWinlose = %s, want %s", txn.BetWinlose, want)
	assert.True(t, txn.BetWinlose.IsNegative())
}

func TestMapWagerMissingFields(t *testing.T) {
	cases := map[string]func(*Request){
		"provider":    func(r *Request) { r.Provider = "" },
		"play id":     func(r *Request) { r.PlayID = "" },
		"currency":    func(r *Request) { r.Currency = "" },
		"external id": func(r *Request) { r.ExternalID = "" },
		"bet amount":  func(r *Request) { r.BetAmount = "" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			req := wagerRequest()
			mutate(&req)
			_, err := MapWager(req)
			assert.Equal(t, wallet.KindInvalidProviderRequest, wallet.KindOf(err))
		})
	}
}

func TestMapWagerRejectsMalformedAmounts(t *testing.T) {
	req := wagerRequest()
	req.BetAmount = "ten"
	_, err := MapWager(req)
	assert.Equal(t, wallet.KindInvalidProviderRequest, wallet.KindOf(err))

	req = wagerRequest()
	req.BetAmount = "-1.00"
	_, err = MapWager(req)
	assert.Equal(t, wallet.KindInvalidProviderRequest, wallet.KindOf(err))
}

func TestMapCancelReferencesOriginalWager(t *testing.T) {
	txn, err := MapCancel(Request{
		Provider:      "sbo",
		PlayID:        "player-1",
		Currency:      "USD",
		ExternalID:    "C9",
		RefExternalID: "R123",
		Amount:        "10.00",
	})
	require.NoError(t, err)

	assert.Equal(t, "cancel-C9", txn.TxnID)
	assert.Equal(t, "wagerpayout-R123", txn.RefTxnID)
}

func TestMapCancelRequiresReference(t *testing.T) {
	_, err := MapCancel(Request{Provider: "sbo", ExternalID: "C9", Amount: "1"})
	assert.Equal(t, wallet.KindInvalidProviderRequest, wallet.KindOf(err))
}

func TestMapResettleReferencesSettledPayout(t *testing.T) {
	txn, err := MapResettle(Request{
		Provider:      "sbo",
		PlayID:        "player-1",
		Currency:      "USD",
		ExternalID:    "RS1",
		RefExternalID: "R123",
		WinAmount:     "12.00",
	})
	require.NoError(t, err)

	assert.Equal(t, "resettle-RS1", txn.TxnID)
	assert.Equal(t, "payout-R123", txn.RefTxnID)
}

func TestParseEventTimeNormalizesZones(t *testing.T) {
	gmt8 := time.FixedZone("GMT+8", 8*60*60)

	fromGMT8, err := ParseEventTime("2024-05-01 20:00:00", gmt8)
	require.NoError(t, err)
	fromUTC, err := ParseEventTime("2024-05-01 12:00:00", nil)
	require.NoError(t, err)

	assert.True(t, fromGMT8.Equal(fromUTC), "GMT+8 20:00 should equal UTC 12:00")
	assert.Equal(t, time.UTC, fromGMT8.Location())
}

func TestParseEventTimeRejectsGarbage(t *testing.T) {
	_, err := ParseEventTime("yesterday-ish", nil)
	assert.Equal(t, wallet.KindInvalidProviderRequest, wallet.KindOf(err))
}

func TestPayoutLegID(t *testing.T) {
	assert.Equal(t, "payout-R123", PayoutLegID("R123"))
}

func TestReportOfRoundTrips(t *testing.T) {
	req := wagerRequest()
	req.WinAmount = "4.00"
	txn, err := MapWagerAndPayout(req)
	require.NoError(t, err)

	report := ReportOf(txn)
	assert.Equal(t, "sbo", report.Provider)
	assert.Equal(t, "R123", report.RoundID)
	assert.True(t, report.BetAmount.Equal(txn.BetAmount))
	assert.True(t, report.WinAmount.Equal(txn.WinAmount))
}
