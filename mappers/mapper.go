// Package mappers converts inbound provider requests into canonical
// Transaction records. Mapping is pure: identical input always produces
// an identical record, including the internal transaction id, which is
// the idempotency key for the ledger write.
package mappers

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	"walletgw/models"
	"walletgw/wallet"
)

// Operation namespaces. The internal id is "{operation}-{externalID}".
// A plain wager and the wager leg of a combined wager+payout share the
// wagerpayout namespace so a provider settling a round it already
// wagered on collides with itself, never with an unrelated payout.
const (
	OpWagerPayout = "wagerpayout"
	OpPayout      = "payout"
	OpCancel      = "cancel"
	OpResettle    = "resettle"
	OpBonus       = "bonus"
	OpTransferIn  = "transferin"
	OpTransferOut = "transferout"
)

// TxnID derives the internal ledger transaction id. Byte-identical for
// identical input, by construction.
func TxnID(operation, externalID string) string {
	return operation + "-" + externalID
}

// Request is the normalized inbound shape controllers fill from the
// provider wire format. Amounts stay strings until validation so a
// malformed value is an InvalidProviderRequest, not a parse panic.
type Request struct {
	Provider     string
	PlayID       string
	Username     string
	WalletUserID string
	Currency     string
	GameID       string

	ExternalID string
	// RefExternalID references the original wager for cancel/resettle.
	RefExternalID string

	BetAmount string
	WinAmount string
	ValidBet  string
	Amount    string

	Timestamp string
	// Location is the provider's declared time zone for Timestamp.
	// Nil means UTC.
	Location *time.Location
}

func MapWager(req Request) (*models.Transaction, error) {
	if err := requireBase(req); err != nil {
		return nil, err
	}
	bet, err := parseAmount("bet amount", req.BetAmount)
	if err != nil {
		return nil, err
	}
	return build(req, OpWagerPayout, bet, decimal.Zero)
}

func MapPayout(req Request) (*models.Transaction, error) {
	if err := requireBase(req); err != nil {
		return nil, err
	}
	win, err := parseAmount("win amount", req.WinAmount)
	if err != nil {
		return nil, err
	}
	return build(req, OpPayout, decimal.Zero, win)
}

func MapWagerAndPayout(req Request) (*models.Transaction, error) {
	if err := requireBase(req); err != nil {
		return nil, err
	}
	bet, err := parseAmount("bet amount", req.BetAmount)
	if err != nil {
		return nil, err
	}
	win, err := parseAmount("win amount", req.WinAmount)
	if err != nil {
		return nil, err
	}
	return build(req, OpWagerPayout, bet, win)
}

func MapCancel(req Request) (*models.Transaction, error) {
	if req.ExternalID == "" || req.RefExternalID == "" {
		return nil, wallet.E(wallet.KindInvalidProviderRequest, "cancel requires external id and referenced transaction id")
	}
	amount, err := parseAmount("cancel amount", req.Amount)
	if err != nil {
		return nil, err
	}
	txn, err := build(req, OpCancel, amount, decimal.Zero)
	if err != nil {
		return nil, err
	}
	txn.RefTxnID = TxnID(OpWagerPayout, req.RefExternalID)
	return txn, nil
}

func MapResettle(req Request) (*models.Transaction, error) {
	if req.ExternalID == "" || req.RefExternalID == "" {
		return nil, wallet.E(wallet.KindInvalidProviderRequest, "resettle requires external id and referenced transaction id")
	}
	if err := requireBase(req); err != nil {
		return nil, err
	}
	win, err := parseAmount("resettle amount", req.WinAmount)
	if err != nil {
		return nil, err
	}
	txn, err := build(req, OpResettle, decimal.Zero, win)
	if err != nil {
		return nil, err
	}
	txn.RefTxnID = TxnID(OpPayout, req.RefExternalID)
	return txn, nil
}

func MapBonus(req Request) (*models.Transaction, error) {
	if err := requireBase(req); err != nil {
		return nil, err
	}
	amount, err := parseAmount("bonus amount", req.Amount)
	if err != nil {
		return nil, err
	}
	return build(req, OpBonus, decimal.Zero, amount)
}

func MapTransferIn(req Request) (*models.Transaction, error) {
	if err := requireBase(req); err != nil {
		return nil, err
	}
	amount, err := parseAmount("transfer amount", req.Amount)
	if err != nil {
		return nil, err
	}
	return build(req, OpTransferIn, decimal.Zero, amount)
}

func MapTransferOut(req Request) (*models.Transaction, error) {
	if err := requireBase(req); err != nil {
		return nil, err
	}
	amount, err := parseAmount("transfer amount", req.Amount)
	if err != nil {
		return nil, err
	}
	return build(req, OpTransferOut, amount, decimal.Zero)
}

// PayoutLegID is the id of the payout leg of a combined wager+payout
// round; the wager leg carries the Transaction's own id.
func PayoutLegID(externalID string) string {
	return TxnID(OpPayout, externalID)
}

func requireBase(req Request) error {
	switch {
	case req.Provider == "":
		return wallet.E(wallet.KindInvalidProviderRequest, "missing provider")
	case req.PlayID == "":
		return wallet.E(wallet.KindInvalidProviderRequest, "missing play id")
	case req.Currency == "":
		return wallet.E(wallet.KindInvalidProviderRequest, "missing currency")
	case req.ExternalID == "":
		return wallet.E(wallet.KindInvalidProviderRequest, "missing external transaction id")
	}
	return nil
}

func build(req Request, operation string, bet, win decimal.Decimal) (*models.Transaction, error) {
	eventAt, err := ParseEventTime(req.Timestamp, req.Location)
	if err != nil {
		return nil, err
	}

	validBet := bet
	if req.ValidBet != "" {
		validBet, err = parseAmount("valid bet", req.ValidBet)
		if err != nil {
			return nil, err
		}
	}

	txn := &models.Transaction{
		TxnID:        TxnID(operation, req.ExternalID),
		Provider:     req.Provider,
		Operation:    operation,
		ExternalID:   req.ExternalID,
		PlayID:       req.PlayID,
		Username:     req.Username,
		WalletUserID: req.WalletUserID,
		Currency:     req.Currency,
		GameID:       req.GameID,
		BetAmount:    bet,
		WinAmount:    win,
		BetWinlose:   win.Sub(bet),
		ValidBet:     validBet,
		EventAt:      eventAt,
		Status:       models.StatusPending,
	}

	report := wallet.Report{
		Provider:  req.Provider,
		GameID:    req.GameID,
		RoundID:   req.ExternalID,
		BetAmount: bet,
		WinAmount: win,
		ValidBet:  validBet,
		BetTime:   eventAt,
	}
	raw, err := json.Marshal(report)
	if err != nil {
		return nil, wallet.Wrap(wallet.KindInvalidProviderRequest, "encode report", err)
	}
	txn.Report = datatypes.JSON(raw)

	return txn, nil
}

// ReportOf rebuilds the audit report attached to a mapped transaction.
func ReportOf(txn *models.Transaction) *wallet.Report {
	var report wallet.Report
	if len(txn.Report) > 0 {
		if err := json.Unmarshal(txn.Report, &report); err == nil {
			return &report
		}
	}
	return &wallet.Report{
		Provider:  txn.Provider,
		GameID:    txn.GameID,
		RoundID:   txn.ExternalID,
		BetAmount: txn.BetAmount,
		WinAmount: txn.WinAmount,
		ValidBet:  txn.ValidBet,
		BetTime:   txn.EventAt,
	}
}

var eventLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseEventTime parses a provider timestamp in its declared zone and
// normalizes it to UTC. An empty timestamp means "now".
func ParseEventTime(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	if s == "" {
		return time.Now().UTC(), nil
	}
	for _, layout := range eventLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, wallet.E(wallet.KindInvalidProviderRequest, fmt.Sprintf("unparseable timestamp %q", s))
}

func parseAmount(name, s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, wallet.E(wallet.KindInvalidProviderRequest, "missing "+name)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, wallet.Wrap(wallet.KindInvalidProviderRequest, "malformed "+name, err)
	}
	if d.IsNegative() {
		return decimal.Zero, wallet.E(wallet.KindInvalidProviderRequest, "negative "+name)
	}
	return d, nil
}
