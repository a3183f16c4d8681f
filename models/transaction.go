package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Settlement status of a provider transaction. Money-moving fields are
// never updated in place; cancellations and resettlements create new
// rows referencing the original by RefTxnID. StatusUnknown marks a row
// whose ledger write may or may not have applied; such rows are excluded
// from the settlement sweep and need reconciliation before any
// corrective write.
const (
	StatusPending = "pending"
	StatusSettled = "settled"
	StatusVoided  = "voided"
	StatusUnknown = "unknown"
)

type Transaction struct {
	gorm.Model

	// TxnID is the internal ledger transaction id, derived as
	// "{operation}-{externalID}". One ledger write per TxnID, ever.
	TxnID string `gorm:"uniqueIndex;size:96" json:"txn_id"`

	Provider   string `gorm:"size:32;index:idx_provider_op_ext,unique" json:"provider"`
	Operation  string `gorm:"size:16;index:idx_provider_op_ext,unique" json:"operation"`
	ExternalID string `gorm:"size:64;index:idx_provider_op_ext,unique" json:"external_id"`

	PlayID       string `gorm:"index;size:64" json:"play_id"`
	Username     string `gorm:"size:64" json:"username"`
	WalletUserID string `gorm:"size:64" json:"wallet_user_id"`
	Currency     string `gorm:"size:8" json:"currency"`
	GameID       string `gorm:"size:64" json:"game_id"`

	BetAmount  decimal.Decimal `gorm:"type:decimal(20,4)" json:"bet_amount"`
	WinAmount  decimal.Decimal `gorm:"type:decimal(20,4)" json:"win_amount"`
	BetWinlose decimal.Decimal `gorm:"type:decimal(20,4)" json:"bet_winlose"`
	ValidBet   decimal.Decimal `gorm:"type:decimal(20,4)" json:"valid_bet"`

	EventAt time.Time `gorm:"index" json:"event_at"`
	Status  string    `gorm:"size:16;index" json:"status"`

	// RefTxnID points at the transaction a cancel/resettle derives from.
	RefTxnID string `gorm:"size:96;index" json:"ref_txn_id"`

	Report datatypes.JSON `gorm:"type:jsonb" json:"report"`
}
