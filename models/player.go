package models

import (
	"gorm.io/gorm"
)

type Player struct {
	gorm.Model

	PlayID       string `gorm:"uniqueIndex;size:64" json:"play_id"`
	Username     string `gorm:"index;size:64" json:"username"`
	WalletUserID string `gorm:"index;size:64" json:"wallet_user_id"`
	Provider     string `gorm:"index;size:32" json:"provider"`
	Currency     string `gorm:"size:8" json:"currency"`
	IsActive     bool   `gorm:"default:true" json:"is_active"`

	Transactions []Transaction `gorm:"foreignKey:PlayID;references:PlayID"`
}
