package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Token struct {
	gorm.Model

	SID       string    `gorm:"column:sid;size:36;uniqueIndex;not null" json:"sid"`
	PlayID    string    `gorm:"index;size:64" json:"play_id"`
	Provider  string    `gorm:"size:32" json:"provider"`
	ExpiresAt time.Time `gorm:"index" json:"expires_at"`
}

func (t *Token) BeforeCreate(tx *gorm.DB) (err error) {
	if t.SID == "" {
		t.SID = strings.ToLower(uuid.New().String())
	}
	return nil
}
