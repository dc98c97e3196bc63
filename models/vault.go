package models

import "time"

// Vault escrows one season's pooled entry fees. It exists exactly as long as
// its season and its balance is the source of truth for payable funds.
type Vault struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	SeasonID  string    `json:"season_id" gorm:"uniqueIndex;not null"`
	Balance   int64     `json:"balance" gorm:"not null;default:0"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}
