package models

import "time"

// Participant is the per-(season, wallet) registration record. The composite
// unique index is what makes concurrent duplicate registrations impossible:
// the second insert fails at the database regardless of interleaving.
type Participant struct {
	ID       string `json:"id" gorm:"primaryKey"`
	SeasonID string `json:"season_id" gorm:"not null;uniqueIndex:idx_season_wallet"`
	Wallet   string `json:"wallet" gorm:"type:varchar(128);not null;uniqueIndex:idx_season_wallet"`

	RegisteredAt time.Time `json:"registered_at" gorm:"not null"`
	EntryFeePaid int64     `json:"entry_fee_paid" gorm:"not null"`

	// Placement is 0 until winners are set; 1..3 afterwards for winners.
	Placement   int   `json:"placement" gorm:"default:0"`
	PrizeAmount int64 `json:"prize_amount" gorm:"default:0"`

	// One-way flags, false -> true only.
	PrizeClaimed       bool `json:"prize_claimed" gorm:"default:false"`
	EmergencyWithdrawn bool `json:"emergency_withdrawn" gorm:"default:false"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}
