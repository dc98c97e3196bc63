package models

import (
	"time"
)

// Season lifecycle statuses. Emergency mode is an orthogonal flag, not a
// status: it can be raised from any non-terminal status.
const (
	SeasonStatusRegistration = "registration"
	SeasonStatusActive       = "active"
	SeasonStatusEnded        = "ended"
	SeasonStatusWinnersSet   = "winners_set"
)

const (
	MaxSeasonNameLen = 32
	MaxWinners       = 3
	MaxParticipants  = 4444

	// Platform fee skimmed off the pool once, after registration ends.
	PlatformFeeBps = 2000
	BpsDenominator = 10000
)

// Season is one pooled-stake competition. PoolBalance reconciles with the
// season vault balance after every committed operation.
type Season struct {
	ID             string `json:"id" gorm:"primaryKey"`
	SeasonNumber   uint64 `json:"season_number" gorm:"uniqueIndex;not null"`
	Slug           string `json:"slug" gorm:"index"`
	Name           string `json:"name" gorm:"type:varchar(32);not null"`
	Authority      string `json:"authority" gorm:"type:varchar(128);not null"`
	Oracle         string `json:"oracle,omitempty" gorm:"type:varchar(128)"`
	FeeWallet      string `json:"fee_wallet" gorm:"type:varchar(128);not null"`
	BannerURL      string `json:"banner_url,omitempty"`

	// Amounts are integer base units (lamport-scale); no floats anywhere
	// near the accounting.
	EntryFee         int64 `json:"entry_fee" gorm:"not null"`
	PoolBalance      int64 `json:"pool_balance" gorm:"not null;default:0"`
	ParticipantCount int64 `json:"participant_count" gorm:"not null;default:0"`
	MaxParticipants  int64 `json:"max_participants" gorm:"not null"`

	RegistrationStart time.Time `json:"registration_start" gorm:"not null"`
	RegistrationEnd   time.Time `json:"registration_end" gorm:"not null"`
	SeasonEnd         time.Time `json:"season_end" gorm:"not null"`

	Status          string `json:"status" gorm:"type:varchar(16);default:'registration'"`
	IsActive        bool   `json:"is_active" gorm:"default:true"`
	EmergencyActive bool   `json:"emergency_active" gorm:"default:false"`

	WinnersSet  bool   `json:"winners_set" gorm:"default:false"`
	WinnerCount int    `json:"winner_count" gorm:"default:0"`
	Winner1     string `json:"winner1,omitempty" gorm:"type:varchar(128)"`
	Winner2     string `json:"winner2,omitempty" gorm:"type:varchar(128)"`
	Winner3     string `json:"winner3,omitempty" gorm:"type:varchar(128)"`

	FeeCollected bool  `json:"fee_collected" gorm:"default:false"`
	FeeAmount    int64 `json:"fee_amount" gorm:"default:0"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`

	// Relationships
	Participants []Participant `json:"participants,omitempty" gorm:"foreignKey:SeasonID"`
}

// IsRegistrationOpen reports whether a registration submitted at now is
// inside the window. The end bound is exclusive.
func (s *Season) IsRegistrationOpen(now time.Time) bool {
	return s.IsActive &&
		!now.Before(s.RegistrationStart) &&
		now.Before(s.RegistrationEnd)
}

// HasEnded reports whether the game period is over, i.e. winners may be set.
func (s *Season) HasEnded(now time.Time) bool {
	return now.After(s.SeasonEnd)
}

// Winners returns the ranked winner wallets, rank 1 first.
func (s *Season) Winners() []string {
	all := []string{s.Winner1, s.Winner2, s.Winner3}
	if s.WinnerCount < 0 || s.WinnerCount > MaxWinners {
		return nil
	}
	return all[:s.WinnerCount]
}

// MiniSeason is the listing view returned by the seasons index.
type MiniSeason struct {
	ID               string    `json:"id"`
	SeasonNumber     uint64    `json:"season_number"`
	Slug             string    `json:"slug"`
	Name             string    `json:"name"`
	Status           string    `json:"status"`
	BannerURL        string    `json:"banner_url,omitempty"`
	EntryFee         int64     `json:"entry_fee"`
	PoolBalance      int64     `json:"pool_balance"`
	ParticipantCount int64     `json:"participant_count"`
	MaxParticipants  int64     `json:"max_participants"`
	RegistrationStart time.Time `json:"registration_start"`
	RegistrationEnd  time.Time `json:"registration_end"`
	SeasonEnd        time.Time `json:"season_end"`
	WinnersSet       bool      `json:"winners_set"`
	EmergencyActive  bool      `json:"emergency_active"`
}
