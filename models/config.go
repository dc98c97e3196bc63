package models

import "time"

// ProgramConfig is the single global admin record. Exactly one row ever
// exists; it is created by the first successful bootstrap call and only the
// current admin can hand it to a new wallet.
type ProgramConfig struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	Admin     string    `json:"admin" gorm:"type:varchar(128);not null"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// ConfigRowID pins the config to a well-known key so concurrent bootstrap
// attempts collide on the primary key instead of racing to two rows.
const ConfigRowID = "program-config"
