// models/wallet.go
package models

import "time"

// WalletAccount is the keyed balance backing the value-transfer primitive.
// Address is the external identity the gateway authenticates; rows are
// created on first credit.
type WalletAccount struct {
	ID         string    `json:"id" gorm:"primaryKey;type:uuid"`
	Address    string    `json:"address" gorm:"type:varchar(128);not null;uniqueIndex"`
	Balance    int64     `json:"balance" gorm:"not null;default:0"`
	IsTreasury bool      `json:"is_treasury" gorm:"not null;default:false"`
	CreatedAt  time.Time `json:"created_at" gorm:"not null"`
	UpdatedAt  time.Time `json:"updated_at" gorm:"not null"`
}

// Transfer journal kinds, one per vault movement.
const (
	TransferKindDeposit = "deposit"
	TransferKindFee     = "fee"
	TransferKindPrize   = "prize"
	TransferKindRefund  = "refund"
	TransferKindSweep   = "sweep"
	TransferKindCredit  = "credit"
)

// TransferRecord is an audit row written inside the same transaction as the
// balance movement it describes. Journal rows outlive closed seasons.
type TransferRecord struct {
	ID       string `json:"id" gorm:"primaryKey;type:uuid"`
	SeasonID string `json:"season_id,omitempty" gorm:"index"`
	Kind     string `json:"kind" gorm:"type:varchar(16);not null;index"`
	From     string `json:"from" gorm:"column:from_address;type:varchar(128)"`
	To       string `json:"to" gorm:"column:to_address;type:varchar(128)"`
	Amount   int64  `json:"amount" gorm:"not null"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}
