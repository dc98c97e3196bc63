// services/vault.go
package services

import (
	"season-pool-system/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// VaultService holds each season's escrowed pool. Only the season operations
// call it, always inside their own transaction, so a vault debit and the
// flag flip it pays for commit or roll back together. There is no HTTP
// surface for vaults.
type VaultService struct {
	wallets *WalletService
}

func NewVaultService(wallets *WalletService) *VaultService {
	return &VaultService{wallets: wallets}
}

func (v *VaultService) createTx(tx *gorm.DB, seasonID string) error {
	return tx.Create(&models.Vault{
		ID:       uuid.NewString(),
		SeasonID: seasonID,
		Balance:  0,
	}).Error
}

func (v *VaultService) lockTx(tx *gorm.DB, seasonID string) (*models.Vault, error) {
	var vault models.Vault
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("season_id = ?", seasonID).
		First(&vault).Error
	if err != nil {
		return nil, err
	}
	return &vault, nil
}

// depositTx moves amount from a wallet into the vault.
func (v *VaultService) depositTx(tx *gorm.DB, seasonID, from string, amount int64, kind string) error {
	vault, err := v.lockTx(tx, seasonID)
	if err != nil {
		return err
	}
	if err := v.wallets.debitTx(tx, from, amount); err != nil {
		return err
	}
	newBalance, err := safeAdd(vault.Balance, amount)
	if err != nil {
		return err
	}
	if err := tx.Model(vault).Update("balance", newBalance).Error; err != nil {
		return err
	}
	return v.wallets.journalTx(tx, seasonID, kind, from, "vault:"+seasonID, amount)
}

// withdrawTx moves amount from the vault to a destination wallet, failing
// with ErrInsufficientVaultFunds before the balance could go negative.
func (v *VaultService) withdrawTx(tx *gorm.DB, seasonID, to string, amount int64, kind string) error {
	vault, err := v.lockTx(tx, seasonID)
	if err != nil {
		return err
	}
	if vault.Balance < amount {
		return models.ErrInsufficientVaultFunds
	}
	newBalance, err := safeSub(vault.Balance, amount)
	if err != nil {
		return err
	}
	if err := tx.Model(vault).Update("balance", newBalance).Error; err != nil {
		return err
	}
	if err := v.wallets.creditTx(tx, to, amount); err != nil {
		return err
	}
	return v.wallets.journalTx(tx, seasonID, kind, "vault:"+seasonID, to, amount)
}

// drainTx empties the vault to a destination and returns the swept amount.
func (v *VaultService) drainTx(tx *gorm.DB, seasonID, to string) (int64, error) {
	vault, err := v.lockTx(tx, seasonID)
	if err != nil {
		return 0, err
	}
	remaining := vault.Balance
	if remaining > 0 {
		if err := tx.Model(vault).Update("balance", int64(0)).Error; err != nil {
			return 0, err
		}
		if err := v.wallets.creditTx(tx, to, remaining); err != nil {
			return 0, err
		}
		if err := v.wallets.journalTx(tx, seasonID, models.TransferKindSweep, "vault:"+seasonID, to, remaining); err != nil {
			return 0, err
		}
	}
	return remaining, nil
}

func (v *VaultService) deleteTx(tx *gorm.DB, seasonID string) error {
	return tx.Where("season_id = ?", seasonID).Delete(&models.Vault{}).Error
}
