// services/wallet_service.go
package services

import (
	"errors"
	"log"
	"time"

	"season-pool-system/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// WalletService is the value-transfer primitive: keyed balances moved with
// checked arithmetic inside the calling operation's transaction. Season
// operations never touch wallet rows directly.
type WalletService struct {
	DB *gorm.DB
}

func NewWalletService(db *gorm.DB) *WalletService {
	return &WalletService{DB: db}
}

// lockWallet loads the wallet row FOR UPDATE, creating it with a zero
// balance on first touch.
func (s *WalletService) lockWallet(tx *gorm.DB, address string) (*models.WalletAccount, error) {
	var w models.WalletAccount
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("address = ?", address).
		First(&w).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		w = models.WalletAccount{
			ID:        uuid.NewString(),
			Address:   address,
			Balance:   0,
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		}
		if err := tx.Create(&w).Error; err != nil {
			return nil, err
		}
		return &w, nil
	}
	if err != nil {
		return nil, err
	}
	return &w, nil
}

// debitTx removes amount from the wallet, failing with ErrInsufficientFunds
// rather than letting the balance go negative.
func (s *WalletService) debitTx(tx *gorm.DB, address string, amount int64) error {
	if amount < 0 {
		return models.ErrInvalidParameter
	}
	w, err := s.lockWallet(tx, address)
	if err != nil {
		return err
	}
	if w.Balance < amount {
		return models.ErrInsufficientFunds
	}
	newBalance, err := safeSub(w.Balance, amount)
	if err != nil {
		return err
	}
	return tx.Model(w).Update("balance", newBalance).Error
}

// creditTx adds amount to the wallet with a checked add.
func (s *WalletService) creditTx(tx *gorm.DB, address string, amount int64) error {
	if amount < 0 {
		return models.ErrInvalidParameter
	}
	w, err := s.lockWallet(tx, address)
	if err != nil {
		return err
	}
	newBalance, err := safeAdd(w.Balance, amount)
	if err != nil {
		return err
	}
	return tx.Model(w).Update("balance", newBalance).Error
}

// journalTx records one balance movement in the same transaction.
func (s *WalletService) journalTx(tx *gorm.DB, seasonID, kind, from, to string, amount int64) error {
	return tx.Create(&models.TransferRecord{
		ID:       uuid.NewString(),
		SeasonID: seasonID,
		Kind:     kind,
		From:     from,
		To:       to,
		Amount:   amount,
	}).Error
}

// Credit is the admin on-ramp standing in for external deposits.
func (s *WalletService) Credit(caller, admin, address string, amount int64) (*models.WalletAccount, error) {
	if caller != admin {
		return nil, models.ErrUnauthorized
	}
	if address == "" || amount <= 0 {
		return nil, models.ErrInvalidParameter
	}
	var out *models.WalletAccount
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := s.creditTx(tx, address, amount); err != nil {
			return err
		}
		if err := s.journalTx(tx, "", models.TransferKindCredit, "", address, amount); err != nil {
			return err
		}
		var w models.WalletAccount
		if err := tx.Where("address = ?", address).First(&w).Error; err != nil {
			return err
		}
		out = &w
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Printf("[WALLET] credited %d to %s", amount, address)
	return out, nil
}

// Balance returns the wallet row for an address, zero-balance if unseen.
func (s *WalletService) Balance(address string) (*models.WalletAccount, error) {
	var w models.WalletAccount
	err := s.DB.Where("address = ?", address).First(&w).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &models.WalletAccount{Address: address, Balance: 0}, nil
	}
	if err != nil {
		return nil, err
	}
	return &w, nil
}

// --- HTTP surface ---

func (s *WalletService) CreditWallet(configService *ConfigService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		type Req struct {
			Address string `json:"address"`
			Amount  int64  `json:"amount"`
		}
		var req Req
		if err := c.BodyParser(&req); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid JSON"})
		}
		admin, err := configService.AdminAddress()
		if err != nil {
			return respondError(c, err)
		}
		w, err := s.Credit(callerID(c), admin, req.Address, req.Amount)
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(201).JSON(w)
	}
}

func (s *WalletService) GetBalance(c *fiber.Ctx) error {
	address := c.Params("address")
	if address == "" {
		address = callerID(c)
	}
	w, err := s.Balance(address)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(w)
}
