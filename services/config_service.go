// services/config_service.go
package services

import (
	"errors"

	"season-pool-system/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ConfigService owns the global admin record. Bootstrap-once, transferable,
// never deleted.
type ConfigService struct {
	DB *gorm.DB
}

func NewConfigService(db *gorm.DB) *ConfigService {
	return &ConfigService{DB: db}
}

// Bootstrap makes the caller the global admin. The fixed primary key means
// two concurrent bootstrap attempts collide on insert and one of them fails.
func (s *ConfigService) Bootstrap(caller string) (*models.ProgramConfig, error) {
	if caller == "" {
		return nil, models.ErrInvalidParameter
	}
	cfg := &models.ProgramConfig{
		ID:    models.ConfigRowID,
		Admin: caller,
	}
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var existing models.ProgramConfig
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&existing, "id = ?", models.ConfigRowID).Error
		if err == nil {
			return models.ErrAlreadyInitialized
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		return tx.Create(cfg).Error
	})
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// TransferAdmin hands the admin role to a new wallet. Current admin only.
func (s *ConfigService) TransferAdmin(caller, newAdmin string) (*models.ProgramConfig, error) {
	if newAdmin == "" {
		return nil, models.ErrInvalidParameter
	}
	var cfg models.ProgramConfig
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&cfg, "id = ?", models.ConfigRowID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.ErrNotInitialized
		}
		if err != nil {
			return err
		}
		if cfg.Admin != caller {
			return models.ErrUnauthorized
		}
		cfg.Admin = newAdmin
		return tx.Model(&cfg).Update("admin", newAdmin).Error
	})
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

// AdminAddress returns the current admin, ErrNotInitialized before bootstrap.
func (s *ConfigService) AdminAddress() (string, error) {
	var cfg models.ProgramConfig
	err := s.DB.First(&cfg, "id = ?", models.ConfigRowID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", models.ErrNotInitialized
	}
	if err != nil {
		return "", err
	}
	return cfg.Admin, nil
}

// --- HTTP surface ---

func (s *ConfigService) BootstrapConfig(c *fiber.Ctx) error {
	cfg, err := s.Bootstrap(callerID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(201).JSON(cfg)
}

func (s *ConfigService) TransferAdminHandler(c *fiber.Ctx) error {
	type Req struct {
		NewAdmin string `json:"new_admin"`
	}
	var req Req
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON"})
	}
	cfg, err := s.TransferAdmin(callerID(c), req.NewAdmin)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(cfg)
}

func (s *ConfigService) GetConfig(c *fiber.Ctx) error {
	var cfg models.ProgramConfig
	if err := s.DB.First(&cfg, "id = ?", models.ConfigRowID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return respondError(c, models.ErrNotInitialized)
		}
		return respondError(c, err)
	}
	return c.JSON(cfg)
}
