// services/registration_service.go
package services

import (
	"errors"
	"log"
	"strconv"
	"strings"

	"season-pool-system/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RegistrationService handles the participant-side operations: joining a
// season and the emergency refund path.
type RegistrationService struct {
	DB          *gorm.DB
	Clock       Clock
	Vaults      *VaultService
	Eligibility EligibilityVerifier
}

func NewRegistrationService(db *gorm.DB, clock Clock, vaults *VaultService, eligibility EligibilityVerifier) *RegistrationService {
	if eligibility == nil {
		eligibility = AllowAllVerifier{}
	}
	return &RegistrationService{DB: db, Clock: clock, Vaults: vaults, Eligibility: eligibility}
}

func lockParticipantTx(tx *gorm.DB, seasonID, wallet string) (*models.Participant, error) {
	var p models.Participant
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("season_id = ? AND wallet = ?", seasonID, wallet).
		First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.ErrNotRegistered
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Register escrows the entry fee and creates the participant record in one
// transaction. The (season, wallet) unique index backs the duplicate check,
// so two concurrent registrations for the same wallet cannot both commit.
func (s *RegistrationService) Register(caller string, seasonNumber uint64) (*models.Participant, error) {
	if caller == "" {
		return nil, models.ErrUnauthorized
	}
	if err := s.Eligibility.VerifyEligibility(caller, seasonNumber); err != nil {
		return nil, err
	}

	var out *models.Participant
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		season, err := lockSeasonTx(tx, seasonNumber)
		if err != nil {
			return err
		}
		now := s.Clock.Now()
		if err := syncStatusTx(tx, season, now); err != nil {
			return err
		}
		if season.Status != models.SeasonStatusRegistration || !season.IsRegistrationOpen(now) {
			return models.ErrStateConflict
		}
		if season.ParticipantCount >= season.MaxParticipants {
			return models.ErrCapacityExceeded
		}

		var existing models.Participant
		if err := tx.Where("season_id = ? AND wallet = ?", season.ID, caller).
			First(&existing).Error; err == nil {
			return models.ErrDuplicateRegistration
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		newPool, err := safeAdd(season.PoolBalance, season.EntryFee)
		if err != nil {
			return err
		}
		newCount, err := safeAdd(season.ParticipantCount, 1)
		if err != nil {
			return err
		}

		if err := s.Vaults.depositTx(tx, season.ID, caller, season.EntryFee, models.TransferKindDeposit); err != nil {
			return err
		}
		if err := tx.Model(season).Updates(map[string]interface{}{
			"pool_balance":      newPool,
			"participant_count": newCount,
		}).Error; err != nil {
			return err
		}

		participant := &models.Participant{
			ID:           uuid.NewString(),
			SeasonID:     season.ID,
			Wallet:       caller,
			RegisteredAt: now,
			EntryFeePaid: season.EntryFee,
		}
		if err := tx.Create(participant).Error; err != nil {
			// unique index violation from a concurrent insert
			if strings.Contains(strings.ToLower(err.Error()), "unique") ||
				strings.Contains(strings.ToLower(err.Error()), "duplicate") {
				return models.ErrDuplicateRegistration
			}
			return err
		}
		out = participant
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Printf("[REGISTER] %s joined season %d (fee %d)", caller, seasonNumber, out.EntryFeePaid)
	return out, nil
}

// EmergencyWithdraw refunds the full entry fee, fee-collection state
// notwithstanding. Winners and already-refunded participants are excluded;
// the vault debit guards against over-drain.
func (s *RegistrationService) EmergencyWithdraw(caller string, seasonNumber uint64) (*models.Participant, error) {
	var out *models.Participant
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		season, err := lockSeasonTx(tx, seasonNumber)
		if err != nil {
			return err
		}
		if !season.EmergencyActive {
			return models.ErrEmergencyNotActive
		}
		participant, err := lockParticipantTx(tx, season.ID, caller)
		if err != nil {
			return err
		}
		if participant.EmergencyWithdrawn {
			return models.ErrAlreadyWithdrawn
		}
		if participant.Placement > 0 {
			return models.ErrNotAWinner
		}

		refund := participant.EntryFeePaid
		newPool, err := safeSub(season.PoolBalance, refund)
		if err != nil {
			return err
		}
		if err := s.Vaults.withdrawTx(tx, season.ID, caller, refund, models.TransferKindRefund); err != nil {
			return err
		}
		if err := tx.Model(season).Update("pool_balance", newPool).Error; err != nil {
			return err
		}
		if err := tx.Model(participant).Update("emergency_withdrawn", true).Error; err != nil {
			return err
		}
		participant.EmergencyWithdrawn = true
		out = participant
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Printf("[EMERGENCY] %s withdrew %d from season %d", caller, out.EntryFeePaid, seasonNumber)
	return out, nil
}

// Participant returns the caller's registration record for a season.
func (s *RegistrationService) Participant(wallet string, seasonNumber uint64) (*models.Participant, error) {
	var season models.Season
	err := s.DB.Where("season_number = ?", seasonNumber).First(&season).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.ErrSeasonNotFound
	}
	if err != nil {
		return nil, err
	}
	var p models.Participant
	err = s.DB.Where("season_id = ? AND wallet = ?", season.ID, wallet).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.ErrNotRegistered
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// --- HTTP surface ---

func (s *RegistrationService) RegisterHandler(c *fiber.Ctx) error {
	n, err := strconv.ParseUint(c.Params("number"), 10, 64)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid season number"})
	}
	participant, err := s.Register(callerID(c), n)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(201).JSON(participant)
}

func (s *RegistrationService) EmergencyWithdrawHandler(c *fiber.Ctx) error {
	n, err := strconv.ParseUint(c.Params("number"), 10, 64)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid season number"})
	}
	participant, err := s.EmergencyWithdraw(callerID(c), n)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"message":     "entry fee refunded",
		"participant": participant,
	})
}

func (s *RegistrationService) GetMyParticipant(c *fiber.Ctx) error {
	n, err := strconv.ParseUint(c.Params("number"), 10, 64)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid season number"})
	}
	participant, err := s.Participant(callerID(c), n)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(participant)
}
