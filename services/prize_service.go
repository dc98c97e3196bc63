// services/prize_service.go
package services

import (
	"log"
	"strconv"

	"season-pool-system/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// PrizeService handles the money-out half of the lifecycle: the upfront
// platform fee, winner assignment with frozen payout amounts, and claims.
type PrizeService struct {
	DB     *gorm.DB
	Clock  Clock
	Vaults *VaultService
}

func NewPrizeService(db *gorm.DB, clock Clock, vaults *VaultService) *PrizeService {
	return &PrizeService{DB: db, Clock: clock, Vaults: vaults}
}

// CollectFee skims the platform cut off the pool exactly once, after
// registration closes. The fee is collected upfront, independent of any
// per-claim payout, so the later prize split always works off the post-fee
// pool.
func (s *PrizeService) CollectFee(caller string, seasonNumber uint64) (*models.Season, error) {
	var out *models.Season
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		season, err := lockSeasonTx(tx, seasonNumber)
		if err != nil {
			return err
		}
		if caller != season.Authority {
			return models.ErrUnauthorized
		}
		if season.FeeCollected {
			return models.ErrFeeAlreadyCollected
		}
		now := s.Clock.Now()
		if !now.After(season.RegistrationEnd) {
			return models.ErrRegistrationNotEnded
		}
		if season.PoolBalance <= 0 {
			return models.ErrNoPrizePool
		}
		if err := syncStatusTx(tx, season, now); err != nil {
			return err
		}

		feeAmount, err := PlatformFee(season.PoolBalance)
		if err != nil {
			return err
		}
		newPool, err := safeSub(season.PoolBalance, feeAmount)
		if err != nil {
			return err
		}

		if err := s.Vaults.withdrawTx(tx, season.ID, season.FeeWallet, feeAmount, models.TransferKindFee); err != nil {
			return err
		}
		if err := tx.Model(season).Updates(map[string]interface{}{
			"pool_balance":  newPool,
			"fee_collected": true,
			"fee_amount":    feeAmount,
		}).Error; err != nil {
			return err
		}
		season.PoolBalance = newPool
		season.FeeCollected = true
		season.FeeAmount = feeAmount
		out = season
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Printf("[FEE] season %d fee collected: %d to %s, pool now %d",
		seasonNumber, out.FeeAmount, out.FeeWallet, out.PoolBalance)
	return out, nil
}

// SetWinners freezes ranks and exact payable amounts into the winners'
// participant records. Authority or oracle, once, after the season ends.
// Amounts are computed from the pool as it stands now, so the fee must be
// collected first if the treasury is to be paid at all.
func (s *PrizeService) SetWinners(caller string, seasonNumber uint64, rankedWallets []string) (*models.Season, error) {
	if len(rankedWallets) < 1 || len(rankedWallets) > models.MaxWinners {
		return nil, models.ErrInvalidWinnerCount
	}
	seen := make(map[string]bool, len(rankedWallets))
	for _, w := range rankedWallets {
		if w == "" || seen[w] {
			return nil, models.ErrInvalidWinnerCount
		}
		seen[w] = true
	}

	var out *models.Season
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		season, err := lockSeasonTx(tx, seasonNumber)
		if err != nil {
			return err
		}
		if caller != season.Authority && (season.Oracle == "" || caller != season.Oracle) {
			return models.ErrUnauthorized
		}
		now := s.Clock.Now()
		if !season.HasEnded(now) {
			return models.ErrSeasonNotEnded
		}
		if season.WinnersSet {
			return models.ErrWinnersAlreadySet
		}

		winnerCount := len(rankedWallets)
		for i, wallet := range rankedWallets {
			rank := i + 1
			participant, err := lockParticipantTx(tx, season.ID, wallet)
			if err != nil {
				return err
			}
			prize, err := PrizeShare(season.PoolBalance, winnerCount, rank)
			if err != nil {
				return err
			}
			if err := tx.Model(participant).Updates(map[string]interface{}{
				"placement":    rank,
				"prize_amount": prize,
			}).Error; err != nil {
				return err
			}
		}

		winners := [models.MaxWinners]string{}
		copy(winners[:], rankedWallets)
		if err := tx.Model(season).Updates(map[string]interface{}{
			"winners_set":  true,
			"winner_count": winnerCount,
			"winner1":      winners[0],
			"winner2":      winners[1],
			"winner3":      winners[2],
			"status":       models.SeasonStatusWinnersSet,
			"is_active":    false,
		}).Error; err != nil {
			return err
		}
		season.WinnersSet = true
		season.WinnerCount = winnerCount
		season.Winner1, season.Winner2, season.Winner3 = winners[0], winners[1], winners[2]
		season.Status = models.SeasonStatusWinnersSet
		season.IsActive = false
		out = season
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Printf("[WINNERS] season %d: %d winners set", seasonNumber, out.WinnerCount)
	return out, nil
}

// ClaimPrize pays a winner their frozen amount. The claimed-flag check, the
// vault debit, and the flag flip are one transaction, so a double-submitted
// claim pays at most once.
func (s *PrizeService) ClaimPrize(caller string, seasonNumber uint64) (*models.Participant, error) {
	var out *models.Participant
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		season, err := lockSeasonTx(tx, seasonNumber)
		if err != nil {
			return err
		}
		if !season.WinnersSet {
			return models.ErrWinnersNotSet
		}
		participant, err := lockParticipantTx(tx, season.ID, caller)
		if err != nil {
			return err
		}
		if participant.Placement == 0 {
			return models.ErrNotAWinner
		}
		if participant.PrizeClaimed {
			return models.ErrPrizeAlreadyClaimed
		}
		if participant.PrizeAmount <= 0 {
			return models.ErrInvalidPlacement
		}

		// Keeps pool == vault at every checkpoint. The vault check itself
		// must never fire under correct accounting.
		newPool, err := safeSub(season.PoolBalance, participant.PrizeAmount)
		if err != nil {
			return err
		}
		if err := s.Vaults.withdrawTx(tx, season.ID, caller, participant.PrizeAmount, models.TransferKindPrize); err != nil {
			return err
		}
		if err := tx.Model(season).Update("pool_balance", newPool).Error; err != nil {
			return err
		}
		if err := tx.Model(participant).Update("prize_claimed", true).Error; err != nil {
			return err
		}
		participant.PrizeClaimed = true
		out = participant
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Printf("[CLAIM] %s claimed %d from season %d (placement %d)",
		caller, out.PrizeAmount, seasonNumber, out.Placement)
	return out, nil
}

// --- HTTP surface ---

func (s *PrizeService) CollectFeeHandler(c *fiber.Ctx) error {
	n, err := strconv.ParseUint(c.Params("number"), 10, 64)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid season number"})
	}
	season, err := s.CollectFee(callerID(c), n)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(season)
}

func (s *PrizeService) SetWinnersHandler(c *fiber.Ctx) error {
	type Req struct {
		Winners []string `json:"winners"`
	}
	n, err := strconv.ParseUint(c.Params("number"), 10, 64)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid season number"})
	}
	var req Req
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON"})
	}
	season, err := s.SetWinners(callerID(c), n, req.Winners)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(season)
}

func (s *PrizeService) ClaimPrizeHandler(c *fiber.Ctx) error {
	n, err := strconv.ParseUint(c.Params("number"), 10, 64)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid season number"})
	}
	participant, err := s.ClaimPrize(callerID(c), n)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"message":     "prize claimed",
		"participant": participant,
	})
}
