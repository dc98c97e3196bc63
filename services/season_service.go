// services/season_service.go
package services

import (
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"strconv"
	"time"

	"season-pool-system/models"
	"season-pool-system/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	maxRegistrationHours = 72
	maxGameDays          = 30
)

// SeasonService owns season creation and the authority-side lifecycle
// operations: timing updates, emergency stop, and close.
type SeasonService struct {
	DB     *gorm.DB
	Clock  Clock
	Config *ConfigService
	Vaults *VaultService
}

func NewSeasonService(db *gorm.DB, clock Clock, config *ConfigService, vaults *VaultService) *SeasonService {
	return &SeasonService{DB: db, Clock: clock, Config: config, Vaults: vaults}
}

// lockSeasonTx loads a season row FOR UPDATE by its number. Every lifecycle
// operation goes through this, so independently submitted operations against
// the same season serialize at the row lock.
func lockSeasonTx(tx *gorm.DB, seasonNumber uint64) (*models.Season, error) {
	var season models.Season
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("season_number = ?", seasonNumber).
		First(&season).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.ErrSeasonNotFound
	}
	if err != nil {
		return nil, err
	}
	return &season, nil
}

// effectiveStatus derives the lifecycle status from the clock. Stored status
// is advanced lazily by operations and by the status worker; correctness
// never depends on the worker having run.
func effectiveStatus(season *models.Season, now time.Time) string {
	if season.WinnersSet {
		return models.SeasonStatusWinnersSet
	}
	if now.After(season.SeasonEnd) {
		return models.SeasonStatusEnded
	}
	if !now.Before(season.RegistrationEnd) {
		return models.SeasonStatusActive
	}
	return models.SeasonStatusRegistration
}

// syncStatusTx writes the derived status back when it has drifted.
func syncStatusTx(tx *gorm.DB, season *models.Season, now time.Time) error {
	status := effectiveStatus(season, now)
	if status == season.Status {
		return nil
	}
	season.Status = status
	return tx.Model(season).Update("status", status).Error
}

// CreateSeasonParams carries validated creation input.
type CreateSeasonParams struct {
	SeasonNumber      uint64
	Name              string
	EntryFee          int64
	MaxParticipants   int64
	RegistrationStart time.Time
	RegistrationEnd   time.Time
	SeasonEnd         time.Time
	Authority         string
	Oracle            string
	FeeWallet         string
	BannerURL         string
}

// CreateSeason writes a new season plus its empty vault. Global admin only.
func (s *SeasonService) CreateSeason(caller string, p CreateSeasonParams) (*models.Season, error) {
	admin, err := s.Config.AdminAddress()
	if err != nil {
		return nil, err
	}
	if caller != admin {
		return nil, models.ErrUnauthorized
	}
	if p.Name == "" || len(p.Name) > models.MaxSeasonNameLen {
		return nil, models.ErrInvalidParameter
	}
	if p.EntryFee <= 0 {
		return nil, models.ErrInvalidParameter
	}
	if !p.RegistrationStart.Before(p.RegistrationEnd) || !p.RegistrationEnd.Before(p.SeasonEnd) {
		return nil, models.ErrInvalidParameter
	}
	if p.MaxParticipants == 0 {
		p.MaxParticipants = models.MaxParticipants
	}
	if p.MaxParticipants < 1 || p.MaxParticipants > models.MaxParticipants {
		return nil, models.ErrInvalidParameter
	}
	authority := p.Authority
	if authority == "" {
		authority = caller
	}
	feeWallet := p.FeeWallet
	if feeWallet == "" {
		feeWallet = authority
	}

	season := &models.Season{
		ID:                uuid.NewString(),
		SeasonNumber:      p.SeasonNumber,
		Slug:              slug.Make(p.Name),
		Name:              p.Name,
		Authority:         authority,
		Oracle:            p.Oracle,
		FeeWallet:         feeWallet,
		BannerURL:         p.BannerURL,
		EntryFee:          p.EntryFee,
		PoolBalance:       0,
		ParticipantCount:  0,
		MaxParticipants:   p.MaxParticipants,
		RegistrationStart: p.RegistrationStart,
		RegistrationEnd:   p.RegistrationEnd,
		SeasonEnd:         p.SeasonEnd,
		Status:            models.SeasonStatusRegistration,
		IsActive:          true,
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		var existing models.Season
		if err := tx.Where("season_number = ?", p.SeasonNumber).First(&existing).Error; err == nil {
			return models.ErrDuplicateSeason
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if err := tx.Create(season).Error; err != nil {
			return err
		}
		return s.Vaults.createTx(tx, season.ID)
	})
	if err != nil {
		return nil, err
	}
	log.Printf("[SEASON] season %d (%s) created by %s", season.SeasonNumber, season.Name, caller)
	return season, nil
}

// UpdateTimings rewrites the registration and game windows. Authority only,
// and only before the game period begins. If registration is already open
// the registration end is re-anchored to now; otherwise to the original
// registration start. The game window always begins at the new registration
// end.
func (s *SeasonService) UpdateTimings(caller string, seasonNumber uint64, registrationHours, gameDays int) (*models.Season, error) {
	if registrationHours < 1 || registrationHours > maxRegistrationHours {
		return nil, models.ErrInvalidParameter
	}
	if gameDays < 1 || gameDays > maxGameDays {
		return nil, models.ErrInvalidParameter
	}
	var out *models.Season
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		season, err := lockSeasonTx(tx, seasonNumber)
		if err != nil {
			return err
		}
		if caller != season.Authority {
			return models.ErrUnauthorized
		}
		now := s.Clock.Now()
		if !now.Before(season.RegistrationEnd) {
			return models.ErrStateConflict
		}

		regDuration := time.Duration(registrationHours) * time.Hour
		gameDuration := time.Duration(gameDays) * 24 * time.Hour

		regEnd := season.RegistrationStart.Add(regDuration)
		if !now.Before(season.RegistrationStart) {
			// already inside registration: extend or shrink relative to now
			regEnd = now.Add(regDuration)
		}
		season.RegistrationEnd = regEnd
		season.SeasonEnd = regEnd.Add(gameDuration)

		if err := tx.Model(season).Updates(map[string]interface{}{
			"registration_end": season.RegistrationEnd,
			"season_end":       season.SeasonEnd,
		}).Error; err != nil {
			return err
		}
		out = season
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Printf("[SEASON] season %d timings updated: registration %dh, game %dd", seasonNumber, registrationHours, gameDays)
	return out, nil
}

// EmergencyStop raises the emergency flag, unlocking full refunds. It has no
// other effect; the season record stays as it was.
func (s *SeasonService) EmergencyStop(caller string, seasonNumber uint64) (*models.Season, error) {
	var out *models.Season
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		season, err := lockSeasonTx(tx, seasonNumber)
		if err != nil {
			return err
		}
		if caller != season.Authority {
			return models.ErrUnauthorized
		}
		if season.EmergencyActive {
			return models.ErrEmergencyAlreadyActive
		}
		season.EmergencyActive = true
		if err := tx.Model(season).Update("emergency_active", true).Error; err != nil {
			return err
		}
		out = season
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Printf("[SEASON] emergency stop activated for season %d", seasonNumber)
	return out, nil
}

// CloseSeason sweeps the vault remainder (claim truncation dust plus any
// unclaimed prizes) to the authority, then removes the season, its vault,
// and its participant records. Journal rows remain.
func (s *SeasonService) CloseSeason(caller string, seasonNumber uint64) (int64, error) {
	var swept int64
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		season, err := lockSeasonTx(tx, seasonNumber)
		if err != nil {
			return err
		}
		if caller != season.Authority {
			return models.ErrUnauthorized
		}
		if !season.WinnersSet {
			return models.ErrWinnersNotSet
		}
		if season.IsActive {
			return models.ErrSeasonStillActive
		}

		swept, err = s.Vaults.drainTx(tx, season.ID, season.Authority)
		if err != nil {
			return err
		}
		if err := tx.Where("season_id = ?", season.ID).Delete(&models.Participant{}).Error; err != nil {
			return err
		}
		if err := s.Vaults.deleteTx(tx, season.ID); err != nil {
			return err
		}
		return tx.Delete(season).Error
	})
	if err != nil {
		return 0, err
	}
	log.Printf("[SEASON] season %d closed, %d swept to authority", seasonNumber, swept)
	return swept, nil
}

// --- HTTP surface ---

func (s *SeasonService) CreateSeasonHandler(c *fiber.Ctx) error {
	p := CreateSeasonParams{
		Name:      c.FormValue("name"),
		Authority: c.FormValue("authority"),
		Oracle:    c.FormValue("oracle"),
		FeeWallet: c.FormValue("fee_wallet"),
	}

	n, err := strconv.ParseUint(c.FormValue("season_number"), 10, 64)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "season_number must be a positive integer"})
	}
	p.SeasonNumber = n

	fee, err := strconv.ParseInt(c.FormValue("entry_fee"), 10, 64)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "entry_fee must be an integer amount in base units"})
	}
	p.EntryFee = fee

	if v := c.FormValue("max_participants"); v != "" {
		mp, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "max_participants must be an integer"})
		}
		p.MaxParticipants = mp
	}

	for field, dst := range map[string]*time.Time{
		"registration_start": &p.RegistrationStart,
		"registration_end":   &p.RegistrationEnd,
		"season_end":         &p.SeasonEnd,
	} {
		t, err := time.Parse(time.RFC3339, c.FormValue(field))
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": fmt.Sprintf("invalid %s (use RFC3339)", field)})
		}
		*dst = t
	}

	// Optional banner image -> R2
	if banner, err := c.FormFile("banner"); err == nil && banner.Size > 0 {
		ext := filepath.Ext(banner.Filename)
		if ext == "" {
			ext = ".jpg"
		}
		key := "seasons/banners/" + slug.Make(p.Name) + "-" + uuid.NewString() + ext
		url, err := utils.UploadFileToR2(banner, key)
		if err != nil {
			log.Printf("ERROR uploading season banner: %v", err)
			return c.Status(500).JSON(fiber.Map{"error": "failed to upload banner"})
		}
		p.BannerURL = url
	}

	season, err := s.CreateSeason(callerID(c), p)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(201).JSON(season)
}

func (s *SeasonService) GetAllSeasonsMini(c *fiber.Ctx) error {
	var seasons []models.Season
	if err := s.DB.Order("season_number DESC").Find(&seasons).Error; err != nil {
		log.Printf("ERROR fetching seasons: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to fetch seasons"})
	}
	now := s.Clock.Now()
	out := make([]models.MiniSeason, 0, len(seasons))
	for _, season := range seasons {
		out = append(out, models.MiniSeason{
			ID:                season.ID,
			SeasonNumber:      season.SeasonNumber,
			Slug:              season.Slug,
			Name:              season.Name,
			Status:            effectiveStatus(&season, now),
			BannerURL:         season.BannerURL,
			EntryFee:          season.EntryFee,
			PoolBalance:       season.PoolBalance,
			ParticipantCount:  season.ParticipantCount,
			MaxParticipants:   season.MaxParticipants,
			RegistrationStart: season.RegistrationStart,
			RegistrationEnd:   season.RegistrationEnd,
			SeasonEnd:         season.SeasonEnd,
			WinnersSet:        season.WinnersSet,
			EmergencyActive:   season.EmergencyActive,
		})
	}
	return c.JSON(out)
}

func (s *SeasonService) GetSeasonByNumber(c *fiber.Ctx) error {
	n, err := strconv.ParseUint(c.Params("number"), 10, 64)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid season number"})
	}
	var season models.Season
	if err := s.DB.
		Preload("Participants", func(db *gorm.DB) *gorm.DB {
			return db.Order("registered_at ASC")
		}).
		Where("season_number = ?", n).
		First(&season).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return respondError(c, models.ErrSeasonNotFound)
		}
		return respondError(c, err)
	}
	season.Status = effectiveStatus(&season, s.Clock.Now())
	return c.JSON(season)
}

func (s *SeasonService) UpdateTimingsHandler(c *fiber.Ctx) error {
	type Req struct {
		RegistrationHours int `json:"registration_hours"`
		GameDays          int `json:"game_days"`
	}
	n, err := strconv.ParseUint(c.Params("number"), 10, 64)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid season number"})
	}
	var req Req
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON"})
	}
	season, err := s.UpdateTimings(callerID(c), n, req.RegistrationHours, req.GameDays)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(season)
}

func (s *SeasonService) EmergencyStopHandler(c *fiber.Ctx) error {
	n, err := strconv.ParseUint(c.Params("number"), 10, 64)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid season number"})
	}
	season, err := s.EmergencyStop(callerID(c), n)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(season)
}

func (s *SeasonService) CloseSeasonHandler(c *fiber.Ctx) error {
	n, err := strconv.ParseUint(c.Params("number"), 10, 64)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid season number"})
	}
	swept, err := s.CloseSeason(callerID(c), n)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "season closed", "swept_amount": swept})
}
