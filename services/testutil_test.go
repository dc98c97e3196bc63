package services

import (
	"fmt"
	"testing"
	"time"

	"season-pool-system/models"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// fixedClock lets tests move time across season windows deterministically.
type fixedClock struct {
	now time.Time
}

func (c *fixedClock) Now() time.Time { return c.now }

func (c *fixedClock) Set(t time.Time) { c.now = t }

func (c *fixedClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

type testEnv struct {
	t     *testing.T
	db    *gorm.DB
	clock *fixedClock

	wallets       *WalletService
	vaults        *VaultService
	config        *ConfigService
	seasons       *SeasonService
	registrations *RegistrationService
	prizes        *PrizeService

	admin string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.ProgramConfig{},
		&models.Season{},
		&models.Participant{},
		&models.Vault{},
		&models.WalletAccount{},
		&models.TransferRecord{},
	))

	clock := &fixedClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}

	wallets := NewWalletService(db)
	vaults := NewVaultService(wallets)
	config := NewConfigService(db)

	env := &testEnv{
		t:             t,
		db:            db,
		clock:         clock,
		wallets:       wallets,
		vaults:        vaults,
		config:        config,
		seasons:       NewSeasonService(db, clock, config, vaults),
		registrations: NewRegistrationService(db, clock, vaults, AllowAllVerifier{}),
		prizes:        NewPrizeService(db, clock, vaults),
		admin:         "admin-wallet",
	}

	_, err = config.Bootstrap(env.admin)
	require.NoError(t, err)
	return env
}

// fund credits a wallet directly, standing in for an external deposit.
func (e *testEnv) fund(address string, amount int64) {
	e.t.Helper()
	_, err := e.wallets.Credit(e.admin, e.admin, address, amount)
	require.NoError(e.t, err)
}

// createSeason opens a season whose registration window contains the
// current test clock. Authority and fee wallet default to "authority".
func (e *testEnv) createSeason(number uint64, entryFee int64) *models.Season {
	e.t.Helper()
	now := e.clock.Now()
	season, err := e.seasons.CreateSeason(e.admin, CreateSeasonParams{
		SeasonNumber:      number,
		Name:              fmt.Sprintf("Season %d", number),
		EntryFee:          entryFee,
		RegistrationStart: now.Add(-time.Hour),
		RegistrationEnd:   now.Add(71 * time.Hour),
		SeasonEnd:         now.Add(71*time.Hour + 30*24*time.Hour),
		Authority:         "authority",
	})
	require.NoError(e.t, err)
	return season
}

// registerFunded funds a wallet with exactly the entry fee and registers it.
func (e *testEnv) registerFunded(wallet string, seasonNumber uint64, entryFee int64) *models.Participant {
	e.t.Helper()
	e.fund(wallet, entryFee)
	p, err := e.registrations.Register(wallet, seasonNumber)
	require.NoError(e.t, err)
	return p
}

func (e *testEnv) season(number uint64) *models.Season {
	e.t.Helper()
	var s models.Season
	require.NoError(e.t, e.db.Where("season_number = ?", number).First(&s).Error)
	return &s
}

func (e *testEnv) vaultBalance(seasonID string) int64 {
	e.t.Helper()
	var v models.Vault
	require.NoError(e.t, e.db.Where("season_id = ?", seasonID).First(&v).Error)
	return v.Balance
}

func (e *testEnv) walletBalance(address string) int64 {
	e.t.Helper()
	w, err := e.wallets.Balance(address)
	require.NoError(e.t, err)
	return w.Balance
}

// requireReconciled asserts the core accounting invariant: the vault balance
// equals the season's pool balance at every point between operations.
func (e *testEnv) requireReconciled(seasonNumber uint64) {
	e.t.Helper()
	s := e.season(seasonNumber)
	require.Equal(e.t, s.PoolBalance, e.vaultBalance(s.ID), "vault and pool balance drifted")
}

// endRegistration moves the clock just past the registration window.
func (e *testEnv) endRegistration(seasonNumber uint64) {
	e.t.Helper()
	s := e.season(seasonNumber)
	e.clock.Set(s.RegistrationEnd.Add(time.Minute))
}

// endSeason moves the clock past the game period.
func (e *testEnv) endSeason(seasonNumber uint64) {
	e.t.Helper()
	s := e.season(seasonNumber)
	e.clock.Set(s.SeasonEnd.Add(time.Minute))
}
