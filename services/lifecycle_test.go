package services

import (
	"fmt"
	"testing"
	"time"

	"season-pool-system/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Full happy path: ten participants at 125 each, 20% fee leaves a 1000 pool,
// three winners split 500/300/200, vault drains to zero, close sweeps nothing.
func TestSeasonLifecycle(t *testing.T) {
	env := newTestEnv(t)
	season := env.createSeason(1, 125)

	wallets := make([]string, 10)
	for i := range wallets {
		wallets[i] = fmt.Sprintf("player-%d", i)
		env.registerFunded(wallets[i], 1, 125)
		env.requireReconciled(1)
	}

	s := env.season(1)
	assert.Equal(t, int64(1250), s.PoolBalance)
	assert.Equal(t, int64(10), s.ParticipantCount)

	// fee: 20% of 1250
	env.endRegistration(1)
	s, err := env.prizes.CollectFee("authority", 1)
	require.NoError(t, err)
	assert.Equal(t, int64(250), s.FeeAmount)
	assert.Equal(t, int64(1000), s.PoolBalance)
	assert.Equal(t, int64(250), env.walletBalance("authority"))
	env.requireReconciled(1)

	// winners: 50/30/20 of the post-fee pool
	env.endSeason(1)
	s, err = env.prizes.SetWinners("authority", 1, []string{wallets[0], wallets[1], wallets[2]})
	require.NoError(t, err)
	assert.True(t, s.WinnersSet)
	assert.Equal(t, models.SeasonStatusWinnersSet, s.Status)
	assert.False(t, s.IsActive)

	wantPrizes := []int64{500, 300, 200}
	for i, w := range wallets[:3] {
		p, err := env.registrations.Participant(w, 1)
		require.NoError(t, err)
		assert.Equal(t, i+1, p.Placement)
		assert.Equal(t, wantPrizes[i], p.PrizeAmount)
	}

	for i, w := range wallets[:3] {
		p, err := env.prizes.ClaimPrize(w, 1)
		require.NoError(t, err)
		assert.True(t, p.PrizeClaimed)
		assert.Equal(t, wantPrizes[i], env.walletBalance(w))
		env.requireReconciled(1)
	}

	// 1000 splits exactly, vault empty
	assert.Equal(t, int64(0), env.vaultBalance(season.ID))

	swept, err := env.seasons.CloseSeason("authority", 1)
	require.NoError(t, err)
	assert.Equal(t, int64(0), swept)

	// season and its records are gone
	require.Error(t, env.db.Where("season_number = ?", 1).First(&models.Season{}).Error)
	var participantCount int64
	env.db.Model(&models.Participant{}).Where("season_id = ?", season.ID).Count(&participantCount)
	assert.Equal(t, int64(0), participantCount)
}

// Truncation dust stays in the vault and only closeSeason recovers it.
func TestCloseSeasonSweepsRemainder(t *testing.T) {
	env := newTestEnv(t)
	env.createSeason(1, 111)

	for i := 0; i < 9; i++ {
		env.registerFunded(fmt.Sprintf("p-%d", i), 1, 111)
	}
	// pool 999, fee 199, post-fee pool 800
	env.endRegistration(1)
	s, err := env.prizes.CollectFee("authority", 1)
	require.NoError(t, err)
	assert.Equal(t, int64(199), s.FeeAmount)
	assert.Equal(t, int64(800), s.PoolBalance)

	env.endSeason(1)
	_, err = env.prizes.SetWinners("authority", 1, []string{"p-0", "p-1", "p-2"})
	require.NoError(t, err)

	// 400 + 240 + 160 = 800: clean split. Claim only two of them
	// and let close sweep the rest.
	_, err = env.prizes.ClaimPrize("p-0", 1)
	require.NoError(t, err)
	_, err = env.prizes.ClaimPrize("p-2", 1)
	require.NoError(t, err)
	env.requireReconciled(1)

	authorityBefore := env.walletBalance("authority")
	swept, err := env.seasons.CloseSeason("authority", 1)
	require.NoError(t, err)
	assert.Equal(t, int64(240), swept, "unclaimed second prize swept")
	assert.Equal(t, authorityBefore+240, env.walletBalance("authority"))
}

func TestCreateSeasonValidation(t *testing.T) {
	env := newTestEnv(t)
	now := env.clock.Now()

	base := CreateSeasonParams{
		SeasonNumber:      7,
		Name:              "Valid",
		EntryFee:          100,
		RegistrationStart: now,
		RegistrationEnd:   now.Add(time.Hour),
		SeasonEnd:         now.Add(2 * time.Hour),
	}

	_, err := env.seasons.CreateSeason("rando", base)
	assert.ErrorIs(t, err, models.ErrUnauthorized)

	p := base
	p.Name = "this season name is far too long to be accepted"
	_, err = env.seasons.CreateSeason(env.admin, p)
	assert.ErrorIs(t, err, models.ErrInvalidParameter)

	p = base
	p.EntryFee = 0
	_, err = env.seasons.CreateSeason(env.admin, p)
	assert.ErrorIs(t, err, models.ErrInvalidParameter)

	p = base
	p.RegistrationEnd = p.RegistrationStart
	_, err = env.seasons.CreateSeason(env.admin, p)
	assert.ErrorIs(t, err, models.ErrInvalidParameter)

	p = base
	p.SeasonEnd = p.RegistrationEnd
	_, err = env.seasons.CreateSeason(env.admin, p)
	assert.ErrorIs(t, err, models.ErrInvalidParameter)

	p = base
	p.MaxParticipants = models.MaxParticipants + 1
	_, err = env.seasons.CreateSeason(env.admin, p)
	assert.ErrorIs(t, err, models.ErrInvalidParameter)

	_, err = env.seasons.CreateSeason(env.admin, base)
	require.NoError(t, err)

	// vault exists and is empty
	s := env.season(7)
	assert.Equal(t, int64(0), env.vaultBalance(s.ID))
	assert.Equal(t, models.SeasonStatusRegistration, s.Status)

	_, err = env.seasons.CreateSeason(env.admin, base)
	assert.ErrorIs(t, err, models.ErrDuplicateSeason)
}

func TestCollectFeePreconditionsAndIdempotency(t *testing.T) {
	env := newTestEnv(t)
	env.createSeason(1, 100)

	// before registration ends
	_, err := env.prizes.CollectFee("authority", 1)
	assert.ErrorIs(t, err, models.ErrRegistrationNotEnded)

	// empty pool
	env.endRegistration(1)
	_, err = env.prizes.CollectFee("authority", 1)
	assert.ErrorIs(t, err, models.ErrNoPrizePool)

	// refill: new season with participants
	env.clock.Set(time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC))
	env.createSeason(2, 100)
	for i := 0; i < 10; i++ {
		env.registerFunded(fmt.Sprintf("w-%d", i), 2, 100)
	}
	env.endRegistration(2)

	_, err = env.prizes.CollectFee("intruder", 2)
	assert.ErrorIs(t, err, models.ErrUnauthorized)

	s, err := env.prizes.CollectFee("authority", 2)
	require.NoError(t, err)
	assert.Equal(t, int64(200), s.FeeAmount)
	assert.Equal(t, int64(800), s.PoolBalance)
	env.requireReconciled(2)

	// second call fails and moves no funds
	authorityBalance := env.walletBalance("authority")
	_, err = env.prizes.CollectFee("authority", 2)
	assert.ErrorIs(t, err, models.ErrFeeAlreadyCollected)
	assert.Equal(t, authorityBalance, env.walletBalance("authority"))
	s = env.season(2)
	assert.Equal(t, int64(800), s.PoolBalance)
	env.requireReconciled(2)
}

func TestSetWinnersRules(t *testing.T) {
	env := newTestEnv(t)
	env.createSeason(1, 100)
	for i := 0; i < 5; i++ {
		env.registerFunded(fmt.Sprintf("w-%d", i), 1, 100)
	}

	// before season end
	_, err := env.prizes.SetWinners("authority", 1, []string{"w-0"})
	assert.ErrorIs(t, err, models.ErrSeasonNotEnded)

	env.endSeason(1)

	_, err = env.prizes.SetWinners("authority", 1, nil)
	assert.ErrorIs(t, err, models.ErrInvalidWinnerCount)
	_, err = env.prizes.SetWinners("authority", 1, []string{"w-0", "w-1", "w-2", "w-3"})
	assert.ErrorIs(t, err, models.ErrInvalidWinnerCount)
	_, err = env.prizes.SetWinners("authority", 1, []string{"w-0", "w-0"})
	assert.ErrorIs(t, err, models.ErrInvalidWinnerCount)

	_, err = env.prizes.SetWinners("authority", 1, []string{"w-0", "stranger"})
	assert.ErrorIs(t, err, models.ErrNotRegistered)

	_, err = env.prizes.SetWinners("rando", 1, []string{"w-0"})
	assert.ErrorIs(t, err, models.ErrUnauthorized)

	s, err := env.prizes.SetWinners("authority", 1, []string{"w-3", "w-1"})
	require.NoError(t, err)
	assert.Equal(t, []string{"w-3", "w-1"}, s.Winners())

	// 60/40 of the 500 pool (no fee collected in this test)
	p, err := env.registrations.Participant("w-3", 1)
	require.NoError(t, err)
	assert.Equal(t, 1, p.Placement)
	assert.Equal(t, int64(300), p.PrizeAmount)
	p, err = env.registrations.Participant("w-1", 1)
	require.NoError(t, err)
	assert.Equal(t, 2, p.Placement)
	assert.Equal(t, int64(200), p.PrizeAmount)

	_, err = env.prizes.SetWinners("authority", 1, []string{"w-0"})
	assert.ErrorIs(t, err, models.ErrWinnersAlreadySet)
}

func TestSetWinnersByOracle(t *testing.T) {
	env := newTestEnv(t)
	now := env.clock.Now()
	_, err := env.seasons.CreateSeason(env.admin, CreateSeasonParams{
		SeasonNumber:      1,
		Name:              "Oracle Season",
		EntryFee:          100,
		RegistrationStart: now.Add(-time.Hour),
		RegistrationEnd:   now.Add(time.Hour),
		SeasonEnd:         now.Add(2 * time.Hour),
		Authority:         "authority",
		Oracle:            "oracle",
	})
	require.NoError(t, err)
	env.registerFunded("w-0", 1, 100)

	env.endSeason(1)
	_, err = env.prizes.SetWinners("oracle", 1, []string{"w-0"})
	require.NoError(t, err)
}

func TestClaimPrize(t *testing.T) {
	env := newTestEnv(t)
	env.createSeason(1, 50)
	for i := 0; i < 2; i++ {
		env.registerFunded(fmt.Sprintf("w-%d", i), 1, 50)
	}

	// claims before winners are set
	_, err := env.prizes.ClaimPrize("w-0", 1)
	assert.ErrorIs(t, err, models.ErrWinnersNotSet)

	env.endSeason(1)
	_, err = env.prizes.SetWinners("authority", 1, []string{"w-0", "w-1"})
	require.NoError(t, err)

	// pool 100, two winners: 60/40
	p, err := env.prizes.ClaimPrize("w-0", 1)
	require.NoError(t, err)
	assert.Equal(t, int64(60), p.PrizeAmount)
	assert.Equal(t, int64(60), env.walletBalance("w-0"))
	env.requireReconciled(1)

	// double claim pays nothing
	_, err = env.prizes.ClaimPrize("w-0", 1)
	assert.ErrorIs(t, err, models.ErrPrizeAlreadyClaimed)
	assert.Equal(t, int64(60), env.walletBalance("w-0"))

	// non-winner, non-participant
	_, err = env.prizes.ClaimPrize("stranger", 1)
	assert.ErrorIs(t, err, models.ErrNotRegistered)

	// a third claim by a registered non-winner
	env2 := newTestEnv(t)
	env2.createSeason(9, 50)
	for i := 0; i < 3; i++ {
		env2.registerFunded(fmt.Sprintf("p-%d", i), 9, 50)
	}
	env2.endSeason(9)
	_, err = env2.prizes.SetWinners("authority", 9, []string{"p-0", "p-1"})
	require.NoError(t, err)
	_, err = env2.prizes.ClaimPrize("p-2", 9)
	assert.ErrorIs(t, err, models.ErrNotAWinner)
}

func TestCloseSeasonPreconditions(t *testing.T) {
	env := newTestEnv(t)
	env.createSeason(1, 100)
	env.registerFunded("w-0", 1, 100)

	_, err := env.seasons.CloseSeason("authority", 1)
	assert.ErrorIs(t, err, models.ErrWinnersNotSet)

	env.endSeason(1)
	_, err = env.prizes.SetWinners("authority", 1, []string{"w-0"})
	require.NoError(t, err)

	_, err = env.seasons.CloseSeason("rando", 1)
	assert.ErrorIs(t, err, models.ErrUnauthorized)

	swept, err := env.seasons.CloseSeason("authority", 1)
	require.NoError(t, err)
	assert.Equal(t, int64(100), swept, "unclaimed prize swept on close")

	_, err = env.seasons.CloseSeason("authority", 1)
	assert.ErrorIs(t, err, models.ErrSeasonNotFound)
}
