// services/scheduler.go
package services

import (
	"log"
	"time"

	"season-pool-system/models"

	"github.com/go-co-op/gocron/v2"
)

// StartStatusScheduler advances stored season statuses as their windows
// pass. Every operation re-derives the status from the clock anyway; this
// job only keeps the listing views fresh between operations.
func (s *SeasonService) StartStatusScheduler() {
	sched, _ := gocron.NewScheduler()
	sched.Start()

	_, _ = sched.NewJob(
		gocron.DurationJob(1*time.Minute),
		gocron.NewTask(func() {
			now := s.Clock.Now()

			res := s.DB.Model(&models.Season{}).
				Where("status = ? AND registration_end <= ? AND winners_set = false", models.SeasonStatusRegistration, now).
				Update("status", models.SeasonStatusActive)
			if res.Error != nil {
				log.Printf("[Scheduler] DB error: %v", res.Error)
				return
			}
			if res.RowsAffected > 0 {
				log.Printf("[Scheduler] %d season(s) moved to active", res.RowsAffected)
			}

			res = s.DB.Model(&models.Season{}).
				Where("status = ? AND season_end < ? AND winners_set = false", models.SeasonStatusActive, now).
				Update("status", models.SeasonStatusEnded)
			if res.Error != nil {
				log.Printf("[Scheduler] DB error: %v", res.Error)
				return
			}
			if res.RowsAffected > 0 {
				log.Printf("[Scheduler] %d season(s) moved to ended", res.RowsAffected)
			}
		}),
	)
}
