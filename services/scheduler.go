package services

import (
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"

	"tribex-platform/models"
)

// StartPublishScheduler promotes scheduled tournaments to published once
// their publish time passes. Runs every minute for the lifetime of the
// process.
func (s *TournamentService) StartPublishScheduler() {
	sched, err := gocron.NewScheduler()
	if err != nil {
		log.Printf("[Scheduler] failed to start: %v", err)
		return
	}
	sched.Start()

	_, _ = sched.NewJob(
		gocron.DurationJob(1*time.Minute),
		gocron.NewTask(s.publishDueTournaments),
	)
}

func (s *TournamentService) publishDueTournaments() {
	var tournaments []models.Tournament
	err := s.DB.Where("status = ? AND publish_at <= ?", "scheduled", time.Now()).
		Find(&tournaments).Error
	if err != nil {
		log.Printf("[Scheduler] DB error: %v", err)
		return
	}

	for _, t := range tournaments {
		t.Status = "published"
		t.PublishAt = nil
		if err := s.DB.Save(&t).Error; err != nil {
			log.Printf("[Scheduler] failed to publish tournament %s: %v", t.ID, err)
		} else {
			log.Printf("[Scheduler] auto-published tournament: %s", t.Name)
		}
	}
}
