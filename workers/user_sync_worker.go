package workers

import (
	"context"
	"log"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"tribex-platform/models"
	"tribex-platform/services"
)

// UserSyncWorker mirrors identity-provider accounts into the local
// user_profiles table so registration views can join usernames without
// calling the provider on every request. Locally edited usernames and photos
// are preserved: only provider-owned columns are refreshed on conflict.
type UserSyncWorker struct {
	db       *gorm.DB
	auth     *services.AuthServiceClient
	interval time.Duration
}

func NewUserSyncWorker(db *gorm.DB, auth *services.AuthServiceClient) *UserSyncWorker {
	return &UserSyncWorker{
		db:       db,
		auth:     auth,
		interval: 1 * time.Minute,
	}
}

func (w *UserSyncWorker) Start(ctx context.Context) {
	log.Println("[SYNC] starting user sync worker (identity provider to user_profiles)")
	go w.run(ctx)
}

func (w *UserSyncWorker) run(ctx context.Context) {
	if err := w.syncOnce(ctx); err != nil {
		log.Printf("[SYNC] initial sync failed: %v", err)
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := w.syncOnce(ctx); err != nil {
				log.Printf("[SYNC] sync failed: %v", err)
			}
		case <-ctx.Done():
			log.Println("[SYNC] user sync worker stopped")
			return
		}
	}
}

func (w *UserSyncWorker) syncOnce(ctx context.Context) error {
	users, err := w.auth.ListUsers(ctx)
	if err != nil {
		return err
	}
	if len(users) == 0 {
		return nil
	}

	var upserted, failed int
	for _, remote := range users {
		profile := models.UserProfile{
			ID:        remote.ID,
			Username:  remote.DisplayName,
			Email:     remote.Email,
			PhotoURL:  remote.PhotoURL,
			CreatedAt: remote.CreatedAt,
		}
		err := w.db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"email", "created_at"}),
		}).Create(&profile).Error
		if err != nil {
			failed++
			log.Printf("[SYNC] failed to upsert profile %s: %v", remote.ID, err)
		} else {
			upserted++
		}
	}

	log.Printf("[SYNC] synced %d user(s) (%d upserted, %d errors)", len(users), upserted, failed)
	return nil
}
