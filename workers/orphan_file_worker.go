package workers

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"time"

	"gorm.io/gorm"

	"tribex-platform/models"
	"tribex-platform/utils"
)

// File writes and the registration-record write are not one transaction: a
// crash between the two leaves an artifact on disk that no registration
// references. PollOrphanFiles sweeps the uploads directory periodically and
// deletes such files once they are older than minAge. The grace period keeps
// the sweep from racing an in-flight registration that has staged its files
// but not yet committed its record.
func PollOrphanFiles(ctx context.Context, db *gorm.DB, interval, minAge time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := sweepOrphanFiles(db, minAge); err != nil {
				log.Printf("[ORPHANS] sweep failed: %v", err)
			}
		case <-ctx.Done():
			log.Println("[ORPHANS] orphan file worker stopped")
			return
		}
	}
}

func sweepOrphanFiles(db *gorm.DB, minAge time.Duration) error {
	entries, err := os.ReadDir(utils.UploadDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	cutoff := time.Now().Add(-minAge)
	var removed int
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}

		publicPath := "/uploads/" + entry.Name()
		var refs int64
		err = db.Model(&models.Registration{}).
			Where("CAST(custom_data AS TEXT) LIKE ?", "%"+publicPath+"%").
			Count(&refs).Error
		if err != nil {
			log.Printf("[ORPHANS] reference check failed for %s: %v", publicPath, err)
			continue
		}
		if refs > 0 {
			continue
		}

		if err := os.Remove(filepath.Join(utils.UploadDir, entry.Name())); err != nil {
			log.Printf("[ORPHANS] failed to remove %s: %v", entry.Name(), err)
			continue
		}
		removed++
	}

	if removed > 0 {
		log.Printf("[ORPHANS] removed %d unreferenced upload(s)", removed)
	}
	return nil
}
