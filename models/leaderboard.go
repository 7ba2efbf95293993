package models

import "time"

// LeaderboardEntry is one player's standing on a per-game leaderboard,
// maintained manually by admins.
type LeaderboardEntry struct {
	ID         string    `json:"id" gorm:"primaryKey"`
	Game       string    `json:"game" gorm:"not null;index;uniqueIndex:idx_leaderboard_game_player"`
	PlayerName string    `json:"name" gorm:"not null;uniqueIndex:idx_leaderboard_game_player"`
	Points     int64     `json:"points" gorm:"default:0"`
	WinRate    string    `json:"winRate"`
	Trend      string    `json:"trend" gorm:"default:'stable'"` // up, down, stable
	UpdatedAt  time.Time `json:"updatedAt" gorm:"autoUpdateTime"`
}
