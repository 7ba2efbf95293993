package services

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"tribex-platform/models"
)

type LeaderboardService struct {
	DB *gorm.DB
}

func NewLeaderboardService(db *gorm.DB) *LeaderboardService {
	return &LeaderboardService{DB: db}
}

// GetLeaderboard returns standings ordered by points, rank assigned at read
// time so manual point edits never leave stale ranks behind.
func (s *LeaderboardService) GetLeaderboard(c *fiber.Ctx) error {
	game := c.Query("game")

	db := s.DB.Model(&models.LeaderboardEntry{}).Order("points DESC")
	if game != "" {
		db = db.Where("game = ?", game)
	}

	var entries []models.LeaderboardEntry
	if err := db.Find(&entries).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to fetch leaderboard"})
	}

	type rankedEntry struct {
		Rank int `json:"rank"`
		models.LeaderboardEntry
	}
	ranked := make([]rankedEntry, len(entries))
	for i, e := range entries {
		ranked[i] = rankedEntry{Rank: i + 1, LeaderboardEntry: e}
	}
	return c.JSON(ranked)
}

// UpsertEntry creates or updates one player's standing for a game.
func (s *LeaderboardService) UpsertEntry(c *fiber.Ctx) error {
	type Req struct {
		Game    string `json:"game" validate:"required"`
		Name    string `json:"name" validate:"required"`
		Points  int64  `json:"points"`
		WinRate string `json:"winRate"`
		Trend   string `json:"trend" validate:"omitempty,oneof=up down stable"`
	}

	var req Req
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON", "details": err.Error()})
	}
	if err := validateRequest.Struct(req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "validation failed", "details": err.Error()})
	}
	if req.Trend == "" {
		req.Trend = "stable"
	}

	entry := models.LeaderboardEntry{
		ID:         uuid.NewString(),
		Game:       req.Game,
		PlayerName: req.Name,
		Points:     req.Points,
		WinRate:    req.WinRate,
		Trend:      req.Trend,
	}
	err := s.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "game"}, {Name: "player_name"}},
		DoUpdates: clause.AssignmentColumns([]string{"points", "win_rate", "trend", "updated_at"}),
	}).Create(&entry).Error
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to save leaderboard entry"})
	}
	return c.JSON(entry)
}

// ResetLeaderboard wipes a game's standings. Irreversible.
func (s *LeaderboardService) ResetLeaderboard(c *fiber.Ctx) error {
	game := c.Params("game")
	if game == "" {
		return c.Status(400).JSON(fiber.Map{"error": "game is required"})
	}
	if err := s.DB.Where("game = ?", game).Delete(&models.LeaderboardEntry{}).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to reset leaderboard"})
	}
	return c.JSON(fiber.Map{"success": true})
}
