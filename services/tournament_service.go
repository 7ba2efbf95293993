package services

import (
	"log"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"tribex-platform/forms"
	"tribex-platform/models"
	"tribex-platform/utils"
)

type TournamentService struct {
	DB      *gorm.DB
	Schemas *forms.SchemaCache
}

func NewTournamentService(db *gorm.DB, schemas *forms.SchemaCache) *TournamentService {
	return &TournamentService{DB: db, Schemas: schemas}
}

// CreateTournament creates a draft tournament from an admin multipart form.
// The banner image goes to R2; everything else is scalar form values.
func (s *TournamentService) CreateTournament(c *fiber.Ctx) error {
	name := c.FormValue("name")
	game := c.FormValue("game")
	description := c.FormValue("description")
	prizeStr := c.FormValue("prize")
	participantsStr := c.FormValue("participants")
	startDateStr := c.FormValue("startDate")
	endDateStr := c.FormValue("endDate")
	publishAtStr := c.FormValue("publishAt")

	if name == "" || game == "" || startDateStr == "" || endDateStr == "" {
		return c.Status(400).JSON(fiber.Map{"error": "name, game, startDate and endDate are required"})
	}

	prize := 0.0
	if prizeStr != "" {
		f, err := strconv.ParseFloat(prizeStr, 64)
		if err != nil || f < 0 {
			return c.Status(400).JSON(fiber.Map{"error": "prize must be a non-negative number"})
		}
		prize = f
	}

	participants := 0
	if participantsStr != "" {
		n, err := strconv.Atoi(participantsStr)
		if err != nil || n < 2 {
			return c.Status(400).JSON(fiber.Map{"error": "participants must be at least 2"})
		}
		participants = n
	}

	startDate, err := time.Parse(time.RFC3339, startDateStr)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid startDate (use RFC3339)"})
	}
	endDate, err := time.Parse(time.RFC3339, endDateStr)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid endDate (use RFC3339)"})
	}
	if !endDate.After(startDate) {
		return c.Status(400).JSON(fiber.Map{"error": "endDate must be after startDate"})
	}

	var publishAt *time.Time
	status := "draft"
	if publishAtStr != "" {
		t, err := time.Parse(time.RFC3339, publishAtStr)
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid publishAt (use RFC3339)"})
		}
		publishAt = &t
		status = "scheduled"
	}

	// Banner → R2
	var imageURL string
	if banner, err := c.FormFile("photo"); err == nil && banner.Size > 0 {
		ext := filepath.Ext(banner.Filename)
		if ext == "" {
			ext = ".jpg"
		}
		key := "tournaments/banners/" + uuid.NewString() + ext
		url, err := utils.UploadFileToR2(banner, key)
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": "failed to upload banner image"})
		}
		imageURL = url
	}

	organizerID, _ := c.Locals("user_id").(string)

	tournament := &models.Tournament{
		ID:           uuid.NewString(),
		Name:         name,
		Game:         game,
		Description:  description,
		Prize:        prize,
		Participants: participants,
		ImageURL:     imageURL,
		OrganizerID:  organizerID,
		Status:       status,
		PublishAt:    publishAt,
		StartDate:    startDate,
		EndDate:      endDate,
	}
	if err := s.DB.Create(tournament).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "DB insert failed"})
	}

	return c.Status(201).JSON(tournament)
}

// GetPublishedTournaments is the public listing.
func (s *TournamentService) GetPublishedTournaments(c *fiber.Ctx) error {
	var tournaments []models.Tournament
	err := s.DB.Where("status = ?", "published").
		Order("start_date DESC").
		Find(&tournaments).Error
	if err != nil {
		log.Printf("ERROR fetching published tournaments: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to fetch tournaments"})
	}
	return c.JSON(tournaments)
}

// GetAllTournaments is the admin listing, drafts included.
func (s *TournamentService) GetAllTournaments(c *fiber.Ctx) error {
	var tournaments []models.Tournament
	if err := s.DB.Order("created_at DESC").Find(&tournaments).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to fetch tournaments"})
	}
	return c.JSON(tournaments)
}

func (s *TournamentService) GetTournamentByID(c *fiber.Ctx) error {
	var tournament models.Tournament
	if err := s.DB.First(&tournament, "id = ?", c.Params("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.Status(404).JSON(fiber.Map{"error": "tournament not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "DB error fetching tournament"})
	}
	return c.JSON(tournament)
}

// UpdateTournament applies a partial JSON update to the scalar columns.
// Registration fields have their own endpoint; status has publish endpoints.
func (s *TournamentService) UpdateTournament(c *fiber.Ctx) error {
	type Req struct {
		Name         *string    `json:"name"`
		Game         *string    `json:"game"`
		Description  *string    `json:"description"`
		Prize        *float64   `json:"prize"`
		Participants *int       `json:"participants"`
		ImageURL     *string    `json:"imageUrl"`
		StartDate    *time.Time `json:"startDate"`
		EndDate      *time.Time `json:"endDate"`
	}

	var tournament models.Tournament
	if err := s.DB.First(&tournament, "id = ?", c.Params("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.Status(404).JSON(fiber.Map{"error": "tournament not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "DB error fetching tournament"})
	}

	var req Req
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON", "details": err.Error()})
	}

	updates := map[string]any{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Game != nil {
		updates["game"] = *req.Game
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Prize != nil {
		updates["prize"] = *req.Prize
	}
	if req.Participants != nil {
		updates["participants"] = *req.Participants
	}
	if req.ImageURL != nil {
		updates["image_url"] = *req.ImageURL
	}
	if req.StartDate != nil {
		updates["start_date"] = *req.StartDate
	}
	if req.EndDate != nil {
		updates["end_date"] = *req.EndDate
	}
	if len(updates) == 0 {
		return c.JSON(tournament)
	}

	if err := s.DB.Model(&tournament).Updates(updates).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "DB update failed"})
	}
	return c.JSON(tournament)
}

// DeleteTournament removes a tournament and cascades its registrations.
func (s *TournamentService) DeleteTournament(c *fiber.Ctx) error {
	id := c.Params("id")
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("tournament_id = ?", id).Delete(&models.Registration{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Tournament{}, "id = ?", id).Error
	})
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to delete tournament"})
	}
	s.Schemas.Invalidate(id)
	return c.JSON(fiber.Map{"success": true})
}

// UpdateRegistrationFields replaces a tournament's registration form
// wholesale. The list is validated up front: unique non-empty names, known
// types. This is the only write path for field definitions.
func (s *TournamentService) UpdateRegistrationFields(c *fiber.Ctx) error {
	type Req struct {
		Fields []forms.FieldDefinition `json:"fields"`
	}

	var tournament models.Tournament
	if err := s.DB.First(&tournament, "id = ?", c.Params("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.Status(404).JSON(fiber.Map{"error": "tournament not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "DB error fetching tournament"})
	}

	var req Req
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON", "details": err.Error()})
	}
	if err := forms.ValidateFieldList(req.Fields); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}

	tournament.RegistrationFields = req.Fields
	if err := s.DB.Model(&tournament).Update("registration_fields", tournament.RegistrationFields).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to save registration fields"})
	}
	return c.JSON(tournament)
}

// PublishNow flips a tournament straight to published.
func (s *TournamentService) PublishNow(c *fiber.Ctx) error {
	return s.setPublishState(c, "published", nil)
}

// SchedulePublish stores a future publish time; the scheduler picks it up.
func (s *TournamentService) SchedulePublish(c *fiber.Ctx) error {
	type Req struct {
		PublishAt time.Time `json:"publishAt"`
	}
	var req Req
	if err := c.BodyParser(&req); err != nil || req.PublishAt.IsZero() {
		return c.Status(400).JSON(fiber.Map{"error": "publishAt (RFC3339) is required"})
	}
	if req.PublishAt.Before(time.Now()) {
		return c.Status(400).JSON(fiber.Map{"error": "publishAt must be in the future"})
	}
	return s.setPublishState(c, "scheduled", &req.PublishAt)
}

// CancelScheduledPublish returns a scheduled tournament to draft.
func (s *TournamentService) CancelScheduledPublish(c *fiber.Ctx) error {
	return s.setPublishState(c, "draft", nil)
}

func (s *TournamentService) setPublishState(c *fiber.Ctx, status string, publishAt *time.Time) error {
	var tournament models.Tournament
	if err := s.DB.First(&tournament, "id = ?", c.Params("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.Status(404).JSON(fiber.Map{"error": "tournament not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "DB error fetching tournament"})
	}

	updates := map[string]any{"status": status, "publish_at": publishAt}
	if err := s.DB.Model(&tournament).Updates(updates).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "DB update failed"})
	}
	return c.JSON(tournament)
}

// GetMyTournaments lists the tournaments the signed-in user has registered
// for, newest start date first.
func (s *TournamentService) GetMyTournaments(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	if userID == "" {
		return c.Status(401).JSON(fiber.Map{"error": "Unauthorized"})
	}

	var registrations []models.Registration
	if err := s.DB.Where("user_id = ?", userID).Find(&registrations).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to fetch registrations"})
	}
	if len(registrations) == 0 {
		return c.JSON([]models.Tournament{})
	}

	ids := make([]string, 0, len(registrations))
	seen := make(map[string]struct{}, len(registrations))
	for _, reg := range registrations {
		if _, dup := seen[reg.TournamentID]; dup {
			continue
		}
		seen[reg.TournamentID] = struct{}{}
		ids = append(ids, reg.TournamentID)
	}

	var tournaments []models.Tournament
	if err := s.DB.Where("id IN ?", ids).Order("start_date DESC").Find(&tournaments).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to fetch tournaments"})
	}
	return c.JSON(tournaments)
}
