package services

import (
	"encoding/json"
	"log"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"tribex-platform/forms"
	"tribex-platform/models"
	"tribex-platform/utils"
)

// RegistrationService owns the registration pipeline: the multipart intake
// endpoint, the admin registration views, and the CSV export. It shares one
// SchemaCache with the tournament service so both sides validate against the
// same compiled descriptors.
type RegistrationService struct {
	DB      *gorm.DB
	Schemas *forms.SchemaCache
}

func NewRegistrationService(db *gorm.DB, schemas *forms.SchemaCache) *RegistrationService {
	return &RegistrationService{DB: db, Schemas: schemas}
}

// Register accepts one multipart registration submission.
//
// The body carries tournamentId, userId, a JSON copy of the field definitions
// (so required files can be re-checked without re-fetching the tournament),
// the non-file values as a JSON customData part, and one binary part per
// file-typed field named after the field. Validation runs before any file is
// written, so a rejected submission never leaves artifacts behind; a failed
// record write compensates by deleting every file stored for this request.
func (s *RegistrationService) Register(c *fiber.Ctx) error {
	tournamentID := c.FormValue("tournamentId")
	userID := c.FormValue("userId")
	fieldsJSON := c.FormValue("registrationFields")
	customJSON := c.FormValue("customData")
	if tournamentID == "" || userID == "" || fieldsJSON == "" || customJSON == "" {
		return c.Status(400).JSON(fiber.Map{
			"success": false,
			"error":   "Missing required form data or user not authenticated.",
		})
	}

	var fields []forms.FieldDefinition
	if err := json.Unmarshal([]byte(fieldsJSON), &fields); err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "invalid registrationFields JSON"})
	}
	var customData map[string]any
	if err := json.Unmarshal([]byte(customJSON), &customData); err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "invalid customData JSON"})
	}

	hasFile := func(name string) bool {
		fh, err := c.FormFile(name)
		return err == nil && fh.Size > 0
	}

	// Server-side re-validation through the same compiler the client uses.
	// The server is the authority on required files: only here do the binary
	// parts actually exist.
	schema := s.Schemas.Get(tournamentID, fields)
	cleaned, fieldErrs := schema.Validate(customData, hasFile)
	if fieldErrs != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": fieldErrs.Error()})
	}

	// One registration per user per tournament. The composite unique index
	// is the backstop for racing requests; this check gives a clean 409.
	var existing int64
	if err := s.DB.Model(&models.Registration{}).
		Where("tournament_id = ? AND user_id = ?", tournamentID, userID).
		Count(&existing).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"success": false, "error": "Failed to process registration."})
	}
	if existing > 0 {
		return c.Status(409).JSON(fiber.Map{
			"success": false,
			"error":   "You are already registered for this tournament.",
		})
	}

	var written []string
	cleanup := func() {
		for _, p := range written {
			if err := os.Remove(p); err != nil {
				log.Printf("[REGISTER] failed to remove staged file %s: %v", p, err)
			}
		}
	}

	for _, f := range fields {
		if !f.Type.IsFile() {
			continue
		}
		fh, err := c.FormFile(f.Name)
		if err != nil || fh.Size == 0 {
			// Optional file left empty; required absence was rejected above.
			continue
		}
		filename := utils.UploadFilename(fh.Filename)
		dest := utils.GetUploadPath(filename)
		if err := utils.SaveFile(fh, dest); err != nil {
			log.Printf("[REGISTER] failed to store file for %q: %v", f.Name, err)
			cleanup()
			return c.Status(500).JSON(fiber.Map{"success": false, "error": "Failed to store uploaded file."})
		}
		written = append(written, dest)
		cleaned[f.Name] = "/uploads/" + filename
	}

	registration := &models.Registration{
		ID:           uuid.NewString(),
		TournamentID: tournamentID,
		UserID:       userID,
		CustomData:   datatypes.JSONMap(cleaned),
		RegisteredAt: time.Now().UTC(),
	}
	if err := s.DB.Create(registration).Error; err != nil {
		log.Printf("[REGISTER] failed to persist registration for tournament %s: %v", tournamentID, err)
		cleanup()
		return c.Status(500).JSON(fiber.Map{"success": false, "error": "Failed to process registration."})
	}

	return c.JSON(fiber.Map{
		"success":        true,
		"registrationId": registration.ID,
		"customData":     registration.CustomData,
	})
}

// GetRegistrations returns the joined admin view for one tournament:
// registrations in store order with usernames resolved from the local
// identity mirror, plus the field list so the UI can derive its columns.
func (s *RegistrationService) GetRegistrations(c *fiber.Ctx) error {
	tournamentID := c.Params("id")

	var tournament models.Tournament
	if err := s.DB.First(&tournament, "id = ?", tournamentID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.Status(404).JSON(fiber.Map{"error": "tournament not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "DB error fetching tournament"})
	}

	registrations, err := s.registrationsInOrder(tournamentID)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to fetch registrations"})
	}
	profiles := s.profileMap()

	rows := make([]fiber.Map, 0, len(registrations))
	for _, reg := range registrations {
		rows = append(rows, fiber.Map{
			"id":           reg.ID,
			"userId":       reg.UserID,
			"username":     usernameFor(profiles, reg.UserID),
			"registeredAt": reg.RegisteredAt,
			"customData":   reg.CustomData,
		})
	}

	return c.JSON(fiber.Map{
		"tournamentId":  tournament.ID,
		"fields":        tournament.RegistrationFields,
		"registrations": rows,
	})
}

func (s *RegistrationService) registrationsInOrder(tournamentID string) ([]models.Registration, error) {
	var registrations []models.Registration
	err := s.DB.Where("tournament_id = ?", tournamentID).
		Order("registered_at ASC").
		Find(&registrations).Error
	return registrations, err
}

// profileMap loads the identity mirror. A failed fetch degrades to an empty
// set — every row renders as "Guest" — rather than failing the whole view.
func (s *RegistrationService) profileMap() map[string]models.UserProfile {
	var profiles []models.UserProfile
	if err := s.DB.Find(&profiles).Error; err != nil {
		log.Printf("[REGISTRATIONS] identity fetch failed, rendering all rows as Guest: %v", err)
		return map[string]models.UserProfile{}
	}
	byID := make(map[string]models.UserProfile, len(profiles))
	for _, p := range profiles {
		byID[p.ID] = p
	}
	return byID
}

func usernameFor(profiles map[string]models.UserProfile, userID string) string {
	if p, ok := profiles[userID]; ok && p.Username != "" {
		return p.Username
	}
	return "Guest"
}
