package services

import (
	"fmt"
	"log"
	"sort"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"tribex-platform/models"
)

type UserService struct {
	DB   *gorm.DB
	Auth *AuthServiceClient
}

func NewUserService(db *gorm.DB, auth *AuthServiceClient) *UserService {
	return &UserService{DB: db, Auth: auth}
}

// GetUsers merges the identity provider's account list with the local
// profile documents: a locally edited username or photo wins over the
// provider's values. Sorted by account creation time, newest first.
func (s *UserService) GetUsers(c *fiber.Ctx) error {
	authUsers, err := s.Auth.ListUsers(c.Context())
	if err != nil {
		log.Printf("[USERS] failed to fetch identity list: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch users", "details": err.Error()})
	}

	var profiles []models.UserProfile
	if err := s.DB.Find(&profiles).Error; err != nil {
		log.Printf("[USERS] profile fetch failed, using provider data only: %v", err)
	}
	byID := make(map[string]models.UserProfile, len(profiles))
	for _, p := range profiles {
		byID[p.ID] = p
	}

	type mergedUser struct {
		ID        string `json:"id"`
		Email     string `json:"email"`
		Username  string `json:"username"`
		PhotoURL  string `json:"photoURL,omitempty"`
		CreatedAt int64  `json:"createdAt"`
	}

	merged := make([]mergedUser, 0, len(authUsers))
	for _, u := range authUsers {
		username := u.DisplayName
		photoURL := u.PhotoURL
		if p, ok := byID[u.ID]; ok {
			if p.Username != "" {
				username = p.Username
			}
			if p.PhotoURL != "" {
				photoURL = p.PhotoURL
			}
		}
		if username == "" {
			username = u.Email
		}
		if username == "" {
			username = "N/A"
		}
		merged = append(merged, mergedUser{
			ID:        u.ID,
			Email:     u.Email,
			Username:  username,
			PhotoURL:  photoURL,
			CreatedAt: u.CreatedAt.Unix(),
		})
	}

	sort.Slice(merged, func(i, j int) bool {
		return merged[i].CreatedAt > merged[j].CreatedAt
	})
	return c.JSON(merged)
}

// DeleteUser removes an account from the identity provider, then its local
// profile and every registration it holds across all tournaments.
func (s *UserService) DeleteUser(c *fiber.Ctx) error {
	userID := c.Params("id")
	if userID == "" {
		return c.Status(400).JSON(fiber.Map{"error": "User ID is required"})
	}

	if err := s.Auth.DeleteUser(c.Context(), userID); err != nil {
		log.Printf("[USERS] provider delete failed for %s: %v", userID, err)
		return c.Status(500).JSON(fiber.Map{"error": "Failed to delete user", "details": err.Error()})
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.UserProfile{}, "id = ?", userID).Error; err != nil {
			return err
		}
		return tx.Where("user_id = ?", userID).Delete(&models.Registration{}).Error
	})
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to delete user data", "details": err.Error()})
	}

	return c.JSON(fiber.Map{"success": true, "message": fmt.Sprintf("User %s deleted successfully.", userID)})
}

// UpdateMyProfile lets the signed-in user edit the profile fields stored
// locally (username, photo). Identity fields stay with the provider.
func (s *UserService) UpdateMyProfile(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	if userID == "" {
		return c.Status(401).JSON(fiber.Map{"error": "Unauthorized"})
	}

	type Req struct {
		Username string `json:"username"`
		PhotoURL string `json:"photoURL"`
	}
	var req Req
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON", "details": err.Error()})
	}
	if req.Username == "" {
		return c.Status(400).JSON(fiber.Map{"error": "username is required"})
	}

	profile := models.UserProfile{ID: userID}
	if err := s.DB.FirstOrCreate(&profile, "id = ?", userID).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "DB error fetching profile"})
	}

	profile.Username = req.Username
	if req.PhotoURL != "" {
		profile.PhotoURL = req.PhotoURL
	}
	if err := s.DB.Save(&profile).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to save profile"})
	}
	return c.JSON(profile)
}
