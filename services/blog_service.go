package services

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"

	"tribex-platform/models"
)

var validateRequest = validator.New()

type BlogService struct {
	DB *gorm.DB
}

func NewBlogService(db *gorm.DB) *BlogService {
	return &BlogService{DB: db}
}

// CreatePost publishes a new blog post. The cover image is uploaded
// separately through /api/upload; the form sends only its URL here.
func (s *BlogService) CreatePost(c *fiber.Ctx) error {
	type Req struct {
		Title    string `json:"title" validate:"required,min=5"`
		Content  string `json:"content" validate:"required"`
		ImageURL string `json:"imageUrl" validate:"omitempty,url"`
	}

	var req Req
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON", "details": err.Error()})
	}
	if err := validateRequest.Struct(req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "validation failed", "details": err.Error()})
	}

	postSlug := slug.Make(req.Title)
	var clash int64
	if err := s.DB.Model(&models.BlogPost{}).Where("slug = ?", postSlug).Count(&clash).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "DB error checking slug"})
	}
	if clash > 0 {
		postSlug = postSlug + "-" + uuid.NewString()[:8]
	}

	authorID, _ := c.Locals("user_id").(string)
	authorName, _ := c.Locals("user_name").(string)

	post := &models.BlogPost{
		ID:         uuid.NewString(),
		Slug:       postSlug,
		Title:      req.Title,
		Content:    req.Content,
		ImageURL:   req.ImageURL,
		AuthorID:   authorID,
		AuthorName: authorName,
	}
	if err := s.DB.Create(post).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "DB insert failed"})
	}
	return c.Status(201).JSON(post)
}

func (s *BlogService) GetPosts(c *fiber.Ctx) error {
	var posts []models.BlogPost
	if err := s.DB.Order("created_at DESC").Find(&posts).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to fetch posts"})
	}
	return c.JSON(posts)
}

func (s *BlogService) GetPostBySlug(c *fiber.Ctx) error {
	var post models.BlogPost
	if err := s.DB.First(&post, "slug = ?", c.Params("slug")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.Status(404).JSON(fiber.Map{"error": "post not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "DB error fetching post"})
	}
	return c.JSON(post)
}

func (s *BlogService) DeletePost(c *fiber.Ctx) error {
	if err := s.DB.Delete(&models.BlogPost{}, "id = ?", c.Params("id")).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to delete post"})
	}
	return c.JSON(fiber.Map{"success": true})
}
