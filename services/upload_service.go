package services

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gosimple/slug"

	"tribex-platform/utils"
)

// UploadService backs the generic admin upload used by content-creation
// forms (blog covers, tournament banners). Independent of the registration
// pipeline, which stores its artifacts locally under /uploads.
type UploadService struct{}

func NewUploadService() *UploadService {
	return &UploadService{}
}

// UploadFile accepts one file plus an optional folder and stores it in R2,
// returning the public URL.
func (s *UploadService) UploadFile(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil || file.Size == 0 {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "No file provided."})
	}

	folder := c.FormValue("folder")
	if folder == "" {
		folder = "tournament_photos"
	}

	key := slug.Make(folder) + "/" + utils.UploadFilename(file.Filename)
	url, err := utils.UploadFileToR2(file, key)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"success": false, "error": "Failed to upload file."})
	}
	return c.JSON(fiber.Map{"success": true, "url": url})
}
