package services

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"tribex-platform/models"
)

// ExportRegistrationsCSV serializes a tournament's registrations as CSV.
// Column order: Username, Registered At, then the custom fields in form
// order. Every value is quoted with embedded quotes doubled; file fields are
// exported as their raw /uploads path.
func (s *RegistrationService) ExportRegistrationsCSV(c *fiber.Ctx) error {
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

	csv := BuildRegistrationCSV(&tournament, registrations, s.profileMap())

	c.Set("Content-Type", "text/csv; charset=utf-8")
	c.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", tournament.Name+"_registrations.csv"))
	return c.SendString(csv)
}

// BuildRegistrationCSV assembles the export by hand: the required format
// quotes every value, which encoding/csv does not do.
func BuildRegistrationCSV(t *models.Tournament, registrations []models.Registration, profiles map[string]models.UserProfile) string {
	headers := []string{"Username", "Registered At"}
	for _, f := range t.RegistrationFields {
		headers = append(headers, f.Name)
	}

	var b strings.Builder
	writeCSVRow(&b, headers)

	for _, reg := range registrations {
		row := []string{
			usernameFor(profiles, reg.UserID),
			reg.RegisteredAt.UTC().Format("2006-01-02 15:04:05"),
		}
		for _, f := range t.RegistrationFields {
			row = append(row, csvCell(reg.CustomData[f.Name]))
		}
		writeCSVRow(&b, row)
	}
	return b.String()
}

func writeCSVRow(b *strings.Builder, values []string) {
	for i, v := range values {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('"')
		b.WriteString(strings.ReplaceAll(v, `"`, `""`))
		b.WriteByte('"')
	}
	b.WriteByte('\n')
}

func csvCell(v any) string {
	switch value := v.(type) {
	case nil:
		return ""
	case string:
		return value
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(value)
	default:
		return fmt.Sprint(value)
	}
}
