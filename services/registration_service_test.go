package services

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"tribex-platform/forms"
	"tribex-platform/models"
	"tribex-platform/utils"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	// A named shared-cache memory DB keeps all pooled connections on the same
	// database within one test.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Tournament{},
		&models.Registration{},
		&models.UserProfile{},
	))
	return db
}

func newRegistrationApp(t *testing.T) (*fiber.App, *RegistrationService) {
	t.Helper()
	svc := NewRegistrationService(newTestDB(t), forms.NewSchemaCache())
	app := fiber.New()
	app.Post("/api/register", svc.Register)
	app.Get("/api/tournaments/:id/registrations", svc.GetRegistrations)
	app.Get("/api/tournaments/:id/registrations/export", svc.ExportRegistrationsCSV)
	return app, svc
}

func useTempUploadDir(t *testing.T) string {
	t.Helper()
	original := utils.UploadDir
	utils.UploadDir = t.TempDir()
	t.Cleanup(func() { utils.UploadDir = original })
	return utils.UploadDir
}

func seedTournament(t *testing.T, db *gorm.DB, id string, fields []forms.FieldDefinition) {
	t.Helper()
	require.NoError(t, db.Create(&models.Tournament{
		ID:                 id,
		Name:               "Valorant Clash",
		Game:               "Valorant",
		Status:             "published",
		StartDate:          time.Now().Add(48 * time.Hour),
		RegistrationFields: fields,
	}).Error)
}

func postRegistration(t *testing.T, app *fiber.App, sub forms.Submission) (int, map[string]any) {
	t.Helper()
	body, contentType, err := forms.Encode(sub)
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/api/register", body)
	req.Header.Set("Content-Type", contentType)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var parsed map[string]any
	require.NoError(t, json.Unmarshal(raw, &parsed))
	return resp.StatusCode, parsed
}

func rosterFields() []forms.FieldDefinition {
	return []forms.FieldDefinition{
		{Name: "Team Name", Type: forms.FieldText, Required: true},
		{Name: "Roster Photo", Type: forms.FieldFile, Required: true},
	}
}

func TestRegisterRejectsMissingFormData(t *testing.T) {
	app, _ := newRegistrationApp(t)

	req := httptest.NewRequest("POST", "/api/register", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, 400, resp.StatusCode)
	raw, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(raw), "Missing required form data")
}

func TestRegisterRejectsMissingRequiredFileWithoutArtifacts(t *testing.T) {
	uploadDir := useTempUploadDir(t)
	app, svc := newRegistrationApp(t)
	seedTournament(t, svc.DB, "t-1", rosterFields())

	status, body := postRegistration(t, app, forms.Submission{
		TournamentID: "t-1",
		UserID:       "user-1",
		Fields:       rosterFields(),
		Values:       map[string]any{"Team Name": "Ghost Squad"},
	})

	assert.Equal(t, 400, status)
	assert.Equal(t, false, body["success"])
	assert.Contains(t, body["error"], "Roster Photo")

	// Rejection happens before any file write and before any record write.
	var count int64
	require.NoError(t, svc.DB.Model(&models.Registration{}).Count(&count).Error)
	assert.Zero(t, count)
	entries, err := os.ReadDir(uploadDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRegisterStoresFileAndRecord(t *testing.T) {
	uploadDir := useTempUploadDir(t)
	app, svc := newRegistrationApp(t)
	seedTournament(t, svc.DB, "t-1", rosterFields())

	status, body := postRegistration(t, app, forms.Submission{
		TournamentID: "t-1",
		UserID:       "user-1",
		Fields:       rosterFields(),
		Values:       map[string]any{"Team Name": "Ghost Squad"},
		Files: map[string]forms.FilePart{
			"Roster Photo": {Filename: "team roster.png", Content: strings.NewReader("png-bytes")},
		},
	})

	require.Equal(t, 200, status)
	assert.Equal(t, true, body["success"])
	assert.NotEmpty(t, body["registrationId"])

	custom, ok := body["customData"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Ghost Squad", custom["Team Name"])

	// The stored value is the public path, timestamped and whitespace-sanitized.
	photoPath, _ := custom["Roster Photo"].(string)
	assert.True(t, strings.HasPrefix(photoPath, "/uploads/"), "got %q", photoPath)
	assert.True(t, strings.HasSuffix(photoPath, "_team_roster.png"), "got %q", photoPath)

	entries, err := os.ReadDir(uploadDir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, strings.TrimPrefix(photoPath, "/uploads/"), entries[0].Name())

	var reg models.Registration
	require.NoError(t, svc.DB.First(&reg, "tournament_id = ? AND user_id = ?", "t-1", "user-1").Error)
	assert.Equal(t, photoPath, reg.CustomData["Roster Photo"])
}

func TestRegisterRejectsDuplicate(t *testing.T) {
	useTempUploadDir(t)
	app, svc := newRegistrationApp(t)
	seedTournament(t, svc.DB, "t-1", rosterFields())

	submission := func(userID string) forms.Submission {
		return forms.Submission{
			TournamentID: "t-1",
			UserID:       userID,
			Fields:       rosterFields(),
			Values:       map[string]any{"Team Name": "Ghost Squad"},
			Files: map[string]forms.FilePart{
				"Roster Photo": {Filename: "roster.png", Content: strings.NewReader("png")},
			},
		}
	}

	status, _ := postRegistration(t, app, submission("user-1"))
	require.Equal(t, 200, status)

	status, body := postRegistration(t, app, submission("user-1"))
	assert.Equal(t, 409, status)
	assert.Contains(t, body["error"], "already registered")

	// A different user may still register for the same tournament.
	status, _ = postRegistration(t, app, submission("user-2"))
	assert.Equal(t, 200, status)

	var count int64
	require.NoError(t, svc.DB.Model(&models.Registration{}).Count(&count).Error)
	assert.Equal(t, int64(2), count)
}

func TestRegisterWithoutFileFieldsTouchesNoStorage(t *testing.T) {
	uploadDir := useTempUploadDir(t)
	app, svc := newRegistrationApp(t)
	fields := []forms.FieldDefinition{
		{Name: "Team Name", Type: forms.FieldText, Required: true},
		{Name: "Contact Email", Type: forms.FieldEmail, Required: true},
	}
	seedTournament(t, svc.DB, "t-1", fields)

	status, _ := postRegistration(t, app, forms.Submission{
		TournamentID: "t-1",
		UserID:       "user-1",
		Fields:       fields,
		Values:       map[string]any{"Team Name": "Ghost Squad", "Contact Email": "cap@ghost.gg"},
	})

	require.Equal(t, 200, status)
	entries, err := os.ReadDir(uploadDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRegisterValidatesValues(t *testing.T) {
	useTempUploadDir(t)
	app, svc := newRegistrationApp(t)
	fields := []forms.FieldDefinition{
		{Name: "Contact Email", Type: forms.FieldEmail, Required: true},
	}
	seedTournament(t, svc.DB, "t-1", fields)

	status, body := postRegistration(t, app, forms.Submission{
		TournamentID: "t-1",
		UserID:       "user-1",
		Fields:       fields,
		Values:       map[string]any{"Contact Email": "not-an-email"},
	})

	assert.Equal(t, 400, status)
	assert.Contains(t, body["error"], "Invalid email address.")
}

func TestGetRegistrationsJoinsUsernames(t *testing.T) {
	app, svc := newRegistrationApp(t)
	seedTournament(t, svc.DB, "t-1", rosterFields())
	require.NoError(t, svc.DB.Create(&models.UserProfile{ID: "user-1", Username: "ShadowStriker"}).Error)

	base := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	require.NoError(t, svc.DB.Create(&models.Registration{
		ID:           "reg-2",
		TournamentID: "t-1",
		UserID:       "user-2",
		CustomData:   datatypes.JSONMap{"Team Name": "Late Arrivals"},
		RegisteredAt: base.Add(time.Hour),
	}).Error)
	require.NoError(t, svc.DB.Create(&models.Registration{
		ID:           "reg-1",
		TournamentID: "t-1",
		UserID:       "user-1",
		CustomData:   datatypes.JSONMap{"Team Name": "Ghost Squad"},
		RegisteredAt: base,
	}).Error)

	req := httptest.NewRequest("GET", "/api/tournaments/t-1/registrations", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, 200, resp.StatusCode)

	var body struct {
		TournamentID  string `json:"tournamentId"`
		Registrations []struct {
			ID       string `json:"id"`
			Username string `json:"username"`
		} `json:"registrations"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))

	assert.Equal(t, "t-1", body.TournamentID)
	require.Len(t, body.Registrations, 2)
	// Oldest first, usernames resolved with a Guest fallback for unknown users.
	assert.Equal(t, "reg-1", body.Registrations[0].ID)
	assert.Equal(t, "ShadowStriker", body.Registrations[0].Username)
	assert.Equal(t, "reg-2", body.Registrations[1].ID)
	assert.Equal(t, "Guest", body.Registrations[1].Username)
}

func TestGetRegistrationsUnknownTournament(t *testing.T) {
	app, _ := newRegistrationApp(t)
	req := httptest.NewRequest("GET", "/api/tournaments/nope/registrations", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, 404, resp.StatusCode)
}
