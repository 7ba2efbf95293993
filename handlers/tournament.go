package handlers

import (
	"github.com/gofiber/fiber/v2"

	"tribex-platform/middleware"
	"tribex-platform/services"
)

func SetupTournamentRoutes(app *fiber.App, tournamentService *services.TournamentService, registrationService *services.RegistrationService) {
	// Public routes
	app.Get("/api/tournaments", tournamentService.GetPublishedTournaments)
	app.Get("/api/tournaments/:id", tournamentService.GetTournamentByID)

	// Registration intake carries its own identity in the form body; the
	// endpoint validates it server-side rather than requiring a credential.
	app.Post("/api/register", registrationService.Register)

	// Authenticated routes
	secured := app.Group("/api", middleware.UserContextMiddleware())
	secured.Get("/my-tournaments", tournamentService.GetMyTournaments)

	// Admin back-office
	admin := app.Group("/api", middleware.UserContextMiddleware(), middleware.AdminOnly())
	admin.Get("/admin/tournaments", tournamentService.GetAllTournaments)
	admin.Post("/tournaments", tournamentService.CreateTournament)
	admin.Put("/tournaments/:id", tournamentService.UpdateTournament)
	admin.Delete("/tournaments/:id", tournamentService.DeleteTournament)

	// Field Definition Store: wholesale replacement of the registration form
	admin.Put("/tournaments/:id/fields", tournamentService.UpdateRegistrationFields)

	// Publish management
	admin.Post("/tournaments/:id/publish/now", tournamentService.PublishNow)
	admin.Post("/tournaments/:id/publish/schedule", tournamentService.SchedulePublish)
	admin.Post("/tournaments/:id/publish/cancel", tournamentService.CancelScheduledPublish)

	// Registration views and export
	admin.Get("/tournaments/:id/registrations", registrationService.GetRegistrations)
	admin.Get("/tournaments/:id/registrations/export", registrationService.ExportRegistrationsCSV)
}
