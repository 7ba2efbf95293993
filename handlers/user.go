package handlers

import (
	"github.com/gofiber/fiber/v2"

	"tribex-platform/middleware"
	"tribex-platform/services"
)

func SetupUserRoutes(app *fiber.App, userService *services.UserService) {
	secured := app.Group("/api", middleware.UserContextMiddleware())
	secured.Put("/users/me", userService.UpdateMyProfile)

	admin := app.Group("/api", middleware.UserContextMiddleware(), middleware.AdminOnly())
	admin.Get("/users", userService.GetUsers)
	admin.Delete("/users/:id", userService.DeleteUser)
}
