package handlers

import (
	"github.com/gofiber/fiber/v2"

	"tribex-platform/middleware"
	"tribex-platform/services"
)

// SetupContentRoutes wires the blog, leaderboard, generic upload and chatbot
// endpoints.
func SetupContentRoutes(app *fiber.App, blogService *services.BlogService, leaderboardService *services.LeaderboardService, uploadService *services.UploadService, chatService *services.ChatService) {
	// Public routes
	app.Get("/api/posts", blogService.GetPosts)
	app.Get("/api/posts/:slug", blogService.GetPostBySlug)
	app.Get("/api/leaderboard", leaderboardService.GetLeaderboard)
	app.Post("/api/chat", chatService.Chat)

	// Admin back-office
	admin := app.Group("/api", middleware.UserContextMiddleware(), middleware.AdminOnly())
	admin.Post("/posts", blogService.CreatePost)
	admin.Delete("/posts/:id", blogService.DeletePost)
	admin.Post("/leaderboard/entries", leaderboardService.UpsertEntry)
	admin.Delete("/leaderboard/:game", leaderboardService.ResetLeaderboard)
	admin.Post("/upload", uploadService.UploadFile)
}
