package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/studyvault/studyvault-backend/internal/config"
	"github.com/studyvault/studyvault-backend/internal/handler"
	"github.com/studyvault/studyvault-backend/internal/middleware"
	"github.com/studyvault/studyvault-backend/internal/response"
	"github.com/studyvault/studyvault-backend/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth     *handler.AuthHandler
	Folder   *handler.FolderHandler
	Document *handler.DocumentHandler
	Test     *handler.TestHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	authService *service.AuthService,
	handlers *Handlers,
	cfg *config.Config,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// ─── 1. Auth Group (Public) ────────────────────────────────────────
	auth := router.Group("/api/v1/auth")
	{
		auth.POST("/register", handlers.Auth.Register)
		auth.POST("/login", handlers.Auth.Login)
		auth.GET("/me", middleware.RequireUserJWT(authService), handlers.Auth.Me)
	}

	// ─── 2. Authenticated API ──────────────────────────────────────────
	api := router.Group("/api/v1")
	api.Use(middleware.RequireUserJWT(authService))
	{
		// Folders
		api.POST("/folders", handlers.Folder.Create)
		api.GET("/folders", handlers.Folder.List)
		api.GET("/folders/:id", handlers.Folder.Get)
		api.PATCH("/folders/:id", handlers.Folder.Rename)
		api.DELETE("/folders/:id", handlers.Folder.Delete)

		// Documents
		api.POST("/folders/:id/documents", handlers.Document.Upload)
		api.GET("/folders/:id/documents", handlers.Document.List)
		api.GET("/documents/:id", handlers.Document.Get)
		api.GET("/documents/:id/chunks", handlers.Document.Chunks)
		api.GET("/documents/:id/download", handlers.Document.Download)
		api.POST("/documents/:id/parse", handlers.Document.Parse)
		api.DELETE("/documents/:id", handlers.Document.Delete)

		// Tests
		api.POST("/folders/:id/tests/generate", handlers.Test.Generate)
		api.GET("/folders/:id/tests", handlers.Test.ListForFolder)
		api.GET("/tests/:id", handlers.Test.Get)
		api.PATCH("/tests/:id", handlers.Test.Update)

		// Attempts
		api.POST("/tests/:id/attempts", handlers.Test.CreateAttempt)
		api.GET("/tests/:id/attempts", handlers.Test.ListAttempts)
		api.GET("/attempts/:id", handlers.Test.GetAttempt)
		api.PATCH("/attempts/:id/answers", handlers.Test.UpdateAnswers)
		api.POST("/attempts/:id/submit", handlers.Test.SubmitAttempt)
	}

	return router
}
