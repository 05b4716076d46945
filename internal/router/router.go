package router

import (
	"time"

	"github.com/codenest-dev/codenest/internal/handlers"
	"github.com/codenest-dev/codenest/internal/middleware"
	"github.com/codenest-dev/codenest/internal/storage"
	"github.com/codenest-dev/codenest/internal/types"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func NewRouter(chat *handlers.ChatHandler, media *storage.Store) *gin.Engine {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     types.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Uploaded project files are served straight from the media root.
	r.Static("/media", media.Root)

	api := r.Group("/api")
	{
		api.GET("/health", handlers.HealthCheck)
		api.GET("/ws/:project_id", middleware.AuthMiddleware(), handlers.WebSocket)

		auth := api.Group("/auth")
		{
			auth.POST("/register", handlers.Register)
			auth.POST("/login", handlers.Login)
			auth.POST("/token/refresh", handlers.RefreshToken)
			auth.GET("/me", middleware.AuthMiddleware(), handlers.Me)
			auth.GET("/users", middleware.AuthMiddleware(), handlers.SearchUsers)
		}

		projects := api.Group("/projects")
		{
			// Reads are public, writes are owner-gated behind auth.
			projects.GET("", handlers.ListProjects)
			projects.GET("/:project_id", handlers.GetProject)
			projects.GET("/:project_id/list_files", handlers.ListFiles)

			projects.POST("", middleware.AuthMiddleware(), handlers.CreateProject)
			projects.PATCH("/:project_id", middleware.AuthMiddleware(), handlers.UpdateProject)
			projects.DELETE("/:project_id", middleware.AuthMiddleware(), handlers.DeleteProject)
			projects.POST("/:project_id/upload_file", middleware.AuthMiddleware(), handlers.UploadFile)
			projects.DELETE("/:project_id/files/:file_id", middleware.AuthMiddleware(), handlers.DeleteFile)
		}

		api.POST("/chat/gemini", middleware.AuthMiddleware(), chat.Chat)
	}

	return r
}
