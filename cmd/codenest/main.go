package main

import (
	"log"
	"os"

	"github.com/codenest-dev/codenest/db"
	"github.com/codenest-dev/codenest/internal/auth"
	"github.com/codenest-dev/codenest/internal/handlers"
	"github.com/codenest-dev/codenest/internal/knowledge"
	"github.com/codenest-dev/codenest/internal/router"
	"github.com/codenest-dev/codenest/internal/services"
	"github.com/codenest-dev/codenest/internal/storage"
	"github.com/codenest-dev/codenest/pkg/logger"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded: %v", err)
	}

	if err := logger.Init(os.Getenv("APP_ENV")); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.L.Sync()

	if err := auth.InitJWTSecret(); err != nil {
		logger.L.Fatal("Failed to initialize JWT secret", zap.Error(err))
	}

	if err := db.ConnectDatabase(os.Getenv("DATABASE_URL")); err != nil {
		logger.L.Fatal("Failed to connect to database", zap.Error(err))
	}

	if err := db.MigrateDatabase(); err != nil {
		logger.L.Fatal("Failed to migrate database", zap.Error(err))
	}

	var port string

	if port = os.Getenv("PORT"); port == "" {
		port = "3000"
		logger.L.Info("PORT not set, defaulting to 3000")
	}

	mediaRoot := os.Getenv("MEDIA_ROOT")
	if mediaRoot == "" {
		mediaRoot = "./media"
	}

	mediaBaseURL := os.Getenv("MEDIA_BASE_URL")
	if mediaBaseURL == "" {
		mediaBaseURL = "http://localhost:" + port
	}

	media := storage.New(mediaRoot, mediaBaseURL)
	handlers.Media = media

	client := services.NewGeminiClient(os.Getenv("GEMINI_API_KEY"), os.Getenv("GEMINI_MODEL"))
	if client == nil {
		logger.L.Warn("GEMINI_API_KEY not set, chatbot endpoint will respond 503")
	}

	chat := handlers.NewChatHandler(client, knowledge.Default(), media)

	r := router.NewRouter(chat, media)

	if err := r.Run(":" + port); err != nil {
		logger.L.Fatal("Failed to start server", zap.Error(err))
	}
}
