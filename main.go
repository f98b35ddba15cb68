// @title Tutor Desk API
// @version 1.0
// @description Scheduling and suggestion backend for a single tutor.

// @host localhost:8080
// @BasePath /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

package main

import (
	"log"

	"tutor_desk_backend/internal/app"
	"tutor_desk_backend/internal/config"
	"tutor_desk_backend/pkg/logger"
)

func main() {
	cfg, err := config.LoadConfig("configs")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	application := app.NewApp(cfg)
	defer logger.Log.Sync()

	application.Run()
}
