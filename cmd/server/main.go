package main

import (
	"context"
	"os"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"github.com/example/clothy/internal/config"
	"github.com/example/clothy/internal/database"
	"github.com/example/clothy/internal/handlers"
	"github.com/example/clothy/internal/logger"
	"github.com/example/clothy/internal/middleware"
	"github.com/example/clothy/internal/routes"
	"github.com/example/clothy/internal/storage"
)

func main() {
	cfg := config.Load()

	logger.Initialize(os.Getenv("APP_ENV"))
	defer logger.L().Sync()

	db := database.Connect(cfg.DatabaseURL)

	store, err := storage.NewFromConfig(context.Background(), cfg)
	if err != nil {
		logger.L().Fatal("Failed to initialize storage", zap.Error(err))
	}

	app := fiber.New(fiber.Config{
		AppName:      "clothy-server",
		ErrorHandler: handlers.ErrorHandler,
		BodyLimit:    10 * 1024 * 1024,
	})

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Join(cfg.CORSOrigins, ","),
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
	}))
	app.Use(middleware.RequestLogger())

	if local, ok := store.(*storage.LocalStorage); ok {
		app.Static("/uploads", local.Dir())
	}

	routes.Register(app, db, cfg, store)

	logger.L().Info("Server listening", zap.String("port", cfg.AppPort))
	if err := app.Listen(":" + cfg.AppPort); err != nil {
		logger.L().Fatal("Server stopped", zap.Error(err))
	}
}
