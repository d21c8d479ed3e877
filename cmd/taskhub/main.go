package main

import (
	"github.com/gin-gonic/gin"

	"github.com/monocle-dev/taskhub/db"
	"github.com/monocle-dev/taskhub/internal/config"
	"github.com/monocle-dev/taskhub/internal/logutils"
	"github.com/monocle-dev/taskhub/internal/router"
	"github.com/monocle-dev/taskhub/internal/store"
)

func main() {
	cfg, err := config.Load()

	if err != nil {
		logutils.Log.Fatalf("Error loading configuration: %v", err)
	}

	if cfg.Server.GinMode != "" {
		gin.SetMode(cfg.Server.GinMode)
	}
	logutils.SetLevel(cfg.App.LogLevel)

	database, err := db.ConnectDatabase(cfg.Database.DSN())

	if err != nil {
		logutils.Log.Fatalf("Failed to connect to database: %v", err)
	}

	if err = db.MigrateDatabase(database); err != nil {
		logutils.Log.Fatalf("Failed to migrate database: %v", err)
	}

	r, err := router.NewRouter(cfg, store.NewGormStore(database))

	if err != nil {
		logutils.Log.Fatalf("Failed to build router: %v", err)
	}

	logutils.Log.WithField("port", cfg.Server.Port).Info("Starting server")

	if err = r.Run(":" + cfg.Server.Port); err != nil {
		logutils.Log.Fatalf("Failed to start server: %v", err)
	}
}
