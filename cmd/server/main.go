package main

import (
	"os"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"bangalorehomes/server/config"
	"bangalorehomes/server/internal/api"
	"bangalorehomes/server/internal/auth"
	"bangalorehomes/server/internal/core"
	"bangalorehomes/server/internal/geo"
	"bangalorehomes/server/internal/models"
	"bangalorehomes/server/internal/storage"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}

	// Pick the store: a database path means durable SQLite, otherwise
	// everything lives in memory for the lifetime of the process.
	var store storage.Store
	if cfg.DatabasePath != "" {
		logger.Infof("Using database at: %s", cfg.DatabasePath)
		sqliteStore, err := storage.NewSQLiteStore(cfg.DatabasePath)
		if err != nil {
			logger.WithError(err).Fatal("Failed to initialize database")
		}
		store = sqliteStore
	} else {
		logger.Info("No database path configured, using in-memory storage")
		memStore := storage.NewMemoryStore()
		seedDemoUser(memStore, logger)
		store = memStore
	}
	defer store.Close()

	coreAPI := core.New(store, store, nil, cfg.Auth.BcryptCost)
	tokens := auth.NewTokens(cfg.Auth.JWTSecret, cfg.Auth.TokenTTLHours)
	handler := api.NewHandler(coreAPI, tokens, geo.NewLocator(), logger, cfg.History.DefaultLimit, cfg.History.MaxLimit)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(api.RequestLogger(logger))
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.FrontendURL},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	api.SetupRoutes(router, handler)

	logger.Infof("Starting server on port %s", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		logger.WithError(err).Fatal("Server failed to start")
	}
}

// seedDemoUser mirrors the dev fixture: test@example.com / "password".
func seedDemoUser(store storage.UserStore, logger *logrus.Logger) {
	hash := "$2a$10$X7VYHy.DDzs8W9UeUkLCzOAYwG6i.6sF2V2lhCQ/Myk.IrJ0B7o1."
	displayName := "Test User"
	_, err := store.CreateUser(models.NewUser{
		Username:    "test",
		Email:       "test@example.com",
		Password:    &hash,
		DisplayName: &displayName,
	})
	if err != nil {
		logger.WithError(err).Warn("Failed to seed demo user")
	}
}
