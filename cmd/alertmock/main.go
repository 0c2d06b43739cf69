package main

import (
	"github.com/cse408-project/secureherai-go/internal/config"
	"github.com/cse408-project/secureherai-go/internal/mockserver"
	"github.com/cse408-project/secureherai-go/pkg/database"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	cfg, err := config.Load()
	if err != nil {
		logger.WithError(err).Fatal("failed to load configuration")
	}

	db, err := database.Connect(cfg.DBDriver, cfg.DSN)
	if err != nil {
		logger.WithError(err).Fatal("failed to connect to database")
	}

	if err := db.AutoMigrate(
		&mockserver.User{},
		&mockserver.Alert{},
		&mockserver.Notification{},
		&mockserver.EmailNotification{},
		&mockserver.AlertResponder{},
	); err != nil {
		logger.WithError(err).Fatal("failed to migrate database")
	}

	if err := mockserver.SeedUsers(mockserver.NewUserRepository(db), logger); err != nil {
		logger.WithError(err).Fatal("failed to seed demo users")
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.WithError(err).Fatal("invalid REDIS_URL")
		}
		redisClient = redis.NewClient(opts)
		logger.Info("redis notification publishing enabled")
	}

	srv := mockserver.NewServer(cfg, db, redisClient, logger)
	logger.WithField("port", cfg.Port).Info("alertmock listening")
	if err := srv.Run(); err != nil {
		logger.WithError(err).Fatal("server exited")
	}
}
