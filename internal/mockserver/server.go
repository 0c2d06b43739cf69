package mockserver

import (
	"time"

	"github.com/cse408-project/secureherai-go/internal/config"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type Server struct {
	router  *gin.Engine
	sweeper *Sweeper
	cfg     *config.Config
}

func NewServer(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, logger *logrus.Logger) *Server {
	userRepo := NewUserRepository(db)
	alertRepo := NewAlertRepository(db)
	notificationRepo := NewNotificationRepository(db)
	responderRepo := NewResponderRepository(db)

	alertService := NewAlertService(alertRepo, notificationRepo, responderRepo, userRepo, redisClient, cfg.AlertTTL, cfg.IdempotencyWindow, logger)
	notificationService := NewNotificationService(notificationRepo, responderRepo)
	authService := NewAuthService(userRepo, cfg.JWTSecret)

	authHandler := NewAuthHandler(authService)
	alertHandler := NewAlertHandler(alertService)
	notificationHandler := NewNotificationHandler(notificationService)

	authMiddleware := NewAuthMiddleware(userRepo, cfg.JWTSecret)

	if cfg.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Idempotency-Key"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api := router.Group("/api")
	api.POST("/auth/login", authHandler.Login)

	emergency := api.Group("/emergency", authMiddleware.RequireAuth())
	{
		emergency.POST("/alert", alertHandler.Trigger)
		emergency.PUT("/alert/:id/cancel", alertHandler.Cancel)
		emergency.PUT("/alert/:id/resolve", alertHandler.Resolve)
	}

	responder := api.Group("/responder", authMiddleware.RequireAuth(), authMiddleware.RequireResponder())
	{
		responder.GET("/pending-alerts", alertHandler.Pending)
		responder.GET("/accepted-alerts", alertHandler.Accepted)
		responder.POST("/accept", alertHandler.Accept)
	}

	notifications := api.Group("/notifications", authMiddleware.RequireAuth())
	{
		notifications.GET("", notificationHandler.List)
		notifications.GET("/unread", notificationHandler.Unread)
		notifications.GET("/count", notificationHandler.UnreadCount)
		notifications.PUT("/:id/read", notificationHandler.MarkRead)
		notifications.PUT("/read-all", notificationHandler.MarkAllRead)
		notifications.GET("/alert/:alertId", notificationHandler.ByAlert)
	}

	sweeper := NewSweeper(alertRepo, notificationRepo, userRepo, cfg.SweepInterval, cfg.BatchWidenAfter, cfg.AlertTTL, logger)

	return &Server{router: router, sweeper: sweeper, cfg: cfg}
}

func (s *Server) Router() *gin.Engine {
	return s.router
}

func (s *Server) Sweeper() *Sweeper {
	return s.sweeper
}

func (s *Server) Run() error {
	s.sweeper.Start()
	defer s.sweeper.Stop()
	return s.router.Run(":" + s.cfg.Port)
}
