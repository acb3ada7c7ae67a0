package server

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/hirewire/hirewire/internal/config"
	"github.com/hirewire/hirewire/internal/handler"
	"github.com/hirewire/hirewire/internal/mailer"
	"github.com/hirewire/hirewire/internal/middleware"
	"github.com/hirewire/hirewire/internal/model"
	"github.com/hirewire/hirewire/internal/repository"
	"github.com/hirewire/hirewire/internal/service"
	"github.com/hirewire/hirewire/pkg/eventbus"
	"github.com/hirewire/hirewire/pkg/storage"
	"github.com/meilisearch/meilisearch-go"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Server struct {
	engine  *gin.Engine
	cfg     *config.Config
	janitor *service.JanitorService
}

func New(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) *Server {
	userRepo := repository.NewUserRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	blacklistRepo := repository.NewBlacklistRepository(db)
	jobRepo := repository.NewJobRepository(db)
	candidateRepo := repository.NewCandidateRepository(db)
	feedbackRepo := repository.NewFeedbackRepository(db)
	noteRepo := repository.NewNoteRepository(db)

	documentStorage, err := storage.NewCloudinaryStorage()
	if err != nil {
		log.Printf("cloudinary not configured, document upload disabled: %v", err)
		documentStorage = nil
	}

	meiliHost := cfg.MeiliSearchHost
	if !strings.HasPrefix(meiliHost, "http") {
		meiliHost = "http://" + meiliHost + ":7700"
	}
	meiliClient := meilisearch.New(meiliHost, meilisearch.WithAPIKey(cfg.MeiliMasterKey))
	searchSvc := service.NewSearchService(meiliClient)

	var dispatcher mailer.Dispatcher
	if cfg.EmailAPIKey != "" {
		dispatcher = mailer.NewSendGridDispatcher(cfg.EmailAPIKey, cfg.EmailFromAddress)
	} else {
		log.Println("EMAIL_API_KEY not set, notification emails disabled")
	}

	// One process talks to its websocket clients through the local bus.
	// With redis configured, publishes detour through the shared channel so
	// every replica fans out to its own clients.
	bus := eventbus.New()
	var publisher eventbus.Publisher = bus
	if redisClient != nil {
		bridge := service.NewRedisBridge(redisClient, "", bus)
		go bridge.Run(context.Background())
		publisher = bridge
	}

	notificationSvc := service.NewNotificationService(notificationRepo, userRepo, publisher, dispatcher, cfg.BaseURL)
	realtimeSvc := service.NewRealtimeService(bus)

	authSvc := service.NewAuthService(userRepo, blacklistRepo)
	userSvc := service.NewUserService(userRepo)
	jobSvc := service.NewJobService(jobRepo, userRepo, notificationSvc, searchSvc)
	candidateSvc := service.NewCandidateService(candidateRepo, jobRepo, userRepo, notificationSvc, searchSvc, documentStorage)
	feedbackSvc := service.NewFeedbackService(feedbackRepo, candidateRepo, jobRepo, notificationSvc)
	noteSvc := service.NewNoteService(noteRepo, notificationSvc)

	janitor := service.NewJanitorService(notificationRepo, blacklistRepo, cfg.NotificationTTL, cfg.JanitorSchedule)

	authHandler := handler.NewAuthHandler(authSvc, userSvc)
	userHandler := handler.NewUserHandler(userSvc)
	notificationHandler := handler.NewNotificationHandler(notificationSvc, realtimeSvc, cfg.AllowedOrigins)
	jobHandler := handler.NewJobHandler(jobSvc)
	candidateHandler := handler.NewCandidateHandler(candidateSvc, redisClient, cfg.RateLimitApply)
	feedbackHandler := handler.NewFeedbackHandler(feedbackSvc)
	noteHandler := handler.NewNoteHandler(noteSvc)
	searchHandler := handler.NewSearchHandler(searchSvc)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(gin.Logger())
	setupCORS(router, cfg.AllowedOrigins)

	authMiddleware := middleware.NewAuthMiddleware(userRepo, blacklistRepo)

	api := router.Group("/api")

	// Public routes (no auth required)
	auth := api.Group("/auth")
	{
		auth.POST("/login", authHandler.Login)
	}
	api.GET("/jobs/published", jobHandler.ListPublished)
	api.POST("/apply", candidateHandler.Apply)

	// Protected routes
	protected := api.Group("")
	protected.Use(authMiddleware.RequireAuth())
	{
		protected.POST("/auth/logout", authHandler.Logout)
		protected.GET("/auth/me", authHandler.Me)

		// Admin routes
		adminGroup := protected.Group("/admin")
		adminGroup.Use(authMiddleware.RequireRole(model.RoleAdministrator))
		{
			adminGroup.POST("/users", userHandler.Create)
			adminGroup.GET("/users", userHandler.List)
			adminGroup.GET("/users/:id", userHandler.Get)
			adminGroup.PUT("/users/:id", userHandler.Update)
			adminGroup.DELETE("/users/:id", userHandler.Delete)
		}

		// Job routes: recruiters and admins manage positions
		jobWriters := authMiddleware.RequireRole(model.RoleAdministrator, model.RoleRecruiter)
		protected.GET("/jobs", jobHandler.List)
		protected.GET("/jobs/:id", jobHandler.Get)
		protected.POST("/jobs", jobWriters, jobHandler.Create)
		protected.PUT("/jobs/:id", jobWriters, jobHandler.Update)
		protected.DELETE("/jobs/:id", jobWriters, jobHandler.Delete)

		// Candidate routes
		protected.GET("/candidates", candidateHandler.List)
		protected.GET("/candidates/:id", candidateHandler.Get)
		protected.POST("/candidates", candidateHandler.Create)
		protected.PUT("/candidates/:id", candidateHandler.Update)
		protected.DELETE("/candidates/:id", jobWriters, candidateHandler.Delete)
		protected.PUT("/candidates/:id/stage", candidateHandler.ChangeStage)
		protected.POST("/candidates/:id/documents", candidateHandler.UploadDocument)
		protected.DELETE("/candidates/:id/documents/:docId", candidateHandler.DeleteDocument)

		// Feedback and note routes
		protected.POST("/feedback", feedbackHandler.Create)
		protected.GET("/candidates/:id/feedback", feedbackHandler.ListByCandidate)
		protected.PUT("/feedback/:id", feedbackHandler.Update)
		protected.DELETE("/feedback/:id", feedbackHandler.Delete)

		protected.POST("/notes", noteHandler.Create)
		protected.GET("/candidates/:id/notes", noteHandler.ListByCandidate)
		protected.PUT("/notes/:id", noteHandler.Update)
		protected.DELETE("/notes/:id", noteHandler.Delete)

		// Notification routes
		protected.GET("/notifications", notificationHandler.List)
		protected.GET("/notifications/unread-count", notificationHandler.UnreadCount)
		protected.PUT("/notifications/:id/read", notificationHandler.MarkAsRead)
		protected.PUT("/notifications/read-all", notificationHandler.MarkAllAsRead)
		protected.DELETE("/notifications/:id", notificationHandler.Delete)
		protected.DELETE("/notifications", notificationHandler.DeleteAll)
		protected.GET("/notifications/ws", notificationHandler.HandleWebSocket)

		// Search routes
		protected.GET("/search/jobs", searchHandler.Jobs)
		protected.GET("/search/candidates", searchHandler.Candidates)
	}

	return &Server{
		engine:  router,
		cfg:     cfg,
		janitor: janitor,
	}
}

func (s *Server) Run() error {
	if err := s.janitor.Start(); err != nil {
		return err
	}
	defer s.janitor.Stop()

	return s.engine.Run(":" + s.cfg.Port)
}

func setupCORS(router *gin.Engine, origins []string) {
	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
}
