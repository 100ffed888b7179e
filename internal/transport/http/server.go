package http

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"teambot/internal/ai"
	appsvc "teambot/internal/app"
	"teambot/internal/bootstrap"
	"teambot/internal/cache"
	rabbitmqClient "teambot/internal/platform/rabbitmq"
	"teambot/internal/repository"
	"teambot/internal/transport/http/handler"
	"teambot/internal/transport/http/middleware"
)

func NewRouter(app *bootstrap.App) *gin.Engine {
	gin.SetMode(app.Config.App.GinMode)
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery(), middleware.RequestID())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     app.Config.CORS.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	healthHandler := handler.NewHealthHandler(app)
	router.GET("/health", healthHandler.Status)
	router.GET("/healthz", healthHandler.Check)

	botRepo := repository.NewBotRepository(app.MySQL)
	docRepo := repository.NewDocumentRepository(app.MySQL)
	chunkRepo := repository.NewChunkRepository(app.MySQL)
	conversationRepo := repository.NewConversationRepository(app.MySQL)
	messageRepo := repository.NewMessageRepository(app.MySQL)
	squadRepo := repository.NewSquadRepository(app.MySQL)

	messageCache := cache.NewConversationCache(
		app.Redis,
		time.Duration(app.Config.Redis.HistoryTTLSeconds)*time.Second,
		time.Duration(app.Config.Redis.HistoryDirtyTTLSeconds)*time.Second,
	)
	publisher := rabbitmqClient.NewIngestPublisher(app.MQConn, app.Config.RabbitMQ.DocumentQueue)
	llmClient := ai.NewClient(ai.Config{
		BaseURL: app.Config.LLM.BaseURL,
		APIKey:  app.Config.LLM.APIKey,
	})

	botService := appsvc.NewBotService(botRepo, docRepo, chunkRepo, squadRepo, app.Logger)
	retrievalService := appsvc.NewRetrievalService(docRepo, chunkRepo, llmClient, app.Config.LLM.EmbeddingModel, app.Logger)
	chatService := appsvc.NewChatService(
		botService,
		retrievalService,
		botRepo,
		docRepo,
		conversationRepo,
		messageRepo,
		llmClient,
		messageCache,
		app.Logger,
	)
	documentService := appsvc.NewDocumentService(
		botRepo,
		docRepo,
		chunkRepo,
		publisher,
		app.Config.MaxUploadBytes(),
		app.Logger,
	)
	squadService := appsvc.NewSquadService(squadRepo, app.Logger)

	botHandler := handler.NewBotHandler(botService)
	chatHandler := handler.NewChatHandler(chatService)
	documentHandler := handler.NewDocumentHandler(documentService, app.Config.MaxUploadBytes())
	squadHandler := handler.NewSquadHandler(squadService)
	authHandler := handler.NewAuthHandler(
		app.Config.Auth.Secret,
		time.Duration(app.Config.Auth.TokenExpiryMins)*time.Minute,
	)

	secret := app.Config.Auth.Secret
	v1 := router.Group("/api/v1")
	v1.Use(middleware.RateLimit(app.Config.RateLimit.MaxRequests, app.Config.RateLimit.WindowSeconds))

	v1.POST("/auth/token", authHandler.IssueToken)

	bots := v1.Group("/bots")
	bots.GET("", middleware.AuthRequired(secret), botHandler.List)
	bots.POST("", middleware.AuthRequired(secret), botHandler.Create)
	bots.GET("/:id", middleware.AuthOptional(secret), botHandler.Get)
	bots.PATCH("/:id", middleware.AuthRequired(secret), botHandler.Update)
	bots.DELETE("/:id", middleware.AuthRequired(secret), botHandler.Delete)

	bots.POST("/:id/documents", middleware.AuthRequired(secret), documentHandler.Upload)
	bots.GET("/:id/documents", middleware.AuthRequired(secret), documentHandler.List)

	documents := v1.Group("/documents")
	documents.Use(middleware.AuthRequired(secret))
	documents.GET("/:id", documentHandler.Get)
	documents.DELETE("/:id", documentHandler.Delete)

	chat := v1.Group("/chat")
	chat.Use(middleware.AuthRequired(secret))
	chat.POST("/messages", chatHandler.SendMessage)
	chat.GET("/conversations", chatHandler.ListConversations)
	chat.GET("/conversations/:id", chatHandler.GetConversation)
	chat.DELETE("/conversations/:id", chatHandler.DeleteConversation)

	squads := v1.Group("/squads")
	squads.Use(middleware.AuthRequired(secret))
	squads.GET("", squadHandler.List)
	squads.POST("", squadHandler.Create)
	squads.GET("/:id", squadHandler.Get)

	return router
}
