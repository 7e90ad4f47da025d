package main

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"social-chat-service/internal/config"
	"social-chat-service/internal/db"
	"social-chat-service/internal/handlers"
	"social-chat-service/internal/middleware"
	"social-chat-service/internal/observability"
	"social-chat-service/internal/rabbitmq"
	"social-chat-service/internal/repositories"
	"social-chat-service/internal/telemetry"
	"social-chat-service/internal/ws"
)

const serviceName = "social-chat-service"

func main() {
	cfg := config.Load()
	logger := initLogger(cfg.LogLevel)

	database, err := db.Connect(cfg.DatabaseDSN, logger)
	if err != nil {
		logger.WithError(err).Fatal("failed to connect to db")
	}
	defer database.Close()

	shutdownTracing, err := observability.InitTracing(context.Background(), serviceName, cfg.Environment, cfg.OTLPEndpoint)
	if err != nil {
		logger.WithError(err).Fatal("failed to init tracing")
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			logger.WithError(err).Warn("tracing shutdown failed")
		}
	}()

	auditPublisher := rabbitmq.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange)
	defer auditPublisher.Close()
	audit := telemetry.NewAuditEmitter(auditPublisher, "audit.social_chat", serviceName, cfg.Environment)

	if cfg.AMQPURL != "" {
		wsPublisher, err := observability.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			logger.WithError(err).Warn("ws event publisher disabled")
		} else {
			observability.SetPublisher(wsPublisher)
			defer wsPublisher.Close()
		}
	}

	friendshipRepo := repositories.NewFriendshipRepo(database)
	chatRepo := repositories.NewChatRepo(database)
	groupRepo := repositories.NewGroupRepo(database, repositories.NewRandomPicker())
	eventRepo := repositories.NewEventRepo(database)
	messageRepo := repositories.NewMessageRepo(database)

	hub := ws.NewHub()
	verifier := middleware.NewJWTVerifier(cfg.JWTSecret)

	friendshipHandler := handlers.NewFriendshipHandler(friendshipRepo, audit)
	chatHandler := handlers.NewChatHandler(chatRepo, friendshipRepo, audit)
	groupHandler := handlers.NewGroupHandler(groupRepo, hub, audit)
	eventHandler := handlers.NewEventHandler(eventRepo, chatRepo, audit)
	messageHandler := handlers.NewMessageHandler(messageRepo, hub, audit)
	chatWS := ws.NewChatWebSocketHandler(hub, chatRepo, verifier)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(serviceName))
	router.Use(observability.HTTPMetricsMiddleware())

	authMiddleware := middleware.AuthMiddleware(verifier)

	friends := router.Group("/friends", authMiddleware)
	{
		friends.POST("/requests", friendshipHandler.SendFriendRequest)
		friends.GET("", friendshipHandler.ListFriends)
		friends.GET("/requests/incoming", friendshipHandler.ListIncomingRequests)
		friends.PUT("/requests/:friendship_id/accept", friendshipHandler.AcceptFriendRequest)
		friends.PUT("/requests/:friendship_id/reject", friendshipHandler.RejectFriendRequest)
		friends.DELETE("/:friendship_id", friendshipHandler.RemoveFriend)
	}

	chats := router.Group("/chats", authMiddleware)
	{
		chats.GET("", chatHandler.ListChats)
		chats.POST("/private", chatHandler.StartPrivateChat)
		chats.POST("/groups", groupHandler.CreateGroup)
		chats.GET("/:chat_id/members", groupHandler.GetMembers)
		chats.POST("/:chat_id/members", groupHandler.AddMembers)
		chats.DELETE("/:chat_id/members/:user_id", groupHandler.RemoveMember)
		chats.POST("/:chat_id/leave", groupHandler.Leave)
		chats.POST("/:chat_id/members/:user_id/promote", groupHandler.Promote)
		chats.POST("/:chat_id/members/:user_id/demote", groupHandler.Demote)
		chats.PUT("/:chat_id/title", groupHandler.Rename)
		chats.POST("/:chat_id/messages", messageHandler.SendMessage)
		chats.GET("/:chat_id/messages", messageHandler.GetChatMessages)
	}

	messages := router.Group("/messages", authMiddleware)
	{
		messages.GET("/:message_id", messageHandler.GetMessage)
		messages.PUT("/:message_id", messageHandler.UpdateMessage)
		messages.DELETE("/:message_id", messageHandler.DeleteMessage)
	}

	events := router.Group("/events", authMiddleware)
	{
		events.POST("", eventHandler.CreateEvent)
		events.GET("", eventHandler.ListEvents)
		events.GET("/:event_id", eventHandler.GetEvent)
		events.PUT("/:event_id", eventHandler.UpdateEvent)
		events.DELETE("/:event_id", eventHandler.DeleteEvent)
		events.POST("/:event_id/participants", eventHandler.AddParticipants)
	}

	router.GET("/ws/chats/:chat_id", chatWS.Handle)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	handlers.RegisterDebugRoutes(router, audit, cfg.DebugRoutes)

	logger.WithFields(logrus.Fields{
		"port":        cfg.Port,
		"environment": cfg.Environment,
	}).Info("starting server")
	if err := router.Run(":" + cfg.Port); err != nil {
		logger.WithError(err).Fatal("server error")
	}
}

func initLogger(level string) *logrus.Logger {
	logger := logrus.StandardLogger()
	logger.SetFormatter(&logrus.JSONFormatter{})

	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		parsed = logrus.InfoLevel
	}
	logger.SetLevel(parsed)
	return logger
}
