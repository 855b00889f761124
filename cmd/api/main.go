package main

import (
	"context"
	"time"

	"pulsechat/config"
	"pulsechat/internal/fanout"
	"pulsechat/internal/handler"
	"pulsechat/internal/redis"
	"pulsechat/internal/repository"
	"pulsechat/internal/server"
	"pulsechat/internal/services"
	"pulsechat/internal/storage"
	ws "pulsechat/internal/websocket"
	"pulsechat/pkg/database"
	"pulsechat/pkg/logger"
)

func main() {
	cfg := config.LoadConfig()

	mode := logger.DevelopmentMode
	if cfg.AppMode == server.ReleaseMode {
		mode = logger.ProductionMode
	}
	l := logger.New(mode)
	logger.SetGlobalLogger(l)
	defer func() { _ = l.Logger.Sync() }()

	database.Connect(cfg)
	defer database.Close()

	redisClient := redis.NewClient(redis.Config{
		Host:     cfg.RedisHost,
		Port:     cfg.RedisPort,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	defer func() { _ = redisClient.Close() }()
	presenceStore := redis.NewPresenceStore(redisClient, 24*time.Hour)
	limiter := redis.NewRateLimiter(redisClient, redis.DefaultRateLimitConfig())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := ws.NewHub()
	go hub.Run(ctx)

	registry := services.NewPresenceRegistry()
	scheduler := services.NewDeliveryScheduler()
	defer scheduler.Stop()

	chatRepo := repository.NewChatRepository(database.DB)
	messageRepo := repository.NewMessageRepository(database.DB)
	userRepo := repository.NewUserRepository(database.DB)
	contactRepo := repository.NewContactRepository(database.DB)

	publisher := fanout.NewHubPublisher(hub, l)

	presenceService := services.NewPresenceService(registry, scheduler, userRepo, chatRepo, contactRepo, presenceStore, publisher, l)
	messageService := services.NewMessageService(chatRepo, messageRepo, userRepo, registry, scheduler, publisher, l, cfg.DeliveredDelay)
	chatService := services.NewChatService(chatRepo, userRepo)
	userService := services.NewUserService(userRepo, chatRepo, presenceService, publisher)
	contactService := services.NewContactService(contactRepo, userRepo)

	var uploadService *services.UploadService
	if cfg.S3Bucket != "" {
		store, err := storage.NewClient(ctx, storage.S3Config{
			Region:     cfg.S3Region,
			Bucket:     cfg.S3Bucket,
			AccessKey:  cfg.S3AccessKey,
			SecretKey:  cfg.S3SecretKey,
			Endpoint:   cfg.S3Endpoint,
			PublicBase: cfg.S3PublicURL,
		})
		if err != nil {
			l.Errorf("s3 storage disabled: %v", err)
		} else {
			uploadService = services.NewUploadService(store)
		}
	}
	if uploadService == nil {
		uploadService = services.NewUploadService(nil)
	}

	secret := []byte(cfg.JWTSecret)
	handlers := &server.Handlers{
		Chat:    handler.NewChatHandler(chatService),
		Message: handler.NewMessageHandler(messageService),
		User:    handler.NewUserHandler(userService),
		Contact: handler.NewContactHandler(contactService),
		Upload:  handler.NewUploadHandler(uploadService),
		WS:      handler.NewWSHandler(hub, presenceService, messageService, secret, l),
	}

	srv := server.New(cfg, l)
	srv.SetupRoutes(handlers, limiter, presenceStore)

	if err := srv.Start(); err != nil {
		l.Errorf("server exited: %v", err)
	}
}
