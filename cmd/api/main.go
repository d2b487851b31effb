package main

import (
	"context"
	"log"

	"wavechat/config"
	"wavechat/internal/gateway"
	"wavechat/internal/handler"
	appredis "wavechat/internal/redis"
	"wavechat/internal/repository"
	"wavechat/internal/server"
	"wavechat/internal/services"
	"wavechat/internal/storage"
	"wavechat/pkg/database"
	"wavechat/pkg/logger"
)

func main() {
	cfg := config.LoadConfig()

	mode := logger.DevelopmentMode
	if cfg.AppMode == server.ReleaseMode {
		mode = logger.ProductionMode
	}
	l := logger.New(mode)
	logger.SetGlobalLogger(l)

	database.Connect(cfg)
	db := database.DB

	redisClient := appredis.NewClient(appredis.Config{
		Host:     cfg.RedisHost,
		Port:     cfg.RedisPort,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := appredis.Ping(context.Background(), redisClient); err != nil {
		log.Fatalf("Failed to connect to redis: %v", err)
	}

	var fileStore *storage.Client
	if cfg.S3Bucket != "" {
		var err error
		fileStore, err = storage.NewClient(context.Background(), storage.S3Config{
			Region:     cfg.S3Region,
			Bucket:     cfg.S3Bucket,
			AccessKey:  cfg.S3AccessKey,
			SecretKey:  cfg.S3SecretKey,
			Endpoint:   cfg.S3Endpoint,
			PublicBase: cfg.S3PublicBase,
		})
		if err != nil {
			log.Fatalf("Failed to create s3 client: %v", err)
		}
	} else {
		l.Infof("S3 not configured, uploads disabled")
	}

	userRepo := repository.NewUserRepository(db)
	conversationRepo := repository.NewConversationRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	callRepo := repository.NewCallRepository(db)
	contactRepo := repository.NewContactRepository(db)

	hub := gateway.NewHub()

	conversationService := services.NewConversationService(conversationRepo, nil)
	messageService := services.NewMessageService(messageRepo, conversationRepo, fileStore)
	callService := services.NewCallService(callRepo)
	contactService := services.NewContactService(contactRepo, conversationService, nil)

	otpStore := appredis.NewOTPStore(redisClient)
	authService := services.NewAuthService(userRepo, otpStore, services.LogMailer{}, cfg)

	router := gateway.NewRouter(hub, hub.Presence(), hub.Rooms(), conversationService, messageService)
	hub.SetRouter(router)

	// The gateway router doubles as the services' realtime notifier.
	conversationService.SetNotifier(router)
	contactService.SetNotifier(router)

	bridge := gateway.NewBridge(redisClient, hub)
	hub.SetBridge(bridge)

	bridgeCtx, cancelBridge := context.WithCancel(context.Background())
	defer cancelBridge()
	go func() {
		if err := bridge.Run(bridgeCtx); err != nil && bridgeCtx.Err() == nil {
			l.Errorf("gateway bridge stopped: %s", err)
		}
	}()

	go hub.Run()
	defer hub.Stop()

	wsHandler := gateway.NewHandler(hub, gateway.TokenParserFunc(authService.ParseAccessToken))

	srv := server.New(cfg, l)
	srv.SetupRoutes(&server.Handlers{
		Auth:         handler.NewAuthHandler(authService),
		Call:         handler.NewCallHandler(callService),
		Conversation: handler.NewConversationHandler(conversationService),
		Contact:      handler.NewContactHandler(contactService),
		Message:      handler.NewMessageHandler(messageService),
		Upload:       handler.NewUploadHandler(fileStore),
		Gateway:      wsHandler,
	}, authService)

	if err := srv.Start(); err != nil {
		log.Fatalf("Server exited with error: %v", err)
	}
}
