package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"wavechat/config"
	"wavechat/internal/gateway"
	"wavechat/internal/handler"
	"wavechat/internal/middleware"
	"wavechat/internal/services"
	"wavechat/internal/transport/httpdto"
	"wavechat/pkg/database"
	"wavechat/pkg/logger"
)

type Server struct {
	httpServer *http.Server
	engine     *gin.Engine
	config     *config.Config
	logger     *logger.Logger
}

var (
	ReleaseMode = "release"
	DebugMode   = "debug"
	TestMode    = "test"
)

type Handlers struct {
	Auth         *handler.AuthHandler
	Call         *handler.CallHandler
	Conversation *handler.ConversationHandler
	Contact      *handler.ContactHandler
	Message      *handler.MessageHandler
	Upload       *handler.UploadHandler
	Gateway      *gateway.Handler
}

func New(cfg *config.Config, l *logger.Logger) *Server {
	if cfg.AppMode == ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	} else if cfg.AppMode == TestMode {
		gin.SetMode(gin.TestMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())

	return &Server{
		httpServer: &http.Server{
			Addr:    fmt.Sprintf(":%s", cfg.AppPort),
			Handler: engine,
		},
		engine: engine,
		config: cfg,
		logger: l,
	}
}

func (s *Server) SetupRoutes(handlers *Handlers, authService *services.AuthService) {
	s.engine.Use(middleware.RequestIDMiddleware())
	s.engine.Use(middleware.CORSMiddleware())
	s.engine.Use(middleware.LoggingMiddleware(s.logger))
	s.engine.Use(middleware.ErrorHandler(s.logger))

	s.engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"message": "pong"}))
	})

	s.engine.GET("/health", func(c *gin.Context) {
		if err := database.HealthCheck(); err != nil {
			c.JSON(http.StatusServiceUnavailable, httpdto.NewErrorResponse(err.Error(), "UNHEALTHY"))
			return
		}
		c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"status": "healthy"}))
	})

	s.engine.GET("/ws", handlers.Gateway.Handle)

	authRequired := middleware.AuthMiddleware(authService)

	auth := s.engine.Group("/v1/auth")
	{
		auth.POST("/register", handlers.Auth.Register)
		auth.POST("/verify", handlers.Auth.VerifyEmail)
		auth.POST("/otp/resend", handlers.Auth.ResendOTP)
		auth.POST("/login", handlers.Auth.Login)
		auth.GET("/me", authRequired, handlers.Auth.Me)
	}

	contacts := s.engine.Group("/v1/contacts", authRequired)
	{
		contacts.POST("", handlers.Contact.Request)
		contacts.GET("", handlers.Contact.ListMine)
		contacts.POST("/:id/accept", handlers.Contact.Accept)
		contacts.POST("/:id/reject", handlers.Contact.Reject)
		contacts.DELETE("/:id", handlers.Contact.Cancel)
	}

	conversations := s.engine.Group("/v1/conversations", authRequired)
	{
		conversations.POST("/group", handlers.Conversation.CreateGroup)
		conversations.GET("", handlers.Conversation.ListMine)
		conversations.GET("/:id", handlers.Conversation.GetByID)
		conversations.PATCH("/:id", handlers.Conversation.Update)
		conversations.DELETE("/:id", handlers.Conversation.Dissolve)
		conversations.POST("/:id/members", handlers.Conversation.AddMember)
		conversations.DELETE("/:id/members/:user_id", handlers.Conversation.RemoveMember)
		conversations.PATCH("/:id/members/:user_id", handlers.Conversation.ChangeAdmin)
		conversations.POST("/:id/messages", handlers.Message.Send)
		conversations.GET("/:id/messages", handlers.Message.ListByConversation)
	}

	calls := s.engine.Group("/v1/calls", authRequired)
	{
		calls.POST("", handlers.Call.Initiate)
		calls.GET("", handlers.Call.ListByConversation)
		calls.GET("/:id", handlers.Call.GetByID)
		calls.POST("/:id/accept", handlers.Call.Accept)
		calls.POST("/:id/reject", handlers.Call.Reject)
		calls.POST("/:id/end", handlers.Call.End)
		calls.POST("/:id/cancel", handlers.Call.Cancel)
		calls.PATCH("/:id/recording", handlers.Call.SetRecording)
		calls.POST("/:id/metrics", handlers.Call.RecordQualityMetric)
	}

	uploads := s.engine.Group("/v1/uploads", authRequired)
	{
		uploads.POST("/presign", handlers.Upload.Presign)
	}
}

func (s *Server) Start() error {
	go func() {
		if s.logger != nil {
			s.logger.Infof("Starting the server on port %s...", s.config.AppPort)
		}
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			if s.logger != nil {
				s.logger.Errorf("Error in starting the server: %s", err)
			}
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	if s.logger != nil {
		s.logger.Infof("Server is running on :%s", s.config.AppPort)
	}

	<-quit

	if s.logger != nil {
		s.logger.Infof("Quitting signal received.. Shutting down after 5 seconds")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		if s.logger != nil {
			s.logger.Infof("Error in the graceful shutdown of the server: %s", err)
		}
		return err
	}

	if s.logger != nil {
		s.logger.Infof("Server stopped gracefully")
	}

	return nil
}
