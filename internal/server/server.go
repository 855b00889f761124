package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pulsechat/config"
	"pulsechat/internal/handler"
	"pulsechat/internal/middleware"
	"pulsechat/internal/redis"
	"pulsechat/internal/transport/httpdto"
	"pulsechat/pkg/database"
	"pulsechat/pkg/logger"

	"github.com/gin-gonic/gin"
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
	Chat    *handler.ChatHandler
	Message *handler.MessageHandler
	User    *handler.UserHandler
	Contact *handler.ContactHandler
	Upload  *handler.UploadHandler
	WS      *handler.WSHandler
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

func (s *Server) SetupRoutes(handlers *Handlers, limiter *redis.RateLimiter, presence *redis.PresenceStore) {
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
		body := gin.H{"status": "healthy"}
		if presence != nil {
			if n, err := presence.OnlineCount(c.Request.Context()); err == nil {
				body["online_users"] = n
			}
		}
		c.JSON(http.StatusOK, httpdto.NewSuccessResponse(body))
	})

	authed := s.engine.Group("/v1", middleware.AuthMiddleware([]byte(s.config.JWTSecret)))
	{
		chats := authed.Group("/chats")
		{
			chats.POST("", handlers.Chat.Start)
			chats.GET("", handlers.Chat.List)
			chats.POST("/:id/archive", handlers.Chat.Archive)
			chats.DELETE("/:id/archive", handlers.Chat.Unarchive)
			chats.POST("/:id/hide", handlers.Chat.Hide)
		}

		messages := authed.Group("/messages")
		{
			sendLimited := messages.Group("")
			if limiter != nil {
				sendLimited.Use(middleware.MessageRateLimitMiddleware(limiter))
			}
			sendLimited.POST("", handlers.Message.Send)
			sendLimited.POST("/:id/forward", handlers.Message.Forward)

			messages.GET("", handlers.Message.History)
			messages.POST("/read", handlers.Message.MarkRead)
			messages.PUT("/:id/status", handlers.Message.SetStatus)
			messages.PUT("/:id/reaction", handlers.Message.React)
			messages.DELETE("/:id/reaction", handlers.Message.Unreact)
			messages.DELETE("/:id", handlers.Message.Delete)
		}

		users := authed.Group("/users")
		{
			users.GET("/me", handlers.User.Me)
			users.PUT("/me", handlers.User.UpdateProfile)
			users.GET("/lookup", handlers.User.Lookup)
			users.GET("/:id", handlers.User.GetByID)
		}

		contacts := authed.Group("/contacts")
		{
			contacts.GET("", handlers.Contact.List)
			contacts.PUT("/:userId", handlers.Contact.Save)
			contacts.DELETE("/:userId", handlers.Contact.Remove)
		}

		authed.POST("/uploads", handlers.Upload.Create)
	}

	// The socket authenticates with a query token; the Bearer middleware
	// cannot see websocket upgrade requests from browsers.
	s.engine.GET("/v1/ws", handlers.WS.Connect)
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
