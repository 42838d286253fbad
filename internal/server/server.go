// Package server wires the storage, auth, cache and handler layers into one
// Gin engine and owns the process lifecycle.
package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"boardbuilder/internal/apiutil"
	"boardbuilder/internal/auth"
	"boardbuilder/internal/cache"
	"boardbuilder/internal/config"
	"boardbuilder/internal/handler"
	"boardbuilder/internal/middleware"
	"boardbuilder/internal/repository"
	"boardbuilder/internal/service"
)

const cacheKeyPrefix = "boardbuilder:"

type Server struct {
	Engine *gin.Engine
	DB     *gorm.DB
	Redis  *redis.Client
	Config *config.Config
	Logger *zap.Logger
}

// Init builds the whole dependency graph from configuration.
func Init(cfg *config.Config) (*Server, error) {
	var logger *zap.Logger
	var err error
	if cfg.IsProduction() {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	// Redis is optional: without an address the response cache is a no-op.
	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			logger.Warn("redis unreachable, response cache disabled", zap.Error(err))
			redisClient = nil
		}
	}

	userRepo := repository.NewUserRepository(db)
	boardRepo := repository.NewBoardRepository(db)
	elementRepo := repository.NewElementRepository(db)
	collabRepo := repository.NewCollaboratorRepository(db)

	boardService := service.NewBoardService(boardRepo, elementRepo, userRepo, logger)
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTExpiryHours)

	userHandler := handler.NewUserHandler(userRepo, tokens, logger)
	boardHandler := handler.NewBoardHandler(boardService, collabRepo, redisClient, cacheKeyPrefix, logger)
	elementHandler := handler.NewElementHandler(boardService, boardHandler, logger)
	collabHandler := handler.NewCollaboratorHandler(collabRepo, userRepo, boardHandler, logger)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	apiutil.SetDebug(!cfg.IsProduction())
	engine := gin.New()
	engine.Use(gin.Recovery())

	engine.POST("/register", userHandler.Register)
	engine.POST("/login", userHandler.Login)

	// Public board pages resolve the session when present; anonymous
	// visitors see only public boards.
	engine.GET("/u/:username/:slug", middleware.OptionalAuth(tokens), boardHandler.GetBySlug)

	api := engine.Group("/api", middleware.RequireAuth(tokens))
	api.Use(cache.Middleware(redisClient, cache.Config{
		TTL:       30 * time.Second,
		KeyPrefix: cacheKeyPrefix,
	}, logger))
	{
		api.POST("/boards", boardHandler.Create)
		api.GET("/boards", boardHandler.List)
		api.GET("/boards/:id", boardHandler.GetByID)
		api.PUT("/boards/:id", boardHandler.Update)
		api.DELETE("/boards/:id", boardHandler.Delete)

		api.GET("/boards/:id/elements", elementHandler.List)
		api.PUT("/boards/:id/elements", elementHandler.Sync)

		api.POST("/boards/:id/collaborators", collabHandler.Share)
		api.GET("/boards/:id/collaborators", collabHandler.List)
		api.DELETE("/boards/:id/collaborators/:user_id", collabHandler.Remove)
		api.GET("/shared-boards", collabHandler.SharedBoards)
	}

	return &Server{
		Engine: engine,
		DB:     db,
		Redis:  redisClient,
		Config: cfg,
		Logger: logger,
	}, nil
}

// Run serves until SIGINT/SIGTERM, then drains in-flight requests.
func (s *Server) Run() error {
	srv := &http.Server{
		Addr:    ":" + s.Config.ServerPort,
		Handler: s.Engine,
	}

	go func() {
		s.Logger.Info("server listening", zap.String("port", s.Config.ServerPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.Logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	s.Logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return err
	}

	if s.Redis != nil {
		if err := s.Redis.Close(); err != nil {
			s.Logger.Warn("redis close failed", zap.Error(err))
		}
	}
	s.Logger.Info("server stopped")
	return nil
}
