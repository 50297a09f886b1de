package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/rentivu/config"
	"github.com/oksasatya/rentivu/internal/container"
	"github.com/oksasatya/rentivu/internal/domain/entity"
	"github.com/oksasatya/rentivu/internal/infrastructure/catalog"
	"github.com/oksasatya/rentivu/internal/infrastructure/storage"
	"github.com/oksasatya/rentivu/internal/interface/middleware"
	"github.com/oksasatya/rentivu/internal/router"
	"github.com/oksasatya/rentivu/pkg/helpers"
	"github.com/oksasatya/rentivu/pkg/validation"
)

func main() {
	_ = godotenv.Load() // load .env if present

	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName, cfg.Env, cfg.LogLevel)
	gin.SetMode(cfg.GinMode)
	validation.Init()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	backend, err := storage.Open(ctx, cfg, logger, true)
	if err != nil {
		log.Fatalf("failed to open storage: %v", err)
	}
	defer backend.Close()

	cat, err := catalog.NewStatic()
	if err != nil {
		log.Fatalf("failed to load rental catalog: %v", err)
	}

	// RabbitMQ is optional; events are dropped when it is not configured
	var pub *helpers.RabbitPublisher
	if cfg.RabbitMQURL != "" {
		pub, err = helpers.NewRabbitPublisher(cfg.RabbitMQURL, cfg.RabbitMQEventsQueue)
		if err != nil {
			logger.WithError(err).Warn("rabbitmq unavailable, events disabled")
			pub = nil
		} else {
			defer pub.Close()
		}
	}

	container.SetConfig(cfg)
	container.SetLogger(logger)
	container.SetPGPool(backend.Pool)
	container.SetRedis(backend.Redis)
	container.SetStorage(backend.Store)
	container.SetCatalog(cat)
	container.SetRabbitPub(pub)

	svc, err := container.BuildServices()
	if err != nil {
		log.Fatalf("failed to build services: %v", err)
	}
	container.SetServices(svc)

	if _, err := svc.Auth.Bootstrap(ctx); err != nil {
		log.Fatalf("bootstrap failed: %v", err)
	}

	svc.Watcher.OnChange(func(s entity.AuthState) {
		logger.WithFields(logrus.Fields{
			"authenticated": s.Authenticated(),
			"users":         len(s.Users),
		}).Debug("session changed")
	})
	go func() {
		if err := svc.Watcher.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.WithError(err).Warn("session watcher stopped")
		}
	}()

	// Gin engine and global middleware
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.RealIP())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins(),
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", middleware.HeaderRequestID},
		ExposeHeaders:    []string{"Content-Length", middleware.HeaderRequestID},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	if cfg.HTTPLogEnabled {
		r.Use(middleware.RequestLogger(logger))
	}

	reg := router.NewRegistry(r, "/api")
	router.InitModules(reg)
	reg.RegisterAll()

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r}
	go func() {
		logger.Infof("server starting on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("listen: %s\n", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down server")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctxShutdown); err != nil {
		logger.Errorf("server forced to shutdown: %v", err)
		os.Exit(1)
	}
	logger.Info("server exited properly")
}
