package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"github.com/prasdika/fieldbooking/internal/adapter/cache"
	"github.com/prasdika/fieldbooking/internal/adapter/handler"
	"github.com/prasdika/fieldbooking/internal/adapter/mq"
	"github.com/prasdika/fieldbooking/internal/adapter/pubsub"
	"github.com/prasdika/fieldbooking/internal/adapter/repository/postgres"
	"github.com/prasdika/fieldbooking/internal/config"
	"github.com/prasdika/fieldbooking/internal/core/services"
	"github.com/prasdika/fieldbooking/internal/platform/database"
	"github.com/prasdika/fieldbooking/internal/platform/obs"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", slog.Any("error", err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := obs.InitTracer(ctx, "fieldbooking-api", cfg.OTLPEndpoint)
	if err != nil {
		logger.Error("failed to init tracer", slog.Any("error", err))
		os.Exit(1)
	}
	defer shutdownTracer(context.Background())

	db, err := database.NewPostgresDB(database.Config{
		Host:     cfg.DBHost,
		Port:     cfg.DBPort,
		User:     cfg.DBUser,
		Password: cfg.DBPassword,
		DBName:   cfg.DBName,
	}, logger)
	if err != nil {
		logger.Error("failed to connect to db after retries", slog.Any("error", err))
		os.Exit(1)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)
	defer db.Close()

	logger.Info("connecting to redis", slog.String("addr", cfg.RedisAddr))

	redisClient := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
		DB:   0,
	})

	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Error("failed to connect to redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer redisClient.Close()

	logger.Info("redis connected")

	notifyPublisher, err := mq.NewPublisher(cfg.AMQPURL, cfg.EventExchange)
	if err != nil {
		logger.Error("failed to connect to rabbitmq", slog.Any("error", err))
		os.Exit(1)
	}
	defer notifyPublisher.Close()

	logger.Info("rabbitmq connected", slog.String("exchange", cfg.EventExchange))

	fieldRepo := postgres.NewFieldRepository(db)
	bookingRepo := postgres.NewBookingRepository(db)
	paymentRepo := postgres.NewPaymentRepository(db)

	availabilityCache := cache.NewAvailabilityCache(redisClient, cfg.CacheTTL())
	publisher := pubsub.NewFanout(pubsub.NewRedisPublisher(redisClient), notifyPublisher)

	reservationService := services.NewReservationService(
		fieldRepo, bookingRepo, paymentRepo, availabilityCache, publisher, logger, cfg.GracePeriod())
	availabilityService := services.NewAvailabilityService(
		fieldRepo, bookingRepo, availabilityCache, logger, cfg.OpenHour, cfg.CloseHour)
	paymentBridge := services.NewPaymentBridge(paymentRepo, reservationService, logger)
	sweeper := services.NewSweeper(reservationService, bookingRepo, logger, cfg.SweepInterval())

	go sweeper.Run(ctx)

	bookingHandler := handler.NewBookingHandler(
		reservationService, availabilityService, paymentBridge, logger, cfg.SlotGranularity())

	router := gin.New()
	router.Use(gin.Recovery())
	bookingHandler.Register(router)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("server starting", slog.String("addr", cfg.HTTPAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server startup failed", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("server exiting")
}
