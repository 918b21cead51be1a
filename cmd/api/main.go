package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/Z-testacc/ActiLeap/internal/api"
	"github.com/Z-testacc/ActiLeap/internal/auth"
	"github.com/Z-testacc/ActiLeap/internal/config"
	"github.com/Z-testacc/ActiLeap/internal/domain"
	"github.com/Z-testacc/ActiLeap/internal/failure"
	"github.com/Z-testacc/ActiLeap/internal/insights"
	"github.com/Z-testacc/ActiLeap/internal/leaderboard"
	"github.com/Z-testacc/ActiLeap/internal/outbox"
	persistence "github.com/Z-testacc/ActiLeap/internal/persistence/postgres"
	httptransport "github.com/Z-testacc/ActiLeap/internal/transport/http"
)

func main() {
	cfg := config.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.PostgresURL)
	if err != nil {
		logger.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer pool.Close()

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer redisClient.Close()

	repo := persistence.NewRepository(pool)
	producer := outbox.NewKafkaProducer(cfg.KafkaBrokers)
	defer producer.Close()

	registry := outbox.NewSchemaRegistryClient(cfg.SchemaRegistryURL)
	dispatcher := outbox.NewDispatcher(pool, producer, registry, logger, cfg.OutboxPollInterval, cfg.OutboxBatchSize)

	go dispatcher.Start(ctx)

	bus := failure.NewBus()
	events, unsubscribe := bus.Subscribe()
	defer unsubscribe()
	go func() {
		for event := range events {
			logger.Warn("store operation failed",
				zap.String("path", event.Path),
				zap.String("operation", string(event.Operation)),
				zap.Any("request_resource_data", event.RequestResourceData))
		}
	}()

	board := leaderboard.NewBoard(redisClient)
	service := domain.NewService(repo, bus,
		domain.WithLogger(logger),
		domain.WithRankUpdater(board),
	)

	insightsClient := insights.NewClient(cfg.InsightsURL)

	handler := api.NewHandler(service, board, insightsClient)
	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)
	mux.Handle("/metrics", promhttp.Handler())

	cors := httptransport.CORS(cfg.CORSOrigin)
	requestLog := httptransport.RequestLogging(logger)
	authMiddleware := auth.NewMiddleware(auth.Config{Secret: cfg.JWTSecret, Issuer: cfg.JWTIssuer}, nil)

	server := httptransport.NewServer(httptransport.ServerConfig{
		Address:      cfg.HTTPAddress,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}, authMiddleware.Wrap(requestLog(cors(mux))))

	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.Info("api listening", zap.String("address", cfg.HTTPAddress))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	<-shutdownCh
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("graceful shutdown failed", zap.Error(err))
	}

	dispatcher.Wait()
}
