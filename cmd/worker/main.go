package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/Raymond9734/voicemail-drop-backend/internal/config"
	"github.com/Raymond9734/voicemail-drop-backend/internal/db"
	"github.com/Raymond9734/voicemail-drop-backend/internal/logger"
	"github.com/Raymond9734/voicemail-drop-backend/internal/queue"
	"github.com/Raymond9734/voicemail-drop-backend/internal/repository"
	"github.com/Raymond9734/voicemail-drop-backend/internal/worker"
)

var build = "develop"

func main() {
	cfg, help, err := config.Load(build)
	if err != nil {
		if errors.Is(err, config.ErrHelpWanted) {
			fmt.Println(help)
			return
		}
		fmt.Println(err)
		os.Exit(1)
	}

	log, err := logger.New("voicemail-drop-worker", cfg.Debug)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(cfg, log); err != nil {
		log.Error("startup", zap.Error(err))
		log.Sync()
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	// the API delivers in process when either is missing
	if cfg.InProcessQueue() {
		return errors.New("the worker needs both VMDROP_DB_HOST and VMDROP_REDIS_URL")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	log.Info("startup", zap.String("status", "initializing database support"), zap.String("host", cfg.DB.Host))

	database, err := db.New(ctx, db.Config{
		User:         cfg.DB.User,
		Password:     cfg.DB.Password,
		Host:         cfg.DB.Host,
		Name:         cfg.DB.Name,
		MaxIdleConns: cfg.DB.MaxIdleConns,
		MaxOpenConns: cfg.DB.MaxOpenConns,
		DisableTLS:   cfg.DB.DisableTLS,
	})
	if err != nil {
		return fmt.Errorf("connecting to db: %w", err)
	}
	defer database.Close()

	queueClient, err := queue.NewRedisClient(ctx, queue.RedisConfig{
		URL:       cfg.Redis.URL,
		QueueName: cfg.Redis.QueueName,
	}, log)
	if err != nil {
		return fmt.Errorf("connecting to redis: %w", err)
	}
	defer queueClient.Close()

	processor := worker.NewDropProcessor(
		repository.NewPostgres(database.DB),
		worker.NewSimulatedProvider(cfg.Worker.SuccessRate, 50*time.Millisecond, 200*time.Millisecond),
		queueClient,
		cfg.Worker.MaxRetryCount,
		log,
	)

	consumerErrors := make(chan error, 1)
	go func() {
		log.Info("starting drop consumer",
			zap.Int("concurrency", cfg.Worker.Concurrency),
			zap.Int("max_retry_count", cfg.Worker.MaxRetryCount),
		)
		consumerErrors <- queueClient.Consume(ctx, processor.Process, cfg.Worker.Concurrency)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-consumerErrors:
		if err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("consumer error: %w", err)
		}

	case sig := <-quit:
		log.Info("shutting down worker", zap.String("signal", sig.String()))

		// Consume returns once in-flight jobs have finished
		cancel()
		select {
		case <-consumerErrors:
		case <-time.After(cfg.Web.ShutdownTimeout):
			log.Warn("timed out waiting for in-flight drops")
		}

		log.Info("worker stopped gracefully")
	}

	return nil
}
