package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/jaeger"
	"go.opentelemetry.io/otel/sdk/resource"
	tracesdk "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.4.0"
	"go.uber.org/zap"

	"github.com/Raymond9734/voicemail-drop-backend/internal/auth"
	"github.com/Raymond9734/voicemail-drop-backend/internal/config"
	"github.com/Raymond9734/voicemail-drop-backend/internal/db"
	"github.com/Raymond9734/voicemail-drop-backend/internal/handler"
	"github.com/Raymond9734/voicemail-drop-backend/internal/logger"
	"github.com/Raymond9734/voicemail-drop-backend/internal/queue"
	"github.com/Raymond9734/voicemail-drop-backend/internal/repository"
	"github.com/Raymond9734/voicemail-drop-backend/internal/repository/memory"
	"github.com/Raymond9734/voicemail-drop-backend/internal/service"
	"github.com/Raymond9734/voicemail-drop-backend/internal/worker"
)

var build = "develop"

const serviceName = "voicemail-drop-api"

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

	log, err := logger.New(serviceName, cfg.Debug)
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
	ctx := context.Background()

	log.Info("startup", zap.String("build", build))
	log.Info("startup", zap.String("config", cfg.String()))

	// =========================================================================
	// Tracing Support

	if cfg.TracingEnabled() {
		log.Info("startup", zap.String("status", "initializing OT/Jaeger tracing support"))

		traceProvider, err := startTracing(cfg.Tracing.ServiceName, cfg.Tracing.ReporterURI, cfg.Tracing.Probability)
		if err != nil {
			return fmt.Errorf("starting tracing: %w", err)
		}
		defer traceProvider.Shutdown(context.Background())
	}

	// =========================================================================
	// Data Source

	var ds repository.DataSource

	if cfg.DemoData() {
		log.Info("startup", zap.String("status", "no database configured, serving demo data"))
		ds = memory.NewDemoDataSource()
	} else {
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
		defer func() {
			log.Info("shutdown", zap.String("status", "stopping database support"), zap.String("host", cfg.DB.Host))
			database.Close()
		}()

		if cfg.DB.Migrate {
			log.Info("startup", zap.String("status", "updating database schema"), zap.String("database", cfg.DB.Name))
			if err := database.Migrate(ctx); err != nil {
				return fmt.Errorf("updating database schema: %w", err)
			}
		}

		ds = repository.NewPostgres(database.DB)
	}

	// =========================================================================
	// Queue

	var (
		queueClient queue.Client
		consumers   sync.WaitGroup
	)

	consumerCtx, stopConsumers := context.WithCancel(ctx)
	defer func() {
		stopConsumers()
		consumers.Wait()
	}()

	if cfg.InProcessQueue() {
		log.Info("startup", zap.String("status", "no redis configured, delivering drops in process"))

		queueClient = queue.NewMemoryClient(0, log)

		processor := worker.NewDropProcessor(
			ds,
			worker.NewSimulatedProvider(cfg.Worker.SuccessRate, 50*time.Millisecond, 200*time.Millisecond),
			queueClient,
			cfg.Worker.MaxRetryCount,
			log.Named("worker"),
		)

		consumers.Add(1)
		go func() {
			defer consumers.Done()
			if err := queueClient.Consume(consumerCtx, processor.Process, cfg.Worker.Concurrency); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("in-process consumer stopped", zap.Error(err))
			}
		}()
	} else {
		client, err := queue.NewRedisClient(ctx, queue.RedisConfig{
			URL:       cfg.Redis.URL,
			QueueName: cfg.Redis.QueueName,
		}, log)
		if err != nil {
			return fmt.Errorf("connecting to redis: %w", err)
		}
		queueClient = client
	}
	defer queueClient.Close()

	// =========================================================================
	// Router

	log.Info("startup", zap.String("status", "initializing router"))

	var issuer *auth.Issuer
	if cfg.Auth.Secret != "" {
		issuer = auth.NewIssuer(cfg.Auth.Secret, cfg.Auth.TokenTTL)
	} else {
		log.Warn("startup", zap.String("status", "no auth secret, every request acts as the demo organization"))
	}

	otelLog := otelzap.New(log, otelzap.WithStackTrace(true))
	customerSvc := service.NewCustomerService(ds.Customers, cfg.Import.MaxBatchSize, log)
	campaignSvc := service.NewCampaignService(ds, service.NewScriptService(), queueClient, log)

	router := handler.NewRouter(handler.RouterConfig{
		ServiceName:      serviceName,
		Logger:           otelLog,
		Customers:        customerSvc,
		Campaigns:        campaignSvc,
		Drops:            service.NewDropService(ds, log),
		DBCheck:          ds.Health,
		Queue:            queueClient,
		Issuer:           issuer,
		CookieName:       cfg.Auth.CookieName,
		DemoOrganization: cfg.Auth.DemoOrganization,
		CORSOrigin:       cfg.Web.CORSOrigin,
		MaxFileSize:      cfg.Import.MaxFileSize,
	})

	// =========================================================================
	// Start API Server

	server := &http.Server{
		Addr:         cfg.Web.Host,
		Handler:      router,
		ReadTimeout:  cfg.Web.ReadTimeout,
		WriteTimeout: cfg.Web.WriteTimeout,
		IdleTimeout:  cfg.Web.IdleTimeout,
		ErrorLog:     zap.NewStdLog(log),
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)
	go func() {
		log.Info("startup", zap.String("status", "api router started"), zap.String("host", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		log.Info("shutdown", zap.String("status", "shutdown started"), zap.String("signal", sig.String()))
		defer log.Info("shutdown", zap.String("status", "shutdown complete"))

		ctx, cancel := context.WithTimeout(context.Background(), cfg.Web.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			server.Close()
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
	}

	return nil
}

func startTracing(serviceName, reporterURL string, probability float64) (*tracesdk.TracerProvider, error) {
	exp, err := jaeger.New(jaeger.WithCollectorEndpoint(jaeger.WithEndpoint(reporterURL)))
	if err != nil {
		return nil, fmt.Errorf("creating new exporter: %w", err)
	}

	tp := tracesdk.NewTracerProvider(
		tracesdk.WithSampler(tracesdk.ParentBased(tracesdk.TraceIDRatioBased(probability))),
		tracesdk.WithBatcher(exp,
			tracesdk.WithMaxExportBatchSize(tracesdk.DefaultMaxExportBatchSize),
			tracesdk.WithBatchTimeout(tracesdk.DefaultScheduleDelay*time.Millisecond),
		),
		tracesdk.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceNameKey.String(serviceName),
			attribute.String("exporter", "jaeger"),
		)),
	)

	otel.SetTracerProvider(tp)
	return tp, nil
}
