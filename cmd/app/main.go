package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hoteldesk/internal/cache"
	"hoteldesk/internal/chat"
	"hoteldesk/internal/config"
	"hoteldesk/internal/httpserver"
	"hoteldesk/internal/intent"
	"hoteldesk/internal/logging"
	"hoteldesk/internal/messaging"
	"hoteldesk/internal/metrics"
	"hoteldesk/internal/registration"
	"hoteldesk/internal/repo"
	"hoteldesk/internal/wa"
	"hoteldesk/migrations"

	"github.com/joho/godotenv"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := logging.NewLogger(cfg.LogLevel, cfg.LogFormat)
	logger.Info("starting hoteldesk", "env", cfg.AppEnv, "hotel", cfg.HotelName)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metricRegistry := metrics.Registry(cfg.MetricsNamespace)

	var store repo.Store
	if cfg.DatabaseURL != "" {
		repository, err := repo.New(ctx, cfg.DatabaseURL, cfg.DatabaseSchema, logger)
		if err != nil {
			return fmt.Errorf("init repository: %w", err)
		}
		store = repository
	} else {
		logger.Info("no DATABASE_URL configured, using sqlite", "path", cfg.SQLitePath)
		repository, err := repo.NewSQLite(ctx, cfg.SQLitePath, logger)
		if err != nil {
			return fmt.Errorf("init sqlite repository: %w", err)
		}
		store = repository
	}
	defer store.Close()

	if err := store.RunMigrations(ctx, migrations.Files); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	logger.Info("database migrated")

	redisClient := cache.New(cache.Config{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
		UseTLS:   cfg.RedisTLS,
	}, logger)
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("failed closing redis", "error", err)
		}
	}()
	if err := redisClient.Ping(ctx); err != nil {
		logger.Warn("redis ping failed", "error", err)
	}

	resolver := intent.NewResolver()

	var sender messaging.Sender = disabledSender{}
	if cfg.WhatsAppEnabled {
		waClient, err := wa.New(ctx, wa.Config{
			StorePath: cfg.WhatsAppStorePath,
			LogLevel:  cfg.WhatsAppLogLevel,
			Metrics:   metricRegistry,
		}, logger)
		if err != nil {
			return fmt.Errorf("init whatsapp client: %w", err)
		}
		defer waClient.Close()

		processor := chat.NewWhatsAppProcessor(store, redisClient, resolver, waClient, metricRegistry, logger)
		waClient.SetMessageProcessor(processor)
		sender = waClient

		waCtx, waCancel := context.WithCancel(ctx)
		defer waCancel()
		go func() {
			if err := waClient.Start(waCtx); err != nil {
				logger.Error("whatsapp client stopped", "error", err)
				stop()
			}
		}()
	} else {
		logger.Warn("whatsapp channel disabled, outbound sends will fail")
	}

	chatEngine := chat.NewEngine(store, redisClient, resolver, metricRegistry, logger, cfg.ChatSessionTTL)
	registrationService := registration.New(store, metricRegistry, logger)
	composer := messaging.NewComposer(nil)
	messagingService := messaging.New(store, sender, composer, metricRegistry, logger, cfg.ChatbotURL())

	httpSrv := httpserver.New(cfg.HTTPListenAddr, logger, metricRegistry, httpserver.Dependencies{
		Store:        store,
		Chat:         chatEngine,
		Registration: registrationService,
		Messaging:    messagingService,
	}, cfg.PublicBasePath)

	errCh := make(chan error, 1)
	go func() {
		if err := httpSrv.Start(); err != nil {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server error: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}

	return nil
}

// disabledSender stands in for the WhatsApp client when the channel is off.
type disabledSender struct{}

func (disabledSender) SendToNumber(context.Context, string, string) error {
	return errors.New("whatsapp channel is disabled")
}
