package main

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/georgemunganga/kbeauty-backend/internal/modules/analytics"
	"github.com/georgemunganga/kbeauty-backend/internal/modules/bulkupload"
	"github.com/georgemunganga/kbeauty-backend/internal/modules/catalog"
	"github.com/georgemunganga/kbeauty-backend/internal/modules/notification"
	"github.com/georgemunganga/kbeauty-backend/internal/modules/supplier"
	"github.com/georgemunganga/kbeauty-backend/internal/modules/user"
	"github.com/georgemunganga/kbeauty-backend/internal/platform/broker"
	"github.com/georgemunganga/kbeauty-backend/internal/platform/config"
	"github.com/georgemunganga/kbeauty-backend/internal/platform/database"
	"github.com/georgemunganga/kbeauty-backend/internal/platform/logger"
	"github.com/georgemunganga/kbeauty-backend/internal/platform/storage"
	"github.com/sirupsen/logrus"
)

// The worker consumes the queues the API publishes to: bulk uploads,
// notification delivery and, when ClickHouse is configured, order events.
func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("failed to load config")
	}
	log := logger.New(cfg.LogLevel, cfg.LogFormat)
	if cfg.RabbitMQ.URL == "" {
		log.Fatal("RABBITMQ_URL is required for the worker")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to postgres")
	}
	defer db.Close()

	store, err := storage.NewLocal(cfg.Storage.Dir, cfg.Storage.PublicURL)
	if err != nil {
		log.WithError(err).Fatal("failed to initialise storage")
	}

	// Each consumer gets its own connection and channel.
	dial := func() *broker.Client {
		c, err := broker.Dial(cfg.RabbitMQ.URL, cfg.RabbitMQ.PrefetchCount, log)
		if err != nil {
			log.WithError(err).Fatal("failed to connect to rabbitmq")
		}
		return c
	}

	catalogService := catalog.NewService(catalog.NewPostgresRepository(db), store, cfg.Shop.LowStockThreshold)
	userService := user.NewService(user.NewPostgresRepository(db), log)
	notifications := notification.NewService(notification.NewPostgresRepository(db), broker.Discard{Log: log}, "", log)
	supplierService := supplier.NewService(supplier.NewPostgresRepository(db), userService, notifications, catalogService, log)
	processor := bulkupload.NewProcessor(bulkupload.NewPostgresRepository(db), store, catalogService, supplierService,
		cfg.BulkUpload.StaleAfter, log)

	consumers := map[string]broker.Handler{
		cfg.RabbitMQ.BulkUploadQueue:   processor.Handler(),
		cfg.RabbitMQ.NotificationQueue: notification.DeliveryHandler(log),
	}

	if cfg.ClickHouse.Host != "" {
		ch, err := analytics.Open(ctx, analytics.Config{
			Host:     cfg.ClickHouse.Host,
			Port:     cfg.ClickHouse.Port,
			Database: cfg.ClickHouse.Database,
			Username: cfg.ClickHouse.Username,
			Password: cfg.ClickHouse.Password,
		})
		if err != nil {
			log.WithError(err).Fatal("failed to connect to clickhouse")
		}
		defer ch.Close()
		if err := ch.EnsureTable(ctx); err != nil {
			log.WithError(err).Fatal("failed to create order_events table")
		}
		consumers[cfg.RabbitMQ.OrderEventQueue] = analytics.NewSink(ch, log).Handler()
	} else {
		log.Warn("CLICKHOUSE_HOST not set, order events will stay queued")
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		processor.RunSweeper(ctx, cfg.BulkUpload.SweepInterval)
	}()

	for queue, handler := range consumers {
		client := dial()
		defer client.Close()

		wg.Add(1)
		go func(queue string, handler broker.Handler) {
			defer wg.Done()
			if err := client.Consume(ctx, queue, handler); err != nil {
				log.WithError(err).WithField("queue", queue).Error("consumer stopped")
				stop()
			}
		}(queue, handler)
	}
	log.WithField("queues", len(consumers)).Info("all consumers started")

	<-ctx.Done()
	log.Info("shutting down workers")
	wg.Wait()
	log.Info("workers stopped")
}
