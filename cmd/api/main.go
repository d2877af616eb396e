package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/georgemunganga/kbeauty-backend/internal/modules/analytics"
	"github.com/georgemunganga/kbeauty-backend/internal/modules/auth"
	"github.com/georgemunganga/kbeauty-backend/internal/modules/bulkupload"
	"github.com/georgemunganga/kbeauty-backend/internal/modules/cart"
	"github.com/georgemunganga/kbeauty-backend/internal/modules/catalog"
	"github.com/georgemunganga/kbeauty-backend/internal/modules/content"
	"github.com/georgemunganga/kbeauty-backend/internal/modules/notification"
	"github.com/georgemunganga/kbeauty-backend/internal/modules/order"
	"github.com/georgemunganga/kbeauty-backend/internal/modules/payment"
	"github.com/georgemunganga/kbeauty-backend/internal/modules/report"
	"github.com/georgemunganga/kbeauty-backend/internal/modules/supplier"
	"github.com/georgemunganga/kbeauty-backend/internal/modules/user"
	"github.com/georgemunganga/kbeauty-backend/internal/platform/broker"
	"github.com/georgemunganga/kbeauty-backend/internal/platform/config"
	"github.com/georgemunganga/kbeauty-backend/internal/platform/database"
	"github.com/georgemunganga/kbeauty-backend/internal/platform/httpx"
	"github.com/georgemunganga/kbeauty-backend/internal/platform/logger"
	"github.com/georgemunganga/kbeauty-backend/internal/platform/storage"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("failed to load config")
	}
	log := logger.New(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to postgres")
	}
	defer db.Close()
	if err := database.EnsureSchema(ctx, db); err != nil {
		log.WithError(err).Fatal("failed to apply schema")
	}
	log.Info("connected to postgres")

	var publisher broker.Publisher = broker.Discard{Log: log}
	if cfg.RabbitMQ.URL != "" {
		client, err := broker.Dial(cfg.RabbitMQ.URL, cfg.RabbitMQ.PrefetchCount, log)
		if err != nil {
			log.WithError(err).Fatal("failed to connect to rabbitmq")
		}
		defer client.Close()
		publisher = client
		log.Info("connected to rabbitmq")
	} else {
		log.Warn("RABBITMQ_URL not set, queue messages will be discarded")
	}

	store, err := storage.NewLocal(cfg.Storage.Dir, cfg.Storage.PublicURL)
	if err != nil {
		log.WithError(err).Fatal("failed to initialise storage")
	}

	// Identity
	userRepo := user.NewPostgresRepository(db)
	userService := user.NewService(userRepo, log)
	authService := auth.NewService(userRepo, cfg.JWTSecret, cfg.JWTTTL)

	// Catalog and shopping
	catalogService := catalog.NewService(catalog.NewPostgresRepository(db), store, cfg.Shop.LowStockThreshold)
	cartService := cart.NewService(cart.NewPostgresRepository(db), catalogService, cart.Pricing{
		Currency:              cfg.Shop.Currency,
		FreeShippingThreshold: cfg.Shop.FreeShippingThreshold,
		ShippingFee:           cfg.Shop.ShippingFee,
	})

	// Orders and notifications
	notificationService := notification.NewService(notification.NewPostgresRepository(db), publisher, cfg.RabbitMQ.NotificationQueue, log)
	orderService := order.NewService(order.NewPostgresRepository(db), notificationService, publisher, cfg.RabbitMQ.OrderEventQueue, log)
	paymentService := payment.NewService(
		payment.NewPostgresRepository(db),
		cartService,
		userService,
		orderService,
		payment.NewSandboxGateway(cfg.Checkout.BaseURL),
		payment.URLs{Success: cfg.Checkout.SuccessURL, Cancel: cfg.Checkout.CancelURL},
		log,
	)

	// Suppliers and back office
	supplierService := supplier.NewService(supplier.NewPostgresRepository(db), userService, notificationService, catalogService, log)
	bulkService := bulkupload.NewService(bulkupload.NewPostgresRepository(db), store, supplierService, publisher, cfg.RabbitMQ.BulkUploadQueue, log)
	reportService := report.NewService(report.NewPostgresSource(db), cfg.Shop.LowStockThreshold, log)
	contentService := content.NewService(content.NewPostgresRepository(db))

	// Revenue dashboards read the facts the worker writes.
	var revenue analytics.Store
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
		revenue = ch
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(logger.RequestLogger(log))
	router.Use(middleware.Recoverer)

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := db.PingContext(r.Context()); err != nil {
			httpx.Error(w, http.StatusServiceUnavailable, "database unavailable")
			return
		}
		httpx.Respond(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	router.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(http.Dir(store.Dir()))))

	router.Route("/api/v1", func(api chi.Router) {
		api.Use(auth.Middleware(authService))

		auth.NewHandler(authService).RegisterRoutes(api)
		user.NewHandler(userService).RegisterRoutes(api)
		catalog.NewHandler(catalogService).RegisterRoutes(api)
		cart.NewHandler(cartService).RegisterRoutes(api)
		payment.NewHandler(paymentService).RegisterRoutes(api)
		order.NewHandler(orderService).RegisterRoutes(api)
		notification.NewHandler(notificationService).RegisterRoutes(api)
		supplier.NewHandler(supplierService).RegisterRoutes(api)
		bulkupload.NewHandler(bulkService).RegisterRoutes(api)
		report.NewHandler(reportService).RegisterRoutes(api)
		content.NewHandler(contentService).RegisterRoutes(api)
		if revenue != nil {
			analytics.NewHandler(revenue).RegisterRoutes(api)
		}
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.WithField("port", cfg.Port).Info("storefront API starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server failed")
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("graceful shutdown failed")
	}
}
