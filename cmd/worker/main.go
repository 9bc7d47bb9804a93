package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"edgesync/internal/config"
	"edgesync/internal/database"
	"edgesync/internal/edge"
	"edgesync/internal/events"
	"edgesync/internal/logger"
	"edgesync/internal/mailer"
	"edgesync/internal/scheduler"
	"edgesync/internal/store"
	"edgesync/internal/sync"
	"edgesync/internal/transport"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	// Initialize logger
	logger := logger.New(cfg.LogLevel)

	// Initialize database
	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("Failed to connect to database: %v", err)
	}

	// Stores
	users := store.NewUserStore(db.DB)
	products := store.NewProductStore(db.DB)
	orders := store.NewOrderStore(db.DB)
	state := store.NewStateStore(db.DB)

	transformer := edge.NewTransformer(cfg.VendorID)
	publisher := events.NewPublisher(cfg.KafkaBrokers, logger)
	defer publisher.Close()

	exporter := &sync.Exporter{
		Logger:      logger,
		State:       state,
		Users:       users,
		Transformer: transformer,
	}

	edgeConn := transport.Config{
		Kind:     cfg.ConnectionKind,
		Host:     cfg.EdgeHost,
		Username: cfg.EdgeUsername,
		Password: cfg.EdgePassword,
		Port:     cfg.EdgePort,
	}

	// Scheduled flows run under their own namespace with a long chunk TTL:
	// chunks may sit for hours between cron wakeups.
	coordinator := sync.New(sync.Options{
		Namespace:         "scheduled",
		ChunkTTL:          24 * time.Hour,
		CustomerChunkSize: cfg.CustomerChunkSize,
		ProductChunkSize:  cfg.ProductChunkSize,
		BackfillChunkSize: cfg.BackfillChunkSize,
		RemoteFolder:      cfg.RemoteFolder,
		Transport:         edgeConn,
		UploadsDir:        cfg.UploadsDir,
		SiteURL:           cfg.SiteURL,
	}, sync.Deps{
		Logger:      logger,
		Dial:        transport.Dial,
		Jobs:        store.NewJobStore(db.DB),
		Chunks:      store.NewChunkStore(db.DB),
		State:       state,
		Users:       users,
		Products:    products,
		Transformer: transformer,
		Exporter:    exporter,
		Mailer:      mailer.New(cfg, logger),
		Events:      publisher,
	})

	orderManager := &sync.OrderManager{
		Logger:       logger,
		Dial:         transport.Dial,
		Transport:    edgeConn,
		RemoteFolder: cfg.RemoteFolder,
		Orders:       orders,
		Users:        users,
		Products:     products,
		State:        state,
		Transformer:  transformer,
		Exporter:     exporter,
		Events:       publisher,
	}

	// Cron-driven imports
	sched := scheduler.New(cfg, logger, coordinator)
	if err := sched.Start(); err != nil {
		logger.Fatal("Failed to start scheduler: %v", err)
	}

	// Order events from the storefront
	consumer := events.NewOrderConsumer(cfg.KafkaBrokers, logger, orderManager.SyncOrder)
	logger.Info("Starting worker...")
	go consumer.Start()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down worker...")
	consumer.Stop()
	sched.Stop()
}
