package main

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"qnotify/config"
	mqcontracts "qnotify/contracts/mq"
	"qnotify/internal/db"
	"qnotify/internal/email"
	"qnotify/internal/mq"
	"qnotify/internal/mqhandler"
	"qnotify/internal/outbox"
	redisclient "qnotify/internal/redis"
	"qnotify/internal/repository"
	"qnotify/internal/service"
	"qnotify/internal/util"
)

func main() {
	// Load config
	cfg := config.Load()

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	logger.Info("Starting worker service...")

	// Init DB
	dbConn, err := db.NewConnection(cfg.DB, logger)
	if err != nil {
		logger.Fatal("DB initialization failed", zap.Error(err))
	}
	defer dbConn.Close()

	// Init Redis
	rdb := redisclient.NewClient(cfg.Redis)
	defer rdb.Close()

	deduper := util.NewDeduper(rdb, time.Hour)

	// Init RabbitMQ Publisher (used by the outbox dispatcher)
	publisher, err := mq.NewPublisher(cfg.MQ.URL)
	if err != nil {
		logger.Fatal("failed to init publisher", zap.Error(err))
	}
	defer publisher.Close()

	// Init Repositories
	userRepo := repository.NewUserRepository(dbConn)
	postRepo := repository.NewPostRepository(dbConn)
	threadRepo := repository.NewThreadRepository(dbConn)
	activityRepo := repository.NewActivityRepository(dbConn)
	visitRepo := repository.NewVisitRepository(dbConn)
	revisionRepo := repository.NewRevisionRepository(dbConn)
	replyAddressRepo := repository.NewReplyAddressRepository(dbConn)
	outboxRepo := outbox.NewRepository(dbConn)

	// Init email sender
	var sender email.Sender
	if cfg.Email.DevDir != "" {
		logger.Info("Using dev email sender", zap.String("dir", cfg.Email.DevDir))
		sender = email.NewDevSender(cfg.Email.DevDir)
	} else {
		sender, err = email.NewPostmarkSender(cfg.Email)
		if err != nil {
			logger.Fatal("email sender initialization failed", zap.Error(err))
		}
	}

	// Init Services
	outboxPublisher := service.NewOutboxPublisher(outboxRepo, logger)
	engine := service.NewEngine(
		activityRepo, postRepo, userRepo, threadRepo, visitRepo,
		outboxPublisher, outboxPublisher, cfg.App, logger,
	)
	revisionNotifier := service.NewRevisionNotifier(
		replyAddressRepo, activityRepo, postRepo, sender, cfg.App, logger,
	)

	// Init Handlers
	postUpdatedHandler := mqhandler.NewPostUpdatedHandler(userRepo, postRepo, engine, deduper, logger)
	questionVisitedHandler := mqhandler.NewQuestionVisitedHandler(userRepo, postRepo, engine, deduper, logger)
	revisionPublishedHandler := mqhandler.NewRevisionPublishedHandler(revisionRepo, revisionNotifier, deduper, logger)

	// Outbox dispatcher moves parked events onto the exchange.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	dispatcher := outbox.NewDispatcher(outboxRepo, publisher, logger)
	go dispatcher.Run(ctx)

	// (1) Consumer for post updates
	consumerPostUpdated, err := mq.NewConsumer(cfg.MQ.URL, mqcontracts.KeyPostUpdated+".q", mqcontracts.KeyPostUpdated, logger)
	if err != nil {
		logger.Fatal("failed to init post updated consumer", zap.Error(err))
	}
	consumerPostUpdated.SetHandler(postUpdatedHandler.HandlePostUpdated)
	go func() {
		if err := consumerPostUpdated.StartConsuming(); err != nil {
			logger.Fatal("post updated consumer failed", zap.Error(err))
		}
	}()
	defer consumerPostUpdated.Close()

	// (2) Consumer for question visits
	consumerQuestionVisited, err := mq.NewConsumer(cfg.MQ.URL, mqcontracts.KeyQuestionVisited+".q", mqcontracts.KeyQuestionVisited, logger)
	if err != nil {
		logger.Fatal("failed to init question visited consumer", zap.Error(err))
	}
	consumerQuestionVisited.SetHandler(questionVisitedHandler.HandleQuestionVisited)
	go func() {
		if err := consumerQuestionVisited.StartConsuming(); err != nil {
			logger.Fatal("question visited consumer failed", zap.Error(err))
		}
	}()
	defer consumerQuestionVisited.Close()

	// (3) Consumer for published revisions
	consumerRevisionPublished, err := mq.NewConsumer(cfg.MQ.URL, mqcontracts.KeyRevisionPublished+".q", mqcontracts.KeyRevisionPublished, logger)
	if err != nil {
		logger.Fatal("failed to init revision published consumer", zap.Error(err))
	}
	consumerRevisionPublished.SetHandler(revisionPublishedHandler.HandleRevisionPublished)
	go func() {
		if err := consumerRevisionPublished.StartConsuming(); err != nil {
			logger.Fatal("revision published consumer failed", zap.Error(err))
		}
	}()
	defer consumerRevisionPublished.Close()

	// Metrics endpoint
	if cfg.Server.MetricsPort != "" {
		go func() {
			http.Handle("/metrics", promhttp.Handler())
			if err := http.ListenAndServe(cfg.Server.MetricsPort, nil); err != nil {
				logger.Error("metrics server failed", zap.Error(err))
			}
		}()
	}

	logger.Info("All consumers started, worker is ready to process messages")

	// Keep worker running
	select {}
}
