package main

import (
	"go.uber.org/zap"

	"qnotify/config"
	"qnotify/internal/api"
	"qnotify/internal/mq"
)

func main() {
	// Load config
	cfg := config.Load()

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	logger.Info("Starting API service...")

	// Init RabbitMQ Publisher
	publisher, err := mq.NewPublisher(cfg.MQ.URL)
	if err != nil {
		logger.Fatal("failed to init publisher", zap.Error(err))
	}
	defer publisher.Close()

	// Init Handlers
	taskHandler := api.NewTaskHandler(publisher, logger)

	// Router
	router := api.NewRouter(taskHandler, cfg.JWT.Secret)

	// Start API server
	if err := router.Run(cfg.Server.Port); err != nil {
		logger.Fatal("server start failed", zap.Error(err))
	}
}
