package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/Pinto1232/pos-system-sub004/cmd/config"
	"github.com/Pinto1232/pos-system-sub004/thirdparty/rabbitmq"
	"github.com/Pinto1232/pos-system-sub004/utils/logger"
	"go.uber.org/zap"
)

// The expiration consumer receives delayed reservation-expiration messages
// and calls the engine's internal release endpoint. It backs up the
// in-process sweeper across engine restarts.
func main() {
	cfg := config.Load()

	if err := logger.Init(cfg.Environment); err != nil {
		panic(err)
	}
	defer logger.Close()

	apiURL := "http://localhost:" + cfg.Server.Port

	consumer, err := rabbitmq.NewConsumer(
		cfg.RabbitMQ.Host,
		cfg.RabbitMQ.Port,
		cfg.RabbitMQ.User,
		cfg.RabbitMQ.Password,
		apiURL,
		cfg.Auth.InternalAPIKey,
	)
	if err != nil {
		logger.Fatal("err connect rabbitmq", zap.Error(err))
	}
	defer func() {
		_ = consumer.Close()
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := consumer.Start(ctx); err != nil {
		logger.Fatal("err start consumer", zap.Error(err))
	}

	logger.Info("expiration consumer running")
	<-ctx.Done()
	logger.Info("expiration consumer stopped")
}
