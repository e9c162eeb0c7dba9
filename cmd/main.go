package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"

	stockapp "github.com/Pinto1232/pos-system-sub004/application/stock"
	"github.com/Pinto1232/pos-system-sub004/cmd/config"
	redisclient "github.com/Pinto1232/pos-system-sub004/cmd/redis"
	_ "github.com/Pinto1232/pos-system-sub004/docs"
	ledgerRepo "github.com/Pinto1232/pos-system-sub004/repository/ledger"
	productRepo "github.com/Pinto1232/pos-system-sub004/repository/product"
	salesRepo "github.com/Pinto1232/pos-system-sub004/repository/sales"
	snapshotRepo "github.com/Pinto1232/pos-system-sub004/repository/snapshot"
	txRepo "github.com/Pinto1232/pos-system-sub004/repository/tx"
	"github.com/Pinto1232/pos-system-sub004/thirdparty/rabbitmq"
	"github.com/Pinto1232/pos-system-sub004/transport"
	"github.com/Pinto1232/pos-system-sub004/utils/logger"
	"go.uber.org/zap"
)

// @title STOCK ENGINE API
// @version 1.0
// @description Stock reservation and ledger engine API Documentation
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// Load configuration from environment variables
	cfg := config.Load()

	// Initialize global logger
	if err := logger.Init(cfg.Environment); err != nil {
		// fallback to standard log if zap init fails
		panic(err)
	}
	defer logger.Close()

	logger.Info("Starting stock engine", zap.String("env", cfg.Environment))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Connect to database
	db, err := sqlx.Connect("mysql", cfg.GetDSN())
	if err != nil {
		logger.Fatal("err connect db", zap.Error(err))
	}

	// Set database connection pool settings
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	// Initialize Redis client (optional snapshot cache)
	var SnapshotRepo snapshotRepo.Repository
	if cfg.Redis.Enabled {
		if err := redisclient.New(cfg); err != nil {
			logger.Fatal("err connect redis", zap.Error(err))
		}
		defer func() {
			_ = redisclient.Close()
		}()
		SnapshotRepo = snapshotRepo.NewRepository(cfg.Redis.SnapshotTTL)
	}

	// Initialize RabbitMQ publisher (optional broker fanout)
	var publisher *rabbitmq.Publisher
	if cfg.RabbitMQ.Enabled {
		publisher, err = rabbitmq.NewPublisher(cfg.RabbitMQ.Host, cfg.RabbitMQ.Port, cfg.RabbitMQ.User, cfg.RabbitMQ.Password)
		if err != nil {
			logger.Fatal("err connect rabbitmq", zap.Error(err))
		}
		defer func() {
			_ = publisher.Close()
		}()
	}

	// Initialize repositories
	LedgerRepo := ledgerRepo.NewLedgerRepository()
	ProductRepo := productRepo.NewProductRepository(db)
	SalesRepo := salesRepo.NewSalesRepository(db)
	TxRepo := txRepo.NewTxRepository(db)

	// Initialize the engine
	StockApp := stockapp.NewStockApp(cfg, LedgerRepo, ProductRepo, TxRepo, SalesRepo, SnapshotRepo, publisher)
	if err := StockApp.LoadInitialStock(ctx); err != nil {
		logger.Fatal("err seed ledger", zap.Error(err))
	}
	StockApp.Start(ctx)
	defer StockApp.Stop()

	httpTransport := transport.NewTransport(StockApp, cfg)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      httpTransport,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logger.Info("HTTP server running", zap.String("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("failed server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("err shutdown server", zap.Error(err))
	}
}
