package main

import (
	"context"
	"log"

	"github.com/tsrlabs/trust_ledger/internal/api"
	"github.com/tsrlabs/trust_ledger/internal/config"
	"github.com/tsrlabs/trust_ledger/internal/kvstore"
	"github.com/tsrlabs/trust_ledger/internal/ledger"
	"github.com/tsrlabs/trust_ledger/internal/websocket"
	"github.com/tsrlabs/trust_ledger/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger.SetLevel(parseLogLevel(cfg.LogLevel))
	if err := logger.EnableFileLogging(cfg.LogDir); err != nil {
		log.Fatalf("Failed to enable file logging: %v", err)
	}

	logger.Info("Trust ledger starting (store backend: %s)...", cfg.StoreBackend)

	store, err := openStore(cfg)
	if err != nil {
		logger.Fatal("Failed to open store: %v", err)
	}
	defer store.Close()

	ledgerService := ledger.NewLedgerService(store)

	wsManager := websocket.NewWebSocketManager()
	go wsManager.Run()

	handler := api.NewHandler(ledgerService, wsManager)
	r := api.SetupRouter(handler, wsManager)

	logger.Info("Listening on %s", cfg.ListenAddr)
	if err := r.Run(cfg.ListenAddr); err != nil {
		logger.Fatal("Failed to run server: %v", err)
	}
}

func openStore(cfg *config.Config) (kvstore.Store, error) {
	switch cfg.StoreBackend {
	case config.BackendPostgres:
		return kvstore.OpenPostgres(cfg.DatabaseDSN(), cfg.MigrationsPath)
	case config.BackendRedis:
		return kvstore.OpenRedis(context.Background(), cfg.RedisAddr(), cfg.RedisPassword, cfg.RedisDB)
	default:
		logger.Warn("Using the in-memory store; all state is lost on restart")
		return kvstore.NewMemoryStore(), nil
	}
}

func parseLogLevel(level string) logger.LogLevel {
	switch level {
	case "debug":
		return logger.DEBUG
	case "warn":
		return logger.WARN
	case "error":
		return logger.ERROR
	default:
		return logger.INFO
	}
}
