package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gridfall/gridfall-server-go/internal/battle"
	"github.com/gridfall/gridfall-server-go/internal/config"
	"github.com/gridfall/gridfall-server-go/internal/server"
	"github.com/gridfall/gridfall-server-go/internal/stats"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	configPath = flag.String("config", "config/config.yaml", "path to configuration file")
	version    = "dev" // set via ldflags during build
)

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := initLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("starting gridfall server",
		zap.String("version", version),
		zap.String("config", *configPath),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	var statsStore *stats.Store
	if cfg.Database.DSN != "" {
		statsStore, err = stats.New(ctx, cfg.Database.DSN, logger)
		if err != nil {
			logger.Warn("stats store unavailable; results will not be persisted", zap.Error(err))
			statsStore = nil
		} else {
			defer statsStore.Close()
		}
	} else {
		logger.Info("no database configured; run statistics disabled")
	}

	mgr := battle.NewManager(logger)
	logger.Info("battle manager initialized")

	srv := server.New(mgr, statsStore, cfg.Game, logger)

	go func() {
		if serveErr := srv.Listen(cfg.Server.Address); serveErr != nil {
			logger.Error("http server error", zap.Error(serveErr))
		}
	}()

	logger.Info("gridfall server initialized",
		zap.String("address", cfg.Server.Address),
		zap.Int("board_rows", cfg.Game.BoardRows),
		zap.Int("board_cols", cfg.Game.BoardCols),
	)

	sig := <-sigChan
	logger.Info("received shutdown signal", zap.String("signal", sig.String()))

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", zap.Error(err))
	}

	logger.Info("gridfall server stopped")
}

// initLogger initializes the zap logger based on configuration
func initLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	switch cfg.Level {
	case "debug":
		level = zapcore.DebugLevel
	case "info":
		level = zapcore.InfoLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	default:
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
