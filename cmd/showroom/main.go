// Package main is the entry point for the Showroom product listing.
package main

import (
	"fmt"
	"os"
	"runtime"

	"go.uber.org/zap"

	"github.com/luzcry/showroom/internal/app"
	"github.com/luzcry/showroom/internal/catalog"
	"github.com/luzcry/showroom/internal/config"
	"github.com/luzcry/showroom/internal/logger"
)

func init() {
	// SDL and OpenGL demand the main thread
	runtime.LockOSThread()
}

func main() {
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("=== Showroom ===")
	logger.Sugar.Debugf("Config: %+v", cfg)

	cat, err := catalog.Load(cfg.Catalog.Path)
	if err != nil {
		logger.Error("failed to load catalog", zap.Error(err))
		os.Exit(1)
	}
	logger.Info("catalog loaded", zap.Int("products", len(cat.Products)))

	a, err := app.New(cfg, cat)
	if err != nil {
		logger.Error("failed to create app", zap.Error(err))
		os.Exit(1)
	}
	defer a.Close()

	a.Run()

	logger.Info("listing closed normally")
}
