package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/trifonnt/accountd/internal/config"
	"github.com/trifonnt/accountd/internal/logger"
	"github.com/trifonnt/accountd/internal/setup"
)

func main() {
	var configFolder string
	flag.StringVar(&configFolder, "config_folder", "config", "path to folder with configs")
	flag.Parse()

	cfg := config.MustLoad(configFolder)
	logger.Initialize(cfg.Public.LogLevel, cfg.Public.LogJSON)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	deps, err := setup.SetupDependencies(cfg)
	if err != nil {
		logger.Log.Error("failed to initialize dependencies", "error", err)
		return
	}
	defer deps.Storage.Cleanup()
	defer deps.Publisher.Close()

	deps.Retention.Start(ctx)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Public.OpsPort),
		Handler: deps.Ops.Router(),
	}
	go func() {
		logger.Log.Info("ops server started", "port", cfg.Public.OpsPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Error("ops server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Log.Info("shutting down")
	if err := srv.Shutdown(context.Background()); err != nil {
		logger.Log.Error("ops server shutdown failed", "error", err)
	}
}
