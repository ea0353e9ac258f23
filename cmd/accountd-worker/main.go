package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/trifonnt/accountd/internal/config"
	"github.com/trifonnt/accountd/internal/logger"
	"github.com/trifonnt/accountd/internal/queue"
	"github.com/trifonnt/accountd/internal/setup"
)

func main() {
	var configFolder string
	flag.StringVar(&configFolder, "config_folder", "config", "path to folder with configs")
	flag.Parse()

	cfg := config.MustLoad(configFolder)
	logger.Initialize(cfg.Public.LogLevel, cfg.Public.LogJSON)

	worker := queue.NewWorker(setup.RedisOpt(cfg), cfg.Public.EventDestination)

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig
		logger.Log.Info("shutting down worker")
		worker.Shutdown()
	}()

	logger.Log.Info("worker started", "destination", cfg.Public.EventDestination)
	if err := worker.Run(); err != nil {
		logger.Log.Error("worker failed", "error", err)
	}
}
