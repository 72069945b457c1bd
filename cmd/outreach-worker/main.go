package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	appconfig "github.com/founderline/outreach-ai-platform/internal/config"
	outreachworker "github.com/founderline/outreach-ai-platform/internal/worker/outreach"
	"github.com/founderline/outreach-ai-platform/pkg/logging"
)

func main() {
	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		stop := make(chan os.Signal, 1)
		signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
		<-stop
		cancel()
	}()

	if err := outreachworker.Run(ctx, cfg, logger); err != nil {
		logger.Error("outreach worker exited with error", "error", err)
		os.Exit(1)
	}
	logger.Info("outreach worker stopped")
}
