// Command insights-run evaluates due Insights campaigns once and exits.
// Schedule it from cron; it takes the same per-campaign leases as the server,
// so overlapping invocations never double-send.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/lumewave/agency-site/internal/app"
	"github.com/lumewave/agency-site/internal/config"
	"github.com/lumewave/agency-site/internal/pkg/logger"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to the YAML config file")
	campaignID := flag.Int64("campaign", 0, "run only this campaign id (0 = every due campaign)")
	flag.Parse()

	cfg, err := config.LoadFromEnv(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	app.ConfigureLogging(cfg.Logging)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize: %v", err)
	}

	var only *int64
	if *campaignID > 0 {
		only = campaignID
	}

	res, err := a.Services.Insights.Run(ctx, only)
	a.Close()
	if err != nil {
		logger.Error("insights run failed", "error", err)
		os.Exit(1)
	}
	logger.Info("insights run complete",
		"processed", len(res.Processed),
		"skipped", len(res.Skipped),
		"sent", res.Sent,
		"failed", res.Failed,
	)
}
