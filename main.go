package main

import (
	"context"
	"log"
	"os"
	"os/signal"

	"kpireport/internal"
	"kpireport/internal/config"
	"kpireport/internal/container"

	"github.com/joho/godotenv"
)

func main() {
	// .env is optional; real deployments set the environment directly
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: failed to load .env: %v", err)
	}

	logger := internal.NewDefaultLogger()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	c, err := container.New(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("❌ Failed to initialize: %v", err)
	}
	defer c.Close()

	report, err := c.ReportService.Run(ctx)
	if err != nil {
		c.Close()
		log.Fatalf("❌ Report run failed: %v", err)
	}

	log.Printf("✅ Report %s sent to %v (%d areas)", report.RunID, report.Email.To, len(report.Areas))
}
