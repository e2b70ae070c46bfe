package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/pgx-risk-server/internal/api"
	"github.com/pgx-risk-server/internal/config"
	"github.com/pgx-risk-server/internal/knowledge"
	"github.com/pgx-risk-server/internal/logging"
	"github.com/pgx-risk-server/internal/narrative"
	"github.com/pgx-risk-server/internal/service"
	"github.com/pgx-risk-server/internal/vcf"
)

func main() {
	configManager, err := config.NewManager()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := configManager.Validate(); err != nil {
		log.Fatalf("Configuration validation failed: %v", err)
	}
	cfg := configManager.GetConfig()

	logger := logging.New(cfg.Logging)

	// The knowledge base loads once here and is read-only for the process
	// lifetime; a missing table degrades to empty rather than aborting.
	kb := knowledge.Load(cfg.Knowledge.DataDir, logger)

	parser := vcf.NewParser(logger)
	analyzer := service.NewAnalyzer(kb, logger)

	var handler *api.Handler
	if cfg.Narrative.Enabled {
		narrativeClient := narrative.NewClient(cfg.Narrative, logger)
		handler = api.NewHandler(cfg, parser, analyzer, kb, narrativeClient, logger)
	} else {
		handler = api.NewHandler(cfg, parser, analyzer, kb, nil, logger)
	}

	server := api.NewServer(cfg, handler, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		logger.Info("Shutdown signal received, gracefully shutting down")
		cancel()
	}()

	if err := server.Start(ctx); err != nil {
		log.Fatalf("Server failed: %v", err)
	}

	logger.Info("Server stopped")
}
