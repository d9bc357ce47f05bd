package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/MikeSquared-Agency/mimic/internal/api"
	"github.com/MikeSquared-Agency/mimic/internal/config"
	"github.com/MikeSquared-Agency/mimic/internal/hermes"
	"github.com/MikeSquared-Agency/mimic/internal/processor"
	"github.com/MikeSquared-Agency/mimic/internal/replies"
	"github.com/MikeSquared-Agency/mimic/internal/slack"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and NATS handlers",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve()
	},
}

func serve() error {
	cfg := config.Load()
	setupLogging(cfg.LogLevel)
	logger := slog.Default()

	logger.Info("mimic starting", "port", cfg.Port)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Database
	db, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()
	logger.Info("database connected")

	eng, err := buildEngine(ctx, cfg, db, logger)
	if err != nil {
		return err
	}
	defer eng.Close()

	// NATS/Hermes
	hermesClient, err := hermes.NewClient(ctx, cfg.NatsURL, cfg.NatsToken, logger)
	if err != nil {
		return fmt.Errorf("connect to NATS: %w", err)
	}
	defer hermesClient.Close()
	logger.Info("NATS connected", "url", cfg.NatsURL)

	svc := replies.New(db, eng.synth, hermesClient, logger)

	// Slack poster (optional: without it there is no review loop)
	var reviewer processor.Reviewer
	if cfg.SlackBotToken != "" && cfg.SlackChannel != "" {
		reviewer = slack.NewPoster(cfg.SlackBotToken, cfg.SlackChannel, logger)
		logger.Info("slack poster ready", "channel", cfg.SlackChannel)
	} else {
		logger.Warn("slack not configured, running without review loop")
	}

	proc := processor.New(svc, db, hermesClient, reviewer, logger)

	subs := []struct {
		subject string
		handler func(string, []byte)
	}{
		{hermes.SubjectReplyRequested, proc.HandleReplyRequested},
		{hermes.SubjectReplyGenerated, proc.HandleReplyGenerated},
		{hermes.SubjectSlackReaction, proc.HandleReaction},
	}
	for _, s := range subs {
		if err := hermesClient.Subscribe(s.subject, s.handler); err != nil {
			return fmt.Errorf("subscribe to %s: %w", s.subject, err)
		}
	}

	// HTTP API
	srv := api.NewServer(cfg.Port, cfg.APIToken, db, svc, eng.info, logger)
	go func() {
		if err := srv.Start(); err != nil {
			logger.Error("HTTP server error", "error", err)
		}
	}()

	// Announce registration
	if err := hermesClient.Publish(hermes.SubjectRegistered, map[string]any{
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"port":      cfg.Port,
		"generator": eng.info.Generator,
	}); err != nil {
		logger.Warn("failed to publish registration", "error", err)
	}

	logger.Info("mimic ready", "port", cfg.Port)

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	logger.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("HTTP shutdown", "error", err)
	}
	cancel()
	logger.Info("mimic stopped")
	return nil
}
