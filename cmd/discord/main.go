package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/keshon/snapshot-bot/internal/command"
	"github.com/keshon/snapshot-bot/internal/command/snap"
	"github.com/keshon/snapshot-bot/internal/config"
	"github.com/keshon/snapshot-bot/internal/discord"
	"github.com/keshon/snapshot-bot/internal/holders"
	"github.com/keshon/snapshot-bot/internal/logging"
	"github.com/keshon/snapshot-bot/internal/metrics"
	"github.com/keshon/snapshot-bot/internal/middleware"
	"github.com/keshon/snapshot-bot/internal/snapshot"
	"github.com/keshon/snapshot-bot/pkg/cmd"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := cfg.ValidateDiscord(); err != nil {
		log.Fatal("Invalid configuration", zap.Error(err))
	}
	logging.RouteDiscordgo(log)

	log.Info("Starting snapshot bot...")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)
	if cfg.MetricsAddr != "" {
		go func() {
			if err := metrics.Serve(ctx, cfg.MetricsAddr, reg, log); err != nil {
				log.Error("Metrics endpoint stopped", zap.Error(err))
			}
		}()
	}

	client := holders.NewClient(holders.Options{
		BaseURL:         cfg.BaseURL,
		APIKey:          cfg.APIKey,
		Timeout:         cfg.HTTPTimeout,
		RateLimit:       cfg.APIRateLimit,
		MaxRateLimit:    cfg.APIMaxRateLimit,
		MaxResponseSize: cfg.MaxResponseSize,
		Metrics:         m,
		Logger:          log,
	})
	svc := snapshot.NewService(client, snapshot.Options{
		ReportDir: cfg.ReportDir,
		Metrics:   m,
		Logger:    log,
	})

	registry := cmd.NewRegistry()
	command.Register(registry,
		&snap.SnapCommand{Snapshots: svc},
		middleware.WithGuildOnly(),
		middleware.WithCommandLogger(log.Named("command")),
	)

	bot, err := discord.NewBot(cfg, registry, log)
	if err != nil {
		log.Fatal("Failed to create bot", zap.Error(err))
	}

	errCh := make(chan error, 1)
	go func() {
		if err := bot.Run(ctx); err != nil {
			errCh <- err
		}
		close(errCh)
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	select {
	case s := <-sig:
		log.Info("Received signal, shutting down...", zap.String("signal", s.String()))
		cancel()
		<-errCh
	case err := <-errCh:
		if err != nil {
			log.Error("Discord bot error", zap.Error(err))
		}
		cancel()
	}

	log.Info("Discord bot exited cleanly")
}
