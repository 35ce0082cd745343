package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/voxai/scrub/internal/api"
	"github.com/voxai/scrub/internal/bus"
	"github.com/voxai/scrub/internal/config"
	"github.com/voxai/scrub/internal/extractor"
	"github.com/voxai/scrub/internal/pipeline"
	"github.com/voxai/scrub/internal/store"
	"github.com/voxai/scrub/internal/xai"
)

func main() {
	cfg := config.Load()
	setupLogging(cfg.LogLevel)

	cmd := "run"
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		slog.Info("shutting down")
		cancel()
	}()

	switch cmd {
	case "clean":
		exitOn(runClean(ctx, cfg))
	case "extract":
		exitOn(runExtract(ctx, cfg))
	case "run":
		exitOn(runClean(ctx, cfg))
		exitOn(runExtract(ctx, cfg))
	case "serve":
		runServe(ctx, cfg)
	default:
		fmt.Fprintln(os.Stderr, "usage: scrub <clean|extract|run|serve>")
		os.Exit(2)
	}
}

func runClean(ctx context.Context, cfg config.Config) error {
	var st *store.Store
	if cfg.DatabaseURL != "" {
		var err error
		st, err = store.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("connect database: %w", err)
		}
		defer st.Close()
		slog.Info("database connected")
	} else {
		slog.Info("no DATABASE_URL — skipping archive")
	}

	b, err := connectBus(cfg)
	if err != nil {
		return err
	}
	if b != nil {
		defer b.Close()
	}

	runner := pipeline.NewRunner(pipeline.Config{
		ChatDir: cfg.ChatDir,
		OutDir:  cfg.OutDir,
		LogsDir: cfg.LogsDir,
		Self:    cfg.SelfName,
		Source:  cfg.Source,
	}, st, b, slog.Default())

	_, err = runner.Run(ctx)
	return err
}

func runExtract(ctx context.Context, cfg config.Config) error {
	if cfg.XAIAPIKey == "" {
		return fmt.Errorf("XAI_API_KEY is required for extraction")
	}

	b, err := connectBus(cfg)
	if err != nil {
		return err
	}
	if b != nil {
		defer b.Close()
	}

	llm := xai.NewClient(cfg.XAIAPIKey, cfg.XAIModel)
	slog.Info("xai client ready", "model", cfg.XAIModel)

	ext := extractor.New(llm, cfg.SelfName, b, slog.Default())
	return ext.RunDir(ctx, cfg.OutDir, cfg.ContextDir)
}

func runServe(ctx context.Context, cfg config.Config) {
	srv := api.NewServer(cfg.Port, cfg.OutDir)
	go func() {
		if err := srv.Start(); err != nil {
			slog.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	slog.Info("scrub serving cleaned conversations", "port", cfg.Port, "dir", cfg.OutDir)
	<-ctx.Done()
	slog.Info("scrub stopped")
}

func connectBus(cfg config.Config) (*bus.Client, error) {
	if cfg.NatsURL == "" {
		return nil, nil
	}
	b, err := bus.NewClient(cfg.NatsURL, cfg.NatsToken, slog.Default())
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	slog.Info("NATS connected", "url", cfg.NatsURL)
	return b, nil
}

func exitOn(err error) {
	if err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}

func setupLogging(level string) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(handler))
}
