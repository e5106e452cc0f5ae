package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nguyentantai21042004/speaker-flow/internal/config"
	"github.com/nguyentantai21042004/speaker-flow/internal/diarization"
	"github.com/nguyentantai21042004/speaker-flow/internal/logger"
	"github.com/nguyentantai21042004/speaker-flow/internal/processor"
	"github.com/nguyentantai21042004/speaker-flow/internal/repository"
	"github.com/nguyentantai21042004/speaker-flow/internal/summarizer"
)

type options struct {
	configPath string
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:           "speakerflow",
		Short:         "Assign speaker labels to transcript segments",
		Long:          "speakerflow groups whisper transcript segments into speakers using timing, confidence and text style, without audio embeddings.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "config.yaml", "path to the YAML config file")

	rootCmd.AddCommand(newDiarizeCmd(opts))
	rootCmd.AddCommand(newWatchCmd(opts))
	rootCmd.AddCommand(newServeCmd(opts))
	rootCmd.AddCommand(newConsumeCmd(opts))

	return rootCmd
}

// app holds the wired services of a long-running command.
type app struct {
	cfg       *config.Config
	log       logger.Logger
	repo      repository.Repository
	processor processor.Processor
}

func newApp(ctx context.Context, opts *options) (*app, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	log := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	log.Info(ctx, "========================================")
	log.Info(ctx, "Speaker Flow")
	log.Info(ctx, "========================================")
	log.Info(ctx, "System: %s/%s", runtime.GOOS, runtime.GOARCH)
	log.Info(ctx, "Max Concurrent Processing: %d", cfg.Performance.MaxConcurrent)

	if err := ensureDirectories(cfg); err != nil {
		return nil, fmt.Errorf("create directories: %w", err)
	}

	var procOpts []processor.Option
	a := &app{cfg: cfg, log: log}

	if cfg.Database.Enabled {
		repo, err := repository.Open(cfg.Database, log)
		if err != nil {
			return nil, err
		}
		if err := repo.EnsureSchema(ctx); err != nil {
			repo.Close()
			return nil, err
		}
		a.repo = repo
		procOpts = append(procOpts, processor.WithRepository(repo))
		log.Info(ctx, "Persisting jobs to %s:%d/%s", cfg.Database.Host, cfg.Database.Port, cfg.Database.Name)
	}

	if cfg.Gemini.Enabled {
		procOpts = append(procOpts, processor.WithSummarizer(summarizer.New(cfg.Gemini, log)))
		log.Info(ctx, "Summaries enabled (model: %s, %d keys)", cfg.Gemini.Model, len(cfg.Gemini.APIKeys))
	}

	d := diarization.New(cfg.Diarization.Params(), log)
	a.processor = processor.New(cfg, d, log, procOpts...)

	log.Info(ctx, "Configuration loaded successfully")
	return a, nil
}

func (a *app) close() {
	if a.repo != nil {
		if err := a.repo.Close(); err != nil {
			a.log.Warn(context.Background(), "Failed to close database: %v", err)
		}
	}
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

// ignoreCanceled treats a shutdown-triggered cancellation as success.
func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// ensureDirectories creates required directories if they don't exist
func ensureDirectories(cfg *config.Config) error {
	dirs := []string{
		cfg.Paths.Input,
		cfg.Paths.Output,
		cfg.Paths.Archived,
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}

	return nil
}
