package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/magabrotheeeer/natours/internal/config"
	"github.com/magabrotheeeer/natours/internal/storage/mongodb"
)

const defaultTimeout = 30 * time.Second

// options общие флаги всех подкоманд.
type options struct {
	configPath string
	timeout    time.Duration
}

// NewRootCmd создаёт корневую команду natours-data.
func NewRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:           "natours-data",
		Short:         "Manage Natours development data",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file path (defaults to CONFIG_PATH)")
	cmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", defaultTimeout, "timeout for database operations")

	cmd.AddCommand(NewImportCmd(opts))
	cmd.AddCommand(NewDeleteCmd(opts))
	cmd.AddCommand(NewMigrateCmd(opts))

	return cmd
}

func loadConfig(opts *options) (*config.Config, error) {
	path := opts.configPath
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	return config.Load(path)
}

// connect открывает хранилище и возвращает его вместе с контекстом операции.
func connect(cmd *cobra.Command, opts *options) (*mongodb.Storage, *config.Config, context.Context, context.CancelFunc, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	store, err := mongodb.New(ctx, cfg.Mongo, logger)
	if err != nil {
		cancel()
		return nil, nil, nil, nil, fmt.Errorf("connect to database: %w", err)
	}
	return store, cfg, ctx, cancel, nil
}
