package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/wireroom-server/internal/app"
	"github.com/vovakirdan/wireroom-server/internal/config"
	"github.com/vovakirdan/wireroom-server/internal/core"
	applog "github.com/vovakirdan/wireroom-server/internal/log"
)

type serveFlags struct {
	configPath        string
	addr              string
	logLevel          string
	databasePath      string
	readHeaderTimeout time.Duration
	shutdownTimeout   time.Duration
	maxMembers        int
	maxMissionTime    time.Duration
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "wireroom",
		Short:        "Real-time escape room server",
		SilenceUsage: true,
	}
	root.AddCommand(newServeCmd(), newStagesCmd())
	return root
}

func newServeCmd() *cobra.Command {
	var f serveFlags
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP and websocket server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), f)
		},
	}

	cmd.Flags().StringVar(&f.configPath, "config", "", "path to config.yaml (default ./config.yaml)")
	cmd.Flags().StringVar(&f.addr, "addr", "", "HTTP listen address")
	cmd.Flags().StringVar(&f.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	cmd.Flags().StringVar(&f.databasePath, "db", "", "mission archive sqlite path")
	cmd.Flags().DurationVar(&f.readHeaderTimeout, "read-header-timeout", 0, "HTTP read header timeout")
	cmd.Flags().DurationVar(&f.shutdownTimeout, "shutdown-timeout", 0, "graceful shutdown timeout")
	cmd.Flags().IntVar(&f.maxMembers, "max-members", 0, "members allowed per room")
	cmd.Flags().DurationVar(&f.maxMissionTime, "max-mission-time", 0, "mission time budget")
	return cmd
}

func runServe(ctx context.Context, f serveFlags) error {
	bootLogger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	cfg, path, err := config.Load(&bootLogger, f.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	cfg.UpdateFrom(config.Config{
		Addr:              f.addr,
		LogLevel:          f.logLevel,
		DatabasePath:      f.databasePath,
		ReadHeaderTimeout: f.readHeaderTimeout,
		ShutdownTimeout:   f.shutdownTimeout,
		MaxMembers:        f.maxMembers,
		MaxMissionTime:    f.maxMissionTime,
	})

	logger := applog.New(cfg.LogLevel)
	logger.Info().Str("config", path).Str("addr", cfg.Addr).Msg("configuration loaded")

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.New(&cfg, logger)
	if err != nil {
		return err
	}

	if err := application.Run(ctx); err != nil {
		logger.Error().Err(err).Msg("server exited with error")
		return err
	}
	logger.Info().Msg("server stopped")
	return nil
}

func newStagesCmd() *cobra.Command {
	var configPath string
	cmd := &cobra.Command{
		Use:   "stages",
		Short: "Print the stage catalogue without answers",
		RunE: func(cmd *cobra.Command, _ []string) error {
			nop := zerolog.Nop()
			cfg, _, err := config.Load(&nop, configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			printStages(cmd.OutOrStdout(), app.HubConfig(&cfg).Stages)
			return nil
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "path to config.yaml (default ./config.yaml)")
	return cmd
}

func printStages(w io.Writer, stages []core.Stage) {
	for _, st := range stages {
		fmt.Fprintf(w, "%d\t%s\t(%d accepted answers)\n", st.Index, st.Title, len(st.Answers))
	}
}
