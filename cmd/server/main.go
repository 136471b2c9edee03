package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/pkarpov/linechat/internal/app"
	"github.com/pkarpov/linechat/internal/config"
	"github.com/pkarpov/linechat/internal/log"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		configPath        string
		addr              string
		tcpAddr           string
		baseRoomPort      int
		databasePath      string
		logLevel          string
		readHeaderTimeout time.Duration
		shutdownTimeout   time.Duration
	)

	cmd := &cobra.Command{
		Use:           "linechat-server",
		Short:         "Text-based group chat server with rooms and private invitations",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, _ []string) error {
			bootLog := log.New("info")

			cfg, cfgPath, err := config.Load(bootLog, configPath)
			if err != nil {
				return err
			}

			// Flags beat file and env values.
			flags := cmd.Flags()
			if flags.Changed("addr") {
				cfg.Addr = addr
			}
			if flags.Changed("tcp-addr") {
				cfg.TCPAddr = tcpAddr
			}
			if flags.Changed("base-room-port") {
				cfg.BaseRoomPort = baseRoomPort
			}
			if flags.Changed("db-path") {
				cfg.DatabasePath = databasePath
			}
			if flags.Changed("log-level") {
				cfg.LogLevel = logLevel
			}
			if flags.Changed("read-header-timeout") {
				cfg.ReadHeaderTimeout = readHeaderTimeout
			}
			if flags.Changed("shutdown-timeout") {
				cfg.ShutdownTimeout = shutdownTimeout
			}

			logger := log.New(cfg.LogLevel)
			logger.Info().
				Str("config", cfgPath).
				Str("addr", cfg.Addr).
				Str("tcp_addr", cfg.TCPAddr).
				Msg("starting linechat server")

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			application, err := app.New(&cfg, logger)
			if err != nil {
				return err
			}

			if err := application.Run(ctx); err != nil {
				return err
			}
			logger.Info().Msg("server stopped")
			return nil
		},
	}

	defaults := config.Default()
	cmd.Flags().StringVar(&configPath, "config", "", "path to config file")
	cmd.Flags().StringVar(&addr, "addr", defaults.Addr, "HTTP listen address")
	cmd.Flags().StringVar(&tcpAddr, "tcp-addr", defaults.TCPAddr, "TCP chat listen address")
	cmd.Flags().IntVar(&baseRoomPort, "base-room-port", defaults.BaseRoomPort, "first per-room port slot")
	cmd.Flags().StringVar(&databasePath, "db-path", defaults.DatabasePath, "SQLite audit database path")
	cmd.Flags().StringVar(&logLevel, "log-level", defaults.LogLevel, "log level (debug, info, warn, error)")
	cmd.Flags().DurationVar(&readHeaderTimeout, "read-header-timeout", defaults.ReadHeaderTimeout, "HTTP read header timeout")
	cmd.Flags().DurationVar(&shutdownTimeout, "shutdown-timeout", defaults.ShutdownTimeout, "graceful shutdown timeout")

	return cmd
}
