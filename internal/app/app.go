package app

import (
	"context"
	"fmt"
	stdhttp "net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/pkarpov/linechat/internal/chat"
	"github.com/pkarpov/linechat/internal/config"
	"github.com/pkarpov/linechat/internal/core"
	"github.com/pkarpov/linechat/internal/store"
	"github.com/pkarpov/linechat/internal/store/sqlite"
	transporthttp "github.com/pkarpov/linechat/internal/transport/http"
	"github.com/pkarpov/linechat/internal/transport/lineio"
	"github.com/pkarpov/linechat/internal/transport/tcp"
)

// App wires together the chat core and both transports.
type App struct {
	httpServer      *stdhttp.Server
	tcpServer       *tcp.Server
	store           store.Store
	shutdownTimeout time.Duration
	log             *zerolog.Logger
}

// New constructs the application with provided configuration.
func New(cfg *config.Config, logger *zerolog.Logger) (*App, error) {
	st, err := sqlite.New(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("init store: %w", err)
	}
	logger.Info().Str("db_path", cfg.DatabasePath).Msg("audit store initialized")

	directory := core.NewUserDirectory()
	registry := core.NewRoomRegistry(cfg.BaseRoomPort, logger)
	service := chat.NewService(directory, registry, st, logger)
	runner := lineio.NewRunner(service, logger)

	return &App{
		httpServer:      transporthttp.NewServer(runner, service, st, *cfg, logger),
		tcpServer:       tcp.NewServer(cfg.TCPAddr, runner, logger),
		store:           st,
		shutdownTimeout: cfg.ShutdownTimeout,
		log:             logger,
	}, nil
}

// Run starts both listeners and blocks until context cancellation or a
// fatal server error.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	serverErr := make(chan error, 2)

	go func() {
		serverErr <- a.tcpServer.Serve(ctx)
	}()
	go func() {
		if err := a.httpServer.ListenAndServe(); err != nil && err != stdhttp.ErrServerClosed {
			serverErr <- err
			return
		}
		serverErr <- nil
	}()

	var runErr error
	pending := 2
	select {
	case runErr = <-serverErr:
		pending--
	case <-ctx.Done():
	}

	// Stop the tcp accept loop and shut the http server down; both
	// goroutines then report through serverErr.
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
	defer shutdownCancel()

	a.log.Info().Msg("shutting down http server")
	if err := a.httpServer.Shutdown(shutdownCtx); err != nil && runErr == nil {
		runErr = err
	}

	for ; pending > 0; pending-- {
		if err := <-serverErr; err != nil && runErr == nil {
			runErr = err
		}
	}

	a.cleanup()
	return runErr
}

// cleanup closes the audit store.
func (a *App) cleanup() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.log.Warn().Err(err).Msg("failed to close store")
		} else {
			a.log.Info().Msg("store closed")
		}
	}
}
