package tcp

import (
	"context"
	"fmt"
	"net"
	"sync"

	"github.com/rs/zerolog"

	"github.com/pkarpov/linechat/internal/transport/lineio"
)

// Server accepts raw TCP connections and hands each one to the line
// protocol runner on its own goroutine.
type Server struct {
	addr   string
	runner *lineio.Runner
	log    *zerolog.Logger

	ln net.Listener
}

// NewServer builds a TCP server for addr.
func NewServer(addr string, runner *lineio.Runner, logger *zerolog.Logger) *Server {
	return &Server{addr: addr, runner: runner, log: logger}
}

// Listen opens the listener. Call before Serve; Addr is valid afterwards,
// which matters when addr requests an ephemeral port.
func (s *Server) Listen() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listen tcp %s: %w", s.addr, err)
	}
	s.ln = ln
	s.log.Info().Str("addr", ln.Addr().String()).Msg("tcp listener started")
	return nil
}

// Addr returns the bound listener address.
func (s *Server) Addr() net.Addr {
	if s.ln == nil {
		return nil
	}
	return s.ln.Addr()
}

// Serve runs the accept loop until ctx is cancelled. Each connection gets
// one goroutine; Serve waits for all of them before returning.
func (s *Server) Serve(ctx context.Context) error {
	if s.ln == nil {
		if err := s.Listen(); err != nil {
			return err
		}
	}

	go func() {
		<-ctx.Done()
		_ = s.ln.Close()
	}()

	var wg sync.WaitGroup
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			wg.Wait()
			if ctx.Err() != nil {
				s.log.Info().Msg("tcp listener stopped")
				return nil
			}
			return fmt.Errorf("accept: %w", err)
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			s.runner.Handle(ctx, lineio.NewConn(conn))
		}()
	}
}
