package http

import (
	"context"
	"errors"
	stdhttp "net/http"
	"time"

	"outreach/internal/platform/config"
	"outreach/internal/platform/logger"
)

// ServerOptions are read from CORE_API_*
type ServerOptions struct {
	Addr              string
	ReadHeaderTimeout time.Duration
	WriteTimeout      time.Duration
	ShutdownTimeout   time.Duration
}

// ServerOptionsFromConfig reads ADDR and the timeouts under cfg
func ServerOptionsFromConfig(cfg config.Conf) ServerOptions {
	return ServerOptions{
		Addr:              cfg.MayString("ADDR", ":4000"),
		ReadHeaderTimeout: cfg.MayDuration("READ_HEADER_TIMEOUT", 10*time.Second),
		WriteTimeout:      cfg.MayDuration("WRITE_TIMEOUT", 60*time.Second),
		ShutdownTimeout:   cfg.MayDuration("SHUTDOWN_TIMEOUT", 15*time.Second),
	}
}

// Server owns the router and the stdlib server
type Server struct {
	opt    ServerOptions
	router Router
	srv    *stdhttp.Server
}

// NewServer builds a server over a fresh router
func NewServer(opt ServerOptions) *Server {
	r := NewRouter()
	return &Server{
		opt:    opt,
		router: r,
		srv: &stdhttp.Server{
			Addr:              opt.Addr,
			Handler:           r.Mux(),
			ReadHeaderTimeout: opt.ReadHeaderTimeout,
			WriteTimeout:      opt.WriteTimeout,
		},
	}
}

// Router returns the root router
func (s *Server) Router() Router { return s.router }

// Addr returns the listen address
func (s *Server) Addr() string { return s.opt.Addr }

// listen is a seam for tests
var listen = func(s *stdhttp.Server) error { return s.ListenAndServe() }

// Run serves until ctx is done, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	log := logger.Named("http")
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", s.opt.Addr).Msg("http listening")
		errCh <- listen(s.srv)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, stdhttp.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	grace := s.opt.ShutdownTimeout
	if grace <= 0 {
		grace = 15 * time.Second
	}
	sctx, cancel := context.WithTimeout(context.Background(), grace)
	defer cancel()
	log.Info().Dur("grace", grace).Msg("http shutting down")
	if err := s.srv.Shutdown(sctx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
		return err
	}
	return nil
}
