package server

import (
	"context"
	"crypto/tls"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/dmitrymomot/rememberme/core/logger"
)

var (
	ErrMissingAddress  = errors.New("server: address is required")
	ErrAlreadyRunning  = errors.New("server: already running")
	ErrLoadCertificate = errors.New("server: load tls certificate")
)

// Server serves one handler on one address and shuts it down gracefully.
type Server struct {
	addr     string
	base     http.Server
	shutdown time.Duration
	log      *slog.Logger

	mu      sync.Mutex
	ln      net.Listener
	srv     *http.Server
	running bool
}

// Option tweaks a Server before it starts.
type Option func(*Server)

// New returns a server for addr with the package defaults applied.
func New(addr string, opts ...Option) *Server {
	s := &Server{
		addr: addr,
		base: http.Server{
			ReadTimeout:       DefaultReadTimeout,
			ReadHeaderTimeout: DefaultReadTimeout,
			WriteTimeout:      DefaultWriteTimeout,
			IdleTimeout:       DefaultIdleTimeout,
			MaxHeaderBytes:    DefaultMaxHeaderBytes,
		},
		shutdown: DefaultShutdownTimeout,
		log:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func WithLogger(log *slog.Logger) Option {
	return func(s *Server) {
		if log != nil {
			s.log = log
		}
	}
}

// WithTLS serves HTTPS. Remember-me cookies are Secure, so browsers only
// send them back over TLS, whether terminated here or by a proxy.
func WithTLS(cfg *tls.Config) Option {
	return func(s *Server) { s.base.TLSConfig = cfg }
}

func WithShutdownTimeout(d time.Duration) Option {
	return func(s *Server) { s.shutdown = d }
}

// WithTimeouts sets the read, write and idle timeouts. Zero values keep the current setting.
func WithTimeouts(read, write, idle time.Duration) Option {
	return func(s *Server) {
		if read > 0 {
			s.base.ReadTimeout = read
			s.base.ReadHeaderTimeout = read
		}
		if write > 0 {
			s.base.WriteTimeout = write
		}
		if idle > 0 {
			s.base.IdleTimeout = idle
		}
	}
}

func WithMaxHeaderBytes(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.base.MaxHeaderBytes = n
		}
	}
}

// Addr is the listening address once Start has bound, the configured one before.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln != nil {
		return s.ln.Addr().String()
	}
	return s.addr
}

// Start listens and serves h. It returns when serving fails or ctx ends;
// in the latter case the server keeps running until Stop.
func (s *Server) Start(ctx context.Context, h http.Handler) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return ErrAlreadyRunning
	}
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	tlsOn := s.base.TLSConfig != nil
	if tlsOn {
		ln = tls.NewListener(ln, s.base.TLSConfig)
	}

	srv := &http.Server{
		Handler:           h,
		ReadTimeout:       s.base.ReadTimeout,
		ReadHeaderTimeout: s.base.ReadHeaderTimeout,
		WriteTimeout:      s.base.WriteTimeout,
		IdleTimeout:       s.base.IdleTimeout,
		MaxHeaderBytes:    s.base.MaxHeaderBytes,
		ErrorLog:          slog.NewLogLogger(s.log.Handler(), slog.LevelWarn),
		BaseContext:       func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}
	s.ln, s.srv, s.running = ln, srv, true
	s.mu.Unlock()

	s.log.InfoContext(ctx, "http server listening",
		logger.Component("server"),
		slog.String("addr", ln.Addr().String()),
		slog.Bool("tls", tlsOn),
	)

	failed := make(chan error, 1)
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			failed <- err
		}
	}()

	select {
	case err := <-failed:
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stop drains in-flight requests for at most the shutdown timeout.
func (s *Server) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return nil
	}
	s.running = false

	ctx, cancel := context.WithTimeout(context.Background(), s.shutdown)
	defer cancel()

	if err := s.srv.Shutdown(ctx); err != nil {
		s.log.Error("http server shutdown", logger.Component("server"), logger.Error(err))
		return err
	}
	s.log.Info("http server stopped", logger.Component("server"))
	return nil
}

// Run adapts the server to errgroup.Group.Go: it serves until ctx is
// canceled and then stops gracefully.
func (s *Server) Run(ctx context.Context, h http.Handler) func() error {
	return func() error {
		done := make(chan error, 1)
		go func() { done <- s.Start(ctx, h) }()

		select {
		case <-ctx.Done():
			err := s.Stop()
			<-done
			return err
		case err := <-done:
			if ctx.Err() != nil {
				return s.Stop()
			}
			return err
		}
	}
}
