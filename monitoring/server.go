package monitoring

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/pprof"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// ServerConfig controls the monitoring HTTP server.
type ServerConfig struct {
	Port             int
	URLPrefix        string
	MetricsEnabled   bool
	ProfilingEnabled bool
}

// IsEnabled reports whether the server has anything to serve.
func (c ServerConfig) IsEnabled() bool {
	return c.MetricsEnabled || c.ProfilingEnabled
}

// Server serves Prometheus metrics and optional pprof endpoints over
// its own registry.
type Server struct {
	cfg ServerConfig
	log zerolog.Logger

	registry *prometheus.Registry
	srv      *http.Server
	addr     atomic.Value // string, set once listening
}

// NewServer builds the server and its handler. Register collectors
// with MustRegister before Run.
func NewServer(cfg ServerConfig, log zerolog.Logger) *Server {
	s := &Server{
		cfg:      cfg,
		log:      log,
		registry: prometheus.NewRegistry(),
	}

	mux := http.NewServeMux()
	if cfg.ProfilingEnabled {
		prefix := cfg.URLPrefix + "/debug/pprof"
		mux.HandleFunc(prefix+"/", pprof.Index)
		mux.HandleFunc(prefix+"/cmdline", pprof.Cmdline)
		mux.HandleFunc(prefix+"/profile", pprof.Profile)
		mux.HandleFunc(prefix+"/symbol", pprof.Symbol)
		mux.HandleFunc(prefix+"/trace", pprof.Trace)
		// The index only links profiles served from the default path,
		// so named profiles are mounted explicitly.
		mux.Handle(prefix+"/allocs", pprof.Handler("allocs"))
		mux.Handle(prefix+"/block", pprof.Handler("block"))
		mux.Handle(prefix+"/goroutine", pprof.Handler("goroutine"))
		mux.Handle(prefix+"/heap", pprof.Handler("heap"))
		mux.Handle(prefix+"/mutex", pprof.Handler("mutex"))
		mux.Handle(prefix+"/threadcreate", pprof.Handler("threadcreate"))
	}
	if cfg.MetricsEnabled {
		mux.Handle(cfg.URLPrefix+"/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	}

	s.srv = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// MustRegister adds collectors to the server's registry.
func (s *Server) MustRegister(cs ...prometheus.Collector) {
	s.registry.MustRegister(cs...)
}

// Registry exposes the server's registry.
func (s *Server) Registry() *prometheus.Registry {
	return s.registry
}

// Addr returns the bound address, empty before Run starts listening.
// With port 0 this is where the kernel-chosen port shows up.
func (s *Server) Addr() string {
	if v, ok := s.addr.Load().(string); ok {
		return v
	}
	return ""
}

// Run listens and serves until ctx is cancelled or Shutdown is called.
// It returns nil after a Shutdown and ctx.Err() after a cancellation.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return fmt.Errorf("monitoring: listen: %w", err)
	}
	s.addr.Store(ln.Addr().String())
	s.log.Info().
		Str("addr", ln.Addr().String()).
		Bool("metrics", s.cfg.MetricsEnabled).
		Bool("pprof", s.cfg.ProfilingEnabled).
		Msg("monitoring server running")

	errc := make(chan error, 1)
	go func() { errc <- s.srv.Serve(ln) }()

	select {
	case <-ctx.Done():
		shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.srv.Shutdown(shCtx)
		<-errc
		return ctx.Err()
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("monitoring server shutting down")
	return s.srv.Shutdown(ctx)
}
