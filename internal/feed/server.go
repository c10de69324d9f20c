package feed

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/zouxin96/vibeStock/internal/layout"
)

// Server runs the hub and the simulator behind an HTTP listener.
type Server struct {
	cfg Config
	hub *Hub
	sim *Simulator
	log zerolog.Logger
}

// NewServer wires a hub and a simulator publishing the channels of instances.
func NewServer(cfg Config, instances []layout.Instance, clk clock.Clock, log zerolog.Logger) *Server {
	cfg = cfg.withDefaults()
	hub := NewHub(cfg.ClientBuffer, clk, log.With().Str("component", "hub").Logger())
	sim := NewSimulator(hub, TargetsFor(instances), cfg, clk, log.With().Str("component", "simulator").Logger())
	hub.OnControl(sim.HandleControl)
	return &Server{cfg: cfg, hub: hub, sim: sim, log: log}
}

func (s *Server) Hub() *Hub             { return s.hub }
func (s *Server) Simulator() *Simulator { return s.sim }

// Handler returns the gin router. The feed speaks only the websocket protocol.
func (s *Server) Handler() http.Handler {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())
	r.GET("/ws", s.hub.Serve)
	return r
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Debug().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("took", time.Since(start)).
			Msg("request")
	}
}

// Run listens on the configured address until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return errors.Wrapf(err, "listen %s", s.cfg.Addr)
	}
	return s.Serve(ctx, ln)
}

// Serve runs on ln until ctx is cancelled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	if err := s.sim.Start(); err != nil {
		_ = ln.Close()
		return err
	}
	defer s.sim.Stop()

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", ln.Addr().String()).Msg("feed listening")
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		s.hub.Close()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return errors.Wrap(err, "serve")
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	s.log.Info().Msg("feed shutting down")
	// Hijacked websocket connections are not tracked by Shutdown
	s.hub.Close()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "shutdown")
	}
	return nil
}
