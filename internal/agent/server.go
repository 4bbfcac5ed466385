// Package agent serves local telemetry over HTTP and websockets. It is
// read-only: there are no endpoints that signal processes.
package agent

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rileyhilliard/systrix/internal/errors"
	"github.com/rileyhilliard/systrix/internal/export"
	"github.com/rileyhilliard/systrix/internal/logger"
	"github.com/rileyhilliard/systrix/internal/metrics"
)

// MinInterval is the fastest the agent resamples.
const MinInterval = 100 * time.Millisecond

// Sampler produces snapshots. *metrics.Sampler satisfies it.
type Sampler interface {
	Sample(ctx context.Context) (metrics.Snapshot, error)
}

// Options configures a Server.
type Options struct {
	Bind     string
	Port     int
	Interval time.Duration
	Version  string
	Logger   logger.Logger
	// Now is the clock; tests replace it.
	Now func() time.Time
}

// Server caches the latest snapshot and serves it. Handlers only read the
// cache, so a slow acquisition never blocks a request.
type Server struct {
	sampler  Sampler
	opts     Options
	log      logger.Logger
	router   *gin.Engine
	hub      *hub
	upgrader websocket.Upgrader

	mu       sync.RWMutex
	snapshot metrics.Snapshot
	updated  time.Time
	lastErr  error
}

// New builds a server. Nothing is sampled until Refresh or Run.
func New(sampler Sampler, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = logger.Noop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Interval < MinInterval {
		opts.Interval = MinInterval
	}
	if opts.Bind == "" {
		opts.Bind = "127.0.0.1"
	}

	gin.SetMode(gin.ReleaseMode)
	s := &Server{
		sampler: sampler,
		opts:    opts,
		log:     opts.Logger,
		hub:     newHub(opts.Logger),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
		},
	}
	s.router = s.routes()
	return s
}

// Handler is the HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Addr is the configured listen address.
func (s *Server) Addr() string {
	return net.JoinHostPort(s.opts.Bind, strconv.Itoa(s.opts.Port))
}

// Refresh samples once, updates the cache, and pushes the result to
// websocket clients. On failure the previous snapshot stays cached.
func (s *Server) Refresh(ctx context.Context) error {
	snap, err := s.sampler.Sample(ctx)
	if err != nil {
		s.mu.Lock()
		s.lastErr = err
		s.mu.Unlock()
		s.log.Warn("agent refresh failed: %s", errors.Describe(err))
		return err
	}

	s.mu.Lock()
	s.snapshot = snap
	s.updated = s.opts.Now()
	s.lastErr = nil
	s.mu.Unlock()

	if s.hub.count() > 0 {
		frame, err := marshalBundle(snap, s.opts.Now())
		if err != nil {
			s.log.Error("encoding websocket frame: %v", err)
			return nil
		}
		s.hub.broadcast(frame)
	}
	return nil
}

// cacheEntry is what handlers read.
type cacheEntry struct {
	snapshot metrics.Snapshot
	updated  time.Time
	lastErr  error
}

// cached returns the cache and whether a snapshot was ever stored.
func (s *Server) cached() (cacheEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e := cacheEntry{snapshot: s.snapshot, updated: s.updated, lastErr: s.lastErr}
	return e, !s.updated.IsZero()
}

// Run samples once (failure is fatal), then serves until ctx is cancelled
// while a background loop refreshes the cache every interval.
func (s *Server) Run(ctx context.Context) error {
	if err := s.Refresh(ctx); err != nil {
		return errors.WrapWithCode(err, errors.ErrAgent,
			"Agent could not read system metrics", "Run with --debug for details")
	}

	ln, err := net.Listen("tcp", s.Addr())
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrAgent,
			fmt.Sprintf("Cannot listen on %s", s.Addr()),
			"Pick another port with --port or stop the process using it")
	}
	return s.Serve(ctx, ln)
}

// Serve is Run with a caller-provided listener and no initial refresh.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	loopCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.loop(loopCtx)
	}()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()
	s.log.Info("agent listening on %s (refresh %s)", ln.Addr(), s.opts.Interval)

	var serveErr error
	select {
	case <-ctx.Done():
		shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
		defer done()
		s.hub.closeAll()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.log.Warn("agent shutdown: %v", err)
		}
		<-errCh
	case serveErr = <-errCh:
	}
	cancel()
	wg.Wait()

	if serveErr != nil && !stderrors.Is(serveErr, http.ErrServerClosed) {
		return errors.WrapWithCode(serveErr, errors.ErrAgent, "Agent server stopped", "")
	}
	return nil
}

func (s *Server) loop(ctx context.Context) {
	ticker := time.NewTicker(s.opts.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.Refresh(ctx); err != nil && ctx.Err() != nil {
				return
			}
		}
	}
}

func marshalBundle(snap metrics.Snapshot, now time.Time) ([]byte, error) {
	return json.Marshal(export.NewBundle(snap, now))
}
