// Package monitor serves the read-only HTTP status surface of a running
// engine: health, Prometheus metrics and the latest status snapshot.
//
// The engine is single-threaded; it hands the monitor immutable snapshots
// through Publish, and handlers only ever read the latest one.
package monitor

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/danmuck/multishell/internal/config"
	"github.com/danmuck/multishell/internal/observability"
	"github.com/danmuck/multishell/internal/task"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

const shutdownTimeout = 2 * time.Second

// SessionStat describes one shell session.
type SessionStat struct {
	Name      string `json:"name"`
	Stream    string `json:"stream"`
	State     string `json:"state"`
	Connected bool   `json:"connected"`
	Queued    int    `json:"queued"`
}

// Snapshot is the engine state published once a second.
type Snapshot struct {
	Time     time.Time       `json:"time"`
	Status   string          `json:"status"`
	Pools    []task.PoolStat `json:"pools"`
	Sessions []SessionStat   `json:"sessions"`
}

type Server struct {
	instance string
	addr     string
	router   *gin.Engine
	started  time.Time
	snap     atomic.Pointer[Snapshot]
	log      zerolog.Logger
}

func New(instance string, cfg config.MonitorConfig) *Server {
	observability.RegisterMetrics()
	logger := observability.Component("monitor")
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(observability.RequestLogger(logger))
	r.Use(observability.RequestMetricsMiddleware(instance))
	r.Use(cors.New(cors.Config{
		AllowOrigins: normalizeOrigins(cfg.CorsOrigins),
		AllowMethods: []string{"GET"},
		AllowHeaders: []string{"Origin", "Content-Type"},
		MaxAge:       12 * time.Hour,
	}))
	_ = r.SetTrustedProxies([]string{"127.0.0.1", "::1"})

	s := &Server{
		instance: instance,
		addr:     cfg.Addr,
		router:   r,
		started:  time.Now(),
		log:      logger,
	}
	s.registerRoutes()
	return s
}

func normalizeOrigins(origins []string) []string {
	if len(origins) == 0 {
		return []string{"http://localhost:3000"}
	}
	return origins
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// Publish replaces the snapshot served on /status. Safe from any goroutine.
func (s *Server) Publish(snap Snapshot) {
	s.snap.Store(&snap)
}

func (s *Server) registerRoutes() {
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"uptime":  time.Since(s.started).String(),
			"service": s.instance,
		})
	})

	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	s.router.GET("/status", func(c *gin.Context) {
		snap := s.snap.Load()
		if snap == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no snapshot yet"})
			return
		}
		c.JSON(http.StatusOK, snap)
	})
}

// Run serves until ctx ends, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		errc <- srv.ListenAndServe()
	}()
	s.log.Info().Str("addr", s.addr).Msg("monitor.Server.Run")

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
