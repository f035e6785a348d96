// Package api exposes the contest over HTTP: configuration, submissions,
// vote assignments, votes and the leaderboard.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aimd54/design-contest/pkg/logger"
)

// HealthChecker reports whether a dependency is reachable.
type HealthChecker interface {
	Health() error
}

// CacheChecker reports whether the lock store is reachable.
type CacheChecker interface {
	Health(ctx context.Context) error
}

// Options configures the HTTP server.
type Options struct {
	Address     string
	JWTSecret   string
	MetricsPath string // empty disables /metrics

	Users       UserFinder
	Contest     ContestService
	Leaderboard LeaderboardService
	DB          HealthChecker
	Cache       CacheChecker // nil without redis
	Log         *logger.Logger
}

// Server is the contest HTTP server.
type Server struct {
	opts   *Options
	engine *gin.Engine
	http   *http.Server
	log    *logger.Logger
}

// NewServer builds the router and registers every route.
func NewServer(opts *Options) *Server {
	s := &Server{
		opts:   opts,
		engine: gin.New(),
		log:    opts.Log.Component("api"),
	}
	s.setup()

	s.http = &http.Server{
		Addr:              opts.Address,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) setup() {
	s.engine.Use(gin.Recovery(), requestLogger(s.log))

	h := NewHandler(s.opts.Contest, s.opts.Leaderboard, s.log)
	authed := requireUser(s.opts.JWTSecret, s.opts.Users, s.log)

	s.engine.GET("/health", s.health)
	if s.opts.MetricsPath != "" {
		s.engine.GET(s.opts.MetricsPath, gin.WrapH(promhttp.Handler()))
	}

	api := s.engine.Group("/api")

	api.GET("/config", h.GetConfig)
	api.GET("/config/phase", h.GetPhase)
	api.PUT("/config", authed, h.PutConfig)

	submissions := api.Group("/submissions", authed)
	submissions.POST("", h.CreateSubmission)
	submissions.GET("/mine", h.GetMySubmission)
	submissions.GET("/:id", h.GetSubmission)
	submissions.PUT("/:id", h.UpdateSubmission)
	submissions.PATCH("/:id", h.UpdateSubmission)

	api.GET("/vote_assignments/mine", authed, h.GetMyAssignments)

	votes := api.Group("/votes", authed)
	votes.POST("", h.CreateVote)
	votes.GET("/mine", h.GetMyVotes)
	votes.PUT("/:id", h.UpdateVote)

	api.GET("/scores", h.GetScores)
}

func (s *Server) health(c *gin.Context) {
	if s.opts.DB != nil {
		if err := s.opts.DB.Health(); err != nil {
			s.log.Error().Err(err).Msg("Database health check failed")
			errorResponse(c, http.StatusServiceUnavailable, "database unavailable")
			return
		}
	}
	if s.opts.Cache != nil {
		if err := s.opts.Cache.Health(c.Request.Context()); err != nil {
			s.log.Error().Err(err).Msg("Redis health check failed")
			errorResponse(c, http.StatusServiceUnavailable, "cache unavailable")
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Start serves until Stop is called.
func (s *Server) Start() error {
	s.log.Info().Str("address", s.opts.Address).Msg("HTTP server listening")
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Stop drains in-flight requests until ctx expires.
func (s *Server) Stop(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

// ServeHTTP lets tests drive the router directly.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.engine.ServeHTTP(w, r)
}
