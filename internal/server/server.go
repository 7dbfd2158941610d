// Package server exposes the custody ledger as a read-only HTTP API.
// Every request re-reads the gateway; there is no cache layer between the
// API and the ledger.
package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/evidchain/custodia/internal/evidence"
	"github.com/evidchain/custodia/internal/fabric"
	"github.com/evidchain/custodia/internal/ledgerview"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// EvidenceReader serves current evidence state. *custody.Service
// satisfies this interface.
type EvidenceReader interface {
	Read(ctx context.Context, id string) (*evidence.Snapshot, error)
	List(ctx context.Context) ([]evidence.Snapshot, error)
}

// Historian serves single-asset classified timelines. *evidence.Fetcher
// satisfies this interface.
type Historian interface {
	Timeline(ctx context.Context, assetID string) ([]evidence.ClassifiedEntry, error)
}

// Merger reconstructs the global ledger view. *ledgerview.Merger
// satisfies this interface.
type Merger interface {
	Merge(ctx context.Context) ([]evidence.ClassifiedEntry, []ledgerview.Warning, error)
}

// AnchorResolver resolves the genesis anchor. *ledgerview.GenesisResolver
// satisfies this interface.
type AnchorResolver interface {
	Resolve(ctx context.Context) ledgerview.Anchor
}

// Options configures the HTTP server.
type Options struct {
	CORSOrigins  []string
	RateLimitRPS int // 0 disables rate limiting
}

// Server assembles the read-only API.
type Server struct {
	reader   EvidenceReader
	history  Historian
	merger   Merger
	resolver AnchorResolver
	opts     Options
	logger   *zap.Logger
}

// New creates a Server over the given collaborators.
func New(reader EvidenceReader, history Historian, merger Merger, resolver AnchorResolver, opts Options, logger *zap.Logger) *Server {
	return &Server{
		reader:   reader,
		history:  history,
		merger:   merger,
		resolver: resolver,
		opts:     opts,
		logger:   logger,
	}
}

// Router builds the gin engine with all middleware and routes mounted.
func (s *Server) Router() *gin.Engine {
	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())

	if len(s.opts.CORSOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:  s.opts.CORSOrigins,
			AllowMethods:  []string{"GET", "OPTIONS"},
			AllowHeaders:  []string{"Origin", "Content-Type", "Accept"},
			ExposeHeaders: []string{"Content-Length"},
			MaxAge:        12 * time.Hour,
		}))
	}
	if s.opts.RateLimitRPS > 0 {
		router.Use(rateLimiter(s.opts.RateLimitRPS, s.opts.RateLimitRPS*2))
	}
	router.Use(prometheusMiddleware())
	router.Use(s.requestLogger())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", metricsHandler())

	v1 := router.Group("/api/v1")
	{
		v1.GET("/evidence", s.listEvidence)
		v1.GET("/evidence/:id", s.getEvidence)
		v1.GET("/evidence/:id/history", s.getHistory)
		v1.GET("/ledger", s.getLedger)
	}
	return router
}

// requestLogger logs each request with zap.
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}

// httpStatus maps gateway error kinds onto HTTP statuses.
func httpStatus(err error) int {
	switch {
	case errors.Is(err, fabric.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, fabric.ErrAccessDenied):
		return http.StatusForbidden
	case errors.Is(err, fabric.ErrMalformed):
		return http.StatusBadGateway
	case errors.Is(err, fabric.ErrUnavailable):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}
