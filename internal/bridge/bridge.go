// Package bridge serves the overlay: host pushes and overlay actions over
// HTTP, live view updates over a websocket.
package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/qc-advancedmedic/nui/internal/config"
	"github.com/qc-advancedmedic/nui/internal/handlers"
	"github.com/qc-advancedmedic/nui/internal/journal"
	"github.com/qc-advancedmedic/nui/internal/messages"
	"github.com/qc-advancedmedic/nui/internal/state"
	"github.com/qc-advancedmedic/nui/pkg/nui"
)

const maxBodySize = 1 << 20

// Service handles decoded traffic and renders the view.
type Service interface {
	HandlePush(ctx context.Context, raw []byte) ([]string, error)
	HandleAction(ctx context.Context, raw []byte) (any, error)
	ViewModel() handlers.ViewModel
	Store() *state.Store
}

// Dependencies holds all dependencies needed by the bridge
type Dependencies struct {
	Service Service
	// Journal is optional; without it /journal answers 404.
	Journal journal.Backend
	Logger  *slog.Logger
	Config  config.BridgeConfig
}

// Server is the overlay bridge.
type Server struct {
	deps    Dependencies
	router  *gin.Engine
	hub     *Hub
	metrics *metrics

	http        *http.Server
	unsubscribe func()
}

// New builds the router and subscribes the hub to state changes.
func New(deps Dependencies) *Server {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	gin.SetMode(gin.ReleaseMode)

	m := newMetrics()
	s := &Server{
		deps:    deps,
		metrics: m,
		hub:     newHub(deps.Service, deps.Logger, m, deps.Config.AllowedOrigins),
	}
	s.unsubscribe = deps.Service.Store().Subscribe(func(state.App, uint64) { s.hub.Notify() })
	s.router = s.routes()
	return s
}

func (s *Server) routes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(s.deps.Logger))

	if len(s.deps.Config.AllowedOrigins) > 0 {
		corsConfig := cors.DefaultConfig()
		corsConfig.AllowOrigins = s.deps.Config.AllowedOrigins
		corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
		corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type"}
		corsConfig.MaxAge = 12 * time.Hour
		corsConfig.AllowWildcard = true
		corsConfig.AllowBrowserExtensions = true
		corsConfig.CustomSchemas = []string{"nui://"}
		router.Use(cors.New(corsConfig))
	}

	router.GET("/healthcheck", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.POST("/push", s.handlePush)
	router.POST("/action", s.handleAction)
	router.GET("/state", func(c *gin.Context) {
		c.JSON(http.StatusOK, s.deps.Service.ViewModel())
	})
	router.GET("/journal", s.handleJournal)
	router.GET("/ws", func(c *gin.Context) {
		s.hub.ServeWS(c.Writer, c.Request)
	})
	if s.deps.Config.Metrics {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.metrics.registry, promhttp.HandlerOpts{})))
	}
	return router
}

// Handler returns the HTTP handler of the bridge.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Hub returns the websocket hub.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Start listens on the configured address and serves until Shutdown.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.deps.Config.Listen)
	if err != nil {
		return err
	}
	s.http = &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go s.hub.Run(ctx)
	go func() {
		if err := s.http.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.deps.Logger.Error("Bridge stopped", "error", err)
		}
	}()
	s.deps.Logger.Info("Bridge listening", "addr", ln.Addr().String())
	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.unsubscribe != nil {
		s.unsubscribe()
	}
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}

func readBody(c *gin.Context) ([]byte, error) {
	return io.ReadAll(io.LimitReader(c.Request.Body, maxBodySize))
}

// typeOf reads the message type for metrics labels.
func typeOf(raw []byte) string {
	var env nui.Envelope
	_ = json.Unmarshal(raw, &env)
	return env.Type
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, messages.ErrInvalid), errors.Is(err, messages.ErrUnknownType):
		return http.StatusBadRequest
	case errors.Is(err, handlers.ErrNoPanel):
		return http.StatusConflict
	default:
		return http.StatusUnprocessableEntity
	}
}

func (s *Server) handlePush(c *gin.Context) {
	raw, err := readBody(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	warnings, err := s.deps.Service.HandlePush(c.Request.Context(), raw)
	s.metrics.observe("push", typeOf(raw), err == nil)
	if err != nil {
		c.JSON(statusOf(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "warnings": warnings})
}

func (s *Server) handleAction(c *gin.Context) {
	raw, err := readBody(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	result, err := s.deps.Service.HandleAction(c.Request.Context(), raw)
	s.metrics.observe("action", typeOf(raw), err == nil)
	if err != nil {
		c.JSON(statusOf(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "result": result})
}

func (s *Server) handleJournal(c *gin.Context) {
	if s.deps.Journal == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "journal disabled"})
		return
	}

	f := journal.Filter{Kind: journal.Kind(c.Query("kind"))}
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		f.Limit = n
	}
	if v := c.Query("since"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid since"})
			return
		}
		f.Since = t
	}

	entries, err := s.deps.Journal.Entries(c.Request.Context(), f)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries})
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}
