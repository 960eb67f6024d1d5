// Package oauthbridge exposes the gateway over HTTP authenticated with OAuth
// bearer tokens (JWT, validated against the provider's JWKS) and an origin
// allowlist. It also serves Prometheus metrics.
package oauthbridge

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/AltairaLabs/toolgate/internal/gateway"
	"github.com/AltairaLabs/toolgate/internal/gateway/config"
	"github.com/AltairaLabs/toolgate/internal/transport"
	"github.com/AltairaLabs/toolgate/internal/types"
)

// Server is the OAuth-HTTP binding.
type Server struct {
	engine   *gin.Engine
	gateway  *gateway.Gateway
	cfg      config.OAuthConfig
	verifier *verifier
	metrics  *metrics
	logger   *slog.Logger
}

// New builds the binding with all routes registered.
func New(gw *gateway.Gateway, cfg config.OAuthConfig, logger *slog.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	s := &Server{
		engine:   engine,
		gateway:  gw,
		cfg:      cfg,
		verifier: newVerifier(cfg.Issuer, cfg.Audience, cfg.JWKSURL),
		metrics:  newMetrics(),
		logger:   logger,
	}

	engine.GET("/", s.handleRoot)
	engine.GET("/mcp/health", s.handleHealth)
	engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.metrics.registry, promhttp.HandlerOpts{})))

	authed := engine.Group("/", s.checkOrigin(), s.checkBearer())
	authed.GET("/mcp", s.handleManifest)
	authed.POST("/tool/:name", s.handleTool)
	return s
}

// Run serves until the listener fails.
func (s *Server) Run() error {
	s.logger.Info("starting OAuth bridge",
		"address", s.cfg.Addr,
		"issuer", s.cfg.Issuer,
		"require_origin", s.cfg.RequireOrigin,
	)
	return s.engine.Run(s.cfg.Addr)
}

// Handler exposes the router for tests and embedding.
func (s *Server) Handler() http.Handler { return s.engine }

// checkOrigin enforces the Origin/Referer allowlist. Requests without either
// header pass only when enforcement is disabled; browser-driven callers
// always carry one of them.
func (s *Server) checkOrigin() gin.HandlerFunc {
	allowed := make(map[string]bool, len(s.cfg.AllowedOrigins))
	for _, o := range s.cfg.AllowedOrigins {
		allowed[strings.TrimSuffix(o, "/")] = true
	}
	return func(c *gin.Context) {
		if !s.cfg.RequireOrigin {
			c.Next()
			return
		}
		origin := c.GetHeader("Origin")
		if origin == "" {
			if ref := c.GetHeader("Referer"); ref != "" {
				origin = refererOrigin(ref)
			}
		}
		if origin == "" || !allowed[strings.TrimSuffix(origin, "/")] {
			s.metrics.authFailures.WithLabelValues("origin").Inc()
			err := types.E(types.KindAuthForbiddenOrigin, "auth", "origin not allowed: %q", origin)
			c.AbortWithStatusJSON(transport.StatusFor(err), gin.H{"ok": false, "error": err.Error()})
			return
		}
		c.Next()
	}
}

// refererOrigin reduces a Referer URL to its scheme://host[:port] origin.
func refererOrigin(ref string) string {
	rest := ref
	idx := strings.Index(ref, "://")
	if idx < 0 {
		return ref
	}
	rest = ref[idx+3:]
	if slash := strings.Index(rest, "/"); slash >= 0 {
		return ref[:idx+3] + rest[:slash]
	}
	return ref
}

func (s *Server) checkBearer() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, found := strings.CutPrefix(header, "Bearer ")
		if !found || token == "" {
			s.metrics.authFailures.WithLabelValues("missing_token").Inc()
			err := types.E(types.KindAuthInvalid, "auth", "missing bearer token")
			c.AbortWithStatusJSON(transport.StatusFor(err), gin.H{"ok": false, "error": err.Error()})
			return
		}
		subject, err := s.verifier.verify(token)
		if err != nil {
			s.metrics.authFailures.WithLabelValues("invalid_token").Inc()
			c.AbortWithStatusJSON(transport.StatusFor(err), gin.H{"ok": false, "error": err.Error()})
			return
		}
		c.Set("subject", subject)
		c.Next()
	}
}

func (s *Server) handleRoot(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service": "toolgate",
		"version": "1.0.0",
		"auth":    "oauth2 bearer",
		"issuer":  s.cfg.Issuer,
		"endpoints": []string{
			"GET /mcp/health",
			"GET /mcp",
			"GET /metrics",
			"POST /tool/{name}",
		},
	})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"workspace": s.gateway.WorkspaceRoot(),
		"time":      time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleManifest(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service": "toolgate",
		"version": "1.0.0",
		"tools":   s.gateway.Operations(),
	})
}

func (s *Server) handleTool(c *gin.Context) {
	name := c.Param("name")

	var args map[string]any
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&args); err != nil {
			s.metrics.observe(name, false, 0)
			c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid JSON body: " + err.Error()})
			return
		}
	}
	if args == nil {
		args = map[string]any{}
	}

	start := time.Now()
	result, err := s.gateway.Invoke(c.Request.Context(), name, args)
	elapsed := time.Since(start)
	s.metrics.observe(name, err == nil, elapsed.Seconds())

	if err != nil {
		c.JSON(transport.StatusFor(err), gin.H{
			"ok": false, "error": err.Error(), "elapsed_ms": elapsed.Milliseconds(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"ok": true, "result": result, "elapsed_ms": elapsed.Milliseconds(),
	})
}
