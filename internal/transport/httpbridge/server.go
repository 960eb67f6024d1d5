// Package httpbridge exposes the gateway over plain HTTP with shared-token
// authentication. It is meant for local development and trusted networks;
// production deployments use the OAuth binding.
package httpbridge

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/AltairaLabs/toolgate/internal/gateway"
	"github.com/AltairaLabs/toolgate/internal/gateway/config"
	"github.com/AltairaLabs/toolgate/internal/transport"
)

// Server is the plain-HTTP binding.
type Server struct {
	engine  *gin.Engine
	gateway *gateway.Gateway
	cfg     config.HTTPConfig
	logger  *slog.Logger
}

// New builds the binding with all routes registered.
func New(gw *gateway.Gateway, cfg config.HTTPConfig, logger *slog.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	s := &Server{engine: engine, gateway: gw, cfg: cfg, logger: logger}
	engine.Use(s.logRequests(), s.corsHeaders())

	engine.GET("/", s.handleRoot)
	engine.GET("/mcp/health", s.handleHealth)
	engine.GET("/mcp", s.handleManifest)
	engine.POST("/tool/:name", s.handleTool)
	return s
}

// Run serves until the listener fails.
func (s *Server) Run() error {
	s.logger.Info("starting HTTP bridge", "address", s.cfg.Addr)
	return s.engine.Run(s.cfg.Addr)
}

// Handler exposes the router for tests and embedding.
func (s *Server) Handler() http.Handler { return s.engine }

func (s *Server) logRequests() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Info("http_request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
	}
}

// corsHeaders answers preflight and reflects allowlisted origins. The origin
// allowlist here only drives CORS; hard origin enforcement belongs to the
// OAuth binding.
func (s *Server) corsHeaders() gin.HandlerFunc {
	allowed := make(map[string]bool, len(s.cfg.AllowedOrigins))
	for _, o := range s.cfg.AllowedOrigins {
		allowed[o] = true
	}
	return func(c *gin.Context) {
		if origin := c.GetHeader("Origin"); origin != "" && allowed[origin] {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			c.Header("Access-Control-Allow-Headers", "Content-Type")
		}
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func (s *Server) handleRoot(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service": "toolgate",
		"version": "1.0.0",
		"endpoints": []string{
			"GET /mcp/health",
			"GET /mcp",
			"POST /tool/{name}?token=...",
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
	if !s.tokenOK(c.Query("token")) {
		c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "error": "invalid or missing token"})
		return
	}

	var args map[string]any
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&args); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid JSON body: " + err.Error()})
			return
		}
	}
	if args == nil {
		args = map[string]any{}
	}

	start := time.Now()
	result, err := s.gateway.Invoke(c.Request.Context(), c.Param("name"), args)
	elapsed := time.Since(start).Milliseconds()
	if err != nil {
		c.JSON(transport.StatusFor(err), gin.H{"ok": false, "error": err.Error(), "elapsed_ms": elapsed})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "result": result, "elapsed_ms": elapsed})
}

// tokenOK compares in constant time so the token cannot be guessed byte by
// byte from timing. An unconfigured token locks the binding shut.
func (s *Server) tokenOK(token string) bool {
	if s.cfg.Token == "" || token == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(s.cfg.Token)) == 1
}
