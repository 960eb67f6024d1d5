package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/AltairaLabs/toolgate/internal/gateway"
	"github.com/AltairaLabs/toolgate/internal/gateway/config"
	"github.com/AltairaLabs/toolgate/internal/transport/httpbridge"
	"github.com/AltairaLabs/toolgate/internal/transport/mcpserver"
	"github.com/AltairaLabs/toolgate/internal/transport/oauthbridge"
)

const appVersion = "1.0.0"

var (
	version    = flag.Bool("version", false, "Print version and exit")
	debug      = flag.Bool("debug", false, "Enable debug logging")
	configPath = flag.String("config", "", "Path to YAML config file (optional)")
	httpMode   = flag.Bool("http", false, "Serve the plain-HTTP token bridge")
	oauthMode  = flag.Bool("oauth", false, "Serve the OAuth bearer bridge with /metrics")
	sseMode    = flag.Bool("sse", false, "Serve MCP over HTTP/SSE instead of stdio")
	addr       = flag.String("addr", "", "Listen address override for the selected HTTP mode")
)

func main() {
	flag.Parse()

	if *version {
		fmt.Printf("toolgate v%s\n", appVersion)
		os.Exit(0)
	}

	// Structured logging goes to stderr so stdio MCP framing on stdout stays
	// clean.
	logLevel := slog.LevelInfo
	if *debug {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	cfg, err := loadConfig(*configPath)
	if err != nil {
		logger.Error("configuration error", "error", err)
		os.Exit(1)
	}

	gw, err := gateway.New(cfg, logger)
	if err != nil {
		logger.Error("gateway initialization failed", "error", err)
		os.Exit(1)
	}

	logger.Info("toolgate initialized",
		"version", appVersion,
		"workspace", gw.WorkspaceRoot(),
		"audit_log", cfg.Audit.Path,
		"debug", *debug,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() { errChan <- serve(gw, cfg, logger) }()

	select {
	case sig := <-sigChan:
		logger.Info("received shutdown signal", "signal", sig.String())
	case err := <-errChan:
		if err != nil {
			logger.Error("server error", "error", err)
			cancel()
			os.Exit(1)
		}
	case <-ctx.Done():
	}

	logger.Info("toolgate shutdown complete")
}

func loadConfig(path string) (config.Config, error) {
	if path != "" {
		return config.Load(path)
	}
	cfg := config.Default()
	cfg.FromEnv()
	return cfg, cfg.Normalize()
}

// serve runs the transport selected by the mode flags. Exactly one binding
// runs per process; operators start one process per binding.
func serve(gw *gateway.Gateway, cfg config.Config, logger *slog.Logger) error {
	switch {
	case *httpMode:
		if *addr != "" {
			cfg.HTTP.Addr = *addr
		}
		if cfg.HTTP.Token == "" {
			return fmt.Errorf("http mode requires a token (TOOLGATE_HTTP_TOKEN or http.token)")
		}
		return httpbridge.New(gw, cfg.HTTP, logger).Run()
	case *oauthMode:
		if *addr != "" {
			cfg.OAuth.Addr = *addr
		}
		if cfg.OAuth.Issuer == "" {
			return fmt.Errorf("oauth mode requires an issuer (TOOLGATE_AUTH_ISSUER or oauth.issuer)")
		}
		return oauthbridge.New(gw, cfg.OAuth, logger).Run()
	case *sseMode:
		sseAddr := *addr
		if sseAddr == "" {
			sseAddr = cfg.HTTP.Addr
		}
		return mcpserver.New(gw, logger).ServeSSE(sseAddr)
	default:
		return mcpserver.New(gw, logger).Serve()
	}
}
