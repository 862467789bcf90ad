package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/michaelbrown/codepad/internal/config"
	"github.com/michaelbrown/codepad/internal/sandbox"
	"github.com/michaelbrown/codepad/internal/server"
)

var portFlag int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the codepad web server",
	Long: `Start the codepad HTTP server with REST API and WebSocket support.

The server is both the execution service (POST /api/execute) and the
workspace API. API endpoints are under /api.

Examples:
  codepad serve
  codepad serve --port 9090`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVar(&portFlag, "port", 0, "Port to listen on (overrides config)")
	rootCmd.AddCommand(serveCmd)
}

func sandboxPolicy(cfg config.SandboxConfig) sandbox.Policy {
	policy := sandbox.DefaultPolicy()
	if cfg.MaxMemory != "" {
		policy.MaxMemory = cfg.MaxMemory
	}
	if cfg.MaxTimeout > 0 {
		policy.MaxTimeout = cfg.MaxTimeout
	}
	policy.Network = cfg.Network
	return policy
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := openApp(context.Background())
	if err != nil {
		return err
	}
	defer a.Close()
	logger := a.log.Logger

	var runner server.CodeRunner
	if a.cfg.Sandbox.Enabled {
		r := sandbox.NewRunner(sandbox.NewDockerSandbox(sandboxPolicy(a.cfg.Sandbox)), logger)
		if !r.Available() {
			logger.Warn("docker not found; /api/execute will answer 503")
		}
		runner = r
	} else {
		logger.Info("sandbox disabled; /api/execute will answer 503")
	}

	// Determine port
	port := a.cfg.Server.Port
	if portFlag > 0 {
		port = portFlag
	}

	srv := server.New(a.ws, a.store, runner, logger)

	// Graceful shutdown on SIGINT/SIGTERM
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		srv.Shutdown(context.Background())
	}()

	if err := srv.Start(port); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serving: %w", err)
	}
	return nil
}
