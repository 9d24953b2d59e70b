package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/resume-tailor/internal/server"
	"github.com/jonathan/resume-tailor/internal/server/ratelimit"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long: `Start an HTTP server that exposes the evaluate/generate session flow and the generation history.
Bearer-token authentication is enabled when server.jwt_secret (JWT_SECRET) is set.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides server.port)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	a, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = a.close() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv, err := newServer(ctx, a)
	if err != nil {
		return err
	}
	return srv.Start(ctx)
}

// newServer wires the API server from the app configuration.
func newServer(ctx context.Context, a *app) (*server.Server, error) {
	controller, err := a.controller(ctx)
	if err != nil {
		return nil, err
	}
	store, err := a.store(ctx)
	if err != nil {
		return nil, err
	}

	cfg := server.Config{Port: a.cfg.Server.Port}
	if servePort > 0 {
		cfg.Port = servePort
	}
	if jwt, ok := a.cfg.Server.JWT(); ok {
		cfg.JWT = jwt
	} else {
		a.log.Warn("server.jwt_secret is not set; the API is unauthenticated")
	}
	cfg.RateLimit = ratelimit.DefaultConfig()
	cfg.RateLimit.Enabled = a.cfg.Server.RateLimitEnabled

	a.log.Debug("server configured", zap.Int("port", cfg.Port), zap.Bool("rate_limit", cfg.RateLimit.Enabled))
	return server.New(cfg, server.Deps{
		Controller:   controller,
		Store:        store,
		Exporter:     a.exporter(),
		FetchOptions: a.fetchOptions(),
		Logger:       a.log,
	})
}
