package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/pranshuj73/gifzoo/config"
	"github.com/pranshuj73/gifzoo/hasura"
	"github.com/pranshuj73/gifzoo/logger"
	"github.com/pranshuj73/gifzoo/proxy"
)

func runServe(cmd *cobra.Command, args []string) error {
	logger.Tee(os.Stderr)

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyServeFlags(cfg)

	handler, err := newServeHandler(cfg, prometheus.NewRegistry())
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	logger.Info("Starting GraphQL proxy", map[string]interface{}{
		"addr":     addr,
		"upstream": cfg.Upstream.Endpoint,
		"secret":   cfg.Upstream.AdminSecret != "",
	})

	if err := proxy.Serve(ctx, addr, handler); err != nil {
		logger.Error("GraphQL proxy stopped", err, map[string]interface{}{"addr": addr})
		return err
	}

	logger.Info("GraphQL proxy stopped", nil)
	return nil
}

// applyServeFlags lets --port and --endpoint override file and environment
func applyServeFlags(cfg *config.Config) {
	if servePort > 0 {
		cfg.Server.Port = servePort
	}
	if serveEndpoint != "" {
		cfg.Upstream.Endpoint = serveEndpoint
	}
}

// newServeHandler wires the Hasura client, metrics and schema together
func newServeHandler(cfg *config.Config, reg *prometheus.Registry) (http.Handler, error) {
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	client := hasura.NewClient(
		cfg.Upstream.Endpoint,
		cfg.Upstream.AdminSecret,
		hasura.WithMetrics(hasura.NewMetrics(reg)),
	)

	handler, err := proxy.NewHandler(client, reg)
	if err != nil {
		return nil, fmt.Errorf("failed to build GraphQL schema: %w", err)
	}
	return handler, nil
}
