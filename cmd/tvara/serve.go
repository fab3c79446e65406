package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/tvarahq/tvara-go/config"
	"github.com/tvarahq/tvara-go/core"
	"github.com/tvarahq/tvara-go/logging"
	"github.com/tvarahq/tvara-go/metrics"
	"github.com/tvarahq/tvara-go/server"
)

// ServeCmd serves the toolkit over HTTP.
type ServeCmd struct {
	Host    string `help:"Listen host. Overrides the config serve section."`
	Port    int    `help:"Listen port. Overrides the config serve section."`
	Metrics bool   `help:"Expose Prometheus metrics on /metrics."`
}

func (c *ServeCmd) Run(cli *CLI) error {
	logger, err := buildLogger(cli)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(cli)
	if err != nil {
		return err
	}

	observers := []core.Observer{logging.NewObserver(logger)}

	var registry *prometheus.Registry
	if c.Metrics || cfg.Serve.Metrics {
		registry = prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		observers = append(observers, metrics.NewObserver(registry))
	}

	toolkit, err := cfg.Build(func(o *config.BuildOptions) {
		o.Logger = logger
		o.Observer = core.MultiObserver(observers...)
	})
	if err != nil {
		return fmt.Errorf("build toolkit: %w", err)
	}

	host := cfg.Serve.Host
	if c.Host != "" {
		host = c.Host
	}
	port := cfg.Serve.Port
	if c.Port != 0 {
		port = c.Port
	}
	if port == 0 {
		port = 8080
	}

	srv := server.New(toolkit, func(o *server.Options) {
		o.Addr = fmt.Sprintf("%s:%d", host, port)
		o.Logger = logger
		o.MetricsRegistry = registry
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return srv.ListenAndServe(ctx)
}
