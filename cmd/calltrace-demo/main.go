// Command calltrace-demo wires calltrace end to end: configuration, the
// zerolog sink, the engine with Prometheus metrics, and a small container
// whose objects are traced through generated adapters.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Station-Manager/calltrace"
	"github.com/Station-Manager/calltrace/logging"
	"github.com/Station-Manager/calltrace/metrics"
	"github.com/Station-Manager/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	configPath := flag.String("config", "calltrace.yaml", "Path to the calltrace YAML config (optional)")
	level := flag.String("level", "debug", "Log level")
	metricsAddr := flag.String("metrics", "", "Serve Prometheus metrics on this address and wait for a signal")
	flag.Parse()

	if err := run(*configPath, *level, *metricsAddr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, level, metricsAddr string) error {
	cfg, err := calltrace.LoadConfig(configPath)
	if err != nil {
		return err
	}

	svc := &logging.Service{LoggingConfig: &types.LoggingConfig{
		Level:                  level,
		WithTimestamp:          true,
		ConsoleLogging:         true,
		FileLogging:            false,
		RelLogFileDir:          "logs",
		LogFileMaxBackups:      3,
		LogFileMaxAgeDays:      7,
		LogFileMaxSizeMB:       10,
		ShutdownTimeoutMS:      500,
		ShutdownTimeoutWarning: true,
		ConsoleTimeFormat:      time.TimeOnly,
	}}
	if err = svc.Initialize(); err != nil {
		return err
	}
	defer func() { _ = svc.Close() }()

	reg := prometheus.NewRegistry()
	collector := metrics.NewCollector(reg)

	sink := svc.With().Str("component", "demo").Logger()
	engine, c, err := assemble(cfg, sink,
		calltrace.WithDiagnostics(svc.Zerolog()),
		calltrace.WithObserver(collector))
	if err != nil {
		return err
	}
	defer func() { _ = engine.Close() }()

	exercise(svc, c)

	if metricsAddr == "" {
		return nil
	}
	return serveMetrics(svc, reg, metricsAddr)
}

func exercise(log logging.Logger, c *container) {
	orders := c.get("orders").(OrderBook)
	prices := c.get("pricer").(Pricer)

	id, err := orders.Place("antenna", 2)
	if err != nil {
		log.ErrorWith().Err(err).Msg("Place failed")
	}
	if _, err = orders.Place("", 1); err != nil {
		log.WarnWith().Err(err).Msg("Place rejected")
	}
	if err = orders.Cancel(id + 100); err != nil {
		log.WarnWith().Err(err).Int("id", id+100).Msg("Cancel rejected")
	}
	log.InfoWith().Int("open", len(orders.Open())).Msg("Orders open")

	total, err := prices.Quote("antenna", 2)
	if err != nil {
		log.ErrorWith().Err(err).Msg("Quote failed")
	}
	discount := prices.Discount("SPRING", "CLUB")
	log.InfoWith().Interface("total", total*(1-discount)).Msg("Quoted")
}

func serveMetrics(log logging.Logger, reg *prometheus.Registry, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	log.InfoWith().Str("addr", addr).Msg("Serving metrics")

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
