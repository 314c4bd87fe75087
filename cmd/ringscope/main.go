// Command ringscope keeps the most recent records from each sender in a
// fixed-capacity ring and lets you look at them over HTTP and TFTP.
//
// Records arrive as UDP datagrams, one record per datagram, and land in the
// stream named after the sender's IP address. They can also be pushed to
// either end of a named stream with POST /streams/{name}/push.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		slog.Error("ringscope failed", "error", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cfg, err := ParseConfig(args, os.Stderr)
	if err != nil {
		return fmt.Errorf("configuration: %w", err)
	}

	level, _ := cfg.Level()
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics, err := NewMetrics(reg)
	if err != nil {
		return err
	}

	broker := NewBroker(32)
	streams := NewStreams(cfg.Capacity, broker, metrics)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	slog.Info("starting ringscope", "capacity", cfg.Capacity, "udp", cfg.UDPAddr, "http", cfg.HTTPAddr, "tftp", cfg.TFTPAddr)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return serveHTTP(ctx, cfg.HTTPAddr, newHandler(streams, broker, reg, cfg.Heartbeat))
	})
	if cfg.UDPAddr != "" {
		g.Go(func() error {
			return serveUDP(ctx, cfg.UDPAddr, streams)
		})
	}
	if cfg.TFTPAddr != "" {
		g.Go(func() error {
			return serveTFTP(ctx, cfg.TFTPAddr, newTFTPServer(streams))
		})
	}

	return g.Wait()
}
