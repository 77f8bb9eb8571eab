package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	"github.com/iw2rmb/reflow/format"
	"github.com/iw2rmb/reflow/internal/logfields"
	"github.com/iw2rmb/reflow/internal/metrics"
	"github.com/iw2rmb/reflow/internal/watch"
)

type WatchCmd struct {
	EngineFlags

	Paths       []string      `arg:"" type:"existingpath" help:"Files or directories to watch."`
	Debounce    time.Duration `default:"200ms" help:"Quiet period after a write before formatting."`
	MetricsAddr string        `name:"metrics-addr" help:"Serve Prometheus metrics on this address, e.g. :9464."`
}

func (c *WatchCmd) Run(g *Global) error {
	cfg, err := c.resolve(g.Config)
	if err != nil {
		return err
	}

	var obs format.Observer
	if c.MetricsAddr != "" {
		reg := prom.NewRegistry()
		obs = metrics.NewRecorder(reg)
		addr, stop, err := serveMetrics(c.MetricsAddr, reg, g.Logger)
		if err != nil {
			return err
		}
		defer stop()
		g.Logger.Info("serving metrics", logfields.Addr(addr))
	}

	f, err := newFormatter(g, cfg, "", nil, obs)
	if err != nil {
		return err
	}

	w, err := watch.New(watch.FormatOnSave(f, cfg.EOL, g.Logger), watch.Options{
		Debounce: c.Debounce,
		Match:    matcherFor(cfg.Engine),
		Logger:   g.Logger,
	})
	if err != nil {
		return err
	}
	defer w.Close()

	for _, p := range c.Paths {
		if err := w.Add(p); err != nil {
			return err
		}
		g.Logger.Info("watching", logfields.Path(p), logfields.Engine(cfg.Engine))
	}
	return w.Run(g.Ctx)
}

// serveMetrics exposes reg on /metrics and returns the bound address and a
// function that shuts the server down.
func serveMetrics(addr string, reg *prom.Registry, log *slog.Logger) (string, func(), error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return "", nil, err
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler(reg))
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("metrics server stopped", logfields.Addr(ln.Addr().String()), logfields.Error(err))
		}
	}()

	stop := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
	return ln.Addr().String(), stop, nil
}

// matcherFor limits the Go engines to Go sources inside watched directories.
func matcherFor(engine string) func(string) bool {
	switch engine {
	case "gofmt", "goimports":
		return func(p string) bool { return strings.HasSuffix(p, ".go") }
	default:
		return nil
	}
}
