package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"mendel/internal/adapters/httpapi"
	"mendel/internal/blob"
	"mendel/internal/config"
	"mendel/internal/core"
	"mendel/internal/i18n"
)

const pruneInterval = time.Minute

func newServeCmd(a *app) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the cross engine over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if addr != "" {
				a.cfg.HTTPAddr = addr
			}
			ln, err := net.Listen("tcp", a.cfg.HTTPAddr)
			if err != nil {
				return fmt.Errorf("listen %s: %w", a.cfg.HTTPAddr, err)
			}
			return runServer(cmd.Context(), a.cfg, a.logger, a.translator, ln)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address; overrides MENDEL_HTTP_ADDR")
	return cmd
}

// runServer serves on ln until ctx is cancelled, then drains in-flight
// requests for at most cfg.ShutdownGrace. It owns ln.
func runServer(ctx context.Context, cfg config.Config, logger *slog.Logger, tr *i18n.Translator, ln net.Listener) error {
	store, err := core.OpenSessionStore(ctx, cfg.StorageOptions())
	if err != nil {
		_ = ln.Close()
		return err
	}
	defer func() {
		if cerr := core.CloseStore(store); cerr != nil {
			logger.Warn("close session store", "error", cerr)
		}
	}()

	blobs, err := blob.Open(ctx, cfg.BlobOptions())
	if err != nil {
		_ = ln.Close()
		return fmt.Errorf("open blob store: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics, err := core.NewPrometheusMetricsRecorder(registry)
	if err != nil {
		_ = ln.Close()
		return err
	}

	svc := core.NewService(store,
		core.WithLogger(logger),
		core.WithMetricsRecorder(metrics),
		core.WithBlobStore(blobs),
		core.WithCrossTTL(cfg.CrossTTL),
	)
	handler := httpapi.NewHandler(svc, tr, logger)
	handler.Metrics = promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry})

	srv := &http.Server{
		Handler:           handler.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("http server listening",
			"addr", ln.Addr().String(),
			"storage", cfg.Storage.Driver,
			"blob", blobs.Driver())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.ShutdownGrace)
		defer cancel()
		logger.Info("http server shutting down")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		ticker := time.NewTicker(pruneInterval)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				svc.PruneCrosses()
			}
		}
	})
	return g.Wait()
}
