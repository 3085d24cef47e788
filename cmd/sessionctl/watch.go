package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	goSession "github.com/MrEthical07/goSession"
	"github.com/MrEthical07/goSession/metrics/export/prometheus"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Keep the session alive and stream lifecycle events",
	Long: `Restore the stored session, then keep it renewed in the foreground while
printing every lifecycle event as one JSON object per line. Stops on
interrupt or when the session ends.

Examples:
  sessionctl watch
  sessionctl watch --metrics-addr :9102   # also serve Prometheus metrics`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().String("metrics-addr", "", "serve Prometheus metrics on this address")
	watchCmd.Flags().Duration("for", 0, "stop after this long (0 runs until interrupted)")
}

func runWatch(cmd *cobra.Command, args []string) error {
	metricsAddr, _ := cmd.Flags().GetString("metrics-addr")
	limit, _ := cmd.Flags().GetDuration("for")

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if limit > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, limit)
		defer cancel()
	}

	ctrl, closeFn, err := openController(goSession.NewJSONWriterSink(cmd.OutOrStdout()))
	if err != nil {
		return err
	}
	defer closeFn()

	ended := make(chan struct{})
	var once sync.Once
	unsubscribe := ctrl.Subscribe(func(ev goSession.Event) {
		if ev.Type == goSession.EventSessionExpired || ev.Type == goSession.EventLogout {
			once.Do(func() { close(ended) })
		}
	})
	defer unsubscribe()

	if metricsAddr != "" {
		srv := &http.Server{
			Addr:              metricsAddr,
			Handler:           metricsMux(prometheus.NewPrometheusExporter(ctrl)),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server failed", "error", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	outcome, err := resume(ctx, ctrl)
	if !outcome.Authenticated() {
		_ = ctrl.FlushEvents(context.Background())
		if err != nil {
			return fmt.Errorf("no usable session: %s", goSession.MessageOf(err))
		}
		return fmt.Errorf("no usable session: %s", outcome)
	}

	select {
	case <-ctx.Done():
	case <-ended:
	}

	flushCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return ctrl.FlushEvents(flushCtx)
}

func metricsMux(exp *prometheus.PrometheusExporter) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", exp.Handler())
	return mux
}
