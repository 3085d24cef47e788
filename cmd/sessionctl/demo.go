package main

import (
	"context"
	"fmt"
	"io"
	"net/http/httptest"
	"time"

	"github.com/spf13/cobra"

	goSession "github.com/MrEthical07/goSession"
	"github.com/MrEthical07/goSession/gateway"
	"github.com/MrEthical07/goSession/gateway/gatewaytest"
	"github.com/MrEthical07/goSession/identity"
	"github.com/MrEthical07/goSession/metrics/export/prometheus"
)

const (
	demoEmail    = "tina@example.com"
	demoPassword = "correct horse"
)

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Run the full session lifecycle against a local fake backend",
	Long: `Start an in-process fake backend and walk a tenant through login,
verification, a manual refresh, a timer-driven refresh, a profile update and
logout, printing every lifecycle event.

The store defaults to memory for the demo; pass --store to use another one.

Examples:
  sessionctl demo
  sessionctl demo --access-ttl 4s --metrics`,
	RunE: runDemo,
}

func init() {
	rootCmd.AddCommand(demoCmd)

	demoCmd.Flags().Duration("access-ttl", 4*time.Second, "lifetime of demo access tokens")
	demoCmd.Flags().Bool("metrics", false, "print Prometheus metrics at the end")
}

func runDemo(cmd *cobra.Command, args []string) error {
	ttl, _ := cmd.Flags().GetDuration("access-ttl")
	showMetrics, _ := cmd.Flags().GetBool("metrics")
	if ttl <= 0 {
		return fmt.Errorf("access-ttl must be > 0")
	}
	if f := cmd.Flag("store"); f == nil || !f.Changed {
		storeKind = storeMemory
	}

	backend := gatewaytest.New(gatewaytest.WithAccessTTL(ttl))
	backend.AddUser(gatewaytest.User{
		Password: demoPassword,
		Payload: gateway.UserPayload{
			ID: "demo-tenant", Email: demoEmail, FirstName: "Tina", LastName: "Tenant", Role: "tenant",
		},
		Platform: &gateway.PlatformDashboard{Status: gateway.PlatformStatusActive, TenancyID: "demo-tenancy"},
	})
	srv := httptest.NewServer(backend.Handler())
	defer srv.Close()
	cfg.Gateway.BaseURL = srv.URL

	out := cmd.OutOrStdout()
	ctrl, closeFn, err := openController(goSession.NewJSONWriterSink(out))
	if err != nil {
		return err
	}
	defer closeFn()

	timerRefresh := make(chan struct{}, 1)
	unsubscribe := ctrl.Subscribe(func(ev goSession.Event) {
		if ev.Type == goSession.EventSessionRefreshed && ev.Metadata["trigger"] == "timer" {
			select {
			case timerRefresh <- struct{}{}:
			default:
			}
		}
	})
	defer unsubscribe()

	ctx := cmd.Context()
	d := demoRun{ctx: ctx, ctrl: ctrl, out: out}

	d.step("login")
	if _, err := ctrl.Login(ctx, demoEmail, demoPassword); err != nil {
		return fmt.Errorf("demo login: %s", goSession.MessageOf(err))
	}
	if err := d.status("login"); err != nil {
		return err
	}
	fmt.Fprintf(out, "redirect consumed: %s\n", ctrl.ConsumeRedirect())

	d.step("manual refresh")
	if _, err := ctrl.Refresh(ctx); err != nil {
		return fmt.Errorf("demo refresh: %s", goSession.MessageOf(err))
	}
	d.flush()

	d.step("waiting for timer refresh")
	select {
	case <-timerRefresh:
	case <-time.After(2*ttl + 5*time.Second):
		return fmt.Errorf("timer refresh did not fire within %s", 2*ttl+5*time.Second)
	case <-ctx.Done():
		return ctx.Err()
	}
	d.flush()

	d.step("update profile")
	if _, err := ctrl.UpdateUser(goSession.Identity{Phone: "+1 555 0100", IsVerified: identity.Bool(true)}); err != nil {
		return fmt.Errorf("demo update: %s", goSession.MessageOf(err))
	}
	d.flush()

	d.step("logout")
	ctrl.Logout(ctx)
	if err := d.status("logout"); err != nil {
		return err
	}

	fmt.Fprintf(out, "backend calls: login=%d refresh=%d logout=%d\n",
		backend.Calls(gatewaytest.EndpointLogin),
		backend.Calls(gatewaytest.EndpointRefresh),
		backend.Calls(gatewaytest.EndpointLogout),
	)
	if showMetrics {
		d.step("metrics")
		fmt.Fprint(out, prometheus.NewPrometheusExporter(ctrl).Render())
	}
	return nil
}

type demoRun struct {
	ctx  context.Context
	ctrl *goSession.Controller
	out  io.Writer
}

func (d demoRun) step(name string) {
	fmt.Fprintf(d.out, "== %s\n", name)
}

func (d demoRun) flush() {
	ctx, cancel := context.WithTimeout(d.ctx, 2*time.Second)
	defer cancel()
	if err := d.ctrl.FlushEvents(ctx); err != nil {
		logger.Warn("flush events", "error", err)
	}
}

func (d demoRun) status(outcome string) error {
	d.flush()
	return printStatus(d.out, describe(d.ctrl, outcome))
}
