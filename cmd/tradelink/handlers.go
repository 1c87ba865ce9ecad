package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"tradelink_go/internal/app"
	"tradelink_go/internal/domain"
	"tradelink_go/internal/infra"
	"tradelink_go/internal/infra/okx"
	"tradelink_go/internal/storage"
)

type monitorOptions struct {
	waitAttempts int
	metricsAddr  string
	noPrivateWS  bool
}

type signOptions struct {
	method string
	path   string
	body   string
	ws     bool
}

// privateChannels are subscribed after the OKX private login.
var privateChannels = []map[string]string{
	{"channel": "account"},
}

func runMonitor(cmd *cobra.Command, configPath string, opts monitorOptions) error {
	b := app.NewBootstrap()
	if err := b.Initialize(configPath); err != nil {
		return err
	}
	defer b.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	infra.PrintBanner(cmd.ErrOrStderr(), b.Config)

	if err := b.InitStorage(ctx); err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	b.InitMonitor(reg)

	addr := b.Config.Metrics.Addr
	if opts.metricsAddr != "" {
		addr = opts.metricsAddr
	}
	if addr != "" {
		srv := startMetricsServer(addr, reg)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx)
		}()
	}

	b.Monitor.Start(ctx)
	slog.Info("Gateway monitor started",
		slog.String("run_id", b.RunID),
		slog.String("gateway", b.Config.Gateway.URL),
		slog.Duration("interval", b.Config.PollInterval()))

	if opts.waitAttempts > 0 {
		status, err := b.Monitor.WaitUntilRunning(ctx, opts.waitAttempts)
		if err != nil {
			return nil
		}
		if status != domain.ContainerRunning {
			slog.Warn("Gateway did not come up", slog.Int("attempts", opts.waitAttempts))
		}
	}

	if !opts.noPrivateWS {
		if worker := startPrivateWS(ctx, b); worker != nil {
			defer worker.Stop()
		}
	}

	go func() {
		if err := b.Monitor.WaitReady(ctx); err == nil {
			slog.Info("Gateway ready", slog.String("connectivity", b.Monitor.ConnectivityStatus().String()))
		}
	}()

	<-ctx.Done()
	slog.Info("Shutting down gracefully...")
	return nil
}

func startMetricsServer(addr string, reg *prometheus.Registry) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		slog.Info("Metrics server started", slog.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Metrics server failed", slog.Any("error", err))
		}
	}()
	return srv
}

func startPrivateWS(ctx context.Context, b *app.Bootstrap) *infra.BaseWSWorker {
	if b.Config.OKX.WSURL == "" {
		return nil
	}
	if err := b.InitOKX(); err != nil {
		if errors.Is(err, app.ErrNoCredentials) {
			slog.Info("OKX credentials missing, private channel disabled")
		} else {
			slog.Error("OKX auth setup failed", slog.Any("error", err))
		}
		return nil
	}

	handler := okx.NewPrivateWSHandler(b.Config.OKX.WSURL, b.Auth, privateChannels, func(msg []byte) {
		slog.Debug("OKX private update", slog.Int("bytes", len(msg)))
	})
	worker := infra.NewBaseWSWorker(handler)
	worker.Start(ctx)
	return worker
}

func runSign(cmd *cobra.Command, configPath string, opts signOptions) error {
	b := app.NewBootstrap()
	if err := b.Initialize(configPath); err != nil {
		return err
	}
	if err := b.InitOKX(); err != nil {
		return err
	}
	defer b.Close()

	out := cmd.OutOrStdout()
	if opts.ws {
		frame, err := okx.NewPrivateWSHandler(b.Config.OKX.WSURL, b.Auth, nil, nil).LoginFrame()
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(frame))
		return nil
	}

	method, err := domain.ParseRESTMethod(opts.method)
	if err != nil {
		return err
	}
	if opts.path == "" {
		return fmt.Errorf("--path is required")
	}

	target := opts.path
	if strings.HasPrefix(target, "/") {
		target = strings.TrimRight(b.Config.OKX.RestURL, "/") + target
	}
	req := &domain.RESTRequest{Method: method, URL: target}
	if opts.body != "" {
		body := opts.body
		req.Params = &body
	}

	signed, err := b.Auth.AuthenticateREST(req)
	if err != nil {
		return err
	}

	names := make([]string, 0, len(signed.Headers))
	for k := range signed.Headers {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, k := range names {
		fmt.Fprintf(out, "%s: %s\n", k, signed.Headers[k])
	}
	return nil
}

func runKeys(cmd *cobra.Command, configPath, prefix string) error {
	b := app.NewBootstrap()
	if err := b.Initialize(configPath); err != nil {
		return err
	}
	defer b.Close()
	if err := b.InitStorage(cmd.Context()); err != nil {
		return err
	}

	for _, k := range b.Completer.Complete(prefix) {
		fmt.Fprintln(cmd.OutOrStdout(), k)
	}
	return nil
}

func runStatus(cmd *cobra.Command, configPath string) error {
	b := app.NewBootstrap()
	if err := b.Initialize(configPath); err != nil {
		return err
	}

	snap, err := storage.NewSnapshotManager(infra.SnapshotDir(b.WorkDir)).LoadLatest()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if snap == nil {
		fmt.Fprintln(out, "No status recorded yet. Run `tradelink monitor` first.")
		return nil
	}

	fmt.Fprintf(out, "Recorded:     %s (run %s)\n", time.UnixMilli(snap.TsMilli).Format(time.RFC3339), snap.RunID)
	fmt.Fprintf(out, "Gateway:      %s\n", snap.GatewayURL)
	fmt.Fprintf(out, "Container:    %s\n", snap.Container)
	fmt.Fprintf(out, "Connectivity: %s\n", snap.Connectivity)
	fmt.Fprintf(out, "Connectors:   %s\n", strings.Join(snap.Connectors, ", "))
	fmt.Fprintf(out, "Config keys:  %d\n", snap.ConfigKeys)
	return nil
}

func runBalance(cmd *cobra.Command, configPath, ccy string) error {
	b := app.NewBootstrap()
	if err := b.Initialize(configPath); err != nil {
		return err
	}
	if err := b.InitOKX(); err != nil {
		return err
	}
	defer b.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), b.Config.RequestTimeout())
	defer cancel()

	ccy = strings.ToUpper(ccy)
	avail, err := b.OKX.GetBalance(ctx, ccy)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", avail.String(), ccy)
	return nil
}
