package app

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"tradelink_go/internal/domain"
	"tradelink_go/internal/infra"
)

func newFakeGateway(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(`{"status":"ok"}`))
	})
	mux.HandleFunc("/connectors", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"connectors":[{"name":"uniswap"},{"name":"jupiter"}]}`))
	})
	mux.HandleFunc("/network/status", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"chain":"ethereum","network":"mainnet","currentBlockNumber":19000000}]`))
	})
	mux.HandleFunc("/config", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"server":{"port":15888},"ethereum":{"networks":{"mainnet":{}}}}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestBootstrap_MonitorEndToEnd(t *testing.T) {
	srv := newFakeGateway(t)

	cfg := infra.DefaultConfig()
	cfg.Gateway.URL = srv.URL
	cfg.Gateway.PollIntervalMS = 10
	cfg.Gateway.PingTimeoutMS = 500

	b := &Bootstrap{Config: cfg, WorkDir: t.TempDir(), RunID: "run-1"}
	ctx := context.Background()
	if err := b.InitStorage(ctx); err != nil {
		t.Fatalf("InitStorage: %v", err)
	}
	b.InitMonitor(prometheus.NewRegistry())

	waitCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	b.Monitor.Start(ctx)
	if err := b.Monitor.WaitReady(waitCtx); err != nil {
		t.Fatalf("gateway never became ready: %v", err)
	}
	if err := b.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if got := b.Registry.Names(); !reflect.DeepEqual(got, []string{"uniswap", "jupiter"}) {
		t.Errorf("registry = %v", got)
	}
	wantKeys := []string{"server", "server.port", "ethereum", "ethereum.networks", "ethereum.networks.mainnet"}
	if got := b.Completer.Complete(""); !reflect.DeepEqual(got, wantKeys) {
		t.Errorf("completer = %v, want %v", got, wantKeys)
	}
	if v := testutil.ToFloat64(b.Metrics.ConnectivityOnline); v != 1 {
		t.Errorf("connectivity_online = %v", v)
	}

	snap, err := b.Snapshots.LoadLatest()
	if err != nil || snap == nil {
		t.Fatalf("LoadLatest: %v, %v", snap, err)
	}
	if snap.State != domain.StateRunningOnline.String() || snap.ConfigKeys != len(wantKeys) || snap.RunID != "run-1" {
		t.Errorf("snapshot = %+v", snap)
	}

	// A fresh bootstrap over the same workspace restores the persisted keys.
	again := &Bootstrap{Config: cfg, WorkDir: b.WorkDir}
	if err := again.InitStorage(ctx); err != nil {
		t.Fatal(err)
	}
	defer again.Close()
	if got := again.Completer.Complete("ethereum.n"); len(got) != 2 {
		t.Errorf("restored completer = %v", got)
	}
}

func TestBootstrap_InitOKX(t *testing.T) {
	cfg := infra.DefaultConfig()
	b := &Bootstrap{Config: cfg}
	if err := b.InitOKX(); !errors.Is(err, ErrNoCredentials) {
		t.Fatalf("expected ErrNoCredentials, got %v", err)
	}

	cfg.OKX.APIKey = "key"
	cfg.OKX.APISecret = "secret"
	cfg.OKX.Passphrase = "pass"
	if err := b.InitOKX(); err != nil {
		t.Fatalf("InitOKX: %v", err)
	}
	if b.Auth == nil || b.OKX == nil {
		t.Fatal("auth and client should be set")
	}
	if err := b.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestBootstrap_Initialize(t *testing.T) {
	for _, k := range []string{"TRADELINK_OKX_KEY", "TRADELINK_OKX_SECRET", "TRADELINK_OKX_PASSPHRASE", "TRADELINK_GATEWAY_URL", "TRADELINK_LOG_LEVEL"} {
		t.Setenv(k, "")
	}
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := "gateway:\n  url: http://gateway.local:15888\n  poll_interval_ms: 500\nlogging:\n  level: warn\n"
	if err := os.WriteFile(path, []byte(yaml), 0644); err != nil {
		t.Fatal(err)
	}

	b := NewBootstrap()
	if err := b.Initialize(path); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if b.Config.Gateway.URL != "http://gateway.local:15888" || b.Config.PollInterval() != 500*time.Millisecond {
		t.Errorf("config = %+v", b.Config.Gateway)
	}
	if b.WorkDir == "" || b.RunID == "" {
		t.Errorf("workspace %q and run id %q should be set", b.WorkDir, b.RunID)
	}

	if err := NewBootstrap().Initialize(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing config")
	}
}
