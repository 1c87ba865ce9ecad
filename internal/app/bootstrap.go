package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"tradelink_go/internal/completion"
	"tradelink_go/internal/domain"
	"tradelink_go/internal/gateway"
	"tradelink_go/internal/infra"
	"tradelink_go/internal/infra/okx"
	"tradelink_go/internal/registry"
	"tradelink_go/internal/storage"
)

// snapshotsKept is how many status snapshots survive a cleanup.
const snapshotsKept = 20

// ErrNoCredentials is returned by InitOKX when key, secret or passphrase is missing.
var ErrNoCredentials = errors.New("okx credentials not configured")

// Bootstrap orchestrates the application startup sequence.
type Bootstrap struct {
	Config  *infra.Config
	WorkDir string

	// RunID tags every snapshot written by this process.
	RunID string

	Store     *storage.KeyStore
	Snapshots *storage.SnapshotManager
	Registry  *registry.Connectors
	Completer *completion.Completer

	Gateway *gateway.HTTPClient
	Metrics *gateway.Metrics
	Monitor *gateway.Monitor

	Auth *okx.Auth
	OKX  *okx.Client
}

// NewBootstrap creates a new Bootstrap instance.
func NewBootstrap() *Bootstrap {
	return &Bootstrap{}
}

// Initialize loads configuration and installs the default logger.
// An empty configPath falls back to infra.ResolveConfigPath.
func (b *Bootstrap) Initialize(configPath string) error {
	if configPath == "" {
		configPath = infra.ResolveConfigPath()
	}
	cfg, err := infra.LoadConfig(configPath)
	if err != nil {
		return err
	}
	b.Config = cfg

	slog.SetDefault(infra.NewLogger(cfg))
	slog.Debug("Configuration loaded", slog.String("path", configPath))

	b.WorkDir = infra.GetWorkspaceDir()
	b.RunID = uuid.NewString()
	return nil
}

// InitStorage opens the config key store and restores the last persisted
// key list into the completer.
func (b *Bootstrap) InitStorage(ctx context.Context) error {
	dataDir := filepath.Join(b.WorkDir, "data")
	if err := infra.EnsureDir(dataDir); err != nil {
		return fmt.Errorf("failed to create data dir: %w", err)
	}

	b.Completer = completion.New(nil)
	dbPath := infra.ConfigKeyDBPath(b.WorkDir)
	store, err := storage.NewKeyStore(dbPath, b.Completer)
	if err != nil {
		return err
	}
	b.Store = store

	keys, err := store.Restore(ctx)
	if err != nil {
		return err
	}
	b.Snapshots = storage.NewSnapshotManager(infra.SnapshotDir(b.WorkDir))

	slog.Info("Config key store ready", slog.String("path", dbPath), slog.Int("keys", len(keys)))
	return nil
}

// InitMonitor wires the gateway client, registry, metrics and monitor.
// reg may be nil to skip metrics. InitStorage must run first.
func (b *Bootstrap) InitMonitor(reg prometheus.Registerer) {
	cfg := b.Config
	b.Registry = registry.NewConnectors()
	b.Gateway = gateway.NewHTTPClient(cfg.Gateway.URL, cfg.RequestTimeout())

	opts := []gateway.MonitorOption{
		gateway.WithPollInterval(cfg.PollInterval()),
		gateway.WithPingTimeout(cfg.PingTimeout()),
		gateway.WithStateListener(b.onStateChange),
	}
	if reg != nil {
		b.Metrics = gateway.NewMetrics(reg)
		opts = append(opts, gateway.WithMetrics(b.Metrics))
	}

	var sink domain.ConfigKeySink
	if b.Store != nil {
		sink = b.Store
	}
	b.Monitor = gateway.NewMonitor(b.Gateway, b.Registry, sink, opts...)
}

// InitOKX builds the request signer and REST client from configured
// credentials. It returns ErrNoCredentials when any of them is missing.
func (b *Bootstrap) InitOKX() error {
	cfg := b.Config
	if !cfg.HasCredentials() {
		return ErrNoCredentials
	}

	auth, err := okx.NewAuth(okx.Credentials{
		APIKey:     cfg.OKX.APIKey,
		APISecret:  cfg.OKX.APISecret,
		Passphrase: cfg.OKX.Passphrase,
	}, okx.WithBaseURL(cfg.OKX.RestURL))
	if err != nil {
		return err
	}
	b.Auth = auth
	b.OKX = okx.NewClient(cfg.OKX.RestURL, auth)
	return nil
}

// SaveSnapshot records the monitor's current view and prunes old snapshots.
func (b *Bootstrap) SaveSnapshot() error {
	if b.Snapshots == nil || b.Monitor == nil {
		return nil
	}
	if err := b.Snapshots.Save(b.snapshot(b.Monitor.State())); err != nil {
		return err
	}
	return b.Snapshots.Cleanup(snapshotsKept)
}

func (b *Bootstrap) onStateChange(s domain.GatewayState) {
	slog.Debug("Gateway state changed", slog.String("state", s.String()))
	if b.Snapshots == nil {
		return
	}
	if err := b.Snapshots.Save(b.snapshot(s)); err != nil {
		slog.Warn("Failed to save status snapshot", slog.Any("error", err))
	}
}

// snapshot must not be called with the monitor's state lock held.
func (b *Bootstrap) snapshot(s domain.GatewayState) *storage.Snapshot {
	var connectors []string
	if b.Registry != nil {
		connectors = b.Registry.Names()
	}
	snap := storage.CreateSnapshot(time.Now(), s, b.Config.Gateway.URL, connectors, len(b.Monitor.ConfigKeys()))
	snap.RunID = b.RunID
	return snap
}

// Close stops the monitor and releases every resource. Safe to call on a
// partially initialized Bootstrap.
func (b *Bootstrap) Close() error {
	if b.Monitor != nil {
		b.Monitor.Stop()
		if err := b.SaveSnapshot(); err != nil {
			slog.Warn("Failed to save final snapshot", slog.Any("error", err))
		}
	}
	if b.Auth != nil {
		b.Auth.Wipe()
	}
	if b.Store != nil {
		return b.Store.Close()
	}
	return nil
}
