package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"tradelink_go/internal/domain"
)

const (
	DefaultPollInterval = 2 * time.Second
	DefaultPingTimeout  = 1 * time.Second
)

// Monitor tracks gateway liveness in a background loop.
//
// Each cycle probes the gateway under PingTimeout. On the first successful
// probe after being stopped it rebuilds the connector registry and the
// configuration key list; while running but offline it checks chain
// progress and raises the readiness signal once progress is seen. A failed
// probe clears readiness and drops back to stopped. Errors raised while
// reacting to a successful probe never change state.
type Monitor struct {
	client   domain.GatewayClient
	registry domain.ConnectorRegistry
	sink     domain.ConfigKeySink
	metrics  *Metrics
	onState  func(domain.GatewayState)

	pollInterval time.Duration
	pingTimeout  time.Duration

	mu         sync.RWMutex
	state      domain.GatewayState
	configKeys []string

	ready *Signal

	runMu  sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// MonitorOption configures a Monitor.
type MonitorOption func(*Monitor)

// WithPollInterval sets the pause between probes.
func WithPollInterval(d time.Duration) MonitorOption {
	return func(m *Monitor) { m.pollInterval = d }
}

// WithPingTimeout bounds each probe.
func WithPingTimeout(d time.Duration) MonitorOption {
	return func(m *Monitor) { m.pingTimeout = d }
}

// WithMetrics exports state changes.
func WithMetrics(metrics *Metrics) MonitorOption {
	return func(m *Monitor) { m.metrics = metrics }
}

// WithStateListener registers fn to be called after every state transition.
// fn runs on the poll goroutine.
func WithStateListener(fn func(domain.GatewayState)) MonitorOption {
	return func(m *Monitor) { m.onState = fn }
}

// NewMonitor creates a stopped monitor. registry and sink may be nil.
func NewMonitor(client domain.GatewayClient, registry domain.ConnectorRegistry, sink domain.ConfigKeySink, opts ...MonitorOption) *Monitor {
	m := &Monitor{
		client:       client,
		registry:     registry,
		sink:         sink,
		pollInterval: DefaultPollInterval,
		pingTimeout:  DefaultPingTimeout,
		state:        domain.StateStopped,
		ready:        NewSignal(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.metrics.observeState(m.state)
	return m
}

// Ready is the level-triggered readiness signal.
func (m *Monitor) Ready() *Signal { return m.ready }

// State returns the current gateway state.
func (m *Monitor) State() domain.GatewayState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// ContainerStatus returns whether the gateway answers probes.
func (m *Monitor) ContainerStatus() domain.ContainerStatus {
	return m.State().Container()
}

// ConnectivityStatus returns whether the gateway reports chain progress.
func (m *Monitor) ConnectivityStatus() domain.ConnectivityStatus {
	return m.State().Connectivity()
}

// ConfigKeys returns a copy of the cached configuration key list.
func (m *Monitor) ConfigKeys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, len(m.configKeys))
	copy(out, m.configKeys)
	return out
}

// SetConfigKeys replaces the cached configuration key list.
func (m *Monitor) SetConfigKeys(keys []string) {
	m.mu.Lock()
	m.configKeys = keys
	m.mu.Unlock()
	m.metrics.observeConfigKeys(len(keys))
}

func (m *Monitor) setState(s domain.GatewayState) {
	m.mu.Lock()
	m.state = s
	m.mu.Unlock()
	m.metrics.observeState(s)
	if m.onState != nil {
		m.onState(s)
	}
}

// Start launches the poll loop. Calling Start on a running monitor is a no-op.
func (m *Monitor) Start(ctx context.Context) {
	m.runMu.Lock()
	defer m.runMu.Unlock()
	if m.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.done = make(chan struct{})
	go m.run(ctx, m.done)
}

// Stop cancels the poll loop and waits for it to exit.
// Stopping a stopped or never-started monitor is a no-op.
func (m *Monitor) Stop() {
	m.runMu.Lock()
	cancel, done := m.cancel, m.done
	m.cancel, m.done = nil, nil
	m.runMu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (m *Monitor) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	for {
		if err := m.pollSafe(ctx); err != nil {
			if ctx.Err() != nil || domain.IsCancellation(err) {
				return
			}
			var pp *domain.PostProbeError
			if errors.As(err, &pp) {
				slog.Debug("Gateway post-probe error ignored", slog.String("step", pp.Step), slog.Any("error", pp.Err))
			}
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(m.pollInterval):
		}
		m.ready.Clear()
	}
}

// pollSafe runs one cycle and turns a panic into a PostProbeError so the
// loop keeps probing.
func (m *Monitor) pollSafe(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Gateway monitor panic recovered", slog.Any("panic", r))
			err = &domain.PostProbeError{Step: "panic", Err: fmt.Errorf("%v", r)}
		}
	}()
	return m.poll(ctx)
}

// poll runs one probe cycle. Only cancellation and PostProbeError are returned.
func (m *Monitor) poll(ctx context.Context) error {
	if err := m.probe(ctx); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		m.ready.Clear()
		if m.State() != domain.StateStopped {
			slog.Info("Connection to Gateway lost...", slog.Any("error", err))
			m.setState(domain.StateStopped)
		}
		return nil
	}

	switch m.State() {
	case domain.StateStopped:
		if err := m.onReachable(ctx); err != nil {
			return err
		}
		slog.Info("Connection to Gateway established.")
		m.setState(domain.StateRunningOffline)

	case domain.StateRunningOffline:
		statuses, err := m.client.GetStatus(ctx, true)
		if err != nil {
			return &domain.PostProbeError{Step: "status", Err: err}
		}
		if domain.AnyProgress(statuses) {
			slog.Info("Gateway chains online", slog.Int("chains", len(statuses)))
			m.setState(domain.StateRunningOnline)
			m.ready.Set()
		}
	}
	return nil
}

// probe pings the gateway under its own deadline. A timeout is a failure.
func (m *Monitor) probe(ctx context.Context) error {
	pingCtx, cancel := context.WithTimeout(ctx, m.pingTimeout)
	defer cancel()

	ok, err := m.client.Ping(pingCtx)
	m.metrics.observeProbe(err == nil && ok)
	if err != nil {
		return &domain.ProbeError{Err: err}
	}
	if !ok {
		return &domain.ProbeError{}
	}
	return nil
}

// onReachable rebuilds structural state after a STOPPED→RUNNING transition.
// A connector fetch failure aborts the transition; config refresh failures
// are logged by UpdateConfigKeys and do not.
func (m *Monitor) onReachable(ctx context.Context) error {
	list, err := m.client.GetConnectors(ctx, true)
	if err != nil {
		return &domain.PostProbeError{Step: "connectors", Err: err}
	}
	if m.registry != nil {
		m.registry.Replace(list.Names())
	}

	if err := m.UpdateConfigKeys(ctx); err != nil && domain.IsCancellation(err) {
		return err
	}
	return nil
}

// UpdateConfigKeys fetches the gateway configuration, flattens it and
// replaces the cached key list. On failure the previous list is kept.
func (m *Monitor) UpdateConfigKeys(ctx context.Context) error {
	raw, err := m.client.GetConfiguration(ctx, false)
	if err == nil {
		var keys []string
		keys, err = FlattenConfigKeys(raw)
		if err == nil {
			m.SetConfigKeys(keys)
			if m.sink != nil {
				if serr := m.sink.ReplaceConfigKeys(ctx, keys); serr != nil {
					slog.Error("Failed to refresh config key completion", slog.Any("error", serr))
				}
			}
			return nil
		}
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	slog.Error("Error fetching gateway configs. Please check that Gateway service is online.", slog.Any("error", err))
	return err
}

// WaitUntilRunning polls the container status once per poll interval, up to
// maxAttempts sleeps. It returns the observed status either way; ctx.Err() is
// returned alongside it if the caller gives up first.
func (m *Monitor) WaitUntilRunning(ctx context.Context, maxAttempts int) (domain.ContainerStatus, error) {
	for {
		status := m.ContainerStatus()
		if status == domain.ContainerRunning || maxAttempts <= 0 {
			return status, nil
		}

		select {
		case <-ctx.Done():
			return m.ContainerStatus(), ctx.Err()
		case <-time.After(m.pollInterval):
		}
		maxAttempts--
	}
}

// WaitReady blocks until the readiness signal is set or ctx is done.
func (m *Monitor) WaitReady(ctx context.Context) error {
	return m.ready.Wait(ctx)
}
