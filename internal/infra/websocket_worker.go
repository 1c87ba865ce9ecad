package infra

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

// ErrNotConnected is returned by Write when no connection is open.
var ErrNotConnected = errors.New("ws not connected")

// WebSocketHandler defines channel-specific logic for BaseWSWorker.
type WebSocketHandler interface {
	GetURL() string
	// OnConnect runs before the read loop starts, e.g. to log in and subscribe.
	OnConnect(ctx context.Context, conn *websocket.Conn) error
	OnMessage(ctx context.Context, msg []byte)
	OnPing(ctx context.Context, conn *websocket.Conn) error
	ID() string
}

// BaseWSWorker manages the lifecycle of a WebSocket connection:
// reconnection with backoff, read deadlines, keep-alive and serialized writes.
type BaseWSWorker struct {
	handler WebSocketHandler
	mu      sync.RWMutex
	conn    *websocket.Conn
	writeMu sync.Mutex
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	up      atomic.Bool

	ReadTimeout  time.Duration
	PingInterval time.Duration
	Backoff      Backoff
}

// NewBaseWSWorker creates a worker for handler.
func NewBaseWSWorker(handler WebSocketHandler) *BaseWSWorker {
	return &BaseWSWorker{
		handler:      handler,
		ReadTimeout:  60 * time.Second,
		PingInterval: 25 * time.Second,
		Backoff:      DefaultBackoff,
	}
}

// Start launches the connection loop.
func (w *BaseWSWorker) Start(ctx context.Context) {
	ctx, w.cancel = context.WithCancel(ctx)
	w.wg.Add(1)
	go w.runLoop(ctx)
}

// Stop terminates the worker and waits for its goroutines. Safe to call twice.
func (w *BaseWSWorker) Stop() {
	if w.cancel != nil {
		w.cancel()
	}
	w.close()
	w.wg.Wait()
}

// Connected reports whether a handshake-complete connection is open.
func (w *BaseWSWorker) Connected() bool {
	return w.up.Load()
}

func (w *BaseWSWorker) runLoop(ctx context.Context) {
	defer w.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			slog.Error("WS worker panic recovered", "id", w.handler.ID(), slog.Any("panic", r))
		}
	}()

	retry := 0
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		connCtx, stopPing := context.WithCancel(ctx)
		if err := w.connect(connCtx); err != nil {
			stopPing()
			delay := w.Backoff.Delay(retry)
			slog.Warn("WS Connection failed", "id", w.handler.ID(), slog.Any("error", err), "retry", retry, "delay", delay)
			retry++

			select {
			case <-ctx.Done():
				return
			case <-time.After(delay):
				continue
			}
		}

		retry = 0
		w.process(connCtx)
		stopPing()
	}
}

func (w *BaseWSWorker) connect(ctx context.Context) error {
	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	header := make(http.Header)
	header.Set("User-Agent", DefaultUserAgent)

	conn, _, err := dialer.DialContext(ctx, w.handler.GetURL(), header)
	if err != nil {
		return err
	}

	w.mu.Lock()
	w.conn = conn
	w.mu.Unlock()

	if err := w.handler.OnConnect(ctx, conn); err != nil {
		w.close()
		return fmt.Errorf("OnConnect failed: %w", err)
	}
	w.up.Store(true)

	if w.PingInterval > 0 {
		go w.pingLoop(ctx)
	}

	slog.Info("WS Connected", "id", w.handler.ID())
	return nil
}

func (w *BaseWSWorker) process(ctx context.Context) {
	for {
		w.mu.RLock()
		c := w.conn
		w.mu.RUnlock()
		if c == nil {
			return
		}

		c.SetReadDeadline(time.Now().Add(w.ReadTimeout))
		_, msg, err := c.ReadMessage()
		if err != nil {
			if ctx.Err() == nil {
				slog.Warn("WS Read error", "id", w.handler.ID(), slog.Any("error", err))
			}
			w.close()
			return
		}

		w.handler.OnMessage(ctx, msg)
	}
}

func (w *BaseWSWorker) pingLoop(ctx context.Context) {
	ticker := time.NewTicker(w.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.mu.RLock()
			c := w.conn
			w.mu.RUnlock()
			if c == nil {
				return
			}

			w.writeMu.Lock()
			err := w.handler.OnPing(ctx, c)
			w.writeMu.Unlock()
			if err != nil {
				slog.Warn("WS Ping error", "id", w.handler.ID(), slog.Any("error", err))
				w.close()
				return
			}
		}
	}
}

// Write sends one frame; writes are serialized.
func (w *BaseWSWorker) Write(msgType int, data []byte) error {
	w.writeMu.Lock()
	defer w.writeMu.Unlock()

	w.mu.RLock()
	c := w.conn
	w.mu.RUnlock()

	if c == nil {
		return ErrNotConnected
	}
	return c.WriteMessage(msgType, data)
}

func (w *BaseWSWorker) close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.up.Store(false)
	if w.conn != nil {
		w.conn.Close()
		w.conn = nil
	}
}
