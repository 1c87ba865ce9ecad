package okx

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"

	"tradelink_go/internal/domain"
)

const loginTimeout = 10 * time.Second

type wsOp struct {
	Op   string `json:"op"`
	Args any    `json:"args"`
}

type wsEvent struct {
	Event  string `json:"event"`
	Code   string `json:"code"`
	Msg    string `json:"msg"`
	ConnID string `json:"connId"`
}

// PrivateWSHandler logs in to a private OKX channel and subscribes to the
// configured channels. It implements infra.WebSocketHandler.
type PrivateWSHandler struct {
	url      string
	auth     *Auth
	channels []map[string]string
	onData   func(msg []byte)
}

// NewPrivateWSHandler creates a handler. onData receives every non-event frame.
func NewPrivateWSHandler(url string, auth *Auth, channels []map[string]string, onData func([]byte)) *PrivateWSHandler {
	return &PrivateWSHandler{url: url, auth: auth, channels: channels, onData: onData}
}

func (h *PrivateWSHandler) ID() string     { return "OKX-PRIVATE" }
func (h *PrivateWSHandler) GetURL() string { return h.url }

// LoginFrame builds the login request; exposed for diagnostics.
func (h *PrivateWSHandler) LoginFrame() ([]byte, error) {
	return json.Marshal(wsOp{Op: "login", Args: h.auth.WSAuthArgs(wsVerifyPath)})
}

// OnConnect performs the login handshake then subscribes.
func (h *PrivateWSHandler) OnConnect(ctx context.Context, conn *websocket.Conn) error {
	frame, err := h.LoginFrame()
	if err != nil {
		return err
	}
	if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
		return fmt.Errorf("send login: %w", err)
	}

	conn.SetReadDeadline(time.Now().Add(loginTimeout))
	defer conn.SetReadDeadline(time.Time{})
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("await login: %w", err)
		}
		var ev wsEvent
		if json.Unmarshal(msg, &ev) != nil {
			continue
		}
		switch ev.Event {
		case "login":
			slog.Info("OKX private channel logged in", slog.String("connId", ev.ConnID))
			return h.subscribe(conn)
		case "error":
			return fmt.Errorf("login rejected: %s %s", ev.Code, ev.Msg)
		}
	}
}

func (h *PrivateWSHandler) subscribe(conn *websocket.Conn) error {
	if len(h.channels) == 0 {
		return nil
	}
	req := &domain.WSRequest{Payload: wsOp{Op: "subscribe", Args: h.channels}}
	req, err := h.auth.AuthenticateWS(req)
	if err != nil {
		return err
	}
	frame, err := json.Marshal(req.Payload)
	if err != nil {
		return err
	}
	return conn.WriteMessage(websocket.TextMessage, frame)
}

// OnMessage drops pong and event frames and forwards the rest.
func (h *PrivateWSHandler) OnMessage(ctx context.Context, msg []byte) {
	if string(msg) == "pong" {
		return
	}
	var ev wsEvent
	if json.Unmarshal(msg, &ev) == nil && ev.Event != "" {
		if ev.Event == "error" {
			slog.Warn("OKX private channel error", slog.String("code", ev.Code), slog.String("msg", ev.Msg))
		}
		return
	}
	if h.onData != nil {
		h.onData(msg)
	}
}

// OnPing sends OKX's text keep-alive.
func (h *PrivateWSHandler) OnPing(ctx context.Context, conn *websocket.Conn) error {
	return conn.WriteMessage(websocket.TextMessage, []byte("ping"))
}
