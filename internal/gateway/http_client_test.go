package gateway

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newGatewayServer(t *testing.T, routes map[string]func(w http.ResponseWriter)) *HTTPClient {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("unexpected method %s", r.Method)
		}
		h, ok := routes[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		h(w)
	}))
	t.Cleanup(srv.Close)
	return NewHTTPClient(srv.URL+"/", 2*time.Second)
}

func jsonBody(body string) func(w http.ResponseWriter) {
	return func(w http.ResponseWriter) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}
}

func TestHTTPClient_Ping(t *testing.T) {
	c := newGatewayServer(t, map[string]func(http.ResponseWriter){
		"/": jsonBody(`{"status":"ok"}`),
	})
	ok, err := c.Ping(context.Background())
	if err != nil || !ok {
		t.Fatalf("Ping = %v, %v", ok, err)
	}

	down := NewHTTPClient("http://127.0.0.1:1", time.Second)
	if ok, err := down.Ping(context.Background()); err == nil || ok {
		t.Errorf("expected failure against closed port, got %v, %v", ok, err)
	}
}

func TestHTTPClient_PingNon2xx(t *testing.T) {
	c := newGatewayServer(t, map[string]func(http.ResponseWriter){
		"/": func(w http.ResponseWriter) { w.WriteHeader(http.StatusServiceUnavailable) },
	})
	ok, err := c.Ping(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("503 must not count as alive")
	}
}

func TestHTTPClient_GetConnectors(t *testing.T) {
	c := newGatewayServer(t, map[string]func(http.ResponseWriter){
		"/connectors": jsonBody(`{"connectors":[
			{"name":"uniswap","trading_type":["AMM"],"chain_type":"ethereum","available_networks":["mainnet"]},
			{"name":"jupiter","trading_type":["router"],"chain_type":"solana"}
		]}`),
	})

	list, err := c.GetConnectors(context.Background(), false)
	if err != nil {
		t.Fatal(err)
	}
	names := list.Names()
	if len(names) != 2 || names[0] != "uniswap" || names[1] != "jupiter" {
		t.Errorf("names = %v", names)
	}
	if list.Connectors[0].ChainType != "ethereum" || list.Connectors[0].Networks[0] != "mainnet" {
		t.Errorf("connector decoded wrong: %+v", list.Connectors[0])
	}
}

func TestHTTPClient_GetStatusShapes(t *testing.T) {
	c := newGatewayServer(t, map[string]func(http.ResponseWriter){
		"/network/status": jsonBody(`{"chain":"ethereum","network":"mainnet","currentBlockNumber":19000000}`),
	})
	statuses, err := c.GetStatus(context.Background(), false)
	if err != nil {
		t.Fatal(err)
	}
	if len(statuses) != 1 || !statuses[0].HasProgress() {
		t.Errorf("single object: %+v", statuses)
	}

	c = newGatewayServer(t, map[string]func(http.ResponseWriter){
		"/network/status": jsonBody(`[
			{"chain":"ethereum","network":"mainnet","currentBlockNumber":0},
			{"chain":"solana","network":"mainnet-beta","currentBlockNumber":"250000000"}
		]`),
	})
	statuses, err = c.GetStatus(context.Background(), false)
	if err != nil {
		t.Fatal(err)
	}
	if len(statuses) != 2 || statuses[0].HasProgress() || !statuses[1].HasProgress() {
		t.Errorf("array: %+v", statuses)
	}
}

func TestHTTPClient_GetConfiguration(t *testing.T) {
	c := newGatewayServer(t, map[string]func(http.ResponseWriter){
		"/config": jsonBody(`{"server":{"port":15888}}`),
	})
	raw, err := c.GetConfiguration(context.Background(), false)
	if err != nil {
		t.Fatal(err)
	}
	keys, err := FlattenConfigKeys(raw)
	if err != nil || len(keys) != 2 {
		t.Errorf("keys = %v, err = %v", keys, err)
	}
}

func TestHTTPClient_FailSilently(t *testing.T) {
	c := newGatewayServer(t, map[string]func(http.ResponseWriter){
		"/connectors":     func(w http.ResponseWriter) { w.WriteHeader(http.StatusInternalServerError) },
		"/network/status": jsonBody(`not json`),
		"/config":         jsonBody(`{"truncated":`),
	})
	ctx := context.Background()

	if _, err := c.GetConnectors(ctx, false); err == nil {
		t.Error("GetConnectors: expected error")
	}
	if list, err := c.GetConnectors(ctx, true); err != nil || len(list.Connectors) != 0 {
		t.Errorf("GetConnectors silent: %v, %v", list, err)
	}

	if _, err := c.GetStatus(ctx, false); err == nil {
		t.Error("GetStatus: expected error")
	}
	if s, err := c.GetStatus(ctx, true); err != nil || s != nil {
		t.Errorf("GetStatus silent: %v, %v", s, err)
	}

	if _, err := c.GetConfiguration(ctx, false); err == nil {
		t.Error("GetConfiguration: expected error")
	}
	if raw, err := c.GetConfiguration(ctx, true); err != nil || raw != nil {
		t.Errorf("GetConfiguration silent: %s, %v", raw, err)
	}
}

func TestHTTPClient_CancellationNotSilenced(t *testing.T) {
	c := newGatewayServer(t, map[string]func(http.ResponseWriter){
		"/connectors": jsonBody(`{"connectors":[]}`),
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := c.GetConnectors(ctx, true); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled even when failing silently, got %v", err)
	}
}
