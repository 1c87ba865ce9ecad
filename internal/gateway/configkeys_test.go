package gateway

import (
	"errors"
	"reflect"
	"testing"
)

func TestFlattenConfigKeys_DocumentOrder(t *testing.T) {
	raw := []byte(`{
		"server": {"port": 15888, "logLevel": "info"},
		"ethereum": {
			"networks": {"mainnet": {"chainID": 1, "nodeURL": "https://rpc"}},
			"gasLimit": 300000
		},
		"uniswap": {"allowedSlippage": "2/100", "routers": [{"name": "v3"}]},
		"telemetry": false
	}`)

	keys, err := FlattenConfigKeys(raw)
	if err != nil {
		t.Fatalf("FlattenConfigKeys failed: %v", err)
	}

	want := []string{
		"server",
		"server.port",
		"server.logLevel",
		"ethereum",
		"ethereum.networks",
		"ethereum.networks.mainnet",
		"ethereum.networks.mainnet.chainID",
		"ethereum.networks.mainnet.nodeURL",
		"ethereum.gasLimit",
		"uniswap",
		"uniswap.allowedSlippage",
		"uniswap.routers",
		"telemetry",
	}
	if !reflect.DeepEqual(keys, want) {
		t.Errorf("keys =\n%v\nwant\n%v", keys, want)
	}
}

func TestFlattenConfigKeys_Deterministic(t *testing.T) {
	raw := []byte(`{"b":{"y":1,"x":2},"a":{}}`)

	first, err := FlattenConfigKeys(raw)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 10; i++ {
		again, _ := FlattenConfigKeys(raw)
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("run %d differs: %v vs %v", i, again, first)
		}
	}
	if want := []string{"b", "b.y", "b.x", "a"}; !reflect.DeepEqual(first, want) {
		t.Errorf("keys = %v, want %v", first, want)
	}
}

func TestFlattenConfigKeys_Errors(t *testing.T) {
	if _, err := FlattenConfigKeys([]byte(`[1,2]`)); !errors.Is(err, ErrConfigNotObject) {
		t.Errorf("expected ErrConfigNotObject, got %v", err)
	}
	if _, err := FlattenConfigKeys([]byte(`{"a":`)); err == nil {
		t.Error("expected error for truncated document")
	}
	if _, err := FlattenConfigKeys(nil); err == nil {
		t.Error("expected error for empty document")
	}

	keys, err := FlattenConfigKeys([]byte(`{}`))
	if err != nil || len(keys) != 0 {
		t.Errorf("empty object: keys=%v err=%v", keys, err)
	}
}
