package storage

import (
	"context"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"tradelink_go/internal/completion"
)

func newTestStore(t *testing.T, c *completion.Completer) *KeyStore {
	t.Helper()
	store, err := NewKeyStore(filepath.Join(t.TempDir(), "gateway.db"), c)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestKeyStore_ReplaceAndLoad(t *testing.T) {
	c := completion.New(nil)
	store := newTestStore(t, c)
	store.now = func() time.Time { return time.UnixMilli(1700000000000) }
	ctx := context.Background()

	first := []string{"server", "server.port", "ethereum"}
	if err := store.ReplaceConfigKeys(ctx, first); err != nil {
		t.Fatalf("ReplaceConfigKeys failed: %v", err)
	}

	second := []string{"solana", "solana.networks", "server"}
	if err := store.ReplaceConfigKeys(ctx, second); err != nil {
		t.Fatalf("ReplaceConfigKeys failed: %v", err)
	}

	loaded, err := store.LoadConfigKeys(ctx)
	if err != nil {
		t.Fatalf("LoadConfigKeys failed: %v", err)
	}
	if !reflect.DeepEqual(loaded, second) {
		t.Errorf("loaded = %v, want %v", loaded, second)
	}

	if got := c.Complete("sol"); !reflect.DeepEqual(got, []string{"solana", "solana.networks"}) {
		t.Errorf("completer not rebuilt: %v", got)
	}

	count, _ := store.GetMetadata(ctx, MetaConfigKeysCount)
	if count != "3" {
		t.Errorf("count metadata = %q, want 3", count)
	}
	updated, _ := store.GetMetadata(ctx, MetaConfigKeysUpdatedAt)
	if updated != "1700000000000" {
		t.Errorf("updated_at metadata = %q", updated)
	}
}

func TestKeyStore_EmptyList(t *testing.T) {
	store := newTestStore(t, nil)
	ctx := context.Background()

	keys, err := store.LoadConfigKeys(ctx)
	if err != nil || len(keys) != 0 {
		t.Fatalf("fresh store: keys=%v err=%v", keys, err)
	}

	if err := store.ReplaceConfigKeys(ctx, []string{"a"}); err != nil {
		t.Fatal(err)
	}
	if err := store.ReplaceConfigKeys(ctx, nil); err != nil {
		t.Fatal(err)
	}
	keys, _ = store.LoadConfigKeys(ctx)
	if len(keys) != 0 {
		t.Errorf("expected empty list, got %v", keys)
	}
}

func TestKeyStore_RestoreAcrossReopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "gateway.db")
	ctx := context.Background()

	store, err := NewKeyStore(dbPath, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := store.ReplaceConfigKeys(ctx, []string{"x", "x.y"}); err != nil {
		t.Fatal(err)
	}
	store.Close()

	c := completion.New(nil)
	reopened, err := NewKeyStore(dbPath, c)
	if err != nil {
		t.Fatal(err)
	}
	defer reopened.Close()

	keys, err := reopened.Restore(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(keys, []string{"x", "x.y"}) {
		t.Errorf("restored = %v", keys)
	}
	if c.Len() != 2 {
		t.Errorf("completer has %d candidates, want 2", c.Len())
	}
}

func TestKeyStore_CancelledReplaceKeepsPrevious(t *testing.T) {
	store := newTestStore(t, nil)
	ctx := context.Background()

	if err := store.ReplaceConfigKeys(ctx, []string{"keep"}); err != nil {
		t.Fatal(err)
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	if err := store.ReplaceConfigKeys(cancelled, []string{"lost"}); err == nil {
		t.Fatal("expected error with cancelled context")
	}

	keys, _ := store.LoadConfigKeys(ctx)
	if !reflect.DeepEqual(keys, []string{"keep"}) {
		t.Errorf("keys = %v, want [keep]", keys)
	}
}

func TestKeyStore_FailedPersistStillRebuildsCompleter(t *testing.T) {
	c := completion.New([]string{"old"})
	store := newTestStore(t, c)
	store.Close()

	if err := store.ReplaceConfigKeys(context.Background(), []string{"fresh", "fresh.key"}); err == nil {
		t.Fatal("expected error on closed store")
	}
	if got := c.Complete("fresh"); !reflect.DeepEqual(got, []string{"fresh", "fresh.key"}) {
		t.Errorf("completer = %v, want rebuilt keys", got)
	}
	if got := c.Complete("old"); got != nil {
		t.Errorf("stale candidates kept: %v", got)
	}
}

func TestKeyStore_Metadata(t *testing.T) {
	store := newTestStore(t, nil)
	ctx := context.Background()

	if v, err := store.GetMetadata(ctx, "missing"); err != nil || v != "" {
		t.Errorf("missing key: %q, %v", v, err)
	}
	if err := store.UpsertMetadata(ctx, "gateway.url", "http://a", 1); err != nil {
		t.Fatal(err)
	}
	if err := store.UpsertMetadata(ctx, "gateway.url", "http://b", 2); err != nil {
		t.Fatal(err)
	}
	if v, _ := store.GetMetadata(ctx, "gateway.url"); v != "http://b" {
		t.Errorf("value = %q, want http://b", v)
	}
}
