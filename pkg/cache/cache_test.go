package cache

import (
	"context"
	"strings"
	"testing"
	"time"
)

func TestFileCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	defer c.Close()

	if _, found, err := c.Get(ctx, "missing"); err != nil || found {
		t.Errorf("Get(missing) = found %v, err %v", found, err)
	}

	if err := c.Set(ctx, "k", []byte("layout bytes"), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	data, found, err := c.Get(ctx, "k")
	if err != nil || !found {
		t.Fatalf("Get after Set: found %v, err %v", found, err)
	}
	if string(data) != "layout bytes" {
		t.Errorf("data = %q", data)
	}

	if err := c.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, found, _ := c.Get(ctx, "k"); found {
		t.Error("Get after Delete should miss")
	}
	if err := c.Delete(ctx, "k"); err != nil {
		t.Errorf("deleting a missing key: %v", err)
	}
}

func TestFileCacheExpiration(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	defer c.Close()

	if err := c.Set(ctx, "k", []byte("v"), time.Nanosecond); err != nil {
		t.Fatalf("Set: %v", err)
	}
	time.Sleep(10 * time.Millisecond)

	if _, found, err := c.Get(ctx, "k"); err != nil || found {
		t.Errorf("expired entry: found %v, err %v", found, err)
	}
}

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()

	if err := c.Set(ctx, "k", []byte("v"), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if _, found, err := c.Get(ctx, "k"); err != nil || found {
		t.Errorf("null cache must always miss: found %v, err %v", found, err)
	}
}

func TestKeyerDiscriminates(t *testing.T) {
	k := NewDefaultKeyer()

	a := k.LayoutKey("hash1", LayoutKeyOpts{Columns: 2})
	b := k.LayoutKey("hash1", LayoutKeyOpts{Columns: 3})
	c := k.LayoutKey("hash2", LayoutKeyOpts{Columns: 2})
	if a == b || a == c {
		t.Errorf("keys should differ across options and content: %s %s %s", a, b, c)
	}
	if again := k.LayoutKey("hash1", LayoutKeyOpts{Columns: 2}); again != a {
		t.Errorf("keys must be deterministic: %s vs %s", a, again)
	}
	if !strings.HasPrefix(a, "layout:") {
		t.Errorf("layout key prefix: %s", a)
	}

	m := k.MeasureKey("text", map[string]int{"char_width": 7}, 200)
	if !strings.HasPrefix(m, "measure:") {
		t.Errorf("measure key prefix: %s", m)
	}
	if m == k.MeasureKey("text", map[string]int{"char_width": 7}, 300) {
		t.Error("measure keys should include the width")
	}
}

func TestScopedKeyer(t *testing.T) {
	inner := NewDefaultKeyer()
	scoped := NewScopedKeyer(inner, "user:42:")

	got := scoped.LayoutKey("h", LayoutKeyOpts{Columns: 2})
	want := "user:42:" + inner.LayoutKey("h", LayoutKeyOpts{Columns: 2})
	if got != want {
		t.Errorf("scoped key = %s, want %s", got, want)
	}
}

func TestRetryWithBackoff(t *testing.T) {
	calls := 0
	err := RetryWithBackoff(context.Background(), func() error {
		calls++
		return nil
	})
	if err != nil || calls != 1 {
		t.Errorf("success path: calls %d, err %v", calls, err)
	}

	calls = 0
	permanent := RetryWithBackoff(context.Background(), func() error {
		calls++
		return ErrCacheMiss
	})
	if permanent == nil || calls != 1 {
		t.Errorf("permanent errors must not retry: calls %d, err %v", calls, permanent)
	}
}

func TestHashStable(t *testing.T) {
	if Hash([]byte("a")) != Hash([]byte("a")) {
		t.Error("hash must be deterministic")
	}
	if Hash([]byte("a")) == Hash([]byte("b")) {
		t.Error("hash must discriminate")
	}
	if len(Hash([]byte("a"))) != 64 {
		t.Errorf("hash length = %d, want 64", len(Hash([]byte("a"))))
	}
}
