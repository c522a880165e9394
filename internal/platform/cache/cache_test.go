package cache

import (
	"testing"
	"time"

	"github.com/p-n-ai/pai-lingo/internal/translate"
)

var _ translate.Cache = (*Cache)(nil)

func TestParseURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{"valid-redis", "redis://localhost:6379", false},
		{"valid-with-db", "redis://localhost:6379/0", false},
		{"empty", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseURL(tt.url)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseURL() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestNew_UnreachableHost(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping unreachable host test in short mode")
	}

	ctx := t.Context()
	_, err := New(ctx, "redis://localhost:59999")
	if err == nil {
		t.Fatal("New() should return error for unreachable host")
	}
}

func TestCache_GetSet(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping live cache test in short mode")
	}

	ctx := t.Context()
	c, err := New(ctx, "redis://localhost:6379/15")
	if err != nil {
		t.Skipf("no cache available: %v", err)
	}
	defer c.Close()

	key := translate.CacheKey("Incorrect.", "es")
	t.Cleanup(func() { c.Client.Del(ctx, key) })

	if _, ok, err := c.Get(ctx, key); err != nil || ok {
		t.Fatalf("Get() before Set = (%v, %v), want miss", ok, err)
	}
	if err := c.Set(ctx, key, "Incorrecto.", time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	got, ok, err := c.Get(ctx, key)
	if err != nil || !ok || got != "Incorrecto." {
		t.Errorf("Get() = (%q, %v, %v), want Incorrecto.", got, ok, err)
	}
}
