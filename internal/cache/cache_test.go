package cache

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ppiankov/valuecompass/internal/model"
)

func TestCacheKey(t *testing.T) {
	a := CacheKey("openai", "gpt-4o-mini", "Ban protests")
	b := CacheKey("openai", "gpt-4o-mini", "Ban protests")
	if a != b {
		t.Error("Expected identical parts to produce identical keys")
	}
	if !strings.HasPrefix(a, "compass:v1:") {
		t.Errorf("Unexpected key prefix: %s", a)
	}
	if CacheKey("ab", "c") == CacheKey("a", "bc") {
		t.Error("Expected part boundaries to matter")
	}
	if CacheKey("openai", "x") == CacheKey("ollama", "x") {
		t.Error("Expected provider to change the key")
	}
}

func TestMemoryCache(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)

	if _, ok := c.Get("missing"); ok {
		t.Error("Expected miss")
	}
	_ = c.Set("k", []byte(`"v"`), 0)
	if v, ok := c.Get("k"); !ok || string(v) != `"v"` {
		t.Errorf("Expected hit, got %q %v", v, ok)
	}
	if c.Len() != 1 {
		t.Errorf("Expected 1 entry, got %d", c.Len())
	}

	_ = c.Set("short", []byte(`1`), time.Millisecond)
	time.Sleep(5 * time.Millisecond)
	if _, ok := c.Get("short"); ok {
		t.Error("Expected expired entry to miss")
	}

	_ = c.Delete("k")
	if _, ok := c.Get("k"); ok {
		t.Error("Expected deleted entry to miss")
	}
}

func TestDiskCache(t *testing.T) {
	dir := t.TempDir()
	c := NewDiskCache(dir, time.Hour)
	key := CacheKey("openai", "m", "text")

	if err := c.Set(key, []byte(`{"effects":[]}`), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	v, ok := c.Get(key)
	if !ok || string(v) != `{"effects":[]}` {
		t.Errorf("Expected hit, got %q %v", v, ok)
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 || !strings.HasSuffix(entries[0].Name(), ".json") || strings.Contains(entries[0].Name(), ":") {
		t.Errorf("Expected one sanitised .json file, got %v", entries)
	}

	if err := c.Set("bad", []byte("not json"), 0); err == nil {
		t.Error("Expected error for non-JSON value")
	}

	if err := c.Delete(key); err != nil {
		t.Errorf("Delete: %v", err)
	}
	if err := c.Delete(key); err != nil {
		t.Errorf("Expected deleting a missing entry to succeed, got %v", err)
	}
}

func TestDiskCache_Expiry(t *testing.T) {
	dir := t.TempDir()
	c := NewDiskCache(dir, time.Hour)

	_ = c.Set("k", []byte(`1`), time.Millisecond)
	time.Sleep(5 * time.Millisecond)
	if _, ok := c.Get("k"); ok {
		t.Error("Expected expired entry to miss")
	}
	if _, err := os.Stat(filepath.Join(dir, "k.json")); !os.IsNotExist(err) {
		t.Error("Expected expired file to be removed")
	}
}

func TestLayeredCache_Promotes(t *testing.T) {
	dir := t.TempDir()
	c := NewLayeredCache(time.Minute, dir, time.Hour)

	// Write through disk only, then read through the layered cache
	_ = NewDiskCache(dir, time.Hour).Set("k", []byte(`"disk"`), 0)

	if v, ok := c.Get("k"); !ok || string(v) != `"disk"` {
		t.Fatalf("Expected disk hit, got %q %v", v, ok)
	}
	if _, ok := c.memory.Get("k"); !ok {
		t.Error("Expected disk hit to be promoted to memory")
	}

	if err := c.Clear(); err != nil {
		t.Errorf("Clear: %v", err)
	}
	if _, ok := c.Get("k"); ok {
		t.Error("Expected miss after clear")
	}
}

func TestJSONHelpers(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)

	in := model.Effect{Axis: "how:6", Polarity: 2}
	if err := SetJSON(c, "e", in, 0); err != nil {
		t.Fatalf("SetJSON: %v", err)
	}
	var out model.Effect
	if !GetJSON(c, "e", &out) || out != in {
		t.Errorf("Expected %+v, got %+v", in, out)
	}
	if GetJSON(c, "missing", &out) {
		t.Error("Expected miss")
	}
}

func TestFromConfig(t *testing.T) {
	if FromConfig(model.CacheConfig{Enabled: false}) != nil {
		t.Error("Expected nil cache when disabled")
	}
	if _, ok := FromConfig(model.CacheConfig{Enabled: true, MemoryTTL: time.Minute}).(*MemoryCache); !ok {
		t.Error("Expected memory cache without a directory")
	}
	if _, ok := FromConfig(model.CacheConfig{Enabled: true, Dir: t.TempDir()}).(*LayeredCache); !ok {
		t.Error("Expected layered cache with a directory")
	}
}

func TestExpandHome(t *testing.T) {
	if got := ExpandHome("/abs/path"); got != "/abs/path" {
		t.Errorf("Expected absolute path unchanged, got %s", got)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	if got := ExpandHome("~/.compass/cache"); got != filepath.Join(home, ".compass/cache") {
		t.Errorf("Unexpected expansion %s", got)
	}
}
