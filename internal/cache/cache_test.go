package cache

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestCache_PutGet(t *testing.T) {
	c, err := New(true, t.TempDir(), 3600)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	key := BuildKey("gemini", "gemini-2.0-flash-001", "detector", "some prompt")
	if _, ok := c.Get(key); ok {
		t.Error("unexpected hit on empty cache")
	}

	if err := c.Put(key, `[{"quoted":"teh"}]`); err != nil {
		t.Fatalf("Put error: %v", err)
	}
	got, ok := c.Get(key)
	if !ok || got != `[{"quoted":"teh"}]` {
		t.Errorf("Get = (%q, %v)", got, ok)
	}
}

func TestCache_Disabled(t *testing.T) {
	c, err := New(false, "", 0)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	if c.Enabled() {
		t.Error("Enabled() = true")
	}
	if err := c.Put("k", "v"); err != nil {
		t.Errorf("Put on disabled cache: %v", err)
	}
	if _, ok := c.Get("k"); ok {
		t.Error("disabled cache returned a hit")
	}
}

func TestCache_TTLExpiry(t *testing.T) {
	dir := t.TempDir()
	c, err := New(true, dir, 60)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	if err := c.Put("key", "value"); err != nil {
		t.Fatalf("Put error: %v", err)
	}

	// Backdate the entry past its TTL.
	path := filepath.Join(dir, HashKey("key")+".json")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading entry: %v", err)
	}
	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		t.Fatalf("parsing entry: %v", err)
	}
	entry.CreatedAt = time.Now().Add(-2 * time.Minute)
	data, _ = json.Marshal(entry)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("rewriting entry: %v", err)
	}

	if _, ok := c.Get("key"); ok {
		t.Error("expired entry returned a hit")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("expired entry not removed")
	}
}

func TestCache_Clear(t *testing.T) {
	c, err := New(true, t.TempDir(), 3600)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	c.Put("a", "1")
	c.Put("b", "2")

	if err := c.Clear(); err != nil {
		t.Fatalf("Clear error: %v", err)
	}
	stats, err := c.GetStats()
	if err != nil {
		t.Fatalf("GetStats error: %v", err)
	}
	if stats.Entries != 0 {
		t.Errorf("Entries = %d after Clear, want 0", stats.Entries)
	}
}

func TestBuildKey_DistinguishesInputs(t *testing.T) {
	base := BuildKey("gemini", "m", "detector", "text")
	for name, other := range map[string]string{
		"provider": BuildKey("openai", "m", "detector", "text"),
		"model":    BuildKey("gemini", "m2", "detector", "text"),
		"pass":     BuildKey("gemini", "m", "judge", "text"),
		"text":     BuildKey("gemini", "m", "detector", "other text"),
	} {
		if other == base {
			t.Errorf("key does not vary with %s", name)
		}
	}
}
