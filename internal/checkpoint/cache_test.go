package checkpoint

import (
	"testing"
	"time"
)

func TestListCacheDisabledByDefault(t *testing.T) {
	var c listCache

	c.set([]ProjectSummary{{Name: "a"}}, ListDiagnostics{})
	if _, _, ok := c.get(); ok {
		t.Fatal("expected cache miss with ttl unset")
	}
}

func TestListCacheTTL(t *testing.T) {
	var c listCache
	c.setTTL(10 * time.Millisecond)

	c.set([]ProjectSummary{{Name: "a"}}, ListDiagnostics{Corrupt: 1})

	summaries, diags, ok := c.get()
	if !ok {
		t.Fatal("expected cached immediately after set")
	}
	if len(summaries) != 1 || summaries[0].Name != "a" {
		t.Errorf("unexpected cached summaries: %v", summaries)
	}
	if diags.Corrupt != 1 {
		t.Errorf("expected diagnostics cached alongside, got %+v", diags)
	}

	time.Sleep(15 * time.Millisecond)
	if _, _, ok := c.get(); ok {
		t.Fatal("expected cache miss after ttl expiry")
	}
}

func TestListCacheReset(t *testing.T) {
	var c listCache
	c.setTTL(time.Minute)

	c.set([]ProjectSummary{{Name: "a"}}, ListDiagnostics{})
	c.reset()

	if _, _, ok := c.get(); ok {
		t.Fatal("expected cache miss after reset")
	}
}
