package cache

import (
	"strings"
	"testing"
	"time"
)

func TestKeyDerivation(t *testing.T) {
	a := key("https://example.com")
	if a != key("https://example.com") {
		t.Error("key must be deterministic")
	}
	if a == key("https://example.com/") {
		t.Error("distinct URLs must not collide on key")
	}
	if !strings.HasPrefix(a, "phishguard:verdict:") {
		t.Errorf("key %q missing namespace prefix", a)
	}
	// Hashed keys keep arbitrary URLs out of the Redis keyspace.
	if strings.Contains(key("https://example.com/?p=secret"), "secret") {
		t.Error("raw URL leaked into the cache key")
	}
}

func TestNewDefaultTTL(t *testing.T) {
	c := New("localhost:6379", "", 0, 0)
	defer c.Close()
	if c.ttl != DefaultTTL {
		t.Errorf("ttl = %v, want %v", c.ttl, DefaultTTL)
	}
	c2 := New("localhost:6379", "", 0, 5*time.Minute)
	defer c2.Close()
	if c2.ttl != 5*time.Minute {
		t.Errorf("ttl = %v, want 5m", c2.ttl)
	}
}
