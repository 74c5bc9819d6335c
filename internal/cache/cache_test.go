package cache

import (
	"strings"
	"testing"
	"time"
)

func TestKey(t *testing.T) {
	k1 := Key("https://data.cityofnewyork.us/resource/erm2-nwe9.json")
	k2 := Key("https://data.cityofchicago.org/resource/v6vf-nfxy.json")

	if !strings.HasPrefix(k1, "verdant:v1:") {
		t.Errorf("key missing version prefix: %s", k1)
	}
	if k1 == k2 {
		t.Error("different URLs should hash to different keys")
	}
	if k1 != Key("https://data.cityofnewyork.us/resource/erm2-nwe9.json") {
		t.Error("key derivation should be deterministic")
	}
}

func TestMemoryCache(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)

	if _, found := c.Get("missing"); found {
		t.Error("empty cache should miss")
	}

	if err := c.Set("k", []byte("body"), time.Minute); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	val, found := c.Get("k")
	if !found || string(val) != "body" {
		t.Errorf("get after set: found=%v val=%q", found, val)
	}

	if err := c.Delete("k"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, found := c.Get("k"); found {
		t.Error("deleted key should miss")
	}
}

func TestMemoryCache_TTL(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)

	if err := c.Set("k", []byte("body"), 10*time.Millisecond); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	time.Sleep(30 * time.Millisecond)
	if _, found := c.Get("k"); found {
		t.Error("expired entry should miss")
	}
}

func TestDiskCache(t *testing.T) {
	c := NewDiskCache(t.TempDir(), time.Minute)

	if err := c.Set("k", []byte("body"), 0); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	val, found := c.Get("k")
	if !found || string(val) != "body" {
		t.Errorf("get after set: found=%v val=%q", found, val)
	}

	if err := c.Clear(); err != nil {
		t.Fatalf("clear failed: %v", err)
	}
	if _, found := c.Get("k"); found {
		t.Error("cleared cache should miss")
	}
}

func TestDiskCache_Expired(t *testing.T) {
	c := NewDiskCache(t.TempDir(), time.Minute)

	if err := c.Set("k", []byte("body"), -time.Second); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	if _, found := c.Get("k"); found {
		t.Error("expired entry should miss and be removed")
	}
}

func TestLayeredCache_Promotion(t *testing.T) {
	dir := t.TempDir()
	c := NewLayeredCache(time.Minute, dir, time.Minute)

	if err := c.Set("k", []byte("body"), time.Minute); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	// Evict the memory layer; the disk layer should serve and re-promote.
	if err := c.memory.Clear(); err != nil {
		t.Fatalf("clear memory: %v", err)
	}
	val, found := c.Get("k")
	if !found || string(val) != "body" {
		t.Fatalf("disk layer miss: found=%v val=%q", found, val)
	}
	if _, found := c.memory.Get("k"); !found {
		t.Error("hit should promote entry back into memory")
	}
}
