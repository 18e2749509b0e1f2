package pipeline

import (
	"testing"

	"github.com/arifaulakh/AscentCast/internal/insight"
)

func TestReportCache_RoundTrip(t *testing.T) {
	cache, err := NewReportCache(4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data := []byte("transcript content")
	key := cache.Key(data, "I am an engineer")

	if _, ok := cache.Get(key); ok {
		t.Fatal("expected miss on empty cache")
	}

	report := &insight.Report{Partial: false}
	cache.Put(key, report)

	got, ok := cache.Get(key)
	if !ok {
		t.Fatal("expected hit after put")
	}
	if got != report {
		t.Error("expected the same report back")
	}
}

func TestReportCache_KeyDependsOnContentAndContext(t *testing.T) {
	cache, err := NewReportCache(4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	base := cache.Key([]byte("aaa"), "ctx")
	if cache.Key([]byte("bbb"), "ctx") == base {
		t.Error("expected different key for different content")
	}
	if cache.Key([]byte("aaa"), "other ctx") == base {
		t.Error("expected different key for different user context")
	}
	if cache.Key([]byte("aaa"), "ctx") != base {
		t.Error("expected stable key for identical inputs")
	}
}

func TestReportCache_Eviction(t *testing.T) {
	cache, err := NewReportCache(2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	k1 := cache.Key([]byte("one"), "")
	k2 := cache.Key([]byte("two"), "")
	k3 := cache.Key([]byte("three"), "")

	cache.Put(k1, &insight.Report{})
	cache.Put(k2, &insight.Report{})
	cache.Put(k3, &insight.Report{})

	if cache.Len() != 2 {
		t.Errorf("expected size 2 after eviction, got %d", cache.Len())
	}
	if _, ok := cache.Get(k1); ok {
		t.Error("expected oldest entry to be evicted")
	}
	if _, ok := cache.Get(k3); !ok {
		t.Error("expected newest entry to remain")
	}
}
