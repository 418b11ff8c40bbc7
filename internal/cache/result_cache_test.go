package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/standardbeagle/codeprofile/internal/types"
)

func newTestCache(t *testing.T, config CacheConfig) *ResultCache {
	t.Helper()
	rc, err := NewResultCache(config)
	if err != nil {
		t.Fatalf("NewResultCache: %v", err)
	}
	return rc
}

func sampleStructure() *types.ProjectStructure {
	return &types.ProjectStructure{
		Root: "/p",
		Files: []types.FileRecord{
			{RelPath: "main.go", Category: types.CategorySource, Size: 12, Sample: []byte("package main")},
			{RelPath: "go.mod", Category: types.CategoryConfig, Size: 20},
		},
		Directories: []types.DirectoryRecord{{Path: "."}},
	}
}

// TestResultCache_Creation tests the result cache creation.
func TestResultCache_Creation(t *testing.T) {
	config := DefaultCacheConfig()
	rc := newTestCache(t, config)

	info := rc.GetCacheInfo()
	if info.MaxEntries != DefaultMaxEntries {
		t.Errorf("Expected max entries %d, got %d", DefaultMaxEntries, info.MaxEntries)
	}
	if info.TTL != DefaultTTL {
		t.Errorf("Expected TTL %v, got %v", DefaultTTL, info.TTL)
	}

	rc = newTestCache(t, CacheConfig{})
	if got := rc.GetCacheInfo().MaxEntries; got != DefaultMaxEntries {
		t.Errorf("Expected zero size to fall back to %d, got %d", DefaultMaxEntries, got)
	}
}

// TestResultCache_HitAndMiss tests lookups by root and fingerprint.
func TestResultCache_HitAndMiss(t *testing.T) {
	rc := newTestCache(t, DefaultCacheConfig())
	ps := sampleStructure()
	fp := Fingerprint(ps, types.ScanModeShallow, "")

	if _, ok := rc.Get("/p", fp); ok {
		t.Fatal("Expected miss on empty cache")
	}

	rc.Put("/p", fp, types.ProjectAnalysis{Fingerprint: fp, Mode: types.ScanModeShallow})
	got, ok := rc.Get("/p", fp)
	if !ok {
		t.Fatal("Expected hit after Put")
	}
	if got.Fingerprint != fp {
		t.Errorf("Expected fingerprint %s, got %s", fp, got.Fingerprint)
	}

	if _, ok := rc.Get("/other", fp); ok {
		t.Error("Expected miss for a different root")
	}
	if _, ok := rc.Get("/p", "0000000000000000"); ok {
		t.Error("Expected miss for a different fingerprint")
	}

	stats := rc.Stats()
	if stats.Hits != 1 || stats.Misses != 3 || stats.TotalRequests != 4 {
		t.Errorf("Unexpected stats: %+v", stats)
	}
	if stats.HitRate != 0.25 {
		t.Errorf("Expected hit rate 0.25, got %v", stats.HitRate)
	}
}

// TestResultCache_Invalidate tests per-root invalidation.
func TestResultCache_Invalidate(t *testing.T) {
	rc := newTestCache(t, DefaultCacheConfig())
	rc.Put("/p", "a", types.ProjectAnalysis{})
	rc.Put("/p", "b", types.ProjectAnalysis{})
	rc.Put("/p2", "a", types.ProjectAnalysis{})

	if n := rc.Invalidate("/p"); n != 2 {
		t.Errorf("Expected 2 entries removed, got %d", n)
	}
	if _, ok := rc.Get("/p", "a"); ok {
		t.Error("Expected miss after invalidation")
	}
	if _, ok := rc.Get("/p2", "a"); !ok {
		t.Error("Expected /p2 to survive invalidation of /p")
	}
	if ev := rc.Stats().Evictions; ev != 0 {
		t.Errorf("Expected invalidation not to count as eviction, got %d", ev)
	}
}

// TestResultCache_Eviction tests LRU capacity handling.
func TestResultCache_Eviction(t *testing.T) {
	rc := newTestCache(t, CacheConfig{MaxEntries: 2})
	rc.Put("/p", "1", types.ProjectAnalysis{})
	rc.Put("/p", "2", types.ProjectAnalysis{})
	rc.Get("/p", "1")
	rc.Put("/p", "3", types.ProjectAnalysis{})

	if _, ok := rc.Get("/p", "2"); ok {
		t.Error("Expected least recently used entry to be evicted")
	}
	if _, ok := rc.Get("/p", "1"); !ok {
		t.Error("Expected recently used entry to survive")
	}
	stats := rc.Stats()
	if stats.Evictions != 1 || stats.Entries != 2 {
		t.Errorf("Unexpected stats: %+v", stats)
	}
}

// TestResultCache_TTL tests expiry.
func TestResultCache_TTL(t *testing.T) {
	rc := newTestCache(t, CacheConfig{MaxEntries: 4, TTL: time.Millisecond})
	rc.Put("/p", "fp", types.ProjectAnalysis{})
	time.Sleep(5 * time.Millisecond)
	if _, ok := rc.Get("/p", "fp"); ok {
		t.Error("Expected expired entry to miss")
	}

	rc.UpdateTTL(0)
	rc.Put("/p", "fp", types.ProjectAnalysis{})
	time.Sleep(2 * time.Millisecond)
	if _, ok := rc.Get("/p", "fp"); !ok {
		t.Error("Expected zero TTL to disable expiry")
	}
}

// TestResultCache_Clear tests clearing entries and statistics.
func TestResultCache_Clear(t *testing.T) {
	rc := newTestCache(t, DefaultCacheConfig())
	rc.Put("/p", "fp", types.ProjectAnalysis{})
	rc.Get("/p", "fp")
	rc.Clear()

	stats := rc.Stats()
	if stats.Entries != 0 || stats.Hits != 0 || stats.TotalRequests != 0 || stats.Evictions != 0 {
		t.Errorf("Expected empty stats after Clear, got %+v", stats)
	}
	if status := rc.GetCacheInfo().Status; status != "poor" {
		t.Errorf("Expected poor status with no requests, got %s", status)
	}
}

// TestFingerprint tests that the fingerprint tracks content, mode, settings and layout.
func TestFingerprint(t *testing.T) {
	base := Fingerprint(sampleStructure(), types.ScanModeShallow, "")
	if base != Fingerprint(sampleStructure(), types.ScanModeShallow, "") {
		t.Fatal("Expected fingerprint to be stable")
	}
	if len(base) != 16 {
		t.Errorf("Expected 16 hex digits, got %q", base)
	}

	tests := []struct {
		name   string
		mutate func(ps *types.ProjectStructure) types.ScanMode
	}{
		{"mode", func(ps *types.ProjectStructure) types.ScanMode { return types.ScanModeDeep }},
		{"sample", func(ps *types.ProjectStructure) types.ScanMode {
			ps.Files[0].Sample = []byte("package app!")
			return types.ScanModeShallow
		}},
		{"size", func(ps *types.ProjectStructure) types.ScanMode {
			ps.Files[1].Size++
			return types.ScanModeShallow
		}},
		{"rename", func(ps *types.ProjectStructure) types.ScanMode {
			ps.Files[1].RelPath = "go.sum"
			return types.ScanModeShallow
		}},
		{"new directory", func(ps *types.ProjectStructure) types.ScanMode {
			ps.Directories = append(ps.Directories, types.DirectoryRecord{Path: "empty"})
			return types.ScanModeShallow
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ps := sampleStructure()
			mode := tt.mutate(ps)
			if Fingerprint(ps, mode, "") == base {
				t.Errorf("Expected fingerprint to change on %s", tt.name)
			}
		})
	}

	if Fingerprint(sampleStructure(), types.ScanModeShallow, "{ArchitectureMinScore:40}") == base {
		t.Error("Expected fingerprint to change with the scoring settings")
	}
}

// TestResultCache_ConcurrentAccess tests concurrent Get/Put/Invalidate.
func TestResultCache_ConcurrentAccess(t *testing.T) {
	rc := newTestCache(t, CacheConfig{MaxEntries: 16})
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			root := fmt.Sprintf("/p%d", id%3)
			for j := 0; j < 100; j++ {
				fp := fmt.Sprintf("%d", j%5)
				rc.Put(root, fp, types.ProjectAnalysis{})
				rc.Get(root, fp)
				if j%25 == 0 {
					rc.Invalidate(root)
				}
			}
		}(i)
	}
	wg.Wait()

	if stats := rc.Stats(); stats.TotalRequests != 800 {
		t.Errorf("Expected 800 requests, got %d", stats.TotalRequests)
	}
}
