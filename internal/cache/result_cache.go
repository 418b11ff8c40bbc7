package cache

import (
	"encoding/binary"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/cespare/xxhash/v2"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/standardbeagle/codeprofile/internal/debug"
	"github.com/standardbeagle/codeprofile/internal/types"
)

// Cache configuration constants
const (
	DefaultMaxEntries = 64
	DefaultTTL        = 2 * time.Hour
)

type cachedAnalysis struct {
	Analysis types.ProjectAnalysis
	CachedAt int64 // Unix nano
}

// ResultCache holds finished analyses keyed by project root and structure
// fingerprint. It is owned by the caller: nothing inside the pipeline
// consults a cache unless one is passed in.
//
// Cached analyses are shared. Callers must treat returned values as
// read-only.
type ResultCache struct {
	entries  *lru.Cache[string, *cachedAnalysis]
	ttlNanos int64

	hits          int64
	misses        int64
	evictions     int64
	totalRequests int64

	maxEntries int
	createdAt  time.Time
}

// CacheConfig defines configuration options
type CacheConfig struct {
	MaxEntries int
	TTL        time.Duration // 0 = entries never expire
}

// DefaultCacheConfig returns default configuration
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		MaxEntries: DefaultMaxEntries,
		TTL:        DefaultTTL,
	}
}

// NewResultCache creates a new cache
func NewResultCache(config CacheConfig) (*ResultCache, error) {
	if config.MaxEntries <= 0 {
		config.MaxEntries = DefaultMaxEntries
	}
	rc := &ResultCache{
		ttlNanos:   config.TTL.Nanoseconds(),
		maxEntries: config.MaxEntries,
		createdAt:  time.Now(),
	}
	entries, err := lru.NewWithEvict[string, *cachedAnalysis](config.MaxEntries, func(key string, _ *cachedAnalysis) {
		atomic.AddInt64(&rc.evictions, 1)
	})
	if err != nil {
		return nil, fmt.Errorf("creating result cache: %w", err)
	}
	rc.entries = entries
	return rc, nil
}

// Fingerprint hashes everything that can change an analysis: the scan
// mode, the scoring settings and, per file in path order, its path, size,
// category and sampled content.
func Fingerprint(ps *types.ProjectStructure, mode types.ScanMode, settings string) string {
	h := xxhash.New()
	_, _ = h.WriteString(string(mode))
	_, _ = h.WriteString("\x00")
	_, _ = h.WriteString(settings)
	_, _ = h.WriteString("\x00")
	var num [8]byte
	for i := range ps.Files {
		f := &ps.Files[i]
		_, _ = h.WriteString(f.RelPath)
		_, _ = h.WriteString("\x00")
		_, _ = h.WriteString(string(f.Category))
		_, _ = h.WriteString("\x00")
		binary.LittleEndian.PutUint64(num[:], uint64(f.Size))
		_, _ = h.Write(num[:])
		binary.LittleEndian.PutUint64(num[:], xxhash.Sum64(f.Sample))
		_, _ = h.Write(num[:])
	}
	for _, d := range ps.Directories {
		_, _ = h.WriteString(d.Path)
		_, _ = h.WriteString("/")
	}
	return fmt.Sprintf("%016x", h.Sum64())
}

func cacheKey(root, fingerprint string) string {
	var b strings.Builder
	b.Grow(len(root) + 1 + len(fingerprint))
	b.WriteString(root)
	b.WriteByte(0)
	b.WriteString(fingerprint)
	return b.String()
}

// Get returns the analysis stored for root at fingerprint.
func (rc *ResultCache) Get(root, fingerprint string) (types.ProjectAnalysis, bool) {
	atomic.AddInt64(&rc.totalRequests, 1)
	key := cacheKey(root, fingerprint)
	if cached, ok := rc.entries.Get(key); ok {
		ttl := atomic.LoadInt64(&rc.ttlNanos)
		if ttl <= 0 || time.Now().UnixNano()-cached.CachedAt <= ttl {
			atomic.AddInt64(&rc.hits, 1)
			debug.LogCache("hit %s %s\n", root, fingerprint)
			return cached.Analysis, true
		}
		// Expired - delete lazily
		rc.entries.Remove(key)
	}
	atomic.AddInt64(&rc.misses, 1)
	debug.LogCache("miss %s %s\n", root, fingerprint)
	return types.ProjectAnalysis{}, false
}

// Put stores an analysis, replacing any previous one for the same key.
func (rc *ResultCache) Put(root, fingerprint string, analysis types.ProjectAnalysis) {
	rc.entries.Add(cacheKey(root, fingerprint), &cachedAnalysis{
		Analysis: analysis,
		CachedAt: time.Now().UnixNano(),
	})
}

// Invalidate drops every entry for root and returns how many were removed.
func (rc *ResultCache) Invalidate(root string) int {
	prefix := root + "\x00"
	removed := 0
	for _, key := range rc.entries.Keys() {
		if strings.HasPrefix(key, prefix) && rc.entries.Remove(key) {
			removed++
		}
	}
	// Invalidation is not eviction pressure.
	atomic.AddInt64(&rc.evictions, -int64(removed))
	debug.LogCache("invalidated %d entries for %s\n", removed, root)
	return removed
}

// Clear removes all entries and resets statistics
func (rc *ResultCache) Clear() {
	rc.entries.Purge()
	atomic.StoreInt64(&rc.hits, 0)
	atomic.StoreInt64(&rc.misses, 0)
	atomic.StoreInt64(&rc.evictions, 0)
	atomic.StoreInt64(&rc.totalRequests, 0)
}

// Stats returns cache statistics
func (rc *ResultCache) Stats() CacheStats {
	hits := atomic.LoadInt64(&rc.hits)
	totalRequests := atomic.LoadInt64(&rc.totalRequests)

	hitRate := float64(0)
	if totalRequests > 0 {
		hitRate = float64(hits) / float64(totalRequests)
	}

	return CacheStats{
		Hits:          hits,
		Misses:        atomic.LoadInt64(&rc.misses),
		Evictions:     atomic.LoadInt64(&rc.evictions),
		TotalRequests: totalRequests,
		HitRate:       hitRate,
		Entries:       rc.entries.Len(),
		CreatedAt:     rc.createdAt,
		Uptime:        time.Since(rc.createdAt),
	}
}

// CacheStats holds cache statistics
type CacheStats struct {
	Hits          int64
	Misses        int64
	Evictions     int64
	TotalRequests int64
	HitRate       float64
	Entries       int
	CreatedAt     time.Time
	Uptime        time.Duration
}

// GetCacheInfo returns cache configuration and status
func (rc *ResultCache) GetCacheInfo() CacheInfo {
	stats := rc.Stats()
	return CacheInfo{
		MaxEntries: rc.maxEntries,
		TTL:        time.Duration(atomic.LoadInt64(&rc.ttlNanos)),
		Stats:      stats,
		Status:     getHealthStatus(stats.HitRate),
	}
}

// CacheInfo provides cache information
type CacheInfo struct {
	MaxEntries int
	TTL        time.Duration
	Stats      CacheStats
	Status     string
}

func getHealthStatus(hitRate float64) string {
	switch {
	case hitRate >= 0.95:
		return "excellent"
	case hitRate >= 0.85:
		return "good"
	case hitRate >= 0.70:
		return "fair"
	default:
		return "poor"
	}
}

// UpdateTTL changes the expiry for existing and future entries.
func (rc *ResultCache) UpdateTTL(ttl time.Duration) {
	atomic.StoreInt64(&rc.ttlNanos, ttl.Nanoseconds())
}
