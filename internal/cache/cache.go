// Fieldwise - Crop Suitability Ranking and Fertilizer Blend Optimization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fieldwise

// Package cache provides a thread-safe in-memory TTL cache for memoizing
// deterministic engine outputs, keyed by normalized-input fingerprints.
//
// Entries are written once and expire wholesale on TTL; they are never
// patched in place. A background goroutine sweeps expired entries.
package cache

import (
	"crypto/sha256"
	"fmt"
	"sync"
	"time"

	"github.com/goccy/go-json"
)

// cleanupInterval is how often the background sweep runs.
const cleanupInterval = 5 * time.Minute

// Entry represents a cached item with expiration.
type Entry struct {
	Data      interface{}
	ExpiresAt time.Time
}

// Cache is a thread-safe in-memory cache with TTL support.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]Entry
	ttl     time.Duration

	statsMu   sync.Mutex
	hits      int64
	misses    int64
	evictions int64

	stop chan struct{}
}

// Stats is a snapshot of cache performance counters.
type Stats struct {
	Hits      int64 `json:"hits"`
	Misses    int64 `json:"misses"`
	Evictions int64 `json:"evictions"`
	Keys      int   `json:"keys"`
}

// New creates a cache with the given default TTL and starts the
// background cleanup goroutine. Call Close to stop it.
func New(ttl time.Duration) *Cache {
	c := &Cache{
		entries: make(map[string]Entry),
		ttl:     ttl,
		stop:    make(chan struct{}),
	}

	go c.cleanupLoop()

	return c
}

// Get retrieves a value by key. Expired entries are removed on access and
// counted as misses.
func (c *Cache) Get(key string) (interface{}, bool) {
	c.mu.RLock()
	entry, exists := c.entries[key]
	c.mu.RUnlock()

	if !exists {
		c.recordMiss()
		return nil, false
	}

	if time.Now().After(entry.ExpiresAt) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		c.recordMiss()
		c.recordEviction()
		return nil, false
	}

	c.recordHit()
	return entry.Data, true
}

// Set stores a value with the default TTL.
func (c *Cache) Set(key string, value interface{}) {
	c.SetWithTTL(key, value, c.ttl)
}

// SetWithTTL stores a value with a custom TTL.
func (c *Cache) SetWithTTL(key string, value interface{}, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = Entry{
		Data:      value,
		ExpiresAt: time.Now().Add(ttl),
	}
}

// Delete removes a key from the cache.
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Clear removes all entries.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]Entry)
}

// GetStats returns a snapshot of cache counters.
func (c *Cache) GetStats() Stats {
	c.statsMu.Lock()
	s := Stats{Hits: c.hits, Misses: c.misses, Evictions: c.evictions}
	c.statsMu.Unlock()

	c.mu.RLock()
	s.Keys = len(c.entries)
	c.mu.RUnlock()

	return s
}

// HitRate returns the cache hit rate as a percentage.
func (c *Cache) HitRate() float64 {
	c.statsMu.Lock()
	defer c.statsMu.Unlock()

	total := c.hits + c.misses
	if total == 0 {
		return 0
	}
	return float64(c.hits) / float64(total) * 100
}

// Close stops the background cleanup goroutine.
func (c *Cache) Close() {
	close(c.stop)
}

// cleanupLoop periodically removes expired entries.
func (c *Cache) cleanupLoop() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.removeExpired()
		case <-c.stop:
			return
		}
	}
}

// removeExpired sweeps all expired entries.
func (c *Cache) removeExpired() {
	now := time.Now()

	c.mu.Lock()
	removed := 0
	for key, entry := range c.entries {
		if now.After(entry.ExpiresAt) {
			delete(c.entries, key)
			removed++
		}
	}
	c.mu.Unlock()

	if removed > 0 {
		c.statsMu.Lock()
		c.evictions += int64(removed)
		c.statsMu.Unlock()
	}
}

func (c *Cache) recordHit() {
	c.statsMu.Lock()
	c.hits++
	c.statsMu.Unlock()
}

func (c *Cache) recordMiss() {
	c.statsMu.Lock()
	c.misses++
	c.statsMu.Unlock()
}

func (c *Cache) recordEviction() {
	c.statsMu.Lock()
	c.evictions++
	c.statsMu.Unlock()
}

// Fingerprint derives a stable cache key from a method name and the
// normalized request parameters. Parameters are serialized to JSON and
// hashed, so identical inputs always map to the same key.
func Fingerprint(method string, params interface{}) string {
	data, err := json.Marshal(params)
	if err != nil {
		// Fallback to a non-hashed key; still deterministic for fmt-printable params.
		return fmt.Sprintf("%s:%v", method, params)
	}

	hash := sha256.Sum256(data)
	return fmt.Sprintf("%s:%x", method, hash[:16])
}
