// Copyright 2025 The sapdocs Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package live

import (
	"strings"
	"sync"
	"time"
)

// ttlCache is a concurrent response cache with per-entry expiry. Stale
// entries are never returned; they are dropped lazily on access.
type ttlCache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
	now     func() time.Time
}

type cacheEntry struct {
	hits      []Hit
	expiresAt time.Time
}

func newTTLCache() *ttlCache {
	return &ttlCache{
		entries: make(map[string]cacheEntry),
		now:     time.Now,
	}
}

func (c *ttlCache) get(key string) ([]Hit, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if c.now().After(e.expiresAt) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return nil, false
	}
	return e.hits, true
}

func (c *ttlCache) set(key string, hits []Hit, ttl time.Duration) {
	c.mu.Lock()
	c.entries[key] = cacheEntry{hits: hits, expiresAt: c.now().Add(ttl)}
	c.mu.Unlock()
}

// cacheKey joins the full request parameter set into one key.
func cacheKey(parts ...string) string {
	return strings.Join(parts, "|")
}
