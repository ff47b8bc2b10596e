package ui

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"

	"github.com/Yeicor/canvas-ui/internal"
	"github.com/subchen/go-trylock/v2"
)

// ErrNameMismatch is returned when the blob given for a canvas name was built for another canvas.
var ErrNameMismatch = errors.New("canvas name mismatch")

// tryLocker is the subset of go-trylock used here.
type tryLocker interface {
	Lock()
	Unlock()
	RLock()
	RUnlock()
	RTryLock(ctx context.Context) bool
}

// CacheStats are counters of the operations performed by a Cache since it was created.
type CacheStats struct {
	Entries            int
	Bytes              int // Texture memory held by live entries
	Creates, Updates   int
	Stale              int // Lookups whose blob was not newer than the applied version
	Malformed          int
	DimensionMismatch  int
	AllocationFailures int
	Releases           int
}

// Cache maps canvas names to their resources, creating and updating them on lookup.
// A single coarse lock guards every operation, so ClearAll may be called from any goroutine.
type Cache struct {
	alloc     Allocator
	lock      tryLocker
	resources map[string]*Resource
	stats     CacheStats
}

// NewCache creates an empty cache that allocates textures with alloc.
func NewCache(alloc Allocator) *Cache {
	return &Cache{
		alloc:     alloc,
		lock:      trylock.New(),
		resources: map[string]*Resource{},
	}
}

// GetOrUpdate returns the live resource for name, creating it from blob on first lookup or applying blob if its
// version is newer than the cached one.
//
// A malformed blob for an existing canvas is logged and the previous image is returned. A nil resource (with the
// error) means the canvas can't be drawn this frame.
func (c *Cache) GetOrUpdate(name string, width, height int, blob *Blob) (*Resource, error) {
	if blob == nil {
		return nil, fmt.Errorf("%w: canvas %q: nil blob", internal.ErrMalformedBlob, name)
	}
	if blob.Name != name {
		return nil, fmt.Errorf("%w: looked up %q with a blob for %q", ErrNameMismatch, name, blob.Name)
	}
	c.lock.Lock()
	defer c.lock.Unlock()
	res, ok := c.resources[name]
	if !ok {
		return c.create(name, width, height, blob)
	}
	if res.width != width || res.height != height {
		c.stats.DimensionMismatch++
		err := fmt.Errorf("%w: canvas %q is cached as %dx%d but was looked up as %dx%d", ErrDimensionMismatch,
			name, res.width, res.height, width, height)
		log.Println("[CanvasCache] ERROR:", err)
		return nil, err
	}
	status, err := res.UpdateIfNewer(blob)
	switch {
	case errors.Is(err, ErrDimensionMismatch):
		c.stats.DimensionMismatch++
		log.Println("[CanvasCache] ERROR:", err)
		return nil, err
	case err != nil:
		c.stats.Malformed++
		log.Println("[CanvasCache] WARNING: keeping version", res.version, "of", name+":", err)
	case status == Updated:
		c.stats.Updates++
	default:
		c.stats.Stale++
	}
	return res, nil
}

func (c *Cache) create(name string, width, height int, blob *Blob) (*Resource, error) {
	res, err := newResource(c.alloc, width, height, blob)
	if err != nil {
		switch {
		case errors.Is(err, ErrAllocationFailure):
			c.stats.AllocationFailures++
		case errors.Is(err, ErrDimensionMismatch):
			c.stats.DimensionMismatch++
		default:
			c.stats.Malformed++
		}
		log.Println("[CanvasCache] WARNING: can't create canvas", name+":", err)
		return nil, err
	}
	c.resources[name] = res
	c.stats.Creates++
	return res, nil
}

// TryGet returns the cached resource for name without creating or updating anything.
func (c *Cache) TryGet(name string) (*Resource, bool) {
	c.lock.RLock()
	defer c.lock.RUnlock()
	res, ok := c.resources[name]
	return res, ok
}

// ClearAll releases every resource and empties the cache. It is idempotent.
func (c *Cache) ClearAll() {
	c.lock.Lock()
	defer c.lock.Unlock()
	for _, res := range c.resources {
		if !res.released {
			c.stats.Releases++
		}
		res.Release()
	}
	c.resources = map[string]*Resource{}
}

// Len is the number of cached canvases.
func (c *Cache) Len() int {
	c.lock.RLock()
	defer c.lock.RUnlock()
	return len(c.resources)
}

// Names returns the cached canvas names, sorted.
func (c *Cache) Names() []string {
	c.lock.RLock()
	defer c.lock.RUnlock()
	res := make([]string, 0, len(c.resources))
	for name := range c.resources {
		res = append(res, name)
	}
	sort.Strings(res)
	return res
}

// Stats returns a copy of the counters.
func (c *Cache) Stats() CacheStats {
	c.lock.RLock()
	defer c.lock.RUnlock()
	return c.statsLocked()
}

// TryStats is like Stats but gives up when the lock can't be acquired before ctx is done.
func (c *Cache) TryStats(ctx context.Context) (CacheStats, bool) {
	if !c.lock.RTryLock(ctx) {
		return CacheStats{}, false
	}
	defer c.lock.RUnlock()
	return c.statsLocked(), true
}

func (c *Cache) statsLocked() CacheStats {
	s := c.stats
	s.Entries = len(c.resources)
	s.Bytes = 0
	for _, res := range c.resources {
		s.Bytes += res.Bytes()
	}
	return s
}
