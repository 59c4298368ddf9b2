// internal/owner/cache.go
//
// Read-through cache for owner rows on the public QR path.
//
// Context
// -------
// Every public token lookup needs the owner's display settings.  QR scans
// are the hot path (a printed code may be scanned far more often than the
// owner logs in), so the resolver reads owners through this cache instead of
// hitting the `owner` table per scan.  Entries load lazily behind a
// singleflight barrier, live in a sync.Map, and are dropped by a background
// sweep after an idle TTL.  Profile updates call Invalidate so stale flags
// never outlive one TTL.
//
// Notes
// -----
// • Cached Records are immutable; callers must not mutate them.
// • Oxford commas, two spaces after periods.
package owner

import (
	"context"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/apiarylabs/hivetag/internal/metrics"
)

// Static defaults; New takes explicit values so tests can shrink them.
const (
	CacheIdleTTL       = 10 * time.Minute
	CacheSweepInterval = time.Minute
)

type entry struct {
	rec      *Record
	lastSeen int64 // UnixNano
}

// Cache lazily loads owner rows and evicts them on idle TTL.
type Cache struct {
	repo        *Repo
	sfg         singleflight.Group
	m           sync.Map
	idleTTL     time.Duration
	sweepTicker *time.Ticker
}

// NewCache constructs a Cache and starts the background sweep.
func NewCache(repo *Repo, idleTTL, sweepEvery time.Duration) *Cache {
	c := &Cache{
		repo:    repo,
		idleTTL: idleTTL,
	}
	c.sweepTicker = time.NewTicker(sweepEvery)
	go c.sweepLoop()
	return c
}

// Get returns the owner row for id, loading it on demand.  Errors from the
// underlying repo (including ErrNotFound) are not cached.
func (c *Cache) Get(ctx context.Context, id int64) (*Record, error) {
	if v, ok := c.m.Load(id); ok {
		ent := v.(*entry)
		atomic.StoreInt64(&ent.lastSeen, time.Now().UnixNano())
		return ent.rec, nil
	}

	v, err, _ := c.sfg.Do(strconv.FormatInt(id, 10), func() (interface{}, error) {
		// Double-check after the singleflight barrier.
		if v, ok := c.m.Load(id); ok {
			ent := v.(*entry)
			atomic.StoreInt64(&ent.lastSeen, time.Now().UnixNano())
			return ent.rec, nil
		}
		rec, err := c.repo.ByID(ctx, id)
		if err != nil {
			return nil, err
		}
		c.m.Store(id, &entry{rec: rec, lastSeen: time.Now().UnixNano()})
		metrics.OwnerCacheLoadTotal.Inc()
		metrics.OwnerCacheEntries.Inc()
		return rec, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Record), nil
}

// Invalidate drops the cached row for id.  Called after every profile or
// display-settings update.
func (c *Cache) Invalidate(id int64) {
	if _, ok := c.m.LoadAndDelete(id); ok {
		metrics.OwnerCacheEntries.Dec()
	}
}

// Stop halts the background sweep.  Entries already cached stay readable.
func (c *Cache) Stop() { c.sweepTicker.Stop() }

func (c *Cache) sweepLoop() {
	for range c.sweepTicker.C {
		now := time.Now().UnixNano()
		c.m.Range(func(key, value any) bool {
			ent := value.(*entry)
			idle := time.Duration(now - atomic.LoadInt64(&ent.lastSeen))
			if idle > c.idleTTL {
				if _, ok := c.m.LoadAndDelete(key); ok {
					metrics.OwnerCacheEvictTotal.Inc()
					metrics.OwnerCacheEntries.Dec()
				}
			}
			return true
		})
	}
}
