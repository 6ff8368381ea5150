package collection

import (
	"context"
	"slices"
	"strconv"
	"time"

	"deceit/internal/domain/collection"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/singleflight"
)

// DefaultDrainTimeout bounds a shared drain once it no longer follows the
// context of the caller that started it.
const DefaultDrainTimeout = 30 * time.Second

type cachedDrain struct {
	records []collection.Record
	found   bool
}

// Cache keeps drained collections for a TTL and lets concurrent callers for
// the same collection share one drain.
type Cache struct {
	next         Drainer
	lru          *expirable.LRU[string, cachedDrain]
	group        singleflight.Group
	drainTimeout time.Duration
}

func NewCache(next Drainer, size int, ttl time.Duration) *Cache {
	if size <= 0 {
		size = 64
	}
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &Cache{
		next:         next,
		lru:          expirable.NewLRU[string, cachedDrain](size, nil, ttl),
		drainTimeout: DefaultDrainTimeout,
	}
}

func (c *Cache) Drain(ctx context.Context, q collection.Query) ([]collection.Record, bool, error) {
	key := q.ObjectID + "|" + strconv.Itoa(q.PageSize)
	if hit, ok := c.lru.Get(key); ok {
		return slices.Clone(hit.records), hit.found, nil
	}
	// The shared drain outlives any single caller; each caller only waits on
	// its own context.
	ch := c.group.DoChan(key, func() (any, error) {
		dctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.drainTimeout)
		defer cancel()
		records, found, err := c.next.Drain(dctx, q)
		if err != nil {
			return nil, err
		}
		d := cachedDrain{records: records, found: found}
		c.lru.Add(key, d)
		return d, nil
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, false, res.Err
		}
		d := res.Val.(cachedDrain)
		return slices.Clone(d.records), d.found, nil
	case <-ctx.Done():
		return nil, false, ctx.Err()
	}
}
