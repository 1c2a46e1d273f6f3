package directory

import (
	"context"
	"sort"
	"sync"
	"time"

	"meal-admin/models"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

const maxCachedEmployees = 50000

// Cache keeps the whole directory for a TTL and reloads all of it once stale.
type Cache struct {
	fetcher Fetcher
	ttl     time.Duration

	mu          sync.Mutex
	entries     *expirable.LRU[string, models.Employee]
	refreshedAt time.Time
	now         func() time.Time
}

func NewCache(fetcher Fetcher, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &Cache{
		fetcher: fetcher,
		ttl:     ttl,
		entries: expirable.NewLRU[string, models.Employee](maxCachedEmployees, nil, ttl),
		now:     time.Now,
	}
}

// Refresh reloads the full directory regardless of age.
func (c *Cache) Refresh(ctx context.Context) ([]models.Employee, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.refreshLocked(ctx)
}

func (c *Cache) refreshLocked(ctx context.Context) ([]models.Employee, error) {
	list, err := c.fetcher.FetchEmployees(ctx)
	if err != nil {
		return nil, err
	}
	c.entries.Purge()
	for _, e := range list {
		c.entries.Add(e.Code, e)
	}
	c.refreshedAt = c.now()
	return list, nil
}

func (c *Cache) staleLocked() bool {
	return c.refreshedAt.IsZero() || c.now().Sub(c.refreshedAt) >= c.ttl
}

// Employees returns the cached directory sorted by code, reloading it when stale.
func (c *Cache) Employees(ctx context.Context) ([]models.Employee, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.staleLocked() {
		if _, err := c.refreshLocked(ctx); err != nil {
			return nil, err
		}
	}
	list := c.entries.Values()
	sort.Slice(list, func(i, j int) bool { return list[i].Code < list[j].Code })
	return list, nil
}

// Lookup finds one employee by code, reloading a stale directory first.
func (c *Cache) Lookup(ctx context.Context, code string) (models.Employee, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.staleLocked() {
		if _, err := c.refreshLocked(ctx); err != nil {
			return models.Employee{}, false, err
		}
	}
	e, ok := c.entries.Get(code)
	return e, ok, nil
}
