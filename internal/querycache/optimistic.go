package querycache

import "context"

// Mutate runs an optimistic mutation against the cached value at key:
// the expected effect is applied before the remote call, and a failed
// call restores the exact prior value, the very snapshot that was
// cached, not a recomputed one.
//
// transform must return a new value rather than mutate its argument in
// place; an in-place mutation would corrupt the rollback snapshot.
func (c *Cache) Mutate(ctx context.Context, key string, transform func(interface{}) interface{}, call func(context.Context) error) error {
	snapshot, cached := c.store.Get(key)
	if cached {
		c.store.SetDefault(key, transform(snapshot))
	}

	if err := call(ctx); err != nil {
		if cached {
			c.store.SetDefault(key, snapshot)
		}
		if c.metrics != nil {
			c.metrics.OptimisticRollbacks.Inc()
		}
		return err
	}
	return nil
}
