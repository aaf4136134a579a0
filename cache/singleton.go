package cache

import "sync"

// DefaultCapacity is the compile-time capacity of the process-wide default
// cache.
// Configuration of this value is out of scope for the core (spec.md §1).
const DefaultCapacity = 10000

var (
	defaultOnce  sync.Once
	defaultCache *Cache
)

// Default returns the process-wide cache instance, initialized on first
// use. It behaves identically to any user-constructed *Cache; the core
// package never calls Default itself (spec.md §9, "Singleton").
func Default() *Cache {
	defaultOnce.Do(func() {
		defaultCache = New(DefaultCapacity)
	})
	return defaultCache
}
