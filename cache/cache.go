package cache

import "sync"

// Cache is a bounded-capacity name-to-value store. See the package doc for
// the full contract. A Cache is non-copyable: it embeds mutexes, so copying
// a Cache value is a programming error (the embedded sync.RWMutex/sync.Mutex
// will be flagged by go vet's copylocks check).
type Cache struct {
	treeMu sync.RWMutex // guards the tree and all node fields except LRU pointers
	lruMu  sync.Mutex   // guards LRU pointer mutation performed by readers

	maxSize     int
	currentSize int

	root *node
	head *node
	tail *node
}

// New constructs a Cache with the given maximum number of entries. Capacity
// below 1 is clamped to 1 — an empty cache has no useful eviction policy.
func New(maxSize int) *Cache {
	if maxSize < 1 {
		maxSize = 1
	}
	return &Cache{
		maxSize: maxSize,
		root:    newNode(),
	}
}

// Update inserts or overwrites the value for name, or — if data is empty —
// invalidates (removes) name. Any successful Update counts as access and
// promotes the entry to the head of the LRU list, even when the stored
// value does not change (spec.md §9, Open Questions).
//
// Update never panics to its caller: an internal invariant violation is
// logged and swallowed, per spec.md §7's total propagation policy.
func (c *Cache) Update(name, data string) {
	defer func() {
		if r := recover(); r != nil {
			log.Errorw("update panicked, swallowing", "name", name, "recover", r)
		}
	}()

	if !inAlphabet(name) {
		log.Debugw("update rejected: key outside the 38-symbol alphabet", "name", name)
		return
	}

	c.treeMu.Lock()
	defer c.treeMu.Unlock()

	if data == "" {
		log.Debugw("invalidating entry", "name", name)
		c.removeLocked(name)
		return
	}

	entry := insertAt(&c.root, c.root, name, 0, data)

	hasSibling := entry.lruPrev != nil || entry.lruNext != nil
	switch {
	case !hasSibling && entry != c.head:
		c.currentSize++
	case entry == c.head && c.currentSize == 0:
		c.currentSize = 1
	}

	c.promote(entry)

	if c.currentSize > c.maxSize {
		c.evictTail()
	}
}

// Resolve returns the value stored for name, or "" if there is no hit or
// the key is outside the alphabet. A hit promotes the entry in the LRU
// list. Resolve never panics to its caller: a failure yields "".
func (c *Cache) Resolve(name string) (value string) {
	defer func() {
		if r := recover(); r != nil {
			log.Errorw("resolve panicked, swallowing", "name", name, "recover", r)
			value = ""
		}
	}()

	if !inAlphabet(name) {
		return ""
	}

	c.treeMu.RLock()
	defer c.treeMu.RUnlock()

	entry := lookup(c.root, name, 0)
	if entry == nil || !entry.hasValue() {
		return ""
	}

	c.lruMu.Lock()
	c.promote(entry)
	c.lruMu.Unlock()

	return entry.value
}

// removeLocked implements invalidation; callers must hold treeMu exclusively.
func (c *Cache) removeLocked(name string) {
	entry := lookup(c.root, name, 0)
	if entry == nil || !entry.hasValue() {
		return
	}
	c.removeNode(entry)
}

// Len reports the current number of valued entries. Exposed for tests and
// diagnostics; not part of spec.md's external interface.
func (c *Cache) Len() int {
	c.treeMu.RLock()
	defer c.treeMu.RUnlock()
	return c.currentSize
}
