package cache

// Promote, Detach, and Evict implement spec.md §4.4. They operate directly
// on node.lruPrev/lruNext; the cache holds head/tail.

// promote moves n to the head of the LRU list (spec.md §4.4 Promote).
func (c *Cache) promote(n *node) {
	if c.head == nil {
		c.head = n
		c.tail = n
		return
	}
	if c.head == n {
		return
	}
	if n == c.tail {
		c.tail = n.lruPrev
	}
	if n.lruPrev != nil {
		n.lruPrev.lruNext = n.lruNext
	}
	if n.lruNext != nil {
		n.lruNext.lruPrev = n.lruPrev
	}

	n.lruNext = c.head
	c.head.lruPrev = n
	n.lruPrev = nil
	c.head = n
}

// lruDetach removes n from the LRU list entirely (spec.md §4.4 Detach).
func (c *Cache) lruDetach(n *node) {
	if n.lruPrev != nil {
		n.lruPrev.lruNext = n.lruNext
	} else if c.head == n {
		c.head = n.lruNext
	}
	if n.lruNext != nil {
		n.lruNext.lruPrev = n.lruPrev
	} else if c.tail == n {
		c.tail = n.lruPrev
	}
	n.lruPrev = nil
	n.lruNext = nil
}

// evictTail implements spec.md §4.4 Evict plus §4.5 step 4: the tail is
// removed from the LRU list and from the tree via the same §4.3 procedure
// used for an explicit removal, so tree and list stay consistent.
func (c *Cache) evictTail() {
	victim := c.tail
	if victim == nil {
		return
	}
	c.removeNode(victim)
}
