package cache

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// walkKeys collects every key currently holding a non-empty value, by
// reconstructing full keys while traversing the tree — the Go analogue of
// spec.md §8's "tree traversal from root reconstructs exactly the set of
// currently stored keys".
func walkKeys(n *node, prefix string, out map[string]string) {
	name := prefix + n.edgeLabel
	if n.hasValue() {
		out[name] = n.value
	}
	for idx := 0; idx < alphabetSize; idx++ {
		child := n.children[idx]
		if child == nil {
			continue
		}
		walkKeys(child, name+string(symbolChar(uint8(idx))), out)
	}
}

// checkInvariants asserts every universal invariant from spec.md §8 against
// the cache's current internal state. Callers must not hold any lock.
func checkInvariants(t *testing.T, c *Cache) {
	t.Helper()

	c.treeMu.RLock()
	defer c.treeMu.RUnlock()

	var walkTree func(n *node, isRoot bool)
	valuedCount := 0

	walkTree = func(n *node, isRoot bool) {
		occupied := 0
		minSlot := uint8(noChild)
		for idx := 0; idx < alphabetSize; idx++ {
			child := n.children[idx]
			if child == nil {
				continue
			}
			occupied++
			if uint8(idx) < minSlot {
				minSlot = uint8(idx)
			}
			require.Equal(t, n, child.parent, "child's parent back-link must match traversal parent")
			require.Equal(t, uint8(idx), child.parentSlot, "child's parentSlot must match its actual slot")
			walkTree(child, false)
		}
		require.Equal(t, occupied, n.childCount, "childCount must equal populated slot count")
		require.Equal(t, minSlot, n.firstChildIndex, "firstChildIndex must equal the minimum populated slot")

		if !isRoot {
			require.False(t, n.childCount == 1 && !n.hasValue(),
				"no unary value-less chain should survive compaction")
		}

		if n.hasValue() {
			valuedCount++
		}
	}
	walkTree(c.root, true)

	require.Equal(t, valuedCount, c.currentSize, "currentSize must equal the number of valued nodes")
	require.LessOrEqual(t, c.currentSize, c.maxSize, "currentSize must never exceed maxSize")

	// LRU forward/backward traversal.
	forward := 0
	var prev *node
	for n := c.head; n != nil; n = n.lruNext {
		require.Equal(t, prev, n.lruPrev, "forward traversal must agree with backward links")
		prev = n
		forward++
	}
	require.Equal(t, c.tail, prev, "forward traversal must end at tail")

	backward := 0
	var next *node
	for n := c.tail; n != nil; n = n.lruPrev {
		require.Equal(t, next, n.lruNext, "backward traversal must agree with forward links")
		next = n
		backward++
	}
	require.Equal(t, c.head, next, "backward traversal must end at head")

	require.Equal(t, forward, backward, "forward and backward traversal lengths must match")
	require.Equal(t, c.currentSize, forward, "LRU list length must equal currentSize")
}
