package cache

// This file implements the radix tree's insertion, lookup, and removal
// algorithms. It is grounded on original_source/libs/dns_cache/cache.cpp's
// updateCache/insertChild/splitEntry/resolve/removeEntry/mergeChild, the
// authoritative (child-index-memoizing) variant per spec.md §1.
//
// Failure handling: nodes are spliced into the live tree as insertion
// proceeds (insertChild links a fresh, empty child into its slot before its
// edge label or value is set; splitEdge relinks the old node under the new
// intermediate before descending into the new branch). There is no rollback
// step. The only panic inside insertion is insertChild's out-of-alphabet
// check, which Update's alphabet validation keeps from firing, and Go offers
// no recovery from allocation failure. Update and Resolve wrap their bodies
// in a recover so an unexpected panic is swallowed rather than propagated to
// the caller; a panic in the middle of an insertion leaves the tree as it
// stood at that point.

// insertAt implements spec.md §4.1's four structural cases starting at n.
func insertAt(root **node, n *node, key string, position int, value string) *node {
	if n.edgeLabel != "" {
		prefix := commonPrefixLen(key[position:], n.edgeLabel)

		if prefix == 0 {
			// Case 1: split at L=0 — no character in common at all.
			return splitEdge(root, n, key, position, value, "")
		}

		nameLen := len(key) - position

		if prefix == len(n.edgeLabel) {
			if prefix == nameLen {
				// Case 2: full match.
				n.value = value
				return n
			}
			// Case 3: edge fully consumed, more of the key remains.
			return insertChild(root, n, key, position+prefix, value)
		}

		// Case 4: mismatch partway through the edge.
		return splitEdge(root, n, key, position+prefix, value, n.edgeLabel[:prefix])
	}

	if !n.hasValue() && !n.hasChildren() {
		// Empty leaf: absorb the remainder of the key directly.
		n.edgeLabel = key[position:]
		n.value = value
		return n
	}

	// No edge label, but already holds a value and/or has children: descend.
	return insertChild(root, n, key, position, value)
}

func insertChild(root **node, n *node, key string, position int, value string) *node {
	idx, ok := symbolIndex(key[position])
	if !ok {
		// Callers validate the alphabet before entering the tree; this is
		// an internal invariant violation, not a normal miss.
		panic("cache: key byte outside the 38-symbol alphabet")
	}

	child := n.children[idx]
	position++

	if child == nil {
		child = newNode()
		n.setChild(idx, child)
	}

	nameLen := len(key) - position
	if nameLen == 0 && child.edgeLabel == "" {
		child.value = value
		return child
	}
	return insertAt(root, child, key, position, value)
}

// splitEdge introduces a new intermediate node M carrying prefix, demoting n
// to a child of M (spec.md §4.1 case 4, "split mid-edge").
func splitEdge(root **node, n *node, key string, position int, value string, prefix string) *node {
	m := newNode()
	m.edgeLabel = prefix

	original := n.edgeLabel
	n.edgeLabel = original[len(prefix)+1:]

	parent := n.parent
	slot := n.parentSlot
	if parent != nil {
		parent.replaceChild(slot, m)
	} else {
		*root = m
		m.parent = nil
	}

	branchIdx, _ := symbolIndex(original[len(prefix)])
	m.setChild(branchIdx, n)

	nameLen := len(key) - position
	if nameLen == 0 {
		m.value = value
		return m
	}
	return insertChild(root, m, key, position, value)
}

// lookup implements spec.md §4.2. It returns nil on a miss instead of the
// spec's "fresh empty sentinel" — callers distinguish a hit from a miss by
// nil-ness rather than by an empty-valued placeholder node, which carries
// the identical information without an unused allocation.
func lookup(n *node, key string, position int) *node {
	nameLen := len(key) - position

	if n.edgeLabel != "" {
		prefix := commonPrefixLen(key[position:], n.edgeLabel)
		if prefix != len(n.edgeLabel) {
			return nil
		}
		if prefix == nameLen {
			return n
		}
		position += prefix
	} else if nameLen == 0 {
		return n
	}

	if position >= len(key) {
		return nil
	}

	idx, ok := symbolIndex(key[position])
	if !ok {
		return nil
	}
	child := n.children[idx]
	if child == nil {
		return nil
	}
	return lookup(child, key, position+1)
}

// removeNode implements spec.md §4.3: value clear, LRU detach, node
// elimination, and chain compaction. c is passed so the LRU list and
// currentSize counter stay in lockstep with the tree edit.
func (c *Cache) removeNode(n *node) {
	n.value = ""
	if !n.hasChildren() {
		n.edgeLabel = ""
	}
	c.lruDetach(n)
	c.currentSize--

	working := n
	var index uint8
	if working.parent != nil {
		index = working.childIndex()
		if !working.hasChildren() {
			parent := working.parent
			parent.clearChild(index)
			working = parent
			if working.parent != nil {
				index = working.childIndex()
			}
		}
	}
	mergeChild(&c.root, working, index)
}

// mergeChild absorbs working's sole remaining child when working itself
// holds no value (spec.md §4.3 step 4, "chain compaction").
func mergeChild(root **node, working *node, index uint8) {
	if working.childCount != 1 || working.hasValue() {
		return
	}

	chIdx := working.firstChildIndex
	child := working.children[chIdx]
	child.edgeLabel = working.edgeLabel + string(symbolChar(chIdx)) + child.edgeLabel

	if working.parent != nil {
		working.parent.replaceChild(index, child)
	} else {
		*root = child
		child.parent = nil
	}
}
