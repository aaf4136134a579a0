package cache

import (
	"fmt"
	"io"
	"strings"
)

// Dump writes a textual snapshot of the tree and LRU list to w, in the
// spirit of original_source/libs/dns_cache/cache.cpp's dump()/dumpCache()/
// dumpLinkedList(). It is a debug-only facility: spec.md §6 explicitly
// excludes diagnostic dumps from the stable interface, so this is never
// called from Update or Resolve.
func (c *Cache) Dump(w io.Writer) {
	c.treeMu.RLock()
	defer c.treeMu.RUnlock()

	fmt.Fprintf(w, "cache size: %d/%d\n", c.currentSize, c.maxSize)
	dumpNode(w, c.root, "", 1)
	fmt.Fprintln(w, strings.Repeat("-", 80))
	c.dumpLRU(w)
	fmt.Fprintln(w, strings.Repeat("-", 80))
}

func dumpNode(w io.Writer, n *node, name string, level int) {
	indent := strings.Repeat("\t", level)
	if n.edgeLabel != "" {
		fmt.Fprintf(w, "%s%s\n", indent, n.edgeLabel)
		name += n.edgeLabel
	}
	if n.hasValue() {
		fmt.Fprintf(w, "%s%s:%s\n", indent, name, n.value)
	}

	level++
	for idx := 0; idx < alphabetSize; idx++ {
		child := n.children[idx]
		if child == nil {
			continue
		}
		ch := symbolChar(uint8(idx))
		fmt.Fprintf(w, "%s%c\n", strings.Repeat("\t", level), ch)
		dumpNode(w, child, name+string(ch), level)
	}
}

func (c *Cache) dumpLRU(w io.Writer) {
	for n := c.head; n != nil; n = n.lruNext {
		fmt.Fprintf(w, " -> %s: %s\n", n.key(), n.value)
	}
}
