// Package cache implements a bounded-capacity, in-process name-to-value
// cache backed by a compressed radix trie over a 38-symbol alphabet
// ([a-z][0-9][-.]) threaded with a doubly-linked LRU list. It is optimized
// for string keys sharing long common prefixes — canonically DNS names
// mapped to resolved addresses — and evicts the least-recently-used entry
// once capacity is exceeded.
//
// Update and Resolve are total: internal failures are swallowed and
// logged rather than surfaced to the caller, so the cache can always be
// treated as a best-effort collaborator.
package cache

import logging "github.com/ipfs/go-log/v2"

var log = logging.Logger("cache")
