// Package resolver answers DNS questions by checking the block list, then
// the radix-LRU cache, then falling back to a recursive upstream — the
// same three-step shape as the teacher's app/internal/dns.Lookup, rewired
// onto package cache and github.com/miekg/dns instead of the teacher's
// map-keyed cache and hand-rolled wire codec.
package resolver

import (
	"context"
	"fmt"
	"net"
	"time"

	logging "github.com/ipfs/go-log/v2"
	"github.com/miekg/dns"

	"github.com/radixdns/radixcache/cache"
	"github.com/radixdns/radixcache/internal/blocklist"
	"github.com/radixdns/radixcache/internal/dnsmsg"
)

var log = logging.Logger("resolver")

// Resolver holds the cache and block list shared across every query, plus
// the upstream servers consulted on a cache miss.
type Resolver struct {
	cache     *cache.Cache
	blockList *blocklist.List
	upstreams []string
	timeout   time.Duration
}

// New constructs a Resolver. upstreams are tried in order on a cache miss;
// at least one must be supplied by the caller.
func New(c *cache.Cache, bl *blocklist.List, upstreams []string) *Resolver {
	return &Resolver{
		cache:     c,
		blockList: bl,
		upstreams: upstreams,
		timeout:   2 * time.Second,
	}
}

// Resolve answers a single parsed query, consulting the block list, then
// the cache, then upstream in that order, and returns the wire-ready
// response message.
func (r *Resolver) Resolve(ctx context.Context, query *dns.Msg) *dns.Msg {
	question := query.Question[0]
	name := question.Name

	if r.blockList != nil && r.blockList.Blocked(name) {
		log.Debugw("blocked", "name", name)
		return dnsmsg.Reply(query, nil, true)
	}

	key := dnsmsg.CacheKey(question)

	if cached := r.cache.Resolve(key); cached != "" {
		rrs, err := dnsmsg.DecodeAnswer(cached)
		if err != nil {
			log.Errorw("corrupt cache entry, treating as miss", "name", name, "err", err)
		} else {
			log.Debugw("cache hit", "name", name, "qtype", question.Qtype)
			return dnsmsg.Reply(query, rrs, false)
		}
	}

	rrs, err := r.forward(ctx, query)
	if err != nil {
		log.Warnw("upstream resolution failed", "name", name, "err", err)
		return dnsmsg.Reply(query, nil, false)
	}

	if encoded, err := dnsmsg.EncodeAnswer(rrs); err != nil {
		log.Errorw("failed to encode answer for caching", "name", name, "err", err)
	} else if encoded != "" {
		r.cache.Update(key, encoded)
	}

	return dnsmsg.Reply(query, rrs, false)
}

// forward relays query to each configured upstream in turn, returning the
// first successful answer set.
func (r *Resolver) forward(ctx context.Context, query *dns.Msg) ([]dns.RR, error) {
	client := &dns.Client{Timeout: r.timeout}

	var lastErr error
	for _, upstream := range r.upstreams {
		target := withPort(upstream)

		resp, _, err := client.ExchangeContext(ctx, query.Copy(), target)
		if err != nil {
			lastErr = err
			continue
		}
		if resp.Rcode != dns.RcodeSuccess {
			lastErr = fmt.Errorf("upstream %s returned rcode %d", target, resp.Rcode)
			continue
		}
		return resp.Answer, nil
	}
	return nil, fmt.Errorf("all upstreams failed: %w", lastErr)
}

func withPort(addr string) string {
	if _, _, err := net.SplitHostPort(addr); err == nil {
		return addr
	}
	return net.JoinHostPort(addr, "53")
}
