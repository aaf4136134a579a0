// Package dnsmsg is the only part of this module that knows about DNS wire
// format. It parses queries and packs answers with github.com/miekg/dns,
// and derives the flat cache key/value strings that package cache stores.
//
// The cache core treats keys and values as opaque strings (spec.md's key
// alphabet aside); wire encoding, RR construction, and message framing all
// live here so the core never has to change when the record model does.
package dnsmsg

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/miekg/dns"
)

// MaxUDPSize is the classic 512-byte DNS-over-UDP message size, used by
// cmd/radixdnsd as the read buffer for incoming UDP queries. Reply does not
// truncate responses to this size.
const MaxUDPSize = 512

// ParseQuery unpacks a raw DNS query datagram.
func ParseQuery(raw []byte) (*dns.Msg, error) {
	msg := new(dns.Msg)
	if err := msg.Unpack(raw); err != nil {
		return nil, fmt.Errorf("dnsmsg: unpack query: %w", err)
	}
	if len(msg.Question) == 0 {
		return nil, fmt.Errorf("dnsmsg: query carries no question")
	}
	return msg, nil
}

// CacheKey builds the cache key for a question: the lowercase, dot-terminated
// domain name followed by a '-' separator and the record type in base36, so
// the suffix stays inside the cache's [a-z][0-9][-.] alphabet. Name bytes
// are only lowercased: a name containing any other byte (such as '_')
// yields a key that package cache rejects.
func CacheKey(q dns.Question) string {
	name := strings.ToLower(dns.Fqdn(q.Name))
	return name + "-" + strconv.FormatUint(uint64(q.Qtype), 36)
}

// EncodeAnswer packs a set of answer records into the flat string the cache
// stores as a value. An empty rrs slice encodes to the empty string, which
// package cache treats as "no entry" (spec.md's invalidation semantics) —
// callers must not cache negative answers this way.
func EncodeAnswer(rrs []dns.RR) (string, error) {
	if len(rrs) == 0 {
		return "", nil
	}
	msg := new(dns.Msg)
	msg.Answer = rrs
	packed, err := msg.Pack()
	if err != nil {
		return "", fmt.Errorf("dnsmsg: pack answer: %w", err)
	}
	return string(packed), nil
}

// DecodeAnswer is the inverse of EncodeAnswer.
func DecodeAnswer(value string) ([]dns.RR, error) {
	msg := new(dns.Msg)
	if err := msg.Unpack([]byte(value)); err != nil {
		return nil, fmt.Errorf("dnsmsg: unpack answer: %w", err)
	}
	return msg.Answer, nil
}

// Reply builds the wire response for query, filling in rrs as the answer
// section when non-empty, or NXDOMAIN when it is empty and blocked is
// false, or NOERROR/empty-answer when blocked is true (the resolver's
// convention for a block-listed name — spec.md draws no distinction between
// "blocked" and "not found" at the cache layer, so that policy lives here).
func Reply(query *dns.Msg, rrs []dns.RR, blocked bool) *dns.Msg {
	resp := new(dns.Msg)
	resp.SetReply(query)
	resp.Authoritative = false
	resp.RecursionAvailable = true

	switch {
	case len(rrs) > 0:
		resp.Answer = rrs
	case blocked:
		resp.Rcode = dns.RcodeSuccess
	default:
		resp.Rcode = dns.RcodeNameError
	}
	return resp
}
