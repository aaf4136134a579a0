// Command radixdnsd runs the caching DNS server: a classic UDP listener plus
// a DNS-over-HTTPS endpoint, both backed by the same radix-LRU cache and
// block list. Structure follows the teacher's app/main.go and
// app/dohs/server.go, generalized to run both listeners from one process
// under one config and one logger.
package main

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"

	logging "github.com/ipfs/go-log/v2"

	"github.com/radixdns/radixcache/cache"
	"github.com/radixdns/radixcache/internal/blocklist"
	"github.com/radixdns/radixcache/internal/config"
	"github.com/radixdns/radixcache/internal/dnsmsg"
	"github.com/radixdns/radixcache/internal/resolver"
)

var log = logging.Logger("radixdnsd")

func main() {
	logging.SetLogLevel("*", "info")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalw("loading config", "err", err)
	}

	dnsCache := cache.New(cfg.CacheCapacity)
	blockList := blocklist.New(cfg.BlockListCapacity)
	if err := blockList.FetchDefault(cfg.BlockListFile); err != nil {
		log.Warnw("block list unavailable, continuing without it", "err", err)
	}

	res := resolver.New(dnsCache, blockList, []string{cfg.Upstream1, cfg.Upstream2})

	errCh := make(chan error, 2)
	go func() { errCh <- serveUDP(res, cfg.UDPPort) }()
	go func() { errCh <- serveDoH(res, dnsCache, cfg) }()

	for {
		if err := <-errCh; err != nil {
			log.Fatalw("server exited", "err", err)
		}
	}
}

// serveUDP runs the classic port-53-style resolver loop: read a datagram,
// resolve it, write the response back to the sender. Mirrors the teacher's
// app/main.go handleDNSRequest, but each query is handled on its own
// goroutine so one slow upstream lookup can't stall the others.
func serveUDP(res *resolver.Resolver, port int) error {
	addr := &net.UDPAddr{IP: net.IPv4zero, Port: port}
	conn, err := net.ListenUDP("udp", addr)
	if err != nil {
		return fmt.Errorf("udp listen: %w", err)
	}
	defer conn.Close()

	log.Infow("udp listener started", "addr", conn.LocalAddr())

	buf := make([]byte, dnsmsg.MaxUDPSize)
	for {
		n, source, err := conn.ReadFromUDP(buf)
		if err != nil {
			log.Errorw("udp read failed", "err", err)
			continue
		}

		raw := make([]byte, n)
		copy(raw, buf[:n])

		go func(raw []byte, source *net.UDPAddr) {
			query, err := dnsmsg.ParseQuery(raw)
			if err != nil {
				log.Debugw("dropping malformed query", "err", err, "source", source)
				return
			}

			reply := res.Resolve(context.Background(), query)
			packed, err := reply.Pack()
			if err != nil {
				log.Errorw("failed to pack reply", "err", err)
				return
			}
			if _, err := conn.WriteToUDP(packed, source); err != nil {
				log.Errorw("udp write failed", "err", err, "source", source)
			}
		}(raw, source)
	}
}

// serveDoH runs the DNS-over-HTTPS endpoint (RFC 8484), accepting queries
// via GET ?dns=<base64url> or POST application/dns-message, mirroring the
// teacher's app/dohs/server.go. It also exposes /debug/dump, the radix-LRU
// diagnostic dump from cache.Cache.Dump, the same way the original C++
// dump()/dumpCache() facility existed purely for operator inspection.
func serveDoH(res *resolver.Resolver, c *cache.Cache, cfg *config.Config) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/dns-query", dohHandler(res))
	mux.HandleFunc("/debug/dump", dumpHandler(c))

	addr := fmt.Sprintf(":%d", cfg.DoHPort)
	srv := &http.Server{Addr: addr, Handler: mux}

	if _, err := os.Stat(cfg.CertPath); err != nil {
		log.Warnw("no TLS certificate configured, DoH disabled", "cert_path", cfg.CertPath)
		return nil
	}

	log.Infow("doh listener started", "addr", addr)
	return srv.ListenAndServeTLS(cfg.CertPath, cfg.KeyPath)
}

func dohHandler(res *resolver.Resolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw, err := readDoHQuery(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		query, err := dnsmsg.ParseQuery(raw)
		if err != nil {
			http.Error(w, "malformed dns message", http.StatusBadRequest)
			return
		}

		reply := res.Resolve(r.Context(), query)
		packed, err := reply.Pack()
		if err != nil {
			http.Error(w, "failed to encode response", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/dns-message")
		_, _ = w.Write(packed)
	}
}

func dumpHandler(c *cache.Cache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		c.Dump(w)
	}
}

func readDoHQuery(r *http.Request) ([]byte, error) {
	switch r.Method {
	case http.MethodGet:
		encoded := r.URL.Query().Get("dns")
		if encoded == "" {
			return nil, fmt.Errorf("missing dns query parameter")
		}
		return base64URLDecode(encoded)
	case http.MethodPost:
		if r.Header.Get("Content-Type") != "application/dns-message" {
			return nil, fmt.Errorf("content-type must be application/dns-message")
		}
		defer r.Body.Close()
		body, err := io.ReadAll(io.LimitReader(r.Body, 65535))
		if err != nil {
			return nil, fmt.Errorf("reading body: %w", err)
		}
		return body, nil
	default:
		return nil, fmt.Errorf("method %s not allowed", r.Method)
	}
}

func base64URLDecode(s string) ([]byte, error) {
	if data, err := base64.RawURLEncoding.DecodeString(s); err == nil {
		return data, nil
	}
	return base64.URLEncoding.DecodeString(s)
}
