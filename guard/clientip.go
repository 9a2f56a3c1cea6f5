// Copyright 2025 The Rivaas Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package guard

import (
	"fmt"
	"net/http"
	"net/netip"
	"strings"
)

// ProxyOption configures [TrustedClientIP].
type ProxyOption func(*proxyConfig)

type proxyConfig struct {
	headers []string
	maxHops int
}

// WithProxyHeaders sets the headers consulted for the client address, in
// order of preference. The default is X-Forwarded-For then X-Real-IP.
func WithProxyHeaders(headers ...string) ProxyOption {
	return func(c *proxyConfig) {
		c.headers = headers
	}
}

// WithProxyMaxHops bounds how many trusted proxies are skipped when walking
// X-Forwarded-For. The default is 1.
func WithProxyMaxHops(n int) ProxyOption {
	return func(c *proxyConfig) {
		if n > 0 {
			c.maxHops = n
		}
	}
}

// TrustedClientIP returns a KeyFunc that resolves the client address through
// forwarding headers, but only when the immediate peer is inside one of the
// trusted CIDR ranges. Requests from other peers are keyed by [ClientIP].
func TrustedClientIP(cidrs []string, opts ...ProxyOption) (KeyFunc, error) {
	cfg := proxyConfig{
		headers: []string{"X-Forwarded-For", "X-Real-IP"},
		maxHops: 1,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	trusted := make([]netip.Prefix, 0, len(cidrs))
	for _, cidr := range cidrs {
		p, err := netip.ParsePrefix(strings.TrimSpace(cidr))
		if err != nil {
			return nil, fmt.Errorf("invalid trusted proxy %q: %w", cidr, err)
		}
		trusted = append(trusted, p.Masked())
	}

	isTrusted := func(addr netip.Addr) bool {
		addr = addr.Unmap()
		for _, p := range trusted {
			if p.Contains(addr) {
				return true
			}
		}
		return false
	}

	return func(head *http.Request) string {
		peer := ClientIP(head)
		addr, err := netip.ParseAddr(peer)
		if err != nil || !isTrusted(addr) {
			return peer
		}

		for _, name := range cfg.headers {
			v := head.Header.Get(name)
			if v == "" {
				continue
			}
			if http.CanonicalHeaderKey(name) == "X-Forwarded-For" {
				if ip, ok := forwardedFor(v, cfg.maxHops, isTrusted); ok {
					return ip
				}
				continue
			}
			if ip, err := netip.ParseAddr(strings.TrimSpace(v)); err == nil {
				return ip.Unmap().String()
			}
		}

		return peer
	}, nil
}

// forwardedFor walks an X-Forwarded-For chain from the right, skipping at
// most maxHops trusted proxies, and returns the first address that is not
// trusted. When the hop budget runs out the next address is used.
func forwardedFor(chain string, maxHops int, isTrusted func(netip.Addr) bool) (string, bool) {
	parts := strings.Split(chain, ",")

	hops := 0
	for i := len(parts) - 1; i >= 0; i-- {
		addr, err := netip.ParseAddr(strings.TrimSpace(parts[i]))
		if err != nil {
			return "", false
		}
		if !isTrusted(addr) || hops == maxHops {
			return addr.Unmap().String(), true
		}
		hops++
	}

	addr, err := netip.ParseAddr(strings.TrimSpace(parts[0]))
	if err != nil {
		return "", false
	}

	return addr.Unmap().String(), true
}
