// Package lookup holds the best-effort network checks adjacent to the
// scoring path: a DNS resolution probe and an RDAP registration-age
// lookup. Everything here runs under short timeouts and fails soft; a
// dead resolver or registry must never delay or fail a verdict.
package lookup

import (
	"context"
	"errors"
	"net"
	"time"
)

// DefaultProbeTimeout bounds one DNS probe.
const DefaultProbeTimeout = 1500 * time.Millisecond

// Prober answers "does this host resolve at all". It implements the
// heuristics HostProber contract: true on any uncertainty, false only
// on an authoritative not-found.
type Prober struct {
	resolver *net.Resolver
	timeout  time.Duration
}

// NewProber returns a Prober using the system resolver. timeout <= 0
// selects DefaultProbeTimeout.
func NewProber(timeout time.Duration) *Prober {
	if timeout <= 0 {
		timeout = DefaultProbeTimeout
	}
	return &Prober{resolver: net.DefaultResolver, timeout: timeout}
}

// Resolvable probes host. IP literals resolve trivially.
func (p *Prober) Resolvable(host string) bool {
	if host == "" {
		return true
	}
	if net.ParseIP(host) != nil {
		return true
	}

	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	_, err := p.resolver.LookupHost(ctx, host)
	if err == nil {
		return true
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) && dnsErr.IsNotFound {
		return false
	}
	// Timeouts and server failures are inconclusive; do not let a slow
	// resolver look like a phishing signal.
	return true
}
