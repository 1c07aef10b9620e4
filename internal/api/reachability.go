package api

import (
	"context"
	"net"
	"net/url"
	"time"
)

// Reachability reports whether the API can be contacted at all.
// It is consulted before every request so offline failures are reported
// without waiting on a transport timeout.
type Reachability interface {
	Reachable(ctx context.Context) bool
}

// ReachabilityFunc adapts a function to Reachability.
type ReachabilityFunc func(ctx context.Context) bool

// Reachable calls f.
func (f ReachabilityFunc) Reachable(ctx context.Context) bool { return f(ctx) }

// AlwaysReachable skips the connectivity check.
var AlwaysReachable Reachability = ReachabilityFunc(func(context.Context) bool { return true })

// DialReachability checks connectivity by opening a TCP connection to the API host.
type DialReachability struct {
	addr    string
	timeout time.Duration
}

// NewDialReachability builds a check for the host in u, filling the default
// port for the scheme when none is given.
func NewDialReachability(u *url.URL, timeout time.Duration) *DialReachability {
	host := u.Host
	if u.Port() == "" {
		port := "80"
		if u.Scheme == "https" {
			port = "443"
		}
		host = net.JoinHostPort(u.Hostname(), port)
	}
	return &DialReachability{addr: host, timeout: timeout}
}

// Reachable dials the host and closes the connection immediately.
func (d *DialReachability) Reachable(ctx context.Context) bool {
	dialer := net.Dialer{Timeout: d.timeout}
	conn, err := dialer.DialContext(ctx, "tcp", d.addr)
	if err != nil {
		return false
	}
	_ = conn.Close()
	return true
}
