// Package netguard screens scrape targets before any bytes move. It rejects
// non-HTTP schemes, well-known local hostnames and hosts that resolve to
// loopback, link-local or private address space. The same screening runs
// again inside DialContext, pinning connections to vetted addresses so a
// DNS answer cannot change between validation and connect.
package netguard

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/use-agent/sift/config"
	"github.com/use-agent/sift/models"
)

// Hostnames rejected outright, before resolution.
var blockedHostnames = map[string]struct{}{
	"localhost": {},
	"127.0.0.1": {},
	"0.0.0.0":   {},
}

// Suffixes reserved for local naming (RFC 6762, RFC 6761 and common
// internal conventions).
var blockedSuffixes = []string{".localhost", ".local", ".internal"}

// 100.64.0.0/10 is carrier-grade NAT space, not covered by the net.IP
// classification helpers.
var cgnatNet = mustCIDR("100.64.0.0/10")

func mustCIDR(s string) *net.IPNet {
	_, n, err := net.ParseCIDR(s)
	if err != nil {
		panic(fmt.Sprintf("netguard: bad CIDR %q: %v", s, err))
	}
	return n
}

// Guard enforces the target policy for every outbound connection.
type Guard struct {
	allowPrivate bool
	resolver     *net.Resolver
	dialer       *net.Dialer
	timeout      time.Duration
}

// New creates a Guard from configuration.
func New(cfg config.GuardConfig) *Guard {
	return &Guard{
		allowPrivate: cfg.AllowPrivateHosts,
		resolver:     net.DefaultResolver,
		dialer:       &net.Dialer{Timeout: cfg.ConnectTimeout},
		timeout:      cfg.ConnectTimeout,
	}
}

// ValidateURL parses raw and screens the target. No bytes are fetched; the
// only side effect is a DNS lookup. On success the parsed URL is returned
// for the rest of the pipeline to use.
func (g *Guard) ValidateURL(ctx context.Context, raw string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, models.NewScrapeError(models.ErrCodeInvalidURL, models.MsgInvalidURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, models.NewScrapeError(models.ErrCodeInvalidURL, models.MsgInvalidURL,
			fmt.Errorf("unsupported scheme %q", u.Scheme))
	}
	if u.Hostname() == "" {
		return nil, models.NewScrapeError(models.ErrCodeInvalidURL, models.MsgInvalidURL,
			fmt.Errorf("missing host in %q", raw))
	}
	if err := g.CheckHost(ctx, u.Hostname()); err != nil {
		return nil, err
	}
	return u, nil
}

// CheckHost screens a single hostname: blocklist first, then resolution.
// Redirect hops go through here again before they are followed.
func (g *Guard) CheckHost(ctx context.Context, host string) error {
	if g.allowPrivate {
		return nil
	}
	if IsBlockedHostname(host) {
		return models.NewScrapeError(models.ErrCodeForbiddenTarget, models.MsgLocalTarget,
			fmt.Errorf("blocked hostname %q", host))
	}
	_, err := g.resolve(ctx, host)
	return err
}

// DialContext resolves addr's host, screens every resolved address and
// connects to one of the vetted addresses only. Plugging this into an
// http.Transport makes each connection re-checked, redirects included.
func (g *Guard) DialContext(ctx context.Context, network, addr string) (net.Conn, error) {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return nil, err
	}
	if g.allowPrivate {
		return g.dialer.DialContext(ctx, network, addr)
	}
	if IsBlockedHostname(host) {
		return nil, models.NewScrapeError(models.ErrCodeForbiddenTarget, models.MsgLocalTarget,
			fmt.Errorf("blocked hostname %q", host))
	}
	addrs, err := g.resolve(ctx, host)
	if err != nil {
		return nil, err
	}
	var lastErr error
	for _, a := range addrs {
		conn, err := g.dialer.DialContext(ctx, network, net.JoinHostPort(a.IP.String(), port))
		if err == nil {
			return conn, nil
		}
		lastErr = err
	}
	return nil, lastErr
}

// resolve looks up host and rejects the whole answer set if any address is
// forbidden. A multi-answer reply mixing public and private addresses is
// treated as hostile.
func (g *Guard) resolve(ctx context.Context, host string) ([]net.IPAddr, error) {
	lookupCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	addrs, err := g.resolver.LookupIPAddr(lookupCtx, host)
	if err != nil {
		return nil, models.NewScrapeError(models.ErrCodeFetchFailed, models.MsgFetchFailed,
			fmt.Errorf("resolve %q: %w", host, err))
	}
	if len(addrs) == 0 {
		return nil, models.NewScrapeError(models.ErrCodeFetchFailed, models.MsgFetchFailed,
			fmt.Errorf("resolve %q: empty answer", host))
	}
	for _, a := range addrs {
		if IsForbiddenIP(a.IP) {
			return nil, models.NewScrapeError(models.ErrCodeForbiddenTarget, models.MsgPrivateTarget,
				fmt.Errorf("host %q resolves to %s", host, a.IP))
		}
	}
	return addrs, nil
}

// IsBlockedHostname reports whether host is a well-known local name.
func IsBlockedHostname(host string) bool {
	host = strings.ToLower(strings.TrimSuffix(host, "."))
	if _, ok := blockedHostnames[host]; ok {
		return true
	}
	for _, suffix := range blockedSuffixes {
		if strings.HasSuffix(host, suffix) {
			return true
		}
	}
	return false
}

// IsForbiddenIP reports whether ip falls in address space the service must
// never touch: loopback, unspecified, private (RFC 1918 and fc00::/7),
// link-local (169.254.0.0/16 including the cloud metadata endpoint, and
// fe80::/10), multicast, or carrier-grade NAT.
func IsForbiddenIP(ip net.IP) bool {
	if ip4 := ip.To4(); ip4 != nil {
		ip = ip4
	}
	return ip.IsLoopback() ||
		ip.IsUnspecified() ||
		ip.IsPrivate() ||
		ip.IsLinkLocalUnicast() ||
		ip.IsLinkLocalMulticast() ||
		ip.IsMulticast() ||
		cgnatNet.Contains(ip)
}
