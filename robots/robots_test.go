package robots

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/use-agent/sift/config"
	"github.com/use-agent/sift/netguard"
)

func testChecker(t *testing.T, agent string) *Checker {
	t.Helper()
	guard := netguard.New(config.GuardConfig{
		AllowPrivateHosts: true,
		ConnectTimeout:    time.Second,
	})
	return New(config.RobotsConfig{
		Agent:    agent,
		Timeout:  2 * time.Second,
		MaxBytes: 512 * 1024,
	}, "sift/1.0", guard)
}

func robotsServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/robots.txt" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func pageURL(t *testing.T, base, path string) *url.URL {
	t.Helper()
	u, err := url.Parse(base + path)
	if err != nil {
		t.Fatalf("parse %s%s: %v", base, path, err)
	}
	return u
}

func TestCheck_DisallowPrefix(t *testing.T) {
	srv := robotsServer(t, "User-agent: *\nDisallow: /blocked\n")
	c := testChecker(t, "sift")

	tests := []struct {
		path string
		want bool
	}{
		{"/blocked", false},
		{"/blocked/page", false},
		{"/open/page", true},
		{"/", true},
	}
	for _, tt := range tests {
		allowed, warning := c.Check(context.Background(), pageURL(t, srv.URL, tt.path))
		if allowed != tt.want {
			t.Errorf("Check(%s): allowed = %v, want %v", tt.path, allowed, tt.want)
		}
		if warning != "" {
			t.Errorf("Check(%s): unexpected warning %q", tt.path, warning)
		}
	}
}

func TestCheck_LongestMatchWins(t *testing.T) {
	srv := robotsServer(t, "User-agent: *\nDisallow: /dir\nAllow: /dir/open\n")
	c := testChecker(t, "sift")

	tests := []struct {
		path string
		want bool
	}{
		{"/dir/secret", false},
		{"/dir/open", true},
		{"/dir/open/deeper", true},
	}
	for _, tt := range tests {
		allowed, _ := c.Check(context.Background(), pageURL(t, srv.URL, tt.path))
		if allowed != tt.want {
			t.Errorf("Check(%s): allowed = %v, want %v", tt.path, allowed, tt.want)
		}
	}
}

func TestCheck_AgentSpecificGroup(t *testing.T) {
	srv := robotsServer(t, "User-agent: sift\nDisallow: /private\n\nUser-agent: *\nDisallow:\n")

	allowed, _ := testChecker(t, "sift").Check(context.Background(), pageURL(t, srv.URL, "/private/x"))
	if allowed {
		t.Error("agent sift: expected /private/x to be disallowed")
	}

	allowed, _ = testChecker(t, "otherbot").Check(context.Background(), pageURL(t, srv.URL, "/private/x"))
	if !allowed {
		t.Error("agent otherbot: expected /private/x to be allowed")
	}
}

func TestCheck_UnreachableAllowsWithWarning(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close() // connection refused from here on

	allowed, warning := testChecker(t, "sift").Check(context.Background(), pageURL(t, base, "/anything"))
	if !allowed {
		t.Error("unreachable robots.txt: expected allow")
	}
	if warning != unreachableWarning {
		t.Errorf("warning = %q, want %q", warning, unreachableWarning)
	}
}

func TestCheck_MissingRobotsAllowsSilently(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	t.Cleanup(srv.Close)

	allowed, warning := testChecker(t, "sift").Check(context.Background(), pageURL(t, srv.URL, "/page"))
	if !allowed {
		t.Error("404 robots.txt: expected allow")
	}
	if warning != "" {
		t.Errorf("404 robots.txt: unexpected warning %q", warning)
	}
}

func TestCheck_QueryStringMatched(t *testing.T) {
	srv := robotsServer(t, "User-agent: *\nDisallow: /search?q=\n")
	c := testChecker(t, "sift")

	allowed, _ := c.Check(context.Background(), pageURL(t, srv.URL, "/search?q=test"))
	if allowed {
		t.Error("expected /search?q=test to be disallowed")
	}
	allowed, _ = c.Check(context.Background(), pageURL(t, srv.URL, "/search"))
	if !allowed {
		t.Error("expected /search without query to be allowed")
	}
}

func TestCache_FetchesOriginOnce(t *testing.T) {
	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte("User-agent: *\nDisallow: /blocked\n"))
	}))
	t.Cleanup(srv.Close)

	rc := NewCache(testChecker(t, "sift"))

	for _, path := range []string{"/a", "/b", "/blocked/c"} {
		rc.Check(context.Background(), pageURL(t, srv.URL, path))
	}
	if got := hits.Load(); got != 1 {
		t.Errorf("robots.txt fetched %d times, want 1", got)
	}

	allowed, _ := rc.Check(context.Background(), pageURL(t, srv.URL, "/blocked/d"))
	if allowed {
		t.Error("cached policy: expected /blocked/d to be disallowed")
	}
}
