package netguard

import (
	"context"
	"errors"
	"net"
	"testing"

	"github.com/use-agent/sift/config"
	"github.com/use-agent/sift/models"
)

func testGuard() *Guard {
	return New(config.GuardConfig{})
}

func scrapeErrCode(t *testing.T, err error) string {
	t.Helper()
	var se *models.ScrapeError
	if !errors.As(err, &se) {
		t.Fatalf("expected *models.ScrapeError, got %T: %v", err, err)
	}
	return se.Code
}

func TestValidateURL_RejectsNonHTTPSchemes(t *testing.T) {
	g := testGuard()
	for _, raw := range []string{
		"ftp://example.com/file",
		"javascript:alert(1)",
		"file:///etc/passwd",
		"example.com/no-scheme",
		"://broken",
		"",
	} {
		_, err := g.ValidateURL(context.Background(), raw)
		if err == nil {
			t.Errorf("ValidateURL(%q): expected error, got nil", raw)
			continue
		}
		if code := scrapeErrCode(t, err); code != models.ErrCodeInvalidURL {
			t.Errorf("ValidateURL(%q): code = %s, want %s", raw, code, models.ErrCodeInvalidURL)
		}
	}
}

func TestValidateURL_RejectsLocalHostnames(t *testing.T) {
	g := testGuard()
	for _, raw := range []string{
		"http://localhost/admin",
		"http://localhost:8080/",
		"https://127.0.0.1/secrets",
		"http://0.0.0.0:9000/",
		"http://db.internal/",
		"http://printer.local/",
		"http://sub.localhost/x",
		"http://LOCALHOST/upper",
	} {
		_, err := g.ValidateURL(context.Background(), raw)
		if err == nil {
			t.Errorf("ValidateURL(%q): expected error, got nil", raw)
			continue
		}
		var se *models.ScrapeError
		if !errors.As(err, &se) {
			t.Fatalf("ValidateURL(%q): expected *models.ScrapeError, got %T", raw, err)
		}
		if se.Code != models.ErrCodeForbiddenTarget {
			t.Errorf("ValidateURL(%q): code = %s, want %s", raw, se.Code, models.ErrCodeForbiddenTarget)
		}
		if se.Message != models.MsgLocalTarget {
			t.Errorf("ValidateURL(%q): message = %q, want %q", raw, se.Message, models.MsgLocalTarget)
		}
	}
}

func TestValidateURL_RejectsPrivateAddressLiterals(t *testing.T) {
	g := testGuard()
	for _, raw := range []string{
		"http://10.0.0.8/",
		"http://172.16.5.5/",
		"http://192.168.1.1/router",
		"http://169.254.169.254/latest/meta-data/",
		"http://100.64.0.1/",
		"http://[::1]/",
		"http://[fd00::1]/",
		"http://[fe80::1]/",
	} {
		_, err := g.ValidateURL(context.Background(), raw)
		if err == nil {
			t.Errorf("ValidateURL(%q): expected error, got nil", raw)
			continue
		}
		var se *models.ScrapeError
		if !errors.As(err, &se) {
			t.Fatalf("ValidateURL(%q): expected *models.ScrapeError, got %T", raw, err)
		}
		if se.Code != models.ErrCodeForbiddenTarget {
			t.Errorf("ValidateURL(%q): code = %s, want %s", raw, se.Code, models.ErrCodeForbiddenTarget)
		}
		if se.Message != models.MsgPrivateTarget {
			t.Errorf("ValidateURL(%q): message = %q, want %q", raw, se.Message, models.MsgPrivateTarget)
		}
	}
}

func TestValidateURL_AllowPrivateHosts(t *testing.T) {
	g := New(config.GuardConfig{AllowPrivateHosts: true})
	for _, raw := range []string{
		"http://127.0.0.1:8080/page",
		"http://localhost/dev",
		"http://10.0.0.8/",
	} {
		u, err := g.ValidateURL(context.Background(), raw)
		if err != nil {
			t.Errorf("ValidateURL(%q): unexpected error: %v", raw, err)
			continue
		}
		if u == nil {
			t.Errorf("ValidateURL(%q): nil URL", raw)
		}
	}

	// Scheme validation still applies.
	if _, err := g.ValidateURL(context.Background(), "ftp://127.0.0.1/"); err == nil {
		t.Error("ValidateURL(ftp://127.0.0.1/): expected error with AllowPrivateHosts, got nil")
	}
}

func TestDialContext_RefusesForbiddenAddress(t *testing.T) {
	g := testGuard()
	_, err := g.DialContext(context.Background(), "tcp", "192.168.0.10:80")
	if err == nil {
		t.Fatal("DialContext to private address: expected error, got nil")
	}
	if code := scrapeErrCode(t, err); code != models.ErrCodeForbiddenTarget {
		t.Errorf("DialContext code = %s, want %s", code, models.ErrCodeForbiddenTarget)
	}
}

func TestIsBlockedHostname(t *testing.T) {
	tests := []struct {
		host string
		want bool
	}{
		{"localhost", true},
		{"LocalHost", true},
		{"localhost.", true},
		{"127.0.0.1", true},
		{"0.0.0.0", true},
		{"api.internal", true},
		{"nas.local", true},
		{"dev.localhost", true},
		{"example.com", false},
		{"internal.example.com", false},
		{"localhost.example.com", false},
	}
	for _, tt := range tests {
		if got := IsBlockedHostname(tt.host); got != tt.want {
			t.Errorf("IsBlockedHostname(%q) = %v, want %v", tt.host, got, tt.want)
		}
	}
}

func TestIsForbiddenIP(t *testing.T) {
	tests := []struct {
		ip   string
		want bool
	}{
		{"127.0.0.1", true},
		{"127.8.8.8", true},
		{"0.0.0.0", true},
		{"10.0.0.5", true},
		{"172.16.0.1", true},
		{"172.31.255.255", true},
		{"172.32.0.1", false},
		{"192.168.1.1", true},
		{"169.254.0.1", true},
		{"169.254.169.254", true},
		{"100.64.0.1", true},
		{"100.127.255.255", true},
		{"100.128.0.1", false},
		{"224.0.0.1", true},
		{"8.8.8.8", false},
		{"93.184.216.34", false},
		{"::1", true},
		{"::", true},
		{"fe80::1", true},
		{"fc00::1", true},
		{"fd12:3456::1", true},
		{"ff02::fb", true},
		{"2606:4700:4700::1111", false},
		{"::ffff:192.168.0.1", true},
		{"::ffff:8.8.8.8", false},
	}
	for _, tt := range tests {
		ip := net.ParseIP(tt.ip)
		if ip == nil {
			t.Fatalf("bad test IP %q", tt.ip)
		}
		if got := IsForbiddenIP(ip); got != tt.want {
			t.Errorf("IsForbiddenIP(%s) = %v, want %v", tt.ip, got, tt.want)
		}
	}
}
