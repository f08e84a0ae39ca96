package webhook

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/use-agent/sift/config"
	"github.com/use-agent/sift/netguard"
)

func testNotifier(t *testing.T, secret string) *Notifier {
	t.Helper()
	guard := netguard.New(config.GuardConfig{
		AllowPrivateHosts: true,
		ConnectTimeout:    5 * time.Second,
	})
	return NewNotifier(config.WebhookConfig{
		Secret:  secret,
		Timeout: 5 * time.Second,
	}, guard)
}

func TestDeliver_SignsBody(t *testing.T) {
	var (
		gotBody []byte
		gotSig  string
		gotUA   string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotBody, _ = io.ReadAll(r.Body)
		gotSig = r.Header.Get("X-Sift-Signature")
		gotUA = r.Header.Get("User-Agent")
	}))
	defer srv.Close()

	n := testNotifier(t, "s3cret")
	event := &Event{Type: "batch.completed", Timestamp: 1700000000, Data: map[string]int{"total": 3}}
	if err := n.Deliver(context.Background(), srv.URL, event); err != nil {
		t.Fatalf("Deliver: %v", err)
	}

	mac := hmac.New(sha256.New, []byte("s3cret"))
	mac.Write(gotBody)
	want := "sha256=" + hex.EncodeToString(mac.Sum(nil))
	if gotSig != want {
		t.Errorf("signature = %q, want %q", gotSig, want)
	}
	if gotUA != "Sift-Webhook/1.0" {
		t.Errorf("user agent = %q", gotUA)
	}

	var back Event
	if err := json.Unmarshal(gotBody, &back); err != nil {
		t.Fatalf("body is not valid JSON: %v", err)
	}
	if back.Type != "batch.completed" || back.Timestamp != 1700000000 {
		t.Errorf("event round trip = %+v", back)
	}
}

func TestDeliver_NoSecretSkipsSignature(t *testing.T) {
	var gotSig string
	var present bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSig = r.Header.Get("X-Sift-Signature")
		_, present = r.Header["X-Sift-Signature"]
	}))
	defer srv.Close()

	n := testNotifier(t, "")
	if err := n.Deliver(context.Background(), srv.URL, &Event{Type: "batch.completed"}); err != nil {
		t.Fatalf("Deliver: %v", err)
	}
	if present {
		t.Errorf("signature header should be absent, got %q", gotSig)
	}
}

func TestDeliver_EndpointError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	n := testNotifier(t, "")
	if err := n.Deliver(context.Background(), srv.URL, &Event{Type: "batch.completed"}); err == nil {
		t.Fatal("expected error for 500 response")
	}
}

func TestDeliver_GuardBlocksPrivateEndpoint(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("guarded notifier must not reach a loopback endpoint")
	}))
	defer srv.Close()

	guard := netguard.New(config.GuardConfig{ConnectTimeout: 5 * time.Second})
	n := NewNotifier(config.WebhookConfig{Timeout: 5 * time.Second}, guard)
	if err := n.Deliver(context.Background(), srv.URL, &Event{Type: "batch.completed"}); err == nil {
		t.Fatal("expected delivery to a loopback address to fail")
	}
}
