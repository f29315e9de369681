package ratelimit

import (
	"net/http/httptest"
	"testing"
	"time"
)

func TestLimiter_AllowAndRemaining(t *testing.T) {
	l := New(3, time.Minute)

	for i := 0; i < 3; i++ {
		if !l.Allow("10.0.0.1") {
			t.Fatalf("attempt %d should be allowed", i+1)
		}
	}
	if l.Allow("10.0.0.1") {
		t.Error("fourth attempt should be blocked")
	}
	if got := l.Remaining("10.0.0.1"); got != 0 {
		t.Errorf("Remaining = %d, want 0", got)
	}
	if got := l.Remaining("10.0.0.2"); got != 3 {
		t.Errorf("fresh key Remaining = %d, want 3", got)
	}

	l.Reset("10.0.0.1")
	if !l.Allow("10.0.0.1") {
		t.Error("attempt after Reset should be allowed")
	}
}

func TestLoginLimiter_EmailNormalized(t *testing.T) {
	ll := NewLoginLimiterWithConfig(100, time.Minute, 2, time.Minute)

	req := httptest.NewRequest("POST", "/api/login", nil)
	req.RemoteAddr = "10.0.0.1:4000"

	if ok, _ := ll.Check(req, "lan@example.com"); !ok {
		t.Fatal("first attempt should pass")
	}
	// Case and whitespace variants count against the same account.
	if ok, _ := ll.Check(req, "  LAN@Example.COM "); !ok {
		t.Fatal("second attempt should pass")
	}
	ok, msg := ll.Check(req, "lan@example.com")
	if ok {
		t.Error("third attempt for the same account should be blocked")
	}
	if msg == "" {
		t.Error("blocked attempt should carry a client message")
	}

	ll.ResetEmail("Lan@example.com")
	if ok, _ := ll.Check(req, "lan@example.com"); !ok {
		t.Error("attempt after ResetEmail should pass")
	}
}

func TestLoginLimiter_IPLimit(t *testing.T) {
	ll := NewLoginLimiterWithConfig(2, time.Minute, 100, time.Minute)

	req := httptest.NewRequest("POST", "/api/login", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")

	ll.Check(req, "a@example.com")
	ll.Check(req, "b@example.com")
	if ok, _ := ll.Check(req, "c@example.com"); ok {
		t.Error("third attempt from one IP should be blocked regardless of email")
	}
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	req.RemoteAddr = "192.0.2.7:5123"
	if got := ClientIP(req); got != "192.0.2.7" {
		t.Errorf("ClientIP = %q, want 192.0.2.7", got)
	}

	req.Header.Set("X-Forwarded-For", "203.0.113.9, 192.0.2.7")
	if got := ClientIP(req); got != "203.0.113.9" {
		t.Errorf("ClientIP with XFF = %q, want 203.0.113.9", got)
	}
}
