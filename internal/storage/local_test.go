package storage

import (
	"net/url"
	"strings"
	"testing"
	"time"
)

func TestLocalSignerRoundTrip(t *testing.T) {
	signer, err := NewLocalSigner("http://localhost:3000/", "test-secret", time.Minute)
	if err != nil {
		t.Fatalf("NewLocalSigner() error = %v", err)
	}

	signed, expiresAt, err := signer.Sign("originals/evt-1/retrato.jpg")
	if err != nil {
		t.Fatalf("Sign() error = %v", err)
	}
	if !strings.HasPrefix(signed, "http://localhost:3000/media/") {
		t.Errorf("Sign() url = %q, want /media/ path under base URL", signed)
	}
	if remaining := time.Until(expiresAt); remaining <= 0 || remaining > time.Minute {
		t.Errorf("Sign() expiresAt %v outside TTL window", expiresAt)
	}

	parsed, err := url.Parse(signed)
	if err != nil {
		t.Fatalf("Sign() produced unparseable url: %v", err)
	}
	expires := parsed.Query().Get("expires")
	signature := parsed.Query().Get("signature")
	if expires == "" || signature == "" {
		t.Fatalf("Sign() url missing query params: %q", signed)
	}

	if !signer.Verify("originals/evt-1/retrato.jpg", expires, signature) {
		t.Error("Verify() = false for a freshly signed URL")
	}
}

func TestLocalSignerRejectsTampering(t *testing.T) {
	signer, err := NewLocalSigner("http://localhost:3000", "test-secret", time.Minute)
	if err != nil {
		t.Fatalf("NewLocalSigner() error = %v", err)
	}

	signed, _, err := signer.Sign("originals/evt-1/retrato.jpg")
	if err != nil {
		t.Fatalf("Sign() error = %v", err)
	}
	parsed, _ := url.Parse(signed)
	expires := parsed.Query().Get("expires")
	signature := parsed.Query().Get("signature")

	if signer.Verify("originals/evt-1/otra.jpg", expires, signature) {
		t.Error("Verify() = true for a different key")
	}
	if signer.Verify("originals/evt-1/retrato.jpg", expires, "deadbeef") {
		t.Error("Verify() = true for a forged signature")
	}
	if signer.Verify("originals/evt-1/retrato.jpg", "not-a-number", signature) {
		t.Error("Verify() = true for a malformed expiry")
	}
}

func TestLocalSignerRejectsExpired(t *testing.T) {
	signer, err := NewLocalSigner("http://localhost:3000", "test-secret", -time.Minute)
	if err != nil {
		t.Fatalf("NewLocalSigner() error = %v", err)
	}

	signed, _, err := signer.Sign("originals/evt-1/retrato.jpg")
	if err != nil {
		t.Fatalf("Sign() error = %v", err)
	}
	parsed, _ := url.Parse(signed)

	if signer.Verify("originals/evt-1/retrato.jpg", parsed.Query().Get("expires"), parsed.Query().Get("signature")) {
		t.Error("Verify() = true for an expired signature")
	}
}

func TestLocalSignerRequiresSecret(t *testing.T) {
	if _, err := NewLocalSigner("http://localhost:3000", "", time.Minute); err == nil {
		t.Error("NewLocalSigner() with empty secret should fail")
	}
}
