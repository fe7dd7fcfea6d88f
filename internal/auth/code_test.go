package auth

import (
	"testing"
	"time"
)

func TestNewCodeIssuer_EmptySecret(t *testing.T) {
	if _, err := NewCodeIssuer(""); err == nil {
		t.Fatalf("expected error for empty secret")
	}
}

func TestCodeIssuer_IssueRange(t *testing.T) {
	issuer, err := NewCodeIssuer("test-secret")
	if err != nil {
		t.Fatalf("NewCodeIssuer error: %v", err)
	}

	for i := 0; i < 100; i++ {
		code, tag, err := issuer.Issue()
		if err != nil {
			t.Fatalf("Issue error: %v", err)
		}
		if len(code) != 5 {
			t.Fatalf("code %q is not 5 digits", code)
		}
		if code[0] == '0' {
			t.Fatalf("code %q is below 10000", code)
		}
		if tag != issuer.Tag(code) {
			t.Fatalf("stored tag does not match code tag")
		}
	}
}

func TestCodeIssuer_VerifyWindow(t *testing.T) {
	issuer, err := NewCodeIssuer("test-secret")
	if err != nil {
		t.Fatalf("NewCodeIssuer error: %v", err)
	}

	issuedAt := time.Now()
	tag := issuer.Tag("48213")

	if !issuer.Verify("48213", tag, issuedAt, issuedAt.Add(299*time.Second)) {
		t.Fatalf("code must verify at t=299s")
	}
	if issuer.Verify("48213", tag, issuedAt, issuedAt.Add(301*time.Second)) {
		t.Fatalf("code must not verify at t=301s even when correct")
	}
}

func TestCodeIssuer_VerifyMismatch(t *testing.T) {
	issuer, err := NewCodeIssuer("test-secret")
	if err != nil {
		t.Fatalf("NewCodeIssuer error: %v", err)
	}

	now := time.Now()
	tag := issuer.Tag("48213")

	if issuer.Verify("48214", tag, now, now) {
		t.Fatalf("wrong code must not verify")
	}
	if issuer.Verify("48213", "", now, now) {
		t.Fatalf("empty stored tag must not verify")
	}

	other, err := NewCodeIssuer("other-secret")
	if err != nil {
		t.Fatalf("NewCodeIssuer error: %v", err)
	}
	if other.Verify("48213", tag, now, now) {
		t.Fatalf("tag from another secret must not verify")
	}
}
