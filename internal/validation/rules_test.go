package validation

import "testing"

func TestIsValidEmail(t *testing.T) {
	valid := []string{"user@example.com", "a@b.co", "Admin@Gmail.com"}
	for _, e := range valid {
		if !IsValidEmail(e) {
			t.Errorf("IsValidEmail(%q) = false, want true", e)
		}
	}

	invalid := []string{"", "a@b", "not-an-email", "user@", "@host.com"}
	for _, e := range invalid {
		if IsValidEmail(e) {
			t.Errorf("IsValidEmail(%q) = true, want false", e)
		}
	}
}

func TestNormalizeEmail(t *testing.T) {
	got := NormalizeEmail("  User@Example.COM ")
	if got != "user@example.com" {
		t.Fatalf("NormalizeEmail = %q, want user@example.com", got)
	}
}

func TestIsValidPhoneNumber(t *testing.T) {
	if !IsValidPhoneNumber("71234567") {
		t.Errorf("8-digit number must be valid")
	}
	for _, p := range []string{"", "1234567", "123456789", "7123456a", "7123 456"} {
		if IsValidPhoneNumber(p) {
			t.Errorf("IsValidPhoneNumber(%q) = true, want false", p)
		}
	}
}

func TestIsValidPassword(t *testing.T) {
	if !IsValidPassword("Secret#123") {
		t.Errorf("password with special char must be valid")
	}
	if IsValidPassword("Secret123") {
		t.Errorf("password without special char must be invalid")
	}
	if IsValidPassword("S#1") {
		t.Errorf("short password must be invalid")
	}
}

func TestIsValidFullName(t *testing.T) {
	if !IsValidFullName("John Doe") {
		t.Errorf("ordinary name must be valid")
	}
	if IsValidFullName("Jo") {
		t.Errorf("too short name must be invalid")
	}
}
