package auth

import "testing"

func TestHashPassword_RoundTrip(t *testing.T) {
	// Минимальная стоимость, чтобы не замедлять тесты.
	digest, err := HashPassword("Secret#123", 4)
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}

	if !CheckPassword("Secret#123", digest) {
		t.Fatalf("correct password must verify")
	}
	if CheckPassword("Wrong#123", digest) {
		t.Fatalf("wrong password must not verify")
	}
}

func TestHashPassword_Salted(t *testing.T) {
	a, err := HashPassword("Secret#123", 4)
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}
	b, err := HashPassword("Secret#123", 4)
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}
	if a == b {
		t.Fatalf("two hashes of the same password must differ due to salt")
	}
}

func TestCheckPassword_MalformedDigest(t *testing.T) {
	if CheckPassword("Secret#123", "not-a-bcrypt-digest") {
		t.Fatalf("malformed digest must report false, not panic")
	}
	if CheckPassword("Secret#123", "") {
		t.Fatalf("empty digest must report false")
	}
}
