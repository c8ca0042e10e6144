package credentials

import "testing"

func TestHashAndCompare(t *testing.T) {
	hash, err := Hash("gate-pass-123")
	if err != nil {
		t.Fatalf("unexpected error hashing: %v", err)
	}
	if hash == "gate-pass-123" {
		t.Fatal("hash must not equal the plaintext password")
	}

	if err := Compare(hash, "gate-pass-123"); err != nil {
		t.Errorf("expected matching password to compare clean, got %v", err)
	}
	if err := Compare(hash, "wrong-pass"); err == nil {
		t.Error("expected mismatching password to fail")
	}
}

func TestHash_Salted(t *testing.T) {
	first, err := Hash("same-password")
	if err != nil {
		t.Fatalf("unexpected error hashing: %v", err)
	}
	second, err := Hash("same-password")
	if err != nil {
		t.Fatalf("unexpected error hashing: %v", err)
	}
	if first == second {
		t.Error("expected two hashes of the same password to differ (per-hash salt)")
	}
}
