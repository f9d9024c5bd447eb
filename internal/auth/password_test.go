package auth

import (
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestHashAndCheckPassword(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("Passw0rd", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}
	if hash == "Passw0rd" {
		t.Fatal("hash must not equal the plaintext")
	}
	if !CheckPassword("Passw0rd", hash) {
		t.Fatal("CheckPassword rejected the correct password")
	}
	if CheckPassword("wrongpass", hash) {
		t.Fatal("CheckPassword accepted a wrong password")
	}
}

func TestHashPassword_SaltedPerCall(t *testing.T) {
	t.Parallel()

	first, err := HashPassword("Passw0rd", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}
	second, err := HashPassword("Passw0rd", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}
	if first == second {
		t.Fatal("two hashes of the same plaintext must differ")
	}
	if !CheckPassword("Passw0rd", first) || !CheckPassword("Passw0rd", second) {
		t.Fatal("both hashes must verify against the plaintext")
	}
}

func TestCheckPassword_ForeignFormat(t *testing.T) {
	t.Parallel()

	if CheckPassword("Passw0rd", "sha256:deadbeef") {
		t.Fatal("CheckPassword must reject non-bcrypt hashes")
	}
	if CheckPassword("Passw0rd", "") {
		t.Fatal("CheckPassword must reject an empty hash")
	}
}

func TestHashPassword_OutOfRangeCostFallsBack(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("Passw0rd", 99)
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}
	if !CheckPassword("Passw0rd", hash) {
		t.Fatal("hash produced with fallback cost must verify")
	}
}
