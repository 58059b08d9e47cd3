package auth

import "testing"

func TestPasswordHashAndCheck(t *testing.T) {
	hash, err := HashPassword("correct horse battery")
	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}
	if hash == "correct horse battery" {
		t.Fatal("expected hash to differ from the password")
	}

	if !CheckPassword(hash, "correct horse battery") {
		t.Fatal("expected matching password to verify")
	}
	if CheckPassword(hash, "wrong password") {
		t.Fatal("expected mismatched password to fail")
	}
}
