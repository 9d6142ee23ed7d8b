package utils

import (
	"errors"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("hunter2-but-longer", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if !VerifyPassword(hash, "hunter2-but-longer") {
		t.Fatal("correct password rejected")
	}
	if VerifyPassword(hash, "hunter3-but-longer") {
		t.Fatal("wrong password accepted")
	}
	if VerifyPassword("not-a-hash", "hunter2-but-longer") {
		t.Fatal("garbage hash accepted")
	}
}

func TestCheckPasswordPolicy(t *testing.T) {
	if err := CheckPasswordPolicy("8chars!!"); err != nil {
		t.Fatalf("minimum length rejected: %v", err)
	}
	if err := CheckPasswordPolicy("short"); !errors.Is(err, ErrPasswordTooShort) {
		t.Fatalf("short password: %v", err)
	}
	if err := CheckPasswordPolicy(strings.Repeat("a", 73)); !errors.Is(err, ErrPasswordTooLong) {
		t.Fatalf("over bcrypt's 72-byte input limit: %v", err)
	}
	if err := CheckPasswordPolicy(strings.Repeat("a", 72)); err != nil {
		t.Fatalf("72 bytes rejected: %v", err)
	}
}

func TestHashPasswordEnforcesPolicy(t *testing.T) {
	if _, err := HashPassword("short", bcrypt.MinCost); !errors.Is(err, ErrPasswordTooShort) {
		t.Fatalf("expected policy error, got %v", err)
	}
}
