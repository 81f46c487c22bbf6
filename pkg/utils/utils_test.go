package utils

import (
	"strings"
	"testing"
)

func TestValidateUsername(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		username string
		wantErr  bool
	}{
		{"valid", "alice_42", false},
		{"minimum length", "abc", false},
		{"maximum length", strings.Repeat("a", 20), false},
		{"too short", "ab", true},
		{"too long", strings.Repeat("a", 21), true},
		{"leading underscore", "_alice", true},
		{"spaces", "ali ce", true},
		{"punctuation", "alice!", true},
		{"surrounding whitespace trimmed", "  alice  ", false},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			err := ValidateUsername(tc.username)
			if tc.wantErr && err == nil {
				t.Fatalf("ValidateUsername(%q) = nil, want error", tc.username)
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("ValidateUsername(%q) = %v, want nil", tc.username, err)
			}
		})
	}
}

func TestNormalizeUsername(t *testing.T) {
	t.Parallel()

	if got := NormalizeUsername("  AlIcE_42 "); got != "alice_42" {
		t.Fatalf("NormalizeUsername = %q, want %q", got, "alice_42")
	}
}

func TestPasswordHashRoundTrip(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("correct horse battery staple")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(hash, "$argon2id$v=19$") {
		t.Fatalf("unexpected hash format: %q", hash)
	}

	ok, err := VerifyPassword("correct horse battery staple", hash)
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("correct password rejected")
	}

	ok, err = VerifyPassword("wrong password", hash)
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Fatal("wrong password accepted")
	}
}

func TestVerifyPassword_BadFormat(t *testing.T) {
	t.Parallel()

	if _, err := VerifyPassword("x", "not-a-hash"); err == nil {
		t.Fatal("expected error for malformed hash")
	}
	if _, err := VerifyPassword("x", "$bcrypt$v=19$m=65536,t=3,p=2$c2FsdA$aGFzaA"); err == nil {
		t.Fatal("expected error for wrong algorithm")
	}
}
