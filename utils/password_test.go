package utils

import "testing"

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		want     error
	}{
		{"valid", "Password1", nil},
		{"too short", "Ab1", ErrPasswordTooShort},
		{"no upper", "password1", ErrPasswordNoUpper},
		{"no lower", "PASSWORD1", ErrPasswordNoLower},
		{"no digit", "Passwords", ErrPasswordNoDigit},
		{"spaces", "Pass word1", ErrPasswordHasSpaces},
		{"short beats other rules", "pass", ErrPasswordTooShort},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidatePassword(tt.password); got != tt.want {
				t.Errorf("ValidatePassword(%q) = %v, want %v", tt.password, got, tt.want)
			}
		})
	}
}

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("Password1")
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}
	if hash == "Password1" {
		t.Fatal("password stored in clear")
	}
	if !CheckPassword(hash, "Password1") {
		t.Error("correct password rejected")
	}
	if CheckPassword(hash, "Password2") {
		t.Error("wrong password accepted")
	}
}
