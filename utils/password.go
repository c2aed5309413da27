package utils

import (
	"errors"
	"strings"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

const minimumPasswordLength = 8

var (
	ErrPasswordTooShort  = errors.New("Password is too short. Minimum size is 8.")
	ErrPasswordNoUpper   = errors.New("At least one upper-case letter expected.")
	ErrPasswordNoLower   = errors.New("At least one lower-case letter expected.")
	ErrPasswordNoDigit   = errors.New("At least one digit expected.")
	ErrPasswordHasSpaces = errors.New("Password must not contain spaces.")
)

// ValidatePassword checks the password policy and returns the first
// unsatisfied rule.
func ValidatePassword(password string) error {
	if len(password) < minimumPasswordLength {
		return ErrPasswordTooShort
	}
	if !strings.ContainsFunc(password, unicode.IsUpper) {
		return ErrPasswordNoUpper
	}
	if !strings.ContainsFunc(password, unicode.IsLower) {
		return ErrPasswordNoLower
	}
	if !strings.ContainsFunc(password, unicode.IsDigit) {
		return ErrPasswordNoDigit
	}
	if strings.Contains(password, " ") {
		return ErrPasswordHasSpaces
	}
	return nil
}

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// dummyHash is compared against when the user does not exist, so login always
// performs one bcrypt verification and leaks no timing signal on names.
var dummyHash, _ = HashPassword("dummy-password-for-timing-0")

func BurnPasswordCheck(password string) {
	_ = bcrypt.CompareHashAndPassword([]byte(dummyHash), []byte(password))
}
