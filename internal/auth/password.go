package auth

import (
	"errors"
	"strings"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

const PasswordSpecialChars = "!@#$%^&*()_+-=[]{}|;:,.<>?"

var (
	ErrPasswordDigit   = errors.New("password must contain at least one digit")
	ErrPasswordUpper   = errors.New("password must contain at least one upper-case letter")
	ErrPasswordSpecial = errors.New("password must contain at least one special character")
)

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

// CheckPasswordStrength reports the first missing character class. Length is checked by binding tags.
func CheckPasswordStrength(password string) error {
	if !strings.ContainsFunc(password, unicode.IsDigit) {
		return ErrPasswordDigit
	}
	if !strings.ContainsFunc(password, unicode.IsUpper) {
		return ErrPasswordUpper
	}
	if !strings.ContainsAny(password, PasswordSpecialChars) {
		return ErrPasswordSpecial
	}
	return nil
}
