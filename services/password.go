package services

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"golang.org/x/crypto/bcrypt"
)

const (
	passwordLen  = 10
	symbols      = "!@#$%&*"
	upperLetters = "ABCDEFGHJKLMNPQRSTUVWXYZ"
	lowerLetters = "abcdefghijkmnopqrstuvwxyz"
	digits       = "23456789"
)

func randomIndex(n int) (int, error) {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0, err
	}
	return int(v.Int64()), nil
}

// GenerateSecurePassword returns a password with at least one character of every class.
// Look-alike characters are left out because admins read it out to employees. Do not log it.
func GenerateSecurePassword() (string, error) {
	classes := []string{upperLetters, lowerLetters, digits, symbols}
	all := upperLetters + lowerLetters + digits + symbols

	result := make([]byte, passwordLen)
	for i := range result {
		set := all
		if i < len(classes) {
			set = classes[i]
		}
		j, err := randomIndex(len(set))
		if err != nil {
			return "", err
		}
		result[i] = set[j]
	}
	for i := passwordLen - 1; i >= 1; i-- {
		j, err := randomIndex(i + 1)
		if err != nil {
			return "", fmt.Errorf("shuffle: %w", err)
		}
		result[i], result[j] = result[j], result[i]
	}
	return string(result), nil
}

func HashPassword(plain string) (string, error) {
	if plain == "" {
		return "", invalidf("password cannot be empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}
