package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword hashes a plaintext password using bcrypt.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(hash), err
}

// CheckPasswordHash compares a plaintext password with a bcrypt hash.
func CheckPasswordHash(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

const (
	upperChars   = "ABCDEFGHJKLMNPQRSTUVWXYZ"
	lowerChars   = "abcdefghijkmnpqrstuvwxyz"
	digitChars   = "23456789"
	specialChars = "!@#$%&*+-_?"
)

func randomChars(set string, n int) (string, error) {
	out := make([]byte, n)
	for i := range out {
		idx, err := rand.Int(rand.Reader, big.NewInt(int64(len(set))))
		if err != nil {
			return "", fmt.Errorf("failed to read random bytes: %w", err)
		}
		out[i] = set[idx.Int64()]
	}
	return string(out), nil
}

// GenerateTempPassword produces a random password that satisfies the
// password policy: at least 10 characters, a leading uppercase letter, at
// least two lowercase letters and at least two special characters.
func GenerateTempPassword() (string, error) {
	head, err := randomChars(upperChars, 1)
	if err != nil {
		return "", err
	}
	lower, err := randomChars(lowerChars, 4)
	if err != nil {
		return "", err
	}
	digits, err := randomChars(digitChars, 3)
	if err != nil {
		return "", err
	}
	specials, err := randomChars(specialChars, 2)
	if err != nil {
		return "", err
	}

	// Shuffle everything after the leading uppercase character.
	tail := []byte(lower + digits + specials)
	for i := len(tail) - 1; i > 0; i-- {
		j, err := rand.Int(rand.Reader, big.NewInt(int64(i+1)))
		if err != nil {
			return "", fmt.Errorf("failed to read random bytes: %w", err)
		}
		tail[i], tail[int(j.Int64())] = tail[int(j.Int64())], tail[i]
	}
	return head + string(tail), nil
}
