package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

// randomDigits returns a zero-padded string of n random decimal digits.
func randomDigits(n int) string {
	max := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(n)), nil)
	v, err := rand.Int(rand.Reader, max)
	if err != nil {
		// crypto/rand only fails when the platform source is broken.
		panic(fmt.Sprintf("random source unavailable: %v", err))
	}
	return fmt.Sprintf("%0*d", n, v)
}

// GenerateAccountNumber produces a candidate account number of the form
// ACC<year><6 digits>. Uniqueness is enforced by the caller against storage;
// numbers are never supplied by API callers and never reused.
func GenerateAccountNumber(now time.Time) string {
	return fmt.Sprintf("ACC%d%s", now.Year(), randomDigits(6))
}

// GenerateTransactionReference produces a candidate transaction reference of
// the form TXN<yyyymmdd><6 digits>. Uniqueness is enforced by the caller.
func GenerateTransactionReference(now time.Time) string {
	return fmt.Sprintf("TXN%s%s", now.Format("20060102"), randomDigits(6))
}

// GenerateVerificationCode produces a 6-digit SMS verification code.
func GenerateVerificationCode() string {
	return randomDigits(6)
}
