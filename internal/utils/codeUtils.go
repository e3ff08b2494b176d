package utils

import (
	"crypto/rand"
	"math/big"
	"strconv"
)

const (
	codeMin  = 100000
	codeSpan = 900000
)

// GenerateVerificationCode returns a 6-digit numeric code drawn uniformly
// from [100000, 999999]. The keyspace is small, so the source must be
// crypto-strong to hold up against guessing within the attempt cap.
func GenerateVerificationCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(codeSpan))
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(n.Int64()+codeMin, 10), nil
}
