package otp

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// NewCode generates a 6-digit numeric one-time code, zero-padded.
func NewCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
