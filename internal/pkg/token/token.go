package token

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/google/uuid"
)

const (
	codeMin   = 100000
	codeRange = 900000 // codes span [100000, 999999]
)

// NewVerificationToken returns the opaque token embedded in the emailed link.
func NewVerificationToken() string {
	return uuid.NewString()
}

// NewCode draws a 6-digit numeric code uniformly from 100000–999999.
func NewCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(codeRange))
	if err != nil {
		return "", fmt.Errorf("generate verification code: %w", err)
	}
	return fmt.Sprintf("%d", n.Int64()+codeMin), nil
}
