package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/LautaroGarc/dardito/internal/constants"
)

// GenerateToken generates a random opaque credential token. The plaintext is
// handed to the user exactly once; only its bcrypt hash is stored.
func GenerateToken() (string, error) {
	bytes := make([]byte, constants.TokenBytes)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return hex.EncodeToString(bytes), nil
}
