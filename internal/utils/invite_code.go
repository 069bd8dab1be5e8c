// Package utils provides small, generic helper functions used across
// different layers of the application. These utilities are independent
// of domain or business logic.
package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// GenerateInviteCode generates a random invite code in the format
// XXXX-XXXX-XXXX (48 bits of entropy, hex-encoded).
func GenerateInviteCode() (string, error) {
	bytes := make([]byte, 6)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}

	h := hex.EncodeToString(bytes)
	return fmt.Sprintf("%s-%s-%s", h[0:4], h[4:8], h[8:12]), nil
}
