package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// GenerateAPIKey generates a random API key with the given prefix.
// Format: prefix_randomhex
// Example: lp_live_a1b2c3d4e5f6...
func GenerateAPIKey(prefix string) (string, error) {
	b := make([]byte, 32) // 64 char hex
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s_%s", prefix, hex.EncodeToString(b)), nil
}

// GenerateLiveKey generates a live API key: lp_live_xxx
func GenerateLiveKey() (string, error) {
	return GenerateAPIKey("lp_live")
}

// GenerateSandboxKey generates a sandbox API key: lp_sandbox_xxx
func GenerateSandboxKey() (string, error) {
	return GenerateAPIKey("lp_sandbox")
}

// GenerateCallbackSecret generates a client callback secret: lp_secret_xxx
func GenerateCallbackSecret() (string, error) {
	return GenerateAPIKey("lp_secret")
}
