package utils

import (
	"crypto/rand"
	"fmt"
)

// GenerateUUID generates a cryptographically secure UUID v4.
func GenerateUUID() (string, error) {
	uuid := make([]byte, 16)
	if _, err := rand.Read(uuid); err != nil {
		return "", err
	}

	// Set version (4) and variant bits
	uuid[6] = (uuid[6] & 0x0f) | 0x40
	uuid[8] = (uuid[8] & 0x3f) | 0x80

	return fmt.Sprintf("%x-%x-%x-%x-%x",
		uuid[0:4], uuid[4:6], uuid[6:8], uuid[8:10], uuid[10:]), nil
}

// MustGenerateUUID generates a UUID or panics on failure. Random generation
// failing indicates a broken system entropy source, which is fatal.
func MustGenerateUUID() string {
	id, err := GenerateUUID()
	if err != nil {
		panic(fmt.Sprintf("failed to generate UUID: %v", err))
	}
	return id
}
