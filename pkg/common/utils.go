package common

import (
	"math/rand"
	"time"
)

// GenerateRefNo returns a short human-readable reference for ledger
// entries created without an external reference.
func GenerateRefNo() string {
	const characters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	result := make([]byte, 10)
	for i := range result {
		result[i] = characters[r.Intn(len(characters))]
	}
	return string(result)
}
