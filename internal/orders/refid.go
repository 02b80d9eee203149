package orders

import (
	"crypto/rand"
	"encoding/base32"
	"fmt"
)

const refIDPrefix = "ORD-"

// NewRefID returns a human readable order reference such as ORD-K3QF7ZPA.
func NewRefID() (string, error) {
	var buf [5]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return "", fmt.Errorf("generate ref id: %w", err)
	}
	return refIDPrefix + base32.StdEncoding.EncodeToString(buf[:]), nil
}
