package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
)

// NewBarcode returns the opaque identifier printed on a physical
// ticket. It is independent of the seat's database identity and never
// changes once assigned.
func NewBarcode() string {
	return uuid.NewString()
}

// GenerateRequestID creates a short correlation ID for request logging.
func GenerateRequestID() string {
	timestamp := time.Now().Unix()
	randomNum, _ := rand.Int(rand.Reader, big.NewInt(999999))
	return fmt.Sprintf("req_%d_%06d", timestamp, randomNum.Int64())
}
