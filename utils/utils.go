package utils

import (
	"fmt"
	"math/rand"
	"time"
)

// GenerateCertificateNumber builds a human-readable unique certificate
// number. The random suffix keeps numbers unique even when two
// certificates are issued within the same second.
func GenerateCertificateNumber(userID, courseID uint) string {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	return fmt.Sprintf("CERT-%d-%d-%d-%04d", courseID, userID, time.Now().Unix(), rng.Intn(10000))
}
