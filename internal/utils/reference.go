package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
)

// GenerateReferralCode creates a unique referral code
func GenerateReferralCode(length int) string {
	const charset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	result := make([]byte, length)

	for i := range result {
		n, _ := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		result[i] = charset[n.Int64()]
	}
	return string(result)
}

// GenerateTransactionReference creates a unique transaction reference
func GenerateTransactionReference(prefix string) string {
	timestamp := time.Now().Format("20060102150405")
	random := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return strings.ToUpper(fmt.Sprintf("%s_%s_%s", prefix, timestamp, random))
}
