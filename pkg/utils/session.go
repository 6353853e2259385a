package utils

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// GenerateSessionID derives a stable session ID from caller fingerprint input.
// The hour component keeps anonymous sessions from living forever.
func GenerateSessionID(input string) string {
	hash := md5.Sum([]byte(input + fmt.Sprintf("%d", time.Now().Unix()/3600)))
	return hex.EncodeToString(hash[:])[:16]
}

// NewSessionID returns a fresh random session ID for callers without a fingerprint.
func NewSessionID() string {
	return "s_" + uuid.NewString()[:13]
}

// NewRequestID returns a unique ID for request tracing.
func NewRequestID() string {
	return uuid.NewString()
}

// ValidateSessionID checks that a fingerprint-derived session ID is well formed.
func ValidateSessionID(sessionID string) bool {
	if len(sessionID) != 16 {
		return false
	}
	_, err := hex.DecodeString(sessionID)
	return err == nil
}
