package logger

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// HashMessage creates a short, privacy-preserving hash of a chat message.
// Log lines correlate pipeline steps for the same message without exposing
// what the user wrote.
func HashMessage(message string) string {
	hash := sha256.Sum256([]byte(message))
	return hex.EncodeToString(hash[:8])
}

// SanitizeText is a general-purpose sanitizer for user-provided text that
// would otherwise end up in logs verbatim.
func SanitizeText(text string) string {
	if text == "" {
		return "<empty>"
	}

	if len(text) <= 10 {
		return fmt.Sprintf("<%d chars>", len(text))
	}

	return fmt.Sprintf("%s...<%d chars>", text[:3], len(text))
}

// SummarizeItems renders a shopping item list as a count for logging.
func SummarizeItems(items []string) string {
	return fmt.Sprintf("<%d items, %d chars>", len(items), len(strings.Join(items, "")))
}
