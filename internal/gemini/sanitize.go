package gemini

import "strings"

// MaxMessageLength is the maximum user text embedded in a prompt.
const MaxMessageLength = 500

// SanitizeForPrompt sanitizes user input to prevent prompt injection attacks.
// It removes or escapes characters that could break prompt structure, and
// truncates to the given maxLength.
func SanitizeForPrompt(input string, maxLength int) string {
	input = strings.ReplaceAll(input, `"`, `'`)
	input = strings.ReplaceAll(input, "`", "'")

	// Remove null bytes and other control characters.
	input = strings.ReplaceAll(input, "\x00", "")

	// Normalize whitespace: splits on any whitespace (spaces, tabs, newlines)
	// and rejoins with single spaces. This handles newline injection and
	// collapses multiple spaces in one pass.
	input = strings.Join(strings.Fields(input), " ")

	// Limit length to prevent prompt stuffing attacks.
	if len(input) > maxLength {
		input = strings.TrimSpace(input[:maxLength])
	}

	return input
}

// SanitizeMessage sanitizes a chat message for embedding in a prompt.
func SanitizeMessage(message string) string {
	return SanitizeForPrompt(message, MaxMessageLength)
}

// extractJSON extracts a JSON object from text that may contain preamble or
// markdown fences. Gemini sometimes returns responses like
// "Here is the JSON:\n{...}" even when ResponseMIMEType is set to
// application/json.
func extractJSON(text string) string {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, "{") {
		return balancedBraces(text)
	}

	start := strings.Index(text, "{")
	if start == -1 {
		return ""
	}
	return balancedBraces(text[start:])
}

// balancedBraces returns the first brace-balanced object in text.
func balancedBraces(text string) string {
	depth := 0
	for i, c := range text {
		switch c {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[:i+1]
			}
		}
	}
	return ""
}
