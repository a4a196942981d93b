package middleware

import (
	"strings"
	"unicode"
)

// SanitizeConfig contains configuration for input sanitization
type SanitizeConfig struct {
	MaxStringLength int // Maximum allowed string length, in runes
}

// DefaultSanitizeConfig returns default sanitization configuration
func DefaultSanitizeConfig() SanitizeConfig {
	return SanitizeConfig{
		MaxStringLength: 255,
	}
}

// SanitizeString removes null bytes and control characters, trims
// whitespace and truncates to the max length. Content is not escaped:
// the value is forwarded as JSON, never rendered as HTML.
func SanitizeString(input string, config SanitizeConfig) string {
	input = strings.ReplaceAll(input, "\x00", "")
	input = removeControlChars(input)
	input = strings.TrimSpace(input)

	if config.MaxStringLength > 0 {
		runes := []rune(input)
		if len(runes) > config.MaxStringLength {
			input = strings.TrimSpace(string(runes[:config.MaxStringLength]))
		}
	}

	return input
}

// SanitizeEmail normaliza o email sem validar o formato
func SanitizeEmail(email string) string {
	email = SanitizeString(email, DefaultSanitizeConfig())
	return strings.ReplaceAll(email, " ", "")
}

// removeControlChars removes control characters from a string
func removeControlChars(s string) string {
	var result strings.Builder
	for _, r := range s {
		if !unicode.IsControl(r) {
			result.WriteRune(r)
		}
	}
	return result.String()
}
