package redact

import (
	"regexp"
)

const placeholder = "[REDACTED]"

// secretPatterns are regex heuristics for common secret types that can
// leak into raw prompt/response logs (error bodies echo request URLs,
// which carry API keys for some providers).
var secretPatterns = []*regexp.Regexp{
	// Generic API keys in assignments or query strings
	regexp.MustCompile(`(?i)(api[_-]?key|apikey|api[_-]?secret|key)\s*[:=]\s*["']?([A-Za-z0-9/+=_-]{20,})["']?`),
	// Google API keys
	regexp.MustCompile(`AIza[0-9A-Za-z_-]{35}`),
	// Bearer tokens
	regexp.MustCompile(`(?i)Bearer\s+[A-Za-z0-9._-]{20,}`),
	// JWTs (three base64 segments separated by dots)
	regexp.MustCompile(`eyJ[A-Za-z0-9_-]{10,}\.eyJ[A-Za-z0-9_-]{10,}\.[A-Za-z0-9_-]{10,}`),
	// OpenAI API keys
	regexp.MustCompile(`sk-[A-Za-z0-9]{20,}`),
	// Private key blocks
	regexp.MustCompile(`-----BEGIN\s+(RSA\s+)?PRIVATE KEY-----`),
	// Generic secrets/tokens/passwords in assignments
	regexp.MustCompile(`(?i)(secret|token|password|passwd|credential)\s*[:=]\s*["']([^"']{8,})["']`),
}

// Secrets replaces detected secrets in text with [REDACTED].
func Secrets(text string) string {
	result := text
	for _, pat := range secretPatterns {
		result = pat.ReplaceAllStringFunc(result, func(string) string {
			return placeholder
		})
	}
	return result
}
