package logging

import (
	"regexp"
	"strings"
)

// RedactedPlaceholder replaces sensitive values in log output.
const RedactedPlaceholder = "[REDACTED]"

var sensitivePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(sk-[a-zA-Z0-9_-]{20,})`),                               // OpenAI keys
	regexp.MustCompile(`(?i)(bearer\s+[a-zA-Z0-9._-]{20,})`),                    // Authorization headers
	regexp.MustCompile(`\b[a-f0-9]{32}\b`),                                      // Azure OpenAI keys
	regexp.MustCompile(`(?i)((?:api_?key|token|secret)\s*[:=]\s*[^\s,;&]{8,})`), // key=value pairs
}

// Field and variable names whose values are always redacted.
var sensitiveNames = []string{
	"API_KEY",
	"APIKEY",
	"SECRET",
	"TOKEN",
	"PASSWORD",
}

// RedactSensitiveData replaces anything that looks like a credential.
func RedactSensitiveData(value string) string {
	if value == "" {
		return value
	}
	for _, pattern := range sensitivePatterns {
		value = pattern.ReplaceAllString(value, RedactedPlaceholder)
	}
	return value
}

// IsSensitiveField reports whether a field named fieldName holds a
// credential, e.g. "openai_api_key".
func IsSensitiveField(fieldName string) bool {
	upper := strings.ToUpper(fieldName)
	for _, name := range sensitiveNames {
		if strings.Contains(upper, name) {
			return true
		}
	}
	return false
}
