package logging

import "strings"

// secretKeyPatterns are substrings of attribute keys whose values are masked.
// Matching is case-insensitive.
var secretKeyPatterns = []string{
	"TOKEN",
	"KEY",
	"SECRET",
	"PASSWORD",
	"AUTH",
	"CREDENTIAL",
	"PRIVATE",
}

// tokenPrefixes mark values as secret regardless of the key they appear under.
var tokenPrefixes = []string{
	// GitHub
	"ghp_", "gho_", "ghu_", "ghs_", "ghr_",
	// OpenAI, Anthropic
	"sk-",
	// AWS access keys
	"AKIA",
	// Slack
	"xoxb-", "xoxp-", "xoxa-", "xoxr-",
}

// ShouldMask reports whether key names a value that is likely secret.
// MCP definitions routinely carry API tokens in env and headers.
func ShouldMask(key string) bool {
	upper := strings.ToUpper(key)
	for _, pattern := range secretKeyPatterns {
		if strings.Contains(upper, pattern) {
			return true
		}
	}
	return false
}

// ContainsTokenPrefix reports whether value starts with a known token prefix.
func ContainsTokenPrefix(value string) bool {
	for _, prefix := range tokenPrefixes {
		if strings.HasPrefix(value, prefix) {
			return true
		}
	}
	return false
}

// MaskValue masks a secret, keeping the last four characters when the value
// is long enough for that to be safe.
func MaskValue(value string) string {
	if len(value) <= 4 {
		return "********"
	}
	return "****" + value[len(value)-4:]
}

// MaskSecrets returns a copy of m with secret-looking entries masked.
// A nil map yields nil.
func MaskSecrets(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	masked := make(map[string]string, len(m))
	for k, v := range m {
		if ShouldMask(k) || ContainsTokenPrefix(v) {
			masked[k] = MaskValue(v)
			continue
		}
		masked[k] = v
	}
	return masked
}
