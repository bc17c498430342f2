package logging

import (
	"regexp"
	"strings"
)

// SensitiveDataMasker masks sensitive data before it reaches a log sink.
// The pattern set is tuned for a FIX initiator process rather than a
// general web backend: FIX tag 554 (Password) and tag 96 (RawData, used to
// carry encrypted payloads in some counterparty extensions) travel through
// Engine.handleOutbound/handleInbound as plain Set/Get calls, and the admin
// HTTP API's JWTs travel through request logging the same way a generic
// bearer token would.
type SensitiveDataMasker struct {
	patterns map[string]*regexp.Regexp
}

// NewSensitiveDataMasker creates a new data masker
func NewSensitiveDataMasker() *SensitiveDataMasker {
	return &SensitiveDataMasker{
		patterns: map[string]*regexp.Regexp{
			"email":        regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`),
			"api_key":      regexp.MustCompile(`(?i)(api[_-]?key|apikey|access[_-]?token)[\s:="']+([a-zA-Z0-9_\-]{20,})`),
			"password":     regexp.MustCompile(`(?i)(password|passwd|pwd|rawdata|raw_data|securedata|secure_data)[\s:="']+([^\s"']+)`),
			"bearer_token": regexp.MustCompile(`(?i)Bearer\s+([a-zA-Z0-9_\-\.]{20,})`),
			"jwt":          regexp.MustCompile(`eyJ[a-zA-Z0-9_-]*\.eyJ[a-zA-Z0-9_-]*\.[a-zA-Z0-9_-]*`),
		},
	}
}

// Mask masks sensitive data in a string
func (m *SensitiveDataMasker) Mask(input string) string {
	result := input

	// Mask emails
	result = m.patterns["email"].ReplaceAllStringFunc(result, func(match string) string {
		parts := strings.Split(match, "@")
		if len(parts) == 2 {
			return maskString(parts[0]) + "@" + parts[1]
		}
		return maskString(match)
	})

	// Mask API keys
	result = m.patterns["api_key"].ReplaceAllString(result, "$1=[REDACTED]")

	// Mask passwords
	result = m.patterns["password"].ReplaceAllString(result, "$1=[REDACTED]")

	// Mask bearer tokens
	result = m.patterns["bearer_token"].ReplaceAllString(result, "Bearer [REDACTED]")

	// Mask JWTs
	result = m.patterns["jwt"].ReplaceAllString(result, "[JWT_REDACTED]")

	return result
}

// MaskJSON masks sensitive data in JSON strings
func (m *SensitiveDataMasker) MaskJSON(input string) string {
	// First apply standard masking
	result := m.Mask(input)

	// Additional JSON-specific patterns: FIX tag 554 (Password), tag 96
	// (RawData), and tag 925 (NewPassword) plus generic admin-API secrets.
	sensitiveKeys := []string{
		"password", "passwd", "pwd", "new_password", "newPassword",
		"raw_data", "rawData", "secure_data", "secureData",
		"secret", "token", "api_key", "apiKey", "accessToken", "refreshToken",
		"privateKey", "private_key",
	}

	for _, key := range sensitiveKeys {
		// Match "key": "value" or 'key': 'value'
		pattern := regexp.MustCompile(`"` + key + `"\s*:\s*"[^"]*"`)
		result = pattern.ReplaceAllString(result, `"`+key+`":"[REDACTED]"`)

		pattern = regexp.MustCompile(`'` + key + `'\s*:\s*'[^']*'`)
		result = pattern.ReplaceAllString(result, `'`+key+`':'[REDACTED]'`)
	}

	return result
}

// MaskMap masks sensitive data in a map
func (m *SensitiveDataMasker) MaskMap(input map[string]interface{}) map[string]interface{} {
	result := make(map[string]interface{})

	sensitiveKeys := map[string]bool{
		"password":      true,
		"passwd":        true,
		"pwd":           true,
		"new_password":  true,
		"newPassword":   true,
		"raw_data":      true,
		"rawData":       true,
		"secure_data":   true,
		"secureData":    true,
		"secret":        true,
		"token":         true,
		"api_key":       true,
		"apiKey":        true,
		"apikey":        true,
		"access_token":  true,
		"accessToken":   true,
		"refresh_token": true,
		"refreshToken":  true,
		"private_key":   true,
		"privateKey":    true,
	}

	for key, value := range input {
		if sensitiveKeys[key] || sensitiveKeys[strings.ToLower(key)] {
			result[key] = "[REDACTED]"
		} else {
			// Recursively mask nested maps
			if nestedMap, ok := value.(map[string]interface{}); ok {
				result[key] = m.MaskMap(nestedMap)
			} else if strValue, ok := value.(string); ok {
				result[key] = m.Mask(strValue)
			} else {
				result[key] = value
			}
		}
	}

	return result
}

// maskString masks a string keeping first and last character
func maskString(s string) string {
	if len(s) <= 2 {
		return strings.Repeat("*", len(s))
	}
	return string(s[0]) + strings.Repeat("*", len(s)-2) + string(s[len(s)-1])
}

// Global masker instance
var globalMasker = NewSensitiveDataMasker()

// MaskSensitiveData masks sensitive data using the global masker
func MaskSensitiveData(input string) string {
	return globalMasker.Mask(input)
}

// MaskSensitiveJSON masks sensitive data in JSON using the global masker
func MaskSensitiveJSON(input string) string {
	return globalMasker.MaskJSON(input)
}

// MaskSensitiveMap masks sensitive data in a map using the global masker
func MaskSensitiveMap(input map[string]interface{}) map[string]interface{} {
	return globalMasker.MaskMap(input)
}
