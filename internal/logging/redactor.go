package logging

import (
	"strings"
	"unicode"
)

// Redacted replaces sensitive values in log output.
const Redacted = "[REDACTED]"

var defaultSensitiveWords = []string{"secret", "password", "passphrase", "token", "key", "auth", "credential"}

// redactor hides the values of sensitive keys in key-value pairs.
type redactor struct {
	words map[string]struct{}
}

func newRedactor() *redactor {
	words := make(map[string]struct{}, len(defaultSensitiveWords))
	for _, w := range defaultSensitiveWords {
		words[w] = struct{}{}
	}
	return &redactor{words: words}
}

// redact returns a copy of pairs ([k1, v1, k2, v2, ...]) with the value of
// every sensitive key replaced by Redacted. A trailing key without a value
// is kept as is.
func (r *redactor) redact(pairs []any) []any {
	if len(pairs) == 0 {
		return pairs
	}
	out := append([]any(nil), pairs...)
	for i := 0; i+1 < len(out); i += 2 {
		if key, ok := out[i].(string); ok && r.isSensitive(key) {
			out[i+1] = Redacted
		}
	}
	return out
}

// isSensitive reports whether one word of key is sensitive. Words are split
// at separators and at lower-to-upper case changes, so input names such as
// apiToken match like api_token and api-token do.
func (r *redactor) isSensitive(key string) bool {
	for _, w := range keyWords(key) {
		if _, ok := r.words[w]; ok {
			return true
		}
	}
	return false
}

func keyWords(key string) []string {
	var words []string
	var b strings.Builder
	flush := func() {
		if b.Len() > 0 {
			words = append(words, b.String())
			b.Reset()
		}
	}
	var prev rune
	for _, c := range key {
		switch {
		case !unicode.IsLetter(c) && !unicode.IsDigit(c):
			flush()
		case unicode.IsUpper(c) && (unicode.IsLower(prev) || unicode.IsDigit(prev)):
			flush()
			b.WriteRune(unicode.ToLower(c))
		default:
			b.WriteRune(unicode.ToLower(c))
		}
		prev = c
	}
	flush()
	return words
}
