// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package validate

import (
	"html"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/text/unicode/norm"
)

// maxSanitizePasses bounds the strip/unescape loop for nested entity encodings.
const maxSanitizePasses = 4

// StrictPolicy removes every element; script and style contents are dropped.
var policy = bluemonday.StrictPolicy()

// Matches scheme prefixes that execute code when used as a URL, tolerating
// whitespace inside the scheme name ("java script:").
var dangerousScheme = regexp.MustCompile(`(?i)(?:j\s*a\s*v\s*a|v\s*b)\s*s\s*c\s*r\s*i\s*p\s*t\s*:|d\s*a\s*t\s*a\s*:\s*text/html`)

// Sanitize strips markup from user input and returns it in NFC form. Plain
// text, including apostrophes and accented letters, comes back unchanged
// apart from surrounding whitespace.
func Sanitize(s string) string {
	out := strings.TrimSpace(s)
	if out == "" {
		return ""
	}

	for i := 0; i < maxSanitizePasses; i++ {
		next := html.UnescapeString(policy.Sanitize(out))
		next = dangerousScheme.ReplaceAllString(next, "")
		next = strings.TrimSpace(next)
		if next == out {
			break
		}
		out = next
	}

	// Never return anything that still parses as markup.
	if strings.ContainsAny(out, "<>") && policy.Sanitize(out) != html.EscapeString(out) {
		out = strings.NewReplacer("<", "", ">", "").Replace(out)
	}

	return norm.NFC.String(out)
}
