package recurring

import (
	"regexp"
	"strings"
)

var (
	digitRunRE   = regexp.MustCompile(`\d{4,}`)
	codeTokenRE  = regexp.MustCompile(`[A-Za-z0-9]{6,}`)
	hasDigitRE   = regexp.MustCompile(`\d`)
	whitespaceRE = regexp.MustCompile(`\s+`)
	nonAlnumRE   = regexp.MustCompile(`[^a-z0-9]+`)
)

// Normalize strips volatile tokens from a raw bank description:
// runs of 4+ digits (reference numbers) and alphanumeric codes of
// 6+ characters containing a digit. Whitespace is collapsed. If
// nothing survives, the trimmed original is returned so the result
// is never empty for a non-empty input.
func Normalize(desc string) string {
	out := digitRunRE.ReplaceAllString(desc, " ")
	out = codeTokenRE.ReplaceAllStringFunc(out, func(tok string) string {
		if hasDigitRE.MatchString(tok) {
			return " "
		}
		return tok
	})
	out = strings.TrimSpace(whitespaceRE.ReplaceAllString(out, " "))
	if out == "" {
		return strings.TrimSpace(desc)
	}
	return out
}

// GroupKey is the case- and punctuation-insensitive key used for
// clustering: the normalized description lowercased with everything
// outside [a-z0-9] removed. "Amazon.com*ABC123" and
// "AMAZON.COM *XYZ789" share a key.
func GroupKey(desc string) string {
	n := strings.ToLower(Normalize(desc))
	key := nonAlnumRE.ReplaceAllString(n, "")
	if key == "" {
		return n
	}
	return key
}
