// Package sanitize cleans message bodies: decorative symbols, hyperlinks and
// edit markers are removed, then sensitive spans are replaced by placeholder
// tokens. Redaction is best-effort pattern matching, not a guarantee.
package sanitize

import (
	"regexp"
	"strings"
	"unicode"
)

// Rule is one redaction pass. Rules are data: adding a category means adding
// an entry to Rules, not touching control flow.
type Rule struct {
	Name        string
	Pattern     *regexp.Regexp
	Placeholder string
}

// Rules are applied in declaration order. The specific financial shapes come
// before the generic numeric ones so a broad pattern never swallows the
// digits of a narrower one. Placeholder tokens contain no 10-char
// alphanumeric run, so re-running the rules over already-redacted text is a
// no-op.
var Rules = []Rule{
	{"iban", regexp.MustCompile(`\b[A-Z]{2}[0-9]{2}(?:[ ]?[A-Z0-9]){11,30}\b`), "[REDACTED_IBAN]"},
	{"rib", regexp.MustCompile(`\b[0-9A-Z]{10,34}\b`), "[REDACTED_RIB]"},
	{"card", regexp.MustCompile(`\b(?:\d[ -]?){13,19}\d\b`), "[REDACTED_CARD]"},
	{"phone", regexp.MustCompile(`\b(?:\+\d{1,3}[\s-]?)?\d{2,4}(?:[\s-]?\d{2,4}){2,4}\b`), "[REDACTED_PHONE]"},
	{"email", regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-z]{2,}`), "[REDACTED_EMAIL]"},
	{"bic", regexp.MustCompile(`\b[A-Z]{4}[ ]?[A-Z]{2}[ ]?[A-Z0-9]{2}(?:[ ]?[A-Z0-9]{3})?\b`), "[REDACTED_BIC]"},
}

var (
	linkPattern = regexp.MustCompile(`https?://\S+`)
	editPattern = regexp.MustCompile(`(?i)<This message was edited>`)
)

// emojiTable covers the pictograph blocks seen in chat exports.
var emojiTable = &unicode.RangeTable{
	R16: []unicode.Range16{
		{Lo: 0x2600, Hi: 0x26FF, Stride: 1}, // misc symbols
		{Lo: 0x2700, Hi: 0x27BF, Stride: 1}, // dingbats
	},
	R32: []unicode.Range32{
		{Lo: 0x1F1E0, Hi: 0x1F1FF, Stride: 1}, // flags
		{Lo: 0x1F300, Hi: 0x1F5FF, Stride: 1}, // symbols & pictographs
		{Lo: 0x1F600, Hi: 0x1F64F, Stride: 1}, // emoticons
		{Lo: 0x1F680, Hi: 0x1F6FF, Stride: 1}, // transport & map
		{Lo: 0x1F900, Hi: 0x1F9FF, Stride: 1}, // supplemental pictographs
		{Lo: 0x1FA70, Hi: 0x1FAFF, Stride: 1}, // pictographs extended-A
	},
}

// StripEmoji removes every rune belonging to the pictograph blocks.
func StripEmoji(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.Is(emojiTable, r) {
			return -1
		}
		return r
	}, s)
}

// CleanLine sanitizes a single body line: emoji, links and edit markers are
// removed, then the redaction rules run in order. The result is trimmed and
// may be empty.
func CleanLine(line string) string {
	line = StripEmoji(line)
	line = linkPattern.ReplaceAllString(line, "")
	line = editPattern.ReplaceAllString(line, "")

	for _, rule := range Rules {
		line = rule.Pattern.ReplaceAllString(line, rule.Placeholder)
	}

	return strings.TrimSpace(line)
}

// CleanBody sanitizes each body line, drops lines that clean to nothing, and
// rejoins the survivors in original order. Returns "" if everything was
// stripped.
func CleanBody(lines []string) string {
	var kept []string
	for _, line := range lines {
		if cleaned := CleanLine(line); cleaned != "" {
			kept = append(kept, cleaned)
		}
	}
	return strings.Join(kept, "\n")
}
