// Package relevance classifies sanitized messages as meaningful or noise.
package relevance

import (
	"regexp"
	"strings"

	"github.com/voxai/scrub/internal/sanitize"
)

// mediaPatterns are the export's media and event placeholders. Matched
// against the full trimmed text, case-insensitively.
var mediaPatterns = compileFullMatch([]string{
	`image omitted`,
	`video omitted`,
	`GIF omitted`,
	`sticker omitted`,
	`audio omitted`,
	`document omitted`,
	`media omitted`,
	`file omitted`,
	`Contact card omitted`,
	`Location omitted`,
	`Live location ended`,
	`Live location shared`,
	`You deleted this message\.`,
	`This message was deleted\.`,
	`Messages and calls are end-to-end encrypted.*`,
})

var callPattern = regexp.MustCompile(`(?i)^(?:Missed )?(?:Voice|Video) call(?:, .*)?$`)

// blankPattern matches text that is only whitespace and non-word punctuation.
var blankPattern = regexp.MustCompile(`^[\W\s]+$`)

// ackTokens is the closed set of short acknowledgments that carry no
// context. "üëç" and "üëå" are thumbs-up/ok-hand emoji bytes re-decoded as
// cp1252 by older export tooling; they show up verbatim in real archives.
var ackTokens = map[string]struct{}{
	"ok":   {},
	"lol":  {},
	"üëç": {},
	"üëå": {},
	"yes":  {},
	"no":   {},
}

// IsIrrelevant reports whether a sanitized, joined message text should be
// discarded: media/event placeholders, call logs, emoji-or-punctuation-only
// content, and bare acknowledgments.
func IsIrrelevant(text string) bool {
	s := strings.TrimSpace(text)

	for _, p := range mediaPatterns {
		if p.MatchString(s) {
			return true
		}
	}
	if callPattern.MatchString(s) {
		return true
	}

	noEmoji := sanitize.StripEmoji(s)
	if strings.TrimSpace(noEmoji) == "" || blankPattern.MatchString(noEmoji) {
		return true
	}

	if _, ok := ackTokens[strings.ToLower(s)]; ok {
		return true
	}

	return false
}

func compileFullMatch(patterns []string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		out[i] = regexp.MustCompile(`(?i)^(?:` + p + `)$`)
	}
	return out
}
