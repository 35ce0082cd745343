package transcript

import (
	"regexp"
	"strings"
	"unicode"
)

// headerPattern matches the export header line:
//
//	[DD/MM/YYYY, HH:MM:SS] <sender>: <text>
//
// The sender match is non-greedy so a ": " inside the body never extends it.
var headerPattern = regexp.MustCompile(`^\[(\d{2}/\d{2}/\d{4}), (\d{2}:\d{2}:\d{2})\] (.+?): (.*)$`)

// Header is the structured form of a matched header line.
type Header struct {
	Date   string // DD/MM/YYYY
	Time   string // HH:MM:SS
	Sender string
	Text   string // body fragment trailing the sender separator
}

// MatchHeader reports whether a normalized line opens a new message.
func MatchHeader(line string) (Header, bool) {
	m := headerPattern.FindStringSubmatch(line)
	if m == nil {
		return Header{}, false
	}
	return Header{Date: m[1], Time: m[2], Sender: m[3], Text: m[4]}, true
}

// Normalize strips non-printable characters and trims surrounding space.
// Exports carry stray control characters (LRM marks and friends) inside
// header lines, which would otherwise break the header match.
func Normalize(line string) string {
	var sb strings.Builder
	for _, r := range line {
		if unicode.IsPrint(r) {
			sb.WriteRune(r)
		}
	}
	return strings.TrimSpace(sb.String())
}
