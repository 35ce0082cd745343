package transcript

import (
	"fmt"
	"strings"
	"time"
)

const timestampLayout = "02/01/2006 15:04:05"

// ParseBlock converts one block into a Message. A block whose first line does
// not match the header pattern is logged as "No match" and reported not ok.
// A header that matches syntactically but encodes an impossible calendar
// value returns an error: the shape already matched, so a bad date means the
// export format assumption broke and the file should not be trusted.
func ParseBlock(b Block, skips SkipLogger) (Message, bool, error) {
	if len(b.Lines) == 0 {
		return Message{}, false, nil
	}

	h, ok := MatchHeader(Normalize(b.Lines[0]))
	if !ok {
		skips.Skip("No match", b.Raw())
		return Message{}, false, nil
	}

	ts, err := time.Parse(timestampLayout, h.Date+" "+h.Time)
	if err != nil {
		return Message{}, false, fmt.Errorf("parse timestamp %q %q: %w", h.Date, h.Time, err)
	}

	body := []string{h.Text}
	for _, raw := range b.Lines[1:] {
		line := Normalize(raw)
		// Content lines must never look like headers; if one does, the
		// segmenter should have split there, so drop it.
		if _, isHeader := MatchHeader(line); isHeader {
			continue
		}
		body = append(body, line)
	}

	return Message{
		Timestamp: ts,
		Sender:    strings.TrimSpace(h.Sender),
		Body:      body,
	}, true, nil
}
