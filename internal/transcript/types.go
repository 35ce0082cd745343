package transcript

import (
	"strings"
	"time"
)

// Block is an ordered run of raw lines belonging to one logical message:
// a header line plus zero or more continuation lines.
type Block struct {
	Lines []string
}

// Raw returns the block's original text, used verbatim in the skip log.
func (b Block) Raw() string {
	return strings.Join(b.Lines, "\n")
}

// Message is a single parsed chat message.
type Message struct {
	Timestamp time.Time
	Sender    string
	Body      []string // normalized body lines in original order
}

// SkipLogger receives discarded blocks with a reason.
type SkipLogger interface {
	Skip(reason, block string)
}
