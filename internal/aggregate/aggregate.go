// Package aggregate groups accepted messages into day-keyed conversation
// records with role attribution and peer resolution.
package aggregate

import (
	"sort"

	"github.com/voxai/scrub/internal/transcript"
)

const dateLayout = "2006-01-02"

// UnknownPeer is used when a file contains no assistant-role message at all.
const UnknownPeer = "Unknown"

// Turn is a single dialogue entry within a day's record.
type Turn struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

// Meta identifies a record: where it came from, which day, who the
// counterparty was.
type Meta struct {
	Source string `json:"source"`
	Date   string `json:"date"`
	Peer   string `json:"peer"`
}

// Record is one calendar day of cleaned conversation.
type Record struct {
	Dialogue []Turn `json:"dialogue"`
	Meta     Meta   `json:"meta"`
}

// Aggregator accumulates accepted messages for one input file. The sender
// equal to the configured self-identity gets role "user"; everyone else is
// "assistant". Peer resolution is two-tier: the first assistant seen on a
// given date labels that date, and the first assistant seen anywhere in the
// file labels dates that had no assistant message of their own.
type Aggregator struct {
	self   string
	source string

	byDate     map[string][]Turn
	peerByDate map[string]string
	fallback   string
}

func New(self, source string) *Aggregator {
	return &Aggregator{
		self:       self,
		source:     source,
		byDate:     make(map[string][]Turn),
		peerByDate: make(map[string]string),
	}
}

// Add records one accepted message with its sanitized text. Messages arrive
// in transcript order, so per-day dialogue order is insertion order.
func (a *Aggregator) Add(m transcript.Message, text string) {
	role := "assistant"
	if m.Sender == a.self {
		role = "user"
	}

	date := m.Timestamp.Format(dateLayout)

	if role == "assistant" {
		if a.fallback == "" {
			a.fallback = m.Sender
		}
		if _, ok := a.peerByDate[date]; !ok {
			a.peerByDate[date] = m.Sender
		}
	}

	a.byDate[date] = append(a.byDate[date], Turn{Role: role, Text: text})
}

// Records emits one record per day that had at least one accepted message,
// sorted by ascending calendar date. Dialogue order within a day is
// preserved; only the days themselves are sorted.
func (a *Aggregator) Records() []Record {
	dates := make([]string, 0, len(a.byDate))
	for d := range a.byDate {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	records := make([]Record, 0, len(dates))
	for _, date := range dates {
		peer, ok := a.peerByDate[date]
		if !ok {
			peer = a.Peer()
		}
		records = append(records, Record{
			Dialogue: a.byDate[date],
			Meta: Meta{
				Source: a.source,
				Date:   date,
				Peer:   peer,
			},
		})
	}

	return records
}

// Peer returns the file-wide resolved counterparty name.
func (a *Aggregator) Peer() string {
	if a.fallback == "" {
		return UnknownPeer
	}
	return a.fallback
}
