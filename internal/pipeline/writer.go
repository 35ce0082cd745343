package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/voxai/scrub/internal/aggregate"
)

var (
	unsafeChars = regexp.MustCompile(`[^\p{L}\p{N}_\s-]`)
	spaceRuns   = regexp.MustCompile(`\s+`)
)

// SafeName reduces a peer name to an identifier-safe file stem: characters
// outside letters/digits/whitespace/hyphen are stripped, then whitespace
// runs collapse to a single underscore.
func SafeName(peer string) string {
	s := strings.TrimSpace(unsafeChars.ReplaceAllString(peer, ""))
	s = spaceRuns.ReplaceAllString(s, "_")
	if s == "" {
		return aggregate.UnknownPeer
	}
	return s
}

// WriteRecords serializes one peer's conversation records to
// <outDir>/<SafeName(peer)>.json. Key order is struct order and non-ASCII
// text is written as-is, matching what downstream extraction expects.
func WriteRecords(outDir, peer string, recs []aggregate.Record) (string, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", fmt.Errorf("mkdir out: %w", err)
	}

	path := filepath.Join(outDir, SafeName(peer)+".json")
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create output: %w", err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(recs); err != nil {
		return "", fmt.Errorf("encode records: %w", err)
	}

	return path, nil
}
