// Package skiplog writes the per-file audit trail of discarded blocks.
package skiplog

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Log is the skip sink for a single input file. Opening truncates any
// previous log for the same file; nothing reads the log back.
type Log struct {
	f     *os.File
	path  string
	count int
}

// Open creates (or truncates) the skip log for the given input file base
// name under dir.
func Open(dir, baseName string) (*Log, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("mkdir logs: %w", err)
	}
	path := filepath.Join(dir, baseName+"_skipped.log")
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create skip log: %w", err)
	}
	return &Log{f: f, path: path}, nil
}

// Skip appends one discarded block with its reason, separated from the next
// entry by a blank line.
func (l *Log) Skip(reason, block string) {
	fmt.Fprintf(l.f, "[%s] %s\n\n", reason, strings.TrimSpace(block))
	l.count++
}

// Count returns the number of entries written so far.
func (l *Log) Count() int { return l.count }

// Path returns the log file's location, surfaced in the per-file summary.
func (l *Log) Path() string { return l.path }

func (l *Log) Close() error { return l.f.Close() }
