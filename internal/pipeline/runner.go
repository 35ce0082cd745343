// Package pipeline orchestrates the transcript cleaning run: discover raw
// chat exports, segment and parse each one, sanitize and filter the
// messages, and write day-grouped per-peer conversation files.
package pipeline

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/voxai/scrub/internal/aggregate"
	"github.com/voxai/scrub/internal/bus"
	"github.com/voxai/scrub/internal/relevance"
	"github.com/voxai/scrub/internal/sanitize"
	"github.com/voxai/scrub/internal/skiplog"
	"github.com/voxai/scrub/internal/store"
	"github.com/voxai/scrub/internal/transcript"
)

// Config holds the cleaning run configuration. Self is the transcript
// owner's name used for role assignment; Source is the label stamped into
// every record's metadata.
type Config struct {
	ChatDir string
	OutDir  string
	LogsDir string
	Self    string
	Source  string
}

// Runner processes every matching transcript in ChatDir. Store and bus are
// optional: a nil store skips archiving, a nil bus skips event publication.
type Runner struct {
	cfg    Config
	store  *store.Store
	bus    *bus.Client
	logger *slog.Logger
}

// FileResult is the per-file outcome surfaced in logs and the summary.
type FileResult struct {
	Path    string
	OutPath string
	Peer    string
	Records []aggregate.Record
	Skipped int
	LogPath string
}

func NewRunner(cfg Config, st *store.Store, b *bus.Client, logger *slog.Logger) *Runner {
	return &Runner{cfg: cfg, store: st, bus: b, logger: logger}
}

// Run processes all chat exports in the configured input folder. Per-file
// failures are logged and skipped; the batch continues with remaining files.
func (r *Runner) Run(ctx context.Context) ([]FileResult, error) {
	files, err := r.discoverFiles()
	if err != nil {
		return nil, fmt.Errorf("discover files: %w", err)
	}

	runID := uuid.New()
	r.logger.Info("transcripts discovered", "run_id", runID, "files", len(files))

	var results []FileResult
	failed := 0

	for _, path := range files {
		select {
		case <-ctx.Done():
			return results, ctx.Err()
		default:
		}

		res, err := r.ProcessFile(path)
		if err != nil {
			r.logger.Error("file failed", "path", path, "error", err)
			failed++
			continue
		}

		outPath, err := WriteRecords(r.cfg.OutDir, res.Peer, res.Records)
		if err != nil {
			r.logger.Error("write output failed", "path", path, "error", err)
			failed++
			continue
		}
		res.OutPath = outPath

		if r.store != nil {
			if err := r.store.ArchiveRecords(ctx, runID, filepath.Base(path), res.Records); err != nil {
				r.logger.Error("archive failed", "path", path, "error", err)
			}
		}

		if r.bus != nil {
			if err := r.bus.Publish(bus.SubjectCleaned, map[string]any{
				"run_id":  runID.String(),
				"file":    filepath.Base(path),
				"peer":    res.Peer,
				"records": len(res.Records),
				"skipped": res.Skipped,
			}); err != nil {
				r.logger.Warn("publish failed", "path", path, "error", err)
			}
		}

		r.logger.Info("file processed",
			"path", path,
			"peer", res.Peer,
			"records", len(res.Records),
			"skipped", res.Skipped,
			"skip_log", res.LogPath,
		)

		results = append(results, res)
	}

	fmt.Printf("\n=== Clean Summary ===\n")
	fmt.Printf("Files processed: %d\n", len(results))
	fmt.Printf("Files failed: %d\n", failed)
	for _, res := range results {
		fmt.Printf("  %s → %s (%d records, %d skipped, log: %s)\n",
			filepath.Base(res.Path), filepath.Base(res.OutPath), len(res.Records), res.Skipped, res.LogPath)
	}

	return results, nil
}

// ProcessFile runs the full pipeline on one transcript. Unparseable blocks
// and filtered messages are recorded in the skip log and never abort the
// file; a header with an impossible calendar date does, because it breaks
// the format assumption the rest of the pipeline rests on.
func (r *Runner) ProcessFile(path string) (FileResult, error) {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	skips, err := skiplog.Open(r.cfg.LogsDir, base)
	if err != nil {
		return FileResult{}, err
	}
	defer skips.Close()

	lines, err := readLines(path)
	if err != nil {
		return FileResult{}, err
	}

	agg := aggregate.New(r.cfg.Self, r.cfg.Source)

	for _, block := range transcript.Segment(lines) {
		msg, ok, err := transcript.ParseBlock(block, skips)
		if err != nil {
			return FileResult{}, fmt.Errorf("parse block: %w", err)
		}
		if !ok {
			continue
		}

		text := sanitize.CleanBody(msg.Body)
		if text == "" {
			skips.Skip("Empty after cleaning", block.Raw())
			continue
		}
		if relevance.IsIrrelevant(text) {
			skips.Skip("Irrelevant content", block.Raw())
			continue
		}

		agg.Add(msg, text)
	}

	return FileResult{
		Path:    path,
		Peer:    agg.Peer(),
		Records: agg.Records(),
		Skipped: skips.Count(),
		LogPath: skips.Path(),
	}, nil
}

// discoverFiles returns the transcript exports in ChatDir: text files whose
// name contains "chat" (exports arrive as "_chat 2.txt", "chat_1.txt", ...).
func (r *Runner) discoverFiles() ([]string, error) {
	entries, err := os.ReadDir(r.cfg.ChatDir)
	if err != nil {
		return nil, fmt.Errorf("read chat dir: %w", err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.HasSuffix(name, ".txt") && strings.Contains(strings.ToLower(name), "chat") {
			files = append(files, filepath.Join(r.cfg.ChatDir, name))
		}
	}
	return files, nil
}

func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 1024*1024), 10*1024*1024)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}
	return lines, nil
}
