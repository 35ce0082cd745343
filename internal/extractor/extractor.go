// Package extractor turns cleaned per-peer conversation files into
// structured "about person" context via the xAI API.
package extractor

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/voxai/scrub/internal/aggregate"
	"github.com/voxai/scrub/internal/bus"
	"github.com/voxai/scrub/internal/xai"
)

const extractedSuffix = "_extracted.json"

// Extractor runs context extraction over cleaned conversation files. The bus
// is optional; when set, each extracted context is announced on it.
type Extractor struct {
	llm    *xai.Client
	self   string
	bus    *bus.Client
	logger *slog.Logger
}

func New(llm *xai.Client, self string, b *bus.Client, logger *slog.Logger) *Extractor {
	return &Extractor{llm: llm, self: self, bus: b, logger: logger}
}

// FormatDialogue flattens conversation records into a User:/Assistant:
// transcript string for the prompt.
func FormatDialogue(recs []aggregate.Record) string {
	var sb strings.Builder
	for _, rec := range recs {
		for _, turn := range rec.Dialogue {
			switch turn.Role {
			case "user":
				sb.WriteString("User: ")
			case "assistant":
				sb.WriteString("Assistant: ")
			default:
				sb.WriteString(turn.Role + ": ")
			}
			sb.WriteString(turn.Text)
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

// Extract asks the model for structured context about one person from their
// cleaned conversation records.
func (e *Extractor) Extract(ctx context.Context, person string, recs []aggregate.Record) (*PersonContext, error) {
	conversation := FormatDialogue(recs)
	if strings.TrimSpace(conversation) == "" {
		return nil, fmt.Errorf("no dialogue for %s", person)
	}

	system := fmt.Sprintf(systemPromptTemplate,
		e.self, person, person, e.self, person, e.self, person, person)
	prompt := fmt.Sprintf(extractionUserPrompt, conversation)

	e.logger.Info("extracting context",
		"person", person,
		"records", len(recs),
		"conversation_len", len(conversation),
	)

	raw, err := e.llm.Complete(ctx, system, []xai.Message{{Role: "user", Content: prompt}})
	if err != nil {
		return nil, fmt.Errorf("llm extraction: %w", err)
	}

	var pc PersonContext
	if err := json.Unmarshal([]byte(raw), &pc); err != nil {
		e.logger.Error("failed to parse extraction response", "error", err, "raw", raw)
		return nil, fmt.Errorf("parse extraction: %w", err)
	}

	e.logger.Info("extraction complete", "person", person, "events", len(pc.Events))
	return &pc, nil
}

// RunDir extracts context for every cleaned conversation file in cleanDir,
// writing <name>_extracted.json into outDir. Per-file failures are logged
// and skipped so one bad file never blocks the rest of the batch.
func (e *Extractor) RunDir(ctx context.Context, cleanDir, outDir string) error {
	entries, err := os.ReadDir(cleanDir)
	if err != nil {
		return fmt.Errorf("read clean dir: %w", err)
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("mkdir out: %w", err)
	}

	processed, failed := 0, 0
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") || strings.HasSuffix(name, extractedSuffix) {
			continue
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		stem := strings.TrimSuffix(name, ".json")
		person := personName(stem)

		recs, err := readRecords(filepath.Join(cleanDir, name))
		if err != nil {
			e.logger.Error("failed to read conversations", "file", name, "error", err)
			failed++
			continue
		}

		pc, err := e.Extract(ctx, person, recs)
		if err != nil {
			e.logger.Error("extraction failed", "file", name, "error", err)
			failed++
			continue
		}

		outPath := filepath.Join(outDir, stem+extractedSuffix)
		if err := writeContext(outPath, pc); err != nil {
			e.logger.Error("failed to write context", "file", name, "error", err)
			failed++
			continue
		}

		if e.bus != nil {
			if err := e.bus.Publish(bus.SubjectExtracted, map[string]any{
				"person": person,
				"file":   filepath.Base(outPath),
				"events": len(pc.Events),
			}); err != nil {
				e.logger.Warn("publish failed", "file", name, "error", err)
			}
		}

		e.logger.Info("context written", "person", person, "path", outPath)
		processed++
	}

	fmt.Printf("\n=== Extract Summary ===\n")
	fmt.Printf("Contexts written: %d\n", processed)
	fmt.Printf("Failures: %d\n", failed)

	return nil
}

// personName recovers the person's first name from a cleaned file stem,
// where whitespace became underscores ("Alice_Smith" → "Alice").
func personName(stem string) string {
	if i := strings.Index(stem, "_"); i > 0 {
		return stem[:i]
	}
	return stem
}

func readRecords(path string) ([]aggregate.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	var recs []aggregate.Record
	if err := json.Unmarshal(data, &recs); err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	return recs, nil
}

func writeContext(path string, pc *PersonContext) error {
	data, err := json.MarshalIndent(pc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
