package pipeline

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/voxai/scrub/internal/aggregate"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testRunner(t *testing.T) (*Runner, Config) {
	t.Helper()
	root := t.TempDir()
	cfg := Config{
		ChatDir: filepath.Join(root, "raw_chats"),
		OutDir:  filepath.Join(root, "cleaned_chats"),
		LogsDir: filepath.Join(root, "logs"),
		Self:    "Iomar",
		Source:  "whatsapp",
	}
	if err := os.MkdirAll(cfg.ChatDir, 0o755); err != nil {
		t.Fatal(err)
	}
	return NewRunner(cfg, nil, nil, discardLogger()), cfg
}

func writeChat(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

const sampleChat = `[05/03/2024, 14:22:10] Alice: Hey, are you coming tomorrow?
[05/03/2024, 14:25:00] Iomar: Call me at 06 12 34 56 78
[05/03/2024, 14:26:00] Alice: image omitted
[06/03/2024, 09:00:00] Alice: The doctor moved the appointment
to Thursday morning
`

func TestProcessFile_FullPipeline(t *testing.T) {
	r, cfg := testRunner(t)
	path := writeChat(t, cfg.ChatDir, "family_chat.txt", sampleChat)

	res, err := r.ProcessFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if res.Peer != "Alice" {
		t.Errorf("peer = %q, want Alice", res.Peer)
	}
	if len(res.Records) != 2 {
		t.Fatalf("expected 2 day records, got %d", len(res.Records))
	}

	day1 := res.Records[0]
	if day1.Meta.Date != "2024-03-05" {
		t.Errorf("day1 date = %q", day1.Meta.Date)
	}
	if len(day1.Dialogue) != 2 {
		t.Fatalf("day1 has %d turns, want 2 (media placeholder dropped)", len(day1.Dialogue))
	}
	if day1.Dialogue[0].Role != "assistant" {
		t.Errorf("turn 0 role = %q, want assistant", day1.Dialogue[0].Role)
	}
	if day1.Dialogue[1].Role != "user" || day1.Dialogue[1].Text != "Call me at [REDACTED_PHONE]" {
		t.Errorf("turn 1 = %+v, want redacted phone from user", day1.Dialogue[1])
	}

	day2 := res.Records[1]
	if day2.Meta.Date != "2024-03-06" {
		t.Errorf("day2 date = %q", day2.Meta.Date)
	}
	if len(day2.Dialogue) != 1 {
		t.Fatalf("day2 has %d turns, want 1", len(day2.Dialogue))
	}
	if day2.Dialogue[0].Text != "The doctor moved the appointment\nto Thursday morning" {
		t.Errorf("multi-line body = %q", day2.Dialogue[0].Text)
	}

	// The media placeholder must be in the skip log.
	if res.Skipped != 1 {
		t.Errorf("skipped = %d, want 1", res.Skipped)
	}
	logData, err := os.ReadFile(res.LogPath)
	if err != nil {
		t.Fatalf("read skip log: %v", err)
	}
	if !strings.Contains(string(logData), "[Irrelevant content]") {
		t.Errorf("skip log missing irrelevant entry:\n%s", logData)
	}
	if !strings.Contains(string(logData), "image omitted") {
		t.Errorf("skip log must carry the original block text:\n%s", logData)
	}
}

func TestProcessFile_InvalidDateFatal(t *testing.T) {
	r, cfg := testRunner(t)
	path := writeChat(t, cfg.ChatDir, "chat_bad.txt",
		"[31/02/2024, 10:00:00] Alice: impossible day\n")

	if _, err := r.ProcessFile(path); err == nil {
		t.Fatal("expected fatal error for invalid calendar date")
	}
}

func TestProcessFile_NoHeaders(t *testing.T) {
	r, cfg := testRunner(t)
	path := writeChat(t, cfg.ChatDir, "empty_chat.txt", "no headers here\nat all\n")

	res, err := r.ProcessFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Records) != 0 {
		t.Errorf("expected 0 records, got %d", len(res.Records))
	}
	if res.Peer != aggregate.UnknownPeer {
		t.Errorf("peer = %q, want Unknown", res.Peer)
	}
}

func TestRun_WritesPerPeerOutput(t *testing.T) {
	r, cfg := testRunner(t)
	writeChat(t, cfg.ChatDir, "family_chat.txt", sampleChat)

	results, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}

	outPath := filepath.Join(cfg.OutDir, "Alice.json")
	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("expected per-peer output at %s: %v", outPath, err)
	}
	var recs []aggregate.Record
	if err := json.Unmarshal(data, &recs); err != nil {
		t.Fatalf("unmarshal output: %v", err)
	}
	if len(recs) != 2 {
		t.Errorf("output has %d records, want 2", len(recs))
	}
}

func TestRun_BadFileDoesNotAbortBatch(t *testing.T) {
	r, cfg := testRunner(t)
	writeChat(t, cfg.ChatDir, "chat_bad.txt",
		"[31/02/2024, 10:00:00] Alice: impossible day\n")
	writeChat(t, cfg.ChatDir, "family_chat.txt", sampleChat)

	results, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 surviving result, got %d", len(results))
	}
	if filepath.Base(results[0].Path) != "family_chat.txt" {
		t.Errorf("surviving file = %q", results[0].Path)
	}
}

func TestRun_IgnoresNonChatFiles(t *testing.T) {
	r, cfg := testRunner(t)
	writeChat(t, cfg.ChatDir, "notes.txt", "[05/03/2024, 14:22:10] Alice: hi\n")
	writeChat(t, cfg.ChatDir, "chat_export.csv", "[05/03/2024, 14:22:10] Alice: hi\n")
	writeChat(t, cfg.ChatDir, "_chat 2.txt", "[05/03/2024, 14:22:10] Alice: a real message here\n")

	results, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected only the chat txt file, got %d results", len(results))
	}
	if filepath.Base(results[0].Path) != "_chat 2.txt" {
		t.Errorf("processed file = %q", results[0].Path)
	}
}
