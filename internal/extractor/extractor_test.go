package extractor

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/voxai/scrub/internal/aggregate"
	"github.com/voxai/scrub/internal/xai"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func sampleRecords() []aggregate.Record {
	return []aggregate.Record{
		{
			Dialogue: []aggregate.Turn{
				{Role: "assistant", Text: "are you coming tomorrow?"},
				{Role: "user", Text: "yes, after the appointment"},
			},
			Meta: aggregate.Meta{Source: "whatsapp", Date: "2024-03-05", Peer: "Alice"},
		},
	}
}

// completionServer answers every chat completion with the given content.
func completionServer(t *testing.T, content string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": content}},
			},
		})
	}))
}

func testExtractor(serverURL string) *Extractor {
	llm := xai.NewClient("test-key", "grok-4-latest")
	llm.SetTestTransport(serverURL)
	return New(llm, "Iomar", nil, discardLogger())
}

func TestFormatDialogue(t *testing.T) {
	got := FormatDialogue(sampleRecords())
	want := "Assistant: are you coming tomorrow?\nUser: yes, after the appointment\n"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestExtract_Success(t *testing.T) {
	ctxJSON, _ := json.Marshal(PersonContext{
		AboutPerson:   "Alice is a close friend.",
		SpeakingStyle: "Short, warm messages.",
		Events:        []string{"appointment on 2024-03-05"},
	})
	server := completionServer(t, string(ctxJSON))
	defer server.Close()

	pc, err := testExtractor(server.URL).Extract(context.Background(), "Alice", sampleRecords())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pc.AboutPerson != "Alice is a close friend." {
		t.Errorf("AboutPerson = %q", pc.AboutPerson)
	}
	if len(pc.Events) != 1 || pc.Events[0] != "appointment on 2024-03-05" {
		t.Errorf("Events = %v", pc.Events)
	}
}

func TestExtract_InvalidJSONResponse(t *testing.T) {
	server := completionServer(t, "Sure! Here is the context you asked for.")
	defer server.Close()

	_, err := testExtractor(server.URL).Extract(context.Background(), "Alice", sampleRecords())
	if err == nil {
		t.Fatal("expected parse error, got nil")
	}
}

func TestExtract_EmptyDialogue(t *testing.T) {
	server := completionServer(t, "{}")
	defer server.Close()

	_, err := testExtractor(server.URL).Extract(context.Background(), "Alice", nil)
	if err == nil {
		t.Fatal("expected error for empty dialogue, got nil")
	}
}

func TestRunDir(t *testing.T) {
	ctxJSON, _ := json.Marshal(PersonContext{
		AboutPerson: "A friend.",
		Events:      []string{"one event"},
	})
	server := completionServer(t, string(ctxJSON))
	defer server.Close()

	cleanDir := t.TempDir()
	outDir := t.TempDir()

	recsJSON, _ := json.Marshal(sampleRecords())
	if err := os.WriteFile(filepath.Join(cleanDir, "Alice_Smith.json"), recsJSON, 0o644); err != nil {
		t.Fatal(err)
	}
	// Already-extracted files must not be re-processed.
	if err := os.WriteFile(filepath.Join(cleanDir, "Bob_extracted.json"), []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := testExtractor(server.URL).RunDir(context.Background(), cleanDir, outDir); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(outDir, "Alice_Smith_extracted.json"))
	if err != nil {
		t.Fatalf("expected extracted context file: %v", err)
	}
	var pc PersonContext
	if err := json.Unmarshal(data, &pc); err != nil {
		t.Fatalf("unmarshal context: %v", err)
	}
	if pc.AboutPerson != "A friend." {
		t.Errorf("AboutPerson = %q", pc.AboutPerson)
	}

	entries, _ := os.ReadDir(outDir)
	if len(entries) != 1 {
		t.Errorf("expected 1 output file, got %d", len(entries))
	}
}

func TestRunDir_BadFileSkipped(t *testing.T) {
	server := completionServer(t, "{}")
	defer server.Close()

	cleanDir := t.TempDir()
	outDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(cleanDir, "Broken.json"), []byte("not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := testExtractor(server.URL).RunDir(context.Background(), cleanDir, outDir); err != nil {
		t.Fatalf("bad input file should be skipped, not fatal: %v", err)
	}
	entries, _ := os.ReadDir(outDir)
	if len(entries) != 0 {
		t.Errorf("expected no output for broken input, got %d files", len(entries))
	}
}

func TestPersonName(t *testing.T) {
	cases := []struct{ stem, want string }{
		{"Alice_Smith", "Alice"},
		{"Alice", "Alice"},
		{"Anne-Marie_ONeil", "Anne-Marie"},
		{"_chat", "_chat"},
	}
	for _, c := range cases {
		if got := personName(c.stem); got != c.want {
			t.Errorf("personName(%q) = %q, want %q", c.stem, got, c.want)
		}
	}
}

func TestSystemPromptVerbCount(t *testing.T) {
	if got := strings.Count(systemPromptTemplate, "%s"); got != 8 {
		t.Errorf("system prompt has %d placeholders, want 8", got)
	}
}
