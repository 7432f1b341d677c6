package pipeline

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mattsolle/ccgauge/internal/model"
	"github.com/mattsolle/ccgauge/internal/source"
)

func TestMain(m *testing.M) {
	log.SetOutput(io.Discard)
	os.Exit(m.Run())
}

func writeLog(t *testing.T, dir, name, content string) source.DiscoveredFile {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return source.DiscoveredFile{Path: path, Root: dir, Size: int64(len(content))}
}

func logLine(ts, msgID, reqID string, input int64) string {
	return fmt.Sprintf(`{"timestamp":%q,"requestId":%q,"message":{"id":%q,"usage":{"input_tokens":%d}}}`+"\n",
		ts, reqID, msgID, input)
}

func TestIngest_DedupAcrossFiles(t *testing.T) {
	dir := t.TempDir()
	writeLog(t, dir, "proj/a.jsonl",
		logLine("2025-06-01T10:00:00Z", "m1", "r1", 100)+
			logLine("2025-06-01T10:05:00Z", "m2", "r2", 200))
	writeLog(t, dir, "proj/b.jsonl",
		logLine("2025-06-01T10:00:00Z", "m1", "r1", 100)+ // duplicate of a.jsonl
			logLine("2025-06-01T10:10:00Z", "m3", "r3", 300))

	r := NewRun()
	entries := r.Ingest([]string{dir})

	if len(entries) != 3 {
		t.Fatalf("got %d entries, want 3", len(entries))
	}
	if r.Duplicates != 1 {
		t.Errorf("Duplicates = %d, want 1", r.Duplicates)
	}
	if r.FilesScanned != 2 {
		t.Errorf("FilesScanned = %d, want 2", r.FilesScanned)
	}

	var total int64
	for _, e := range entries {
		total += e.TotalTokens()
	}
	if total != 600 {
		t.Errorf("total tokens = %d, want 600", total)
	}
}

func TestIngest_SortedAscending(t *testing.T) {
	dir := t.TempDir()
	// Deliberately out of order within the file.
	writeLog(t, dir, "proj/a.jsonl",
		logLine("2025-06-01T12:00:00Z", "m1", "r1", 1)+
			logLine("2025-06-01T09:00:00Z", "m2", "r2", 1)+
			logLine("2025-06-01T10:30:00Z", "m3", "r3", 1))

	entries := NewRun().Ingest([]string{dir})

	for i := 1; i < len(entries); i++ {
		if entries[i].Timestamp.Before(entries[i-1].Timestamp) {
			t.Fatalf("entries not sorted: %v before %v",
				entries[i].Timestamp, entries[i-1].Timestamp)
		}
	}
}

func TestIngest_MissingIDsNeverDeduped(t *testing.T) {
	dir := t.TempDir()
	line := `{"timestamp":"2025-06-01T10:00:00Z","message":{"usage":{"input_tokens":10}}}` + "\n"
	writeLog(t, dir, "proj/a.jsonl", line+line+line)

	r := NewRun()
	entries := r.Ingest([]string{dir})

	if len(entries) != 3 {
		t.Errorf("got %d entries, want 3 (no IDs, no dedup)", len(entries))
	}
	if r.Duplicates != 0 {
		t.Errorf("Duplicates = %d, want 0", r.Duplicates)
	}
}

func TestIngestFile_BadLinesSkipped(t *testing.T) {
	dir := t.TempDir()
	df := writeLog(t, dir, "proj/a.jsonl",
		logLine("2025-06-01T10:00:00Z", "m1", "r1", 1)+
			"not json at all\n"+
			"\n"+
			`{"timestamp":"garbage"}`+"\n"+
			logLine("2025-06-01T10:01:00Z", "m2", "r2", 1))

	r := NewRun()
	entries, ok := r.IngestFile(df)
	if !ok {
		t.Fatal("expected file to parse")
	}
	if len(entries) != 2 {
		t.Errorf("got %d entries, want 2", len(entries))
	}
	if r.BadLines != 2 {
		t.Errorf("BadLines = %d, want 2", r.BadLines)
	}
}

func TestIngestFile_ProjectFallbackFromPath(t *testing.T) {
	dir := t.TempDir()
	df := writeLog(t, dir, "my-project/s.jsonl",
		logLine("2025-06-01T10:00:00Z", "m1", "r1", 1))

	entries, ok := NewRun().IngestFile(df)
	if !ok || len(entries) != 1 {
		t.Fatalf("entries = %v, ok = %v", entries, ok)
	}
	if entries[0].ProjectPath != "my-project" {
		t.Errorf("ProjectPath = %q, want my-project", entries[0].ProjectPath)
	}
}

func TestIngestFile_SizeCapSkips(t *testing.T) {
	dir := t.TempDir()
	df := writeLog(t, dir, "proj/a.jsonl", logLine("2025-06-01T10:00:00Z", "m1", "r1", 1))

	r := NewRun()
	r.maxFileSize = 10

	entries, ok := r.IngestFile(df)
	if ok || entries != nil {
		t.Errorf("oversized file: entries = %v, ok = %v; want nil, false", entries, ok)
	}
	if r.FilesSkipped != 1 {
		t.Errorf("FilesSkipped = %d, want 1", r.FilesSkipped)
	}
}

func TestIngestFile_BudgetExhaustionSkips(t *testing.T) {
	dir := t.TempDir()
	a := writeLog(t, dir, "proj/a.jsonl", logLine("2025-06-01T10:00:00Z", "m1", "r1", 1))
	b := writeLog(t, dir, "proj/b.jsonl", logLine("2025-06-01T10:01:00Z", "m2", "r2", 1))

	r := NewRun()
	r.budget = a.Size // room for exactly one file

	if _, ok := r.IngestFile(a); !ok {
		t.Fatal("first file should fit the budget")
	}
	if _, ok := r.IngestFile(b); ok {
		t.Error("second file should be skipped on exhausted budget")
	}
	if r.FilesSkipped != 1 || r.FilesScanned != 1 {
		t.Errorf("skipped/scanned = %d/%d, want 1/1", r.FilesSkipped, r.FilesScanned)
	}
}

func TestIngestFile_SameFileTwiceCollapses(t *testing.T) {
	dir := t.TempDir()
	df := writeLog(t, dir, "proj/a.jsonl",
		logLine("2025-06-01T10:00:00Z", "m1", "r1", 100)+
			logLine("2025-06-01T10:05:00Z", "m2", "r2", 200))

	r := NewRun()
	first, _ := r.IngestFile(df)
	second, _ := r.IngestFile(df)

	entries := r.Finalize(append(first, second...))
	if len(entries) != 2 {
		t.Errorf("got %d entries, want 2 (re-ingested file fully deduped)", len(entries))
	}
	if r.Duplicates != 2 {
		t.Errorf("Duplicates = %d, want 2", r.Duplicates)
	}
}

func TestIngest_Idempotent(t *testing.T) {
	dir := t.TempDir()
	writeLog(t, dir, "proj/a.jsonl",
		logLine("2025-06-01T10:00:00Z", "m1", "r1", 100)+
			logLine("2025-06-01T10:05:00Z", "m2", "r2", 200))

	first := NewRun().Ingest([]string{dir})
	second := NewRun().Ingest([]string{dir})

	if len(first) != len(second) {
		t.Fatalf("run lengths differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if !first[i].Timestamp.Equal(second[i].Timestamp) || first[i].MessageID != second[i].MessageID {
			t.Errorf("entry %d differs between runs", i)
		}
	}
}

func TestResolveRoots_RejectsOutsidePaths(t *testing.T) {
	defaults := source.DefaultRoots()
	roots := ResolveRoots([]string{"/etc"})
	if len(roots) != len(defaults) {
		t.Errorf("got %d roots, want only the %d defaults", len(roots), len(defaults))
	}
}

func entryAt(ts time.Time, tokens int64, project string) model.UsageEntry {
	return model.UsageEntry{
		Timestamp:   ts,
		InputTokens: tokens,
		ProjectPath: project,
	}
}
