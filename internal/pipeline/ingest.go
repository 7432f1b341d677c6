// Package pipeline turns raw usage logs into sessions, burn rates, and
// aggregate statistics. One Run owns all mutable state for a refresh
// cycle; everything it produces is recomputed from scratch each cycle.
package pipeline

import (
	"bytes"
	"encoding/json"
	"log"
	"os"
	"sort"

	"github.com/rs/xid"

	"github.com/mattsolle/ccgauge/internal/config"
	"github.com/mattsolle/ccgauge/internal/model"
	"github.com/mattsolle/ccgauge/internal/source"
)

// Run owns the per-cycle mutable state: the dedup set and the read-budget
// counter. A Run is constructed at the start of each refresh cycle and
// discarded at the end, so cycles are independent once started.
type Run struct {
	ID string

	seen   map[string]struct{}
	budget int64

	// EstimateCosts fills in a pricing-table estimate for entries whose
	// log line carried no cost field.
	EstimateCosts bool

	maxFileSize int64

	FilesScanned int
	FilesSkipped int
	BadLines     int
	Duplicates   int
	BytesRead    int64
	CacheHits    int
	Reparsed     int
}

// NewRun returns a Run with a fresh dedup set and a full read budget.
func NewRun() *Run {
	return &Run{
		ID:          xid.New().String(),
		seen:        make(map[string]struct{}),
		budget:      source.ReadBudget,
		maxFileSize: source.MaxFileSize,
	}
}

// ResolveRoots validates caller-supplied roots and appends them to the
// defaults. A root that fails containment is rejected with a warning and
// the cycle proceeds on the remaining roots. Never fatal.
func ResolveRoots(custom []string) []string {
	roots := source.DefaultRoots()
	for _, c := range custom {
		resolved, err := source.ValidateRoot(c)
		if err != nil {
			log.Printf("ccgauge: rejecting data dir %q: %v", c, err)
			continue
		}
		roots = append(roots, resolved)
	}
	return roots
}

// Ingest scans every root, parses all log lines, deduplicates across
// files, and returns entries sorted ascending by timestamp. That sort is
// the single ordering contract downstream components rely on.
func (r *Run) Ingest(roots []string) []model.UsageEntry {
	var entries []model.UsageEntry
	for _, root := range roots {
		files, err := source.ScanRoot(root)
		if err != nil {
			log.Printf("ccgauge: scanning %s: %v", root, err)
			continue
		}
		for _, df := range files {
			parsed, _ := r.IngestFile(df)
			entries = append(entries, parsed...)
		}
	}
	return r.Finalize(entries)
}

// IngestFile reads one discovered file and parses its lines into entries.
// Oversized files and files that would blow the cycle read budget are
// skipped with a warning; ok is false for a skipped file so callers don't
// mistake it for a parsed-but-empty one. Dedup is not applied here; it
// runs over the whole concatenated set in Finalize so cross-file
// duplicates collapse.
func (r *Run) IngestFile(df source.DiscoveredFile) (entries []model.UsageEntry, ok bool) {
	if df.Size > r.maxFileSize {
		log.Printf("ccgauge: skipping %s (%d bytes): %v", df.Path, df.Size, source.ErrFileTooLarge)
		r.FilesSkipped++
		return nil, false
	}
	if df.Size > r.budget {
		log.Printf("ccgauge: skipping %s: %v", df.Path, source.ErrBudgetExceeded)
		r.FilesSkipped++
		return nil, false
	}

	data, err := os.ReadFile(df.Path) //nolint:gosec // path came from our own scan
	if err != nil {
		log.Printf("ccgauge: reading %s: %v", df.Path, err)
		r.FilesSkipped++
		return nil, false
	}
	r.budget -= int64(len(data))
	r.BytesRead += int64(len(data))
	r.FilesScanned++

	fallbackProject := source.ProjectForPath(df.Root, df.Path)

	for _, line := range bytes.Split(data, []byte{'\n'}) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}

		var obj map[string]any
		if err := json.Unmarshal(line, &obj); err != nil || obj == nil {
			r.BadLines++
			continue
		}

		entry, ok := source.ParseEntry(obj)
		if !ok {
			r.BadLines++
			continue
		}
		if entry.ProjectPath == "" {
			entry.ProjectPath = fallbackProject
		}
		if r.EstimateCosts && entry.CostUSD == 0 {
			entry.CostUSD = config.EstimateCost(entry.Model,
				entry.InputTokens, entry.OutputTokens,
				entry.CacheCreationTokens, entry.CacheReadTokens)
		}
		entries = append(entries, entry)
	}
	return entries, true
}

// Finalize deduplicates the concatenated entry set and sorts it ascending
// by timestamp. The dedup set is shared across all files in the run, so
// the same messageId:requestId pair collapses to its first occurrence no
// matter which file it came from.
func (r *Run) Finalize(entries []model.UsageEntry) []model.UsageEntry {
	kept := entries[:0]
	for _, e := range entries {
		key := e.DedupKey()
		if key != "" {
			if _, dup := r.seen[key]; dup {
				r.Duplicates++
				continue
			}
			r.seen[key] = struct{}{}
		}
		kept = append(kept, e)
	}

	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].Timestamp.Before(kept[j].Timestamp)
	})
	return kept
}
