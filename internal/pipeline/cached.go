package pipeline

import (
	"log"
	"os"

	"github.com/mattsolle/ccgauge/internal/model"
	"github.com/mattsolle/ccgauge/internal/source"
	"github.com/mattsolle/ccgauge/internal/store"
)

// IngestWithCache behaves like Run.Ingest but reuses cached entries for
// files whose mtime and size are unchanged since they were last parsed.
// Cached files consume none of the run's read budget. Dedup and the
// timestamp sort still run over the combined set, so duplicates spanning
// a cached and a fresh file collapse the same way as an uncached run.
func (r *Run) IngestWithCache(roots []string, cache *store.Cache) []model.UsageEntry {
	tracked, err := cache.TrackedFiles()
	if err != nil {
		log.Printf("ccgauge: reading cache index: %v", err)
		return r.Ingest(roots)
	}

	present := make(map[string]struct{})
	var entries []model.UsageEntry

	for _, root := range roots {
		files, err := source.ScanRoot(root)
		if err != nil {
			log.Printf("ccgauge: scanning %s: %v", root, err)
			continue
		}
		for _, df := range files {
			present[df.Path] = struct{}{}

			info, statErr := os.Stat(df.Path)
			if statErr != nil {
				r.FilesSkipped++
				continue
			}
			mtimeNs, size := info.ModTime().UnixNano(), info.Size()

			if fi, ok := tracked[df.Path]; ok && fi.MtimeNs == mtimeNs && fi.SizeBytes == size {
				cached, loadErr := cache.LoadFileEntries(df.Path)
				if loadErr == nil {
					r.CacheHits++
					entries = append(entries, cached...)
					continue
				}
				log.Printf("ccgauge: cache read for %s: %v", df.Path, loadErr)
			}

			parsed, parsedOK := r.IngestFile(df)
			entries = append(entries, parsed...)
			if !parsedOK {
				// Skipped files stay untracked so a future run retries them.
				continue
			}
			r.Reparsed++
			if err := cache.SaveFileEntries(df.Path, mtimeNs, size, parsed); err != nil {
				log.Printf("ccgauge: cache write for %s: %v", df.Path, err)
			}
		}
	}

	if err := cache.Prune(present); err != nil {
		log.Printf("ccgauge: cache prune: %v", err)
	}

	return r.Finalize(entries)
}
