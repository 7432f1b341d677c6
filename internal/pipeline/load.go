package pipeline

import (
	"log"
	"time"

	"github.com/mattsolle/ccgauge/internal/config"
	"github.com/mattsolle/ccgauge/internal/model"
	"github.com/mattsolle/ccgauge/internal/store"
)

// Options configures one refresh cycle.
type Options struct {
	// DataDirs are caller-supplied roots validated against the allow-list;
	// rejected dirs are dropped with a warning and the defaults still apply.
	DataDirs      []string
	Plan          config.Plan
	CustomLimit   int64
	Policy        Policy
	NoCache       bool
	CachePath     string
	EstimateCosts bool
	// Now pins the refresh instant; zero means time.Now().
	Now time.Time
}

// Result is everything one refresh cycle derives from the logs. All of it
// is recomputed per cycle; none of it is patched in place.
type Result struct {
	Entries  []model.UsageEntry
	Sessions []model.Session
	Active   *model.Session
	Stats    model.UsageStatistics
	Projects []model.ProjectUsage
	Run      *Run
}

// Load runs a full refresh cycle: ingest, window, enrich, aggregate.
// It never fails outright; the worst outcome is an empty result.
func Load(opts Options) *Result {
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}

	run := NewRun()
	run.EstimateCosts = opts.EstimateCosts
	roots := ResolveRoots(opts.DataDirs)

	var entries []model.UsageEntry
	if opts.NoCache || opts.CachePath == "" {
		entries = run.Ingest(roots)
	} else {
		cache, err := store.Open(opts.CachePath)
		if err != nil {
			log.Printf("ccgauge: cache unavailable, doing full parse: %v", err)
			entries = run.Ingest(roots)
		} else {
			entries = run.IngestWithCache(roots, cache)
			_ = cache.Close()
		}
	}

	sessions := BuildSessions(entries, opts.Plan, opts.CustomLimit, now, opts.Policy)

	return &Result{
		Entries:  entries,
		Sessions: sessions,
		Active:   ActiveSession(sessions),
		Stats:    AggregateStatistics(sessions, now),
		Projects: AggregateProjects(entries),
		Run:      run,
	}
}
