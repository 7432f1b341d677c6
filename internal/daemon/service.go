// Package daemon provides the long-running background refresh service.
package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/xid"

	"github.com/mattsolle/ccgauge/internal/model"
	"github.com/mattsolle/ccgauge/internal/pipeline"
)

// Config controls the daemon runtime behavior.
type Config struct {
	Load     pipeline.Options
	Interval time.Duration
	Addr     string
	// WatchRoots enables fsnotify-triggered refreshes between ticks.
	WatchRoots   bool
	EventsBuffer int
}

// Snapshot is a compact usage state for status/event payloads.
type Snapshot struct {
	At                  time.Time  `json:"at"`
	Sessions            int        `json:"sessions"`
	TotalTokens         int64      `json:"total_tokens"`
	TotalCostUSD        float64    `json:"total_cost_usd"`
	ActiveTokens        int64      `json:"active_tokens"`
	ActiveLimit         int64      `json:"active_limit"`
	BurnRatePerMin      float64    `json:"burn_rate_per_min"`
	PredictedExhaustion *time.Time `json:"predicted_exhaustion,omitempty"`
	SessionResetsAt     *time.Time `json:"session_resets_at,omitempty"`
}

// Delta captures snapshot deltas between refresh cycles.
type Delta struct {
	Sessions     int     `json:"sessions"`
	TotalTokens  int64   `json:"total_tokens"`
	TotalCostUSD float64 `json:"total_cost_usd"`
	ActiveTokens int64   `json:"active_tokens"`
}

func (d Delta) isZero() bool {
	return d.Sessions == 0 && d.TotalTokens == 0 && d.TotalCostUSD == 0 && d.ActiveTokens == 0
}

// Event is emitted whenever the usage snapshot changes.
type Event struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Snapshot  Snapshot  `json:"snapshot"`
	Delta     Delta     `json:"delta"`
}

// Status is served at /v1/status.
type Status struct {
	StartedAt        time.Time `json:"started_at"`
	LastRefreshAt    time.Time `json:"last_refresh_at"`
	RefreshCount     int64     `json:"refresh_count"`
	SkippedRefreshes int64     `json:"skipped_refreshes"`
	IntervalSec      int       `json:"interval_sec"`
	Summary          Snapshot  `json:"summary"`
	EventCount       int       `json:"event_count"`
	SubscriberCount  int       `json:"subscriber_count"`
}

// Service runs periodic refresh cycles and exposes them over HTTP.
type Service struct {
	cfg Config

	// refreshing guarantees at most one ingestion pass at a time; a tick
	// or watch trigger that lands mid-refresh is skipped, not queued.
	refreshing atomic.Bool

	mu            sync.RWMutex
	startedAt     time.Time
	lastRefreshAt time.Time
	refreshCount  int64
	skipped       int64
	hasSnapshot   bool
	snapshot      Snapshot
	sessions      []model.Session
	events        []Event

	nextSubID int
	subs      map[int]chan Event
}

// New returns a daemon service with the provided config.
func New(cfg Config) *Service {
	if cfg.Interval < 2*time.Second {
		cfg.Interval = 30 * time.Second
	}
	if cfg.EventsBuffer < 1 {
		cfg.EventsBuffer = 200
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8791"
	}

	return &Service{
		cfg:       cfg,
		startedAt: time.Now(),
		subs:      make(map[int]chan Event),
	}
}

// Run starts the HTTP endpoints and the refresh loop until ctx is canceled.
func (s *Service) Run(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/v1/status", s.handleStatus)
	mux.HandleFunc("/v1/sessions", s.handleSessions)
	mux.HandleFunc("/v1/events", s.handleEvents)
	mux.HandleFunc("/v1/stream", s.handleStream)

	server := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	var triggers <-chan struct{}
	if s.cfg.WatchRoots {
		w, err := watchRoots(ctx, pipeline.ResolveRoots(s.cfg.Load.DataDirs))
		if err != nil {
			log.Printf("ccgauge daemon: log watching disabled: %v", err)
		} else {
			triggers = w
		}
	}

	// Seed an initial snapshot so status is useful immediately.
	s.refreshOnce()

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		case <-ticker.C:
			s.refreshOnce()
		case <-triggers:
			s.refreshOnce()
		case err := <-errCh:
			return fmt.Errorf("daemon http server: %w", err)
		}
	}
}

func (s *Service) refreshOnce() {
	if !s.refreshing.CompareAndSwap(false, true) {
		s.mu.Lock()
		s.skipped++
		s.mu.Unlock()
		return
	}
	defer s.refreshing.Store(false)

	now := time.Now()
	result := pipeline.Load(s.cfg.Load)
	snap := snapshotFromResult(result, now)

	var (
		ev      Event
		publish bool
	)

	s.mu.Lock()
	prev := s.snapshot
	prevExists := s.hasSnapshot

	s.hasSnapshot = true
	s.snapshot = snap
	s.sessions = result.Sessions
	s.lastRefreshAt = now
	s.refreshCount++

	if !prevExists {
		ev = Event{ID: xid.New().String(), Type: "snapshot", Timestamp: now, Snapshot: snap}
		publish = true
	} else if delta := diffSnapshots(prev, snap); !delta.isZero() {
		ev = Event{ID: xid.New().String(), Type: "usage_delta", Timestamp: now, Snapshot: snap, Delta: delta}
		publish = true
	}
	s.mu.Unlock()

	if publish {
		s.publishEvent(ev)
	}
}

func snapshotFromResult(result *pipeline.Result, at time.Time) Snapshot {
	snap := Snapshot{
		At:           at,
		Sessions:     result.Stats.TotalSessions,
		TotalTokens:  result.Stats.TotalTokens,
		TotalCostUSD: result.Stats.TotalCostUSD,
	}

	if active := result.Active; active != nil {
		snap.ActiveTokens = active.TokenCount
		snap.ActiveLimit = active.TokenLimit
		if active.BurnRate != nil {
			snap.BurnRatePerMin = active.BurnRate.TokensPerMinute
		}
		if t, ok := active.PredictedExhaustion(at); ok {
			snap.PredictedExhaustion = &t
		}
		reset := active.EndTime
		snap.SessionResetsAt = &reset
	}
	return snap
}

func diffSnapshots(prev, curr Snapshot) Delta {
	return Delta{
		Sessions:     curr.Sessions - prev.Sessions,
		TotalTokens:  curr.TotalTokens - prev.TotalTokens,
		TotalCostUSD: curr.TotalCostUSD - prev.TotalCostUSD,
		ActiveTokens: curr.ActiveTokens - prev.ActiveTokens,
	}
}

func (s *Service) publishEvent(ev Event) {
	s.mu.Lock()
	s.events = append(s.events, ev)
	if len(s.events) > s.cfg.EventsBuffer {
		s.events = s.events[len(s.events)-s.cfg.EventsBuffer:]
	}
	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
	s.mu.Unlock()
}

func (s *Service) currentStatus() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Status{
		StartedAt:        s.startedAt,
		LastRefreshAt:    s.lastRefreshAt,
		RefreshCount:     s.refreshCount,
		SkippedRefreshes: s.skipped,
		IntervalSec:      int(s.cfg.Interval.Seconds()),
		Summary:          s.snapshot,
		EventCount:       len(s.events),
		SubscriberCount:  len(s.subs),
	}
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Service) handleStatus(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(s.currentStatus())
}

func (s *Service) handleSessions(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	sessions := make([]model.Session, len(s.sessions))
	copy(sessions, s.sessions)
	s.mu.RUnlock()

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(sessions)
}

func (s *Service) handleEvents(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	events := make([]Event, len(s.events))
	copy(events, s.events)
	s.mu.RUnlock()

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(events)
}

func (s *Service) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := make(chan Event, 16)
	id := s.addSubscriber(ch)
	defer s.removeSubscriber(id)

	current := Event{
		ID:        xid.New().String(),
		Type:      "snapshot",
		Timestamp: time.Now(),
		Snapshot:  s.currentStatus().Summary,
	}
	writeSSE(w, current)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev := <-ch:
			writeSSE(w, ev)
			flusher.Flush()
		}
	}
}

func writeSSE(w http.ResponseWriter, ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	_, _ = fmt.Fprintf(w, "event: %s\n", ev.Type)
	_, _ = fmt.Fprintf(w, "data: %s\n\n", data)
}

func (s *Service) addSubscriber(ch chan Event) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSubID++
	s.subs[s.nextSubID] = ch
	return s.nextSubID
}

func (s *Service) removeSubscriber(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subs, id)
}
