// Package daemon provides the long-running budget watch service.
package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"fintrack/internal/budget"
	"fintrack/internal/kv"
	"fintrack/internal/model"
	"fintrack/internal/notify"
	"fintrack/internal/pipeline"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// Event types.
const (
	EventSnapshot        = "snapshot"
	EventSeverityChanged = "severity_changed"
	EventOverPace        = "over_pace"
)

// Source lists the transactions of one month.
type Source interface {
	ListMonth(ctx context.Context, m model.Month) ([]model.Transaction, error)
}

// Config controls the daemon runtime behavior.
type Config struct {
	Interval     time.Duration
	Addr         string
	EventsBuffer int
	BaseURL      string // reported in status only
}

// Snapshot is the watched month as of the last successful poll.
type Snapshot struct {
	At      time.Time          `json:"at"`
	Month   string             `json:"month"`
	Summary model.Summary      `json:"summary"`
	Weeks   []model.WeekBucket `json:"weeks"`
	Alerts  []model.Alert      `json:"alerts"`
}

// Event is emitted when a budget alert crosses a threshold.
type Event struct {
	ID        int64        `json:"id"`
	Type      string       `json:"type"`
	Timestamp time.Time    `json:"timestamp"`
	Month     string       `json:"month"`
	Alert     *model.Alert `json:"alert,omitempty"`
	Previous  string       `json:"previous,omitempty"` // prior severity
	Snapshot  *Snapshot    `json:"snapshot,omitempty"` // snapshot events only
}

// Status is served at /v1/status.
type Status struct {
	StartedAt       time.Time `json:"started_at"`
	LastPollAt      time.Time `json:"last_poll_at"`
	PollIntervalSec int       `json:"poll_interval_sec"`
	PollCount       int64     `json:"poll_count"`
	BaseURL         string    `json:"base_url"`
	Snapshot        Snapshot  `json:"snapshot"`
	LastError       string    `json:"last_error,omitempty"`
	EventCount      int       `json:"event_count"`
	SubscriberCount int       `json:"subscriber_count"`
}

// Service polls the backend, evaluates budgets, and serves the results.
type Service struct {
	cfg       Config
	src       Source
	state     kv.Store
	publisher notify.Publisher
	log       zerolog.Logger
	now       func() time.Time
	upgrader  websocket.Upgrader

	mu          sync.RWMutex
	startedAt   time.Time
	lastPollAt  time.Time
	pollCount   int64
	lastError   string
	hasSnapshot bool
	snapshot    Snapshot
	nextEventID int64
	events      []Event

	nextSubID int
	subs      map[int]chan Event
}

// New returns a service reading transactions from src and budgets from
// state. A nil publisher disables fan-out.
func New(cfg Config, src Source, state kv.Store, publisher notify.Publisher, log zerolog.Logger) *Service {
	if cfg.Interval < 2*time.Second {
		cfg.Interval = time.Minute
	}
	if cfg.EventsBuffer < 1 {
		cfg.EventsBuffer = 200
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8787"
	}
	if publisher == nil {
		publisher = notify.Nop{}
	}

	return &Service{
		cfg:       cfg,
		src:       src,
		state:     state,
		publisher: publisher,
		log:       log,
		now:       time.Now,
		startedAt: time.Now(),
		subs:      make(map[int]chan Event),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// Handler returns the HTTP API.
func (s *Service) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/v1/status", s.handleStatus)
	mux.HandleFunc("/v1/events", s.handleEvents)
	mux.HandleFunc("/v1/stream", s.handleStream)
	mux.HandleFunc("/v1/ws", s.handleWebSocket)
	return mux
}

// Run starts HTTP endpoints and polling until ctx is canceled.
func (s *Service) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Seed initial snapshot so status is useful immediately.
	s.pollOnce(ctx)

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		case <-ticker.C:
			s.pollOnce(ctx)
		case err := <-errCh:
			return fmt.Errorf("daemon http server: %w", err)
		}
	}
}

func (s *Service) pollOnce(ctx context.Context) {
	now := s.now()
	m := model.MonthOf(now)

	txs, err := s.src.ListMonth(ctx, m)
	if err != nil {
		s.mu.Lock()
		s.lastError = err.Error()
		s.lastPollAt = now
		s.pollCount++
		s.mu.Unlock()
		s.log.Warn().Err(err).Str("month", m.String()).Msg("poll failed")
		return
	}

	// Reloaded every poll so limits set from the CLI apply without a restart.
	book, err := budget.Load(s.state)
	if err != nil {
		s.log.Debug().Err(err).Msg("loading budgets")
	}

	snap := Snapshot{
		At:      now,
		Month:   m.String(),
		Summary: pipeline.Aggregate(txs),
		Weeks:   pipeline.WeeklyBuckets(txs, m),
		Alerts:  budget.Evaluate(book.List(), txs, m, now),
	}

	s.mu.Lock()
	prev := s.snapshot
	first := !s.hasSnapshot

	s.hasSnapshot = true
	s.snapshot = snap
	s.lastPollAt = now
	s.pollCount++
	s.lastError = ""

	var pending []Event
	if first {
		cp := snap
		pending = append(pending, Event{Type: EventSnapshot, Snapshot: &cp})
	}
	var prevAlerts []model.Alert
	if prev.Month == snap.Month {
		prevAlerts = prev.Alerts
	}
	pending = append(pending, diffAlerts(prevAlerts, snap.Alerts)...)
	for i := range pending {
		s.nextEventID++
		pending[i].ID = s.nextEventID
		pending[i].Timestamp = now
		pending[i].Month = snap.Month
	}
	s.mu.Unlock()

	s.log.Debug().Str("month", snap.Month).Int("transactions", len(txs)).
		Int("alerts", len(snap.Alerts)).Int("events", len(pending)).Msg("polled")

	for _, ev := range pending {
		s.publishEvent(ctx, ev)
	}
}

// diffAlerts returns an event for every alert whose severity changed or
// whose pace flipped to over since prev. A category missing from prev is
// compared against normal severity.
func diffAlerts(prev, curr []model.Alert) []Event {
	before := make(map[string]model.Alert, len(prev))
	for _, a := range prev {
		before[budget.Normalize(a.Category)] = a
	}

	var out []Event
	for _, a := range curr {
		old, seen := before[budget.Normalize(a.Category)]
		oldSev := model.SeverityNormal
		if seen {
			oldSev = old.Severity
		}
		alert := a

		if a.Severity != oldSev {
			out = append(out, Event{
				Type:     EventSeverityChanged,
				Alert:    &alert,
				Previous: oldSev.String(),
			})
			continue
		}
		if a.Pace == model.PaceOver && (!seen || old.Pace != model.PaceOver) {
			out = append(out, Event{Type: EventOverPace, Alert: &alert})
		}
	}
	return out
}

func (s *Service) publishEvent(ctx context.Context, ev Event) {
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

	if ev.Type == EventSnapshot {
		return
	}
	if err := s.publisher.Publish(ctx, ev.Type, ev); err != nil {
		s.log.Warn().Err(err).Int64("event", ev.ID).Msg("fan-out failed")
	}
}

func (s *Service) snapshotStatus() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Status{
		StartedAt:       s.startedAt,
		LastPollAt:      s.lastPollAt,
		PollIntervalSec: int(s.cfg.Interval.Seconds()),
		PollCount:       s.pollCount,
		BaseURL:         s.cfg.BaseURL,
		Snapshot:        s.snapshot,
		LastError:       s.lastError,
		EventCount:      len(s.events),
		SubscriberCount: len(s.subs),
	}
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Service) handleStatus(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(s.snapshotStatus())
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

	writeSSE(w, s.currentEvent())
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

func (s *Service) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Debug().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer func() { _ = conn.Close() }()

	ch := make(chan Event, 16)
	id := s.addSubscriber(ch)
	defer s.removeSubscriber(id)

	// Reads only detect disconnects; clients send nothing meaningful.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	if err := conn.WriteJSON(s.currentEvent()); err != nil {
		return
	}
	for {
		select {
		case <-closed:
			return
		case <-r.Context().Done():
			return
		case ev := <-ch:
			_ = conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := conn.WriteJSON(ev); err != nil {
				return
			}
		}
	}
}

// currentEvent is the greeting sent to new stream subscribers.
func (s *Service) currentEvent() Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ev := Event{
		Type:      EventSnapshot,
		Timestamp: s.now(),
		Month:     s.snapshot.Month,
	}
	if s.hasSnapshot {
		snap := s.snapshot
		ev.Snapshot = &snap
	}
	return ev
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
	id := s.nextSubID
	s.subs[id] = ch
	return id
}

func (s *Service) removeSubscriber(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subs, id)
}
