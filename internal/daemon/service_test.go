package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"fintrack/internal/budget"
	"fintrack/internal/kv"
	"fintrack/internal/model"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

type fakeSource struct {
	mu  sync.Mutex
	txs []model.Transaction
	err error
}

func (f *fakeSource) ListMonth(context.Context, model.Month) ([]model.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.txs, f.err
}

func (f *fakeSource) set(txs []model.Transaction, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.txs, f.err = txs, err
}

type recordingPublisher struct {
	mu   sync.Mutex
	keys []string
}

func (p *recordingPublisher) Publish(_ context.Context, key string, _ any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.keys = append(p.keys, key)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func food(amount string) model.Transaction {
	return model.Transaction{
		Date:     "2025-09-10",
		Merchant: "Market",
		Amount:   decimal.RequireFromString(amount),
		Category: "Food",
	}
}

func newTestService(t *testing.T, src Source, pub *recordingPublisher) *Service {
	t.Helper()
	state := kv.NewMemory()
	book := budget.NewBook()
	if err := book.Set("Food", decimal.NewFromInt(100)); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := book.Save(state); err != nil {
		t.Fatalf("Save: %v", err)
	}

	s := New(Config{Interval: 10 * time.Second, EventsBuffer: 10}, src, state, pub, zerolog.Nop())
	// Day 30 of 30 so expected spend equals the limit.
	s.now = func() time.Time { return time.Date(2025, 9, 30, 12, 0, 0, 0, time.UTC) }
	return s
}

func TestDiffAlerts(t *testing.T) {
	normal := model.Alert{Category: "Food", Severity: model.SeverityNormal, Pace: model.PaceUnder}
	warning := model.Alert{Category: "food ", Severity: model.SeverityWarning, Pace: model.PaceUnder}
	overPace := model.Alert{Category: "Food", Severity: model.SeverityNormal, Pace: model.PaceOver}

	tests := []struct {
		name  string
		prev  []model.Alert
		curr  []model.Alert
		types []string
	}{
		{"no change", []model.Alert{normal}, []model.Alert{normal}, nil},
		{"severity up", []model.Alert{normal}, []model.Alert{warning}, []string{EventSeverityChanged}},
		{"severity down", []model.Alert{warning}, []model.Alert{normal}, []string{EventSeverityChanged}},
		{"pace flips over", []model.Alert{normal}, []model.Alert{overPace}, []string{EventOverPace}},
		{"still over pace", []model.Alert{overPace}, []model.Alert{overPace}, nil},
		{"new normal budget", nil, []model.Alert{normal}, nil},
		{"new warning budget", nil, []model.Alert{warning}, []string{EventSeverityChanged}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := diffAlerts(tt.prev, tt.curr)
			if len(got) != len(tt.types) {
				t.Fatalf("got %d events, want %d", len(got), len(tt.types))
			}
			for i, ev := range got {
				if ev.Type != tt.types[i] {
					t.Errorf("event %d type = %q, want %q", i, ev.Type, tt.types[i])
				}
				if ev.Alert == nil {
					t.Errorf("event %d has no alert", i)
				}
			}
		})
	}
}

func TestPollEmitsOnSeverityChange(t *testing.T) {
	src := &fakeSource{txs: []model.Transaction{food("50")}}
	pub := &recordingPublisher{}
	s := newTestService(t, src, pub)
	ctx := context.Background()

	s.pollOnce(ctx)
	s.pollOnce(ctx) // unchanged

	src.set([]model.Transaction{food("50"), food("35")}, nil)
	s.pollOnce(ctx)

	s.mu.RLock()
	events := append([]Event(nil), s.events...)
	s.mu.RUnlock()

	if len(events) != 2 {
		t.Fatalf("events = %d, want 2 (snapshot + severity change)", len(events))
	}
	if events[0].Type != EventSnapshot {
		t.Errorf("first event = %q, want snapshot", events[0].Type)
	}
	ev := events[1]
	if ev.Type != EventSeverityChanged || ev.Previous != "normal" {
		t.Fatalf("second event = %+v, want severity change from normal", ev)
	}
	if ev.Alert.Severity != model.SeverityWarning {
		t.Errorf("severity = %v, want warning", ev.Alert.Severity)
	}
	if ev.ID != 2 || ev.Month != "2025-09" {
		t.Errorf("event id/month = %d/%s, want 2/2025-09", ev.ID, ev.Month)
	}

	pub.mu.Lock()
	defer pub.mu.Unlock()
	if len(pub.keys) != 1 || pub.keys[0] != EventSeverityChanged {
		t.Errorf("published keys = %v, want [severity_changed]", pub.keys)
	}
}

func TestPollFailureKeepsSnapshot(t *testing.T) {
	src := &fakeSource{txs: []model.Transaction{food("20")}}
	s := newTestService(t, src, &recordingPublisher{})
	ctx := context.Background()

	s.pollOnce(ctx)
	src.set(nil, errors.New("connection refused"))
	s.pollOnce(ctx)

	st := s.snapshotStatus()
	if st.PollCount != 2 {
		t.Errorf("PollCount = %d, want 2", st.PollCount)
	}
	if st.LastError != "connection refused" {
		t.Errorf("LastError = %q", st.LastError)
	}
	if !st.Snapshot.Summary.Expense.Equal(decimal.NewFromInt(20)) {
		t.Errorf("snapshot expense = %s, want 20", st.Snapshot.Summary.Expense)
	}
}

func TestPublishEventRingBuffer(t *testing.T) {
	s := New(Config{Interval: 10 * time.Second, EventsBuffer: 2}, &fakeSource{}, kv.NewMemory(), nil, zerolog.Nop())
	ctx := context.Background()

	s.publishEvent(ctx, Event{ID: 1})
	s.publishEvent(ctx, Event{ID: 2})
	s.publishEvent(ctx, Event{ID: 3})

	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.events) != 2 {
		t.Fatalf("events len = %d, want 2", len(s.events))
	}
	if s.events[0].ID != 2 || s.events[1].ID != 3 {
		t.Fatalf("events ring contains IDs [%d, %d], want [2, 3]", s.events[0].ID, s.events[1].ID)
	}
}

func TestStatusEndpoint(t *testing.T) {
	src := &fakeSource{txs: []model.Transaction{food("90")}}
	s := newTestService(t, src, &recordingPublisher{})
	s.pollOnce(context.Background())

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/status", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status code = %d", rec.Code)
	}

	var st struct {
		PollCount int64 `json:"poll_count"`
		Snapshot  struct {
			Month  string `json:"month"`
			Alerts []struct {
				Category string `json:"category"`
				Severity string `json:"severity"`
				Percent  int    `json:"percent"`
			} `json:"alerts"`
		} `json:"snapshot"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&st); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if st.PollCount != 1 || st.Snapshot.Month != "2025-09" {
		t.Errorf("poll_count/month = %d/%s", st.PollCount, st.Snapshot.Month)
	}
	if len(st.Snapshot.Alerts) != 1 {
		t.Fatalf("alerts = %d, want 1", len(st.Snapshot.Alerts))
	}
	a := st.Snapshot.Alerts[0]
	if a.Category != "Food" || a.Severity != "warning" || a.Percent != 90 {
		t.Errorf("alert = %+v", a)
	}
}

func TestHealthEndpoint(t *testing.T) {
	s := New(Config{}, &fakeSource{}, kv.NewMemory(), nil, zerolog.Nop())
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK || strings.TrimSpace(rec.Body.String()) != "ok" {
		t.Fatalf("healthz = %d %q", rec.Code, rec.Body.String())
	}
}

func TestWebSocketStreamsEvents(t *testing.T) {
	src := &fakeSource{txs: []model.Transaction{food("10")}}
	s := newTestService(t, src, &recordingPublisher{})
	s.pollOnce(context.Background())

	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/v1/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var greeting Event
	if err := conn.ReadJSON(&greeting); err != nil {
		t.Fatalf("read greeting: %v", err)
	}
	if greeting.Type != EventSnapshot || greeting.Month != "2025-09" {
		t.Fatalf("greeting = %+v", greeting)
	}
	if greeting.Snapshot == nil {
		t.Fatal("greeting carries no snapshot")
	}
	if !greeting.Snapshot.Summary.Expense.Equal(decimal.NewFromInt(10)) || len(greeting.Snapshot.Alerts) != 1 {
		t.Errorf("greeting snapshot = %+v, want expense 10 and one alert", greeting.Snapshot)
	}

	src.set([]model.Transaction{food("120")}, nil)
	s.pollOnce(context.Background())

	var ev Event
	if err := conn.ReadJSON(&ev); err != nil {
		t.Fatalf("read event: %v", err)
	}
	if ev.Type != EventSeverityChanged || ev.Alert == nil || ev.Alert.Category != "Food" {
		t.Fatalf("event = %+v", ev)
	}
}
