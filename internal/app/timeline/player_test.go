package timeline

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"deceit/internal/domain/match"

	"github.com/benbjohnson/clock"
)

func str(s string) *string { return &s }

func sampleLog(roomID string, n int) match.EventLog {
	log := match.EventLog{RoomID: roomID, End: &match.EndSummary{WinnerRole: match.RoleCivilian}}
	for i := 0; i < n; i++ {
		log.Events = append(log.Events, match.GameEvent{
			Round:     1 + i/2,
			Type:      match.EventAgentSpeech,
			ActorName: "P1",
			Text:      str("line"),
		})
	}
	return log
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestPlayer_TicksAdvanceThenEnd(t *testing.T) {
	p := NewPlayer(Config{})
	log := sampleLog("room-1", 4)
	if err := p.Load(log); err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if got := p.Snapshot().Cursor; got != 0 {
		t.Fatalf("cursor after load got=%d want=0", got)
	}

	for i := 1; i < log.Len(); i++ {
		if !p.Tick() {
			t.Fatalf("tick %d stopped playback early", i)
		}
		if got := p.Snapshot().Cursor; got != i {
			t.Fatalf("cursor after tick %d got=%d", i, got)
		}
	}
	if p.Tick() {
		t.Fatalf("tick on last event should end playback")
	}
	snap := p.Snapshot()
	if snap.Phase != match.PhaseEnded {
		t.Fatalf("phase got=%s want=%s", snap.Phase, match.PhaseEnded)
	}
	if snap.EndSummary == nil || snap.EndSummary.WinnerRole != match.RoleCivilian {
		t.Fatalf("expected end summary, got=%+v", snap.EndSummary)
	}
	if p.Tick() {
		t.Fatalf("ended player must not tick")
	}
}

func TestPlayer_LoadEmptyLogStaysIdle(t *testing.T) {
	p := NewPlayer(Config{})
	if err := p.Load(match.EventLog{RoomID: "room-1"}); !errors.Is(err, ErrEmptyLog) {
		t.Fatalf("expected ErrEmptyLog, got %v", err)
	}
	if p.Phase() != match.PhaseIdle {
		t.Fatalf("phase got=%s want=idle", p.Phase())
	}
	p.Play(context.Background())
	if p.Running() {
		t.Fatalf("idle player must not start a timer")
	}
}

func TestPlayer_TimerDrivesPlaybackToEnd(t *testing.T) {
	mock := clock.NewMock()
	rec := &fakeMetrics{}
	p := NewPlayer(Config{Interval: 2 * time.Second, Clock: mock, Metrics: rec})
	log := sampleLog("room-1", 3)
	if err := p.Load(log); err != nil {
		t.Fatalf("Load error: %v", err)
	}
	p.Play(context.Background())
	if !p.Running() {
		t.Fatalf("expected timer running")
	}

	for want := 1; want < log.Len(); want++ {
		mock.Add(2 * time.Second)
		waitFor(t, "cursor advance", func() bool { return p.Snapshot().Cursor == want })
	}
	mock.Add(2 * time.Second)
	waitFor(t, "playback end", func() bool { return p.Phase() == match.PhaseEnded })
	waitFor(t, "timer release", func() bool { return !p.Running() })

	if got := rec.ticks(); got != log.Len() {
		t.Fatalf("ticks got=%d want=%d", got, log.Len())
	}
	mock.Add(10 * time.Second)
	if got := rec.ticks(); got != log.Len() {
		t.Fatalf("timer kept firing after end: ticks=%d", got)
	}
	p.Stop()
}

func TestPlayer_LoadReplacesRunningTimer(t *testing.T) {
	mock := clock.NewMock()
	p := NewPlayer(Config{Interval: 2 * time.Second, Clock: mock})
	if err := p.Load(sampleLog("room-1", 5)); err != nil {
		t.Fatalf("Load error: %v", err)
	}
	p.Play(context.Background())
	mock.Add(2 * time.Second)
	waitFor(t, "first tick", func() bool { return p.Snapshot().Cursor == 1 })

	if err := p.Load(sampleLog("room-2", 2)); err != nil {
		t.Fatalf("reload error: %v", err)
	}
	if p.Running() {
		t.Fatalf("old timer must be cancelled by Load")
	}
	snap := p.Snapshot()
	if snap.Cursor != 0 || snap.Total != 2 {
		t.Fatalf("expected fresh state for new log, got cursor=%d total=%d", snap.Cursor, snap.Total)
	}
	mock.Add(10 * time.Second)
	if got := p.Snapshot().Cursor; got != 0 {
		t.Fatalf("stale timer advanced replaced log: cursor=%d", got)
	}
}

func TestPlayer_StopCancelsTimer(t *testing.T) {
	mock := clock.NewMock()
	p := NewPlayer(Config{Interval: time.Second, Clock: mock})
	if err := p.Load(sampleLog("room-1", 5)); err != nil {
		t.Fatalf("Load error: %v", err)
	}
	p.Play(context.Background())
	p.Stop()
	if p.Running() {
		t.Fatalf("timer still running after Stop")
	}
	mock.Add(5 * time.Second)
	if got := p.Snapshot().Cursor; got != 0 {
		t.Fatalf("cursor moved after Stop: %d", got)
	}
}

func TestPlayer_SnapshotStableBetweenTicks(t *testing.T) {
	p := NewPlayer(Config{})
	if err := p.Load(sampleLog("room-1", 3)); err != nil {
		t.Fatalf("Load error: %v", err)
	}
	p.Tick()
	a := p.Snapshot()
	b := p.Snapshot()
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("snapshots differ without a tick: %+v vs %+v", a, b)
	}
}

type fakeMetrics struct {
	mu    sync.Mutex
	tick  int
	bad   int
	ended int
}

func (m *fakeMetrics) RecordTick(string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tick++
}

func (m *fakeMetrics) RecordMalformedEvent(string, string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bad++
}

func (m *fakeMetrics) RecordPlaybackEnded(string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ended++
}

func (m *fakeMetrics) ticks() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tick
}
