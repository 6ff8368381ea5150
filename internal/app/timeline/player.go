package timeline

import (
	"context"
	"errors"
	"sync"
	"time"

	"deceit/internal/app/ports"
	"deceit/internal/domain/match"

	"github.com/benbjohnson/clock"
	"github.com/cloudwego/hertz/pkg/common/hlog"
)

const DefaultInterval = 2000 * time.Millisecond

var ErrEmptyLog = errors.New("event log is empty")

type Config struct {
	Interval time.Duration
	Clock    clock.Clock
	Metrics  ports.ReplayMetrics
}

// Player replays one event log on a fixed cadence. A single goroutine owns
// the ticker, so ticks never overlap; readers only see copied snapshots.
type Player struct {
	interval time.Duration
	clock    clock.Clock
	metrics  ports.ReplayMetrics

	// life serializes Load, Play and Stop.
	life sync.Mutex

	mu    sync.Mutex
	log   match.EventLog
	state match.ReplayState
	stop  context.CancelFunc
	done  chan struct{}
}

func NewPlayer(cfg Config) *Player {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.New()
	}
	return &Player{
		interval: cfg.Interval,
		clock:    cfg.Clock,
		metrics:  cfg.Metrics,
		state:    match.IdleState(),
	}
}

// Load stops any running timer and replaces the log. An empty log leaves
// the player idle.
func (p *Player) Load(log match.EventLog) error {
	p.life.Lock()
	defer p.life.Unlock()
	p.stopLocked()

	p.mu.Lock()
	defer p.mu.Unlock()
	if log.Empty() {
		p.log = match.EventLog{}
		p.state = match.IdleState()
		return ErrEmptyLog
	}
	p.log = log
	p.state = match.NewReplayState(log)
	return nil
}

// Play starts the periodic timer. It is a no-op when the player is idle,
// ended or already running.
func (p *Player) Play(ctx context.Context) {
	p.life.Lock()
	defer p.life.Unlock()

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stop != nil || p.state.Phase() != match.PhasePlaying {
		return
	}
	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	ticker := p.clock.Ticker(p.interval)
	p.stop = cancel
	p.done = done
	go p.run(runCtx, ticker, done)
}

// Stop cancels the timer and waits for the tick goroutine to exit.
func (p *Player) Stop() {
	p.life.Lock()
	defer p.life.Unlock()
	p.stopLocked()
}

func (p *Player) stopLocked() {
	p.mu.Lock()
	cancel, done := p.stop, p.done
	p.stop, p.done = nil, nil
	p.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (p *Player) run(ctx context.Context, ticker *clock.Ticker, done chan struct{}) {
	defer close(done)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !p.Tick() {
				return
			}
		}
	}
}

// Tick applies one transition and reports whether playback continues.
func (p *Player) Tick() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state.Phase() != match.PhasePlaying {
		return false
	}
	next, diag := match.Step(p.state, p.log)
	p.state = next
	if p.metrics != nil {
		p.metrics.RecordTick(p.log.RoomID)
	}
	if diag != nil {
		hlog.Warnf("room %s: skipped event %d: %s", p.log.RoomID, diag.Cursor, diag.Reason)
		if p.metrics != nil {
			p.metrics.RecordMalformedEvent(p.log.RoomID, string(diag.Type))
		}
	}
	if next.Ended {
		hlog.Infof("room %s: playback ended after %d events", p.log.RoomID, p.log.Len())
		if p.metrics != nil {
			p.metrics.RecordPlaybackEnded(p.log.RoomID)
		}
		return false
	}
	return true
}

func (p *Player) Snapshot() match.Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return match.Project(p.log, p.state)
}

func (p *Player) Phase() match.Phase {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state.Phase()
}

// Running reports whether a tick goroutine is active.
func (p *Player) Running() bool {
	p.mu.Lock()
	done := p.done
	p.mu.Unlock()
	if done == nil {
		return false
	}
	select {
	case <-done:
		return false
	default:
		return true
	}
}
