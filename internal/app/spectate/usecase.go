package spectate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"deceit/internal/app/ports"
	"deceit/internal/app/timeline"
	"deceit/internal/domain/match"

	"github.com/benbjohnson/clock"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/google/uuid"
)

var (
	ErrInvalidRequest = errors.New("invalid spectate request")
	// ErrNoLog means there is nothing to replay for the room. A missing room
	// id is reported this way rather than as an empty log.
	ErrNoLog     = errors.New("no event log available")
	ErrNoSession = errors.New("room is not being watched")
)

type Config struct {
	Logs     ports.EventLogRepository
	Metrics  ports.ReplayMetrics
	Interval time.Duration
	Clock    clock.Clock
	Now      func() time.Time
}

type session struct {
	id        string
	startedAt time.Time
	player    *timeline.Player
}

// Rooms owns one timeline player per watched room.
type Rooms struct {
	cfg    Config
	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	sessions map[string]*session
}

func NewRooms(cfg Config) *Rooms {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Rooms{
		cfg:      cfg,
		ctx:      ctx,
		cancel:   cancel,
		sessions: map[string]*session{},
	}
}

// Watch loads the room's log and starts playback from the first event. A
// room that is already playing is restarted with a fresh session.
func (r *Rooms) Watch(ctx context.Context, req WatchRequest) (WatchResponse, error) {
	roomID := strings.TrimSpace(req.RoomID)
	if roomID == "" {
		return WatchResponse{}, ErrNoLog
	}
	if r.cfg.Logs == nil {
		return WatchResponse{}, fmt.Errorf("event log repository is not configured")
	}
	log, err := r.cfg.Logs.GetByRoomID(ctx, roomID)
	if err != nil {
		return WatchResponse{}, err
	}
	if log.Empty() {
		return WatchResponse{}, fmt.Errorf("%w: room %s", ErrNoLog, roomID)
	}
	log.RoomID = roomID

	s, _, err := r.start(log, false)
	if err != nil {
		return WatchResponse{}, err
	}
	hlog.CtxInfof(ctx, "room %s: session %s watching %d events", roomID, s.id, log.Len())
	return WatchResponse{
		SessionID: s.id,
		RoomID:    roomID,
		StartedAt: s.startedAt,
		Snapshot:  s.player.Snapshot(),
	}, nil
}

func (r *Rooms) Snapshot(_ context.Context, req SnapshotRequest) (SnapshotResponse, error) {
	roomID := strings.TrimSpace(req.RoomID)
	if roomID == "" {
		return SnapshotResponse{}, ErrNoLog
	}
	r.mu.Lock()
	var (
		s  session
		ok bool
	)
	if cur, found := r.sessions[roomID]; found {
		s, ok = *cur, true
	}
	r.mu.Unlock()
	if !ok {
		return SnapshotResponse{}, ErrNoSession
	}
	return SnapshotResponse{
		SessionID: s.id,
		RoomID:    roomID,
		Snapshot:  s.player.Snapshot(),
	}, nil
}

// Unwatch tears down the room's playback and releases its timer.
func (r *Rooms) Unwatch(_ context.Context, roomID string) error {
	roomID = strings.TrimSpace(roomID)
	if roomID == "" {
		return ErrInvalidRequest
	}
	r.mu.Lock()
	s, ok := r.sessions[roomID]
	delete(r.sessions, roomID)
	r.mu.Unlock()
	if !ok {
		return ErrNoSession
	}
	s.player.Stop()
	return nil
}

// Ingest stores a log supplied by the game server. If the room is being
// watched the running playback is replaced by the new log.
func (r *Rooms) Ingest(ctx context.Context, req IngestRequest) (IngestResponse, error) {
	roomID := strings.TrimSpace(req.Log.RoomID)
	if roomID == "" {
		return IngestResponse{}, ErrInvalidRequest
	}
	if req.Log.Empty() {
		return IngestResponse{}, fmt.Errorf("%w: empty event list", ErrInvalidRequest)
	}
	if r.cfg.Logs == nil {
		return IngestResponse{}, fmt.Errorf("event log repository is not configured")
	}
	req.Log.RoomID = roomID
	if err := r.cfg.Logs.Save(ctx, req.Log); err != nil {
		return IngestResponse{}, err
	}

	_, watched, err := r.start(req.Log, true)
	if err != nil {
		return IngestResponse{}, err
	}
	return IngestResponse{RoomID: roomID, EventCount: req.Log.Len(), Restarted: watched}, nil
}

// Close stops every room's playback.
func (r *Rooms) Close() {
	r.cancel()
	r.mu.Lock()
	sessions := r.sessions
	r.sessions = map[string]*session{}
	r.mu.Unlock()
	for _, s := range sessions {
		s.player.Stop()
	}
}

// Watching lists rooms with a live session.
func (r *Rooms) Watching() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.sessions))
	for id := range r.sessions {
		out = append(out, id)
	}
	return out
}

// start loads log into the room's player and publishes a new session value.
// Sessions are never modified after they are stored, so readers may use a
// copy taken under r.mu. With onlyIfWatched set, an unwatched room is left
// alone and started reports false.
func (r *Rooms) start(log match.EventLog, onlyIfWatched bool) (session, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var player *timeline.Player
	if prev, ok := r.sessions[log.RoomID]; ok {
		player = prev.player
	} else if onlyIfWatched {
		return session{}, false, nil
	} else {
		player = timeline.NewPlayer(timeline.Config{
			Interval: r.cfg.Interval,
			Clock:    r.cfg.Clock,
			Metrics:  r.cfg.Metrics,
		})
	}
	// Load cancels the previous timer before the new one starts.
	if err := player.Load(log); err != nil {
		if errors.Is(err, timeline.ErrEmptyLog) {
			return session{}, false, fmt.Errorf("%w: room %s", ErrNoLog, log.RoomID)
		}
		return session{}, false, err
	}
	s := &session{
		id:        uuid.NewString(),
		startedAt: r.cfg.Now(),
		player:    player,
	}
	player.Play(r.ctx)
	r.sessions[log.RoomID] = s
	return *s, true, nil
}
