package memory

import (
	"context"
	"slices"
	"sync"

	"deceit/internal/app/ports"
	"deceit/internal/domain/match"
)

// Store keeps event logs in process. Logs are copied on the way in and out
// so callers never share slices with the store.
type Store struct {
	mu   sync.RWMutex
	logs map[string]match.EventLog
}

func NewStore() *Store {
	return &Store{logs: make(map[string]match.EventLog)}
}

// Seed loads fixtures, replacing any rooms with the same id.
func (s *Store) Seed(logs ...match.EventLog) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, log := range logs {
		s.logs[log.RoomID] = copyLog(log)
	}
}

func (s *Store) GetByRoomID(_ context.Context, roomID string) (match.EventLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	log, ok := s.logs[roomID]
	if !ok {
		return match.EventLog{}, ports.ErrNotFound
	}
	return copyLog(log), nil
}

func (s *Store) Save(_ context.Context, log match.EventLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logs[log.RoomID] = copyLog(log)
	return nil
}

// RoomIDs lists stored rooms in sorted order.
func (s *Store) RoomIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.logs))
	for id := range s.logs {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}

func copyLog(log match.EventLog) match.EventLog {
	out := match.EventLog{RoomID: log.RoomID, Events: make([]match.GameEvent, len(log.Events))}
	for i, e := range log.Events {
		e.Roster = slices.Clone(e.Roster)
		out.Events[i] = e
	}
	if log.End != nil {
		end := *log.End
		end.SpyAgents = slices.Clone(end.SpyAgents)
		end.CivilianAgents = slices.Clone(end.CivilianAgents)
		out.End = &end
	}
	return out
}
