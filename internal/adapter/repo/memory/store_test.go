package memory

import (
	"context"
	"errors"
	"testing"

	"deceit/internal/app/ports"
	"deceit/internal/domain/match"
)

func TestStore_SaveAndGet(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	if _, err := s.GetByRoomID(ctx, "r1"); !errors.Is(err, ports.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	log := match.EventLog{
		RoomID: "r1",
		Events: []match.GameEvent{{Round: 1, Type: match.EventHostSpeech, Roster: []match.Player{{Name: "P1"}}}},
		End:    &match.EndSummary{WinnerRole: match.RoleSpy, SpyAgents: []match.AgentRef{{Name: "P1"}}},
	}
	if err := s.Save(ctx, log); err != nil {
		t.Fatalf("Save error: %v", err)
	}
	log.Events[0].Roster[0].Name = "mutated"
	log.End.SpyAgents[0].Name = "mutated"

	got, err := s.GetByRoomID(ctx, "r1")
	if err != nil {
		t.Fatalf("GetByRoomID error: %v", err)
	}
	if got.Events[0].Roster[0].Name != "P1" || got.End.SpyAgents[0].Name != "P1" {
		t.Fatalf("store shares memory with caller: %+v", got)
	}
}

func TestStore_SeedReplacesAndLists(t *testing.T) {
	s := NewStore()
	s.Seed(match.EventLog{RoomID: "b"}, match.EventLog{RoomID: "a"})
	s.Seed(match.EventLog{RoomID: "a", Events: []match.GameEvent{{Round: 2}}})

	ids := s.RoomIDs()
	if len(ids) != 2 || ids[0] != "a" || ids[1] != "b" {
		t.Fatalf("room ids got=%v", ids)
	}
	got, _ := s.GetByRoomID(context.Background(), "a")
	if got.Len() != 1 {
		t.Fatalf("seed should replace room a, got len=%d", got.Len())
	}
}
