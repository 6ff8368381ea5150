package gormrepo

import (
	"context"
	"errors"
	"os"
	"testing"

	"deceit/internal/app/ports"
	"deceit/internal/domain/match"
)

func requireDSN(t *testing.T) string {
	t.Helper()
	dsn := os.Getenv("DECEIT_DB_DSN")
	if dsn == "" {
		t.Skip("DECEIT_DB_DSN is required for integration test")
	}
	return dsn
}

func str(s string) *string { return &s }

func TestEventLogRepo_RoundTripAndReplace(t *testing.T) {
	dsn := requireDSN(t)
	ctx := context.Background()
	db, err := OpenPostgres(ctx, dsn, PoolConfig{})
	if err != nil {
		t.Fatalf("open postgres: %v", err)
	}
	defer Close(db)
	if _, err := ApplyMigrations(ctx, db, os.DirFS("../../../../db/migrations")); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	roomID := "it-room-roundtrip"
	_ = db.Exec("DELETE FROM room_event_logs WHERE room_id = ?", roomID).Error

	repo := NewEventLogRepo(db)
	if _, err := repo.GetByRoomID(ctx, roomID); !errors.Is(err, ports.ErrNotFound) {
		t.Fatalf("expected ErrNotFound before save, got %v", err)
	}

	hl := 1
	seed := match.EventLog{
		RoomID: roomID,
		Events: []match.GameEvent{
			{Round: 1, Type: match.EventHostSpeech, Text: str("welcome")},
			{Round: 1, Type: match.EventVote, ActorName: "P1", VoteTarget: str("P2"), HighlightIndex: &hl,
				Roster: []match.Player{{ID: "1", Name: "P1", Status: match.PlayerAlive}}},
		},
		End: &match.EndSummary{WinnerRole: match.RoleSpy, SpyWord: "pear", CivilianWord: "apple",
			SpyAgents: []match.AgentRef{{Name: "P2"}}, CivilianAgents: []match.AgentRef{{Name: "P1"}}},
	}
	if err := repo.Save(ctx, seed); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := repo.GetByRoomID(ctx, ""); !errors.Is(err, ports.ErrNotFound) {
		t.Fatalf("blank room id got=%v want=%v", err, ports.ErrNotFound)
	}
	got, err := repo.GetByRoomID(ctx, roomID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Len() != 2 || got.Events[1].VoteTarget == nil || *got.Events[1].VoteTarget != "P2" {
		t.Fatalf("unexpected events: %+v", got.Events)
	}
	if got.Events[1].HighlightIndex == nil || *got.Events[1].HighlightIndex != 1 {
		t.Fatalf("highlight index lost: %+v", got.Events[1])
	}
	if got.End == nil || got.End.WinnerRole != match.RoleSpy || len(got.End.SpyAgents) != 1 {
		t.Fatalf("unexpected end summary: %+v", got.End)
	}

	seed.Events = seed.Events[:1]
	seed.End = nil
	if err := repo.Save(ctx, seed); err != nil {
		t.Fatalf("replace: %v", err)
	}
	got, err = repo.GetByRoomID(ctx, roomID)
	if err != nil {
		t.Fatalf("get after replace: %v", err)
	}
	if got.Len() != 1 || got.End != nil {
		t.Fatalf("expected replaced log, got len=%d end=%v", got.Len(), got.End)
	}
}
