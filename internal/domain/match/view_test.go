package match

import (
	"reflect"
	"testing"
)

func TestStatusLines_SpeechRound(t *testing.T) {
	players := roster("P1", "P2", "P3")
	players[2].Status = PlayerEliminated
	log := EventLog{Events: []GameEvent{
		{Round: 1, Type: EventHostSpeech, Roster: players},
		{Round: 1, Type: EventAgentSpeech, ActorName: "P1", Text: str("hello"), Roster: players, PendingActorName: str("P2")},
	}}
	s, _ := Step(NewReplayState(log), log)
	evt, _ := ActiveEvent(log, s)

	got := StatusLines(evt, s)
	want := []string{"P1 finished speaking", "P2 is speaking..."}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("status lines got=%v want=%v", got, want)
	}
}

func TestStatusLines_VoteRoundSkipsEliminated(t *testing.T) {
	players := roster("P1", "P2", "P3")
	players[1].Status = PlayerEliminated
	log := EventLog{Events: []GameEvent{
		{Round: 2, Type: EventHostSpeech, Roster: players},
		{Round: 2, Type: EventVote, ActorName: "P1", VoteTarget: str("P3"), Roster: players, PendingActorName: str("P3")},
		{Round: 2, Type: EventVote, ActorName: "P2", VoteTarget: str("P1"), Roster: players},
	}}
	s := NewReplayState(log)
	s, _ = Step(s, log)
	s, _ = Step(s, log)
	evt, _ := ActiveEvent(log, s)
	evt.PendingActorName = str("P3")

	got := StatusLines(evt, s)
	want := []string{"P1 voted for P3", "P3 is voting..."}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("status lines got=%v want=%v", got, want)
	}
}

func TestIsActorPendingAndSilent(t *testing.T) {
	players := roster("P1", "P2")
	log := EventLog{Events: []GameEvent{
		{Round: 1, Type: EventHostSpeech, Roster: players, PendingActorName: str("P1")},
		{Round: 1, Type: EventAgentSpeech, ActorName: "P1", Text: str("done"), Roster: players, PendingActorName: str("P1")},
	}}
	s := NewReplayState(log)
	evt, _ := ActiveEvent(log, s)
	if !IsActorPendingAndSilent(evt, s, "P1") {
		t.Fatalf("P1 should be pending before speaking")
	}
	if IsActorPendingAndSilent(evt, s, "P2") {
		t.Fatalf("P2 is not the pending actor")
	}

	s, _ = Step(s, log)
	evt, _ = ActiveEvent(log, s)
	if IsActorPendingAndSilent(evt, s, "P1") {
		t.Fatalf("P1 already spoke this round")
	}
}

func TestIsActorHighlighted(t *testing.T) {
	evt := GameEvent{HighlightIndex: idx(2)}
	if !IsActorHighlighted(evt, 2) || IsActorHighlighted(evt, 1) {
		t.Fatalf("highlight should match index 2 only")
	}
	if IsActorHighlighted(GameEvent{}, 0) {
		t.Fatalf("nil highlight index should not highlight anyone")
	}
}

func TestProject_PanelsAndHostLine(t *testing.T) {
	players := roster("P1", "P2")
	players[0].DisplayName = "Ada"
	log := EventLog{Events: []GameEvent{
		{Round: 1, Type: EventHostSpeech, Text: str("Everyone describe your word"), Roster: players},
		{Round: 1, Type: EventAgentSpeech, ActorName: "P1", Text: str("it is round"), Roster: players, HighlightIndex: idx(0)},
	}}
	s := NewReplayState(log)
	snap := Project(log, s)
	if snap.HostLine != "Everyone describe your word" {
		t.Fatalf("host line got=%q", snap.HostLine)
	}

	s, _ = Step(s, log)
	snap = Project(log, s)
	if snap.HostLine != "Round 1" {
		t.Fatalf("host line got=%q want=%q", snap.HostLine, "Round 1")
	}
	if len(snap.Panels) != 2 {
		t.Fatalf("panels got=%d want=2", len(snap.Panels))
	}
	if snap.Panels[0].DisplayName != "Ada" || snap.Panels[1].DisplayName != "" {
		t.Fatalf("display names got=%q,%q want=Ada,\"\"", snap.Panels[0].DisplayName, snap.Panels[1].DisplayName)
	}
	if !snap.Panels[0].Highlighted || snap.Panels[0].Text != "it is round" {
		t.Fatalf("unexpected first panel: %+v", snap.Panels[0])
	}
	if snap.Panels[1].Highlighted || snap.Panels[1].Text != "" {
		t.Fatalf("unexpected second panel: %+v", snap.Panels[1])
	}
	if snap.Phase != PhasePlaying || snap.Total != 2 || snap.Cursor != 1 {
		t.Fatalf("unexpected snapshot header: %+v", snap)
	}
}

func TestProject_IsIdempotentAndDetached(t *testing.T) {
	players := roster("P1", "P2")
	log := EventLog{Events: []GameEvent{
		{Round: 1, Type: EventHostSpeech, Roster: players},
		{Round: 1, Type: EventAgentSpeech, ActorName: "P1", Text: str("hi"), Roster: players},
	}}
	s, _ := Step(NewReplayState(log), log)

	first := Project(log, s)
	second := Project(log, s)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("projection differs between calls:\n%+v\n%+v", first, second)
	}

	first.Event.Roster[0].Name = "mutated"
	*first.Event.Text = "mutated"
	if log.Events[1].Roster[0].Name != "P1" || *log.Events[1].Text != "hi" {
		t.Fatalf("snapshot shares memory with the log")
	}
}

func TestProject_IdleHasNoEvent(t *testing.T) {
	snap := Project(EventLog{}, IdleState())
	if snap.Event != nil || snap.Phase != PhaseIdle {
		t.Fatalf("unexpected idle snapshot: %+v", snap)
	}
}
