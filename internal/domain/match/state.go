package match

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
)

var ErrMalformedEvent = errors.New("malformed event")

type Phase string

const (
	PhaseIdle    Phase = "idle"
	PhasePlaying Phase = "playing"
	PhaseEnded   Phase = "ended"
)

// RoundActor keys per-round speech and vote records.
type RoundActor struct {
	Round int
	Actor string
}

type Diagnostic struct {
	Cursor int       `json:"cursor"`
	Type   EventType `json:"event_type"`
	Reason string    `json:"reason"`
}

// ReplayState is what a spectator should currently see. Values are treated
// as immutable: Step returns a new state and never mutates its input.
type ReplayState struct {
	Cursor       int
	CurrentRound int
	Speeches     map[RoundActor]string
	Votes        map[RoundActor]string
	Ended        bool
	EndSummary   *EndSummary
	Diagnostics  []Diagnostic
}

func IdleState() ReplayState {
	return ReplayState{Cursor: -1}
}

// NewReplayState positions the cursor on the first event. The first event is
// the initial display and is not replayed as a transition.
func NewReplayState(log EventLog) ReplayState {
	if log.Empty() {
		return IdleState()
	}
	return ReplayState{
		Cursor:       0,
		CurrentRound: log.Events[0].Round,
		Speeches:     map[RoundActor]string{},
		Votes:        map[RoundActor]string{},
	}
}

func (s ReplayState) Phase() Phase {
	switch {
	case s.Ended:
		return PhaseEnded
	case s.Cursor < 0:
		return PhaseIdle
	default:
		return PhasePlaying
	}
}

func (s ReplayState) Speech(round int, actor string) (string, bool) {
	text, ok := s.Speeches[RoundActor{Round: round, Actor: actor}]
	return text, ok
}

func (s ReplayState) Vote(round int, actor string) (string, bool) {
	target, ok := s.Votes[RoundActor{Round: round, Actor: actor}]
	return target, ok
}

func (s ReplayState) clone() ReplayState {
	out := s
	out.Speeches = maps.Clone(s.Speeches)
	out.Votes = maps.Clone(s.Votes)
	if out.Speeches == nil {
		out.Speeches = map[RoundActor]string{}
	}
	if out.Votes == nil {
		out.Votes = map[RoundActor]string{}
	}
	out.Diagnostics = slices.Clone(s.Diagnostics)
	return out
}

// Validate reports whether the event carries the fields its type needs to
// have an effect on replay state.
func (e GameEvent) Validate() error {
	switch e.Type {
	case EventAgentSpeech:
		if strings.TrimSpace(e.ActorName) == "" {
			return fmt.Errorf("%w: %s without actor name", ErrMalformedEvent, e.Type)
		}
	case EventVote:
		if strings.TrimSpace(e.ActorName) == "" {
			return fmt.Errorf("%w: %s without actor name", ErrMalformedEvent, e.Type)
		}
		if e.VoteTarget == nil || strings.TrimSpace(*e.VoteTarget) == "" {
			return fmt.Errorf("%w: %s without vote target", ErrMalformedEvent, e.Type)
		}
	case EventHostSpeech, EventEliminationAnnouncement:
	default:
	}
	return nil
}

// Step advances the replay by one event. On the tick after the last event
// has been shown the state ends and picks up the log's end summary. Idle and
// ended states are returned unchanged. The returned diagnostic is non-nil
// when the applied event was malformed and its effect was skipped.
func Step(s ReplayState, log EventLog) (ReplayState, *Diagnostic) {
	if s.Ended || s.Cursor < 0 || s.Cursor >= log.Len() {
		return s, nil
	}
	if s.Cursor == log.Len()-1 {
		out := s.clone()
		out.Ended = true
		out.EndSummary = log.End.clone()
		return out, nil
	}

	curr := log.Events[s.Cursor]
	next := log.Events[s.Cursor+1]
	out := s.clone()
	diag := out.apply(next, s.Cursor+1)
	if next.Round != curr.Round {
		out.Speeches = map[RoundActor]string{}
		out.Votes = map[RoundActor]string{}
		out.CurrentRound = next.Round
	}
	out.Cursor++
	return out, diag
}

func (s *ReplayState) apply(evt GameEvent, cursor int) *Diagnostic {
	if err := evt.Validate(); err != nil {
		d := Diagnostic{Cursor: cursor, Type: evt.Type, Reason: err.Error()}
		s.Diagnostics = append(s.Diagnostics, d)
		return &d
	}
	key := RoundActor{Round: evt.Round, Actor: evt.ActorName}
	switch evt.Type {
	case EventAgentSpeech:
		if evt.Text != nil {
			s.Speeches[key] = *evt.Text
		}
	case EventVote:
		s.Votes[key] = *evt.VoteTarget
	case EventHostSpeech, EventEliminationAnnouncement:
	default:
	}
	return nil
}

func (e *EndSummary) clone() *EndSummary {
	if e == nil {
		return nil
	}
	out := *e
	out.SpyAgents = slices.Clone(e.SpyAgents)
	out.CivilianAgents = slices.Clone(e.CivilianAgents)
	return &out
}
