package match

import (
	"fmt"
	"slices"
)

type Panel struct {
	Index       int          `json:"index"`
	PlayerID    string       `json:"player_id,omitempty"`
	Name        string       `json:"name"`
	DisplayName string       `json:"display_name,omitempty"`
	Role        Role         `json:"role,omitempty"`
	Status      PlayerStatus `json:"status"`
	Avatar      string       `json:"avatar,omitempty"`
	Text        string       `json:"text,omitempty"`
	Vote        string       `json:"vote,omitempty"`
	Highlighted bool         `json:"highlighted"`
	Pending     bool         `json:"pending"`
	Eliminated  bool         `json:"eliminated"`
}

// Snapshot is the read-only projection handed to presentation code.
type Snapshot struct {
	Phase       Phase        `json:"phase"`
	Cursor      int          `json:"cursor"`
	Total       int          `json:"total"`
	Round       int          `json:"round"`
	HostLine    string       `json:"host_line,omitempty"`
	Event       *GameEvent   `json:"event,omitempty"`
	Panels      []Panel      `json:"panels"`
	StatusLines []string     `json:"status_lines"`
	EndSummary  *EndSummary  `json:"end_summary,omitempty"`
	Diagnostics []Diagnostic `json:"diagnostics,omitempty"`
}

func ActiveEvent(log EventLog, s ReplayState) (GameEvent, bool) {
	if s.Cursor < 0 || s.Cursor >= log.Len() {
		return GameEvent{}, false
	}
	return log.Events[s.Cursor], true
}

func IsActorHighlighted(evt GameEvent, index int) bool {
	return evt.HighlightIndex != nil && *evt.HighlightIndex == index
}

// IsActorPendingAndSilent is true while the actor is in progress and has
// neither spoken nor voted in the current round.
func IsActorPendingAndSilent(evt GameEvent, s ReplayState, actor string) bool {
	if evt.PendingActorName == nil || *evt.PendingActorName != actor {
		return false
	}
	if _, ok := s.Speech(s.CurrentRound, actor); ok {
		return false
	}
	if _, ok := s.Vote(s.CurrentRound, actor); ok {
		return false
	}
	return true
}

// StatusLines renders the per-player progress lines for alive players in
// roster order.
func StatusLines(evt GameEvent, s ReplayState) []string {
	pending := derefString(evt.PendingActorName)
	out := make([]string, 0, len(evt.Roster))
	for _, p := range evt.Roster {
		if !p.Alive() {
			continue
		}
		if evt.Type == EventVote {
			if target, ok := s.Vote(s.CurrentRound, p.Name); ok {
				out = append(out, fmt.Sprintf("%s voted for %s", p.Name, target))
			} else if evt.PendingActorName != nil && pending == p.Name {
				out = append(out, fmt.Sprintf("%s is voting...", p.Name))
			}
			continue
		}
		if _, ok := s.Speech(s.CurrentRound, p.Name); ok {
			out = append(out, fmt.Sprintf("%s finished speaking", p.Name))
		} else if evt.PendingActorName != nil && pending == p.Name {
			out = append(out, fmt.Sprintf("%s is speaking...", p.Name))
		}
	}
	return out
}

func HostLine(evt GameEvent, s ReplayState) string {
	if evt.Type == EventHostSpeech && evt.Text != nil {
		return *evt.Text
	}
	return fmt.Sprintf("Round %d", s.CurrentRound)
}

// Project builds a snapshot that shares no mutable memory with the log or
// the state.
func Project(log EventLog, s ReplayState) Snapshot {
	snap := Snapshot{
		Phase:       s.Phase(),
		Cursor:      s.Cursor,
		Total:       log.Len(),
		Round:       s.CurrentRound,
		Panels:      []Panel{},
		StatusLines: []string{},
		Diagnostics: slices.Clone(s.Diagnostics),
	}
	if s.Ended {
		snap.EndSummary = s.EndSummary.clone()
	}
	evt, ok := ActiveEvent(log, s)
	if !ok {
		return snap
	}
	snap.Event = evt.clone()
	snap.HostLine = HostLine(evt, s)
	snap.StatusLines = StatusLines(evt, s)
	for i, p := range evt.Roster {
		text, _ := s.Speech(s.CurrentRound, p.Name)
		vote, _ := s.Vote(s.CurrentRound, p.Name)
		snap.Panels = append(snap.Panels, Panel{
			Index:       i,
			PlayerID:    p.ID,
			Name:        p.Name,
			DisplayName: p.DisplayName,
			Role:        p.Role,
			Status:      p.Status,
			Avatar:      p.Avatar,
			Text:        text,
			Vote:        vote,
			Highlighted: IsActorHighlighted(evt, i),
			Pending:     IsActorPendingAndSilent(evt, s, p.Name),
			Eliminated:  !p.Alive(),
		})
	}
	return snap
}

func (e GameEvent) clone() *GameEvent {
	out := e
	out.Roster = slices.Clone(e.Roster)
	if e.Text != nil {
		v := *e.Text
		out.Text = &v
	}
	if e.VoteTarget != nil {
		v := *e.VoteTarget
		out.VoteTarget = &v
	}
	if e.HighlightIndex != nil {
		v := *e.HighlightIndex
		out.HighlightIndex = &v
	}
	if e.PendingActorName != nil {
		v := *e.PendingActorName
		out.PendingActorName = &v
	}
	return &out
}
