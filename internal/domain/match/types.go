package match

type EventType string

const (
	EventHostSpeech              EventType = "hostSpeech"
	EventAgentSpeech             EventType = "agentSpeech"
	EventVote                    EventType = "vote"
	EventEliminationAnnouncement EventType = "eliminationAnnouncement"
)

type PlayerStatus string

const (
	PlayerAlive      PlayerStatus = "alive"
	PlayerEliminated PlayerStatus = "eliminated"
)

type Role string

const (
	RoleSpy      Role = "spy"
	RoleCivilian Role = "civilian"
)

// Player is one roster entry. Name is the in-game handle used as the actor
// key; DisplayName is the agent's own name shown under the avatar.
type Player struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	DisplayName string       `json:"display_name,omitempty"`
	Role        Role         `json:"role,omitempty"`
	Status      PlayerStatus `json:"status"`
	Avatar      string       `json:"avatar,omitempty"`
}

func (p Player) Alive() bool {
	return p.Status == PlayerAlive
}

// GameEvent is one immutable entry of a match log. Roster is the full player
// list as of this event and replaces any earlier roster.
type GameEvent struct {
	Round            int       `json:"round"`
	Type             EventType `json:"event_type"`
	ActorID          string    `json:"actor_id,omitempty"`
	ActorName        string    `json:"actor_name,omitempty"`
	Text             *string   `json:"text,omitempty"`
	VoteTarget       *string   `json:"vote_target,omitempty"`
	Roster           []Player  `json:"player_snapshot"`
	HighlightIndex   *int      `json:"highlight_index,omitempty"`
	PendingActorName *string   `json:"pending_actor_name,omitempty"`
}

type AgentRef struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name"`
}

type EndSummary struct {
	WinnerRole     Role       `json:"winner_role"`
	SpyWord        string     `json:"spy_word"`
	CivilianWord   string     `json:"civilian_word"`
	SpyAgents      []AgentRef `json:"spy_agents"`
	CivilianAgents []AgentRef `json:"civilian_agents"`
}

// EventLog is the whole recorded match for one room.
type EventLog struct {
	RoomID string      `json:"room_id"`
	Events []GameEvent `json:"events"`
	End    *EndSummary `json:"end,omitempty"`
}

func (l EventLog) Len() int {
	return len(l.Events)
}

func (l EventLog) Empty() bool {
	return len(l.Events) == 0
}

func derefString(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
