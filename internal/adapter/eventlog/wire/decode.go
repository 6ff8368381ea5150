// Package wire decodes match logs in the game server's JSON shape.
package wire

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"deceit/internal/domain/match"
)

var ErrNoRooms = errors.New("payload contains no room view")

// ID accepts the numeric or string agent ids the game server emits.
type ID string

func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("agent id: %w", err)
	}
	*id = ID(n.String())
	return nil
}

type Player struct {
	AgentID      ID      `json:"agentId"`
	MockName     string  `json:"mockName"`
	AgentName    string  `json:"agentName"`
	Role         *string `json:"role"`
	PlayerStatus string  `json:"playerStatus"`
	Avatar       *string `json:"avatar"`
}

type Event struct {
	Round           int      `json:"round"`
	EventType       string   `json:"eventType"`
	AgentID         ID       `json:"agentId"`
	MockName        *string  `json:"mockName"`
	VoteToMockName  *string  `json:"voteToMockName"`
	Text            *string  `json:"text"`
	PlayerList      []Player `json:"playerList"`
	HighLightIndex  *int     `json:"highLightIndex"`
	LoadingMockName *string  `json:"loadingMockName"`
}

type Agent struct {
	AgentID   ID     `json:"agentId"`
	AgentName string `json:"agentName"`
}

type EndGame struct {
	WinnerRole     string  `json:"winnerRole"`
	SpyWord        string  `json:"spyWord"`
	CivilianWord   string  `json:"civilianWord"`
	SpyAgent       *Agent  `json:"spyAgent"`
	SpyAgents      []Agent `json:"spyAgents"`
	CivilianAgents []Agent `json:"civilianAgents"`
}

type RoomView struct {
	RoomID      ID       `json:"roomId"`
	EventList   []Event  `json:"eventList"`
	EndGameData *EndGame `json:"endGameData"`
}

type envelope struct {
	Data struct {
		RoomViewList []RoomView `json:"roomViewList"`
	} `json:"data"`
}

// Decode reads either the full `{data:{roomViewList:[...]}}` envelope or a
// single bare room view. Rooms without their own id take defaultRoomID.
func Decode(r io.Reader, defaultRoomID string) ([]match.EventLog, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("decode room views: %w", err)
	}
	views := env.Data.RoomViewList
	if len(views) == 0 {
		var single RoomView
		if err := json.Unmarshal(raw, &single); err != nil {
			return nil, fmt.Errorf("decode room view: %w", err)
		}
		if single.EventList == nil && single.EndGameData == nil {
			return nil, ErrNoRooms
		}
		views = []RoomView{single}
	}

	logs := make([]match.EventLog, 0, len(views))
	for i, v := range views {
		roomID := strings.TrimSpace(string(v.RoomID))
		if roomID == "" {
			roomID = defaultRoomID
			if len(views) > 1 {
				roomID = defaultRoomID + "-" + strconv.Itoa(i+1)
			}
		}
		logs = append(logs, v.toLog(roomID))
	}
	return logs, nil
}

// DecodeRoom decodes a payload that must carry exactly one room.
func DecodeRoom(r io.Reader, roomID string) (match.EventLog, error) {
	logs, err := Decode(r, roomID)
	if err != nil {
		return match.EventLog{}, err
	}
	if len(logs) != 1 {
		return match.EventLog{}, fmt.Errorf("expected one room view, got %d", len(logs))
	}
	log := logs[0]
	log.RoomID = roomID
	return log, nil
}

// LoadFile reads a fixture file of recorded matches.
func LoadFile(path, defaultRoomID string) ([]match.EventLog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	logs, err := Decode(f, defaultRoomID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return logs, nil
}

func (v RoomView) toLog(roomID string) match.EventLog {
	log := match.EventLog{RoomID: roomID, Events: make([]match.GameEvent, 0, len(v.EventList))}
	for _, e := range v.EventList {
		log.Events = append(log.Events, e.toEvent())
	}
	if v.EndGameData != nil {
		end := v.EndGameData.toSummary()
		log.End = &end
	}
	return log
}

func (e Event) toEvent() match.GameEvent {
	ev := match.GameEvent{
		Round:            e.Round,
		Type:             match.EventType(e.EventType),
		ActorID:          string(e.AgentID),
		ActorName:        deref(e.MockName),
		Text:             e.Text,
		VoteTarget:       e.VoteToMockName,
		HighlightIndex:   e.HighLightIndex,
		PendingActorName: e.LoadingMockName,
		Roster:           make([]match.Player, 0, len(e.PlayerList)),
	}
	for _, p := range e.PlayerList {
		ev.Roster = append(ev.Roster, match.Player{
			ID:          string(p.AgentID),
			Name:        p.MockName,
			DisplayName: p.AgentName,
			Role:        match.Role(deref(p.Role)),
			Status:      match.PlayerStatus(p.PlayerStatus),
			Avatar:      deref(p.Avatar),
		})
	}
	return ev
}

func (g EndGame) toSummary() match.EndSummary {
	s := match.EndSummary{
		WinnerRole:     match.Role(g.WinnerRole),
		SpyWord:        g.SpyWord,
		CivilianWord:   g.CivilianWord,
		SpyAgents:      []match.AgentRef{},
		CivilianAgents: []match.AgentRef{},
	}
	if g.SpyAgent != nil {
		s.SpyAgents = append(s.SpyAgents, g.SpyAgent.ref())
	}
	for _, a := range g.SpyAgents {
		s.SpyAgents = append(s.SpyAgents, a.ref())
	}
	for _, a := range g.CivilianAgents {
		s.CivilianAgents = append(s.CivilianAgents, a.ref())
	}
	return s
}

func (a Agent) ref() match.AgentRef {
	return match.AgentRef{ID: string(a.AgentID), Name: a.AgentName}
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
