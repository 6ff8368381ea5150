package spectate

import (
	"time"

	"deceit/internal/domain/match"
)

type WatchRequest struct {
	RoomID string
}

type WatchResponse struct {
	SessionID string         `json:"session_id"`
	RoomID    string         `json:"room_id"`
	StartedAt time.Time      `json:"started_at"`
	Snapshot  match.Snapshot `json:"snapshot"`
}

type SnapshotRequest struct {
	RoomID string
}

type SnapshotResponse struct {
	SessionID string         `json:"session_id"`
	RoomID    string         `json:"room_id"`
	Snapshot  match.Snapshot `json:"snapshot"`
}

type IngestRequest struct {
	Log match.EventLog
}

type IngestResponse struct {
	RoomID     string `json:"room_id"`
	EventCount int    `json:"event_count"`
	Restarted  bool   `json:"restarted"`
}
