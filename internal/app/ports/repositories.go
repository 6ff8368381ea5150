package ports

import (
	"context"

	"deceit/internal/domain/match"
)

type EventLogRepository interface {
	GetByRoomID(ctx context.Context, roomID string) (match.EventLog, error)
	Save(ctx context.Context, log match.EventLog) error
}
