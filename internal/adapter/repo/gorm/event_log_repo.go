package gormrepo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"deceit/internal/adapter/repo/gorm/model"
	"deceit/internal/app/ports"
	"deceit/internal/domain/match"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type EventLogRepo struct {
	db  *gorm.DB
	now func() time.Time
}

func NewEventLogRepo(db *gorm.DB) EventLogRepo {
	return EventLogRepo{db: db, now: time.Now}
}

func (r EventLogRepo) GetByRoomID(ctx context.Context, roomID string) (match.EventLog, error) {
	if strings.TrimSpace(roomID) == "" {
		return match.EventLog{}, ports.ErrNotFound
	}
	var row model.RoomEventLog
	err := r.db.WithContext(ctx).Where("room_id = ?", roomID).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return match.EventLog{}, ports.ErrNotFound
	}
	if err != nil {
		return match.EventLog{}, err
	}

	log := match.EventLog{RoomID: row.RoomID}
	if err := json.Unmarshal(row.Events, &log.Events); err != nil {
		return match.EventLog{}, fmt.Errorf("decode events for room %s: %w", roomID, err)
	}
	if len(row.EndSummary) > 0 {
		var end match.EndSummary
		if err := json.Unmarshal(row.EndSummary, &end); err != nil {
			return match.EventLog{}, fmt.Errorf("decode end summary for room %s: %w", roomID, err)
		}
		log.End = &end
	}
	return log, nil
}

// Save replaces any stored log for the room.
func (r EventLogRepo) Save(ctx context.Context, log match.EventLog) error {
	events, err := json.Marshal(log.Events)
	if err != nil {
		return err
	}
	var end []byte
	if log.End != nil {
		if end, err = json.Marshal(log.End); err != nil {
			return err
		}
	}
	now := r.now()
	row := model.RoomEventLog{
		RoomID:     log.RoomID,
		EventCount: log.Len(),
		Events:     events,
		EndSummary: end,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "room_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"event_count", "events", "end_summary", "updated_at"}),
	}).Create(&row).Error
}
