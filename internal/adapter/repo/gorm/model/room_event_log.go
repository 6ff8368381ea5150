package model

import "time"

type RoomEventLog struct {
	RoomID     string    `gorm:"column:room_id;primaryKey"`
	EventCount int       `gorm:"column:event_count"`
	Events     []byte    `gorm:"column:events;type:jsonb"`
	EndSummary []byte    `gorm:"column:end_summary;type:jsonb"`
	CreatedAt  time.Time `gorm:"column:created_at"`
	UpdatedAt  time.Time `gorm:"column:updated_at"`
}

func (RoomEventLog) TableName() string {
	return "room_event_logs"
}
