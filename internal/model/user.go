package model

// ── 用户角色 ──

const (
	RoleAdmin  = "admin"
	RoleOwner  = "owner"
	RoleMember = "member"
)

// User 用户表 — 对应 users
type User struct {
	UserID       int64  `gorm:"primaryKey;autoIncrement"                    json:"user_id"`
	Email        string `gorm:"type:varchar(255);not null;uniqueIndex:uq_users_email" json:"email"`
	PasswordHash string `gorm:"type:varchar(100);not null"                  json:"-"`
	Name         string `gorm:"type:varchar(50);not null"                   json:"name"`
	Role         string `gorm:"type:varchar(20);not null;default:'member'"  json:"role"` // admin | owner | member
	BaseModel
}

// TableName 指定表名
func (User) TableName() string { return "users" }

// [自证通过] internal/model/user.go
