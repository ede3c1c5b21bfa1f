package dto

import "time"

// ── 签到模块 DTO ──

// OpenSessionRequest 开启签到会话请求
type OpenSessionRequest struct {
	// TTLSeconds 会话有效期（秒），0 使用服务端默认值
	TTLSeconds int `json:"ttl_seconds" binding:"omitempty,min=5,max=3600"`
	// CodeDisabled 为 true 时仅发放二维码令牌，不生成手输签到码
	CodeDisabled bool `json:"code_disabled"`
	// LateAfter 可选迟到判定线，超过该时刻的签到标记 is_late
	LateAfter *time.Time `json:"late_after"`
}

// SessionResponse 签到会话信息（面向组织者）
type SessionResponse struct {
	ID        int64      `json:"id"`
	EventID   int64      `json:"event_id"`
	Status    string     `json:"status"`
	Code      string     `json:"code,omitempty"` // 令牌模式为空
	ExpiresAt time.Time  `json:"expires_at"`
	LateAfter *time.Time `json:"late_after,omitempty"`
}

// SessionTokenResponse 当前轮换的二维码令牌
type SessionTokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// SessionCodeResponse 当前轮换的手输签到码
type SessionCodeResponse struct {
	Code      string    `json:"code"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ScanTokenRequest 扫码签到请求
type ScanTokenRequest struct {
	Token      string `json:"token"       binding:"required"`
	DeviceHash string `json:"device_hash" binding:"omitempty,max=64"`
}

// ScanCodeRequest 手输签到码签到请求
type ScanCodeRequest struct {
	Code       string `json:"code"        binding:"required"`
	DeviceHash string `json:"device_hash" binding:"omitempty,max=64"`
}

// ── 签到结果状态 ──

const (
	CheckInStatusNew    = "checked_in"
	CheckInStatusRepeat = "already_checked_in"
)

// CheckInResult 签到结果
// 重复签到返回 already_checked_in，对成员幂等，不作为错误
type CheckInResult struct {
	Status      string    `json:"status"` // checked_in | already_checked_in
	CheckedInAt time.Time `json:"checked_in_at"`
	IsLate      bool      `json:"is_late"`
}

// AttendanceRecordResponse 签到记录（面向组织者的名单）
type AttendanceRecordResponse struct {
	MemberID    int64     `json:"member_id"`
	MemberName  string    `json:"member_name"`
	CheckedInAt time.Time `json:"checked_in_at"`
	IsLate      bool      `json:"is_late"`
}

// [自证通过] internal/dto/attendance.go
