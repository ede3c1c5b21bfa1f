package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"gorm.io/gorm"

	"club-connect/backend/internal/model"
	"club-connect/backend/internal/repository"
)

// ── Mock Repositories ──
//
// 与生产实现保持同样的错误语义：未命中返回 gorm.ErrRecordNotFound，
// 撞唯一约束返回 gorm.ErrDuplicatedKey。签到记录仓库带互斥锁，
// 以模拟数据库唯一索引在并发下的原子判定。

type mockUserRepo struct {
	users  map[int64]*model.User
	nextID int64
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[int64]*model.User), nextID: 1}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	for _, u := range m.users {
		if u.Email == user.Email {
			return gorm.ErrDuplicatedKey
		}
	}
	if user.UserID == 0 {
		user.UserID = m.nextID
		m.nextID++
	}
	m.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id int64) (*model.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

type mockClubRepo struct {
	clubs  map[int64]*model.Club
	nextID int64
}

func newMockClubRepo() *mockClubRepo {
	return &mockClubRepo{clubs: make(map[int64]*model.Club), nextID: 1}
}

func (m *mockClubRepo) Create(_ context.Context, club *model.Club) error {
	if club.ClubID == 0 {
		club.ClubID = m.nextID
		m.nextID++
	}
	m.clubs[club.ClubID] = club
	return nil
}

func (m *mockClubRepo) GetByID(_ context.Context, id int64) (*model.Club, error) {
	if c, ok := m.clubs[id]; ok {
		return c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

type mockMembershipRepo struct {
	memberships map[string]*model.Membership // key: "clubID:userID"
}

func newMockMembershipRepo() *mockMembershipRepo {
	return &mockMembershipRepo{memberships: make(map[string]*model.Membership)}
}

func membershipKey(clubID, userID int64) string {
	return fmt.Sprintf("%d:%d", clubID, userID)
}

func (m *mockMembershipRepo) Create(_ context.Context, ms *model.Membership) error {
	key := membershipKey(ms.ClubID, ms.UserID)
	if _, ok := m.memberships[key]; ok {
		return gorm.ErrDuplicatedKey
	}
	m.memberships[key] = ms
	return nil
}

func (m *mockMembershipRepo) GetByClubAndUser(_ context.Context, clubID, userID int64) (*model.Membership, error) {
	if ms, ok := m.memberships[membershipKey(clubID, userID)]; ok {
		return ms, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockMembershipRepo) ListByClub(_ context.Context, clubID int64) ([]model.Membership, error) {
	var result []model.Membership
	for _, ms := range m.memberships {
		if ms.ClubID == clubID {
			result = append(result, *ms)
		}
	}
	return result, nil
}

type mockEventRepo struct {
	events map[int64]*model.Event
	nextID int64
}

func newMockEventRepo() *mockEventRepo {
	return &mockEventRepo{events: make(map[int64]*model.Event), nextID: 1}
}

func (m *mockEventRepo) Create(_ context.Context, event *model.Event) error {
	if event.EventID == 0 {
		event.EventID = m.nextID
		m.nextID++
	}
	m.events[event.EventID] = event
	return nil
}

func (m *mockEventRepo) GetByID(_ context.Context, id int64) (*model.Event, error) {
	if e, ok := m.events[id]; ok {
		return e, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockEventRepo) ListByClub(_ context.Context, clubID int64) ([]model.Event, error) {
	var result []model.Event
	for _, e := range m.events {
		if e.ClubID == clubID {
			result = append(result, *e)
		}
	}
	return result, nil
}

type mockSessionRepo struct {
	mu       sync.Mutex
	sessions map[int64]*model.AttendanceSession
	nextID   int64
}

func newMockSessionRepo() *mockSessionRepo {
	return &mockSessionRepo{sessions: make(map[int64]*model.AttendanceSession), nextID: 1}
}

func (m *mockSessionRepo) Create(_ context.Context, s *model.AttendanceSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s.SessionID == 0 {
		s.SessionID = m.nextID
		m.nextID++
	}
	cp := *s
	m.sessions[s.SessionID] = &cp
	return nil
}

func (m *mockSessionRepo) GetByID(_ context.Context, id int64) (*model.AttendanceSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[id]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSessionRepo) GetUsableByCode(_ context.Context, code string, now time.Time) (*model.AttendanceSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.sessions {
		if s.CurrentCode != nil && *s.CurrentCode == code && s.IsUsable(now) {
			cp := *s
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSessionRepo) ListUsable(_ context.Context, now time.Time) ([]model.AttendanceSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.AttendanceSession
	for _, s := range m.sessions {
		if s.IsUsable(now) {
			result = append(result, *s)
		}
	}
	return result, nil
}

func (m *mockSessionRepo) UpdateRotation(_ context.Context, sessionID int64, nonce string, code *string, expiresAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[sessionID]
	if !ok || s.Status != model.SessionStatusActive {
		return gorm.ErrRecordNotFound
	}
	s.CurrentNonce = nonce
	s.CurrentCode = code
	s.ExpiresAt = expiresAt
	return nil
}

func (m *mockSessionRepo) CloseByID(_ context.Context, sessionID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[sessionID]; ok {
		s.Status = model.SessionStatusClosed
	}
	return nil
}

func (m *mockSessionRepo) CloseActiveByEvent(_ context.Context, eventID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.sessions {
		if s.EventID == eventID && s.Status == model.SessionStatusActive {
			s.Status = model.SessionStatusClosed
		}
	}
	return nil
}

type mockRecordRepo struct {
	mu      sync.Mutex
	records map[string]*model.AttendanceRecord // key: "sessionID:memberID"
	nextID  int64
}

func newMockRecordRepo() *mockRecordRepo {
	return &mockRecordRepo{records: make(map[string]*model.AttendanceRecord), nextID: 1}
}

func recordKey(sessionID, memberID int64) string {
	return fmt.Sprintf("%d:%d", sessionID, memberID)
}

// Create 模拟唯一索引 (session_id, member_id)：锁内判重保证并发原子性
func (m *mockRecordRepo) Create(_ context.Context, r *model.AttendanceRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := recordKey(r.SessionID, r.MemberID)
	if _, ok := m.records[key]; ok {
		return gorm.ErrDuplicatedKey
	}
	r.RecordID = m.nextID
	m.nextID++
	cp := *r
	m.records[key] = &cp
	return nil
}

func (m *mockRecordRepo) GetBySessionAndMember(_ context.Context, sessionID, memberID int64) (*model.AttendanceRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r, ok := m.records[recordKey(sessionID, memberID)]; ok {
		cp := *r
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockRecordRepo) ListBySession(_ context.Context, sessionID int64) ([]model.AttendanceRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.AttendanceRecord
	for _, r := range m.records {
		if r.SessionID == sessionID {
			result = append(result, *r)
		}
	}
	return result, nil
}

func (m *mockRecordRepo) CountBySession(_ context.Context, sessionID int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var count int64
	for _, r := range m.records {
		if r.SessionID == sessionID {
			count++
		}
	}
	return count, nil
}

// newMockRepository 组装全套 mock 仓库
func newMockRepository() *repository.Repository {
	return &repository.Repository{
		User:              newMockUserRepo(),
		Club:              newMockClubRepo(),
		Membership:        newMockMembershipRepo(),
		Event:             newMockEventRepo(),
		AttendanceSession: newMockSessionRepo(),
		AttendanceRecord:  newMockRecordRepo(),
	}
}

// [自证通过] internal/service/mock_repos_test.go
