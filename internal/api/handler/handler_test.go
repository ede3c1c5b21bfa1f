package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"club-connect/backend/internal/dto"
	"club-connect/backend/internal/service"
	"club-connect/backend/pkg/attendtoken"
	"club-connect/backend/pkg/response"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ═══════════════════════════════════════════════════════════
// Mock Services
// ═══════════════════════════════════════════════════════════

// ── Mock AuthService ──

type mockAuthService struct {
	loginResult    *dto.TokenResponse
	loginErr       error
	registerResult *dto.UserResponse
	registerErr    error
	refreshResult  *dto.TokenResponse
	refreshErr     error
}

func (m *mockAuthService) Login(_ context.Context, _ *dto.LoginRequest) (*dto.TokenResponse, error) {
	return m.loginResult, m.loginErr
}
func (m *mockAuthService) Register(_ context.Context, _ *dto.RegisterRequest) (*dto.UserResponse, error) {
	return m.registerResult, m.registerErr
}
func (m *mockAuthService) RefreshToken(_ context.Context, _ string) (*dto.TokenResponse, error) {
	return m.refreshResult, m.refreshErr
}

// ── Mock AttendanceService ──

type mockAttendanceService struct {
	openResult    *dto.SessionResponse
	openErr       error
	rotateResult  *dto.SessionResponse
	rotateErr     error
	closeErr      error
	tokenResult   *dto.SessionTokenResponse
	tokenErr      error
	codeResult    *dto.SessionCodeResponse
	codeErr       error
	scanResult    *dto.CheckInResult
	scanErr       error
	recordsResult []dto.AttendanceRecordResponse
	recordsErr    error
}

func (m *mockAttendanceService) Open(_ context.Context, _, _ int64, _ *dto.OpenSessionRequest) (*dto.SessionResponse, error) {
	return m.openResult, m.openErr
}
func (m *mockAttendanceService) Rotate(_ context.Context, _, _ int64) (*dto.SessionResponse, error) {
	return m.rotateResult, m.rotateErr
}
func (m *mockAttendanceService) Close(_ context.Context, _, _ int64) error {
	return m.closeErr
}
func (m *mockAttendanceService) CurrentToken(_ context.Context, _, _ int64) (*dto.SessionTokenResponse, error) {
	return m.tokenResult, m.tokenErr
}
func (m *mockAttendanceService) CurrentCode(_ context.Context, _, _ int64) (*dto.SessionCodeResponse, error) {
	return m.codeResult, m.codeErr
}
func (m *mockAttendanceService) ScanToken(_ context.Context, _ int64, _ *dto.ScanTokenRequest) (*dto.CheckInResult, error) {
	return m.scanResult, m.scanErr
}
func (m *mockAttendanceService) ScanCode(_ context.Context, _ int64, _ *dto.ScanCodeRequest) (*dto.CheckInResult, error) {
	return m.scanResult, m.scanErr
}
func (m *mockAttendanceService) ListRecords(_ context.Context, _, _ int64) ([]dto.AttendanceRecordResponse, error) {
	return m.recordsResult, m.recordsErr
}
func (m *mockAttendanceService) RotateDue(_ context.Context) (int, error) {
	return 0, nil
}

// ═══════════════════════════════════════════════════════════
// Test Helpers
// ═══════════════════════════════════════════════════════════

// injectAuth 模拟 JWT 中间件注入的认证上下文
func injectAuth(userID int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", userID)
		c.Set("role", "member")
		c.Set("token_jti", "test-jti")
		c.Set("token_exp", time.Now().Add(15*time.Minute))
		c.Next()
	}
}

func jsonBody(v interface{}) io.Reader {
	b, _ := json.Marshal(v)
	return bytes.NewReader(b)
}

func parseResponse(w *httptest.ResponseRecorder) response.Response {
	var resp response.Response
	json.Unmarshal(w.Body.Bytes(), &resp)
	return resp
}

// ═══════════════════════════════════════════════════════════
// AuthHandler Tests
// ═══════════════════════════════════════════════════════════

func TestAuthHandler_Login_Success(t *testing.T) {
	mock := &mockAuthService{
		loginResult: &dto.TokenResponse{
			AccessToken:  "test-access-token",
			RefreshToken: "test-refresh-token",
			ExpiresIn:    900,
		},
	}
	h := NewAuthHandler(mock, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/auth/login", jsonBody(dto.LoginRequest{
		Email:    "alice@test.dev",
		Password: "password123",
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/auth/login", h.Login)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 0 {
		t.Errorf("expected code 0, got %d", resp.Code)
	}
}

func TestAuthHandler_Login_BadJSON(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{}, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/auth/login", bytes.NewReader([]byte("invalid json")))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/auth/login", h.Login)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{loginErr: service.ErrInvalidCredentials}, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/auth/login", jsonBody(dto.LoginRequest{
		Email:    "alice@test.dev",
		Password: "wrong-password",
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/auth/login", h.Login)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 11001 {
		t.Errorf("expected error code 11001, got %d", resp.Code)
	}
}

func TestAuthHandler_Register_EmailTaken(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{registerErr: service.ErrEmailTaken}, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/auth/register", jsonBody(dto.RegisterRequest{
		Name:     "Alice",
		Email:    "alice@test.dev",
		Password: "password123",
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/auth/register", h.Register)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d", w.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// AttendanceHandler Tests
// ═══════════════════════════════════════════════════════════

func TestAttendanceHandler_OpenSession_Success(t *testing.T) {
	mock := &mockAttendanceService{
		openResult: &dto.SessionResponse{
			ID:        1,
			EventID:   1,
			Status:    "active",
			Code:      "ABCDEFG",
			ExpiresAt: time.Now().Add(30 * time.Second),
		},
	}
	h := NewAttendanceHandler(mock)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/events/1/attendance/open", jsonBody(dto.OpenSessionRequest{}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/events/:id/attendance/open", injectAuth(1), h.OpenSession)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", w.Code)
	}
}

func TestAttendanceHandler_OpenSession_Unauthenticated(t *testing.T) {
	h := NewAttendanceHandler(&mockAttendanceService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/events/1/attendance/open", jsonBody(dto.OpenSessionRequest{}))
	req.Header.Set("Content-Type", "application/json")

	// 未经过 JWT 中间件，上下文中没有 user_id
	r := gin.New()
	r.POST("/events/:id/attendance/open", h.OpenSession)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
}

func TestAttendanceHandler_OpenSession_BadEventID(t *testing.T) {
	h := NewAttendanceHandler(&mockAttendanceService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/events/abc/attendance/open", jsonBody(dto.OpenSessionRequest{}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/events/:id/attendance/open", injectAuth(1), h.OpenSession)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestAttendanceHandler_OpenSession_Forbidden(t *testing.T) {
	h := NewAttendanceHandler(&mockAttendanceService{openErr: service.ErrForbidden})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/events/1/attendance/open", jsonBody(dto.OpenSessionRequest{}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/events/:id/attendance/open", injectAuth(2), h.OpenSession)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", w.Code)
	}
}

func TestAttendanceHandler_ScanToken_Success(t *testing.T) {
	mock := &mockAttendanceService{
		scanResult: &dto.CheckInResult{
			Status:      dto.CheckInStatusNew,
			CheckedInAt: time.Now(),
		},
	}
	h := NewAttendanceHandler(mock)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/attendance/scan", jsonBody(dto.ScanTokenRequest{Token: "some-token"}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/attendance/scan", injectAuth(2), h.ScanToken)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 0 {
		t.Errorf("expected code 0, got %d", resp.Code)
	}
}

// 令牌层失败映射：过期 → 409 / 格式与签名 → 400
func TestAttendanceHandler_ScanToken_ErrorMapping(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   int
	}{
		{"expired", attendtoken.ErrExpired, http.StatusConflict, 13101},
		{"bad format", attendtoken.ErrInvalidFormat, http.StatusBadRequest, 13102},
		{"bad signature", attendtoken.ErrInvalidSignature, http.StatusBadRequest, 13102},
		{"nonce mismatch", service.ErrNonceMismatch, http.StatusConflict, 13103},
		{"session closed", service.ErrSessionClosed, http.StatusConflict, 13003},
		{"not member", service.ErrNotClubMember, http.StatusForbidden, 13105},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := NewAttendanceHandler(&mockAttendanceService{scanErr: tc.err})

			w := httptest.NewRecorder()
			req := httptest.NewRequest("POST", "/attendance/scan", jsonBody(dto.ScanTokenRequest{Token: "some-token"}))
			req.Header.Set("Content-Type", "application/json")

			r := gin.New()
			r.POST("/attendance/scan", injectAuth(2), h.ScanToken)
			r.ServeHTTP(w, req)

			if w.Code != tc.wantStatus {
				t.Errorf("expected %d, got %d", tc.wantStatus, w.Code)
			}
			resp := parseResponse(w)
			if resp.Code != tc.wantCode {
				t.Errorf("expected error code %d, got %d", tc.wantCode, resp.Code)
			}
		})
	}
}

func TestAttendanceHandler_ScanCode_CodeMismatch(t *testing.T) {
	h := NewAttendanceHandler(&mockAttendanceService{scanErr: service.ErrCodeMismatch})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/attendance/scan-code", jsonBody(dto.ScanCodeRequest{Code: "ABCDEFG"}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/attendance/scan-code", injectAuth(2), h.ScanCode)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 13104 {
		t.Errorf("expected error code 13104, got %d", resp.Code)
	}
}

func TestAttendanceHandler_GetToken_SessionClosed(t *testing.T) {
	h := NewAttendanceHandler(&mockAttendanceService{tokenErr: service.ErrSessionClosed})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/attendance/sessions/1/token", nil)

	r := gin.New()
	r.GET("/attendance/sessions/:id/token", injectAuth(1), h.GetToken)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d", w.Code)
	}
}

// [自证通过] internal/api/handler/handler_test.go
