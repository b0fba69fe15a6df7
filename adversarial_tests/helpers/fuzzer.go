package helpers

import (
	"math/rand"
	"strings"
)

// Fuzzer produces hostile inputs for argument validation.
type Fuzzer struct {
	rand *rand.Rand
}

// NewFuzzer creates a fuzzer with a fixed seed.
func NewFuzzer(seed int64) *Fuzzer {
	return &Fuzzer{rand: rand.New(rand.NewSource(seed))}
}

// FuzzItemID returns item ids that must all be rejected.
func (f *Fuzzer) FuzzItemID() []string {
	ids := []string{
		"",
		" ",
		"-1",
		"+1",
		"1.0",
		"1e3",
		"0x10",
		" 42",
		"42 ",
		"4 2",
		"42\n",
		"\u0661\u0662\u0663",   // Arabic-Indic digits
		"\uff11\uff12\uff13",   // fullwidth digits
		"99999999999999999999", // overflows int64
		"1;DROP TABLE comments",
		"../1",
		"1&op=user",
		"\x00",
	}
	ids = append(ids, f.GenerateControlCharString()...)
	for i := 0; i < 20; i++ {
		ids = append(ids, f.GenerateRandomString(1+f.rand.Intn(12), true)+"x")
	}
	return ids
}

// FuzzUserAgent returns user agents that must be rejected.
func (f *Fuzzer) FuzzUserAgent() []string {
	return []string{
		"bot\r\nX-Injected: 1",
		"bot\nHost: evil.example",
		"bot\r",
		strings.Repeat("a", 257),
		strings.Repeat("ua/1.0 ", 100),
	}
}

// FuzzBlank returns strings that are empty once whitespace is trimmed.
func (f *Fuzzer) FuzzBlank() []string {
	return []string{"", " ", "\t", "\n", " \r\n\t ", "\u00a0", "\u3000"}
}

// FuzzText returns strings that are odd but acceptable names or messages.
// They must survive a round trip unchanged.
func (f *Fuzzer) FuzzText() []string {
	out := []string{
		"a&b=c",
		"100% legit",
		"名前",
		"emoji 🎉🔥",
		"line one\nline two",
		"'; DROP TABLE users; --",
		"<script>alert(1)</script>",
		"+plus+signs+",
		strings.Repeat("long ", 2000),
	}
	out = append(out, f.GenerateUnicodeAttacks()...)
	return out
}

// GenerateRandomString returns a random string of length n.
func (f *Fuzzer) GenerateRandomString(n int, includeSpecial bool) string {
	charset := "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	if includeSpecial {
		charset += "!@#$%^&*()-_=+[]{}|;:',.<>?/`~ "
	}
	b := make([]byte, n)
	for i := range b {
		b[i] = charset[f.rand.Intn(len(charset))]
	}
	return string(b)
}

// GenerateControlCharString returns strings holding ASCII control characters.
func (f *Fuzzer) GenerateControlCharString() []string {
	var out []string
	for _, c := range []byte{0x00, 0x07, 0x08, 0x0b, 0x1b, 0x7f} {
		out = append(out, "12"+string(c)+"3")
	}
	return out
}

// GenerateUnicodeAttacks returns strings with confusable or invisible runes.
func (f *Fuzzer) GenerateUnicodeAttacks() []string {
	return []string{
		"admin\u200b",                    // zero width space
		"\u202eevil",                     // right-to-left override
		"cafe\u0301",                     // combining accent
		"\uff21\uff24\uff2d\uff29\uff2e", // fullwidth
		"\ufeffbom",                      // byte order mark
	}
}
