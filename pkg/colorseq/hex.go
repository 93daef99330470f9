package colorseq

import (
	"fmt"
	"strconv"
	"strings"
)

const hexDigits = "0123456789abcdef"

// TrueMod returns a mod b with the sign of b, so TrueMod(-1, 3) == 2.
// b must be non-zero.
func TrueMod(a, b int) int {
	m := a % b
	if m < 0 {
		m += b
	}
	return m
}

// HexByte renders a channel value (0..255) as exactly two lower-case hex
// digits.  Values outside the byte range are clamped.
func HexByte(v int) string {
	if v < 0 {
		v = 0
	}
	if v > 0xff {
		v = 0xff
	}
	return string([]byte{hexDigits[v>>4], hexDigits[v&0x0f]})
}

// FormatHex renders three channel values as "#rrggbb".
func FormatHex(ch [3]int) string {
	var sb strings.Builder
	sb.Grow(7)
	sb.WriteByte('#')
	for _, v := range ch {
		sb.WriteString(HexByte(v))
	}
	return sb.String()
}

// ParseHex is the inverse of FormatHex.  It accepts "#rrggbb" in either case.
func ParseHex(s string) ([3]int, error) {
	var ch [3]int
	if len(s) != 7 || s[0] != '#' {
		return ch, fmt.Errorf("colorseq: %q is not a #rrggbb colour", s)
	}
	for i := 0; i < 3; i++ {
		v, err := strconv.ParseUint(s[1+2*i:3+2*i], 16, 8)
		if err != nil {
			return ch, fmt.Errorf("colorseq: %q is not a #rrggbb colour: %w", s, err)
		}
		ch[i] = int(v)
	}
	return ch, nil
}

//Personal.AI order the ending
