package colorseq

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrueMod(t *testing.T) {
	tests := []struct {
		a, b, want int
	}{
		{-1, 3, 2},
		{-3, 3, 0},
		{-4, 3, 2},
		{0, 3, 0},
		{2, 3, 2},
		{4, 3, 1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, TrueMod(tt.a, tt.b), "TrueMod(%d, %d)", tt.a, tt.b)
	}
}

func TestHexByte_ZeroPadded(t *testing.T) {
	assert.Equal(t, "00", HexByte(0))
	assert.Equal(t, "0f", HexByte(15))
	assert.Equal(t, "33", HexByte(51))
	assert.Equal(t, "66", HexByte(102))
	assert.Equal(t, "ff", HexByte(255))
}

func TestHexByte_Clamps(t *testing.T) {
	assert.Equal(t, "00", HexByte(-5))
	assert.Equal(t, "ff", HexByte(300))
}

func TestFormatHex(t *testing.T) {
	assert.Equal(t, "#660000", FormatHex([3]int{102, 0, 0}))
	assert.Equal(t, "#003366", FormatHex([3]int{0, 51, 102}))
}

func TestParseHex(t *testing.T) {
	ch, err := ParseHex("#336600")
	require.NoError(t, err)
	assert.Equal(t, [3]int{51, 102, 0}, ch)

	ch, err = ParseHex("#FFfF00")
	require.NoError(t, err)
	assert.Equal(t, [3]int{255, 255, 0}, ch)
}

func TestParseHex_Invalid(t *testing.T) {
	for _, s := range []string{"", "660000", "#66000", "#6600000", "#gg0000"} {
		_, err := ParseHex(s)
		assert.Error(t, err, "input %q", s)
	}
}

//Personal.AI order the ending
