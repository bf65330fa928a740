package layout

import (
	"strings"
	"testing"
	"unicode/utf16"

	"github.com/stretchr/testify/assert"
)

func wide(s string) []uint16 {
	return append(utf16.Encode([]rune(s)), 0)
}

func TestEncodeWide(t *testing.T) {
	buf := make([]uint16, 32)
	for i := range buf {
		buf[i] = 1
	}
	n := EncodeWide(buf, "FooBar")
	assert.Equal(t, 6, n)
	assert.Equal(t, wide("FooBar"), buf[:7])

	small := []uint16{1, 1, 1}
	n = EncodeWide(small, "ABC")
	assert.Equal(t, 2, n)
	assert.Equal(t, wide("AB"), small)
}

func TestEncodeWideEmptyDestination(t *testing.T) {
	assert.Equal(t, 0, EncodeWide(nil, "anything"))
	assert.Equal(t, 0, EncodeWide([]uint16{}, "anything"))
}

func TestEncodeWideSingleUnitHoldsOnlyTerminator(t *testing.T) {
	buf := []uint16{7}
	assert.Equal(t, 0, EncodeWide(buf, "abc"))
	assert.Equal(t, []uint16{0}, buf)
}

func TestEncodeWideTruncationProperty(t *testing.T) {
	cases := []struct {
		capacity int
		text     string
	}{
		{256, strings.Repeat("x", 1000)},
		{256, strings.Repeat("é", 255)},
		{2048, strings.Repeat("description ", 400)},
		{8, "Mumble Link"},
		{4, "ab"},
	}
	for _, c := range cases {
		buf := make([]uint16, c.capacity)
		n := EncodeWide(buf, c.text)

		units := utf16.Encode([]rune(c.text))
		want := min(len(units), c.capacity-1)
		assert.Equal(t, want, n, "capacity %d", c.capacity)
		assert.Equal(t, uint16(0), buf[n])

		decoded := DecodeWide(buf)
		assert.True(t, strings.HasPrefix(c.text, decoded), "%q is not a prefix", decoded)
		assert.Equal(t, string(utf16.Decode(units[:want])), decoded)
	}
}

func TestEncodeWideKeepsSurrogatePairsWhole(t *testing.T) {
	// "a" + U+1F3A4 needs three units; only two fit before the terminator.
	buf := make([]uint16, 3)
	n := EncodeWide(buf, "a\U0001F3A4")
	assert.Equal(t, len(buf)-2, n)
	assert.Equal(t, uint16(0), buf[1])
	assert.Equal(t, "a", DecodeWide(buf))

	buf = make([]uint16, 4)
	n = EncodeWide(buf, "a\U0001F3A4")
	assert.Equal(t, 3, n)
	assert.Equal(t, "a\U0001F3A4", DecodeWide(buf))
}

func TestDecodeWide(t *testing.T) {
	assert.Equal(t, "", DecodeWide(nil))
	assert.Equal(t, "abc", DecodeWide([]uint16{'a', 'b', 'c'}))
	assert.Equal(t, "ab", DecodeWide([]uint16{'a', 'b', 0, 'c'}))
	// unpaired high surrogate
	assert.Equal(t, "a�b", DecodeWide([]uint16{'a', 0xD800, 'b', 0}))
}
