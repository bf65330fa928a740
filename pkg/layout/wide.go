package layout

import "unicode/utf16"

// EncodeWide writes text into dst as UTF-16 code units followed by a single
// zero terminator and returns the number of units written, not counting the
// terminator. Text longer than len(dst)-1 units is truncated to exactly
// len(dst)-1 units without error, with one exception: a surrogate pair is
// never split, so when only its first half would fit neither half is written
// and the result is len(dst)-2 units. The decoded result is then always a
// prefix of text. An empty dst is left untouched.
//
// Invalid UTF-8 in text is written as U+FFFD.
func EncodeWide(dst []uint16, text string) int {
	if len(dst) == 0 {
		return 0
	}
	limit := len(dst) - 1
	n := 0
	for _, r := range text {
		if r < 0x10000 {
			if n == limit {
				break
			}
			dst[n] = uint16(r)
			n++
			continue
		}
		if n+2 > limit {
			break
		}
		r1, r2 := utf16.EncodeRune(r)
		dst[n] = uint16(r1)
		dst[n+1] = uint16(r2)
		n += 2
	}
	dst[n] = 0
	return n
}

// DecodeWide decodes src up to its first zero unit, or its end if there is
// none. Unpaired surrogates decode to U+FFFD.
func DecodeWide(src []uint16) string {
	end := len(src)
	for i, c := range src {
		if c == 0 {
			end = i
			break
		}
	}
	return string(utf16.Decode(src[:end]))
}
