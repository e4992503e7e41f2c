package main

import (
	"strings"
	"unicode/utf8"
)

const hexDigits = "0123456789ABCDEF"

// encodeHex renders b as upper case hex digit pairs separated by single blanks
func encodeHex(b []byte) string {
	if len(b) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.Grow(len(b)*3 - 1)
	for i, v := range b {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteByte(hexDigits[v>>4])
		sb.WriteByte(hexDigits[v&0x0f])
	}
	return sb.String()
}

// decodedHexLen is the number of bytes a hex string of n characters decodes to.
// An odd count gets an implicit leading zero nibble.
func decodedHexLen(n int) int {
	return (n + 1) / 2
}

// hexValue returns the value of one hex digit, or false if c is not one
func hexValue(c rune) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return byte(c - '0'), true
	case c >= 'A' && c <= 'F':
		return byte(c - 'A' + 10), true
	case c >= 'a' && c <= 'f':
		return byte(c - 'a' + 10), true
	}
	return 0, false
}

// decodeHex converts a hex string of any length into bytes
func decodeHex(text string) ([]byte, error) {
	dst := make([]byte, decodedHexLen(utf8.RuneCountInString(text)))
	if err := decodeHexInto(dst, text); err != nil {
		return nil, err
	}
	return dst, nil
}

// decodeHexInto fills dst, which must hold decodedHexLen characters of text.
// Characters are consumed left to right, one nibble each. With an odd
// character count the first character is the low nibble of dst[0].
func decodeHexInto(dst []byte, text string) error {
	n := utf8.RuneCountInString(text)
	lowNibble := n%2 != 0

	var pending byte
	out := 0
	pos := 0
	for _, c := range text {
		pos++
		v, ok := hexValue(c)
		if !ok {
			return &InvalidHexCharacterError{Position: pos, Char: c, Text: text}
		}

		if lowNibble {
			dst[out] = pending | v
			out++
		} else {
			pending = v << 4
		}
		lowNibble = !lowNibble
	}
	return nil
}
