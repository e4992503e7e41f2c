package main

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// NativeEncoding is the in-memory text representation command line
// arguments are assumed to arrive in
type NativeEncoding string

const (
	// EncodingUTF16 is little endian UTF-16, the wide character form of Windows
	EncodingUTF16 NativeEncoding = "utf16"
	// EncodingANSI is the Windows-1252 code page
	EncodingANSI NativeEncoding = "ansi"
	// EncodingUTF8 is the byte form POSIX systems hand to programs
	EncodingUTF8 NativeEncoding = "utf8"

	// ansiReplacement stands in for runes the code page cannot represent
	ansiReplacement = '?'
)

var (
	errInvalidUTF8       = errors.New("text is not valid UTF-8")
	errOddUTF16Length    = errors.New("UTF-16 text has an odd number of bytes")
	errUnpairedSurrogate = errors.New("UTF-16 text contains an unpaired surrogate")

	utf16LE  = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)
	codePage = charmap.Windows1252
)

func parseNativeEncoding(s string) (NativeEncoding, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "utf16", "utf-16", "unicode":
		return EncodingUTF16, nil
	case "ansi", "cp1252", "windows-1252":
		return EncodingANSI, nil
	case "utf8", "utf-8":
		return EncodingUTF8, nil
	}
	return "", fmt.Errorf("unknown native encoding %q (use utf16, ansi or utf8)", s)
}

// nativeBytes returns text as it would sit in memory in the native encoding.
// Runes outside the ANSI code page are replaced the way Windows converts
// wide command lines for ANSI programs.
func (e NativeEncoding) nativeBytes(text string) ([]byte, error) {
	if !utf8.ValidString(text) {
		return nil, &EncodingConversionError{Encoding: e, Cause: errInvalidUTF8}
	}

	switch e {
	case EncodingUTF16:
		b, err := utf16LE.NewEncoder().Bytes([]byte(text))
		if err != nil {
			return nil, &EncodingConversionError{Encoding: e, Cause: err}
		}
		return b, nil
	case EncodingANSI:
		b := make([]byte, 0, len(text))
		for _, r := range text {
			c, ok := codePage.EncodeRune(r)
			if !ok {
				c = ansiReplacement
			}
			b = append(b, c)
		}
		return b, nil
	case EncodingUTF8:
		return []byte(text), nil
	}
	return nil, &EncodingConversionError{Encoding: e, Cause: fmt.Errorf("unsupported native encoding %q", string(e))}
}

// toCanonicalBytes converts native encoded text into UTF-8
func (e NativeEncoding) toCanonicalBytes(native []byte) ([]byte, error) {
	switch e {
	case EncodingUTF16:
		if err := validateUTF16LE(native); err != nil {
			return nil, &EncodingConversionError{Encoding: e, Cause: err}
		}
		b, err := utf16LE.NewDecoder().Bytes(native)
		if err != nil {
			return nil, &EncodingConversionError{Encoding: e, Cause: err}
		}
		return b, nil
	case EncodingANSI:
		b := make([]byte, 0, len(native)*2)
		for _, c := range native {
			b = utf8.AppendRune(b, codePage.DecodeByte(c))
		}
		return b, nil
	case EncodingUTF8:
		if !utf8.Valid(native) {
			return nil, &EncodingConversionError{Encoding: e, Cause: errInvalidUTF8}
		}
		return append([]byte(nil), native...), nil
	}
	return nil, &EncodingConversionError{Encoding: e, Cause: fmt.Errorf("unsupported native encoding %q", string(e))}
}

func validateUTF16LE(b []byte) error {
	if len(b)%2 != 0 {
		return errOddUTF16Length
	}

	for i := 0; i < len(b); i += 2 {
		u := rune(binary.LittleEndian.Uint16(b[i:]))
		if !utf16.IsSurrogate(u) {
			continue
		}
		if u >= 0xDC00 || i+2 >= len(b) {
			return errUnpairedSurrogate
		}
		next := rune(binary.LittleEndian.Uint16(b[i+2:]))
		if utf16.DecodeRune(u, next) == utf8.RuneError {
			return errUnpairedSurrogate
		}
		i += 2
	}
	return nil
}
