package main

import (
	"encoding/binary"
	"errors"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Argument bounds
const (
	minSalt           = 0
	maxSalt           = math.MaxInt32
	minIterationCount = 1
	maxIterationCount = 5000000

	// naiveSaltSize is the width of the C int the naive salt is stored in
	naiveSaltSize = 4
)

// parseIntegerArg parses a base 10 argument and checks it against [minValue, maxValue]
func parseIntegerArg(name, arg string, minValue, maxValue int64) (int64, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(arg), 10, 64)
	if err != nil {
		var numErr *strconv.NumError
		if errors.As(err, &numErr) && errors.Is(numErr.Err, strconv.ErrRange) {
			if strings.HasPrefix(strings.TrimSpace(arg), "-") {
				return 0, &ArgumentRangeError{Name: name, Bound: minValue}
			}
			return 0, &ArgumentRangeError{Name: name, Bound: maxValue, Upper: true}
		}
		return 0, &ArgumentFormatError{Name: name}
	}

	if v < minValue {
		return 0, &ArgumentRangeError{Name: name, Bound: minValue}
	}
	if v > maxValue {
		return 0, &ArgumentRangeError{Name: name, Bound: maxValue, Upper: true}
	}
	return v, nil
}

func resolveHashAlgorithm(arg string) (HashAlgorithm, error) {
	code, err := parseIntegerArg("hashType", arg, minHashType, maxHashType)
	if err != nil {
		return 0, err
	}
	alg, _ := hashAlgorithmFromCode(int(code))
	return alg, nil
}

func resolveIterationCount(arg string) (int, error) {
	n, err := parseIntegerArg("iterationCount", arg, minIterationCount, maxIterationCount)
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

// resolveSalt turns the salt argument into bytes.
//
// In ModeNaive the argument is an integer and the salt is the in-memory
// representation of a 32 bit int in host byte order. In ModeCorrect the
// argument is a hex string and the salt is its decoded bytes.
func resolveSalt(arena *bufferArena, arg string, mode Mode) ([]byte, error) {
	if mode == ModeCorrect {
		salt, err := arena.alloc(decodedHexLen(utf8.RuneCountInString(arg)), "salt byte array")
		if err != nil {
			return nil, err
		}
		if err := decodeHexInto(salt, arg); err != nil {
			return nil, err
		}
		return salt, nil
	}

	v, err := parseIntegerArg("salt", arg, minSalt, maxSalt)
	if err != nil {
		return nil, err
	}
	salt, err := arena.alloc(naiveSaltSize, "salt integer")
	if err != nil {
		return nil, err
	}
	binary.NativeEndian.PutUint32(salt, uint32(v))
	return salt, nil
}

// saltText renders resolved salt bytes for display: the integer in ModeNaive,
// hex pairs in ModeCorrect
func saltText(salt []byte, mode Mode) string {
	if mode == ModeNaive && len(salt) == naiveSaltSize {
		return strconv.FormatInt(int64(int32(binary.NativeEndian.Uint32(salt))), 10)
	}
	return encodeHex(salt)
}

// resolvePassword produces the bytes that are hashed.
//
// ModeNaive hashes the native representation unchanged, ModeCorrect converts
// it to UTF-8 first.
func resolvePassword(arena *bufferArena, arg string, mode Mode, enc NativeEncoding) ([]byte, error) {
	native, err := enc.nativeBytes(arg)
	if err != nil {
		return nil, err
	}
	defer zeroBytes(native)

	var pw []byte
	if mode == ModeCorrect {
		utf8Bytes, err := enc.toCanonicalBytes(native)
		if err != nil {
			return nil, err
		}
		defer zeroBytes(utf8Bytes)
		pw = utf8Bytes
	} else {
		pw = native
	}

	buf, err := arena.alloc(len(pw), "password")
	if err != nil {
		return nil, err
	}
	copy(buf, pw)
	return buf, nil
}
