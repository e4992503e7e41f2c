package main

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var durationLineRe = regexp.MustCompile(`^Duration: \d+ ms$`)

type runResult struct {
	code   int
	stdout string
	stderr string
}

func runArgs(t *testing.T, args ...string) runResult {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(args, &stdout, &stderr)
	return runResult{code: code, stdout: stdout.String(), stderr: stderr.String()}
}

// resultLines splits successful output into the report and duration lines
func resultLines(t *testing.T, r runResult) (string, string) {
	t.Helper()
	require.Equal(t, ExitSuccess, r.code, "stderr: %s", r.stderr)
	lines := strings.Split(strings.TrimRight(r.stdout, "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Regexp(t, durationLineRe, lines[1])
	return lines[0], lines[1]
}

// derivedKeyHex returns the hex pairs after "PBKDF2: "
func derivedKeyHex(t *testing.T, line string) string {
	t.Helper()
	_, key, found := strings.Cut(line, "PBKDF2: ")
	require.True(t, found, line)
	return key
}

func TestRun_NaiveScenario(t *testing.T) {
	if binary.NativeEndian.Uint16([]byte{1, 0}) != 1 {
		t.Skip("expected key assumes a little-endian host")
	}

	r := runArgs(t, "1", "81726354", "123456", "Veyron")
	line, _ := resultLines(t, r)

	assert.True(t, strings.HasPrefix(line, "HashType: SHA1, Salt: 81726354, IterationCount: 123456, Password: 'Veyron', PBKDF2: "), line)
	assert.Contains(t, line, "IterationCount: 123456")

	// salt bytes 52 1A DF 04, password "Veyron" in UTF-16LE
	key := derivedKeyHex(t, line)
	assert.Equal(t, "A6 C1 3A 24 9F 8C 05 8B E4 50 F9 EC 67 60 D5 51 51 42 E3 54", key)
	assert.Empty(t, r.stderr)

	again, _ := resultLines(t, runArgs(t, "1", "81726354", "123456", "Veyron"))
	assert.Equal(t, line, again)
}

func TestRun_CorrectScenario(t *testing.T) {
	naive, _ := resultLines(t, runArgs(t, "1", "81726354", "123456", "Veyron"))
	correct, _ := resultLines(t, runArgs(t, "1", "04df0b92", "123456", "Veyron", "doItRight"))

	assert.True(t, strings.HasPrefix(correct, "HashType: SHA1, Salt: 04 DF 0B 92, IterationCount: 123456, Password: 'Veyron', PBKDF2: "), correct)
	assert.Equal(t, "57 60 62 1F 2C 20 23 57 87 08 9D 40 4B 9D 26 EA B0 6B 9B C6", derivedKeyHex(t, correct))
	assert.NotEqual(t, derivedKeyHex(t, naive), derivedKeyHex(t, correct))
}

func TestRun_CorrectModeMatchesDirectDerivation(t *testing.T) {
	line, _ := resultLines(t, runArgs(t, "2", "04df0b92", "1000", "Veyron", "1"))

	arena := newBufferArena(0)
	defer arena.release()
	key, err := deriveKey(newHMACProvider(), arena, DerivationParameters{
		Algorithm:      SHA256,
		Salt:           []byte{0x04, 0xdf, 0x0b, 0x92},
		IterationCount: 1000,
		Password:       []byte("Veyron"),
	})
	require.NoError(t, err)
	assert.Equal(t, encodeHex(key), derivedKeyHex(t, line))
}

func TestRun_OddLengthSaltEqualsPadded(t *testing.T) {
	odd, _ := resultLines(t, runArgs(t, "1", "4df0b92", "10", "Veyron", "x"))
	even, _ := resultLines(t, runArgs(t, "1", "04df0b92", "10", "Veyron", "x"))
	assert.Equal(t, even, odd)
}

func TestRun_HashTypes(t *testing.T) {
	tests := []struct {
		hashType string
		label    string
		keyLen   int
	}{
		{hashType: "1", label: "SHA1", keyLen: 20},
		{hashType: "2", label: "SHA256", keyLen: 32},
		{hashType: "3", label: "SHA384", keyLen: 48},
		{hashType: "4", label: "SHA512", keyLen: 64},
		{hashType: "5", label: "SHA512", keyLen: 64},
	}

	for _, tt := range tests {
		t.Run(tt.hashType, func(t *testing.T) {
			line, _ := resultLines(t, runArgs(t, tt.hashType, "42", "10", "Veyron"))
			assert.True(t, strings.HasPrefix(line, "HashType: "+tt.label+","), line)
			assert.Len(t, strings.Fields(derivedKeyHex(t, line)), tt.keyLen)
		})
	}

	four, _ := resultLines(t, runArgs(t, "4", "42", "10", "Veyron"))
	five, _ := resultLines(t, runArgs(t, "5", "42", "10", "Veyron"))
	assert.Equal(t, four, five)
}

func TestRun_NotEnoughArguments(t *testing.T) {
	for _, args := range [][]string{{}, {"1"}, {"1", "2", "3"}} {
		r := runArgs(t, args...)
		assert.Equal(t, ExitUsage, r.code)
		assert.Empty(t, r.stdout)
		assert.True(t, strings.HasPrefix(r.stderr, "Not enough arguments\nUsage: pbkdf2"), r.stderr)
	}
}

func TestRun_ValidationFailures(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{name: "hashType zero", args: []string{"0", "1", "1", "pw"}, wantErr: `"hashType" is smaller than minimum value of 1`},
		{name: "hashType six", args: []string{"6", "1", "1", "pw"}, wantErr: `"hashType" is larger than maximum value of 5`},
		{name: "hashType text", args: []string{"sha", "1", "1", "pw"}, wantErr: `"hashType" is not an integer`},
		{name: "iterations zero", args: []string{"1", "1", "0", "pw"}, wantErr: `"iterationCount" is smaller than minimum value of 1`},
		{name: "iterations too many", args: []string{"1", "1", "5000001", "pw"}, wantErr: `"iterationCount" is larger than maximum value of 5000000`},
		{name: "negative salt", args: []string{"1", "-5", "1", "pw"}, wantErr: `"salt" is smaller than minimum value of 0`},
		{name: "hex salt in naive mode", args: []string{"1", "04df", "1", "pw"}, wantErr: `"salt" is not an integer`},
		{name: "bad hex", args: []string{"1", "04g0", "1", "pw", "x"}, wantErr: `Invalid hex character 'g' at position 3 of hex string "04g0"`},
		{name: "unknown flag", args: []string{"--bogus", "1", "1", "1", "pw"}, wantErr: "unknown flag"},
		{name: "unknown encoding", args: []string{"--native-encoding", "ebcdic", "1", "1", "1", "pw"}, wantErr: "unknown native encoding"},
		{name: "salt above buffer limit", args: []string{"--max-buffer-size", "3", "1", "04df0b92", "1", "pw", "x"}, wantErr: "Could not allocate 4 bytes for salt byte array"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := runArgs(t, tt.args...)
			assert.Equal(t, ExitInvalidArg, r.code)
			assert.Empty(t, r.stdout)
			assert.Contains(t, r.stderr, tt.wantErr)
			assert.Equal(t, 1, strings.Count(r.stderr, "\n"), r.stderr)
		})
	}
}

func TestRun_PreparationFailures(t *testing.T) {
	r := runArgs(t, "--max-buffer-size", "8", "1", "42", "1", "Veyron")
	assert.Equal(t, ExitPreparation, r.code)
	assert.Empty(t, r.stdout)
	assert.Equal(t, "Could not allocate 12 bytes for password\n", r.stderr)

	r = runArgs(t, "1", "42", "1", "bad\xffpassword", "x")
	assert.Equal(t, ExitPreparation, r.code)
	assert.Contains(t, r.stderr, "Could not convert password")
}

func TestRun_PasswordStartingWithDash(t *testing.T) {
	line, _ := resultLines(t, runArgs(t, "1", "42", "10", "--not-a-flag"))
	assert.Contains(t, line, "Password: '--not-a-flag'")
}

func TestRun_PasswordFromEnvironment(t *testing.T) {
	t.Setenv(PasswordEnvVar, "Veyron")

	fromEnv, _ := resultLines(t, runArgs(t, "--password-prompt", "1", "42", "10", "-"))
	literal, _ := resultLines(t, runArgs(t, "1", "42", "10", "Veyron"))
	assert.Equal(t, literal, fromEnv)
}

func TestRun_DashIsLiteralPassword(t *testing.T) {
	t.Setenv(PasswordEnvVar, "Veyron")

	line, _ := resultLines(t, runArgs(t, "1", "42", "10", "-"))
	assert.Contains(t, line, "Password: '-'")

	arena := newBufferArena(0)
	defer arena.release()
	salt, err := resolveSalt(arena, "42", ModeNaive)
	require.NoError(t, err)
	password, err := resolvePassword(arena, "-", ModeNaive, EncodingUTF16)
	require.NoError(t, err)
	key, err := deriveKey(newHMACProvider(), arena, DerivationParameters{
		Algorithm:      SHA1,
		Salt:           salt,
		IterationCount: 10,
		Password:       password,
	})
	require.NoError(t, err)
	assert.Equal(t, encodeHex(key), derivedKeyHex(t, line))

	fromEnv, _ := resultLines(t, runArgs(t, "--password-prompt", "1", "42", "10", "-"))
	assert.NotEqual(t, line, fromEnv)
}

func TestRun_NativeEncodingStrategies(t *testing.T) {
	naiveUTF16, _ := resultLines(t, runArgs(t, "--native-encoding", "utf16", "1", "42", "10", "Veyron"))
	naiveANSI, _ := resultLines(t, runArgs(t, "--native-encoding", "ansi", "1", "42", "10", "Veyron"))
	assert.NotEqual(t, derivedKeyHex(t, naiveUTF16), derivedKeyHex(t, naiveANSI))

	// the correct mode hashes UTF-8 whatever the native representation is
	correctUTF16, _ := resultLines(t, runArgs(t, "--native-encoding", "utf16", "1", "2a", "10", "Grüße", "x"))
	correctANSI, _ := resultLines(t, runArgs(t, "--native-encoding", "ansi", "1", "2a", "10", "Grüße", "x"))
	assert.Equal(t, correctUTF16, correctANSI)
}

func TestRun_NativeEncodingFromEnvironment(t *testing.T) {
	flag, _ := resultLines(t, runArgs(t, "--native-encoding", "ansi", "1", "42", "10", "Veyron"))

	t.Setenv("PBKDF2_NATIVE_ENCODING", "ansi")
	env, _ := resultLines(t, runArgs(t, "1", "42", "10", "Veyron"))
	assert.Equal(t, flag, env)
}

func TestRun_KeysetExport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keyset.json")

	r := runArgs(t, "--keyset", path, "2", "04df0b92", "10", "Veyron", "x")
	resultLines(t, r)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "AesGcmHkdfStreamingKey")
}

func TestRun_KeysetExportFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "keyset.json")

	r := runArgs(t, "--keyset", path, "2", "04df0b92", "10", "Veyron", "x")
	assert.Equal(t, ExitPreparation, r.code)
	assert.Empty(t, r.stdout)
	assert.Contains(t, r.stderr, "failed to create keyset file")
}

func TestRun_VerboseLogsWithoutSecrets(t *testing.T) {
	r := runArgs(t, "-v", "1", "42", "10", "Veyron")
	line, _ := resultLines(t, r)

	assert.Contains(t, r.stderr, "resolved inputs")
	assert.Contains(t, r.stderr, "derived key")
	assert.NotContains(t, r.stderr, "Veyron")
	assert.NotContains(t, r.stderr, derivedKeyHex(t, line))
}
