package main

import "fmt"

// Mode selects how salt and password are turned into bytes for one run
type Mode int

const (
	// ModeNaive reads the salt as an integer and hashes the password in its native encoding
	ModeNaive Mode = iota
	// ModeCorrect reads the salt as hex bytes and hashes the password as UTF-8
	ModeCorrect
)

func (m Mode) String() string {
	if m == ModeCorrect {
		return "correct"
	}
	return "naive"
}

// modeFromArgs picks the mode from the number of positional arguments.
// Any fifth argument, whatever its value, selects ModeCorrect.
func modeFromArgs(args []string) Mode {
	if len(args) >= 5 {
		return ModeCorrect
	}
	return ModeNaive
}

// HashAlgorithm identifies the HMAC hash used by PBKDF2
type HashAlgorithm int

const (
	SHA1 HashAlgorithm = iota + 1
	SHA256
	SHA384
	SHA512
)

// Provider names of the hash algorithms
func (a HashAlgorithm) String() string {
	switch a {
	case SHA1:
		return "SHA1"
	case SHA256:
		return "SHA256"
	case SHA384:
		return "SHA384"
	case SHA512:
		return "SHA512"
	default:
		return fmt.Sprintf("HashAlgorithm(%d)", int(a))
	}
}

const (
	minHashType = 1
	maxHashType = 5
)

// hashAlgorithmFromCode maps the 1-based hashType argument to an algorithm.
// Codes 4 and 5 both select SHA512; the duplicate is kept as observed.
func hashAlgorithmFromCode(code int) (HashAlgorithm, bool) {
	switch code {
	case 1:
		return SHA1, true
	case 2:
		return SHA256, true
	case 3:
		return SHA384, true
	case 4, 5:
		return SHA512, true
	default:
		return 0, false
	}
}

// DerivationParameters holds the inputs of one PBKDF2 call
type DerivationParameters struct {
	Algorithm      HashAlgorithm
	Salt           []byte
	IterationCount int
	Password       []byte
}

// DerivationResult is the derived key together with the measured duration
type DerivationResult struct {
	DerivedKey     []byte
	ElapsedSeconds float64
}

// Report carries everything the result lines need
type Report struct {
	Algorithm      HashAlgorithm
	SaltText       string
	IterationCount int
	Password       string
	Result         DerivationResult
}
