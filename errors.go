package main

import (
	"errors"
	"fmt"
)

// Exit codes of the program
const (
	ExitSuccess       = 0
	ExitUsage         = 1
	ExitInvalidArg    = 2
	ExitPreparation   = 3
	usageErrorMessage = "Not enough arguments"
)

// CLIError attaches a process exit code to an error
type CLIError struct {
	Code    int
	Message string
	Cause   error
}

func (e *CLIError) Error() string {
	if e.Cause != nil {
		if e.Message == "" {
			return e.Cause.Error()
		}
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *CLIError) Unwrap() error {
	return e.Cause
}

// withExitCode wraps err so that it terminates the run with code
func withExitCode(code int, err error) *CLIError {
	return &CLIError{Code: code, Cause: err}
}

// exitCodeFor returns the exit code carried by err, ExitInvalidArg otherwise
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var cliErr *CLIError
	if errors.As(err, &cliErr) {
		return cliErr.Code
	}
	var countErr *ArgumentCountError
	if errors.As(err, &countErr) {
		return ExitUsage
	}
	return ExitInvalidArg
}

// ArgumentCountError reports that fewer positional arguments than required were given
type ArgumentCountError struct {
	Got, Want int
}

func (e *ArgumentCountError) Error() string {
	return usageErrorMessage
}

// ArgumentRangeError reports an integer argument outside its bounds
type ArgumentRangeError struct {
	Name  string
	Bound int64
	// Upper is set when the value exceeded the maximum
	Upper bool
}

func (e *ArgumentRangeError) Error() string {
	if e.Upper {
		return fmt.Sprintf("\"%s\" is larger than maximum value of %d", e.Name, e.Bound)
	}
	return fmt.Sprintf("\"%s\" is smaller than minimum value of %d", e.Name, e.Bound)
}

// ArgumentFormatError reports an argument that could not be parsed
type ArgumentFormatError struct {
	Name string
}

func (e *ArgumentFormatError) Error() string {
	return fmt.Sprintf("\"%s\" is not an integer", e.Name)
}

// InvalidHexCharacterError reports the first non-hex character of a hex string.
// Position is 1-based and counts characters, not bytes.
type InvalidHexCharacterError struct {
	Position int
	Char     rune
	Text     string
}

func (e *InvalidHexCharacterError) Error() string {
	return fmt.Sprintf("Invalid hex character '%c' at position %d of hex string \"%s\"", e.Char, e.Position, e.Text)
}

// AllocationError reports a buffer request above the configured limit
type AllocationError struct {
	Size    int
	Purpose string
}

func (e *AllocationError) Error() string {
	return fmt.Sprintf("Could not allocate %d bytes for %s", e.Size, e.Purpose)
}

// EncodingConversionError reports text that cannot be represented in the target encoding
type EncodingConversionError struct {
	Encoding NativeEncoding
	Cause    error
}

func (e *EncodingConversionError) Error() string {
	return fmt.Sprintf("Could not convert password from %s to UTF-8: %v", e.Encoding, e.Cause)
}

func (e *EncodingConversionError) Unwrap() error {
	return e.Cause
}

// Provider status codes
const (
	StatusInvalidHandle    uint32 = 0xC0000008
	StatusInvalidParameter uint32 = 0xC000000D
	StatusNotFound         uint32 = 0xC0000225
)

var (
	// ErrProviderUnavailable matches provider errors caused by a missing or closed provider
	ErrProviderUnavailable = errors.New("key derivation provider unavailable")
	// ErrAlgorithmUnsupported matches provider errors for unknown hash algorithms
	ErrAlgorithmUnsupported = errors.New("hash algorithm not supported")
)

// ProviderError is a failure returned by the key-derivation provider
type ProviderError struct {
	Code      uint32
	Operation string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("Error 0x%x returned by %s", e.Code, e.Operation)
}

func (e *ProviderError) Is(target error) bool {
	switch target {
	case ErrAlgorithmUnsupported:
		return e.Code == StatusNotFound
	case ErrProviderUnavailable:
		return e.Code == StatusInvalidHandle
	}
	return false
}
