package main

import (
	"fmt"
	"io"
	"os"
	"runtime"

	"golang.org/x/term"
)

const (
	// PasswordEnvVar supplies the password when --password-prompt is set and
	// the password argument is "-"
	PasswordEnvVar = "PBKDF2_PASSWORD"

	// passwordFromInput is the password argument that asks for the password
	passwordFromInput = "-"
)

// zeroBytes overwrites a byte slice with zeros
func zeroBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
	runtime.KeepAlive(b)
}

// passwordSource reads a password from the environment or a terminal
type passwordSource struct {
	getenv func(string) string
	prompt io.Writer
	input  *os.File
}

func newPasswordSource(prompt io.Writer) *passwordSource {
	return &passwordSource{getenv: os.Getenv, prompt: prompt, input: os.Stdin}
}

// resolve returns arg unless it is "-", in which case the password is read
func (s *passwordSource) resolve(arg string) (string, error) {
	if arg != passwordFromInput {
		return arg, nil
	}

	if envPass := s.getenv(PasswordEnvVar); envPass != "" {
		return envPass, nil
	}

	pw, err := s.readPassword("Enter password: ")
	if err != nil {
		return "", err
	}
	defer zeroBytes(pw)
	return string(pw), nil
}

func (s *passwordSource) readPassword(prompt string) ([]byte, error) {
	fd := int(s.input.Fd())
	if !term.IsTerminal(fd) {
		// STDIN is piped, fall back to the controlling terminal
		tty, err := os.Open("/dev/tty")
		if err != nil {
			if runtime.GOOS == "windows" {
				return nil, fmt.Errorf("password must be set via %s when STDIN is not a terminal", PasswordEnvVar)
			}
			return nil, fmt.Errorf("cannot read password: STDIN is piped and /dev/tty is not available. Set %s", PasswordEnvVar)
		}
		defer tty.Close()
		fd = int(tty.Fd())
	}

	fmt.Fprint(s.prompt, prompt)
	pw, err := term.ReadPassword(fd)
	fmt.Fprintln(s.prompt)
	if err != nil {
		return nil, fmt.Errorf("failed to read password: %w", err)
	}
	return pw, nil
}
