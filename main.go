package main

import (
	"errors"
	"io"
	"os"

	"github.com/spf13/cobra"
)

// Version of the program
const Version = "2.2.0"

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the program with args and returns the process exit code
func run(args []string, stdout, stderr io.Writer) int {
	errOut := newConsole(stderr)

	if args == nil {
		// cobra falls back to os.Args for a nil slice
		args = []string{}
	}
	cmd := newRootCmd(stdout, stderr, newHMACProvider())
	cmd.SetArgs(args)

	err := cmd.Execute()
	if err == nil {
		return ExitSuccess
	}

	var countErr *ArgumentCountError
	if errors.As(err, &countErr) {
		errOut.printUsage()
		return ExitUsage
	}

	errOut.printError(err.Error())
	return exitCodeFor(err)
}

func newRootCmd(stdout, stderr io.Writer, provider Provider) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pbkdf2 [flags] <hashType> <salt> <iterationCount> <password> [doItRight]",
		Short: "Compare naive and correct PBKDF2 usage",
		Long: `pbkdf2 derives a key with PBKDF2 and prints it together with its inputs.

Without a fifth argument the salt is read as an integer and its in-memory
bytes are hashed together with the password in its native encoding. With a
fifth argument of any value the salt is read as hex bytes and the password is
converted to UTF-8 first.`,
		Version:       Version,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) < 4 {
				return &ArgumentCountError{Got: len(args), Want: 4}
			}

			opts, err := loadOptions(cmd)
			if err != nil {
				return withExitCode(ExitInvalidArg, err)
			}

			p := &pipeline{
				provider:  provider,
				opts:      opts,
				logger:    newLogger(stderr, opts.Verbose),
				out:       newConsole(stdout),
				passwords: newPasswordSource(stderr),
			}
			return p.run(args)
		},
	}

	// Flags must come first so that passwords starting with "-" stay positional
	cmd.Flags().SetInterspersed(false)
	registerFlags(cmd)

	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return withExitCode(ExitInvalidArg, err)
	})
	return cmd
}
