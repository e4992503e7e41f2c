package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable the program reads options from
const EnvPrefix = "PBKDF2"

// Options holds the run configuration
type Options struct {
	NativeEncoding NativeEncoding
	KeysetPath     string
	Verbose        bool
	MaxBufferSize  int
	PasswordPrompt bool
}

func registerFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.String("native-encoding", string(EncodingUTF16), "native password encoding: utf16, ansi or utf8")
	flags.String("keyset", "", "write the derived key as a Tink keyset to this file")
	flags.String("config", "", "YAML configuration file")
	flags.Int("max-buffer-size", defaultMaxBufferSize, "largest buffer in bytes an argument may require")
	flags.Bool("password-prompt", false, "read a password argument of \"-\" from "+PasswordEnvVar+" or the terminal")
	flags.BoolP("verbose", "v", false, "log the derivation steps to stderr")
}

// loadOptions merges flags, PBKDF2_* environment variables, the config file
// and defaults, in that order of precedence
func loadOptions(cmd *cobra.Command) (Options, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("native-encoding", string(EncodingUTF16))
	v.SetDefault("max-buffer-size", defaultMaxBufferSize)

	for _, name := range []string{"native-encoding", "keyset", "config", "max-buffer-size", "password-prompt", "verbose"} {
		if err := v.BindPFlag(name, cmd.Flags().Lookup(name)); err != nil {
			return Options{}, fmt.Errorf("failed to bind flag %s: %w", name, err)
		}
	}

	if path := v.GetString("config"); path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return Options{}, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	enc, err := parseNativeEncoding(v.GetString("native-encoding"))
	if err != nil {
		return Options{}, err
	}

	maxBuf := v.GetInt("max-buffer-size")
	if maxBuf <= 0 {
		return Options{}, fmt.Errorf("max-buffer-size must be positive, got %d", maxBuf)
	}

	return Options{
		NativeEncoding: enc,
		KeysetPath:     v.GetString("keyset"),
		Verbose:        v.GetBool("verbose"),
		MaxBufferSize:  maxBuf,
		PasswordPrompt: v.GetBool("password-prompt"),
	}, nil
}

// newLogger returns the run logger. Only warnings are shown unless verbose is set.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
