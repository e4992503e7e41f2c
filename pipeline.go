package main

import (
	"log/slog"
)

// pipeline turns the positional arguments into the printed derivation
type pipeline struct {
	provider  Provider
	opts      Options
	logger    *slog.Logger
	out       *console
	passwords *passwordSource
}

// run executes one derivation. Every buffer it creates is wiped before it returns.
func (p *pipeline) run(args []string) error {
	mode := modeFromArgs(args)
	arena := newBufferArena(p.opts.MaxBufferSize)
	defer arena.release()

	alg, err := resolveHashAlgorithm(args[0])
	if err != nil {
		return withExitCode(ExitInvalidArg, err)
	}

	salt, err := resolveSalt(arena, args[1], mode)
	if err != nil {
		return withExitCode(ExitInvalidArg, err)
	}

	iterations, err := resolveIterationCount(args[2])
	if err != nil {
		return withExitCode(ExitInvalidArg, err)
	}

	password := args[3]
	if p.opts.PasswordPrompt {
		password, err = p.passwords.resolve(password)
		if err != nil {
			return withExitCode(ExitPreparation, err)
		}
	}

	pwBytes, err := resolvePassword(arena, password, mode, p.opts.NativeEncoding)
	if err != nil {
		return withExitCode(ExitPreparation, err)
	}

	p.logger.Debug("resolved inputs",
		"mode", mode,
		"algorithm", alg,
		"salt_bytes", len(salt),
		"password_bytes", len(pwBytes),
		"native_encoding", p.opts.NativeEncoding,
	)

	params := DerivationParameters{
		Algorithm:      alg,
		Salt:           salt,
		IterationCount: iterations,
		Password:       pwBytes,
	}
	key, elapsed, err := measure(func() ([]byte, error) {
		return deriveKey(p.provider, arena, params)
	})
	if err != nil {
		return withExitCode(ExitInvalidArg, err)
	}
	p.logger.Debug("derived key", "key_bytes", len(key), "duration", elapsed)

	if p.opts.KeysetPath != "" {
		if err := exportKeysetFile(p.opts.KeysetPath, key); err != nil {
			return withExitCode(ExitPreparation, err)
		}
		p.logger.Debug("exported keyset", "path", p.opts.KeysetPath)
	}

	report := Report{
		Algorithm:      alg,
		SaltText:       saltText(salt, mode),
		IterationCount: iterations,
		Password:       password,
		Result: DerivationResult{
			DerivedKey:     key,
			ElapsedSeconds: elapsed.Seconds(),
		},
	}
	if err := p.out.printReport(report); err != nil {
		return withExitCode(ExitPreparation, err)
	}
	return nil
}
