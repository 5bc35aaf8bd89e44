// Package cli parses command-line arguments for the terminal game and runs
// it against stdin and stdout.
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"emittr/connect4/internal/game"
	"emittr/connect4/internal/logging"
	"emittr/connect4/internal/match"
	"emittr/connect4/internal/opponent"
)

// ExitError is an error that carries a process exit code.
type ExitError struct {
	Code    int
	Message string
}

func (e *ExitError) Error() string {
	return e.Message
}

type Config struct {
	Red        opponent.Kind
	Blue       opponent.Kind
	Seed       uint64
	LoadPath   string
	LogLevel   string
	LogFormat  string
	MaxInvalid int
}

// Parse processes args. It returns the config, whether the program should
// exit cleanly (help was requested), or an *ExitError.
func Parse(args []string, output io.Writer) (Config, bool, error) {
	fs := flag.NewFlagSet("connect4", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.Usage = func() {
		fmt.Fprint(output, `
connect4 - play Connect Four in the terminal.

Usage:
  connect4 [options]

Columns are numbered 0 to 6 from the left.

Options:
`)
		fs.PrintDefaults()
	}

	red := fs.String("red", "human", "Who plays Red: human, random or heuristic.")
	blue := fs.String("blue", "random", "Who plays Blue: human, random or heuristic.")
	seed := fs.Uint64("seed", 0, "Seed for random opponents. 0 picks one from the clock.")
	load := fs.String("load", "", "Start from a serialized position in this file.")
	logLevel := fs.String("log-level", "warn", "Logging level: debug, info, warn or error.")
	logFormat := fs.String("log-format", "text", "Log output format: text or json.")
	maxInvalid := fs.Int("max-invalid", 0, "Give up after this many rejected moves in a row. 0 is unlimited.")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return Config{}, true, nil
		}
		return Config{}, false, &ExitError{Code: 2, Message: err.Error()}
	}
	if fs.NArg() > 0 {
		return Config{}, false, &ExitError{Code: 2, Message: fmt.Sprintf("unexpected argument %q", fs.Arg(0))}
	}

	cfg := Config{
		Seed:       *seed,
		LoadPath:   *load,
		LogLevel:   *logLevel,
		LogFormat:  *logFormat,
		MaxInvalid: *maxInvalid,
	}
	var err error
	if cfg.Red, err = opponent.ParseKind(*red); err != nil {
		return Config{}, false, &ExitError{Code: 2, Message: "red: " + err.Error()}
	}
	if cfg.Blue, err = opponent.ParseKind(*blue); err != nil {
		return Config{}, false, &ExitError{Code: 2, Message: "blue: " + err.Error()}
	}
	if cfg.Seed == 0 {
		cfg.Seed = uint64(time.Now().UnixNano())
	}
	return cfg, false, nil
}

// Run plays one game. Humans are read from in; boards and messages go to out.
func Run(ctx context.Context, cfg Config, in io.Reader, out, logOut io.Writer) error {
	logger, err := logging.New(logOut, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return &ExitError{Code: 2, Message: err.Error()}
	}

	start := game.NewGame()
	if cfg.LoadPath != "" {
		data, err := os.ReadFile(cfg.LoadPath)
		if err != nil {
			return &ExitError{Code: 1, Message: fmt.Sprintf("load position: %v", err)}
		}
		if start, err = game.Parse(string(data)); err != nil {
			return &ExitError{Code: 1, Message: fmt.Sprintf("load position %s: %v", cfg.LoadPath, err)}
		}
	}

	var reader *opponent.Reader
	source := func(kind opponent.Kind, seed uint64) opponent.MoveSource {
		switch kind {
		case opponent.KindRandom:
			return opponent.NewRandom(seed)
		case opponent.KindHeuristic:
			return opponent.NewHeuristic()
		}
		if reader == nil {
			reader = opponent.NewReader(in, out)
			reader.OnInvalid = func(line string, err error) {
				fmt.Fprintf(out, "%q is not a column number\n", line)
			}
		}
		return reader
	}

	loop := &match.Loop{
		Sources: map[game.Player]opponent.MoveSource{
			game.Red:  source(cfg.Red, cfg.Seed),
			game.Blue: source(cfg.Blue, cfg.Seed+1),
		},
		Logger:     logger,
		MaxInvalid: cfg.MaxInvalid,
		OnState: func(s game.State) {
			fmt.Fprintf(out, "%s\n\n", s)
		},
		OnInvalid: func(p game.Player, column int, err error) {
			fmt.Fprintf(out, "Can't play column %d: %v\n", column, err)
		},
	}
	if reader != nil {
		defer reader.Close()
	}

	logger.Info("game starting", "red", cfg.Red, "blue", cfg.Blue, "seed", cfg.Seed)
	res, err := loop.Run(ctx, start)
	if err != nil {
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(out, "\nInput closed, game abandoned.")
			return nil
		}
		return err
	}

	fmt.Fprintln(out, res.Final.State.Board())
	if winner, ok := res.Winner(); ok {
		fmt.Fprintf(out, "%s wins!\n", winner)
	} else {
		fmt.Fprintln(out, "It's a tie, everyone loses!")
	}
	logger.Info("game over", "outcome", res.Final.Outcome, "moves", res.Final.State.Moves())
	return nil
}

// Main wires Parse and Run for the binary and returns the exit code.
func Main(ctx context.Context, args []string, in io.Reader, out, errOut io.Writer) int {
	cfg, exit, err := Parse(args, errOut)
	if err == nil && !exit {
		err = Run(ctx, cfg, in, out, errOut)
	}
	if err == nil {
		return 0
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		fmt.Fprintln(errOut, exitErr.Message)
		return exitErr.Code
	}
	fmt.Fprintln(errOut, err)
	return 1
}
