package opponent

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"emittr/connect4/internal/game"
)

// Reader reads zero-based column numbers, one per line, from a human.
// Lines that are not a number are passed to OnInvalid and skipped.
type Reader struct {
	Prompt    io.Writer
	OnInvalid func(line string, err error)

	lines chan readResult
	stop  chan struct{}
}

type readResult struct {
	line string
	err  error
}

func NewReader(in io.Reader, prompt io.Writer) *Reader {
	r := &Reader{
		Prompt: prompt,
		lines:  make(chan readResult),
		stop:   make(chan struct{}),
	}
	go r.scan(in)
	return r
}

func (r *Reader) scan(in io.Reader) {
	sc := bufio.NewScanner(in)
	for sc.Scan() {
		select {
		case r.lines <- readResult{line: sc.Text()}:
		case <-r.stop:
			return
		}
	}
	err := sc.Err()
	if err == nil {
		err = io.EOF
	}
	select {
	case r.lines <- readResult{err: err}:
	case <-r.stop:
	}
}

func (r *Reader) NextMove(ctx context.Context, s game.State) (int, error) {
	for {
		if r.Prompt != nil {
			fmt.Fprintf(r.Prompt, "%s, your move: ", s.CurrentPlayer())
		}
		select {
		case <-ctx.Done():
			return -1, ctx.Err()
		case res, ok := <-r.lines:
			if !ok {
				return -1, io.EOF
			}
			if res.err != nil {
				close(r.lines)
				return -1, res.err
			}
			col, err := strconv.Atoi(strings.TrimSpace(res.line))
			if err != nil {
				if r.OnInvalid != nil {
					r.OnInvalid(res.line, err)
				}
				continue
			}
			return col, nil
		}
	}
}

// Close stops the background scanner.
func (r *Reader) Close() error {
	select {
	case <-r.stop:
	default:
		close(r.stop)
	}
	return nil
}
