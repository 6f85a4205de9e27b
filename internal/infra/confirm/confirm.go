// Package confirm provides the operator confirmation sources used by the
// summarization run for records above the automatic chunk threshold.
package confirm

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"transcript-summarizer/internal/usecase/summarize"
)

// Confirmation modes accepted by FromMode.
const (
	ModeInteractive = "interactive"
	ModeAuto        = "auto"
	ModeSkip        = "skip"
)

// ErrScriptExhausted is returned by Scripted when no answers remain.
var ErrScriptExhausted = errors.New("no scripted answers left")

// Terminal asks the operator on an interactive terminal.
//
// A single goroutine owns the input reader for the lifetime of the Terminal.
// When Ask returns early on cancellation, the line typed afterwards is
// delivered to the next Ask.
type Terminal struct {
	reader *bufio.Reader
	out    io.Writer

	start sync.Once
	lines chan lineResult
}

type lineResult struct {
	line string
	err  error
}

var _ summarize.InputProvider = (*Terminal)(nil)

// NewTerminal creates a provider that writes prompts to out and reads answers from in.
func NewTerminal(in io.Reader, out io.Writer) *Terminal {
	return &Terminal{
		reader: bufio.NewReader(in),
		out:    out,
		lines:  make(chan lineResult),
	}
}

// readLines feeds lines to Ask until the input fails, then closes the channel.
func (t *Terminal) readLines() {
	defer close(t.lines)
	for {
		line, err := t.reader.ReadString('\n')
		t.lines <- lineResult{line: line, err: err}
		if err != nil {
			return
		}
	}
}

// Ask prints prompt and reads one line. A closed input stream is an error,
// never an implicit "yes".
func (t *Terminal) Ask(ctx context.Context, prompt string) (string, error) {
	if _, err := io.WriteString(t.out, prompt); err != nil {
		return "", fmt.Errorf("write prompt: %w", err)
	}
	t.start.Do(func() { go t.readLines() })

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r, ok := <-t.lines:
		if !ok {
			return "", fmt.Errorf("read confirmation: %w", io.EOF)
		}
		if r.err != nil {
			// Last line without a trailing newline.
			if errors.Is(r.err, io.EOF) && r.line != "" {
				return r.line, nil
			}
			return "", fmt.Errorf("read confirmation: %w", r.err)
		}
		return strings.TrimRight(r.line, "\r\n"), nil
	}
}

// Scripted answers from a fixed queue, in order.
type Scripted struct {
	mu      sync.Mutex
	answers []string
	prompts []string
}

var _ summarize.InputProvider = (*Scripted)(nil)

// NewScripted creates a provider returning answers in order.
func NewScripted(answers ...string) *Scripted {
	return &Scripted{answers: append([]string(nil), answers...)}
}

// Ask returns the next queued answer or ErrScriptExhausted.
func (s *Scripted) Ask(_ context.Context, prompt string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.prompts = append(s.prompts, prompt)
	if len(s.answers) == 0 {
		return "", ErrScriptExhausted
	}
	answer := s.answers[0]
	s.answers = s.answers[1:]
	return answer, nil
}

// Prompts returns the prompts shown so far.
func (s *Scripted) Prompts() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.prompts...)
}

// AutoApprove approves every record. Used for unattended runs.
type AutoApprove struct{}

// Ask always answers "yes".
func (AutoApprove) Ask(context.Context, string) (string, error) {
	slog.Debug("confirmation auto-approved")
	return "yes", nil
}

// AutoSkip skips every record that needs confirmation.
type AutoSkip struct{}

// Ask always answers "skip".
func (AutoSkip) Ask(context.Context, string) (string, error) {
	slog.Debug("confirmation auto-skipped")
	return "skip", nil
}

// FromMode builds the provider for a configured confirmation mode.
// in and out are only used by the interactive mode.
func FromMode(mode string, in io.Reader, out io.Writer) (summarize.InputProvider, error) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case ModeInteractive:
		return NewTerminal(in, out), nil
	case ModeAuto:
		return AutoApprove{}, nil
	case ModeSkip:
		return AutoSkip{}, nil
	default:
		return nil, fmt.Errorf("unknown confirm mode %q (expected %s, %s or %s)", mode, ModeInteractive, ModeAuto, ModeSkip)
	}
}
