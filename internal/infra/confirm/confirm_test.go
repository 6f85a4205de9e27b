package confirm_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"transcript-summarizer/internal/infra/confirm"
	"transcript-summarizer/internal/usecase/summarize"
)

func TestTerminal_Ask(t *testing.T) {
	var out bytes.Buffer
	term := confirm.NewTerminal(strings.NewReader("skip\r\nyes\nlast"), &out)
	ctx := context.Background()

	first, err := term.Ask(ctx, summarize.ConfirmPrompt)
	require.NoError(t, err)
	assert.Equal(t, "skip", first)

	second, err := term.Ask(ctx, summarize.ConfirmPrompt)
	require.NoError(t, err)
	assert.Equal(t, "yes", second)

	third, err := term.Ask(ctx, summarize.ConfirmPrompt)
	require.NoError(t, err)
	assert.Equal(t, "last", third)

	assert.Equal(t, strings.Repeat("Do you want to proceed with summary? (yes / no / skip): ", 3), out.String())
}

func TestTerminal_EmptyLineMeansYes(t *testing.T) {
	term := confirm.NewTerminal(strings.NewReader("\n"), io.Discard)

	decision, err := summarize.Decide(context.Background(), 21, 20, term)

	require.NoError(t, err)
	assert.Equal(t, summarize.DecisionProceedConfirmed, decision)
}

func TestTerminal_ClosedInputIsError(t *testing.T) {
	term := confirm.NewTerminal(strings.NewReader(""), io.Discard)

	_, err := term.Ask(context.Background(), "prompt: ")

	assert.ErrorIs(t, err, io.EOF)
}

func TestTerminal_ContextCancelled(t *testing.T) {
	pr, pw := io.Pipe()
	defer func() { _ = pw.Close() }()
	term := confirm.NewTerminal(pr, io.Discard)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := term.Ask(ctx, "prompt: ")

	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestTerminal_AnswerAfterCancelledAsk(t *testing.T) {
	pr, pw := io.Pipe()
	defer func() { _ = pw.Close() }()
	term := confirm.NewTerminal(pr, io.Discard)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := term.Ask(ctx, "prompt: ")
	require.ErrorIs(t, err, context.DeadlineExceeded)

	go func() { _, _ = io.WriteString(pw, "skip\n") }()

	answerCtx, answerCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer answerCancel()
	answer, err := term.Ask(answerCtx, "prompt: ")

	require.NoError(t, err)
	assert.Equal(t, "skip", answer)
}

func TestTerminal_AskAfterEOF(t *testing.T) {
	term := confirm.NewTerminal(strings.NewReader("yes"), io.Discard)
	ctx := context.Background()

	answer, err := term.Ask(ctx, "prompt: ")
	require.NoError(t, err)
	assert.Equal(t, "yes", answer)

	_, err = term.Ask(ctx, "prompt: ")
	assert.ErrorIs(t, err, io.EOF)
	_, err = term.Ask(ctx, "prompt: ")
	assert.ErrorIs(t, err, io.EOF)
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("broken pipe") }

func TestTerminal_WriteError(t *testing.T) {
	term := confirm.NewTerminal(strings.NewReader("yes\n"), failingWriter{})

	_, err := term.Ask(context.Background(), "prompt: ")

	assert.ErrorContains(t, err, "write prompt")
}

func TestScripted(t *testing.T) {
	s := confirm.NewScripted("yes", "skip")
	ctx := context.Background()

	a, err := s.Ask(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "yes", a)

	a, err = s.Ask(ctx, "p2")
	require.NoError(t, err)
	assert.Equal(t, "skip", a)

	_, err = s.Ask(ctx, "p3")
	assert.ErrorIs(t, err, confirm.ErrScriptExhausted)
	assert.Equal(t, []string{"p1", "p2", "p3"}, s.Prompts())
}

func TestAutoProviders(t *testing.T) {
	ctx := context.Background()

	decision, err := summarize.Decide(ctx, 50, 20, confirm.AutoApprove{})
	require.NoError(t, err)
	assert.Equal(t, summarize.DecisionProceedConfirmed, decision)

	decision, err = summarize.Decide(ctx, 50, 20, confirm.AutoSkip{})
	require.NoError(t, err)
	assert.Equal(t, summarize.DecisionSkipRecord, decision)
}

func TestFromMode(t *testing.T) {
	tests := []struct {
		mode     string
		wantType interface{}
		wantErr  bool
	}{
		{mode: "interactive", wantType: &confirm.Terminal{}},
		{mode: " AUTO ", wantType: confirm.AutoApprove{}},
		{mode: "skip", wantType: confirm.AutoSkip{}},
		{mode: "never", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.mode, func(t *testing.T) {
			p, err := confirm.FromMode(tt.mode, strings.NewReader(""), io.Discard)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, p)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.wantType, p)
		})
	}
}
