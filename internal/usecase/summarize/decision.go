package summarize

import (
	"context"
	"strings"
)

// ConfirmPrompt is shown to the operator when a record needs confirmation.
const ConfirmPrompt = "Do you want to proceed with summary? (yes / no / skip): "

// Decision is the outcome of the confirmation gate for one record.
type Decision int

const (
	// DecisionProceedAutomatically means the chunk count was within the threshold.
	DecisionProceedAutomatically Decision = iota
	// DecisionProceedConfirmed means the operator approved processing.
	DecisionProceedConfirmed
	// DecisionSkipRecord leaves the record pending and moves on.
	DecisionSkipRecord
	// DecisionAbortRun stops the whole run without persisting.
	DecisionAbortRun
)

func (d Decision) String() string {
	switch d {
	case DecisionProceedAutomatically:
		return "proceed_automatically"
	case DecisionProceedConfirmed:
		return "proceed_confirmed"
	case DecisionSkipRecord:
		return "skip_record"
	case DecisionAbortRun:
		return "abort_run"
	default:
		return "unknown"
	}
}

// Proceed reports whether the record should be processed.
func (d Decision) Proceed() bool {
	return d == DecisionProceedAutomatically || d == DecisionProceedConfirmed
}

// InputProvider supplies one line of operator input per request.
type InputProvider interface {
	Ask(ctx context.Context, prompt string) (string, error)
}

// Decide resolves whether a record with chunkCount chunks proceeds, is skipped,
// or aborts the run.
//
// Counts up to threshold proceed without consulting input. Above it, a single
// answer is read: "" / "y" / "yes" proceed, "s" / "skip" skip, anything else
// aborts. An input error also aborts and is returned alongside the decision.
func Decide(ctx context.Context, chunkCount, threshold int, input InputProvider) (Decision, error) {
	if chunkCount <= threshold {
		return DecisionProceedAutomatically, nil
	}
	if input == nil {
		return DecisionAbortRun, ErrNoInputProvider
	}

	answer, err := input.Ask(ctx, ConfirmPrompt)
	if err != nil {
		return DecisionAbortRun, err
	}
	return ParseAnswer(answer), nil
}

// ParseAnswer maps a raw operator answer to a decision above the threshold.
func ParseAnswer(answer string) Decision {
	answer = strings.ToLower(strings.TrimSpace(answer))
	if answer == "" {
		answer = "yes"
	}

	switch answer {
	case "yes", "y":
		return DecisionProceedConfirmed
	case "skip", "s":
		return DecisionSkipRecord
	default:
		return DecisionAbortRun
	}
}
