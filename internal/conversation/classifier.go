package conversation

import "strings"

// Outcome is the classifier's verdict on whether the conversation concluded.
type Outcome string

const (
	OutcomeAgreed    Outcome = "AGREED"
	OutcomeDisagreed Outcome = "DISAGREED"
	OutcomeContinue  Outcome = "CONTINUE"
)

// ParseOutcome normalizes raw classifier output into a closed Outcome.
// Anything that is not exactly AGREED or DISAGREED after trimming and
// upper-casing means CONTINUE: ambiguous model output costs at most one extra
// turn, never a silently dropped lead.
func ParseOutcome(raw string) Outcome {
	switch Outcome(strings.ToUpper(strings.TrimSpace(raw))) {
	case OutcomeAgreed:
		return OutcomeAgreed
	case OutcomeDisagreed:
		return OutcomeDisagreed
	default:
		return OutcomeContinue
	}
}
