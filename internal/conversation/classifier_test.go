package conversation

import "testing"

func TestParseOutcome(t *testing.T) {
	cases := []struct {
		raw  string
		want Outcome
	}{
		{"AGREED", OutcomeAgreed},
		{"DISAGREED", OutcomeDisagreed},
		{"CONTINUE", OutcomeContinue},
		{"agreed", OutcomeAgreed},
		{"  Disagreed \n", OutcomeDisagreed},
		{"The user has AGREED to the meeting.", OutcomeContinue},
		{"", OutcomeContinue},
		{"maybe", OutcomeContinue},
	}
	for _, tc := range cases {
		if got := ParseOutcome(tc.raw); got != tc.want {
			t.Errorf("ParseOutcome(%q) = %s, want %s", tc.raw, got, tc.want)
		}
	}
}
