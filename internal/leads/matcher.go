package leads

import (
	"context"
	"strings"
	"unicode"
)

// stopwords excluded from keyword matching; short glue words carry no signal
// about who a campaign targets.
var stopwords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "with": {}, "that": {}, "this": {},
	"are": {}, "was": {}, "who": {}, "they": {}, "their": {}, "have": {},
	"from": {}, "about": {}, "into": {}, "your": {}, "our": {}, "its": {},
	"a": {}, "an": {}, "of": {}, "to": {}, "in": {}, "on": {}, "is": {},
	"or": {}, "as": {}, "at": {}, "by": {}, "it": {}, "be": {},
}

// Matcher filters stored leads against a campaign summary by keyword overlap.
type Matcher struct {
	repo Repository
}

// NewMatcher creates a matcher over the given repository.
func NewMatcher(repo Repository) *Matcher {
	if repo == nil {
		panic("leads: repository required")
	}
	return &Matcher{repo: repo}
}

// Match returns every lead whose description shares at least one keyword with
// the campaign summary, up to limit. A non-positive limit means no cap.
func (m *Matcher) Match(ctx context.Context, campaignSummary string, limit int) ([]MatchedLead, error) {
	keywords := Keywords(campaignSummary)
	if len(keywords) == 0 {
		return nil, nil
	}

	all, err := m.repo.List(ctx, ListFilter{})
	if err != nil {
		return nil, err
	}

	var matched []MatchedLead
	for _, lead := range all {
		if descriptionMatches(lead.Description, keywords) {
			matched = append(matched, lead.Matched())
			if limit > 0 && len(matched) >= limit {
				break
			}
		}
	}
	return matched, nil
}

// Keywords tokenizes text into lower-cased significant words.
func Keywords(text string) map[string]struct{} {
	tokens := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
	out := make(map[string]struct{}, len(tokens))
	for _, tok := range tokens {
		if len(tok) < 3 {
			continue
		}
		if _, skip := stopwords[tok]; skip {
			continue
		}
		out[tok] = struct{}{}
	}
	return out
}

func descriptionMatches(description string, keywords map[string]struct{}) bool {
	for tok := range Keywords(description) {
		if _, ok := keywords[tok]; ok {
			return true
		}
	}
	return false
}
