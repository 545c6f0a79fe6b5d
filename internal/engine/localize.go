// Package engine implements the dialogue routing core: localization,
// answer validation and processing, next-question selection, recommendation
// aggregation and the final summary. It is the only component that mutates
// sessions, and it does so one fully-committed answer at a time.
package engine

import "github.com/epharma/triage/pkg/domain"

// Localize produces the language-specific view of a question plus the
// bidirectional option map the processor needs to recover canonical values.
func Localize(q *domain.Question, section, lang, canonical string) *domain.LocalizedQuestion {
	lq := &domain.LocalizedQuestion{
		ID:         q.ID,
		Section:    section,
		Type:       q.Type,
		Prompt:     q.Prompt(lang, canonical),
		Details:    q.Details,
		UsesAssist: q.UsesAssist,
	}

	canonicalOpts := q.Options[canonical]
	displayed := q.OptionsFor(lang, canonical)
	lq.Options = displayed
	lq.CanonicalOptions = canonicalOpts

	if len(displayed) > 0 && len(canonicalOpts) > 0 {
		lq.OptionMap = make(map[string]string, len(displayed))
		for i, opt := range displayed {
			// Parallel arrays by contract; never dereference past the
			// canonical length if the configuration violates it.
			if i >= len(canonicalOpts) {
				break
			}
			lq.OptionMap[opt] = canonicalOpts[i]
		}
	}

	return lq
}
