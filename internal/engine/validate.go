package engine

import (
	"math"
	"strconv"
	"strings"

	"github.com/epharma/triage/pkg/domain"
)

// Validate checks a raw answer against the localized question. It is pure:
// an invalid answer never advances session state, and the caller re-presents
// the same question with the reason.
func Validate(lq *domain.LocalizedQuestion, raw any) error {
	switch lq.Type {
	case domain.TypeTextInput:
		if strings.TrimSpace(asString(raw)) == "" {
			return domain.NewValidationError(lq.ID, "answer must not be empty")
		}
	case domain.TypeNumberInput:
		if _, ok := toFiniteNumber(raw); !ok {
			return domain.NewValidationError(lq.ID, "answer must be a number")
		}
	case domain.TypeSingleChoice:
		return validateSingleChoice(lq, raw)
	case domain.TypeMultipleChoice:
		return validateMultipleChoice(lq, raw)
	case domain.TypeRecommendation, domain.TypeRecommendationDisplay,
		domain.TypeMedicationCart, domain.TypeCompletionMessage:
		// Display-only or acknowledgment steps accept anything.
	}
	return nil
}

func validateSingleChoice(lq *domain.LocalizedQuestion, raw any) error {
	input := strings.TrimSpace(asString(raw))
	if input == "" {
		return domain.NewValidationError(lq.ID, "choose one of the listed options")
	}

	if isListedOption(lq, input) {
		return nil
	}
	if idx, ok := optionIndex(lq, input); ok && idx >= 0 {
		return nil
	}

	// Options like "Yes (please specify)" or "Other" open the question up
	// to free text: the user types a detail string instead of the option.
	if hasOpenTextOption(lq) {
		return nil
	}

	return domain.NewValidationError(lq.ID, "answer is not a listed option")
}

func validateMultipleChoice(lq *domain.LocalizedQuestion, raw any) error {
	switch v := raw.(type) {
	case []string:
		if len(v) == 0 {
			return domain.NewValidationError(lq.ID, "select at least one option")
		}
	case []any:
		if len(v) == 0 {
			return domain.NewValidationError(lq.ID, "select at least one option")
		}
	default:
		if strings.TrimSpace(asString(raw)) == "" {
			return domain.NewValidationError(lq.ID, "select at least one option")
		}
	}
	return nil
}

// isListedOption accepts both the displayed and the canonical spelling.
func isListedOption(lq *domain.LocalizedQuestion, input string) bool {
	for _, opt := range lq.Options {
		if strings.EqualFold(opt, input) {
			return true
		}
	}
	for _, opt := range lq.CanonicalOptions {
		if strings.EqualFold(opt, input) {
			return true
		}
	}
	return false
}

// optionIndex resolves a 1-based numeric index into the option list.
func optionIndex(lq *domain.LocalizedQuestion, input string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil {
		return 0, false
	}
	count := len(lq.CanonicalOptions)
	if count == 0 {
		count = len(lq.Options)
	}
	if n < 1 || n > count {
		return 0, false
	}
	return n - 1, true
}

// hasOpenTextOption reports whether any option invites free text.
func hasOpenTextOption(lq *domain.LocalizedQuestion) bool {
	for _, opt := range append(append([]string{}, lq.Options...), lq.CanonicalOptions...) {
		lower := strings.ToLower(opt)
		if strings.Contains(lower, "yes") || strings.Contains(lower, "other") {
			return true
		}
	}
	return false
}

func asString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case nil:
		return ""
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case int:
		return strconv.Itoa(s)
	case bool:
		return strconv.FormatBool(s)
	}
	return ""
}

func toFiniteNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return 0, false
		}
		return n, true
	case int:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	}
	return 0, false
}
