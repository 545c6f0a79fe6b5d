package engine

import (
	"context"
	"log/slog"
	"strings"

	"github.com/epharma/triage/internal/logging"
	"github.com/epharma/triage/pkg/domain"
	"github.com/epharma/triage/pkg/ports"
)

// Processor normalizes validated raw input into canonical answer values.
// Recognized options are mapped back to the canonical language via the
// option map; genuinely free text is preserved verbatim and, for
// non-canonical sessions, additionally translated so the stored case record
// stays in one language. The echo returned to the user keeps the session
// language either way.
type Processor struct {
	assistant  ports.Assistant
	translator ports.Translator
	canonical  string
	logger     *slog.Logger
}

// NewProcessor builds a Processor. Both collaborators may be nil; their
// absence simply disables the corresponding delegation.
func NewProcessor(assistant ports.Assistant, translator ports.Translator, canonical string, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Processor{
		assistant:  assistant,
		translator: translator,
		canonical:  canonical,
		logger:     logger,
	}
}

// Process converts raw input into the value stored in the answers map and
// the value echoed back to the user.
func (p *Processor) Process(ctx context.Context, lq *domain.LocalizedQuestion, raw any, lang string) (stored, echo any) {
	if lq.UsesAssist {
		return p.processAssisted(ctx, lq, raw, lang)
	}

	switch lq.Type {
	case domain.TypeSingleChoice:
		token := strings.TrimSpace(asString(raw))
		canonical, resolved := p.resolveToken(lq, token)
		if resolved {
			return canonical, token
		}
		// Open-text answer: store canonical-language text, echo the original.
		return p.canonicalize(ctx, token, lang), token

	case domain.TypeMultipleChoice:
		tokens := splitChoices(raw)
		storedList := make([]string, 0, len(tokens))
		echoList := make([]string, 0, len(tokens))
		for _, token := range tokens {
			canonical, resolved := p.resolveToken(lq, token)
			if resolved {
				storedList = append(storedList, canonical)
				echoList = append(echoList, token)
				continue
			}
			// Unmatched tokens are free text ("Other: ..." entries) and are
			// preserved, never dropped.
			storedList = append(storedList, p.canonicalize(ctx, token, lang))
			echoList = append(echoList, token)
		}
		return storedList, echoList

	case domain.TypeNumberInput:
		n, _ := toFiniteNumber(raw)
		return n, n

	case domain.TypeTextInput:
		text := strings.TrimSpace(asString(raw))
		return p.canonicalize(ctx, text, lang), text

	default:
		return raw, raw
	}
}

// processAssisted delegates the free text to the analysis collaborator and
// stores the {userInput, aiResponse} pair.
func (p *Processor) processAssisted(ctx context.Context, lq *domain.LocalizedQuestion, raw any, lang string) (any, any) {
	text := strings.TrimSpace(asString(raw))

	analysis := ""
	if p.assistant != nil {
		out, err := p.assistant.Analyze(ctx, text)
		if err != nil {
			// Degraded, not fatal: the transition proceeds with the raw text.
			p.logger.Warn("assistant analysis failed", "question", lq.ID, "err", err)
		}
		analysis = out
	}

	stored := domain.AssistedAnswer{
		UserInput:  p.canonicalize(ctx, text, lang),
		AIResponse: analysis,
	}
	echo := domain.AssistedAnswer{UserInput: text, AIResponse: analysis}
	return stored, echo
}

// resolveToken maps one input token to its canonical option value:
// displayed option map first, then the canonical option list, then a 1-based
// numeric index. Unresolvable tokens are reported as free text.
func (p *Processor) resolveToken(lq *domain.LocalizedQuestion, token string) (string, bool) {
	token = strings.TrimSpace(token)
	if token == "" {
		return "", false
	}

	if canonical, ok := lq.OptionMap[token]; ok {
		return canonical, true
	}
	for displayed, canonical := range lq.OptionMap {
		if strings.EqualFold(displayed, token) {
			return canonical, true
		}
	}
	for _, opt := range lq.CanonicalOptions {
		if strings.EqualFold(opt, token) {
			return opt, true
		}
	}
	if idx, ok := optionIndex(lq, token); ok {
		if idx < len(lq.CanonicalOptions) {
			return lq.CanonicalOptions[idx], true
		}
		if idx < len(lq.Options) {
			if canonical, ok := lq.OptionMap[lq.Options[idx]]; ok {
				return canonical, true
			}
		}
	}
	return "", false
}

// canonicalize translates free text to the canonical language for storage.
// Failures (and canonical-language sessions) pass the text through.
func (p *Processor) canonicalize(ctx context.Context, text, lang string) string {
	if p.translator == nil || lang == "" || lang == p.canonical || text == "" {
		return text
	}
	out, err := p.translator.ToCanonical(ctx, text)
	if err != nil || out == "" {
		p.logger.Warn("translation to canonical failed, storing original", "err", err)
		return text
	}
	return out
}

// splitChoices normalizes a multiple-choice payload into tokens: arrays are
// taken as-is, a single string is comma-split.
func splitChoices(raw any) []string {
	var tokens []string
	switch v := raw.(type) {
	case []string:
		tokens = v
	case []any:
		for _, item := range v {
			tokens = append(tokens, asString(item))
		}
	case string:
		tokens = strings.Split(v, ",")
	default:
		tokens = []string{asString(raw)}
	}

	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if trimmed := strings.TrimSpace(t); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
