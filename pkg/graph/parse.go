package graph

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mitchellh/mapstructure"

	"github.com/epharma/triage/pkg/domain"
)

// Reserved next_logic tokens. They must not collide with literal question ids.
const (
	tokenSymptomRouting = "SYMPTOM_ROUTING"
	tokenPhlegmBranch   = "BRANCH_ON_PHLEGM"
	tokenRecSuffix      = "_REC"
)

// questionRecord mirrors one raw configuration entry. The per-language
// prompt_<lang> and options_<lang> keys land in Extra and are folded into the
// language maps afterwards.
type questionRecord struct {
	ID        string   `mapstructure:"id"`
	Type      string   `mapstructure:"type"`
	Prompt    string   `mapstructure:"prompt"`
	Options   []string `mapstructure:"options"`
	Details   []string `mapstructure:"details"`
	NextLogic any      `mapstructure:"next_logic"`
	UseGemini bool     `mapstructure:"useGemini"`

	Extra map[string]any `mapstructure:",remain"`
}

// Parse decodes the raw JSON configuration into an immutable graph.
func Parse(raw []byte, opts ...Option) (*Graph, error) {
	var doc map[string][]map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("invalid graph document: %w", err)
	}

	g := &Graph{
		canonical: DefaultCanonicalLanguage,
		sections:  make(map[string][]*domain.Question, len(doc)),
		index:     make(map[string]map[string]int, len(doc)),
	}
	for _, opt := range opts {
		opt(g)
	}

	for section, records := range doc {
		questions := make([]*domain.Question, 0, len(records))
		index := make(map[string]int, len(records))

		for i, rec := range records {
			q, err := g.decodeRecord(rec)
			if err != nil {
				return nil, fmt.Errorf("section %s, entry %d: %w", section, i, err)
			}
			if _, dup := index[q.ID]; dup {
				return nil, fmt.Errorf("section %s: duplicate question id %q", section, q.ID)
			}
			index[q.ID] = i
			questions = append(questions, q)
		}

		g.sections[section] = questions
		g.index[section] = index
	}

	g.resolveRouting()
	g.lintOptions()
	return g, nil
}

// decodeRecord converts one raw record into a domain.Question. Routing is
// resolved in a second pass once all sections are known.
func (g *Graph) decodeRecord(rec map[string]any) (*domain.Question, error) {
	var r questionRecord
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &r,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(rec); err != nil {
		return nil, fmt.Errorf("malformed question record: %w", err)
	}

	if r.ID == "" {
		return nil, fmt.Errorf("question record missing id")
	}
	if r.Type == "" {
		return nil, fmt.Errorf("question %q missing type", r.ID)
	}
	if r.ID == domain.CombinedRecommendationID || isReservedToken(r.ID) {
		return nil, fmt.Errorf("question id %q collides with a reserved token", r.ID)
	}

	q := &domain.Question{
		ID:         r.ID,
		Type:       r.Type,
		Prompts:    map[string]string{g.canonical: r.Prompt},
		Details:    r.Details,
		UsesAssist: r.UseGemini,
	}
	if len(r.Options) > 0 {
		q.Options = map[string][]string{g.canonical: r.Options}
	}

	// Fold prompt_<lang> / options_<lang> variants from the remaining keys.
	for key, val := range r.Extra {
		switch {
		case strings.HasPrefix(key, "prompt_"):
			lang := strings.TrimPrefix(key, "prompt_")
			if s, ok := val.(string); ok && lang != "" {
				q.Prompts[lang] = s
			}
		case strings.HasPrefix(key, "options_"):
			lang := strings.TrimPrefix(key, "options_")
			if lang == "" {
				continue
			}
			opts := toStringSlice(val)
			if len(opts) > 0 {
				if q.Options == nil {
					q.Options = make(map[string][]string)
				}
				q.Options[lang] = opts
			}
		}
	}

	// Routing is attached raw for now; resolveRouting rewrites it.
	q.Next = rawNext(r.NextLogic)
	return q, nil
}

// rawNext performs the structural part of next_logic resolution: the parts
// that do not need the full section table.
func rawNext(v any) domain.NextLogic {
	switch nl := v.(type) {
	case nil:
		return domain.NextLogic{Kind: domain.NextSequential}
	case string:
		switch {
		case nl == "":
			return domain.NextLogic{Kind: domain.NextSequential}
		case nl == tokenSymptomRouting:
			return domain.NextLogic{Kind: domain.NextSymptomRouting}
		case nl == tokenPhlegmBranch:
			return domain.NextLogic{Kind: domain.NextPhlegmBranch}
		case strings.HasSuffix(nl, tokenRecSuffix):
			variant := strings.TrimSuffix(nl, tokenRecSuffix)
			variant = strings.Trim(variant, "_")
			return domain.NextLogic{Kind: domain.NextDurationRec, Variant: variant}
		default:
			// Section switch vs literal jump is settled in resolveRouting,
			// once every section name is known.
			return domain.NextLogic{Kind: domain.NextJump, Target: nl}
		}
	case map[string]any:
		conditions := make(map[string]string, len(nl))
		for answer, target := range nl {
			if s, ok := target.(string); ok {
				conditions[answer] = s
			}
		}
		return domain.NextLogic{Kind: domain.NextConditional, Conditions: conditions}
	default:
		return domain.NextLogic{Kind: domain.NextSequential}
	}
}

// resolveRouting settles section-vs-id ambiguity for literal targets and
// records soft warnings for dangling jumps. A dangling literal route is
// tolerated at runtime by the sequential fallback, matching the behavior of
// existing authored content.
func (g *Graph) resolveRouting() {
	for section, questions := range g.sections {
		for _, q := range questions {
			switch q.Next.Kind {
			case domain.NextJump:
				if g.HasSection(q.Next.Target) {
					q.Next.Kind = domain.NextSection
					continue
				}
				if _, ok := g.index[section][q.Next.Target]; !ok {
					g.warnings = append(g.warnings, fmt.Sprintf(
						"section %s, question %s: next_logic %q resolves to no question or section (sequential fallback applies)",
						section, q.ID, q.Next.Target))
				}
			case domain.NextConditional:
				for answer, target := range q.Next.Conditions {
					if g.HasSection(target) {
						continue
					}
					if _, ok := g.index[section][target]; !ok {
						g.warnings = append(g.warnings, fmt.Sprintf(
							"section %s, question %s: conditional target %q for answer %q resolves to no question or section",
							section, q.ID, target, answer))
					}
				}
			}
		}
	}
}

// lintOptions records translated option arrays that are not index-aligned
// with the canonical array. The localizer bound-checks anyway, but the
// mismatch is an authoring defect.
func (g *Graph) lintOptions() {
	for section, questions := range g.sections {
		for _, q := range questions {
			canonical := q.Options[g.canonical]
			for lang, opts := range q.Options {
				if lang == g.canonical {
					continue
				}
				if len(opts) != len(canonical) {
					g.warnings = append(g.warnings, fmt.Sprintf(
						"section %s, question %s: options_%s has %d entries, canonical has %d",
						section, q.ID, lang, len(opts), len(canonical)))
				}
			}
		}
	}
}

func isReservedToken(s string) bool {
	return s == tokenSymptomRouting || s == tokenPhlegmBranch || strings.HasSuffix(s, tokenRecSuffix)
}

func toStringSlice(v any) []string {
	switch vv := v.(type) {
	case []string:
		return vv
	case []any:
		out := make([]string, 0, len(vv))
		for _, item := range vv {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}
