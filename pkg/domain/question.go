package domain

// QuestionType constants define how a question is presented and validated.
const (
	// TypeTextInput accepts any non-empty free text.
	TypeTextInput = "text_input"
	// TypeNumberInput accepts anything coercible to a finite number.
	TypeNumberInput = "number_input"
	// TypeSingleChoice accepts one listed option (or a 1-based index).
	TypeSingleChoice = "single_choice"
	// TypeMultipleChoice accepts a list of options, comma-split when given
	// as a single string.
	TypeMultipleChoice = "multiple_choice"
	// TypeRecommendation is advisory text terminating a symptom sub-flow.
	TypeRecommendation = "recommendation"
	// TypeRecommendationDisplay shows previously aggregated recommendations.
	TypeRecommendationDisplay = "recommendation_display"
	// TypeMedicationCart presents the derived medicine candidates.
	TypeMedicationCart = "medication_cart"
	// TypeCompletionMessage closes the flow.
	TypeCompletionMessage = "completion_message"
)

// NextKind discriminates the routing directive attached to a question.
// The raw next_logic field in the configuration is stringly typed; it is
// resolved into one of these exactly once, at graph load time.
type NextKind int

const (
	// NextSequential advances to the following question in the section.
	NextSequential NextKind = iota
	// NextJump targets a literal question id within the same section.
	NextJump
	// NextSection switches to the first question of a named section.
	NextSection
	// NextConditional maps the canonical answer to a target id or section.
	NextConditional
	// NextSymptomRouting consumes the symptom queue, one sub-flow per entry.
	NextSymptomRouting
	// NextPhlegmBranch selects between the wet and dry cough paths based on
	// a prior answer.
	NextPhlegmBranch
	// NextDurationRec buckets the symptom-duration answer and jumps to the
	// matching recommendation node.
	NextDurationRec
)

// NextLogic is the resolved routing directive.
type NextLogic struct {
	Kind NextKind `json:"kind"`

	// Target holds the literal question id (NextJump) or section name
	// (NextSection).
	Target string `json:"target,omitempty"`

	// Conditions maps canonical answer values to targets (NextConditional).
	// A target naming a section switches sections; otherwise it resolves
	// within the current section.
	Conditions map[string]string `json:"conditions,omitempty"`

	// Variant carries the recommendation variant embedded in a *_REC token,
	// e.g. "WET" from "WET_REC". Empty for the plain "_REC" token.
	Variant string `json:"variant,omitempty"`
}

// Question represents one node of the intake graph.
type Question struct {
	ID   string `json:"id"`
	Type string `json:"type"`

	// Prompts holds the per-language prompt text keyed by language code.
	// The canonical language entry is always present.
	Prompts map[string]string `json:"prompts"`

	// Options holds per-language option arrays, index-aligned with the
	// canonical array. Languages without a translation fall back to the
	// canonical options.
	Options map[string][]string `json:"options,omitempty"`

	// Next is the routing directive resolved at load time.
	Next NextLogic `json:"next"`

	// Details carries the advisory text lines of a recommendation node.
	Details []string `json:"details,omitempty"`

	// UsesAssist marks questions whose free-text answer is run through the
	// external analysis collaborator.
	UsesAssist bool `json:"uses_assist,omitempty"`
}

// Prompt returns the prompt for lang, falling back to the canonical language.
func (q *Question) Prompt(lang, canonical string) string {
	if p, ok := q.Prompts[lang]; ok && p != "" {
		return p
	}
	return q.Prompts[canonical]
}

// OptionsFor returns the option array for lang, falling back to canonical.
func (q *Question) OptionsFor(lang, canonical string) []string {
	if opts, ok := q.Options[lang]; ok && len(opts) > 0 {
		return opts
	}
	return q.Options[canonical]
}

// Terminal reports whether the question requires no user decision to advance.
func (q *Question) Terminal() bool {
	switch q.Type {
	case TypeRecommendation, TypeRecommendationDisplay, TypeCompletionMessage:
		return true
	}
	return false
}

// LocalizedQuestion is the language-specific view of a question handed to
// the presentation layer, together with the map needed to recover canonical
// answer values from displayed ones.
type LocalizedQuestion struct {
	ID      string   `json:"id"`
	Section string   `json:"section"`
	Type    string   `json:"type"`
	Prompt  string   `json:"prompt"`
	Options []string `json:"options,omitempty"`
	Details []string `json:"details,omitempty"`

	// OptionMap maps displayed option values back to canonical ones.
	// Index-aligned construction; displayed options beyond the canonical
	// array length are never mapped.
	OptionMap map[string]string `json:"-"`

	// CanonicalOptions is the default-language option array.
	CanonicalOptions []string `json:"-"`

	UsesAssist bool `json:"uses_assist,omitempty"`
}
