package domain

import "time"

// CombinedRecommendationID is the id of the synthetic terminal node produced
// when the symptom queue is exhausted. It exists only at runtime; the graph
// has no entry for it, and authored configurations must not reuse the name.
const CombinedRecommendationID = "COMBINED_REC"

// AssistedAnswer is the stored value of an AI-assisted question.
type AssistedAnswer struct {
	UserInput  string `json:"userInput"`
	AIResponse string `json:"aiResponse"`
}

// Recommendation is one collected sub-flow outcome. Stored once per symptom.
type Recommendation struct {
	Symptom          string   `json:"symptom"`
	RecommendationID string   `json:"recommendationId"`
	Details          []string `json:"details"`
}

// Medication is a derived medicine candidate for the cart stage.
type Medication struct {
	Symptom  string  `json:"symptom"`
	Name     string  `json:"name"`
	Type     string  `json:"type"`
	Price    float64 `json:"price,omitempty"`
	ImageURL string  `json:"imageUrl,omitempty"`
	InStock  bool    `json:"inStock,omitempty"`
}

// Session is the mutable record of one intake conversation. It is created on
// flow start and mutated exclusively by the routing engine and answer
// processor, one answer at a time; the session manager serializes access per
// session id.
type Session struct {
	ID       string `json:"id"`
	UserID   string `json:"userId,omitempty"`
	Language string `json:"language"`

	// Section and CurrentQuestionID locate the session in the graph.
	// An empty CurrentQuestionID signals the terminal state.
	Section           string `json:"section"`
	CurrentQuestionID string `json:"currentQuestionId"`

	// Answers maps question id to the processed canonical answer value:
	// a string, float64, []string, or AssistedAnswer.
	Answers map[string]any `json:"answers"`

	// SymptomQueue is the lower-cased ordered list of symptoms the user
	// selected; SymptomIndex points at the sub-flow currently in progress.
	SymptomQueue []string `json:"symptomQueue,omitempty"`
	SymptomIndex int      `json:"currentSymptomIndex"`

	// Recommendations accumulates per-symptom outcomes in queue order.
	Recommendations []Recommendation `json:"collectedRecommendations,omitempty"`

	// Medications is the flat candidate list computed when the combined
	// recommendation is synthesized.
	Medications []Medication `json:"medications,omitempty"`

	// CartItems are the medicines the user actually kept at the cart stage.
	CartItems []Medication `json:"cartItems,omitempty"`

	Approved  *bool     `json:"approved,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewSession creates a clean session positioned at the given question.
func NewSession(id, section, questionID, language string) *Session {
	return &Session{
		ID:                id,
		Language:          language,
		Section:           section,
		CurrentQuestionID: questionID,
		Answers:           make(map[string]any),
		SymptomQueue:      []string{},
		CreatedAt:         time.Now().UTC(),
	}
}

// Terminated reports whether the flow has reached its terminal state.
func (s *Session) Terminated() bool {
	return s.CurrentQuestionID == ""
}

// AtCombinedRecommendation reports whether the session sits on the synthetic
// combined recommendation node.
func (s *Session) AtCombinedRecommendation() bool {
	return s.CurrentQuestionID == CombinedRecommendationID
}

// HasRecommendation reports whether a recommendation for the named symptom
// was already collected. Duplicate captures by symptom name are suppressed.
func (s *Session) HasRecommendation(symptom string) bool {
	for _, r := range s.Recommendations {
		if r.Symptom == symptom {
			return true
		}
	}
	return false
}

// Clone returns a deep copy safe for speculative mutation. The engine works
// on a clone and swaps it in only when the whole transition commits.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	next := *s
	next.Answers = make(map[string]any, len(s.Answers))
	for k, v := range s.Answers {
		next.Answers[k] = v
	}
	next.SymptomQueue = append([]string(nil), s.SymptomQueue...)
	next.Recommendations = append([]Recommendation(nil), s.Recommendations...)
	next.Medications = append([]Medication(nil), s.Medications...)
	next.CartItems = append([]Medication(nil), s.CartItems...)
	if s.Approved != nil {
		v := *s.Approved
		next.Approved = &v
	}
	return &next
}
