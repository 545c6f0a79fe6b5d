package engine

import (
	"context"
	"log/slog"
	"strings"

	"github.com/epharma/triage/internal/logging"
	"github.com/epharma/triage/pkg/domain"
	"github.com/epharma/triage/pkg/graph"
)

// Well-known question ids the routing rules read. These are configuration
// conventions: authored graphs use these ids for the questions the skip and
// branch rules depend on.
const (
	questionGender          = "gender"
	questionPregnancy       = "pregnancy"
	questionDuration        = "duration"
	questionPhlegm          = "phlegm"
	questionFulfillment     = "fulfillment"
	questionDeliveryAddress = "delivery_address"

	phlegmWetTarget = "wet_branch"
	phlegmDryTarget = "dry_branch"

	completionWithCart  = "complete_cart"
	completionEmptyCart = "complete_empty"
)

// CheckoutSection is the final stage every flow funnels into.
const CheckoutSection = "Checkout"

// symptomRoutes is the fixed symptom -> section table consumed by the
// symptom-routing rule. Keys are the canonicalized (lower-cased) symptom
// answers.
var symptomRoutes = map[string]string{
	"fever":        "Fever",
	"cough":        "Cough",
	"flu":          "Flu",
	"cold":         "Cold",
	"nausea":       "Nausea",
	"vomiting":     "Vomiting",
	"diarrhoe":     "Diarrhoe",
	"constipation": "Constipation",
}

// durationBuckets classifies the symptom-duration answer. Case-insensitive
// exact match; anything else yields no bucket and the routing falls back to
// the checkout stage directly.
var durationBuckets = map[string]string{
	"less than 1 day":  "R1",
	"2 days":           "R1",
	"3 days":           "R2",
	"more than 3 days": "R2",
}

// Router computes the next question from the current question, the session
// and the accumulated answers, applying the prioritized rule set. It is the
// only component that mutates the session's position, queue and collected
// recommendations.
type Router struct {
	graph      *graph.Graph
	aggregator *Aggregator
	logger     *slog.Logger
}

// NewRouter builds a Router over the loaded graph.
func NewRouter(g *graph.Graph, aggregator *Aggregator, logger *slog.Logger) *Router {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Router{graph: g, aggregator: aggregator, logger: logger}
}

// Next advances the session past the current question and returns the next
// one. A nil question with nil error means the flow terminated. The session
// is mutated (section, queue index, collected recommendations, medications);
// the caller owns making that mutation transactional.
func (r *Router) Next(ctx context.Context, s *domain.Session, current *domain.Question) (*domain.Question, error) {
	// The combined recommendation is a synthetic state: its acknowledgment
	// jumps straight to the completion message, bypassing the cart step.
	if current.ID == domain.CombinedRecommendationID {
		return r.enterCompletion(s)
	}

	// Acknowledging the completion message ends the flow.
	if current.Type == domain.TypeCompletionMessage {
		s.CurrentQuestionID = ""
		return nil, nil
	}

	// Acknowledging a sub-flow's recommendation node completes that
	// sub-flow: hand over to the queue continuation, never to the sibling
	// recommendation variants that follow it in the section array.
	if current.Type == domain.TypeRecommendation && r.isSymptomSection(s.Section) {
		return r.advanceQueue(ctx, s, current)
	}

	switch current.Next.Kind {
	case domain.NextJump:
		if q, err := r.graph.Question(s.Section, current.Next.Target); err == nil {
			return r.commit(s, q), nil
		}
		// Dangling route: a defect in the authored graph, kept alive by the
		// sequential fallback.
		r.logger.Error("routing dead end: literal jump target missing",
			"section", s.Section, "question", current.ID, "target", current.Next.Target)
		return r.sequential(ctx, s, current)

	case domain.NextSection:
		return r.enterSection(s, current.Next.Target)

	case domain.NextConditional:
		return r.conditional(ctx, s, current)

	case domain.NextSymptomRouting:
		return r.symptomRouting(ctx, s, current)

	case domain.NextPhlegmBranch:
		return r.phlegmBranch(ctx, s, current)

	case domain.NextDurationRec:
		return r.durationRecommendation(ctx, s, current)

	default:
		return r.sequential(ctx, s, current)
	}
}

// conditional resolves an answer -> target map. A target naming a section
// switches sections; otherwise it resolves within the current one.
func (r *Router) conditional(ctx context.Context, s *domain.Session, current *domain.Question) (*domain.Question, error) {
	answer := strings.TrimSpace(asString(s.Answers[current.ID]))

	target, ok := current.Next.Conditions[answer]
	if !ok {
		for key, t := range current.Next.Conditions {
			if strings.EqualFold(key, answer) {
				target = t
				ok = true
				break
			}
		}
	}
	if !ok {
		r.logger.Error("routing dead end: no conditional target for answer",
			"section", s.Section, "question", current.ID, "answer", answer)
		return r.sequential(ctx, s, current)
	}

	if r.graph.HasSection(target) {
		return r.enterSection(s, target)
	}
	if q, err := r.graph.Question(s.Section, target); err == nil {
		return r.commit(s, q), nil
	}

	r.logger.Error("routing dead end: conditional target missing",
		"section", s.Section, "question", current.ID, "target", target)
	return r.sequential(ctx, s, current)
}

// symptomRouting consumes the symptom queue. On first encounter it
// canonicalizes and stores the full multi-select answer; each entry is then
// walked through its own sub-flow in selection order.
func (r *Router) symptomRouting(ctx context.Context, s *domain.Session, current *domain.Question) (*domain.Question, error) {
	if len(s.SymptomQueue) == 0 {
		selected := toStringList(s.Answers[current.ID])
		queue := make([]string, 0, len(selected))
		for _, symptom := range selected {
			queue = append(queue, strings.ToLower(strings.TrimSpace(symptom)))
		}
		s.SymptomQueue = queue
		s.SymptomIndex = 0
	}

	if s.SymptomIndex >= len(s.SymptomQueue) {
		return r.enterSection(s, CheckoutSection)
	}

	symptom := s.SymptomQueue[s.SymptomIndex]
	section, ok := symptomRoutes[symptom]
	if !ok || !r.graph.HasSection(section) {
		r.logger.Warn("no sub-flow for selected symptom, skipping",
			"symptom", symptom)
		return r.advanceQueue(ctx, s, nil)
	}
	return r.enterSection(s, section)
}

// phlegmBranch selects between the wet and dry cough paths based on the
// prior phlegm answer.
func (r *Router) phlegmBranch(ctx context.Context, s *domain.Session, current *domain.Question) (*domain.Question, error) {
	answer := strings.ToLower(asString(s.Answers[questionPhlegm]))

	target := phlegmDryTarget
	if strings.Contains(answer, "wet") || answer == "yes" {
		target = phlegmWetTarget
	}

	if q, err := r.graph.Question(s.Section, target); err == nil {
		return r.commit(s, q), nil
	}
	r.logger.Error("routing dead end: phlegm branch target missing",
		"section", s.Section, "target", target)
	return r.sequential(ctx, s, current)
}

// durationRecommendation buckets the symptom-duration answer and jumps to
// the matching recommendation node. An unrecognized duration yields no
// bucket: no recommendation is shown and the flow falls through to checkout.
func (r *Router) durationRecommendation(ctx context.Context, s *domain.Session, current *domain.Question) (*domain.Question, error) {
	// The token sits on the duration question itself; its own answer feeds
	// the bucket. The well-known id is the fallback for graphs that attach
	// the token elsewhere.
	raw, ok := s.Answers[current.ID]
	if !ok {
		raw = s.Answers[questionDuration]
	}
	answer := strings.ToLower(strings.TrimSpace(asString(raw)))

	bucket, ok := durationBuckets[answer]
	if !ok {
		return r.enterSection(s, CheckoutSection)
	}

	target := bucket
	if current.Next.Variant != "" {
		target = bucket + "_" + current.Next.Variant
	}

	if q, err := r.graph.Question(s.Section, target); err == nil {
		return r.commit(s, q), nil
	}
	r.logger.Error("routing dead end: recommendation node missing",
		"section", s.Section, "target", target)
	return r.sequential(ctx, s, current)
}

// sequential finds the current question's position and returns the next
// element, applying the structural skips. Exhausting a symptom sub-flow is
// implicit completion and feeds the queue continuation instead of a dead end.
func (r *Router) sequential(ctx context.Context, s *domain.Session, current *domain.Question) (*domain.Question, error) {
	questions, err := r.graph.Section(s.Section)
	if err != nil {
		return nil, err
	}

	idx := r.graph.IndexOf(s.Section, current.ID)
	for next := idx + 1; idx >= 0 && next < len(questions); next++ {
		candidate := questions[next]
		if r.skip(s, candidate) {
			continue
		}
		if candidate.Type == domain.TypeCompletionMessage {
			return r.enterCompletion(s)
		}
		return r.commit(s, candidate), nil
	}

	// Section exhausted. A finished symptom sub-flow hands over to the
	// queue continuation; anything else terminates the flow.
	if r.isSymptomSection(s.Section) {
		return r.advanceQueue(ctx, s, current)
	}
	s.CurrentQuestionID = ""
	return nil, nil
}

// skip applies the two structural skips: the pregnancy question for male
// sessions, and the delivery-address question when the fulfillment choice
// was delivery (checkout only).
func (r *Router) skip(s *domain.Session, candidate *domain.Question) bool {
	if candidate.ID == questionPregnancy {
		gender := asString(s.Answers[questionGender])
		if strings.EqualFold(gender, "male") {
			return true
		}
	}
	if candidate.ID == questionDeliveryAddress && s.Section == CheckoutSection {
		choice := asString(s.Answers[questionFulfillment])
		if strings.EqualFold(choice, "delivery") {
			return true
		}
	}
	return false
}

// advanceQueue is the queue continuation and aggregation rule. It captures
// the finished symptom's recommendation, then either enters the next queued
// sub-flow or synthesizes the combined terminal node.
func (r *Router) advanceQueue(ctx context.Context, s *domain.Session, current *domain.Question) (*domain.Question, error) {
	if s.SymptomIndex < len(s.SymptomQueue) {
		symptom := s.SymptomQueue[s.SymptomIndex]
		// Only a symptom whose own sub-flow just finished contributes; an
		// unroutable entry being skipped must not pick up another section's
		// advisory.
		if section, ok := symptomRoutes[symptom]; ok && section == s.Section {
			r.aggregator.Collect(s, symptom, r.recommendationFor(s, current))
		}
	}

	// A single-symptom flow produces no combined node; it moves straight on
	// to checkout. The cart still needs its medicine candidates.
	if len(s.SymptomQueue) <= 1 {
		s.Medications = r.aggregator.Medications(ctx, s.Recommendations)
		return r.enterSection(s, CheckoutSection)
	}

	if s.SymptomIndex+1 < len(s.SymptomQueue) {
		s.SymptomIndex++
		symptom := s.SymptomQueue[s.SymptomIndex]
		if section, ok := symptomRoutes[symptom]; ok && r.graph.HasSection(section) {
			return r.enterSection(s, section)
		}
		// Unroutable queue entry: skip it and continue.
		r.logger.Warn("no sub-flow for queued symptom, skipping", "symptom", symptom)
		return r.advanceQueue(ctx, s, nil)
	}

	// Queue exhausted: synthesize the combined recommendation and derive
	// the medicine candidates for the cart stage.
	s.Medications = r.aggregator.Medications(ctx, s.Recommendations)
	combined := r.aggregator.BuildCombined(s, r.graph.Canonical())
	s.CurrentQuestionID = combined.ID
	return combined, nil
}

// recommendationFor locates the advisory node for a finished sub-flow: the
// node the user just acknowledged when it is a recommendation, otherwise the
// section's first recommendation node.
func (r *Router) recommendationFor(s *domain.Session, current *domain.Question) *domain.Question {
	if current != nil && current.Type == domain.TypeRecommendation {
		return current
	}
	questions, err := r.graph.Section(s.Section)
	if err != nil {
		return nil
	}
	for _, q := range questions {
		if q.Type == domain.TypeRecommendation {
			return q
		}
	}
	return nil
}

// enterSection switches the session to the first question of a section.
func (r *Router) enterSection(s *domain.Session, name string) (*domain.Question, error) {
	first, err := r.graph.First(name)
	if err != nil {
		return nil, err
	}
	s.Section = name
	return r.commit(s, first), nil
}

// enterCompletion places the session on the checkout completion message,
// picking the variant by whether the cart holds anything.
func (r *Router) enterCompletion(s *domain.Session) (*domain.Question, error) {
	target := completionEmptyCart
	if len(s.CartItems) > 0 {
		target = completionWithCart
	}

	q, err := r.graph.Question(CheckoutSection, target)
	if err != nil {
		// No completion nodes authored: terminate cleanly.
		r.logger.Error("completion node missing", "target", target)
		s.Section = CheckoutSection
		s.CurrentQuestionID = ""
		return nil, nil
	}
	s.Section = CheckoutSection
	return r.commit(s, q), nil
}

func (r *Router) isSymptomSection(name string) bool {
	for _, section := range symptomRoutes {
		if section == name {
			return true
		}
	}
	return false
}

func (r *Router) commit(s *domain.Session, q *domain.Question) *domain.Question {
	s.CurrentQuestionID = q.ID
	return q
}

func toStringList(v any) []string {
	switch list := v.(type) {
	case []string:
		return list
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			if s := asString(item); s != "" {
				out = append(out, s)
			}
		}
		return out
	case string:
		if list == "" {
			return nil
		}
		return []string{list}
	}
	return nil
}
