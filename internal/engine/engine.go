package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/epharma/triage/internal/logging"
	"github.com/epharma/triage/pkg/domain"
	"github.com/epharma/triage/pkg/graph"
	"github.com/epharma/triage/pkg/ports"
	"github.com/epharma/triage/pkg/session"
)

// DefaultSection is the entry section of the intake flow.
const DefaultSection = "CommonIntake"

// languageQuestion is the id of the language-selection question; answering
// it switches the session language.
const languageQuestion = "language"

// languageCodes maps the canonical language-selection answers to codes.
var languageCodes = map[string]string{
	"english": "en",
	"malay":   "my",
	"chinese": "zh",
}

// Engine wires the localizer, validator, processor, router, aggregator and
// summary generator behind the ports.Flow surface. Every answer submission
// is a single locked read-modify-write of one session.
type Engine struct {
	graph      *graph.Graph
	sessions   *session.Manager
	processor  *Processor
	router     *Router
	aggregator *Aggregator
	summary    *SummaryGenerator
	translator ports.Translator
	logger     *slog.Logger
}

// Option configures the Engine.
type Option func(*opts)

type opts struct {
	assistant  ports.Assistant
	translator ports.Translator
	catalog    ports.MedicineCatalog
	sink       ports.ReportSink
	logger     *slog.Logger
}

// WithAssistant wires the free-text analysis collaborator.
func WithAssistant(a ports.Assistant) Option {
	return func(o *opts) { o.assistant = a }
}

// WithTranslator wires the translation collaborator.
func WithTranslator(t ports.Translator) Option {
	return func(o *opts) { o.translator = t }
}

// WithCatalog wires the medicine catalog used by the aggregator.
func WithCatalog(c ports.MedicineCatalog) Option {
	return func(o *opts) { o.catalog = c }
}

// WithReportSink wires the summary persistence sink.
func WithReportSink(s ports.ReportSink) Option {
	return func(o *opts) { o.sink = s }
}

// WithLogger configures structured logging.
func WithLogger(l *slog.Logger) Option {
	return func(o *opts) { o.logger = l }
}

// New builds the engine over a loaded graph and a session manager.
func New(g *graph.Graph, sessions *session.Manager, options ...Option) *Engine {
	o := &opts{logger: logging.NewNop()}
	for _, opt := range options {
		opt(o)
	}

	aggregator := NewAggregator(o.catalog, o.logger)
	return &Engine{
		graph:      g,
		sessions:   sessions,
		processor:  NewProcessor(o.assistant, o.translator, g.Canonical(), o.logger),
		router:     NewRouter(g, aggregator, o.logger),
		aggregator: aggregator,
		summary:    NewSummaryGenerator(g, o.sink, o.logger),
		translator: o.translator,
		logger:     o.logger,
	}
}

var _ ports.Flow = (*Engine)(nil)

// StartFlow creates a session positioned at the first question of the given
// section (the common intake when empty) and returns the localized question.
func (e *Engine) StartFlow(ctx context.Context, section, userID, language string) (*ports.StartResult, error) {
	if section == "" {
		section = DefaultSection
	}
	if language == "" {
		language = e.graph.Canonical()
	}

	first, err := e.graph.First(section)
	if err != nil {
		return nil, err
	}

	s := domain.NewSession(uuid.NewString(), section, first.ID, language)
	s.UserID = userID

	if err := e.sessions.Create(ctx, s); err != nil {
		return nil, err
	}

	e.logger.Info("flow started", "session_id", s.ID, "section", section)
	return &ports.StartResult{
		SessionID: s.ID,
		Question:  e.localizeFor(ctx, s, first),
	}, nil
}

// SubmitAnswer validates, processes and routes one answer. The transition
// either fully commits (validated, processed, routed, session updated) or is
// fully rejected; an invalid answer leaves the session untouched and the
// caller re-presents the same question.
func (e *Engine) SubmitAnswer(ctx context.Context, sessionID string, raw any) (*ports.StepResult, error) {
	var result *ports.StepResult

	_, err := e.sessions.Update(ctx, sessionID, func(ctx context.Context, s *domain.Session) error {
		if s.Terminated() {
			return domain.NewValidationError("", "the flow has already completed")
		}

		current, err := e.currentQuestion(s)
		if err != nil {
			return err
		}

		lq := e.localize(s, current)
		if err := Validate(lq, raw); err != nil {
			return err
		}

		stored, echo := e.processor.Process(ctx, lq, raw, s.Language)
		s.Answers[current.ID] = stored

		e.applySideEffects(s, current, stored, raw)

		next, err := e.router.Next(ctx, s, current)
		if err != nil {
			return err
		}

		result = &ports.StepResult{
			SessionID: sessionID,
			Answered: ports.AnsweredEcho{
				ID:     current.ID,
				Prompt: lq.Prompt,
				Answer: echo,
			},
		}

		if next != nil {
			result.Question = e.localizeFor(ctx, s, next)
			return nil
		}

		// Terminal: build the clinician-facing summary. Persistence inside
		// is log-and-continue.
		result.Summary = e.summary.Generate(ctx, s)
		e.logger.Info("flow completed", "session_id", s.ID)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Recommendations returns the recommendations collected so far.
func (e *Engine) Recommendations(ctx context.Context, sessionID string) ([]domain.Recommendation, error) {
	s, err := e.sessions.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return append([]domain.Recommendation(nil), s.Recommendations...), nil
}

// SetApproval records the user's approval decision.
func (e *Engine) SetApproval(ctx context.Context, sessionID string, approved bool) (*ports.ApprovalResult, error) {
	_, err := e.sessions.Update(ctx, sessionID, func(ctx context.Context, s *domain.Session) error {
		v := approved
		s.Approved = &v
		return nil
	})
	if err != nil {
		return nil, err
	}

	message := "Not approved. Session ended."
	if approved {
		message = "Approved! Proceeding to payment."
	}
	return &ports.ApprovalResult{
		SessionID: sessionID,
		Approved:  approved,
		Message:   message,
	}, nil
}

// currentQuestion resolves the session's position, reconstructing the
// synthetic combined node when the session sits on it.
func (e *Engine) currentQuestion(s *domain.Session) (*domain.Question, error) {
	if s.AtCombinedRecommendation() {
		return e.aggregator.BuildCombined(s, e.graph.Canonical()), nil
	}
	q, err := e.graph.Question(s.Section, s.CurrentQuestionID)
	if err != nil {
		return nil, fmt.Errorf("session %s points at unknown question: %w", s.ID, err)
	}
	return q, nil
}

// applySideEffects handles the answer-driven session fields beyond the
// answers map: language selection and cart content.
func (e *Engine) applySideEffects(s *domain.Session, current *domain.Question, stored, raw any) {
	if current.ID == languageQuestion {
		if code, ok := languageCodes[strings.ToLower(asString(stored))]; ok {
			s.Language = code
		}
	}

	// The cart stage and the combined-recommendation acknowledgment both
	// accept a selection of medicine names to keep. The combined node only
	// counts derived candidates: a bare acknowledgment token must leave the
	// cart empty, not place an order.
	if current.Type == domain.TypeMedicationCart || current.ID == domain.CombinedRecommendationID {
		e.applyCart(s, raw, current.ID == domain.CombinedRecommendationID)
	}
}

// applyCart records which derived candidates the user kept. On the cart
// question unknown names are carried as plain OTC entries rather than
// dropped; with candidatesOnly set they are discarded instead.
func (e *Engine) applyCart(s *domain.Session, raw any, candidatesOnly bool) {
	names := toStringList(raw)
	items := make([]domain.Medication, 0, len(names))

	for _, name := range names {
		trimmed := strings.TrimSpace(name)
		if trimmed == "" || strings.EqualFold(trimmed, "none") || strings.EqualFold(trimmed, "no") {
			continue
		}
		matched := false
		for _, med := range s.Medications {
			if strings.EqualFold(med.Name, trimmed) {
				items = append(items, med)
				matched = true
				break
			}
		}
		if !matched && !candidatesOnly {
			items = append(items, domain.Medication{Name: trimmed, Type: "OTC"})
		}
	}
	s.CartItems = items
}

// localize produces the view used for validation and echo: session language,
// no detail translation.
func (e *Engine) localize(s *domain.Session, q *domain.Question) *domain.LocalizedQuestion {
	return Localize(q, s.Section, s.Language, e.graph.Canonical())
}

// localizeFor additionally localizes advisory detail lines for display in
// non-canonical sessions. Translation failures fall back to the canonical
// text; the stored record is unaffected.
func (e *Engine) localizeFor(ctx context.Context, s *domain.Session, q *domain.Question) *domain.LocalizedQuestion {
	lq := e.localize(s, q)

	// The cart node carries no authored options; its choices are the
	// candidates derived from the collected advice. Medicine names are
	// language-neutral, so no translation pass.
	if lq.Type == domain.TypeMedicationCart && len(lq.Options) == 0 {
		for _, med := range s.Medications {
			lq.Options = append(lq.Options, med.Name)
		}
	}

	if e.translator == nil || s.Language == e.graph.Canonical() || len(lq.Details) == 0 {
		return lq
	}
	switch lq.Type {
	case domain.TypeRecommendation, domain.TypeRecommendationDisplay:
		translated := make([]string, len(lq.Details))
		for i, line := range lq.Details {
			out, err := e.translator.FromCanonical(ctx, line, s.Language)
			if err != nil || out == "" {
				out = line
			}
			translated[i] = out
		}
		lq.Details = translated
	}
	return lq
}
