package engine

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/epharma/triage/internal/logging"
	"github.com/epharma/triage/pkg/domain"
	"github.com/epharma/triage/pkg/graph"
	"github.com/epharma/triage/pkg/ports"
)

// Intake question ids read into the report. Configuration conventions, like
// the routing ids.
const (
	questionAge         = "age"
	questionAllergies   = "allergies"
	questionMedications = "current_medications"
)

// SummaryGenerator builds the canonical-language report for the reviewing
// pharmacist. Recommendation text is re-resolved from the graph by id; text
// already translated for the UI is never reused, so the clinical record is
// language-stable regardless of the session language.
type SummaryGenerator struct {
	graph  *graph.Graph
	sink   ports.ReportSink
	logger *slog.Logger
}

// NewSummaryGenerator builds a SummaryGenerator. The sink may be nil.
func NewSummaryGenerator(g *graph.Graph, sink ports.ReportSink, logger *slog.Logger) *SummaryGenerator {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &SummaryGenerator{graph: g, sink: sink, logger: logger}
}

// Generate builds and persists the report for a terminated session. The
// persistence write is fire-and-forget: its failure is logged and the report
// is still returned, since it has independent value to the current response.
func (g *SummaryGenerator) Generate(ctx context.Context, s *domain.Session) *domain.Report {
	report := &domain.Report{
		SessionID:   s.ID,
		UserID:      s.UserID,
		Age:         asString(s.Answers[questionAge]),
		Gender:      asString(s.Answers[questionGender]),
		Duration:    durationAnswer(s),
		Allergies:   answerText(s.Answers[questionAllergies]),
		Medications: answerText(s.Answers[questionMedications]),
		Symptoms:    append([]string(nil), s.SymptomQueue...),
		Candidates:  append([]domain.Medication(nil), s.Medications...),
		Approved:    s.Approved,
		CreatedAt:   time.Now().UTC(),
	}

	report.Recommendations = make([]domain.Recommendation, 0, len(s.Recommendations))
	for _, rec := range s.Recommendations {
		report.Recommendations = append(report.Recommendations, g.resolve(rec))
	}

	if g.sink != nil {
		if err := g.sink.SaveReport(ctx, report); err != nil {
			g.logger.Error("failed to persist summary report", "session_id", s.ID, "err", err)
		}
	}

	return report
}

// resolve re-reads the recommendation's canonical text by id from its
// symptom's sub-flow section.
func (g *SummaryGenerator) resolve(rec domain.Recommendation) domain.Recommendation {
	section, ok := symptomRoutes[rec.Symptom]
	if !ok {
		return rec
	}
	q, err := g.graph.Question(section, rec.RecommendationID)
	if err != nil {
		// Keep the captured text rather than dropping the entry.
		g.logger.Warn("recommendation id no longer in graph",
			"symptom", rec.Symptom, "id", rec.RecommendationID)
		return rec
	}
	return domain.Recommendation{
		Symptom:          rec.Symptom,
		RecommendationID: rec.RecommendationID,
		Details:          append([]string(nil), q.Details...),
	}
}

// durationAnswer prefers the shared duration id and falls back to a
// per-branch variant (duration_wet, duration_dry), mirroring how the
// routing resolves the duration advice.
func durationAnswer(s *domain.Session) string {
	if v, ok := s.Answers[questionDuration]; ok {
		return asString(v)
	}
	for id, v := range s.Answers {
		if strings.HasPrefix(id, questionDuration+"_") {
			return asString(v)
		}
	}
	return ""
}

// answerText flattens an answer value to text for the report: assisted
// answers contribute their user input, lists are joined.
func answerText(v any) string {
	switch a := v.(type) {
	case domain.AssistedAnswer:
		return a.UserInput
	case map[string]any:
		// Assisted answers round-tripped through JSON storage.
		return asString(a["userInput"])
	case []string:
		return joinNonEmpty(a)
	case []any:
		return joinNonEmpty(toStringList(a))
	}
	return asString(v)
}

func joinNonEmpty(items []string) string {
	out := ""
	for _, item := range items {
		if item == "" {
			continue
		}
		if out != "" {
			out += ", "
		}
		out += item
	}
	return out
}
