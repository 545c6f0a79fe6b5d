package engine

import (
	"context"
	"log/slog"
	"strings"

	"github.com/epharma/triage/internal/logging"
	"github.com/epharma/triage/pkg/domain"
	"github.com/epharma/triage/pkg/ports"
)

// DefaultMedicationName is recorded when no catalog medicine can be
// extracted from a recommendation's text.
const DefaultMedicationName = "Pharmacist consultation"

// Aggregator collects per-symptom recommendations across sub-flows and
// derives the flat medicine candidate list for the cart stage.
type Aggregator struct {
	catalog ports.MedicineCatalog
	logger  *slog.Logger
}

// NewAggregator builds an Aggregator. The catalog may be nil, in which case
// every candidate falls back to the default name.
func NewAggregator(catalog ports.MedicineCatalog, logger *slog.Logger) *Aggregator {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Aggregator{catalog: catalog, logger: logger}
}

// Collect appends the recommendation captured for a symptom. Duplicates by
// symptom name are suppressed: a sub-flow contributes exactly one entry.
func (a *Aggregator) Collect(s *domain.Session, symptom string, rec *domain.Question) {
	if rec == nil || s.HasRecommendation(symptom) {
		return
	}
	s.Recommendations = append(s.Recommendations, domain.Recommendation{
		Symptom:          symptom,
		RecommendationID: rec.ID,
		Details:          append([]string(nil), rec.Details...),
	})
}

// Medications derives one candidate per collected recommendation by scanning
// the catalog for a case-insensitive substring match of any medicine name
// inside the recommendation's first non-empty text line.
func (a *Aggregator) Medications(ctx context.Context, recs []domain.Recommendation) []domain.Medication {
	var catalog []ports.Medicine
	if a.catalog != nil {
		var err error
		catalog, err = a.catalog.FindAll(ctx)
		if err != nil {
			a.logger.Warn("medicine catalog lookup failed, using defaults", "err", err)
			catalog = nil
		}
	}

	medications := make([]domain.Medication, 0, len(recs))
	for _, rec := range recs {
		med := domain.Medication{
			Symptom: rec.Symptom,
			Name:    DefaultMedicationName,
			Type:    "OTC",
		}

		line := firstNonEmptyLine(rec.Details)
		if line != "" {
			lower := strings.ToLower(line)
			for _, entry := range catalog {
				if entry.Name == "" {
					continue
				}
				if strings.Contains(lower, strings.ToLower(entry.Name)) {
					med.Name = entry.Name
					if entry.Type != "" {
						med.Type = entry.Type
					}
					med.Price = entry.Price
					med.ImageURL = entry.ImageURL
					med.InStock = entry.InStock
					break
				}
			}
		}

		medications = append(medications, med)
	}
	return medications
}

// BuildCombined synthesizes the terminal combined-recommendation node: every
// collected symptom's advisory text under its own heading. The node exists
// only at runtime; the graph has no entry for it.
func (a *Aggregator) BuildCombined(s *domain.Session, canonical string) *domain.Question {
	details := make([]string, 0, len(s.Recommendations)*3)
	for _, rec := range s.Recommendations {
		details = append(details, titleCase(rec.Symptom)+":")
		details = append(details, rec.Details...)
		details = append(details, "")
	}

	return &domain.Question{
		ID:      domain.CombinedRecommendationID,
		Type:    domain.TypeRecommendationDisplay,
		Prompts: map[string]string{canonical: "Here is what we recommend for your symptoms."},
		Details: details,
	}
}

func firstNonEmptyLine(details []string) string {
	for _, line := range details {
		if strings.TrimSpace(line) != "" {
			return line
		}
	}
	return ""
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
