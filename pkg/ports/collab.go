package ports

import (
	"context"

	"github.com/epharma/triage/pkg/domain"
)

// Assistant analyzes free-text symptom descriptions. Implementations must
// tolerate their backend being unavailable by returning a fixed
// unavailable-message string instead of an error the engine would surface.
type Assistant interface {
	Analyze(ctx context.Context, freeText string) (string, error)
}

// Translator converts answer text between the session language and the
// canonical language. Implementations must return the original text unchanged
// on failure; translation degradation never fails a transition.
type Translator interface {
	ToCanonical(ctx context.Context, text string) (string, error)
	FromCanonical(ctx context.Context, text, lang string) (string, error)
}

// Medicine is one catalog entry as exposed by the external medicine store.
type Medicine struct {
	Name     string  `json:"name"`
	Type     string  `json:"type"`
	Price    float64 `json:"price"`
	ImageURL string  `json:"imageUrl,omitempty"`
	InStock  bool    `json:"inStock"`
}

// MedicineCatalog is the read-only lookup used by the recommendation
// aggregator's substring match.
type MedicineCatalog interface {
	FindAll(ctx context.Context) ([]Medicine, error)
}

// ReportSink persists the final summary report. The engine treats the write
// as fire-and-forget: a sink failure is logged and the summary is still
// returned to the caller.
type ReportSink interface {
	SaveReport(ctx context.Context, report *domain.Report) error
}
