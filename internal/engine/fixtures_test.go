package engine_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/epharma/triage/internal/engine"
	"github.com/epharma/triage/pkg/adapters/memory"
	"github.com/epharma/triage/pkg/domain"
	"github.com/epharma/triage/pkg/graph"
	"github.com/epharma/triage/pkg/ports"
	"github.com/epharma/triage/pkg/session"
)

// intakeDoc is a compact but complete intake graph: common intake with the
// well-known routing questions, three symptom sub-flows (one with the phlegm
// branch), and the checkout stage with both completion variants.
const intakeDoc = `{
  "CommonIntake": [
    {"id": "language", "type": "single_choice", "prompt": "Choose your language", "prompt_my": "Pilih bahasa anda", "options": ["English", "Malay"], "options_my": ["Inggeris", "Melayu"]},
    {"id": "age", "type": "number_input", "prompt": "How old are you?"},
    {"id": "gender", "type": "single_choice", "prompt": "What is your gender?", "prompt_my": "Apakah jantina anda?", "options": ["Male", "Female"], "options_my": ["Lelaki", "Perempuan"]},
    {"id": "pregnancy", "type": "single_choice", "prompt": "Are you pregnant?", "options": ["Yes", "No"]},
    {"id": "allergies", "type": "text_input", "prompt": "Do you have any allergies?"},
    {"id": "current_medications", "type": "text_input", "prompt": "Are you taking any medications?"},
    {"id": "description", "type": "text_input", "prompt": "Describe how you feel.", "useGemini": true},
    {"id": "symptoms", "type": "multiple_choice", "prompt": "Which symptoms do you have?", "options": ["Fever", "Cough", "Flu"], "next_logic": "SYMPTOM_ROUTING"}
  ],
  "Fever": [
    {"id": "fever_severity", "type": "single_choice", "prompt": "How high is the fever?", "options": ["Mild", "High"]},
    {"id": "duration", "type": "single_choice", "prompt": "How long have you had it?", "options": ["Less than 1 day", "2 days", "3 days", "More than 3 days"], "next_logic": "_REC"},
    {"id": "R1", "type": "recommendation", "prompt": "Our recommendation", "details": ["Paracetamol 500mg every six hours.", "Rest and plenty of fluids."]},
    {"id": "R2", "type": "recommendation", "prompt": "Our recommendation", "details": ["A fever beyond three days needs review.", "Please consult a doctor."]}
  ],
  "Cough": [
    {"id": "phlegm", "type": "single_choice", "prompt": "Is your cough wet or dry?", "options": ["Wet cough", "Dry cough"], "next_logic": "BRANCH_ON_PHLEGM"},
    {"id": "wet_branch", "type": "single_choice", "prompt": "Any blood in the phlegm?", "options": ["Yes", "No"], "next_logic": "duration_wet"},
    {"id": "dry_branch", "type": "single_choice", "prompt": "Throat irritation?", "options": ["Yes", "No"], "next_logic": "duration_dry"},
    {"id": "duration_wet", "type": "single_choice", "prompt": "How long have you had it?", "options": ["Less than 1 day", "2 days", "3 days", "More than 3 days"], "next_logic": "WET_REC"},
    {"id": "duration_dry", "type": "single_choice", "prompt": "How long have you had it?", "options": ["Less than 1 day", "2 days", "3 days", "More than 3 days"], "next_logic": "DRY_REC"},
    {"id": "R1_WET", "type": "recommendation", "prompt": "Our recommendation", "details": ["Prospan syrup twice daily helps clear phlegm."]},
    {"id": "R2_WET", "type": "recommendation", "prompt": "Our recommendation", "details": ["A persistent wet cough needs review.", "Please consult a doctor."]},
    {"id": "R1_DRY", "type": "recommendation", "prompt": "Our recommendation", "details": ["Lozenges and warm fluids soothe a dry cough."]},
    {"id": "R2_DRY", "type": "recommendation", "prompt": "Our recommendation", "details": ["A persistent dry cough needs review."]}
  ],
  "Flu": [
    {"id": "congestion", "type": "single_choice", "prompt": "Do you have a blocked nose?", "options": ["Yes", "No"]},
    {"id": "duration", "type": "single_choice", "prompt": "How long have you had it?", "options": ["Less than 1 day", "2 days", "3 days", "More than 3 days"], "next_logic": "_REC"},
    {"id": "R1", "type": "recommendation", "prompt": "Our recommendation", "details": ["Decolgen tablets relieve flu symptoms."]},
    {"id": "R2", "type": "recommendation", "prompt": "Our recommendation", "details": ["Flu beyond three days needs review."]}
  ],
  "Checkout": [
    {"id": "cart", "type": "medication_cart", "prompt": "Select the medicines you would like to order."},
    {"id": "fulfillment", "type": "single_choice", "prompt": "Delivery or pickup?", "options": ["Delivery", "Pickup"]},
    {"id": "delivery_address", "type": "text_input", "prompt": "Where should we deliver?"},
    {"id": "complete_cart", "type": "completion_message", "prompt": "Order placed. Get well soon!"},
    {"id": "complete_empty", "type": "completion_message", "prompt": "Thank you. Take care!"}
  ]
}`

func mustGraph(t *testing.T) *graph.Graph {
	t.Helper()
	g, err := graph.Parse([]byte(intakeDoc))
	require.NoError(t, err)
	return g
}

func testCatalog() *memory.Catalog {
	return memory.NewCatalog(
		ports.Medicine{Name: "Paracetamol", Type: "OTC", Price: 5.50, InStock: true},
		ports.Medicine{Name: "Prospan", Type: "OTC", Price: 12.00, InStock: true},
		ports.Medicine{Name: "Decolgen", Type: "OTC", Price: 8.20, InStock: true},
	)
}

func newEngine(t *testing.T, options ...engine.Option) (*engine.Engine, *session.Manager) {
	t.Helper()
	mgr := session.NewManager(memory.NewStore())
	options = append([]engine.Option{engine.WithCatalog(testCatalog())}, options...)
	return engine.New(mustGraph(t), mgr, options...), mgr
}

// advance submits one answer and requires the transition to commit.
func advance(t *testing.T, e *engine.Engine, sessionID string, raw any) *ports.StepResult {
	t.Helper()
	step, err := e.SubmitAnswer(context.Background(), sessionID, raw)
	require.NoError(t, err)
	require.NotNil(t, step)
	return step
}

// startEnglishIntake walks the common intake up to (and including) the
// symptoms question for an adult male English-language session, then submits
// the given symptom selection. It returns the session id and the step that
// entered the first sub-flow.
func startEnglishIntake(t *testing.T, e *engine.Engine, symptoms []string) (string, *ports.StepResult) {
	t.Helper()
	start, err := e.StartFlow(context.Background(), "", "", "en")
	require.NoError(t, err)
	require.Equal(t, "language", start.Question.ID)

	advance(t, e, start.SessionID, "English")
	advance(t, e, start.SessionID, 30)
	step := advance(t, e, start.SessionID, "Male")
	require.Equal(t, "allergies", step.Question.ID, "pregnancy must be skipped for male sessions")
	advance(t, e, start.SessionID, "None")
	advance(t, e, start.SessionID, "None")
	step = advance(t, e, start.SessionID, "I have been feeling unwell since yesterday.")
	require.Equal(t, "symptoms", step.Question.ID)

	return start.SessionID, advance(t, e, start.SessionID, symptoms)
}

type stubAssistant struct {
	reply string
	err   error
	seen  []string
}

func (s *stubAssistant) Analyze(ctx context.Context, freeText string) (string, error) {
	s.seen = append(s.seen, freeText)
	return s.reply, s.err
}

// stubTranslator marks its output so tests can tell which direction ran.
type stubTranslator struct{}

func (stubTranslator) ToCanonical(ctx context.Context, text string) (string, error) {
	return "EN:" + text, nil
}

func (stubTranslator) FromCanonical(ctx context.Context, text, lang string) (string, error) {
	return strings.ToUpper(lang) + ":" + text, nil
}

type captureSink struct {
	reports []*domain.Report
	err     error
}

func (c *captureSink) SaveReport(ctx context.Context, report *domain.Report) error {
	if c.err != nil {
		return c.err
	}
	c.reports = append(c.reports, report)
	return nil
}

type failingCatalog struct{ err error }

func (f failingCatalog) FindAll(ctx context.Context) ([]ports.Medicine, error) {
	return nil, f.err
}
