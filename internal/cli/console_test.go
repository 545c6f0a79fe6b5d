package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/epharma/triage/pkg/domain"
	"github.com/epharma/triage/pkg/ports"
)

// scriptedFlow walks a fixed sequence of steps regardless of input.
type scriptedFlow struct {
	steps    []*ports.StepResult
	pos      int
	approved *bool
	answers  []any
}

func (f *scriptedFlow) StartFlow(ctx context.Context, section, userID, language string) (*ports.StartResult, error) {
	return &ports.StartResult{
		SessionID: "s1",
		Question: &domain.LocalizedQuestion{
			ID: "age", Type: domain.TypeNumberInput, Prompt: "How old are you?",
		},
	}, nil
}

func (f *scriptedFlow) SubmitAnswer(ctx context.Context, sessionID string, raw any) (*ports.StepResult, error) {
	f.answers = append(f.answers, raw)
	step := f.steps[f.pos]
	if f.pos < len(f.steps)-1 {
		f.pos++
	}
	return step, nil
}

func (f *scriptedFlow) Recommendations(ctx context.Context, sessionID string) ([]domain.Recommendation, error) {
	return nil, nil
}

func (f *scriptedFlow) SetApproval(ctx context.Context, sessionID string, approved bool) (*ports.ApprovalResult, error) {
	f.approved = &approved
	msg := "Not approved. Session ended."
	if approved {
		msg = "Approved! Proceeding to payment."
	}
	return &ports.ApprovalResult{SessionID: sessionID, Approved: approved, Message: msg}, nil
}

func TestConsole_WalksToSummaryAndApproval(t *testing.T) {
	flow := &scriptedFlow{steps: []*ports.StepResult{
		{Question: &domain.LocalizedQuestion{
			ID: "gender", Type: domain.TypeSingleChoice, Prompt: "What is your gender?",
			Options: []string{"Male", "Female"},
		}},
		{Question: &domain.LocalizedQuestion{
			ID: "R1", Type: domain.TypeRecommendation, Prompt: "Our recommendation",
			Details: []string{"Rest and fluids."},
		}},
		{Summary: &domain.Report{
			SessionID: "s1",
			Age:       "30",
			Symptoms:  []string{"fever"},
			Recommendations: []domain.Recommendation{
				{Symptom: "fever", RecommendationID: "R1", Details: []string{"Rest and fluids."}},
			},
		}},
	}}

	in := strings.NewReader("30\nMale\n\ny\n")
	var out bytes.Buffer
	c := NewConsole(flow, in, &out, nil)

	require.NoError(t, c.Run(context.Background(), "en"))

	require.Len(t, flow.answers, 3)
	assert.Equal(t, "30", flow.answers[0])
	assert.Equal(t, "Male", flow.answers[1])
	assert.Equal(t, "ok", flow.answers[2], "display steps are acknowledged")

	require.NotNil(t, flow.approved)
	assert.True(t, *flow.approved)

	text := out.String()
	assert.Contains(t, text, "How old are you?")
	assert.Contains(t, text, "1. Male")
	assert.Contains(t, text, "Rest and fluids.")
	assert.Contains(t, text, "Intake summary")
	assert.Contains(t, text, "Approved! Proceeding to payment.")
}

func TestConsole_QuitCommand(t *testing.T) {
	flow := &scriptedFlow{steps: []*ports.StepResult{{}}}
	c := NewConsole(flow, strings.NewReader("quit\n"), &bytes.Buffer{}, nil)

	err := c.Run(context.Background(), "en")
	assert.ErrorIs(t, err, ErrQuit)
}

type rejectingFlow struct {
	scriptedFlow
	rejected bool
}

func (f *rejectingFlow) SubmitAnswer(ctx context.Context, sessionID string, raw any) (*ports.StepResult, error) {
	if !f.rejected {
		f.rejected = true
		return nil, domain.NewValidationError("age", "answer must be a number")
	}
	return f.scriptedFlow.SubmitAnswer(ctx, sessionID, raw)
}

func TestConsole_ReasksOnRejection(t *testing.T) {
	flow := &rejectingFlow{scriptedFlow: scriptedFlow{steps: []*ports.StepResult{
		{Summary: &domain.Report{SessionID: "s1"}},
	}}}

	var out bytes.Buffer
	c := NewConsole(flow, strings.NewReader("abc\n30\nn\n"), &out, nil)
	require.NoError(t, c.Run(context.Background(), "en"))

	assert.Contains(t, out.String(), "answer must be a number")
	require.NotNil(t, flow.approved)
	assert.False(t, *flow.approved)
}
