package ports

import (
	"context"

	"github.com/epharma/triage/pkg/domain"
)

// StartResult is the response to starting a new intake flow.
type StartResult struct {
	SessionID string                    `json:"sessionId"`
	Question  *domain.LocalizedQuestion `json:"currentQuestion"`
}

// AnsweredEcho echoes the question that was just answered, in the session
// language, together with the processed answer value.
type AnsweredEcho struct {
	ID     string `json:"id"`
	Prompt string `json:"prompt"`
	Answer any    `json:"answer"`
}

// StepResult is the response to one answer submission. Question is nil when
// the flow terminated; Summary is set on the terminating step.
type StepResult struct {
	SessionID string                    `json:"sessionId"`
	Answered  AnsweredEcho              `json:"answered"`
	Question  *domain.LocalizedQuestion `json:"nextQuestion,omitempty"`
	Summary   *domain.Report            `json:"summary,omitempty"`
}

// ApprovalResult is the response to recording the user's approval decision.
type ApprovalResult struct {
	SessionID string `json:"sessionId"`
	Approved  bool   `json:"approved"`
	Message   string `json:"message"`
}

// Flow is the engine surface exposed to the API layer.
type Flow interface {
	// StartFlow creates a session positioned at the first question of the
	// given section (the common intake when empty).
	StartFlow(ctx context.Context, section, userID, language string) (*StartResult, error)

	// SubmitAnswer validates, processes and routes one answer. An invalid
	// answer returns a *domain.ValidationError and leaves the session
	// untouched.
	SubmitAnswer(ctx context.Context, sessionID string, raw any) (*StepResult, error)

	// Recommendations returns the recommendations collected so far.
	Recommendations(ctx context.Context, sessionID string) ([]domain.Recommendation, error)

	// SetApproval records the user's approval decision.
	SetApproval(ctx context.Context, sessionID string, approved bool) (*ApprovalResult, error)
}
