package domain

import (
	"errors"
	"fmt"
)

// ErrSessionNotFound is returned when a session ID cannot be found in the store.
var ErrSessionNotFound = errors.New("session not found")

// ErrSectionNotFound is returned when a named section does not exist in the graph.
var ErrSectionNotFound = errors.New("section not found")

// ErrQuestionNotFound is returned when a question id does not exist in its section.
var ErrQuestionNotFound = errors.New("question not found")

// ValidationError rejects an answer without mutating the session. The caller
// re-presents the same question with the reason attached.
type ValidationError struct {
	QuestionID string
	Reason     string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid answer for question %s: %s", e.QuestionID, e.Reason)
}

// NewValidationError builds a ValidationError for the given question.
func NewValidationError(questionID, reason string) *ValidationError {
	return &ValidationError{QuestionID: questionID, Reason: reason}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
