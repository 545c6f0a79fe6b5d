package domain

import "time"

// Report is the flat, canonical-language snapshot of a finished intake,
// consumed by the reviewing pharmacist rather than the end user. All text is
// re-resolved to the canonical language by recommendation id; already
// translated session text is never reused.
type Report struct {
	SessionID string `json:"sessionId"`
	UserID    string `json:"userId,omitempty"`

	// Demographics and free-text intake answers.
	Age         string `json:"age,omitempty"`
	Gender      string `json:"gender,omitempty"`
	Duration    string `json:"duration,omitempty"`
	Allergies   string `json:"allergies,omitempty"`
	Medications string `json:"currentMedications,omitempty"`

	Symptoms        []string         `json:"symptoms,omitempty"`
	Recommendations []Recommendation `json:"recommendations,omitempty"`
	Candidates      []Medication     `json:"candidateMedicines,omitempty"`

	Approved  *bool     `json:"approved,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}
