package engine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/epharma/triage/internal/engine"
	"github.com/epharma/triage/pkg/domain"
)

func TestLocalize_TranslatedView(t *testing.T) {
	g := mustGraph(t)
	q, err := g.Question("CommonIntake", "gender")
	require.NoError(t, err)

	lq := engine.Localize(q, "CommonIntake", "my", g.Canonical())
	assert.Equal(t, "Apakah jantina anda?", lq.Prompt)
	assert.Equal(t, []string{"Lelaki", "Perempuan"}, lq.Options)
	assert.Equal(t, []string{"Male", "Female"}, lq.CanonicalOptions)
	assert.Equal(t, map[string]string{"Lelaki": "Male", "Perempuan": "Female"}, lq.OptionMap)
}

func TestLocalize_FallsBackToCanonical(t *testing.T) {
	g := mustGraph(t)
	q, err := g.Question("CommonIntake", "pregnancy")
	require.NoError(t, err)

	// No Malay translation authored: the canonical text serves.
	lq := engine.Localize(q, "CommonIntake", "my", g.Canonical())
	assert.Equal(t, "Are you pregnant?", lq.Prompt)
	assert.Equal(t, []string{"Yes", "No"}, lq.Options)
	assert.Equal(t, map[string]string{"Yes": "Yes", "No": "No"}, lq.OptionMap)
}

func TestLocalize_ExcessDisplayedOptionsNotMapped(t *testing.T) {
	q := &domain.Question{
		ID:      "q",
		Type:    domain.TypeSingleChoice,
		Prompts: map[string]string{"en": "Pick one"},
		Options: map[string][]string{
			"en": {"A", "B"},
			"my": {"X", "Y", "Z"},
		},
	}

	lq := engine.Localize(q, "S", "my", "en")
	assert.Equal(t, []string{"X", "Y", "Z"}, lq.Options)
	assert.Equal(t, map[string]string{"X": "A", "Y": "B"}, lq.OptionMap,
		"a displayed option past the canonical length has no mapping")
}
