package engine_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/epharma/triage/internal/engine"
	"github.com/epharma/triage/pkg/domain"
)

func genderQuestion(t *testing.T, lang string) *domain.LocalizedQuestion {
	t.Helper()
	g := mustGraph(t)
	q, err := g.Question("CommonIntake", "gender")
	require.NoError(t, err)
	return engine.Localize(q, "CommonIntake", lang, g.Canonical())
}

func TestProcessor_SingleChoiceResolvesToCanonical(t *testing.T) {
	p := engine.NewProcessor(nil, nil, "en", nil)
	lq := genderQuestion(t, "my")

	cases := []struct {
		name   string
		raw    any
		stored any
		echo   any
	}{
		{"displayed option", "Lelaki", "Male", "Lelaki"},
		{"displayed case-insensitive", "perempuan", "Female", "perempuan"},
		{"canonical spelling", "Male", "Male", "Male"},
		{"numeric index", "2", "Female", "2"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			stored, echo := p.Process(context.Background(), lq, tc.raw, "my")
			assert.Equal(t, tc.stored, stored)
			assert.Equal(t, tc.echo, echo)
		})
	}
}

func TestProcessor_MultipleChoicePreservesFreeText(t *testing.T) {
	p := engine.NewProcessor(nil, nil, "en", nil)
	g := mustGraph(t)
	q, err := g.Question("CommonIntake", "symptoms")
	require.NoError(t, err)
	lq := engine.Localize(q, "CommonIntake", "en", "en")

	t.Run("list payload", func(t *testing.T) {
		stored, echo := p.Process(context.Background(), lq, []string{"Fever", "itchy eyes"}, "en")
		assert.Equal(t, []string{"Fever", "itchy eyes"}, stored)
		assert.Equal(t, []string{"Fever", "itchy eyes"}, echo)
	})

	t.Run("comma-split string payload", func(t *testing.T) {
		stored, _ := p.Process(context.Background(), lq, "fever, Cough , itchy eyes", "en")
		assert.Equal(t, []string{"Fever", "Cough", "itchy eyes"}, stored)
	})
}

func TestProcessor_NumberAndText(t *testing.T) {
	p := engine.NewProcessor(nil, nil, "en", nil)
	g := mustGraph(t)

	age, err := g.Question("CommonIntake", "age")
	require.NoError(t, err)
	stored, _ := p.Process(context.Background(), engine.Localize(age, "CommonIntake", "en", "en"), "42", "en")
	assert.Equal(t, float64(42), stored)

	allergies, err := g.Question("CommonIntake", "allergies")
	require.NoError(t, err)
	stored, echo := p.Process(context.Background(), engine.Localize(allergies, "CommonIntake", "en", "en"), "  penicillin  ", "en")
	assert.Equal(t, "penicillin", stored)
	assert.Equal(t, "penicillin", echo)
}

func TestProcessor_FreeTextTranslatedForStorage(t *testing.T) {
	p := engine.NewProcessor(nil, stubTranslator{}, "en", nil)
	g := mustGraph(t)
	q, err := g.Question("CommonIntake", "allergies")
	require.NoError(t, err)
	lq := engine.Localize(q, "CommonIntake", "my", "en")

	stored, echo := p.Process(context.Background(), lq, "Tiada", "my")
	assert.Equal(t, "EN:Tiada", stored, "the record stays in one language")
	assert.Equal(t, "Tiada", echo, "the user sees their own words")

	// Canonical-language sessions never hit the translator.
	stored, _ = p.Process(context.Background(), lq, "none", "en")
	assert.Equal(t, "none", stored)
}

func TestProcessor_AssistedAnswer(t *testing.T) {
	g := mustGraph(t)
	q, err := g.Question("CommonIntake", "description")
	require.NoError(t, err)
	lq := engine.Localize(q, "CommonIntake", "en", "en")

	t.Run("analysis attached", func(t *testing.T) {
		assistant := &stubAssistant{reply: "Sounds like a mild viral infection."}
		p := engine.NewProcessor(assistant, nil, "en", nil)

		stored, echo := p.Process(context.Background(), lq, "I feel awful", "en")
		want := domain.AssistedAnswer{UserInput: "I feel awful", AIResponse: "Sounds like a mild viral infection."}
		assert.Equal(t, want, stored)
		assert.Equal(t, want, echo)
		assert.Equal(t, []string{"I feel awful"}, assistant.seen)
	})

	t.Run("degrades on failure", func(t *testing.T) {
		assistant := &stubAssistant{err: errors.New("backend down")}
		p := engine.NewProcessor(assistant, nil, "en", nil)

		stored, _ := p.Process(context.Background(), lq, "I feel awful", "en")
		assert.Equal(t, domain.AssistedAnswer{UserInput: "I feel awful"}, stored,
			"a failing analysis never blocks the transition")
	})

	t.Run("no assistant wired", func(t *testing.T) {
		p := engine.NewProcessor(nil, nil, "en", nil)
		stored, _ := p.Process(context.Background(), lq, "I feel awful", "en")
		assert.Equal(t, domain.AssistedAnswer{UserInput: "I feel awful"}, stored)
	})
}
