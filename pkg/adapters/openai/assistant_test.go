package openai_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/epharma/triage/pkg/adapters/openai"
)

// With no API key configured every call must degrade, never error.
func TestClient_DegradesWithoutKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	client := openai.NewClient()
	ctx := context.Background()

	out, err := client.Analyze(ctx, "I have had a pounding headache for two days")
	require.NoError(t, err)
	assert.Equal(t, openai.UnavailableMessage, out)

	out, err = client.ToCanonical(ctx, "Sakit kepala teruk")
	require.NoError(t, err)
	assert.Equal(t, "Sakit kepala teruk", out)

	out, err = client.FromCanonical(ctx, "Severe headache", "my")
	require.NoError(t, err)
	assert.Equal(t, "Severe headache", out)
}

func TestClient_FromCanonical_EnglishPassthrough(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	client := openai.NewClient()

	out, err := client.FromCanonical(context.Background(), "Severe headache", "en")
	require.NoError(t, err)
	assert.Equal(t, "Severe headache", out)
}
