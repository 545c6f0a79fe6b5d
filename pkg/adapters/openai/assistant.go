// Package openai implements the free-text analysis and translation
// collaborators on the OpenAI chat completion API. Both degrade gracefully:
// analysis falls back to a fixed unavailable message and translation returns
// the original text, so an API outage never fails an intake transition.
package openai

import (
	"context"
	"fmt"
	"os"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// UnavailableMessage is returned by Analyze when no backend is configured or
// the call fails.
const UnavailableMessage = "AI analysis unavailable."

var languageNames = map[string]string{
	"en": "English",
	"my": "Malay",
	"zh": "Chinese (Simplified)",
}

// Client calls the OpenAI API for symptom analysis and answer translation.
// Credentials and the model name are loaded from environment variables.
type Client struct {
	client *openai.Client
	model  string
}

// NewClient constructs an OpenAI-backed collaborator. It reads the API key
// and model name from the environment; with no key set every call degrades
// without error.
func NewClient() *Client {
	apiKey := os.Getenv("OPENAI_API_KEY")

	model := os.Getenv("OPENAI_MODEL")
	if model == "" {
		model = "gpt-4o-mini"
	}

	c := &Client{model: model}
	if apiKey != "" {
		c.client = openai.NewClient(apiKey)
	}
	return c
}

// Analyze summarizes a free-text symptom description and suggests
// over-the-counter relief options.
func (c *Client) Analyze(ctx context.Context, freeText string) (string, error) {
	if c.client == nil || strings.TrimSpace(freeText) == "" {
		return UnavailableMessage, nil
	}

	prompt := fmt.Sprintf(`Summarize the user's symptom description and briefly suggest possible over-the-counter relief options (in under 80 words).
Avoid medical disclaimers or repetition. Keep it short and clear.

Symptom description: %q`, freeText)

	out, err := c.complete(ctx, prompt)
	if err != nil || out == "" {
		return UnavailableMessage, nil
	}
	return out, nil
}

// ToCanonical translates text to English, returning it unchanged on failure
// or when it is already English.
func (c *Client) ToCanonical(ctx context.Context, text string) (string, error) {
	if c.client == nil || strings.TrimSpace(text) == "" {
		return text, nil
	}

	prompt := fmt.Sprintf(`Translate the following text to English.
If the text is already in English, return the original text.
Do not add any preamble, commentary, or quotation marks.

Text: %q`, text)

	out, err := c.complete(ctx, prompt)
	if err != nil || out == "" {
		return text, nil
	}
	return out, nil
}

// FromCanonical translates English text into the target language code,
// returning the original on failure or when the target is English.
func (c *Client) FromCanonical(ctx context.Context, text, lang string) (string, error) {
	if c.client == nil || strings.TrimSpace(text) == "" || lang == "" || lang == "en" {
		return text, nil
	}

	target, ok := languageNames[lang]
	if !ok {
		target = lang
	}

	prompt := fmt.Sprintf(`Translate the following English text to %s.
Do not add any preamble, commentary, or quotation marks.
Just return the translated text.

Text: %q`, target, text)

	out, err := c.complete(ctx, prompt)
	if err != nil || out == "" {
		return text, nil
	}
	return out, nil
}

func (c *Client) complete(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: 0.2,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
