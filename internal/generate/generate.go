// Package generate wraps the language-model call behind a small client.
// Generation failures at this boundary are data, not errors: callers get a
// human-readable fallback string so a flaky model never turns a chat request
// into a fault.
package generate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
)

// fallbackResponse is returned when the model call fails or yields no text.
const fallbackResponse = "Sorry, I couldn't retrieve a valid response from the model."

// groundingPrompt frames the retrieved knowledge as the model's only source.
// %s placeholders: (1) topic label, (2) retrieved text.
const groundingPrompt = `You are a friendly and helpful assistant. Your primary role is to assist users by providing concise, accurate, and clear answers strictly based on the retrieved text.
All your responses must:
- Be written in a friendly tone to ensure the user feels welcome.
- Stay straight to the point, avoiding unnecessary elaboration or explanation.
- Use only the information from the retrieved text below. Do not add, infer, or generate additional content.

Below is the %s retrieved from the knowledge base. You as model do not have any prior knowledge, use only information provided by the knowledge base from below:

%s

Please answer the user's question strictly based on and using the above information.`

// BuildPrompt renders the grounding prompt for a topic label and the text
// retrieved for it.
func BuildPrompt(topicLabel, retrievedText string) string {
	return fmt.Sprintf(groundingPrompt, topicLabel, retrievedText)
}

// Client generates answers through a configured genkit model.
type Client struct {
	g         *genkit.Genkit
	modelName string
	logger    *slog.Logger
}

// NewClient creates a generation client for the named model.
func NewClient(g *genkit.Genkit, modelName string, logger *slog.Logger) (*Client, error) {
	if g == nil {
		return nil, errors.New("genkit instance is required")
	}
	if modelName == "" {
		return nil, errors.New("model name is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{g: g, modelName: modelName, logger: logger}, nil
}

// Generate answers the query with prompt as the system instruction. The
// returned string is always presentable to the user; model failures and empty
// completions collapse into a fallback message.
func (c *Client) Generate(ctx context.Context, prompt, query string) string {
	resp, err := genkit.Generate(ctx, c.g,
		ai.WithModelName(c.modelName),
		ai.WithSystem(prompt),
		ai.WithMessages(ai.NewUserMessage(ai.NewTextPart(query))),
	)
	if err != nil {
		c.logger.Error("generation failed", "model", c.modelName, "error", err)
		return fallbackResponse
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		c.logger.Warn("generation returned empty response", "model", c.modelName)
		return fallbackResponse
	}
	return text
}
