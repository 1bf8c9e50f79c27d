// Package advisor talks to a remote chat-completions endpoint to turn
// cleaned statement text into financial advice and chart data.
package advisor

import (
	"context"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/ai/azopenai"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
)

// Client is the minimal completion surface the advisor needs.
type Client interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// OpenRouterClient wraps the azopenai SDK configured against an
// OpenAI-compatible endpoint (OpenRouter by default).
type OpenRouterClient struct {
	client *azopenai.Client
	model  string
}

// NewOpenRouterClient creates a chat-completions client for the given
// base URL, API key and model identifier.
func NewOpenRouterClient(baseURL, apiKey, model string) (*OpenRouterClient, error) {
	keyCredential := azcore.NewKeyCredential(apiKey)
	client, err := azopenai.NewClientForOpenAI(baseURL, keyCredential, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating LLM client: %w", err)
	}

	return &OpenRouterClient{
		client: client,
		model:  model,
	}, nil
}

// Complete sends a single user prompt and returns the completion text.
func (c *OpenRouterClient) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.GetChatCompletions(
		ctx,
		azopenai.ChatCompletionsOptions{
			DeploymentName: to.Ptr(c.model),
			Messages: []azopenai.ChatRequestMessageClassification{
				&azopenai.ChatRequestUserMessage{
					Content: azopenai.NewChatRequestUserMessageContent(prompt),
				},
			},
		},
		nil,
	)
	if err != nil {
		return "", err
	}

	if len(resp.Choices) > 0 && resp.Choices[0].Message != nil && resp.Choices[0].Message.Content != nil {
		return *resp.Choices[0].Message.Content, nil
	}

	return "", fmt.Errorf("no completion received from LLM")
}
