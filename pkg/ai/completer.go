package ai

import (
	"context"
	"fmt"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
)

// Chat roles
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage is a single turn of a chat request
type ChatMessage struct {
	Role    string
	Content string
}

// ChatRequest is a provider-neutral chat completion request
type ChatRequest struct {
	Model       string
	Messages    []ChatMessage
	Temperature float64
}

// ChatCompleter returns the text of the first completion choice
type ChatCompleter interface {
	Complete(ctx context.Context, req ChatRequest) (string, error)
}

// OpenAIOptions configures the OpenAI completer
type OpenAIOptions struct {
	APIKey     string
	BaseURL    string // optional, for compatible endpoints
	MaxRetries int
}

// OpenAICompleter implements ChatCompleter with the OpenAI chat completions API
type OpenAICompleter struct {
	client openai.Client
}

// NewOpenAICompleter creates a new OpenAI-backed completer
func NewOpenAICompleter(opts OpenAIOptions) (*OpenAICompleter, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("an OpenAI API key must be provided")
	}

	requestOpts := []option.RequestOption{
		option.WithAPIKey(opts.APIKey),
		option.WithMaxRetries(max(opts.MaxRetries, 0)),
	}
	if opts.BaseURL != "" {
		requestOpts = append(requestOpts, option.WithBaseURL(opts.BaseURL))
	}

	return &OpenAICompleter{
		client: openai.NewClient(requestOpts...),
	}, nil
}

// Complete sends the request and returns the first choice's content
func (c *OpenAICompleter) Complete(ctx context.Context, req ChatRequest) (string, error) {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(req.Messages))
	for _, msg := range req.Messages {
		switch msg.Role {
		case RoleSystem:
			messages = append(messages, openai.SystemMessage(msg.Content))
		case RoleUser:
			messages = append(messages, openai.UserMessage(msg.Content))
		case RoleAssistant:
			messages = append(messages, openai.AssistantMessage(msg.Content))
		default:
			return "", fmt.Errorf("unsupported chat role '%s'", msg.Role)
		}
	}

	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(req.Model),
		Messages:    messages,
		Temperature: openai.Float(req.Temperature),
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}
