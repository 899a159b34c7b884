package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/dgallion1/clusterscope/internal/model"
	"github.com/dgallion1/clusterscope/internal/retry"
)

// ClaudeClient calls the Anthropic Messages API. The API has no system role
// in the message list, so system turns are sent as user turns.
type ClaudeClient struct {
	client   anthropic.Client
	defaults Options
}

func NewClaudeClient(apiKey string, defaults Options, opts ...option.RequestOption) *ClaudeClient {
	opts = append([]option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}, opts...)
	return &ClaudeClient{
		client:   anthropic.NewClient(opts...),
		defaults: defaults,
	}
}

func (c *ClaudeClient) Name() string { return "claude" }

func (c *ClaudeClient) Complete(ctx context.Context, messages []model.Message, opts Options) (string, error) {
	opts = c.defaults.Defaults(opts)

	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(opts.Model),
		MaxTokens:   int64(opts.MaxTokens),
		Temperature: anthropic.Float(opts.Temperature),
		Messages:    claudeMessages(messages),
	}

	resp, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return "", classifyClaudeError(err)
	}

	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("empty response from claude")
	}
	return sb.String(), nil
}

// claudeMessages remaps system turns to user turns. Without any system turn
// the assessment prompt goes first as a user turn.
func claudeMessages(messages []model.Message) []anthropic.MessageParam {
	hasSystem := false
	out := make([]anthropic.MessageParam, 0, len(messages)+1)
	for _, m := range messages {
		block := anthropic.NewTextBlock(m.Content)
		switch m.Role {
		case model.RoleAssistant:
			out = append(out, anthropic.NewAssistantMessage(block))
		case model.RoleSystem:
			hasSystem = true
			out = append(out, anthropic.NewUserMessage(block))
		default:
			out = append(out, anthropic.NewUserMessage(block))
		}
	}
	if !hasSystem {
		out = append([]anthropic.MessageParam{anthropic.NewUserMessage(anthropic.NewTextBlock(SystemPrompt))}, out...)
	}
	return out
}

func classifyClaudeError(err error) error {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		if apiErr.StatusCode == http.StatusTooManyRequests || apiErr.StatusCode >= 500 {
			return &retry.RetryableError{StatusCode: apiErr.StatusCode, Message: apiErr.Error()}
		}
	}
	return fmt.Errorf("claude api: %w", err)
}
