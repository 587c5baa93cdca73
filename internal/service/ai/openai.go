package ai

import (
	"context"
	"errors"

	"github.com/cloudwego/eino/schema"
	openai "github.com/sashabaranov/go-openai"

	"github.com/zhouzirui/feelbetter/backend/internal/config"
)

type openAIGenerator struct {
	client *openai.Client
	model  string
}

func newOpenAIGenerator(cfg config.OpenAIConfig) (*openAIGenerator, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("OPENAI_API_KEY is not set")
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	return &openAIGenerator{client: openai.NewClientWithConfig(clientCfg), model: cfg.Model}, nil
}

func (g *openAIGenerator) Generate(ctx context.Context, messages []*schema.Message) (Reply, error) {
	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    g.model,
		Messages: toOpenAIMessages(messages),
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("no choices")
	}

	msg := resp.Choices[0].Message
	if len(msg.MultiContent) == 0 {
		return PlainText(msg.Content), nil
	}

	fragments := make(FragmentSequence, 0, len(msg.MultiContent))
	for _, part := range msg.MultiContent {
		fragments = append(fragments, keyedFragmentOf(part))
	}
	return fragments, nil
}

func toOpenAIMessages(messages []*schema.Message) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, m := range messages {
		if m == nil {
			continue
		}
		role := openai.ChatMessageRoleUser
		switch m.Role {
		case schema.System:
			role = openai.ChatMessageRoleSystem
		case schema.Assistant:
			role = openai.ChatMessageRoleAssistant
		}
		out = append(out, openai.ChatCompletionMessage{Role: role, Content: m.Content})
	}
	return out
}
