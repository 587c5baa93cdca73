package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/zhouzirui/feelbetter/backend/internal/config"
)

// arkGenerator runs the conversation through a compiled eino chain backed by an Ark chat model.
type arkGenerator struct {
	chain compose.Runnable[[]*schema.Message, *schema.Message]
}

func newArkGenerator(ctx context.Context, cfg config.ArkConfig) (*arkGenerator, error) {
	chatModel, err := cfg.NewChatModel(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model: %w", err)
	}

	chain := compose.NewChain[[]*schema.Message, *schema.Message]()
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile chat chain: %w", err)
	}

	return &arkGenerator{chain: runnable}, nil
}

func (g *arkGenerator) Generate(ctx context.Context, messages []*schema.Message) (Reply, error) {
	msg, err := g.chain.Invoke(ctx, messages)
	if err != nil {
		return nil, fmt.Errorf("failed to run chat chain: %w", err)
	}
	return replyFromSchema(msg)
}

// replyFromSchema maps an eino message onto a Reply. Multi-part content wins over Content.
func replyFromSchema(msg *schema.Message) (Reply, error) {
	if msg == nil {
		return nil, errors.New("empty model response")
	}
	if len(msg.MultiContent) == 0 {
		return PlainText(msg.Content), nil
	}

	fragments := make(FragmentSequence, 0, len(msg.MultiContent))
	for _, part := range msg.MultiContent {
		fragments = append(fragments, keyedFragmentOf(part))
	}
	return fragments, nil
}

// keyedFragmentOf exposes a provider part through its JSON keys.
func keyedFragmentOf(v any) Fragment {
	raw, err := json.Marshal(v)
	if err != nil {
		return OpaqueFragment{Value: v}
	}
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return OpaqueFragment{Value: v}
	}
	return KeyedFragment(fields)
}
