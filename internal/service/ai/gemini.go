package ai

import (
	"context"
	"errors"
	"strings"

	"github.com/cloudwego/eino/schema"
	"google.golang.org/genai"

	"github.com/zhouzirui/feelbetter/backend/internal/config"
)

// geminiModels is the subset of *genai.Models used here.
type geminiModels interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

type geminiGenerator struct {
	models geminiModels
	model  string
}

func newGeminiGenerator(ctx context.Context, cfg config.GeminiConfig) (*geminiGenerator, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}

	return &geminiGenerator{models: client.Models, model: cfg.Model}, nil
}

func (g *geminiGenerator) Generate(ctx context.Context, messages []*schema.Message) (Reply, error) {
	system, contents := toGeminiContents(messages)

	var cfg *genai.GenerateContentConfig
	if system != "" {
		cfg = &genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
		}
	}

	res, err := g.models.GenerateContent(ctx, g.model, contents, cfg)
	if err != nil {
		return nil, err
	}

	// Blocked prompts come back without candidates.
	if res == nil || len(res.Candidates) == 0 || res.Candidates[0].Content == nil {
		return nil, errors.New("gemini returned no candidates")
	}

	parts := res.Candidates[0].Content.Parts
	fragments := make(FragmentSequence, 0, len(parts))
	for _, part := range parts {
		switch {
		case part == nil || part.Thought:
			continue
		case part.Text != "":
			fragments = append(fragments, TextFragment(part.Text))
		case hasPayload(part):
			fragments = append(fragments, keyedFragmentOf(part))
		}
	}
	return fragments, nil
}

// hasPayload 判断非文本 part 是否携带内容。仅含 thought signature 或为空的 part 不算内容。
func hasPayload(part *genai.Part) bool {
	return part.InlineData != nil || part.FileData != nil || part.FunctionCall != nil ||
		part.ExecutableCode != nil || part.CodeExecutionResult != nil
}

// toGeminiContents splits system instructions from the turn list. Gemini calls the assistant "model".
func toGeminiContents(messages []*schema.Message) (string, []*genai.Content) {
	var system []string
	contents := make([]*genai.Content, 0, len(messages))
	for _, msg := range messages {
		if msg == nil {
			continue
		}
		switch msg.Role {
		case schema.System:
			system = append(system, msg.Content)
		case schema.Assistant:
			contents = append(contents, genai.NewContentFromText(msg.Content, genai.RoleModel))
		default:
			contents = append(contents, genai.NewContentFromText(msg.Content, genai.RoleUser))
		}
	}
	return strings.Join(system, "\n\n"), contents
}
