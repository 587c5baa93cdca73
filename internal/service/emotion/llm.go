package emotion

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/cloudwego/eino/schema"

	analysis "github.com/zhouzirui/feelbetter/backend/internal/analysis/emotion"
	"github.com/zhouzirui/feelbetter/backend/internal/service/ai"
)

const classifyPromptTemplate = "Classify the emotion of this text into exactly one word from this list: %s. " +
	"Text: '%s'. Return ONLY the word."

// llmBackend asks the text-generation provider for a one-word label.
type llmBackend struct {
	generator ai.Generator
}

func (b llmBackend) classify(ctx context.Context, text string) (analysis.Label, error) {
	names := make([]string, 0, len(analysis.Labels))
	for _, l := range analysis.Labels {
		names = append(names, string(l))
	}
	prompt := fmt.Sprintf(classifyPromptTemplate, strings.Join(names, ", "), text)

	reply, err := b.generator.Generate(ctx, []*schema.Message{schema.UserMessage(prompt)})
	if err != nil {
		return analysis.Neutral, err
	}

	raw := parseClassifierOutput(ai.Normalize(reply))
	label, ok := analysis.ParseLabel(raw)
	if !ok {
		return analysis.Neutral, fmt.Errorf("unexpected label %q", raw)
	}
	return label, nil
}

// parseClassifierOutput keeps the first word of the reply, lowercased, without punctuation.
func parseClassifierOutput(content string) string {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsPunct(r) {
			return -1
		}
		return unicode.ToLower(r)
	}, content)

	fields := strings.Fields(cleaned)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

type lexiconBackend struct{}

func (lexiconBackend) classify(_ context.Context, text string) (analysis.Label, error) {
	return analysis.Analyze(text), nil
}
