package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"

	"github.com/zhouzirui/feelbetter/backend/internal/analysis/emotion"
	"github.com/zhouzirui/feelbetter/backend/internal/model/chat"
)

const systemPromptTemplate = "You are a helpful and empathetic AI companion. " +
	"The user is currently feeling %s. " +
	"Adjust your tone to support this emotion. " +
	"Keep responses concise and conversational."

// conversationTemplate 系统指令 + 历史对话 + 当前用户输入。
var conversationTemplate = prompt.FromMessages(
	schema.FString,
	schema.SystemMessage("{system}"),
	schema.MessagesPlaceholder("history", true),
	schema.UserMessage("{query}"),
)

// SystemPrompt renders the companion instruction for the detected emotion.
func SystemPrompt(label emotion.Label) string {
	return fmt.Sprintf(systemPromptTemplate, strings.ToUpper(string(label)))
}

// Assemble builds the model input: system instruction, replayed history, then the new user turn.
// History turns with roles other than user/assistant/ai are dropped.
func Assemble(label emotion.Label, history []chat.Message, utterance string) ([]*schema.Message, error) {
	messages, err := conversationTemplate.Format(context.Background(), map[string]any{
		"system":  SystemPrompt(label),
		"history": historyMessages(history),
		"query":   utterance,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to format conversation: %w", err)
	}
	return messages, nil
}

func historyMessages(history []chat.Message) []*schema.Message {
	messages := make([]*schema.Message, 0, len(history))
	for _, msg := range history {
		switch msg.Role {
		case "user":
			messages = append(messages, schema.UserMessage(msg.Content))
		case "assistant", "ai":
			messages = append(messages, schema.AssistantMessage(msg.Content, nil))
		}
	}
	return messages
}
