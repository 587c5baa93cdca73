package chat

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/cloudwego/eino/schema"

	analysis "github.com/zhouzirui/feelbetter/backend/internal/analysis/emotion"
	"github.com/zhouzirui/feelbetter/backend/internal/model/chat"
	"github.com/zhouzirui/feelbetter/backend/internal/service/ai"
)

// ErrEmptyMessages is returned for a request without an active user turn.
var ErrEmptyMessages = errors.New("messages must not be empty")

// MissingConfigReply is sent when no text-generation provider is configured.
const MissingConfigReply = "LLM API key is missing. Please check your .env file."

const (
	apologyReply       = "I'm having trouble thinking right now."
	apologyDetailReply = apologyReply + " (Error: %v)"
)

// Classifier detects the emotion of a user utterance. It must not fail.
type Classifier interface {
	Classify(ctx context.Context, text string) analysis.Label
}

// Generator produces a model reply for an assembled conversation.
type Generator interface {
	Generate(ctx context.Context, messages []*schema.Message) (ai.Reply, error)
}

// Options tunes the degraded responses.
type Options struct {
	// ErrorDetail appends the upstream error to the apology reply.
	ErrorDetail bool
}

// Service relays one chat turn through emotion detection and text generation. It keeps no
// state between calls.
type Service struct {
	classifier Classifier
	generator  Generator
	opts       Options
}

// NewService wires the collaborators. A nil generator puts the service in degraded mode.
func NewService(classifier Classifier, generator Generator, opts Options) *Service {
	return &Service{classifier: classifier, generator: generator, opts: opts}
}

// Handle answers one chat request. Provider failures are folded into the response; only an
// empty message list is reported as an error.
func (s *Service) Handle(ctx context.Context, req chat.Request) (chat.Response, error) {
	utterance, ok := req.Utterance()
	if !ok {
		return chat.Response{}, ErrEmptyMessages
	}

	label := analysis.Neutral
	if s.classifier != nil {
		label = s.classifier.Classify(ctx, utterance)
	}

	if s.generator == nil {
		return chat.Response{Response: MissingConfigReply, Emotion: string(analysis.Neutral)}, nil
	}

	messages, err := ai.Assemble(label, req.History, utterance)
	if err != nil {
		log.Printf("[chat] assemble failed uid=%s emotion=%s: %v", req.UID, label, err)
		return chat.Response{Response: s.apology(err), Emotion: string(label)}, nil
	}

	reply, err := s.generator.Generate(ctx, messages)
	if err != nil {
		log.Printf("[chat] generation failed uid=%s emotion=%s: %v", req.UID, label, err)
		return chat.Response{Response: s.apology(err), Emotion: string(label)}, nil
	}

	text := ai.Normalize(reply)
	log.Printf("[chat] replied uid=%s emotion=%s history=%d length=%d", req.UID, label, len(req.History), len(text))
	return chat.Response{Response: text, Emotion: string(label)}, nil
}

func (s *Service) apology(err error) string {
	if !s.opts.ErrorDetail {
		return apologyReply
	}
	return fmt.Sprintf(apologyDetailReply, err)
}
