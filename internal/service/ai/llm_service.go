package ai

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/cloudwego/eino/schema"

	"github.com/zhouzirui/feelbetter/backend/internal/config"
)

// ErrNotConfigured is returned when the selected provider has no credentials.
var ErrNotConfigured = errors.New("text generation provider not configured")

// Generator produces a reply for an assembled conversation.
type Generator interface {
	Generate(ctx context.Context, messages []*schema.Message) (Reply, error)
}

// Service wraps the configured provider with a per-call deadline and logging.
type Service struct {
	generator Generator
	provider  string
	timeout   time.Duration
}

// NewService builds the generator for cfg.Provider.
func NewService(ctx context.Context, cfg config.AIConfig) (*Service, error) {
	if !cfg.Enabled() {
		return nil, fmt.Errorf("%w: %s", ErrNotConfigured, cfg.Provider)
	}

	var (
		generator Generator
		err       error
	)
	switch cfg.Provider {
	case config.ProviderGemini:
		generator, err = newGeminiGenerator(ctx, cfg.Gemini)
	case config.ProviderArk:
		generator, err = newArkGenerator(ctx, cfg.Ark)
	case config.ProviderOpenAI:
		generator, err = newOpenAIGenerator(cfg.OpenAI)
	default:
		return nil, fmt.Errorf("unknown text generation provider %q", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create %s generator: %w", cfg.Provider, err)
	}

	return newService(cfg.Provider, generator, cfg.Timeout), nil
}

func newService(provider string, generator Generator, timeout time.Duration) *Service {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Service{generator: generator, provider: provider, timeout: timeout}
}

// Provider returns the name of the backing provider.
func (s *Service) Provider() string {
	return s.provider
}

// Generate runs one completion. Deadline and provider errors are returned wrapped.
func (s *Service) Generate(ctx context.Context, messages []*schema.Message) (Reply, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	reply, err := s.generator.Generate(ctx, messages)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.provider, err)
	}

	log.Printf("[ai] generated reply provider=%s messages=%d elapsed=%s", s.provider, len(messages), time.Since(start).Round(time.Millisecond))
	return reply, nil
}
