package emotion

import (
	"context"
	"log"
	"time"

	analysis "github.com/zhouzirui/feelbetter/backend/internal/analysis/emotion"
	"github.com/zhouzirui/feelbetter/backend/internal/config"
	"github.com/zhouzirui/feelbetter/backend/internal/service/ai"
)

type backend interface {
	classify(ctx context.Context, text string) (analysis.Label, error)
}

// Service 对用户话语做情绪识别。任何失败都会回退到 neutral，调用方不会收到错误。
type Service struct {
	enabled  bool
	provider string
	backend  backend
	timeout  time.Duration
}

// NewService selects the backend named by cfg.Provider. generator is only used by the llm
// backend and may be nil. A backend without credentials leaves the service answering neutral.
func NewService(cfg config.EmotionConfig, generator ai.Generator) *Service {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	svc := &Service{
		enabled:  cfg.Enabled,
		provider: cfg.Provider,
		timeout:  timeout,
	}

	if !svc.enabled {
		return svc
	}

	switch cfg.Provider {
	case config.EmotionHuggingFace:
		if cfg.APIKey != "" {
			svc.backend = huggingFaceBackend{client: NewHuggingFaceClient(cfg.APIKey, cfg.Model, cfg.BaseURL)}
		}
	case config.EmotionLLM:
		if generator != nil {
			svc.backend = llmBackend{generator: generator}
		}
	case config.EmotionLexicon:
		svc.backend = lexiconBackend{}
	}
	return svc
}

// Enabled 返回情绪识别是否会真正调用后端。
func (s *Service) Enabled() bool {
	return s != nil && s.enabled && s.backend != nil
}

// Provider returns the configured backend name.
func (s *Service) Provider() string {
	if s == nil {
		return ""
	}
	return s.provider
}

// Classify returns the dominant emotion of text, or neutral when disabled, unconfigured or failing.
func (s *Service) Classify(ctx context.Context, text string) analysis.Label {
	if !s.Enabled() {
		return analysis.Neutral
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	label, err := s.backend.classify(ctx, text)
	if err != nil {
		log.Printf("[emotion] %s classification failed, use neutral: %v", s.provider, err)
		return analysis.Neutral
	}
	return label
}
