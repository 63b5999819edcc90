package bootstrap

import (
	"context"
	"testing"
	"time"

	"github.com/kirillkom/insurance-onboarding/internal/config"
	"github.com/kirillkom/insurance-onboarding/internal/infrastructure/llm/ollama"
	"github.com/kirillkom/insurance-onboarding/internal/infrastructure/resilience"
)

func TestResilienceConfigOverridesBreaker(t *testing.T) {
	got := resilienceConfig(config.Config{
		BreakerEnabled:      true,
		BreakerMinRequests:  4,
		BreakerFailureRatio: 0.25,
		BreakerOpenTimeout:  5 * time.Second,
	})
	if !got.BreakerEnabled || got.BreakerMinRequests != 4 || got.BreakerFailureRatio != 0.25 || got.BreakerOpenTimeout != 5*time.Second {
		t.Fatalf("unexpected config: %#v", got)
	}
	if got.RetryMaxAttempts != resilience.DefaultConfig().RetryMaxAttempts {
		t.Fatalf("retry attempts = %d", got.RetryMaxAttempts)
	}
	if single := got.SingleAttempt(); single.RetryMaxAttempts != 1 || single.BreakerMinRequests != 4 {
		t.Fatalf("single attempt config = %#v", single)
	}
}

func TestNewReplyGeneratorSelectsProvider(t *testing.T) {
	generator, closeFn, err := newReplyGenerator(context.Background(), config.Config{LLMProvider: "Ollama", OllamaURL: "http://localhost:11434"}, nil)
	if err != nil {
		t.Fatalf("newReplyGenerator() error = %v", err)
	}
	defer closeFn()
	if _, ok := generator.(*ollama.Client); !ok {
		t.Fatalf("expected ollama client, got %T", generator)
	}

	if _, _, err := newReplyGenerator(context.Background(), config.Config{LLMProvider: "gemini"}, nil); err == nil {
		t.Fatalf("expected error for gemini without api key")
	}
	if _, _, err := newReplyGenerator(context.Background(), config.Config{LLMProvider: "openai"}, nil); err == nil {
		t.Fatalf("expected error for unsupported provider")
	}
}
