package gemini

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/kirillkom/insurance-onboarding/internal/core/domain"
	"github.com/kirillkom/insurance-onboarding/internal/infrastructure/llm/prompt"
	"github.com/kirillkom/insurance-onboarding/internal/infrastructure/resilience"
)

const (
	DefaultModel   = "gemini-1.5-flash"
	defaultTimeout = 60 * time.Second
	maxOutput      = int32(500)
)

type Options struct {
	Timeout  time.Duration
	Executor *resilience.Executor
}

// Client generates onboarding replies with the Gemini API.
type Client struct {
	client   *genai.Client
	model    string
	timeout  time.Duration
	executor *resilience.Executor
}

func New(ctx context.Context, apiKey, model string, opts Options) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("gemini api key is empty")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	if strings.TrimSpace(model) == "" {
		model = DefaultModel
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{client: client, model: model, timeout: timeout, executor: opts.Executor}, nil
}

func (c *Client) Close() error {
	return c.client.Close()
}

func (c *Client) GenerateReply(ctx context.Context, req domain.ReplyRequest) (*domain.GeneratedReply, error) {
	userMessage, err := prompt.BuildUserMessage(req)
	if err != nil {
		return nil, err
	}
	raw, err := c.generate(ctx, userMessage, true)
	if err != nil {
		return nil, err
	}
	return prompt.ParseReply(raw)
}

func (c *Client) GenerateText(ctx context.Context, userText string) (string, error) {
	return c.generate(ctx, userText, false)
}

func (c *Client) generate(ctx context.Context, userMessage string, jsonMode bool) (string, error) {
	callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
	defer cancel()

	model := c.client.GenerativeModel(c.model)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(prompt.SystemInstruction)},
	}
	temperature := float32(0)
	maxTokens := maxOutput
	model.GenerationConfig = genai.GenerationConfig{
		Temperature:     &temperature,
		MaxOutputTokens: &maxTokens,
	}
	if jsonMode {
		model.ResponseMIMEType = "application/json"
	}

	var text string
	call := func(reqCtx context.Context) error {
		resp, err := model.GenerateContent(reqCtx, genai.Text(userMessage))
		if err != nil {
			return fmt.Errorf("gemini generate: %w", err)
		}
		text = responseText(resp)
		return nil
	}

	var err error
	if c.executor != nil {
		err = c.executor.Execute(callCtx, "gemini.generate", call, resilience.ClassifyTransport)
	} else {
		err = call(callCtx)
	}
	if err != nil {
		return "", resilience.WrapTemporary("gemini generate", err)
	}
	if text == "" {
		return "", fmt.Errorf("gemini generate: empty response")
	}
	return text, nil
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var out strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			out.WriteString(string(txt))
		}
	}
	return strings.TrimSpace(out.String())
}
