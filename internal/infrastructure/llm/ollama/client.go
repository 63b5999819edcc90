package ollama

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/kirillkom/insurance-onboarding/internal/core/domain"
	"github.com/kirillkom/insurance-onboarding/internal/infrastructure/llm/prompt"
	"github.com/kirillkom/insurance-onboarding/internal/infrastructure/resilience"
)

const defaultTimeout = 60 * time.Second

type Options struct {
	Timeout  time.Duration
	Executor *resilience.Executor
}

// Client generates onboarding replies through the Ollama chat API.
type Client struct {
	baseURL    string
	model      string
	timeout    time.Duration
	httpClient *http.Client
	executor   *resilience.Executor
}

func New(baseURL, model string, opts Options) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      model,
		timeout:    timeout,
		httpClient: &http.Client{},
		executor:   opts.Executor,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string         `json:"model"`
	Messages []chatMessage  `json:"messages"`
	Stream   bool           `json:"stream"`
	Format   string         `json:"format,omitempty"`
	Options  map[string]any `json:"options,omitempty"`
}

type chatResponse struct {
	Message chatMessage `json:"message"`
}

func (c *Client) GenerateReply(ctx context.Context, req domain.ReplyRequest) (*domain.GeneratedReply, error) {
	userMessage, err := prompt.BuildUserMessage(req)
	if err != nil {
		return nil, err
	}
	raw, err := c.chat(ctx, userMessage, "json")
	if err != nil {
		return nil, err
	}
	return prompt.ParseReply(raw)
}

func (c *Client) GenerateText(ctx context.Context, userText string) (string, error) {
	return c.chat(ctx, userText, "")
}

func (c *Client) chat(ctx context.Context, userMessage, format string) (string, error) {
	// Generation is not cancelled by the caller; only the timeout ends it.
	callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
	defer cancel()

	request := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: prompt.SystemInstruction},
			{Role: "user", Content: userMessage},
		},
		Stream:  false,
		Format:  format,
		Options: map[string]any{"temperature": 0, "num_predict": 500},
	}

	var response chatResponse
	var err error
	call := func(reqCtx context.Context) error {
		return c.postJSON(reqCtx, "/api/chat", request, &response, "chat")
	}
	if c.executor != nil {
		err = c.executor.Execute(callCtx, "ollama.chat", call, resilience.ClassifyTransport)
	} else {
		err = call(callCtx)
	}
	if err != nil {
		return "", resilience.WrapTemporary("ollama chat", err)
	}

	text := strings.TrimSpace(response.Message.Content)
	if text == "" {
		return "", fmt.Errorf("ollama chat: empty response")
	}
	return text, nil
}
